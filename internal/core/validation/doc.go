// Package validation checks untyped, JSON-like objects against declarative
// descriptors and explains every violation it finds.
//
// A Descriptor lists the fields of an object, whether each one is required and
// the ordered Validators that judge its value. Validators are either leaves
// (Exact, In, StrMatchRe, Type, ...) or combinators that run other validators
// over list elements, mapping keys or values, or whole nested schemas.
//
// Every run builds a Result tree. Failures never stop sibling checks, so the
// tree describes all of them. The tree can be flattened into Violations for
// clients (Flatten, ValidateSchema) or printed for a developer
// (PrintHierarchy, PrintEndpoints).
//
// A validator applied to a value it cannot judge, such as a pattern check on a
// number, returns an error instead of a Result. Schema logs such errors and
// drops the invocation, or reports it as a failure under WithStrictEvaluation.
package validation
