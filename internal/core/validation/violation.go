package validation

import (
	"fmt"
	"strings"
)

// Violation is one failing leaf of a result tree, in the shape returned to clients.
type Violation struct {
	Param any    `json:"param"`
	Desc  string `json:"desc"`
	Path  string `json:"path,omitempty"`
}

// Flatten walks the tree depth-first and returns a violation for every failing
// leaf. Nodes with children are never reported themselves.
func Flatten(r *Result) []Violation {
	violations := make([]Violation, 0)
	if r == nil {
		return violations
	}
	return flatten(violations, r, nil)
}

func flatten(dst []Violation, r *Result, path []any) []Violation {
	if r.Locator != nil {
		path = append(path[:len(path):len(path)], r.Locator)
	}
	if r.IsEndpoint() {
		if r.Valid {
			return dst
		}
		return append(dst, Violation{
			Param: r.Locator,
			Desc:  r.Message,
			Path:  FormatPath(path),
		})
	}
	for _, child := range r.Children {
		dst = flatten(dst, child, path)
	}
	return dst
}

// ValidationError is returned when an object does not conform to its descriptor.
type ValidationError struct {
	Violations []Violation
	// Result is the full tree the violations were taken from.
	Result *Result
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		if v.Path == "" {
			parts = append(parts, v.Desc)
			continue
		}
		parts = append(parts, v.Path+": "+v.Desc)
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(parts, "; "))
}
