package validation

import "errors"

// Fatal evaluator errors. They signal that a validator was applied to a value
// it cannot judge at all, which is different from the value failing the check.
var (
	ErrNotString   = errors.New("value should be string")
	ErrNotMapping  = errors.New("value should be a mapping")
	ErrNotSequence = errors.New("value should be a sequence")
)

// Validator evaluates one rule against value, found under locator inside
// container. Implementations hold only constructor-bound parameters and are
// safe for concurrent use.
type Validator interface {
	Validate(container, locator, value any) (*Result, error)
}

// ValidatorFunc adapts a function to the Validator interface.
type ValidatorFunc func(container, locator, value any) (*Result, error)

func (f ValidatorFunc) Validate(container, locator, value any) (*Result, error) {
	return f(container, locator, value)
}

// Check builds a leaf validator from a predicate and the message reported with it.
func Check(message string, pred func(value any) bool) Validator {
	return ValidatorFunc(func(container, locator, value any) (*Result, error) {
		return newResult(pred(value), message, container, locator, value), nil
	})
}
