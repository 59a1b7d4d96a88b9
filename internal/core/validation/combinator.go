package validation

import "fmt"

type ifConditionValid struct {
	cond Validator
	then Validator
}

// IfConditionValid runs then only when cond passes. When cond fails the
// result is vacuously valid.
func IfConditionValid(cond, then Validator) Validator {
	return ifConditionValid{cond: cond, then: then}
}

func (v ifConditionValid) Validate(container, locator, value any) (*Result, error) {
	condResult, err := v.cond.Validate(container, locator, value)
	if err != nil {
		return nil, err
	}
	if !condResult.EffectiveValid() {
		return newResult(true, "Conditional validation", container, locator, value), nil
	}

	res, err := v.then.Validate(container, locator, value)
	if err != nil {
		return nil, err
	}
	res.annotate(fmt.Sprintf(" (because: %s)", condResult.Message))
	return res, nil
}

type paramValid struct {
	param string
	inner Validator
}

// ParamValid ignores the value it is given and validates container[param]
// with inner instead. A missing param is validated as null.
func ParamValid(param string, inner Validator) Validator {
	return paramValid{param: param, inner: inner}
}

func (v paramValid) Validate(container, _, _ any) (*Result, error) {
	m, ok := asMapping(container)
	if !ok {
		return nil, fmt.Errorf("param %q: %w", v.param, ErrNotMapping)
	}
	target, _ := m.Lookup(v.param)

	res, err := v.inner.Validate(container, v.param, target)
	if err != nil {
		return nil, err
	}
	res.annotate(fmt.Sprintf(" (param: %s)", v.param))
	return res, nil
}

type validListItems struct {
	inner Validator
}

// ValidListItems validates every element of a sequence with inner, using the
// element index as locator.
func ValidListItems(inner Validator) Validator {
	return validListItems{inner: inner}
}

// SchemaForEachElementInList validates every element of a sequence against desc.
func SchemaForEachElementInList(desc *Descriptor, opts ...SchemaOption) Validator {
	return ValidListItems(NewSchema(desc, opts...))
}

func (v validListItems) Validate(container, locator, value any) (*Result, error) {
	items, ok := asSequence(value)
	if !ok {
		return nil, fmt.Errorf("list items: %w", ErrNotSequence)
	}

	res := newResult(true, "List items validation", container, locator, value)
	for i, item := range items {
		child, err := v.inner.Validate(value, i, item)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		res.add(child)
	}
	return res, nil
}

type validDictKeys struct {
	inner Validator
}

// ValidDictKeys validates every key of a mapping with inner. The key is both
// the locator and the checked value. The mapping is valid only when every key
// passes; a nil inner checks nothing.
func ValidDictKeys(inner Validator) Validator {
	return validDictKeys{inner: inner}
}

func (v validDictKeys) Validate(container, locator, value any) (*Result, error) {
	m, ok := asMapping(value)
	if !ok {
		return nil, fmt.Errorf("dict keys: %w", ErrNotMapping)
	}

	res := newResult(true, "Dict keys validation", container, locator, value)
	if v.inner == nil {
		return res, nil
	}
	for _, key := range m.Keys() {
		child, err := v.inner.Validate(value, key, key)
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", key, err)
		}
		res.add(child)
	}
	return res, nil
}

type validateDictItems struct {
	inner Validator
}

// ValidateDictItems validates every value of a mapping with inner, using the
// key as locator.
func ValidateDictItems(inner Validator) Validator {
	return validateDictItems{inner: inner}
}

// ValidSchemaDictValues validates every value of a mapping against desc.
func ValidSchemaDictValues(desc *Descriptor, opts ...SchemaOption) Validator {
	return ValidateDictItems(NewSchema(desc, opts...))
}

func (v validateDictItems) Validate(container, locator, value any) (*Result, error) {
	m, ok := asMapping(value)
	if !ok {
		return nil, fmt.Errorf("dict values: %w", ErrNotMapping)
	}

	res := newResult(true, "Dict values validation", container, locator, value)
	for _, key := range m.Keys() {
		item, _ := m.Lookup(key)
		child, err := v.inner.Validate(value, key, item)
		if err != nil {
			return nil, fmt.Errorf("value %q: %w", key, err)
		}
		res.add(child)
	}
	return res, nil
}
