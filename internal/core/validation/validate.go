package validation

// Evaluate validates only the declared fields of input and returns the whole
// result tree. Undeclared top-level keys are dropped before the check.
func Evaluate(desc *Descriptor, input Mapping, opts ...SchemaOption) *Result {
	filtered := NewObject()
	if input != nil {
		for _, name := range desc.FieldNames() {
			if v, ok := input.Lookup(name); ok {
				filtered.Set(name, v)
			}
		}
	}

	res, err := NewSchema(desc, opts...).Validate(nil, nil, filtered)
	if err != nil {
		// filtered is always a mapping
		panic(err)
	}
	return res
}

// ValidateSchema returns input unchanged when its declared fields conform to
// desc, and a *ValidationError listing every violation otherwise.
func ValidateSchema(desc *Descriptor, input Mapping, opts ...SchemaOption) (Mapping, error) {
	res := Evaluate(desc, input, opts...)
	if res.EffectiveValid() {
		return input, nil
	}
	return nil, &ValidationError{Violations: Flatten(res), Result: res}
}
