package validation

import (
	"bytes"
	"encoding/json"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func realmDescriptor() *Descriptor {
	return &Descriptor{
		OnlyDeclaredFields: true,
		Fields: []Field{
			{Name: "uri", Required: true, Validators: []Validator{
				Type(KindString), StrNotEmpty(), StrMatchRe("^[a-z0-9_]+$"),
			}},
			{Name: "name", Required: true, Validators: []Validator{
				Type(KindString), StrNotEmpty(),
			}},
			{Name: "description", Validators: []Validator{Type(KindString)}},
		},
	}
}

func decode(t *testing.T, s string) *Object {
	t.Helper()
	obj := NewObject()
	require.NoError(t, json.Unmarshal([]byte(s), obj))
	return obj
}

func TestValidateSchemaReportsPatternMismatch(t *testing.T) {
	input := decode(t, `{"uri": "my-realm", "name": "X"}`)

	out, err := ValidateSchema(realmDescriptor(), input)
	assert.Nil(t, out)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []Violation{
		{Param: "uri", Desc: "String does not match pattern ^[a-z0-9_]+$", Path: "uri"},
	}, verr.Violations)
	assert.False(t, verr.Result.EffectiveValid())
	assert.Equal(t, "validation failed: uri: String does not match pattern ^[a-z0-9_]+$", err.Error())
}

func TestSchemaReportsUnexpectedFieldsFirst(t *testing.T) {
	input := decode(t, `{"uri": "my_realm", "name": "", "extra": 1}`)

	res, err := NewSchema(realmDescriptor()).Validate(nil, nil, input)
	require.NoError(t, err)

	assert.Equal(t, []Violation{
		{Param: "extra", Desc: "Unexpected field: extra", Path: "extra"},
		{Param: "name", Desc: "Empty string", Path: "name"},
	}, Flatten(res))
}

func TestValidateSchemaDropsUndeclaredFields(t *testing.T) {
	input := decode(t, `{"uri": "my_realm", "name": "", "extra": 1}`)

	_, err := ValidateSchema(realmDescriptor(), input)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []Violation{
		{Param: "name", Desc: "Empty string", Path: "name"},
	}, verr.Violations)
}

func TestValidateSchemaReturnsInputUnchanged(t *testing.T) {
	input := decode(t, `{"name": "News", "extra": true, "uri": "news"}`)

	out, err := ValidateSchema(realmDescriptor(), input)
	require.NoError(t, err)
	assert.Same(t, input, out)
	assert.Equal(t, []string{"name", "extra", "uri"}, input.Keys())
}

func TestSchemaMissingRequiredField(t *testing.T) {
	desc := &Descriptor{Fields: []Field{{Name: "x", Required: true}}}

	res, err := NewSchema(desc).Validate(nil, nil, NewObject())
	require.NoError(t, err)

	assert.Equal(t, []Violation{
		{Param: "x", Desc: "Missing required field: x", Path: "x"},
	}, Flatten(res))
}

func TestSchemaUnexpectedFieldsKeepInputOrder(t *testing.T) {
	desc := &Descriptor{OnlyDeclaredFields: true, Fields: []Field{{Name: "known"}}}
	input := decode(t, `{"z": 1, "known": 2, "a": 3}`)

	res, err := NewSchema(desc).Validate(nil, nil, input)
	require.NoError(t, err)

	violations := Flatten(res)
	require.Len(t, violations, 2)
	assert.Equal(t, "Unexpected field: z", violations[0].Desc)
	assert.Equal(t, "Unexpected field: a", violations[1].Desc)
}

func TestSchemaOptionalFieldsAbsent(t *testing.T) {
	desc := &Descriptor{Fields: []Field{
		{Name: "order", Validators: []Validator{Type(KindInt, KindFloat)}},
		{Name: "type", Validators: []Validator{In("text", "header")}},
	}}

	input := NewObject()
	out, err := ValidateSchema(desc, input)
	require.NoError(t, err)
	assert.Same(t, input, out)

	res := Evaluate(desc, input)
	assert.True(t, res.EffectiveValid())
	assert.Empty(t, res.Children)
	assert.Empty(t, Flatten(res))
}

func TestSchemaSwallowsEvaluatorErrors(t *testing.T) {
	var logs bytes.Buffer
	desc := &Descriptor{Fields: []Field{
		{Name: "uri", Required: true, Validators: []Validator{StrMatchRe("^[a-z0-9_]+$")}},
	}}
	input := decode(t, `{"uri": 123}`)

	out, err := ValidateSchema(desc, input, WithLogger(zerolog.New(&logs)))
	require.NoError(t, err)
	assert.Same(t, input, out)

	assert.Contains(t, logs.String(), `"level":"warn"`)
	assert.Contains(t, logs.String(), `"field":"uri"`)
	assert.Contains(t, logs.String(), `"message":"validator exception"`)
}

func TestSchemaStrictEvaluation(t *testing.T) {
	desc := &Descriptor{Fields: []Field{
		{Name: "uri", Required: true, Validators: []Validator{StrMatchRe("^[a-z0-9_]+$")}},
	}}
	input := decode(t, `{"uri": 123}`)

	_, err := ValidateSchema(desc, input, WithStrictEvaluation(), WithLogger(zerolog.Nop()))

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []Violation{
		{Param: "uri", Desc: "Internal validator error: string pattern: value should be string", Path: "uri"},
	}, verr.Violations)
}

func TestSchemaLaterValidatorsStillRun(t *testing.T) {
	desc := &Descriptor{Fields: []Field{
		{Name: "uri", Validators: []Validator{StrMatchRe("^x"), Type(KindString)}},
	}}

	res, err := NewSchema(desc, WithLogger(zerolog.Nop())).Validate(nil, nil, Map{"uri": 5})
	require.NoError(t, err)
	require.Len(t, res.Children, 1)
	assert.Equal(t, "Value should be one of types: [string]", res.Children[0].Message)
}

func TestNestedSchemaOnNonObjectIsDropped(t *testing.T) {
	inner := &Descriptor{Fields: []Field{{Name: "a", Required: true}}}
	desc := &Descriptor{Fields: []Field{
		{Name: "meta", Validators: []Validator{NewSchema(inner)}},
	}}

	res, err := NewSchema(desc, WithLogger(zerolog.Nop())).Validate(nil, nil, Map{"meta": "flat"})
	require.NoError(t, err)
	assert.True(t, res.EffectiveValid())
}

func TestSchemaRequiresMapping(t *testing.T) {
	_, err := NewSchema(realmDescriptor()).Validate(nil, nil, []any{1})
	assert.ErrorIs(t, err, ErrNotMapping)
}

func TestValidateSchemaIsDeterministic(t *testing.T) {
	input := decode(t, `{"uri": "A-b", "name": "", "description": 7}`)
	desc := realmDescriptor()

	_, first := ValidateSchema(desc, input)
	_, second := ValidateSchema(desc, input)
	require.Error(t, first)
	assert.Equal(t, first.(*ValidationError).Violations, second.(*ValidationError).Violations)
}

func TestValidateSchemaIsIdempotent(t *testing.T) {
	input := decode(t, `{"uri": "news", "name": "News", "extra": 1}`)
	desc := realmDescriptor()

	_, err := ValidateSchema(desc, input)
	require.NoError(t, err)

	filtered := NewObject()
	for _, name := range desc.FieldNames() {
		if v, ok := input.Lookup(name); ok {
			filtered.Set(name, v)
		}
	}
	_, err = ValidateSchema(desc, filtered)
	require.NoError(t, err)
}

func TestValidateSchemaConcurrentUse(t *testing.T) {
	desc := realmDescriptor()
	input := decode(t, `{"uri": "my-realm", "name": ""}`)

	var wg sync.WaitGroup
	results := make([][]Violation, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := ValidateSchema(desc, input)
			if verr, ok := err.(*ValidationError); ok {
				results[i] = verr.Violations
			}
		}(i)
	}
	wg.Wait()

	for _, got := range results {
		assert.Equal(t, results[0], got)
		assert.Len(t, got, 2)
	}
}

func TestDescriptorCheck(t *testing.T) {
	tests := []struct {
		name    string
		desc    *Descriptor
		wantErr bool
	}{
		{name: "valid", desc: realmDescriptor()},
		{name: "nil", desc: nil, wantErr: true},
		{name: "unnamed", desc: &Descriptor{Fields: []Field{{}}}, wantErr: true},
		{name: "duplicate", desc: &Descriptor{Fields: []Field{{Name: "a"}, {Name: "a"}}}, wantErr: true},
		{name: "nil validator", desc: &Descriptor{Fields: []Field{{Name: "a", Validators: []Validator{nil}}}}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.desc.Check()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidDescriptor)
				return
			}
			assert.NoError(t, err)
		})
	}
}
