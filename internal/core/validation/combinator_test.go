package validation

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIfConditionValid(t *testing.T) {
	headerLength := IfConditionValid(ParamValid("type", Exact("header")), StrShorterThan(10))

	t.Run("condition holds", func(t *testing.T) {
		container := Map{"type": "header", "value": "a very long header"}
		res, err := headerLength.Validate(container, "value", "a very long header")
		require.NoError(t, err)
		assert.False(t, res.Valid)
		assert.Equal(t,
			"Line is too long, should be less than 10 characters (because: Value should be set to: header (param: type))",
			res.Message)
		assert.Equal(t, "value", res.Locator)
	})

	t.Run("condition fails", func(t *testing.T) {
		container := Map{"type": "text", "value": "a very long paragraph"}
		res, err := headerLength.Validate(container, "value", "a very long paragraph")
		require.NoError(t, err)
		assert.True(t, res.Valid)
		assert.Equal(t, "Conditional validation", res.Message)
		assert.Empty(t, res.Children)
	})

	t.Run("condition error propagates", func(t *testing.T) {
		_, err := headerLength.Validate("not a mapping", "value", "x")
		assert.ErrorIs(t, err, ErrNotMapping)
	})
}

func TestParamValid(t *testing.T) {
	container := Map{"a": "", "b": "x"}

	res, err := ParamValid("a", StrNotEmpty()).Validate(container, "b", "x")
	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.Equal(t, "a", res.Locator)
	assert.Equal(t, "", res.Value)
	assert.Equal(t, "Empty string (param: a)", res.Message)

	// A missing param is checked as null.
	res, err = ParamValid("missing", Exact(nil)).Validate(container, "b", "x")
	require.NoError(t, err)
	assert.True(t, res.Valid)
	assert.Nil(t, res.Value)

	_, err = ParamValid("a", StrNotEmpty()).Validate([]any{}, 0, "x")
	assert.ErrorIs(t, err, ErrNotMapping)
}

func TestValidListItems(t *testing.T) {
	items := []any{"a", json.Number("1"), "b"}

	res, err := ValidListItems(Type(KindString)).Validate(nil, "tags", items)
	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.Equal(t, "List items validation", res.Message)
	require.Len(t, res.Children, 3)
	assert.True(t, res.Children[0].Valid)
	assert.False(t, res.Children[1].Valid)
	assert.Equal(t, 1, res.Children[1].Locator)
	assert.True(t, res.Children[2].Valid)

	empty, err := ValidListItems(Type(KindString)).Validate(nil, "tags", []any{})
	require.NoError(t, err)
	assert.True(t, empty.EffectiveValid())

	_, err = ValidListItems(Type(KindString)).Validate(nil, "tags", "abc")
	assert.ErrorIs(t, err, ErrNotSequence)

	_, err = ValidListItems(StrMatchRe("^x")).Validate(nil, "tags", []any{json.Number("1")})
	assert.ErrorIs(t, err, ErrNotString)
}

func TestSchemaForEachElementInList(t *testing.T) {
	inner := &Descriptor{Fields: []Field{
		{Name: "a", Required: true, Validators: []Validator{Type(KindInt, KindFloat)}},
	}}
	items := []any{Map{"a": json.Number("1")}, Map{"a": "x"}}

	res, err := SchemaForEachElementInList(inner).Validate(nil, "items", items)
	require.NoError(t, err)
	assert.False(t, res.EffectiveValid())

	violations := Flatten(res)
	require.Len(t, violations, 1)
	assert.Equal(t, Violation{
		Param: "a",
		Desc:  "Value should be one of types: [int float]",
		Path:  "items[1] -> a",
	}, violations[0])

	// An element that is not an object is fatal for the list.
	_, err = SchemaForEachElementInList(inner).Validate(nil, "items", []any{"x"})
	assert.ErrorIs(t, err, ErrNotMapping)
}

func TestValidDictKeys(t *testing.T) {
	lower := ValidDictKeys(StrMatchRe("^[a-z]+$"))

	res, err := lower.Validate(nil, "labels", Map{"ok": 1, "Bad": 2})
	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.Equal(t, "Dict keys validation", res.Message)
	require.Len(t, res.Children, 2)
	assert.Equal(t, "Bad", res.Children[0].Locator)
	assert.False(t, res.Children[0].Valid)
	assert.Equal(t, "ok", res.Children[1].Locator)
	assert.True(t, res.Children[1].Valid)

	res, err = lower.Validate(nil, "labels", Map{"ok": 1, "fine": 2})
	require.NoError(t, err)
	assert.True(t, res.EffectiveValid())

	res, err = ValidDictKeys(nil).Validate(nil, "labels", Map{"Bad": 1})
	require.NoError(t, err)
	assert.True(t, res.EffectiveValid())
	assert.Empty(t, res.Children)

	_, err = lower.Validate(nil, "labels", []any{"a"})
	assert.ErrorIs(t, err, ErrNotMapping)
}

func TestValidateDictItems(t *testing.T) {
	res, err := ValidateDictItems(Type(KindInt)).Validate(nil, "counts", Map{"a": 1, "b": "x"})
	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.Equal(t, "Dict values validation", res.Message)
	require.Len(t, res.Children, 2)
	assert.True(t, res.Children[0].Valid)
	assert.Equal(t, "b", res.Children[1].Locator)
	assert.False(t, res.Children[1].Valid)
}

func TestValidSchemaDictValues(t *testing.T) {
	inner := &Descriptor{Fields: []Field{{Name: "a", Required: true}}}

	res, err := ValidSchemaDictValues(inner).Validate(nil, nil, Map{
		"k1": Map{"a": 1},
		"k2": Map{},
	})
	require.NoError(t, err)

	assert.Equal(t, []Violation{
		{Param: "a", Desc: "Missing required field: a", Path: "k2 -> a"},
	}, Flatten(res))
}
