package validation

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectKeepsKeyOrder(t *testing.T) {
	raw := `{"b":1,"a":{"z":true,"y":[1.5,"x",null]},"c":"s"}`

	obj := NewObject()
	require.NoError(t, json.Unmarshal([]byte(raw), obj))

	assert.Equal(t, []string{"b", "a", "c"}, obj.Keys())
	assert.Equal(t, 3, obj.Len())

	b, ok := obj.Lookup("b")
	require.True(t, ok)
	assert.Equal(t, json.Number("1"), b)

	nested, ok := obj.Lookup("a")
	require.True(t, ok)
	require.IsType(t, &Object{}, nested)
	assert.Equal(t, []string{"z", "y"}, nested.(*Object).Keys())

	list, _ := nested.(*Object).Lookup("y")
	assert.Equal(t, []any{json.Number("1.5"), "x", nil}, list)

	out, err := json.Marshal(obj)
	require.NoError(t, err)
	assert.Equal(t, raw, string(out))
}

func TestObjectRejectsNonObjects(t *testing.T) {
	obj := NewObject()
	assert.Error(t, json.Unmarshal([]byte(`[1,2]`), obj))
	assert.Error(t, json.Unmarshal([]byte(`{"a":`), obj))
}

func TestObjectAccessors(t *testing.T) {
	obj := NewObject()
	obj.Set("name", "News")
	obj.Set("order", json.Number("2.5"))
	obj.Set("name", "Updates")

	assert.Equal(t, []string{"name", "order"}, obj.Keys())

	name, ok := obj.GetString("name")
	assert.True(t, ok)
	assert.Equal(t, "Updates", name)

	_, ok = obj.GetString("order")
	assert.False(t, ok)

	order, ok := obj.GetFloat("order")
	assert.True(t, ok)
	assert.InDelta(t, 2.5, order, 1e-9)

	var empty *Object
	assert.Nil(t, empty.Keys())
	assert.Zero(t, empty.Len())
	_, ok = empty.Lookup("x")
	assert.False(t, ok)
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		value any
		want  Kind
	}{
		{nil, KindNull},
		{true, KindBool},
		{"x", KindString},
		{json.Number("12"), KindInt},
		{json.Number("-1.0"), KindFloat},
		{json.Number("1e3"), KindFloat},
		{json.Number("1e400"), KindOther},
		{json.Number("-1e400"), KindOther},
		{math.Inf(1), KindOther},
		{math.NaN(), KindOther},
		{42, KindInt},
		{3.14, KindFloat},
		{[]any{1}, KindList},
		{[]string{"a"}, KindList},
		{NewObject(), KindMap},
		{Map{}, KindMap},
		{map[string]int{}, KindMap},
		{struct{}{}, KindOther},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, KindOf(tt.value), "value %#v", tt.value)
	}
}

func TestFloatRejectsNonFinite(t *testing.T) {
	f, ok := Float(json.Number("2.5"))
	require.True(t, ok)
	assert.InDelta(t, 2.5, f, 1e-9)

	f, ok = Float(int64(7))
	require.True(t, ok)
	assert.InDelta(t, 7.0, f, 1e-9)

	f, ok = Float(float32(0.5))
	require.True(t, ok)
	assert.InDelta(t, 0.5, f, 1e-9)

	for _, v := range []any{json.Number("1e400"), math.Inf(-1), math.NaN(), "1", nil} {
		_, ok := Float(v)
		assert.False(t, ok, "value %#v", v)
	}
}

func TestTypeRejectsOutOfRangeNumber(t *testing.T) {
	res, err := Type(KindInt, KindFloat).Validate(nil, "order", json.Number("1e400"))
	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.Equal(t, "Value should be one of types: [int float]", res.Message)
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind("Float")
	require.NoError(t, err)
	assert.Equal(t, KindFloat, k)

	_, err = ParseKind("other")
	assert.Error(t, err)
	_, err = ParseKind("decimal")
	assert.Error(t, err)
}

func TestEqualAcrossNumericTypes(t *testing.T) {
	assert.True(t, equal(json.Number("1"), 1))
	assert.True(t, equal(1.0, json.Number("1")))
	assert.False(t, equal("1", 1))
	assert.False(t, equal(1, "1"))
	assert.True(t, equal([]any{"a"}, []any{"a"}))
	assert.True(t, equal(nil, nil))
}

func TestParseValue(t *testing.T) {
	v, err := ParseValue([]byte(` {"b": [1, "x"], "a": null} `))
	require.NoError(t, err)
	require.IsType(t, &Object{}, v)
	assert.Equal(t, []string{"b", "a"}, v.(*Object).Keys())

	v, err = ParseValue([]byte(`2.5`))
	require.NoError(t, err)
	assert.Equal(t, json.Number("2.5"), v)

	_, err = ParseValue([]byte(`1 2`))
	assert.Error(t, err)
	_, err = ParseValue([]byte(`]`))
	assert.Error(t, err)
}
