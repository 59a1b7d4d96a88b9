package validation

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

type exact struct {
	expected any
}

// Exact passes when the value equals expected.
func Exact(expected any) Validator {
	return exact{expected: expected}
}

func (v exact) Validate(container, locator, value any) (*Result, error) {
	return newResult(equal(value, v.expected),
		fmt.Sprintf("Value should be set to: %s", formatValue(v.expected)),
		container, locator, value), nil
}

type in struct {
	values []any
}

// In passes when the value is one of values.
func In(values ...any) Validator {
	return in{values: values}
}

// InKeys passes when the value is one of the keys of m.
func InKeys[V any](m map[string]V) Validator {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	values := make([]any, len(keys))
	for i, k := range keys {
		values[i] = k
	}
	return in{values: values}
}

func (v in) Validate(container, locator, value any) (*Result, error) {
	return newResult(contains(v.values, value),
		fmt.Sprintf("Value should be one of these: %s", formatValue(v.values)),
		container, locator, value), nil
}

type notIn struct {
	values []any
}

// NotIn passes when the value is none of values.
func NotIn(values ...any) Validator {
	return notIn{values: values}
}

func (v notIn) Validate(container, locator, value any) (*Result, error) {
	return newResult(!contains(v.values, value),
		fmt.Sprintf("Value should NOT be one of these: %s", formatValue(v.values)),
		container, locator, value), nil
}

func contains(values []any, value any) bool {
	for _, candidate := range values {
		if equal(candidate, value) {
			return true
		}
	}
	return false
}

type hasParam struct {
	name string
}

// HasParam passes when the container has a key called name.
func HasParam(name string) Validator {
	return hasParam{name: name}
}

func (v hasParam) Validate(container, locator, value any) (*Result, error) {
	m, ok := asMapping(container)
	if !ok {
		return nil, fmt.Errorf("has param %q: %w", v.name, ErrNotMapping)
	}
	_, present := m.Lookup(v.name)
	return newResult(present,
		fmt.Sprintf("Object should have param: %s", v.name),
		container, locator, value), nil
}

type noParam struct {
	name string
}

// NoParam passes when the container has no key called name.
func NoParam(name string) Validator {
	return noParam{name: name}
}

func (v noParam) Validate(container, locator, value any) (*Result, error) {
	m, ok := asMapping(container)
	if !ok {
		return nil, fmt.Errorf("no param %q: %w", v.name, ErrNotMapping)
	}
	_, present := m.Lookup(v.name)
	return newResult(!present,
		fmt.Sprintf("Object should NOT have param: %s", v.name),
		container, locator, value), nil
}

type strNotEmpty struct{}

// StrNotEmpty fails only for the empty string. Values of other kinds pass.
func StrNotEmpty() Validator {
	return strNotEmpty{}
}

func (strNotEmpty) Validate(container, locator, value any) (*Result, error) {
	s, isString := value.(string)
	return newResult(!isString || s != "", "Empty string", container, locator, value), nil
}

type strShorterThan struct {
	max int
}

// StrShorterThan passes when a string has fewer than max characters.
// Non-string values are a fatal evaluator error.
func StrShorterThan(max int) Validator {
	return strShorterThan{max: max}
}

func (v strShorterThan) Validate(container, locator, value any) (*Result, error) {
	s, ok := value.(string)
	if !ok {
		return nil, fmt.Errorf("string length: %w", ErrNotString)
	}
	return newResult(utf8.RuneCountInString(s) < v.max,
		fmt.Sprintf("Line is too long, should be less than %d characters", v.max),
		container, locator, value), nil
}

type strMatchRe struct {
	pattern string
	re      *regexp.Regexp
}

// CompileStrMatchRe returns a validator that passes when a string matches
// pattern starting at its first character. The match does not need to
// consume the whole string.
func CompileStrMatchRe(pattern string) (Validator, error) {
	re, err := regexp.Compile(`\A(?:` + pattern + `)`)
	if err != nil {
		return nil, fmt.Errorf("compile pattern %q: %w", pattern, err)
	}
	return strMatchRe{pattern: pattern, re: re}, nil
}

// StrMatchRe is like CompileStrMatchRe but panics on an invalid pattern.
func StrMatchRe(pattern string) Validator {
	v, err := CompileStrMatchRe(pattern)
	if err != nil {
		panic(err)
	}
	return v
}

func (v strMatchRe) Validate(container, locator, value any) (*Result, error) {
	s, ok := value.(string)
	if !ok {
		return nil, fmt.Errorf("string pattern: %w", ErrNotString)
	}
	return newResult(v.re.MatchString(s),
		fmt.Sprintf("String does not match pattern %s", v.pattern),
		container, locator, value), nil
}

type typeOf struct {
	kinds []Kind
}

// Type passes when the kind of the value is one of kinds.
func Type(kinds ...Kind) Validator {
	return typeOf{kinds: kinds}
}

func (v typeOf) Validate(container, locator, value any) (*Result, error) {
	got := KindOf(value)
	valid := false
	names := make([]string, len(v.kinds))
	for i, k := range v.kinds {
		names[i] = k.String()
		if k == got {
			valid = true
		}
	}
	return newResult(valid,
		fmt.Sprintf("Value should be one of types: [%s]", strings.Join(names, " ")),
		container, locator, value), nil
}
