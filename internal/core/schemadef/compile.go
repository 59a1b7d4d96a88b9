package schemadef

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/bshishov/timelinewiki/internal/core/validation"
)

type document struct {
	OnlyDeclaredFields bool       `json:"only_declared_fields"`
	Fields             []fieldDoc `json:"fields"`
}

type fieldDoc struct {
	Name       string         `json:"name"`
	Required   bool           `json:"required"`
	Validators []validatorDoc `json:"validators"`
}

// validatorDoc is a single-key object naming the validator and its argument.
type validatorDoc map[string]json.RawMessage

type compiler struct {
	opts []validation.SchemaOption
}

func (c compiler) descriptor(doc document, at string) (*validation.Descriptor, error) {
	desc := &validation.Descriptor{
		OnlyDeclaredFields: doc.OnlyDeclaredFields,
		Fields:             make([]validation.Field, 0, len(doc.Fields)),
	}
	for i, f := range doc.Fields {
		fieldAt := fmt.Sprintf("%sfields[%d]", at, i)
		field := validation.Field{Name: f.Name, Required: f.Required}
		for j, vd := range f.Validators {
			v, err := c.validator(vd, fmt.Sprintf("%s.validators[%d]", fieldAt, j))
			if err != nil {
				return nil, err
			}
			field.Validators = append(field.Validators, v)
		}
		desc.Fields = append(desc.Fields, field)
	}
	if err := desc.Check(); err != nil {
		if at != "" {
			return nil, fmt.Errorf("%s: %w", strings.TrimSuffix(at, "."), err)
		}
		return nil, err
	}
	return desc, nil
}

func (c compiler) validator(vd validatorDoc, at string) (validation.Validator, error) {
	if len(vd) != 1 {
		return nil, fmt.Errorf("%s: %w: expected exactly one key, got %d", at, ErrInvalidDocument, len(vd))
	}
	var (
		name string
		arg  json.RawMessage
	)
	for k, v := range vd {
		name, arg = k, v
	}
	at = at + "." + name

	switch name {
	case "exact":
		v, err := validation.ParseValue(arg)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", at, err)
		}
		return validation.Exact(v), nil
	case "in", "not_in":
		values, err := c.list(arg, at)
		if err != nil {
			return nil, err
		}
		if name == "in" {
			return validation.In(values...), nil
		}
		return validation.NotIn(values...), nil
	case "has_param", "no_param":
		var param string
		if err := json.Unmarshal(arg, &param); err != nil {
			return nil, fmt.Errorf("%s: %w", at, err)
		}
		if name == "has_param" {
			return validation.HasParam(param), nil
		}
		return validation.NoParam(param), nil
	case "str_not_empty":
		return validation.StrNotEmpty(), nil
	case "str_shorter_than":
		var n int
		if err := json.Unmarshal(arg, &n); err != nil {
			return nil, fmt.Errorf("%s: %w", at, err)
		}
		return validation.StrShorterThan(n), nil
	case "str_match_re":
		var pattern string
		if err := json.Unmarshal(arg, &pattern); err != nil {
			return nil, fmt.Errorf("%s: %w", at, err)
		}
		v, err := validation.CompileStrMatchRe(pattern)
		if err != nil {
			return nil, fmt.Errorf("%s: %w: %v", at, ErrInvalidPattern, err)
		}
		return v, nil
	case "type":
		return c.kinds(arg, at)
	case "if":
		var body struct {
			Cond validatorDoc `json:"cond"`
			Then validatorDoc `json:"then"`
		}
		if err := json.Unmarshal(arg, &body); err != nil {
			return nil, fmt.Errorf("%s: %w", at, err)
		}
		cond, err := c.validator(body.Cond, at+".cond")
		if err != nil {
			return nil, err
		}
		then, err := c.validator(body.Then, at+".then")
		if err != nil {
			return nil, err
		}
		return validation.IfConditionValid(cond, then), nil
	case "param_valid":
		var body struct {
			Param     string       `json:"param"`
			Validator validatorDoc `json:"validator"`
		}
		if err := json.Unmarshal(arg, &body); err != nil {
			return nil, fmt.Errorf("%s: %w", at, err)
		}
		inner, err := c.validator(body.Validator, at+".validator")
		if err != nil {
			return nil, err
		}
		return validation.ParamValid(body.Param, inner), nil
	case "list_items", "dict_values":
		inner, err := c.nested(arg, at)
		if err != nil {
			return nil, err
		}
		if name == "list_items" {
			return validation.ValidListItems(inner), nil
		}
		return validation.ValidateDictItems(inner), nil
	case "dict_keys":
		if string(arg) == "null" {
			return validation.ValidDictKeys(nil), nil
		}
		inner, err := c.nested(arg, at)
		if err != nil {
			return nil, err
		}
		return validation.ValidDictKeys(inner), nil
	case "schema_each", "schema_dict_values", "schema":
		var doc document
		if err := json.Unmarshal(arg, &doc); err != nil {
			return nil, fmt.Errorf("%s: %w", at, err)
		}
		desc, err := c.descriptor(doc, at+".")
		if err != nil {
			return nil, err
		}
		switch name {
		case "schema_each":
			return validation.SchemaForEachElementInList(desc, c.opts...), nil
		case "schema_dict_values":
			return validation.ValidSchemaDictValues(desc, c.opts...), nil
		}
		return validation.NewSchema(desc, c.opts...), nil
	}
	return nil, fmt.Errorf("%s: %w %q", at, ErrUnknownValidator, name)
}

func (c compiler) nested(arg json.RawMessage, at string) (validation.Validator, error) {
	var vd validatorDoc
	if err := json.Unmarshal(arg, &vd); err != nil {
		return nil, fmt.Errorf("%s: %w", at, err)
	}
	return c.validator(vd, at)
}

func (c compiler) list(arg json.RawMessage, at string) ([]any, error) {
	v, err := validation.ParseValue(arg)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", at, err)
	}
	values, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("%s: %w: expected a list", at, ErrInvalidDocument)
	}
	return values, nil
}

func (c compiler) kinds(arg json.RawMessage, at string) (validation.Validator, error) {
	var names []string
	if err := json.Unmarshal(arg, &names); err != nil {
		var single string
		if err := json.Unmarshal(arg, &single); err != nil {
			return nil, fmt.Errorf("%s: %w", at, err)
		}
		names = []string{single}
	}

	kinds := make([]validation.Kind, 0, len(names))
	for _, n := range names {
		k, err := validation.ParseKind(n)
		if err != nil {
			return nil, fmt.Errorf("%s: %w: %v", at, ErrInvalidDocument, err)
		}
		kinds = append(kinds, k)
	}
	return validation.Type(kinds...), nil
}
