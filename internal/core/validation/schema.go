package validation

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Field declares one field of a Descriptor.
type Field struct {
	Name       string
	Required   bool
	Validators []Validator
}

// Descriptor declares the fields an object may carry. Fields are checked in
// slice order. A Descriptor is built once and only read afterwards.
type Descriptor struct {
	// OnlyDeclaredFields makes every undeclared key a validation failure.
	OnlyDeclaredFields bool
	Fields             []Field
}

var ErrInvalidDescriptor = errors.New("invalid schema descriptor")

// Check reports descriptors with unnamed, duplicated or nil entries.
func (d *Descriptor) Check() error {
	if d == nil {
		return fmt.Errorf("%w: nil descriptor", ErrInvalidDescriptor)
	}
	seen := make(map[string]struct{}, len(d.Fields))
	for _, f := range d.Fields {
		if f.Name == "" {
			return fmt.Errorf("%w: field without a name", ErrInvalidDescriptor)
		}
		if _, dup := seen[f.Name]; dup {
			return fmt.Errorf("%w: field %q declared twice", ErrInvalidDescriptor, f.Name)
		}
		seen[f.Name] = struct{}{}
		for i, v := range f.Validators {
			if v == nil {
				return fmt.Errorf("%w: field %q validator %d is nil", ErrInvalidDescriptor, f.Name, i)
			}
		}
	}
	return nil
}

// FieldNames returns the declared field names in declaration order.
func (d *Descriptor) FieldNames() []string {
	names := make([]string, len(d.Fields))
	for i, f := range d.Fields {
		names[i] = f.Name
	}
	return names
}

// Declares reports whether name is a declared field.
func (d *Descriptor) Declares(name string) bool {
	for _, f := range d.Fields {
		if f.Name == name {
			return true
		}
	}
	return false
}

// Schema is the validator that checks an object against a Descriptor.
type Schema struct {
	desc     *Descriptor
	declared map[string]struct{}
	logger   zerolog.Logger
	strict   bool
}

type SchemaOption func(*Schema)

// WithLogger sets the logger that receives swallowed evaluator errors.
func WithLogger(l zerolog.Logger) SchemaOption {
	return func(s *Schema) {
		s.logger = l
	}
}

// WithStrictEvaluation turns evaluator errors into failing results located at
// the field instead of logging and dropping them.
func WithStrictEvaluation() SchemaOption {
	return func(s *Schema) {
		s.strict = true
	}
}

func NewSchema(desc *Descriptor, opts ...SchemaOption) *Schema {
	s := &Schema{
		desc:     desc,
		declared: make(map[string]struct{}, len(desc.Fields)),
		logger:   log.Logger,
	}
	for _, f := range desc.Fields {
		s.declared[f.Name] = struct{}{}
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Schema) Descriptor() *Descriptor {
	return s.desc
}

// Validate checks value, which must be a mapping. Undeclared keys are reported
// first in key order, then every declared field in declaration order.
func (s *Schema) Validate(container, locator, value any) (*Result, error) {
	obj, ok := asMapping(value)
	if !ok {
		return nil, fmt.Errorf("schema: %w", ErrNotMapping)
	}

	res := newResult(true, "Schema check", container, locator, value)

	if s.desc.OnlyDeclaredFields {
		for _, key := range obj.Keys() {
			if _, ok := s.declared[key]; ok {
				continue
			}
			extra, _ := obj.Lookup(key)
			res.add(newResult(false, "Unexpected field: "+key, value, key, extra))
		}
	}

	for _, field := range s.desc.Fields {
		fieldValue, present := obj.Lookup(field.Name)
		if !present {
			if field.Required {
				res.add(newResult(false, "Missing required field: "+field.Name, value, field.Name, nil))
			}
			continue
		}

		for _, v := range field.Validators {
			child, err := v.Validate(value, field.Name, fieldValue)
			if err != nil {
				s.evaluatorFailed(res, value, field.Name, fieldValue, err)
				continue
			}
			res.add(child)
		}
	}

	return res, nil
}

// evaluatorFailed handles a validator that could not judge a field value at
// all. By default the invocation leaves no result behind.
func (s *Schema) evaluatorFailed(res *Result, container any, field string, value any, err error) {
	s.logger.Warn().
		Err(err).
		Str("field", field).
		Str("value", formatValue(value)).
		Msg("validator exception")

	if s.strict {
		res.add(newResult(false, "Internal validator error: "+err.Error(), container, field, value))
	}
}
