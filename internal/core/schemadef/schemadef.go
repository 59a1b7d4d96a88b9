// Package schemadef compiles validation descriptors written as YAML or JSON
// documents.
//
// A document lists fields in order, each with a list of single-key validator
// objects:
//
//	only_declared_fields: true
//	fields:
//	  - name: uri
//	    required: true
//	    validators:
//	      - type: [string]
//	      - str_not_empty: true
//	      - str_match_re: "^[a-z0-9_]+$"
//
// Documents are checked against an embedded JSON Schema before compilation.
package schemadef

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"
	"sync"

	santhosh "github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"github.com/bshishov/timelinewiki/internal/core/validation"
)

var (
	ErrInvalidDocument  = errors.New("invalid descriptor document")
	ErrUnknownValidator = errors.New("unknown validator")
	ErrInvalidPattern   = errors.New("invalid pattern")
)

// DocumentError lists every reason a document was rejected by the meta-schema.
type DocumentError struct {
	Errors []string
}

func (e *DocumentError) Error() string {
	return fmt.Sprintf("%s: %s", ErrInvalidDocument, strings.Join(e.Errors, "; "))
}

func (e *DocumentError) Unwrap() error {
	return ErrInvalidDocument
}

//go:embed descriptor.schema.json
var metaSchemaJSON []byte

var metaSchema = sync.OnceValues(func() (*santhosh.Schema, error) {
	compiler := santhosh.NewCompiler()
	compiler.Draft = santhosh.Draft7
	if err := compiler.AddResource("descriptor.schema.json", bytes.NewReader(metaSchemaJSON)); err != nil {
		return nil, err
	}
	return compiler.Compile("descriptor.schema.json")
})

// Parse compiles a YAML or JSON document into a descriptor. opts are passed to
// every nested schema the document declares.
func Parse(data []byte, opts ...validation.SchemaOption) (*validation.Descriptor, error) {
	normalized, err := ToJSON(data)
	if err != nil {
		return nil, err
	}
	if err := checkDocument(normalized); err != nil {
		return nil, err
	}

	var doc document
	if err := json.Unmarshal(normalized, &doc); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	c := compiler{opts: opts}
	return c.descriptor(doc, "")
}

// ParseFile reads and compiles the document at path.
func ParseFile(path string, opts ...validation.SchemaOption) (*validation.Descriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	desc, err := Parse(data, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return desc, nil
}

// LoadFS compiles every .yaml, .yml and .json document in dir. Descriptors
// are keyed by file name without the extension.
func LoadFS(fsys fs.FS, dir string, opts ...validation.SchemaOption) (map[string]*validation.Descriptor, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, err
	}

	out := make(map[string]*validation.Descriptor)
	for _, entry := range entries {
		ext := path.Ext(entry.Name())
		if entry.IsDir() || !isDocumentExt(ext) {
			continue
		}
		name := strings.TrimSuffix(entry.Name(), ext)
		if _, dup := out[name]; dup {
			return nil, fmt.Errorf("descriptor %q defined twice in %s", name, dir)
		}

		data, err := fs.ReadFile(fsys, path.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		desc, err := Parse(data, opts...)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", entry.Name(), err)
		}
		out[name] = desc
	}
	return out, nil
}

func isDocumentExt(ext string) bool {
	switch ext {
	case ".yaml", ".yml", ".json":
		return true
	}
	return false
}

// ToJSON parses YAML (a superset of JSON) and re-encodes it as JSON. Mapping
// keys come out sorted.
func ToJSON(data []byte) ([]byte, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	out, err := json.Marshal(normalize(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	return out, nil
}

func normalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, item := range t {
			t[k] = normalize(item)
		}
		return t
	case map[any]any:
		m := make(map[string]any, len(t))
		for k, item := range t {
			m[fmt.Sprint(k)] = normalize(item)
		}
		return m
	case []any:
		for i, item := range t {
			t[i] = normalize(item)
		}
		return t
	}
	return v
}

func checkDocument(data []byte) error {
	sch, err := metaSchema()
	if err != nil {
		return fmt.Errorf("compile meta-schema: %w", err)
	}

	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if err := sch.Validate(v); err != nil {
		var ve *santhosh.ValidationError
		if errors.As(err, &ve) {
			msgs := collectValidationErrors(ve)
			sort.Strings(msgs)
			return &DocumentError{Errors: msgs}
		}
		return &DocumentError{Errors: []string{err.Error()}}
	}
	return nil
}

func collectValidationErrors(ve *santhosh.ValidationError) []string {
	var msgs []string
	for _, cause := range ve.Causes {
		msgs = append(msgs, collectValidationErrors(cause)...)
	}
	if len(ve.Causes) == 0 {
		loc := ve.InstanceLocation
		if loc == "" {
			loc = "/"
		}
		msgs = append(msgs, loc+": "+ve.Message)
	}
	return msgs
}

// ParseYAMLValue decodes a YAML document into the values validation works
// on. Mappings become *validation.Object with keys in document order.
func ParseYAMLValue(data []byte) (any, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if doc.Kind == 0 {
		return nil, fmt.Errorf("%w: empty document", ErrInvalidDocument)
	}
	return nodeValue(&doc)
}

func nodeValue(n *yaml.Node) (any, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return nodeValue(n.Content[0])
	case yaml.AliasNode:
		return nodeValue(n.Alias)
	case yaml.MappingNode:
		obj := validation.NewObject()
		for i := 0; i+1 < len(n.Content); i += 2 {
			v, err := nodeValue(n.Content[i+1])
			if err != nil {
				return nil, err
			}
			obj.Set(n.Content[i].Value, v)
		}
		return obj, nil
	case yaml.SequenceNode:
		items := make([]any, 0, len(n.Content))
		for _, c := range n.Content {
			v, err := nodeValue(c)
			if err != nil {
				return nil, err
			}
			items = append(items, v)
		}
		return items, nil
	default:
		var v any
		if err := n.Decode(&v); err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrInvalidDocument, n.Line, err)
		}
		return v, nil
	}
}
