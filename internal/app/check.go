package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bshishov/timelinewiki/internal/core/resources"
	"github.com/bshishov/timelinewiki/internal/core/schemadef"
	"github.com/bshishov/timelinewiki/internal/core/validation"
)

const (
	FormatViolations = "violations"
	FormatTree       = "tree"
	FormatEndpoints  = "endpoints"
)

var ErrInputInvalid = errors.New("input does not conform to descriptor")

type CheckRequest struct {
	// Schema is a registered descriptor name or a path to a descriptor file.
	Schema string
	Input  string
	Format string
	// HideValid drops valid subtrees from the tree format.
	HideValid bool
}

// Check validates the input document against the descriptor and writes the
// outcome to w. It returns ErrInputInvalid when the input has violations.
func Check(w io.Writer, registry *resources.Registry, req CheckRequest) error {
	desc, err := resolveDescriptor(registry, req.Schema)
	if err != nil {
		return err
	}

	input, err := readInput(req.Input)
	if err != nil {
		return err
	}

	res := validation.Evaluate(desc, input, registry.Options()...)

	switch req.Format {
	case "", FormatViolations:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(map[string]any{
			"valid":  res.EffectiveValid(),
			"errors": validation.Flatten(res),
		}); err != nil {
			return err
		}
	case FormatTree:
		if err := validation.PrintHierarchy(w, res, req.HideValid); err != nil {
			return err
		}
	case FormatEndpoints:
		if err := validation.PrintEndpoints(w, res); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown format %q", req.Format)
	}

	if !res.EffectiveValid() {
		return ErrInputInvalid
	}
	return nil
}

func resolveDescriptor(registry *resources.Registry, schema string) (*validation.Descriptor, error) {
	if desc, ok := registry.Get(schema); ok {
		return desc, nil
	}
	if _, err := os.Stat(schema); err != nil {
		return nil, fmt.Errorf("descriptor %q is neither registered (%s) nor a readable file",
			schema, strings.Join(registry.Names(), ", "))
	}
	return schemadef.ParseFile(schema, registry.Options()...)
}

func readInput(path string) (validation.Mapping, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}

	var v any
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		v, err = schemadef.ParseYAMLValue(data)
	default:
		v, err = validation.ParseValue(data)
	}
	if err != nil {
		return nil, fmt.Errorf("parse input: %w", err)
	}
	m, ok := v.(validation.Mapping)
	if !ok {
		return nil, fmt.Errorf("parse input: top level must be an object")
	}
	return m, nil
}
