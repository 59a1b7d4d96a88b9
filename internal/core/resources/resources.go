// Package resources holds the request descriptors of the timeline API.
package resources

import (
	"embed"
	"fmt"
	"sort"

	"github.com/bshishov/timelinewiki/internal/core/schemadef"
	"github.com/bshishov/timelinewiki/internal/core/validation"
)

const (
	RealmCreate = "realm_create"
	RealmUpdate = "realm_update"
	EventCreate = "event_create"
	EventUpdate = "event_update"
	Login       = "login"
)

var required = []string{RealmCreate, RealmUpdate, EventCreate, EventUpdate, Login}

//go:embed schemas/*.yaml
var schemaFiles embed.FS

// Registry maps descriptor names to compiled descriptors.
type Registry struct {
	descs map[string]*validation.Descriptor
	opts  []validation.SchemaOption
}

// Load compiles the embedded descriptors. opts are kept and handed to every
// validation run made through the registry.
func Load(opts ...validation.SchemaOption) (*Registry, error) {
	descs, err := schemadef.LoadFS(schemaFiles, "schemas", opts...)
	if err != nil {
		return nil, fmt.Errorf("load descriptors: %w", err)
	}
	for _, name := range required {
		if _, ok := descs[name]; !ok {
			return nil, fmt.Errorf("load descriptors: %q is missing", name)
		}
	}
	return &Registry{descs: descs, opts: opts}, nil
}

func (r *Registry) Get(name string) (*validation.Descriptor, bool) {
	d, ok := r.descs[name]
	return d, ok
}

// Names returns the registered descriptor names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.descs))
	for name := range r.descs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Options returns the schema options the registry was loaded with.
func (r *Registry) Options() []validation.SchemaOption {
	return r.opts
}

// Validate runs validation.ValidateSchema with the named descriptor.
func (r *Registry) Validate(name string, input validation.Mapping) (validation.Mapping, error) {
	desc, ok := r.descs[name]
	if !ok {
		return nil, fmt.Errorf("unknown descriptor %q", name)
	}
	return validation.ValidateSchema(desc, input, r.opts...)
}
