// Package qrtypes describes the QR content types a wizard can create and the
// fields each one collects on the content step.
package qrtypes

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// FieldType is how a field is asked for.
type FieldType string

const (
	FieldBoolean FieldType = "boolean"
	FieldText    FieldType = "text"
	FieldChoice  FieldType = "choice"
)

var ErrUnknownType = errors.New("unknown qr type")

//go:embed types.yaml
var builtin []byte

type Field struct {
	ID       string    `yaml:"id" json:"id"`
	Name     string    `yaml:"name" json:"name"`
	Type     FieldType `yaml:"type" json:"type"`
	Required bool      `yaml:"required" json:"required"`
	Default  any       `yaml:"default,omitempty" json:"default,omitempty"`
	Choices  []Choice  `yaml:"choices,omitempty" json:"choices,omitempty"`
}

type Choice struct {
	Name  string `yaml:"name" json:"name"`
	Value string `yaml:"value" json:"value"`
}

type Type struct {
	ID          string  `yaml:"id" json:"id"`
	Name        string  `yaml:"name" json:"name"`
	Description string  `yaml:"description" json:"description"`
	Fields      []Field `yaml:"fields" json:"fields"`
}

type registryFile struct {
	Types []Type `yaml:"types"`
}

// Registry is an ordered, read-only set of types.
type Registry struct {
	types []Type
	byID  map[string]int
}

// Builtin returns the registry compiled into the binary. A broken built-in
// definition is a programming error.
func Builtin() *Registry {
	r, err := Parse(builtin)
	if err != nil {
		panic(fmt.Sprintf("qrtypes: built-in registry: %v", err))
	}
	return r
}

// LoadFile reads a registry from a YAML file.
func LoadFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("qr types: read %s: %w", path, err)
	}
	r, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("qr types: %s: %w", path, err)
	}
	return r, nil
}

// Parse decodes and checks a registry definition. Unknown keys are rejected.
func Parse(data []byte) (*Registry, error) {
	var file registryFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	if len(file.Types) == 0 {
		return nil, errors.New("no types defined")
	}

	r := &Registry{byID: make(map[string]int, len(file.Types))}
	for _, t := range file.Types {
		t.ID = strings.TrimSpace(t.ID)
		if t.ID == "" {
			return nil, errors.New("type without id")
		}
		if _, dup := r.byID[t.ID]; dup {
			return nil, fmt.Errorf("duplicate type %q", t.ID)
		}
		if err := checkFields(t); err != nil {
			return nil, err
		}
		if t.Name == "" {
			t.Name = t.ID
		}
		r.byID[t.ID] = len(r.types)
		r.types = append(r.types, t)
	}
	return r, nil
}

func checkFields(t Type) error {
	seen := map[string]bool{}
	for _, f := range t.Fields {
		if f.ID == "" {
			return fmt.Errorf("type %q: field without id", t.ID)
		}
		if seen[f.ID] {
			return fmt.Errorf("type %q: duplicate field %q", t.ID, f.ID)
		}
		seen[f.ID] = true

		switch f.Type {
		case FieldBoolean, FieldText:
		case FieldChoice:
			if len(f.Choices) == 0 {
				return fmt.Errorf("type %q: choice field %q has no choices", t.ID, f.ID)
			}
		default:
			return fmt.Errorf("type %q: field %q has unsupported type %q", t.ID, f.ID, f.Type)
		}
	}
	return nil
}

// Get looks up a type by id.
func (r *Registry) Get(id string) (Type, error) {
	i, ok := r.byID[id]
	if !ok {
		return Type{}, fmt.Errorf("%w: %s", ErrUnknownType, id)
	}
	return r.types[i], nil
}

// List returns every type in definition order.
func (r *Registry) List() []Type {
	return slices.Clone(r.types)
}

// IDs returns the type ids in definition order.
func (r *Registry) IDs() []string {
	ids := make([]string, len(r.types))
	for i, t := range r.types {
		ids[i] = t.ID
	}
	return ids
}

// Field looks up one of the type's fields by id.
func (t Type) Field(id string) (Field, bool) {
	for _, f := range t.Fields {
		if f.ID == id {
			return f, true
		}
	}
	return Field{}, false
}
