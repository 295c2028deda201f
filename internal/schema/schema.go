// Package schema describes the request parameters of every gateway operation
// as JSON Schema, reflected from the parameter types.
package schema

import (
	"fmt"
	"sort"
	"sync"

	"github.com/invopop/jsonschema"
)

// Entry is the parameter schema of one operation.
type Entry struct {
	Operation   string             `json:"operation"`
	Description string             `json:"description"`
	Schema      *jsonschema.Schema `json:"schema"`
}

var (
	registry = make(map[string]*Entry)
	mu       sync.RWMutex
)

// Reflect builds an inline schema for v. Fields without omitempty are
// required and unknown properties are rejected.
func Reflect(v any) *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
		Anonymous:                 true,
	}
	return reflector.Reflect(v)
}

// Register reflects params and stores it under operation.
func Register(operation, description string, params any) {
	s := Reflect(params)
	s.Version = ""
	s.Title = operation
	s.Description = description

	mu.Lock()
	defer mu.Unlock()
	registry[operation] = &Entry{Operation: operation, Description: description, Schema: s}
}

// Get retrieves an operation's entry.
func Get(operation string) (*Entry, error) {
	mu.RLock()
	defer mu.RUnlock()
	e, ok := registry[operation]
	if !ok {
		return nil, fmt.Errorf("schema %q not found", operation)
	}
	return e, nil
}

// List returns all registered operation names, sorted alphabetically.
func List() []string {
	mu.RLock()
	defer mu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
