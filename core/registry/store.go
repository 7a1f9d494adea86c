package registry

import "github.com/asaidimu/go-fieldset/core/field"

// FieldStore is the persistence port for user-defined fields. The registry
// loads from it once at construction and saves after every mutation; the
// engine itself has no other I/O.
type FieldStore interface {
	// Load returns the stored user definitions in their saved order, plus the
	// keys of the selected columns.
	Load() ([]*field.Definition, []string, error)
	// Save replaces the stored user definitions and selection.
	Save(defs []*field.Definition, selected []string) error
}

// MemoryStore is an in-process FieldStore for tests and demos.
type MemoryStore struct {
	defs     []*field.Definition
	selected []string
}

// NewMemoryStore creates an empty in-process store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Load returns copies of the stored slices.
func (s *MemoryStore) Load() ([]*field.Definition, []string, error) {
	return append([]*field.Definition(nil), s.defs...), append([]string(nil), s.selected...), nil
}

// Save replaces the stored state.
func (s *MemoryStore) Save(defs []*field.Definition, selected []string) error {
	s.defs = append([]*field.Definition(nil), defs...)
	s.selected = append([]string(nil), selected...)
	return nil
}
