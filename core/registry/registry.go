// Package registry maintains the ordered union of built-in and user field
// definitions and the set of keys selected for display. User mutations are
// persisted through an injected FieldStore and announced on an event bus.
package registry

import (
	"errors"
	"fmt"
	"sync"

	"github.com/asaidimu/go-events"
	"github.com/asaidimu/go-fieldset/core/field"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	// ErrDuplicateKey is returned by Add when the key already exists in the
	// union of built-in and user fields.
	ErrDuplicateKey = errors.New("field key already exists")
	// ErrFieldNotFound is returned when an operation names an unknown key.
	ErrFieldNotFound = errors.New("field not found")
	// ErrBuiltinField is returned by Remove for system-sourced definitions.
	ErrBuiltinField = errors.New("built-in fields cannot be removed")
)

// Registry holds the active field set. Field list order, not selection order,
// determines column order everywhere downstream.
type Registry struct {
	mu            sync.RWMutex
	fields        []*field.Definition // builtins first, then user fields, in declared order
	selected      map[string]struct{}
	store         FieldStore
	bus           *events.TypedEventBus[FieldEvent]
	subscriptions map[string]*SubscriptionInfo
	logger        *zap.Logger
}

// NewRegistry creates a registry seeded with the built-in definitions, then
// loads user definitions and the selection from the store. A stored field
// whose key collides with a builtin is skipped with a warning rather than
// failing startup. When the store holds no selection, every field starts
// selected.
func NewRegistry(builtins []*field.Definition, store FieldStore, logger *zap.Logger) (*Registry, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	bus, err := events.NewTypedEventBus[FieldEvent](events.DefaultConfig())
	if err != nil {
		return nil, fmt.Errorf("could not initialize event bus: %w", err)
	}

	r := &Registry{
		selected:      make(map[string]struct{}),
		store:         store,
		bus:           bus,
		subscriptions: map[string]*SubscriptionInfo{},
		logger:        logger,
	}

	seen := make(map[string]struct{}, len(builtins))
	for _, def := range builtins {
		if result := def.Validate(); !result.Valid {
			return nil, fmt.Errorf("%w: built-in %q: %s", field.ErrInvalidDefinition, def.Key, result.Issues[0].Message)
		}
		if _, ok := seen[def.Key]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateKey, def.Key)
		}
		seen[def.Key] = struct{}{}
		builtin := *def
		builtin.Source = field.SourceSystem
		r.fields = append(r.fields, &builtin)
	}

	if store != nil {
		userDefs, selectedKeys, err := store.Load()
		if err != nil {
			return nil, fmt.Errorf("failed to load user fields: %w", err)
		}
		for _, def := range userDefs {
			if _, ok := seen[def.Key]; ok {
				logger.Warn("Skipping stored field that shadows an existing key", zap.String("key", def.Key))
				continue
			}
			seen[def.Key] = struct{}{}
			stored := *def
			stored.Source = field.SourceUser
			r.fields = append(r.fields, &stored)
		}
		for _, key := range selectedKeys {
			if _, ok := seen[key]; ok {
				r.selected[key] = struct{}{}
			}
		}
	}

	if len(r.selected) == 0 {
		for _, def := range r.fields {
			r.selected[def.Key] = struct{}{}
		}
	}

	return r, nil
}

// Add validates and appends a user-defined field. The new field is selected
// immediately. On any failure the field list is unchanged and a
// field:add:failed event is emitted.
func (r *Registry) Add(def *field.Definition) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if def == nil {
		return fmt.Errorf("%w: nil definition", field.ErrInvalidDefinition)
	}
	if result := def.Validate(); !result.Valid {
		err := fmt.Errorf("%w: %s", field.ErrInvalidDefinition, result.Issues[0].Message)
		r.emitFailure(FieldAddFailed, def.Key, err)
		return err
	}
	if r.index(def.Key) >= 0 {
		err := fmt.Errorf("%w: %s", ErrDuplicateKey, def.Key)
		r.emitFailure(FieldAddFailed, def.Key, err)
		return err
	}

	added := *def
	added.Source = field.SourceUser
	r.fields = append(r.fields, &added)
	r.selected[added.Key] = struct{}{}

	if err := r.save(); err != nil {
		// roll the mutation back so memory and store stay consistent
		r.fields = r.fields[:len(r.fields)-1]
		delete(r.selected, added.Key)
		r.emitFailure(FieldAddFailed, added.Key, err)
		return err
	}

	r.logger.Info("Added user field", zap.String("key", added.Key))
	r.emit(createEvent(FieldAddSuccess, added.Key, &added, nil, nil))
	return nil
}

// Remove deletes a user-defined field and drops its key from the selection
// set. Built-in fields are rejected with ErrBuiltinField.
func (r *Registry) Remove(key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.index(key)
	if idx < 0 {
		err := fmt.Errorf("%w: %s", ErrFieldNotFound, key)
		r.emitFailure(FieldRemoveFailed, key, err)
		return err
	}
	removed := r.fields[idx]
	if removed.Source == field.SourceSystem {
		err := fmt.Errorf("%w: %s", ErrBuiltinField, key)
		r.emitFailure(FieldRemoveFailed, key, err)
		return err
	}

	prevFields := r.fields
	_, wasSelected := r.selected[key]

	fields := make([]*field.Definition, 0, len(r.fields)-1)
	fields = append(fields, r.fields[:idx]...)
	fields = append(fields, r.fields[idx+1:]...)
	r.fields = fields
	delete(r.selected, key)

	if err := r.save(); err != nil {
		r.fields = prevFields
		if wasSelected {
			r.selected[key] = struct{}{}
		}
		r.emitFailure(FieldRemoveFailed, key, err)
		return err
	}

	r.logger.Info("Removed user field", zap.String("key", key))
	r.emit(createEvent(FieldRemoveSuccess, key, removed, nil, nil))
	return nil
}

// ToggleSelection flips the key's membership in the selection set and returns
// the new state. The field list itself is never touched.
func (r *Registry) ToggleSelection(key string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.index(key) < 0 {
		return false, fmt.Errorf("%w: %s", ErrFieldNotFound, key)
	}

	_, wasSelected := r.selected[key]
	if wasSelected {
		delete(r.selected, key)
	} else {
		r.selected[key] = struct{}{}
	}

	if err := r.save(); err != nil {
		if wasSelected {
			r.selected[key] = struct{}{}
		} else {
			delete(r.selected, key)
		}
		return wasSelected, err
	}

	nowSelected := !wasSelected
	r.emit(createEvent(SelectionToggled, key, nil, &nowSelected, nil))
	return nowSelected, nil
}

// Fields returns the active definitions in declared order. The slice is a
// copy; the definitions themselves are treated as immutable.
func (r *Registry) Fields() []*field.Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]*field.Definition(nil), r.fields...)
}

// Field looks up a definition by key.
func (r *Registry) Field(key string) (*field.Definition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	idx := r.index(key)
	if idx < 0 {
		return nil, false
	}
	return r.fields[idx], true
}

// Selected returns a copy of the selection set.
func (r *Registry) Selected() map[string]struct{} {
	r.mu.RLock()
	defer r.mu.RUnlock()
	selected := make(map[string]struct{}, len(r.selected))
	for key := range r.selected {
		selected[key] = struct{}{}
	}
	return selected
}

// IsSelected reports whether the key is currently selected for display.
func (r *Registry) IsSelected(key string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.selected[key]
	return ok
}

// RegisterSubscription subscribes a callback to a registry event and returns
// an identifier for later unregistration.
func (r *Registry) RegisterSubscription(options RegisterSubscriptionOptions) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	unsubscribe := r.bus.Subscribe(string(options.Event), options.Callback)
	id := uuid.New().String()
	r.subscriptions[id] = &SubscriptionInfo{
		Event:       options.Event,
		Label:       options.Label,
		Description: options.Description,
		Unsubscribe: unsubscribe,
	}
	return id
}

// UnregisterSubscription removes a subscription by its identifier.
func (r *Registry) UnregisterSubscription(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if info := r.subscriptions[id]; info != nil {
		info.Unsubscribe()
		delete(r.subscriptions, id)
	}
}

// index expects the caller to hold the lock.
func (r *Registry) index(key string) int {
	for i, def := range r.fields {
		if def.Key == key {
			return i
		}
	}
	return -1
}

// save persists the user-defined subset and the selection, preserving field
// list order. Callers hold the lock.
func (r *Registry) save() error {
	if r.store == nil {
		return nil
	}

	var userDefs []*field.Definition
	selected := make([]string, 0, len(r.selected))
	for _, def := range r.fields {
		if def.Source == field.SourceUser {
			userDefs = append(userDefs, def)
		}
		if _, ok := r.selected[def.Key]; ok {
			selected = append(selected, def.Key)
		}
	}

	if err := r.store.Save(userDefs, selected); err != nil {
		return fmt.Errorf("failed to persist user fields: %w", err)
	}
	return nil
}

func (r *Registry) emit(event FieldEvent) {
	if r.bus != nil {
		r.bus.Emit(string(event.Type), event)
	}
}

func (r *Registry) emitFailure(eventType FieldEventType, key string, err error) {
	msg := err.Error()
	r.emit(createEvent(eventType, key, nil, nil, &msg))
}
