// Package sqlite provides a concrete implementation of the registry's
// FieldStore port for SQLite databases. User field definitions are stored as
// their plain JSON serialization alongside the selection key set.
package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/asaidimu/go-fieldset/core/field"
	"github.com/asaidimu/go-fieldset/core/registry"
	"go.uber.org/zap"
)

const createTablesSQL = `
CREATE TABLE IF NOT EXISTS user_fields (
	position   INTEGER NOT NULL,
	key        TEXT PRIMARY KEY,
	definition TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS field_selection (
	key TEXT PRIMARY KEY
);`

// FieldStore persists user field definitions and the selection set in two
// SQLite tables.
type FieldStore struct {
	db     *sql.DB
	logger *zap.Logger
}

// Ensure FieldStore implements the registry.FieldStore port.
var _ registry.FieldStore = (*FieldStore)(nil)

// NewFieldStore creates a store over the given connection, creating the
// backing tables if they do not exist.
func NewFieldStore(db *sql.DB, logger *zap.Logger) (*FieldStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if _, err := db.Exec(createTablesSQL); err != nil {
		return nil, fmt.Errorf("failed to create field tables: %w", err)
	}
	return &FieldStore{db: db, logger: logger}, nil
}

// Load reads the stored user definitions in saved order and the selected
// keys.
func (s *FieldStore) Load() ([]*field.Definition, []string, error) {
	rows, err := s.db.Query(`SELECT definition FROM user_fields ORDER BY position`)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read user fields: %w", err)
	}
	defer rows.Close()

	var defs []*field.Definition
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, nil, fmt.Errorf("failed to scan user field: %w", err)
		}
		var def field.Definition
		if err := json.Unmarshal([]byte(raw), &def); err != nil {
			return nil, nil, fmt.Errorf("failed to decode stored field definition: %w", err)
		}
		defs = append(defs, &def)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("failed to iterate user fields: %w", err)
	}

	selRows, err := s.db.Query(`SELECT key FROM field_selection`)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read field selection: %w", err)
	}
	defer selRows.Close()

	var selected []string
	for selRows.Next() {
		var key string
		if err := selRows.Scan(&key); err != nil {
			return nil, nil, fmt.Errorf("failed to scan selection key: %w", err)
		}
		selected = append(selected, key)
	}
	if err := selRows.Err(); err != nil {
		return nil, nil, fmt.Errorf("failed to iterate field selection: %w", err)
	}

	s.logger.Debug("Loaded user fields", zap.Int("fields", len(defs)), zap.Int("selected", len(selected)))
	return defs, selected, nil
}

// Save replaces the stored definitions and selection inside one transaction.
func (s *FieldStore) Save(defs []*field.Definition, selected []string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin field save: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`DELETE FROM user_fields`); err != nil {
		return fmt.Errorf("failed to clear user fields: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM field_selection`); err != nil {
		return fmt.Errorf("failed to clear field selection: %w", err)
	}

	for i, def := range defs {
		raw, err := json.Marshal(def)
		if err != nil {
			return fmt.Errorf("failed to encode field %q: %w", def.Key, err)
		}
		if _, err := tx.Exec(`INSERT INTO user_fields (position, key, definition) VALUES (?, ?, ?)`, i, def.Key, string(raw)); err != nil {
			return fmt.Errorf("failed to store field %q: %w", def.Key, err)
		}
	}
	for _, key := range selected {
		if _, err := tx.Exec(`INSERT INTO field_selection (key) VALUES (?)`, key); err != nil {
			return fmt.Errorf("failed to store selection key %q: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit field save: %w", err)
	}
	s.logger.Debug("Saved user fields", zap.Int("fields", len(defs)), zap.Int("selected", len(selected)))
	return nil
}
