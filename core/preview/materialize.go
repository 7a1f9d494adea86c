// Package preview materializes the full table: it maps the raw row
// collection through the active field set, resolving raw defaults and
// calculated values, and projects the result onto the export boundary.
package preview

import (
	"maps"

	"github.com/asaidimu/go-fieldset/core/eval"
	"github.com/asaidimu/go-fieldset/core/field"
	"go.uber.org/zap"
)

// Materializer turns raw rows plus field definitions into preview rows.
type Materializer struct {
	evaluator *eval.Evaluator
	logger    *zap.Logger
}

// NewMaterializer creates a new Materializer instance.
func NewMaterializer(logger *zap.Logger) *Materializer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Materializer{
		evaluator: eval.NewEvaluator(logger),
		logger:    logger,
	}
}

// Materialize resolves every definition against every row. The transform is
// pure and order-preserving: the output has the same cardinality and order as
// the input, input rows are never mutated, and repeated calls with the same
// inputs produce structurally equal outputs.
//
// Calculated fields are evaluated in declared order and written onto the
// working row as they are produced, so a formula can read the value of any
// field declared before it. A formula referencing a calculated field declared
// later sees only the raw row at that point; the missing value flows through
// the usual null-propagation rules (nil for DATE_DIFF and ARITH, empty string
// for CONCAT parts).
func (m *Materializer) Materialize(rows []field.Row, defs []*field.Definition) []field.Row {
	out := make([]field.Row, len(rows))
	for i, raw := range rows {
		out[i] = m.materializeRow(raw, defs)
	}
	return out
}

func (m *Materializer) materializeRow(raw field.Row, defs []*field.Definition) field.Row {
	row := make(field.Row, len(raw)+len(defs))
	maps.Copy(row, raw)

	for _, def := range defs {
		switch def.Kind {
		case field.KindCalculated:
			value, err := m.evaluator.Evaluate(row, def)
			if err != nil {
				// a malformed definition renders as a blank column
				m.logger.Warn("Field evaluation rejected", zap.String("key", def.Key), zap.Error(err))
				value = nil
			}
			row[def.Key] = value
		case field.KindRaw:
			if _, ok := row[def.Key]; !ok {
				row[def.Key] = def.Default
			}
		}
	}
	return row
}

// Column pairs a field key with its display label for the export boundary.
type Column struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

// ExportRow maps a column's display label to its rendered cell value. This is
// the engine's whole contract with the export encoders.
type ExportRow map[string]string

// Columns returns the export column set: field-list order restricted to the
// selected keys. Selection membership decides presence; list order decides
// column order.
func Columns(defs []*field.Definition, selected map[string]struct{}) []Column {
	columns := make([]Column, 0, len(selected))
	for _, def := range defs {
		if _, ok := selected[def.Key]; ok {
			columns = append(columns, Column{Key: def.Key, Label: def.Label})
		}
	}
	return columns
}

// ExportRows projects materialized preview rows onto the export boundary:
// one record per row, keyed by display label, values stringified for
// display. Nil cells render as empty strings.
func ExportRows(rows []field.Row, columns []Column) []ExportRow {
	out := make([]ExportRow, len(rows))
	for i, row := range rows {
		record := make(ExportRow, len(columns))
		for _, column := range columns {
			record[column.Label] = eval.DisplayString(row[column.Key])
		}
		out[i] = record
	}
	return out
}
