// Package field defines the data model for user-defined table columns: field
// definitions, the tagged formula variants that drive calculated columns, and
// the row representation shared by the evaluator and materializer.
package field

import (
	"encoding/json"
	"fmt"
	"maps"
)

// DataType represents the basic value types a field can carry. It drives
// formatting and raw-field defaults only; it never constrains what a formula
// may compute.
type DataType string

const (
	DataTypeString DataType = "string" // Text data
	DataTypeNumber DataType = "number" // Numeric data
	DataTypeDate   DataType = "date"   // ISO calendar dates (YYYY-MM-DD)
)

// Kind distinguishes stored columns from derived ones.
type Kind string

const (
	KindRaw        Kind = "raw"        // Value is read directly off the source row
	KindCalculated Kind = "calculated" // Value is derived from other fields via a formula
)

// Source records where a definition came from. Built-in fields cannot be
// removed; user fields can.
type Source string

const (
	SourceSystem Source = "system"
	SourceUser   Source = "user"
)

// DateUnit selects the unit for a date-difference formula. Unrecognized units
// fall back to days.
type DateUnit string

const (
	UnitDays  DateUnit = "days"
	UnitHours DateUnit = "hours"
)

// Operator is the binary arithmetic operator of an ARITH formula.
type Operator string

const (
	OperatorAdd      Operator = "+"
	OperatorSubtract Operator = "-"
	OperatorMultiply Operator = "*"
	OperatorDivide   Operator = "/"
)

// CalcOp tags the formula variants.
type CalcOp string

const (
	CalcOpDateDiff CalcOp = "DATE_DIFF"
	CalcOpArith    CalcOp = "ARITH"
	CalcOpConcat   CalcOp = "CONCAT"
)

// OperandType tags the two operand shapes.
type OperandType string

const (
	OperandField OperandType = "field" // Value names another field's key on the same row
	OperandConst OperandType = "const" // Value is a literal carried verbatim
)

// Operand is either a reference to another field's value on the current row
// or a literal constant.
type Operand struct {
	Type  OperandType `json:"type"`
	Value any         `json:"value"`
}

// FieldRef builds an operand that reads the named key off the current row.
func FieldRef(key string) Operand {
	return Operand{Type: OperandField, Value: key}
}

// Const builds a literal operand.
func Const(v any) Operand {
	return Operand{Type: OperandConst, Value: v}
}

// Key returns the field key a "field" operand names, or false for constants
// and malformed operands.
func (o Operand) Key() (string, bool) {
	if o.Type != OperandField {
		return "", false
	}
	key, ok := o.Value.(string)
	return key, ok && key != ""
}

// DateDiffCalc is the payload of a DATE_DIFF formula: the difference between
// two date-valued fields on the same row, expressed in Unit.
type DateDiffCalc struct {
	FromField string   `json:"fromField"`
	ToField   string   `json:"toField"`
	Unit      DateUnit `json:"unit,omitempty"`
}

// ArithCalc is the payload of an ARITH formula: binary arithmetic over two
// operands.
type ArithCalc struct {
	Left     Operand  `json:"left"`
	Right    Operand  `json:"right"`
	Operator Operator `json:"operator"`
}

// ConcatCalc is the payload of a CONCAT formula: a string-join of the parts
// in order, with no separator.
type ConcatCalc struct {
	Parts []Operand `json:"parts"`
}

// Calc is the discriminated union over the three formula shapes. The 'Op'
// field selects which payload is populated; custom JSON methods keep the wire
// form flat ({"op": "...", ...payload}) and enforce the tag on decode.
type Calc struct {
	Op CalcOp `json:"op"`

	*DateDiffCalc
	*ArithCalc
	*ConcatCalc
}

// DateDiff builds a DATE_DIFF formula.
func DateDiff(fromField, toField string, unit DateUnit) *Calc {
	return &Calc{
		Op:           CalcOpDateDiff,
		DateDiffCalc: &DateDiffCalc{FromField: fromField, ToField: toField, Unit: unit},
	}
}

// Arith builds an ARITH formula.
func Arith(left Operand, operator Operator, right Operand) *Calc {
	return &Calc{
		Op:        CalcOpArith,
		ArithCalc: &ArithCalc{Left: left, Right: right, Operator: operator},
	}
}

// Concat builds a CONCAT formula.
func Concat(parts ...Operand) *Calc {
	return &Calc{
		Op:         CalcOpConcat,
		ConcatCalc: &ConcatCalc{Parts: parts},
	}
}

// UnmarshalJSON implements the json.Unmarshaler interface for Calc. It reads
// the 'op' tag and then unmarshals the remaining data into the matching
// payload struct.
func (c *Calc) UnmarshalJSON(data []byte) error {
	var common struct {
		Op CalcOp `json:"op"`
	}
	if err := json.Unmarshal(data, &common); err != nil {
		return err
	}
	c.Op = common.Op

	switch c.Op {
	case CalcOpDateDiff:
		c.DateDiffCalc = &DateDiffCalc{}
		return json.Unmarshal(data, c.DateDiffCalc)
	case CalcOpArith:
		c.ArithCalc = &ArithCalc{}
		return json.Unmarshal(data, c.ArithCalc)
	case CalcOpConcat:
		c.ConcatCalc = &ConcatCalc{}
		return json.Unmarshal(data, c.ConcatCalc)
	default:
		return fmt.Errorf("unknown calc op: %s", c.Op)
	}
}

// MarshalJSON implements the json.Marshaler interface for Calc. Only the tag
// and the active payload are emitted.
func (c Calc) MarshalJSON() ([]byte, error) {
	m := make(map[string]any)
	m["op"] = c.Op

	var payloadBytes []byte
	var err error

	switch c.Op {
	case CalcOpDateDiff:
		if c.DateDiffCalc != nil {
			payloadBytes, err = json.Marshal(c.DateDiffCalc)
		}
	case CalcOpArith:
		if c.ArithCalc != nil {
			payloadBytes, err = json.Marshal(c.ArithCalc)
		}
	case CalcOpConcat:
		if c.ConcatCalc != nil {
			payloadBytes, err = json.Marshal(c.ConcatCalc)
		}
	default:
		return json.Marshal(m)
	}

	if err != nil {
		return nil, err
	}

	if payloadBytes != nil {
		var payloadMap map[string]any
		if err := json.Unmarshal(payloadBytes, &payloadMap); err != nil {
			return nil, err
		}
		maps.Copy(m, payloadMap)
	}

	return json.Marshal(m)
}

// Definition describes a single column, raw or calculated. Definitions are
// never mutated after creation; edits are modeled as remove-then-add.
type Definition struct {
	// Key is the row lookup key and the column identity. Unique across the
	// active field set.
	Key string `json:"key"`
	// Label is the display name. Not required to be unique.
	Label string `json:"label"`
	Kind  Kind   `json:"kind"`
	// Type drives formatting and raw-field default coercion only. A formula's
	// result is never coerced to it.
	Type DataType `json:"dataType"`
	// Default is used only when Kind is raw and the row lacks the key.
	Default any `json:"defaultValue,omitempty"`
	// Calc is present exactly when Kind is calculated.
	Calc   *Calc  `json:"calc,omitempty"`
	Source Source `json:"source"`
}

// Row is a mapping from field key to value. Raw rows originate externally and
// are never mutated by the engine; the materializer produces new rows.
type Row map[string]any

// Issue represents a validation problem with a field definition.
type Issue struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Path     string `json:"path,omitempty"`
	Severity string `json:"severity,omitempty"` // e.g., "error", "warning"
}

// ValidationResult is the outcome of validating a field definition.
type ValidationResult struct {
	Valid  bool    `json:"valid"`
	Issues []Issue `json:"issues"`
}
