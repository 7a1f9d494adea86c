// Package eval implements the expression evaluator: a pure function from a
// row and one calculated field definition to a cell value. Malformed data
// (unparsable dates, non-numeric operands, division by zero) propagates as a
// nil cell, never as an error, so one bad row cannot abort a whole table.
package eval

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/asaidimu/go-fieldset/core/field"
	"go.uber.org/zap"
)

// ErrNotCalculated is returned when Evaluate is handed a definition whose
// kind is not calculated. Raw fields are resolved by the materializer, never
// computed here.
var ErrNotCalculated = errors.New("definition is not a calculated field")

const (
	millisPerHour = 3_600_000
	millisPerDay  = 86_400_000
)

// Evaluator resolves calculated field definitions against rows.
type Evaluator struct {
	logger *zap.Logger
}

// NewEvaluator creates a new Evaluator instance.
func NewEvaluator(logger *zap.Logger) *Evaluator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Evaluator{logger: logger}
}

// Evaluate computes the value of one calculated field for the given row. Any
// field the formula references must already be present on the row; the
// materializer guarantees that for fields declared earlier in the list.
//
// The only error conditions are misuse: a nil or non-calculated definition.
// Everything the data can get wrong comes back as a nil value.
func (e *Evaluator) Evaluate(row field.Row, def *field.Definition) (any, error) {
	if def == nil {
		return nil, errors.New("nil field definition")
	}
	if def.Kind != field.KindCalculated {
		return nil, fmt.Errorf("%w: %s", ErrNotCalculated, def.Key)
	}
	if def.Calc == nil {
		return nil, fmt.Errorf("calculated field %q has no formula", def.Key)
	}

	switch def.Calc.Op {
	case field.CalcOpDateDiff:
		return e.dateDiff(row, def.Calc.DateDiffCalc), nil
	case field.CalcOpArith:
		return e.arith(row, def.Calc.ArithCalc), nil
	case field.CalcOpConcat:
		return e.concat(row, def.Calc.ConcatCalc), nil
	default:
		e.logger.Debug("Unknown calc op, propagating null", zap.String("field", def.Key), zap.String("op", string(def.Calc.Op)))
		return nil, nil
	}
}

// dateDiff computes toField - fromField in the requested unit, rounding the
// quotient half away from zero. Sign is preserved. Either endpoint failing to
// parse yields nil.
func (e *Evaluator) dateDiff(row field.Row, c *field.DateDiffCalc) any {
	if c == nil {
		return nil
	}
	from, ok := parseDate(row[c.FromField])
	if !ok {
		return nil
	}
	to, ok := parseDate(row[c.ToField])
	if !ok {
		return nil
	}

	millis := to.Sub(from).Milliseconds()
	var unit float64
	switch c.Unit {
	case field.UnitHours:
		unit = millisPerHour
	default:
		// days is both the default and the fallback for unrecognized units
		unit = millisPerDay
	}
	return int64(math.Round(float64(millis) / unit))
}

// arith applies the operator to both operands resolved as numbers. A
// non-numeric operand, a zero divisor, or an unknown operator yields nil.
func (e *Evaluator) arith(row field.Row, c *field.ArithCalc) any {
	if c == nil {
		return nil
	}
	left, ok := resolveNumber(row, c.Left)
	if !ok {
		return nil
	}
	right, ok := resolveNumber(row, c.Right)
	if !ok {
		return nil
	}

	switch c.Operator {
	case field.OperatorAdd:
		return left + right
	case field.OperatorSubtract:
		return left - right
	case field.OperatorMultiply:
		return left * right
	case field.OperatorDivide:
		if right == 0 {
			return nil
		}
		return left / right
	default:
		e.logger.Debug("Unknown arithmetic operator, propagating null", zap.String("operator", string(c.Operator)))
		return nil
	}
}

// concat joins the parts in order with no separator. Absent fields and nil
// constants contribute the empty string; a missing parts list yields "".
func (e *Evaluator) concat(row field.Row, c *field.ConcatCalc) any {
	if c == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range c.Parts {
		b.WriteString(resolveString(row, part))
	}
	return b.String()
}

func resolveNumber(row field.Row, op field.Operand) (float64, bool) {
	switch op.Type {
	case field.OperandField:
		key, ok := op.Key()
		if !ok {
			return 0, false
		}
		return ToFloat64(row[key])
	case field.OperandConst:
		return ToFloat64(op.Value)
	default:
		return 0, false
	}
}

func resolveString(row field.Row, op field.Operand) string {
	switch op.Type {
	case field.OperandField:
		key, ok := op.Key()
		if !ok {
			return ""
		}
		return DisplayString(row[key])
	case field.OperandConst:
		return DisplayString(op.Value)
	default:
		return ""
	}
}
