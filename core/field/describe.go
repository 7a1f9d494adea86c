package field

import (
	"fmt"
	"strconv"
	"strings"
)

// placeholder stands in for operands the user has not filled in yet.
const placeholder = "?"

// Describe renders a short human-readable summary of a definition's formula,
// e.g. "days between orderDate and dispatchDate". It tolerates partially
// filled definitions: missing operands render as a placeholder token, and it
// never panics. Purely descriptive; evaluation does not use it.
func Describe(def *Definition) string {
	if def == nil {
		return ""
	}
	if def.Kind != KindCalculated {
		return "stored value"
	}
	if def.Calc == nil {
		return placeholder
	}

	c := def.Calc
	switch c.Op {
	case CalcOpDateDiff:
		unit := c.unitLabel()
		from, to := placeholder, placeholder
		if c.DateDiffCalc != nil {
			if c.FromField != "" {
				from = c.FromField
			}
			if c.ToField != "" {
				to = c.ToField
			}
		}
		return fmt.Sprintf("%s between %s and %s", unit, from, to)
	case CalcOpArith:
		left, op, right := placeholder, placeholder, placeholder
		if c.ArithCalc != nil {
			left = describeOperand(c.Left)
			right = describeOperand(c.Right)
			if c.Operator != "" {
				op = string(c.Operator)
			}
		}
		return fmt.Sprintf("%s %s %s", left, op, right)
	case CalcOpConcat:
		if c.ConcatCalc == nil || len(c.Parts) == 0 {
			return "join()"
		}
		parts := make([]string, len(c.Parts))
		for i, part := range c.Parts {
			parts[i] = describeOperand(part)
		}
		return "join(" + strings.Join(parts, ", ") + ")"
	default:
		return string(c.Op)
	}
}

func (c *Calc) unitLabel() string {
	if c.DateDiffCalc != nil && c.Unit == UnitHours {
		return string(UnitHours)
	}
	return string(UnitDays)
}

func describeOperand(o Operand) string {
	switch o.Type {
	case OperandField:
		if key, ok := o.Key(); ok {
			return key
		}
		return placeholder
	case OperandConst:
		if o.Value == nil {
			return placeholder
		}
		if s, ok := o.Value.(string); ok {
			return strconv.Quote(s)
		}
		return fmt.Sprintf("%v", o.Value)
	default:
		return placeholder
	}
}
