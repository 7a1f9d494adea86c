package field

import "fmt"

func errorIssue(code, message, path string) Issue {
	return Issue{Code: code, Message: message, Path: path, Severity: "error"}
}

// Validate checks a definition for structural problems: missing key or label,
// a calculated field without a formula, a raw field carrying one, and
// malformed formula payloads. Key uniqueness is the registry's concern, not
// validated here.
func (d *Definition) Validate() *ValidationResult {
	var issues []Issue

	if d.Key == "" {
		issues = append(issues, errorIssue("missing-key", "field key is required", "key"))
	}
	if d.Label == "" {
		issues = append(issues, errorIssue("missing-label", "field label is required", "label"))
	}

	switch d.Type {
	case DataTypeString, DataTypeNumber, DataTypeDate:
	default:
		issues = append(issues, errorIssue("invalid-type", fmt.Sprintf("unknown data type %q", d.Type), "dataType"))
	}

	switch d.Kind {
	case KindRaw:
		if d.Calc != nil {
			issues = append(issues, errorIssue("unexpected-calc", "raw fields must not carry a formula", "calc"))
		}
	case KindCalculated:
		if d.Calc == nil {
			issues = append(issues, errorIssue("missing-calc", "calculated fields require a formula", "calc"))
		} else {
			issues = append(issues, d.Calc.validate()...)
		}
	default:
		issues = append(issues, errorIssue("invalid-kind", fmt.Sprintf("unknown field kind %q", d.Kind), "kind"))
	}

	return &ValidationResult{Valid: len(issues) == 0, Issues: issues}
}

func (c *Calc) validate() []Issue {
	var issues []Issue

	switch c.Op {
	case CalcOpDateDiff:
		if c.DateDiffCalc == nil {
			issues = append(issues, errorIssue("missing-payload", "DATE_DIFF formula has no payload", "calc"))
			break
		}
		if c.FromField == "" {
			issues = append(issues, errorIssue("missing-operand", "DATE_DIFF requires a from field", "calc.fromField"))
		}
		if c.ToField == "" {
			issues = append(issues, errorIssue("missing-operand", "DATE_DIFF requires a to field", "calc.toField"))
		}
	case CalcOpArith:
		if c.ArithCalc == nil {
			issues = append(issues, errorIssue("missing-payload", "ARITH formula has no payload", "calc"))
			break
		}
		switch c.Operator {
		case OperatorAdd, OperatorSubtract, OperatorMultiply, OperatorDivide:
		default:
			issues = append(issues, errorIssue("invalid-operator", fmt.Sprintf("unknown arithmetic operator %q", c.Operator), "calc.operator"))
		}
		issues = append(issues, validateOperand(c.Left, "calc.left")...)
		issues = append(issues, validateOperand(c.Right, "calc.right")...)
	case CalcOpConcat:
		if c.ConcatCalc == nil {
			issues = append(issues, errorIssue("missing-payload", "CONCAT formula has no payload", "calc"))
			break
		}
		for i, part := range c.Parts {
			issues = append(issues, validateOperand(part, fmt.Sprintf("calc.parts[%d]", i))...)
		}
	default:
		issues = append(issues, errorIssue("invalid-op", fmt.Sprintf("unknown calc op %q", c.Op), "calc.op"))
	}

	return issues
}

func validateOperand(o Operand, path string) []Issue {
	switch o.Type {
	case OperandField:
		if _, ok := o.Key(); !ok {
			return []Issue{errorIssue("invalid-operand", "field operand requires a non-empty field key", path)}
		}
	case OperandConst:
	default:
		return []Issue{errorIssue("invalid-operand", fmt.Sprintf("unknown operand type %q", o.Type), path)}
	}
	return nil
}
