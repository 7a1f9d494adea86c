// The fluent builder is the programmatic counterpart of the authoring form:
// it assembles a Definition step by step and validates it on Build.
package field

import (
	"errors"
	"fmt"
)

// ErrInvalidDefinition is returned when a built or submitted definition fails
// structural validation.
var ErrInvalidDefinition = errors.New("invalid field definition")

// Builder provides a fluent API for constructing field definitions.
type Builder struct {
	def Definition
}

// NewDefinition creates a builder for a field with the given key. The field
// starts as a raw string column from the user source; the formula setters
// switch it to calculated.
func NewDefinition(key string) *Builder {
	return &Builder{
		def: Definition{
			Key:    key,
			Kind:   KindRaw,
			Type:   DataTypeString,
			Source: SourceUser,
		},
	}
}

// Label sets the display name.
func (b *Builder) Label(label string) *Builder {
	b.def.Label = label
	return b
}

// String marks the field's data type as string.
func (b *Builder) String() *Builder {
	b.def.Type = DataTypeString
	return b
}

// Number marks the field's data type as number.
func (b *Builder) Number() *Builder {
	b.def.Type = DataTypeNumber
	return b
}

// Date marks the field's data type as date.
func (b *Builder) Date() *Builder {
	b.def.Type = DataTypeDate
	return b
}

// Default sets the value used when a raw field is absent from a row.
func (b *Builder) Default(v any) *Builder {
	b.def.Default = v
	return b
}

// System marks the definition as built-in. Built-in fields cannot be removed
// from a registry.
func (b *Builder) System() *Builder {
	b.def.Source = SourceSystem
	return b
}

// DateDiff turns the field into a calculated date-difference column.
func (b *Builder) DateDiff(fromField, toField string, unit DateUnit) *Builder {
	b.def.Kind = KindCalculated
	b.def.Calc = DateDiff(fromField, toField, unit)
	return b
}

// Arith turns the field into a calculated binary-arithmetic column.
func (b *Builder) Arith(left Operand, operator Operator, right Operand) *Builder {
	b.def.Kind = KindCalculated
	b.def.Calc = Arith(left, operator, right)
	return b
}

// Concat turns the field into a calculated string-join column.
func (b *Builder) Concat(parts ...Operand) *Builder {
	b.def.Kind = KindCalculated
	b.def.Calc = Concat(parts...)
	return b
}

// Build validates the assembled definition and returns it. The builder can be
// reused after Build; the returned definition is a copy.
func (b *Builder) Build() (*Definition, error) {
	def := b.def
	if result := def.Validate(); !result.Valid {
		return nil, fmt.Errorf("%w: %s", ErrInvalidDefinition, result.Issues[0].Message)
	}
	return &def, nil
}
