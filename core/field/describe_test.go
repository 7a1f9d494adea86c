package field

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDescribe(t *testing.T) {
	t.Run("nil definition", func(t *testing.T) {
		assert.Equal(t, "", Describe(nil))
	})

	t.Run("raw field", func(t *testing.T) {
		def := &Definition{Key: "style", Label: "Style", Kind: KindRaw, Type: DataTypeString}
		assert.Equal(t, "stored value", Describe(def))
	})

	t.Run("calculated without formula", func(t *testing.T) {
		def := &Definition{Key: "x", Label: "X", Kind: KindCalculated}
		assert.Equal(t, "?", Describe(def))
	})

	t.Run("date diff", func(t *testing.T) {
		def := &Definition{Kind: KindCalculated, Calc: DateDiff("orderDate", "dispatchDate", UnitDays)}
		assert.Equal(t, "days between orderDate and dispatchDate", Describe(def))
	})

	t.Run("date diff in hours", func(t *testing.T) {
		def := &Definition{Kind: KindCalculated, Calc: DateDiff("start", "end", UnitHours)}
		assert.Equal(t, "hours between start and end", Describe(def))
	})

	t.Run("partial date diff uses placeholders", func(t *testing.T) {
		def := &Definition{Kind: KindCalculated, Calc: DateDiff("orderDate", "", UnitDays)}
		assert.Equal(t, "days between orderDate and ?", Describe(def))
	})

	t.Run("arith", func(t *testing.T) {
		def := &Definition{Kind: KindCalculated, Calc: Arith(FieldRef("qty"), OperatorMultiply, Const(2))}
		assert.Equal(t, "qty * 2", Describe(def))
	})

	t.Run("arith with string constant", func(t *testing.T) {
		def := &Definition{Kind: KindCalculated, Calc: Arith(FieldRef("qty"), OperatorAdd, Const("5"))}
		assert.Equal(t, `qty + "5"`, Describe(def))
	})

	t.Run("partial arith uses placeholders", func(t *testing.T) {
		def := &Definition{Kind: KindCalculated, Calc: Arith(FieldRef(""), Operator(""), Const(nil))}
		assert.Equal(t, "? ? ?", Describe(def))
	})

	t.Run("concat", func(t *testing.T) {
		def := &Definition{Kind: KindCalculated, Calc: Concat(FieldRef("buyerName"), Const(" - "), FieldRef("style"))}
		assert.Equal(t, `join(buyerName, " - ", style)`, Describe(def))
	})

	t.Run("empty concat", func(t *testing.T) {
		def := &Definition{Kind: KindCalculated, Calc: Concat()}
		assert.Equal(t, "join()", Describe(def))
	})

	t.Run("unknown op falls back to the tag", func(t *testing.T) {
		def := &Definition{Kind: KindCalculated, Calc: &Calc{Op: CalcOp("WINDOW")}}
		assert.Equal(t, "WINDOW", Describe(def))
	})
}
