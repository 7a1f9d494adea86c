package field

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilder_RawField(t *testing.T) {
	def, err := NewDefinition("remarks").
		Label("Remarks").
		Default("n/a").
		Build()
	require.NoError(t, err)

	assert.Equal(t, "remarks", def.Key)
	assert.Equal(t, "Remarks", def.Label)
	assert.Equal(t, KindRaw, def.Kind)
	assert.Equal(t, DataTypeString, def.Type)
	assert.Equal(t, "n/a", def.Default)
	assert.Equal(t, SourceUser, def.Source)
	assert.Nil(t, def.Calc)
}

func TestBuilder_DateDiffField(t *testing.T) {
	def, err := NewDefinition("leadTime").
		Label("Lead Time (days)").
		Number().
		DateDiff("orderDate", "dispatchDate", UnitDays).
		Build()
	require.NoError(t, err)

	assert.Equal(t, KindCalculated, def.Kind)
	assert.Equal(t, DataTypeNumber, def.Type)
	require.NotNil(t, def.Calc)
	assert.Equal(t, CalcOpDateDiff, def.Calc.Op)
	assert.Equal(t, "orderDate", def.Calc.FromField)
}

func TestBuilder_ArithField(t *testing.T) {
	def, err := NewDefinition("totalValue").
		Label("Total Value").
		Number().
		Arith(FieldRef("qty"), OperatorMultiply, FieldRef("unitPrice")).
		Build()
	require.NoError(t, err)

	require.NotNil(t, def.Calc)
	assert.Equal(t, CalcOpArith, def.Calc.Op)
	assert.Equal(t, OperatorMultiply, def.Calc.Operator)
}

func TestBuilder_ConcatField(t *testing.T) {
	def, err := NewDefinition("title").
		Label("Title").
		Concat(FieldRef("buyerName"), Const(" - "), FieldRef("style")).
		Build()
	require.NoError(t, err)

	require.NotNil(t, def.Calc)
	assert.Equal(t, CalcOpConcat, def.Calc.Op)
	assert.Len(t, def.Calc.Parts, 3)
}

func TestBuilder_System(t *testing.T) {
	def, err := NewDefinition("orderDate").Label("Order Date").Date().System().Build()
	require.NoError(t, err)
	assert.Equal(t, SourceSystem, def.Source)
	assert.Equal(t, DataTypeDate, def.Type)
}

func TestBuilder_InvalidDefinition(t *testing.T) {
	t.Run("missing label", func(t *testing.T) {
		_, err := NewDefinition("x").Build()
		assert.ErrorIs(t, err, ErrInvalidDefinition)
	})

	t.Run("missing key", func(t *testing.T) {
		_, err := NewDefinition("").Label("X").Build()
		assert.ErrorIs(t, err, ErrInvalidDefinition)
	})

	t.Run("bad operator", func(t *testing.T) {
		_, err := NewDefinition("x").Label("X").Arith(Const(1), Operator("^"), Const(2)).Build()
		assert.ErrorIs(t, err, ErrInvalidDefinition)
	})
}

func TestBuilder_ReturnsCopies(t *testing.T) {
	b := NewDefinition("x").Label("First")
	first, err := b.Build()
	require.NoError(t, err)

	second, err := b.Label("Second").Build()
	require.NoError(t, err)

	assert.Equal(t, "First", first.Label)
	assert.Equal(t, "Second", second.Label)
}
