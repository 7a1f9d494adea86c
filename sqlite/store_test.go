package sqlite

import (
	"database/sql"
	"testing"

	"github.com/asaidimu/go-fieldset/core/field"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "github.com/mattn/go-sqlite3"
)

func openStore(t *testing.T) *FieldStore {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	store, err := NewFieldStore(db, nil)
	require.NoError(t, err)
	return store
}

func TestFieldStore_EmptyLoad(t *testing.T) {
	store := openStore(t)
	defs, selected, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, defs)
	assert.Empty(t, selected)
}

func TestFieldStore_SaveAndLoad(t *testing.T) {
	store := openStore(t)

	defs := []*field.Definition{
		{
			Key:    "leadTime",
			Label:  "Lead Time (days)",
			Kind:   field.KindCalculated,
			Type:   field.DataTypeNumber,
			Calc:   field.DateDiff("orderDate", "dispatchDate", field.UnitDays),
			Source: field.SourceUser,
		},
		{
			Key:    "title",
			Label:  "Title",
			Kind:   field.KindCalculated,
			Type:   field.DataTypeString,
			Calc:   field.Concat(field.FieldRef("buyerName"), field.Const(" - "), field.FieldRef("style")),
			Source: field.SourceUser,
		},
	}
	require.NoError(t, store.Save(defs, []string{"buyerName", "leadTime"}))

	loadedDefs, loadedSelection, err := store.Load()
	require.NoError(t, err)

	require.Len(t, loadedDefs, 2)
	// saved order survives the round trip
	assert.Equal(t, "leadTime", loadedDefs[0].Key)
	assert.Equal(t, "title", loadedDefs[1].Key)

	require.NotNil(t, loadedDefs[0].Calc)
	require.NotNil(t, loadedDefs[0].Calc.DateDiffCalc)
	assert.Equal(t, "orderDate", loadedDefs[0].Calc.FromField)

	require.NotNil(t, loadedDefs[1].Calc)
	require.NotNil(t, loadedDefs[1].Calc.ConcatCalc)
	assert.Len(t, loadedDefs[1].Calc.Parts, 3)

	assert.ElementsMatch(t, []string{"buyerName", "leadTime"}, loadedSelection)
}

func TestFieldStore_SaveReplaces(t *testing.T) {
	store := openStore(t)

	first := []*field.Definition{{
		Key: "a", Label: "A", Kind: field.KindRaw, Type: field.DataTypeString, Source: field.SourceUser,
	}}
	require.NoError(t, store.Save(first, []string{"a"}))

	second := []*field.Definition{{
		Key: "b", Label: "B", Kind: field.KindRaw, Type: field.DataTypeString, Source: field.SourceUser,
	}}
	require.NoError(t, store.Save(second, []string{"b"}))

	defs, selected, err := store.Load()
	require.NoError(t, err)
	require.Len(t, defs, 1)
	assert.Equal(t, "b", defs[0].Key)
	assert.Equal(t, []string{"b"}, selected)
}
