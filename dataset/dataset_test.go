package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func testDataset(t *testing.T) Dataset {
	ds, err := NewBuilder().
		AddNumeric("age", []float64{30, 41, 25, 58}).
		AddStrings("city", []string{"Praha", "Brno", "Praha", "Ostrava"}).
		AddVectors("scores", [][]float64{{1, 2}, {3, 4}, {5, 6}, {7, 8}}).
		Build()
	assert.NoError(t, err)
	return ds
}

func TestBuilderBasic(t *testing.T) {
	ds := testDataset(t)
	assert.Equal(t, 4, ds.Len())
	assert.Equal(t, 3, ds.Schema().NumColumns())
	assert.True(t, ds.HasColumn("age"))
	assert.False(t, ds.HasColumn("salary"))
}

func TestBuilderRejectsRaggedColumns(t *testing.T) {
	_, err := NewBuilder().
		AddNumeric("a", []float64{1, 2, 3}).
		AddNumeric("b", []float64{1, 2}).
		Build()
	assert.Error(t, err)
}

func TestBuilderEmpty(t *testing.T) {
	ds, err := NewBuilder().Build()
	assert.NoError(t, err)
	assert.Equal(t, 0, ds.Len())
}

func TestBuilderReaddReplacesColumnOfOtherType(t *testing.T) {
	ds, err := NewBuilder().
		AddNumeric("x", []float64{1, 2}).
		AddStrings("x", []string{"a", "b"}).
		Build()
	assert.NoError(t, err)
	assert.Equal(t, 1, ds.Schema().NumColumns())

	// the numeric storage must be gone along with the schema entry
	_, err = ds.Numeric("x")
	var schemaErr *SchemaError
	assert.ErrorAs(t, err, &schemaErr)
	vals, err := ds.Strings("x")
	assert.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, vals)
}

func TestAccessWrongTypeReportsSchemaError(t *testing.T) {
	ds := testDataset(t)
	_, err := ds.Numeric("city")
	var schemaErr *SchemaError
	assert.ErrorAs(t, err, &schemaErr)
	assert.Equal(t, "city", schemaErr.Column)
	assert.False(t, schemaErr.Missing)
}

func TestAccessMissingColumnReportsSchemaError(t *testing.T) {
	ds := testDataset(t)
	_, err := ds.Strings("unknown")
	var schemaErr *SchemaError
	assert.ErrorAs(t, err, &schemaErr)
	assert.True(t, schemaErr.Missing)
}

func TestWithNumericDoesNotMutateOrigin(t *testing.T) {
	ds := testDataset(t)
	ds2 := ds.WithNumeric("age2", []float64{60, 82, 50, 116})
	assert.False(t, ds.HasColumn("age2"))
	assert.True(t, ds2.HasColumn("age2"))
	assert.Equal(t, ds.Len(), ds2.Len())
}

func TestWithNumericReplacesColumnOfOtherType(t *testing.T) {
	ds := testDataset(t)
	ds2 := ds.WithNumeric("city", []float64{0, 1, 0, 2})
	ctype, ok := ds2.Schema().ColumnType("city")
	assert.True(t, ok)
	assert.Equal(t, Numeric, ctype)
	assert.Equal(t, 3, ds2.Schema().NumColumns())

	// the original still sees the string column
	vals, err := ds.Strings("city")
	assert.NoError(t, err)
	assert.Equal(t, "Praha", vals[0])
}

func TestSelect(t *testing.T) {
	ds := testDataset(t)
	sel, err := ds.Select("city", "age")
	assert.NoError(t, err)
	assert.Equal(t, 2, sel.Schema().NumColumns())
	cols := sel.Schema().Columns()
	assert.Equal(t, "city", cols[0].Name)
	assert.Equal(t, "age", cols[1].Name)
}

func TestSelectUnknownColumn(t *testing.T) {
	ds := testDataset(t)
	_, err := ds.Select("nope")
	var schemaErr *SchemaError
	assert.ErrorAs(t, err, &schemaErr)
}

func TestFilterRows(t *testing.T) {
	ds := testDataset(t)
	ans := ds.FilterRows([]bool{true, false, false, true})
	assert.Equal(t, 2, ans.Len())
	vals, err := ans.Numeric("age")
	assert.NoError(t, err)
	assert.Equal(t, []float64{30, 58}, vals)
}

func TestGatherRepeatsAndReorders(t *testing.T) {
	ds := testDataset(t)
	ans := ds.Gather([]int{3, 0, 0})
	assert.Equal(t, 3, ans.Len())
	vals, err := ans.Strings("city")
	assert.NoError(t, err)
	assert.Equal(t, []string{"Ostrava", "Praha", "Praha"}, vals)
}

func TestShuffledIndicesReproducible(t *testing.T) {
	ds := testDataset(t)
	a := ds.ShuffledIndices(7)
	b := ds.ShuffledIndices(7)
	c := ds.ShuffledIndices(8)
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestRandomSplitDisjointAndComplete(t *testing.T) {
	vals := make([]float64, 100)
	for i := range vals {
		vals[i] = float64(i)
	}
	ds, err := NewBuilder().AddNumeric("x", vals).Build()
	assert.NoError(t, err)

	left, right := ds.RandomSplit(0.7, 42)
	assert.Equal(t, 70, left.Len())
	assert.Equal(t, 30, right.Len())

	seen := make(map[float64]bool)
	lv, _ := left.Numeric("x")
	rv, _ := right.Numeric("x")
	for _, v := range lv {
		seen[v] = true
	}
	for _, v := range rv {
		assert.False(t, seen[v])
		seen[v] = true
	}
	assert.Equal(t, 100, len(seen))
}
