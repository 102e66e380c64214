package stage

import (
	"context"
	"testing"

	"github.com/navdeep-G/the-r-in-spark/dataset"
	"github.com/stretchr/testify/assert"
)

func TestVectorAssemblerConcatenates(t *testing.T) {
	ds, err := dataset.NewBuilder().
		AddNumeric("a", []float64{1, 2}).
		AddVectors("v", [][]float64{{10, 20}, {30, 40}}).
		AddNumeric("b", []float64{5, 6}).
		Build()
	assert.NoError(t, err)

	s, err := New(KindVectorAssembler, map[string]any{
		"inputCols": []string{"a", "v", "b"},
	})
	assert.NoError(t, err)

	out, err := s.(Transformer).Transform(context.Background(), ds)
	assert.NoError(t, err)
	vecs, err := out.Vectors("features")
	assert.NoError(t, err)
	assert.Equal(t, [][]float64{{1, 10, 20, 5}, {2, 30, 40, 6}}, vecs)
}

func TestVectorAssemblerMissingColumn(t *testing.T) {
	ds, err := dataset.NewBuilder().AddNumeric("a", []float64{1}).Build()
	assert.NoError(t, err)
	s, err := New(KindVectorAssembler, map[string]any{
		"inputCols": []string{"a", "nope"},
	})
	assert.NoError(t, err)

	_, err = s.(Transformer).Transform(context.Background(), ds)
	var schemaErr *dataset.SchemaError
	assert.ErrorAs(t, err, &schemaErr)
	assert.Equal(t, "nope", schemaErr.Column)
}

func TestVectorAssemblerRejectsStringColumn(t *testing.T) {
	ds, err := dataset.NewBuilder().AddStrings("s", []string{"x"}).Build()
	assert.NoError(t, err)
	s, err := New(KindVectorAssembler, map[string]any{
		"inputCols": []string{"s"},
	})
	assert.NoError(t, err)

	_, err = s.(Transformer).Transform(context.Background(), ds)
	var schemaErr *dataset.SchemaError
	assert.ErrorAs(t, err, &schemaErr)
}

func TestVectorAssemblerRaggedVectors(t *testing.T) {
	ds, err := dataset.NewBuilder().
		AddVectors("v", [][]float64{{1, 2}, {3}}).
		Build()
	assert.NoError(t, err)
	s, err := New(KindVectorAssembler, map[string]any{
		"inputCols": []string{"v"},
	})
	assert.NoError(t, err)

	_, err = s.(Transformer).Transform(context.Background(), ds)
	var dimErr *dataset.DimensionMismatchError
	assert.ErrorAs(t, err, &dimErr)
	assert.Equal(t, 1, dimErr.Row)
}
