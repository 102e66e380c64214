package stage

import (
	"context"
	"testing"

	"github.com/navdeep-G/the-r-in-spark/dataset"
	"github.com/stretchr/testify/assert"
)

func scalerTestData(t *testing.T, vecs [][]float64) dataset.Dataset {
	ds, err := dataset.NewBuilder().AddVectors("x", vecs).Build()
	assert.NoError(t, err)
	return ds
}

func TestStandardScalerFitAndTransform(t *testing.T) {
	s, err := New(KindStandardScaler, map[string]any{"inputCol": "x"})
	assert.NoError(t, err)
	ds := scalerTestData(t, [][]float64{{2, 10}, {4, 20}, {6, 30}})

	model, err := s.(Estimator).Fit(context.Background(), ds)
	assert.NoError(t, err)
	sm := model.(*StandardScalerModel)
	assert.InDelta(t, 4.0, sm.Mean()[0], 1e-9)
	assert.InDelta(t, 20.0, sm.Mean()[1], 1e-9)

	out, err := model.Transform(context.Background(), ds)
	assert.NoError(t, err)
	vecs, err := out.Vectors("x_scaled")
	assert.NoError(t, err)

	// scaled column has mean 0 and unit sample variance
	for j := 0; j < 2; j++ {
		sum, sumSq := 0.0, 0.0
		for _, v := range vecs {
			sum += v[j]
			sumSq += v[j] * v[j]
		}
		assert.InDelta(t, 0.0, sum/3, 1e-9)
		assert.InDelta(t, 1.0, sumSq/2, 1e-9)
	}
}

func TestStandardScalerZeroVarianceIdentity(t *testing.T) {
	s, err := New(KindStandardScaler, map[string]any{"inputCol": "x"})
	assert.NoError(t, err)
	ds := scalerTestData(t, [][]float64{{5, 1}, {5, 2}, {5, 3}})

	model, err := s.(Estimator).Fit(context.Background(), ds)
	assert.NoError(t, err)
	sm := model.(*StandardScalerModel)
	assert.Equal(t, 1.0, sm.Std()[0])

	out, err := model.Transform(context.Background(), ds)
	assert.NoError(t, err)
	vecs, err := out.Vectors("x_scaled")
	assert.NoError(t, err)
	// the constant dimension is centered but not divided
	assert.InDelta(t, 0.0, vecs[0][0], 1e-9)
	assert.InDelta(t, 0.0, vecs[1][0], 1e-9)
}

func TestStandardScalerStrictZeroVariance(t *testing.T) {
	s, err := New(KindStandardScaler, map[string]any{
		"inputCol": "x",
		"strict":   true,
	})
	assert.NoError(t, err)
	_, err = s.(Estimator).Fit(
		context.Background(), scalerTestData(t, [][]float64{{5}, {5}, {5}}))
	var insuffErr *InsufficientDataError
	assert.ErrorAs(t, err, &insuffErr)
}

func TestStandardScalerSingleRowWithStd(t *testing.T) {
	s, err := New(KindStandardScaler, map[string]any{"inputCol": "x"})
	assert.NoError(t, err)
	_, err = s.(Estimator).Fit(
		context.Background(), scalerTestData(t, [][]float64{{1, 2}}))
	var insuffErr *InsufficientDataError
	assert.ErrorAs(t, err, &insuffErr)
}

func TestStandardScalerWithoutCentering(t *testing.T) {
	s, err := New(KindStandardScaler, map[string]any{
		"inputCol": "x",
		"withMean": false,
		"withStd":  false,
	})
	assert.NoError(t, err)
	ds := scalerTestData(t, [][]float64{{1}, {2}})
	model, err := s.(Estimator).Fit(context.Background(), ds)
	assert.NoError(t, err)
	out, err := model.Transform(context.Background(), ds)
	assert.NoError(t, err)
	vecs, err := out.Vectors("x_scaled")
	assert.NoError(t, err)
	assert.Equal(t, [][]float64{{1}, {2}}, vecs)
}

func TestStandardScalerArityMismatchAtTransform(t *testing.T) {
	s, err := New(KindStandardScaler, map[string]any{"inputCol": "x"})
	assert.NoError(t, err)
	model, err := s.(Estimator).Fit(
		context.Background(), scalerTestData(t, [][]float64{{1, 2}, {3, 4}}))
	assert.NoError(t, err)

	_, err = model.Transform(
		context.Background(), scalerTestData(t, [][]float64{{1}}))
	var dimErr *dataset.DimensionMismatchError
	assert.ErrorAs(t, err, &dimErr)
}
