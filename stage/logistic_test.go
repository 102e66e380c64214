package stage

import (
	"context"
	"math/rand/v2"
	"testing"

	"github.com/navdeep-G/the-r-in-spark/dataset"
	"github.com/stretchr/testify/assert"
)

// separableData builds a linearly separable binary problem: class 1
// points cluster around (2, 2), class 0 around (-2, -2).
func separableData(t *testing.T, n int, seed uint64) dataset.Dataset {
	rnd := rand.New(rand.NewPCG(seed, 0))
	X := make([][]float64, n)
	y := make([]float64, n)
	for i := range X {
		center := -2.0
		if i%2 == 0 {
			center = 2.0
			y[i] = 1
		}
		X[i] = []float64{
			center + rnd.NormFloat64()*0.5,
			center + rnd.NormFloat64()*0.5,
		}
	}
	ds, err := dataset.NewBuilder().
		AddVectors("features", X).
		AddNumeric("label", y).
		Build()
	assert.NoError(t, err)
	return ds
}

func TestLogisticRegressionSeparable(t *testing.T) {
	s, err := New(KindLogisticRegression, map[string]any{"maxIter": 300})
	assert.NoError(t, err)
	ds := separableData(t, 200, 17)

	model, err := s.(Estimator).Fit(context.Background(), ds)
	assert.NoError(t, err)
	out, err := model.Transform(context.Background(), ds)
	assert.NoError(t, err)

	labels, err := out.Numeric("label")
	assert.NoError(t, err)
	preds, err := out.Numeric("prediction")
	assert.NoError(t, err)
	numCorrect := 0
	for i := range labels {
		if labels[i] == preds[i] {
			numCorrect++
		}
	}
	assert.Greater(t, float64(numCorrect)/float64(len(labels)), 0.95)

	probs, err := out.Numeric("probability")
	assert.NoError(t, err)
	for _, p := range probs {
		assert.GreaterOrEqual(t, p, 0.0)
		assert.LessOrEqual(t, p, 1.0)
	}
}

func TestLogisticRegressionSingleClass(t *testing.T) {
	ds, err := dataset.NewBuilder().
		AddVectors("features", [][]float64{{1}, {2}, {3}}).
		AddNumeric("label", []float64{1, 1, 1}).
		Build()
	assert.NoError(t, err)

	s, err := New(KindLogisticRegression, nil)
	assert.NoError(t, err)
	_, err = s.(Estimator).Fit(context.Background(), ds)
	var insuffErr *InsufficientDataError
	assert.ErrorAs(t, err, &insuffErr)
}

func TestLogisticRegressionRejectsNonBinaryLabels(t *testing.T) {
	ds, err := dataset.NewBuilder().
		AddVectors("features", [][]float64{{1}, {2}}).
		AddNumeric("label", []float64{0, 2}).
		Build()
	assert.NoError(t, err)

	s, err := New(KindLogisticRegression, nil)
	assert.NoError(t, err)
	_, err = s.(Estimator).Fit(context.Background(), ds)
	assert.Error(t, err)
}

func TestLogisticRegressionCancellation(t *testing.T) {
	s, err := New(KindLogisticRegression, map[string]any{"maxIter": 10000, "tol": 0.0})
	assert.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = s.(Estimator).Fit(ctx, separableData(t, 50, 3))
	assert.ErrorIs(t, err, context.Canceled)
}
