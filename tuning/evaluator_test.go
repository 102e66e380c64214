package tuning

import (
	"testing"

	"github.com/navdeep-G/the-r-in-spark/dataset"
	"github.com/stretchr/testify/assert"
)

func TestAccuracyEvaluator(t *testing.T) {
	ds, err := dataset.NewBuilder().
		AddNumeric("label", []float64{1, 0, 1, 0}).
		AddNumeric("prediction", []float64{1, 0, 0, 0}).
		Build()
	assert.NoError(t, err)

	ev, err := NewEvaluator(MetricAccuracy)
	assert.NoError(t, err)
	assert.True(t, ev.IsLargerBetter())
	score, err := ev.Evaluate(ds)
	assert.NoError(t, err)
	assert.InDelta(t, 0.75, score, 1e-9)
}

func TestAreaUnderROCPerfectRanking(t *testing.T) {
	ds, err := dataset.NewBuilder().
		AddNumeric("label", []float64{0, 0, 1, 1}).
		AddNumeric("probability", []float64{0.1, 0.2, 0.8, 0.9}).
		Build()
	assert.NoError(t, err)

	ev, err := NewEvaluator(MetricAreaUnderROC)
	assert.NoError(t, err)
	score, err := ev.Evaluate(ds)
	assert.NoError(t, err)
	assert.InDelta(t, 1.0, score, 1e-9)
}

func TestAreaUnderROCWithTies(t *testing.T) {
	// one positive ranked above, one tied with a negative
	ds, err := dataset.NewBuilder().
		AddNumeric("label", []float64{0, 1, 0, 1}).
		AddNumeric("probability", []float64{0.2, 0.5, 0.5, 0.9}).
		Build()
	assert.NoError(t, err)

	ev, err := NewEvaluator(MetricAreaUnderROC)
	assert.NoError(t, err)
	score, err := ev.Evaluate(ds)
	assert.NoError(t, err)
	// pairs: (p=0.5 vs n=0.2)=1, (p=0.5 vs n=0.5)=0.5, (p=0.9 vs both)=2
	assert.InDelta(t, 3.5/4, score, 1e-9)
}

func TestAreaUnderROCSingleClass(t *testing.T) {
	ds, err := dataset.NewBuilder().
		AddNumeric("label", []float64{1, 1}).
		AddNumeric("probability", []float64{0.5, 0.6}).
		Build()
	assert.NoError(t, err)

	ev, err := NewEvaluator(MetricAreaUnderROC)
	assert.NoError(t, err)
	_, err = ev.Evaluate(ds)
	assert.Error(t, err)
}

func TestRegressionEvaluators(t *testing.T) {
	ds, err := dataset.NewBuilder().
		AddNumeric("label", []float64{1, 2, 3}).
		AddNumeric("prediction", []float64{2, 2, 5}).
		Build()
	assert.NoError(t, err)

	rmse, err := NewEvaluator(MetricRMSE)
	assert.NoError(t, err)
	assert.False(t, rmse.IsLargerBetter())
	score, err := rmse.Evaluate(ds)
	assert.NoError(t, err)
	// errors 1, 0, 2 -> sqrt(5/3)
	assert.InDelta(t, 1.29099, score, 1e-4)

	mae, err := NewEvaluator(MetricMAE)
	assert.NoError(t, err)
	score, err = mae.Evaluate(ds)
	assert.NoError(t, err)
	assert.InDelta(t, 1.0, score, 1e-9)
}

func TestUnknownMetric(t *testing.T) {
	_, err := NewEvaluator("f1")
	assert.Error(t, err)
}

func TestEvaluatorMissingColumn(t *testing.T) {
	ds, err := dataset.NewBuilder().
		AddNumeric("label", []float64{1}).
		Build()
	assert.NoError(t, err)
	ev, err := NewEvaluator(MetricAccuracy)
	assert.NoError(t, err)
	_, err = ev.Evaluate(ds)
	var schemaErr *dataset.SchemaError
	assert.ErrorAs(t, err, &schemaErr)
}
