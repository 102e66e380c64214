package scoring

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/navdeep-G/the-r-in-spark/bundle"
	"github.com/navdeep-G/the-r-in-spark/dataset"
	"github.com/navdeep-G/the-r-in-spark/pipeline"
	"github.com/navdeep-G/the-r-in-spark/stage"
	"github.com/stretchr/testify/assert"
)

func scoringTestModel(t *testing.T) *pipeline.PipelineModel {
	mk := func(kind string, params map[string]any) stage.Stage {
		s, err := stage.New(kind, params)
		assert.NoError(t, err)
		return s
	}
	p := pipeline.New(
		mk(stage.KindStringIndexer, map[string]any{"inputCol": "city"}),
		mk(stage.KindVectorAssembler, map[string]any{
			"inputCols": []string{"age", "city_idx"},
		}),
		mk(stage.KindLogisticRegression, map[string]any{"maxIter": 50}),
	)
	ds, err := dataset.NewBuilder().
		AddStrings("city", []string{"Praha", "Brno", "Praha", "Ostrava"}).
		AddNumeric("age", []float64{30, 41, 25, 58}).
		AddNumeric("label", []float64{1, 0, 1, 0}).
		Build()
	assert.NoError(t, err)
	model, err := p.FitModel(context.Background(), ds)
	assert.NoError(t, err)
	return model
}

func TestRuntimeInputColumns(t *testing.T) {
	rt := NewRuntime(scoringTestModel(t))
	assert.ElementsMatch(t, []string{"city", "age", "label"}, rt.InputColumns())
}

func TestPredictSingleRecord(t *testing.T) {
	rt := NewRuntime(scoringTestModel(t))
	ans, err := rt.Predict(context.Background(), Record{
		"city":  "Praha",
		"age":   33.0,
		"label": 1.0,
	})
	assert.NoError(t, err)
	assert.Contains(t, ans, "prediction")
	assert.Contains(t, ans, "probability")
	prob, ok := ans["probability"].(float64)
	assert.True(t, ok)
	assert.GreaterOrEqual(t, prob, 0.0)
	assert.LessOrEqual(t, prob, 1.0)
}

func TestPredictMissingColumnReportsSchemaError(t *testing.T) {
	rt := NewRuntime(scoringTestModel(t))
	_, err := rt.Predict(context.Background(), Record{"age": 33.0})
	var schemaErr *dataset.SchemaError
	assert.ErrorAs(t, err, &schemaErr)
	assert.True(t, schemaErr.Missing)
}

func TestPredictUnsupportedValueType(t *testing.T) {
	rt := NewRuntime(scoringTestModel(t))
	_, err := rt.Predict(context.Background(), Record{
		"city":  "Praha",
		"age":   33.0,
		"label": 1.0,
		"extra": map[string]any{"nested": true},
	})
	var schemaErr *dataset.SchemaError
	assert.ErrorAs(t, err, &schemaErr)
}

func TestFailedCallDoesNotPoisonRuntime(t *testing.T) {
	rt := NewRuntime(scoringTestModel(t))
	_, err := rt.Predict(context.Background(), Record{
		"city":  "Paris",
		"age":   33.0,
		"label": 1.0,
	})
	assert.Error(t, err)

	// the very next call with a valid record succeeds
	ans, err := rt.Predict(context.Background(), Record{
		"city":  "Praha",
		"age":   33.0,
		"label": 1.0,
	})
	assert.NoError(t, err)
	assert.Contains(t, ans, "prediction")
}

func TestPredictRowDroppedByPipeline(t *testing.T) {
	mk := func(kind string, params map[string]any) stage.Stage {
		s, err := stage.New(kind, params)
		assert.NoError(t, err)
		return s
	}
	p := pipeline.New(
		mk(stage.KindStringIndexer, map[string]any{
			"inputCol":      "city",
			"handleInvalid": "skip",
		}),
		mk(stage.KindVectorAssembler, map[string]any{
			"inputCols": []string{"age", "city_idx"},
		}),
		mk(stage.KindLogisticRegression, map[string]any{"maxIter": 50}),
	)
	ds, err := dataset.NewBuilder().
		AddStrings("city", []string{"Praha", "Brno", "Praha", "Ostrava"}).
		AddNumeric("age", []float64{30, 41, 25, 58}).
		AddNumeric("label", []float64{1, 0, 1, 0}).
		Build()
	assert.NoError(t, err)
	model, err := p.FitModel(context.Background(), ds)
	assert.NoError(t, err)

	// an unseen category makes the indexer drop the only row, which
	// must surface as an error rather than an empty answer
	rt := NewRuntime(model)
	_, err = rt.Predict(context.Background(), Record{
		"city":  "Paris",
		"age":   33.0,
		"label": 1.0,
	})
	var predErr *PredictionError
	assert.ErrorAs(t, err, &predErr)
}

func TestPredictBatch(t *testing.T) {
	rt := NewRuntime(scoringTestModel(t))
	ds, err := dataset.NewBuilder().
		AddStrings("city", []string{"Praha", "Brno"}).
		AddNumeric("age", []float64{28, 52}).
		AddNumeric("label", []float64{1, 0}).
		Build()
	assert.NoError(t, err)

	out, err := rt.PredictBatch(context.Background(), ds)
	assert.NoError(t, err)
	preds, err := out.Numeric("prediction")
	assert.NoError(t, err)
	assert.Equal(t, 2, len(preds))
}

func TestOpenFromBundle(t *testing.T) {
	model := scoringTestModel(t)
	dst := filepath.Join(t.TempDir(), "model")
	assert.NoError(t, bundle.Save(model, dst))

	rt, err := Open(dst)
	assert.NoError(t, err)
	ans, err := rt.Predict(context.Background(), Record{
		"city":  "Brno",
		"age":   44.0,
		"label": 0.0,
	})
	assert.NoError(t, err)
	assert.Contains(t, ans, "probability")
}
