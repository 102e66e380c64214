package bundle

import (
	"context"
	"math/rand/v2"
	"path/filepath"
	"testing"

	"github.com/navdeep-G/the-r-in-spark/dataset"
	"github.com/navdeep-G/the-r-in-spark/pipeline"
	"github.com/navdeep-G/the-r-in-spark/stage"
	"github.com/navdeep-G/the-r-in-spark/tuning"
	"github.com/stretchr/testify/assert"
)

// separableScenarioData builds n rows where both the numeric feature
// (two well-separated clusters) and the city correlate with the label.
func separableScenarioData(t *testing.T, n int, seed uint64) dataset.Dataset {
	rnd := rand.New(rand.NewPCG(seed, 0))
	cities := make([]string, n)
	xs := make([]float64, n)
	labels := make([]float64, n)
	positiveCities := []string{"Praha", "Brno"}
	negativeCities := []string{"Ostrava", "Plzen"}
	for i := 0; i < n; i++ {
		noise := rnd.NormFloat64() * 0.5
		if i%2 == 0 {
			labels[i] = 1
			xs[i] = 2 + noise
			cities[i] = positiveCities[rnd.IntN(len(positiveCities))]

		} else {
			labels[i] = 0
			xs[i] = -2 + noise
			cities[i] = negativeCities[rnd.IntN(len(negativeCities))]
		}
	}
	ds, err := dataset.NewBuilder().
		AddStrings("city", cities).
		AddNumeric("x", xs).
		AddNumeric("label", labels).
		Build()
	assert.NoError(t, err)
	return ds
}

func scenarioPipeline(t *testing.T) pipeline.Pipeline {
	mk := func(kind string, params map[string]any) stage.Stage {
		s, err := stage.New(kind, params)
		assert.NoError(t, err)
		return s
	}
	return pipeline.New(
		mk(stage.KindStringIndexer, map[string]any{"inputCol": "city"}),
		mk(stage.KindOneHotEncoder, map[string]any{
			"inputCol": "city_idx",
			"dropLast": false,
		}),
		mk(stage.KindVectorAssembler, map[string]any{
			"inputCols": []string{"x", "city_idx_vec"},
		}),
		mk(stage.KindStandardScaler, map[string]any{
			"inputCol":  "features",
			"outputCol": "features_std",
		}),
		mk(stage.KindLogisticRegression, map[string]any{
			"featuresCol": "features_std",
			"maxIter":     300,
		}),
	)
}

func heldOutAccuracy(t *testing.T, model *pipeline.PipelineModel, testData dataset.Dataset) float64 {
	evaluator, err := tuning.NewEvaluator(tuning.MetricAccuracy)
	assert.NoError(t, err)
	scored, err := model.Transform(context.Background(), testData)
	assert.NoError(t, err)
	acc, err := evaluator.Evaluate(scored)
	assert.NoError(t, err)
	return acc
}

func TestFullPipelineGeneralizesAfterRoundTrip(t *testing.T) {
	ds := separableScenarioData(t, 1000, 7)
	trainData, testData := ds.RandomSplit(0.8, 42)
	assert.Greater(t, testData.Len(), 100)

	model, err := scenarioPipeline(t).FitModel(context.Background(), trainData)
	assert.NoError(t, err)

	acc := heldOutAccuracy(t, model, testData)
	assert.Greater(t, acc, 0.8, "held-out accuracy %.4f below baseline", acc)

	dst := filepath.Join(t.TempDir(), "model")
	assert.NoError(t, Save(model, dst))
	loaded, err := Load(dst)
	assert.NoError(t, err)

	loadedAcc := heldOutAccuracy(t, loaded, testData)
	assert.InDelta(t, acc, loadedAcc, 1e-12)
}
