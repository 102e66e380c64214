package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/navdeep-G/the-r-in-spark/dataset"
	"github.com/navdeep-G/the-r-in-spark/stage"
	"github.com/stretchr/testify/assert"
)

func mustStage(t *testing.T, kind string, params map[string]any) stage.Stage {
	s, err := stage.New(kind, params)
	assert.NoError(t, err)
	return s
}

func featurePipeline(t *testing.T) Pipeline {
	return New(
		mustStage(t, stage.KindStringIndexer, map[string]any{"inputCol": "city"}),
		mustStage(t, stage.KindOneHotEncoder, map[string]any{
			"inputCol": "city_idx",
			"dropLast": false,
		}),
		mustStage(t, stage.KindVectorAssembler, map[string]any{
			"inputCols": []string{"age", "city_idx_vec"},
		}),
	)
}

func trainingData(t *testing.T) dataset.Dataset {
	ds, err := dataset.NewBuilder().
		AddNumeric("age", []float64{30, 41, 25, 58}).
		AddStrings("city", []string{"Praha", "Brno", "Praha", "Ostrava"}).
		Build()
	assert.NoError(t, err)
	return ds
}

func TestFitThreadsDataThroughStages(t *testing.T) {
	// the one-hot encoder learns its size from the indexer's output,
	// which exists only because fit transforms as it goes
	model, err := featurePipeline(t).FitModel(context.Background(), trainingData(t))
	assert.NoError(t, err)

	out, err := model.Transform(context.Background(), trainingData(t))
	assert.NoError(t, err)
	vecs, err := out.Vectors("features")
	assert.NoError(t, err)
	assert.Equal(t, 4, len(vecs))
	// age + 3 one-hot slots
	assert.Equal(t, 4, len(vecs[0]))
}

func TestFitFailureReportsStage(t *testing.T) {
	p := New(
		mustStage(t, stage.KindStringIndexer, map[string]any{"inputCol": "missing"}),
	)
	_, err := p.FitModel(context.Background(), trainingData(t))
	var fitErr *StageFitError
	assert.ErrorAs(t, err, &fitErr)
	assert.Equal(t, 0, fitErr.Index)
	var schemaErr *dataset.SchemaError
	assert.ErrorAs(t, err, &schemaErr)
}

func TestAppendDoesNotMutateReceiver(t *testing.T) {
	p := featurePipeline(t)
	p2 := p.Append(mustStage(t, stage.KindLogisticRegression, nil))
	assert.Equal(t, 3, len(p.Stages()))
	assert.Equal(t, 4, len(p2.Stages()))
}

func TestStageLookupByUID(t *testing.T) {
	p := featurePipeline(t)
	target := p.Stages()[1]
	found, err := p.Stage(target.UID())
	assert.NoError(t, err)
	assert.Equal(t, target.UID(), found.UID())
}

func TestStageLookupByKindPrefix(t *testing.T) {
	p := featurePipeline(t)
	found, err := p.Stage("one_hot")
	assert.NoError(t, err)
	assert.Equal(t, stage.KindOneHotEncoder, found.Kind())
}

func TestStageLookupNotFound(t *testing.T) {
	p := featurePipeline(t)
	_, err := p.Stage("imputer")
	var notFoundErr *StageNotFoundError
	assert.ErrorAs(t, err, &notFoundErr)
}

func TestStageLookupAmbiguous(t *testing.T) {
	p := New(
		mustStage(t, stage.KindStringIndexer, map[string]any{"inputCol": "a"}),
		mustStage(t, stage.KindStringIndexer, map[string]any{"inputCol": "b"}),
	)
	_, err := p.Stage("string_indexer")
	var ambiguousErr *AmbiguousStageReferenceError
	assert.ErrorAs(t, err, &ambiguousErr)
}

func TestWithParamsRebuildsAddressedStage(t *testing.T) {
	p := featurePipeline(t)
	p2, err := p.WithParams(map[string]map[string]any{
		"one_hot": {"dropLast": true},
	})
	assert.NoError(t, err)

	orig, err := p.Stage("one_hot")
	assert.NoError(t, err)
	changed, err := p2.Stage("one_hot")
	assert.NoError(t, err)
	assert.False(t, orig.Params().Bool("dropLast"))
	assert.True(t, changed.Params().Bool("dropLast"))
	assert.Equal(t, orig.UID(), changed.UID())
}

func TestModelInputColumnsSkipProducedOnes(t *testing.T) {
	p := featurePipeline(t)
	model, err := p.FitModel(context.Background(), trainingData(t))
	assert.NoError(t, err)
	assert.ElementsMatch(t, []string{"city", "age"}, model.InputColumns())
}

func TestBuildFromFile(t *testing.T) {
	spec := `[
		{"kind": "string_indexer", "params": {"inputCol": "city"}},
		{"kind": "one_hot_encoder", "params": {"inputCol": "city_idx"}}
	]`
	path := filepath.Join(t.TempDir(), "pipeline.json")
	assert.NoError(t, os.WriteFile(path, []byte(spec), 0644))

	p, err := BuildFromFile(path)
	assert.NoError(t, err)
	assert.Equal(t, 2, len(p.Stages()))
	assert.Equal(t, stage.KindStringIndexer, p.Stages()[0].Kind())
}

func TestBuildFromFileInvalidParam(t *testing.T) {
	spec := `[{"kind": "string_indexer", "params": {"inputCl": "city"}}]`
	path := filepath.Join(t.TempDir(), "pipeline.json")
	assert.NoError(t, os.WriteFile(path, []byte(spec), 0644))

	_, err := BuildFromFile(path)
	var invalidErr *stage.InvalidParameterError
	assert.ErrorAs(t, err, &invalidErr)
	assert.Equal(t, "inputCol", invalidErr.Suggestion)
}
