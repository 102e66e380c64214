package tuning

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/navdeep-G/the-r-in-spark/pipeline"
	"github.com/navdeep-G/the-r-in-spark/stage"
	"github.com/stretchr/testify/assert"
)

func gridTestPipeline(t *testing.T) pipeline.Pipeline {
	scaler, err := stage.New(stage.KindStandardScaler, map[string]any{"inputCol": "x"})
	assert.NoError(t, err)
	lr, err := stage.New(stage.KindLogisticRegression, map[string]any{
		"featuresCol": "x_scaled",
	})
	assert.NoError(t, err)
	return pipeline.New(scaler, lr)
}

func TestGridSizeIsCartesianProduct(t *testing.T) {
	p := gridTestPipeline(t)
	grid, err := NewGrid().
		Add("logistic_regression", "stepSize", 0.01, 0.1, 1.0).
		Add("logistic_regression", "maxIter", 50, 100).
		Add("standard_scaler", "withMean", true, false).
		Build(p)
	assert.NoError(t, err)
	assert.Equal(t, 12, grid.Size())
	assert.Equal(t, 12, len(grid.Combinations()))
}

func TestGridExpansionDeterministic(t *testing.T) {
	p := gridTestPipeline(t)
	grid, err := NewGrid().
		Add("logistic_regression", "stepSize", 0.01, 0.1).
		Add("logistic_regression", "maxIter", 50, 100).
		Build(p)
	assert.NoError(t, err)

	combs := grid.Combinations()
	assert.Equal(t, 4, len(combs))
	// last dimension varies fastest
	assert.Equal(t, 0.01, combs[0][0].Value)
	assert.Equal(t, 50, combs[0][1].Value)
	assert.Equal(t, 0.01, combs[1][0].Value)
	assert.Equal(t, 100, combs[1][1].Value)
	assert.Equal(t, 0.1, combs[2][0].Value)
	assert.Equal(t, 50, combs[2][1].Value)

	again := grid.Combinations()
	assert.Equal(t, combs, again)
}

func TestGridResolvesRefsToUIDs(t *testing.T) {
	p := gridTestPipeline(t)
	grid, err := NewGrid().
		Add("logistic", "stepSize", 0.1).
		Build(p)
	assert.NoError(t, err)
	lr, err := p.Stage("logistic_regression")
	assert.NoError(t, err)
	assert.Equal(t, lr.UID(), grid.Combinations()[0][0].StageRef)
}

func TestGridRejectsNonTunableParam(t *testing.T) {
	p := gridTestPipeline(t)
	_, err := NewGrid().
		Add("logistic_regression", "featuresCol", "a", "b").
		Build(p)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not tunable")
}

func TestGridRejectsUnknownStage(t *testing.T) {
	p := gridTestPipeline(t)
	_, err := NewGrid().
		Add("tokenizer", "stepSize", 0.1).
		Build(p)
	var notFoundErr *pipeline.StageNotFoundError
	assert.ErrorAs(t, err, &notFoundErr)
}

func TestGridRejectsWrongValueType(t *testing.T) {
	p := gridTestPipeline(t)
	_, err := NewGrid().
		Add("logistic_regression", "maxIter", "lots").
		Build(p)
	var mismatchErr *stage.TypeMismatchError
	assert.ErrorAs(t, err, &mismatchErr)
}

func TestGridRejectsEmptyDimension(t *testing.T) {
	p := gridTestPipeline(t)
	_, err := NewGrid().
		Add("logistic_regression", "stepSize").
		Build(p)
	assert.Error(t, err)
}

func TestCombinationOverrides(t *testing.T) {
	p := gridTestPipeline(t)
	grid, err := NewGrid().
		Add("logistic_regression", "stepSize", 0.3).
		Add("logistic_regression", "maxIter", 70).
		Build(p)
	assert.NoError(t, err)

	overrides := grid.Combinations()[0].Overrides()
	lr, err := p.Stage("logistic_regression")
	assert.NoError(t, err)
	assert.Equal(t, map[string]map[string]any{
		lr.UID(): {"stepSize": 0.3, "maxIter": 70},
	}, overrides)
}

func TestGridFromFile(t *testing.T) {
	p := gridTestPipeline(t)
	raw := `{
		"logistic_regression": {"stepSize": [0.01, 0.1], "maxIter": [50]},
		"standard_scaler": {"withMean": [true, false]}
	}`
	path := filepath.Join(t.TempDir(), "grid.json")
	assert.NoError(t, os.WriteFile(path, []byte(raw), 0644))

	grid, err := GridFromFile(path, p)
	assert.NoError(t, err)
	assert.Equal(t, 4, grid.Size())
}
