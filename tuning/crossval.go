// Copyright 2026 Navdeep Gill
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package tuning

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/navdeep-G/the-r-in-spark/dataset"
	"github.com/navdeep-G/the-r-in-spark/pipeline"
	"github.com/rs/zerolog/log"
)

// TuningTrialError identifies the grid combination and fold whose
// fit or evaluation failed. A single failed trial aborts the whole
// search - silently dropping a combination would corrupt the mean
// comparison between combinations.
type TuningTrialError struct {
	Combination int
	Fold        int
	Err         error
}

func (err *TuningTrialError) Error() string {
	return fmt.Sprintf(
		"trial failed for combination %d, fold %d: %s",
		err.Combination, err.Fold, err.Err)
}

func (err *TuningTrialError) Unwrap() error {
	return err.Err
}

// ValidationMetric is one row of the tuning report: the chosen
// parameter values of a grid combination plus its scores.
type ValidationMetric struct {
	Combination int       `json:"combination" msgpack:"combination"`
	Settings    []Setting `json:"settings" msgpack:"settings"`
	Metric      string    `json:"metric" msgpack:"metric"`
	FoldScores  []float64 `json:"foldScores" msgpack:"foldScores"`
	Mean        float64   `json:"mean" msgpack:"mean"`
}

// Result carries the selected model and the full per-combination
// report, which is exposed regardless of which combination won.
type Result struct {
	BestModel *pipeline.PipelineModel
	BestIndex int
	Metrics   []ValidationMetric
	NumFolds  int
	Seed      int64
}

// CrossValidator drives a parameter-grid search with k-fold
// cross-validation over a template pipeline. Fold assignment is
// a seeded shuffle of row indices dealt round-robin into k folds,
// so a run is reproducible from (data, grid, seed).
type CrossValidator struct {
	Pipeline  pipeline.Pipeline
	Grid      ParamGrid
	Evaluator Evaluator
	NumFolds  int
	Seed      int64

	// Parallelism bounds the number of concurrently running trials;
	// zero means GOMAXPROCS.
	Parallelism int

	// OnProgress, when set, is called after each finished trial.
	OnProgress func(done, total int)
}

type trial struct {
	combIdx int
	foldIdx int
}

// Run executes all |grid| x k trials, selects the combination with
// the best mean score and refits the template on the entire dataset
// with that combination.
func (cv CrossValidator) Run(ctx context.Context, ds dataset.Dataset) (*Result, error) {
	if cv.NumFolds < 2 {
		return nil, fmt.Errorf("cross-validation requires at least 2 folds (got %d)", cv.NumFolds)
	}
	combs := cv.Grid.Combinations()
	if len(combs) == 0 {
		return nil, fmt.Errorf("empty parameter grid")
	}
	if ds.Len() < cv.NumFolds {
		return nil, fmt.Errorf(
			"cannot split %d rows into %d folds", ds.Len(), cv.NumFolds)
	}

	folds := cv.assignFolds(ds)
	trials := make([]trial, 0, len(combs)*cv.NumFolds)
	for ci := range combs {
		for fi := 0; fi < cv.NumFolds; fi++ {
			trials = append(trials, trial{combIdx: ci, foldIdx: fi})
		}
	}
	log.Info().
		Int("combinations", len(combs)).
		Int("folds", cv.NumFolds).
		Int("trials", len(trials)).
		Str("metric", cv.Evaluator.Name()).
		Msg("starting cross-validation")

	numWorkers := cv.Parallelism
	if numWorkers <= 0 {
		numWorkers = runtime.GOMAXPROCS(0)
	}
	trialCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		firstErr error
		numDone  int
	)
	scores := make([][]float64, len(combs))
	for i := range scores {
		scores[i] = make([]float64, cv.NumFolds)
	}
	queue := make(chan trial)
	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for tr := range queue {
				score, err := cv.runTrial(trialCtx, ds, combs[tr.combIdx], folds, tr.foldIdx)
				mu.Lock()
				if err != nil {
					if firstErr == nil && trialCtx.Err() == nil {
						firstErr = &TuningTrialError{
							Combination: tr.combIdx, Fold: tr.foldIdx, Err: err}
					}
					mu.Unlock()
					cancel()
					continue
				}
				scores[tr.combIdx][tr.foldIdx] = score
				numDone++
				if cv.OnProgress != nil {
					cv.OnProgress(numDone, len(trials))
				}
				mu.Unlock()
			}
		}()
	}
	for _, tr := range trials {
		select {
		case queue <- tr:
		case <-trialCtx.Done():
		}
	}
	close(queue)
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	metrics := make([]ValidationMetric, len(combs))
	bestIdx := 0
	for ci, comb := range combs {
		mean := 0.0
		for _, v := range scores[ci] {
			mean += v
		}
		mean /= float64(cv.NumFolds)
		metrics[ci] = ValidationMetric{
			Combination: ci,
			Settings:    comb,
			Metric:      cv.Evaluator.Name(),
			FoldScores:  scores[ci],
			Mean:        mean,
		}
		if cv.better(mean, metrics[bestIdx].Mean) {
			bestIdx = ci
		}
	}
	log.Info().
		Int("combination", bestIdx).
		Float64("meanScore", metrics[bestIdx].Mean).
		Str("params", combs[bestIdx].String()).
		Msg("selected best combination, refitting on full data")

	bestPipeline, err := cv.Pipeline.WithParams(combs[bestIdx].Overrides())
	if err != nil {
		return nil, err
	}
	bestModel, err := bestPipeline.FitModel(ctx, ds)
	if err != nil {
		return nil, err
	}
	return &Result{
		BestModel: bestModel,
		BestIndex: bestIdx,
		Metrics:   metrics,
		NumFolds:  cv.NumFolds,
		Seed:      cv.Seed,
	}, nil
}

// assignFolds deals shuffled row indices round-robin into k folds,
// which keeps fold sizes within one row of each other.
func (cv CrossValidator) assignFolds(ds dataset.Dataset) [][]int {
	idx := ds.ShuffledIndices(cv.Seed)
	folds := make([][]int, cv.NumFolds)
	for i, row := range idx {
		f := i % cv.NumFolds
		folds[f] = append(folds[f], row)
	}
	return folds
}

func (cv CrossValidator) runTrial(
	ctx context.Context,
	ds dataset.Dataset,
	comb Combination,
	folds [][]int,
	heldOut int,
) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	var trainIdx []int
	for fi, fold := range folds {
		if fi != heldOut {
			trainIdx = append(trainIdx, fold...)
		}
	}
	trial, err := cv.Pipeline.WithParams(comb.Overrides())
	if err != nil {
		return 0, err
	}
	model, err := trial.FitModel(ctx, ds.Gather(trainIdx))
	if err != nil {
		return 0, err
	}
	transformed, err := model.Transform(ctx, ds.Gather(folds[heldOut]))
	if err != nil {
		return 0, err
	}
	return cv.Evaluator.Evaluate(transformed)
}

func (cv CrossValidator) better(a, b float64) bool {
	if cv.Evaluator.IsLargerBetter() {
		return a > b
	}
	return a < b
}
