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

// Package pipeline sequences stages into a single estimator and
// manages the estimator/transformer duality of the composite: fitting
// a pipeline threads the running dataset through its stages in order
// and yields an immutable PipelineModel of fitted transformers.
package pipeline

import (
	"context"
	"fmt"

	"github.com/navdeep-G/the-r-in-spark/dataset"
	"github.com/navdeep-G/the-r-in-spark/stage"
	"github.com/rs/zerolog/log"
)

// StageFitError reports which stage broke a pipeline fit. The whole
// fit is atomic - no partially fitted state escapes on failure.
type StageFitError struct {
	UID   string
	Index int
	Err   error
}

func (err *StageFitError) Error() string {
	return fmt.Sprintf("failed to fit stage %s (index %d): %s", err.UID, err.Index, err.Err)
}

func (err *StageFitError) Unwrap() error {
	return err.Err
}

// Pipeline is an ordered sequence of stages. It satisfies
// stage.Estimator even if all its stages are transformers, so callers
// always go through a single fit entry point. A Pipeline is a value:
// Append returns a new pipeline and never mutates a shared one.
type Pipeline struct {
	uid    string
	stages []stage.Stage
}

func New(stages ...stage.Stage) Pipeline {
	owned := make([]stage.Stage, len(stages))
	copy(owned, stages)
	return Pipeline{uid: newPipelineUID(), stages: owned}
}

func (p Pipeline) UID() string {
	return p.uid
}

func (p Pipeline) Kind() string {
	return "pipeline"
}

func (p Pipeline) Params() stage.Params {
	return stage.Params{}
}

// Stages returns a copy of the stage list.
func (p Pipeline) Stages() []stage.Stage {
	ans := make([]stage.Stage, len(p.stages))
	copy(ans, p.stages)
	return ans
}

// Append returns a new pipeline with the stage added at the end.
// The receiver is left untouched, so a base pipeline can serve as
// a template shared by multiple tuning trials.
func (p Pipeline) Append(s stage.Stage) Pipeline {
	stages := make([]stage.Stage, 0, len(p.stages)+1)
	stages = append(stages, p.stages...)
	stages = append(stages, s)
	return Pipeline{uid: p.uid, stages: stages}
}

// Fit walks the stage list in order. Estimator stages are fitted
// against the running dataset (i.e. the cumulative output of all
// previous stages) and replaced by the resulting transformers;
// transformer-only stages are applied as-is. This threading is what
// lets a scaler learn statistics on engineered features rather than
// on raw input.
func (p Pipeline) Fit(ctx context.Context, ds dataset.Dataset) (stage.Transformer, error) {
	return p.FitModel(ctx, ds)
}

// FitModel is Fit with a concrete result type.
func (p Pipeline) FitModel(ctx context.Context, ds dataset.Dataset) (*PipelineModel, error) {
	fitted := make([]stage.Transformer, len(p.stages))
	current := ds
	for i, s := range p.stages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		switch ts := s.(type) {
		case stage.Estimator:
			t, err := ts.Fit(ctx, current)
			if err != nil {
				return nil, &StageFitError{UID: s.UID(), Index: i, Err: err}
			}
			fitted[i] = t
		case stage.Transformer:
			fitted[i] = ts
		default:
			return nil, &StageFitError{
				UID: s.UID(), Index: i,
				Err: fmt.Errorf("stage satisfies neither estimator nor transformer")}
		}
		if i < len(p.stages)-1 {
			next, err := fitted[i].Transform(ctx, current)
			if err != nil {
				return nil, &StageFitError{UID: s.UID(), Index: i, Err: err}
			}
			current = next
		}
	}
	log.Debug().
		Str("pipeline", p.uid).
		Int("numStages", len(p.stages)).
		Int("dataSize", ds.Len()).
		Msg("fitted pipeline")
	return &PipelineModel{uid: p.uid, stages: fitted}, nil
}

// WithParams returns a new pipeline in which the stages addressed by
// the override keys (exact UID or unambiguous kind prefix) are rebuilt
// with the provided parameter values, keeping their UIDs. Untouched
// stages are shared with the receiver.
func (p Pipeline) WithParams(overrides map[string]map[string]any) (Pipeline, error) {
	stages := make([]stage.Stage, len(p.stages))
	copy(stages, p.stages)
	for ref, vals := range overrides {
		idx, err := p.findStage(ref)
		if err != nil {
			return Pipeline{}, err
		}
		rebuilt, err := stage.Rebuild(stages[idx], vals)
		if err != nil {
			return Pipeline{}, err
		}
		stages[idx] = rebuilt
	}
	return Pipeline{uid: p.uid, stages: stages}, nil
}

// ---------------------------------------------

// PipelineModel is an ordered sequence of fitted transformers.
// It is produced only by fitting a Pipeline and never changes
// afterwards, so concurrent use needs no locking.
type PipelineModel struct {
	uid    string
	stages []stage.Transformer
}

// NewModel assembles a model directly from fitted transformers.
// It is used by bundle loading; regular code obtains models by
// fitting pipelines.
func NewModel(uid string, stages []stage.Transformer) *PipelineModel {
	owned := make([]stage.Transformer, len(stages))
	copy(owned, stages)
	return &PipelineModel{uid: uid, stages: owned}
}

func (m *PipelineModel) UID() string {
	return m.uid
}

func (m *PipelineModel) Kind() string {
	return "pipeline_model"
}

func (m *PipelineModel) Params() stage.Params {
	return stage.Params{}
}

// Stages returns a copy of the fitted transformer list.
func (m *PipelineModel) Stages() []stage.Transformer {
	ans := make([]stage.Transformer, len(m.stages))
	copy(ans, m.stages)
	return ans
}

// Transform applies all fitted stages in order. Failure of any stage
// aborts the whole call.
func (m *PipelineModel) Transform(ctx context.Context, ds dataset.Dataset) (dataset.Dataset, error) {
	current := ds
	for i, t := range m.stages {
		if err := ctx.Err(); err != nil {
			return dataset.Dataset{}, err
		}
		next, err := t.Transform(ctx, current)
		if err != nil {
			return dataset.Dataset{}, &StageFitError{UID: t.UID(), Index: i, Err: err}
		}
		current = next
	}
	return current, nil
}

// InputColumns derives the external input contract of the model:
// the column-name inputs of all stages minus columns produced by
// earlier stages.
func (m *PipelineModel) InputColumns() []string {
	produced := make(map[string]bool)
	seen := make(map[string]bool)
	var ans []string
	for _, t := range m.stages {
		for _, name := range stage.InputColumns(t) {
			if !produced[name] && !seen[name] {
				seen[name] = true
				ans = append(ans, name)
			}
		}
		for _, name := range stage.OutputColumns(t) {
			produced[name] = true
		}
	}
	return ans
}
