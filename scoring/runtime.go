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

// Package scoring serves predictions from a serialized bundle. The
// bundle is loaded into memory exactly once; every subsequent call
// only validates the incoming records against the model's required
// input columns and applies the frozen transformers. A failing call
// never invalidates the loaded model for later calls, and concurrent
// calls need no locking since transform never mutates stage state.
package scoring

import (
	"context"
	"errors"
	"fmt"

	"github.com/navdeep-G/the-r-in-spark/bundle"
	"github.com/navdeep-G/the-r-in-spark/dataset"
	"github.com/navdeep-G/the-r-in-spark/pipeline"
	"github.com/rs/zerolog/log"
)

// PredictionError wraps a failure inside a single scoring call.
type PredictionError struct {
	Err error
}

func (err *PredictionError) Error() string {
	return fmt.Sprintf("prediction failed: %s", err.Err)
}

func (err *PredictionError) Unwrap() error {
	return err.Err
}

// Record is a single ad-hoc input row: column name to value, where
// a value is a number, a string or a numeric vector.
type Record map[string]any

// Runtime holds one loaded model.
type Runtime struct {
	model     *pipeline.PipelineModel
	inputCols []string
}

// Open loads a bundle from the provided directory.
func Open(path string) (*Runtime, error) {
	model, err := bundle.Load(path)
	if err != nil {
		return nil, err
	}
	rt := &Runtime{
		model:     model,
		inputCols: model.InputColumns(),
	}
	log.Info().
		Str("path", path).
		Strs("inputColumns", rt.inputCols).
		Msg("loaded model for scoring")
	return rt, nil
}

// NewRuntime wraps an already loaded model.
func NewRuntime(model *pipeline.PipelineModel) *Runtime {
	return &Runtime{model: model, inputCols: model.InputColumns()}
}

// InputColumns lists the columns every incoming record must provide.
func (rt *Runtime) InputColumns() []string {
	ans := make([]string, len(rt.inputCols))
	copy(ans, rt.inputCols)
	return ans
}

// PredictBatch scores a whole dataset. It is the same engine path as
// Predict - the two differ only in input size and caller latency
// expectations.
func (rt *Runtime) PredictBatch(ctx context.Context, ds dataset.Dataset) (dataset.Dataset, error) {
	for _, name := range rt.inputCols {
		if !ds.HasColumn(name) {
			return dataset.Dataset{}, &dataset.SchemaError{Column: name, Missing: true}
		}
	}
	ans, err := rt.model.Transform(ctx, ds)
	if err != nil {
		return dataset.Dataset{}, rt.wrapErr(err)
	}
	return ans, nil
}

// Predict scores one record and returns the columns the model added.
func (rt *Runtime) Predict(ctx context.Context, rec Record) (map[string]any, error) {
	ds, err := rt.recordToDataset(rec)
	if err != nil {
		return nil, err
	}
	out, err := rt.model.Transform(ctx, ds)
	if err != nil {
		return nil, rt.wrapErr(err)
	}
	if out.Len() == 0 {
		// a stage configured to skip invalid rows dropped the record
		return nil, &PredictionError{
			Err: fmt.Errorf("the record was filtered out by the pipeline")}
	}
	ans := make(map[string]any)
	for _, col := range out.Schema().Columns() {
		if _, isInput := rec[col.Name]; isInput {
			continue
		}
		switch col.Type {
		case dataset.Numeric:
			vals, _ := out.Numeric(col.Name)
			if len(vals) == 1 {
				ans[col.Name] = vals[0]
			}
		case dataset.String:
			vals, _ := out.Strings(col.Name)
			if len(vals) == 1 {
				ans[col.Name] = vals[0]
			}
		case dataset.Vector:
			vals, _ := out.Vectors(col.Name)
			if len(vals) == 1 {
				ans[col.Name] = vals[0]
			}
		}
	}
	return ans, nil
}

func (rt *Runtime) recordToDataset(rec Record) (dataset.Dataset, error) {
	b := dataset.NewBuilder()
	for name, v := range rec {
		switch tv := v.(type) {
		case float64:
			b.AddNumeric(name, []float64{tv})
		case int:
			b.AddNumeric(name, []float64{float64(tv)})
		case string:
			b.AddStrings(name, []string{tv})
		case []float64:
			b.AddVectors(name, [][]float64{tv})
		case []any:
			vec := make([]float64, len(tv))
			for i, item := range tv {
				fv, ok := item.(float64)
				if !ok {
					return dataset.Dataset{}, &dataset.SchemaError{
						Column: name, Want: dataset.Vector}
				}
				vec[i] = fv
			}
			b.AddVectors(name, [][]float64{vec})
		default:
			return dataset.Dataset{}, &dataset.SchemaError{Column: name, Want: dataset.Numeric}
		}
	}
	ds, err := b.Build()
	if err != nil {
		return dataset.Dataset{}, &PredictionError{Err: err}
	}
	for _, name := range rt.inputCols {
		if !ds.HasColumn(name) {
			return dataset.Dataset{}, &dataset.SchemaError{Column: name, Missing: true}
		}
	}
	return ds, nil
}

// wrapErr keeps schema problems recognizable for callers (e.g. the
// HTTP layer maps them to client errors) and wraps everything else
// as a prediction failure.
func (rt *Runtime) wrapErr(err error) error {
	var schemaErr *dataset.SchemaError
	if errors.As(err, &schemaErr) {
		return schemaErr
	}
	return &PredictionError{Err: err}
}
