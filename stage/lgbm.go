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

package stage

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os"

	"github.com/dmitryikh/leaves"
	"github.com/navdeep-G/the-r-in-spark/dataset"
)

const KindLightGBMScorer = "lightgbm_scorer"

func init() {
	register(
		KindLightGBMScorer,
		ParamSchema{
			{Name: "featuresCol", Type: StringParam, Default: "features", Role: RoleInput},
			{Name: "predictionCol", Type: StringParam, Default: "prediction", Role: RoleOutput},
			{Name: "probabilityCol", Type: StringParam, Default: "probability", Role: RoleOutput},
			{Name: "modelPath", Type: StringParam, Required: true},
		},
		func(b base) (Stage, error) {
			raw, err := os.ReadFile(b.params.String("modelPath"))
			if err != nil {
				return nil, fmt.Errorf("failed to read LightGBM model: %w", err)
			}
			return newLightGBMScorer(b, raw)
		},
	)
}

// LightGBMScorer applies a gradient-boosted-trees model trained by an
// external process (LightGBM text format). It is inference-only and
// therefore a pure transformer: there is nothing to fit, the booster
// is loaded at construction time and frozen.
type LightGBMScorer struct {
	base
	raw      []byte
	ensemble *leaves.Ensemble
}

func newLightGBMScorer(b base, raw []byte) (*LightGBMScorer, error) {
	ensemble, err := leaves.LGEnsembleFromReader(bufio.NewReader(bytes.NewReader(raw)), true)
	if err != nil {
		return nil, fmt.Errorf("failed to load LightGBM model: %w", err)
	}
	return &LightGBMScorer{base: b, raw: raw, ensemble: ensemble}, nil
}

func (sc *LightGBMScorer) Transform(ctx context.Context, ds dataset.Dataset) (dataset.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return dataset.Dataset{}, err
	}
	featuresCol := sc.params.String("featuresCol")
	X, err := ds.Vectors(featuresCol)
	if err != nil {
		return dataset.Dataset{}, err
	}
	numFeatures := sc.ensemble.NFeatures()
	probs := make([]float64, len(X))
	preds := make([]float64, len(X))
	for i, row := range X {
		if len(row) != numFeatures {
			return dataset.Dataset{}, &dataset.DimensionMismatchError{
				Column: featuresCol, Row: i, Want: numFeatures, Got: len(row)}
		}
		p := sc.ensemble.PredictSingle(row, 0)
		probs[i] = p
		if p > 0.5 {
			preds[i] = 1
		}
	}
	ds = ds.WithNumeric(sc.params.String("probabilityCol"), probs)
	return ds.WithNumeric(sc.params.String("predictionCol"), preds), nil
}

type lightGBMArtifacts struct {
	// Model holds the booster in LightGBM's own text format, so the
	// bundle stays readable by any LightGBM runtime.
	Model []byte `msgpack:"model"`
}

func (sc *LightGBMScorer) Artifacts() (any, error) {
	return &lightGBMArtifacts{Model: sc.raw}, nil
}

func restoreLightGBMScorer(b base, a *lightGBMArtifacts) (*LightGBMScorer, error) {
	return newLightGBMScorer(b, a.Model)
}
