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
	"context"
	"fmt"

	"github.com/navdeep-G/the-r-in-spark/dataset"
	deep "github.com/patrikeh/go-deep"
	"github.com/patrikeh/go-deep/training"
	"github.com/rs/zerolog/log"
)

const KindMLPClassifier = "mlp_classifier"

func init() {
	register(
		KindMLPClassifier,
		ParamSchema{
			{Name: "featuresCol", Type: StringParam, Default: "features", Role: RoleInput},
			{Name: "labelCol", Type: StringParam, Default: "label", Role: RoleInput},
			{Name: "predictionCol", Type: StringParam, Default: "prediction", Role: RoleOutput},
			{Name: "probabilityCol", Type: StringParam, Default: "probability", Role: RoleOutput},
			{Name: "hiddenLayers", Type: IntListParam, Default: []int{16, 8}, Tunable: true},
			{Name: "maxIter", Type: IntParam, Default: 200, Tunable: true},
			{Name: "learningRate", Type: FloatParam, Default: 0.001, Tunable: true},
		},
		func(b base) (Stage, error) {
			for _, v := range b.params.Ints("hiddenLayers") {
				if v <= 0 {
					return nil, &TypeMismatchError{
						Kind: b.kind, Name: "hiddenLayers",
						Want: "positive ints", Got: fmt.Sprintf("%v", b.params.Ints("hiddenLayers"))}
				}
			}
			return &MLPClassifier{base: b}, nil
		},
	)
}

// MLPClassifier fits a small feed-forward binary classifier trained
// with Adam.
type MLPClassifier struct {
	base
}

func (mlp *MLPClassifier) Fit(ctx context.Context, ds dataset.Dataset) (Transformer, error) {
	X, err := ds.Vectors(mlp.params.String("featuresCol"))
	if err != nil {
		return nil, err
	}
	y, err := ds.Numeric(mlp.params.String("labelCol"))
	if err != nil {
		return nil, err
	}
	if ds.Len() == 0 {
		return nil, &InsufficientDataError{UID: mlp.uid, Reason: "empty dataset"}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	examples := make(training.Examples, len(X))
	for i, row := range X {
		if y[i] != 0 && y[i] != 1 {
			return nil, fmt.Errorf(
				"%s: label column %s must contain only 0/1 values (got %v)",
				mlp.uid, mlp.params.String("labelCol"), y[i])
		}
		examples[i] = training.Example{
			Input:    row,
			Response: []float64{y[i]},
		}
	}
	layout := append([]int{}, mlp.params.Ints("hiddenLayers")...)
	layout = append(layout, 1)
	network := deep.NewNeural(&deep.Config{
		Inputs:     len(X[0]),
		Layout:     layout,
		Activation: deep.ActivationSigmoid,
		Mode:       deep.ModeBinary,
		Weight:     deep.NewUniform(0.5, 0.0),
		Bias:       true,
	})
	optimizer := training.NewAdam(mlp.params.Float("learningRate"), 0.9, 0.999, 1e-8)
	trainer := training.NewTrainer(optimizer, 0)
	trainer.Train(network, examples, examples, mlp.params.Int("maxIter"))
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	log.Debug().
		Str("stage", mlp.uid).
		Ints("layout", layout).
		Int("dataSize", len(y)).
		Msg("trained MLP classifier")
	return &MLPClassifierModel{base: mlp.base, network: network}, nil
}

// ---------------------------------------------

// MLPClassifierModel is the fitted counterpart of MLPClassifier.
type MLPClassifierModel struct {
	base
	network *deep.Neural
}

func (m *MLPClassifierModel) Transform(ctx context.Context, ds dataset.Dataset) (dataset.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return dataset.Dataset{}, err
	}
	featuresCol := m.params.String("featuresCol")
	X, err := ds.Vectors(featuresCol)
	if err != nil {
		return dataset.Dataset{}, err
	}
	probs := make([]float64, len(X))
	preds := make([]float64, len(X))
	for i, row := range X {
		out := m.network.Predict(row)
		probs[i] = out[0]
		if out[0] >= 0.5 {
			preds[i] = 1
		}
	}
	ds = ds.WithNumeric(m.params.String("probabilityCol"), probs)
	return ds.WithNumeric(m.params.String("predictionCol"), preds), nil
}

type mlpArtifacts struct {
	Network *deep.Dump `msgpack:"network"`
}

func (m *MLPClassifierModel) Artifacts() (any, error) {
	return &mlpArtifacts{Network: m.network.Dump()}, nil
}

func restoreMLPModel(b base, a *mlpArtifacts) (*MLPClassifierModel, error) {
	if a.Network == nil {
		return nil, fmt.Errorf("missing network dump in MLP artifacts")
	}
	return &MLPClassifierModel{base: b, network: deep.FromDump(a.Network)}, nil
}
