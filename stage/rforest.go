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
	"encoding/json"
	"fmt"

	randomforest "github.com/malaschitz/randomForest"
	"github.com/navdeep-G/the-r-in-spark/dataset"
	"github.com/rs/zerolog/log"
)

const KindRandomForestClassifier = "random_forest_classifier"

func init() {
	register(
		KindRandomForestClassifier,
		ParamSchema{
			{Name: "featuresCol", Type: StringParam, Default: "features", Role: RoleInput},
			{Name: "labelCol", Type: StringParam, Default: "label", Role: RoleInput},
			{Name: "predictionCol", Type: StringParam, Default: "prediction", Role: RoleOutput},
			{Name: "probabilityCol", Type: StringParam, Default: "probability", Role: RoleOutput},
			{Name: "numTrees", Type: IntParam, Default: 100, Tunable: true},
			{Name: "voteThreshold", Type: FloatParam, Default: 0.5, Tunable: true},
		},
		func(b base) (Stage, error) {
			if b.params.Int("numTrees") <= 0 {
				return nil, &TypeMismatchError{
					Kind: b.kind, Name: "numTrees",
					Want: "positive int", Got: fmt.Sprintf("%d", b.params.Int("numTrees"))}
			}
			return &RandomForestClassifier{base: b}, nil
		},
	)
}

// RandomForestClassifier fits a binary random forest.
type RandomForestClassifier struct {
	base
}

func (rf *RandomForestClassifier) Fit(ctx context.Context, ds dataset.Dataset) (Transformer, error) {
	X, err := ds.Vectors(rf.params.String("featuresCol"))
	if err != nil {
		return nil, err
	}
	y, err := ds.Numeric(rf.params.String("labelCol"))
	if err != nil {
		return nil, err
	}
	if ds.Len() == 0 {
		return nil, &InsufficientDataError{UID: rf.uid, Reason: "empty dataset"}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	classes := make([]int, len(y))
	for i, v := range y {
		if v != 0 && v != 1 {
			return nil, fmt.Errorf(
				"%s: label column %s must contain only 0/1 values (got %v)",
				rf.uid, rf.params.String("labelCol"), v)
		}
		classes[i] = int(v)
	}
	forest := &randomforest.Forest{}
	forest.Data = randomforest.ForestData{
		X:     X,
		Class: classes,
	}
	forest.Train(rf.params.Int("numTrees"))
	log.Debug().
		Str("stage", rf.uid).
		Int("numTrees", rf.params.Int("numTrees")).
		Int("dataSize", len(y)).
		Msg("trained random forest")
	return &RandomForestClassifierModel{base: rf.base, forest: forest}, nil
}

// ---------------------------------------------

// RandomForestClassifierModel is the fitted counterpart of
// RandomForestClassifier. The prediction is the majority vote, the
// probability column carries the positive-class vote fraction.
type RandomForestClassifierModel struct {
	base
	forest *randomforest.Forest
}

func (m *RandomForestClassifierModel) Transform(ctx context.Context, ds dataset.Dataset) (dataset.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return dataset.Dataset{}, err
	}
	featuresCol := m.params.String("featuresCol")
	X, err := ds.Vectors(featuresCol)
	if err != nil {
		return dataset.Dataset{}, err
	}
	threshold := m.params.Float("voteThreshold")
	probs := make([]float64, len(X))
	preds := make([]float64, len(X))
	for i, row := range X {
		votes := m.forest.Vote(row)
		if len(votes) > 1 {
			probs[i] = votes[1]
		}
		if probs[i] > threshold {
			preds[i] = 1
		}
	}
	ds = ds.WithNumeric(m.params.String("probabilityCol"), probs)
	return ds.WithNumeric(m.params.String("predictionCol"), preds), nil
}

type randomForestArtifacts struct {
	// Forest is the JSON encoding of the trained forest. The upstream
	// library marshals cleanly to JSON, so the bytes are embedded
	// as-is inside the artifact record.
	Forest json.RawMessage `msgpack:"forest"`
}

func (m *RandomForestClassifierModel) Artifacts() (any, error) {
	raw, err := json.Marshal(m.forest)
	if err != nil {
		return nil, fmt.Errorf("failed to encode random forest: %w", err)
	}
	return &randomForestArtifacts{Forest: raw}, nil
}

func restoreRandomForestModel(b base, a *randomForestArtifacts) (*RandomForestClassifierModel, error) {
	var forest randomforest.Forest
	if err := json.Unmarshal(a.Forest, &forest); err != nil {
		return nil, fmt.Errorf("failed to decode random forest: %w", err)
	}
	return &RandomForestClassifierModel{base: b, forest: &forest}, nil
}
