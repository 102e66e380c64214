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

import "fmt"

// Persistent is satisfied by fitted stages carrying learned state.
// Artifacts returns a msgpack-encodable record of that state; pure
// transformers (e.g. the vector assembler) do not implement the
// interface and are persisted as kind + parameters only.
type Persistent interface {
	Artifacts() (any, error)
}

type stringIndexerArtifacts struct {
	Labels []string `msgpack:"labels"`
}

func (m *StringIndexerModel) Artifacts() (any, error) {
	return &stringIndexerArtifacts{Labels: m.labels}, nil
}

type oneHotArtifacts struct {
	Size int `msgpack:"size"`
}

func (m *OneHotEncoderModel) Artifacts() (any, error) {
	return &oneHotArtifacts{Size: m.size}, nil
}

type standardScalerArtifacts struct {
	Mean []float64 `msgpack:"mean"`
	Std  []float64 `msgpack:"std"`
}

func (m *StandardScalerModel) Artifacts() (any, error) {
	return &standardScalerArtifacts{Mean: m.mean, Std: m.std}, nil
}

type logisticArtifacts struct {
	Weights   []float64 `msgpack:"weights"`
	Intercept float64   `msgpack:"intercept"`
}

func (m *LogisticRegressionModel) Artifacts() (any, error) {
	return &logisticArtifacts{Weights: m.weights, Intercept: m.intercept}, nil
}

// Restore rebuilds a fitted transformer from its persisted identity:
// kind, uid, the full parameter map and - where the kind carries
// learned state - an artifact record handed over via the unmarshal
// callback (the caller owns the wire encoding). Stage kinds without
// artifacts are reconstructed through the registry directly.
func Restore(
	kind, uid string,
	params map[string]any,
	unmarshal func(into any) error,
) (Transformer, error) {
	entry, ok := registry[kind]
	if !ok {
		return nil, &UnknownKindError{Kind: kind}
	}
	validated, err := entry.schema.Validate(kind, params)
	if err != nil {
		return nil, err
	}
	b := base{uid: uid, kind: kind, params: validated}

	switch kind {
	case KindStringIndexer:
		var a stringIndexerArtifacts
		if err := unmarshal(&a); err != nil {
			return nil, err
		}
		return newStringIndexerModel(b, a.Labels), nil
	case KindOneHotEncoder:
		var a oneHotArtifacts
		if err := unmarshal(&a); err != nil {
			return nil, err
		}
		return &OneHotEncoderModel{base: b, size: a.Size}, nil
	case KindStandardScaler:
		var a standardScalerArtifacts
		if err := unmarshal(&a); err != nil {
			return nil, err
		}
		return &StandardScalerModel{base: b, mean: a.Mean, std: a.Std}, nil
	case KindLogisticRegression:
		var a logisticArtifacts
		if err := unmarshal(&a); err != nil {
			return nil, err
		}
		return &LogisticRegressionModel{base: b, weights: a.Weights, intercept: a.Intercept}, nil
	case KindRandomForestClassifier:
		var a randomForestArtifacts
		if err := unmarshal(&a); err != nil {
			return nil, err
		}
		return restoreRandomForestModel(b, &a)
	case KindMLPClassifier:
		var a mlpArtifacts
		if err := unmarshal(&a); err != nil {
			return nil, err
		}
		return restoreMLPModel(b, &a)
	case KindLightGBMScorer:
		var a lightGBMArtifacts
		if err := unmarshal(&a); err != nil {
			return nil, err
		}
		return restoreLightGBMScorer(b, &a)
	}

	s, err := entry.build(b)
	if err != nil {
		return nil, err
	}
	t, ok := s.(Transformer)
	if !ok {
		return nil, fmt.Errorf("stage kind %s cannot be restored as a transformer", kind)
	}
	return t, nil
}
