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

package pipeline

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/navdeep-G/the-r-in-spark/stage"
)

// StageSpec is the declarative form of a single stage, typically
// decoded from a JSON pipeline description.
type StageSpec struct {
	Kind   string         `json:"kind"`
	Params map[string]any `json:"params"`
}

// Build constructs a pipeline from declarative stage specs. Each spec
// is validated against its kind's parameter schema, so configuration
// errors surface here rather than deep inside a later fit.
func Build(specs []StageSpec) (Pipeline, error) {
	stages := make([]stage.Stage, len(specs))
	for i, spec := range specs {
		s, err := stage.New(spec.Kind, spec.Params)
		if err != nil {
			return Pipeline{}, fmt.Errorf("stage %d: %w", i, err)
		}
		stages[i] = s
	}
	return New(stages...), nil
}

// BuildFromFile reads a JSON array of stage specs and builds
// a pipeline out of it.
func BuildFromFile(path string) (Pipeline, error) {
	rawData, err := os.ReadFile(path)
	if err != nil {
		return Pipeline{}, fmt.Errorf("failed to read pipeline spec: %w", err)
	}
	var specs []StageSpec
	if err := json.Unmarshal(rawData, &specs); err != nil {
		return Pipeline{}, fmt.Errorf("failed to parse pipeline spec: %w", err)
	}
	return Build(specs)
}
