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

// Package tuning implements parameter-grid search driven by k-fold
// cross-validation.
package tuning

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/navdeep-G/the-r-in-spark/pipeline"
	"github.com/navdeep-G/the-r-in-spark/stage"
)

type gridDim struct {
	stageRef string
	param    string
	values   []any
}

// GridBuilder accumulates tunable dimensions for a parameter grid.
// Dimension order is the Add call order, which fixes the expansion
// order of the final grid.
type GridBuilder struct {
	dims []gridDim
}

func NewGrid() *GridBuilder {
	return &GridBuilder{}
}

// Add declares candidate values for one parameter of one stage
// (addressed by UID or unambiguous kind prefix).
func (g *GridBuilder) Add(stageRef, param string, values ...any) *GridBuilder {
	g.dims = append(g.dims, gridDim{stageRef: stageRef, param: param, values: values})
	return g
}

// Build validates every dimension against the referenced stage's
// declared schema: the stage must exist, the parameter must be
// a known behavior (tunable) parameter and every candidate value
// must have the declared type.
func (g *GridBuilder) Build(p pipeline.Pipeline) (ParamGrid, error) {
	dims := make([]gridDim, len(g.dims))
	for i, dim := range g.dims {
		s, err := p.Stage(dim.stageRef)
		if err != nil {
			return ParamGrid{}, err
		}
		schema, err := stage.SchemaOf(s.Kind())
		if err != nil {
			return ParamGrid{}, err
		}
		spec, ok := schema.Find(dim.param)
		if !ok {
			return ParamGrid{}, &stage.InvalidParameterError{Kind: s.Kind(), Name: dim.param}
		}
		if !spec.Tunable {
			return ParamGrid{}, fmt.Errorf(
				"parameter %q of stage %s is not tunable", dim.param, s.UID())
		}
		if len(dim.values) == 0 {
			return ParamGrid{}, fmt.Errorf(
				"no candidate values for parameter %q of stage %s", dim.param, s.UID())
		}
		values := make([]any, len(dim.values))
		for j, v := range dim.values {
			cv, err := schema.CheckValue(s.Kind(), dim.param, v)
			if err != nil {
				return ParamGrid{}, err
			}
			values[j] = cv
		}
		dims[i] = gridDim{stageRef: s.UID(), param: dim.param, values: values}
	}
	return ParamGrid{dims: dims}, nil
}

// ---------------------------------------------

// ParamGrid is a validated set of tunable dimensions. It expands to
// the cartesian product of all candidate values in a deterministic,
// reproducible order (first dimension slowest, last fastest).
type ParamGrid struct {
	dims []gridDim
}

func (g ParamGrid) Size() int {
	if len(g.dims) == 0 {
		return 0
	}
	ans := 1
	for _, dim := range g.dims {
		ans *= len(dim.values)
	}
	return ans
}

// Combinations materializes the cartesian expansion.
func (g ParamGrid) Combinations() []Combination {
	total := g.Size()
	if total == 0 {
		return nil
	}
	ans := make([]Combination, total)
	for i := 0; i < total; i++ {
		comb := make(Combination, len(g.dims))
		rest := i
		for d := len(g.dims) - 1; d >= 0; d-- {
			dim := g.dims[d]
			comb[d] = Setting{
				StageRef: dim.stageRef,
				Param:    dim.param,
				Value:    dim.values[rest%len(dim.values)],
			}
			rest /= len(dim.values)
		}
		ans[i] = comb
	}
	return ans
}

// Setting is one chosen (stage, parameter, value) assignment.
type Setting struct {
	StageRef string `json:"stageRef" msgpack:"stageRef"`
	Param    string `json:"param" msgpack:"param"`
	Value    any    `json:"value" msgpack:"value"`
}

// Combination is one full assignment of the grid's dimensions.
type Combination []Setting

func (c Combination) String() string {
	items := make([]string, len(c))
	for i, s := range c {
		items[i] = fmt.Sprintf("%s.%s=%v", s.StageRef, s.Param, s.Value)
	}
	return strings.Join(items, ", ")
}

// Overrides groups the combination by stage for pipeline rebuilding.
func (c Combination) Overrides() map[string]map[string]any {
	ans := make(map[string]map[string]any)
	for _, s := range c {
		if _, ok := ans[s.StageRef]; !ok {
			ans[s.StageRef] = make(map[string]any)
		}
		ans[s.StageRef][s.Param] = s.Value
	}
	return ans
}

// ---------------------------------------------

// GridFromFile reads a JSON grid description of the form
// {"stageRef": {"param": [v1, v2, ...]}} and validates it against
// the pipeline. Keys are sorted so the expansion order does not
// depend on JSON map iteration.
func GridFromFile(path string, p pipeline.Pipeline) (ParamGrid, error) {
	rawData, err := os.ReadFile(path)
	if err != nil {
		return ParamGrid{}, fmt.Errorf("failed to read grid file: %w", err)
	}
	var spec map[string]map[string][]any
	if err := json.Unmarshal(rawData, &spec); err != nil {
		return ParamGrid{}, fmt.Errorf("failed to parse grid file: %w", err)
	}
	builder := NewGrid()
	stageRefs := make([]string, 0, len(spec))
	for ref := range spec {
		stageRefs = append(stageRefs, ref)
	}
	sort.Strings(stageRefs)
	for _, ref := range stageRefs {
		params := make([]string, 0, len(spec[ref]))
		for name := range spec[ref] {
			params = append(params, name)
		}
		sort.Strings(params)
		for _, name := range params {
			builder.Add(ref, name, spec[ref][name]...)
		}
	}
	return builder.Build(p)
}
