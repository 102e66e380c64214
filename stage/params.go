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
	"math"

	"github.com/agnivade/levenshtein"
)

// maxSuggestionDistance limits how far a did-you-mean candidate
// may be from the misspelled parameter name.
const maxSuggestionDistance = 3

type ParamType int

const (
	StringParam ParamType = iota
	BoolParam
	IntParam
	FloatParam
	StringListParam
	IntListParam
)

func (pt ParamType) String() string {
	switch pt {
	case StringParam:
		return "string"
	case BoolParam:
		return "bool"
	case IntParam:
		return "int"
	case FloatParam:
		return "float"
	case StringListParam:
		return "string list"
	case IntListParam:
		return "int list"
	}
	return "unknown"
}

// ColumnRole distinguishes column-name parameters from behavior
// parameters. Column-name parameters are what a pipeline uses to
// check column preconditions; behavior parameters are the tunable
// dimensions a parameter grid may address.
type ColumnRole int

const (
	RoleNone ColumnRole = iota
	RoleInput
	RoleOutput
)

type ParamSpec struct {
	Name     string
	Type     ParamType
	Default  any
	Required bool
	Role     ColumnRole
	Tunable  bool
}

// ParamSchema is the declared parameter surface of one stage kind.
type ParamSchema []ParamSpec

func (s ParamSchema) Find(name string) (ParamSpec, bool) {
	for _, spec := range s {
		if spec.Name == name {
			return spec, true
		}
	}
	return ParamSpec{}, false
}

func (s ParamSchema) suggest(name string) string {
	best := ""
	bestDist := maxSuggestionDistance + 1
	for _, spec := range s {
		if d := levenshtein.ComputeDistance(name, spec.Name); d < bestDist {
			bestDist = d
			best = spec.Name
		}
	}
	return best
}

// Validate checks a raw configuration against the schema, applies
// defaults for omitted parameters and returns the complete, typed
// parameter map.
func (s ParamSchema) Validate(kind string, vals map[string]any) (Params, error) {
	ans := make(Params, len(s))
	for name, v := range vals {
		spec, ok := s.Find(name)
		if !ok {
			return nil, &InvalidParameterError{
				Kind: kind, Name: name, Suggestion: s.suggest(name)}
		}
		cv, ok := coerce(spec.Type, v)
		if !ok {
			return nil, &TypeMismatchError{
				Kind: kind, Name: name,
				Want: spec.Type.String(), Got: typeName(v)}
		}
		ans[name] = cv
	}
	for _, spec := range s {
		if _, ok := ans[spec.Name]; ok {
			continue
		}
		if spec.Required {
			return nil, &MissingRequiredParameterError{Kind: kind, Name: spec.Name}
		}
		ans[spec.Name] = spec.Default
	}
	return ans, nil
}

// CheckValue validates a single candidate value (typically a grid
// point) against the schema and returns its canonical representation.
func (s ParamSchema) CheckValue(kind, name string, v any) (any, error) {
	spec, ok := s.Find(name)
	if !ok {
		return nil, &InvalidParameterError{
			Kind: kind, Name: name, Suggestion: s.suggest(name)}
	}
	cv, ok := coerce(spec.Type, v)
	if !ok {
		return nil, &TypeMismatchError{
			Kind: kind, Name: name, Want: spec.Type.String(), Got: typeName(v)}
	}
	return cv, nil
}

// coerce normalizes a raw value to the canonical representation of
// the declared type. It accepts the loosened shapes produced by JSON
// decoding (float64 for ints, []any for lists).
func coerce(pt ParamType, v any) (any, bool) {
	switch pt {
	case StringParam:
		s, ok := v.(string)
		return s, ok
	case BoolParam:
		b, ok := v.(bool)
		return b, ok
	case IntParam:
		switch tv := v.(type) {
		case int:
			return tv, true
		case int64:
			return int(tv), true
		case float64:
			if tv == math.Trunc(tv) {
				return int(tv), true
			}
		}
		return nil, false
	case FloatParam:
		switch tv := v.(type) {
		case float64:
			return tv, true
		case int:
			return float64(tv), true
		case int64:
			return float64(tv), true
		}
		return nil, false
	case StringListParam:
		switch tv := v.(type) {
		case []string:
			return tv, true
		case []any:
			ans := make([]string, len(tv))
			for i, item := range tv {
				s, ok := item.(string)
				if !ok {
					return nil, false
				}
				ans[i] = s
			}
			return ans, true
		}
		return nil, false
	case IntListParam:
		switch tv := v.(type) {
		case []int:
			return tv, true
		case []any:
			ans := make([]int, len(tv))
			for i, item := range tv {
				cv, ok := coerce(IntParam, item)
				if !ok {
					return nil, false
				}
				ans[i] = cv.(int)
			}
			return ans, true
		}
		return nil, false
	}
	return nil, false
}

func typeName(v any) string {
	switch v.(type) {
	case string:
		return "string"
	case bool:
		return "bool"
	case int, int64:
		return "int"
	case float64:
		return "float"
	case []string:
		return "string list"
	case []int:
		return "int list"
	case []any:
		return "list"
	}
	return "unsupported value"
}

// ---------------------------------------------

// Params is a validated, fully-defaulted parameter map. Values are
// guaranteed to hold the canonical type declared by the kind's schema,
// so the typed getters do not fail.
type Params map[string]any

func (p Params) String(name string) string {
	v, _ := p[name].(string)
	return v
}

func (p Params) Bool(name string) bool {
	v, _ := p[name].(bool)
	return v
}

func (p Params) Int(name string) int {
	v, _ := p[name].(int)
	return v
}

func (p Params) Float(name string) float64 {
	v, _ := p[name].(float64)
	return v
}

func (p Params) Strings(name string) []string {
	v, _ := p[name].([]string)
	return v
}

func (p Params) Ints(name string) []int {
	v, _ := p[name].([]int)
	return v
}

func (p Params) Clone() Params {
	ans := make(Params, len(p))
	for k, v := range p {
		ans[k] = v
	}
	return ans
}
