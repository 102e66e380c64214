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

import "sort"

type kindEntry struct {
	schema ParamSchema
	build  func(b base) (Stage, error)
}

var registry = map[string]kindEntry{}

func register(kind string, schema ParamSchema, build func(b base) (Stage, error)) {
	registry[kind] = kindEntry{schema: schema, build: build}
}

// Kinds lists all registered stage kinds in a stable order.
func Kinds() []string {
	ans := make([]string, 0, len(registry))
	for kind := range registry {
		ans = append(ans, kind)
	}
	sort.Strings(ans)
	return ans
}

// SchemaOf returns the declared parameter schema of a stage kind.
func SchemaOf(kind string) (ParamSchema, error) {
	entry, ok := registry[kind]
	if !ok {
		return nil, &UnknownKindError{Kind: kind}
	}
	return entry.schema, nil
}

// New validates the provided configuration against the kind's
// parameter schema and constructs a stage instance with a fresh UID.
func New(kind string, params map[string]any) (Stage, error) {
	return NewWithUID(kind, newUID(kind), params)
}

// NewWithUID is New with a caller-provided UID. It is used by bundle
// loading and by tuning, which both must preserve stage identity.
func NewWithUID(kind, uid string, params map[string]any) (Stage, error) {
	entry, ok := registry[kind]
	if !ok {
		return nil, &UnknownKindError{Kind: kind}
	}
	validated, err := entry.schema.Validate(kind, params)
	if err != nil {
		return nil, err
	}
	return entry.build(base{uid: uid, kind: kind, params: validated})
}

// Rebuild constructs a fresh copy of a stage with some of its
// parameters overridden, keeping the original UID. The overrides
// are validated the same way as in New.
func Rebuild(s Stage, overrides map[string]any) (Stage, error) {
	merged := map[string]any(s.Params().Clone())
	for k, v := range overrides {
		merged[k] = v
	}
	return NewWithUID(s.Kind(), s.UID(), merged)
}

// InputColumns lists the values of the stage's input column-name
// parameters (in declaration order), OutputColumns the output ones.
// Together they let a caller derive the schema contract of a stage
// without knowing its kind.
func InputColumns(s Stage) []string {
	return columnsWithRole(s, RoleInput)
}

func OutputColumns(s Stage) []string {
	return columnsWithRole(s, RoleOutput)
}

func columnsWithRole(s Stage, role ColumnRole) []string {
	entry, ok := registry[s.Kind()]
	if !ok {
		return nil
	}
	var ans []string
	params := s.Params()
	for _, spec := range entry.schema {
		if spec.Role != role {
			continue
		}
		switch spec.Type {
		case StringParam:
			if v := params.String(spec.Name); v != "" {
				ans = append(ans, v)
			}
		case StringListParam:
			ans = append(ans, params.Strings(spec.Name)...)
		}
	}
	return ans
}
