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

// Package stage defines the transformer/estimator abstraction of the
// pipeline engine along with a registry of concrete stage kinds and
// their typed parameter schemas.
package stage

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/navdeep-G/the-r-in-spark/dataset"
)

// Stage is a named, parameterized unit of work. A stage satisfies
// Transformer, Estimator or both. Its UID is assigned at construction
// time and never changes - it is the join key used by parameter-grid
// tuning and by stage lookup in pipelines.
type Stage interface {
	UID() string
	Kind() string
	Params() Params
}

// Transformer maps a dataset to a new dataset. The operation is pure
// and deterministic given the transformer's frozen internal state.
type Transformer interface {
	Stage
	Transform(ctx context.Context, ds dataset.Dataset) (dataset.Dataset, error)
}

// Estimator consumes training data and produces an independent
// Transformer whose internal state is frozen at return time.
type Estimator interface {
	Stage
	Fit(ctx context.Context, ds dataset.Dataset) (Transformer, error)
}

// base carries the identity and validated configuration shared
// by all concrete stages.
type base struct {
	uid    string
	kind   string
	params Params
}

func (b base) UID() string {
	return b.uid
}

func (b base) Kind() string {
	return b.kind
}

func (b base) Params() Params {
	return b.params.Clone()
}

func newUID(kind string) string {
	return fmt.Sprintf("%s_%08x", kind, rand.Uint32())
}
