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
	"math"

	"github.com/navdeep-G/the-r-in-spark/dataset"
)

const KindOneHotEncoder = "one_hot_encoder"

func init() {
	register(
		KindOneHotEncoder,
		ParamSchema{
			{Name: "inputCol", Type: StringParam, Required: true, Role: RoleInput},
			{Name: "outputCol", Type: StringParam, Default: "", Role: RoleOutput},
			// categorySize 0 means the size is learned from data during fit
			{Name: "categorySize", Type: IntParam, Default: 0},
			{Name: "dropLast", Type: BoolParam, Default: true, Tunable: true},
		},
		func(b base) (Stage, error) {
			if b.params.Int("categorySize") < 0 {
				return nil, &TypeMismatchError{
					Kind: b.kind, Name: "categorySize",
					Want: "non-negative int", Got: fmt.Sprintf("%d", b.params.Int("categorySize"))}
			}
			if b.params.String("outputCol") == "" {
				b.params["outputCol"] = b.params.String("inputCol") + "_vec"
			}
			return &OneHotEncoder{base: b}, nil
		},
	)
}

// OneHotEncoder expands an index column into an indicator vector.
// The category count is either declared up front (categorySize) or
// learned during fit as max(index)+1.
type OneHotEncoder struct {
	base
}

func (enc *OneHotEncoder) Fit(ctx context.Context, ds dataset.Dataset) (Transformer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if ds.Len() == 0 {
		return nil, &InsufficientDataError{UID: enc.uid, Reason: "empty dataset"}
	}
	size := enc.params.Int("categorySize")
	if size == 0 {
		vals, err := ds.Numeric(enc.params.String("inputCol"))
		if err != nil {
			return nil, err
		}
		maxIdx := 0.0
		for _, v := range vals {
			if v > maxIdx {
				maxIdx = v
			}
		}
		size = int(maxIdx) + 1
	}
	return &OneHotEncoderModel{base: enc.base, size: size}, nil
}

// ---------------------------------------------

// OneHotEncoderModel is the fitted counterpart of OneHotEncoder.
type OneHotEncoderModel struct {
	base
	size int
}

// Size returns the category count the encoder was fitted with.
func (m *OneHotEncoderModel) Size() int {
	return m.size
}

func (m *OneHotEncoderModel) Transform(ctx context.Context, ds dataset.Dataset) (dataset.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return dataset.Dataset{}, err
	}
	inputCol := m.params.String("inputCol")
	vals, err := ds.Numeric(inputCol)
	if err != nil {
		return dataset.Dataset{}, err
	}
	outputCol := m.params.String("outputCol")
	width := m.size
	if m.params.Bool("dropLast") {
		width = m.size - 1
	}
	out := make([][]float64, len(vals))
	for i, v := range vals {
		if v != math.Trunc(v) || v < 0 || int(v) >= m.size {
			return dataset.Dataset{}, &UnseenCategoryError{
				UID: m.uid, Column: inputCol, Value: fmt.Sprintf("%v", v)}
		}
		vec := make([]float64, width)
		if idx := int(v); idx < width {
			vec[idx] = 1
		}
		out[i] = vec
	}
	return ds.WithVectors(outputCol, out), nil
}
