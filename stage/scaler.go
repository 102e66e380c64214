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
	"gonum.org/v1/gonum/stat"
)

const KindStandardScaler = "standard_scaler"

func init() {
	register(
		KindStandardScaler,
		ParamSchema{
			{Name: "inputCol", Type: StringParam, Required: true, Role: RoleInput},
			{Name: "outputCol", Type: StringParam, Default: "", Role: RoleOutput},
			{Name: "withMean", Type: BoolParam, Default: true, Tunable: true},
			{Name: "withStd", Type: BoolParam, Default: true, Tunable: true},
			// strict makes zero-variance dimensions an error instead of
			// leaving them unscaled
			{Name: "strict", Type: BoolParam, Default: false},
		},
		func(b base) (Stage, error) {
			if b.params.String("outputCol") == "" {
				b.params["outputCol"] = b.params.String("inputCol") + "_scaled"
			}
			return &StandardScaler{base: b}, nil
		},
	)
}

// StandardScaler learns per-dimension mean and standard deviation of
// a vector column. Zero-variance dimensions are passed through as
// identity unless strict mode is on, in which case fitting fails.
type StandardScaler struct {
	base
}

func (sc *StandardScaler) Fit(ctx context.Context, ds dataset.Dataset) (Transformer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	inputCol := sc.params.String("inputCol")
	vecs, err := ds.Vectors(inputCol)
	if err != nil {
		return nil, err
	}
	if ds.Len() == 0 {
		return nil, &InsufficientDataError{UID: sc.uid, Reason: "empty dataset"}
	}
	if sc.params.Bool("withStd") && ds.Len() < 2 {
		return nil, &InsufficientDataError{
			UID: sc.uid, Reason: "at least 2 rows required to estimate standard deviation"}
	}
	dims := len(vecs[0])
	col := make([]float64, len(vecs))
	mean := make([]float64, dims)
	std := make([]float64, dims)
	for j := 0; j < dims; j++ {
		for i, v := range vecs {
			if len(v) != dims {
				return nil, &dataset.DimensionMismatchError{
					Column: inputCol, Row: i, Want: dims, Got: len(v)}
			}
			col[i] = v[j]
		}
		m, sd := stat.MeanStdDev(col, nil)
		if sd == 0 {
			if sc.params.Bool("strict") {
				return nil, &InsufficientDataError{
					UID:    sc.uid,
					Reason: fmt.Sprintf("zero variance in dimension %d of column %s", j, inputCol),
				}
			}
			sd = 1
		}
		mean[j] = m
		std[j] = sd
	}
	return &StandardScalerModel{base: sc.base, mean: mean, std: std}, nil
}

// ---------------------------------------------

// StandardScalerModel is the fitted counterpart of StandardScaler.
type StandardScalerModel struct {
	base
	mean []float64
	std  []float64
}

// Mean returns the learned per-dimension means.
func (m *StandardScalerModel) Mean() []float64 {
	ans := make([]float64, len(m.mean))
	copy(ans, m.mean)
	return ans
}

// Std returns the learned per-dimension standard deviations
// (zero-variance dimensions hold 1).
func (m *StandardScalerModel) Std() []float64 {
	ans := make([]float64, len(m.std))
	copy(ans, m.std)
	return ans
}

func (m *StandardScalerModel) Transform(ctx context.Context, ds dataset.Dataset) (dataset.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return dataset.Dataset{}, err
	}
	inputCol := m.params.String("inputCol")
	vecs, err := ds.Vectors(inputCol)
	if err != nil {
		return dataset.Dataset{}, err
	}
	outputCol := m.params.String("outputCol")
	withMean := m.params.Bool("withMean")
	withStd := m.params.Bool("withStd")
	out := make([][]float64, len(vecs))
	for i, v := range vecs {
		if len(v) != len(m.mean) {
			return dataset.Dataset{}, &dataset.DimensionMismatchError{
				Column: inputCol, Row: i, Want: len(m.mean), Got: len(v)}
		}
		row := make([]float64, len(v))
		for j, x := range v {
			if withMean {
				x -= m.mean[j]
			}
			if withStd {
				x /= m.std[j]
			}
			row[j] = x
		}
		out[i] = row
	}
	return ds.WithVectors(outputCol, out), nil
}
