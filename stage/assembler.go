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

	"github.com/navdeep-G/the-r-in-spark/dataset"
)

const KindVectorAssembler = "vector_assembler"

func init() {
	register(
		KindVectorAssembler,
		ParamSchema{
			{Name: "inputCols", Type: StringListParam, Required: true, Role: RoleInput},
			{Name: "outputCol", Type: StringParam, Default: "features", Role: RoleOutput},
		},
		func(b base) (Stage, error) {
			return &VectorAssembler{base: b}, nil
		},
	)
}

// VectorAssembler concatenates numeric and vector columns into one
// fixed-order vector column. It is a pure transformer - there is
// nothing to learn.
type VectorAssembler struct {
	base
}

func (va *VectorAssembler) Transform(ctx context.Context, ds dataset.Dataset) (dataset.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return dataset.Dataset{}, err
	}
	inputCols := va.params.Strings("inputCols")
	out := make([][]float64, ds.Len())
	for _, name := range inputCols {
		ctype, ok := ds.Schema().ColumnType(name)
		if !ok {
			return dataset.Dataset{}, &dataset.SchemaError{
				Column: name, Want: dataset.Numeric, Missing: true}
		}
		switch ctype {
		case dataset.Numeric:
			vals, err := ds.Numeric(name)
			if err != nil {
				return dataset.Dataset{}, err
			}
			for i, v := range vals {
				out[i] = append(out[i], v)
			}
		case dataset.Vector:
			vals, err := ds.Vectors(name)
			if err != nil {
				return dataset.Dataset{}, err
			}
			arity := -1
			for i, v := range vals {
				if arity == -1 {
					arity = len(v)

				} else if len(v) != arity {
					return dataset.Dataset{}, &dataset.DimensionMismatchError{
						Column: name, Row: i, Want: arity, Got: len(v)}
				}
				out[i] = append(out[i], v...)
			}
		default:
			return dataset.Dataset{}, &dataset.SchemaError{
				Column: name, Want: dataset.Numeric, Got: ctype}
		}
	}
	return ds.WithVectors(va.params.String("outputCol"), out), nil
}
