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

// Package dataset provides an immutable, schema-bearing table
// abstraction passed between pipeline stages. A Dataset value is never
// mutated in place - any derived table is a new value which shares
// unchanged column storage with its origin.
package dataset

import "fmt"

// Dataset is an immutable rows x columns table. The zero value is
// an empty dataset with no columns.
type Dataset struct {
	schema  Schema
	numeric map[string][]float64
	strs    map[string][]string
	vecs    map[string][][]float64
	numRows int
}

func (ds Dataset) Len() int {
	return ds.numRows
}

func (ds Dataset) Schema() Schema {
	return ds.schema
}

func (ds Dataset) HasColumn(name string) bool {
	return ds.schema.Contains(name)
}

// Numeric returns the storage of a numeric column.
// The returned slice must not be modified by the caller.
func (ds Dataset) Numeric(name string) ([]float64, error) {
	vals, ok := ds.numeric[name]
	if !ok {
		return nil, ds.accessErr(name, Numeric)
	}
	return vals, nil
}

// Strings returns the storage of a string column.
// The returned slice must not be modified by the caller.
func (ds Dataset) Strings(name string) ([]string, error) {
	vals, ok := ds.strs[name]
	if !ok {
		return nil, ds.accessErr(name, String)
	}
	return vals, nil
}

// Vectors returns the storage of a vector column.
// The returned slices must not be modified by the caller.
func (ds Dataset) Vectors(name string) ([][]float64, error) {
	vals, ok := ds.vecs[name]
	if !ok {
		return nil, ds.accessErr(name, Vector)
	}
	return vals, nil
}

func (ds Dataset) accessErr(name string, want DataType) error {
	if got, ok := ds.schema.ColumnType(name); ok {
		return &SchemaError{Column: name, Want: want, Got: got}
	}
	return &SchemaError{Column: name, Want: want, Missing: true}
}

// WithNumeric returns a new dataset with a numeric column appended
// (or replaced, if a column of the same name exists). The provided
// slice must have exactly Len() items and is owned by the new dataset
// from this point on.
func (ds Dataset) WithNumeric(name string, vals []float64) Dataset {
	ans := ds.shallowCopy()
	ans.schema = ans.schema.withColumn(Column{Name: name, Type: Numeric})
	delete(ans.strs, name)
	delete(ans.vecs, name)
	ans.numeric[name] = vals
	return ans
}

// WithStrings is the string-column counterpart of WithNumeric.
func (ds Dataset) WithStrings(name string, vals []string) Dataset {
	ans := ds.shallowCopy()
	ans.schema = ans.schema.withColumn(Column{Name: name, Type: String})
	delete(ans.numeric, name)
	delete(ans.vecs, name)
	ans.strs[name] = vals
	return ans
}

// WithVectors is the vector-column counterpart of WithNumeric.
func (ds Dataset) WithVectors(name string, vals [][]float64) Dataset {
	ans := ds.shallowCopy()
	ans.schema = ans.schema.withColumn(Column{Name: name, Type: Vector})
	delete(ans.numeric, name)
	delete(ans.strs, name)
	ans.vecs[name] = vals
	return ans
}

// Select returns a dataset restricted to the named columns,
// in the provided order.
func (ds Dataset) Select(names ...string) (Dataset, error) {
	ans := Dataset{
		numeric: make(map[string][]float64),
		strs:    make(map[string][]string),
		vecs:    make(map[string][][]float64),
		numRows: ds.numRows,
	}
	for _, name := range names {
		ctype, ok := ds.schema.ColumnType(name)
		if !ok {
			return Dataset{}, &SchemaError{Column: name, Missing: true}
		}
		ans.schema = ans.schema.withColumn(Column{Name: name, Type: ctype})
		switch ctype {
		case Numeric:
			ans.numeric[name] = ds.numeric[name]
		case String:
			ans.strs[name] = ds.strs[name]
		case Vector:
			ans.vecs[name] = ds.vecs[name]
		}
	}
	return ans, nil
}

// FilterRows returns a dataset containing only the rows for which
// keep[i] is true. The mask must have exactly Len() items.
func (ds Dataset) FilterRows(keep []bool) Dataset {
	idx := make([]int, 0, len(keep))
	for i, k := range keep {
		if k {
			idx = append(idx, i)
		}
	}
	return ds.Gather(idx)
}

// Gather returns a dataset whose rows are ds rows at the provided
// indices, in the provided order. Indices may repeat.
func (ds Dataset) Gather(idx []int) Dataset {
	ans := Dataset{
		schema:  ds.schema,
		numeric: make(map[string][]float64),
		strs:    make(map[string][]string),
		vecs:    make(map[string][][]float64),
		numRows: len(idx),
	}
	for name, vals := range ds.numeric {
		col := make([]float64, len(idx))
		for i, j := range idx {
			col[i] = vals[j]
		}
		ans.numeric[name] = col
	}
	for name, vals := range ds.strs {
		col := make([]string, len(idx))
		for i, j := range idx {
			col[i] = vals[j]
		}
		ans.strs[name] = col
	}
	for name, vals := range ds.vecs {
		col := make([][]float64, len(idx))
		for i, j := range idx {
			col[i] = vals[j]
		}
		ans.vecs[name] = col
	}
	return ans
}

func (ds Dataset) shallowCopy() Dataset {
	ans := Dataset{
		schema:  ds.schema,
		numeric: make(map[string][]float64, len(ds.numeric)),
		strs:    make(map[string][]string, len(ds.strs)),
		vecs:    make(map[string][][]float64, len(ds.vecs)),
		numRows: ds.numRows,
	}
	for k, v := range ds.numeric {
		ans.numeric[k] = v
	}
	for k, v := range ds.strs {
		ans.strs[k] = v
	}
	for k, v := range ds.vecs {
		ans.vecs[k] = v
	}
	return ans
}

// ---------------------------------------------

// Builder accumulates columns for a new dataset. All columns must
// have the same number of rows - this is checked in Build.
type Builder struct {
	ds      Dataset
	lengths map[string]int
}

func NewBuilder() *Builder {
	return &Builder{
		ds: Dataset{
			numeric: make(map[string][]float64),
			strs:    make(map[string][]string),
			vecs:    make(map[string][][]float64),
		},
		lengths: make(map[string]int),
	}
}

func (b *Builder) AddNumeric(name string, vals []float64) *Builder {
	b.ds.schema = b.ds.schema.withColumn(Column{Name: name, Type: Numeric})
	delete(b.ds.strs, name)
	delete(b.ds.vecs, name)
	b.ds.numeric[name] = vals
	b.lengths[name] = len(vals)
	return b
}

func (b *Builder) AddStrings(name string, vals []string) *Builder {
	b.ds.schema = b.ds.schema.withColumn(Column{Name: name, Type: String})
	delete(b.ds.numeric, name)
	delete(b.ds.vecs, name)
	b.ds.strs[name] = vals
	b.lengths[name] = len(vals)
	return b
}

func (b *Builder) AddVectors(name string, vals [][]float64) *Builder {
	b.ds.schema = b.ds.schema.withColumn(Column{Name: name, Type: Vector})
	delete(b.ds.numeric, name)
	delete(b.ds.strs, name)
	b.ds.vecs[name] = vals
	b.lengths[name] = len(vals)
	return b
}

func (b *Builder) Build() (Dataset, error) {
	numRows := -1
	for name, ln := range b.lengths {
		if numRows == -1 {
			numRows = ln

		} else if ln != numRows {
			return Dataset{}, fmt.Errorf(
				"column %s has %d rows while other columns have %d", name, ln, numRows)
		}
	}
	if numRows == -1 {
		numRows = 0
	}
	b.ds.numRows = numRows
	return b.ds, nil
}
