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

package dataset

// DataType identifies the storage type of a column.
type DataType int

const (
	Numeric DataType = iota
	String
	Vector
)

func (dt DataType) String() string {
	switch dt {
	case Numeric:
		return "numeric"
	case String:
		return "string"
	case Vector:
		return "vector"
	}
	return "unknown"
}

// Column is a named, typed field within a schema.
type Column struct {
	Name string   `json:"name"`
	Type DataType `json:"type"`
}

// Schema is an ordered list of columns. Column names are unique
// within a schema.
type Schema struct {
	cols []Column
}

func NewSchema(cols ...Column) Schema {
	return Schema{cols: cols}
}

// Columns returns a copy of the column list in declaration order.
func (s Schema) Columns() []Column {
	ans := make([]Column, len(s.cols))
	copy(ans, s.cols)
	return ans
}

func (s Schema) NumColumns() int {
	return len(s.cols)
}

// ColumnType returns the type of a named column and whether
// the column exists at all.
func (s Schema) ColumnType(name string) (DataType, bool) {
	for _, c := range s.cols {
		if c.Name == name {
			return c.Type, true
		}
	}
	return 0, false
}

func (s Schema) Contains(name string) bool {
	_, ok := s.ColumnType(name)
	return ok
}

// withColumn returns a new schema with the column appended, or - in case
// a column of the same name already exists - replaced in place.
func (s Schema) withColumn(c Column) Schema {
	cols := make([]Column, 0, len(s.cols)+1)
	replaced := false
	for _, v := range s.cols {
		if v.Name == c.Name {
			cols = append(cols, c)
			replaced = true

		} else {
			cols = append(cols, v)
		}
	}
	if !replaced {
		cols = append(cols, c)
	}
	return Schema{cols: cols}
}
