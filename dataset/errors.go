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

import "fmt"

// SchemaError is reported when a required column is absent
// or has a different type than the one requested.
type SchemaError struct {
	Column  string
	Want    DataType
	Got     DataType
	Missing bool
}

func (err *SchemaError) Error() string {
	if err.Missing {
		return fmt.Sprintf("column %s (%s) not found", err.Column, err.Want)
	}
	return fmt.Sprintf(
		"column %s has type %s (expected %s)", err.Column, err.Got, err.Want)
}

// DimensionMismatchError is reported when a vector column contains
// rows of inconsistent arity.
type DimensionMismatchError struct {
	Column string
	Row    int
	Want   int
	Got    int
}

func (err *DimensionMismatchError) Error() string {
	return fmt.Sprintf(
		"column %s: row %d has %d dimensions (expected %d)",
		err.Column, err.Row, err.Got, err.Want)
}
