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

// Package dataimport loads training and scoring data from external
// sources (CSV files, SQL databases) into datasets.
package dataimport

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/navdeep-G/the-r-in-spark/dataset"
	"github.com/rs/zerolog/log"
)

// LoadCSV reads a headed CSV file into a dataset. A column is
// imported as numeric if every one of its values parses as a float,
// otherwise as a string column.
func LoadCSV(path string) (dataset.Dataset, error) {
	file, err := os.Open(path)
	if err != nil {
		return dataset.Dataset{}, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	records, err := reader.ReadAll()
	if err != nil {
		return dataset.Dataset{}, fmt.Errorf("failed to read CSV file: %w", err)
	}
	if len(records) < 1 {
		return dataset.Dataset{}, fmt.Errorf("CSV file %s has no header", path)
	}
	header := records[0]
	rows := records[1:]

	builder := dataset.NewBuilder()
	for col, name := range header {
		numeric := make([]float64, len(rows))
		isNumeric := true
		for i, row := range rows {
			v, err := strconv.ParseFloat(row[col], 64)
			if err != nil {
				isNumeric = false
				break
			}
			numeric[i] = v
		}
		if isNumeric {
			builder.AddNumeric(name, numeric)
			continue
		}
		strs := make([]string, len(rows))
		for i, row := range rows {
			strs[i] = row[col]
		}
		builder.AddStrings(name, strs)
	}
	ds, err := builder.Build()
	if err != nil {
		return dataset.Dataset{}, err
	}
	log.Info().
		Str("path", path).
		Int("numRows", ds.Len()).
		Int("numColumns", ds.Schema().NumColumns()).
		Msg("imported CSV data")
	return ds, nil
}
