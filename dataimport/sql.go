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

package dataimport

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/mattn/go-sqlite3"
	"github.com/navdeep-G/the-r-in-spark/dataset"
	"github.com/rs/zerolog/log"
)

// LoadSQL runs a query against a database ("sqlite3" or "mysql"
// driver) and imports the result set as a dataset. Integer and float
// columns become numeric, everything else is imported as strings.
func LoadSQL(ctx context.Context, driver, dsn, query string) (dataset.Dataset, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return dataset.Dataset{}, fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return dataset.Dataset{}, fmt.Errorf("failed to run import query: %w", err)
	}
	defer rows.Close()

	colNames, err := rows.Columns()
	if err != nil {
		return dataset.Dataset{}, fmt.Errorf("failed to read result columns: %w", err)
	}
	numericCols := make([][]float64, len(colNames))
	stringCols := make([][]string, len(colNames))
	isNumeric := make([]bool, len(colNames))
	for i := range isNumeric {
		isNumeric[i] = true
	}
	numRows := 0
	for rows.Next() {
		values := make([]any, len(colNames))
		ptrs := make([]any, len(colNames))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return dataset.Dataset{}, fmt.Errorf("failed to scan row %d: %w", numRows, err)
		}
		for i, v := range values {
			switch tv := v.(type) {
			case int64:
				numericCols[i] = append(numericCols[i], float64(tv))
				stringCols[i] = append(stringCols[i], fmt.Sprintf("%d", tv))
			case float64:
				numericCols[i] = append(numericCols[i], tv)
				stringCols[i] = append(stringCols[i], fmt.Sprintf("%v", tv))
			case []byte:
				isNumeric[i] = false
				stringCols[i] = append(stringCols[i], string(tv))
			case string:
				isNumeric[i] = false
				stringCols[i] = append(stringCols[i], tv)
			case nil:
				return dataset.Dataset{}, fmt.Errorf(
					"NULL value in column %s, row %d", colNames[i], numRows)
			default:
				isNumeric[i] = false
				stringCols[i] = append(stringCols[i], fmt.Sprintf("%v", tv))
			}
		}
		numRows++
	}
	if err := rows.Err(); err != nil {
		return dataset.Dataset{}, fmt.Errorf("failed to read import query result: %w", err)
	}

	builder := dataset.NewBuilder()
	for i, name := range colNames {
		if isNumeric[i] && len(numericCols[i]) == numRows {
			builder.AddNumeric(name, numericCols[i])

		} else {
			builder.AddStrings(name, stringCols[i])
		}
	}
	ds, err := builder.Build()
	if err != nil {
		return dataset.Dataset{}, err
	}
	log.Info().
		Str("driver", driver).
		Int("numRows", ds.Len()).
		Int("numColumns", ds.Schema().NumColumns()).
		Msg("imported SQL data")
	return ds, nil
}
