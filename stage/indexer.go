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
	"sort"

	"github.com/navdeep-G/the-r-in-spark/dataset"
)

const (
	KindStringIndexer = "string_indexer"

	HandleInvalidError = "error"
	HandleInvalidSkip  = "skip"
	HandleInvalidKeep  = "keep"
)

func init() {
	register(
		KindStringIndexer,
		ParamSchema{
			{Name: "inputCol", Type: StringParam, Required: true, Role: RoleInput},
			{Name: "outputCol", Type: StringParam, Default: "", Role: RoleOutput},
			{Name: "handleInvalid", Type: StringParam, Default: HandleInvalidError, Tunable: true},
		},
		func(b base) (Stage, error) {
			switch hi := b.params.String("handleInvalid"); hi {
			case HandleInvalidError, HandleInvalidSkip, HandleInvalidKeep:
			default:
				return nil, &TypeMismatchError{
					Kind: b.kind, Name: "handleInvalid",
					Want: "one of error|skip|keep", Got: fmt.Sprintf("%q", hi)}
			}
			if b.params.String("outputCol") == "" {
				b.params["outputCol"] = b.params.String("inputCol") + "_idx"
			}
			return &StringIndexer{base: b}, nil
		},
	)
}

// StringIndexer learns a deterministic rank of distinct category
// values ordered by descending frequency with ties broken by
// first-seen order, and maps them to indices 0..k-1.
type StringIndexer struct {
	base
}

func (si *StringIndexer) Fit(ctx context.Context, ds dataset.Dataset) (Transformer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	inputCol := si.params.String("inputCol")
	vals, err := ds.Strings(inputCol)
	if err != nil {
		return nil, err
	}
	if ds.Len() == 0 {
		return nil, &InsufficientDataError{UID: si.uid, Reason: "empty dataset"}
	}
	counts := make(map[string]int)
	firstSeen := make(map[string]int)
	for i, v := range vals {
		if _, ok := counts[v]; !ok {
			firstSeen[v] = i
		}
		counts[v]++
	}
	labels := make([]string, 0, len(counts))
	for v := range counts {
		labels = append(labels, v)
	}
	sort.Slice(labels, func(i, j int) bool {
		if counts[labels[i]] != counts[labels[j]] {
			return counts[labels[i]] > counts[labels[j]]
		}
		return firstSeen[labels[i]] < firstSeen[labels[j]]
	})
	return newStringIndexerModel(si.base, labels), nil
}

// ---------------------------------------------

// StringIndexerModel is the fitted counterpart of StringIndexer.
type StringIndexerModel struct {
	base
	labels []string
	index  map[string]int
}

func newStringIndexerModel(b base, labels []string) *StringIndexerModel {
	index := make(map[string]int, len(labels))
	for i, v := range labels {
		index[v] = i
	}
	return &StringIndexerModel{base: b, labels: labels, index: index}
}

// Labels returns the learned categories in index order.
func (m *StringIndexerModel) Labels() []string {
	ans := make([]string, len(m.labels))
	copy(ans, m.labels)
	return ans
}

func (m *StringIndexerModel) Transform(ctx context.Context, ds dataset.Dataset) (dataset.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return dataset.Dataset{}, err
	}
	inputCol := m.params.String("inputCol")
	vals, err := ds.Strings(inputCol)
	if err != nil {
		return dataset.Dataset{}, err
	}
	outputCol := m.params.String("outputCol")
	handleInvalid := m.params.String("handleInvalid")

	out := make([]float64, 0, len(vals))
	keep := make([]bool, len(vals))
	filtered := false
	for i, v := range vals {
		idx, ok := m.index[v]
		if ok {
			keep[i] = true
			out = append(out, float64(idx))
			continue
		}
		switch handleInvalid {
		case HandleInvalidKeep:
			keep[i] = true
			out = append(out, float64(len(m.labels)))
		case HandleInvalidSkip:
			filtered = true
		default:
			return dataset.Dataset{}, &UnseenCategoryError{
				UID: m.uid, Column: inputCol, Value: v}
		}
	}
	if filtered {
		ds = ds.FilterRows(keep)
	}
	return ds.WithNumeric(outputCol, out), nil
}

// NumLabels is the learned category count; with the "keep" fallback
// policy, unseen values occupy one extra index beyond it.
func (m *StringIndexerModel) NumLabels() int {
	return len(m.labels)
}
