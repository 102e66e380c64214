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

import "math/rand/v2"

// ShuffledIndices returns row indices 0..Len()-1 permuted by a seeded
// Fisher-Yates shuffle. The same seed always yields the same order.
func (ds Dataset) ShuffledIndices(seed int64) []int {
	rnd := rand.New(rand.NewPCG(uint64(seed), 0))
	idx := make([]int, ds.numRows)
	for i := range idx {
		idx[i] = i
	}
	rnd.Shuffle(len(idx), func(i, j int) {
		idx[i], idx[j] = idx[j], idx[i]
	})
	return idx
}

// RandomSplit splits the dataset into two disjoint parts, the first
// containing approximately frac of the rows. The split is seeded and
// reproducible.
func (ds Dataset) RandomSplit(frac float64, seed int64) (Dataset, Dataset) {
	idx := ds.ShuffledIndices(seed)
	cut := int(float64(len(idx)) * frac)
	return ds.Gather(idx[:cut]), ds.Gather(idx[cut:])
}
