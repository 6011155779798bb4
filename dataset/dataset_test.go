// Copyright 2026 gorse Project Authors
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

import (
	"testing"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
)

func newRangeDataset(n int) *Dataset {
	d := NewDataset(n)
	for i := 0; i < n; i++ {
		d.Add([]float64{float64(i), 1}, float64(i))
	}
	return d
}

func TestDataset(t *testing.T) {
	d := NewDataset(0)
	assert.Zero(t, d.Count())
	assert.Zero(t, d.Dim())
	d.Add([]float64{1, 2, 3}, 4)
	assert.Equal(t, 1, d.Count())
	assert.Equal(t, 3, d.Dim())
	features, target := d.Get(0)
	assert.Equal(t, []float64{1, 2, 3}, features)
	assert.Equal(t, 4.0, target)
}

func TestDataset_Split(t *testing.T) {
	d := newRangeDataset(100)
	train, test := d.Split(0.2, 0)
	assert.Equal(t, 80, train.Count())
	assert.Equal(t, 20, test.Count())
	// partitions are disjoint and complete
	trainSet := mapset.NewSet(train.Target...)
	testSet := mapset.NewSet(test.Target...)
	assert.Zero(t, trainSet.Intersect(testSet).Cardinality())
	assert.Equal(t, 100, trainSet.Union(testSet).Cardinality())
	// order is kept
	assert.IsIncreasing(t, train.Target)
	assert.IsIncreasing(t, test.Target)
	// features follow targets
	for i := range test.Target {
		assert.Equal(t, test.Target[i], test.Features[i][0])
	}
	// deterministic
	_, again := d.Split(0.2, 0)
	assert.Equal(t, test.Target, again.Target)
	_, other := d.Split(0.2, 1)
	assert.NotEqual(t, test.Target, other.Target)
}

func TestDataset_SplitEdge(t *testing.T) {
	d := newRangeDataset(10)
	train, test := d.Split(0, 0)
	assert.Equal(t, lo.Map(lo.Range(10), func(i, _ int) float64 { return float64(i) }), train.Target)
	assert.Zero(t, test.Count())
	train, test = d.Split(1, 0)
	assert.Zero(t, train.Count())
	assert.Equal(t, 10, test.Count())
	train, test = NewDataset(0).Split(0.5, 0)
	assert.Zero(t, train.Count())
	assert.Zero(t, test.Count())
	assert.Panics(t, func() { d.Split(-0.1, 0) })
	assert.Panics(t, func() { d.Split(1.1, 0) })
}
