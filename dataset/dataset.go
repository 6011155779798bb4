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
	"fmt"
	"math"

	"github.com/bits-and-blooms/bitset"
	"github.com/moriaki3193/spike/base"
)

// Dataset is a set of dense feature vectors with targets.
type Dataset struct {
	Features [][]float64
	Target   []float64
}

func NewDataset(capacity int) *Dataset {
	return &Dataset{
		Features: make([][]float64, 0, capacity),
		Target:   make([]float64, 0, capacity),
	}
}

func (d *Dataset) Add(features []float64, target float64) {
	d.Features = append(d.Features, features)
	d.Target = append(d.Target, target)
}

func (d *Dataset) Count() int {
	return len(d.Target)
}

// Dim returns the number of features, or zero for an empty dataset.
func (d *Dataset) Dim() int {
	if len(d.Features) == 0 {
		return 0
	}
	return len(d.Features[0])
}

func (d *Dataset) Get(i int) ([]float64, float64) {
	return d.Features[i], d.Target[i]
}

// Split samples round(n * testRatio) rows as the test set and keeps the others as the
// train set. Rows keep their original order and share storage with d.
func (d *Dataset) Split(testRatio float64, seed int64) (*Dataset, *Dataset) {
	if testRatio < 0 || testRatio > 1 {
		panic(fmt.Sprintf("dataset: test ratio must be in [0, 1], but got %v", testRatio))
	}
	numTest := int(math.Round(float64(d.Count()) * testRatio))
	rng := base.NewRandomGenerator(seed)
	testRows := bitset.New(uint(d.Count()))
	for _, i := range rng.Sample(0, d.Count(), numTest) {
		testRows.Set(uint(i))
	}
	trainSet := NewDataset(d.Count() - numTest)
	testSet := NewDataset(numTest)
	for i := range d.Target {
		if testRows.Test(uint(i)) {
			testSet.Add(d.Features[i], d.Target[i])
		} else {
			trainSet.Add(d.Features[i], d.Target[i])
		}
	}
	return trainSet, testSet
}
