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

package floats

import (
	"gonum.org/v1/gonum/floats"
)

// Zero fills zeros in a slice of floats.
func Zero(a []float64) {
	for i := range a {
		a[i] = 0
	}
}

// MulConstTo multiplies a vector and a const, then saves the result in dst: dst = a * c
func MulConstTo(a []float64, c float64, dst []float64) {
	if len(a) != len(dst) {
		panic("floats: slice lengths do not match")
	}
	floats.ScaleTo(dst, c, a)
}

// Dot two vectors. The lengths of a and b must be equal.
func Dot(a, b []float64) float64 {
	if len(a) != len(b) {
		panic("floats: slice lengths do not match")
	}
	return floats.Dot(a, b)
}

// Transpose returns a new matrix whose rows are the columns of m. The input must be
// rectangular: every row has the length of the first one.
func Transpose(m [][]float64) [][]float64 {
	if len(m) == 0 {
		return nil
	}
	nRows, nCols := len(m), len(m[0])
	t := make([][]float64, nCols)
	for j := range t {
		t[j] = make([]float64, nRows)
		for i := range m {
			t[j][i] = m[i][j]
		}
	}
	return t
}
