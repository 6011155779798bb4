// Copyright 2020 gorse Project Authors
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

package parallel

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
)

func TestFor(t *testing.T) {
	// multiple threads
	a := lo.Range(10000)
	b := make([]int, len(a))
	For(len(a), 4, func(jobId int) {
		b[jobId] = a[jobId]
		time.Sleep(time.Microsecond)
	})
	assert.Equal(t, a, b)
	// single thread
	b = make([]int, len(a))
	For(len(a), 1, func(jobId int) {
		b[jobId] = a[jobId]
	})
	assert.Equal(t, a, b)
	// no jobs
	For(0, 4, func(int) { t.Fatal("unexpected job") })
}

func TestForEach(t *testing.T) {
	a := lo.Range(10000)
	b := make([]int, len(a))
	// multiple threads
	ForEach(a, 4, func(i, v int) {
		assert.Equal(t, i, v)
		b[i] = v
		time.Sleep(time.Microsecond)
	})
	assert.Equal(t, a, b)
	// single thread
	b = make([]int, len(a))
	ForEach(a, 1, func(i, v int) {
		assert.Equal(t, i, v)
		b[i] = v
	})
	assert.Equal(t, a, b)
}

func TestFor_Workers(t *testing.T) {
	var running, peak atomic.Int32
	counts := make([]atomic.Int32, 100)
	For(len(counts), 3, func(jobId int) {
		n := running.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		counts[jobId].Add(1)
		time.Sleep(time.Microsecond)
		running.Add(-1)
	})
	assert.LessOrEqual(t, peak.Load(), int32(3))
	for i := range counts {
		assert.Equal(t, int32(1), counts[i].Load())
	}
	// more workers than jobs
	done := make([]bool, 2)
	For(len(done), 8, func(jobId int) { done[jobId] = true })
	assert.Equal(t, []bool{true, true}, done)
}
