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
	"sync"
	"sync/atomic"
)

// For runs worker(0), ..., worker(nJobs-1) on at most nWorkers goroutines and
// returns after every job is finished. Each job runs exactly once, in no particular
// order. Jobs run inline on the calling goroutine if nWorkers <= 1.
func For(nJobs, nWorkers int, worker func(int)) {
	if nWorkers <= 1 || nJobs <= 1 {
		for i := 0; i < nJobs; i++ {
			worker(i)
		}
		return
	}
	var next atomic.Int64
	var wg sync.WaitGroup
	for range min(nWorkers, nJobs) {
		wg.Go(func() {
			for {
				i := int(next.Add(1) - 1)
				if i >= nJobs {
					return
				}
				worker(i)
			}
		})
	}
	wg.Wait()
}

// ForEach runs worker(i, a[i]) for every element of a on at most nWorkers goroutines.
func ForEach[T any](a []T, nWorkers int, worker func(int, T)) {
	For(len(a), nWorkers, func(i int) {
		worker(i, a[i])
	})
}
