// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package filters

import (
	"fmt"
	"sort"
	"sync"
)

// SMM - simple moving median, removes single interval spikes
//
// the window is kept twice: in arrival order to know which sample
// leaves, and sorted to read the median
type SMM struct {
	sync.RWMutex
	window  []float64
	sorted  []float64
	next    int
	current float64
}

// NewSMM - window of n samples, n must be odd
func NewSMM(start float64, n uint64) Filter {
	if 0 == n%2 {
		panic("need odd number of samples")
	}

	filter := &SMM{
		window:  make([]float64, n),
		sorted:  make([]float64, n),
		current: start,
	}
	for i := range filter.window {
		filter.window[i] = start
		filter.sorted[i] = start
	}
	return filter
}

// Name - description of the filter
func (filter *SMM) Name() string {
	return fmt.Sprintf("Simple Moving Median %d", len(filter.window))
}

// Process - replace the oldest sample
func (filter *SMM) Process(s float64) float64 {
	filter.Lock()
	defer filter.Unlock()

	oldest := filter.window[filter.next]
	filter.window[filter.next] = s
	filter.next = (filter.next + 1) % len(filter.window)

	// remove the oldest from the sorted copy, then insert the new one
	i := sort.SearchFloat64s(filter.sorted, oldest)
	copy(filter.sorted[i:], filter.sorted[i+1:])
	last := len(filter.sorted) - 1
	j := sort.SearchFloat64s(filter.sorted[:last], s)
	copy(filter.sorted[j+1:], filter.sorted[j:last])
	filter.sorted[j] = s

	filter.current = filter.sorted[len(filter.sorted)/2]
	return filter.current
}

// Current - latest output
func (filter *SMM) Current() float64 {
	filter.RLock()
	defer filter.RUnlock()

	return filter.current
}
