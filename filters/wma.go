// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package filters

import (
	"fmt"
	"sync"
)

// WMA - weighted moving average, the newest sample has weight n and
// the oldest weight 1
type WMA struct {
	sync.RWMutex
	samples     []float64
	it          int
	current     float64
	n           float64
	total       float64
	numerator   float64
	denominator float64
}

// NewWMA - window of n samples all initially start
func NewWMA(start float64, n uint64) Filter {
	if 0 == n {
		n = 1
	}
	weights := float64(n * (n + 1) / 2)
	filter := WMA{
		samples:     make([]float64, n),
		current:     start,
		n:           float64(n),
		total:       float64(n) * start,
		numerator:   weights * start,
		denominator: weights,
	}
	for i := range filter.samples {
		filter.samples[i] = start
	}
	return &filter
}

// Name - description of the filter
func (filter *WMA) Name() string {
	filter.RLock()
	defer filter.RUnlock()

	return fmt.Sprintf("Weighted Moving Average %d", len(filter.samples))
}

// Process - add a sample, negative samples count as zero
func (filter *WMA) Process(s float64) float64 {
	filter.Lock()
	defer filter.Unlock()

	if s < 0 {
		s = 0
	}

	filter.numerator += filter.n*s - filter.total
	filter.total += s - filter.samples[filter.it]
	filter.samples[filter.it] = s

	if filter.it += 1; filter.it >= len(filter.samples) {
		filter.it = 0
	}

	filter.current = filter.numerator / filter.denominator
	return filter.current
}

// Current - latest output
func (filter *WMA) Current() float64 {
	filter.RLock()
	defer filter.RUnlock()

	return filter.current
}
