// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package filters

import (
	"fmt"
	"sync"
)

// Camm - moving median followed by a weighted moving average; the
// median discards a single slow or fast interval, the average then
// smooths what is left
type Camm struct {
	sync.Mutex
	median  Filter
	average Filter
	name    string
}

// NewCamm - nMedian must be odd
func NewCamm(start float64, nMedian uint64, nWMA uint64) Filter {
	return &Camm{
		median:  NewSMM(start, nMedian),
		average: NewWMA(start, nWMA),
		name:    fmt.Sprintf("Camm %d,%d", nMedian, nWMA),
	}
}

// Name - description of the filter
func (filter *Camm) Name() string {
	return filter.name
}

// Process - pass the sample through both stages
func (filter *Camm) Process(s float64) float64 {
	filter.Lock()
	defer filter.Unlock()

	return filter.average.Process(filter.median.Process(s))
}

// Current - latest output
func (filter *Camm) Current() float64 {
	return filter.average.Current()
}
