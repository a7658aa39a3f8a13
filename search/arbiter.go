// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package search

import (
	"sync"
)

// holds the single winning solution slot of one search
type arbiter struct {
	sync.Mutex
	winner *SolutionRecord
}

// (step, lane) ordering
func precedes(step uint64, lane int, other *SolutionRecord) bool {
	if step != other.Step {
		return step < other.Step
	}
	return lane < other.Lane
}

func (a *arbiter) Permit(lane int, step uint64) bool {
	a.Lock()
	defer a.Unlock()
	return nil == a.winner || precedes(step, lane, a.winner)
}

func (a *arbiter) Report(solution *SolutionRecord) {
	if nil == solution {
		return
	}
	a.Lock()
	defer a.Unlock()
	if nil == a.winner || precedes(solution.Step, solution.Lane, a.winner) {
		a.winner = solution
	}
}

func (a *arbiter) result() *SolutionRecord {
	a.Lock()
	defer a.Unlock()
	return a.winner
}
