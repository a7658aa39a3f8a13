// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package search

import (
	"fmt"
)

// Telemetry - counters of a coordinator since creation or the last Reset
type Telemetry struct {
	HashRate    float64 `json:"hashRate"` // hashes per second of search time
	ActiveLanes uint64  `json:"activeLanes"`
	TotalHashes uint64  `json:"totalHashes"`
	ErrorCount  uint64  `json:"errorCount"` // searches that exhausted without a solution
}

// String - for the %s format
func (t Telemetry) String() string {
	return fmt.Sprintf("rate: %.2f H/s  active: %d  hashes: %d  errors: %d",
		t.HashRate, t.ActiveLanes, t.TotalHashes, t.ErrorCount)
}
