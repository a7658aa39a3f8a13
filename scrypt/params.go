// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package scrypt

import (
	"fmt"

	"github.com/bitmark-inc/scryptd/fault"
	"github.com/bitmark-inc/scryptd/romix"
)

// MaximumMemory - upper bound in bytes on the scratchpad of one hash
const MaximumMemory = 1 << 30

// Params - cost parameters
type Params struct {
	N int `gluamapper:"n" json:"n"` // cost: power of two, at least 2
	R int `gluamapper:"r" json:"r"` // block size multiplier
	P int `gluamapper:"p" json:"p"` // parallelisation: only 1 is supported
}

// Litecoin - the parameters of the Litecoin proof-of-work
var Litecoin = Params{
	N: 1024,
	R: 1,
	P: 1,
}

// Validate - check that the parameters can be used
func (p Params) Validate() error {
	if p.N < 2 || 0 != p.N&(p.N-1) {
		return fault.ErrInvalidCostParameter
	}
	if p.R < 1 {
		return fault.ErrInvalidBlockSizeParameter
	}
	if 1 != p.P {
		return fault.ErrInvalidParallelisation
	}
	if p.R > MaximumMemory/romix.BlockBytes/p.N {
		return fault.ErrMemoryLimitExceeded
	}
	return nil
}

// Memory - scratchpad bytes for one hash
func (p Params) Memory() uint64 {
	return uint64(p.N) * uint64(p.R) * romix.BlockBytes
}

// String - for the %s format
func (p Params) String() string {
	return fmt.Sprintf("N=%d r=%d p=%d", p.N, p.R, p.P)
}
