// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package search

import (
	"fmt"

	"github.com/bitmark-inc/scryptd/fault"
)

// NonceLimit - one past the largest 32 bit nonce
const NonceLimit = uint64(1) << 32

// NonceRange - the half open interval [First, End)
type NonceRange struct {
	First uint64 `json:"first"`
	End   uint64 `json:"end"`
}

// Size - number of nonces in the range
func (r NonceRange) Size() uint64 {
	return r.End - r.First
}

// Contains - true if the nonce lies in the range
func (r NonceRange) Contains(nonce uint64) bool {
	return nonce >= r.First && nonce < r.End
}

// String - for the %s format
func (r NonceRange) String() string {
	return fmt.Sprintf("[%08x, %08x)", r.First, r.End)
}

func (r NonceRange) valid() bool {
	return r.First < r.End && r.End <= NonceLimit
}

// Partition - split [first, end) into lanes contiguous ranges
//
// all ranges have the same width except the last, which also takes
// the remainder; every lane gets at least one nonce
func Partition(first uint64, end uint64, lanes int) ([]NonceRange, error) {
	if err := validLaneCount(lanes); nil != err {
		return nil, err
	}
	if !(NonceRange{First: first, End: end}).valid() {
		return nil, fault.ErrInvalidNonceRange
	}

	size := end - first
	n := uint64(lanes)
	if size < n {
		return nil, fault.ErrInvalidNonceRange
	}
	width := size / n

	ranges := make([]NonceRange, lanes)
	for i := range ranges {
		start := first + uint64(i)*width
		ranges[i] = NonceRange{
			First: start,
			End:   start + width,
		}
	}
	ranges[lanes-1].End = end

	return ranges, nil
}
