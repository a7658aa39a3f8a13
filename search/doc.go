// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package search - multi-lane nonce search
//
// The nonce space is split into contiguous ranges, one per lane.
// Each lane runs in its own goroutine and hashes one nonce per step,
// so a lane is only ever stopped between two hashes.
//
// Arbitration orders candidate solutions by (step, lane id), step
// being the offset of the nonce within its lane's range.  The
// smallest candidate wins: the earliest step of any lane, with ties
// going to the lowest lane id.  Once a candidate is latched, lanes
// that can no longer produce a smaller one stop, while lanes that
// still can keep going; so the result depends only on the inputs,
// never on goroutine scheduling.
package search
