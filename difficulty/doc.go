// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package difficulty - proof-of-work target handling
//
// conversion between the compact header bits, hex text and the full
// 256 bit target, plus the pool difficulty (pdiff) of a target
package difficulty
