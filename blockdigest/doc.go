// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package blockdigest - the 256 bit proof-of-work digest of a block header
//
// stored exactly as the hash produces it and compared with a target
// as a big endian unsigned integer
package blockdigest
