// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Proof-of-work program for scrypt based chains
//
// This program subscribes to a stream of candidate block headers,
// searches the 32 bit nonce space with a set of parallel lanes for a
// scrypt digest below the target, records each solution in a local
// journal and pushes it back to the submitting node.
package main
