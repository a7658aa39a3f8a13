// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package sha256block - the SHA-256 compression function
//
// Exposes the 64 round compression of 512 bit blocks over an explicit
// chaining state so that HMAC can precompute its inner and outer
// states.  A streaming hash.Hash is built from the same primitive.
package sha256block
