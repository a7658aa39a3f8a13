// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package scrypt - the scrypt key derivation function with p fixed at 1
//
//   B  = PBKDF2-HMAC-SHA256(P, S, 1, 128r)
//   B' = ROMix(B, N, r)
//   DK = PBKDF2-HMAC-SHA256(P, B', 1, dkLen)
//
// A Hasher applies it to a block header with the header as both
// password and salt, producing a 32 byte proof-of-work digest.
package scrypt
