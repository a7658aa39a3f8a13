// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package pbkdf2 - PBKDF2 key derivation over HMAC-SHA256
package pbkdf2

import (
	"encoding/binary"
	"math"

	"github.com/bitmark-inc/scryptd/fault"
	"github.com/bitmark-inc/scryptd/hmacsha256"
)

// MaximumBlocks - largest number of output blocks (2^32 - 1)
const MaximumBlocks = math.MaxUint32

// Key - derive keyLength bytes from password and salt
//
// T_i = U_1 xor U_2 xor ... xor U_c where U_1 = HMAC(P, S || be32(i))
// and U_j = HMAC(P, U_j-1); the T_i are concatenated and the last one
// truncated
func Key(password []byte, salt []byte, iterations int, keyLength int) ([]byte, error) {
	if iterations < 1 {
		return nil, fault.ErrInvalidIterations
	}
	if keyLength < 1 {
		return nil, fault.ErrInvalidKeyLength
	}

	blocks := (uint64(keyLength) + hmacsha256.Size - 1) / hmacsha256.Size
	if blocks > MaximumBlocks {
		return nil, fault.ErrParameterOutOfRange
	}

	mac := hmacsha256.New(password)

	derived := make([]byte, 0, blocks*hmacsha256.Size)
	var counter [4]byte
	var u [hmacsha256.Size]byte
	var t [hmacsha256.Size]byte

	for i := uint64(1); i <= blocks; i += 1 {
		binary.BigEndian.PutUint32(counter[:], uint32(i))

		mac.Reset()
		mac.Write(salt)
		mac.Write(counter[:])
		mac.Sum(u[:0])
		t = u

		for c := 2; c <= iterations; c += 1 {
			mac.Reset()
			mac.Write(u[:])
			mac.Sum(u[:0])
			for j := range t {
				t[j] ^= u[j]
			}
		}
		derived = append(derived, t[:]...)
	}
	return derived[:keyLength], nil
}
