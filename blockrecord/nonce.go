// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockrecord

import (
	"encoding/binary"
	"encoding/hex"

	"github.com/bitmark-inc/scryptd/fault"
)

// NonceType - type for nonce
type NonceType uint32

// MarshalJSON - convert a nonce to big endian hex for JSON
func (nonce NonceType) MarshalJSON() ([]byte, error) {

	bits := make([]byte, NonceSize)
	binary.BigEndian.PutUint32(bits, uint32(nonce))

	size := 2 + hex.EncodedLen(len(bits))
	buffer := make([]byte, size)
	buffer[0] = '"'
	buffer[size-1] = '"'
	hex.Encode(buffer[1:], bits)
	return buffer, nil
}

// UnmarshalJSON - convert a nonce big endian hex string to nonce value
func (nonce *NonceType) UnmarshalJSON(s []byte) error {
	// length = '"' + characters + '"'
	last := len(s) - 1
	if last < 1 || '"' != s[0] || '"' != s[last] {
		return fault.ErrInvalidCharacter
	}

	b := s[1:last]
	if hex.EncodedLen(NonceSize) != len(b) {
		return fault.ErrInvalidCharacter
	}

	buffer := make([]byte, NonceSize)
	_, err := hex.Decode(buffer, b)
	if nil != err {
		return err
	}
	*nonce = NonceType(binary.BigEndian.Uint32(buffer))
	return nil
}
