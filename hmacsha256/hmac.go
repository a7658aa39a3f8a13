// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package hmacsha256 - keyed MAC from two chained SHA-256 compressions
//
// The key schedule is compressed once into inner and outer chaining
// states so each MAC costs only the message blocks plus one outer
// block, which is what PBKDF2 iterates.
package hmacsha256

import (
	"hash"

	"github.com/bitmark-inc/scryptd/sha256block"
)

// Size - tag length in bytes
const Size = sha256block.Size

const (
	ipad = 0x36
	opad = 0x5c
)

// MAC - a keyed HMAC-SHA256 instance
type MAC struct {
	inner     sha256block.State
	outer     sha256block.State
	innerHash *sha256block.Digest
}

// check interface compatibility
var _ hash.Hash = (*MAC)(nil)

// New - prepare a MAC for key
//
// a key longer than the block size is replaced by its digest, a
// shorter key is zero padded to the block size
func New(key []byte) *MAC {
	var block [sha256block.BlockSize]byte
	if len(key) > sha256block.BlockSize {
		digest := sha256block.Sum256(key)
		copy(block[:], digest[:])
	} else {
		copy(block[:], key)
	}

	var pad [sha256block.BlockSize]byte

	m := &MAC{}

	for i, b := range block {
		pad[i] = b ^ ipad
	}
	m.inner = sha256block.Initial
	sha256block.Compress(&m.inner, pad[:])

	for i, b := range block {
		pad[i] = b ^ opad
	}
	m.outer = sha256block.Initial
	sha256block.Compress(&m.outer, pad[:])

	m.innerHash = sha256block.NewFrom(m.inner, sha256block.BlockSize)
	return m
}

// Sum - one shot tag of message under key
func Sum(key []byte, message []byte) [Size]byte {
	m := New(key)
	m.Write(message)
	var tag [Size]byte
	m.Sum(tag[:0])
	return tag
}

// Write - absorb message bytes
func (m *MAC) Write(p []byte) (int, error) {
	return m.innerHash.Write(p)
}

// Sum - append the tag of the message written so far
func (m *MAC) Sum(b []byte) []byte {
	innerDigest := m.innerHash.Sum(nil)
	outer := sha256block.NewFrom(m.outer, sha256block.BlockSize)
	outer.Write(innerDigest)
	return outer.Sum(b)
}

// Reset - start a new message under the same key
func (m *MAC) Reset() {
	m.innerHash.Reset()
}

// Size - tag size in bytes
func (m *MAC) Size() int { return Size }

// BlockSize - underlying hash block size
func (m *MAC) BlockSize() int { return sha256block.BlockSize }
