// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package sha256block

import (
	"hash"
)

// Digest - streaming SHA-256 over Compress
type Digest struct {
	initial       State
	initialLength uint64
	state         State
	buffer        [BlockSize]byte
	buffered      int
	length        uint64 // total bytes written including initialLength
}

// check interface compatibility
var _ hash.Hash = (*Digest)(nil)

// New - a SHA-256 hasher starting from the standard initial value
func New() *Digest {
	return NewFrom(Initial, 0)
}

// NewFrom - a hasher that resumes from a chaining state obtained after
// compressing length bytes (length must be a whole number of blocks)
func NewFrom(state State, length uint64) *Digest {
	if 0 != length%BlockSize {
		panic("sha256block: resume length is not a multiple of the block size")
	}
	d := &Digest{
		initial:       state,
		initialLength: length,
	}
	d.Reset()
	return d
}

// Sum256 - one shot digest of data
func Sum256(data []byte) [Size]byte {
	d := New()
	d.Write(data)
	return d.finish()
}

// Reset - return to the starting state
func (d *Digest) Reset() {
	d.state = d.initial
	d.length = d.initialLength
	d.buffered = 0
}

// Size - digest size in bytes
func (d *Digest) Size() int { return Size }

// BlockSize - compression block size in bytes
func (d *Digest) BlockSize() int { return BlockSize }

// Write - absorb more message bytes, never fails
func (d *Digest) Write(p []byte) (int, error) {
	n := len(p)
	d.length += uint64(n)

	if d.buffered > 0 {
		c := copy(d.buffer[d.buffered:], p)
		d.buffered += c
		p = p[c:]
		if BlockSize == d.buffered {
			Compress(&d.state, d.buffer[:])
			d.buffered = 0
		}
	}

	if whole := len(p) &^ (BlockSize - 1); whole > 0 {
		Compress(&d.state, p[:whole])
		p = p[whole:]
	}

	if len(p) > 0 {
		d.buffered = copy(d.buffer[:], p)
	}
	return n, nil
}

// Sum - append the digest of the bytes written so far to b
// without changing the running state
func (d *Digest) Sum(b []byte) []byte {
	d0 := *d
	digest := d0.finish()
	return append(b, digest[:]...)
}

// State - the current chaining value; only meaningful when no
// partial block is buffered
func (d *Digest) State() (State, uint64) {
	return d.state, d.length
}

func (d *Digest) finish() [Size]byte {
	padding := Pad(d.length)
	length := d.length
	d.Write(padding)
	d.length = length
	if 0 != d.buffered {
		panic("sha256block: padding did not complete a block")
	}
	return d.state.Bytes()
}
