// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package romix

import (
	"encoding/binary"

	"github.com/bitmark-inc/scryptd/fault"
)

// BlockBytes - bytes per unit of the block size parameter r
const BlockBytes = 128

// words per unit of r
const blockWords = BlockBytes / 4

// BlockMix - BlockMix_Salsa20/8 of the 2r sub-blocks in src into dst
//
// Y_i = Salsa(Y_i-1 xor B_i) chained from the last input sub-block;
// dst receives the even Y_i followed by the odd Y_i
//
// src and dst must each be 32r words and must not overlap
func BlockMix(dst []uint32, src []uint32, r int) {
	if len(src) != blockWords*r || len(dst) != blockWords*r {
		panic("romix: BlockMix buffer length does not match r")
	}

	var x [salsaWords]uint32
	copy(x[:], src[(2*r-1)*salsaWords:])

	for i := 0; i < 2*r; i += 1 {
		b := src[i*salsaWords : (i+1)*salsaWords]
		for j := range x {
			x[j] ^= b[j]
		}
		Salsa208(&x)

		// de-interleave: even sub-blocks to the first half, odd to the second
		k := i/2 + (i&1)*r
		copy(dst[k*salsaWords:], x[:])
	}
}

// Integerify - the first 64 bits (little endian) of the last
// 64 byte sub-block of x
func Integerify(x []uint32, r int) uint64 {
	j := (2*r - 1) * salsaWords
	return uint64(x[j]) | uint64(x[j+1])<<32
}

// Mix - ROMix of one 128r byte block with cost n
//
//   X = input
//   for i in 0..n: V[i] = X; X = BlockMix(X)
//   for i in 0..n: j = Integerify(X) mod n; X = BlockMix(X xor V[j])
//
// n must be a power of two greater than one and r at least one
func Mix(input []byte, n int, r int) ([]byte, error) {
	if err := Validate(n, r); nil != err {
		return nil, err
	}
	if len(input) != BlockBytes*r {
		return nil, fault.ErrInvalidParameter
	}

	size := blockWords * r
	x := make([]uint32, size)
	y := make([]uint32, size)
	v := make([]uint32, size*n)

	for i := range x {
		x[i] = binary.LittleEndian.Uint32(input[4*i:])
	}

	for i := 0; i < n; i += 1 {
		copy(v[i*size:], x)
		BlockMix(y, x, r)
		x, y = y, x
	}

	mask := uint64(n - 1)
	for i := 0; i < n; i += 1 {
		j := int(Integerify(x, r) & mask)
		vj := v[j*size : (j+1)*size]
		for k := range x {
			x[k] ^= vj[k]
		}
		BlockMix(y, x, r)
		x, y = y, x
	}

	output := make([]byte, BlockBytes*r)
	for i, w := range x {
		binary.LittleEndian.PutUint32(output[4*i:], w)
	}
	return output, nil
}

// Validate - check the cost and block size parameters
func Validate(n int, r int) error {
	if n < 2 || 0 != n&(n-1) {
		return fault.ErrInvalidParameter
	}
	if r < 1 {
		return fault.ErrInvalidParameter
	}

	// scratchpad word count must be addressable
	maxInt := int(^uint(0) >> 1)
	if r > maxInt/blockWords/n {
		return fault.ErrInvalidParameter
	}
	return nil
}
