// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockrecord

import (
	"encoding/binary"

	"github.com/bitmark-inc/scryptd/blockdigest"
	"github.com/bitmark-inc/scryptd/difficulty"
	"github.com/bitmark-inc/scryptd/fault"
	"github.com/bitmark-inc/scryptd/scrypt"
)

// PackedHeader - use fix size array to simplify validation
type PackedHeader [TotalHeaderSize]byte

// currently supported header versions
const (
	Version        = 2
	MinimumVersion = 1
)

// byte sizes for various fields
const (
	VersionSize       = 4                  // Block version number
	PreviousBlockSize = blockdigest.Length // 256-bit hash of the previous block header
	MerkleRootSize    = blockdigest.Length // 256-bit hash based on all of the transactions in the block
	TimestampSize     = 4                  // Current timestamp as seconds since 1970-01-01T00:00 UTC
	BitsSize          = 4                  // Current target in compact format
	NonceSize         = 4                  // 32-bit number (starts at 0)
)

// offsets of the fields
const (
	versionOffset       = 0
	previousBlockOffset = versionOffset + VersionSize
	merkleRootOffset    = previousBlockOffset + PreviousBlockSize
	timestampOffset     = merkleRootOffset + MerkleRootSize
	bitsOffset          = timestampOffset + TimestampSize
	nonceOffset         = bitsOffset + BitsSize

	// TotalHeaderSize - total bytes in the header
	TotalHeaderSize = nonceOffset + NonceSize
)

// Header - the unpacked header structure
//
// numeric fields are packed big endian, the hashes are copied verbatim
type Header struct {
	Version       uint32             `json:"version"`
	PreviousBlock blockdigest.Digest `json:"previousBlock"`
	MerkleRoot    blockdigest.Digest `json:"merkleRoot"`
	Timestamp     uint32             `json:"timestamp"`
	Bits          uint32             `json:"bits"`
	Nonce         NonceType          `json:"nonce"`
}

// Unpack - turn exactly TotalHeaderSize bytes into a header
func Unpack(buffer []byte) (*Header, error) {
	if TotalHeaderSize != len(buffer) {
		return nil, fault.ErrInvalidBlockHeaderSize
	}
	packed := PackedHeader{}
	copy(packed[:], buffer)
	return packed.Unpack(), nil
}

// Unpack - turn a packed record into a header
func (record PackedHeader) Unpack() *Header {
	header := &Header{
		Version:   binary.BigEndian.Uint32(record[versionOffset:]),
		Timestamp: binary.BigEndian.Uint32(record[timestampOffset:]),
		Bits:      binary.BigEndian.Uint32(record[bitsOffset:]),
		Nonce:     NonceType(binary.BigEndian.Uint32(record[nonceOffset:])),
	}
	copy(header.PreviousBlock[:], record[previousBlockOffset:merkleRootOffset])
	copy(header.MerkleRoot[:], record[merkleRootOffset:timestampOffset])
	return header
}

// Pack - turn a record into an array of bytes
func (header *Header) Pack() PackedHeader {
	buffer := PackedHeader{}

	binary.BigEndian.PutUint32(buffer[versionOffset:], header.Version)

	copy(buffer[previousBlockOffset:], header.PreviousBlock[:])
	copy(buffer[merkleRootOffset:], header.MerkleRoot[:])

	binary.BigEndian.PutUint32(buffer[timestampOffset:], header.Timestamp)
	binary.BigEndian.PutUint32(buffer[bitsOffset:], header.Bits)
	binary.BigEndian.PutUint32(buffer[nonceOffset:], uint32(header.Nonce))

	return buffer
}

// Target - the target encoded in the bits field
func (header *Header) Target() (*difficulty.Target, error) {
	return difficulty.FromBits(header.Bits)
}

// SetNonce - overwrite only the nonce field
func (record *PackedHeader) SetNonce(nonce NonceType) {
	binary.BigEndian.PutUint32(record[nonceOffset:], uint32(nonce))
}

// Nonce - the nonce field
func (record PackedHeader) Nonce() NonceType {
	return NonceType(binary.BigEndian.Uint32(record[nonceOffset:]))
}

// Digest - proof-of-work digest of a packed header with the
// Litecoin parameters
func (record PackedHeader) Digest() blockdigest.Digest {
	return scrypt.Hash(record[:])
}
