// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"encoding/hex"
	"strconv"
	"strings"

	"github.com/urfave/cli"

	"github.com/bitmark-inc/scryptd/blockdigest"
	"github.com/bitmark-inc/scryptd/blockrecord"
	"github.com/bitmark-inc/scryptd/chain"
	"github.com/bitmark-inc/scryptd/difficulty"
	"github.com/bitmark-inc/scryptd/fault"
)

// the whole 32 bit nonce field
const nonceSpace = uint64(1) << 32

func checkChain(name string, n int, r int, lanes int) (*metadata, error) {
	name = strings.ToLower(name)
	preset, ok := chain.Get(name)
	if !ok {
		return nil, fault.ErrInvalidChain
	}

	params := preset.Params
	if 0 != n {
		params.N = n
	}
	if 0 != r {
		params.R = r
	}
	if err := params.Validate(); nil != err {
		return nil, err
	}

	if 0 == lanes {
		lanes = preset.Lanes
	}
	if 0 == lanes {
		lanes = 1
	}

	return &metadata{
		chain:  name,
		params: params,
		lanes:  lanes,
	}, nil
}

// a header is either given packed or as separate fields
func checkHeader(c *cli.Context, m *metadata) (*blockrecord.Header, error) {

	if packed := c.String("header"); "" != packed {
		buffer, err := hex.DecodeString(packed)
		if nil != err {
			return nil, fault.ErrInvalidCharacter
		}
		return blockrecord.Unpack(buffer)
	}

	timestamp := c.Uint("timestamp")
	if 0 == timestamp {
		return nil, fault.ErrInvalidBlockHeaderTimestamp
	}

	header := &blockrecord.Header{
		Version:   uint32(c.Uint("version")),
		Timestamp: uint32(timestamp),
	}

	if err := checkDigest(c.String("previous"), &header.PreviousBlock); nil != err {
		return nil, err
	}
	if err := checkDigest(c.String("merkle"), &header.MerkleRoot); nil != err {
		return nil, err
	}

	bits := c.String("bits")
	if "" == bits {
		preset, _ := chain.Get(m.chain)
		header.Bits = preset.LimitBits
	} else {
		b, err := checkBits(bits)
		if nil != err {
			return nil, err
		}
		header.Bits = b
	}

	nonce, err := strconv.ParseUint(c.String("nonce"), 0, 32)
	if nil != err {
		return nil, fault.ErrInvalidNonce
	}
	header.Nonce = blockrecord.NonceType(nonce)

	return header, nil
}

// empty is the zero digest
func checkDigest(s string, digest *blockdigest.Digest) error {
	if "" == s {
		return nil
	}
	return digest.UnmarshalText([]byte(s))
}

// hex with or without a 0x prefix
func checkBits(s string) (uint32, error) {
	s = strings.TrimPrefix(strings.ToLower(s), "0x")
	if "" == s {
		return 0, fault.ErrInvalidBits
	}
	bits, err := strconv.ParseUint(s, 16, 32)
	if nil != err {
		return 0, fault.ErrInvalidBits
	}
	return uint32(bits), nil
}

// explicit target or the one encoded in the header
func checkTarget(s string, header *blockrecord.Header) (*difficulty.Target, error) {
	var target *difficulty.Target
	var err error
	if "" == s {
		target, err = header.Target()
	} else {
		target, err = difficulty.FromHex(s)
	}
	if nil != err {
		return nil, err
	}
	if target.IsZero() {
		return nil, fault.ErrInvalidTarget
	}
	return target, nil
}
