// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package scrypt

import (
	"github.com/bitmark-inc/scryptd/blockdigest"
	"github.com/bitmark-inc/scryptd/fault"
	"github.com/bitmark-inc/scryptd/pbkdf2"
	"github.com/bitmark-inc/scryptd/romix"
)

// Key - derive keyLength bytes from a password and salt
func Key(password []byte, salt []byte, params Params, keyLength int) ([]byte, error) {
	if err := params.Validate(); nil != err {
		return nil, err
	}
	if keyLength < 1 {
		return nil, fault.ErrInvalidKeyLength
	}

	size := romix.BlockBytes * params.R
	b, err := pbkdf2.Key(password, salt, 1, size*params.P)
	if nil != err {
		return nil, err
	}

	for k := 0; k < params.P; k += 1 {
		block := b[k*size : (k+1)*size]
		mixed, err := romix.Mix(block, params.N, params.R)
		if nil != err {
			return nil, err
		}
		copy(block, mixed)
	}

	return pbkdf2.Key(password, b, 1, keyLength)
}

// Hasher - proof-of-work digest with fixed parameters
//
// holds no scratch state so one Hasher may be shared by any number
// of goroutines; the zero value hashes with the Litecoin parameters
type Hasher struct {
	params Params
}

// NewHasher - create a hasher, the parameters are validated once here
func NewHasher(params Params) (*Hasher, error) {
	if err := params.Validate(); nil != err {
		return nil, err
	}
	return &Hasher{
		params: params,
	}, nil
}

// Params - the parameters in use
func (h *Hasher) Params() Params {
	return h.parameters()
}

// Digest - scrypt of data using data as both password and salt
func (h *Hasher) Digest(data []byte) blockdigest.Digest {
	key, err := Key(data, data, h.parameters(), blockdigest.Length)
	fault.PanicIfError("scrypt.Hasher.Digest", err)

	var digest blockdigest.Digest
	copy(digest[:], key)
	return digest
}

var litecoin = &Hasher{
	params: Litecoin,
}

// Hash - digest of data with the Litecoin parameters
func Hash(data []byte) blockdigest.Digest {
	return litecoin.Digest(data)
}

func (h *Hasher) parameters() Params {
	if (Params{}) == h.params {
		return Litecoin
	}
	return h.params
}
