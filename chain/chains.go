// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chain

import (
	"github.com/bitmark-inc/scryptd/scrypt"
)

// names of all chains
const (
	Litecoin = "litecoin"
	Testing  = "testing"
	Local    = "local"
)

// Preset - scrypt parameters and search defaults of a chain
type Preset struct {
	Params      scrypt.Params
	Lanes       int    // default lane count, 0 => one per CPU
	LimitBits   uint32 // compact form of the easiest allowed target
	Description string
}

var presets = map[string]Preset{
	Litecoin: {
		Params:      scrypt.Litecoin,
		Lanes:       0,
		LimitBits:   0x1e0fffff,
		Description: "litecoin main network",
	},
	Testing: {
		Params:      scrypt.Litecoin,
		Lanes:       4,
		LimitBits:   0x1e0fffff,
		Description: "public test network",
	},
	Local: {
		Params: scrypt.Params{
			N: 16,
			R: 1,
			P: 1,
		},
		Lanes:       2,
		LimitBits:   0x207fffff,
		Description: "local regression testing",
	},
}

// Valid - validate a chain name
func Valid(name string) bool {
	_, ok := presets[name]
	return ok
}

// Get - the preset for a chain, ok is false for an unknown name
func Get(name string) (Preset, bool) {
	p, ok := presets[name]
	return p, ok
}

// Params - scrypt parameters of a chain, zero value for an unknown name
func Params(name string) scrypt.Params {
	return presets[name].Params
}
