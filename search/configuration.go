// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package search

import (
	"github.com/bitmark-inc/scryptd/fault"
	"github.com/bitmark-inc/scryptd/scrypt"
)

// MaximumLanes - upper bound on concurrent search lanes
const MaximumLanes = 64

// Configuration - search parameters
type Configuration struct {
	N         int `gluamapper:"n" json:"n"`
	R         int `gluamapper:"r" json:"r"`
	P         int `gluamapper:"p" json:"p"`
	CoreCount int `gluamapper:"core_count" json:"core_count"`
}

// Params - the scrypt parameters of the configuration
func (c *Configuration) Params() scrypt.Params {
	return scrypt.Params{
		N: c.N,
		R: c.R,
		P: c.P,
	}
}

// Validate - reject a configuration before any search starts
func (c *Configuration) Validate() error {
	if nil == c {
		return fault.ErrInvalidConfiguration
	}
	if err := c.Params().Validate(); nil != err {
		return err
	}
	return validLaneCount(c.CoreCount)
}

func validLaneCount(n int) error {
	if n < 1 || n > MaximumLanes {
		return fault.ErrInvalidCoreCount
	}
	return nil
}
