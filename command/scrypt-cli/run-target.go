// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"

	"github.com/urfave/cli"

	"github.com/bitmark-inc/scryptd/difficulty"
	"github.com/bitmark-inc/scryptd/fault"
)

type targetResult struct {
	Bits   string             `json:"bits"`
	Target *difficulty.Target `json:"target"`
	Pdiff  float64            `json:"pdiff"`
}

func runTarget(c *cli.Context) error {

	m := c.App.Metadata["config"].(*metadata)

	bits, err := checkBits(c.String("bits"))
	if nil != err {
		return err
	}

	target, err := difficulty.FromBits(bits)
	if nil != err {
		return err
	}
	if target.IsZero() {
		return fault.ErrInvalidTarget
	}

	printJson(m.w, targetResult{
		Bits:   fmt.Sprintf("0x%08x", target.Bits()),
		Target: target,
		Pdiff:  target.Pdiff(),
	})
	return nil
}
