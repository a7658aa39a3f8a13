// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"encoding/hex"
	"fmt"

	"github.com/urfave/cli"

	"github.com/bitmark-inc/scryptd/blockdigest"
	"github.com/bitmark-inc/scryptd/blockrecord"
	"github.com/bitmark-inc/scryptd/scrypt"
	"github.com/bitmark-inc/scryptd/util"
)

type hashResult struct {
	Header     string                `json:"header"`
	Nonce      blockrecord.NonceType `json:"nonce"`
	Digest     blockdigest.Digest    `json:"digest"`
	Parameters scrypt.Params         `json:"parameters"`
	Memory     string                `json:"memory"`
}

func runHash(c *cli.Context) error {

	m := c.App.Metadata["config"].(*metadata)

	header, err := checkHeader(c, m)
	if nil != err {
		return err
	}

	hasher, err := scrypt.NewHasher(m.params)
	if nil != err {
		return err
	}

	packed := header.Pack()
	if m.verbose {
		fmt.Fprintf(m.e, "packed: %x\n", packed[:])
	}

	printJson(m.w, hashResult{
		Header:     hex.EncodeToString(packed[:]),
		Nonce:      header.Nonce,
		Digest:     hasher.Digest(packed[:]),
		Parameters: m.params,
		Memory:     util.FormatSize(m.params.Memory()),
	})
	return nil
}
