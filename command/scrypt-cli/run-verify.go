// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"github.com/urfave/cli"

	"github.com/bitmark-inc/scryptd/blockdigest"
	"github.com/bitmark-inc/scryptd/blockrecord"
	"github.com/bitmark-inc/scryptd/difficulty"
	"github.com/bitmark-inc/scryptd/scrypt"
)

type verifyResult struct {
	Valid  bool               `json:"valid"`
	Digest blockdigest.Digest `json:"digest"`
	Target *difficulty.Target `json:"target"`
	Reason string             `json:"reason,omitempty"`
}

func runVerify(c *cli.Context) error {

	m := c.App.Metadata["config"].(*metadata)

	header, err := checkHeader(c, m)
	if nil != err {
		return err
	}

	target, err := checkTarget(c.String("target"), header)
	if nil != err {
		return err
	}

	hasher, err := scrypt.NewHasher(m.params)
	if nil != err {
		return err
	}

	packed := header.Pack()
	digest := hasher.Digest(packed[:])

	result := verifyResult{
		Valid:  true,
		Digest: digest,
		Target: target,
	}
	if err := blockrecord.ValidHeaderVersion(header.Version); nil != err {
		result.Valid = false
		result.Reason = err.Error()
	} else if err := blockrecord.ValidProof(digest, target); nil != err {
		result.Valid = false
		result.Reason = err.Error()
	}

	printJson(m.w, result)
	return nil
}
