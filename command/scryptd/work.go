// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"encoding/hex"
	"encoding/json"

	"github.com/bitmark-inc/scryptd/blockdigest"
	"github.com/bitmark-inc/scryptd/blockrecord"
	"github.com/bitmark-inc/scryptd/difficulty"
	"github.com/bitmark-inc/scryptd/fault"
)

// PublishedItem - a work item as received from the publisher
//
//   {"job":"…", "header":"<160 hex digits>", "target":"<64 hex digits>"}
//
// an empty target means use the bits field of the header
type PublishedItem struct {
	Job    string `json:"job"`
	Header string `json:"header"`
	Target string `json:"target"`
}

// Work - a decoded work item
type Work struct {
	Job    string
	Header blockrecord.Header
	Target *difficulty.Target
}

// SubmittedItem - a solution pushed back to the publisher
type SubmittedItem struct {
	Request string                `json:"request"`
	Job     string                `json:"job"`
	Header  string                `json:"header"`
	Nonce   blockrecord.NonceType `json:"nonce"`
	Digest  blockdigest.Digest    `json:"digest"`
}

func parseWork(data []byte) (*Work, error) {
	item := PublishedItem{}
	if err := json.Unmarshal(data, &item); nil != err {
		return nil, fault.ErrInvalidWorkItem
	}
	if "" == item.Job {
		return nil, fault.ErrInvalidWorkItem
	}

	buffer, err := hex.DecodeString(item.Header)
	if nil != err {
		return nil, fault.ErrInvalidCharacter
	}
	header, err := blockrecord.Unpack(buffer)
	if nil != err {
		return nil, err
	}
	if err := blockrecord.ValidHeaderVersion(header.Version); nil != err {
		return nil, err
	}

	var target *difficulty.Target
	if "" == item.Target {
		target, err = header.Target()
	} else {
		target, err = difficulty.FromHex(item.Target)
	}
	if nil != err {
		return nil, err
	}
	if target.IsZero() {
		return nil, fault.ErrInvalidTarget
	}

	return &Work{
		Job:    item.Job,
		Header: *header,
		Target: target,
	}, nil
}
