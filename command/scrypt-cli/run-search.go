// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/scryptd/blockdigest"
	"github.com/bitmark-inc/scryptd/blockrecord"
	"github.com/bitmark-inc/scryptd/search"
)

const (
	searchLogFile = "scrypt-cli.log"
)

type searchResult struct {
	Found     bool                  `json:"found"`
	Message   string                `json:"message,omitempty"`
	Header    string                `json:"header,omitempty"`
	Nonce     blockrecord.NonceType `json:"nonce"`
	Digest    blockdigest.Digest    `json:"digest"`
	Lane      int                   `json:"lane"`
	Step      uint64                `json:"step"`
	Telemetry search.Telemetry      `json:"telemetry"`
}

func runSearch(c *cli.Context) error {

	m := c.App.Metadata["config"].(*metadata)

	header, err := checkHeader(c, m)
	if nil != err {
		return err
	}

	target, err := checkTarget(c.String("target"), header)
	if nil != err {
		return err
	}

	level := "warn"
	if m.verbose {
		level = "info"
	}
	logging := logger.Configuration{
		Directory: c.String("log-directory"),
		File:      searchLogFile,
		Size:      1048576,
		Count:     10,
		Console:   m.verbose,
		Levels: map[string]string{
			logger.DefaultTag: level,
		},
	}
	if err = logger.Initialise(logging); nil != err {
		return err
	}
	defer logger.Finalise()

	config := &search.Configuration{
		N:         m.params.N,
		R:         m.params.R,
		P:         m.params.P,
		CoreCount: m.lanes,
	}
	coordinator, err := search.New(config, logger.New("search"))
	if nil != err {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if timeout := c.Duration("timeout"); timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	// interrupt stops the lanes and still prints what was found
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(ch)
	go func() {
		select {
		case <-ch:
			cancel()
		case <-ctx.Done():
		}
	}()

	if m.verbose {
		fmt.Fprintf(m.e, "target: %s  lanes: %d\n", target, coordinator.Lanes())
	}

	solution, err := coordinator.SearchRange(ctx, header, target, c.Uint64("first"), c.Uint64("end"))

	result := searchResult{
		Telemetry: coordinator.Telemetry(),
	}
	switch {
	case nil != solution:
		header.Nonce = solution.Nonce
		packed := header.Pack()
		result.Found = true
		result.Header = hex.EncodeToString(packed[:])
		result.Nonce = solution.Nonce
		result.Digest = solution.Digest
		result.Lane = solution.Lane
		result.Step = solution.Step
	case nil != err:
		result.Message = err.Error()
	default:
		result.Message = "no solution"
	}

	printJson(m.w, result)
	return nil
}
