// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli"

	"github.com/bitmark-inc/scryptd/chain"
	"github.com/bitmark-inc/scryptd/scrypt"
)

type metadata struct {
	chain   string
	params  scrypt.Params
	lanes   int
	verbose bool
	e       io.Writer
	w       io.Writer
}

// set by the linker: go build -ldflags "-X main.version=M.N" ./...
var version = "zero" // do not change this value

func main() {
	app := newApp(os.Stdout, os.Stderr)

	err := app.Run(os.Args)
	if nil != err {
		fmt.Fprintf(app.ErrWriter, "terminated with error: %s\n", err)
		os.Exit(1)
	}
}

var headerFlags = []cli.Flag{
	cli.StringFlag{
		Name:  "header, H",
		Value: "",
		Usage: "+packed header `HEX`",
	},
	cli.UintFlag{
		Name:  "version",
		Value: 2,
		Usage: " header version `NUMBER`",
	},
	cli.StringFlag{
		Name:  "previous",
		Value: "",
		Usage: " previous block `DIGEST`",
	},
	cli.StringFlag{
		Name:  "merkle",
		Value: "",
		Usage: " merkle root `DIGEST`",
	},
	cli.UintFlag{
		Name:  "timestamp",
		Value: 0,
		Usage: "+seconds since the epoch `NUMBER`",
	},
	cli.StringFlag{
		Name:  "bits, b",
		Value: "",
		Usage: " compact target `BITS` (default is the chain limit)",
	},
	cli.StringFlag{
		Name:  "nonce",
		Value: "0",
		Usage: " nonce `NUMBER`",
	},
}

func newApp(w io.Writer, e io.Writer) *cli.App {

	app := cli.NewApp()
	app.Name = "scrypt-cli"
	app.Usage = "scrypt proof of work tool"
	app.Version = version
	app.HideVersion = true

	app.Writer = w
	app.ErrWriter = e

	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "verbose, v",
			Usage: " verbose result",
		},
		cli.StringFlag{
			Name:  "chain, c",
			Value: chain.Litecoin,
			Usage: " parameter preset `CHAIN` [litecoin|testing|local]",
		},
		cli.IntFlag{
			Name:  "n",
			Value: 0,
			Usage: " override the cost parameter `N`",
		},
		cli.IntFlag{
			Name:  "r",
			Value: 0,
			Usage: " override the block size parameter `R`",
		},
		cli.IntFlag{
			Name:  "lanes, l",
			Value: 0,
			Usage: " number of search lanes `COUNT` (default is the chain preset or 1)",
		},
	}

	app.Commands = []cli.Command{
		{
			Name:      "hash",
			Usage:     "scrypt digest of a block header",
			ArgsUsage: "\n   (* = required, + = select one)",
			Flags:     headerFlags,
			Action:    runHash,
		},
		{
			Name:      "search",
			Usage:     "search the nonce space for a header beating a target",
			ArgsUsage: "\n   (* = required, + = select one)",
			Flags: append([]cli.Flag{
				cli.StringFlag{
					Name:  "target, t",
					Value: "",
					Usage: " 256 bit target `HEX` (default is from the header bits)",
				},
				cli.Uint64Flag{
					Name:  "first",
					Value: 0,
					Usage: " first nonce to try `NUMBER`",
				},
				cli.Uint64Flag{
					Name:  "end",
					Value: nonceSpace,
					Usage: " end of the nonce range, exclusive `NUMBER`",
				},
				cli.DurationFlag{
					Name:  "timeout",
					Value: 0,
					Usage: " give up after `DURATION`",
				},
				cli.StringFlag{
					Name:  "log-directory",
					Value: ".",
					Usage: " directory for the search log `DIR`",
				},
			}, headerFlags...),
			Action: runSearch,
		},
		{
			Name:      "verify",
			Usage:     "check that a header beats its target",
			ArgsUsage: "\n   (* = required, + = select one)",
			Flags: append([]cli.Flag{
				cli.StringFlag{
					Name:  "target, t",
					Value: "",
					Usage: " 256 bit target `HEX` (default is from the header bits)",
				},
			}, headerFlags...),
			Action: runVerify,
		},
		{
			Name:      "partition",
			Usage:     "show how a nonce range is split between lanes",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				cli.Uint64Flag{
					Name:  "first",
					Value: 0,
					Usage: " first nonce `NUMBER`",
				},
				cli.Uint64Flag{
					Name:  "end",
					Value: nonceSpace,
					Usage: " end of the range, exclusive `NUMBER`",
				},
			},
			Action: runPartition,
		},
		{
			Name:      "target",
			Usage:     "expand compact bits to a 256 bit target",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "bits, b",
					Value: "",
					Usage: "*compact target `BITS`",
				},
			},
			Action: runTarget,
		},
		{
			Name:  "version",
			Usage: "display scrypt-cli version",
			Action: func(c *cli.Context) error {
				fmt.Fprintf(c.App.Writer, "%s\n", version)
				return nil
			},
		},
	}

	// resolve the parameters once for all commands
	app.Before = func(c *cli.Context) error {

		m, err := checkChain(c.GlobalString("chain"), c.GlobalInt("n"), c.GlobalInt("r"), c.GlobalInt("lanes"))
		if nil != err {
			return err
		}

		m.verbose = c.GlobalBool("verbose")
		m.w = c.App.Writer
		m.e = c.App.ErrWriter

		if m.verbose {
			fmt.Fprintf(m.e, "chain: %s  parameters: %s  lanes: %d\n", m.chain, m.params, m.lanes)
		}

		c.App.Metadata["config"] = m
		return nil
	}

	return app
}
