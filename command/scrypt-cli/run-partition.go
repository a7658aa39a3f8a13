// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"github.com/urfave/cli"

	"github.com/bitmark-inc/scryptd/search"
)

type laneRange struct {
	Lane  int    `json:"lane"`
	First uint64 `json:"first"`
	End   uint64 `json:"end"`
	Size  uint64 `json:"size"`
}

func runPartition(c *cli.Context) error {

	m := c.App.Metadata["config"].(*metadata)

	ranges, err := search.Partition(c.Uint64("first"), c.Uint64("end"), m.lanes)
	if nil != err {
		return err
	}

	out := make([]laneRange, len(ranges))
	for i, r := range ranges {
		out[i] = laneRange{
			Lane:  i,
			First: r.First,
			End:   r.End,
			Size:  r.Size(),
		}
	}

	printJson(m.w, out)
	return nil
}
