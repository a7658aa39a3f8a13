// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package util

import (
	"fmt"
)

var sizeUnits = []string{"B", "KiB", "MiB", "GiB", "TiB"}

// FormatSize - human readable binary size, e.g. scratchpad memory
func FormatSize(n uint64) string {
	value := float64(n)
	unit := 0
	for value >= 1024 && unit < len(sizeUnits)-1 {
		value /= 1024
		unit += 1
	}
	if 0 == unit {
		return fmt.Sprintf("%d %s", n, sizeUnits[0])
	}
	return fmt.Sprintf("%.1f %s", value, sizeUnits[unit])
}
