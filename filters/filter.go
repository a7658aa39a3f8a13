// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package filters - smoothing of noisy periodic samples such as the
// hash rate measured over one telemetry interval
package filters

// Filter - interface for filter modules
type Filter interface {
	Process(s float64) float64
	Current() float64
	Name() string
}
