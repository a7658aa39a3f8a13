// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package schedule - weekly working calendar for the hashing daemon
//
// each weekday holds a comma separated list of clock periods, e.g.
//
//   "09:00-17:00, 20:00-24:00"
//
// an empty day means hashing is allowed all day.  Periods are half
// open: active from the first clock up to, but not including, the
// second.
package schedule
