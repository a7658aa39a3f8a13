// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package journal - persistent record of found solutions
//
// each solution is stored in a LevelDB database keyed by the 80 byte
// packed header carrying the winning nonce; the value is the JSON
// encoded Entry.  A small LRU of recently recorded keys lets repeated
// submissions of the same work skip the database.
package journal
