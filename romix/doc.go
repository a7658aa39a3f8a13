// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package romix - the memory-hard mixing stage of scrypt
//
// Salsa20/8 core, BlockMix and ROMix.  The scratchpad of N entries
// is allocated by each Mix call and dropped on return, so concurrent
// callers never share it.
package romix
