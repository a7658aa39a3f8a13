// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Command scrypt-cli - hash, search and verify block headers from the
// command line
//
//   scrypt-cli --chain=local hash --header=<160 hex digits>
//   scrypt-cli --chain=local search --header=<hex> --target=<64 hex digits>
//   scrypt-cli verify --header=<hex>
//   scrypt-cli partition --lanes=4
//   scrypt-cli target --bits=0x1e0fffff
//
// results are printed as JSON on stdout
package main
