// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package search

import (
	"github.com/bitmark-inc/scryptd/blockdigest"
)

//go:generate mockgen -destination=mocks/hasher.go -package=mocks github.com/bitmark-inc/scryptd/search Hasher

// Hasher - proof-of-work digest of a packed header
//
// must be safe for concurrent use by all lanes
type Hasher interface {
	Digest(data []byte) blockdigest.Digest
}
