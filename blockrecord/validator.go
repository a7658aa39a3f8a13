// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockrecord

import (
	"time"

	"github.com/bitmark-inc/scryptd/blockdigest"
	"github.com/bitmark-inc/scryptd/difficulty"
	"github.com/bitmark-inc/scryptd/fault"
)

// how far ahead of local time a header timestamp may be
const maximumFutureDrift = 2 * time.Hour

// ValidHeaderVersion - valid incoming header version
func ValidHeaderVersion(version uint32) error {
	if version < MinimumVersion {
		return fault.ErrInvalidBlockHeaderVersion
	}
	return nil
}

// ValidTimestamp - header must not be too far in the future
func ValidTimestamp(header *Header, now time.Time) error {
	if int64(header.Timestamp) > now.Add(maximumFutureDrift).Unix() {
		return fault.ErrInvalidBlockHeaderTimestamp
	}
	return nil
}

// ValidProof - the digest must be strictly below the target
func ValidProof(digest blockdigest.Digest, target *difficulty.Target) error {
	if nil == target || !target.IsSolvedBy(digest) {
		return fault.ErrDigestAboveTarget
	}
	return nil
}
