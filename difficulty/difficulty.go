// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package difficulty

import (
	"encoding/hex"
	"fmt"
	"math"
	"math/big"

	"github.com/bitmark-inc/scryptd/blockdigest"
	"github.com/bitmark-inc/scryptd/fault"
)

// Length - number of bytes in the big endian form of a target
const Length = 32

// DefaultBits - compact form of the difficulty one target
const DefaultBits = 0x1d00ffff

// constOne is for "pdiff" calculation as defined by:
//   https://en.bitcoin.it/wiki/Difficulty#How_is_difficulty_calculated.3F_What_is_the_difference_between_bdiff_and_pdiff.3F
//
// pool difficulty of 1
var constOne = []byte{
	0x00, 0x00, 0x00, 0x00, 0xff, 0xff, 0xff, 0xff,
	0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
	0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
	0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
}

var one big.Int     // for reciprocal calculation
var maximum big.Int // 2^256 - 1

// on startup
func init() {
	one.SetBytes(constOne)
	maximum.Lsh(big.NewInt(1), 8*Length)
	maximum.Sub(&maximum, big.NewInt(1))
}

// Target - a 256 bit threshold, a digest is a solution only when
// it is numerically below the target
//
// the value is immutable once constructed
type Target struct {
	value big.Int
}

// FromBigInt - target from a 256 bit unsigned value
func FromBigInt(value *big.Int) (*Target, error) {
	if nil == value || value.Sign() < 0 || value.Cmp(&maximum) > 0 {
		return nil, fault.ErrInvalidTarget
	}
	t := &Target{}
	t.value.Set(value)
	return t, nil
}

// FromHex - target from big endian hex text of exactly 64 digits
func FromHex(s string) (*Target, error) {
	if hex.EncodedLen(Length) != len(s) {
		return nil, fault.ErrInvalidTarget
	}
	buffer, err := hex.DecodeString(s)
	if nil != err {
		return nil, fault.ErrInvalidCharacter
	}
	t := &Target{}
	t.value.SetBytes(buffer)
	return t, nil
}

// FromBits - target from the compact representation carried in
// the header bits field
//
//   bits = exponent(8) | sign(1) | mantissa(23)
//   target = mantissa * 256^(exponent-3)
//
// negative values and values wider than 256 bits are rejected
func FromBits(bits uint32) (*Target, error) {
	exponent := int(bits >> 24)
	mantissa := bits & 0x007fffff

	if 0 != mantissa && 0 != bits&0x00800000 {
		return nil, fault.ErrInvalidTarget
	}

	t := &Target{}
	if exponent <= 3 {
		t.value.SetUint64(uint64(mantissa >> uint(8*(3-exponent))))
	} else {
		t.value.SetUint64(uint64(mantissa))
		t.value.Lsh(&t.value, uint(8*(exponent-3)))
	}

	if t.value.BitLen() > 8*Length {
		return nil, fault.ErrInvalidTarget
	}
	return t, nil
}

// Maximum - the largest target, every digest except all ones is a solution
func Maximum() *Target {
	t := &Target{}
	t.value.Set(&maximum)
	return t
}

// Zero - the impossible target, no digest can be below it
func Zero() *Target {
	return &Target{}
}

// BigInt - copy of the 256 bit value
func (target *Target) BigInt() *big.Int {
	return new(big.Int).Set(&target.value)
}

// Bytes - the 32 byte big endian value
func (target *Target) Bytes() [Length]byte {
	var b [Length]byte
	target.value.FillBytes(b[:])
	return b
}

// IsZero - true for the impossible target
func (target *Target) IsZero() bool {
	return 0 == target.value.Sign()
}

// IsSolvedBy - true if the digest is strictly below the target
func (target *Target) IsSolvedBy(digest blockdigest.Digest) bool {
	return digest.Cmp(&target.value) < 0
}

// Bits - the compact representation, truncated to the
// three most significant bytes of the target
func (target *Target) Bits() uint32 {
	size := (target.value.BitLen() + 7) / 8

	var mantissa uint32
	if size <= 3 {
		mantissa = uint32(target.value.Uint64()) << uint(8*(3-size))
	} else {
		v := new(big.Int).Rsh(&target.value, uint(8*(size-3)))
		mantissa = uint32(v.Uint64())
	}

	// keep the sign bit clear
	if 0 != mantissa&0x00800000 {
		mantissa >>= 8
		size += 1
	}
	return uint32(size)<<24 | mantissa
}

// Pdiff - pool difficulty, the difficulty one target divided by this target
func (target *Target) Pdiff() float64 {
	if target.IsZero() {
		return math.Inf(1)
	}
	n := new(big.Float).SetInt(&one)
	d := new(big.Float).SetInt(&target.value)
	f, _ := n.Quo(n, d).Float64()
	return f
}

// String - 64 hex digit big endian value
func (target *Target) String() string {
	return fmt.Sprintf("%064x", &target.value)
}

// GoString - for the %#v format
func (target *Target) GoString() string {
	return fmt.Sprintf("<target:%064x>", &target.value)
}

// MarshalText - convert target to hex text
func (target *Target) MarshalText() ([]byte, error) {
	return []byte(target.String()), nil
}

// UnmarshalText - convert hex text into a target
func (target *Target) UnmarshalText(s []byte) error {
	t, err := FromHex(string(s))
	if nil != err {
		return err
	}
	target.value.Set(&t.value)
	return nil
}
