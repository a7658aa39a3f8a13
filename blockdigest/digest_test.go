// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockdigest_test

import (
	"encoding/json"
	"fmt"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/scryptd/blockdigest"
	"github.com/bitmark-inc/scryptd/fault"
)

func TestScanFmt(t *testing.T) {

	// big endian
	stringDigest := "00000000440b921e1b77c6c0487ae5616de67f788f44ae2a5af6e2194d16b6f8"

	var d blockdigest.Digest
	n, err := fmt.Sscan(stringDigest, &d)
	if nil != err {
		t.Fatalf("hex to digest error: %v", err)
	}

	if 1 != n {
		t.Fatalf("scanned %d items expected to scan 1", n)
	}

	// bytes in the same order as the text
	expected := blockdigest.Digest{
		0x00, 0x00, 0x00, 0x00,
		0x44, 0x0b, 0x92, 0x1e,
		0x1b, 0x77, 0xc6, 0xc0,
		0x48, 0x7a, 0xe5, 0x61,
		0x6d, 0xe6, 0x7f, 0x78,
		0x8f, 0x44, 0xae, 0x2a,
		0x5a, 0xf6, 0xe2, 0x19,
		0x4d, 0x16, 0xb6, 0xf8,
	}

	if d != expected {
		t.Errorf("digest = %#v expected %#v", d, expected)
	}

	s := fmt.Sprintf("%s", d)
	if s != stringDigest {
		t.Errorf("string: digest = %s expected %s", s, stringDigest)
	}

	s = fmt.Sprintf("%#v", d)
	if s != "<scrypt:"+stringDigest+">" {
		t.Errorf("hash-v: digest = %s expected %s", s, stringDigest)
	}

	var expectedBig big.Int
	n, err = fmt.Sscanf(stringDigest, "%x", &expectedBig)
	if nil != err {
		t.Fatalf("hex to big error: %v", err)
	}

	if 1 != n {
		t.Fatalf("scanned %d items expected to scan 1", n)
	}

	if 0 != d.Cmp(&expectedBig) {
		t.Errorf("digest: %s != expected: %x", d, &expectedBig)
	}
}

func TestCmpIsNumeric(t *testing.T) {
	// smaller number despite the larger final byte
	low := blockdigest.Digest{0x00, 0x01}
	low[31] = 0xff
	high := blockdigest.Digest{0x00, 0x02}

	assert.Equal(t, -1, low.Cmp(high.Big()), "low not below high")
	assert.Equal(t, 1, high.Cmp(low.Big()), "high not above low")
	assert.Equal(t, 0, low.Cmp(low.Big()), "low not equal to itself")
}

func TestJSON(t *testing.T) {
	var d blockdigest.Digest
	d[0] = 0x12
	d[31] = 0xab

	buffer, err := json.Marshal(d)
	assert.Nil(t, err, "marshal error")
	assert.Equal(t, `"12000000000000000000000000000000000000000000000000000000000000ab"`, string(buffer), "wrong JSON")

	var actual blockdigest.Digest
	err = json.Unmarshal(buffer, &actual)
	assert.Nil(t, err, "unmarshal error")
	assert.Equal(t, d, actual, "round trip mismatch")
}

func TestUnmarshalTextErrors(t *testing.T) {
	var d blockdigest.Digest
	assert.Equal(t, fault.ErrInvalidDigestLength, d.UnmarshalText([]byte("0011")), "short text accepted")

	bad := []byte("zz00000000000000000000000000000000000000000000000000000000000000")
	assert.Equal(t, fault.ErrInvalidCharacter, d.UnmarshalText(bad), "bad character accepted")
}

func TestDigestFromBytes(t *testing.T) {
	var d blockdigest.Digest
	assert.Equal(t, fault.ErrInvalidDigestLength, blockdigest.DigestFromBytes(&d, make([]byte, 31)), "short buffer accepted")

	buffer := make([]byte, blockdigest.Length)
	buffer[5] = 0x55
	assert.Nil(t, blockdigest.DigestFromBytes(&d, buffer), "valid buffer rejected")
	assert.Equal(t, byte(0x55), d[5], "byte not copied")
	assert.False(t, d.IsZero(), "non zero digest reported as zero")
}
