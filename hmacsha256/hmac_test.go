// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package hmacsha256_test

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/scryptd/hmacsha256"
)

// RFC 4231 test cases 1, 2 and 6 plus a one-hash-length key
var vectors = []struct {
	key      []byte
	message  []byte
	expected string
}{
	{
		key:      bytes.Repeat([]byte{0x0b}, 20),
		message:  []byte("Hi There"),
		expected: "b0344c61d8db38535ca8afceaf0bf12b881dc200c9833da726e9376c2e32cff7",
	},
	{
		key:      []byte("Jefe"),
		message:  []byte("what do ya want for nothing?"),
		expected: "5bdcc146bf60754e6a042426089575c75a003f089d2739839dec58b964ec3843",
	},
	{
		key:      bytes.Repeat([]byte{0xaa}, 131),
		message:  []byte("Test Using Larger Than Block-Size Key - Hash Key First"),
		expected: "60e431591ee0b67f0d8a26aacbf5b77f8e0bc6213728c5140546040f0ee37f54",
	},
	{
		key:      []byte{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16, 17, 18, 19, 20, 21, 22, 23, 24, 25, 26, 27, 28, 29, 30, 31},
		message:  []byte("scrypt"),
		expected: "ff9d511d4fb65107c68ce6de4c1ab2d09510bdf19cdaaec084a4f2d8dcef69f6",
	},
}

func TestSum(t *testing.T) {
	for i, v := range vectors {
		tag := hmacsha256.Sum(v.key, v.message)
		actual := hex.EncodeToString(tag[:])
		if actual != v.expected {
			t.Errorf("%d: tag: %s  expected: %s", i, actual, v.expected)
		}
	}
}

func TestResetReusesKey(t *testing.T) {
	m := hmacsha256.New([]byte("Jefe"))
	m.Write([]byte("something else entirely"))
	m.Reset()
	m.Write([]byte("what do ya want for nothing?"))

	assert.Equal(t, vectors[1].expected, hex.EncodeToString(m.Sum(nil)), "wrong tag after reset")
}

func TestMatchesStandardLibrary(t *testing.T) {
	message := []byte("the quick brown fox jumps over the lazy dog")
	for keyLength := 0; keyLength <= 150; keyLength += 5 {
		key := make([]byte, keyLength)
		for i := range key {
			key[i] = byte(i + keyLength)
		}

		reference := hmac.New(sha256.New, key)
		reference.Write(message)

		tag := hmacsha256.Sum(key, message)
		if !bytes.Equal(reference.Sum(nil), tag[:]) {
			t.Errorf("key length %d: tag mismatch", keyLength)
		}
	}
}

func TestIndependentCalls(t *testing.T) {
	first := hmacsha256.Sum([]byte("key"), []byte("message"))
	second := hmacsha256.Sum([]byte("key"), []byte("message"))
	assert.Equal(t, first, second, "repeated calls differ")
}
