// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package zmqutil

import (
	"encoding/hex"
	"io/ioutil"
	"os"
	"strings"

	zmq "github.com/pebbe/zmq4"

	"github.com/bitmark-inc/scryptd/fault"
	"github.com/bitmark-inc/scryptd/util"
)

const (
	taggedPublic  = "PUBLIC:"
	taggedPrivate = "PRIVATE:"

	// KeyLength - bytes in a decoded CURVE key
	KeyLength = 32
)

// MakeKeyPair - create a new public/private keypair and write them to
// separate files; existing files are never overwritten
func MakeKeyPair(publicKeyFileName string, privateKeyFileName string) error {
	if util.EnsureFileExists(publicKeyFileName) {
		return fault.ErrKeyFileAlreadyExists
	}

	if util.EnsureFileExists(privateKeyFileName) {
		return fault.ErrKeyFileAlreadyExists
	}

	// keys are returned in Z85 (ZeroMQ Base-85 Encoding) see: http://rfc.zeromq.org/spec:32
	publicKey, privateKey, err := zmq.NewCurveKeypair()
	if nil != err {
		return err
	}

	publicKey = taggedPublic + hex.EncodeToString([]byte(zmq.Z85decode(publicKey))) + "\n"
	privateKey = taggedPrivate + hex.EncodeToString([]byte(zmq.Z85decode(privateKey))) + "\n"

	if err = ioutil.WriteFile(publicKeyFileName, []byte(publicKey), 0666); err != nil {
		return err
	}

	if err = ioutil.WriteFile(privateKeyFileName, []byte(privateKey), 0600); err != nil {
		os.Remove(publicKeyFileName)
		return err
	}

	return nil
}

// ReadPublicKey - decode a tagged public key string to its 32 bytes
func ReadPublicKey(key string) ([]byte, error) {
	data, private, err := ParseKey(key)
	if err != nil {
		return nil, err
	}
	if private {
		return nil, fault.ErrInvalidPublicKeyFile
	}
	return data, nil
}

// ReadPrivateKey - decode a tagged private key string to its 32 bytes
func ReadPrivateKey(key string) ([]byte, error) {
	data, private, err := ParseKey(key)
	if err != nil {
		return nil, err
	}
	if !private {
		return nil, fault.ErrInvalidPrivateKeyFile
	}
	return data, nil
}

// ReadKeyFile - the key text is either inline ("PUBLIC:…") or the name
// of a file holding it
func ReadKeyFile(keyOrFileName string) (string, error) {
	s := strings.TrimSpace(keyOrFileName)
	if strings.HasPrefix(s, taggedPublic) || strings.HasPrefix(s, taggedPrivate) {
		return s, nil
	}
	data, err := ioutil.ReadFile(s)
	if nil != err {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// ParseKey - decode a tagged key, private reports which tag was found
func ParseKey(data string) (key []byte, private bool, err error) {
	s := strings.TrimSpace(data)

	tag := ""
	invalid := fault.ErrInvalidPublicKeyFile
	switch {
	case strings.HasPrefix(s, taggedPrivate):
		tag = taggedPrivate
		private = true
		invalid = fault.ErrInvalidPrivateKeyFile
	case strings.HasPrefix(s, taggedPublic):
		tag = taggedPublic
	default:
		return nil, false, fault.ErrInvalidPublicKeyFile
	}

	h, err := hex.DecodeString(s[len(tag):])
	if err != nil {
		return nil, false, invalid
	}
	if len(h) != KeyLength {
		return nil, false, invalid
	}
	return h, private, nil
}
