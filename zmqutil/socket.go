// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package zmqutil

import (
	"strings"
	"sync"
	"time"

	zmq "github.com/pebbe/zmq4"

	"github.com/bitmark-inc/scryptd/fault"
)

const (
	heartbeatInterval = 15 * time.Second
	heartbeatTimeout  = 60 * time.Second
	heartbeatTTL      = 120 * time.Second
	reconnectInterval = 5 * time.Second
)

// to ensure only one auth start
var oneTimeAuthStart sync.Once

// StartAuthentication - initialise the ZMQ security subsystem
func StartAuthentication() error {
	err := error(nil)
	oneTimeAuthStart.Do(func() {
		zmq.AuthSetVerbose(false)
		err = zmq.AuthStart()
	})
	return err
}

// NewSignalPair - return a pair of connected push/pull sockets
// for shutdown signalling
func NewSignalPair(signal string) (*zmq.Socket, *zmq.Socket, error) {

	// send half of signalling channel
	push, err := zmq.NewSocket(zmq.PUSH)
	if nil != err {
		return nil, nil, err
	}
	push.SetLinger(0)
	err = push.Bind(signal)
	if nil != err {
		push.Close()
		return nil, nil, err
	}

	// receive half of signalling channel
	pull, err := zmq.NewSocket(zmq.PULL)
	if nil != err {
		push.Close()
		return nil, nil, err
	}
	pull.SetLinger(0)
	err = pull.Connect(signal)
	if nil != err {
		push.Close()
		pull.Close()
		return nil, nil, err
	}

	return push, pull, nil
}

// Keys - CURVE keys for a client connection, all decoded 32 byte values
//
// an empty set means a plain connection (tests and local chains)
type Keys struct {
	Private []byte
	Public  []byte
	Server  []byte
}

// IsEmpty - true if no encryption is configured
func (k Keys) IsEmpty() bool {
	return 0 == len(k.Private) && 0 == len(k.Public) && 0 == len(k.Server)
}

func (k Keys) valid() error {
	if k.IsEmpty() {
		return nil
	}
	if KeyLength != len(k.Private) {
		return fault.ErrInvalidPrivateKeyFile
	}
	if KeyLength != len(k.Public) || KeyLength != len(k.Server) {
		return fault.ErrInvalidPublicKeyFile
	}
	return nil
}

// IsIPv6 - true for an endpoint like "tcp://[::1]:2138"
func IsIPv6(endpoint string) bool {
	return strings.Contains(endpoint, "[")
}

// NewClientSocket - create a socket of socketType (usually zmq.SUB or
// zmq.PUSH) connected to endpoint
func NewClientSocket(socketType zmq.Type, keys Keys, endpoint string) (*zmq.Socket, error) {
	if err := keys.valid(); nil != err {
		return nil, err
	}

	socket, err := zmq.NewSocket(socketType)
	if nil != err {
		return nil, err
	}

	if !keys.IsEmpty() {
		socket.SetCurveServer(0)
		socket.SetCurvePublickey(zmq.Z85encode(string(keys.Public)))
		socket.SetCurveSecretkey(zmq.Z85encode(string(keys.Private)))
		socket.SetCurveServerkey(zmq.Z85encode(string(keys.Server)))
		socket.SetIdentity(string(keys.Public)) // just use public key for identity
	}

	socket.SetIpv6(IsIPv6(endpoint))
	socket.SetLinger(0)
	socket.SetReconnectIvl(reconnectInterval)

	// heartbeat
	socket.SetHeartbeatIvl(heartbeatInterval)
	socket.SetHeartbeatTimeout(heartbeatTimeout)
	socket.SetHeartbeatTtl(heartbeatTTL)

	if zmq.SUB == socketType {
		socket.SetSubscribe("")
	}

	if err := socket.Connect(endpoint); nil != err {
		socket.Close()
		return nil, err
	}
	return socket, nil
}
