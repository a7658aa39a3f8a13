// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"encoding/json"
	"sync"
	"time"

	zmq "github.com/pebbe/zmq4"
	"golang.org/x/time/rate"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/scryptd/fault"
	"github.com/bitmark-inc/scryptd/zmqutil"
)

const (
	submitterLoggerPrefix = "submitter"
	submitRequest         = "block.nonce"

	// a burst of solutions for quickly replaced work is spread out
	rateLimitSubmit = 4 // per second
	rateBurstSubmit = 8
)

// Submitter - sends solutions back to the work publisher
type Submitter interface {
	Submit(*SubmittedItem) error
}

type zmqSubmitter struct {
	sync.Mutex
	log     *logger.L
	socket  *zmq.Socket
	limiter *rate.Limiter
}

func newSubmitter(endpoint string, keys zmqutil.Keys, log *logger.L) (*zmqSubmitter, error) {
	socket, err := zmqutil.NewClientSocket(zmq.PUSH, keys, endpoint)
	if nil != err {
		return nil, err
	}
	log.Infof("submit to: %q", endpoint)

	return &zmqSubmitter{
		log:     log,
		socket:  socket,
		limiter: rate.NewLimiter(rateLimitSubmit, rateBurstSubmit),
	}, nil
}

// Submit - encode and push one solution
func (s *zmqSubmitter) Submit(item *SubmittedItem) error {
	if err := limit(s.limiter); nil != err {
		return err
	}

	item.Request = submitRequest
	data, err := json.Marshal(item)
	if nil != err {
		return err
	}

	s.Lock()
	defer s.Unlock()

	if nil == s.socket {
		return fault.ErrNotInitialised
	}

	s.log.Infof("json to send: %s", data)
	_, err = s.socket.SendBytes(data, 0)
	return err
}

// Close - release the socket
func (s *zmqSubmitter) Close() error {
	s.Lock()
	defer s.Unlock()
	if nil == s.socket {
		return nil
	}
	err := s.socket.Close()
	s.socket = nil
	return err
}

// limiting for a single request
func limit(limiter *rate.Limiter) error {
	r := limiter.Reserve()
	if !r.OK() {
		return fault.ErrParameterOutOfRange
	}
	time.Sleep(r.Delay())
	return nil
}
