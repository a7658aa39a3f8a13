// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"encoding/hex"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
	zmq "github.com/pebbe/zmq4"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/scryptd/counter"
	"github.com/bitmark-inc/scryptd/zmqutil"
)

const (
	subscriberLoggerPrefix = "subscriber"
	subscriberSignal       = "inproc://subscriber.signal.%d"

	// a publisher repeats the current work until it changes
	seenExpiration = time.Hour
	seenCleanup    = 2 * time.Hour
)

var subscriberCount counter.Counter

// WorkQueue - receives decoded work items
type WorkQueue interface {
	Queue(*Work)
}

// Subscriber - receive work items from the publisher
type Subscriber struct {
	log      *logger.L
	socket   *zmq.Socket
	sigSend  *zmq.Socket
	sigRecv  *zmq.Socket
	queue    WorkQueue
	seen     *cache.Cache
	rejected counter.Counter
	repeated counter.Counter
}

func newSubscriber(endpoint string, keys zmqutil.Keys, queue WorkQueue, log *logger.L) (*Subscriber, error) {
	socket, err := zmqutil.NewClientSocket(zmq.SUB, keys, endpoint)
	if nil != err {
		return nil, err
	}

	// each subscriber needs its own inproc endpoint
	n := subscriberCount.Increment()
	sigSend, sigRecv, err := zmqutil.NewSignalPair(fmt.Sprintf(subscriberSignal, n))
	if nil != err {
		socket.Close()
		return nil, err
	}

	log.Infof("subscribe to: %q  encrypted: %t", endpoint, !keys.IsEmpty())

	return &Subscriber{
		log:     log,
		socket:  socket,
		sigSend: sigSend,
		sigRecv: sigRecv,
		queue:   queue,
		seen:    cache.New(seenExpiration, seenCleanup),
	}, nil
}

// Run - background process
func (s *Subscriber) Run(args interface{}, shutdown <-chan struct{}) {
	s.log.Info("starting…")

	go func() {
		<-shutdown
		s.sigSend.Send("stop", 0)
	}()

	poller := zmqutil.NewPoller()
	poller.Add(s.socket, zmq.POLLIN)
	poller.Add(s.sigRecv, zmq.POLLIN)

loop:
	for {
		polled, err := poller.Poll(-1)
		if nil != err {
			s.log.Errorf("poll error: %s", err)
			continue
		}
		for _, p := range polled {
			switch p.Socket {
			case s.sigRecv:
				s.sigRecv.Recv(0)
				break loop
			case s.socket:
				s.receive()
			}
		}
	}

	s.socket.Close()
	s.sigRecv.Close()
	s.sigSend.Close()
	s.log.Info("stopped")
}

func (s *Subscriber) receive() {
	data, err := s.socket.RecvBytes(0)
	if nil != err {
		s.log.Errorf("receive error: %s", err)
		return
	}
	s.log.Debugf("received data: %s", data)

	work, err := parseWork(data)
	if nil != err {
		n := s.rejected.Increment()
		s.log.Warnf("rejected work item: %s  total rejected: %d", err, n)
		return
	}

	packed := work.Header.Pack()
	key := work.Job + "/" + hex.EncodeToString(packed[:])
	if _, found := s.seen.Get(key); found {
		n := s.repeated.Increment()
		s.log.Tracef("repeated work item: %s  total repeated: %d", work.Job, n)
		return
	}
	s.seen.Set(key, true, cache.DefaultExpiration)

	s.queue.Queue(work)
}
