// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"encoding/hex"
	"fmt"
	"testing"
	"time"

	zmq "github.com/pebbe/zmq4"
	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/scryptd/zmqutil"
)

type channelQueue chan *Work

func (q channelQueue) Queue(work *Work) {
	q <- work
}

func TestSubscriberQueuesWork(t *testing.T) {
	const endpoint = "inproc://subscriber.test"

	pub, err := zmq.NewSocket(zmq.PUB)
	assert.Nil(t, err, "pub socket")
	defer pub.Close()
	pub.SetLinger(0)
	err = pub.Bind(endpoint)
	assert.Nil(t, err, "bind")

	queue := make(channelQueue, 4)
	s, err := newSubscriber(endpoint, zmqutil.Keys{}, queue, logger.New(logCategory))
	assert.Nil(t, err, "new subscriber")

	shutdown := make(chan struct{})
	done := make(chan struct{})
	go func() {
		s.Run(nil, shutdown)
		close(done)
	}()

	header := testWork("unused").Header
	packed := header.Pack()
	valid := fmt.Sprintf(`{"job":"job-7","header":"%s","target":""}`, hex.EncodeToString(packed[:]))

	// a PUB socket drops messages until the subscription arrives,
	// so keep publishing until something is queued
	var work *Work
	deadline := time.After(5 * time.Second)
loop:
	for {
		_, err = pub.Send(`{"job":""}`, 0)
		assert.Nil(t, err, "send invalid")
		_, err = pub.Send(valid, 0)
		assert.Nil(t, err, "send valid")

		select {
		case work = <-queue:
			break loop
		case <-time.After(20 * time.Millisecond):
		case <-deadline:
			t.Fatal("nothing queued")
		}
	}

	assert.Equal(t, "job-7", work.Job, "wrong job")
	assert.Equal(t, header.Timestamp, work.Header.Timestamp, "wrong timestamp")
	assert.False(t, work.Target.IsZero(), "zero target")
	assert.NotEqual(t, uint64(0), s.rejected.Uint64(), "invalid item not counted")

	close(shutdown)
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("subscriber did not stop")
	}
}

func TestSubscriberDropsRepeatedWork(t *testing.T) {
	queue := make(channelQueue, 4)
	s, err := newSubscriber("inproc://subscriber.repeat", zmqutil.Keys{}, queue, logger.New(logCategory))
	assert.Nil(t, err, "new subscriber")
	defer s.sigSend.Close()
	defer s.sigRecv.Close()

	// feed items directly through a local pair
	push, pull, err := zmqutil.NewSignalPair("inproc://subscriber.repeat.feed")
	assert.Nil(t, err, "pair")
	defer push.Close()
	defer pull.Close()
	s.socket.Close()
	s.socket = pull

	header := testWork("unused").Header
	packed := header.Pack()
	item := fmt.Sprintf(`{"job":"job-8","header":"%s"}`, hex.EncodeToString(packed[:]))

	for i := 0; i < 3; i += 1 {
		_, err = push.Send(item, 0)
		assert.Nil(t, err, "send")
		s.receive()
	}

	header.Timestamp += 1
	packed = header.Pack()
	_, err = push.Send(fmt.Sprintf(`{"job":"job-8","header":"%s"}`, hex.EncodeToString(packed[:])), 0)
	assert.Nil(t, err, "send changed header")
	s.receive()

	assert.Equal(t, 2, len(queue), "repeats were queued")
	assert.Equal(t, uint64(2), s.repeated.Uint64(), "wrong repeat count")
}
