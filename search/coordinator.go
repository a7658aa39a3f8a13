// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package search

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/scryptd/blockrecord"
	"github.com/bitmark-inc/scryptd/counter"
	"github.com/bitmark-inc/scryptd/difficulty"
	"github.com/bitmark-inc/scryptd/fault"
	"github.com/bitmark-inc/scryptd/scrypt"
)

// Coordinator - runs one search at a time over a fixed set of lanes
type Coordinator struct {
	sync.Mutex

	log   *logger.L
	lanes []*Lane

	busy     bool
	running  []*Lane
	baseline []uint64 // steps of each running lane at the last Reset
	stop     chan struct{}
	started  time.Time
	elapsed  time.Duration

	totalHashes counter.Counter
	activeLanes counter.Counter
	errorCount  counter.Counter
}

// New - create a coordinator hashing with scrypt
func New(config *Configuration, log *logger.L) (*Coordinator, error) {
	if err := config.Validate(); nil != err {
		return nil, err
	}
	hasher, err := scrypt.NewHasher(config.Params())
	if nil != err {
		return nil, err
	}
	return NewWithHasher(config.CoreCount, hasher, log)
}

// NewWithHasher - create a coordinator with a specific hasher
func NewWithHasher(lanes int, hasher Hasher, log *logger.L) (*Coordinator, error) {
	if err := validLaneCount(lanes); nil != err {
		return nil, err
	}
	if nil == hasher {
		return nil, fault.ErrInvalidParameter
	}
	if nil == log {
		return nil, fault.ErrInvalidLoggerChannel
	}

	c := &Coordinator{
		log:   log,
		lanes: make([]*Lane, lanes),
	}
	for i := range c.lanes {
		laneLog := logger.New(fmt.Sprintf("lane-%d", i))
		if nil == laneLog {
			return nil, fault.ErrInvalidLoggerChannel
		}
		c.lanes[i] = NewLane(i, hasher, laneLog)
	}

	log.Infof("lanes: %d", lanes)
	return c, nil
}

// Lanes - number of lanes
func (c *Coordinator) Lanes() int {
	return len(c.lanes)
}

// Search - search the whole 32 bit nonce space
func (c *Coordinator) Search(ctx context.Context, header *blockrecord.Header, target *difficulty.Target) (*SolutionRecord, error) {
	return c.SearchRange(ctx, header, target, 0, NonceLimit)
}

// SearchRange - search the nonces [first, end)
//
// returns nil, nil when every lane is exhausted without a solution;
// a cancelled context or a Stop returns any solution already latched,
// otherwise the cancellation error
func (c *Coordinator) SearchRange(ctx context.Context, header *blockrecord.Header, target *difficulty.Target, first uint64, end uint64) (*SolutionRecord, error) {
	if nil == header || nil == target {
		return nil, fault.ErrInvalidParameter
	}

	// small ranges use fewer lanes
	n := len(c.lanes)
	if end > first && end-first < uint64(n) {
		n = int(end - first)
	}
	ranges, err := Partition(first, end, n)
	if nil != err {
		return nil, err
	}

	c.Lock()
	if c.busy {
		c.Unlock()
		return nil, fault.ErrSearchBusy
	}
	lanes := c.lanes[:n]
	for i, lane := range lanes {
		if err := lane.Start(ranges[i], header, target); nil != err {
			for _, started := range lanes[:i] {
				started.Stop()
				started.Run(nil)
				fault.PanicIfError("lane reset", started.Reset())
			}
			c.Unlock()
			return nil, err
		}
	}
	stop := make(chan struct{})
	c.busy = true
	c.running = lanes
	c.baseline = make([]uint64, n)
	c.stop = stop
	c.started = time.Now()
	c.Unlock()

	c.log.Debugf("search: [%08x, %08x) lanes: %d target: %s", first, end, n, target)

	a := &arbiter{}

	// cooperative cancellation
	done := make(chan struct{})
	exited := make(chan struct{})
	go func() {
		defer close(exited)
		select {
		case <-ctx.Done():
		case <-stop:
		case <-done:
			return
		}
		for _, lane := range lanes {
			lane.Stop()
		}
	}()

	wg := sync.WaitGroup{}
	for _, lane := range lanes {
		wg.Add(1)
		c.activeLanes.Increment()
		go func(lane *Lane) {
			defer wg.Done()
			defer c.activeLanes.Decrement()
			lane.Run(a)
		}(lane)
	}
	wg.Wait()
	close(done)
	<-exited

	c.Lock()
	for i, lane := range lanes {
		c.totalHashes.Add(lane.Steps() - c.baseline[i])
		lane.Stop()
		fault.PanicIfError("lane reset", lane.Reset())
	}
	c.elapsed += time.Since(c.started)
	c.busy = false
	c.running = nil
	c.baseline = nil
	c.stop = nil
	c.Unlock()

	if winner := a.result(); nil != winner {
		c.log.Infof("solution: lane: %d  nonce: %08x  digest: %s", winner.Lane, winner.Nonce, winner.Digest)
		return winner, nil
	}

	if err := ctx.Err(); nil != err {
		c.log.Debugf("search cancelled: %s", err)
		return nil, err
	}

	select {
	case <-stop:
		c.log.Debug("search stopped")
		return nil, fault.ErrSearchStopped
	default:
	}

	count := c.errorCount.Increment()
	c.log.Warnf("no solution in [%08x, %08x)  exhausted searches: %d", first, end, count)
	return nil, nil
}

// Stop - stop the running search, if any
func (c *Coordinator) Stop() {
	c.Lock()
	defer c.Unlock()
	if nil != c.stop {
		close(c.stop)
		c.stop = nil
	}
}

// IsBusy - true while a search is running
func (c *Coordinator) IsBusy() bool {
	c.Lock()
	defer c.Unlock()
	return c.busy
}

// Telemetry - snapshot of the counters
func (c *Coordinator) Telemetry() Telemetry {
	c.Lock()
	defer c.Unlock()

	total := c.totalHashes.Uint64()
	elapsed := c.elapsed
	if c.busy {
		for i, lane := range c.running {
			total += lane.Steps() - c.baseline[i]
		}
		elapsed += time.Since(c.started)
	}

	rate := 0.0
	if elapsed > 0 {
		rate = float64(total) / elapsed.Seconds()
	}

	return Telemetry{
		HashRate:    rate,
		ActiveLanes: c.activeLanes.Uint64(),
		TotalHashes: total,
		ErrorCount:  c.errorCount.Uint64(),
	}
}

// Reset - zero the counters
//
// hashes already done by a running search are not counted again
func (c *Coordinator) Reset() {
	c.Lock()
	defer c.Unlock()

	c.totalHashes.Reset()
	c.errorCount.Reset()
	c.elapsed = 0
	if c.busy {
		c.started = time.Now()
		for i, lane := range c.running {
			c.baseline[i] = lane.Steps()
		}
	}
}
