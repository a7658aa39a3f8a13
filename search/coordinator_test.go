// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package search_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/bitmark-inc/logger"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/scryptd/blockdigest"
	"github.com/bitmark-inc/scryptd/blockrecord"
	"github.com/bitmark-inc/scryptd/difficulty"
	"github.com/bitmark-inc/scryptd/fault"
	"github.com/bitmark-inc/scryptd/scrypt"
	"github.com/bitmark-inc/scryptd/search"
	"github.com/bitmark-inc/scryptd/search/mocks"
)

func TestNewInvalidConfiguration(t *testing.T) {
	items := []struct {
		config *search.Configuration
		err    error
	}{
		{config: nil, err: fault.ErrInvalidConfiguration},
		{config: &search.Configuration{N: 1000, R: 1, P: 1, CoreCount: 4}, err: fault.ErrInvalidCostParameter},
		{config: &search.Configuration{N: 1, R: 1, P: 1, CoreCount: 4}, err: fault.ErrInvalidCostParameter},
		{config: &search.Configuration{N: 1024, R: 0, P: 1, CoreCount: 4}, err: fault.ErrInvalidBlockSizeParameter},
		{config: &search.Configuration{N: 1024, R: 1, P: 2, CoreCount: 4}, err: fault.ErrInvalidParallelisation},
		{config: &search.Configuration{N: 1024, R: 1, P: 1, CoreCount: 0}, err: fault.ErrInvalidCoreCount},
		{config: &search.Configuration{N: 1024, R: 1, P: 1, CoreCount: 65}, err: fault.ErrInvalidCoreCount},
		{config: &search.Configuration{N: 1 << 24, R: 1024, P: 1, CoreCount: 1}, err: fault.ErrMemoryLimitExceeded},
	}

	for i, item := range items {
		c, err := search.New(item.config, logger.New("testing"))
		assert.Equal(t, item.err, err, "%d: wrong error", i)
		assert.True(t, fault.IsErrConfiguration(err), "%d: not a configuration error", i)
		assert.Nil(t, c, "%d: coordinator returned", i)
	}
}

func TestNewWithHasherInvalid(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	hasher := mocks.NewMockHasher(ctrl)

	_, err := search.NewWithHasher(0, hasher, logger.New("testing"))
	assert.Equal(t, fault.ErrInvalidCoreCount, err, "zero lanes accepted")

	_, err = search.NewWithHasher(4, nil, logger.New("testing"))
	assert.Equal(t, fault.ErrInvalidParameter, err, "nil hasher accepted")

	_, err = search.NewWithHasher(4, hasher, nil)
	assert.Equal(t, fault.ErrInvalidLoggerChannel, err, "nil logger accepted")

	c, err := search.NewWithHasher(search.MaximumLanes, hasher, logger.New("testing"))
	assert.Nil(t, err, "maximum lanes rejected")
	assert.Equal(t, search.MaximumLanes, c.Lanes(), "wrong lane count")
}

// lanes 0..3 over [0, 400) each cover 100 nonces
func TestTieBreakLowestLaneAtSameStep(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	// lane 0 and lane 3 both solve at step 5
	hasher := solvingHasher(ctrl, 5, 305)

	c, err := search.NewWithHasher(4, hasher, logger.New("testing"))
	if nil != err {
		t.Fatalf("create error: %s", err)
	}

	for i := 0; i < 20; i += 1 {
		solution, err := c.SearchRange(context.Background(), &blockrecord.Header{}, difficulty.Maximum(), 0, 400)
		if !assert.Nil(t, err, "%d: unexpected error", i) {
			continue
		}
		assert.Equal(t, &search.SolutionRecord{Lane: 0, Nonce: 5, Digest: solved, Step: 5}, solution, "%d: wrong winner", i)
	}
}

func TestTieBreakEarliestStepWins(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	// lane 2 reports first, but lane 1 solves at the same step
	// and lane 0 at an earlier one
	hasher := mocks.NewMockHasher(ctrl)
	hasher.EXPECT().Digest(gomock.Any()).DoAndReturn(func(data []byte) blockdigest.Digest {
		switch n := nonceOf(data); {
		case 206 == n:
			return solved
		case 106 == n:
			return solved
		case 4 == n:
			return solved
		case n < 200:
			time.Sleep(time.Millisecond)
		}
		return unsolved
	}).AnyTimes()

	c, err := search.NewWithHasher(4, hasher, logger.New("testing"))
	if nil != err {
		t.Fatalf("create error: %s", err)
	}

	for i := 0; i < 5; i += 1 {
		solution, err := c.SearchRange(context.Background(), &blockrecord.Header{}, difficulty.Maximum(), 0, 400)
		if !assert.Nil(t, err, "%d: unexpected error", i) {
			continue
		}
		assert.Equal(t, &search.SolutionRecord{Lane: 0, Nonce: 4, Digest: solved, Step: 4}, solution, "%d: wrong winner", i)
	}
}

func TestSolutionBeatsTarget(t *testing.T) {
	hasher, err := scrypt.NewHasher(scrypt.Params{N: 16, R: 1, P: 1})
	if nil != err {
		t.Fatalf("hasher error: %s", err)
	}

	c, err := search.NewWithHasher(4, hasher, logger.New("testing"))
	if nil != err {
		t.Fatalf("create error: %s", err)
	}

	// roughly one nonce in sixteen succeeds
	target, _ := difficulty.FromHex("1000000000000000000000000000000000000000000000000000000000000000")
	header := fixtureHeader(t, 1700000000)

	solution, err := c.Search(context.Background(), header, target)
	if nil != err {
		t.Fatalf("search error: %s", err)
	}
	if nil == solution {
		t.Fatalf("no solution")
	}

	packed := header.Pack()
	packed.SetNonce(solution.Nonce)
	digest := hasher.Digest(packed[:])
	assert.Equal(t, digest, solution.Digest, "reported digest does not match the nonce")
	assert.True(t, target.IsSolvedBy(digest), "digest does not beat target")
}

func TestExhaustion(t *testing.T) {
	hasher, err := scrypt.NewHasher(scrypt.Params{N: 16, R: 1, P: 1})
	if nil != err {
		t.Fatalf("hasher error: %s", err)
	}

	c, err := search.NewWithHasher(4, hasher, logger.New("testing"))
	if nil != err {
		t.Fatalf("create error: %s", err)
	}

	solution, err := c.SearchRange(context.Background(), fixtureHeader(t, 1700000000), difficulty.Zero(), 0, 16)
	assert.Nil(t, err, "exhaustion reported as error")
	assert.Nil(t, solution, "solution below zero target")

	telemetry := c.Telemetry()
	assert.Equal(t, uint64(1), telemetry.ErrorCount, "wrong error count")
	assert.Equal(t, uint64(16), telemetry.TotalHashes, "wrong hash count")
	assert.Equal(t, uint64(0), telemetry.ActiveLanes, "lanes still active")
	assert.True(t, telemetry.HashRate > 0, "no hash rate")

	// fewer nonces than lanes
	solution, err = c.SearchRange(context.Background(), fixtureHeader(t, 1700000000), difficulty.Zero(), 7, 9)
	assert.Nil(t, err, "exhaustion reported as error")
	assert.Nil(t, solution, "solution below zero target")

	telemetry = c.Telemetry()
	assert.Equal(t, uint64(2), telemetry.ErrorCount, "wrong error count")
	assert.Equal(t, uint64(18), telemetry.TotalHashes, "wrong hash count")

	c.Reset()
	assert.Equal(t, search.Telemetry{}, c.Telemetry(), "counters not reset")
}

func TestSearchInvalid(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	c, err := search.NewWithHasher(4, mocks.NewMockHasher(ctrl), logger.New("testing"))
	if nil != err {
		t.Fatalf("create error: %s", err)
	}

	_, err = c.Search(context.Background(), nil, difficulty.Maximum())
	assert.Equal(t, fault.ErrInvalidParameter, err, "nil header accepted")

	_, err = c.Search(context.Background(), &blockrecord.Header{}, nil)
	assert.Equal(t, fault.ErrInvalidParameter, err, "nil target accepted")

	_, err = c.SearchRange(context.Background(), &blockrecord.Header{}, difficulty.Maximum(), 10, 10)
	assert.Equal(t, fault.ErrInvalidNonceRange, err, "empty range accepted")

	assert.Equal(t, uint64(0), c.Telemetry().ErrorCount, "invalid call counted")
}

// end to end: N=1024 r=1 p=1 with 4 lanes, target one above the
// digest of the expected nonce
func TestEndToEnd(t *testing.T) {
	items := []struct {
		timestamp uint32
		target    string
		expected  search.SolutionRecord
		digest    string
	}{
		{
			timestamp: 1700000001,
			target:    "00d6b9ee645e4ef33cb4483f4ac08a38c44d2c44bdc6e01a4bc6e88d945de28b",
			expected:  search.SolutionRecord{Lane: 3, Nonce: 0xc0000007, Step: 7},
			digest:    "00d6b9ee645e4ef33cb4483f4ac08a38c44d2c44bdc6e01a4bc6e88d945de28a",
		},
		{
			timestamp: 1700000000,
			target:    "00dc958fff9db75b86a396627a2d299bd23361feff4fa01e812de1a4220c5d61",
			expected:  search.SolutionRecord{Lane: 0, Nonce: 2, Step: 2},
			digest:    "00dc958fff9db75b86a396627a2d299bd23361feff4fa01e812de1a4220c5d60",
		},
	}

	config := &search.Configuration{
		N:         1024,
		R:         1,
		P:         1,
		CoreCount: 4,
	}
	c, err := search.New(config, logger.New("testing"))
	if nil != err {
		t.Fatalf("create error: %s", err)
	}

	for i, item := range items {
		target, err := difficulty.FromHex(item.target)
		if nil != err {
			t.Fatalf("%d: target error: %s", i, err)
		}

		solution, err := c.Search(context.Background(), fixtureHeader(t, item.timestamp), target)
		if !assert.Nil(t, err, "%d: search error", i) {
			continue
		}
		if !assert.NotNil(t, solution, "%d: no solution", i) {
			continue
		}

		assert.Equal(t, item.expected.Lane, solution.Lane, "%d: wrong lane", i)
		assert.Equal(t, item.expected.Nonce, solution.Nonce, "%d: wrong nonce", i)
		assert.Equal(t, item.expected.Step, solution.Step, "%d: wrong step", i)
		assert.Equal(t, item.digest, solution.Digest.String(), "%d: wrong digest", i)
	}

	telemetry := c.Telemetry()
	assert.Equal(t, uint64(0), telemetry.ErrorCount, "unexpected exhaustion")
	assert.True(t, telemetry.TotalHashes >= 8+3, "too few hashes: %d", telemetry.TotalHashes)
}

// blocks every hash until released
type blockingHasher struct {
	once    sync.Once
	started chan struct{}
	release chan struct{}
}

func newBlockingHasher() *blockingHasher {
	return &blockingHasher{
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
}

func (h *blockingHasher) Digest(data []byte) blockdigest.Digest {
	h.once.Do(func() { close(h.started) })
	<-h.release
	return unsolved
}

func TestCancellation(t *testing.T) {
	hasher := newBlockingHasher()
	c, err := search.NewWithHasher(4, hasher, logger.New("testing"))
	if nil != err {
		t.Fatalf("create error: %s", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-hasher.started
		cancel()
		close(hasher.release)
	}()

	solution, err := c.Search(ctx, &blockrecord.Header{}, difficulty.Zero())
	assert.Equal(t, context.Canceled, err, "wrong error")
	assert.Nil(t, solution, "unexpected solution")

	telemetry := c.Telemetry()
	assert.Equal(t, uint64(0), telemetry.ErrorCount, "cancellation counted as exhaustion")
	assert.Equal(t, uint64(0), telemetry.ActiveLanes, "lanes still active")
	assert.False(t, c.IsBusy(), "still busy")
}

func TestStopAndBusy(t *testing.T) {
	hasher := newBlockingHasher()
	c, err := search.NewWithHasher(2, hasher, logger.New("testing"))
	if nil != err {
		t.Fatalf("create error: %s", err)
	}

	type result struct {
		solution *search.SolutionRecord
		err      error
	}
	done := make(chan result)
	go func() {
		solution, err := c.Search(context.Background(), &blockrecord.Header{}, difficulty.Zero())
		done <- result{solution, err}
	}()

	<-hasher.started
	assert.True(t, c.IsBusy(), "not busy")

	_, err = c.Search(context.Background(), &blockrecord.Header{}, difficulty.Zero())
	assert.Equal(t, fault.ErrSearchBusy, err, "second search accepted")

	c.Stop()
	close(hasher.release)

	r := <-done
	assert.Equal(t, fault.ErrSearchStopped, r.err, "wrong error")
	assert.Nil(t, r.solution, "unexpected solution")
	assert.Equal(t, uint64(0), c.Telemetry().ErrorCount, "stop counted as exhaustion")

	// usable again
	c.Stop()
	solution, err := c.SearchRange(context.Background(), &blockrecord.Header{}, difficulty.Zero(), 0, 2)
	assert.Nil(t, err, "search after stop failed")
	assert.Nil(t, solution, "unexpected solution")
}

// pauses on the hash after the first gate hashes until released
type gatedHasher struct {
	sync.Mutex
	calls   uint64
	gate    uint64
	paused  chan struct{}
	release chan struct{}
}

func newGatedHasher(gate uint64) *gatedHasher {
	return &gatedHasher{
		gate:    gate,
		paused:  make(chan struct{}),
		release: make(chan struct{}),
	}
}

func (h *gatedHasher) Digest(data []byte) blockdigest.Digest {
	h.Lock()
	h.calls += 1
	n := h.calls
	h.Unlock()

	if n == h.gate+1 {
		close(h.paused)
		<-h.release
	}
	return unsolved
}

func TestResetDuringSearch(t *testing.T) {
	hasher := newGatedHasher(150)
	c, err := search.NewWithHasher(1, hasher, logger.New("testing"))
	if nil != err {
		t.Fatalf("create error: %s", err)
	}

	type result struct {
		solution *search.SolutionRecord
		err      error
	}
	done := make(chan result)
	go func() {
		solution, err := c.SearchRange(context.Background(), &blockrecord.Header{}, difficulty.Zero(), 0, 300)
		done <- result{solution, err}
	}()

	<-hasher.paused
	assert.Equal(t, uint64(150), c.Telemetry().TotalHashes, "wrong hash count before reset")

	c.Reset()
	assert.Equal(t, uint64(0), c.Telemetry().TotalHashes, "hashes before reset still counted")

	close(hasher.release)
	r := <-done
	assert.Nil(t, r.err, "exhaustion reported as error")
	assert.Nil(t, r.solution, "solution below zero target")

	telemetry := c.Telemetry()
	assert.Equal(t, uint64(150), telemetry.TotalHashes, "wrong hash count after reset")
	assert.Equal(t, uint64(1), telemetry.ErrorCount, "wrong error count")

	// baseline does not leak into the next search
	solution, err := c.SearchRange(context.Background(), &blockrecord.Header{}, difficulty.Zero(), 0, 10)
	assert.Nil(t, err, "exhaustion reported as error")
	assert.Nil(t, solution, "solution below zero target")
	assert.Equal(t, uint64(160), c.Telemetry().TotalHashes, "wrong hash count for next search")
}

func TestSearchAfterStopRunsToEnd(t *testing.T) {
	for i := 0; i < 20; i += 1 {
		hasher := newGatedHasher(0)
		c, err := search.NewWithHasher(1, hasher, logger.New("testing"))
		if nil != err {
			t.Fatalf("create error: %s", err)
		}

		go func() {
			<-hasher.paused
			c.Stop()
			close(hasher.release)
		}()

		_, err = c.Search(context.Background(), &blockrecord.Header{}, difficulty.Zero())
		assert.Equal(t, fault.ErrSearchStopped, err, "wrong error")

		// a late stop from the previous search must not cut this one short
		c.Reset()
		solution, err := c.SearchRange(context.Background(), &blockrecord.Header{}, difficulty.Zero(), 0, 64)
		assert.Nil(t, err, "search after stop failed")
		assert.Nil(t, solution, "solution below zero target")
		assert.Equal(t, uint64(64), c.Telemetry().TotalHashes, "search after stop cut short")
	}
}
