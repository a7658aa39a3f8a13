// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/scryptd/blockdigest"
	"github.com/bitmark-inc/scryptd/blockrecord"
	"github.com/bitmark-inc/scryptd/difficulty"
	"github.com/bitmark-inc/scryptd/fault"
	"github.com/bitmark-inc/scryptd/journal"
	"github.com/bitmark-inc/scryptd/search"
)

// scripted searcher: each call pops the next outcome, an empty
// script blocks until cancelled
type outcome struct {
	solution *search.SolutionRecord
	err      error
}

type fakeSearcher struct {
	sync.Mutex
	script    []outcome
	calls     chan uint32
	cancelled chan struct{}
}

func (f *fakeSearcher) Search(ctx context.Context, header *blockrecord.Header, target *difficulty.Target) (*search.SolutionRecord, error) {
	f.Lock()
	var next *outcome
	if len(f.script) > 0 {
		next = &f.script[0]
		f.script = f.script[1:]
	}
	f.Unlock()

	f.calls <- header.Timestamp

	if nil != next {
		return next.solution, next.err
	}
	<-ctx.Done()
	f.cancelled <- struct{}{}
	return nil, ctx.Err()
}

func (f *fakeSearcher) Telemetry() search.Telemetry {
	return search.Telemetry{TotalHashes: 42}
}

func (f *fakeSearcher) Lanes() int {
	return 1
}

type fakeSubmitter struct {
	items chan *SubmittedItem
}

func (f *fakeSubmitter) Submit(item *SubmittedItem) error {
	f.items <- item
	return nil
}

type fakeRecorder struct {
	sync.Mutex
	entries []*journal.Entry
	err     error
}

func (f *fakeRecorder) Record(entry *journal.Entry) error {
	f.Lock()
	defer f.Unlock()
	if nil != f.err {
		return f.err
	}
	f.entries = append(f.entries, entry)
	return nil
}

type prooferFixture struct {
	proofer   *Proofer
	searcher  *fakeSearcher
	submitter *fakeSubmitter
	recorder  *fakeRecorder
	shutdown  chan struct{}
	done      chan struct{}
	factories int
}

func newProoferFixture(t *testing.T, script ...outcome) *prooferFixture {
	f := &prooferFixture{
		searcher: &fakeSearcher{
			script:    script,
			calls:     make(chan uint32, 10),
			cancelled: make(chan struct{}, 10),
		},
		submitter: &fakeSubmitter{items: make(chan *SubmittedItem, 10)},
		recorder:  &fakeRecorder{},
		shutdown:  make(chan struct{}),
		done:      make(chan struct{}),
	}

	factory := func(config *search.Configuration, log *logger.L) (Searcher, error) {
		if err := config.Validate(); nil != err {
			return nil, err
		}
		f.factories += 1
		return f.searcher, nil
	}

	f.proofer = newProofer(logger.New(logCategory), factory, f.recorder, f.submitter)
	f.proofer.cpus = 4
	f.proofer.Refresh(testConfiguration())
	return f
}

func (f *prooferFixture) start() {
	go func() {
		f.proofer.Run(nil, f.shutdown)
		close(f.done)
	}()
}

func (f *prooferFixture) stop(t *testing.T) {
	close(f.shutdown)
	select {
	case <-f.done:
	case <-time.After(5 * time.Second):
		t.Fatal("proofer did not stop")
	}
}

func testConfiguration() *Configuration {
	return &Configuration{
		Chain: "local",
		Scrypt: search.Configuration{
			N: 16,
			R: 1,
			P: 1,
		},
		MaxCPUUsage: 100,
	}
}

func testWork(job string) *Work {
	return &Work{
		Job: job,
		Header: blockrecord.Header{
			Version:   2,
			Timestamp: 1700000000,
			Bits:      0x207fffff,
		},
		Target: difficulty.Maximum(),
	}
}

func expectCall(t *testing.T, f *prooferFixture) uint32 {
	select {
	case ts := <-f.searcher.calls:
		return ts
	case <-time.After(5 * time.Second):
		t.Fatal("searcher not called")
	}
	return 0
}

func expectSubmission(t *testing.T, f *prooferFixture) *SubmittedItem {
	select {
	case item := <-f.submitter.items:
		return item
	case <-time.After(5 * time.Second):
		t.Fatal("nothing submitted")
	}
	return nil
}

func TestProoferSolution(t *testing.T) {
	solution := &search.SolutionRecord{
		Lane:   1,
		Nonce:  0x0000abcd,
		Digest: blockdigest.Digest{0x01},
		Step:   7,
	}
	f := newProoferFixture(t, outcome{solution: solution})
	f.proofer.StartHashing()
	f.start()
	defer f.stop(t)

	f.proofer.Queue(testWork("job-solved"))
	expectCall(t, f)

	item := expectSubmission(t, f)
	assert.Equal(t, "job-solved", item.Job, "job")
	assert.Equal(t, blockrecord.NonceType(0x0000abcd), item.Nonce, "nonce")
	assert.Equal(t, solution.Digest, item.Digest, "digest")

	f.recorder.Lock()
	assert.Equal(t, 1, len(f.recorder.entries), "journal entries")
	assert.Equal(t, item.Header, f.recorder.entries[0].Header, "journal header")
	f.recorder.Unlock()

	_, solutions := f.proofer.Telemetry()
	assert.Equal(t, uint64(1), solutions, "solution count")
	assert.Equal(t, 1, f.factories, "searchers built")
}

func TestProoferExhaustionAdvancesTimestamp(t *testing.T) {
	solution := &search.SolutionRecord{Nonce: 5, Digest: blockdigest.Digest{}}
	f := newProoferFixture(t, outcome{}, outcome{}, outcome{solution: solution})
	f.proofer.StartHashing()
	f.start()
	defer f.stop(t)

	f.proofer.Queue(testWork("job-exhaust"))

	assert.Equal(t, uint32(1700000000), expectCall(t, f), "first timestamp")
	assert.Equal(t, uint32(1700000001), expectCall(t, f), "second timestamp")
	assert.Equal(t, uint32(1700000002), expectCall(t, f), "third timestamp")

	item := expectSubmission(t, f)
	header, err := f.recorder.entries[0].Packed()
	assert.Nil(t, err, "packed")
	assert.Equal(t, uint32(1700000002), header.Unpack().Timestamp, "solved timestamp")
	assert.Equal(t, blockrecord.NonceType(5), item.Nonce, "nonce")
}

func TestProoferNewWorkReplacesSearch(t *testing.T) {
	solution := &search.SolutionRecord{Nonce: 9}
	f := newProoferFixture(t)
	f.proofer.StartHashing()
	f.start()
	defer f.stop(t)

	// first job blocks until cancelled
	f.proofer.Queue(testWork("job-old"))
	expectCall(t, f)

	f.searcher.Lock()
	f.searcher.script = []outcome{{solution: solution}}
	f.searcher.Unlock()

	f.proofer.Queue(testWork("job-new"))
	expectCall(t, f)

	item := expectSubmission(t, f)
	assert.Equal(t, "job-new", item.Job, "job")
}

func TestProoferPaused(t *testing.T) {
	f := newProoferFixture(t, outcome{solution: &search.SolutionRecord{}})
	f.start()
	defer f.stop(t)

	f.proofer.Queue(testWork("job-paused"))

	select {
	case <-f.searcher.calls:
		t.Fatal("searched while hashing disabled")
	case <-time.After(50 * time.Millisecond):
	}

	f.proofer.StartHashing()
	expectCall(t, f)
	expectSubmission(t, f)
}

func TestProoferStopHashingCancels(t *testing.T) {
	f := newProoferFixture(t)
	f.proofer.StartHashing()
	f.start()
	defer f.stop(t)

	f.proofer.Queue(testWork("job-cancel"))
	expectCall(t, f)

	f.proofer.StopHashing()
	assert.False(t, f.proofer.IsHashing(), "still hashing")

	select {
	case <-f.searcher.cancelled:
	case <-time.After(5 * time.Second):
		t.Fatal("search not cancelled")
	}

	// resumes the same work
	f.proofer.StartHashing()
	assert.Equal(t, uint32(1700000000), expectCall(t, f), "resumed timestamp")
}

func TestProoferAlreadyRecorded(t *testing.T) {
	f := newProoferFixture(t, outcome{solution: &search.SolutionRecord{Nonce: 1}})
	f.recorder.err = fault.ErrSolutionAlreadyRecorded
	f.proofer.StartHashing()
	f.start()
	defer f.stop(t)

	f.proofer.Queue(testWork("job-duplicate"))
	expectCall(t, f)

	select {
	case <-f.submitter.items:
		t.Fatal("duplicate submitted")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestProoferRejectsBadSolution(t *testing.T) {
	unsolved := blockdigest.Digest{}
	for i := range unsolved {
		unsolved[i] = 0xff
	}
	f := newProoferFixture(t, outcome{solution: &search.SolutionRecord{Digest: unsolved}})
	f.proofer.StartHashing()
	f.start()
	defer f.stop(t)

	f.proofer.Queue(testWork("job-bad"))
	expectCall(t, f)

	select {
	case <-f.submitter.items:
		t.Fatal("digest above target submitted")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestProoferRefreshRebuildsSearcher(t *testing.T) {
	f := newProoferFixture(t)
	f.proofer.StartHashing()
	f.start()
	defer f.stop(t)

	f.proofer.Queue(testWork("job-refresh"))
	expectCall(t, f)
	assert.Equal(t, 1, f.factories, "initial searcher")

	c := testConfiguration()
	c.Scrypt.CoreCount = 2
	f.proofer.Refresh(c)

	// search restarts on the new searcher
	expectCall(t, f)
	assert.Equal(t, 2, f.factories, "rebuilt searcher")

	// unchanged configuration is ignored
	f.proofer.Refresh(c)
	select {
	case <-f.searcher.calls:
		t.Fatal("restart on unchanged configuration")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestProoferQueueKeepsLatest(t *testing.T) {
	f := newProoferFixture(t)

	f.proofer.Queue(testWork("first"))
	f.proofer.Queue(testWork("second"))

	work := <-f.proofer.work
	assert.Equal(t, "second", work.Job, "latest work")
	assert.Equal(t, uint64(2), f.proofer.received.Uint64(), "received")
}
