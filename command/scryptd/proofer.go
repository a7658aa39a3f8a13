// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"runtime"
	"sync"
	"time"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/scryptd/blockrecord"
	"github.com/bitmark-inc/scryptd/counter"
	"github.com/bitmark-inc/scryptd/difficulty"
	"github.com/bitmark-inc/scryptd/fault"
	"github.com/bitmark-inc/scryptd/journal"
	"github.com/bitmark-inc/scryptd/search"
)

const (
	prooferLoggerPrefix = "proofer"
)

// Searcher - the coordinator operations used by the proofer
type Searcher interface {
	Search(ctx context.Context, header *blockrecord.Header, target *difficulty.Target) (*search.SolutionRecord, error)
	Telemetry() search.Telemetry
	Lanes() int
}

// SearcherFactory - build a searcher for a configuration
type SearcherFactory func(config *search.Configuration, log *logger.L) (Searcher, error)

func newCoordinator(config *search.Configuration, log *logger.L) (Searcher, error) {
	return search.New(config, log)
}

// Recorder - the journal operation used by the proofer
type Recorder interface {
	Record(*journal.Entry) error
}

// Proofer - runs one search at a time over the most recent work item
type Proofer struct {
	sync.Mutex
	log       *logger.L
	cpus      int
	factory   SearcherFactory
	recorder  Recorder
	submitter Submitter

	work chan *Work    // latest work item, older ones are discarded
	wake chan struct{} // hashing state or configuration changed

	hashing  bool
	config   search.Configuration
	pending  *search.Configuration
	searcher Searcher

	solutions counter.Counter
	received  counter.Counter
}

type searchResult struct {
	work     *Work
	solution *search.SolutionRecord
	err      error
}

func newProofer(log *logger.L, factory SearcherFactory, recorder Recorder, submitter Submitter) *Proofer {
	return &Proofer{
		log:       log,
		cpus:      runtime.NumCPU(),
		factory:   factory,
		recorder:  recorder,
		submitter: submitter,
		work:      make(chan *Work, 1),
		wake:      make(chan struct{}, 1),
	}
}

func (p *Proofer) signal() {
	select {
	case p.wake <- struct{}{}:
	default:
	}
}

// Refresh - ConfigListener; a changed search configuration takes
// effect when the current search is restarted
func (p *Proofer) Refresh(configuration *Configuration) {
	c := configuration.SearchConfiguration(p.cpus)

	p.Lock()
	if c == p.config && nil != p.searcher {
		p.Unlock()
		return
	}
	p.pending = &c
	p.Unlock()

	p.log.Infof("new search configuration: %s  lanes: %d", c.Params(), c.CoreCount)
	p.signal()
}

// StartHashing - HashingSwitch
func (p *Proofer) StartHashing() {
	p.Lock()
	changed := !p.hashing
	p.hashing = true
	p.Unlock()
	if changed {
		p.log.Info("hashing enabled")
		p.signal()
	}
}

// StopHashing - HashingSwitch
func (p *Proofer) StopHashing() {
	p.Lock()
	changed := p.hashing
	p.hashing = false
	p.Unlock()
	if changed {
		p.log.Info("hashing disabled")
		p.signal()
	}
}

// IsHashing - true if the calendar allows hashing
func (p *Proofer) IsHashing() bool {
	p.Lock()
	defer p.Unlock()
	return p.hashing
}

// Queue - replace any waiting work item with this one
func (p *Proofer) Queue(work *Work) {
	p.Lock()
	defer p.Unlock()

	select {
	case <-p.work:
		p.log.Debug("discard queued work")
	default:
	}
	p.work <- work
	p.received.Increment()
}

// Telemetry - counters of the current searcher, zero before the first search
func (p *Proofer) Telemetry() (search.Telemetry, uint64) {
	p.Lock()
	s := p.searcher
	p.Unlock()

	if nil == s {
		return search.Telemetry{}, p.solutions.Uint64()
	}
	return s.Telemetry(), p.solutions.Uint64()
}

// apply a pending configuration; false if no searcher is available
func (p *Proofer) prepare() bool {
	p.Lock()
	defer p.Unlock()

	if nil != p.pending {
		c := *p.pending
		p.pending = nil

		s, err := p.factory(&c, p.log)
		if nil != err {
			p.log.Errorf("search configuration: %+v  error: %s", c, err)
		} else {
			p.config = c
			p.searcher = s
		}
	}
	return nil != p.searcher
}

// true if the running search must be abandoned
func (p *Proofer) interrupted() bool {
	p.Lock()
	defer p.Unlock()
	return !p.hashing || nil != p.pending
}

// Run - background process
func (p *Proofer) Run(args interface{}, shutdown <-chan struct{}) {
	p.log.Info("starting…")

	results := make(chan searchResult, 1)

	var current *Work
	var cancel context.CancelFunc
	searching := false

	// abandon the running search, a solution latched before
	// cancellation is still delivered; true if there was one
	abandon := func() bool {
		if !searching {
			return false
		}
		cancel()
		r := <-results
		searching = false
		return p.process(&r)
	}

loop:
	for {
		if !searching && nil != current && p.IsHashing() && p.prepare() {
			var ctx context.Context
			ctx, cancel = context.WithCancel(context.Background())
			searching = true

			p.Lock()
			s := p.searcher
			p.Unlock()

			work := *current
			go func() {
				solution, err := s.Search(ctx, &work.Header, work.Target)
				results <- searchResult{work: &work, solution: solution, err: err}
			}()
		}

		select {
		case <-shutdown:
			break loop

		case work := <-p.work:
			p.log.Infof("new work: job: %q  timestamp: %d  target: %s", work.Job, work.Header.Timestamp, work.Target)
			abandon()
			current = work

		case <-p.wake:
			if searching && p.interrupted() && abandon() {
				current = nil
			}

		case r := <-results:
			searching = false
			cancel()
			p.process(&r)

			switch {
			case nil != r.solution:
				// wait for new work
				current = nil
			case nil == r.err:
				// exhausted: move the timestamp to get a fresh nonce space
				next := *current
				next.Header.Timestamp += 1
				p.log.Infof("nonce space exhausted: job: %q  new timestamp: %d", next.Job, next.Header.Timestamp)
				current = &next
			default:
				p.log.Errorf("job: %q  abandoned: %s", r.work.Job, r.err)
				current = nil
			}
		}
	}

	if searching {
		cancel()
		<-results
	}
	p.log.Info("stopped")
}

// record and submit a solution; true if one was present
func (p *Proofer) process(r *searchResult) bool {
	if nil == r.solution {
		return false
	}

	header := r.work.Header
	header.Nonce = r.solution.Nonce
	packed := header.Pack()

	if err := blockrecord.ValidProof(r.solution.Digest, r.work.Target); nil != err {
		p.log.Criticalf("job: %q  nonce: %08x  rejected: %s", r.work.Job, uint32(r.solution.Nonce), err)
		return false
	}

	p.solutions.Increment()
	p.log.Infof("job: %q  nonce: %08x  digest: %s  lane: %d", r.work.Job, uint32(r.solution.Nonce), r.solution.Digest, r.solution.Lane)

	entry := journal.NewEntry(r.work.Job, packed, r.solution.Digest, r.solution.Lane, r.solution.Step, time.Now())
	if nil != p.recorder {
		err := p.recorder.Record(entry)
		if fault.ErrSolutionAlreadyRecorded == err {
			p.log.Warnf("job: %q  nonce: %08x  already submitted", r.work.Job, uint32(r.solution.Nonce))
			return true
		}
		if nil != err {
			p.log.Errorf("journal error: %s", err)
		}
	}

	if nil != p.submitter {
		item := &SubmittedItem{
			Job:    r.work.Job,
			Header: entry.Header,
			Nonce:  r.solution.Nonce,
			Digest: r.solution.Digest,
		}
		if err := p.submitter.Submit(item); nil != err {
			p.log.Errorf("submit error: %s", err)
		}
	}
	return true
}
