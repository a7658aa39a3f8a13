// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package search

import (
	"sync"
	"sync/atomic"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/scryptd/blockdigest"
	"github.com/bitmark-inc/scryptd/blockrecord"
	"github.com/bitmark-inc/scryptd/difficulty"
	"github.com/bitmark-inc/scryptd/fault"
)

// State - lane state
type State int

// lane states
const (
	Idle State = iota
	Mining
	Found
	Exhausted
)

// String - for the %s format
func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Mining:
		return "mining"
	case Found:
		return "found"
	case Exhausted:
		return "exhausted"
	default:
		return "unknown"
	}
}

// SolutionRecord - the winning nonce of a search
type SolutionRecord struct {
	Lane   int                   `json:"lane"`
	Nonce  blockrecord.NonceType `json:"nonce"`
	Digest blockdigest.Digest    `json:"digest"`
	Step   uint64                `json:"step"`
}

// Arbiter - consulted by a running lane at each nonce boundary
type Arbiter interface {
	// Permit - false when a solution at (step, lane) can no longer win
	Permit(lane int, step uint64) bool

	// Report - offer a found solution
	Report(solution *SolutionRecord)
}

// Lane - one nonce range worker
//
// Start, Step, Run and Reset belong to the goroutine driving the lane;
// Stop and the accessors may be called from any goroutine
type Lane struct {
	sync.RWMutex

	id     int
	hasher Hasher
	log    *logger.L

	state    State
	packed   blockrecord.PackedHeader
	target   *difficulty.Target
	nonces   NonceRange
	cursor   uint64
	steps    uint64
	digest   blockdigest.Digest
	solution *SolutionRecord

	stopping int32
}

// NewLane - create an idle lane
func NewLane(id int, hasher Hasher, log *logger.L) *Lane {
	return &Lane{
		id:     id,
		hasher: hasher,
		log:    log,
		state:  Idle,
	}
}

// ID - the lane number
func (lane *Lane) ID() int {
	return lane.id
}

// Start - begin mining a range, only valid from Idle
func (lane *Lane) Start(r NonceRange, header *blockrecord.Header, target *difficulty.Target) error {
	if nil == header || nil == target {
		return fault.ErrInvalidParameter
	}
	if !r.valid() {
		return fault.ErrInvalidNonceRange
	}

	lane.Lock()
	defer lane.Unlock()

	if Idle != lane.state {
		return fault.ErrLaneNotIdle
	}

	atomic.StoreInt32(&lane.stopping, 0)

	lane.packed = header.Pack()
	lane.target = target
	lane.nonces = r
	lane.cursor = r.First
	lane.steps = 0
	lane.digest = blockdigest.Digest{}
	lane.solution = nil
	lane.state = Mining

	lane.log.Debugf("start: %s", r)
	return nil
}

// Step - hash the nonce at the cursor
//
// a requested stop takes effect here, before the next hash
func (lane *Lane) Step() State {
	lane.Lock()
	if Mining != lane.state {
		state := lane.state
		lane.Unlock()
		return state
	}
	if 0 != atomic.LoadInt32(&lane.stopping) {
		lane.state = Exhausted
		cursor := lane.cursor
		lane.Unlock()
		lane.log.Debugf("stopped at: %08x", cursor)
		return Exhausted
	}
	nonce := lane.cursor
	lane.Unlock()

	// only the owning goroutine touches the packed header
	lane.packed.SetNonce(blockrecord.NonceType(nonce))
	digest := lane.hasher.Digest(lane.packed[:])

	lane.Lock()
	defer lane.Unlock()

	lane.steps += 1
	lane.digest = digest

	if lane.target.IsSolvedBy(digest) {
		lane.solution = &SolutionRecord{
			Lane:   lane.id,
			Nonce:  blockrecord.NonceType(nonce),
			Digest: digest,
			Step:   nonce - lane.nonces.First,
		}
		lane.state = Found
		lane.log.Infof("found nonce: %08x  digest: %s", nonce, digest)
		return Found
	}

	lane.cursor += 1
	if lane.cursor >= lane.nonces.End {
		lane.state = Exhausted
		lane.log.Debugf("exhausted: %s", lane.nonces)
	}
	return lane.state
}

// Run - step until the lane leaves Mining
func (lane *Lane) Run(arbiter Arbiter) State {
	for {
		if nil != arbiter && !arbiter.Permit(lane.id, lane.nextStep()) {
			lane.Stop()
		}

		state := lane.Step()
		if Mining == state {
			continue
		}
		if Found == state && nil != arbiter {
			arbiter.Report(lane.Solution())
		}
		return state
	}
}

// Stop - request the lane to stop at the next nonce boundary
func (lane *Lane) Stop() {
	atomic.StoreInt32(&lane.stopping, 1)
}

// Reset - return a finished lane to Idle
func (lane *Lane) Reset() error {
	lane.Lock()
	defer lane.Unlock()

	if Mining == lane.state {
		return fault.ErrLaneMining
	}
	lane.state = Idle
	lane.target = nil
	lane.solution = nil
	lane.steps = 0
	atomic.StoreInt32(&lane.stopping, 0)
	return nil
}

// State - current state
func (lane *Lane) State() State {
	lane.RLock()
	defer lane.RUnlock()
	return lane.state
}

// Solution - the solution if the lane is Found, otherwise nil
func (lane *Lane) Solution() *SolutionRecord {
	lane.RLock()
	defer lane.RUnlock()
	if nil == lane.solution {
		return nil
	}
	s := *lane.solution
	return &s
}

// Steps - number of hashes since Start
func (lane *Lane) Steps() uint64 {
	lane.RLock()
	defer lane.RUnlock()
	return lane.steps
}

// Cursor - the next nonce to hash
func (lane *Lane) Cursor() uint64 {
	lane.RLock()
	defer lane.RUnlock()
	return lane.cursor
}

// Digest - the most recent digest
func (lane *Lane) Digest() blockdigest.Digest {
	lane.RLock()
	defer lane.RUnlock()
	return lane.digest
}

func (lane *Lane) nextStep() uint64 {
	lane.RLock()
	defer lane.RUnlock()
	return lane.cursor - lane.nonces.First
}
