// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package journal

import (
	"encoding/hex"
	"encoding/json"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/syndtr/goleveldb/leveldb"
	ldb_opt "github.com/syndtr/goleveldb/leveldb/opt"
	ldb_util "github.com/syndtr/goleveldb/leveldb/util"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/scryptd/blockdigest"
	"github.com/bitmark-inc/scryptd/blockrecord"
	"github.com/bitmark-inc/scryptd/fault"
)

// DefaultRecentSize - number of recent keys kept in memory
const DefaultRecentSize = 256

// all solution keys carry this prefix
const solutionPrefix = 'S'

// Entry - one recorded solution
type Entry struct {
	Job    string                `json:"job"`
	Header string                `json:"header"` // hex of the packed header
	Nonce  blockrecord.NonceType `json:"nonce"`
	Digest blockdigest.Digest    `json:"digest"`
	Lane   int                   `json:"lane"`
	Step   uint64                `json:"step"`
	Found  time.Time             `json:"found"`
}

// NewEntry - build an entry for a packed header that already holds the
// winning nonce
func NewEntry(job string, packed blockrecord.PackedHeader, digest blockdigest.Digest, lane int, step uint64, found time.Time) *Entry {
	return &Entry{
		Job:    job,
		Header: hex.EncodeToString(packed[:]),
		Nonce:  packed.Nonce(),
		Digest: digest,
		Lane:   lane,
		Step:   step,
		Found:  found.UTC(),
	}
}

// Packed - decode the header field
func (e *Entry) Packed() (blockrecord.PackedHeader, error) {
	packed := blockrecord.PackedHeader{}
	b, err := hex.DecodeString(e.Header)
	if nil != err {
		return packed, fault.ErrInvalidCharacter
	}
	if len(b) != len(packed) {
		return packed, fault.ErrInvalidBlockHeaderSize
	}
	copy(packed[:], b)
	return packed, nil
}

// Journal - handle on an open solution database
type Journal struct {
	sync.RWMutex
	log    *logger.L
	db     *leveldb.DB
	recent *lru.Cache[blockrecord.PackedHeader, struct{}]
}

// Open - open or create the database in directory
func Open(directory string, recentSize int, log *logger.L) (*Journal, error) {
	if nil == log {
		return nil, fault.ErrInvalidLoggerChannel
	}
	if recentSize <= 0 {
		recentSize = DefaultRecentSize
	}

	recent, err := lru.New[blockrecord.PackedHeader, struct{}](recentSize)
	if nil != err {
		return nil, err
	}

	opt := &ldb_opt.Options{
		ErrorIfExist:   false,
		ErrorIfMissing: false,
	}
	db, err := leveldb.OpenFile(directory, opt)
	if nil != err {
		return nil, err
	}

	log.Infof("opened journal: %s", directory)

	return &Journal{
		log:    log,
		db:     db,
		recent: recent,
	}, nil
}

func solutionKey(packed blockrecord.PackedHeader) []byte {
	key := make([]byte, 1, len(packed)+1)
	key[0] = solutionPrefix
	return append(key, packed[:]...)
}

// Record - store a solution, a repeat of an existing key gives
// fault.ErrSolutionAlreadyRecorded
func (j *Journal) Record(entry *Entry) error {
	packed, err := entry.Packed()
	if nil != err {
		return err
	}

	j.Lock()
	defer j.Unlock()

	if nil == j.db {
		return fault.ErrNotInitialised
	}

	if j.recent.Contains(packed) {
		return fault.ErrSolutionAlreadyRecorded
	}

	key := solutionKey(packed)
	exists, err := j.db.Has(key, nil)
	if nil != err {
		return err
	}
	if exists {
		j.recent.Add(packed, struct{}{})
		return fault.ErrSolutionAlreadyRecorded
	}

	value, err := json.Marshal(entry)
	if nil != err {
		return err
	}

	err = j.db.Put(key, value, &ldb_opt.WriteOptions{Sync: true})
	if nil != err {
		j.log.Errorf("record job: %q  nonce: %08x  error: %s", entry.Job, uint32(entry.Nonce), err)
		return err
	}
	j.recent.Add(packed, struct{}{})

	j.log.Debugf("recorded job: %q  nonce: %08x  digest: %s", entry.Job, uint32(entry.Nonce), entry.Digest)
	return nil
}

// Has - true if a solution is recorded for the packed header
func (j *Journal) Has(packed blockrecord.PackedHeader) bool {
	j.RLock()
	defer j.RUnlock()

	if nil == j.db {
		return false
	}
	if j.recent.Contains(packed) {
		return true
	}
	exists, err := j.db.Has(solutionKey(packed), nil)
	return nil == err && exists
}

// Get - fetch a recorded solution
func (j *Journal) Get(packed blockrecord.PackedHeader) (*Entry, error) {
	j.RLock()
	defer j.RUnlock()

	if nil == j.db {
		return nil, fault.ErrNotInitialised
	}

	value, err := j.db.Get(solutionKey(packed), nil)
	if leveldb.ErrNotFound == err {
		return nil, fault.ErrSolutionNotFound
	} else if nil != err {
		return nil, err
	}

	entry := &Entry{}
	if err := json.Unmarshal(value, entry); nil != err {
		return nil, err
	}
	return entry, nil
}

// Count - number of recorded solutions
func (j *Journal) Count() int {
	j.RLock()
	defer j.RUnlock()

	if nil == j.db {
		return 0
	}

	n := 0
	iter := j.db.NewIterator(ldb_util.BytesPrefix([]byte{solutionPrefix}), nil)
	for iter.Next() {
		n += 1
	}
	iter.Release()
	if err := iter.Error(); nil != err {
		j.log.Errorf("count error: %s", err)
	}
	return n
}

// Close - flush and close the database; further calls fail with
// fault.ErrNotInitialised
func (j *Journal) Close() error {
	j.Lock()
	defer j.Unlock()

	if nil == j.db {
		return nil
	}
	err := j.db.Close()
	j.db = nil
	j.recent.Purge()
	j.log.Info("journal closed")
	return err
}
