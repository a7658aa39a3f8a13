// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package fault

// GenericError - error base
type GenericError string

// to allow for different classes of errors
type ExistsError GenericError
type InvalidError GenericError
type LengthError GenericError
type NotFoundError GenericError
type ProcessError GenericError

// common errors - keep in alphabetic order
var (
	ErrAlreadyInitialised          = ExistsError("already initialised")
	ErrDigestAboveTarget           = InvalidError("digest is not below target")
	ErrInvalidBits                 = InvalidError("invalid compact bits")
	ErrInvalidBlockHeaderSize      = LengthError("invalid block header size")
	ErrInvalidBlockHeaderTimestamp = InvalidError("invalid block header timestamp")
	ErrInvalidBlockHeaderVersion   = InvalidError("invalid block header version")
	ErrInvalidBlockSizeParameter   = InvalidError("block size parameter r must be at least 1")
	ErrInvalidChain                = InvalidError("invalid chain")
	ErrInvalidCharacter            = InvalidError("invalid character")
	ErrInvalidConfiguration        = InvalidError("invalid configuration")
	ErrInvalidCoreCount            = InvalidError("core count must be in the range 1..64")
	ErrInvalidCostParameter        = InvalidError("cost parameter N must be a power of two greater than one")
	ErrInvalidDigestLength         = LengthError("invalid digest length")
	ErrInvalidIterations           = InvalidError("iteration count must be at least 1")
	ErrInvalidKeyLength            = LengthError("derived key length must be at least 1")
	ErrInvalidLoggerChannel        = InvalidError("invalid logger channel")
	ErrInvalidNonce                = InvalidError("invalid nonce")
	ErrInvalidNonceRange           = InvalidError("invalid nonce range")
	ErrInvalidParallelisation      = InvalidError("parallelisation parameter p must be 1")
	ErrInvalidParameter            = InvalidError("invalid parameter")
	ErrInvalidPeriod               = InvalidError("invalid calendar period")
	ErrInvalidPrivateKeyFile       = InvalidError("invalid private key file")
	ErrInvalidPublicKeyFile        = InvalidError("invalid public key file")
	ErrInvalidStructPointer        = InvalidError("invalid struct pointer")
	ErrInvalidTarget               = InvalidError("invalid target")
	ErrInvalidWorkItem             = InvalidError("invalid work item")
	ErrKeyFileAlreadyExists        = ExistsError("key file already exists")
	ErrLaneMining                  = ProcessError("lane is mining")
	ErrLaneNotIdle                 = ProcessError("lane is not idle")
	ErrMemoryLimitExceeded         = InvalidError("scratchpad exceeds memory limit")
	ErrNoSolutionFound             = NotFoundError("no solution found")
	ErrNotInitialised              = NotFoundError("not initialised")
	ErrParameterOutOfRange         = LengthError("parameter out of range")
	ErrSearchBusy                  = ProcessError("search already in progress")
	ErrSearchStopped               = ProcessError("search stopped")
	ErrSolutionAlreadyRecorded     = ExistsError("solution already recorded")
	ErrSolutionNotFound            = NotFoundError("solution not found")
	ErrWrongEndpointString         = InvalidError("request and reply endpoints must differ")
)

// the error interface base method
func (e GenericError) Error() string { return string(e) }

// the error interface methods
func (e ExistsError) Error() string   { return string(e) }
func (e InvalidError) Error() string  { return string(e) }
func (e LengthError) Error() string   { return string(e) }
func (e NotFoundError) Error() string { return string(e) }
func (e ProcessError) Error() string  { return string(e) }

// determine the class of an error
func IsErrExists(e error) bool   { _, ok := e.(ExistsError); return ok }
func IsErrInvalid(e error) bool  { _, ok := e.(InvalidError); return ok }
func IsErrLength(e error) bool   { _, ok := e.(LengthError); return ok }
func IsErrNotFound(e error) bool { _, ok := e.(NotFoundError); return ok }
func IsErrProcess(e error) bool  { _, ok := e.(ProcessError); return ok }

// IsErrConfiguration - true for any error that rejects a search
// configuration before a search starts
func IsErrConfiguration(e error) bool {
	switch e {
	case ErrInvalidConfiguration,
		ErrInvalidCostParameter,
		ErrInvalidBlockSizeParameter,
		ErrInvalidParallelisation,
		ErrInvalidCoreCount,
		ErrMemoryLimitExceeded:
		return true
	default:
		return false
	}
}
