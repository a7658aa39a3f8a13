// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package fault

import (
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/bitmark-inc/logger"
)

// time allowed for the log file to be written before a panic
const panicDelay = 100 * time.Millisecond

// last chance log channel
var panicLog struct {
	sync.Mutex
	log *logger.L
}

// Initialise - setup a log channel for last attempt to log something
//
// must be called after logger.Initialise
func Initialise() error {
	panicLog.Lock()
	defer panicLog.Unlock()

	if nil != panicLog.log {
		return ErrAlreadyInitialised
	}
	panicLog.log = logger.New("PANIC")
	if nil == panicLog.log {
		return ErrInvalidLoggerChannel
	}
	return nil
}

// Finalise - flush and detach the log channel
func Finalise() {
	panicLog.Lock()
	defer panicLog.Unlock()

	if nil != panicLog.log {
		panicLog.log.Flush()
		panicLog.log = nil
	}
}

// Criticalf - log a formatted message prefixed by the caller's location
func Criticalf(format string, arguments ...interface{}) {
	criticalf(2, format, arguments...)
}

// Panicf - log a formatted message then panic
func Panicf(format string, arguments ...interface{}) {
	criticalf(2, format, arguments...)
	Panic("abort, see last messages in log file")
}

// Panic - final panic
func Panic(message string) {
	criticalf(0, "%s", message)
	time.Sleep(panicDelay)
	panic(message)
}

// PanicIfError - conditional panic for states that cannot occur
// with validated inputs
func PanicIfError(message string, err error) {
	if nil == err {
		return
	}
	s := fmt.Sprintf("%s failed with error: %v", message, err)
	criticalf(2, "%s", s)
	time.Sleep(panicDelay)
	panic(s)
}

// skip == 0 means no caller prefix
func criticalf(skip int, format string, arguments ...interface{}) {
	if skip > 0 {
		if _, file, line, ok := runtime.Caller(skip); ok {
			a := make([]interface{}, 2, 2+len(arguments))
			a[0] = file
			a[1] = line
			arguments = append(a, arguments...)
			format = "(%q:%d) " + format
		}
	}

	panicLog.Lock()
	defer panicLog.Unlock()

	if nil == panicLog.log {
		fmt.Printf("*** "+format+"\n", arguments...)
		return
	}
	panicLog.log.Criticalf(format, arguments...)
	panicLog.log.Flush()
}
