// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"reflect"
	"sync"
	"time"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/scryptd/schedule"
)

const (
	jobCalendarPrefix = "calendar"
)

// HashingSwitch - the part of the proofer driven by the calendar
type HashingSwitch interface {
	StartHashing()
	StopHashing()
}

// JobCalendar - starts and stops hashing at the weekly period boundaries
type JobCalendar struct {
	sync.Mutex
	log        *logger.L
	calendar   schedule.Calendar
	schedule   *schedule.Schedule
	target     HashingSwitch
	reschedule chan struct{}
	now        func() time.Time
}

func newJobCalendar(target HashingSwitch, log *logger.L) *JobCalendar {
	return &JobCalendar{
		log:        log,
		schedule:   schedule.Always(),
		target:     target,
		reschedule: make(chan struct{}, 1),
		now:        time.Now,
	}
}

// Refresh - ConfigListener; the calendar was validated when the
// configuration was read
func (j *JobCalendar) Refresh(configuration *Configuration) {
	j.Lock()
	defer j.Unlock()

	if reflect.DeepEqual(j.calendar, configuration.Calendar) && nil != j.schedule {
		return
	}

	s, err := schedule.Parse(configuration.Calendar)
	if nil != err {
		j.log.Errorf("calendar: %+v  error: %s", configuration.Calendar, err)
		return
	}

	j.log.Debugf("previous: %+v", j.calendar)
	j.log.Debugf("new: %+v", configuration.Calendar)

	j.calendar = configuration.Calendar
	j.schedule = s

	select {
	case j.reschedule <- struct{}{}:
	default:
	}
}

func (j *JobCalendar) current() *schedule.Schedule {
	j.Lock()
	defer j.Unlock()
	return j.schedule
}

// apply the state for now and return the wait until the next change,
// zero means no change is due
func (j *JobCalendar) apply() time.Duration {
	now := j.now()
	s := j.current()

	if s.IsActive(now) {
		j.log.Debug("start hashing")
		j.target.StartHashing()
	} else {
		j.log.Debug("stop hashing")
		j.target.StopHashing()
	}

	next, ok := s.NextChange(now)
	if !ok {
		j.log.Info("no further events, hashing all week")
		return 0
	}
	d := next.Sub(now)
	j.log.Infof("next event at %s, duration: %.1f minutes", next, d.Minutes())
	return d
}

// Run - background process
func (j *JobCalendar) Run(args interface{}, shutdown <-chan struct{}) {
	j.log.Info("starting…")

loop:
	for {
		var timer *time.Timer
		var expired <-chan time.Time
		if d := j.apply(); d > 0 {
			timer = time.NewTimer(d)
			expired = timer.C
		}

		select {
		case <-shutdown:
			if nil != timer {
				timer.Stop()
			}
			break loop
		case <-j.reschedule:
			j.log.Debug("reschedule")
		case <-expired:
		}
		if nil != timer {
			timer.Stop()
		}
	}
	j.log.Info("stopped")
}
