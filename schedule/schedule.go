// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package schedule

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/bitmark-inc/scryptd/fault"
)

const (
	minutesPerDay     = 24 * 60
	periodSeparator   = ","
	clockSeparator    = "-"
	hourMinuteDivider = ":"
)

// Calendar - the configuration form, one string per weekday
type Calendar struct {
	Monday    string `gluamapper:"monday" json:"monday"`
	Tuesday   string `gluamapper:"tuesday" json:"tuesday"`
	Wednesday string `gluamapper:"wednesday" json:"wednesday"`
	Thursday  string `gluamapper:"thursday" json:"thursday"`
	Friday    string `gluamapper:"friday" json:"friday"`
	Saturday  string `gluamapper:"saturday" json:"saturday"`
	Sunday    string `gluamapper:"sunday" json:"sunday"`
}

func (c Calendar) day(d time.Weekday) string {
	switch d {
	case time.Sunday:
		return c.Sunday
	case time.Monday:
		return c.Monday
	case time.Tuesday:
		return c.Tuesday
	case time.Wednesday:
		return c.Wednesday
	case time.Thursday:
		return c.Thursday
	case time.Friday:
		return c.Friday
	default:
		return c.Saturday
	}
}

// Period - minutes since midnight, Start inclusive, Stop exclusive
type Period struct {
	Start int
	Stop  int
}

// String - for the %s format
func (p Period) String() string {
	return fmt.Sprintf("%02d:%02d-%02d:%02d", p.Start/60, p.Start%60, p.Stop/60, p.Stop%60)
}

// Schedule - parsed weekly calendar
type Schedule struct {
	days [7][]Period
}

// Parse - convert a calendar to a schedule
//
// overlapping or adjacent periods on the same day are merged
func Parse(calendar Calendar) (*Schedule, error) {
	s := &Schedule{}
	for d := time.Sunday; d <= time.Saturday; d += 1 {
		periods, err := parseDay(calendar.day(d))
		if nil != err {
			return nil, err
		}
		s.days[d] = periods
	}
	return s, nil
}

// Always - a schedule that is active all week
func Always() *Schedule {
	s, _ := Parse(Calendar{})
	return s
}

func parseDay(day string) ([]Period, error) {
	if "" == strings.TrimSpace(day) {
		return []Period{{Start: 0, Stop: minutesPerDay}}, nil
	}

	periods := make([]Period, 0, 4)
	for _, item := range strings.Split(day, periodSeparator) {
		p, err := parsePeriod(item)
		if nil != err {
			return nil, err
		}
		periods = append(periods, p)
	}

	sort.Slice(periods, func(i, j int) bool {
		return periods[i].Start < periods[j].Start
	})

	merged := periods[:1]
	for _, p := range periods[1:] {
		last := &merged[len(merged)-1]
		if p.Start <= last.Stop {
			if p.Stop > last.Stop {
				last.Stop = p.Stop
			}
			continue
		}
		merged = append(merged, p)
	}
	return merged, nil
}

// "09:00-17:00", clocks may be given in either order
func parsePeriod(s string) (Period, error) {
	clocks := strings.Split(strings.TrimSpace(s), clockSeparator)
	if 2 != len(clocks) {
		return Period{}, fault.ErrInvalidPeriod
	}
	first, err := parseClock(clocks[0])
	if nil != err {
		return Period{}, err
	}
	second, err := parseClock(clocks[1])
	if nil != err {
		return Period{}, err
	}

	switch {
	case first < second:
		return Period{Start: first, Stop: second}, nil
	case first > second:
		return Period{Start: second, Stop: first}, nil
	default:
		return Period{}, fault.ErrInvalidPeriod
	}
}

// "9:05" => 545, "24:00" is the end of the day
func parseClock(s string) (int, error) {
	parts := strings.Split(strings.TrimSpace(s), hourMinuteDivider)
	if 2 != len(parts) || "" == parts[0] || 2 != len(parts[1]) {
		return 0, fault.ErrInvalidPeriod
	}
	hour, err := strconv.Atoi(parts[0])
	if nil != err || hour < 0 || hour > 24 || len(parts[0]) > 2 {
		return 0, fault.ErrInvalidPeriod
	}
	minute, err := strconv.Atoi(parts[1])
	if nil != err || minute < 0 || minute > 59 {
		return 0, fault.ErrInvalidPeriod
	}
	if 24 == hour && 0 != minute {
		return 0, fault.ErrInvalidPeriod
	}
	return hour*60 + minute, nil
}

// Periods - the merged periods of one weekday
func (s *Schedule) Periods(d time.Weekday) []Period {
	return append([]Period(nil), s.days[d]...)
}

// IsActive - true if hashing is allowed at t (in t's location)
func (s *Schedule) IsActive(t time.Time) bool {
	minute := t.Hour()*60 + t.Minute()
	for _, p := range s.days[t.Weekday()] {
		if minute >= p.Start && minute < p.Stop {
			return true
		}
	}
	return false
}

// RunForever - true if there is no inactive time in the week
func (s *Schedule) RunForever() bool {
	for _, periods := range s.days {
		if 1 != len(periods) || 0 != periods[0].Start || minutesPerDay != periods[0].Stop {
			return false
		}
	}
	return true
}

// NextChange - the first time after t at which IsActive differs from
// IsActive(t); ok is false if the state never changes
func (s *Schedule) NextChange(t time.Time) (next time.Time, ok bool) {
	current := s.IsActive(t)

	// eight days covers a full week from any starting point
	for day := 0; day <= 7; day += 1 {
		for _, c := range s.boundaries(t, day) {
			if !c.After(t) {
				continue
			}
			if s.IsActive(c) != current {
				return c, true
			}
		}
	}
	return time.Time{}, false
}

// ascending boundary clock times of the day that is offset days after t
func (s *Schedule) boundaries(t time.Time, offset int) []time.Time {
	year, month, dom := t.Date()
	weekday := time.Weekday((int(t.Weekday()) + offset) % 7)

	times := make([]time.Time, 0, 2*len(s.days[weekday]))
	for _, p := range s.days[weekday] {
		for _, m := range []int{p.Start, p.Stop} {
			times = append(times, time.Date(year, month, dom+offset, m/60, m%60, 0, 0, t.Location()))
		}
	}
	return times
}
