// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/scryptd/filters"
	"github.com/bitmark-inc/scryptd/search"
)

const (
	telemetryLoggerPrefix = "telemetry"

	// smoothing of the per interval hash rate
	rateMedianSamples  = 3
	rateAverageSamples = 5
)

// TelemetrySource - provides the counters to report
type TelemetrySource interface {
	Telemetry() (search.Telemetry, uint64)
}

// JournalCounter - anything that can report a count, e.g. the journal
type JournalCounter interface {
	Count() int
}

// TelemetryReporter - periodically log the search counters
type TelemetryReporter struct {
	log     *logger.L
	source  TelemetrySource
	journal JournalCounter
	limiter *rate.Limiter
	filter  filters.Filter

	lastHashes uint64
	lastTime   time.Time
}

func newTelemetryReporter(interval time.Duration, source TelemetrySource, journal JournalCounter, log *logger.L) *TelemetryReporter {
	return &TelemetryReporter{
		log:     log,
		source:  source,
		journal: journal,
		limiter: rate.NewLimiter(rate.Every(interval), 1),
		filter:  filters.NewCamm(0, rateMedianSamples, rateAverageSamples),
	}
}

// Run - background process, one report per limiter token
func (t *TelemetryReporter) Run(args interface{}, shutdown <-chan struct{}) {
	t.log.Info("starting…")

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-shutdown
		cancel()
	}()

	// the first token is free, skip it so the first report has data
	t.limiter.Allow()
	t.lastTime = time.Now()

	for {
		if err := t.limiter.Wait(ctx); nil != err {
			break
		}
		t.report()
	}
	t.log.Info("stopped")
}

func (t *TelemetryReporter) report() {
	telemetry, solutions := t.source.Telemetry()
	recorded := 0
	if nil != t.journal {
		recorded = t.journal.Count()
	}

	smoothed := t.sample(telemetry.TotalHashes, time.Now())

	t.log.Infof("%s  smoothed: %.2f H/s  solutions: %d  journal: %d", telemetry, smoothed, solutions, recorded)
}

// hash rate over the last interval passed through the filter
func (t *TelemetryReporter) sample(total uint64, now time.Time) float64 {
	hashes := total - t.lastHashes

	// counters restart when the search parameters change
	if total < t.lastHashes {
		hashes = total
	}

	elapsed := now.Sub(t.lastTime).Seconds()
	t.lastHashes = total
	t.lastTime = now

	if elapsed <= 0 {
		return t.filter.Current()
	}
	return t.filter.Process(float64(hashes) / elapsed)
}
