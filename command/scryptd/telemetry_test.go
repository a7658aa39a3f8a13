// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/scryptd/search"
)

type countingSource struct {
	reports chan struct{}
}

func (c *countingSource) Telemetry() (search.Telemetry, uint64) {
	select {
	case c.reports <- struct{}{}:
	default:
	}
	return search.Telemetry{HashRate: 12.5, ActiveLanes: 2, TotalHashes: 100}, 1
}

type fixedCount int

func (f fixedCount) Count() int {
	return int(f)
}

func TestTelemetryReporter(t *testing.T) {
	source := &countingSource{
		reports: make(chan struct{}, 8),
	}
	r := newTelemetryReporter(10*time.Millisecond, source, fixedCount(3), logger.New(logCategory))

	shutdown := make(chan struct{})
	done := make(chan struct{})
	go func() {
		r.Run(nil, shutdown)
		close(done)
	}()

	for i := 0; i < 2; i++ {
		select {
		case <-source.reports:
		case <-time.After(5 * time.Second):
			t.Fatalf("report: %d not made", i)
		}
	}

	close(shutdown)
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("reporter did not stop")
	}
}

func TestTelemetryReporterStopsWhileWaiting(t *testing.T) {
	source := &countingSource{
		reports: make(chan struct{}, 1),
	}
	r := newTelemetryReporter(time.Hour, source, nil, logger.New(logCategory))

	shutdown := make(chan struct{})
	done := make(chan struct{})
	go func() {
		r.Run(nil, shutdown)
		close(done)
	}()

	close(shutdown)
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("reporter did not stop")
	}
	assert.Equal(t, 0, len(source.reports), "unexpected report")
}

func TestTelemetrySample(t *testing.T) {
	r := newTelemetryReporter(time.Second, &countingSource{}, nil, logger.New(logCategory))

	start := time.Unix(1700000000, 0)
	r.lastTime = start

	// 100 hashes per second steady
	smoothed := 0.0
	for i := 1; i <= 10; i += 1 {
		smoothed = r.sample(uint64(i*100), start.Add(time.Duration(i)*time.Second))
	}
	assert.InDelta(t, 100.0, smoothed, 1e-9, "steady rate not reached")

	// a counter restart is not a negative rate
	smoothed = r.sample(50, start.Add(11*time.Second))
	assert.True(t, smoothed >= 0, "negative rate")

	// no elapsed time keeps the current value
	assert.Equal(t, smoothed, r.sample(60, start.Add(11*time.Second)), "zero interval changed the rate")
}
