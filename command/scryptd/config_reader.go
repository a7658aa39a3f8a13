// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"runtime"
	"sync"
	"time"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/scryptd/fault"
)

const (
	readerLoggerPrefix = "config-reader"
	settleDelay        = 2 * time.Second
)

// ConfigListener - notified after each successful reload
type ConfigListener interface {
	Refresh(*Configuration)
}

// ConfigReader - holds the current configuration and reloads it when
// the file watcher reports a change
type ConfigReader struct {
	sync.RWMutex
	fileName  string
	log       *logger.L
	current   *Configuration
	cpus      int
	listeners []ConfigListener
	channel   WatcherChannel
	settle    time.Duration
	parse     func(string) (*Configuration, error)
}

func newConfigReader(fileName string, channel WatcherChannel) *ConfigReader {
	return &ConfigReader{
		fileName: fileName,
		cpus:     runtime.NumCPU(),
		channel:  channel,
		settle:   settleDelay,
		parse:    getConfiguration,
	}
}

// FirstRefresh - read the file before the logger is running
func (c *ConfigReader) FirstRefresh() error {
	configuration, err := c.parse(c.fileName)
	if nil != err {
		return err
	}
	c.Lock()
	c.current = configuration
	c.Unlock()
	return nil
}

// SetLog - must be called once logging is initialised
func (c *ConfigReader) SetLog(log *logger.L) error {
	if nil == log {
		return fault.ErrInvalidLoggerChannel
	}
	c.log = log
	return nil
}

// AddListener - register for reload notifications
func (c *ConfigReader) AddListener(listener ConfigListener) {
	c.Lock()
	c.listeners = append(c.listeners, listener)
	c.Unlock()
}

// GetConfig - the current configuration
func (c *ConfigReader) GetConfig() (*Configuration, error) {
	c.RLock()
	defer c.RUnlock()
	if nil == c.current {
		return nil, fault.ErrNotInitialised
	}
	return c.current, nil
}

// LaneCount - lanes allowed by the current configuration
func (c *ConfigReader) LaneCount() int {
	c.RLock()
	defer c.RUnlock()
	if nil == c.current {
		return 1
	}
	return c.current.LaneCount(c.cpus)
}

// Refresh - reparse the file; on error the previous configuration is kept
func (c *ConfigReader) Refresh() error {
	configuration, err := c.parse(c.fileName)
	if nil != err {
		return err
	}

	c.Lock()
	c.current = configuration
	listeners := append([]ConfigListener(nil), c.listeners...)
	c.Unlock()

	c.log.Infof("configuration: chain: %s  scrypt: %s  lanes: %d",
		configuration.Chain, configuration.Scrypt.Params(), configuration.LaneCount(c.cpus))

	for _, l := range listeners {
		l.Refresh(configuration)
	}
	return nil
}

// Notify - push the current configuration to all listeners
func (c *ConfigReader) Notify() {
	c.RLock()
	configuration := c.current
	listeners := append([]ConfigListener(nil), c.listeners...)
	c.RUnlock()

	if nil == configuration {
		return
	}
	for _, l := range listeners {
		l.Refresh(configuration)
	}
}

// Run - background process waiting for watcher events
func (c *ConfigReader) Run(args interface{}, shutdown <-chan struct{}) {
	c.log.Info("starting…")

loop:
	for {
		select {
		case <-shutdown:
			break loop

		case <-c.channel.change:
			c.log.Debugf("file change event, wait %s to settle", c.settle)
			select {
			case <-shutdown:
				break loop
			case <-time.After(c.settle):
			}
			if err := c.Refresh(); nil != err {
				c.log.Errorf("failed to read configuration from: %q  error: %s", c.fileName, err)
			}

		case <-c.channel.remove:
			c.log.Warn("config file removed, keeping current configuration")
		}
	}
	c.log.Info("stopped")
}
