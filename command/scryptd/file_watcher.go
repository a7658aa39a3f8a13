// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/scryptd/fault"
)

const (
	fileWatcherLoggerPrefix = "file-watcher"
)

// WatcherChannel - events delivered to the configuration reader
//
// both channels have a buffer of one and extra events are discarded,
// so a burst of writes produces a single reload
type WatcherChannel struct {
	change chan struct{}
	remove chan struct{}
}

func newWatcherChannel() WatcherChannel {
	return WatcherChannel{
		change: make(chan struct{}, 1),
		remove: make(chan struct{}, 1),
	}
}

// FileWatcher - watch the configuration file
type FileWatcher struct {
	log      *logger.L
	channel  WatcherChannel
	watcher  *fsnotify.Watcher
	filePath string
}

func newFileWatcher(targetFile string, log *logger.L, channel WatcherChannel) (*FileWatcher, error) {
	if nil == log {
		return nil, fault.ErrInvalidLoggerChannel
	}

	filePath, err := filepath.Abs(filepath.Clean(targetFile))
	if nil != err {
		return nil, err
	}

	if _, err := os.Stat(filePath); nil != err {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if nil != err {
		return nil, err
	}

	return &FileWatcher{
		log:      log,
		channel:  channel,
		watcher:  watcher,
		filePath: filePath,
	}, nil
}

// Run - background process; the containing directory is watched so
// that editors replacing the file are also seen
func (w *FileWatcher) Run(args interface{}, shutdown <-chan struct{}) {
	defer w.watcher.Close()

	directory := filepath.Dir(w.filePath)
	if err := w.watcher.Add(directory); nil != err {
		w.log.Errorf("watch directory: %q  error: %s", directory, err)
		<-shutdown
		return
	}
	w.log.Infof("watching: %q", w.filePath)

loop:
	for {
		select {
		case <-shutdown:
			break loop

		case event, ok := <-w.watcher.Events:
			if !ok {
				break loop
			}
			w.process(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				break loop
			}
			w.log.Errorf("watcher error: %s", err)
		}
	}
	w.log.Info("stopped")
}

func (w *FileWatcher) process(event fsnotify.Event) {
	if filepath.Clean(event.Name) != w.filePath {
		w.log.Tracef("discard event: %v", event)
		return
	}

	w.log.Debugf("file event: %v", event)

	switch {
	case watcherEventFileRemove(event):
		// an editor may rename then recreate the file, the reader
		// decides what to do
		w.sendEvent(w.channel.remove, "remove")
	case watcherEventFileChange(event):
		w.sendEvent(w.channel.change, "change")
	}
}

func (w *FileWatcher) sendEvent(ch chan<- struct{}, name string) {
	select {
	case ch <- struct{}{}:
	default:
		w.log.Debugf("event channel %s full, discard event", name)
	}
}

func watcherEventFileRemove(event fsnotify.Event) bool {
	return event.Op&fsnotify.Remove == fsnotify.Remove ||
		event.Op&fsnotify.Rename == fsnotify.Rename
}

func watcherEventFileChange(event fsnotify.Event) bool {
	return event.Op&fsnotify.Write == fsnotify.Write ||
		event.Op&fsnotify.Create == fsnotify.Create ||
		event.Op&fsnotify.Chmod == fsnotify.Chmod
}
