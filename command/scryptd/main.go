// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bitmark-inc/exitwithstatus"
	"github.com/bitmark-inc/getoptions"
	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/scryptd/background"
	"github.com/bitmark-inc/scryptd/fault"
	"github.com/bitmark-inc/scryptd/journal"
	"github.com/bitmark-inc/scryptd/util"
	"github.com/bitmark-inc/scryptd/zmqutil"
)

// set by the linker: go build -ldflags "-X main.version=M.N" ./...
var version = "zero" // do not change this value

// main program
func main() {
	// ensure exit handler is first
	defer exitwithstatus.Handler()

	flags := []getoptions.Option{
		{Long: "help", HasArg: getoptions.NO_ARGUMENT, Short: 'h'},
		{Long: "verbose", HasArg: getoptions.NO_ARGUMENT, Short: 'v'},
		{Long: "quiet", HasArg: getoptions.NO_ARGUMENT, Short: 'q'},
		{Long: "version", HasArg: getoptions.NO_ARGUMENT, Short: 'V'},
		{Long: "config-file", HasArg: getoptions.REQUIRED_ARGUMENT, Short: 'c'},
	}

	program, options, arguments, err := getoptions.GetOS(flags)
	if nil != err {
		exitwithstatus.Message("%s: getoptions error: %s", program, err)
	}

	if len(options["version"]) > 0 {
		exitwithstatus.Message("%s: version: %s", program, version)
	}

	if len(options["help"]) > 0 {
		exitwithstatus.Message("usage: %s [--help] [--verbose] [--quiet] --config-file=FILE [[command|help] arguments...]", program)
	}

	// these commands don't require the configuration
	if len(arguments) > 0 && processSetupCommand(program, arguments) {
		return
	}

	if 1 != len(options["config-file"]) {
		exitwithstatus.Message("%s: only one config-file option is required, %d were detected", program, len(options["config-file"]))
	}

	// read options and parse the configuration file
	configurationFile := options["config-file"][0]

	watcherChannel := newWatcherChannel()
	reader := newConfigReader(configurationFile, watcherChannel)
	if err := reader.FirstRefresh(); nil != err {
		exitwithstatus.Message("%s: failed to read configuration from: %q  error: %s", program, configurationFile, err)
	}

	masterConfiguration, err := reader.GetConfig()
	if nil != err {
		exitwithstatus.Message("%s: configuration is not found", program)
	}

	if len(options["verbose"]) > 0 {
		masterConfiguration.Logging.Console = true
	}

	// start logging
	if err = logger.Initialise(masterConfiguration.Logging); nil != err {
		exitwithstatus.Message("%s: logger setup failed with error: %s", program, err)
	}
	defer logger.Finalise()

	// last chance logging for unexpected states
	if err = fault.Initialise(); nil != err {
		exitwithstatus.Message("%s: panic log setup failed with error: %s", program, err)
	}
	defer fault.Finalise()

	if err := reader.SetLog(logger.New(readerLoggerPrefix)); nil != err {
		exitwithstatus.Message("%s: new logger %q failed with error: %s", program, readerLoggerPrefix, err)
	}

	// create a logger channel for the main program
	log := logger.New("main")
	defer log.Info("shutting down…")
	log.Info("starting…")
	log.Infof("version: %s", version)
	log.Debugf("masterConfiguration: %v", masterConfiguration)

	// optional PID file
	// use if not running under a supervisor program like daemon(8)
	if "" != masterConfiguration.PidFile {
		lockFile, err := os.OpenFile(masterConfiguration.PidFile, os.O_WRONLY|os.O_EXCL|os.O_CREATE, os.ModeExclusive|0600)
		if err != nil {
			if os.IsExist(err) {
				exitwithstatus.Message("%s: another instance is already running", program)
			}
			exitwithstatus.Message("%s: PID file: %q creation failed, error: %s", program, masterConfiguration.PidFile, err)
		}
		fmt.Fprintf(lockFile, "%d\n", os.Getpid())
		lockFile.Close()
		defer os.Remove(masterConfiguration.PidFile)
	}

	keys, err := masterConfiguration.Peering.Keys(masterConfiguration.DataDirectory)
	if nil != err {
		log.Criticalf("peering keys error: %s", err)
		exitwithstatus.Message("%s: failed reading peering keys  error: %s", program, err)
	}
	if !keys.IsEmpty() {
		log.Tracef("public key:  %x", keys.Public)
		log.Tracef("server key:  %x", keys.Server)
		if err := zmqutil.StartAuthentication(); nil != err {
			log.Criticalf("zmq.AuthStart(): error: %s", err)
			exitwithstatus.Message("%s: zmq.AuthStart() error: %s", program, err)
		}
	}

	log.Infof("chain: %s  scrypt: %s  scratchpad: %s",
		masterConfiguration.Chain,
		masterConfiguration.Scrypt.Params(),
		util.FormatSize(masterConfiguration.Scrypt.Params().Memory()),
	)

	solutions, err := journal.Open(masterConfiguration.Journal, journal.DefaultRecentSize, logger.New("journal"))
	if nil != err {
		log.Criticalf("journal: %q  error: %s", masterConfiguration.Journal, err)
		exitwithstatus.Message("%s: journal: %q  error: %s", program, masterConfiguration.Journal, err)
	}
	defer solutions.Close()

	submitter, err := newSubmitter(masterConfiguration.Peering.Submit, keys, logger.New(submitterLoggerPrefix))
	if nil != err {
		log.Criticalf("submitter: %q  error: %s", masterConfiguration.Peering.Submit, err)
		exitwithstatus.Message("%s: submitter error: %s", program, err)
	}
	defer submitter.Close()

	proofer := newProofer(logger.New(prooferLoggerPrefix), newCoordinator, solutions, submitter)
	reader.AddListener(proofer)

	calendar := newJobCalendar(proofer, logger.New(jobCalendarPrefix))
	reader.AddListener(calendar)

	subscriber, err := newSubscriber(masterConfiguration.Peering.Subscribe, keys, proofer, logger.New(subscriberLoggerPrefix))
	if nil != err {
		log.Criticalf("subscriber: %q  error: %s", masterConfiguration.Peering.Subscribe, err)
		exitwithstatus.Message("%s: subscriber error: %s", program, err)
	}

	watcher, err := newFileWatcher(configurationFile, logger.New(fileWatcherLoggerPrefix), watcherChannel)
	if nil != err {
		exitwithstatus.Message("%s: file watcher setup failed with error: %s", program, err)
	}

	interval := time.Duration(masterConfiguration.TelemetryInterval) * time.Second
	reporter := newTelemetryReporter(interval, proofer, solutions, logger.New(telemetryLoggerPrefix))

	// initial configuration to the listeners before anything runs
	reader.Notify()

	// start background processes
	processes := background.Processes{
		proofer,
		calendar,
		subscriber,
		watcher,
		reader,
		reporter,
	}
	p := background.Start(processes, nil)
	defer p.Stop()

	// wait for CTRL-C before shutting down to allow manual testing
	if 0 == len(options["quiet"]) {
		fmt.Printf("\n\nWaiting for CTRL-C (SIGINT) or 'kill <pid>' (SIGTERM)…")
	}

	// turn Signals into channel messages
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	sig := <-ch
	log.Infof("received signal: %v", sig)
	if 0 == len(options["quiet"]) {
		fmt.Printf("\nreceived signal: %v\n", sig)
		fmt.Printf("\nshutting down...\n")
	}
}
