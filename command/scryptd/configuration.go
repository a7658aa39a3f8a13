// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/scryptd/chain"
	"github.com/bitmark-inc/scryptd/configuration"
	"github.com/bitmark-inc/scryptd/fault"
	"github.com/bitmark-inc/scryptd/schedule"
	"github.com/bitmark-inc/scryptd/search"
	"github.com/bitmark-inc/scryptd/util"
	"github.com/bitmark-inc/scryptd/zmqutil"
)

// basic defaults (directories and files are relative to the "DataDirectory" from Configuration file)
const (
	defaultDataDirectory = "" // this will error; use "." for the same directory as the config file

	defaultJournalDirectory  = "journal"
	defaultMaxCPUUsage       = 50
	defaultTelemetryInterval = 60 // seconds

	defaultLogDirectory = "log"
	defaultLogFile      = "scryptd.log"
	defaultLogCount     = 10          //  number of log files retained
	defaultLogSize      = 1024 * 1024 // rotate when <logfile> exceeds this size
)

// LoglevelMap - to hold log levels
type LoglevelMap map[string]string

// path expanded or calculated defaults
var (
	defaultLogLevels = LoglevelMap{
		logger.DefaultTag: "critical",
	}
)

// PeeringType - work source and solution sink
//
// keys are either inline tagged hex ("PUBLIC:…", "PRIVATE:…") or the
// name of a file holding one; leave all three empty for a plain
// connection
type PeeringType struct {
	Subscribe  string `gluamapper:"subscribe" json:"subscribe"`
	Submit     string `gluamapper:"submit" json:"submit"`
	PublicKey  string `gluamapper:"public_key" json:"public_key"`
	PrivateKey string `gluamapper:"private_key" json:"private_key"`
	ServerKey  string `gluamapper:"server_key" json:"server_key"`
}

// Configuration - the daemon configuration file
type Configuration struct {
	DataDirectory     string               `gluamapper:"data_directory" json:"data_directory"`
	PidFile           string               `gluamapper:"pidfile" json:"pidfile"`
	Chain             string               `gluamapper:"chain" json:"chain"`
	Scrypt            search.Configuration `gluamapper:"scrypt" json:"scrypt"`
	MaxCPUUsage       int                  `gluamapper:"max_cpu_usage" json:"max_cpu_usage"`
	Calendar          schedule.Calendar    `gluamapper:"calendar" json:"calendar"`
	Peering           PeeringType          `gluamapper:"peering" json:"peering"`
	Journal           string               `gluamapper:"journal" json:"journal"`
	TelemetryInterval int                  `gluamapper:"telemetry_interval" json:"telemetry_interval"`
	Logging           logger.Configuration `gluamapper:"logging" json:"logging"`
}

// will read decode and verify the configuration
func getConfiguration(configurationFileName string) (*Configuration, error) {

	configurationFileName, err := filepath.Abs(filepath.Clean(configurationFileName))
	if nil != err {
		return nil, err
	}

	// absolute path to the main directory
	dataDirectory, _ := filepath.Split(configurationFileName)

	options := &Configuration{
		DataDirectory:     defaultDataDirectory,
		PidFile:           "", // no PidFile by default
		Chain:             chain.Litecoin,
		MaxCPUUsage:       defaultMaxCPUUsage,
		Calendar:          schedule.Calendar{},
		Peering:           PeeringType{},
		Journal:           defaultJournalDirectory,
		TelemetryInterval: defaultTelemetryInterval,

		Logging: logger.Configuration{
			Directory: defaultLogDirectory,
			File:      defaultLogFile,
			Size:      defaultLogSize,
			Count:     defaultLogCount,
			Levels:    defaultLogLevels,
		},
	}

	if err := configuration.ParseConfigurationFile(configurationFileName, options); err != nil {
		return nil, err
	}

	if err := options.complete(dataDirectory); nil != err {
		return nil, err
	}
	return options, nil
}

// fill derived defaults, validate and make paths absolute
func (options *Configuration) complete(configurationDirectory string) error {

	// abort if the chain name is not recognised
	options.Chain = strings.ToLower(options.Chain)
	preset, ok := chain.Get(options.Chain)
	if !ok {
		return fault.ErrInvalidChain
	}

	// a missing cost parameter selects the whole chain preset
	if 0 == options.Scrypt.N {
		params := preset.Params
		options.Scrypt.N = params.N
		options.Scrypt.R = params.R
		options.Scrypt.P = params.P
	}
	if 0 == options.Scrypt.R {
		options.Scrypt.R = preset.Params.R
	}
	if 0 == options.Scrypt.P {
		options.Scrypt.P = preset.Params.P
	}
	if 0 == options.Scrypt.CoreCount {
		options.Scrypt.CoreCount = preset.Lanes
	}
	if err := options.Scrypt.Params().Validate(); nil != err {
		return err
	}

	if options.MaxCPUUsage <= 0 || options.MaxCPUUsage > 100 {
		options.MaxCPUUsage = defaultMaxCPUUsage
	}
	if options.TelemetryInterval <= 0 {
		options.TelemetryInterval = defaultTelemetryInterval
	}

	if _, err := schedule.Parse(options.Calendar); nil != err {
		return err
	}

	if err := options.Peering.validate(); nil != err {
		return err
	}

	// ensure absolute data directory
	if "" == options.DataDirectory || "~" == options.DataDirectory {
		return fmt.Errorf("path: %q is not a valid directory", options.DataDirectory)
	} else if "." == options.DataDirectory {
		options.DataDirectory = configurationDirectory // same directory as the configuration file
	}
	options.DataDirectory = filepath.Clean(options.DataDirectory)

	// this directory must exist - i.e. must be created prior to running
	if fileInfo, err := os.Stat(options.DataDirectory); nil != err {
		return err
	} else if !fileInfo.IsDir() {
		return fmt.Errorf("path: %q is not a directory", options.DataDirectory)
	}

	// optional absolute paths i.e. blank or an absolute path
	if "" != options.PidFile {
		options.PidFile = util.EnsureAbsolute(options.DataDirectory, options.PidFile)
	}

	// the log file must be a plain name inside the log directory
	if !util.IsPlainName(options.Logging.File) {
		return fmt.Errorf("files: %q is not plain name", options.Logging.File)
	}

	// make absolute and create directories if they do not already exist
	for _, d := range []*string{
		&options.Logging.Directory,
		&options.Journal,
	} {
		directory, err := util.EnsureDirectory(options.DataDirectory, *d)
		if nil != err {
			return err
		}
		*d = directory
	}

	return nil
}

func (p PeeringType) validate() error {
	if "" == p.Subscribe || "" == p.Submit {
		return fault.ErrInvalidConfiguration
	}
	if p.Subscribe == p.Submit {
		return fault.ErrWrongEndpointString
	}
	keys := 0
	for _, k := range []string{p.PublicKey, p.PrivateKey, p.ServerKey} {
		if "" != k {
			keys += 1
		}
	}
	if 0 != keys && 3 != keys {
		return fault.ErrInvalidConfiguration
	}
	return nil
}

// Keys - decode the CURVE keys, empty if none are configured
func (p PeeringType) Keys(dataDirectory string) (zmqutil.Keys, error) {
	keys := zmqutil.Keys{}
	if "" == p.PublicKey {
		return keys, nil
	}

	read := func(s string) (string, error) {
		if strings.HasPrefix(s, "PUBLIC:") || strings.HasPrefix(s, "PRIVATE:") {
			return zmqutil.ReadKeyFile(s)
		}
		return zmqutil.ReadKeyFile(util.EnsureAbsolute(dataDirectory, s))
	}

	s, err := read(p.PublicKey)
	if nil != err {
		return keys, err
	}
	if keys.Public, err = zmqutil.ReadPublicKey(s); nil != err {
		return keys, err
	}

	if s, err = read(p.PrivateKey); nil != err {
		return keys, err
	}
	if keys.Private, err = zmqutil.ReadPrivateKey(s); nil != err {
		return keys, err
	}

	if s, err = read(p.ServerKey); nil != err {
		return keys, err
	}
	if keys.Server, err = zmqutil.ReadPublicKey(s); nil != err {
		return keys, err
	}
	return keys, nil
}

// LaneCount - lanes to run on a machine with cpus processors
//
// an explicit core_count is capped by max_cpu_usage percent of the
// processors, zero means use the whole allowance; the result is
// always in 1..search.MaximumLanes
func (options *Configuration) LaneCount(cpus int) int {
	allowance := cpus * options.MaxCPUUsage / 100
	if allowance < 1 {
		allowance = 1
	}

	lanes := options.Scrypt.CoreCount
	if lanes <= 0 || lanes > allowance {
		lanes = allowance
	}
	if lanes > search.MaximumLanes {
		lanes = search.MaximumLanes
	}
	return lanes
}

// SearchConfiguration - the search parameters to use on a machine
// with cpus processors
func (options *Configuration) SearchConfiguration(cpus int) search.Configuration {
	c := options.Scrypt
	c.CoreCount = options.LaneCount(cpus)
	return c
}
