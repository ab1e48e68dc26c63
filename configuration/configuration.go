// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2024 Universal Auto Brokers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package configuration

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/bitmark-inc/logger"

	"github.com/universalautobrokers/draftstore/fault"
)

// basic defaults (directories and files are relative to the
// "data_directory" from the configuration file)
const (
	defaultDataDirectory = "" // this will error; use "." for the same directory as the config file

	defaultDatabaseDirectory = "data"

	defaultLogDirectory = "log"
	defaultLogFile      = "draftstore.log"
	defaultLogCount     = 10          //  number of log files retained
	defaultLogSize      = 1024 * 1024 // rotate when <logfile> exceeds this size

	defaultQuotaMaximumBytes = 100 * 1024 * 1024
	defaultCacheMaximumBytes = 50 * 1024 * 1024
	defaultMaximumVersions   = 5
	defaultMaximumChanges    = 100
	defaultRetentionDays     = 30
	defaultJanitorMinutes    = 60
)

// to hold log levels
type LoglevelMap map[string]string

var defaultLogLevels = LoglevelMap{
	"main":            "info",
	"config":          "info",
	logger.DefaultTag: "critical",
}

// EngineType - draft engine tuning
type EngineType struct {
	QuotaMaximumBytes uint64 `gluamapper:"quota_maximum_bytes"`
	CacheMaximumBytes uint64 `gluamapper:"cache_maximum_bytes"`
	MaximumVersions   int    `gluamapper:"maximum_versions"`
	MaximumChanges    int    `gluamapper:"maximum_changes"`
	RetentionDays     int    `gluamapper:"retention_days"`
	JanitorMinutes    int    `gluamapper:"janitor_minutes"`
}

// MirrorType - filesystem mirror settings
//
// an empty directory selects the per-platform application data
// directory
type MirrorType struct {
	Enabled   bool   `gluamapper:"enabled"`
	Directory string `gluamapper:"directory"`
	Watch     bool   `gluamapper:"watch"`
}

// DatabaseType - record store location
type DatabaseType struct {
	Directory string `gluamapper:"directory"`
}

// LoggerType - rotating log file settings
type LoggerType struct {
	Directory string            `gluamapper:"directory"`
	File      string            `gluamapper:"file"`
	Size      int               `gluamapper:"size"`
	Count     int               `gluamapper:"count"`
	Console   bool              `gluamapper:"console"`
	Levels    map[string]string `gluamapper:"levels"`
}

// Configuration - the full configuration file layout
type Configuration struct {
	DataDirectory string       `gluamapper:"data_directory"`
	Database      DatabaseType `gluamapper:"database"`
	Engine        EngineType   `gluamapper:"engine"`
	Mirror        MirrorType   `gluamapper:"mirror"`
	Logging       LoggerType   `gluamapper:"logging"`
}

// GetConfiguration - read, decode and verify the configuration
func GetConfiguration(configurationFileName string) (*Configuration, error) {

	configurationFileName, err := filepath.Abs(filepath.Clean(configurationFileName))
	if nil != err {
		return nil, err
	}

	// absolute path to the main directory
	dataDirectory, _ := filepath.Split(configurationFileName)

	options := &Configuration{

		DataDirectory: defaultDataDirectory,

		Database: DatabaseType{
			Directory: defaultDatabaseDirectory,
		},

		Engine: EngineType{
			QuotaMaximumBytes: defaultQuotaMaximumBytes,
			CacheMaximumBytes: defaultCacheMaximumBytes,
			MaximumVersions:   defaultMaximumVersions,
			MaximumChanges:    defaultMaximumChanges,
			RetentionDays:     defaultRetentionDays,
			JanitorMinutes:    defaultJanitorMinutes,
		},

		Mirror: MirrorType{
			Enabled: true,
			Watch:   true,
		},

		Logging: LoggerType{
			Directory: defaultLogDirectory,
			File:      defaultLogFile,
			Size:      defaultLogSize,
			Count:     defaultLogCount,
			Levels:    defaultLogLevels,
		},
	}

	if err := ParseConfigurationFile(configurationFileName, options); err != nil {
		return nil, err
	}

	// ensure absolute data directory
	if "" == options.DataDirectory || "~" == options.DataDirectory {
		return nil, fault.ErrRequiredDataDirectory
	} else if "." == options.DataDirectory {
		options.DataDirectory = dataDirectory // same directory as the configuration file
	} else {
		options.DataDirectory = filepath.Clean(options.DataDirectory)
	}

	// this directory must exist - i.e. must be created prior to running
	if fileInfo, err := os.Stat(options.DataDirectory); nil != err {
		return nil, err
	} else if !fileInfo.IsDir() {
		return nil, fmt.Errorf("path: %q is not a directory", options.DataDirectory)
	}

	// force all relevant items to be absolute paths
	// if not, assign them to the data directory
	mustBeAbsolute := []*string{
		&options.Database.Directory,
		&options.Logging.Directory,
	}
	for _, f := range mustBeAbsolute {
		*f = ensureAbsolute(options.DataDirectory, *f)
	}

	// the mirror directory stays empty to select the per-platform
	// default, otherwise it is anchored like the rest
	if options.Mirror.Enabled && "" != options.Mirror.Directory {
		options.Mirror.Directory = ensureAbsolute(options.DataDirectory, options.Mirror.Directory)
	}

	// the log file must be a plain name inside the log directory
	switch filepath.Dir(options.Logging.File) {
	case "", ".":
	default:
		return nil, fmt.Errorf("files: %q is not plain name", options.Logging.File)
	}

	// create directories if they do not already exist
	for _, d := range []*string{&options.Database.Directory, &options.Logging.Directory} {
		if err := os.MkdirAll(*d, 0o700); nil != err {
			return nil, err
		}
	}

	// done
	return options, nil
}

// ensure the path is absolute
func ensureAbsolute(directory string, filePath string) string {
	if !filepath.IsAbs(filePath) {
		filePath = filepath.Join(directory, filePath)
	}
	return filepath.Clean(filePath)
}
