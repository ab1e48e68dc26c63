// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2024 Universal Auto Brokers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/bitmark-inc/exitwithstatus"
	"github.com/bitmark-inc/getoptions"
	"github.com/bitmark-inc/logger"

	"github.com/universalautobrokers/draftstore/configuration"
	"github.com/universalautobrokers/draftstore/draft"
	"github.com/universalautobrokers/draftstore/mirror"
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

	if len(options["help"]) > 0 || 0 == len(arguments) || 1 != len(options["config-file"]) {
		exitwithstatus.Message("usage: %s [--help] [--verbose] --config-file=FILE command\n"+
			"  commands:\n"+
			"    stats              show storage usage\n"+
			"    list               list all drafts\n"+
			"    cleanup [DAYS]     remove old finalized drafts\n"+
			"    quota              force quota reclamation\n"+
			"    delete ID          delete one draft\n",
			program)
	}

	cfg, err := configuration.GetConfiguration(options["config-file"][0])
	if nil != err {
		exitwithstatus.Message("%s: configuration error: %s", program, err)
	}

	logging := logger.Configuration{
		Directory: cfg.Logging.Directory,
		File:      cfg.Logging.File,
		Size:      cfg.Logging.Size,
		Count:     cfg.Logging.Count,
		Console:   cfg.Logging.Console,
		Levels:    cfg.Logging.Levels,
	}
	if err = logger.Initialise(logging); nil != err {
		exitwithstatus.Message("%s: logger setup failed with error: %s", program, err)
	}
	defer logger.Finalise()

	var m *mirror.Mirror
	if cfg.Mirror.Enabled {
		m = mirror.New(cfg.Mirror.Directory, mirror.OSFileSystem{})
	}

	engine, err := draft.New(draft.Config{
		DatabaseDirectory: cfg.Database.Directory,
		Mirror:            m,
		CacheMaximumBytes: cfg.Engine.CacheMaximumBytes,
		QuotaMaximumBytes: cfg.Engine.QuotaMaximumBytes,
		MaximumVersions:   cfg.Engine.MaximumVersions,
		MaximumChanges:    cfg.Engine.MaximumChanges,
		RetentionDays:     cfg.Engine.RetentionDays,
		JanitorInterval:   -1, // one-shot tool, no background sweeps
	})
	if nil != err {
		exitwithstatus.Message("%s: engine setup failed with error: %s", program, err)
	}
	if err := engine.Initialise(); nil != err {
		exitwithstatus.Message("%s: engine initialise failed with error: %s", program, err)
	}
	defer engine.Finalise()

	switch command := arguments[0]; command {

	case "stats":
		stats, err := engine.GetStorageStats()
		if nil != err {
			exitwithstatus.Message("%s: stats error: %s", program, err)
		}
		fmt.Printf("drafts:         %d  (%d bytes)\n", stats.DraftCount, stats.DraftBytes)
		fmt.Printf("versions:       %d  (%d bytes)\n", stats.VersionCount, stats.VersionBytes)
		fmt.Printf("total:          %d bytes\n", stats.TotalBytes)
		fmt.Printf("quota:          %d bytes\n", stats.QuotaBytes)
		fmt.Printf("over quota:     %t\n", stats.OverQuota)
		if !stats.LastCleanup.IsZero() {
			fmt.Printf("last cleanup:   %s\n", stats.LastCleanup.Format(time.RFC3339))
		}

	case "list":
		infos, err := engine.ListAllDrafts()
		if nil != err {
			exitwithstatus.Message("%s: list error: %s", program, err)
		}
		for _, info := range infos {
			fmt.Printf("%-30s  v%-4d  %-10s  %8d bytes  %s\n",
				info.ID, info.Version, info.Status,
				info.Size, info.LastModified.Format(time.RFC3339))
		}
		fmt.Printf("drafts: %d\n", len(infos))

	case "cleanup":
		days := 0
		if len(arguments) > 1 {
			days, err = strconv.Atoi(arguments[1])
			if nil != err {
				exitwithstatus.Message("%s: convert days error: %s", program, err)
			}
		}
		removed, err := engine.CleanupOldDrafts(days)
		if nil != err {
			exitwithstatus.Message("%s: cleanup error: %s", program, err)
		}
		fmt.Printf("removed: %d\n", removed)

	case "quota":
		if err := engine.EnforceQuota(); nil != err {
			exitwithstatus.Message("%s: quota error: %s", program, err)
		}
		stats, err := engine.GetStorageStats()
		if nil != err {
			exitwithstatus.Message("%s: stats error: %s", program, err)
		}
		fmt.Printf("total:      %d bytes\n", stats.TotalBytes)
		fmt.Printf("over quota: %t\n", stats.OverQuota)

	case "delete":
		if len(arguments) < 2 {
			exitwithstatus.Message("%s: delete needs a draft id", program)
		}
		if err := engine.DeleteDraft(arguments[1]); nil != err {
			exitwithstatus.Message("%s: delete error: %s", program, err)
		}
		fmt.Printf("deleted: %q\n", arguments[1])

	default:
		exitwithstatus.Message("%s: unknown command: %q", program, command)
	}
}
