// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2024 Universal Auto Brokers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package configuration_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/universalautobrokers/draftstore/configuration"
)

const testDirectory = "testing-config"

func writeConfig(t *testing.T, content string) string {
	require.NoError(t, os.MkdirAll(testDirectory, 0o700))
	name := filepath.Join(testDirectory, "draftstore.conf")
	require.NoError(t, os.WriteFile(name, []byte(content), 0o600))
	return name
}

func TestDefaults(t *testing.T) {
	defer os.RemoveAll(testDirectory)

	name := writeConfig(t, `
		return {
			data_directory = ".",
		}
	`)

	cfg, err := configuration.GetConfiguration(name)
	require.NoError(t, err)

	assert.Equal(t, uint64(100*1024*1024), cfg.Engine.QuotaMaximumBytes)
	assert.Equal(t, 5, cfg.Engine.MaximumVersions)
	assert.Equal(t, 100, cfg.Engine.MaximumChanges)
	assert.Equal(t, 30, cfg.Engine.RetentionDays)
	assert.True(t, cfg.Mirror.Enabled)
	assert.Empty(t, cfg.Mirror.Directory, "empty selects the platform default")

	assert.True(t, filepath.IsAbs(cfg.Database.Directory))
	assert.Equal(t, "data", filepath.Base(cfg.Database.Directory))
	assert.DirExists(t, cfg.Database.Directory)
	assert.DirExists(t, cfg.Logging.Directory)
}

func TestOverrides(t *testing.T) {
	defer os.RemoveAll(testDirectory)

	name := writeConfig(t, `
		local M = {}
		M.data_directory = "."
		M.database = {
			directory = "drafts-db",
		}
		M.engine = {
			quota_maximum_bytes = 1048576,
			maximum_versions = 3,
			retention_days = 7,
		}
		M.mirror = {
			enabled = false,
		}
		M.logging = {
			file = "custom.log",
			levels = {
				draft = "debug",
			},
		}
		return M
	`)

	cfg, err := configuration.GetConfiguration(name)
	require.NoError(t, err)

	assert.Equal(t, uint64(1048576), cfg.Engine.QuotaMaximumBytes)
	assert.Equal(t, 3, cfg.Engine.MaximumVersions)
	assert.Equal(t, 7, cfg.Engine.RetentionDays)
	assert.False(t, cfg.Mirror.Enabled)
	assert.Equal(t, "drafts-db", filepath.Base(cfg.Database.Directory))
	assert.Equal(t, "custom.log", cfg.Logging.File)
	assert.Equal(t, "debug", cfg.Logging.Levels["draft"])
}

func TestComputedValues(t *testing.T) {
	defer os.RemoveAll(testDirectory)

	// settings are Lua, so they can be computed
	name := writeConfig(t, `
		local megabyte = 1024 * 1024
		return {
			data_directory = ".",
			engine = {
				quota_maximum_bytes = 25 * megabyte,
			},
		}
	`)

	cfg, err := configuration.GetConfiguration(name)
	require.NoError(t, err)
	assert.Equal(t, uint64(25*1024*1024), cfg.Engine.QuotaMaximumBytes)
}

func TestMissingDataDirectory(t *testing.T) {
	defer os.RemoveAll(testDirectory)

	name := writeConfig(t, `
		return {
			logging = { file = "x.log" },
		}
	`)

	_, err := configuration.GetConfiguration(name)
	assert.Error(t, err)
}

func TestMissingFile(t *testing.T) {
	_, err := configuration.GetConfiguration("no-such-directory/no-such.conf")
	assert.Error(t, err)
}

func TestBadLogFileName(t *testing.T) {
	defer os.RemoveAll(testDirectory)

	name := writeConfig(t, `
		return {
			data_directory = ".",
			logging = { file = "../escape.log" },
		}
	`)

	_, err := configuration.GetConfiguration(name)
	assert.Error(t, err)
}
