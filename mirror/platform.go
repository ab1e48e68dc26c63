// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2024 Universal Auto Brokers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mirror

import (
	"os"
	"path/filepath"
	"runtime"
)

// application directory name under the platform data directory
//
// matches the desktop shell:
//   Windows: %LOCALAPPDATA%\dealer-software
//   macOS:   ~/Library/Application Support/dealer-software
//   Linux:   $XDG_DATA_HOME/dealer-software or ~/.local/share/dealer-software
const appDirectoryName = "dealer-software"

// platformDataDirectory - resolve the per-user application data root
func platformDataDirectory() (string, error) {

	switch runtime.GOOS {
	case "windows":
		base := os.Getenv("LOCALAPPDATA")
		if "" == base {
			base = os.Getenv("APPDATA")
		}
		if "" != base {
			return filepath.Join(base, appDirectoryName), nil
		}

	case "darwin":
		home, err := os.UserHomeDir()
		if nil == err {
			return filepath.Join(home, "Library", "Application Support", appDirectoryName), nil
		}

	default:
		if base := os.Getenv("XDG_DATA_HOME"); "" != base {
			return filepath.Join(base, appDirectoryName), nil
		}
		home, err := os.UserHomeDir()
		if nil == err {
			return filepath.Join(home, ".local", "share", appDirectoryName), nil
		}
	}

	return "", os.ErrNotExist
}
