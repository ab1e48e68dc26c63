// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2024 Universal Auto Brokers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package configuration - read the Lua configuration file used by the
// draft store tools
//
// the file is executed as a Lua script whose final expression is the
// configuration table, so settings can be computed
package configuration
