// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2024 Universal Auto Brokers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package mirror - best-effort filesystem copy of draft binaries
//
// two trees under the application data directory:
//
//   blobs/{id}.pdf      active drafts
//   documents/{id}.pdf  finalized output
//
// this tier exists purely for durability and recovery; every failure
// is logged and swallowed, the record store remains the source of
// truth and the engine keeps all of its guarantees when the mirror
// is missing entirely
package mirror

import (
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/bitmark-inc/logger"
)

// mirror subtree names
const (
	blobsDirectory     = "blobs"
	documentsDirectory = "documents"
	fileExtension      = ".pdf"
)

// Mirror - one mirror instance
type Mirror struct {
	sync.Mutex

	log      *logger.L
	fs       FileSystem
	override string
	root     string
	blobs    string
	finals   string
	enabled  bool

	// watcher state, see watch.go
	watch        *watchData
	recentWrites map[string]time.Time
}

// New - create a mirror rooted at an explicit directory, or at the
// platform application-data location when the override is empty
//
// a nil filesystem capability produces a permanently disabled mirror
func New(override string, fs FileSystem) *Mirror {
	return &Mirror{
		log:          logger.New("mirror"),
		fs:           fs,
		override:     override,
		recentWrites: make(map[string]time.Time),
	}
}

// EnsureDirs - resolve the root and create both subtrees
//
// failure disables the mirror but is never an error: the engine
// continues on the record store alone
func (m *Mirror) EnsureDirs() {
	m.Lock()
	defer m.Unlock()

	if nil == m.fs {
		m.log.Warn("no filesystem capability, mirror disabled")
		return
	}

	root := m.override
	if "" == root {
		resolved, err := platformDataDirectory()
		if nil != err {
			m.log.Warnf("cannot resolve data directory: %s  mirror disabled", err)
			return
		}
		root = resolved
	}

	blobs := filepath.Join(root, blobsDirectory)
	finals := filepath.Join(root, documentsDirectory)

	for _, directory := range []string{blobs, finals} {
		if m.fs.DirectoryExists(directory) {
			continue
		}
		if err := m.fs.CreateDirectory(directory); nil != err {
			m.log.Warnf("create directory: %q error: %s  mirror disabled", directory, err)
			return
		}
	}

	m.root = root
	m.blobs = blobs
	m.finals = finals
	m.enabled = true
	m.log.Infof("mirroring to: %q", root)
}

// IsEnabled - false when the capability is missing or EnsureDirs failed
func (m *Mirror) IsEnabled() bool {
	m.Lock()
	defer m.Unlock()
	return m.enabled
}

// WriteActive - best-effort copy of an active draft binary
func (m *Mirror) WriteActive(id string, buffer []byte) {
	m.write(m.activePath(id), buffer)
}

// WriteFinalized - best-effort copy of a finalized document
func (m *Mirror) WriteFinalized(id string, buffer []byte) {
	m.write(m.finalizedPath(id), buffer)
}

// ReadActive - recover an active draft binary if a copy exists
func (m *Mirror) ReadActive(id string) ([]byte, bool) {
	return m.read(m.activePath(id))
}

// ReadFinalized - recover a finalized document if a copy exists
func (m *Mirror) ReadFinalized(id string) ([]byte, bool) {
	return m.read(m.finalizedPath(id))
}

// RemoveActive - best-effort removal of an active blob
func (m *Mirror) RemoveActive(id string) {
	m.remove(m.activePath(id))
}

// RemoveFinalized - best-effort removal of a finalized copy
func (m *Mirror) RemoveFinalized(id string) {
	m.remove(m.finalizedPath(id))
}

func (m *Mirror) activePath(id string) string {
	m.Lock()
	defer m.Unlock()
	if !m.enabled {
		return ""
	}
	return filepath.Join(m.blobs, id+fileExtension)
}

func (m *Mirror) finalizedPath(id string) string {
	m.Lock()
	defer m.Unlock()
	if !m.enabled {
		return ""
	}
	return filepath.Join(m.finals, id+fileExtension)
}

func (m *Mirror) write(path string, buffer []byte) {
	if "" == path {
		return
	}

	m.Lock()
	m.recentWrites[path] = time.Now()
	m.Unlock()

	if err := m.fs.WriteBinaryFile(path, buffer); nil != err {
		m.log.Warnf("write: %q error: %s", path, err)
	}
}

func (m *Mirror) read(path string) ([]byte, bool) {
	if "" == path {
		return nil, false
	}
	buffer, err := m.fs.ReadBinaryFile(path)
	if nil != err {
		return nil, false
	}
	return buffer, true
}

func (m *Mirror) remove(path string) {
	if "" == path {
		return
	}
	if err := m.fs.Remove(path); nil != err {
		m.log.Debugf("remove: %q error: %s", path, err)
	}
}

// idFromPath - recover a document id from a blob file name
func idFromPath(path string) string {
	name := filepath.Base(path)
	if !strings.HasSuffix(name, fileExtension) {
		return ""
	}
	return strings.TrimSuffix(name, fileExtension)
}
