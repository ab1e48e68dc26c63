// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2024 Universal Auto Brokers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mirror

import (
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/universalautobrokers/draftstore/background"
)

// ignore watcher events this soon after our own write to the path,
// otherwise every save would evict the buffer the engine just cached
const selfWriteWindow = 2 * time.Second

type watchData struct {
	watcher    *fsnotify.Watcher
	background *background.T
}

type watchProcess struct {
	mirror   *Mirror
	watcher  *fsnotify.Watcher
	onChange func(id string)
}

// StartWatching - report externally modified or removed blobs
//
// the engine uses this to drop stale buffer-cache copies when some
// other process rewrites a mirrored file; watcher failure is logged
// and ignored, the mirror works without it
func (m *Mirror) StartWatching(onChange func(id string)) {
	m.Lock()
	defer m.Unlock()

	if !m.enabled || nil != m.watch {
		return
	}

	watcher, err := fsnotify.NewWatcher()
	if nil != err {
		m.log.Warnf("watcher create error: %s", err)
		return
	}
	if err := watcher.Add(m.blobs); nil != err {
		m.log.Warnf("watcher add: %q error: %s", m.blobs, err)
		watcher.Close()
		return
	}

	process := &watchProcess{
		mirror:   m,
		watcher:  watcher,
		onChange: onChange,
	}
	m.watch = &watchData{
		watcher:    watcher,
		background: background.Start(background.Processes{process}, nil),
	}
	m.log.Infof("watching: %q", m.blobs)
}

// StopWatching - shut down the watcher if one is running
func (m *Mirror) StopWatching() {
	m.Lock()
	watch := m.watch
	m.watch = nil
	m.Unlock()

	if nil == watch {
		return
	}
	watch.watcher.Close()
	watch.background.Stop()
}

// Run - the watcher event loop
func (p *watchProcess) Run(args interface{}, shutdown <-chan struct{}) {
	m := p.mirror
	for {
		select {
		case event, ok := <-p.watcher.Events:
			if !ok {
				return
			}
			if 0 == event.Op&(fsnotify.Write|fsnotify.Remove|fsnotify.Rename) {
				continue
			}
			if m.isSelfWrite(event.Name) {
				continue
			}
			id := idFromPath(event.Name)
			if "" == id {
				continue
			}
			m.log.Infof("external change: %q", id)
			p.onChange(id)

		case err, ok := <-p.watcher.Errors:
			if !ok {
				return
			}
			m.log.Warnf("watcher error: %s", err)

		case <-shutdown:
			return
		}
	}
}

// check whether the engine itself wrote this path moments ago
func (m *Mirror) isSelfWrite(path string) bool {
	m.Lock()
	defer m.Unlock()

	written, ok := m.recentWrites[path]
	if !ok {
		return false
	}
	if time.Since(written) > selfWriteWindow {
		delete(m.recentWrites, path)
		return false
	}
	return true
}
