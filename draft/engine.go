// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2024 Universal Auto Brokers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package draft

import (
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/bitmark-inc/logger"

	"github.com/universalautobrokers/draftstore/background"
	"github.com/universalautobrokers/draftstore/cache"
	"github.com/universalautobrokers/draftstore/fault"
	"github.com/universalautobrokers/draftstore/mirror"
	"github.com/universalautobrokers/draftstore/storage"
)

// engine defaults
const (
	DefaultQuotaMaximumBytes  = 100 * 1024 * 1024
	DefaultMaximumVersions    = 5
	DefaultMaximumChanges     = 100
	DefaultRetentionDays      = 30
	DefaultChangeHistoryLimit = 50
	DefaultJanitorInterval    = time.Hour

	// routine full-store quota sweeps are throttled to this rate;
	// lifecycle operations force a sweep regardless
	quotaSweepInterval = 30 * time.Second
)

// Config - engine construction parameters
//
// the mirror handle is optional; a nil mirror runs the engine on the
// record store and buffer cache alone
type Config struct {
	DatabaseDirectory string
	Mirror            *mirror.Mirror
	CacheMaximumBytes uint64
	QuotaMaximumBytes uint64
	MaximumVersions   int
	MaximumChanges    int
	RetentionDays     int
	JanitorInterval   time.Duration // 0 selects the default, negative disables
	WatchMirror       bool
}

// initialisation states
type initState int

const (
	stateUninitialised initState = iota
	stateInitialising
	stateReady
)

// DraftEngine - one draft store instance
//
// all mutating operations are serialised under the engine lock, so a
// version number computed from a prior read can never be assigned
// twice even with concurrent callers
type DraftEngine struct {
	sync.RWMutex

	log     *logger.L
	cfg     Config
	buffers *cache.BufferCache
	store   *storage.Store
	mirror  *mirror.Mirror
	limiter *rate.Limiter
	janitor *background.T

	// one-shot initialisation barrier
	initLock sync.Mutex
	state    initState
	initDone chan struct{}
	initErr  error
}

// New - create an engine instance
//
// the instance is inert until Initialise is called
func New(cfg Config) (*DraftEngine, error) {
	if "" == cfg.DatabaseDirectory {
		return nil, fault.ErrRequiredDataDirectory
	}
	if 0 == cfg.QuotaMaximumBytes {
		cfg.QuotaMaximumBytes = DefaultQuotaMaximumBytes
	}
	if cfg.MaximumVersions <= 0 {
		cfg.MaximumVersions = DefaultMaximumVersions
	}
	if cfg.MaximumChanges <= 0 {
		cfg.MaximumChanges = DefaultMaximumChanges
	}
	if cfg.RetentionDays <= 0 {
		cfg.RetentionDays = DefaultRetentionDays
	}
	if 0 == cfg.JanitorInterval {
		cfg.JanitorInterval = DefaultJanitorInterval
	}

	return &DraftEngine{
		log:     logger.New("draft"),
		cfg:     cfg,
		buffers: cache.New(cfg.CacheMaximumBytes),
		mirror:  cfg.Mirror,
		limiter: rate.NewLimiter(rate.Every(quotaSweepInterval), 1),
	}, nil
}

// Initialise - one-shot engine start
//
// opens the record store, ensures the mirror directories and runs a
// startup cleanup pass; concurrent callers during initialisation all
// wait for the one in-flight attempt and share its result; calling
// again after success is a no-op
func (e *DraftEngine) Initialise() error {
	e.initLock.Lock()
	switch e.state {
	case stateReady:
		e.initLock.Unlock()
		return nil
	case stateInitialising:
		done := e.initDone
		e.initLock.Unlock()
		<-done
		return e.initErr
	}
	e.state = stateInitialising
	e.initDone = make(chan struct{})
	e.initLock.Unlock()

	err := e.initialise()

	e.initLock.Lock()
	e.initErr = err
	if nil == err {
		e.state = stateReady
	} else {
		e.state = stateUninitialised
	}
	close(e.initDone)
	e.initLock.Unlock()
	return err
}

// internal initialisation, runs at most once at a time
func (e *DraftEngine) initialise() error {
	e.log.Info("starting…")

	store, err := storage.Initialise(e.cfg.DatabaseDirectory, storage.ReadWrite)
	if nil != err {
		return err
	}

	e.Lock()
	e.store = store

	if nil != e.mirror {
		e.mirror.EnsureDirs()
		if e.cfg.WatchMirror {
			e.mirror.StartWatching(func(id string) {
				e.buffers.Evict(id)
			})
		}
	}

	// startup pass: expired finalized drafts go first, then the
	// quota is re-evaluated against whatever survived
	removed := e.cleanupOldDrafts(e.cfg.RetentionDays)
	e.recomputeMetadata(time.Now())
	e.enforceQuota()
	e.Unlock()

	if removed > 0 {
		e.log.Infof("startup cleanup removed %d drafts", removed)
	}

	if e.cfg.JanitorInterval > 0 {
		e.janitor = background.Start(background.Processes{
			&janitorProcess{engine: e},
		}, e.cfg.JanitorInterval)
	}

	e.log.Info("ready")
	return nil
}

// Finalise - stop background work and close the store
func (e *DraftEngine) Finalise() error {
	e.initLock.Lock()
	if stateReady != e.state {
		e.initLock.Unlock()
		return fault.ErrNotInitialised
	}
	e.state = stateUninitialised
	e.initLock.Unlock()

	if nil != e.janitor {
		e.janitor.Stop()
		e.janitor = nil
	}
	if nil != e.mirror {
		e.mirror.StopWatching()
	}

	e.Lock()
	e.store.Finalise()
	e.store = nil
	e.Unlock()

	e.buffers.Clear()
	e.log.Info("finished")
	return nil
}

// guard for all public operations
func (e *DraftEngine) isReady() error {
	e.initLock.Lock()
	defer e.initLock.Unlock()
	if stateReady != e.state {
		return fault.ErrNotInitialised
	}
	return nil
}
