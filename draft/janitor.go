// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2024 Universal Auto Brokers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package draft

import (
	"time"
)

// janitorProcess - periodic retention and quota sweep
type janitorProcess struct {
	engine *DraftEngine
}

// Run - the sweep loop; args is the sweep interval
func (j *janitorProcess) Run(args interface{}, shutdown <-chan struct{}) {
	e := j.engine
	interval := args.(time.Duration)

	e.log.Infof("janitor started, interval: %s", interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

loop:
	for {
		select {
		case <-shutdown:
			break loop

		case <-ticker.C:
			removed, err := e.CleanupOldDrafts(0)
			if nil != err {
				e.log.Errorf("janitor cleanup error: %s", err)
				continue loop
			}
			if removed > 0 {
				e.log.Infof("janitor removed %d drafts", removed)
			}
			if err := e.EnforceQuota(); nil != err {
				e.log.Errorf("janitor quota error: %s", err)
			}
		}
	}
	e.log.Info("janitor stopped")
}
