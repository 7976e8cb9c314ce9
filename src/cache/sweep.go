// SPDX-License-Identifier: MIT

package cache

import (
	"github.com/robfig/cron/v3"
)

// Sweeper runs Store.CleanupExpired on a cron schedule using robfig/cron.
type Sweeper struct {
	cron  *cron.Cron
	store *Store
}

// NewSweeper builds a Sweeper; call Start to begin running.
func NewSweeper(store *Store) *Sweeper {
	return &Sweeper{cron: cron.New(), store: store}
}

// Start registers the cleanup job at the configured schedule and starts the
// cron scheduler in its own goroutine.
func (sw *Sweeper) Start(schedule string) error {
	_, err := sw.cron.AddFunc(schedule, func() {
		sw.store.CleanupExpired()
	})
	if err != nil {
		return err
	}
	sw.cron.Start()
	return nil
}

// Stop halts the scheduler, waiting for any in-flight job to finish.
func (sw *Sweeper) Stop() {
	<-sw.cron.Stop().Done()
}
