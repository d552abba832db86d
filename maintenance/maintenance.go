// Package maintenance runs the shell's periodic housekeeping: scheduled
// database backups that stand down once shutdown has been requested.
package maintenance

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/km-arc/go-hosting/framework/host"
	"github.com/km-arc/go-hosting/storage"
)

// Scheduler owns the cron loop for periodic backups.
type Scheduler struct {
	cron *cron.Cron
	db   *storage.Database
	dir  string
	app  *host.Context
	log  *zap.Logger

	mu      sync.Mutex
	lastRun time.Time
	runs    int
}

// New builds a scheduler that backs up db into dir on the given cron spec
// (standard five-field syntax, e.g. "0 3 * * *" for nightly at 03:00).
func New(db *storage.Database, dir, spec string, app *host.Context, log *zap.Logger) (*Scheduler, error) {
	s := &Scheduler{
		cron: cron.New(cron.WithChain(cron.Recover(cron.DefaultLogger))),
		db:   db,
		dir:  dir,
		app:  app,
		log:  log,
	}
	if _, err := s.cron.AddFunc(spec, s.run); err != nil {
		return nil, fmt.Errorf("maintenance: schedule %q: %w", spec, err)
	}
	return s, nil
}

// Start launches the cron loop in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info("maintenance scheduler started", zap.String("dir", s.dir))
}

// Stop halts the loop and waits for a running job to finish. Suitable for the
// teardown ledger.
func (s *Scheduler) Stop() error {
	<-s.cron.Stop().Done()
	s.log.Info("maintenance scheduler stopped")
	return nil
}

// BackupNow takes an immediate backup outside the schedule, with the same
// quitting suppression as the cron job.
func (s *Scheduler) BackupNow() {
	s.run()
}

// Runs reports how many backups have been taken.
func (s *Scheduler) Runs() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runs
}

// run takes one backup. New work is suppressed once the shell is quitting;
// disposal handles the database from here.
func (s *Scheduler) run() {
	if s.app.Quitting() {
		s.log.Debug("skipping backup, shell is quitting")
		return
	}

	if _, err := s.db.Backup(context.Background(), s.dir); err != nil {
		s.log.Warn("scheduled backup failed", zap.Error(err))
		return
	}

	s.mu.Lock()
	s.lastRun = time.Now()
	s.runs++
	s.mu.Unlock()
}
