// Package scheduler refreshes the current account on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// runTimeout bounds a single scheduled refresh.
const runTimeout = 10 * time.Minute

// Runner performs one full refresh of the current account.
type Runner interface {
	RefreshCurrent(ctx context.Context) error
}

type Config struct {
	Enabled  bool
	Schedule string
}

// RefreshScheduler runs Runner.RefreshCurrent on a cron schedule. Runs never
// overlap; a tick that fires while a refresh is still going is skipped.
type RefreshScheduler struct {
	runner Runner
	config Config

	cron       *cron.Cron
	entryID    cron.EntryID
	mu         sync.RWMutex
	isRunning  bool
	isSyncing  bool
	cancelFunc context.CancelFunc
	lastErr    error
	lastRunAt  time.Time
}

func NewRefreshScheduler(runner Runner, cfg Config) *RefreshScheduler {
	return &RefreshScheduler{
		runner: runner,
		config: cfg,
		cron:   cron.New(cron.WithParser(parser)),
	}
}

// Start schedules the refresh job. It is a no-op when disabled or already
// running, and stops on its own when ctx is done.
func (s *RefreshScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}
	if !s.config.Enabled {
		log.Printf("[SCHEDULER] Refresh scheduler disabled")
		return nil
	}
	if err := ValidateCronSchedule(s.config.Schedule); err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", s.config.Schedule, err)
	}

	entryID, err := s.cron.AddFunc(s.config.Schedule, s.runRefresh)
	if err != nil {
		return fmt.Errorf("failed to schedule refresh job: %w", err)
	}
	s.entryID = entryID

	var cancelCtx context.Context
	cancelCtx, s.cancelFunc = context.WithCancel(ctx)

	s.cron.Start()
	s.isRunning = true

	nextRun, _ := GetNextRunTime(s.config.Schedule, time.Now())
	log.Printf("[SCHEDULER] Started with schedule '%s' (%s). Next run: %v",
		s.config.Schedule, GetCronDescription(s.config.Schedule), nextRun)

	go func() {
		<-cancelCtx.Done()
		s.Stop()
	}()

	return nil
}

// Stop waits for a running refresh and unschedules the job.
func (s *RefreshScheduler) Stop() {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return
	}
	s.isRunning = false
	cancel, entryID := s.cancelFunc, s.entryID
	s.cancelFunc = nil
	s.mu.Unlock()

	// A running refresh takes s.mu when it finishes, so wait unlocked.
	<-s.cron.Stop().Done()
	s.cron.Remove(entryID)
	if cancel != nil {
		cancel()
	}

	log.Printf("[SCHEDULER] Stopped")
}

// Reschedule restarts the scheduler with a new configuration.
func (s *RefreshScheduler) Reschedule(ctx context.Context, cfg Config) error {
	s.Stop()

	s.mu.Lock()
	s.config = cfg
	s.mu.Unlock()

	return s.Start(ctx)
}

// RunNow triggers a refresh in the background.
func (s *RefreshScheduler) RunNow() {
	go s.runRefresh()
}

func (s *RefreshScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

func (s *RefreshScheduler) IsSyncing() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isSyncing
}

// LastRun returns when the last refresh finished and its error.
func (s *RefreshScheduler) LastRun() (time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastRunAt, s.lastErr
}

// GetNextRunTime returns when the next refresh will occur, or nil when the
// scheduler is not running.
func (s *RefreshScheduler) GetNextRunTime() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return nil
	}
	for _, entry := range s.cron.Entries() {
		if entry.ID == s.entryID {
			t := entry.Next
			return &t
		}
	}
	return nil
}

func (s *RefreshScheduler) runRefresh() {
	s.mu.Lock()
	if s.isSyncing {
		s.mu.Unlock()
		log.Printf("[SCHEDULER] Refresh skipped (already running)")
		return
	}
	s.isSyncing = true
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	start := time.Now()
	err := s.runner.RefreshCurrent(ctx)
	if err != nil {
		log.Printf("[SCHEDULER] Refresh finished with errors in %v: %v", time.Since(start).Round(time.Millisecond), err)
	} else {
		log.Printf("[SCHEDULER] Refresh finished in %v", time.Since(start).Round(time.Millisecond))
	}

	s.mu.Lock()
	s.isSyncing = false
	s.lastErr = err
	s.lastRunAt = time.Now()
	s.mu.Unlock()
}
