package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/akhil1198/ER/internal/application/port"
)

// DefaultSweepSchedule runs the sweep every five minutes
const DefaultSweepSchedule = "*/5 * * * *"

// SweeperConfig configures a SessionSweeper
type SweeperConfig struct {
	Schedule    string
	IdleTimeout time.Duration
	Location    *time.Location
}

// SessionSweeper deletes sessions idle for longer than the timeout on a
// cron schedule
type SessionSweeper struct {
	store    port.SessionStore
	schedule string
	idle     time.Duration
	location *time.Location
	logger   *zap.Logger
	now      func() time.Time

	mu   sync.Mutex
	cron *cron.Cron
	ctx  context.Context
}

var _ Worker = (*SessionSweeper)(nil)

// NewSessionSweeper creates a new SessionSweeper
func NewSessionSweeper(store port.SessionStore, cfg SweeperConfig, logger *zap.Logger) *SessionSweeper {
	schedule := cfg.Schedule
	if schedule == "" {
		schedule = DefaultSweepSchedule
	}
	idle := cfg.IdleTimeout
	if idle <= 0 {
		idle = 30 * time.Minute
	}
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	return &SessionSweeper{
		store:    store,
		schedule: schedule,
		idle:     idle,
		location: loc,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *SessionSweeper) Name() string {
	return "session-sweeper"
}

// Start schedules the sweep. It returns an error for an invalid schedule.
func (s *SessionSweeper) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron != nil {
		return fmt.Errorf("%s already started", s.Name())
	}

	c := cron.New(cron.WithLocation(s.location))
	if _, err := c.AddFunc(s.schedule, s.run); err != nil {
		return fmt.Errorf("unable to schedule session sweep: %w", err)
	}

	s.ctx = ctx
	s.cron = c
	c.Start()

	s.logger.Info("Session sweeper scheduled",
		zap.String("schedule", s.schedule),
		zap.Duration("idle_timeout", s.idle))
	return nil
}

// Stop waits for a running sweep to finish
func (s *SessionSweeper) Stop() error {
	s.mu.Lock()
	c := s.cron
	s.cron = nil
	s.mu.Unlock()

	if c == nil {
		return nil
	}
	<-c.Stop().Done()
	return nil
}

func (s *SessionSweeper) run() {
	s.mu.Lock()
	ctx := s.ctx
	s.mu.Unlock()
	if ctx == nil || ctx.Err() != nil {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()

	if _, err := s.Sweep(ctx); err != nil {
		s.logger.Error("Session sweep failed", zap.Error(err))
	}
}

// Sweep deletes every idle session and returns how many were removed. A
// failed delete is logged and the sweep continues.
func (s *SessionSweeper) Sweep(ctx context.Context) (int, error) {
	cutoff := s.now().Add(-s.idle)

	ids, err := s.store.ListIdle(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("list idle sessions: %w", err)
	}

	removed := 0
	for _, id := range ids {
		if err := s.store.Delete(ctx, id); err != nil {
			s.logger.Error("Failed to delete idle session",
				zap.String("session_id", id),
				zap.Error(err))
			continue
		}
		removed++
	}

	if removed > 0 {
		s.logger.Info("Idle sessions removed",
			zap.Int("removed", removed),
			zap.Time("cutoff", cutoff))
	}
	return removed, nil
}
