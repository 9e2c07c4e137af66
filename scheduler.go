package main

import (
	"context"
	"log"
	"sync"
	"time"
)

// scheduleSource is the slice of the store the scheduler needs.
type scheduleSource interface {
	ActiveSchedules(ctx context.Context, today string) ([]Schedule, error)
	ClaimSchedule(ctx context.Context, id int64) (bool, error)
	UpdateScheduleStatus(ctx context.Context, id int64, status string) error
}

// Scheduler promotes due pending schedule rows into one-shot booking runs.
// It ticks at minute granularity; each claimed row runs in its own
// goroutine with its own browser session. Distinct rows may run
// concurrently, a single row fires at most once.
type Scheduler struct {
	Config   *Config
	Catalog  *Catalog
	Store    scheduleSource
	Interval time.Duration
	Location *time.Location

	// RunBookingFunc is swapped out in tests.
	RunBookingFunc func(config *Config, catalog *Catalog) ([]SlotResult, error)

	now func() time.Time
	wg  sync.WaitGroup
}

func NewScheduler(config *Config, catalog *Catalog, store scheduleSource, loc *time.Location) *Scheduler {
	return &Scheduler{
		Config:         config,
		Catalog:        catalog,
		Store:          store,
		Interval:       time.Minute,
		Location:       loc,
		RunBookingFunc: RunBooking,
		now:            time.Now,
	}
}

func (s *Scheduler) Run(ctx context.Context) error {
	t := time.NewTicker(s.Interval)
	defer t.Stop()

	// kick immediately
	s.tick(ctx)

	for {
		select {
		case <-ctx.Done():
			s.wg.Wait()
			return ctx.Err()
		case <-t.C:
			s.tick(ctx)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	now := s.now().In(s.Location)
	today := now.Format("2006-01-02")

	schedules, err := s.Store.ActiveSchedules(ctx, today)
	if err != nil {
		log.Printf("scheduler: active schedules query failed: %v", err)
		return
	}

	for _, sc := range schedules {
		if !sc.Due(now, s.Location) {
			continue
		}

		claimed, err := s.Store.ClaimSchedule(ctx, sc.ID)
		if err != nil {
			log.Printf("scheduler: claim of schedule %d failed: %v", sc.ID, err)
			continue
		}
		if !claimed {
			continue
		}

		sc := sc
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.runSchedule(sc)
		}()
	}
}

func (s *Scheduler) runSchedule(sc Schedule) {
	log.Printf("scheduler: executing schedule %d (%s %s, library %s area %s)",
		sc.ID, sc.ScheduledDate, sc.ScheduledTime, sc.LibraryCode, sc.AreaCode)

	// Each run gets its own config copy so concurrent rows with different
	// targets never share state, and its own session underneath.
	cfg := *s.Config
	cfg.LibraryCode = sc.LibraryCode
	cfg.AreaCode = sc.AreaCode

	started := s.now()
	results, err := s.RunBookingFunc(&cfg, s.Catalog)
	elapsed := s.now().Sub(started).Round(time.Second)

	status := StatusCompleted
	if err != nil || !anyCompleted(results) {
		status = StatusFailed
	}
	if err != nil {
		log.Printf("scheduler: schedule %d failed after %s: %v", sc.ID, elapsed, err)
	} else {
		log.Printf("scheduler: schedule %d finished in %s: %s", sc.ID, elapsed, status)
	}

	// The run context is cancelled during graceful shutdown while in-flight
	// rows drain; the terminal status write must still land or the row is
	// stranded in "running" forever. Write on a detached context.
	writeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.Store.UpdateScheduleStatus(writeCtx, sc.ID, status); err != nil {
		log.Printf("scheduler: failed to record status of schedule %d: %v", sc.ID, err)
	}
}

func anyCompleted(results []SlotResult) bool {
	for _, r := range results {
		if r.Completed() {
			return true
		}
	}
	return false
}
