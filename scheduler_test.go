package main

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"sync"
	"testing"
	"time"
)

type fakeScheduleSource struct {
	mu        sync.Mutex
	schedules []Schedule
	statuses  map[int64]string
}

func newFakeScheduleSource(schedules ...Schedule) *fakeScheduleSource {
	f := &fakeScheduleSource{schedules: schedules, statuses: map[int64]string{}}
	for _, sc := range schedules {
		f.statuses[sc.ID] = sc.Status
	}
	return f
}

func (f *fakeScheduleSource) ActiveSchedules(ctx context.Context, today string) ([]Schedule, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Schedule
	for _, sc := range f.schedules {
		sc.Status = f.statuses[sc.ID]
		if sc.Status == StatusPending && sc.ScheduledDate >= today {
			out = append(out, sc)
		}
	}
	return out, nil
}

func (f *fakeScheduleSource) ClaimSchedule(ctx context.Context, id int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.statuses[id] != StatusPending {
		return false, nil
	}
	f.statuses[id] = StatusRunning
	return true, nil
}

func (f *fakeScheduleSource) UpdateScheduleStatus(ctx context.Context, id int64, status string) error {
	// Like a real driver, refuse to write on a dead context.
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statuses[id] = status
	return nil
}

func (f *fakeScheduleSource) status(id int64) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.statuses[id]
}

func newTestScheduler(store scheduleSource, now time.Time) *Scheduler {
	config := DefaultConfig()
	catalog, _ := LoadCatalog()
	s := NewScheduler(config, catalog, store, time.UTC)
	s.now = func() time.Time { return now }
	return s
}

func TestSchedulerRunsDueRow(t *testing.T) {
	now := time.Date(2026, time.September, 1, 10, 0, 30, 0, time.UTC)
	store := newFakeScheduleSource(Schedule{
		ID:            7,
		LibraryCode:   "SRPL",
		AreaCode:      "4",
		ScheduledDate: "2026-09-01",
		ScheduledTime: "10:00",
		Status:        StatusPending,
	})

	s := newTestScheduler(store, now)

	var mu sync.Mutex
	var ranLibrary, ranArea string
	s.RunBookingFunc = func(config *Config, catalog *Catalog) ([]SlotResult, error) {
		mu.Lock()
		defer mu.Unlock()
		ranLibrary = config.LibraryCode
		ranArea = config.AreaCode
		return []SlotResult{{Slot: Slot{Time: "11:00", Duration: "30"}}}, nil
	}

	s.tick(context.Background())
	s.wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	if ranLibrary != "SRPL" || ranArea != "4" {
		t.Errorf("run used library %q area %q, want SRPL/4", ranLibrary, ranArea)
	}
	if got := store.status(7); got != StatusCompleted {
		t.Errorf("schedule status = %q, want %q", got, StatusCompleted)
	}
}

func TestSchedulerMarksFailure(t *testing.T) {
	now := time.Date(2026, time.September, 1, 10, 5, 0, 0, time.UTC)
	store := newFakeScheduleSource(Schedule{
		ID:            3,
		LibraryCode:   "SRPL",
		AreaCode:      "4",
		ScheduledDate: "2026-09-01",
		ScheduledTime: "10:00",
		Status:        StatusPending,
	})

	s := newTestScheduler(store, now)
	s.RunBookingFunc = func(config *Config, catalog *Catalog) ([]SlotResult, error) {
		return nil, fmt.Errorf("browser exploded")
	}

	s.tick(context.Background())
	s.wg.Wait()

	if got := store.status(3); got != StatusFailed {
		t.Errorf("schedule status = %q, want %q", got, StatusFailed)
	}
}

func TestSchedulerAllSlotsFailedIsFailed(t *testing.T) {
	now := time.Date(2026, time.September, 1, 10, 5, 0, 0, time.UTC)
	store := newFakeScheduleSource(Schedule{
		ID: 4, LibraryCode: "SRPL", AreaCode: "4",
		ScheduledDate: "2026-09-01", ScheduledTime: "10:00", Status: StatusPending,
	})

	s := newTestScheduler(store, now)
	s.RunBookingFunc = func(config *Config, catalog *Catalog) ([]SlotResult, error) {
		return []SlotResult{{Err: errWaitTimeout}}, nil
	}

	s.tick(context.Background())
	s.wg.Wait()

	if got := store.status(4); got != StatusFailed {
		t.Errorf("schedule status = %q, want %q", got, StatusFailed)
	}
}

func TestSchedulerSkipsFutureRows(t *testing.T) {
	now := time.Date(2026, time.September, 1, 10, 0, 0, 0, time.UTC)
	store := newFakeScheduleSource(Schedule{
		ID:            9,
		LibraryCode:   "SRPL",
		AreaCode:      "4",
		ScheduledDate: "2026-09-02",
		ScheduledTime: "08:00",
		Status:        StatusPending,
	})

	s := newTestScheduler(store, now)
	ran := false
	s.RunBookingFunc = func(config *Config, catalog *Catalog) ([]SlotResult, error) {
		ran = true
		return nil, nil
	}

	s.tick(context.Background())
	s.wg.Wait()

	if ran {
		t.Error("future row should not have been promoted")
	}
	if got := store.status(9); got != StatusPending {
		t.Errorf("future row status changed to %q", got)
	}
}

func TestSchedulerRecordsStatusAfterShutdown(t *testing.T) {
	now := time.Date(2026, time.September, 1, 10, 5, 0, 0, time.UTC)
	store := newFakeScheduleSource(Schedule{
		ID:            1,
		LibraryCode:   "SRPL",
		AreaCode:      "4",
		ScheduledDate: "2026-09-01",
		ScheduledTime: "10:00",
		Status:        StatusPending,
	})

	s := newTestScheduler(store, now)

	// Cancel the run context mid-flight, as a SIGTERM during a booking run
	// does. The terminal status must land regardless.
	ctx, cancel := context.WithCancel(context.Background())
	s.RunBookingFunc = func(config *Config, catalog *Catalog) ([]SlotResult, error) {
		cancel()
		return []SlotResult{{Slot: Slot{Time: "11:00", Duration: "30"}}}, nil
	}

	s.tick(ctx)
	s.wg.Wait()

	if got := store.status(1); got != StatusCompleted {
		t.Errorf("schedule status = %q after shutdown, want %q", got, StatusCompleted)
	}
}

func TestSchedulerLogsDurationFromInjectedClock(t *testing.T) {
	// The injected clock sits in the future relative to the wall clock, so
	// mixing it with the real clock would log a negative elapsed time.
	now := time.Date(2030, time.September, 1, 10, 5, 0, 0, time.UTC)
	store := newFakeScheduleSource(Schedule{
		ID:            2,
		LibraryCode:   "SRPL",
		AreaCode:      "4",
		ScheduledDate: "2030-09-01",
		ScheduledTime: "10:00",
		Status:        StatusPending,
	})

	s := newTestScheduler(store, now)
	s.RunBookingFunc = func(config *Config, catalog *Catalog) ([]SlotResult, error) {
		return []SlotResult{{}}, nil
	}

	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	s.tick(context.Background())
	s.wg.Wait()

	if !strings.Contains(buf.String(), "finished in 0s") {
		t.Errorf("elapsed time not derived from the scheduler clock:\n%s", buf.String())
	}
}

func TestSchedulerFiresRowOnlyOnce(t *testing.T) {
	now := time.Date(2026, time.September, 1, 10, 5, 0, 0, time.UTC)
	store := newFakeScheduleSource(Schedule{
		ID:            5,
		LibraryCode:   "SRPL",
		AreaCode:      "4",
		ScheduledDate: "2026-09-01",
		ScheduledTime: "10:00",
		Status:        StatusPending,
	})

	s := newTestScheduler(store, now)

	var mu sync.Mutex
	runs := 0
	s.RunBookingFunc = func(config *Config, catalog *Catalog) ([]SlotResult, error) {
		mu.Lock()
		runs++
		mu.Unlock()
		return []SlotResult{{}}, nil
	}

	s.tick(context.Background())
	s.wg.Wait()
	s.tick(context.Background())
	s.wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	if runs != 1 {
		t.Errorf("row fired %d times, want exactly once", runs)
	}
}
