package main

import (
	"fmt"
	"strings"
	"time"
)

const (
	StatusPending   = "pending"
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Schedule is one stored booking request: book area AreaCode of library
// LibraryCode when the wall clock reaches the scheduled date and time.
type Schedule struct {
	ID            int64     `json:"id"`
	LibraryCode   string    `json:"libraryCode"`
	AreaCode      string    `json:"areaCode"`
	ScheduledDate string    `json:"scheduledDate"`
	ScheduledTime string    `json:"scheduledTime"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"createdAt"`
}

// ParseScheduleAt combines a schedule's date and time-of-day into a wall
// clock instant in the given zone.
// Accepted formats: date "2006-01-02", time "15:04" or "15:04:05".
func ParseScheduleAt(date, timeOfDay string, loc *time.Location) (time.Time, error) {
	date = strings.TrimSpace(date)
	timeOfDay = strings.TrimSpace(timeOfDay)

	d, err := time.Parse("2006-01-02", date)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date '%s'. Use format: YYYY-MM-DD (e.g., 2026-09-01)", date)
	}

	t, err := time.Parse("15:04", timeOfDay)
	if err != nil {
		t, err = time.Parse("15:04:05", timeOfDay)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid time '%s'. Use format: HH:MM (e.g., 09:30)", timeOfDay)
		}
	}

	return time.Date(d.Year(), d.Month(), d.Day(), t.Hour(), t.Minute(), t.Second(), 0, loc), nil
}

// At returns the schedule's trigger instant in the given zone.
func (s Schedule) At(loc *time.Location) (time.Time, error) {
	return ParseScheduleAt(s.ScheduledDate, s.ScheduledTime, loc)
}

// Due reports whether a pending schedule's trigger instant has been
// reached. Rows with unparseable timestamps are never due.
func (s Schedule) Due(now time.Time, loc *time.Location) bool {
	if s.Status != StatusPending {
		return false
	}
	at, err := s.At(loc)
	if err != nil {
		return false
	}
	return !at.After(now)
}

func (s Schedule) Validate() error {
	if s.LibraryCode == "" {
		return fmt.Errorf("library_code required")
	}
	if s.AreaCode == "" {
		return fmt.Errorf("area_code required")
	}
	if _, err := ParseScheduleAt(s.ScheduledDate, s.ScheduledTime, time.UTC); err != nil {
		return err
	}
	return nil
}
