package main

import (
	"fmt"
	"log"

	"github.com/google/uuid"
)

// Slot is one desired (time, duration) booking attempt. Slots never mutate
// after creation; each attempt either succeeds or is recorded failed.
type Slot struct {
	Time     string
	Duration string
}

// SlotResult is the recorded outcome of one slot attempt.
type SlotResult struct {
	Slot Slot
	Err  error
	Note string
}

func (r SlotResult) Completed() bool { return r.Err == nil }

// runSlots attempts every slot in order and collects one result per slot.
// A failed attempt never prevents the remaining attempts from running.
func runSlots(slots []Slot, attempt func(Slot) (string, error)) []SlotResult {
	results := make([]SlotResult, 0, len(slots))
	for _, slot := range slots {
		note, err := attempt(slot)
		if err != nil {
			log.Printf("slot %s/%smin failed: %v", slot.Time, slot.Duration, err)
		}
		results = append(results, SlotResult{Slot: slot, Err: err, Note: note})
	}
	return results
}

// RunBooking performs one full booking run: resolve the target library and
// area, open an authenticated session, and attempt every configured slot.
// Resolution and credential errors surface before any session is opened.
func RunBooking(config *Config, catalog *Catalog) ([]SlotResult, error) {
	lib, err := catalog.Library(config.LibraryCode)
	if err != nil {
		return nil, err
	}
	area, err := lib.Area(config.AreaCode)
	if err != nil {
		return nil, err
	}
	if err := config.ValidateCredentials(); err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	fmt.Printf("Booking run %s: %s / %s, %d slot(s)\n", runID, lib.Name, area.Name, len(config.BookingTimes))

	session, err := OpenSession(config)
	if err != nil {
		return nil, err
	}
	if !config.KeepBrowserOpen {
		defer session.Close()
	}

	session.SetLocation(lib)

	slots := make([]Slot, 0, len(config.BookingTimes))
	for _, t := range config.BookingTimes {
		slots = append(slots, Slot{Time: t, Duration: config.BookingDuration})
	}

	results := runSlots(slots, func(slot Slot) (string, error) {
		return attemptSlot(session, config, lib, area, slot)
	})

	printRunSummary(runID, results)
	return results, nil
}

// attemptSlot runs the full step state machine for one slot, starting from
// a fresh navigation to the booking entry page so a failed attempt leaves
// nothing behind for the next one.
func attemptSlot(session *Session, config *Config, lib *Library, area *Area, slot Slot) (string, error) {
	fmt.Printf("Attempting slot %s (%s min)\n", slot.Time, slot.Duration)

	if err := session.page.Navigate(config.Site.BookingURL); err != nil {
		return "", fmt.Errorf("failed to open booking page: %w", err)
	}
	if err := session.page.WaitLoad(); err != nil {
		return "", fmt.Errorf("booking page did not load: %w", err)
	}

	steps := newFlowSteps(config, session.page, lib, area)

	if err := steps.selectLibrary(); err != nil {
		return "", err
	}
	if err := steps.selectArea(); err != nil {
		return "", err
	}
	if err := steps.selectDate(); err != nil {
		return "", err
	}
	if err := steps.selectTime(slot.Time); err != nil {
		return "", err
	}
	if err := steps.selectDuration(slot.Duration); err != nil {
		return "", err
	}
	if err := steps.searchAvailability(); err != nil {
		return "", err
	}
	if err := steps.resolveAuthGate(); err != nil {
		return "", err
	}
	if err := steps.confirmSeat(); err != nil {
		return "", err
	}

	return steps.observeConfirmation(), nil
}

func printRunSummary(runID string, results []SlotResult) {
	completed := 0
	fmt.Printf("\nRun %s summary:\n", runID)
	for _, r := range results {
		if r.Completed() {
			completed++
			fmt.Printf("  %s (%s min): completed (%s)\n", r.Slot.Time, r.Slot.Duration, r.Note)
		} else {
			fmt.Printf("  %s (%s min): failed: %v\n", r.Slot.Time, r.Slot.Duration, r.Err)
		}
	}
	fmt.Printf("%d/%d slot(s) completed\n", completed, len(results))
}
