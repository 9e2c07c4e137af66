package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-rod/rod"
)

// CheckinOutcome is a best-effort observation, not a confirmed transactional
// result: the site only ever signals success with a text affordance.
type CheckinOutcome string

const (
	CheckinDetected    CheckinOutcome = "detected"
	CheckinNotDetected CheckinOutcome = "not-detected"
)

// areaPath is the dotted location path of an area, used in check-in deep
// links. It is the area's seat identity minus the trailing seat number.
func areaPath(area *Area) string {
	if i := strings.LastIndex(area.DefaultSeat, "."); i > 0 {
		return area.DefaultSeat[:i]
	}
	return area.DefaultSeat
}

// deepLinkURL builds a booking's check-in deep link:
// <root>/seatbooking/?loc=<ORG>.<AREA-PATH>.<BOOKING-NUMBER>
// The site auto-processes a visit to it as a check-in.
func deepLinkURL(site SiteConfig, area *Area, bookingNumber string) string {
	return fmt.Sprintf("%s?loc=%s.%s.%s", site.BookingURL, site.OrgCode, areaPath(area), bookingNumber)
}

func checkinOutcome(observed bool) CheckinOutcome {
	if observed {
		return CheckinDetected
	}
	return CheckinNotDetected
}

// RunCheckin authenticates and observes the check-in success affordance,
// either on the my-bookings listing or, when a booking number is given, on
// that booking's deep link. Absence of the affordance within the wait is a
// negative observation, never an error.
func RunCheckin(config *Config, catalog *Catalog, bookingNumber string) (CheckinOutcome, error) {
	lib, err := catalog.Library(config.LibraryCode)
	if err != nil {
		return CheckinNotDetected, err
	}
	area, err := lib.Area(config.AreaCode)
	if err != nil {
		return CheckinNotDetected, err
	}

	session, err := OpenSession(config)
	if err != nil {
		return CheckinNotDetected, err
	}
	if !config.KeepBrowserOpen {
		defer session.Close()
	}

	session.SetLocation(lib)

	target := config.Site.MyBookingsURL
	if bookingNumber != "" {
		target = deepLinkURL(config.Site, area, bookingNumber)
	}

	if err := session.page.Navigate(config.Site.MyBookingsURL); err != nil {
		return CheckinNotDetected, fmt.Errorf("failed to open my bookings: %w", err)
	}
	if err := session.page.WaitLoad(); err != nil {
		return CheckinNotDetected, fmt.Errorf("my bookings did not load: %w", err)
	}

	if target != config.Site.MyBookingsURL {
		fmt.Printf("Navigating to booking deep link %s\n", target)
		if err := session.page.Navigate(target); err != nil {
			return CheckinNotDetected, fmt.Errorf("failed to open deep link: %w", err)
		}
		if err := session.page.WaitLoad(); err != nil {
			return CheckinNotDetected, fmt.Errorf("deep link did not load: %w", err)
		}
	}

	outcome := checkinOutcome(observeSuccessText(session.page, config.Selectors.CheckinSuccessText, config.CheckinWait()))
	if outcome == CheckinDetected {
		fmt.Println("Check-in successful (detected message)")
	} else {
		fmt.Println("Did not detect check-in success message within timeout")
	}
	return outcome, nil
}

// observeSuccessText polls the rendered page text for the success
// affordance until it appears or the wait elapses.
func observeSuccessText(page *rod.Page, text string, wait time.Duration) bool {
	err := waitUntil(wait, time.Second, func() (bool, error) {
		res, err := page.Eval(fmt.Sprintf(`() => document.body.innerText.includes(%q)`, text))
		if err != nil {
			return false, nil
		}
		return res.Value.Bool(), nil
	})
	return err == nil
}
