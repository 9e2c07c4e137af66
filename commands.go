package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newBookCmd() *cobra.Command {
	var (
		libraryCode string
		areaCode    string
		times       []string
		duration    string
		headful     bool
	)

	cmd := &cobra.Command{
		Use:   "book",
		Short: "Run one booking pass over the configured time slots",
		RunE: func(cmd *cobra.Command, args []string) error {
			config, catalog, err := loadRunConfig()
			if err != nil {
				return err
			}

			if libraryCode != "" {
				config.LibraryCode = libraryCode
			}
			if areaCode != "" {
				config.AreaCode = areaCode
			}
			if len(times) > 0 {
				config.BookingTimes = times
			}
			if duration != "" {
				config.BookingDuration = duration
			}
			if headful {
				config.Headless = false
			}

			results, err := RunBooking(config, catalog)
			if err != nil {
				return err
			}
			if !anyCompleted(results) {
				return fmt.Errorf("no slot completed")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&libraryCode, "library", "", "Library code (overrides config)")
	cmd.Flags().StringVar(&areaCode, "area", "", "Area code (overrides config)")
	cmd.Flags().StringSliceVar(&times, "times", nil, "Time slots to book, e.g. --times 11:00,11:45")
	cmd.Flags().StringVar(&duration, "duration", "", "Booking duration in minutes")
	cmd.Flags().BoolVar(&headful, "headful", false, "Show the browser window")

	return cmd
}

func newCheckinCmd() *cobra.Command {
	var (
		libraryCode   string
		areaCode      string
		bookingNumber string
		headful       bool
	)

	cmd := &cobra.Command{
		Use:   "checkin",
		Short: "Check in for an existing booking and report the observed outcome",
		RunE: func(cmd *cobra.Command, args []string) error {
			config, catalog, err := loadRunConfig()
			if err != nil {
				return err
			}

			if libraryCode != "" {
				config.LibraryCode = libraryCode
			}
			if areaCode != "" {
				config.AreaCode = areaCode
			}
			if headful {
				config.Headless = false
			}

			outcome, err := RunCheckin(config, catalog, bookingNumber)
			if err != nil {
				return err
			}
			fmt.Printf("Check-in outcome: %s\n", outcome)
			return nil
		},
	}

	cmd.Flags().StringVar(&libraryCode, "library", "", "Library code (overrides config)")
	cmd.Flags().StringVar(&areaCode, "area", "", "Area code (overrides config)")
	cmd.Flags().StringVar(&bookingNumber, "booking-number", "", "Booking number for the check-in deep link; empty uses the my-bookings listing")
	cmd.Flags().BoolVar(&headful, "headful", false, "Show the browser window")

	return cmd
}
