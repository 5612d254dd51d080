package domain

import (
	"fmt"
	"strings"
	"time"
)

// NextDaySuffix marks an arrival time on the day after departure, e.g. "08:00+1".
const NextDaySuffix = "+1"

const clockLayout = "15:04"

// JourneyDuration returns the travel time between two "HH:MM" times.
// An arrival carrying NextDaySuffix is counted on the following day. An
// arrival earlier than departure without the suffix is also treated as
// next-day, matching how the timetable is read by passengers.
func JourneyDuration(departure, arrival string) (time.Duration, error) {
	dep, err := time.Parse(clockLayout, departure)
	if err != nil {
		return 0, fmt.Errorf("departure_time %q: want HH:MM", departure)
	}

	nextDay := strings.HasSuffix(arrival, NextDaySuffix)
	arr, err := time.Parse(clockLayout, strings.TrimSuffix(arrival, NextDaySuffix))
	if err != nil {
		return 0, fmt.Errorf("arrival_time %q: want HH:MM or HH:MM%s", arrival, NextDaySuffix)
	}
	if nextDay || arr.Before(dep) {
		arr = arr.Add(24 * time.Hour)
	}
	return arr.Sub(dep), nil
}

// FormatDuration renders d as "4h 30m", "4h" or "45m".
func FormatDuration(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	switch {
	case hours > 0 && minutes > 0:
		return fmt.Sprintf("%dh %dm", hours, minutes)
	case hours > 0:
		return fmt.Sprintf("%dh", hours)
	default:
		return fmt.Sprintf("%dm", minutes)
	}
}
