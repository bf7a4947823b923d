package app

import (
	"fmt"
	"time"
)

func parseHHMM(s string) (time.Time, error) {
	// Take first 5 chars "HH:MM"
	if len(s) < 5 {
		return time.Time{}, fmt.Errorf("invalid time string: %s", s)
	}
	s = s[:5] // "09:00:00.000000" -> "09:00"
	tt, err := time.Parse("15:04", s)
	if err != nil {
		return time.Time{}, err
	}
	return tt, nil
}

// validHHMM reports whether s is a zero-padded 24h "HH:mm" string.
// Window times must keep this shape; string comparison of times is
// only correct when both sides are fixed-width.
func validHHMM(s string) bool {
	_, err := parseHHMM(s)
	return err == nil && len(s) == 5 && s[2] == ':'
}

// atTimeOfDay anchors an "HH:mm" string onto day's calendar date.
func atTimeOfDay(day time.Time, hhmm string) (time.Time, error) {
	tod, err := parseHHMM(hhmm)
	if err != nil {
		return time.Time{}, err
	}
	year, month, dayNum := day.Date()
	return time.Date(year, month, dayNum, tod.Hour(), tod.Minute(), 0, 0, day.Location()), nil
}

// Overlaps is the half-open interval test [aStart, aEnd) vs [bStart, bEnd).
// Touching endpoints do not overlap. Used both by the suggestion engine's
// conflict filter and by session create/update.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}
