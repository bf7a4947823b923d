package app

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"
)

const (
	slotStep = 30 * time.Minute

	// Fallback window used for days with no availability at all, so
	// suggestions are always possible.
	defaultWindowStart = "06:00"
	defaultWindowEnd   = "22:00"

	minSpacingGap  = 2 * time.Hour
	scoreThreshold = 30.0
	maxSuggestions = 10

	highPriority = 4
)

// ScoringWeights holds the relative weight of each scoring factor.
// The factors each produce 0-100; the total is their weighted sum.
type ScoringWeights struct {
	Spacing      float64
	Priority     float64
	DayLoad      float64
	Availability float64
	Fatigue      float64
}

var DefaultScoringWeights = ScoringWeights{
	Spacing:      0.30,
	Priority:     0.15,
	DayLoad:      0.20,
	Availability: 0.25,
	Fatigue:      0.10,
}

// GenerateSuggestions proposes up to ten ranked time slots for a session type
// over the next lookAheadDays days, starting from now's calendar day.
//
// It is a pure function: all state comes in as arguments (now included, so
// tests can pin it) and no input combination produces an error. Missing data
// degrades to neutral scoring instead of failing.
func GenerateSuggestions(now time.Time, st SessionType, existing []Session, windows []AvailabilityWindow, durationMins, lookAheadDays int) []SessionSuggestion {
	return GenerateSuggestionsWeighted(now, st, existing, windows, durationMins, lookAheadDays, DefaultScoringWeights)
}

func GenerateSuggestionsWeighted(now time.Time, st SessionType, existing []Session, windows []AvailabilityWindow, durationMins, lookAheadDays int, weights ScoringWeights) []SessionSuggestion {
	dur := time.Duration(durationMins) * time.Minute
	year, month, dayNum := now.Date()
	firstDay := time.Date(year, month, dayNum, 0, 0, 0, 0, now.Location())

	var out []SessionSuggestion
	for offset := 0; offset < lookAheadDays; offset++ {
		day := firstDay.AddDate(0, 0, offset)
		dayWindows := windowsForDay(windows, int(day.Weekday()))

		walk := dayWindows
		if len(walk) == 0 {
			walk = []AvailabilityWindow{{
				DayOfWeek: int(day.Weekday()),
				StartTime: defaultWindowStart,
				EndTime:   defaultWindowEnd,
			}}
		}

		for _, w := range walk {
			winStart, err := atTimeOfDay(day, w.StartTime)
			if err != nil {
				continue
			}
			winEnd, err := atTimeOfDay(day, w.EndTime)
			if err != nil {
				continue
			}
			for s := winStart; !s.Add(dur).After(winEnd); s = s.Add(slotStep) {
				e := s.Add(dur)
				if conflictsAny(s, e, existing) {
					continue
				}
				score := scoreSlot(st, existing, dayWindows, s, e, weights)
				if score < scoreThreshold {
					continue
				}
				out = append(out, SessionSuggestion{
					SessionTypeID: st.ID,
					StartTime:     s,
					EndTime:       e,
					Score:         score,
				})
			}
		}
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if len(out) > maxSuggestions {
		out = out[:maxSuggestions]
	}
	for i := range out {
		out[i].Reason = buildReason(st, existing, out[i].StartTime)
	}
	return out
}

func windowsForDay(windows []AvailabilityWindow, dayOfWeek int) []AvailabilityWindow {
	var out []AvailabilityWindow
	for _, w := range windows {
		if w.DayOfWeek == dayOfWeek {
			out = append(out, w)
		}
	}
	return out
}

func conflictsAny(start, end time.Time, existing []Session) bool {
	for _, s := range existing {
		if Overlaps(start, end, s.StartTime, s.EndTime) {
			return true
		}
	}
	return false
}

func scoreSlot(st SessionType, existing []Session, dayWindows []AvailabilityWindow, start, end time.Time, w ScoringWeights) float64 {
	total := w.Spacing*spacingScore(existing, start, end) +
		w.Priority*priorityScore(st.Priority) +
		w.DayLoad*dayLoadScore(existing, start) +
		w.Availability*availabilityScore(dayWindows, start, end) +
		w.Fatigue*fatigueScore(st, existing, start)
	return math.Round(total*10) / 10
}

// spacingScore rewards distance from the nearest existing session. Gaps
// under two hours score zero; gaps of a day or more saturate at 100.
func spacingScore(existing []Session, start, end time.Time) float64 {
	if len(existing) == 0 {
		return 100
	}
	minGap := time.Duration(-1)
	for _, s := range existing {
		if start.After(s.EndTime) {
			if g := start.Sub(s.EndTime); minGap < 0 || g < minGap {
				minGap = g
			}
		}
		if end.Before(s.StartTime) {
			if g := s.StartTime.Sub(end); minGap < 0 || g < minGap {
				minGap = g
			}
		}
	}
	if minGap < 0 {
		return 100
	}
	if minGap < minSpacingGap {
		return 0
	}
	score := minGap.Hours() / 24 * 100
	if score > 100 {
		return 100
	}
	return score
}

func priorityScore(priority int) float64 {
	return float64(priority) / 5 * 100
}

// dayLoadScore penalizes days that already carry sessions. Four or more
// sessions on the candidate's day is a heavy penalty.
func dayLoadScore(existing []Session, start time.Time) float64 {
	year, month, dayNum := start.Date()
	dayStart := time.Date(year, month, dayNum, 0, 0, 0, 0, start.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	count := 0
	for _, s := range existing {
		if !s.StartTime.Before(dayStart) && s.StartTime.Before(dayEnd) {
			count++
		}
	}
	if count >= 4 {
		return 20
	}
	return float64(100 - count*15)
}

// availabilityScore checks the candidate against that weekday's real
// windows (not the synthesized fallback): fully inside one scores 100,
// straddling a boundary 50, outside all of them 0. With no windows for
// the weekday the factor is neutral.
func availabilityScore(dayWindows []AvailabilityWindow, start, end time.Time) float64 {
	if len(dayWindows) == 0 {
		return 50
	}
	s := start.Format("15:04")
	e := end.Format("15:04")
	for _, w := range dayWindows {
		if w.StartTime <= s && e <= w.EndTime {
			return 100
		}
	}
	for _, w := range dayWindows {
		if s < w.EndTime && w.StartTime < e {
			return 50
		}
	}
	return 0
}

// fatigueScore only constrains high-priority session types: it looks at how
// many other high-priority sessions start within two days of the candidate.
func fatigueScore(st SessionType, existing []Session, start time.Time) float64 {
	if st.Priority < highPriority {
		return 100
	}
	lo := start.Add(-48 * time.Hour)
	hi := start.Add(48 * time.Hour)
	count := 0
	for _, s := range existing {
		if s.SessionType.Priority >= highPriority && !s.StartTime.Before(lo) && !s.StartTime.After(hi) {
			count++
		}
	}
	switch {
	case count >= 3:
		return 30
	case count == 2:
		return 60
	default:
		return 100
	}
}

func buildReason(st SessionType, existing []Session, start time.Time) string {
	var parts []string

	var last *Session
	for i := range existing {
		if existing[i].SessionTypeID != st.ID {
			continue
		}
		if last == nil || existing[i].StartTime.After(last.StartTime) {
			last = &existing[i]
		}
	}
	if last == nil {
		parts = append(parts, "First session of this type")
	} else {
		gap := start.Sub(last.EndTime)
		if gap >= 24*time.Hour {
			parts = append(parts, fmt.Sprintf("Good spacing (%.1f days since last %s)", gap.Hours()/24, st.Name))
		} else {
			parts = append(parts, fmt.Sprintf("Good spacing (%.1f hours since last %s)", gap.Hours(), st.Name))
		}
	}

	switch h := start.Hour(); {
	case h >= 6 && h < 12:
		parts = append(parts, "Uses your morning focus window")
	case h >= 18 && h < 22:
		parts = append(parts, "Uses your evening focus window")
	}

	if st.Priority >= highPriority {
		parts = append(parts, "High priority session")
	}

	if len(parts) == 0 {
		return "Good time slot available"
	}
	return strings.Join(parts, ". ")
}
