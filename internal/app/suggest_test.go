package app

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mondayMorning is a fixed "now": Monday 2025-01-06 08:00 UTC.
func mondayMorning() time.Time {
	return time.Date(2025, time.January, 6, 8, 0, 0, 0, time.UTC)
}

func testType(priority int) SessionType {
	return SessionType{ID: "type-1", Name: "Deep Work", Category: "focus", Priority: priority}
}

func sessionAt(typeID string, priority int, start time.Time, d time.Duration) Session {
	return Session{
		ID:            fmt.Sprintf("s-%d", start.Unix()),
		SessionTypeID: typeID,
		SessionType:   SessionType{ID: typeID, Name: "Deep Work", Priority: priority},
		StartTime:     start,
		EndTime:       start.Add(d),
	}
}

func TestGenerateSuggestions_FallbackWindowAlwaysSuggests(t *testing.T) {
	got := GenerateSuggestions(mondayMorning(), testType(3), nil, nil, 60, 7)

	require.NotEmpty(t, got, "no availability and no sessions must still produce suggestions")
	assert.LessOrEqual(t, len(got), 10)
	for i, s := range got {
		assert.GreaterOrEqual(t, s.Score, 30.0)
		assert.Equal(t, "type-1", s.SessionTypeID)
		assert.Equal(t, s.StartTime.Add(time.Hour), s.EndTime)
		if i > 0 {
			assert.LessOrEqual(t, s.Score, got[i-1].Score, "suggestions must be sorted by score descending")
		}
		// fallback window is 06:00-22:00
		assert.GreaterOrEqual(t, s.StartTime.Hour(), 6)
	}
}

func TestGenerateSuggestions_ZeroLookAhead(t *testing.T) {
	got := GenerateSuggestions(mondayMorning(), testType(3), nil, nil, 60, 0)
	assert.Empty(t, got)
}

func TestGenerateSuggestions_Deterministic(t *testing.T) {
	now := mondayMorning()
	existing := []Session{
		sessionAt("type-1", 3, now.Add(2*time.Hour), time.Hour),
		sessionAt("type-2", 5, now.Add(26*time.Hour), 90*time.Minute),
	}
	windows := []AvailabilityWindow{
		{ID: "w1", DayOfWeek: 1, StartTime: "09:00", EndTime: "17:00"},
		{ID: "w2", DayOfWeek: 3, StartTime: "18:00", EndTime: "21:00"},
	}

	first := GenerateSuggestions(now, testType(4), existing, windows, 60, 7)
	second := GenerateSuggestions(now, testType(4), existing, windows, 60, 7)
	assert.Equal(t, first, second)
}

func TestGenerateSuggestions_NeverOverlapsExisting(t *testing.T) {
	now := mondayMorning()
	var existing []Session
	for day := 0; day < 7; day++ {
		start := time.Date(2025, time.January, 6+day, 10, 0, 0, 0, time.UTC)
		existing = append(existing, sessionAt("type-2", 3, start, 2*time.Hour))
	}

	got := GenerateSuggestions(now, testType(3), existing, nil, 60, 7)
	for _, sugg := range got {
		for _, s := range existing {
			assert.False(t, Overlaps(sugg.StartTime, sugg.EndTime, s.StartTime, s.EndTime),
				"suggestion %v overlaps session %v", sugg.StartTime, s.StartTime)
		}
	}
}

func TestGenerateSuggestions_MondayWindow(t *testing.T) {
	windows := []AvailabilityWindow{
		{ID: "w1", DayOfWeek: 1, StartTime: "09:00", EndTime: "17:00"},
	}

	got := GenerateSuggestions(mondayMorning(), testType(5), nil, windows, 60, 7)
	require.NotEmpty(t, got)
	for _, s := range got {
		if s.StartTime.Weekday() != time.Monday {
			continue
		}
		assert.GreaterOrEqual(t, s.StartTime.Hour(), 9)
		assert.True(t, !s.EndTime.After(time.Date(2025, time.January, 6, 17, 0, 0, 0, time.UTC)),
			"Monday slot %v must end inside the 09:00-17:00 window", s.StartTime)
	}
}

func TestGenerateSuggestions_MultipleWindowsPerDay(t *testing.T) {
	// Two Monday windows contribute slots independently.
	windows := []AvailabilityWindow{
		{ID: "w1", DayOfWeek: 1, StartTime: "09:00", EndTime: "10:00"},
		{ID: "w2", DayOfWeek: 1, StartTime: "14:00", EndTime: "15:00"},
	}

	got := GenerateSuggestions(mondayMorning(), testType(3), nil, windows, 60, 1)
	require.Len(t, got, 2)
	hours := []int{got[0].StartTime.Hour(), got[1].StartTime.Hour()}
	assert.ElementsMatch(t, []int{9, 14}, hours)
}

func TestGenerateSuggestions_CapsAtTen(t *testing.T) {
	got := GenerateSuggestions(mondayMorning(), testType(5), nil, nil, 30, 7)
	assert.Len(t, got, 10)
}

// --- individual factors ---

func TestSpacingScore(t *testing.T) {
	base := mondayMorning()
	anchor := []Session{sessionAt("type-1", 3, base, time.Hour)} // 08:00-09:00

	tests := []struct {
		name  string
		start time.Time
		want  float64
	}{
		{"no sessions give a perfect score", time.Time{}, 100},
		{"one hour gap hits the floor", base.Add(2 * time.Hour), 0},
		{"twelve hour gap scores half", base.Add(13 * time.Hour), 50},
		{"full day gap saturates", base.Add(40 * time.Hour), 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			existing := anchor
			if tt.start.IsZero() {
				got := spacingScore(nil, base, base.Add(time.Hour))
				assert.Equal(t, tt.want, got)
				return
			}
			got := spacingScore(existing, tt.start, tt.start.Add(time.Hour))
			assert.InDelta(t, tt.want, got, 0.01)
		})
	}
}

func TestSpacingScore_TouchingEndpointIgnored(t *testing.T) {
	base := mondayMorning()
	existing := []Session{sessionAt("type-1", 3, base, time.Hour)}
	// Candidate starts exactly when the session ends: no positive gap in
	// either direction, so the factor stays neutral-high.
	got := spacingScore(existing, base.Add(time.Hour), base.Add(2*time.Hour))
	assert.Equal(t, 100.0, got)
}

func TestPriorityScore(t *testing.T) {
	assert.Equal(t, 20.0, priorityScore(1))
	assert.Equal(t, 60.0, priorityScore(3))
	assert.Equal(t, 100.0, priorityScore(5))
}

func TestDayLoadScore(t *testing.T) {
	day := time.Date(2025, time.January, 8, 0, 0, 0, 0, time.UTC)
	var existing []Session
	mk := func(n int) []Session {
		out := make([]Session, 0, n)
		for i := 0; i < n; i++ {
			out = append(out, sessionAt("type-2", 3, day.Add(time.Duration(i+8)*time.Hour), 30*time.Minute))
		}
		return out
	}

	assert.Equal(t, 100.0, dayLoadScore(existing, day.Add(9*time.Hour)))
	assert.Equal(t, 70.0, dayLoadScore(mk(2), day.Add(20*time.Hour)))
	assert.Equal(t, 55.0, dayLoadScore(mk(3), day.Add(20*time.Hour)))
	assert.Equal(t, 20.0, dayLoadScore(mk(4), day.Add(20*time.Hour)))
	// sessions on other days do not count
	assert.Equal(t, 100.0, dayLoadScore(mk(4), day.AddDate(0, 0, 1).Add(9*time.Hour)))
}

func TestAvailabilityScore(t *testing.T) {
	windows := []AvailabilityWindow{{DayOfWeek: 1, StartTime: "09:00", EndTime: "12:00"}}
	day := time.Date(2025, time.January, 6, 0, 0, 0, 0, time.UTC)

	at := func(h, m int) time.Time { return day.Add(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute) }

	assert.Equal(t, 50.0, availabilityScore(nil, at(9, 0), at(10, 0)), "no windows is neutral")
	assert.Equal(t, 100.0, availabilityScore(windows, at(9, 0), at(10, 0)), "fully inside")
	assert.Equal(t, 100.0, availabilityScore(windows, at(11, 0), at(12, 0)), "flush with the end")
	assert.Equal(t, 50.0, availabilityScore(windows, at(11, 30), at(12, 30)), "straddles the boundary")
	assert.Equal(t, 0.0, availabilityScore(windows, at(13, 0), at(14, 0)), "outside")
}

func TestFatigueScore(t *testing.T) {
	base := mondayMorning()
	high := []Session{
		sessionAt("type-2", 5, base.Add(-24*time.Hour), time.Hour),
		sessionAt("type-3", 4, base.Add(24*time.Hour), time.Hour),
		sessionAt("type-4", 4, base.Add(40*time.Hour), time.Hour),
	}

	assert.Equal(t, 100.0, fatigueScore(testType(3), high, base), "low priority types ignore fatigue")
	assert.Equal(t, 30.0, fatigueScore(testType(5), high, base), "three high-priority neighbours")
	assert.Equal(t, 60.0, fatigueScore(testType(4), high[:2], base), "two high-priority neighbours")
	assert.Equal(t, 100.0, fatigueScore(testType(4), high[:1], base))

	// sessions outside the +/-48h horizon do not count
	far := []Session{
		sessionAt("type-2", 5, base.Add(-72*time.Hour), time.Hour),
		sessionAt("type-3", 5, base.Add(72*time.Hour), time.Hour),
	}
	assert.Equal(t, 100.0, fatigueScore(testType(5), far, base))
}

func TestScoreSlot_Idempotent(t *testing.T) {
	now := mondayMorning()
	existing := []Session{sessionAt("type-1", 4, now.Add(5*time.Hour), time.Hour)}
	windows := []AvailabilityWindow{{DayOfWeek: 1, StartTime: "09:00", EndTime: "17:00"}}
	start := now.Add(26 * time.Hour)

	a := scoreSlot(testType(4), existing, windows, start, start.Add(time.Hour), DefaultScoringWeights)
	b := scoreSlot(testType(4), existing, windows, start, start.Add(time.Hour), DefaultScoringWeights)
	assert.Equal(t, a, b)
}

// --- reasons ---

func TestBuildReason_FirstSession(t *testing.T) {
	// 14:00 is neither morning nor evening, priority is low: only the
	// first-session clause applies.
	start := time.Date(2025, time.January, 6, 14, 0, 0, 0, time.UTC)
	got := buildReason(testType(3), nil, start)
	assert.Equal(t, "First session of this type", got)
}

func TestBuildReason_DaysSinceLast(t *testing.T) {
	last := sessionAt("type-1", 3, time.Date(2025, time.January, 3, 9, 0, 0, 0, time.UTC), time.Hour)
	start := time.Date(2025, time.January, 6, 14, 0, 0, 0, time.UTC) // 3 days 4h after last end
	got := buildReason(testType(3), []Session{last}, start)
	assert.Equal(t, "Good spacing (3.2 days since last Deep Work)", got)
}

func TestBuildReason_HoursSinceLast(t *testing.T) {
	last := sessionAt("type-1", 3, time.Date(2025, time.January, 6, 8, 0, 0, 0, time.UTC), time.Hour)
	start := time.Date(2025, time.January, 6, 14, 0, 0, 0, time.UTC) // 5h after last end
	got := buildReason(testType(3), []Session{last}, start)
	assert.Equal(t, "Good spacing (5.0 hours since last Deep Work)", got)
}

func TestBuildReason_FocusWindowsAndPriority(t *testing.T) {
	morning := time.Date(2025, time.January, 6, 9, 0, 0, 0, time.UTC)
	evening := time.Date(2025, time.January, 6, 19, 0, 0, 0, time.UTC)

	got := buildReason(testType(5), nil, morning)
	assert.Equal(t, "First session of this type. Uses your morning focus window. High priority session", got)

	got = buildReason(testType(4), nil, evening)
	assert.Equal(t, "First session of this type. Uses your evening focus window. High priority session", got)
}

func TestBuildReason_MostRecentSameTypeWins(t *testing.T) {
	older := sessionAt("type-1", 3, time.Date(2025, time.January, 1, 9, 0, 0, 0, time.UTC), time.Hour)
	newer := sessionAt("type-1", 3, time.Date(2025, time.January, 5, 13, 0, 0, 0, time.UTC), time.Hour)
	otherType := sessionAt("type-2", 3, time.Date(2025, time.January, 6, 9, 0, 0, 0, time.UTC), time.Hour)

	start := time.Date(2025, time.January, 6, 14, 0, 0, 0, time.UTC) // 1 day after newer's end
	got := buildReason(testType(3), []Session{otherType, older, newer}, start)
	assert.Equal(t, "Good spacing (1.0 days since last Deep Work)", got)
}
