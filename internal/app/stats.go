package app

import (
	"math"
	"sort"
)

// CalculateProgressStats aggregates completion and spacing statistics over
// every session, completed or not. Pure function; an empty slice yields
// all-zero stats.
func CalculateProgressStats(sessions []Session) ProgressStats {
	stats := ProgressStats{SessionsByType: []SessionTypeCount{}}
	stats.TotalScheduled = len(sessions)
	for _, s := range sessions {
		if s.Completed {
			stats.TotalCompleted++
		}
	}
	if stats.TotalScheduled > 0 {
		stats.CompletionRate = int(math.Round(float64(stats.TotalCompleted) / float64(stats.TotalScheduled) * 100))
	}

	// Group by type in first-occurrence order, then sort by count so ties
	// keep that order.
	index := map[string]int{}
	for _, s := range sessions {
		if i, ok := index[s.SessionTypeID]; ok {
			stats.SessionsByType[i].Count++
			continue
		}
		index[s.SessionTypeID] = len(stats.SessionsByType)
		stats.SessionsByType = append(stats.SessionsByType, SessionTypeCount{
			SessionTypeID:   s.SessionTypeID,
			SessionTypeName: s.SessionType.Name,
			Count:           1,
		})
	}
	sort.SliceStable(stats.SessionsByType, func(i, j int) bool {
		return stats.SessionsByType[i].Count > stats.SessionsByType[j].Count
	})

	if len(sessions) >= 2 {
		ordered := make([]Session, len(sessions))
		copy(ordered, sessions)
		sort.SliceStable(ordered, func(i, j int) bool {
			return ordered[i].StartTime.Before(ordered[j].StartTime)
		})
		// Gap runs from one session's end to the next one's start, so
		// overlapping sessions contribute negative gaps. Not clamped.
		var totalHours float64
		for i := 1; i < len(ordered); i++ {
			totalHours += ordered[i].StartTime.Sub(ordered[i-1].EndTime).Hours()
		}
		avgDays := totalHours / float64(len(ordered)-1) / 24
		stats.AverageSpacing = math.Round(avgDays*10) / 10
	}
	return stats
}
