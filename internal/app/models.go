package app

import "time"

type SessionType struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Category  string    `json:"category,omitempty"`
	Priority  int       `json:"priority"`
	CreatedAt time.Time `json:"created_at,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// AvailabilityWindow is a recurring weekly interval. Start and end are
// zero-padded 24h "HH:mm" strings so lexicographic comparison matches
// chronological order.
type AvailabilityWindow struct {
	ID        string    `json:"id"`
	DayOfWeek int       `json:"day_of_week"`
	StartTime string    `json:"start_time"`
	EndTime   string    `json:"end_time"`
	CreatedAt time.Time `json:"created_at,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

type Session struct {
	ID            string      `json:"id"`
	SessionTypeID string      `json:"session_type_id"`
	SessionType   SessionType `json:"session_type"`
	StartTime     time.Time   `json:"start_time"`
	EndTime       time.Time   `json:"end_time"`
	Completed     bool        `json:"completed"`
	CreatedAt     time.Time   `json:"created_at,omitempty"`
	UpdatedAt     time.Time   `json:"updated_at,omitempty"`
}

// SessionSuggestion is engine output, never persisted.
type SessionSuggestion struct {
	SessionTypeID string    `json:"session_type_id"`
	StartTime     time.Time `json:"start_time"`
	EndTime       time.Time `json:"end_time"`
	Reason        string    `json:"reason"`
	Score         float64   `json:"score"`
}

type SessionTypeCount struct {
	SessionTypeID   string `json:"session_type_id"`
	SessionTypeName string `json:"session_type_name"`
	Count           int    `json:"count"`
}

type ProgressStats struct {
	TotalScheduled int                `json:"total_scheduled"`
	TotalCompleted int                `json:"total_completed"`
	CompletionRate int                `json:"completion_rate"`
	SessionsByType []SessionTypeCount `json:"sessions_by_type"`
	AverageSpacing float64            `json:"average_spacing"`
}
