package domain

import "time"

// Insight is one persisted AI-generated narrative: a summary plus three
// trend observations and three pieces of advice. Rows are immutable once
// written; the core never updates or deletes them.
type Insight struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	GeneratedAt time.Time `json:"generated_at"`
	Summary     string    `json:"summary"`
	Trend       []string  `json:"trend"`
	Advice      []string  `json:"advice"`
}
