package models

import "time"

// SessionStats accumulates totals for one review session. Created zeroed at
// session start, updated as ratings are applied, immutable once finalized.
type SessionStats struct {
	ID            string     `json:"id" db:"id"` // uuid
	StartedAt     time.Time  `json:"started_at" db:"started_at"`
	EndedAt       *time.Time `json:"ended_at" db:"ended_at"`
	TotalReviewed int        `json:"total_reviewed" db:"total_reviewed"` // one per rating event, not per verse
	NewLearned    int        `json:"new_learned" db:"new_learned"`
	AgainCount    int        `json:"again_count" db:"again_count"`
	HardCount     int        `json:"hard_count" db:"hard_count"`
	GoodCount     int        `json:"good_count" db:"good_count"`
	EasyCount     int        `json:"easy_count" db:"easy_count"`
	ReviewTimeMs  int64      `json:"review_time_ms" db:"review_time_ms"`
	Retention     float64    `json:"retention" db:"retention"` // percent of non-Again ratings
	Completed     bool       `json:"completed" db:"completed"`
}

// Tally increments the counter for the given rating
func (s *SessionStats) Tally(r Rating) {
	switch r {
	case RatingAgain:
		s.AgainCount++
	case RatingHard:
		s.HardCount++
	case RatingGood:
		s.GoodCount++
	case RatingEasy:
		s.EasyCount++
	}
}

// ComputeRetention returns passed/total as a percentage, where passed counts
// every rating except Again. Zero when nothing was reviewed.
func (s *SessionStats) ComputeRetention() float64 {
	total := s.AgainCount + s.HardCount + s.GoodCount + s.EasyCount
	if total == 0 {
		return 0
	}
	passed := s.HardCount + s.GoodCount + s.EasyCount
	return float64(passed) / float64(total) * 100
}
