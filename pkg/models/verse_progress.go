package models

import "time"

// VerseProgress is the scheduling record for one memorizable verse. Exactly
// one record exists per (chapter, verse) pair; it is created when the learner
// commits to a group and mutated only by the rating pipeline.
type VerseProgress struct {
	ID            int64      `json:"id" db:"id"`
	Chapter       int        `json:"chapter" db:"chapter"`
	Verse         int        `json:"verse" db:"verse"`
	GroupID       int64      `json:"group_id" db:"group_id"`
	GroupPosition int        `json:"group_position" db:"group_position"` // 1-based position within the group
	Stability     float64    `json:"stability" db:"stability"`           // days; 0 only while state is new
	Difficulty    float64    `json:"difficulty" db:"difficulty"`         // bounded [0,1]
	EaseFactor    float64    `json:"ease_factor" db:"ease_factor"`       // legacy SM-2 field, unused by the scheduler
	State         CardState  `json:"state" db:"state"`
	Lapses        int        `json:"lapses" db:"lapses"`
	Interval      int        `json:"interval" db:"interval"` // last computed interval in whole days
	LastReviewed  *time.Time `json:"last_reviewed" db:"last_reviewed"`
	NextReview    *time.Time `json:"next_review" db:"next_review"` // nil means immediately due
	TestWithGroup bool       `json:"test_with_group" db:"test_with_group"`
	LastEventID   string     `json:"last_event_id" db:"last_event_id"` // id of the rating event last applied
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at" db:"updated_at"`
}

// Clone returns a deep copy. Timestamp pointers are duplicated so scratch
// copies never alias the original record.
func (p VerseProgress) Clone() VerseProgress {
	out := p
	if p.LastReviewed != nil {
		t := *p.LastReviewed
		out.LastReviewed = &t
	}
	if p.NextReview != nil {
		t := *p.NextReview
		out.NextReview = &t
	}
	return out
}
