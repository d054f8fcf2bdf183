package models

import "time"

// ReviewLog is one entry in a verse's append-only review history. Entries are
// inserted once and never mutated.
type ReviewLog struct {
	ID                int64     `json:"id" db:"id"`
	ProgressID        int64     `json:"progress_id" db:"progress_id"`
	EventID           string    `json:"event_id" db:"event_id"` // shared by all group members rated together
	Rating            Rating    `json:"rating" db:"rating"`
	ReviewedAt        time.Time `json:"reviewed_at" db:"reviewed_at"`
	ElapsedMs         int64     `json:"elapsed_ms" db:"elapsed_ms"` // time the unit was on screen
	PrevInterval      int       `json:"prev_interval" db:"prev_interval"`
	ScheduledInterval int       `json:"scheduled_interval" db:"scheduled_interval"`
	State             CardState `json:"state" db:"state"` // state before the rating was applied
}
