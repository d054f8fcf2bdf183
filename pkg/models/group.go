package models

import "time"

// VerseGroup is a contiguous range of verses within a chapter that is
// reviewed as one unit. Groups for a given (chapter, strategy) partition the
// chapter's verses with no gaps and no overlaps.
type VerseGroup struct {
	ID          int64      `json:"id" db:"id"`
	Chapter     int        `json:"chapter" db:"chapter"`
	Strategy    Strategy   `json:"strategy" db:"strategy"`
	GroupSize   int        `json:"group_size" db:"group_size"` // requested size, fixed strategy only
	StartVerse  int        `json:"start_verse" db:"start_verse"`
	EndVerse    int        `json:"end_verse" db:"end_verse"` // inclusive, 1-based
	State       GroupState `json:"state" db:"state"`
	TestAsGroup bool       `json:"test_as_group" db:"test_as_group"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
}

// VerseCount returns the number of verses covered by the group
func (g VerseGroup) VerseCount() int {
	return g.EndVerse - g.StartVerse + 1
}
