package models

import "time"

// Chapter is the content-side description of one container of verses
type Chapter struct {
	Number     int       `json:"number" db:"number"`
	Name       string    `json:"name" db:"name"`
	VerseCount int       `json:"verse_count" db:"verse_count"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// VerseMark is a structural boundary: the verse that starts a section or page
type VerseMark struct {
	ID      int64    `json:"id" db:"id"`
	Chapter int      `json:"chapter" db:"chapter"`
	Verse   int      `json:"verse" db:"verse"`
	Kind    MarkKind `json:"kind" db:"kind"`
}

// DueSummary is the dashboard rollup of due review units. Counts are at the
// unit level: a group of verses tested together counts once. Relearning units
// are folded into Learning.
type DueSummary struct {
	Due      int `json:"due"`
	New      int `json:"new"`
	Learning int `json:"learning"`
	Review   int `json:"review"`
}
