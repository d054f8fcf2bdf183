package models

import "fmt"

// Rating is the learner's assessment of recall quality. Persisted values are
// restricted to the integer set {1, 2, 3, 4}.
type Rating int

const (
	// RatingAgain means the verse could not be recalled
	RatingAgain Rating = 1
	// RatingHard means the verse was recalled with significant difficulty
	RatingHard Rating = 2
	// RatingGood means the verse was recalled with some effort
	RatingGood Rating = 3
	// RatingEasy means the verse was recalled effortlessly
	RatingEasy Rating = 4
)

var ratingNames = map[Rating]string{
	RatingAgain: "again",
	RatingHard:  "hard",
	RatingGood:  "good",
	RatingEasy:  "easy",
}

// IsValid reports whether r is one of the four recognized ratings
func (r Rating) IsValid() bool {
	return r >= RatingAgain && r <= RatingEasy
}

// String returns the lowercase rating name
func (r Rating) String() string {
	if name, ok := ratingNames[r]; ok {
		return name
	}
	return fmt.Sprintf("rating(%d)", int(r))
}
