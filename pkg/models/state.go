package models

// CardState is the scheduling state of a single verse record
type CardState string

const (
	// StateNew - the verse has never been reviewed
	StateNew CardState = "new"
	// StateLearning - the verse is in its initial learning phase
	StateLearning CardState = "learning"
	// StateReview - the verse graduated into the long-term review cycle
	StateReview CardState = "review"
	// StateRelearning - the verse was forgotten and is being relearned
	StateRelearning CardState = "relearning"
)

// IsValid reports whether s is a recognized card state
func (s CardState) IsValid() bool {
	switch s {
	case StateNew, StateLearning, StateReview, StateRelearning:
		return true
	}
	return false
}

// Priority returns the due-queue rank of the state: new items come first,
// then learning, then relearning, then everything else
func (s CardState) Priority() int {
	switch s {
	case StateNew:
		return 1
	case StateLearning:
		return 2
	case StateRelearning:
		return 3
	default:
		return 4
	}
}

// GroupState is a coarse rollup of a group's progress. The authoritative
// state lives on the individual verse records.
type GroupState string

const (
	GroupStateNew      GroupState = "new"
	GroupStateLearning GroupState = "learning"
	GroupStateReview   GroupState = "review"
	GroupStateComplete GroupState = "complete"
)
