package review

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/example/versebot/pkg/models"
)

// SessionState is the lifecycle state of a review session
type SessionState string

const (
	// SessionIdle - no session in progress (zero value)
	SessionIdle SessionState = "idle"
	// SessionActive - the session is accepting ratings
	SessionActive SessionState = "active"
	// SessionPaused - the wall clock is stopped; ratings are rejected
	SessionPaused SessionState = "paused"
	// SessionComplete - terminal; statistics are persisted
	SessionComplete SessionState = "complete"
)

// Session drives one review pass over an ordered list of due units. Ratings
// are applied atomically across a unit's members: a failed write leaves the
// session exactly where it was, and retrying with the same rating does not
// double-count anything.
type Session struct {
	svc   *Service
	units []Unit
	index int
	state SessionState
	stats models.SessionStats

	// pendingEventID survives a failed Rate so the retry reuses the same
	// event and already-persisted members are skipped.
	pendingEventID string

	activeSince time.Time
	accrued     time.Duration
	unitShownAt time.Duration // session-elapsed mark when the current unit appeared
}

// StartSession builds the due queue at now and opens an active session over
// it. Returns ErrEmptySession when nothing is due.
func (s *Service) StartSession(ctx context.Context, now time.Time, limit int) (*Session, error) {
	units, err := s.DueQueue(ctx, now, limit)
	if err != nil {
		return nil, err
	}
	if len(units) == 0 {
		return nil, ErrEmptySession
	}

	stats := models.SessionStats{
		ID:        uuid.NewString(),
		StartedAt: now,
	}
	if err := s.stats.Save(ctx, &stats); err != nil {
		return nil, fmt.Errorf("create session record: %w", err)
	}

	return &Session{
		svc:         s,
		units:       units,
		state:       SessionActive,
		stats:       stats,
		activeSince: now,
	}, nil
}

// State returns the session's lifecycle state
func (sn *Session) State() SessionState {
	return sn.state
}

// Stats returns a snapshot of the session statistics accumulated so far
func (sn *Session) Stats() models.SessionStats {
	return sn.stats
}

// Current returns the member records of the unit awaiting a rating, or nil
// once the session is complete
func (sn *Session) Current() []models.VerseProgress {
	if sn.state == SessionComplete || sn.index >= len(sn.units) {
		return nil
	}
	return sn.units[sn.index].Members
}

// Remaining returns how many units are still unrated
func (sn *Session) Remaining() int {
	if sn.state == SessionComplete {
		return 0
	}
	return len(sn.units) - sn.index
}

// Rate applies one rating to every member of the current unit, persists the
// updated records and history entries, bumps the statistics by exactly one
// interaction, and advances to the next unit. Rating the last unit completes
// the session. On a persist failure nothing advances; the call is retryable
// with the same rating.
func (sn *Session) Rate(ctx context.Context, rating models.Rating) error {
	if sn.state != SessionActive {
		if sn.state == SessionComplete {
			return ErrSessionComplete
		}
		return ErrSessionNotActive
	}

	now := sn.svc.clock()
	unit := &sn.units[sn.index]

	if sn.pendingEventID == "" {
		sn.pendingEventID = uuid.NewString()
	}
	eventID := sn.pendingEventID
	elapsedMs := (sn.sessionElapsed(now) - sn.unitShownAt).Milliseconds()

	for i := range unit.Members {
		if unit.Members[i].LastEventID == eventID {
			// Persisted by an earlier attempt of this same rating event.
			continue
		}
		// Work on a copy so a failed write leaves the in-memory record
		// unchanged and the retry re-derives the identical transition.
		updated := unit.Members[i].Clone()
		entry, err := sn.svc.engine.Review(&updated, rating, now)
		if err != nil {
			return err
		}
		updated.LastEventID = eventID

		if err := sn.svc.progress.Update(ctx, &updated); err != nil {
			return fmt.Errorf("persist verse %d:%d: %w", updated.Chapter, updated.Verse, err)
		}
		entry.EventID = eventID
		entry.ElapsedMs = elapsedMs
		if err := sn.svc.progress.AppendLog(ctx, &entry); err != nil {
			return fmt.Errorf("append history for verse %d:%d: %w", updated.Chapter, updated.Verse, err)
		}
		unit.Members[i] = updated
	}

	// All members are on disk; account the interaction once.
	next := sn.stats
	next.Tally(rating)
	next.TotalReviewed++
	if unit.State == models.StateNew {
		next.NewLearned++
	}
	next.ReviewTimeMs = sn.sessionElapsed(now).Milliseconds()

	lastUnit := sn.index+1 >= len(sn.units)
	if lastUnit {
		ended := now
		next.EndedAt = &ended
		next.Retention = next.ComputeRetention()
		next.Completed = true
	}
	if err := sn.svc.stats.Save(ctx, &next); err != nil {
		return fmt.Errorf("persist session stats: %w", err)
	}
	sn.stats = next

	if unit.GroupID != 0 {
		// Best-effort rollup; the per-verse records stay authoritative.
		if err := sn.svc.groups.UpdateState(ctx, unit.GroupID, rollupState(unit.Members[0].State)); err != nil {
			log.Printf("review: group %d rollup update failed: %v", unit.GroupID, err)
		}
	}

	sn.pendingEventID = ""
	sn.index++
	sn.unitShownAt = sn.sessionElapsed(now)
	if lastUnit {
		sn.state = SessionComplete
		sn.units = nil
	}
	return nil
}

// Pause stops the wall-clock accounting. Item state and the due queue are
// untouched.
func (sn *Session) Pause() error {
	if sn.state != SessionActive {
		return ErrSessionNotActive
	}
	now := sn.svc.clock()
	sn.accrued += now.Sub(sn.activeSince)
	sn.state = SessionPaused
	return nil
}

// Resume restarts the wall clock after a pause
func (sn *Session) Resume() error {
	if sn.state != SessionPaused {
		return ErrSessionNotPaused
	}
	sn.activeSince = sn.svc.clock()
	sn.state = SessionActive
	return nil
}

// End finalizes the session from any non-terminal state, persisting whatever
// statistics accumulated so far. An ended-early session keeps Completed false.
func (sn *Session) End(ctx context.Context) (models.SessionStats, error) {
	if sn.state == SessionComplete {
		return sn.stats, nil
	}

	now := sn.svc.clock()
	next := sn.stats
	ended := now
	next.EndedAt = &ended
	next.Retention = next.ComputeRetention()
	next.ReviewTimeMs = sn.sessionElapsed(now).Milliseconds()
	if err := sn.svc.stats.Save(ctx, &next); err != nil {
		return models.SessionStats{}, fmt.Errorf("persist session stats: %w", err)
	}

	sn.stats = next
	sn.state = SessionComplete
	sn.units = nil
	return sn.stats, nil
}

// sessionElapsed returns active wall-clock time since the session started,
// excluding paused stretches
func (sn *Session) sessionElapsed(now time.Time) time.Duration {
	if sn.state == SessionActive {
		return sn.accrued + now.Sub(sn.activeSince)
	}
	return sn.accrued
}

func rollupState(s models.CardState) models.GroupState {
	switch s {
	case models.StateReview:
		return models.GroupStateReview
	case models.StateNew:
		return models.GroupStateNew
	default:
		return models.GroupStateLearning
	}
}
