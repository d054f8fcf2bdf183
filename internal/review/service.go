package review

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/example/versebot/internal/fsrs"
	"github.com/example/versebot/pkg/models"
)

// Unit is one reviewable entry in the due queue: either a whole group whose
// members are rated in lockstep, or a single verse that opted out of group
// testing.
type Unit struct {
	Key     string // "group:<id>" or "verse:<progress id>"
	GroupID int64  // 0 for singleton units
	State   models.CardState
	Members []models.VerseProgress // full member set, ordered by group position
}

// Service composes due queues and drives review sessions over the injected
// stores.
type Service struct {
	progress ProgressStore
	groups   GroupStore
	stats    StatsStore
	engine   *fsrs.Engine
	clock    func() time.Time
}

// NewService creates a review service
func NewService(progress ProgressStore, groups GroupStore, stats StatsStore, engine *fsrs.Engine) *Service {
	return &Service{
		progress: progress,
		groups:   groups,
		stats:    stats,
		engine:   engine,
		clock:    time.Now,
	}
}

// WithClock overrides the wall clock. Tests use this to drive time.
func (s *Service) WithClock(clock func() time.Time) *Service {
	s.clock = clock
	return s
}

// EnrollGroup commits the learner to a group: one fresh scheduling record per
// verse in its range, sharing the group id and carrying 1-based positions.
// Verses that already have a record are left untouched, so a re-run after a
// partial failure completes the enrollment instead of duplicating rows.
func (s *Service) EnrollGroup(ctx context.Context, group models.VerseGroup) ([]models.VerseProgress, error) {
	out := make([]models.VerseProgress, 0, group.VerseCount())
	for verse := group.StartVerse; verse <= group.EndVerse; verse++ {
		exists, err := s.progress.Exists(ctx, group.Chapter, verse)
		if err != nil {
			return nil, err
		}
		if exists {
			continue
		}
		p := models.VerseProgress{
			Chapter:       group.Chapter,
			Verse:         verse,
			GroupID:       group.ID,
			GroupPosition: verse - group.StartVerse + 1,
			EaseFactor:    2.5,
			State:         models.StateNew,
			TestWithGroup: group.TestAsGroup,
		}
		if err := s.progress.Create(ctx, &p); err != nil {
			return nil, fmt.Errorf("enroll %d:%d: %w", group.Chapter, verse, err)
		}
		out = append(out, p)
	}
	return out, nil
}

// DueQueue returns the ordered unique due units at now. A positive limit caps
// the raw records fetched before they are collapsed into units, so the final
// unit of a day's queue may be a group only partially counted against the
// limit; its remaining members are still materialized in full.
func (s *Service) DueQueue(ctx context.Context, now time.Time, limit int) ([]Unit, error) {
	records, err := s.progress.Due(ctx, now, limit)
	if err != nil {
		return nil, err
	}

	var units []Unit
	seen := make(map[string]bool)
	for _, rec := range records {
		key := fmt.Sprintf("verse:%d", rec.ID)
		if rec.TestWithGroup {
			key = fmt.Sprintf("group:%d", rec.GroupID)
		}
		if seen[key] {
			continue
		}
		seen[key] = true

		unit := Unit{Key: key}
		if rec.TestWithGroup {
			members, err := s.progress.ByGroup(ctx, rec.GroupID)
			if err != nil {
				return nil, err
			}
			if len(members) == 0 {
				continue
			}
			unit.GroupID = rec.GroupID
			unit.Members = members
		} else {
			unit.Members = []models.VerseProgress{rec}
		}
		unit.State = unit.Members[0].State
		units = append(units, unit)
	}

	sort.SliceStable(units, func(i, j int) bool {
		pi, pj := units[i].State.Priority(), units[j].State.Priority()
		if pi != pj {
			return pi < pj
		}
		ni, nj := units[i].Members[0].NextReview, units[j].Members[0].NextReview
		switch {
		case ni == nil && nj == nil:
			return false
		case ni == nil:
			return true
		case nj == nil:
			return false
		default:
			return ni.Before(*nj)
		}
	})
	return units, nil
}

// DueSummary returns the dashboard counts of unique due units at now
func (s *Service) DueSummary(ctx context.Context, now time.Time) (models.DueSummary, error) {
	units, err := s.DueQueue(ctx, now, 0)
	if err != nil {
		return models.DueSummary{}, err
	}

	summary := models.DueSummary{Due: len(units)}
	for _, u := range units {
		switch u.State {
		case models.StateNew:
			summary.New++
		case models.StateLearning, models.StateRelearning:
			summary.Learning++
		default:
			summary.Review++
		}
	}
	return summary, nil
}

// StatsByID returns one session's statistics
func (s *Service) StatsByID(ctx context.Context, id string) (*models.SessionStats, error) {
	return s.stats.ByID(ctx, id)
}

// RecentStats returns the sessions of the last N days, newest first
func (s *Service) RecentStats(ctx context.Context, days int) ([]models.SessionStats, error) {
	since := s.clock().AddDate(0, 0, -days)
	return s.stats.Recent(ctx, since)
}
