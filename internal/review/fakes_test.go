package review

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/example/versebot/pkg/models"
)

// fakeProgressStore is an in-memory ProgressStore with injectable write
// failures, mirroring the sqlite repository's ordering contract.
type fakeProgressStore struct {
	records     map[int64]*models.VerseProgress
	logs        []models.ReviewLog
	nextID      int64
	updateCalls map[int64]int
	failUpdate  map[int64]bool // progress id -> fail next Update
}

func newFakeProgressStore() *fakeProgressStore {
	return &fakeProgressStore{
		records:     make(map[int64]*models.VerseProgress),
		updateCalls: make(map[int64]int),
		failUpdate:  make(map[int64]bool),
	}
}

func (f *fakeProgressStore) Due(_ context.Context, now time.Time, limit int) ([]models.VerseProgress, error) {
	var out []models.VerseProgress
	for _, p := range f.records {
		if p.NextReview == nil || !p.NextReview.After(now) {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		ni, nj := out[i].NextReview, out[j].NextReview
		switch {
		case ni == nil && nj == nil:
			return out[i].ID < out[j].ID
		case ni == nil:
			return true
		case nj == nil:
			return false
		case ni.Equal(*nj):
			return out[i].ID < out[j].ID
		default:
			return ni.Before(*nj)
		}
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeProgressStore) ByGroup(_ context.Context, groupID int64) ([]models.VerseProgress, error) {
	var out []models.VerseProgress
	for _, p := range f.records {
		if p.GroupID == groupID {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].GroupPosition < out[j].GroupPosition })
	return out, nil
}

func (f *fakeProgressStore) Exists(_ context.Context, chapter, verse int) (bool, error) {
	for _, p := range f.records {
		if p.Chapter == chapter && p.Verse == verse {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeProgressStore) Create(_ context.Context, p *models.VerseProgress) error {
	f.nextID++
	p.ID = f.nextID
	clone := p.Clone()
	f.records[p.ID] = &clone
	return nil
}

func (f *fakeProgressStore) Update(_ context.Context, p *models.VerseProgress) error {
	if f.failUpdate[p.ID] {
		return errors.New("fake store: write failed")
	}
	if _, ok := f.records[p.ID]; !ok {
		return errors.New("fake store: no such record")
	}
	f.updateCalls[p.ID]++
	clone := p.Clone()
	f.records[p.ID] = &clone
	return nil
}

func (f *fakeProgressStore) AppendLog(_ context.Context, entry *models.ReviewLog) error {
	entry.ID = int64(len(f.logs) + 1)
	f.logs = append(f.logs, *entry)
	return nil
}

type fakeGroupStore struct {
	states map[int64]models.GroupState
}

func newFakeGroupStore() *fakeGroupStore {
	return &fakeGroupStore{states: make(map[int64]models.GroupState)}
}

func (f *fakeGroupStore) UpdateState(_ context.Context, id int64, state models.GroupState) error {
	f.states[id] = state
	return nil
}

type fakeStatsStore struct {
	sessions map[string]models.SessionStats
	saves    int
	failSave bool
}

func newFakeStatsStore() *fakeStatsStore {
	return &fakeStatsStore{sessions: make(map[string]models.SessionStats)}
}

func (f *fakeStatsStore) Save(_ context.Context, s *models.SessionStats) error {
	if f.failSave {
		return errors.New("fake store: write failed")
	}
	f.saves++
	f.sessions[s.ID] = *s
	return nil
}

func (f *fakeStatsStore) ByID(_ context.Context, id string) (*models.SessionStats, error) {
	s, ok := f.sessions[id]
	if !ok {
		return nil, errors.New("fake store: no such session")
	}
	return &s, nil
}

func (f *fakeStatsStore) Recent(_ context.Context, since time.Time) ([]models.SessionStats, error) {
	var out []models.SessionStats
	for _, s := range f.sessions {
		if !s.StartedAt.Before(since) {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartedAt.After(out[j].StartedAt) })
	return out, nil
}
