package review

import (
	"context"
	"time"

	"github.com/example/versebot/pkg/models"
)

// ProgressStore is the persistence seam for verse scheduling records. The
// database package provides the production implementation; tests use fakes.
type ProgressStore interface {
	Due(ctx context.Context, now time.Time, limit int) ([]models.VerseProgress, error)
	ByGroup(ctx context.Context, groupID int64) ([]models.VerseProgress, error)
	Exists(ctx context.Context, chapter, verse int) (bool, error)
	Create(ctx context.Context, p *models.VerseProgress) error
	Update(ctx context.Context, p *models.VerseProgress) error
	AppendLog(ctx context.Context, entry *models.ReviewLog) error
}

// GroupStore exposes the group rollup updates the session applies
type GroupStore interface {
	UpdateState(ctx context.Context, id int64, state models.GroupState) error
}

// StatsStore persists and serves session statistics
type StatsStore interface {
	Save(ctx context.Context, s *models.SessionStats) error
	ByID(ctx context.Context, id string) (*models.SessionStats, error)
	Recent(ctx context.Context, since time.Time) ([]models.SessionStats, error)
}
