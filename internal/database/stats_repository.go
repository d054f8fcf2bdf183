package database

import (
	"context"
	"fmt"
	"time"

	"github.com/example/versebot/pkg/models"
)

// SessionStatsRepository handles database operations for session statistics
type SessionStatsRepository struct {
	db *DB
}

// NewSessionStatsRepository creates a new repository instance
func NewSessionStatsRepository(db *DB) *SessionStatsRepository {
	return &SessionStatsRepository{db: db}
}

// ByID returns the statistics row for one session
func (r *SessionStatsRepository) ByID(ctx context.Context, id string) (*models.SessionStats, error) {
	var s models.SessionStats
	err := r.db.GetContext(ctx, &s, "SELECT * FROM session_stats WHERE id = $1", id)
	if err != nil {
		return nil, notFound(err, "session %s", id)
	}
	return &s, nil
}

// Recent returns sessions started at or after the given time, newest first
func (r *SessionStatsRepository) Recent(ctx context.Context, since time.Time) ([]models.SessionStats, error) {
	var out []models.SessionStats
	err := r.db.SelectContext(ctx, &out, `
		SELECT * FROM session_stats
		WHERE started_at >= $1
		ORDER BY started_at DESC`, since)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent sessions: %w", err)
	}
	return out, nil
}

// Save creates or updates a session's statistics row
func (r *SessionStatsRepository) Save(ctx context.Context, s *models.SessionStats) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO session_stats (
			id, started_at, ended_at, total_reviewed, new_learned,
			again_count, hard_count, good_count, easy_count,
			review_time_ms, retention, completed
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id) DO UPDATE SET
			ended_at = EXCLUDED.ended_at,
			total_reviewed = EXCLUDED.total_reviewed,
			new_learned = EXCLUDED.new_learned,
			again_count = EXCLUDED.again_count,
			hard_count = EXCLUDED.hard_count,
			good_count = EXCLUDED.good_count,
			easy_count = EXCLUDED.easy_count,
			review_time_ms = EXCLUDED.review_time_ms,
			retention = EXCLUDED.retention,
			completed = EXCLUDED.completed`,
		s.ID, s.StartedAt, s.EndedAt, s.TotalReviewed, s.NewLearned,
		s.AgainCount, s.HardCount, s.GoodCount, s.EasyCount,
		s.ReviewTimeMs, s.Retention, s.Completed,
	)
	if err != nil {
		return fmt.Errorf("failed to save session %s: %w", s.ID, err)
	}
	return nil
}
