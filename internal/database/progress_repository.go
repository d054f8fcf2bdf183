package database

import (
	"context"
	"fmt"
	"time"

	"github.com/example/versebot/pkg/models"
)

// ProgressRepository handles database operations for verse scheduling records
// and their append-only review history.
type ProgressRepository struct {
	db *DB
}

// NewProgressRepository creates a new repository instance
func NewProgressRepository(db *DB) *ProgressRepository {
	return &ProgressRepository{db: db}
}

// ByID returns the record with the given id
func (r *ProgressRepository) ByID(ctx context.Context, id int64) (*models.VerseProgress, error) {
	var p models.VerseProgress
	err := r.db.GetContext(ctx, &p, "SELECT * FROM verse_progress WHERE id = $1", id)
	if err != nil {
		return nil, notFound(err, "progress %d", id)
	}
	return &p, nil
}

// ByVerse returns the record for a specific (chapter, verse) pair
func (r *ProgressRepository) ByVerse(ctx context.Context, chapter, verse int) (*models.VerseProgress, error) {
	var p models.VerseProgress
	err := r.db.GetContext(ctx, &p,
		"SELECT * FROM verse_progress WHERE chapter = $1 AND verse = $2", chapter, verse)
	if err != nil {
		return nil, notFound(err, "progress for %d:%d", chapter, verse)
	}
	return &p, nil
}

// Exists reports whether a record already covers the (chapter, verse) pair
func (r *ProgressRepository) Exists(ctx context.Context, chapter, verse int) (bool, error) {
	var count int
	err := r.db.GetContext(ctx, &count,
		"SELECT COUNT(*) FROM verse_progress WHERE chapter = $1 AND verse = $2", chapter, verse)
	if err != nil {
		return false, fmt.Errorf("failed to check progress for %d:%d: %w", chapter, verse, err)
	}
	return count > 0, nil
}

// ByGroup returns all records sharing a group id, ordered by group position
func (r *ProgressRepository) ByGroup(ctx context.Context, groupID int64) ([]models.VerseProgress, error) {
	var out []models.VerseProgress
	err := r.db.SelectContext(ctx, &out,
		"SELECT * FROM verse_progress WHERE group_id = $1 ORDER BY group_position ASC", groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to get group %d records: %w", groupID, err)
	}
	return out, nil
}

// Due returns records that are due at the given time: never scheduled, or
// scheduled at or before now. Unscheduled records sort first, then earliest
// due date. A positive limit truncates at the record level.
func (r *ProgressRepository) Due(ctx context.Context, now time.Time, limit int) ([]models.VerseProgress, error) {
	query := `
		SELECT * FROM verse_progress
		WHERE next_review IS NULL OR next_review <= $1
		ORDER BY next_review IS NOT NULL, next_review ASC, id ASC
	`
	args := []interface{}{now}
	if limit > 0 {
		query += " LIMIT $2"
		args = append(args, limit)
	}

	var out []models.VerseProgress
	if err := r.db.SelectContext(ctx, &out, query, args...); err != nil {
		return nil, fmt.Errorf("failed to get due records: %w", err)
	}
	return out, nil
}

// Create inserts a new scheduling record
func (r *ProgressRepository) Create(ctx context.Context, p *models.VerseProgress) error {
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	query := `
		INSERT INTO verse_progress (
			chapter, verse, group_id, group_position, stability, difficulty,
			ease_factor, state, lapses, interval, last_reviewed, next_review,
			test_with_group, last_event_id, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`
	args := []interface{}{
		p.Chapter, p.Verse, p.GroupID, p.GroupPosition, p.Stability, p.Difficulty,
		p.EaseFactor, p.State, p.Lapses, p.Interval, p.LastReviewed, p.NextReview,
		p.TestWithGroup, p.LastEventID, p.CreatedAt, p.UpdatedAt,
	}

	if r.db.driver == "postgres" {
		return r.db.QueryRowContext(ctx, query+" RETURNING id", args...).Scan(&p.ID)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to create progress for %d:%d: %w", p.Chapter, p.Verse, err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = id
	return nil
}

// Update persists the mutable scheduling fields of an existing record
func (r *ProgressRepository) Update(ctx context.Context, p *models.VerseProgress) error {
	p.UpdatedAt = time.Now().UTC()
	result, err := r.db.ExecContext(ctx, `
		UPDATE verse_progress SET
			stability = $1,
			difficulty = $2,
			ease_factor = $3,
			state = $4,
			lapses = $5,
			interval = $6,
			last_reviewed = $7,
			next_review = $8,
			last_event_id = $9,
			updated_at = $10
		WHERE id = $11`,
		p.Stability, p.Difficulty, p.EaseFactor, p.State, p.Lapses, p.Interval,
		p.LastReviewed, p.NextReview, p.LastEventID, p.UpdatedAt, p.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update progress %d: %w", p.ID, err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("progress %d: %w", p.ID, ErrNotFound)
	}
	return nil
}

// AppendLog inserts one review history entry. History rows are append-only
// and never updated.
func (r *ProgressRepository) AppendLog(ctx context.Context, entry *models.ReviewLog) error {
	query := `
		INSERT INTO review_logs (
			progress_id, event_id, rating, reviewed_at, elapsed_ms,
			prev_interval, scheduled_interval, state
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	args := []interface{}{
		entry.ProgressID, entry.EventID, entry.Rating, entry.ReviewedAt,
		entry.ElapsedMs, entry.PrevInterval, entry.ScheduledInterval, entry.State,
	}

	if r.db.driver == "postgres" {
		return r.db.QueryRowContext(ctx, query+" RETURNING id", args...).Scan(&entry.ID)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to append review log for progress %d: %w", entry.ProgressID, err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	entry.ID = id
	return nil
}

// History returns a record's review entries in insertion order
func (r *ProgressRepository) History(ctx context.Context, progressID int64) ([]models.ReviewLog, error) {
	var out []models.ReviewLog
	err := r.db.SelectContext(ctx, &out,
		"SELECT * FROM review_logs WHERE progress_id = $1 ORDER BY id ASC", progressID)
	if err != nil {
		return nil, fmt.Errorf("failed to get history for progress %d: %w", progressID, err)
	}
	return out, nil
}

// DeleteAll wipes every scheduling record and its history. Used only for a
// full progress reset.
func (r *ProgressRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM review_logs"); err != nil {
		return fmt.Errorf("failed to delete review logs: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, "DELETE FROM verse_progress"); err != nil {
		return fmt.Errorf("failed to delete progress records: %w", err)
	}
	return nil
}
