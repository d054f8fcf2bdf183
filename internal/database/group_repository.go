package database

import (
	"context"
	"fmt"
	"time"

	"github.com/example/versebot/pkg/models"
)

// GroupRepository handles database operations for verse groups
type GroupRepository struct {
	db *DB
}

// NewGroupRepository creates a new repository instance
func NewGroupRepository(db *DB) *GroupRepository {
	return &GroupRepository{db: db}
}

// ByID returns the group with the given id
func (r *GroupRepository) ByID(ctx context.Context, id int64) (*models.VerseGroup, error) {
	var g models.VerseGroup
	err := r.db.GetContext(ctx, &g, "SELECT * FROM verse_groups WHERE id = $1", id)
	if err != nil {
		return nil, notFound(err, "group %d", id)
	}
	return &g, nil
}

// ByChapterStrategy returns the stored groups for one (chapter, strategy)
// combination, ordered by start verse
func (r *GroupRepository) ByChapterStrategy(ctx context.Context, chapter int, strategy models.Strategy) ([]models.VerseGroup, error) {
	var out []models.VerseGroup
	err := r.db.SelectContext(ctx, &out, `
		SELECT * FROM verse_groups
		WHERE chapter = $1 AND strategy = $2
		ORDER BY start_verse ASC`, chapter, strategy)
	if err != nil {
		return nil, fmt.Errorf("failed to get groups for chapter %d strategy %s: %w", chapter, strategy, err)
	}
	return out, nil
}

// Create inserts a new group row
func (r *GroupRepository) Create(ctx context.Context, g *models.VerseGroup) error {
	g.CreatedAt = time.Now().UTC()
	query := `
		INSERT INTO verse_groups (
			chapter, strategy, group_size, start_verse, end_verse, state, test_as_group, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	args := []interface{}{
		g.Chapter, g.Strategy, g.GroupSize, g.StartVerse, g.EndVerse,
		g.State, g.TestAsGroup, g.CreatedAt,
	}

	if r.db.driver == "postgres" {
		return r.db.QueryRowContext(ctx, query+" RETURNING id", args...).Scan(&g.ID)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to create group for chapter %d: %w", g.Chapter, err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	g.ID = id
	return nil
}

// UpdateState sets the coarse rollup state of a group
func (r *GroupRepository) UpdateState(ctx context.Context, id int64, state models.GroupState) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE verse_groups SET state = $1 WHERE id = $2", state, id)
	if err != nil {
		return fmt.Errorf("failed to update group %d state: %w", id, err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("group %d: %w", id, ErrNotFound)
	}
	return nil
}

// DeleteByChapterStrategy removes all stored groups for one (chapter,
// strategy) combination, ahead of a regeneration
func (r *GroupRepository) DeleteByChapterStrategy(ctx context.Context, chapter int, strategy models.Strategy) error {
	_, err := r.db.ExecContext(ctx,
		"DELETE FROM verse_groups WHERE chapter = $1 AND strategy = $2", chapter, strategy)
	if err != nil {
		return fmt.Errorf("failed to delete groups for chapter %d strategy %s: %w", chapter, strategy, err)
	}
	return nil
}
