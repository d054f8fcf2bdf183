package database

import (
	"context"
	"fmt"
	"time"

	"github.com/example/versebot/pkg/models"
)

// ChapterRepository handles chapter metadata and structural boundary marks.
// It doubles as the boundary source the grouping engine reads from.
type ChapterRepository struct {
	db *DB
}

// NewChapterRepository creates a new repository instance
func NewChapterRepository(db *DB) *ChapterRepository {
	return &ChapterRepository{db: db}
}

// ByNumber returns the chapter with the given number
func (r *ChapterRepository) ByNumber(ctx context.Context, number int) (*models.Chapter, error) {
	var c models.Chapter
	err := r.db.GetContext(ctx, &c, "SELECT * FROM chapters WHERE number = $1", number)
	if err != nil {
		return nil, notFound(err, "chapter %d", number)
	}
	return &c, nil
}

// All returns every known chapter ordered by number
func (r *ChapterRepository) All(ctx context.Context) ([]models.Chapter, error) {
	var out []models.Chapter
	if err := r.db.SelectContext(ctx, &out, "SELECT * FROM chapters ORDER BY number ASC"); err != nil {
		return nil, fmt.Errorf("failed to get chapters: %w", err)
	}
	return out, nil
}

// Upsert creates or replaces a chapter's metadata
func (r *ChapterRepository) Upsert(ctx context.Context, c *models.Chapter) error {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO chapters (number, name, verse_count, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (number) DO UPDATE SET
			name = EXCLUDED.name,
			verse_count = EXCLUDED.verse_count`,
		c.Number, c.Name, c.VerseCount, c.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert chapter %d: %w", c.Number, err)
	}
	return nil
}

// ReplaceMarks swaps out a chapter's boundary marks of one kind
func (r *ChapterRepository) ReplaceMarks(ctx context.Context, chapter int, kind models.MarkKind, verses []int) error {
	_, err := r.db.ExecContext(ctx,
		"DELETE FROM verse_marks WHERE chapter = $1 AND kind = $2", chapter, kind)
	if err != nil {
		return fmt.Errorf("failed to clear %s marks for chapter %d: %w", kind, chapter, err)
	}
	for _, v := range verses {
		_, err := r.db.ExecContext(ctx,
			"INSERT INTO verse_marks (chapter, verse, kind) VALUES ($1, $2, $3)",
			chapter, v, kind)
		if err != nil {
			return fmt.Errorf("failed to insert %s mark %d:%d: %w", kind, chapter, v, err)
		}
	}
	return nil
}

// MarkStarts returns the verses that begin each structural unit of the given
// kind, in ascending order. An empty result means no marks are known.
func (r *ChapterRepository) MarkStarts(ctx context.Context, chapter int, kind models.MarkKind) ([]int, error) {
	var out []int
	err := r.db.SelectContext(ctx, &out,
		"SELECT verse FROM verse_marks WHERE chapter = $1 AND kind = $2 ORDER BY verse ASC",
		chapter, kind)
	if err != nil {
		return nil, fmt.Errorf("failed to get %s marks for chapter %d: %w", kind, chapter, err)
	}
	return out, nil
}

// VerseCount returns the number of verses in a chapter
func (r *ChapterRepository) VerseCount(ctx context.Context, chapter int) (int, error) {
	c, err := r.ByNumber(ctx, chapter)
	if err != nil {
		return 0, err
	}
	return c.VerseCount, nil
}
