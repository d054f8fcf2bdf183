package grouping

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"

	"github.com/example/versebot/pkg/models"
)

// DefaultFallbackSize is the fixed group size used when a structural strategy
// cannot obtain its boundary marks
const DefaultFallbackSize = 5

// ErrNoBoundaries signals that a structural strategy found no usable marks.
// It never escapes CreateGroups; it only triggers the fixed-size fallback.
var ErrNoBoundaries = errors.New("grouping: no boundary marks available")

// GroupStore is the persistence seam for group rows
type GroupStore interface {
	ByChapterStrategy(ctx context.Context, chapter int, strategy models.Strategy) ([]models.VerseGroup, error)
	Create(ctx context.Context, g *models.VerseGroup) error
	DeleteByChapterStrategy(ctx context.Context, chapter int, strategy models.Strategy) error
}

// BoundarySource supplies chapter sizes and structural boundary marks
type BoundarySource interface {
	VerseCount(ctx context.Context, chapter int) (int, error)
	MarkStarts(ctx context.Context, chapter int, kind models.MarkKind) ([]int, error)
}

// Result is the outcome of a group creation request. Degraded is set when a
// structural strategy fell back to fixed-size partitioning.
type Result struct {
	Groups   []models.VerseGroup
	Degraded bool
}

// Engine partitions a chapter's verses into review groups and persists the
// partition. Creation is idempotent per (chapter, strategy, size).
type Engine struct {
	groups  GroupStore
	content BoundarySource
}

// New creates a grouping engine
func New(groups GroupStore, content BoundarySource) *Engine {
	return &Engine{groups: groups, content: content}
}

// CreateGroups returns the groups for (chapter, strategy), generating and
// storing them on first request. A fixed-size request whose size differs from
// the stored groups discards and regenerates them. Structural strategies that
// cannot obtain boundary marks degrade to fixed partitioning of
// DefaultFallbackSize; the degradation is reported, not fatal.
func (e *Engine) CreateGroups(ctx context.Context, chapter int, strategy models.Strategy, size int) (Result, error) {
	if !strategy.IsValid() {
		return Result{}, fmt.Errorf("unknown grouping strategy %q", strategy)
	}
	if size < 1 {
		size = 1
	}

	existing, err := e.groups.ByChapterStrategy(ctx, chapter, strategy)
	if err != nil {
		return Result{}, err
	}
	if len(existing) > 0 {
		if strategy == models.StrategyFixed && existing[0].GroupSize != size {
			// Size changed since the groups were generated: regenerate.
			if err := e.groups.DeleteByChapterStrategy(ctx, chapter, strategy); err != nil {
				return Result{}, err
			}
		} else {
			return Result{Groups: existing}, nil
		}
	}

	if strategy == models.StrategyCustom {
		// Custom groups are externally defined; nothing to generate.
		return Result{Groups: existing}, nil
	}

	verseCount, err := e.content.VerseCount(ctx, chapter)
	if err != nil {
		return Result{}, fmt.Errorf("chapter %d: %w", chapter, err)
	}
	if verseCount < 1 {
		return Result{}, fmt.Errorf("chapter %d has no verses", chapter)
	}

	var spans [][2]int
	degraded := false
	switch strategy {
	case models.StrategyFixed:
		spans = fixedSpans(verseCount, size)
	default:
		spans, err = e.structuralSpans(ctx, chapter, strategy, verseCount)
		if err != nil {
			if !errors.Is(err, ErrNoBoundaries) {
				log.Printf("grouping: boundary fetch failed for chapter %d (%s), falling back to fixed(%d): %v",
					chapter, strategy, DefaultFallbackSize, err)
			} else {
				log.Printf("grouping: no %s marks for chapter %d, falling back to fixed(%d)",
					strategy, chapter, DefaultFallbackSize)
			}
			spans = fixedSpans(verseCount, DefaultFallbackSize)
			degraded = true
		}
	}

	out := make([]models.VerseGroup, 0, len(spans))
	for _, span := range spans {
		g := models.VerseGroup{
			Chapter:     chapter,
			Strategy:    strategy,
			GroupSize:   size,
			StartVerse:  span[0],
			EndVerse:    span[1],
			State:       models.GroupStateNew,
			TestAsGroup: true,
		}
		if strategy != models.StrategyFixed {
			g.GroupSize = 0
		}
		if err := e.groups.Create(ctx, &g); err != nil {
			return Result{}, err
		}
		out = append(out, g)
	}
	return Result{Groups: out, Degraded: degraded}, nil
}

// AddCustomGroup stores an externally defined group covering [start, end]
func (e *Engine) AddCustomGroup(ctx context.Context, chapter, start, end int) (models.VerseGroup, error) {
	verseCount, err := e.content.VerseCount(ctx, chapter)
	if err != nil {
		return models.VerseGroup{}, fmt.Errorf("chapter %d: %w", chapter, err)
	}
	if start < 1 || end < start || end > verseCount {
		return models.VerseGroup{}, fmt.Errorf("invalid verse range %d-%d for chapter %d (%d verses)",
			start, end, chapter, verseCount)
	}
	g := models.VerseGroup{
		Chapter:     chapter,
		Strategy:    models.StrategyCustom,
		StartVerse:  start,
		EndVerse:    end,
		State:       models.GroupStateNew,
		TestAsGroup: true,
	}
	if err := e.groups.Create(ctx, &g); err != nil {
		return models.VerseGroup{}, err
	}
	return g, nil
}

// structuralSpans partitions 1..verseCount along the chapter's boundary marks
// of the strategy's kind. Each span runs from one mark to just before the
// next; verses before the first mark join the first span.
func (e *Engine) structuralSpans(ctx context.Context, chapter int, strategy models.Strategy, verseCount int) ([][2]int, error) {
	kind, ok := models.MarkKindFor(strategy)
	if !ok {
		return nil, fmt.Errorf("strategy %q has no boundary marks", strategy)
	}
	starts, err := e.content.MarkStarts(ctx, chapter, kind)
	if err != nil {
		return nil, err
	}

	// Keep only marks inside the chapter and anchor the partition at verse 1.
	filtered := starts[:0:0]
	for _, s := range starts {
		if s >= 1 && s <= verseCount {
			filtered = append(filtered, s)
		}
	}
	if len(filtered) == 0 {
		return nil, ErrNoBoundaries
	}
	sort.Ints(filtered)
	if filtered[0] != 1 {
		filtered = append([]int{1}, filtered...)
	}

	spans := make([][2]int, 0, len(filtered))
	for i, start := range filtered {
		end := verseCount
		if i+1 < len(filtered) {
			end = filtered[i+1] - 1
		}
		if end < start {
			continue // duplicate mark
		}
		spans = append(spans, [2]int{start, end})
	}
	return spans, nil
}

// fixedSpans partitions 1..verseCount into consecutive runs of size; the last
// run may be shorter
func fixedSpans(verseCount, size int) [][2]int {
	var spans [][2]int
	for start := 1; start <= verseCount; start += size {
		end := start + size - 1
		if end > verseCount {
			end = verseCount
		}
		spans = append(spans, [2]int{start, end})
	}
	return spans
}
