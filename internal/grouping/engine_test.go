package grouping

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/versebot/pkg/models"
)

type fakeGroupStore struct {
	groups []models.VerseGroup
	nextID int64
}

func (f *fakeGroupStore) ByChapterStrategy(_ context.Context, chapter int, strategy models.Strategy) ([]models.VerseGroup, error) {
	var out []models.VerseGroup
	for _, g := range f.groups {
		if g.Chapter == chapter && g.Strategy == strategy {
			out = append(out, g)
		}
	}
	return out, nil
}

func (f *fakeGroupStore) Create(_ context.Context, g *models.VerseGroup) error {
	f.nextID++
	g.ID = f.nextID
	f.groups = append(f.groups, *g)
	return nil
}

func (f *fakeGroupStore) DeleteByChapterStrategy(_ context.Context, chapter int, strategy models.Strategy) error {
	kept := f.groups[:0]
	for _, g := range f.groups {
		if !(g.Chapter == chapter && g.Strategy == strategy) {
			kept = append(kept, g)
		}
	}
	f.groups = kept
	return nil
}

type fakeBoundarySource struct {
	verseCount int
	marks      map[models.MarkKind][]int
	markErr    error
}

func (f *fakeBoundarySource) VerseCount(context.Context, int) (int, error) {
	return f.verseCount, nil
}

func (f *fakeBoundarySource) MarkStarts(_ context.Context, _ int, kind models.MarkKind) ([]int, error) {
	if f.markErr != nil {
		return nil, f.markErr
	}
	return f.marks[kind], nil
}

func spansOf(groups []models.VerseGroup) [][2]int {
	out := make([][2]int, len(groups))
	for i, g := range groups {
		out[i] = [2]int{g.StartVerse, g.EndVerse}
	}
	return out
}

func TestCreateGroups_FixedPartition(t *testing.T) {
	store := &fakeGroupStore{}
	engine := New(store, &fakeBoundarySource{verseCount: 12})

	res, err := engine.CreateGroups(context.Background(), 2, models.StrategyFixed, 5)
	require.NoError(t, err)
	assert.False(t, res.Degraded)
	assert.Equal(t, [][2]int{{1, 5}, {6, 10}, {11, 12}}, spansOf(res.Groups))

	for _, g := range res.Groups {
		assert.True(t, g.TestAsGroup, "generated groups are tested as a unit")
		assert.Equal(t, models.GroupStateNew, g.State)
	}
}

func TestCreateGroups_Idempotent(t *testing.T) {
	store := &fakeGroupStore{}
	engine := New(store, &fakeBoundarySource{verseCount: 12})

	first, err := engine.CreateGroups(context.Background(), 2, models.StrategyFixed, 5)
	require.NoError(t, err)
	second, err := engine.CreateGroups(context.Background(), 2, models.StrategyFixed, 5)
	require.NoError(t, err)

	assert.Equal(t, first.Groups, second.Groups)
	assert.Len(t, store.groups, 3, "repeat request must not duplicate rows")
}

func TestCreateGroups_RegenerateOnSizeChange(t *testing.T) {
	store := &fakeGroupStore{}
	engine := New(store, &fakeBoundarySource{verseCount: 12})

	_, err := engine.CreateGroups(context.Background(), 2, models.StrategyFixed, 5)
	require.NoError(t, err)

	res, err := engine.CreateGroups(context.Background(), 2, models.StrategyFixed, 4)
	require.NoError(t, err)

	assert.Equal(t, [][2]int{{1, 4}, {5, 8}, {9, 12}}, spansOf(res.Groups))
	assert.Len(t, store.groups, 3, "old size-5 rows must be discarded")
}

func TestCreateGroups_SizeClamped(t *testing.T) {
	store := &fakeGroupStore{}
	engine := New(store, &fakeBoundarySource{verseCount: 3})

	res, err := engine.CreateGroups(context.Background(), 1, models.StrategyFixed, 0)
	require.NoError(t, err)
	assert.Equal(t, [][2]int{{1, 1}, {2, 2}, {3, 3}}, spansOf(res.Groups))
}

func TestCreateGroups_SectionBoundaries(t *testing.T) {
	store := &fakeGroupStore{}
	source := &fakeBoundarySource{
		verseCount: 20,
		marks:      map[models.MarkKind][]int{models.MarkSection: {1, 8, 15}},
	}
	engine := New(store, source)

	res, err := engine.CreateGroups(context.Background(), 3, models.StrategySection, 0)
	require.NoError(t, err)
	assert.False(t, res.Degraded)
	assert.Equal(t, [][2]int{{1, 7}, {8, 14}, {15, 20}}, spansOf(res.Groups))
}

func TestCreateGroups_BoundariesNotStartingAtOne(t *testing.T) {
	store := &fakeGroupStore{}
	source := &fakeBoundarySource{
		verseCount: 10,
		marks:      map[models.MarkKind][]int{models.MarkPage: {4, 8}},
	}
	engine := New(store, source)

	res, err := engine.CreateGroups(context.Background(), 3, models.StrategyPage, 0)
	require.NoError(t, err)
	// The partition must still cover verse 1.
	assert.Equal(t, [][2]int{{1, 3}, {4, 7}, {8, 10}}, spansOf(res.Groups))
}

func TestCreateGroups_FallbackOnMissingMarks(t *testing.T) {
	store := &fakeGroupStore{}
	engine := New(store, &fakeBoundarySource{verseCount: 12})

	res, err := engine.CreateGroups(context.Background(), 3, models.StrategySection, 0)
	require.NoError(t, err, "missing marks degrade, they do not fail")
	assert.True(t, res.Degraded)
	assert.Equal(t, [][2]int{{1, 5}, {6, 10}, {11, 12}}, spansOf(res.Groups))
}

func TestCreateGroups_FallbackOnFetchError(t *testing.T) {
	store := &fakeGroupStore{}
	source := &fakeBoundarySource{verseCount: 7, markErr: errors.New("content service down")}
	engine := New(store, source)

	res, err := engine.CreateGroups(context.Background(), 3, models.StrategyPage, 0)
	require.NoError(t, err)
	assert.True(t, res.Degraded)
	assert.Equal(t, [][2]int{{1, 5}, {6, 7}}, spansOf(res.Groups))
}

func TestCreateGroups_CustomOnlyReturnsStored(t *testing.T) {
	store := &fakeGroupStore{}
	engine := New(store, &fakeBoundarySource{verseCount: 10})

	g, err := engine.AddCustomGroup(context.Background(), 4, 3, 6)
	require.NoError(t, err)
	assert.Equal(t, models.StrategyCustom, g.Strategy)

	res, err := engine.CreateGroups(context.Background(), 4, models.StrategyCustom, 0)
	require.NoError(t, err)
	require.Len(t, res.Groups, 1)
	assert.Equal(t, [][2]int{{3, 6}}, spansOf(res.Groups))
}

func TestAddCustomGroup_RejectsBadRange(t *testing.T) {
	engine := New(&fakeGroupStore{}, &fakeBoundarySource{verseCount: 10})

	for _, rng := range [][2]int{{0, 3}, {5, 4}, {8, 11}} {
		_, err := engine.AddCustomGroup(context.Background(), 1, rng[0], rng[1])
		assert.Error(t, err, "range %v", rng)
	}
}

func TestCreateGroups_PartitionInvariant(t *testing.T) {
	// Whatever the strategy, stored groups must cover 1..verseCount with no
	// gaps and no overlaps.
	cases := []struct {
		name     string
		strategy models.Strategy
		size     int
		marks    []int
	}{
		{"fixed 3", models.StrategyFixed, 3, nil},
		{"fixed 7", models.StrategyFixed, 7, nil},
		{"sections", models.StrategySection, 0, []int{1, 2, 9, 13}},
		{"degraded", models.StrategyPage, 0, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			source := &fakeBoundarySource{verseCount: 13}
			if tc.marks != nil {
				source.marks = map[models.MarkKind][]int{models.MarkSection: tc.marks}
			}
			engine := New(&fakeGroupStore{}, source)

			res, err := engine.CreateGroups(context.Background(), 9, tc.strategy, tc.size)
			require.NoError(t, err)

			next := 1
			for _, g := range res.Groups {
				require.Equal(t, next, g.StartVerse, "gap or overlap before verse %d", next)
				require.LessOrEqual(t, g.StartVerse, g.EndVerse)
				next = g.EndVerse + 1
			}
			require.Equal(t, 14, next, "partition must end at the last verse")
		})
	}
}
