package probable

import (
	"context"
	"errors"
	"math/rand"
	"net/url"
	"sort"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rpggio/bigyear/internal/assets"
	"github.com/rpggio/bigyear/internal/domain/checklist"
	"github.com/rpggio/bigyear/internal/domain/species"
	"github.com/rpggio/bigyear/internal/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStats struct {
	snapshots map[species.Class]map[int][]assets.WeekStatRow
	failures  map[species.Class]error
	calls     atomic.Int32
}

func (f *fakeStats) WeekStat(_ context.Context, class species.Class, week int) (*assets.WeekStat, error) {
	f.calls.Add(1)
	if err := f.failures[class]; err != nil {
		return nil, err
	}
	return &assets.WeekStat{Class: class, Week: week, Species: f.snapshots[class][week]}, nil
}

type fixture struct {
	db        *sqlite.DB
	checklist *checklist.Service
	entries   *sqlite.EntryRepository
	stats     *fakeStats
	svc       *Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	db, err := sqlite.Open(ctx, ":memory:", sqlite.Options{})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	speciesRepo := sqlite.NewSpeciesRepository(db)
	require.NoError(t, speciesRepo.PutMany(ctx, []species.Species{
		{ID: "A1", Class: species.Aves, DanishName: "Solsort", EnglishName: "Blackbird", LatinName: "Turdus merula", SortCode: 10},
		{ID: "A2", Class: species.Aves, DanishName: "Musvit", EnglishName: "Great Tit", LatinName: "Parus major", SortCode: 5},
		{ID: "A3", Class: species.Aves, DanishName: "Rødhals", EnglishName: "Robin", LatinName: "Erithacus rubecula", SortCode: 20},
		{ID: "M1", Class: species.Mammalia, DanishName: "Egern", SortCode: 1},
	}))

	entries := sqlite.NewEntryRepository(db)
	lists := checklist.NewService(sqlite.NewListRepository(db), entries, speciesRepo, nil, nil)
	stats := &fakeStats{snapshots: map[species.Class]map[int][]assets.WeekStatRow{}}

	return &fixture{
		db:        db,
		checklist: lists,
		entries:   entries,
		stats:     stats,
		svc:       NewService(stats, entries, speciesRepo, lists, nil),
	}
}

func (f *fixture) createList(t *testing.T, classes ...species.Class) *checklist.List {
	t.Helper()
	list, err := f.checklist.CreateList(context.Background(), checklist.CreateListRequest{
		Name: "Test", DimensionID: "dk-2026", SpeciesClasses: classes,
	})
	require.NoError(t, err)
	return list
}

func (f *fixture) entryFor(t *testing.T, listID, speciesID string) checklist.Entry {
	t.Helper()
	entries, err := f.entries.GetByList(context.Background(), listID)
	require.NoError(t, err)
	for _, e := range entries {
		if e.SpeciesID == speciesID {
			return e
		}
	}
	t.Fatalf("no entry for %s", speciesID)
	return checklist.Entry{}
}

func speciesIDs(items []Candidate) []string {
	ids := make([]string, len(items))
	for i, c := range items {
		ids[i] = c.SpeciesID
	}
	return ids
}

func TestLess_TieBreakIsTotal(t *testing.T) {
	candidates := []Candidate{
		{SpeciesID: "C", ObservationCount: 5, RelativeScore: 0.5},
		{SpeciesID: "A", ObservationCount: 5, RelativeScore: 0.5},
		{SpeciesID: "B", ObservationCount: 5, RelativeScore: 0.5},
		{SpeciesID: "Z", ObservationCount: 5, RelativeScore: 0.9},
		{SpeciesID: "Y", ObservationCount: 7, RelativeScore: 0.1},
		{SpeciesID: "X", ObservationCount: 1, RelativeScore: 1.0},
	}
	want := []string{"Y", "Z", "A", "B", "C", "X"}

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 50; i++ {
		shuffled := append([]Candidate(nil), candidates...)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
		sort.SliceStable(shuffled, func(a, b int) bool { return Less(shuffled[a], shuffled[b]) })
		require.Equal(t, want, speciesIDs(shuffled))
	}
}

func TestLess_StrictWeakOrdering(t *testing.T) {
	candidates := []Candidate{
		{SpeciesID: "A1", ObservationCount: 5, RelativeScore: 0.2},
		{SpeciesID: "A3", ObservationCount: 5, RelativeScore: 0.2},
		{SpeciesID: "A2", ObservationCount: 5, RelativeScore: 0.7},
		{SpeciesID: "A4", ObservationCount: 3, RelativeScore: 0.7},
	}
	for _, a := range candidates {
		assert.False(t, Less(a, a), "irreflexive")
		for _, b := range candidates {
			if Less(a, b) {
				assert.False(t, Less(b, a), "asymmetric")
			}
			for _, c := range candidates {
				if Less(a, b) && Less(b, c) {
					assert.True(t, Less(a, c), "transitive")
				}
			}
		}
	}
}

func TestTopUnseenForList_RanksAndSkipsSeen(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	list := f.createList(t, species.Aves)

	f.stats.snapshots[species.Aves] = map[int][]assets.WeekStatRow{
		10: {
			{SpeciesID: "A3", ObservationCount: 5, RelativeScore: 0.4},
			{SpeciesID: "A2", ObservationCount: 9, RelativeScore: 0.1},
			{SpeciesID: "A1", ObservationCount: 5, RelativeScore: 0.4},
			{SpeciesID: "X9", ObservationCount: 99},
		},
	}

	res, err := f.svc.TopUnseenForList(ctx, list.ID, 10, 10)
	require.NoError(t, err)
	assert.Equal(t, 10, res.Week)
	assert.Equal(t, []string{"A2", "A1", "A3"}, speciesIDs(res.Items))
	assert.Equal(t, "Musvit", res.Items[0].DanishName)
	assert.Equal(t, "Parus major", res.Items[0].LatinName)
	assert.NotEmpty(t, res.Items[0].EntryID)

	_, err = f.checklist.ToggleEntrySeen(ctx, f.entryFor(t, list.ID, "A2"), true)
	require.NoError(t, err)

	res, err = f.svc.TopUnseenForList(ctx, list.ID, 10, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"A1", "A3"}, speciesIDs(res.Items))
}

func TestTopUnseenForList_RelativeScoreDecidesBeforeID(t *testing.T) {
	f := newFixture(t)
	list := f.createList(t, species.Aves)

	f.stats.snapshots[species.Aves] = map[int][]assets.WeekStatRow{
		10: {
			{SpeciesID: "A1", ObservationCount: 5, RelativeScore: 0.1},
			{SpeciesID: "A3", ObservationCount: 5, RelativeScore: 0.8},
		},
	}

	res, err := f.svc.TopUnseenForList(context.Background(), list.ID, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"A3", "A1"}, speciesIDs(res.Items))
}

func TestTopUnseenForList_LimitAndDedup(t *testing.T) {
	f := newFixture(t)
	list := f.createList(t, species.Aves, species.Mammalia)

	f.stats.snapshots[species.Aves] = map[int][]assets.WeekStatRow{
		3: {
			{SpeciesID: "A1", ObservationCount: 1},
			{SpeciesID: "A2", ObservationCount: 2},
			{SpeciesID: "A3", ObservationCount: 3},
		},
	}
	f.stats.snapshots[species.Mammalia] = map[int][]assets.WeekStatRow{
		3: {
			{SpeciesID: "M1", ObservationCount: 4},
			{SpeciesID: "A3", ObservationCount: 1},
		},
	}

	res, err := f.svc.TopUnseenForList(context.Background(), list.ID, 3, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"M1", "A3"}, speciesIDs(res.Items))

	all, err := f.svc.TopUnseenForList(context.Background(), list.ID, 3, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"M1", "A3", "A2", "A1"}, speciesIDs(all.Items))
}

func TestTopUnseenForList_AllSeenSkipsFetch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	list := f.createList(t, species.Mammalia)

	_, err := f.checklist.ToggleEntrySeen(ctx, f.entryFor(t, list.ID, "M1"), true)
	require.NoError(t, err)

	res, err := f.svc.TopUnseenForList(ctx, list.ID, 5, 10)
	require.NoError(t, err)
	assert.Empty(t, res.Items)
	assert.Equal(t, int32(0), f.stats.calls.Load())
}

func TestTopUnseenForList_FetchFailureIsEmptySnapshot(t *testing.T) {
	f := newFixture(t)
	list := f.createList(t, species.Aves, species.Mammalia)

	f.stats.failures = map[species.Class]error{species.Aves: errors.New("offline")}
	f.stats.snapshots[species.Mammalia] = map[int][]assets.WeekStatRow{7: {{SpeciesID: "M1", ObservationCount: 2}}}

	res, err := f.svc.TopUnseenForList(context.Background(), list.ID, 7, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"M1"}, speciesIDs(res.Items))
}

func TestTopUnseenForList_Validation(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.TopUnseenForList(context.Background(), "", 10, 10)
	require.ErrorIs(t, err, ErrListRequired)

	_, err = f.svc.TopUnseenForList(context.Background(), "l1", 53, 10)
	require.ErrorIs(t, err, ErrInvalidWeek)

	_, err = f.svc.TopUnseenForList(context.Background(), "l1", 0, 10)
	require.ErrorIs(t, err, ErrInvalidWeek)
}

func TestForClass_UsesSnapshotNameFallback(t *testing.T) {
	f := newFixture(t)
	f.stats.snapshots[species.Aves] = map[int][]assets.WeekStatRow{
		20: {
			{SpeciesID: "A1", ObservationCount: 3, DanishName: "ignored"},
			{SpeciesID: "B7", ObservationCount: 8, DanishName: "Havørn"},
			{SpeciesID: "A2", ObservationCount: 3},
		},
	}

	res, err := f.svc.ForClass(context.Background(), "aves", 20, 2)
	require.NoError(t, err)
	require.Equal(t, []string{"B7", "A1"}, speciesIDs(res.Items))
	assert.Equal(t, "Havørn", res.Items[0].DanishName)
	assert.Empty(t, res.Items[0].EnglishName)
	assert.Equal(t, "Solsort", res.Items[1].DanishName)

	_, err = f.svc.ForClass(context.Background(), "", 20, 2)
	require.ErrorIs(t, err, ErrClassRequired)

	_, err = f.svc.ForClass(context.Background(), "Fungi", 20, 2)
	require.ErrorIs(t, err, species.ErrInvalidClass)
}

func TestForListAndClass_IncludesSeenEntries(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	list := f.createList(t, species.Aves)

	_, err := f.checklist.ToggleEntrySeen(ctx, f.entryFor(t, list.ID, "A1"), true)
	require.NoError(t, err)

	f.stats.snapshots[species.Aves] = map[int][]assets.WeekStatRow{
		12: {
			{SpeciesID: "A1", ObservationCount: 4},
			{SpeciesID: "A3", ObservationCount: 4},
			{SpeciesID: "Z1", ObservationCount: 40},
		},
	}

	res, err := f.svc.ForListAndClass(ctx, list.ID, species.Aves, 12, 0)
	require.NoError(t, err)
	require.Equal(t, []string{"A1", "A3"}, speciesIDs(res.Items))
	assert.True(t, res.Items[0].Seen)
	assert.False(t, res.Items[1].Seen)

	res, err = f.svc.ForListAndClass(ctx, list.ID, species.Aves, 12, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"A1"}, speciesIDs(res.Items))
}

func TestObservationCounts_MaxAcrossClasses(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	list := f.createList(t, species.Aves, species.Mammalia)

	f.stats.snapshots[species.Aves] = map[int][]assets.WeekStatRow{
		12: {{SpeciesID: "A1", ObservationCount: 4}, {SpeciesID: "X1", ObservationCount: 2}},
	}
	f.stats.snapshots[species.Mammalia] = map[int][]assets.WeekStatRow{
		12: {{SpeciesID: "M1", ObservationCount: 3}, {SpeciesID: "X1", ObservationCount: 9}},
	}

	counts, err := f.svc.ObservationCounts(ctx, list.ID, 12)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"A1": 4, "M1": 3, "X1": 9}, counts)
}

func TestObservationCounts_FailedClassCountsAsEmpty(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	list := f.createList(t, species.Aves, species.Mammalia)

	f.stats.snapshots[species.Aves] = map[int][]assets.WeekStatRow{
		12: {{SpeciesID: "A1", ObservationCount: 4}},
	}
	f.stats.failures = map[species.Class]error{species.Mammalia: errors.New("offline")}

	counts, err := f.svc.ObservationCounts(ctx, list.ID, 12)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"A1": 4}, counts)
}

func TestObservationCounts_Validation(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.ObservationCounts(context.Background(), "", 12)
	require.ErrorIs(t, err, ErrListRequired)

	list := f.createList(t, species.Aves)
	_, err = f.svc.ObservationCounts(context.Background(), list.ID, 0)
	require.ErrorIs(t, err, ErrInvalidWeek)
}

type trendingStats struct {
	*fakeStats
	trends []assets.WeeklyTrend
	err    error
}

func (s *trendingStats) SpeciesWeeklyTrend(context.Context) ([]assets.WeeklyTrend, error) {
	return s.trends, s.err
}

func TestForClass_AttachesWeeklyTrend(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.stats.snapshots[species.Aves] = map[int][]assets.WeekStatRow{
		12: {{SpeciesID: "A1", ObservationCount: 4}, {SpeciesID: "A2", ObservationCount: 2}},
	}
	stats := &trendingStats{fakeStats: f.stats, trends: []assets.WeeklyTrend{
		{SpeciesID: "A1", WeeklyTrend: "0,1,3,4"},
	}}
	svc := NewService(stats, f.entries, sqlite.NewSpeciesRepository(f.db), f.checklist, nil)

	res, err := svc.ForClass(ctx, species.Aves, 12, 0)
	require.NoError(t, err)
	require.Equal(t, []string{"A1", "A2"}, speciesIDs(res.Items))
	assert.Equal(t, "0,1,3,4", res.Items[0].WeeklyTrend)
	assert.Empty(t, res.Items[1].WeeklyTrend)
}

func TestForClass_MissingTrendFileIsIgnored(t *testing.T) {
	f := newFixture(t)
	f.stats.snapshots[species.Aves] = map[int][]assets.WeekStatRow{
		12: {{SpeciesID: "A1", ObservationCount: 4}},
	}
	stats := &trendingStats{fakeStats: f.stats, err: assets.ErrNotFound}
	svc := NewService(stats, f.entries, sqlite.NewSpeciesRepository(f.db), f.checklist, nil)

	res, err := svc.ForClass(context.Background(), species.Aves, 12, 0)
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Empty(t, res.Items[0].WeeklyTrend)
}

func TestCurrentWeek(t *testing.T) {
	assert.Equal(t, 10, CurrentWeek(time.Date(2026, time.March, 4, 12, 0, 0, 0, time.UTC)))
	// 2026-12-31 falls in ISO week 53 of 2026.
	assert.Equal(t, 52, CurrentWeek(time.Date(2026, time.December, 31, 12, 0, 0, 0, time.UTC)))
}

func TestKnownLocationsURL(t *testing.T) {
	assert.Empty(t, KnownLocationsURL("", 10, 2026))
	assert.Empty(t, KnownLocationsURL("A1", 0, 2026))
	assert.Empty(t, KnownLocationsURL("A1", 54, 2026))

	link := KnownLocationsURL(" 123 ", 53, 2026)
	u, err := url.Parse(link)
	require.NoError(t, err)
	assert.Equal(t, "dofbasen.dk", u.Host)
	assert.Equal(t, "/search/result.php", u.Path)
	q := u.Query()
	assert.Equal(t, "53", q.Get("uge"))
	assert.Equal(t, "2025", q.Get("aar_first"))
	assert.Equal(t, "2026", q.Get("aar_second"))
	assert.Equal(t, "123", q.Get("hiddenart"))
	assert.Equal(t, "table", q.Get("design"))
	assert.Equal(t, "dato", q.Get("sortering"))
}
