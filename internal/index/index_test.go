package index

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tastelab/tasted/internal/profile"
	"github.com/tastelab/tasted/internal/taxonomy"
)

func testTaxonomy() taxonomy.Taxonomy {
	return taxonomy.Taxonomy{
		taxonomy.CategoryEmotion:   {Tags: []string{"sad", "happy"}},
		taxonomy.CategoryStoryFlow: {Tags: []string{"fast paced", "slow paced"}},
	}
}

// emoProfile builds a profile from emotion scores only, zeroes elsewhere.
func emoProfile(sad, happy float64) profile.TasteProfile {
	return profile.TasteProfile{
		EmotionScores:    map[string]float64{"sad": sad, "happy": happy},
		NarrativeTraits:  map[string]float64{"fast paced": 0, "slow paced": 0},
		EndingPreference: map[string]float64{"happy": 0, "open": 0, "bittersweet": 0},
	}
}

func testCandidates() []Candidate {
	return []Candidate{
		{ID: "1", Title: "Little Forest", Profile: emoProfile(0.1, 0.9), Genres: []string{"drama"}, ReleaseYear: 2018},
		{ID: "2", Title: "About Time", Profile: emoProfile(0.4, 0.8), Genres: []string{"romance", "drama"}, ReleaseYear: 2013},
		{ID: "3", Title: "Inside Out", Profile: emoProfile(0.6, 0.7), Genres: []string{"animation"}, ReleaseYear: 2015},
		{ID: "4", Title: "La La Land", Profile: emoProfile(0.5, 0.5), Genres: []string{"musical", "romance"}, ReleaseYear: 2016},
		{ID: "5", Title: "Parasite", Profile: emoProfile(0.9, 0.1), Genres: []string{"thriller"}, ReleaseYear: 2019},
	}
}

func TestBuildSkipsMalformedCandidates(t *testing.T) {
	cands := testCandidates()
	cands = append(cands,
		Candidate{ID: "", Title: "No ID", Profile: emoProfile(1, 0)},
		Candidate{ID: "7", Title: "", Profile: emoProfile(1, 0)},
	)

	idx := Build(testTaxonomy(), cands, zap.NewNop())
	assert.Equal(t, 5, idx.Len())
}

func TestSearchRanksBySimilarity(t *testing.T) {
	idx := Build(testTaxonomy(), testCandidates(), zap.NewNop())
	query := idx.QueryVector(emoProfile(1.0, 0.0))

	results, err := idx.Search(context.Background(), query, 3, nil)
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, "5", results[0].Candidate.ID, "most sad-leaning candidate first")
	for i := 1; i < len(results); i++ {
		assert.GreaterOrEqual(t, results[i-1].Score, results[i].Score)
	}
}

func TestSearchGenreFilterBeatsK(t *testing.T) {
	// Pool of 5, k=3, genre filter matching only 2: exactly those 2 come
	// back, ranked, regardless of k.
	idx := Build(testTaxonomy(), testCandidates(), zap.NewNop())
	query := idx.QueryVector(emoProfile(1.0, 0.0))

	results, err := idx.Search(context.Background(), query, 3, &Filters{Genres: []string{"romance"}})
	require.NoError(t, err)
	require.Len(t, results, 2)
	ids := []string{results[0].Candidate.ID, results[1].Candidate.ID}
	assert.ElementsMatch(t, []string{"2", "4"}, ids)
	assert.GreaterOrEqual(t, results[0].Score, results[1].Score)
}

func TestSearchYearRange(t *testing.T) {
	idx := Build(testTaxonomy(), testCandidates(), zap.NewNop())
	query := idx.QueryVector(emoProfile(0.5, 0.5))

	results, err := idx.Search(context.Background(), query, 10, &Filters{YearFrom: 2016, YearTo: 2018})
	require.NoError(t, err)
	require.Len(t, results, 2)
	for _, r := range results {
		assert.GreaterOrEqual(t, r.Candidate.ReleaseYear, 2016)
		assert.LessOrEqual(t, r.Candidate.ReleaseYear, 2018)
	}
}

func TestSearchEmptyResultIsValid(t *testing.T) {
	idx := Build(testTaxonomy(), testCandidates(), zap.NewNop())
	query := idx.QueryVector(emoProfile(1.0, 0.0))

	results, err := idx.Search(context.Background(), query, 5, &Filters{Genres: []string{"horror"}})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearchDimensionMismatch(t *testing.T) {
	idx := Build(testTaxonomy(), testCandidates(), zap.NewNop())

	_, err := idx.Search(context.Background(), []float64{1, 2, 3}, 5, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dimensions")
}

func TestBuildFromItemsMatchesSequentialBuild(t *testing.T) {
	tax := testTaxonomy()
	builder := profile.NewBuilder(tax, nil)
	items := []profile.Item{
		{ID: "1", Title: "Little Forest", Genres: []string{"drama"}, ReleaseYear: 2018},
		{ID: "2", Title: "About Time", Genres: []string{"romance"}, ReleaseYear: 2013},
		{ID: "3", Title: "Inside Out", Genres: []string{"animation"}, ReleaseYear: 2015},
	}

	parallel, err := BuildFromItems(context.Background(), tax, builder, items, 4, zap.NewNop())
	require.NoError(t, err)

	sequential := make([]Candidate, 0, len(items))
	for _, item := range items {
		sequential = append(sequential, Candidate{
			ID: item.ID, Title: item.Title, Profile: builder.FromItem(item),
			Genres: item.Genres, ReleaseYear: item.ReleaseYear,
		})
	}
	want := Build(tax, sequential, zap.NewNop())

	query := want.QueryVector(builder.FromText("a calm healing movie"))
	wantResults, err := want.Search(context.Background(), query, 3, nil)
	require.NoError(t, err)
	gotResults, err := parallel.Search(context.Background(), query, 3, nil)
	require.NoError(t, err)
	assert.Equal(t, wantResults, gotResults)
}

func TestHandleSwap(t *testing.T) {
	h := NewHandle(nil)
	assert.Nil(t, h.Get())

	first := Build(testTaxonomy(), testCandidates(), zap.NewNop())
	h.Swap(first)
	assert.Same(t, first, h.Get())

	second := Build(testTaxonomy(), testCandidates()[:2], zap.NewNop())
	h.Swap(second)
	assert.Same(t, second, h.Get())
	assert.Equal(t, 2, h.Get().Len())
}
