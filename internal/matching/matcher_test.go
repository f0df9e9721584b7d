package matching

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rencanakan/ahsmatch/internal/cache"
	"github.com/rencanakan/ahsmatch/internal/catalog"
	"github.com/rencanakan/ahsmatch/internal/complexity"
	"github.com/rencanakan/ahsmatch/internal/wordclass"
)

func newTestMatcher(t *testing.T, opts ...Option) *Matcher {
	t.Helper()
	return NewMatcher(testRepo(), opts...)
}

func TestBestMatchExactName(t *testing.T) {
	ctx := context.Background()
	matcher := newTestMatcher(t)

	result, err := matcher.BestMatch(ctx, "Pekerjaan galian tanah biasa", "")
	require.NoError(t, err)

	assert.Equal(t, StatusFound, result.Status)
	require.NotNil(t, result.Best)
	assert.Equal(t, int64(2), result.Best.ID)
	assert.Equal(t, 1.0, result.Best.Confidence)
	assert.Empty(t, result.Matches)
}

func TestBestMatchCodeQuery(t *testing.T) {
	ctx := context.Background()
	matcher := newTestMatcher(t)

	// A bare code normalizes to one token, so it takes the
	// single-word path and comes back as a one-element list.
	result, err := matcher.BestMatch(ctx, "A.4.1.1.4", "")
	require.NoError(t, err)

	assert.Equal(t, StatusSimilar, result.Status)
	require.Len(t, result.Matches, 1)
	assert.Equal(t, int64(2), result.Matches[0].ID)
	assert.Equal(t, MatchedOnCode, result.Matches[0].MatchedOn)
}

func TestBestMatchFuzzy(t *testing.T) {
	ctx := context.Background()
	matcher := newTestMatcher(t)

	result, err := matcher.BestMatch(ctx, "pengecatan dinding", "")
	require.NoError(t, err)

	require.NotNil(t, result.Best)
	assert.Equal(t, int64(5), result.Best.ID)
	assert.Contains(t, []string{StatusFound, StatusSimilar}, result.Status)
}

func TestBestMatchSingleWord(t *testing.T) {
	ctx := context.Background()
	matcher := newTestMatcher(t)

	result, err := matcher.BestMatch(ctx, "keramik", "")
	require.NoError(t, err)

	// Single materials return a ranked list, not one winner.
	assert.Nil(t, result.Best)
	require.NotEmpty(t, result.Matches)
	for i := 1; i < len(result.Matches); i++ {
		assert.GreaterOrEqual(t, result.Matches[i-1].Confidence, result.Matches[i].Confidence)
	}
	assert.LessOrEqual(t, len(result.Matches), DefaultConfig().MultipleLimit)
}

func TestBestMatchComplexQueryExactFirst(t *testing.T) {
	ctx := context.Background()

	// A vocabulary where work verbs double as technical terms pushes
	// "pengecoran pemadatan" past the fan-out threshold, so the query
	// takes the multi-match path.
	tables := wordclass.DefaultTables()
	tables.Merge([]string{"pengecoran", "pemadatan"}, nil, nil)

	repo := catalog.NewMemoryRepository([]catalog.Candidate{
		{Source: catalog.SourceAHS, ID: 7, Code: "C.1.2", Name: "Pengecoran pemadatan", Unit: "m3", UnitPrice: 120000},
	})
	matcher := NewMatcher(repo, WithAnalyzer(complexity.NewAnalyzer(tables)))

	// An exact catalog name still wins on that path.
	result, err := matcher.BestMatch(ctx, "Pengecoran pemadatan", "")
	require.NoError(t, err)

	assert.Equal(t, StatusFound, result.Status)
	require.NotNil(t, result.Best)
	assert.Equal(t, int64(7), result.Best.ID)
	assert.Equal(t, 1.0, result.Best.Confidence)
	assert.Empty(t, result.Matches)
}

func TestBestMatchNotFound(t *testing.T) {
	ctx := context.Background()

	var recordedDesc, recordedUnit string
	matcher := newTestMatcher(t, WithUnmatchedRecorder(func(description, unit string) {
		recordedDesc, recordedUnit = description, unit
	}))

	result, err := matcher.BestMatch(ctx, "zzz qqq xxx yyy", "ls")
	require.NoError(t, err)

	assert.Equal(t, StatusNotFound, result.Status)
	assert.Nil(t, result.Best)
	assert.Empty(t, result.Matches)
	assert.Equal(t, "zzz qqq xxx yyy", recordedDesc)
	assert.Equal(t, "ls", recordedUnit)
}

func TestBestMatchEmptyQuery(t *testing.T) {
	ctx := context.Background()
	matcher := newTestMatcher(t)

	for _, input := range []string{"", "   ", "!!! ???"} {
		result, err := matcher.BestMatch(ctx, input, "")
		require.NoError(t, err, "input: %q", input)
		assert.Equal(t, StatusNotFound, result.Status, "input: %q", input)
	}
}

func TestBestMatchUnitFilter(t *testing.T) {
	ctx := context.Background()
	matcher := newTestMatcher(t)

	t.Run("compatible_unit_passes", func(t *testing.T) {
		result, err := matcher.BestMatch(ctx, "pengecatan dinding", "m2")
		require.NoError(t, err)
		require.NotNil(t, result.Best)
		assert.Equal(t, int64(5), result.Best.ID)
		assert.Empty(t, result.Alternatives)
	})

	t.Run("incompatible_unit_yields_alternatives", func(t *testing.T) {
		result, err := matcher.BestMatch(ctx, "pengecatan dinding", "kg")
		require.NoError(t, err)

		assert.Equal(t, StatusNotFound, result.Status)
		assert.Nil(t, result.Best)
		assert.Equal(t, AlternativesMessage, result.Message)
		require.NotEmpty(t, result.Alternatives)
		assert.Equal(t, int64(5), result.Alternatives[0].ID)
	})

	t.Run("list_filtered_to_compatible", func(t *testing.T) {
		result, err := matcher.BestMatch(ctx, "keramik", "m2")
		require.NoError(t, err)

		require.NotEmpty(t, result.Matches)
		for _, m := range result.Matches {
			assert.Equal(t, "m2", m.Unit)
		}
	})
}

func TestBestMatchEnglishQuery(t *testing.T) {
	ctx := context.Background()
	matcher := newTestMatcher(t)

	// "wall painting" -> "dinding pengecatan" via the glossary.
	result, err := matcher.BestMatch(ctx, "wall painting", "")
	require.NoError(t, err)

	require.NotNil(t, result.Best)
	assert.Equal(t, int64(5), result.Best.ID)
}

func TestBestMatchAbbreviations(t *testing.T) {
	ctx := context.Background()
	matcher := newTestMatcher(t)

	// "psg krmk dnd kamar mandi" expands before matching.
	result, err := matcher.BestMatch(ctx, "psg krmk dnd kamar mandi", "")
	require.NoError(t, err)

	require.NotNil(t, result.Best)
	assert.Equal(t, int64(6), result.Best.ID)
}

func TestBestMatchMemoized(t *testing.T) {
	ctx := context.Background()

	normMemo, err := cache.NewMemo[string](128)
	require.NoError(t, err)
	resultMemo, err := cache.NewMemo[Result](32)
	require.NoError(t, err)

	matcher := newTestMatcher(t, WithCaches(normMemo, resultMemo))

	first, err := matcher.BestMatch(ctx, "pengecatan dinding", "m2")
	require.NoError(t, err)
	second, err := matcher.BestMatch(ctx, "pengecatan dinding", "m2")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Greater(t, resultMemo.Stats().Hits, int64(0))

	matcher.InvalidateCache()
	assert.Zero(t, resultMemo.Stats().Len)
}

func TestDeriveStatus(t *testing.T) {
	match := Match{Confidence: 0.8}
	exact := Match{Confidence: 1.0}

	testCases := []struct {
		name     string
		result   Result
		expected string
	}{
		{"exact_best", Result{Best: &exact}, StatusFound},
		{"fuzzy_best", Result{Best: &match}, StatusSimilar},
		{"single_item_list", Result{Matches: []Match{match}}, StatusSimilar},
		{"multi_item_list", Result{Matches: []Match{match, match, match}}, "found 3 similar"},
		{"empty", Result{}, StatusNotFound},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, deriveStatus(tc.result))
		})
	}
}
