package matching

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rencanakan/ahsmatch/internal/catalog"
)

func testRepo() *catalog.MemoryRepository {
	return catalog.NewMemoryRepository([]catalog.Candidate{
		{Source: catalog.SourceAHS, ID: 1, Code: "A.4.4.1.9", Name: "Pemasangan 1 m2 dinding bata merah", Unit: "m2", UnitPrice: 150000},
		{Source: catalog.SourceAHS, ID: 2, Code: "A.4.1.1.4", Name: "Pekerjaan galian tanah biasa", Unit: "m3", UnitPrice: 95000},
		{Source: catalog.SourceAHS, ID: 3, Code: "A.4.4.3.53", Name: "Pemasangan keramik lantai 40x40", Unit: "m2", UnitPrice: 210000},
		{Source: catalog.SourceAHS, ID: 4, Code: "T.14.d", Name: "Pemadatan pasir sebagai bahan pengisi", Unit: "m3", UnitPrice: 80000},
		{Source: catalog.SourceAHS, ID: 5, Code: "B.2.1", Name: "Pengecatan dinding dalam", Unit: "m2", UnitPrice: 35000},
		{Source: catalog.SourceAHS, ID: 6, Code: "B.7.1", Name: "Pemasangan keramik dinding kamar mandi", Unit: "m2", UnitPrice: 230000},
	})
}

func TestNormCode(t *testing.T) {
	assert.Equal(t, "A4114", normCode("A.4.1.1.4"))
	assert.Equal(t, "A4114", normCode("a 4 1 1 4"))
	assert.Equal(t, "T14D", normCode("T.14.d"))
	assert.Equal(t, "", normCode("..."))
}

func TestLooksLikeCode(t *testing.T) {
	assert.True(t, looksLikeCode("A.4.1.1.4"))
	assert.True(t, looksLikeCode("T.14.d"))
	assert.False(t, looksLikeCode("pemasangan keramik"))
	assert.False(t, looksLikeCode("m2"))
	assert.True(t, looksLikeCode("40x40"))
}

func TestExactMatcher(t *testing.T) {
	ctx := context.Background()
	matcher := NewExactMatcher(testRepo())

	t.Run("code_match", func(t *testing.T) {
		match, err := matcher.Match(ctx, "A.4.1.1.4")
		require.NoError(t, err)
		require.NotNil(t, match)
		assert.Equal(t, int64(2), match.ID)
		assert.Equal(t, MatchedOnCode, match.MatchedOn)
		assert.Equal(t, 1.0, match.Confidence)
	})

	t.Run("code_match_lowercase", func(t *testing.T) {
		match, err := matcher.Match(ctx, "a.4.1.1.4")
		require.NoError(t, err)
		require.NotNil(t, match)
		assert.Equal(t, int64(2), match.ID)
	})

	t.Run("spaced_code_match", func(t *testing.T) {
		match, err := matcher.Match(ctx, "a 4 1 1 4")
		require.NoError(t, err)
		require.NotNil(t, match)
		assert.Equal(t, int64(2), match.ID)
		assert.Equal(t, MatchedOnCode, match.MatchedOn)
	})

	t.Run("name_match", func(t *testing.T) {
		match, err := matcher.Match(ctx, "Pekerjaan Galian Tanah Biasa")
		require.NoError(t, err)
		require.NotNil(t, match)
		assert.Equal(t, int64(2), match.ID)
		assert.Equal(t, MatchedOnName, match.MatchedOn)
		assert.Equal(t, 1.0, match.Confidence)
	})

	t.Run("name_match_with_noise", func(t *testing.T) {
		// Punctuation and case differences normalize away.
		match, err := matcher.Match(ctx, "  pekerjaan galian tanah biasa!  ")
		require.NoError(t, err)
		require.NotNil(t, match)
		assert.Equal(t, int64(2), match.ID)
	})

	t.Run("no_match", func(t *testing.T) {
		match, err := matcher.Match(ctx, "sesuatu yang lain")
		require.NoError(t, err)
		assert.Nil(t, match)
	})

	t.Run("empty", func(t *testing.T) {
		match, err := matcher.Match(ctx, "   ")
		require.NoError(t, err)
		assert.Nil(t, match)
	})
}
