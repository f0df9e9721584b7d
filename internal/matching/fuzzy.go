package matching

import (
	"context"
	"math"
	"sort"
	"strings"

	"github.com/rencanakan/ahsmatch/internal/cache"
	"github.com/rencanakan/ahsmatch/internal/catalog"
	"github.com/rencanakan/ahsmatch/internal/textnorm"
	"github.com/rencanakan/ahsmatch/internal/units"
)

// FuzzyMatcher scores catalog candidates against a description with a
// ConfidenceScorer. Candidate recall goes through the repository's
// token index, widened with action synonyms; when nothing is recalled
// the whole catalog is scanned.
type FuzzyMatcher struct {
	repo          catalog.Repository
	scorer        ConfidenceScorer
	minSimilarity float64
	normMemo      *cache.Memo[string]
}

// NewFuzzyMatcher creates a fuzzy matcher. minSimilarity is clamped to
// [0,1]; a nil scorer selects FuzzyConfidenceScorer. normMemo, when
// non-nil, caches candidate-name normalizations across queries.
func NewFuzzyMatcher(repo catalog.Repository, minSimilarity float64, scorer ConfidenceScorer, normMemo *cache.Memo[string]) *FuzzyMatcher {
	if scorer == nil {
		scorer = FuzzyConfidenceScorer{}
	}
	return &FuzzyMatcher{
		repo:          repo,
		scorer:        scorer,
		minSimilarity: clamp01(minSimilarity),
		normMemo:      normMemo,
	}
}

// Match returns the single best candidate at or above the similarity
// floor, or nil. The unit, when non-empty, adds a compatibility bonus
// to candidates whose unit agrees.
func (m *FuzzyMatcher) Match(ctx context.Context, description, unit string) (*Match, error) {
	normQuery := textnorm.Normalize(strings.TrimSpace(description))
	if normQuery == "" {
		return nil, nil
	}

	var best *Match
	err := m.scan(ctx, normQuery, unit, func(match Match) {
		if best == nil || match.Confidence > best.Confidence {
			m := match
			best = &m
		}
	})
	if err != nil {
		return nil, err
	}
	return best, nil
}

// MatchMultiple returns up to limit candidates at or above the
// similarity floor, sorted by confidence descending. Ties keep catalog
// order.
func (m *FuzzyMatcher) MatchMultiple(ctx context.Context, description, unit string, limit int) ([]Match, error) {
	if limit <= 0 {
		return nil, nil
	}

	normQuery := textnorm.Normalize(strings.TrimSpace(description))
	if normQuery == "" {
		return nil, nil
	}

	var matches []Match
	err := m.scan(ctx, normQuery, unit, func(match Match) {
		matches = append(matches, match)
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Confidence > matches[j].Confidence
	})
	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

// scan recalls candidates, scores each, and emits those at or above
// the floor.
func (m *FuzzyMatcher) scan(ctx context.Context, normQuery, unit string, emit func(Match)) error {
	candidates, err := m.recall(ctx, normQuery)
	if err != nil {
		return err
	}

	for _, cand := range candidates {
		normCand := m.normalizeName(cand.Name)
		if normCand == "" {
			continue
		}

		conf := m.scorer.Score(normQuery, normCand)
		if unit != "" && units.Compatible(candidateUnit(cand), unit) {
			conf = min(1.0, conf+units.UnitCompatibilityBonus)
		}
		if conf < m.minSimilarity {
			continue
		}

		emit(Match{
			Candidate:  cand,
			MatchedOn:  MatchedOnName,
			Confidence: round4(conf),
		})
	}
	return nil
}

func (m *FuzzyMatcher) recall(ctx context.Context, normQuery string) ([]catalog.Candidate, error) {
	tokens := ExpandTokens(strings.Split(normQuery, " "))
	candidates, err := m.repo.FindCandidatesByNameTokens(ctx, tokens)
	if err != nil {
		return nil, err
	}

	// Code-like tokens widen recall to everything under that code
	// prefix, so a partial code plus a few words still reaches the
	// right catalog section.
	for _, token := range tokens {
		if !looksLikeCode(token) || !strings.ContainsAny(token, ".-") {
			continue
		}
		byPrefix, err := m.repo.FindCandidatesByCodePrefix(ctx, token)
		if err != nil {
			return nil, err
		}
		candidates = mergeCandidates(candidates, byPrefix)
	}

	if len(candidates) == 0 {
		return m.repo.All(ctx)
	}
	return candidates, nil
}

// mergeCandidates appends extras not already present, keyed by source
// and id.
func mergeCandidates(base, extra []catalog.Candidate) []catalog.Candidate {
	if len(extra) == 0 {
		return base
	}
	type key struct {
		source string
		id     int64
	}
	seen := make(map[key]bool, len(base))
	for _, c := range base {
		seen[key{c.Source, c.ID}] = true
	}
	for _, c := range extra {
		if !seen[key{c.Source, c.ID}] {
			seen[key{c.Source, c.ID}] = true
			base = append(base, c)
		}
	}
	return base
}

func (m *FuzzyMatcher) normalizeName(name string) string {
	if m.normMemo == nil {
		return textnorm.Normalize(name)
	}
	normalized, err := m.normMemo.Do(cache.Key("norm", name), func() (string, error) {
		return textnorm.Normalize(name), nil
	})
	if err != nil {
		return textnorm.Normalize(name)
	}
	return normalized
}

// candidateUnit is the candidate's declared unit, falling back to the
// unit inferred from its name.
func candidateUnit(cand catalog.Candidate) string {
	if unit := strings.TrimSpace(cand.Unit); unit != "" {
		return unit
	}
	return units.InferFromDescription(cand.Name)
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
