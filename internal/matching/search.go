package matching

import (
	"context"
	"strings"

	apperrors "github.com/rencanakan/ahsmatch/internal/errors"
	"github.com/rencanakan/ahsmatch/internal/textnorm"
)

// DefaultSearchLimit caps candidate searches when the caller passes no
// limit of its own.
const DefaultSearchLimit = 10

// CandidateSummary is the slim row shape returned by SearchCandidates.
type CandidateSummary struct {
	Source string `json:"source"`
	ID     int64  `json:"id"`
	Code   string `json:"code"`
	Name   string `json:"name"`
}

// SearchCandidates looks up catalog rows sharing tokens with term, in
// catalog order. Used by curation tooling to inspect what the matcher
// can see for a given phrase.
func (m *Matcher) SearchCandidates(ctx context.Context, term string, limit int) ([]CandidateSummary, error) {
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	normalized := textnorm.Normalize(m.prepare(term))
	if normalized == "" {
		return []CandidateSummary{}, nil
	}

	candidates, err := m.repo.FindCandidatesByNameTokens(ctx, ExpandTokens(strings.Fields(normalized)))
	if err != nil {
		return nil, apperrors.NewMatchingError(term, err)
	}

	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	summaries := make([]CandidateSummary, 0, len(candidates))
	for _, c := range candidates {
		summaries = append(summaries, CandidateSummary{
			Source: c.Source,
			ID:     c.ID,
			Code:   c.Code,
			Name:   c.Name,
		})
	}
	return summaries, nil
}
