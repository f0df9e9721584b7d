package matching

import (
	"context"
	"strings"
	"unicode"

	"github.com/rencanakan/ahsmatch/internal/catalog"
	"github.com/rencanakan/ahsmatch/internal/textnorm"
)

// MatchedOn values.
const (
	MatchedOnCode = "code"
	MatchedOnName = "name"
)

// Match is one catalog hit with its provenance and confidence.
type Match struct {
	catalog.Candidate
	MatchedOn  string  `json:"matched_on"`
	Confidence float64 `json:"confidence"`
}

// ExactMatcher resolves descriptions that are catalog codes or whole
// catalog names. Both paths yield confidence 1.0.
type ExactMatcher struct {
	repo catalog.Repository
}

// NewExactMatcher creates an exact matcher over the repository.
func NewExactMatcher(repo catalog.Repository) *ExactMatcher {
	return &ExactMatcher{repo: repo}
}

// Match returns the exact hit for the description, or nil.
func (m *ExactMatcher) Match(ctx context.Context, description string) (*Match, error) {
	raw := strings.TrimSpace(description)
	if raw == "" {
		return nil, nil
	}

	if looksLikeCode(raw) {
		// Normalization folds spaced codes ("A 4 1 1 4") into their
		// dotted form. The uppercased probe covers input that lost its
		// case to abbreviation expansion.
		for _, probe := range []string{raw, textnorm.Normalize(raw), textnorm.Normalize(strings.ToUpper(raw))} {
			cand, err := m.repo.FindByCode(ctx, probe)
			if err != nil {
				return nil, err
			}
			if cand != nil && normCode(cand.Code) == normCode(raw) {
				return &Match{Candidate: *cand, MatchedOn: MatchedOnCode, Confidence: 1.0}, nil
			}
		}
	}

	cand, err := m.repo.FindByNameExact(ctx, textnorm.Normalize(raw))
	if err != nil {
		return nil, err
	}
	if cand != nil {
		return &Match{Candidate: *cand, MatchedOn: MatchedOnName, Confidence: 1.0}, nil
	}
	return nil, nil
}

// normCode keeps only alphanumerics, uppercased, so "a.4.1.1.4" and
// "A 4 1 1 4" compare equal.
func normCode(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToUpper(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// looksLikeCode reports whether the input resembles a catalog code:
// mixed letters and digits with at least three alphanumerics.
func looksLikeCode(raw string) bool {
	hasLetter, hasDigit := false, false
	for _, r := range raw {
		if unicode.IsLetter(r) {
			hasLetter = true
		}
		if unicode.IsDigit(r) {
			hasDigit = true
		}
	}
	return hasLetter && hasDigit && len(normCode(raw)) >= 3
}
