package matching

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/rencanakan/ahsmatch/internal/cache"
	"github.com/rencanakan/ahsmatch/internal/catalog"
	"github.com/rencanakan/ahsmatch/internal/complexity"
	apperrors "github.com/rencanakan/ahsmatch/internal/errors"
	"github.com/rencanakan/ahsmatch/internal/textnorm"
	"github.com/rencanakan/ahsmatch/internal/units"
)

// Result statuses.
const (
	StatusFound    = "found"
	StatusSimilar  = "similar"
	StatusNotFound = "not found"
)

// AlternativesMessage accompanies results where every match was
// eliminated by the unit filter.
const AlternativesMessage = "No matches with the same unit found."

// Config holds the matching thresholds.
type Config struct {
	// FuzzySingleThreshold is the floor for a single fuzzy best match
	// on multi-word queries.
	FuzzySingleThreshold float64
	// FuzzyMultipleThreshold is the floor for the multi-result
	// fallback on multi-word queries.
	FuzzyMultipleThreshold float64
	// SingleWordThreshold is the floor for single-word queries, which
	// always return a result list.
	SingleWordThreshold float64
	// MultipleLimit caps multi-result sets.
	MultipleLimit int
}

// DefaultConfig returns the standard thresholds.
func DefaultConfig() Config {
	return Config{
		FuzzySingleThreshold:   0.6,
		FuzzyMultipleThreshold: 0.4,
		SingleWordThreshold:    0.25,
		MultipleLimit:          5,
	}
}

// Result is the outcome of a best-match request.
//
// Exactly one of three shapes applies: Best holds a single match,
// Matches holds a ranked list, or Alternatives holds unit-incompatible
// fallbacks together with Message. Status summarizes the outcome for
// API responses.
type Result struct {
	Status       string  `json:"status"`
	Best         *Match  `json:"best,omitempty"`
	Matches      []Match `json:"matches,omitempty"`
	Alternatives []Match `json:"alternatives,omitempty"`
	Message      string  `json:"message,omitempty"`
}

// Matcher orchestrates translation, abbreviation expansion,
// normalization, strategy selection, and unit filtering over the exact
// and fuzzy matchers.
type Matcher struct {
	repo       catalog.Repository
	exact      *ExactMatcher
	fuzzy      func(minSimilarity float64) *FuzzyMatcher
	translator *Translator
	expander   *textnorm.Expander
	analyzer   *complexity.Analyzer
	cfg        Config
	logger     *log.Logger

	resultMemo *cache.Memo[Result]

	// onUnmatched is invoked for queries that end in StatusNotFound,
	// so unmatched descriptions can be recorded for catalog curation.
	onUnmatched func(description, unit string)
}

// Option configures a Matcher.
type Option func(*Matcher)

// WithLogger sets the logger.
func WithLogger(logger *log.Logger) Option {
	return func(m *Matcher) { m.logger = logger }
}

// WithConfig overrides the matching thresholds.
func WithConfig(cfg Config) Option {
	return func(m *Matcher) { m.cfg = cfg }
}

// WithTranslator overrides the glossary translator.
func WithTranslator(t *Translator) Option {
	return func(m *Matcher) { m.translator = t }
}

// WithExpander overrides the abbreviation expander.
func WithExpander(e *textnorm.Expander) Option {
	return func(m *Matcher) { m.expander = e }
}

// WithAnalyzer overrides the complexity analyzer.
func WithAnalyzer(a *complexity.Analyzer) Option {
	return func(m *Matcher) { m.analyzer = a }
}

// WithUnmatchedRecorder registers a hook for not-found queries.
func WithUnmatchedRecorder(fn func(description, unit string)) Option {
	return func(m *Matcher) { m.onUnmatched = fn }
}

// WithCaches wires the normalization and result memos.
func WithCaches(normMemo *cache.Memo[string], resultMemo *cache.Memo[Result]) Option {
	return func(m *Matcher) {
		m.resultMemo = resultMemo
		m.fuzzy = func(minSimilarity float64) *FuzzyMatcher {
			return NewFuzzyMatcher(m.repo, minSimilarity, FuzzyConfidenceScorer{}, normMemo)
		}
	}
}

// NewMatcher creates a Matcher over the repository.
func NewMatcher(repo catalog.Repository, opts ...Option) *Matcher {
	m := &Matcher{
		repo:       repo,
		exact:      NewExactMatcher(repo),
		translator: NewTranslator(nil),
		expander:   textnorm.NewExpander(nil),
		analyzer:   complexity.NewAnalyzer(nil),
		cfg:        DefaultConfig(),
		logger:     log.Default(),
	}
	m.fuzzy = func(minSimilarity float64) *FuzzyMatcher {
		return NewFuzzyMatcher(m.repo, minSimilarity, FuzzyConfidenceScorer{}, nil)
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// InvalidateCache drops memoized results. Called after catalog or
// dictionary reloads.
func (m *Matcher) InvalidateCache() {
	if m.resultMemo != nil {
		m.resultMemo.Purge()
	}
}

// ExactMatch runs only the exact code/name path.
func (m *Matcher) ExactMatch(ctx context.Context, description string) (*Match, error) {
	match, err := m.exact.Match(ctx, m.prepare(description))
	if err != nil {
		return nil, apperrors.NewMatchingError(description, err)
	}
	return match, nil
}

// FuzzyMatch runs only the single fuzzy path at the given floor.
func (m *Matcher) FuzzyMatch(ctx context.Context, description, unit string, minSimilarity float64) (*Match, error) {
	match, err := m.fuzzy(minSimilarity).Match(ctx, m.prepare(description), unit)
	if err != nil {
		return nil, apperrors.NewMatchingError(description, err)
	}
	return match, nil
}

// MultipleMatch runs only the multi-result fuzzy path.
func (m *Matcher) MultipleMatch(ctx context.Context, description, unit string, limit int, minSimilarity float64) ([]Match, error) {
	matches, err := m.fuzzy(minSimilarity).MatchMultiple(ctx, m.prepare(description), unit, limit)
	if err != nil {
		return nil, apperrors.NewMatchingError(description, err)
	}
	return matches, nil
}

// BestMatch is the main entry point: translate, expand, pick a
// strategy from query complexity, match, then hard-filter on unit.
func (m *Matcher) BestMatch(ctx context.Context, description, unit string) (Result, error) {
	prepared := m.prepare(description)
	normalized := textnorm.Normalize(prepared)
	if normalized == "" {
		m.logger.Warn("empty query after normalization", "description", description)
		return m.notFound(description, unit), nil
	}

	if m.resultMemo == nil {
		return m.bestMatch(ctx, description, prepared, normalized, unit)
	}

	key := cache.Key("best", normalized, units.Normalize(unit))
	return m.resultMemo.Do(key, func() (Result, error) {
		return m.bestMatch(ctx, description, prepared, normalized, unit)
	})
}

func (m *Matcher) bestMatch(ctx context.Context, description, prepared, normalized, unit string) (Result, error) {
	metrics := m.analyzer.Analyze(normalized)
	strategy := complexity.StrategyFuzzy
	if metrics != nil {
		strategy = metrics.RecommendedStrategy
		m.logger.Debug("query analyzed",
			"words", metrics.WordCount,
			"level", metrics.ComplexityLevel,
			"strategy", strategy)
	}

	var (
		result Result
		err    error
	)
	switch strategy {
	case complexity.StrategyExact:
		result, err = m.matchSingleWord(ctx, prepared, unit)
	case complexity.StrategyMultiMatch:
		result, err = m.matchMultiOnly(ctx, prepared, unit)
	default:
		result, err = m.matchMultiWord(ctx, prepared, unit)
	}
	if err != nil {
		return Result{}, apperrors.NewMatchingError(description, err)
	}

	result = m.applyUnitFilter(result, unit)
	result.Status = deriveStatus(result)

	if result.Status == StatusNotFound {
		m.logger.Info("no match", "description", description, "unit", unit)
		if m.onUnmatched != nil {
			m.onUnmatched(description, unit)
		}
	}
	return result, nil
}

// matchSingleWord handles one-word queries: exact first, then a ranked
// list at a permissive floor. Single materials legitimately match many
// catalog rows.
func (m *Matcher) matchSingleWord(ctx context.Context, prepared, unit string) (Result, error) {
	exact, err := m.exact.Match(ctx, prepared)
	if err != nil {
		return Result{}, err
	}
	if exact != nil {
		return Result{Matches: []Match{*exact}}, nil
	}

	matches, err := m.fuzzy(m.cfg.SingleWordThreshold).
		MatchMultiple(ctx, prepared, unit, m.cfg.MultipleLimit)
	if err != nil {
		return Result{}, err
	}
	return Result{Matches: matches}, nil
}

// matchMultiWord handles the common path: exact, then single fuzzy,
// then a ranked list at a lower floor.
func (m *Matcher) matchMultiWord(ctx context.Context, prepared, unit string) (Result, error) {
	exact, err := m.exact.Match(ctx, prepared)
	if err != nil {
		return Result{}, err
	}
	if exact != nil {
		return Result{Best: exact}, nil
	}

	best, err := m.fuzzy(m.cfg.FuzzySingleThreshold).Match(ctx, prepared, unit)
	if err != nil {
		return Result{}, err
	}
	if best != nil {
		return Result{Best: best}, nil
	}

	return m.matchList(ctx, prepared, unit)
}

// matchMultiOnly handles complex queries: exact first, then straight to
// a ranked list at the multiple-match floor, skipping the single fuzzy
// step.
func (m *Matcher) matchMultiOnly(ctx context.Context, prepared, unit string) (Result, error) {
	exact, err := m.exact.Match(ctx, prepared)
	if err != nil {
		return Result{}, err
	}
	if exact != nil {
		return Result{Best: exact}, nil
	}

	return m.matchList(ctx, prepared, unit)
}

// matchList returns a ranked list at the multiple-match floor.
func (m *Matcher) matchList(ctx context.Context, prepared, unit string) (Result, error) {
	matches, err := m.fuzzy(m.cfg.FuzzyMultipleThreshold).
		MatchMultiple(ctx, prepared, unit, m.cfg.MultipleLimit)
	if err != nil {
		return Result{}, err
	}
	return Result{Matches: matches}, nil
}

// applyUnitFilter drops matches whose unit cannot satisfy the one the
// user declared. When the filter eliminates everything that matched,
// the eliminated matches come back as alternatives.
func (m *Matcher) applyUnitFilter(result Result, unit string) Result {
	if unit == "" {
		return result
	}

	if result.Best != nil {
		if units.Compatible(candidateUnit(result.Best.Candidate), unit) {
			return result
		}
		return Result{
			Message:      AlternativesMessage,
			Alternatives: []Match{*result.Best},
		}
	}

	if len(result.Matches) == 0 {
		return result
	}

	kept := make([]Match, 0, len(result.Matches))
	for _, match := range result.Matches {
		if units.Compatible(candidateUnit(match.Candidate), unit) {
			kept = append(kept, match)
		}
	}
	if len(kept) == 0 {
		return Result{
			Message:      AlternativesMessage,
			Alternatives: result.Matches,
		}
	}
	result.Matches = kept
	return result
}

// prepare translates English terms and expands abbreviations.
func (m *Matcher) prepare(description string) string {
	s := strings.TrimSpace(description)
	if s == "" {
		return s
	}
	s = m.translator.TranslateToIndonesian(s)
	return m.expander.Expand(s)
}

func (m *Matcher) notFound(description, unit string) Result {
	if m.onUnmatched != nil {
		m.onUnmatched(description, unit)
	}
	return Result{Status: StatusNotFound}
}

// deriveStatus maps a result shape to its status string.
func deriveStatus(result Result) string {
	switch {
	case result.Best != nil && result.Best.Confidence >= 1.0:
		return StatusFound
	case result.Best != nil:
		return StatusSimilar
	case len(result.Matches) == 1:
		return StatusSimilar
	case len(result.Matches) > 1:
		return fmt.Sprintf("found %d similar", len(result.Matches))
	default:
		return StatusNotFound
	}
}
