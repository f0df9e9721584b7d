// Package complexity scores the linguistic complexity of a match query
// and recommends a matching strategy. The matcher uses the
// recommendation to pick thresholds and result shape before touching
// the catalog.
package complexity

import (
	"fmt"
	"math"
	"strings"

	"github.com/rencanakan/ahsmatch/internal/textnorm"
	"github.com/rencanakan/ahsmatch/internal/wordclass"
)

// Complexity levels.
const (
	LevelSimple   = "simple"
	LevelModerate = "moderate"
	LevelComplex  = "complex"
)

// Recommended matching strategies.
const (
	StrategyExact      = "exact"
	StrategyFuzzy      = "fuzzy"
	StrategyMultiMatch = "multi_match"
)

// Score thresholds separating the levels.
const (
	simpleThreshold  = 0.3
	complexThreshold = 0.7
)

// Weights of the score components: technical density, action density,
// non-generic density, and normalized length.
const (
	technicalWeight = 0.4
	actionWeight    = 0.3
	genericWeight   = 0.2
	lengthWeight    = 0.1
)

// Metrics is the read-only result of analyzing one query.
type Metrics struct {
	WordCount          int     `json:"word_count"`
	TechnicalWordCount int     `json:"technical_words"`
	ActionWordCount    int     `json:"action_words"`
	GenericWordCount   int     `json:"generic_words"`
	ComplexityScore    float64 `json:"complexity_score"`
	ComplexityLevel    string  `json:"complexity_level"`
	RecommendedStrategy string `json:"recommended_strategy"`
}

func (m *Metrics) String() string {
	return fmt.Sprintf("QueryComplexityMetrics(words=%d, complexity=%s, strategy=%s)",
		m.WordCount, m.ComplexityLevel, m.RecommendedStrategy)
}

// Analyzer evaluates queries against a word-class table set.
type Analyzer struct {
	tables *wordclass.Tables
}

// NewAnalyzer creates an analyzer. A nil table set selects the built-in
// vocabulary.
func NewAnalyzer(tables *wordclass.Tables) *Analyzer {
	if tables == nil {
		tables = wordclass.DefaultTables()
	}
	return &Analyzer{tables: tables}
}

// Analyze normalizes the query, classifies its tokens, and derives the
// complexity score, level, and strategy. Queries that are blank or
// normalize to nothing return nil.
func (a *Analyzer) Analyze(query string) *Metrics {
	metrics, _ := a.analyze(query)
	return metrics
}

func (a *Analyzer) analyze(query string) (*Metrics, []string) {
	if strings.TrimSpace(query) == "" {
		return nil, nil
	}

	normalized := textnorm.Normalize(query)
	if normalized == "" {
		return nil, nil
	}

	words := strings.Split(normalized, " ")
	wordCount := len(words)

	var technical, action, generic int
	for _, w := range words {
		if a.tables.IsTechnical(w) {
			technical++
		}
		if a.tables.IsAction(w) {
			action++
		}
		if a.tables.IsGeneric(w) {
			generic++
		}
	}

	score := complexityScore(wordCount, technical, action, generic)

	return &Metrics{
		WordCount:           wordCount,
		TechnicalWordCount:  technical,
		ActionWordCount:     action,
		GenericWordCount:    generic,
		ComplexityScore:     round4(score),
		ComplexityLevel:     levelFor(score),
		RecommendedStrategy: strategyFor(wordCount, score, technical),
	}, words
}

// Summary returns a JSON-friendly view of the analysis for API
// responses and logs.
func (a *Analyzer) Summary(query string) map[string]any {
	metrics, words := a.analyze(query)
	if metrics == nil {
		return map[string]any{"error": "unable to analyze query"}
	}

	weights := make(map[string]float64, len(words))
	for _, w := range words {
		weights[w] = a.tables.Weight(w)
	}

	return map[string]any{
		"query": query,
		"metrics": map[string]any{
			"word_count":      metrics.WordCount,
			"technical_words": metrics.TechnicalWordCount,
			"action_words":    metrics.ActionWordCount,
			"generic_words":   metrics.GenericWordCount,
		},
		"token_weights": weights,
		"analysis": map[string]any{
			"complexity_score":     metrics.ComplexityScore,
			"complexity_level":     metrics.ComplexityLevel,
			"recommended_strategy": metrics.RecommendedStrategy,
		},
	}
}

// complexityScore combines word-class densities into a [0,1] score.
func complexityScore(wordCount, technical, action, generic int) float64 {
	if wordCount == 0 {
		return 0.0
	}

	n := float64(wordCount)
	lengthScore := math.Min(n/10.0, 1.0)

	score := float64(technical)/n*technicalWeight +
		float64(action)/n*actionWeight +
		(1-float64(generic)/n)*genericWeight +
		lengthScore*lengthWeight

	return math.Min(math.Max(score, 0.0), 1.0)
}

func levelFor(score float64) string {
	switch {
	case score < simpleThreshold:
		return LevelSimple
	case score < complexThreshold:
		return LevelModerate
	default:
		return LevelComplex
	}
}

// strategyFor picks the matching strategy: single words match exactly,
// very complex queries fan out, technically dense queries go fuzzy,
// and fuzzy is the default.
func strategyFor(wordCount int, score float64, technical int) string {
	if wordCount == 1 {
		return StrategyExact
	}
	if score > complexThreshold {
		return StrategyMultiMatch
	}
	if technical >= 2 {
		return StrategyFuzzy
	}
	return StrategyFuzzy
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
