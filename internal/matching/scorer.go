// Package matching finds the catalog entry that best fits a job
// description. Exact code and name matching run first; a composite
// fuzzy scorer handles everything else, with unit compatibility
// filtering layered on top.
package matching

import (
	"strings"

	"github.com/hbollon/go-edlib"
)

// ConfidenceScorer scores the similarity of a normalized query against
// a normalized candidate name. Scores are in [0,1]; inputs must already
// be normalized.
type ConfidenceScorer interface {
	Score(normQuery, normCandidate string) float64
}

// FuzzyConfidenceScorer combines several similarity signals: full
// string similarity, Jaccard token overlap, bidirectional token
// coverage, near-token similarity, and token-count balance. A mild
// multiplier rewards strong agreement between the string and token
// signals, and queries with two or more significant words matching get
// an additive boost.
type FuzzyConfidenceScorer struct{}

// Signal weights.
const (
	weightSequence = 0.35
	weightJaccard  = 0.25
	weightNear     = 0.15
	weightCoverage = 0.15
	weightLength   = 0.10
)

const (
	bonusThresholdSeq     = 0.75
	bonusThresholdJaccard = 0.70
	bonusMultiplier       = 1.05

	// Additive boost for multi-word queries whose significant words
	// (four characters or more) appear in the candidate. Needs at
	// least two such matches; scaled by the matched fraction.
	multiWordBonusBase = 0.20
	significantWordLen = 4
)

func (FuzzyConfidenceScorer) Score(normQuery, normCandidate string) float64 {
	if normQuery == "" || normCandidate == "" {
		return 0.0
	}
	if normQuery == normCandidate {
		return 1.0
	}

	seq := stringSimilarity(normQuery, normCandidate)

	qTokens := strings.Split(normQuery, " ")
	cTokens := strings.Split(normCandidate, " ")

	jaccard, coverage := overlapMetrics(qTokens, cTokens)
	near := nearSimilarity(qTokens, cTokens)
	lenBalance := lengthBalance(qTokens, cTokens)

	score := seq*weightSequence +
		jaccard*weightJaccard +
		near*weightNear +
		coverage*weightCoverage +
		lenBalance*weightLength

	if seq >= bonusThresholdSeq && jaccard >= bonusThresholdJaccard {
		score = min(1.0, score*bonusMultiplier)
	}

	if bonus := multiWordBonus(qTokens, cTokens); bonus > 0 {
		score = min(1.0, score+bonus)
	}

	return clamp01(score)
}

// stringSimilarity is Jaro-Winkler over the whole strings.
func stringSimilarity(a, b string) float64 {
	if a == b {
		return 1.0
	}
	if a == "" || b == "" {
		return 0.0
	}

	score, err := edlib.StringsSimilarity(a, b, edlib.JaroWinkler)
	if err != nil {
		return 0.0
	}
	return float64(score)
}

// overlapMetrics returns the Jaccard index of the token sets and the
// mean of each side's covered fraction.
func overlapMetrics(qTokens, cTokens []string) (jaccard, coverage float64) {
	qSet := tokenSet(qTokens)
	cSet := tokenSet(cTokens)

	inter := 0
	for t := range qSet {
		if cSet[t] {
			inter++
		}
	}
	union := len(qSet) + len(cSet) - inter
	if union == 0 {
		return 0.0, 0.0
	}

	jaccard = float64(inter) / float64(union)
	coverage = 0.5 * (float64(inter)/float64(len(qSet)) + float64(inter)/float64(len(cSet)))
	return jaccard, coverage
}

// tokenPairScore grades one query/candidate token pair. Tokens shorter
// than three characters carry no signal. Exact match scores 1.0,
// containment 0.8, and a strong Jaro-Winkler similarity a discounted
// 0.6 of its value.
func tokenPairScore(qt, ct string) float64 {
	if len(qt) < 3 || len(ct) < 3 {
		return 0.0
	}
	if qt == ct {
		return 1.0
	}
	if strings.Contains(ct, qt) || strings.Contains(qt, ct) {
		return 0.8
	}
	if r := stringSimilarity(qt, ct); r >= 0.75 {
		return 0.6 * r
	}
	return 0.0
}

func nearSimilarity(qTokens, cTokens []string) float64 {
	totalPairs := 0
	nearHits := 0.0
	for _, qt := range qTokens {
		for _, ct := range cTokens {
			if pairScore := tokenPairScore(qt, ct); pairScore > 0 {
				totalPairs++
				nearHits += pairScore
			}
		}
	}
	if totalPairs == 0 {
		return 0.0
	}
	return nearHits / float64(totalPairs)
}

func lengthBalance(qTokens, cTokens []string) float64 {
	q, c := len(qTokens), len(cTokens)
	if q == 0 || c == 0 {
		return 0.0
	}
	if q < c {
		return float64(q) / float64(c)
	}
	return float64(c) / float64(q)
}

func multiWordBonus(qTokens, cTokens []string) float64 {
	var significant []string
	for _, t := range qTokens {
		if len(t) >= significantWordLen {
			significant = append(significant, t)
		}
	}
	if len(significant) < 2 {
		return 0.0
	}

	cSet := tokenSet(cTokens)
	matched := 0
	for _, t := range significant {
		if cSet[t] {
			matched++
		}
	}
	if matched < 2 {
		return 0.0
	}

	return multiWordBonusBase * float64(matched) / float64(len(significant))
}

func tokenSet(tokens []string) map[string]bool {
	set := make(map[string]bool, len(tokens))
	for _, t := range tokens {
		set[t] = true
	}
	return set
}

func clamp01(v float64) float64 {
	if v < 0.0 {
		return 0.0
	}
	if v > 1.0 {
		return 1.0
	}
	return v
}

// ExactConfidenceScorer scores full equality 1.0 and everything else
// 0.0. Exists so the exact path speaks the same interface.
type ExactConfidenceScorer struct{}

func (ExactConfidenceScorer) Score(normQuery, normCandidate string) float64 {
	if normQuery == "" || normCandidate == "" {
		return 0.0
	}
	if normQuery == normCandidate {
		return 1.0
	}
	return 0.0
}
