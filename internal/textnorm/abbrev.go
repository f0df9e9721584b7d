package textnorm

import (
	"regexp"
	"sort"
	"strings"
	"sync"
)

// DefaultAbbreviations maps shorthand tokens that show up in uploaded
// bills of quantities to their full Indonesian forms. Keys are
// lowercase; multi-word keys are replaced as plain substrings, single
// words only on whole-word boundaries.
var DefaultAbbreviations = map[string]string{
	"plst": "plester",
	"smn":  "semen",
	"bt":   "batu",
	"bkk":  "bata kokoh",
	"btn":  "beton",
	"krmk": "keramik",
	"psg":  "pasang",
	"bs":   "besi",
	"dnd":  "dinding",
}

// Expander performs fixed-dictionary abbreviation expansion. The zero
// value is unusable; construct with NewExpander. Expansion is a pure
// function of its input, so callers may memoize results freely.
type Expander struct {
	// Replacement order: longest key first, so a two-word
	// abbreviation is never shadowed by its one-word prefix.
	ordered []abbrevRule

	mu sync.RWMutex
}

type abbrevRule struct {
	abbrev    string
	expansion string
	pattern   *regexp.Regexp // nil for multi-word keys (substring replace)
}

// NewExpander builds an Expander from the given dictionary. A nil map
// selects DefaultAbbreviations.
func NewExpander(abbreviations map[string]string) *Expander {
	if abbreviations == nil {
		abbreviations = DefaultAbbreviations
	}

	e := &Expander{}
	e.rebuild(abbreviations)
	return e
}

func (e *Expander) rebuild(abbreviations map[string]string) {
	rules := make([]abbrevRule, 0, len(abbreviations))
	for abbrev, expansion := range abbreviations {
		rule := abbrevRule{abbrev: strings.ToLower(abbrev), expansion: expansion}
		if !strings.Contains(rule.abbrev, " ") {
			rule.pattern = regexp.MustCompile(`\b` + regexp.QuoteMeta(rule.abbrev) + `\b`)
		}
		rules = append(rules, rule)
	}

	sort.SliceStable(rules, func(i, j int) bool {
		if len(rules[i].abbrev) != len(rules[j].abbrev) {
			return len(rules[i].abbrev) > len(rules[j].abbrev)
		}
		return rules[i].abbrev < rules[j].abbrev
	})

	e.mu.Lock()
	e.ordered = rules
	e.mu.Unlock()
}

// Reload swaps in a new dictionary. Safe for concurrent use with Expand.
func (e *Expander) Reload(abbreviations map[string]string) {
	if abbreviations == nil {
		return
	}
	e.rebuild(abbreviations)
}

// Expand lowercases the input and substitutes every known abbreviation,
// longest key first. Single-word abbreviations only match on whole-word
// boundaries: "plst" inside "template_plstx" stays untouched. Empty
// input comes back unchanged.
func (e *Expander) Expand(text string) string {
	if text == "" {
		return text
	}

	s := strings.ToLower(text)

	e.mu.RLock()
	rules := e.ordered
	e.mu.RUnlock()

	for _, rule := range rules {
		if rule.pattern == nil {
			s = strings.ReplaceAll(s, rule.abbrev, rule.expansion)
			continue
		}
		s = rule.pattern.ReplaceAllString(s, rule.expansion)
	}

	return s
}
