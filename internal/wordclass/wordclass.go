// Package wordclass classifies Indonesian construction vocabulary into
// technical (material), action, and generic word classes, and assigns
// the per-word weights the matching pipeline uses. Tables are plain
// data: tests and config files can substitute their own.
package wordclass

import "strings"

// Relative word weights. Materials dominate, actions recede, filler
// words barely count.
const (
	HighWeight     = 2.0
	NormalWeight   = 1.0
	LowWeight      = 0.5
	UltraLowWeight = 0.1
)

// Tables holds the three word-class membership sets. All entries are
// lowercase normalized tokens.
type Tables struct {
	Technical map[string]bool
	Action    map[string]bool
	Generic   map[string]bool
}

// DefaultTables returns the built-in vocabulary. Technical words are
// materials and components; action words are the pe-...-an work verbs
// that start almost every catalog row; generic words are connectives
// and filler.
func DefaultTables() *Tables {
	return &Tables{
		Technical: setOf(
			"beton", "keramik", "granit", "marmer", "parket", "vinyl",
			"baja", "besi", "aluminium", "kayu", "bambu", "gypsum",
			"pipa", "kabel", "bata", "batako", "hebel", "batu",
			"pasir", "semen", "mortar", "plester", "acian",
			"cat", "plafon", "rangka", "tulangan", "wiremesh",
			"aspal", "paving", "conblock", "geotextile", "membran",
			"kusen", "kaca", "pintu", "jendela", "genteng", "seng",
			"waterproofing", "grouting", "sealant", "epoxy",
		),
		Action: setOf(
			"pekerjaan", "pemasangan", "pembongkaran", "pembuatan",
			"pembangunan", "pengerjaan", "pengecatan", "perbaikan",
			"pemeliharaan", "galian", "penggalian", "urugan",
			"pengurugan", "timbunan", "pemadatan", "pengecoran",
			"pengadaan", "pembersihan", "perataan", "instalasi",
			"bongkar", "pasang", "buat", "bangun",
		),
		Generic: setOf(
			"dan", "atau", "untuk", "dengan", "pada", "yang", "di",
			"ke", "dari", "dalam", "atas", "bawah", "per", "serta",
			"bahan", "alat", "upah", "biaya", "lain",
		),
	}
}

func setOf(words ...string) map[string]bool {
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[w] = true
	}
	return set
}

// IsTechnical reports whether the token names a material or component.
// Compound tokens count: "keramik40x40" and "pipa3/4" are technical
// because a known material term of four or more characters is embedded
// in them.
func (t *Tables) IsTechnical(token string) bool {
	token = strings.ToLower(token)
	if t.Technical[token] {
		return true
	}
	for term := range t.Technical {
		if len(term) >= 4 && strings.Contains(token, term) {
			return true
		}
	}
	return false
}

// IsAction reports whether the token is a work verb.
func (t *Tables) IsAction(token string) bool {
	return t.Action[strings.ToLower(token)]
}

// IsGeneric reports whether the token is filler vocabulary.
func (t *Tables) IsGeneric(token string) bool {
	return t.Generic[strings.ToLower(token)]
}

// Weight assigns a scoring weight to a token. Stopwords and tokens of
// two characters or fewer are near-worthless; materials outrank
// everything; actions are discounted because every catalog row shares
// them; remaining words scale mildly with length.
func (t *Tables) Weight(token string) float64 {
	token = strings.ToLower(token)

	if t.Generic[token] || len(token) <= 2 {
		return UltraLowWeight
	}
	if t.IsTechnical(token) {
		return HighWeight
	}
	if t.IsAction(token) {
		return LowWeight
	}
	if len(token) >= 10 {
		return NormalWeight * 1.3
	}
	if len(token) <= 3 {
		return NormalWeight * 0.8
	}
	if len(token) >= 7 {
		return NormalWeight * 1.1
	}
	return NormalWeight
}

// Merge folds extra vocabulary from configuration into the tables.
func (t *Tables) Merge(technical, action, generic []string) {
	for _, w := range technical {
		t.Technical[strings.ToLower(w)] = true
	}
	for _, w := range action {
		t.Action[strings.ToLower(w)] = true
	}
	for _, w := range generic {
		t.Generic[strings.ToLower(w)] = true
	}
}
