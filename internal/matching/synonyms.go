package matching

import "strings"

// ActionSynonyms maps Indonesian action words to curated synonyms.
// Catalog rows and uploaded descriptions rarely agree on the work verb
// ("pasang" vs "pemasangan"), so synonym tokens widen candidate recall.
var ActionSynonyms = map[string][]string{
	// Installation
	"pekerjaan":  {"pemasangan", "pembongkaran", "perbaikan", "pembuatan", "pengecatan", "pembangunan", "pengerjaan", "pemeliharaan"},
	"pemasangan": {"pekerjaan", "pembuatan", "pengerjaan", "instalasi"},
	"pasang":     {"pemasangan", "memasang"},

	// Demolition
	"pembongkaran": {"pekerjaan", "bongkar", "membongkar"},
	"bongkar":      {"pembongkaran", "membongkar"},

	// Construction
	"pembuatan":   {"pekerjaan", "pemasangan", "pembangunan", "pengerjaan", "buat", "membuat"},
	"pembangunan": {"pekerjaan", "pembuatan", "pengerjaan", "bangun", "membangun"},
	"buat":        {"pembuatan", "membuat"},
	"bangun":      {"pembangunan", "membangun"},

	// Repair
	"perbaikan":    {"pekerjaan", "pemasangan", "pemeliharaan", "perbaiki", "memperbaiki"},
	"pemeliharaan": {"pekerjaan", "perbaikan"},

	// Painting
	"pengecatan": {"pekerjaan", "pemasangan", "cat", "mengecat"},

	// Excavation
	"galian":     {"penggalian", "pekerjaan", "gali", "menggali"},
	"penggalian": {"galian", "pekerjaan"},

	// Fill
	"urugan":     {"pengurugan", "pekerjaan", "urug", "mengurug"},
	"pengurugan": {"urugan", "pekerjaan"},
}

// Synonyms returns the synonyms of an action word, or nil.
func Synonyms(word string) []string {
	return ActionSynonyms[strings.ToLower(word)]
}

// HasSynonyms reports whether the word has a synonym mapping.
func HasSynonyms(word string) bool {
	_, ok := ActionSynonyms[strings.ToLower(word)]
	return ok
}

// ExpandTokens appends each token's synonyms to the token list without
// duplicates, keeping the original tokens first.
func ExpandTokens(tokens []string) []string {
	seen := make(map[string]bool, len(tokens))
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		t = strings.ToLower(t)
		if !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	for _, t := range tokens {
		for _, syn := range Synonyms(t) {
			if !seen[syn] {
				seen[syn] = true
				out = append(out, syn)
			}
		}
	}
	return out
}
