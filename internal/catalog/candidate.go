// Package catalog holds the AHS job catalog: the priced unit-rate
// entries that descriptions are matched against. The catalog is loaded
// from CSV files into an in-memory repository and can hot-reload when
// the files change on disk.
package catalog

import "strings"

// SourceAHS marks entries originating from the AHS unit-rate dataset.
const SourceAHS = "ahs"

// Candidate is one catalog entry eligible for matching.
type Candidate struct {
	Source    string  `json:"source"`
	ID        int64   `json:"id"`
	Code      string  `json:"code"`
	Name      string  `json:"name"`
	Unit      string  `json:"unit"`
	UnitPrice float64 `json:"unit_price"`
}

// CanonicalCode returns the comparison form of a catalog code: trimmed
// and uppercased, with separators intact ("a.4.1.1.4" -> "A.4.1.1.4").
func CanonicalCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
