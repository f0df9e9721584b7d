// Package units normalizes measurement-unit notation and infers units
// from Indonesian job descriptions. Canonical units are the six AHS
// categories: m (linear), m2 (area), m3 (volume), ls (lump sum),
// bh (piece), kg (weight).
package units

import (
	"regexp"
	"strings"
)

// UnitCompatibilityBonus is added to a candidate's score when its
// inferred unit agrees with the unit the user declared.
const UnitCompatibilityBonus = 0.08

var nonUnitCharPattern = regexp.MustCompile(`[^0-9a-z/]+`)

// Explicit unit-token patterns, checked in priority order. Area and
// volume come before the bare linear meter so "m" never fires inside
// "m2". The superscript variants carry no trailing boundary because
// Go's \b is ASCII-only.
var (
	areaMentionPattern    = regexp.MustCompile(`\bm2\b|m²|\bmeter2\b|\bpersegi\b`)
	volumeMentionPattern  = regexp.MustCompile(`\bm3\b|m³|\bmeter3\b|\bkubik\b`)
	linearMentionPattern  = regexp.MustCompile(`m'|\bm1\b`)
	leadingQuantityMeter  = regexp.MustCompile(`\b1\s*m\s+`)
	lumpSumMentionPattern = regexp.MustCompile(`\b(ls|lumpsum|paket)\b`)
	pieceMentionPattern   = regexp.MustCompile(`\b(bh|buah|unit|set)\b`)
	weightMentionPattern  = regexp.MustCompile(`\b(kg|kilogram)\b`)
)

// Keyword fallbacks per category, checked as plain substrings in the
// priority order documented on InferFromDescription.
var (
	lumpSumKeywords = []string{
		"mobilisasi", "demobilisasi", "penyiapan", "persiapan",
		"papan proyek", "papan nama", "direksi keet", "barak",
		"administrasi", "dokumentasi", "laporan", "rapat",
		"sertifikat", "ijin", "perijinan",
	}
	volumeKeywords = []string{
		"galian", "urugan", "timbunan", "pemadatan", "pengurugan",
		"beton cor", "pengecoran", "volume",
		"tanah", "pasir urug", "sirtu", "agregat",
		"pembongkaran beton",
	}
	areaKeywords = []string{
		"lantai", "dinding", "plafon", "ceiling",
		"keramik", "granit", "marmer", "parket", "vinyl",
		"cat", "pengecatan", "plester", "acian", "aci",
		"lapangan", "perataan", "permukaan",
		"waterproofing", "membran", "geotextile", "aspal",
		"paving", "conblock", "grass block",
	}
	linearKeywords = []string{
		"pipa", "kabel", "pagar", "railing", "handrail",
		"list", "profil", "besi beton", "tulangan",
		"drainase", "saluran", "gorong", "talang",
		"kawat", "tali", "selang",
	}
	pieceKeywords = []string{
		"pintu", "jendela", "lampu", "saklar", "stop kontak",
		"kunci", "handle", "engsel",
		"pompa", "tangki", "reservoir", "septictank",
		"closet", "wastafel", "kran", "shower",
		"ac ", "air conditioner", "exhaust fan",
	}
)

// aliasGroups lists notations that denote the same physical unit.
var aliasGroups = []map[string]bool{
	{"m": true, "m1": true, "meter": true},
	{"m2": true, "meter2": true, "persegi": true},
	{"m3": true, "meter3": true, "kubik": true},
	{"bh": true, "buah": true, "unit": true, "set": true},
	{"ls": true, "lumpsum": true, "paket": true},
	{"kg": true, "kilogram": true},
}

// Normalize reduces a raw unit string ("M²", "M^3", "buah") to its
// comparison form. Returns "" when nothing usable remains.
func Normalize(unit string) string {
	s := strings.ToLower(strings.TrimSpace(unit))
	if s == "" {
		return ""
	}

	replacer := strings.NewReplacer(
		" ", "", "^", "", "²", "2", "³", "3",
		"㎡", "m2", "㎥", "m3",
	)
	s = replacer.Replace(s)

	s = strings.ReplaceAll(s, "meters", "m")
	s = strings.ReplaceAll(s, "meter", "m")
	s = strings.ReplaceAll(s, "buah", "bh")

	// m1 is linear-meter notation.
	if s == "m1" {
		s = "m"
	}

	s = strings.ReplaceAll(s, "'", "")
	s = strings.ReplaceAll(s, "’", "")

	return nonUnitCharPattern.ReplaceAllString(s, "")
}

// InferFromDescription derives the unit category of a job description.
//
// Phase one scans for explicit unit tokens in priority order: area,
// volume, linear meter, lump sum, piece, weight. Phase two falls back
// to keyword inference: lump sum, volume, the plint/lis special case
// (always linear, it outranks the area words around it), area, linear,
// piece. Returns "" when neither phase hits.
func InferFromDescription(description string) string {
	desc := strings.ToLower(description)

	if areaMentionPattern.MatchString(desc) {
		return "m2"
	}
	if volumeMentionPattern.MatchString(desc) {
		return "m3"
	}
	if mentionsLinearMeter(desc) {
		return "m"
	}
	if lumpSumMentionPattern.MatchString(desc) {
		return "ls"
	}
	if pieceMentionPattern.MatchString(desc) {
		return "bh"
	}
	if weightMentionPattern.MatchString(desc) {
		return "kg"
	}

	if containsAny(desc, lumpSumKeywords) {
		return "ls"
	}
	if containsAny(desc, volumeKeywords) {
		return "m3"
	}
	if strings.Contains(desc, "plint") || strings.Contains(desc, "lis") {
		return "m"
	}
	if containsAny(desc, areaKeywords) {
		return "m2"
	}
	if containsAny(desc, linearKeywords) {
		return "m"
	}
	if containsAny(desc, pieceKeywords) {
		return "bh"
	}

	return ""
}

// mentionsLinearMeter reports an explicit linear-meter marker: m', m1,
// or a bare m after a leading quantity that is not immediately followed
// by an exponent digit.
func mentionsLinearMeter(desc string) bool {
	if linearMentionPattern.MatchString(desc) {
		return true
	}

	// "1 m " style: accept unless the next rune starts m2/m3.
	for _, loc := range leadingQuantityMeter.FindAllStringIndex(desc, -1) {
		rest := desc[loc[1]:]
		if rest == "" {
			return true
		}
		switch []rune(rest)[0] {
		case '2', '3', '²', '³':
			continue
		}
		return true
	}
	return false
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

// Compatible reports whether a candidate's inferred unit satisfies the
// unit the user declared. An empty user unit means no filter; an empty
// inferred unit can never satisfy a declared one. Units match when they
// normalize equal or share an alias group.
func Compatible(inferred, user string) bool {
	if user == "" {
		return true
	}
	if inferred == "" {
		return false
	}

	nu := Normalize(user)
	ni := Normalize(inferred)
	if nu == "" || ni == "" {
		return false
	}

	if nu == ni {
		return true
	}

	for _, group := range aliasGroups {
		if group[nu] && group[ni] {
			return true
		}
	}
	return false
}

// CompatibilityScore returns UnitCompatibilityBonus when the unit
// inferred from the description is compatible with the user's unit,
// and 0 otherwise. No user unit, no bonus.
func CompatibilityScore(description, userUnit string) float64 {
	if userUnit == "" {
		return 0.0
	}
	if Compatible(InferFromDescription(description), userUnit) {
		return UnitCompatibilityBonus
	}
	return 0.0
}
