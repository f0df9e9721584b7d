// Package textnorm normalizes raw construction job descriptions into
// canonical token form. Descriptions arrive from uploaded bills of
// quantities in messy shapes: mixed case, diacritics, unit symbols
// (m², ㎡, Ø), dotted AHS codes, and inconsistent separators.
//
// The output of Normalize is always lowercase ASCII consisting of
// alphanumerics, single spaces, and preserved code tokens such as
// "A.4.4.3.53" or "AT.19-1". Normalize is idempotent: feeding its
// output back in returns the same string.
package textnorm

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Limits for folding space-separated code fragments into dotted codes.
const (
	maxCodePrefixLen = 4
	maxCodeParts     = 6
	maxCodePartLen   = 4
)

var (
	whitespacePattern = regexp.MustCompile(`\s+`)
	nonAlnumPattern   = regexp.MustCompile(`[^0-9a-z]+`)

	// Dotted/dashed code tokens: letters followed by one or more
	// separator+alphanumeric groups (A.4.1.1.4, AT.19-1, T.14.d).
	codePattern = regexp.MustCompile(`\b[A-Za-z]+(?:[.-][A-Za-z0-9]+)+\b`)

	// Space-separated AT codes: "AT 19 1" -> "AT.19-1", "AT 20" -> "AT.20".
	// Case-insensitive on the prefix, but the prefix keeps its input case.
	atTwoPartPattern = regexp.MustCompile(`(?i)\b(at)\s+(\d+)\s+(\d+)\b`)
	atOnePartPattern = regexp.MustCompile(`(?i)\b(at)\s+(\d+)\b`)

	// Generic spaced codes: short alphabetic prefix plus up to six short
	// alphanumeric groups ("A 4 1 1 4" -> "A.4.1.1.4"). Folded only when
	// at least one group carries a digit and the prefix carries an
	// uppercase letter. Lowercased text never refolds, which keeps
	// Normalize a fixed point on its own output.
	genericSpacedCodePattern = regexp.MustCompile(
		fmt.Sprintf(`\b([A-Za-z]{1,%d})((?:\s+[A-Za-z0-9]{1,%d}){1,%d})\b`,
			maxCodePrefixLen, maxCodePartLen, maxCodeParts))
)

// characterSubstitutions is applied in order to the lowercased text.
// Order is load-bearing: "m²" must be rewritten before the bare "²"
// rule fires, or the digit would detach from its unit.
var characterSubstitutions = [][2]string{
	{"m²", "m2"},
	{"㎡", "m2"},
	{"²", "2"},
	{"m³", "m3"},
	{"㎥", "m3"},
	{"³", "3"},
	{"–", "-"},
	{"—", "-"},
	{"·", " "},
	{"×", "x"},
	{"ø", " "},
	{"Ø", " "},
	{"@", " "},
	{"/", " "},
	{":", " "},
	{";", " "},
	{",", " "},
	{".", " "},
	{"!", " "},
	{"?", " "},
	{"(", " "},
	{")", " "},
	{"[", " "},
	{"]", " "},
	{"{", " "},
	{"}", " "},
	{"'", " "},
}

var diacriticStripper = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)))

// Normalize converts raw description text to canonical token form.
// Empty input returns "".
func Normalize(text string) string {
	return NormalizeFiltered(text, nil)
}

// NormalizeFiltered is Normalize with optional stopword removal.
// Stopwords are dropped by exact token match after the text has been
// normalized; a nil or empty set disables removal.
func NormalizeFiltered(text string, stopwords map[string]bool) string {
	if text == "" {
		return ""
	}

	s := convertATCodes(text)
	s = convertGenericCodes(s)

	s, protected := protectCodes(s)

	s = strings.ToLower(s)
	s = applyCharacterSubstitutions(s)
	s = stripDiacritics(s)
	s = nonAlnumPattern.ReplaceAllString(s, " ")
	s = collapseWhitespace(s)

	if s == "" {
		return s
	}

	if len(stopwords) > 0 {
		s = removeStopwords(s, stopwords)
	}

	s = restoreCodes(s, protected)

	return collapseWhitespace(s)
}

// convertATCodes folds spaced AT codes into their dotted form.
// Two-part codes take a dash between the trailing groups.
func convertATCodes(text string) string {
	text = atTwoPartPattern.ReplaceAllString(text, "${1}.${2}-${3}")
	return atOnePartPattern.ReplaceAllString(text, "${1}.${2}")
}

// convertGenericCodes folds short spaced code fragments into dotted
// codes, but only when at least one group contains a digit.
func convertGenericCodes(text string) string {
	return genericSpacedCodePattern.ReplaceAllStringFunc(text, func(m string) string {
		sub := genericSpacedCodePattern.FindStringSubmatch(m)
		prefix := sub[1]
		parts := strings.Fields(sub[2])

		if !strings.ContainsFunc(prefix, unicode.IsUpper) {
			return m
		}

		hasDigit := false
		for _, part := range parts {
			if strings.ContainsFunc(part, unicode.IsDigit) {
				hasDigit = true
				break
			}
		}
		if !hasDigit {
			return m
		}

		return prefix + "." + strings.Join(parts, ".")
	})
}

// protectedCode records one code token swapped out for a placeholder.
type protectedCode struct {
	placeholder string
	original    string
}

// protectCodes replaces every code token with an opaque lowercase
// placeholder so the token passes untouched through lowercasing,
// substitution, and diacritic stripping. Placeholders are indexed in
// order of first occurrence and restored byte-for-byte afterwards.
func protectCodes(text string) (string, []protectedCode) {
	var protected []protectedCode

	result := codePattern.ReplaceAllStringFunc(text, func(code string) string {
		placeholder := fmt.Sprintf("codeplaceholder%d", len(protected))
		protected = append(protected, protectedCode{placeholder: placeholder, original: code})
		return " " + placeholder + " "
	})

	return result, protected
}

// restoreCodes swaps placeholders back for the original code tokens.
// Highest index first, so "codeplaceholder1" can never clobber the
// prefix of "codeplaceholder10".
func restoreCodes(text string, protected []protectedCode) string {
	for i := len(protected) - 1; i >= 0; i-- {
		text = strings.ReplaceAll(text, protected[i].placeholder, protected[i].original)
	}
	return text
}

func applyCharacterSubstitutions(text string) string {
	for _, sub := range characterSubstitutions {
		text = strings.ReplaceAll(text, sub[0], sub[1])
	}
	return text
}

// stripDiacritics decomposes to NFKD, drops combining marks, and keeps
// only the ASCII remainder. Characters with no ASCII equivalent vanish.
func stripDiacritics(text string) string {
	decomposed, _, err := transform.String(diacriticStripper, text)
	if err != nil {
		decomposed = text
	}

	var b strings.Builder
	b.Grow(len(decomposed))
	for _, r := range decomposed {
		if r < 128 {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func collapseWhitespace(text string) string {
	return strings.TrimSpace(whitespacePattern.ReplaceAllString(text, " "))
}

func removeStopwords(text string, stopwords map[string]bool) string {
	tokens := strings.Split(text, " ")
	kept := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if !stopwords[token] {
			kept = append(kept, token)
		}
	}
	return strings.Join(kept, " ")
}
