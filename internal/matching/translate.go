package matching

import (
	"strings"

	"github.com/surgebase/porter2"
)

// DefaultGlossary maps English construction terms to their Indonesian
// equivalents. Keys are plain English words; the Translator stems both
// keys and input tokens with Porter2, so inflections ("installing",
// "installed", "installation") resolve to the same entry.
var DefaultGlossary = map[string]string{
	"install":      "pemasangan",
	"installation": "pemasangan",
	"demolish":     "pembongkaran",
	"demolition":   "pembongkaran",
	"excavate":     "galian",
	"excavation":   "galian",
	"excavating":   "galian",
	"repair":       "perbaikan",
	"paint":        "pengecatan",
	"painting":     "pengecatan",
	"build":        "pembangunan",
	"construction": "pembangunan",
	"work":         "pekerjaan",
	"maintenance":  "pemeliharaan",
	"cleaning":     "pembersihan",
	"compaction":   "pemadatan",
	"backfill":     "urugan",
	"mobilization": "mobilisasi",

	"wall":          "dinding",
	"floor":         "lantai",
	"ceiling":       "plafon",
	"door":          "pintu",
	"window":        "jendela",
	"roof":          "atap",
	"foundation":    "pondasi",
	"ceramic":       "keramik",
	"tile":          "keramik",
	"concrete":      "beton",
	"brick":         "bata",
	"sand":          "pasir",
	"cement":        "semen",
	"plaster":       "plesteran",
	"wood":          "kayu",
	"timber":        "kayu",
	"steel":         "baja",
	"iron":          "besi",
	"pipe":          "pipa",
	"cable":         "kabel",
	"wire":          "kawat",
	"glass":         "kaca",
	"fence":         "pagar",
	"gutter":        "talang",
	"drainage":      "drainase",
	"soil":          "tanah",
	"ground":        "tanah",
	"stone":         "batu",
	"gravel":        "kerikil",
	"scaffolding":   "perancah",
	"reinforcement": "tulangan",
	"waterproofing": "waterproofing",
}

// Translator rewrites English construction terms into Indonesian before
// matching. It works offline from a fixed glossary: tokens are
// Porter2-stemmed and looked up, everything unknown passes through.
// Descriptions already in Indonesian come back unchanged.
type Translator struct {
	stemmed map[string]string
}

// NewTranslator builds a Translator. A nil glossary selects
// DefaultGlossary. Keys are stemmed up front so lookups and the table
// can never disagree on stemming.
func NewTranslator(glossary map[string]string) *Translator {
	if glossary == nil {
		glossary = DefaultGlossary
	}

	stemmed := make(map[string]string, len(glossary))
	for word, id := range glossary {
		stemmed[porter2.Stem(strings.ToLower(word))] = id
	}
	return &Translator{stemmed: stemmed}
}

// TranslateToIndonesian replaces known English terms token by token.
func (t *Translator) TranslateToIndonesian(text string) string {
	if text == "" {
		return text
	}

	tokens := strings.Fields(text)
	changed := false
	for i, token := range tokens {
		stem := porter2.Stem(strings.ToLower(token))
		if id, ok := t.stemmed[stem]; ok {
			tokens[i] = id
			changed = true
		}
	}
	if !changed {
		return text
	}
	return strings.Join(tokens, " ")
}
