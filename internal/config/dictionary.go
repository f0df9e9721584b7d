package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	kdl "github.com/sblinch/kdl-go"
	"github.com/sblinch/kdl-go/document"

	apperrors "github.com/rencanakan/ahsmatch/internal/errors"
)

// Dictionary holds user extensions to the built-in normalization and
// classification dictionaries, loaded from a .ahsmatch.kdl file:
//
//	abbreviations {
//	    psg "pemasangan"
//	    "pp tb" "pompa air tanah bor"
//	}
//	stopwords "dan" "untuk" "di"
//	words {
//	    technical "beton" "bondek"
//	    action "pengecoran"
//	    generic "volume"
//	}
//	glossary {
//	    pump "pompa"
//	}
type Dictionary struct {
	Abbreviations map[string]string
	Stopwords     map[string]bool
	Technical     []string
	Action        []string
	Generic       []string
	Glossary      map[string]string
}

// LoadDictionary attempts to load dictionary extensions from
// DictionaryFileName in dir. A missing file yields (nil, nil).
func LoadDictionary(dir string) (*Dictionary, error) {
	return LoadDictionaryFile(filepath.Join(dir, DictionaryFileName))
}

// LoadDictionaryFile loads dictionary extensions from an explicit
// path. A missing file yields (nil, nil); a malformed one is an error.
func LoadDictionaryFile(path string) (*Dictionary, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, apperrors.NewConfigError("dictionary", path, err)
	}

	dict, err := parseDictionary(string(content))
	if err != nil {
		return nil, apperrors.NewConfigError("dictionary", path, err)
	}
	return dict, nil
}

func parseDictionary(content string) (*Dictionary, error) {
	doc, err := kdl.Parse(strings.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("failed to parse KDL dictionary: %w", err)
	}

	dict := &Dictionary{
		Abbreviations: make(map[string]string),
		Stopwords:     make(map[string]bool),
		Glossary:      make(map[string]string),
	}

	for _, n := range doc.Nodes {
		switch nodeName(n) {
		case "abbreviations":
			if err := collectPairs(n, dict.Abbreviations); err != nil {
				return nil, err
			}
		case "stopwords":
			for _, w := range collectStringArgs(n) {
				dict.Stopwords[strings.ToLower(w)] = true
			}
		case "words":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "technical":
					dict.Technical = append(dict.Technical, collectStringArgs(cn)...)
				case "action":
					dict.Action = append(dict.Action, collectStringArgs(cn)...)
				case "generic":
					dict.Generic = append(dict.Generic, collectStringArgs(cn)...)
				default:
					return nil, fmt.Errorf("unknown word class %q (want technical, action or generic)", nodeName(cn))
				}
			}
		case "glossary":
			if err := collectPairs(n, dict.Glossary); err != nil {
				return nil, err
			}
		default:
			return nil, fmt.Errorf("unknown dictionary section %q", nodeName(n))
		}
	}

	return dict, nil
}

// collectPairs reads child nodes of the form `key "value"` into dst.
// Keys are lowercased; the file is user-edited and the normalization
// pipeline only ever sees lowercase tokens.
func collectPairs(n *document.Node, dst map[string]string) error {
	for _, cn := range n.Children {
		key := strings.ToLower(nodeName(cn))
		if key == "" {
			return fmt.Errorf("entry in %q has an empty key", nodeName(n))
		}
		value, ok := firstStringArg(cn)
		if !ok {
			return fmt.Errorf("entry %q in %q needs a string value", key, nodeName(n))
		}
		dst[key] = value
	}
	return nil
}

// ExtendAbbreviations overlays the loaded abbreviations onto base
// without mutating it. A nil receiver returns base unchanged.
func (d *Dictionary) ExtendAbbreviations(base map[string]string) map[string]string {
	if d == nil || len(d.Abbreviations) == 0 {
		return base
	}
	return overlay(base, d.Abbreviations)
}

// ExtendGlossary overlays the loaded glossary entries onto base
// without mutating it.
func (d *Dictionary) ExtendGlossary(base map[string]string) map[string]string {
	if d == nil || len(d.Glossary) == 0 {
		return base
	}
	return overlay(base, d.Glossary)
}

func overlay(base, extra map[string]string) map[string]string {
	merged := make(map[string]string, len(base)+len(extra))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range extra {
		merged[k] = v
	}
	return merged
}

func nodeName(n *document.Node) string {
	if n == nil || n.Name == nil {
		return ""
	}
	return n.Name.NodeNameString()
}

func firstStringArg(n *document.Node) (string, bool) {
	if len(n.Arguments) == 0 {
		return "", false
	}
	if s, ok := n.Arguments[0].Value.(string); ok {
		return s, true
	}
	return "", false
}

func collectStringArgs(n *document.Node) []string {
	if n == nil {
		return nil
	}
	args := make([]string, 0, len(n.Arguments))
	for _, a := range n.Arguments {
		if s, ok := a.Value.(string); ok {
			args = append(args, s)
		}
	}
	return args
}
