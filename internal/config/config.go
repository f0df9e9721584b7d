// Package config loads runtime configuration for the matching service.
//
// Two optional files are recognized: ahsmatch.toml carries tunables
// (thresholds, limits, cache sizes, catalog file globs), and
// .ahsmatch.kdl extends the built-in dictionaries (abbreviations,
// stopwords, word classes, glossary) without code changes. Missing
// files fall back to defaults; malformed files are hard errors.
package config

import (
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	apperrors "github.com/rencanakan/ahsmatch/internal/errors"
)

// ConfigFileName is looked up in the working directory when no
// explicit path is given.
const ConfigFileName = "ahsmatch.toml"

// DictionaryFileName is the default dictionary-extension file.
const DictionaryFileName = ".ahsmatch.kdl"

type Config struct {
	Matching Matching `toml:"matching"`
	Cache    Cache    `toml:"cache"`
	Catalog  Catalog  `toml:"catalog"`
	Server   Server   `toml:"server"`
}

// Matching mirrors the orchestrator thresholds.
type Matching struct {
	// FuzzySingleThreshold is the floor for a single fuzzy best match
	// on multi-word queries.
	FuzzySingleThreshold float64 `toml:"fuzzy_single_threshold"`
	// FuzzyMultipleThreshold is the floor for the multi-result
	// fallback on multi-word queries.
	FuzzyMultipleThreshold float64 `toml:"fuzzy_multiple_threshold"`
	// SingleWordThreshold is the floor for single-word queries.
	SingleWordThreshold float64 `toml:"single_word_threshold"`
	// MultipleLimit caps multi-result sets.
	MultipleLimit int `toml:"multiple_limit"`
}

type Cache struct {
	NormalizeEntries int `toml:"normalize_entries"`
	MatchEntries     int `toml:"match_entries"`
}

type Catalog struct {
	// Globs select the CSV price-list files, doublestar syntax
	// (e.g. "data/**/*.csv").
	Globs []string `toml:"globs"`
	// Watch reloads the catalog when a source file changes.
	Watch bool `toml:"watch"`
	// ReloadDebounceMs batches bursts of file change events.
	ReloadDebounceMs int `toml:"reload_debounce_ms"`
}

type Server struct {
	Address string `toml:"address"`
}

// Default returns the built-in configuration. Threshold values follow
// the matching cascade: a multi-word query needs 0.6 for a single
// winner, falls back to a 0.4-floor result list, and single-word
// queries list everything above 0.25.
func Default() *Config {
	return &Config{
		Matching: Matching{
			FuzzySingleThreshold:   0.6,
			FuzzyMultipleThreshold: 0.4,
			SingleWordThreshold:    0.25,
			MultipleLimit:          5,
		},
		Cache: Cache{
			NormalizeEntries: 4096,
			MatchEntries:     1024,
		},
		Catalog: Catalog{
			ReloadDebounceMs: 500,
		},
		Server: Server{
			Address: ":8080",
		},
	}
}

// Load reads a TOML configuration file on top of the defaults and
// validates the result. An empty path looks for ConfigFileName in dir;
// a missing file is not an error and yields the defaults.
func Load(dir, path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = filepath.Join(dir, ConfigFileName)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return cfg, nil
		}
		return nil, apperrors.NewConfigError("file", path, err)
	}

	if err := toml.Unmarshal(content, cfg); err != nil {
		return nil, apperrors.NewConfigError("file", path, err)
	}

	if err := NewValidator().ValidateAndSetDefaults(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
