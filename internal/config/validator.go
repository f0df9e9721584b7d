package config

import (
	"errors"
	"fmt"

	apperrors "github.com/rencanakan/ahsmatch/internal/errors"
)

// Validator validates configuration and sets smart defaults
type Validator struct{}

// NewValidator creates a new configuration validator
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateAndSetDefaults validates configuration and applies smart defaults
// Returns an error if validation fails
func (v *Validator) ValidateAndSetDefaults(cfg *Config) error {
	v.setSmartDefaults(cfg)

	if err := v.validateMatching(&cfg.Matching); err != nil {
		return apperrors.NewConfigError("matching", "", err)
	}

	if err := v.validateCache(&cfg.Cache); err != nil {
		return apperrors.NewConfigError("cache", "", err)
	}

	if err := v.validateCatalog(&cfg.Catalog); err != nil {
		return apperrors.NewConfigError("catalog", "", err)
	}

	if err := v.validateServer(&cfg.Server); err != nil {
		return apperrors.NewConfigError("server", "", err)
	}

	return nil
}

// setSmartDefaults fills zero values before validation so a sparse
// TOML file only overrides what it names.
func (v *Validator) setSmartDefaults(cfg *Config) {
	def := Default()

	if cfg.Matching.FuzzySingleThreshold == 0 {
		cfg.Matching.FuzzySingleThreshold = def.Matching.FuzzySingleThreshold
	}
	if cfg.Matching.FuzzyMultipleThreshold == 0 {
		cfg.Matching.FuzzyMultipleThreshold = def.Matching.FuzzyMultipleThreshold
	}
	if cfg.Matching.SingleWordThreshold == 0 {
		cfg.Matching.SingleWordThreshold = def.Matching.SingleWordThreshold
	}
	if cfg.Matching.MultipleLimit == 0 {
		cfg.Matching.MultipleLimit = def.Matching.MultipleLimit
	}
	if cfg.Cache.NormalizeEntries == 0 {
		cfg.Cache.NormalizeEntries = def.Cache.NormalizeEntries
	}
	if cfg.Cache.MatchEntries == 0 {
		cfg.Cache.MatchEntries = def.Cache.MatchEntries
	}
	if cfg.Catalog.ReloadDebounceMs == 0 {
		cfg.Catalog.ReloadDebounceMs = def.Catalog.ReloadDebounceMs
	}
	if cfg.Server.Address == "" {
		cfg.Server.Address = def.Server.Address
	}
}

func (v *Validator) validateMatching(m *Matching) error {
	for _, t := range []struct {
		name  string
		value float64
	}{
		{"fuzzy_single_threshold", m.FuzzySingleThreshold},
		{"fuzzy_multiple_threshold", m.FuzzyMultipleThreshold},
		{"single_word_threshold", m.SingleWordThreshold},
	} {
		if t.value < 0 || t.value > 1 {
			return fmt.Errorf("%s must be between 0 and 1, got %v", t.name, t.value)
		}
	}

	if m.FuzzyMultipleThreshold > m.FuzzySingleThreshold {
		return fmt.Errorf("fuzzy_multiple_threshold (%v) must not exceed fuzzy_single_threshold (%v)",
			m.FuzzyMultipleThreshold, m.FuzzySingleThreshold)
	}

	if m.MultipleLimit < 1 || m.MultipleLimit > 100 {
		return fmt.Errorf("multiple_limit must be between 1 and 100, got %d", m.MultipleLimit)
	}

	return nil
}

func (v *Validator) validateCache(c *Cache) error {
	if c.NormalizeEntries < 1 {
		return fmt.Errorf("normalize_entries must be positive, got %d", c.NormalizeEntries)
	}

	if c.MatchEntries < 1 {
		return fmt.Errorf("match_entries must be positive, got %d", c.MatchEntries)
	}

	return nil
}

func (v *Validator) validateCatalog(c *Catalog) error {
	if c.ReloadDebounceMs < 0 {
		return fmt.Errorf("reload_debounce_ms cannot be negative, got %d", c.ReloadDebounceMs)
	}

	for _, g := range c.Globs {
		if g == "" {
			return errors.New("catalog glob cannot be empty")
		}
	}

	return nil
}

func (v *Validator) validateServer(s *Server) error {
	if s.Address == "" {
		return errors.New("server address cannot be empty")
	}

	return nil
}
