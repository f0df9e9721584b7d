package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatorFillsZeroValues(t *testing.T) {
	cfg := &Config{}

	require.NoError(t, NewValidator().ValidateAndSetDefaults(cfg))
	assert.Equal(t, Default(), cfg)
}

func TestValidatorKeepsExplicitValues(t *testing.T) {
	cfg := &Config{}
	cfg.Matching.MultipleLimit = 3
	cfg.Cache.MatchEntries = 64
	cfg.Server.Address = "127.0.0.1:9000"

	require.NoError(t, NewValidator().ValidateAndSetDefaults(cfg))

	assert.Equal(t, 3, cfg.Matching.MultipleLimit)
	assert.Equal(t, 64, cfg.Cache.MatchEntries)
	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Address)
	assert.Equal(t, 0.6, cfg.Matching.FuzzySingleThreshold)
}

func TestValidatorRejectsBadValues(t *testing.T) {
	testCases := []struct {
		name    string
		mutate  func(cfg *Config)
		message string
	}{
		{
			name:    "threshold_above_one",
			mutate:  func(cfg *Config) { cfg.Matching.SingleWordThreshold = 1.2 },
			message: "single_word_threshold",
		},
		{
			name:    "threshold_negative",
			mutate:  func(cfg *Config) { cfg.Matching.FuzzyMultipleThreshold = -0.1 },
			message: "fuzzy_multiple_threshold",
		},
		{
			name: "multiple_floor_above_single_floor",
			mutate: func(cfg *Config) {
				cfg.Matching.FuzzySingleThreshold = 0.3
				cfg.Matching.FuzzyMultipleThreshold = 0.5
			},
			message: "must not exceed",
		},
		{
			name:    "limit_too_large",
			mutate:  func(cfg *Config) { cfg.Matching.MultipleLimit = 500 },
			message: "multiple_limit",
		},
		{
			name:    "negative_cache",
			mutate:  func(cfg *Config) { cfg.Cache.NormalizeEntries = -1 },
			message: "normalize_entries",
		},
		{
			name:    "negative_debounce",
			mutate:  func(cfg *Config) { cfg.Catalog.ReloadDebounceMs = -5 },
			message: "reload_debounce_ms",
		},
		{
			name:    "empty_glob",
			mutate:  func(cfg *Config) { cfg.Catalog.Globs = []string{"data/*.csv", ""} },
			message: "glob",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)

			err := NewValidator().ValidateAndSetDefaults(cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.message)
		})
	}
}
