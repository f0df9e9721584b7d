package wordclass

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassification(t *testing.T) {
	tables := DefaultTables()

	t.Run("technical", func(t *testing.T) {
		assert.True(t, tables.IsTechnical("beton"))
		assert.True(t, tables.IsTechnical("Keramik"))
		assert.False(t, tables.IsTechnical("pekerjaan"))
		assert.False(t, tables.IsTechnical("dan"))
	})

	t.Run("technical_compounds", func(t *testing.T) {
		// Embedded material terms of four or more characters count.
		assert.True(t, tables.IsTechnical("keramik40x40"))
		assert.True(t, tables.IsTechnical("beton225"))
		assert.False(t, tables.IsTechnical("pengecatan"))
	})

	t.Run("action", func(t *testing.T) {
		assert.True(t, tables.IsAction("pemasangan"))
		assert.True(t, tables.IsAction("Galian"))
		assert.False(t, tables.IsAction("keramik"))
	})

	t.Run("generic", func(t *testing.T) {
		assert.True(t, tables.IsGeneric("dan"))
		assert.True(t, tables.IsGeneric("untuk"))
		assert.False(t, tables.IsGeneric("beton"))
	})
}

func TestWeight(t *testing.T) {
	tables := DefaultTables()

	testCases := []struct {
		token    string
		expected float64
	}{
		{"dan", UltraLowWeight},      // generic
		{"di", UltraLowWeight},       // generic and short
		{"ab", UltraLowWeight},       // too short to carry signal
		{"keramik", HighWeight},      // material
		{"keramik40x40", HighWeight}, // compound material
		{"pemasangan", LowWeight},    // action, even though long
		{"pekerjaan", LowWeight},     // action
		{"abc", NormalWeight * 0.8},  // short unknown
		{"strukturnya", NormalWeight * 1.3}, // long unknown
		{"ruangan", NormalWeight * 1.1},  // mid-length unknown
		{"vertikal", NormalWeight * 1.1}, // mid-length unknown
		{"panel", NormalWeight},      // plain unknown
	}

	for _, tc := range testCases {
		assert.InDelta(t, tc.expected, tables.Weight(tc.token), 1e-9,
			"token: %q", tc.token)
	}
}

func TestMerge(t *testing.T) {
	tables := DefaultTables()
	tables.Merge([]string{"Polycarbonate"}, []string{"pemancangan"}, []string{"dll"})

	assert.True(t, tables.IsTechnical("polycarbonate"))
	assert.True(t, tables.IsAction("pemancangan"))
	assert.True(t, tables.IsGeneric("dll"))
	assert.InDelta(t, UltraLowWeight, tables.Weight("dll"), 1e-9)
}
