package labels

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/carryon/pkg/errors"
)

func TestDefaultTable(t *testing.T) {
	table, err := loadDefault()
	require.NoError(t, err)
	assert.Len(t, table, 47)

	m := Default()
	tests := map[string]string{
		"laptop":           "Laptops",
		"LAPTOP":           "Laptops",
		"cup-shin-black":   "Ramen",
		"kimchi pack":      "Kimchi",
		"drone":            "Drones, Unmanned Aircraft Systems (UAS)",
		"portable-charger": "Power Banks",
		"watch":            "Clock",
		"gochujang":        "Sauce (Fermented Paste)",
	}
	for raw, want := range tests {
		got, ok := m.Lookup(raw)
		assert.True(t, ok, raw)
		assert.Equal(t, want, got, raw)
	}
}

func TestMapStaticTableWins(t *testing.T) {
	m := Default()

	// Candidates never override the configured name.
	assert.Equal(t, "Laptops", m.Map("laptop", []string{"laptop", "Laptop"}))
	assert.Equal(t, "Hair Spray", m.Map("spray", nil))
}

func TestMapFuzzyFallback(t *testing.T) {
	m := Default()
	candidates := []string{"Hand Cream", "Sunscreen", "Sunscreens"}

	assert.Equal(t, "Sunscreen", m.Map("sunscreen", candidates))
	assert.Equal(t, "Hand Cream", m.Map("hand-cream", candidates))
}

func TestMapFirstMaxWins(t *testing.T) {
	m := Default()
	assert.Equal(t, "MUG", m.Map("mug", []string{"MUG", "mug", "Mug"}))
}

func TestMapBelowThresholdReturnsRaw(t *testing.T) {
	m := Default()
	assert.Equal(t, "xyz-unknown-item", m.Map("xyz-unknown-item", []string{"Laptop", "Pen"}))
	assert.Equal(t, "xyz-unknown-item", m.Map("xyz-unknown-item", nil))
	assert.Equal(t, "", m.Map("", []string{"Pen"}))
}

func TestMapThresholdInclusive(t *testing.T) {
	// ratio("abcd", "abce") = 75
	tbl := map[string][]string{"x": {"X"}}

	m, err := New(tbl, WithThreshold(75))
	require.NoError(t, err)
	assert.Equal(t, "abce", m.Map("abcd", []string{"abce"}))

	m, err = New(tbl, WithThreshold(75.01))
	require.NoError(t, err)
	assert.Equal(t, "abcd", m.Map("abcd", []string{"abce"}))
}

func TestLoad(t *testing.T) {
	m, err := Load(strings.NewReader("Gizmo: [Widget, Gadget]\n"))
	require.NoError(t, err)

	name, ok := m.Lookup("gizmo")
	require.True(t, ok)
	assert.Equal(t, "Widget", name, "first configured name wins")
	assert.Equal(t, []string{"gizmo"}, m.Labels())
	assert.Equal(t, 80.0, m.Threshold())
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"malformed yaml", "a: [b\n"},
		{"no names", "a: []\n"},
		{"case-folded duplicate", "Pen: [Pen]\npen: [Pens]\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(strings.NewReader(tt.input))
			assert.Error(t, err)
		})
	}

	_, err := Load(strings.NewReader("a: [b\n"))
	assert.True(t, errors.IsMalformedReply(err))
}
