package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/carryon/pkg/catalog"
	"github.com/agentstation/carryon/pkg/errors"
)

func TestNewPattern(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		typ     PatternType
		match   []string
		miss    []string
	}{
		{"glob prefix", "lap*", Glob, []string{"laptop", "Laptops"}, []string{"a laptop"}},
		{"plain text", "pen", Glob, []string{"Pen", "pen"}, []string{"pens"}},
		{"regex anchors", "^power.*s$", Regex, []string{"Power Banks"}, []string{"power bank"}},
		{"regex alternation", "knife|scissors", Regex, []string{"Knives or Scissors"}, []string{"Knives"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewPattern(tt.pattern)
			require.NoError(t, err)
			assert.Equal(t, tt.typ, p.Type())
			assert.Equal(t, tt.pattern, p.String())
			for _, in := range tt.match {
				assert.True(t, p.Match(in), "expected %q to match %q", tt.pattern, in)
			}
			for _, in := range tt.miss {
				assert.False(t, p.Match(in), "expected %q not to match %q", tt.pattern, in)
			}
		})
	}
}

func TestNewPatternInvalid(t *testing.T) {
	for _, pattern := range []string{"[unclosed", "(open"} {
		_, err := NewPattern(pattern)
		require.Error(t, err, pattern)
		assert.True(t, errors.IsValidationError(err))
	}
}

func TestRecordFilterApply(t *testing.T) {
	weight := &catalog.WeightEstimate{DetectionID: 1, Value: 1.2, Unit: catalog.Kilograms}
	records := []catalog.DetectionRecord{
		{ID: 1, RawLabel: "laptop", ResolvedName: "Laptops", Packing: catalog.PackingBoth, Confidence: 0.9, Weight: weight},
		{ID: 2, RawLabel: "knife", ResolvedName: "Knives", Packing: catalog.PackingNone, Confidence: 0.4},
		{ID: 3, RawLabel: "pen", ResolvedName: "Pen", Packing: catalog.PackingBoth},
	}

	ids := func(rs []catalog.DetectionRecord) []uint {
		out := make([]uint, 0, len(rs))
		for _, r := range rs {
			out = append(out, r.ID)
		}
		return out
	}

	tests := []struct {
		name       string
		label      string
		packing    string
		confidence float64
		weighted   bool
		want       []uint
	}{
		{"no filters", "", "", 0, false, []uint{1, 2, 3}},
		{"label matches resolved name", "knive*", "", 0, false, []uint{2}},
		{"packing", "", "both", 0, false, []uint{1, 3}},
		{"packing none", "", "none", 0, false, []uint{2}},
		{"confidence", "", "", 0.5, false, []uint{1}},
		{"weighted", "", "", 0, true, []uint{1}},
		{"combined", "p*", "both", 0, false, []uint{3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := New(tt.label, tt.packing, tt.confidence, tt.weighted)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(f.Apply(records)))
		})
	}
}

func TestNewValidation(t *testing.T) {
	_, err := New("", "carry-on", 0, false)
	require.NoError(t, err)

	_, err = New("", "hand luggage", 0, false)
	assert.True(t, errors.IsValidationError(err))

	_, err = New("", "", 1.5, false)
	assert.True(t, errors.IsValidationError(err))

	var nilFilter *RecordFilter
	assert.Len(t, nilFilter.Apply(make([]catalog.DetectionRecord, 2)), 2)
}
