package output

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/carryon/pkg/catalog"
)

var records = []catalog.DetectionRecord{
	{ID: 1, BatchID: "b1", RawLabel: "laptop", ResolvedName: "Laptops", NameEN: "Laptops", CatalogID: 20,
		BBox: catalog.BBox{0, 0, 300, 300}, Confidence: 0.912, Packing: catalog.PackingBoth,
		Weight: &catalog.WeightEstimate{DetectionID: 1, Value: 2.3, Unit: catalog.Kilograms}},
	{ID: 2, BatchID: "b1", RawLabel: "knife", ResolvedName: "Knives", Packing: catalog.PackingNone},
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"table", FormatTable, false},
		{"JSON", FormatJSON, false},
		{" yaml ", FormatYAML, false},
		{"wide", FormatWide, false},
		{"", "", false},
		{"csv", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRecordsToTableData(t *testing.T) {
	narrow := RecordsToTableData(records, false)
	assert.Len(t, narrow.Headers, 6)
	assert.Equal(t, []string{"1", "laptop", "Laptops", "Laptops", "both", "2.3kg"}, narrow.Rows[0])
	assert.Equal(t, []string{"2", "knife", "Knives", "-", "none", "-"}, narrow.Rows[1])

	wide := RecordsToTableData(records, true)
	assert.Len(t, wide.Headers, 9)
	assert.Equal(t, []string{"20", "0,0,300,300", "0.91"}, wide.Rows[0][6:])
	assert.Len(t, wide.ColumnAlignment, len(wide.Headers))
}

func TestWrite(t *testing.T) {
	t.Run("json encodes the data", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, Write(&buf, FormatJSON, records, func() Data { return RecordsToTableData(records, false) }))

		var decoded []catalog.DetectionRecord
		require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
		assert.Equal(t, records, decoded)
	})

	t.Run("yaml", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, Write(&buf, FormatYAML, records[1], nil))
		assert.Contains(t, buf.String(), "resolved_name: Knives")
	})

	t.Run("table renders rows", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, Write(&buf, FormatTable, records, func() Data { return RecordsToTableData(records, false) }))
		out := buf.String()
		assert.Contains(t, out, "Laptops")
		assert.Contains(t, out, "2.3kg")
	})

	t.Run("table without builder falls back to json", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, Write(&buf, FormatTable, map[string]int{"inserted": 3}, nil))
		assert.JSONEq(t, `{"inserted": 3}`, buf.String())
	})
}
