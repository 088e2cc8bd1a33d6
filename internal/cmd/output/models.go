package output

import (
	"fmt"
	"io"
	"strconv"

	"github.com/agentstation/carryon/pkg/catalog"
	"github.com/agentstation/carryon/pkg/nameindex"
	"github.com/agentstation/carryon/pkg/reconcile"
)

// Write renders data in format. Table formats call toTable to build the table;
// other formats encode data as is.
func Write(w io.Writer, format Format, data any, toTable func() Data) error {
	if format.IsTable() && toTable != nil {
		return NewFormatter(FormatTable).Format(w, toTable())
	}
	return NewFormatter(format).Format(w, data)
}

// RecordsToTableData converts detection records to table format.
// Wide output adds the bounding box, confidence and catalog id.
func RecordsToTableData(records []catalog.DetectionRecord, wide bool) Data {
	headers := []string{"ID", "Label", "Resolved", "English", "Packing", "Weight"}
	align := []Align{AlignRight, AlignLeft, AlignLeft, AlignLeft, AlignLeft, AlignRight}
	if wide {
		headers = append(headers, "Catalog ID", "BBox", "Confidence")
		align = append(align, AlignRight, AlignLeft, AlignRight)
	}

	rows := make([][]string, 0, len(records))
	for _, r := range records {
		row := []string{
			strconv.FormatUint(uint64(r.ID), 10),
			r.RawLabel,
			r.ResolvedName,
			dash(r.NameEN),
			r.Packing.String(),
			FormatEstimate(r.Weight),
		}
		if wide {
			row = append(row,
				strconv.FormatUint(uint64(r.CatalogID), 10),
				fmt.Sprintf("%g,%g,%g,%g", r.BBox[0], r.BBox[1], r.BBox[2], r.BBox[3]),
				strconv.FormatFloat(r.Confidence, 'f', 2, 64),
			)
		}
		rows = append(rows, row)
	}

	return Data{Headers: headers, Rows: rows, ColumnAlignment: align}
}

// OutcomesToTableData converts reconcile outcomes to table format.
func OutcomesToTableData(outcomes []reconcile.Outcome) Data {
	rows := make([][]string, 0, len(outcomes))
	for _, o := range outcomes {
		score := "-"
		if o.Tier == reconcile.TierFuzzy {
			score = strconv.FormatFloat(o.Score, 'f', 2, 64)
		}
		record := "-"
		if o.RecordID != 0 {
			record = strconv.FormatUint(uint64(o.RecordID), 10)
		}
		rows = append(rows, []string{
			strconv.Itoa(o.Index),
			o.RawLabel,
			o.MappedName,
			o.Tier.String(),
			dash(o.ResolvedName),
			score,
			record,
			dash(o.Reason),
		})
	}

	return Data{
		Headers:         []string{"#", "Label", "Mapped", "Tier", "Resolved", "Score", "Record", "Reason"},
		Rows:            rows,
		ColumnAlignment: []Align{AlignRight, AlignLeft, AlignLeft, AlignLeft, AlignLeft, AlignRight, AlignRight, AlignLeft},
	}
}

// NamesToTableData converts autocomplete suggestions to table format.
func NamesToTableData(names []string) Data {
	rows := make([][]string, len(names))
	for i, n := range names {
		rows[i] = []string{strconv.Itoa(i + 1), n}
	}
	return Data{Headers: []string{"#", "Name"}, Rows: rows, ColumnAlignment: []Align{AlignRight, AlignLeft}}
}

// MatchToTableData converts a best match to table format.
func MatchToTableData(m nameindex.MatchResult) Data {
	return Data{
		Headers: []string{"Name", "Score", "Catalog ID"},
		Rows: [][]string{{
			m.Name,
			strconv.FormatFloat(m.Score, 'f', 2, 64),
			strconv.FormatUint(uint64(m.CatalogID), 10),
		}},
		ColumnAlignment: []Align{AlignLeft, AlignRight, AlignRight},
	}
}

// EntryToTableData converts a catalog entry to a key-value table.
func EntryToTableData(e *catalog.Entry) Data {
	weight := "-"
	if e.Weight != nil {
		weight = e.Weight.Average() + " (" + e.Weight.Range + ")"
	}
	return Data{
		Headers: []string{"Property", "Value"},
		Rows: [][]string{
			{"ID", strconv.FormatUint(uint64(e.ID), 10)},
			{"Name", e.Name},
			{"English", dash(e.NameEN)},
			{"Carry-on", string(e.CarryOn)},
			{"Checked", string(e.Checked)},
			{"Packing", e.Packing().String()},
			{"Notes", dash(e.Notes)},
			{"Notes (EN)", dash(e.NotesEN)},
			{"Weight", weight},
			{"Source", e.Source.String()},
		},
	}
}

// EstimatesToTableData converts weight estimates to table format.
func EstimatesToTableData(estimates []catalog.WeightEstimate) Data {
	rows := make([][]string, len(estimates))
	for i := range estimates {
		rows[i] = []string{
			strconv.FormatUint(uint64(estimates[i].DetectionID), 10),
			FormatEstimate(&estimates[i]),
		}
	}
	return Data{Headers: []string{"Detection", "Weight"}, Rows: rows, ColumnAlignment: []Align{AlignRight, AlignRight}}
}

// FormatEstimate formats a weight estimate as "<value><unit>", or "-".
func FormatEstimate(w *catalog.WeightEstimate) string {
	if w == nil {
		return "-"
	}
	return strconv.FormatFloat(w.Value, 'f', -1, 64) + string(w.Unit)
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// SeedResultToTableData converts seed counts to table format.
func SeedResultToTableData(inserted, skipped int) Data {
	return Data{
		Headers:         []string{"Inserted", "Skipped"},
		Rows:            [][]string{{strconv.Itoa(inserted), strconv.Itoa(skipped)}},
		ColumnAlignment: []Align{AlignRight, AlignRight},
	}
}
