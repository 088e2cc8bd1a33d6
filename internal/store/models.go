package store

import (
	"time"

	"github.com/agentstation/carryon/pkg/catalog"
)

// itemRow is a catalog entry. The weight reference columns are null when the
// entry has no reference.
type itemRow struct {
	ID             uint   `gorm:"primaryKey"`
	Name           string `gorm:"size:255;not null;uniqueIndex"`
	NameEN         string `gorm:"column:name_en;size:255"`
	CarryOn        string `gorm:"size:64;not null"`
	Checked        string `gorm:"size:64;not null"`
	Notes          string `gorm:"type:text"`
	NotesEN        string `gorm:"column:notes_en;type:text"`
	Source         string `gorm:"size:16;not null;index"`
	WeightRange    *string
	AvgWeightValue *float64
	AvgWeightUnit  *string   `gorm:"size:4"`
	CreatedAt      time.Time `gorm:"autoCreateTime"`
}

// TableName returns the table name for GORM.
func (itemRow) TableName() string {
	return "items"
}

// batchRow is one analysed image.
type batchRow struct {
	ID          string    `gorm:"primaryKey;size:128"`
	ImageWidth  int       `gorm:"not null;default:0"`
	ImageHeight int       `gorm:"not null;default:0"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
}

// TableName returns the table name for GORM.
func (batchRow) TableName() string {
	return "batches"
}

// detectionRow is a reconciled detection. A batch row is not required:
// detections may be recorded before the image dimensions are known.
type detectionRow struct {
	ID             uint   `gorm:"primaryKey"`
	BatchID        string `gorm:"size:128;not null;index"`
	RawLabel       string `gorm:"size:255;not null"`
	ResolvedName   string `gorm:"size:255;not null"`
	NameEN         string `gorm:"column:name_en;size:255"`
	CatalogID      uint   `gorm:"index"`
	BBoxXMin       float64
	BBoxYMin       float64
	BBoxXMax       float64
	BBoxYMax       float64
	Confidence     float64
	Packing        string `gorm:"size:16;not null"`
	PredictedValue *float64
	PredictedUnit  *string   `gorm:"size:4"`
	CreatedAt      time.Time `gorm:"autoCreateTime"`
}

// TableName returns the table name for GORM.
func (detectionRow) TableName() string {
	return "detections"
}

func newItemRow(e *catalog.Entry) *itemRow {
	row := &itemRow{
		Name:    e.Name,
		NameEN:  e.NameEN,
		CarryOn: string(e.CarryOn),
		Checked: string(e.Checked),
		Notes:   e.Notes,
		NotesEN: e.NotesEN,
		Source:  string(e.Source),
	}
	if w := e.Weight; w != nil {
		unit := string(w.AvgUnit)
		row.WeightRange, row.AvgWeightValue, row.AvgWeightUnit = &w.Range, &w.AvgValue, &unit
	}
	return row
}

func (r *itemRow) entry() *catalog.Entry {
	e := &catalog.Entry{
		ID:      r.ID,
		Name:    r.Name,
		NameEN:  r.NameEN,
		CarryOn: catalog.CarryOnRule(r.CarryOn),
		Checked: catalog.CheckedRule(r.Checked),
		Notes:   r.Notes,
		NotesEN: r.NotesEN,
		Source:  catalog.Source(r.Source),
	}
	if r.WeightRange != nil && r.AvgWeightValue != nil && r.AvgWeightUnit != nil {
		e.Weight = &catalog.WeightReference{
			Range:    *r.WeightRange,
			AvgValue: *r.AvgWeightValue,
			AvgUnit:  catalog.WeightUnit(*r.AvgWeightUnit),
		}
	}
	return e
}

func newDetectionRow(rec *catalog.DetectionRecord) *detectionRow {
	row := &detectionRow{
		BatchID:      rec.BatchID,
		RawLabel:     rec.RawLabel,
		ResolvedName: rec.ResolvedName,
		NameEN:       rec.NameEN,
		CatalogID:    rec.CatalogID,
		BBoxXMin:     rec.BBox[0],
		BBoxYMin:     rec.BBox[1],
		BBoxXMax:     rec.BBox[2],
		BBoxYMax:     rec.BBox[3],
		Confidence:   rec.Confidence,
		Packing:      string(rec.Packing),
	}
	if w := rec.Weight; w != nil {
		unit := string(w.Unit)
		row.PredictedValue, row.PredictedUnit = &w.Value, &unit
	}
	return row
}

func (r *detectionRow) record() catalog.DetectionRecord {
	rec := catalog.DetectionRecord{
		ID:           r.ID,
		BatchID:      r.BatchID,
		RawLabel:     r.RawLabel,
		ResolvedName: r.ResolvedName,
		NameEN:       r.NameEN,
		CatalogID:    r.CatalogID,
		BBox:         catalog.BBox{r.BBoxXMin, r.BBoxYMin, r.BBoxXMax, r.BBoxYMax},
		Confidence:   r.Confidence,
		Packing:      catalog.PackingClass(r.Packing),
	}
	if r.PredictedValue != nil && r.PredictedUnit != nil {
		rec.Weight = &catalog.WeightEstimate{
			DetectionID: r.ID,
			Value:       *r.PredictedValue,
			Unit:        catalog.WeightUnit(*r.PredictedUnit),
		}
	}
	return rec
}
