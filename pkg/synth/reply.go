package synth

import (
	"github.com/agentstation/carryon/pkg/catalog"
	"github.com/agentstation/carryon/pkg/errors"
	"github.com/agentstation/carryon/pkg/oracle"
)

// itemReply mirrors the reply contract. Pointer fields detect missing keys.
type itemReply struct {
	ItemData   *itemData   `json:"item_data"`
	WeightData *weightData `json:"weight_data"`
}

type itemData struct {
	ItemName *string `json:"item_name"`
	CarryOn  *string `json:"carry_on_allowed"`
	Checked  *string `json:"checked_baggage_allowed"`
	Notes    *string `json:"notes"`
	NameEN   *string `json:"item_name_EN"`
	NotesEN  *string `json:"notes_EN"`
	Source   *string `json:"source"`
}

type weightData struct {
	Range    *string  `json:"weight_range"`
	AvgValue *float64 `json:"avg_weight_value"`
	AvgUnit  *string  `json:"avg_weight_unit"`
}

// itemRecord is a decoded reply with every regulation field present.
type itemRecord struct {
	ItemName string
	CarryOn  string
	Checked  string
	Notes    string
	NameEN   string
	NotesEN  string
	Weight   *catalog.WeightReference
}

func decodeItemReply(reply string) (*itemRecord, error) {
	var r itemReply
	if err := oracle.DecodeStrict(reply, "item reply", &r); err != nil {
		return nil, err
	}
	if r.ItemData == nil {
		return nil, errors.NewParseError("json", "item reply", "missing item_data", nil)
	}

	d := r.ItemData
	fields := []struct {
		name  string
		value *string
	}{
		{"item_name", d.ItemName},
		{"carry_on_allowed", d.CarryOn},
		{"checked_baggage_allowed", d.Checked},
		{"notes", d.Notes},
		{"item_name_EN", d.NameEN},
		{"notes_EN", d.NotesEN},
		{"source", d.Source},
	}
	for _, f := range fields {
		if f.value == nil {
			return nil, errors.NewParseError("json", "item reply", "missing item_data."+f.name, nil)
		}
	}

	return &itemRecord{
		ItemName: *d.ItemName,
		CarryOn:  *d.CarryOn,
		Checked:  *d.Checked,
		Notes:    *d.Notes,
		NameEN:   *d.NameEN,
		NotesEN:  *d.NotesEN,
		Weight:   r.WeightData.reference(),
	}, nil
}

// reference returns the weight block as a reference, or nil unless it is complete and usable.
func (w *weightData) reference() *catalog.WeightReference {
	if w == nil || w.Range == nil || w.AvgValue == nil || w.AvgUnit == nil {
		return nil
	}
	unit, ok := catalog.ParseWeightUnit(*w.AvgUnit)
	if !ok {
		return nil
	}
	ref := &catalog.WeightReference{Range: *w.Range, AvgValue: *w.AvgValue, AvgUnit: unit}
	if !ref.Valid() {
		return nil
	}
	return ref
}

// toEntry builds the entry to store under name. The reply's own item_name and
// source are ignored: the entry is keyed by the requested name and is always
// marked as synthesized.
func (r *itemRecord) toEntry(name string) *catalog.Entry {
	e := &catalog.Entry{
		Name:    name,
		NameEN:  r.NameEN,
		CarryOn: catalog.CarryOnRule(r.CarryOn),
		Checked: catalog.CheckedRule(r.Checked),
		Notes:   r.Notes,
		NotesEN: r.NotesEN,
		Source:  catalog.SourceAPI,
		Weight:  r.Weight,
	}
	e.Normalize()
	return e
}
