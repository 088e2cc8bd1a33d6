// Package catalog defines the core data types of the regulations catalog and
// of the detections reconciled against it.
//
// A catalog Entry states whether an item may travel in carry-on and in checked
// baggage. Regulation values come from small closed sets; anything outside a set
// is coerced to the most restrictive value ("아니요"), so an unknown answer is
// never read as permission.
package catalog

import "strings"

// Source records where a catalog entry came from.
type Source string

const (
	// SourceSeed marks entries loaded from the curated seed catalog.
	SourceSeed Source = "seed"
	// SourceAPI marks entries synthesized by the knowledge oracle.
	SourceAPI Source = "api"
)

// String returns the string representation of a source.
func (s Source) String() string { return string(s) }

// CarryOnRule is the carry-on regulation of an item.
type CarryOnRule string

// Allowed carry-on values.
const (
	CarryOnAllowed     CarryOnRule = "예"
	CarryOnForbidden   CarryOnRule = "아니요"
	CarryOnConditional CarryOnRule = "예 (특별 지침)"
	CarryOnLiquidLimit CarryOnRule = "예 (3.4oz/100 ml 이상 또는 동일)"
)

// CheckedRule is the checked-baggage regulation of an item.
type CheckedRule string

// Allowed checked-baggage values.
const (
	CheckedAllowed     CheckedRule = "예"
	CheckedForbidden   CheckedRule = "아니요"
	CheckedConditional CheckedRule = "예 (특별 지침)"
)

var carryOnRules = map[CarryOnRule]struct{}{
	CarryOnAllowed:     {},
	CarryOnForbidden:   {},
	CarryOnConditional: {},
	CarryOnLiquidLimit: {},
}

var checkedRules = map[CheckedRule]struct{}{
	CheckedAllowed:     {},
	CheckedForbidden:   {},
	CheckedConditional: {},
}

// NormalizeCarryOn maps a raw value onto the closed carry-on set.
// Surrounding whitespace is ignored; any other value becomes CarryOnForbidden.
func NormalizeCarryOn(raw string) CarryOnRule {
	rule := CarryOnRule(strings.TrimSpace(raw))
	if _, ok := carryOnRules[rule]; ok {
		return rule
	}
	return CarryOnForbidden
}

// NormalizeChecked maps a raw value onto the closed checked-baggage set.
// Surrounding whitespace is ignored; any other value becomes CheckedForbidden.
func NormalizeChecked(raw string) CheckedRule {
	rule := CheckedRule(strings.TrimSpace(raw))
	if _, ok := checkedRules[rule]; ok {
		return rule
	}
	return CheckedForbidden
}

// Valid reports whether r is one of the allowed carry-on values.
func (r CarryOnRule) Valid() bool {
	_, ok := carryOnRules[r]
	return ok
}

// Valid reports whether r is one of the allowed checked-baggage values.
func (r CheckedRule) Valid() bool {
	_, ok := checkedRules[r]
	return ok
}

// Entry is one item of the regulations catalog.
type Entry struct {
	ID      uint        `json:"id" yaml:"id"`
	Name    string      `json:"name" yaml:"name"`
	NameEN  string      `json:"name_en,omitempty" yaml:"name_en,omitempty"`
	CarryOn CarryOnRule `json:"carry_on_allowed" yaml:"carry_on_allowed"`
	Checked CheckedRule `json:"checked_allowed" yaml:"checked_allowed"`
	Notes   string      `json:"notes" yaml:"notes"`
	NotesEN string      `json:"notes_en,omitempty" yaml:"notes_en,omitempty"`
	Source  Source      `json:"source" yaml:"source"`

	// Weight is the optional reference weight used for per-detection estimates.
	Weight *WeightReference `json:"weight,omitempty" yaml:"weight,omitempty"`
}

// Normalize coerces the regulation fields into their closed sets and trims the names.
func (e *Entry) Normalize() {
	e.Name = strings.TrimSpace(e.Name)
	e.NameEN = strings.TrimSpace(e.NameEN)
	e.CarryOn = NormalizeCarryOn(string(e.CarryOn))
	e.Checked = NormalizeChecked(string(e.Checked))
	if e.Weight != nil && !e.Weight.Valid() {
		e.Weight = nil
	}
}

// Packing derives the packing class of the entry.
func (e Entry) Packing() PackingClass {
	return ClassifyPacking(e.CarryOn, e.Checked)
}

// NameRef is the {id, name} projection used to build name indexes.
type NameRef struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}
