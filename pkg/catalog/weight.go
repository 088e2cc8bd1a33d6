package catalog

import (
	"strconv"
	"strings"
)

// WeightUnit is the unit of a weight value.
type WeightUnit string

// Weight units.
const (
	Grams     WeightUnit = "g"
	Kilograms WeightUnit = "kg"
)

// ParseWeightUnit parses a unit, accepting any case and surrounding whitespace.
func ParseWeightUnit(s string) (WeightUnit, bool) {
	switch WeightUnit(strings.ToLower(strings.TrimSpace(s))) {
	case Grams:
		return Grams, true
	case Kilograms:
		return Kilograms, true
	default:
		return "", false
	}
}

// WeightReference is the typical weight of an item type.
type WeightReference struct {
	Range    string     `json:"range" yaml:"range"`
	AvgValue float64    `json:"avg_value" yaml:"avg_value"`
	AvgUnit  WeightUnit `json:"avg_unit" yaml:"avg_unit"`
}

// Valid reports whether the reference can seed an estimate.
func (w WeightReference) Valid() bool {
	_, ok := ParseWeightUnit(string(w.AvgUnit))
	return ok && w.AvgValue > 0 && strings.TrimSpace(w.Range) != ""
}

// Average renders the average weight as "<value><unit>", e.g. "350g".
func (w WeightReference) Average() string {
	return strconv.FormatFloat(w.AvgValue, 'f', -1, 64) + string(w.AvgUnit)
}

// WeightEstimate is the predicted weight of one detected item.
type WeightEstimate struct {
	DetectionID uint       `json:"detection_id"`
	Value       float64    `json:"value"`
	Unit        WeightUnit `json:"unit"`
}
