package catalog_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/agentstation/carryon/pkg/catalog"
)

func TestClassifyPacking(t *testing.T) {
	tests := []struct {
		name    string
		carryOn catalog.CarryOnRule
		checked catalog.CheckedRule
		want    catalog.PackingClass
	}{
		{"both allowed", "예", "예", catalog.PackingBoth},
		{"carry-on only", "예", "아니요", catalog.PackingCarryOn},
		{"checked only", "아니요", "예", catalog.PackingChecked},
		{"neither", "아니요", "아니요", catalog.PackingNone},
		{"conditional carry-on is not plain yes", catalog.CarryOnConditional, "예", catalog.PackingChecked},
		{"liquid limit is not plain yes", catalog.CarryOnLiquidLimit, catalog.CheckedConditional, catalog.PackingNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, catalog.ClassifyPacking(tt.carryOn, tt.checked))
		})
	}
}

func TestNormalizeRules(t *testing.T) {
	assert.Equal(t, catalog.CarryOnForbidden, catalog.NormalizeCarryOn("maybe"))
	assert.Equal(t, catalog.CarryOnForbidden, catalog.NormalizeCarryOn(""))
	assert.Equal(t, catalog.CarryOnLiquidLimit, catalog.NormalizeCarryOn(" 예 (3.4oz/100 ml 이상 또는 동일) "))
	assert.Equal(t, catalog.CarryOnAllowed, catalog.NormalizeCarryOn("예"))

	assert.Equal(t, catalog.CheckedForbidden, catalog.NormalizeChecked("확인 불가"))
	assert.Equal(t, catalog.CheckedForbidden, catalog.NormalizeChecked(string(catalog.CarryOnLiquidLimit)))
	assert.Equal(t, catalog.CheckedConditional, catalog.NormalizeChecked("예 (특별 지침)"))
}

func TestEntryNormalize(t *testing.T) {
	e := catalog.Entry{
		Name:    "  보조배터리 ",
		CarryOn: "yes",
		Checked: "예",
		Weight:  &catalog.WeightReference{Range: "", AvgValue: 300, AvgUnit: "g"},
	}
	e.Normalize()

	assert.Equal(t, "보조배터리", e.Name)
	assert.Equal(t, catalog.CarryOnForbidden, e.CarryOn)
	assert.Equal(t, catalog.CheckedAllowed, e.Checked)
	assert.Nil(t, e.Weight, "a reference without a range cannot seed estimates")
	assert.Equal(t, catalog.PackingChecked, e.Packing())
}

func TestBBoxArea(t *testing.T) {
	assert.InDelta(t, 0.09, catalog.BBox{0, 0, 0.3, 0.3}.Area(), 1e-9)
	assert.Zero(t, catalog.BBox{10, 10, 10, 50}.Area())
	assert.Zero(t, catalog.BBox{50, 50, 10, 10}.Area())
}

func TestBatchImageArea(t *testing.T) {
	assert.Equal(t, 2000.0, catalog.Batch{ImageWidth: 50, ImageHeight: 40}.ImageArea())
	assert.Zero(t, catalog.Batch{ImageWidth: 50}.ImageArea())
}

func TestWeightReference(t *testing.T) {
	ref := catalog.WeightReference{Range: "1-3kg", AvgValue: 2, AvgUnit: catalog.Kilograms}
	assert.True(t, ref.Valid())
	assert.Equal(t, "2kg", ref.Average())

	ref.AvgUnit = "lb"
	assert.False(t, ref.Valid())

	unit, ok := catalog.ParseWeightUnit(" KG ")
	assert.True(t, ok)
	assert.Equal(t, catalog.Kilograms, unit)
}
