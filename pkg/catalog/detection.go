package catalog

// PackingClass tells where a detected item may be packed.
type PackingClass string

// Packing classes.
const (
	PackingNone    PackingClass = "none"
	PackingCarryOn PackingClass = "carry_on"
	PackingChecked PackingClass = "checked"
	PackingBoth    PackingClass = "both"
)

// String returns the string representation of a packing class.
func (p PackingClass) String() string { return string(p) }

// ClassifyPacking derives the packing class from the two regulation fields.
//
// Only the plain "예" value counts as allowed. Conditional values such as
// "예 (특별 지침)" are treated as not allowed here; the notes on the entry carry
// the conditions and the client is expected to show them.
func ClassifyPacking(carryOn CarryOnRule, checked CheckedRule) PackingClass {
	carry := carryOn == CarryOnAllowed
	check := checked == CheckedAllowed

	switch {
	case carry && check:
		return PackingBoth
	case carry:
		return PackingCarryOn
	case check:
		return PackingChecked
	default:
		return PackingNone
	}
}

// BBox is a bounding box as [xMin, yMin, xMax, yMax] in image pixels.
type BBox [4]float64

// Area returns the box area. Inverted or degenerate boxes have zero area.
func (b BBox) Area() float64 {
	w := b[2] - b[0]
	h := b[3] - b[1]
	if w <= 0 || h <= 0 {
		return 0
	}
	return w * h
}

// Detection is one object reported by the external detector.
type Detection struct {
	Label      string  `json:"label"`
	BBox       BBox    `json:"bbox"`
	Confidence float64 `json:"confidence,omitempty"`
}

// Batch is one analysed image. Detections are grouped by batch ID.
type Batch struct {
	ID          string `json:"id" yaml:"id"`
	ImageWidth  int    `json:"image_width" yaml:"image_width"`
	ImageHeight int    `json:"image_height" yaml:"image_height"`
}

// ImageArea returns the image area, or zero when the dimensions are unknown.
func (b Batch) ImageArea() float64 {
	if b.ImageWidth <= 0 || b.ImageHeight <= 0 {
		return 0
	}
	return float64(b.ImageWidth) * float64(b.ImageHeight)
}

// DetectionRecord is a reconciled detection as stored.
// Records are never updated in place except for their weight estimate.
type DetectionRecord struct {
	ID           uint            `json:"id"`
	BatchID      string          `json:"batch_id"`
	RawLabel     string          `json:"raw_label"`
	ResolvedName string          `json:"resolved_name"`
	NameEN       string          `json:"name_en,omitempty"`
	CatalogID    uint            `json:"catalog_id"`
	BBox         BBox            `json:"bbox"`
	Confidence   float64         `json:"confidence,omitempty"`
	Packing      PackingClass    `json:"packing_class"`
	Weight       *WeightEstimate `json:"weight,omitempty"`
}
