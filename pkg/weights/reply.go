package weights

import (
	"fmt"

	"github.com/agentstation/carryon/pkg/catalog"
	"github.com/agentstation/carryon/pkg/errors"
	"github.com/agentstation/carryon/pkg/oracle"
)

// prediction mirrors one reply element. Pointer fields detect missing keys.
type prediction struct {
	ID    *uint    `json:"id"`
	Value *float64 `json:"predicted_weight_value"`
	Unit  *string  `json:"predicted_weight_unit"`
}

// decodeBatchReply decodes a batch reply. Every element must name a
// requested id at most once and carry a positive value in g or kg; one bad
// element rejects the whole reply. Requested ids missing from the reply stay
// unestimated.
func decodeBatchReply(reply string, requested map[uint]bool) ([]catalog.WeightEstimate, error) {
	var preds []prediction
	if err := oracle.DecodeStrict(reply, "weight reply", &preds); err != nil {
		return nil, err
	}

	seen := make(map[uint]bool, len(preds))
	out := make([]catalog.WeightEstimate, 0, len(preds))
	for i, p := range preds {
		if p.ID == nil || p.Value == nil || p.Unit == nil {
			return nil, invalid(i, "missing field")
		}
		if !requested[*p.ID] {
			return nil, invalid(i, fmt.Sprintf("id %d was not requested", *p.ID))
		}
		if seen[*p.ID] {
			return nil, invalid(i, fmt.Sprintf("id %d appears twice", *p.ID))
		}
		seen[*p.ID] = true

		if *p.Value <= 0 {
			return nil, invalid(i, "value must be positive")
		}
		unit, ok := catalog.ParseWeightUnit(*p.Unit)
		if !ok {
			return nil, invalid(i, fmt.Sprintf("unknown unit %q", *p.Unit))
		}

		out = append(out, catalog.WeightEstimate{DetectionID: *p.ID, Value: *p.Value, Unit: unit})
	}
	return out, nil
}

func invalid(i int, msg string) error {
	return errors.NewParseError("json", "weight reply", fmt.Sprintf("element %d: %s", i, msg), nil)
}
