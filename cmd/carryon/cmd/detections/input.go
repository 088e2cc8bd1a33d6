// Package detections provides the detection commands: reconcile, results,
// delete and weights.
package detections

import (
	"encoding/json"
	"io"
	"os"
	"strconv"

	"github.com/agentstation/carryon/pkg/catalog"
	"github.com/agentstation/carryon/pkg/errors"
)

// readDetections decodes a JSON array of detections from path, or from
// stdin when path is "" or "-". Unknown fields are rejected.
func readDetections(path string, stdin io.Reader) ([]catalog.Detection, error) {
	source := "stdin"
	r := stdin
	if path != "" && path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, errors.WrapResource("open", "detections file", path, err)
		}
		defer f.Close() //nolint:errcheck // read-only
		r = f
		source = path
	}

	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()

	var detections []catalog.Detection
	if err := dec.Decode(&detections); err != nil {
		if err == io.EOF {
			return nil, errors.NewParseError("json", source, "no detections given", nil)
		}
		return nil, errors.NewParseError("json", source, "expected a JSON array of {label, bbox, confidence}", err)
	}
	return detections, nil
}

// parseIDs parses detection record ids.
func parseIDs(args []string) ([]uint, error) {
	ids := make([]uint, 0, len(args))
	for _, a := range args {
		id, err := strconv.ParseUint(a, 10, 64)
		if err != nil || id == 0 {
			return nil, errors.NewValidationError("id", a, "must be a positive integer")
		}
		ids = append(ids, uint(id))
	}
	return ids, nil
}
