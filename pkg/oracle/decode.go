package oracle

import (
	"bytes"
	"encoding/json"
	"io"
	"strings"

	"github.com/agentstation/carryon/pkg/errors"
)

// StripCodeFence removes a surrounding Markdown code fence (``` or ```json)
// from a reply. Replies without a fence are only trimmed.
func StripCodeFence(reply string) string {
	s := strings.TrimSpace(reply)
	if !strings.HasPrefix(s, "```") {
		return s
	}

	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		// Drop the info string, e.g. "json".
		s = s[nl+1:]
	} else {
		s = ""
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// DecodeStrict decodes exactly one JSON value from reply into v.
// Unknown fields and trailing data are rejected. Errors are *errors.ParseError.
func DecodeStrict(reply, source string, v any) error {
	body := StripCodeFence(reply)
	if body == "" {
		return errors.NewParseError("json", source, "empty reply", nil)
	}

	dec := json.NewDecoder(bytes.NewReader([]byte(body)))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.WrapParse("json", source, err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return errors.NewParseError("json", source, "trailing data after JSON value", nil)
	}
	return nil
}
