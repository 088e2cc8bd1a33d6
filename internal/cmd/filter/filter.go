// Package filter narrows detection record listings for the CLI.
package filter

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/agentstation/carryon/pkg/catalog"
	"github.com/agentstation/carryon/pkg/errors"
)

// PatternType represents the type of pattern matching to use.
type PatternType int

const (
	// Glob uses shell-style glob patterns (*, ?, []).
	Glob PatternType = iota
	// Regex uses regular expressions.
	Regex
)

// String returns a string representation of the PatternType.
func (pt PatternType) String() string {
	if pt == Regex {
		return "regex"
	}
	return "glob"
}

// Pattern is a compiled, case-insensitive label pattern.
type Pattern struct {
	raw     string
	typ     PatternType
	glob    string
	compile *regexp.Regexp
}

// NewPattern compiles a label pattern. The pattern type is detected from
// the text: regex metacharacters that globs never use select Regex.
func NewPattern(pattern string) (*Pattern, error) {
	p := &Pattern{raw: pattern, typ: detectPatternType(pattern)}

	switch p.typ {
	case Regex:
		expr := pattern
		if !strings.HasPrefix(expr, "(?i)") {
			expr = "(?i)" + expr
		}
		re, err := regexp.Compile(expr)
		if err != nil {
			return nil, errors.NewValidationError("label", pattern, "invalid regex pattern: "+err.Error())
		}
		p.compile = re
	default:
		p.glob = strings.ToLower(pattern)
		if _, err := filepath.Match(p.glob, ""); err != nil {
			return nil, errors.NewValidationError("label", pattern, "invalid glob pattern")
		}
	}
	return p, nil
}

// Match reports whether input matches the pattern.
func (p *Pattern) Match(input string) bool {
	if p.typ == Regex {
		return p.compile.MatchString(input)
	}
	ok, _ := filepath.Match(p.glob, strings.ToLower(input))
	return ok
}

// Type returns the detected pattern type.
func (p *Pattern) Type() PatternType { return p.typ }

// String returns the original pattern.
func (p *Pattern) String() string { return p.raw }

func detectPatternType(pattern string) PatternType {
	regexIndicators := []string{
		"^", "$", "\\d", "\\w", "\\s", "\\D", "\\W", "\\S",
		"(?:", "(?i)", "{", "}", "+", "|", "(", ")",
	}
	for _, indicator := range regexIndicators {
		if strings.Contains(pattern, indicator) {
			return Regex
		}
	}
	return Glob
}

// RecordFilter applies filters to detection record lists.
type RecordFilter struct {
	// Label matches the raw detector label or the resolved name.
	Label *Pattern
	// Packing keeps only records of one packing class.
	Packing       catalog.PackingClass
	MinConfidence float64
	// Weighted keeps only records with a weight estimate.
	Weighted bool
}

// New builds a RecordFilter from command flag values. Empty values
// disable the corresponding filter.
func New(label, packing string, minConfidence float64, weighted bool) (*RecordFilter, error) {
	f := &RecordFilter{MinConfidence: minConfidence, Weighted: weighted}

	if label != "" {
		p, err := NewPattern(label)
		if err != nil {
			return nil, err
		}
		f.Label = p
	}

	if packing != "" {
		class, err := parsePacking(packing)
		if err != nil {
			return nil, err
		}
		f.Packing = class
	}

	if minConfidence < 0 || minConfidence > 1 {
		return nil, errors.NewValidationError("min-confidence", minConfidence, "must be between 0 and 1")
	}
	return f, nil
}

// Apply filters a slice of records, keeping their order.
func (f *RecordFilter) Apply(records []catalog.DetectionRecord) []catalog.DetectionRecord {
	if f == nil || f.isEmpty() {
		return records
	}

	filtered := make([]catalog.DetectionRecord, 0, len(records))
	for _, r := range records {
		if f.matches(r) {
			filtered = append(filtered, r)
		}
	}
	return filtered
}

func (f *RecordFilter) isEmpty() bool {
	return f.Label == nil && f.Packing == "" && f.MinConfidence == 0 && !f.Weighted
}

func (f *RecordFilter) matches(r catalog.DetectionRecord) bool {
	if f.Label != nil && !f.Label.Match(r.RawLabel) && !f.Label.Match(r.ResolvedName) {
		return false
	}
	if f.Packing != "" && r.Packing != f.Packing {
		return false
	}
	if f.MinConfidence > 0 && r.Confidence < f.MinConfidence {
		return false
	}
	if f.Weighted && r.Weight == nil {
		return false
	}
	return true
}

func parsePacking(s string) (catalog.PackingClass, error) {
	switch strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), "-", "_")) {
	case "none":
		return catalog.PackingNone, nil
	case "carry_on", "carryon":
		return catalog.PackingCarryOn, nil
	case "checked":
		return catalog.PackingChecked, nil
	case "both":
		return catalog.PackingBoth, nil
	}
	return "", errors.NewValidationError("packing", s, "must be one of none, carry_on, checked, both")
}
