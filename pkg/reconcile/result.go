package reconcile

import (
	"fmt"
	"strings"
	"time"

	"github.com/agentstation/carryon/pkg/catalog"
)

// Tier is the terminal state of one detection in a reconcile call.
type Tier string

// String returns the string representation of a tier
func (t Tier) String() string {
	return string(t)
}

// Resolution tiers
const (
	// TierExact means the mapped name is a catalog name.
	TierExact Tier = "exact"
	// TierFuzzy means a catalog name scored at least the accept threshold.
	TierFuzzy Tier = "fuzzy"
	// TierSynthesized means the oracle produced a new catalog entry.
	TierSynthesized Tier = "synthesized"
	// TierUnresolved means the oracle returned no usable record; the item was dropped.
	TierUnresolved Tier = "unresolved"
	// TierFailed means a storage read failed for this item; the item was dropped.
	TierFailed Tier = "failed"
)

// Outcome documents how one detection was resolved.
type Outcome struct {
	// Index is the position of the detection in the input.
	Index    int    `json:"index"`
	RawLabel string `json:"raw_label"`
	// MappedName is the label after detector-vocabulary mapping.
	MappedName   string  `json:"mapped_name"`
	Tier         Tier    `json:"tier"`
	ResolvedName string  `json:"resolved_name,omitempty"`
	Score        float64 `json:"score,omitempty"`
	RecordID     uint    `json:"record_id,omitempty"`
	Reason       string  `json:"reason,omitempty"`
}

// Resolved reports whether the detection produced a record.
func (o Outcome) Resolved() bool {
	switch o.Tier {
	case TierExact, TierFuzzy, TierSynthesized:
		return true
	default:
		return false
	}
}

// Result represents the outcome of a reconcile call
type Result struct {
	// Records holds one stored record per resolved detection, in input order.
	Records []catalog.DetectionRecord

	// Outcomes holds one entry per input detection, in input order.
	Outcomes []Outcome

	// Synthesized holds the catalog entries created during the call.
	Synthesized []catalog.Entry

	// Warnings contains non-critical issues
	Warnings []string

	// Metadata about the reconcile call
	Metadata ResultMetadata
}

// ResultMetadata contains metadata about the reconcile call
type ResultMetadata struct {
	BatchID   string
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
	Stats     ResultStatistics
}

// ResultStatistics counts detections per tier
type ResultStatistics struct {
	Total       int
	Exact       int
	Fuzzy       int
	Synthesized int
	Unresolved  int
	Failed      int
}

func (s *ResultStatistics) add(t Tier) {
	switch t {
	case TierExact:
		s.Exact++
	case TierFuzzy:
		s.Fuzzy++
	case TierSynthesized:
		s.Synthesized++
	case TierUnresolved:
		s.Unresolved++
	case TierFailed:
		s.Failed++
	}
}

// Dropped returns the number of detections that produced no record.
func (s ResultStatistics) Dropped() int {
	return s.Unresolved + s.Failed
}

// HasWarnings returns true if there were warnings
func (r *Result) HasWarnings() bool {
	return len(r.Warnings) > 0
}

// Summary returns a human-readable summary of the result
func (r *Result) Summary() string {
	s := r.Metadata.Stats
	if s.Total == 0 {
		return "Nothing to reconcile."
	}
	return fmt.Sprintf("Reconciled %d of %d detections (exact %d, fuzzy %d, synthesized %d, dropped %d).",
		len(r.Records), s.Total, s.Exact, s.Fuzzy, s.Synthesized, s.Dropped())
}

// Report generates a detailed report of the reconcile call
func (r *Result) Report() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Reconcile Report\n================\nBatch: %s\nDuration: %s\n%s\n\n",
		r.Metadata.BatchID, r.Metadata.Duration, r.Summary())

	for _, o := range r.Outcomes {
		fmt.Fprintf(&b, "  [%d] %-20s -> %-12s %s", o.Index, o.RawLabel, o.Tier, o.ResolvedName)
		if o.Tier == TierFuzzy {
			fmt.Fprintf(&b, " (%.2f)", o.Score)
		}
		if o.Reason != "" {
			fmt.Fprintf(&b, " (%s)", o.Reason)
		}
		b.WriteByte('\n')
	}

	if r.HasWarnings() {
		b.WriteString("\nWarnings:\n")
		for _, w := range r.Warnings {
			fmt.Fprintf(&b, "  - %s\n", w)
		}
	}
	return b.String()
}
