package carryon

import (
	"sync"

	"github.com/agentstation/carryon/pkg/catalog"
)

// Hook function types for reconciliation events
type (
	// EntrySynthesizedHook is called when the oracle adds an entry to the catalog
	EntrySynthesizedHook func(entry catalog.Entry)

	// DetectionRecordedHook is called when a detection record is stored
	DetectionRecordedHook func(record catalog.DetectionRecord)
)

// Hooks provides event callback registration. Hooks run synchronously after
// the reconcile call has stored its records, in registration order.
type Hooks interface {
	// OnEntrySynthesized registers a callback for synthesized catalog entries
	OnEntrySynthesized(EntrySynthesizedHook)

	// OnDetectionRecorded registers a callback for stored detection records
	OnDetectionRecorded(DetectionRecordedHook)
}

// hooks manages event callbacks for reconciliation
type hooks struct {
	mu                  sync.RWMutex
	onEntrySynthesized  []EntrySynthesizedHook
	onDetectionRecorded []DetectionRecordedHook
}

// newHooks creates a new hooks instance
func newHooks() *hooks {
	return &hooks{}
}

// OnEntrySynthesized registers a callback for synthesized catalog entries
func (h *hooks) OnEntrySynthesized(fn EntrySynthesizedHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onEntrySynthesized = append(h.onEntrySynthesized, fn)
}

// OnDetectionRecorded registers a callback for stored detection records
func (h *hooks) OnDetectionRecorded(fn DetectionRecordedHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onDetectionRecorded = append(h.onDetectionRecorded, fn)
}

// trigger fires the hooks for one reconcile call
func (h *hooks) trigger(synthesized []catalog.Entry, records []catalog.DetectionRecord) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, entry := range synthesized {
		for _, hook := range h.onEntrySynthesized {
			hook(entry)
		}
	}
	for _, rec := range records {
		for _, hook := range h.onDetectionRecorded {
			hook(rec)
		}
	}
}
