// Package labels translates detector vocabulary into catalog names.
//
// The translation table is constant configuration loaded once at startup.
// A label found in the table always maps to its configured name. Other labels
// fall back to fuzzy matching against the candidate catalog names, and are
// returned unchanged when nothing scores high enough. Map never fails.
package labels

import (
	_ "embed"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/goccy/go-yaml"

	"github.com/agentstation/carryon/pkg/constants"
	"github.com/agentstation/carryon/pkg/errors"
	"github.com/agentstation/carryon/pkg/fuzzy"
)

//go:embed table.yaml
var defaultTable []byte

// Mapper maps raw detector labels to catalog names. It is immutable and safe for concurrent use.
type Mapper struct {
	table     map[string]string
	threshold float64
}

// Option configures a Mapper.
type Option func(*Mapper)

// WithThreshold sets the minimum fuzzy score for the fallback step.
func WithThreshold(threshold float64) Option {
	return func(m *Mapper) {
		m.threshold = threshold
	}
}

var loadDefault = sync.OnceValues(func() (map[string]string, error) {
	return parseTable(defaultTable, "table.yaml")
})

// Default returns a mapper over the built-in table.
func Default(opts ...Option) *Mapper {
	table, err := loadDefault()
	if err != nil {
		// The embedded table is covered by tests.
		panic(err)
	}
	return newMapper(table, opts)
}

// Load reads a YAML table of label -> [name, ...] from r.
func Load(r io.Reader, opts ...Option) (*Mapper, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.WrapResource("read", "label table", "", err)
	}
	table, err := parseTable(data, "label table")
	if err != nil {
		return nil, err
	}
	return newMapper(table, opts), nil
}

// New builds a mapper from an in-memory table. The first name of each label is used.
func New(table map[string][]string, opts ...Option) (*Mapper, error) {
	flat, err := flatten(table)
	if err != nil {
		return nil, err
	}
	return newMapper(flat, opts), nil
}

func newMapper(table map[string]string, opts []Option) *Mapper {
	m := &Mapper{table: table, threshold: constants.LabelThreshold}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func parseTable(data []byte, source string) (map[string]string, error) {
	var raw map[string][]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, errors.WrapParse("yaml", source, err)
	}
	return flatten(raw)
}

func flatten(raw map[string][]string) (map[string]string, error) {
	table := make(map[string]string, len(raw))
	for label, names := range raw {
		key := normalizeLabel(label)
		if key == "" {
			return nil, errors.NewValidationError("label", label, "empty detector label")
		}
		if len(names) == 0 || strings.TrimSpace(names[0]) == "" {
			return nil, errors.NewValidationError("label", label, "no catalog name configured")
		}
		if _, dup := table[key]; dup {
			return nil, errors.NewValidationError("label", label, fmt.Sprintf("label %q configured twice", key))
		}
		table[key] = strings.TrimSpace(names[0])
	}
	return table, nil
}

func normalizeLabel(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Lookup returns the configured name for a label, ignoring case.
func (m *Mapper) Lookup(raw string) (string, bool) {
	name, ok := m.table[normalizeLabel(raw)]
	return name, ok
}

// Map returns the catalog name for raw.
//
// A label present in the table returns its configured name regardless of
// candidates. Otherwise the candidate with the highest Ratio score is returned
// if that score reaches the threshold; the first candidate wins ties. With no
// match raw is returned unchanged.
func (m *Mapper) Map(raw string, candidates []string) string {
	if name, ok := m.Lookup(raw); ok {
		return name
	}
	if len(candidates) > 0 {
		if best, ok := fuzzy.ExtractBest(raw, candidates, fuzzy.Ratio, m.threshold); ok {
			return best.Candidate
		}
	}
	return raw
}

// Labels returns the configured detector labels, sorted.
func (m *Mapper) Labels() []string {
	return slices.Sorted(maps.Keys(m.table))
}

// Threshold returns the fuzzy fallback threshold.
func (m *Mapper) Threshold() float64 {
	return m.threshold
}
