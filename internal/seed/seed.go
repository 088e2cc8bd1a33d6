// Package seed loads the regulations catalog from YAML.
package seed

import (
	"bytes"
	"context"
	_ "embed"
	"io"

	"github.com/goccy/go-yaml"

	"github.com/agentstation/carryon/pkg/catalog"
	"github.com/agentstation/carryon/pkg/errors"
	"github.com/agentstation/carryon/pkg/logging"
	"github.com/agentstation/carryon/pkg/repository"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// Result counts what a load did.
type Result struct {
	Inserted int `json:"inserted" yaml:"inserted"`
	// Skipped counts entries whose name already existed or was blank.
	Skipped int `json:"skipped" yaml:"skipped"`
}

// LoadDefault loads the built-in starter catalog.
func LoadDefault(ctx context.Context, w repository.CatalogWriter) (Result, error) {
	return load(ctx, defaultCatalog, "catalog.yaml", w)
}

// Load reads a YAML list of entries from r and inserts each with source
// "seed". Regulation values are coerced like synthesized ones. Existing
// names are left untouched.
func Load(ctx context.Context, r io.Reader, w repository.CatalogWriter) (Result, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Result{}, errors.WrapResource("read", "seed file", "", err)
	}
	return load(ctx, data, "seed file", w)
}

func load(ctx context.Context, data []byte, source string, w repository.CatalogWriter) (Result, error) {
	logger := logging.FromContext(ctx)

	var entries []catalog.Entry
	if err := yaml.NewDecoder(bytes.NewReader(data), yaml.Strict()).Decode(&entries); err != nil && err != io.EOF {
		return Result{}, errors.WrapParse("yaml", source, err)
	}

	var res Result
	for i := range entries {
		e := entries[i]
		e.ID = 0
		e.Source = catalog.SourceSeed
		e.Normalize()

		if e.Name == "" {
			logger.Warn().Int("index", i).Msg("Skipping seed entry without a name")
			res.Skipped++
			continue
		}

		if _, err := w.InsertEntry(ctx, &e); err != nil {
			if errors.IsAlreadyExists(err) {
				res.Skipped++
				continue
			}
			return res, errors.WrapResource("insert", "catalog entry", e.Name, err)
		}
		res.Inserted++
	}

	logger.Info().
		Str("source", source).
		Int("inserted", res.Inserted).
		Int("skipped", res.Skipped).
		Msg("Seeded catalog")
	return res, nil
}
