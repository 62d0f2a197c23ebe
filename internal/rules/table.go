// Package rules loads the biomarker rule table, resolves rules for
// extracted records and classifies values against sex-specific reference
// ranges.
package rules

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/algolife/bioreport/internal/extract"
	"github.com/algolife/bioreport/internal/model"
	"github.com/algolife/bioreport/internal/textparse"
)

// ConfigurationError reports a rule table whose shape is unusable: one or
// more required columns are missing. Fatal; no partial processing occurs.
type ConfigurationError struct {
	Path    string
	Missing []string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("rule table %s: missing required columns: %s",
		e.Path, strings.Join(e.Missing, ", "))
}

// requiredColumns are matched against folded header names, so accent and
// spacing variants ("BASSE - Interprétation", "basse-interpretation") all
// resolve.
var requiredColumns = []string{
	"Biomarqueur",
	"Unité",
	"Normes H",
	"Normes F",
	"BASSE-Interprétation",
	"BASSE-Nutrition",
	"BASSE-Micronutrition",
	"BASSE-Lifestyle",
	"HAUTE-Interprétation",
	"HAUTE-Nutrition",
	"HAUTE-Micronutrition",
	"HAUTE-Lifestyle",
}

// Table is the loaded, read-only rule set for one run.
type Table struct {
	rules  []model.Rule
	byKey  map[string]int
	locale textparse.Locale
}

// Rules returns the loaded rules in table order.
func (t *Table) Rules() []model.Rule { return t.rules }

// Len returns the number of loaded rules.
func (t *Table) Len() int { return len(t.rules) }

// Lookup returns the rule for an exact canonical key.
func (t *Table) Lookup(key string) (*model.Rule, bool) {
	idx, ok := t.byKey[key]
	if !ok {
		return nil, false
	}
	return &t.rules[idx], true
}

// LoadTable reads a rule table from CSV. Required columns missing from the
// header is a *ConfigurationError; unparsable range cells merely leave that
// sex's range absent.
func LoadTable(path string, normalizer *extract.Normalizer, locale textparse.Locale) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open rule table: %w", err)
	}
	defer func() { _ = f.Close() }()
	return ReadTable(f, path, normalizer, locale)
}

// ReadTable parses rule-table CSV content from a reader.
func ReadTable(r io.Reader, path string, normalizer *extract.Normalizer, locale textparse.Locale) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read rule table header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[extract.FoldLabel(h)] = i
	}

	var missing []string
	for _, want := range requiredColumns {
		if _, ok := cols[extract.FoldLabel(want)]; !ok {
			missing = append(missing, want)
		}
	}
	if len(missing) > 0 {
		return nil, &ConfigurationError{Path: path, Missing: missing}
	}

	cell := func(row []string, name string) string {
		idx := cols[extract.FoldLabel(name)]
		if idx >= len(row) {
			return ""
		}
		return cleanCell(row[idx])
	}

	table := &Table{byKey: make(map[string]int), locale: locale}
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// A broken row is a skip, not a failure: the table's shape is
			// already validated.
			continue
		}
		display := cell(row, "Biomarqueur")
		if display == "" {
			continue
		}

		rule := model.Rule{
			CanonicalKey: normalizer.Key(display),
			DisplayName:  display,
			Unit:         cell(row, "Unité"),
			Norms:        make(map[model.SexCategory]model.Range, 3),
			LowBlock: model.RecommendationBlock{
				Interpretation: cell(row, "BASSE-Interprétation"),
				Nutrition:      cell(row, "BASSE-Nutrition"),
				Micronutrition: cell(row, "BASSE-Micronutrition"),
				Lifestyle:      cell(row, "BASSE-Lifestyle"),
			},
			HighBlock: model.RecommendationBlock{
				Interpretation: cell(row, "HAUTE-Interprétation"),
				Nutrition:      cell(row, "HAUTE-Nutrition"),
				Micronutrition: cell(row, "HAUTE-Micronutrition"),
				Lifestyle:      cell(row, "HAUTE-Lifestyle"),
			},
		}
		if idx, ok := cols[extract.FoldLabel("Catégorie")]; ok && idx < len(row) {
			rule.Category = cleanCell(row[idx])
		}

		male, maleOK := parseNormCell(cell(row, "Normes H"), locale)
		female, femaleOK := parseNormCell(cell(row, "Normes F"), locale)
		if maleOK {
			rule.Norms[model.SexMale] = male
		}
		if femaleOK {
			rule.Norms[model.SexFemale] = female
		}
		// The male column doubles as the default range when present, the
		// way the source tables are authored.
		switch {
		case maleOK:
			rule.Norms[model.SexDefault] = male
		case femaleOK:
			rule.Norms[model.SexDefault] = female
		}

		table.byKey[rule.CanonicalKey] = len(table.rules)
		table.rules = append(table.rules, rule)
	}
	return table, nil
}

// parseNormCell parses a free-text range cell like "13.5-17.5",
// "4,0–10,0 G/L" or "30 à 100".
func parseNormCell(cell string, locale textparse.Locale) (model.Range, bool) {
	b, ok := textparse.ParseRange(cell, locale)
	if !ok {
		return model.Range{}, false
	}
	return model.Range{Low: b.Low, High: b.High}, true
}

// cleanCell trims a cell and drops export placeholders.
func cleanCell(s string) string {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "nan", "none", "null", "-":
		return ""
	}
	return s
}
