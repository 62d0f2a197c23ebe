package rules

import (
	"regexp"
	"strings"

	"github.com/algolife/bioreport/internal/extract"
	"github.com/algolife/bioreport/internal/model"
)

// Aggregator folds the recommendation blocks of triggered rules into the
// per-category fragment lists delivered to the report renderer.
type Aggregator struct {
	table  *Table
	maxPer int
}

// NewAggregator builds an aggregator over the loaded table.
func NewAggregator(table *Table, maxPerCategory int) *Aggregator {
	return &Aggregator{table: table, maxPer: maxPerCategory}
}

// Aggregate collects the block for each finding's status, splits multi-line
// content into fragments and appends them in finding-priority order, then
// deduplicates each category keeping first occurrences and truncates to the
// category cap.
func (a *Aggregator) Aggregate(findings []model.ClassifiedFinding) model.RecommendationSet {
	out := make(model.RecommendationSet, 4)
	for _, cat := range model.Categories() {
		out[cat] = []string{}
	}

	for _, f := range findings {
		rule, ok := a.table.Lookup(f.CanonicalKey)
		if !ok {
			continue
		}
		block := rule.LowBlock
		if f.Status == model.StatusHigh {
			block = rule.HighBlock
		}
		out[model.CategoryInterpretation] = append(out[model.CategoryInterpretation], SplitFragments(block.Interpretation)...)
		out[model.CategoryNutrition] = append(out[model.CategoryNutrition], SplitFragments(block.Nutrition)...)
		out[model.CategoryMicronutrition] = append(out[model.CategoryMicronutrition], SplitFragments(block.Micronutrition)...)
		out[model.CategoryLifestyle] = append(out[model.CategoryLifestyle], SplitFragments(block.Lifestyle)...)
	}

	for cat, fragments := range out {
		out[cat] = dedupeCapped(fragments, a.maxPer)
	}
	return out
}

var fragmentSepRe = regexp.MustCompile(`(?:\r?\n)+|\s*;\s*|\s*\|\s*`)

// SplitFragments turns one block cell into individual trimmed fragments.
// Supported separators: newlines, ";" and "|". Placeholder cells yield none.
func SplitFragments(cell string) []string {
	s := strings.TrimSpace(cell)
	if s == "" {
		return nil
	}
	switch strings.ToLower(s) {
	case "nan", "none", "null", "-":
		return nil
	}
	var out []string
	for _, part := range fragmentSepRe.Split(s, -1) {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// dedupeCapped keeps first-seen fragments (dedup key is the folded text) and
// truncates to the category cap.
func dedupeCapped(fragments []string, limit int) []string {
	seen := make(map[string]bool, len(fragments))
	out := make([]string, 0, len(fragments))
	for _, f := range fragments {
		key := extract.FoldLabel(f)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, f)
		if len(out) == limit {
			break
		}
	}
	return out
}
