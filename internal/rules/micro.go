package rules

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/algolife/bioreport/internal/extract"
	"github.com/algolife/bioreport/internal/model"
)

// micro rule table columns; matched on folded header names like the main
// table.
var microRequiredColumns = []string{
	"Marqueur_bacterien",
	"Condition_declenchement",
	"Niveau_gravite",
}

var microTextColumns = []string{
	"Interpretation_clinique",
	"Recommandations_nutritionnelles",
	"Recommandations_supplementation",
	"Recommandations_lifestyle",
}

// MicroTable holds the microbiome rule set.
type MicroTable struct {
	rules []model.MicroRule
}

// Len returns the number of loaded micro rules.
func (t *MicroTable) Len() int { return len(t.rules) }

// LoadMicroTable reads the microbiome rule table from CSV.
func LoadMicroTable(path string) (*MicroTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open micro rule table: %w", err)
	}
	defer func() { _ = f.Close() }()
	return ReadMicroTable(f, path)
}

// ReadMicroTable parses micro rule CSV content from a reader.
func ReadMicroTable(r io.Reader, path string) (*MicroTable, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read micro rule table header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[extract.FoldLabel(h)] = i
	}

	var missing []string
	for _, want := range microRequiredColumns {
		if _, ok := cols[extract.FoldLabel(want)]; !ok {
			missing = append(missing, want)
		}
	}
	if len(missing) > 0 {
		return nil, &ConfigurationError{Path: path, Missing: missing}
	}

	cell := func(row []string, name string) string {
		idx, ok := cols[extract.FoldLabel(name)]
		if !ok || idx >= len(row) {
			return ""
		}
		return cleanCell(row[idx])
	}

	table := &MicroTable{}
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue
		}
		marker := cell(row, "Marqueur_bacterien")
		if marker == "" {
			continue
		}
		table.rules = append(table.rules, model.MicroRule{
			Marker:           marker,
			TriggerCondition: cell(row, "Condition_declenchement"),
			SeverityGrade:    cell(row, "Niveau_gravite"),
			Interpretation:   cell(row, microTextColumns[0]),
			Nutrition:        cell(row, microTextColumns[1]),
			Supplementation:  cell(row, microTextColumns[2]),
			Lifestyle:        cell(row, microTextColumns[3]),
		})
	}
	return table, nil
}

// MatchGroups scores each deviating bacterial group against the micro rule
// table and emits a finding for the best-scoring rule whose trigger
// direction agrees. Scoring: exact normalized marker match 10, substring 5,
// direction agreement +3, severity-grade agreement +2.
func (t *MicroTable) MatchGroups(summary *model.MicrobiomeSummary, normalizer *extract.Normalizer) []model.MicroFinding {
	if t == nil || summary == nil {
		return nil
	}
	var findings []model.MicroFinding
	for _, group := range summary.Groups {
		direction, deviating := group.Deviating()
		if !deviating {
			continue
		}
		slight := group.Slight()
		groupKey := normalizer.Key(group.Name)

		best := -1
		bestScore := 0
		for i, rule := range t.rules {
			ruleKey := normalizer.Key(rule.Marker)
			score := 0
			switch {
			case ruleKey == groupKey:
				score = 10
			case strings.Contains(groupKey, ruleKey) || strings.Contains(ruleKey, groupKey):
				score = 5
			default:
				continue
			}
			if !triggerMatches(rule.TriggerCondition, direction) {
				continue
			}
			score += 3
			if gradeMatches(rule.SeverityGrade, slight) {
				score += 2
			}
			if score > bestScore {
				bestScore = score
				best = i
			}
		}
		if best < 0 {
			continue
		}
		rule := t.rules[best]
		findings = append(findings, model.MicroFinding{
			Marker:          group.Name,
			Result:          group.Result,
			Direction:       direction,
			Severity:        gradeSeverity(rule.SeverityGrade),
			Interpretation:  rule.Interpretation,
			Nutrition:       rule.Nutrition,
			Supplementation: rule.Supplementation,
			Lifestyle:       rule.Lifestyle,
		})
	}
	return findings
}

// triggerMatches tests a rule's trigger condition ("élevé", "réduit", "+",
// "-") against the observed deviation direction.
func triggerMatches(condition string, direction model.Status) bool {
	cond := extract.FoldLabel(condition)
	if direction == model.StatusHigh {
		return strings.Contains(cond, "elev") || strings.Contains(condition, "+")
	}
	return strings.Contains(cond, "redu") || strings.Contains(condition, "-")
}

// gradeMatches tests whether the rule's severity grade fits the deviation
// magnitude: slight deviations pair with grade ±1, marked ones with ±2/±3.
func gradeMatches(grade string, slight bool) bool {
	if slight {
		return strings.Contains(grade, "1")
	}
	for _, g := range []string{"+2", "+3", "-2", "-3"} {
		if strings.Contains(grade, g) {
			return true
		}
	}
	return false
}

// gradeSeverity tiers a severity grade for the report.
func gradeSeverity(grade string) model.Severity {
	g := extract.FoldLabel(grade)
	for _, marker := range []string{"+3", "-3", "severe"} {
		if strings.Contains(g, marker) || strings.Contains(grade, marker) {
			return model.SeverityHigh
		}
	}
	for _, marker := range []string{"+2", "-2", "modere"} {
		if strings.Contains(g, marker) || strings.Contains(grade, marker) {
			return model.SeverityMedium
		}
	}
	return model.SeverityLow
}
