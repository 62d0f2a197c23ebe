package pipeline

import (
	"strings"

	"github.com/algolife/bioreport/internal/extract"
	"github.com/algolife/bioreport/internal/model"
)

// therapeutic axes and the folded keywords that route a finding into each.
// Order matters: a finding lands in the first axis that matches.
var axisOrder = []string{
	"metabolisme", "inflammation", "hormones", "micronutrition",
	"microbiome", "cardiovasculaire",
}

var axisKeywords = map[string][]string{
	"metabolisme":      {"metabol", "glyc", "insuline", "glucose", "lipide", "trigly"},
	"inflammation":     {"inflamm", "crp", "cytokine", "oxydatif", "ferritine"},
	"hormones":         {"hormone", "thyroid", "cortisol", "testosteron", "oestrog", "dhea", "tsh"},
	"micronutrition":   {"vitamine", "mineral", "magnesium", "zinc", "fer", "omega", "selenium", "b12", "folate"},
	"microbiome":       {"microbiome", "microbiote", "bacterie", "firmicute", "bacteroidote", "lactobacil", "bifidobacter", "akkermansia"},
	"cardiovasculaire": {"cardio", "cholesterol", "hdl", "ldl", "triglycer", "homocysteine"},
}

// buildAxes buckets finding names by keyword into therapeutic axes; findings
// matching no axis land in "autre". Empty axes are omitted.
func buildAxes(findings []model.ClassifiedFinding, micro []model.MicroFinding) map[string][]string {
	axes := make(map[string][]string)

	place := func(label string) {
		text := extract.FoldLabel(label)
		for _, axis := range axisOrder {
			for _, kw := range axisKeywords[axis] {
				if strings.Contains(text, kw) {
					axes[axis] = append(axes[axis], label)
					return
				}
			}
		}
		axes["autre"] = append(axes["autre"], label)
	}

	for _, f := range findings {
		place(f.DisplayName)
	}
	for _, f := range micro {
		place(f.Marker)
	}
	if len(axes) == 0 {
		return nil
	}
	return axes
}
