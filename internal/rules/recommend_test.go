package rules

import (
	"testing"

	"github.com/algolife/bioreport/internal/model"
)

const recommendCSV = testHeader + "\n" +
	`Ferritine,ng/mL,30 - 300,15 - 200,Réserves basses,Probiotiques multi-souches; Légumes variés,Fer bisglycinate,Sommeil régulier,,,,
Vitamine D,ng/mL,30 - 100,30 - 100,Déficit vitaminique,"Probiotiques multi-souches
Aliments fermentés",Vitamine D3,Exposition solaire,,,,
Zinc,µmol/L,11 - 18,11 - 18,Statut en zinc bas,nan,Zinc bisglycinate | Cuivre équilibré,-,,,,
`

func lowFinding(key string, score float64) model.ClassifiedFinding {
	return model.ClassifiedFinding{CanonicalKey: key, Status: model.StatusLow, PriorityScore: score}
}

func TestAggregator_Aggregate(t *testing.T) {
	table := testTable(t, recommendCSV)
	agg := NewAggregator(table, 20)

	findings := []model.ClassifiedFinding{
		lowFinding("ferritine", 0.8),
		lowFinding("vitamine_d", 0.5),
		lowFinding("zinc", 0.2),
	}
	out := agg.Aggregate(findings)

	nutrition := out[model.CategoryNutrition]
	want := []string{"Probiotiques multi-souches", "Légumes variés", "Aliments fermentés"}
	if len(nutrition) != len(want) {
		t.Fatalf("nutrition = %v, want %v", nutrition, want)
	}
	for i := range want {
		if nutrition[i] != want[i] {
			t.Errorf("nutrition[%d] = %q, want %q (first-seen order)", i, nutrition[i], want[i])
		}
	}

	micro := out[model.CategoryMicronutrition]
	if len(micro) != 4 {
		t.Fatalf("micronutrition = %v, want 4 fragments", micro)
	}
	if micro[2] != "Zinc bisglycinate" || micro[3] != "Cuivre équilibré" {
		t.Errorf("pipe-separated fragments not split: %v", micro)
	}

	// Placeholder lifestyle cell ("-") for zinc yields no fragment.
	lifestyle := out[model.CategoryLifestyle]
	for _, frag := range lifestyle {
		if frag == "-" {
			t.Error("placeholder fragment leaked into lifestyle")
		}
	}
}

func TestAggregator_StatusSelectsBlock(t *testing.T) {
	content := testHeader + "\n" +
		"CRP,mg/L,0.0 - 3.0,0.0 - 3.0,Interprétation basse,,,,Inflammation active,,,\n"
	table := testTable(t, content)
	agg := NewAggregator(table, 20)

	out := agg.Aggregate([]model.ClassifiedFinding{
		{CanonicalKey: "crp", Status: model.StatusHigh},
	})

	interp := out[model.CategoryInterpretation]
	if len(interp) != 1 || interp[0] != "Inflammation active" {
		t.Errorf("interpretation = %v, want the high block only", interp)
	}
}

func TestAggregator_CategoryCap(t *testing.T) {
	table := testTable(t, recommendCSV)
	agg := NewAggregator(table, 2)

	out := agg.Aggregate([]model.ClassifiedFinding{
		lowFinding("ferritine", 0.8),
		lowFinding("vitamine_d", 0.5),
		lowFinding("zinc", 0.2),
	})

	for cat, fragments := range out {
		if len(fragments) > 2 {
			t.Errorf("category %s exceeds cap: %v", cat, fragments)
		}
	}
}

func TestAggregator_UnknownFindingSkipped(t *testing.T) {
	table := testTable(t, recommendCSV)
	agg := NewAggregator(table, 20)

	out := agg.Aggregate([]model.ClassifiedFinding{lowFinding("inconnu", 1.0)})
	for cat, fragments := range out {
		if len(fragments) != 0 {
			t.Errorf("category %s should be empty, got %v", cat, fragments)
		}
	}
}

func TestSplitFragments(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"semicolons", "un; deux ;trois", []string{"un", "deux", "trois"}},
		{"pipes", "un | deux", []string{"un", "deux"}},
		{"newlines", "un\ndeux\n\ntrois", []string{"un", "deux", "trois"}},
		{"mixed", "un; deux\ntrois | quatre", []string{"un", "deux", "trois", "quatre"}},
		{"placeholder nan", "nan", nil},
		{"placeholder dash", "-", nil},
		{"empty", "  ", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitFragments(tt.in)
			if len(got) != len(tt.want) {
				t.Fatalf("SplitFragments(%q) = %v, want %v", tt.in, got, tt.want)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("fragment[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}
