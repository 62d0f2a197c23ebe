package rules

import (
	"errors"
	"strings"
	"testing"

	"github.com/algolife/bioreport/internal/extract"
	"github.com/algolife/bioreport/internal/model"
)

const microHeader = "Marqueur_bacterien,Condition_declenchement,Niveau_gravite," +
	"Interpretation_clinique,Recommandations_nutritionnelles," +
	"Recommandations_supplementation,Recommandations_lifestyle"

const microCSV = microHeader + "\n" +
	`Akkermansia muciniphila,réduit,-3,Barrière intestinale fragilisée,Polyphénols (grenade raisin),Akkermansia ou prébiotiques ciblés,Jeûne intermittent doux
Bifidobacterium,réduit,-2,Flore protectrice affaiblie,Fibres solubles,Probiotiques Bifidobacterium,Réduire les édulcorants
Escherichia coli,élevé,+2,Prolifération protéolytique,Réduire protéines animales,Berbérine,Hygiène alimentaire
Faecalibacterium prausnitzii,réduit,-1,Production de butyrate en baisse,Amidon résistant,Butyrate,Activité physique modérée
`

func testMicroTable(t *testing.T, content string) *MicroTable {
	t.Helper()
	table, err := ReadMicroTable(strings.NewReader(content), "micro.csv")
	if err != nil {
		t.Fatalf("ReadMicroTable failed: %v", err)
	}
	return table
}

func TestReadMicroTable(t *testing.T) {
	table := testMicroTable(t, microCSV)
	if table.Len() != 4 {
		t.Fatalf("expected 4 micro rules, got %d", table.Len())
	}
}

func TestReadMicroTable_MissingColumns(t *testing.T) {
	content := "Marqueur_bacterien,Niveau_gravite\nAkkermansia,-3\n"
	_, err := ReadMicroTable(strings.NewReader(content), "micro.csv")

	var confErr *ConfigurationError
	if !errors.As(err, &confErr) {
		t.Fatalf("expected *ConfigurationError, got %T: %v", err, err)
	}
	if len(confErr.Missing) != 1 || confErr.Missing[0] != "Condition_declenchement" {
		t.Errorf("missing = %v, want [Condition_declenchement]", confErr.Missing)
	}
}

func summaryWithGroups(groups ...model.BacterialGroup) *model.MicrobiomeSummary {
	return &model.MicrobiomeSummary{DysbiosisIndex: 3, Groups: groups}
}

func TestMicroTable_MatchGroups(t *testing.T) {
	table := testMicroTable(t, microCSV)
	normalizer := extract.NewNormalizer(nil)

	t.Run("exact marker match", func(t *testing.T) {
		s := summaryWithGroups(model.BacterialGroup{Name: "Akkermansia muciniphila", Result: "reduced"})
		findings := table.MatchGroups(s, normalizer)
		if len(findings) != 1 {
			t.Fatalf("expected 1 finding, got %d", len(findings))
		}
		f := findings[0]
		if f.Severity != model.SeverityHigh {
			t.Errorf("severity = %s, want high for grade -3", f.Severity)
		}
		if f.Direction != model.StatusLow {
			t.Errorf("direction = %s, want low", f.Direction)
		}
		if f.Interpretation != "Barrière intestinale fragilisée" {
			t.Errorf("interpretation = %q", f.Interpretation)
		}
	})

	t.Run("substring marker match", func(t *testing.T) {
		s := summaryWithGroups(model.BacterialGroup{Name: "Bifidobacterium longum", Result: "low"})
		findings := table.MatchGroups(s, normalizer)
		if len(findings) != 1 {
			t.Fatalf("expected 1 finding, got %d", len(findings))
		}
		if findings[0].Severity != model.SeverityMedium {
			t.Errorf("severity = %s, want medium for grade -2", findings[0].Severity)
		}
	})

	t.Run("direction must agree", func(t *testing.T) {
		// The Escherichia rule triggers on elevated abundance only.
		s := summaryWithGroups(model.BacterialGroup{Name: "Escherichia coli", Result: "low"})
		if findings := table.MatchGroups(s, normalizer); len(findings) != 0 {
			t.Errorf("expected no finding on direction mismatch, got %v", findings)
		}
	})

	t.Run("elevated direction", func(t *testing.T) {
		s := summaryWithGroups(model.BacterialGroup{Name: "Escherichia coli", Result: "deviating high"})
		findings := table.MatchGroups(s, normalizer)
		if len(findings) != 1 {
			t.Fatalf("expected 1 finding, got %d", len(findings))
		}
		if findings[0].Direction != model.StatusHigh {
			t.Errorf("direction = %s, want high", findings[0].Direction)
		}
	})

	t.Run("slight deviation pairs with grade 1", func(t *testing.T) {
		s := summaryWithGroups(model.BacterialGroup{Name: "Faecalibacterium prausnitzii", Result: "slightly reduced"})
		findings := table.MatchGroups(s, normalizer)
		if len(findings) != 1 {
			t.Fatalf("expected 1 finding, got %d", len(findings))
		}
		if findings[0].Severity != model.SeverityLow {
			t.Errorf("severity = %s, want low for grade -1", findings[0].Severity)
		}
	})

	t.Run("normal groups are skipped", func(t *testing.T) {
		s := summaryWithGroups(model.BacterialGroup{Name: "Akkermansia muciniphila", Result: "normal"})
		if findings := table.MatchGroups(s, normalizer); len(findings) != 0 {
			t.Errorf("expected no finding for normal abundance, got %v", findings)
		}
	})

	t.Run("nil inputs", func(t *testing.T) {
		if findings := table.MatchGroups(nil, normalizer); findings != nil {
			t.Errorf("expected nil for nil summary, got %v", findings)
		}
		var noTable *MicroTable
		s := summaryWithGroups(model.BacterialGroup{Name: "Akkermansia muciniphila", Result: "low"})
		if findings := noTable.MatchGroups(s, normalizer); findings != nil {
			t.Errorf("expected nil for nil table, got %v", findings)
		}
	})
}
