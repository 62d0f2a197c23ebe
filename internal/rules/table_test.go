package rules

import (
	"errors"
	"strings"
	"testing"

	"github.com/algolife/bioreport/internal/extract"
	"github.com/algolife/bioreport/internal/model"
	"github.com/algolife/bioreport/internal/textparse"
)

const testHeader = "Biomarqueur,Unité,Normes H,Normes F," +
	"BASSE-Interprétation,BASSE-Nutrition,BASSE-Micronutrition,BASSE-Lifestyle," +
	"HAUTE-Interprétation,HAUTE-Nutrition,HAUTE-Micronutrition,HAUTE-Lifestyle"

const testCSV = testHeader + "\n" +
	`Ferritine,ng/mL,30 - 300,15 - 200,Réserves en fer basses,Viande rouge 2x/semaine,Fer bisglycinate,Limiter le thé aux repas,Surcharge possible,Limiter viande rouge,Bilan martial complet,Don du sang
Hémoglobine,g/dL,13.5 - 17.5,12 - 16,Anémie probable,Apports protéiques,Fer + B12 + folates,Fractionner l'effort,Polyglobulie,Hydratation,Bilan hématologique,Consultation
CRP,mg/L,0.0 - 3.0,0.0 - 3.0,,,,,Inflammation active,Alimentation anti-inflammatoire,Oméga-3 EPA/DHA,Gestion du stress
Vitamine D,ng/mL,30 - 100,30 - 100,Déficit en vitamine D,Poissons gras,Vitamine D3 2000 UI/j,Exposition solaire,Excès rare,Réduire la supplémentation,Contrôle calcémie,Surveillance
TSH,mUI/L,0.4 - 4.0,0.4 - 4.0,Hyperthyroïdie à explorer,Iode alimentaire,Sélénium,Suivi endocrinien,Hypothyroïdie fruste,Iode et sélénium,Zinc,Réévaluer à 3 mois
Glycémie,g/L,0.7 - 1.0,0.7 - 1.0,Hypoglycémie,Collations complexes,Chrome,Repas réguliers,Dysglycémie,Fibres solubles,Magnésium,Marche post-prandiale
`

func testTable(t *testing.T, csvContent string) *Table {
	t.Helper()
	normalizer := extract.NewNormalizer([]string{"page", "date"})
	table, err := ReadTable(strings.NewReader(csvContent), "test.csv", normalizer, textparse.DefaultLocale())
	if err != nil {
		t.Fatalf("ReadTable failed: %v", err)
	}
	return table
}

func TestReadTable(t *testing.T) {
	table := testTable(t, testCSV)

	if table.Len() != 6 {
		t.Fatalf("expected 6 rules, got %d", table.Len())
	}

	rule, ok := table.Lookup("ferritine")
	if !ok {
		t.Fatal("lookup ferritine failed")
	}
	if rule.DisplayName != "Ferritine" || rule.Unit != "ng/mL" {
		t.Errorf("unexpected rule identity: %q %q", rule.DisplayName, rule.Unit)
	}

	male := rule.Norms[model.SexMale]
	if !male.Complete() || *male.Low != 30 || *male.High != 300 {
		t.Errorf("male norm = %+v, want 30-300", male)
	}
	female := rule.Norms[model.SexFemale]
	if !female.Complete() || *female.Low != 15 || *female.High != 200 {
		t.Errorf("female norm = %+v, want 15-200", female)
	}
	// The male column doubles as the default range.
	def := rule.Norms[model.SexDefault]
	if !def.Complete() || *def.Low != 30 {
		t.Errorf("default norm = %+v, want the male range", def)
	}

	if rule.LowBlock.Interpretation != "Réserves en fer basses" {
		t.Errorf("low interpretation = %q", rule.LowBlock.Interpretation)
	}
	if rule.HighBlock.Lifestyle != "Don du sang" {
		t.Errorf("high lifestyle = %q", rule.HighBlock.Lifestyle)
	}
}

func TestReadTable_MissingColumns(t *testing.T) {
	content := "Biomarqueur,Unité,Normes H,BASSE-Interprétation,BASSE-Nutrition," +
		"BASSE-Micronutrition,BASSE-Lifestyle,HAUTE-Interprétation,HAUTE-Nutrition," +
		"HAUTE-Micronutrition\nFerritine,ng/mL,30 - 300,,,,,,,\n"

	normalizer := extract.NewNormalizer(nil)
	_, err := ReadTable(strings.NewReader(content), "broken.csv", normalizer, textparse.DefaultLocale())
	if err == nil {
		t.Fatal("expected ConfigurationError, got nil")
	}

	var confErr *ConfigurationError
	if !errors.As(err, &confErr) {
		t.Fatalf("expected *ConfigurationError, got %T: %v", err, err)
	}
	if confErr.Path != "broken.csv" {
		t.Errorf("path = %q, want broken.csv", confErr.Path)
	}
	want := map[string]bool{"Normes F": true, "HAUTE-Lifestyle": true}
	if len(confErr.Missing) != 2 {
		t.Fatalf("missing = %v, want exactly the two absent columns", confErr.Missing)
	}
	for _, col := range confErr.Missing {
		if !want[col] {
			t.Errorf("unexpected missing column %q", col)
		}
	}
}

func TestReadTable_HeaderVariants(t *testing.T) {
	// Spacing and accent variants in headers must resolve to the same columns.
	header := "biomarqueur,unite,NORMES H,normes f," +
		"BASSE - Interprétation,basse-nutrition,Basse - Micronutrition,BASSE-LIFESTYLE," +
		"haute - interpretation,HAUTE-Nutrition,haute-micronutrition,Haute-Lifestyle"
	content := header + "\nFerritine,ng/mL,30 - 300,15 - 200,a,b,c,d,e,f,g,h\n"

	table := testTable(t, content)
	rule, ok := table.Lookup("ferritine")
	if !ok {
		t.Fatal("lookup ferritine failed")
	}
	if rule.LowBlock.Interpretation != "a" || rule.HighBlock.Lifestyle != "h" {
		t.Errorf("columns misaligned: %+v", rule)
	}
}

func TestReadTable_OneSidedAndPlaceholderRanges(t *testing.T) {
	content := testHeader + "\n" +
		"Sélénium,µmol/L,> 0.9,nan,,,,,,,,\n" +
		"Cortisol,nmol/L,nan,101 - 536,,,,,,,,\n"

	table := testTable(t, content)

	selenium, ok := table.Lookup("selenium")
	if !ok {
		t.Fatal("lookup selenium failed")
	}
	male := selenium.Norms[model.SexMale]
	if male.Low == nil || *male.Low != 0.9 || male.High != nil {
		t.Errorf("male norm = %+v, want one-sided low 0.9", male)
	}
	if male.Complete() {
		t.Error("one-sided range must not report Complete")
	}

	cortisol, ok := table.Lookup("cortisol")
	if !ok {
		t.Fatal("lookup cortisol failed")
	}
	if _, ok := cortisol.Norms[model.SexMale]; ok {
		t.Error("placeholder male cell must leave the male range absent")
	}
	// With no male range, the female range becomes the default.
	def := cortisol.Norms[model.SexDefault]
	if !def.Complete() || *def.Low != 101 {
		t.Errorf("default norm = %+v, want the female range", def)
	}
}

func TestReadTable_SkipsBlankRows(t *testing.T) {
	content := testHeader + "\n" +
		",ng/mL,30 - 300,15 - 200,,,,,,,,\n" +
		"Ferritine,ng/mL,30 - 300,15 - 200,,,,,,,,\n"

	table := testTable(t, content)
	if table.Len() != 1 {
		t.Errorf("expected blank-name row to be skipped, got %d rules", table.Len())
	}
}
