package extract

import (
	"os"
	"path/filepath"
	"testing"
)

func testNormalizer() *Normalizer {
	return NewNormalizer([]string{"page", "date", "nom", "patient"})
}

func TestNormalizer_Key(t *testing.T) {
	n := testNormalizer()

	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"simple lowercase", "Ferritine", "ferritine"},
		{"accents folded", "Férritine", "ferritine"},
		{"alias to canonical", "CRP ultrasensible", "crp"},
		{"alias with hyphen variant", "25-OH Vitamine D", "vitamine_d"},
		{"glucose maps to glycemie", "Glucose", "glycemie"},
		{"glucose a jeun maps too", "Glycémie à jeun", "glycemie"},
		{"brackets stripped", "Cholestérol HDL (direct)", "hdl"},
		{"unknown multi-word", "Acide urique", "acide_urique"},
		{"separator punctuation", "Gamma-GT", "gamma_gt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := n.Key(tt.raw); got != tt.want {
				t.Errorf("Key(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestNormalizer_KeyIdempotent(t *testing.T) {
	n := testNormalizer()

	inputs := []string{
		"Ferritine", "CRP ultrasensible", "25-OH Vitamine D",
		"Acide urique", "Glycémie à jeun", "Hémoglobine glyquée (HbA1c)",
	}
	for _, raw := range inputs {
		once := n.Key(raw)
		twice := n.Key(once)
		if once != twice {
			t.Errorf("Key not idempotent for %q: %q != %q", raw, once, twice)
		}
	}
}

func TestNormalizer_Measurable(t *testing.T) {
	n := testNormalizer()

	tests := []struct {
		key  string
		want bool
	}{
		{"crp", true},
		{"vitamine_d", true},
		{"page", false},
		{"date", false},
		{"x", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := n.Measurable(tt.key); got != tt.want {
			t.Errorf("Measurable(%q) = %v, want %v", tt.key, got, tt.want)
		}
	}
}

func TestNormalizer_LoadAliases(t *testing.T) {
	n := testNormalizer()

	path := filepath.Join(t.TempDir(), "aliases.yaml")
	content := "Vitamine D totale: vitamine_d\nGlucose: glucose_custom\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	if err := n.LoadAliases(path); err != nil {
		t.Fatalf("LoadAliases failed: %v", err)
	}

	if got := n.Key("Vitamine D totale"); got != "vitamine_d" {
		t.Errorf("override alias: got %q, want %q", got, "vitamine_d")
	}
	// Overrides win over the built-in table.
	if got := n.Key("Glucose"); got != "glucose_custom" {
		t.Errorf("override precedence: got %q, want %q", got, "glucose_custom")
	}
}

func TestNormalizer_LoadAliases_MissingFile(t *testing.T) {
	n := testNormalizer()
	if err := n.LoadAliases("no_such_file.yaml"); err == nil {
		t.Error("expected error for missing alias file, got nil")
	}
}

func TestFoldLabel(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"BASSE - Interprétation", "basse interpretation"},
		{"BASSE-Interprétation", "basse interpretation"},
		{"Unité", "unite"},
		{"  Normes   H  ", "normes h"},
		{"Marqueur_bacterien", "marqueur_bacterien"},
	}
	for _, tt := range tests {
		if got := FoldLabel(tt.in); got != tt.want {
			t.Errorf("FoldLabel(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
