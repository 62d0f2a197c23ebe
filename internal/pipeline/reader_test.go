package pipeline

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNormalizeText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"crlf", "Ferritine 12\r\nCRP 8.2\r\n", "Ferritine 12\nCRP 8.2\n"},
		{"bare cr", "Ferritine 12\rCRP 8.2", "Ferritine 12\nCRP 8.2"},
		{"tab runs collapse", "Ferritine\t\t\t12", "Ferritine  12"},
		{"space runs collapse", "CRP      8.2", "CRP  8.2"},
		{"single spaces kept", "Vitamine D 18 ng/mL", "Vitamine D 18 ng/mL"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeText(tt.in); got != tt.want {
				t.Errorf("NormalizeText(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestReadDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.txt")
	if err := os.WriteFile(path, []byte("Ferritine\t\t12 ng/mL\r\n"), 0644); err != nil {
		t.Fatal(err)
	}

	got, err := ReadDocument(path)
	if err != nil {
		t.Fatalf("ReadDocument: %v", err)
	}
	if want := "Ferritine  12 ng/mL\n"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestReadDocument_Missing(t *testing.T) {
	if _, err := ReadDocument(filepath.Join(t.TempDir(), "absent.txt")); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}
