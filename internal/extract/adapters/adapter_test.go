package adapters

import (
	"errors"
	"strings"
	"testing"

	"github.com/algolife/bioreport/internal/model"
)

// stubExtractor returns a fixed record set for any text.
type stubExtractor struct {
	records model.RecordSet
}

func (s *stubExtractor) Extract(string) model.RecordSet { return s.records }

// stubNormalizer lowercases and replaces spaces, like the real one.
type stubNormalizer struct{}

func (stubNormalizer) Key(raw string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(raw)), " ", "_")
}

func (stubNormalizer) Measurable(key string) bool {
	return len(key) >= 2 && key != "page"
}

func TestResolve_EmptyInput(t *testing.T) {
	_, err := Resolve(Input{}, &stubExtractor{}, stubNormalizer{})
	if !errors.Is(err, ErrNoData) {
		t.Errorf("expected ErrNoData, got %v", err)
	}
}

func TestResolve_AmbiguousInput(t *testing.T) {
	in := Input{
		Text:   "Ferritine 12 ng/mL",
		Values: map[string]float64{"crp": 1.2},
	}
	_, err := Resolve(in, &stubExtractor{}, stubNormalizer{})
	if !errors.Is(err, ErrMalformedInput) {
		t.Errorf("expected ErrMalformedInput, got %v", err)
	}
}

func TestResolve_Text(t *testing.T) {
	extractor := &stubExtractor{records: model.RecordSet{
		"crp": {CanonicalKey: "crp", Value: 1.2},
	}}

	records, err := Resolve(Input{Text: "CRP 1.2"}, extractor, stubNormalizer{})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if len(records) != 1 || records["crp"].Value != 1.2 {
		t.Errorf("unexpected records: %+v", records)
	}
}

func TestResolve_Text_NoRecords(t *testing.T) {
	_, err := Resolve(Input{Text: "noise only"}, &stubExtractor{records: model.RecordSet{}}, stubNormalizer{})
	if !errors.Is(err, ErrNoData) {
		t.Errorf("expected ErrNoData for text with no extractable records, got %v", err)
	}
}

func TestResolve_Values(t *testing.T) {
	in := Input{Values: map[string]float64{
		"CRP":        1.2,
		"Vitamine D": 18,
		"page":       3, // reserved, dropped
	}}

	records, err := Resolve(in, &stubExtractor{}, stubNormalizer{})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if rec := records["vitamine_d"]; rec.Value != 18 || rec.RawName != "Vitamine D" {
		t.Errorf("unexpected record: %+v", rec)
	}
}

func TestResolve_Values_Empty(t *testing.T) {
	_, err := Resolve(Input{Values: map[string]float64{}}, &stubExtractor{}, stubNormalizer{})
	if !errors.Is(err, ErrNoData) {
		t.Errorf("expected ErrNoData for empty values map, got %v", err)
	}
}

func TestResolve_Records(t *testing.T) {
	in := Input{Records: []model.BiomarkerRecord{
		{RawName: "Ferritine", Value: 12},
		{RawName: "Ferritine", Value: 85}, // later duplicate wins
		{CanonicalKey: "crp", Value: 1.2},
	}}

	records, err := Resolve(in, &stubExtractor{}, stubNormalizer{})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records["ferritine"].Value != 85 {
		t.Errorf("expected later duplicate to win, got %v", records["ferritine"].Value)
	}
	if records["crp"].Value != 1.2 {
		t.Errorf("pre-keyed record lost: %+v", records["crp"])
	}
}

func TestResolve_Records_AllFiltered(t *testing.T) {
	in := Input{Records: []model.BiomarkerRecord{{RawName: "page", Value: 1}}}
	_, err := Resolve(in, &stubExtractor{}, stubNormalizer{})
	if !errors.Is(err, ErrNoData) {
		t.Errorf("expected ErrNoData when every record is filtered, got %v", err)
	}
}
