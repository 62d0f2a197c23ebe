package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/algolife/bioreport/internal/model"
)

// MicrobiomeExtractor parses the flattened text of a gut-microbiome report
// (GutMAP-style) into the secondary record set: a dysbiosis index, a
// qualitative diversity label, and per-group abundance deviations. It shares
// the normalization primitives with the biology extractor instead of
// carrying its own grammar copy.
type MicrobiomeExtractor struct {
	normalizer *Normalizer
}

// NewMicrobiomeExtractor builds the secondary extractor.
func NewMicrobiomeExtractor(normalizer *Normalizer) *MicrobiomeExtractor {
	return &MicrobiomeExtractor{normalizer: normalizer}
}

var (
	diExplicitRe = regexp.MustCompile(`(?i)(?:dysbiosis\s+index\s*\(di\)\s*[:=]\s*|\bdi\s*[:=]\s*)([1-5])\b`)
	diversityRe  = regexp.MustCompile(`(?i)the bacterial diversity is ([a-z ]+?)(?:\.|\n|$)`)
	groupLineRe  = regexp.MustCompile(`(?i)^([A-Za-z][A-Za-z0-9\- ]{3,40}?)\s+((?:slightly\s+|deviating\s+)?(?:low|high|normal|reduced|elevated|expected))\s*$`)
)

// Extract builds a MicrobiomeSummary from report text. A report from which
// nothing usable can be read yields an empty summary, not an error.
func (e *MicrobiomeExtractor) Extract(text string) *model.MicrobiomeSummary {
	summary := &model.MicrobiomeSummary{}

	e.extractDysbiosis(text, summary)
	e.extractDiversity(text, summary)
	e.extractGroups(text, summary)

	return summary
}

func (e *MicrobiomeExtractor) extractDysbiosis(text string, s *model.MicrobiomeSummary) {
	if m := diExplicitRe.FindStringSubmatch(text); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			s.DysbiosisIndex = n
		}
	}
	if s.DysbiosisIndex == 0 {
		// Fall back to the interpretation wording printed on the report.
		low := strings.ToLower(text)
		switch {
		case strings.Contains(low, "severely dysbiotic"):
			s.DysbiosisIndex = 4
		case strings.Contains(low, "mildly dysbiotic"):
			s.DysbiosisIndex = 3
		case strings.Contains(low, "normobiotic"):
			s.DysbiosisIndex = 1
		}
	}
	switch {
	case s.DysbiosisIndex == 0:
	case s.DysbiosisIndex <= 2:
		s.DysbiosisStatus = "normobiotic"
	case s.DysbiosisIndex == 3:
		s.DysbiosisStatus = "mildly dysbiotic"
	default:
		s.DysbiosisStatus = "severely dysbiotic"
	}
}

func (e *MicrobiomeExtractor) extractDiversity(text string, s *model.MicrobiomeSummary) {
	m := diversityRe.FindStringSubmatch(text)
	if m == nil {
		return
	}
	phrase := strings.Join(strings.Fields(strings.ToLower(m[1])), " ")
	s.DiversityLabel = phrase
	switch {
	// "lower than expected" must rank below "as expected", so the reduced
	// wordings are tested first.
	case strings.Contains(phrase, "lower"), strings.Contains(phrase, "reduced"):
		s.DiversityLevel = 1
	case strings.Contains(phrase, "slightly"), strings.Contains(phrase, "mild"):
		s.DiversityLevel = 2
	case strings.Contains(phrase, "expected"):
		s.DiversityLevel = 3
	default:
		s.DiversityLevel = 2
	}
}

func (e *MicrobiomeExtractor) extractGroups(text string, s *model.MicrobiomeSummary) {
	seen := make(map[string]int) // group key → index in s.Groups, last occurrence wins
	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		m := groupLineRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		name := strings.TrimSpace(m[1])
		key := e.normalizer.Key(name)
		if !e.normalizer.Measurable(key) {
			continue
		}
		group := model.BacterialGroup{
			Name:   name,
			Result: strings.ToLower(strings.Join(strings.Fields(m[2]), " ")),
		}
		if idx, ok := seen[key]; ok {
			s.Groups[idx] = group
			continue
		}
		seen[key] = len(s.Groups)
		s.Groups = append(s.Groups, group)
	}
}
