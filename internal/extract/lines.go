package extract

import (
	"regexp"
	"strings"

	"github.com/algolife/bioreport/internal/model"
	"github.com/algolife/bioreport/internal/textparse"
)

// LineExtractor scans flattened document text line by line and emits
// candidate biomarker records. Lines that match neither grammar, or that
// trip an anti-noise filter, are discarded silently.
type LineExtractor struct {
	cfg        model.ExtractConfig
	locale     textparse.Locale
	normalizer *Normalizer
	spaced     *regexp.Regexp // name <ws> value unit? range?
	colon      *regexp.Regexp // name : value unit? range?
}

// NewLineExtractor builds the extractor with its two line grammars
// compiled for the given locale.
func NewLineExtractor(cfg model.ExtractConfig, locale textparse.Locale, normalizer *Normalizer) *LineExtractor {
	// Shared tail: value, optional unit, optional (possibly parenthesized) range.
	tail := `(` + textparse.ValueToken + `)` +
		`\s*(` + textparse.UnitToken + `)?` +
		`\s*(?:\(?\s*(` + textparse.RangePattern(locale) + `)\s*\)?)?\s*$`
	namePart := `^([A-Za-zÀ-ÿ][A-Za-zÀ-ÿ0-9 '’\-\+\./\(\)]*?)`

	return &LineExtractor{
		cfg:        cfg,
		locale:     locale,
		normalizer: normalizer,
		spaced:     regexp.MustCompile(namePart + `\s+` + tail),
		colon:      regexp.MustCompile(namePart + `\s*:\s*` + tail),
	}
}

// Extract parses the document text and returns the surviving records keyed
// by canonical key, last occurrence winning.
func (e *LineExtractor) Extract(text string) model.RecordSet {
	records := make(model.RecordSet)
	for i, raw := range strings.Split(text, "\n") {
		rec, ok := e.parseLine(raw, i)
		if !ok {
			continue
		}
		records[rec.CanonicalKey] = rec
	}
	return records
}

// parseLine applies the heuristic filters and both grammars to one line.
func (e *LineExtractor) parseLine(raw string, lineNo int) (model.BiomarkerRecord, bool) {
	line := strings.TrimSpace(textparse.StripSeparators(raw))
	if len(line) < e.cfg.MinLineLength {
		return model.BiomarkerRecord{}, false
	}
	if e.isNoise(line) {
		return model.BiomarkerRecord{}, false
	}

	// First successful grammar wins.
	m := e.spaced.FindStringSubmatch(line)
	if m == nil {
		m = e.colon.FindStringSubmatch(line)
	}
	if m == nil {
		return model.BiomarkerRecord{}, false
	}

	name := cleanName(m[1])
	valueTok := strings.TrimSpace(m[2])
	unit := strings.TrimSpace(m[3])
	rangeTok := strings.TrimSpace(m[4])

	if name == "" || len(name) > e.cfg.MaxNameLength {
		return model.BiomarkerRecord{}, false
	}
	if textparse.LooksLikeYear(valueTok) || textparse.LooksLikeCode(valueTok) {
		return model.BiomarkerRecord{}, false
	}
	value, ok := textparse.ParseValue(valueTok)
	if !ok {
		return model.BiomarkerRecord{}, false
	}

	key := e.normalizer.Key(name)
	if !e.normalizer.Measurable(key) {
		return model.BiomarkerRecord{}, false
	}

	rec := model.BiomarkerRecord{
		RawName:      name,
		CanonicalKey: key,
		Value:        value,
		Unit:         unit,
		Line:         lineNo,
		RawText:      line,
	}
	if rangeTok != "" {
		if b, ok := textparse.ParseRange(rangeTok, e.locale); ok {
			rec.RefLow = b.Low
			rec.RefHigh = b.High
		}
	}
	return rec, true
}

// isNoise rejects page headers, URLs and boilerplate section titles by
// lowercase-folded prefix.
func (e *LineExtractor) isNoise(line string) bool {
	low := strings.ToLower(line)
	if strings.Contains(low, "http") || strings.Contains(low, "www.") || strings.Contains(low, "@") {
		return true
	}
	for _, prefix := range e.cfg.NoisePrefixes {
		if strings.HasPrefix(low, prefix) {
			return true
		}
	}
	return false
}

var dotLeaderRe = regexp.MustCompile(`[\.]{3,}`)

// cleanName drops dot leaders and trailing punctuation left over from
// tabular layouts ("CRP ultrasensible .... ").
func cleanName(name string) string {
	name = dotLeaderRe.ReplaceAllString(name, " ")
	name = strings.Join(strings.Fields(name), " ")
	return strings.Trim(name, ".:;,|-_ ")
}
