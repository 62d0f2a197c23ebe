// Package textparse is the single home of the value, unit and range token
// grammars shared by the biology line extractor, the microbiome extractor
// and the rule-table range parser. The three call sites used to carry
// slightly diverging copies of these patterns; they now all go through here.
package textparse

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Locale parameterizes the grammar for the source document's conventions.
type Locale struct {
	// RangeJoiners are the tokens accepted between the two bounds of a
	// reference range ("-", "–", "à", "to", …).
	RangeJoiners []string
}

// DefaultLocale covers the French/English lab reports the pipeline ingests.
func DefaultLocale() Locale {
	return Locale{RangeJoiners: []string{"-", "–", "—", "−", "à", "to"}}
}

// Bounds is a parsed reference range. One-sided cells ("< 5.4", "> 30")
// yield a single populated bound.
type Bounds struct {
	Low  *float64
	High *float64
}

const (
	// ValueToken matches a numeric measurement: optional comparison prefix,
	// optional sign, digits with an optional "." or "," decimal separator.
	// Thousands separators must be stripped from the line first.
	ValueToken = `[<>]?\s*[-+]?\d+(?:[.,]\d+)?`

	// UnitToken matches measurement units such as mg/L, µmol/l, %, G/L, UI/mL.
	UnitToken = `[a-zA-Zµμ°%][a-zA-Z0-9µμ°%]*(?:/[a-zA-Z0-9µμ]+)?`

	// numberToken is a bare number inside a range cell.
	numberToken = `-?\d+(?:[.,]\d+)?`
)

var (
	thousandSep = strings.NewReplacer(" ", "", " ", "", " ", "")
	residueRe   = regexp.MustCompile(`[^0-9.eE+\-]`)
	unitTailRe  = regexp.MustCompile(`\s*[A-Za-z/%µμ]+.*$`)
	numRe       = regexp.MustCompile(`^(` + numberToken + `)$`)
	lowerOnlyRe = regexp.MustCompile(`^(?:>=|>|≥)\s*(` + numberToken + `)$`)
	upperOnlyRe = regexp.MustCompile(`^(?:<=|<|≤)\s*(` + numberToken + `)$`)
	digitsRe    = regexp.MustCompile(`^\d+$`)
)

// StripSeparators removes thousands and narrow-space separators so the
// value token grammar sees a contiguous number.
func StripSeparators(s string) string {
	return thousandSep.Replace(s)
}

// ParseValue parses a value token to a finite float64. Comparison prefixes
// ("<", ">") are dropped, "," normalizes to ".", and non-numeric residue is
// stripped. Returns false for anything that does not parse to a finite
// number; the caller drops the candidate silently.
func ParseValue(tok string) (float64, bool) {
	s := StripSeparators(strings.TrimSpace(tok))
	s = strings.TrimLeft(s, "<>≤≥ ")
	s = strings.ReplaceAll(s, ",", ".")
	s = residueRe.ReplaceAllString(s, "")
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// LooksLikeYear reports whether the raw token is a bare calendar year
// (a 4-digit integer in [1900, 2099]). Years are never measurements.
func LooksLikeYear(tok string) bool {
	t := strings.TrimSpace(tok)
	if len(t) != 4 || !digitsRe.MatchString(t) {
		return false
	}
	n, _ := strconv.Atoi(t)
	return n >= 1900 && n <= 2099
}

// LooksLikeCode reports whether the raw token is an alphanumeric code of
// length >= 8, the shape of sample IDs and accession numbers.
func LooksLikeCode(tok string) bool {
	t := strings.TrimSpace(tok)
	if len(t) < 8 {
		return false
	}
	for _, r := range t {
		if !(r >= '0' && r <= '9' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z') {
			return false
		}
	}
	return true
}

// ParseRange parses a reference-range cell: unit suffixes stripped, dash
// variants and joiner words normalized, decimal commas accepted. Two-sided
// "low joiner high" cells yield both bounds; "< x" / "> x" cells yield one.
// An unparsable cell returns ok == false and the caller records no range.
func ParseRange(cell string, loc Locale) (Bounds, bool) {
	s := strings.TrimSpace(cell)
	if s == "" {
		return Bounds{}, false
	}
	s = StripSeparators(s)
	s = strings.Trim(s, "()")
	s = unitTailRe.ReplaceAllString(s, "")
	s = strings.TrimSpace(s)
	if s == "" {
		return Bounds{}, false
	}

	if m := lowerOnlyRe.FindStringSubmatch(s); m != nil {
		if v, ok := ParseValue(m[1]); ok {
			return Bounds{Low: &v}, true
		}
		return Bounds{}, false
	}
	if m := upperOnlyRe.FindStringSubmatch(s); m != nil {
		if v, ok := ParseValue(m[1]); ok {
			return Bounds{High: &v}, true
		}
		return Bounds{}, false
	}

	if lo, hi, ok := splitJoined(s, loc); ok {
		l, lok := ParseValue(lo)
		h, hok := ParseValue(hi)
		if lok && hok {
			return Bounds{Low: &l, High: &h}, true
		}
	}
	return Bounds{}, false
}

// RangePattern returns a regex fragment matching an inline range token for
// the given locale, e.g. "0.0 - 3.0", "30 à 100", "4,0–10,0".
func RangePattern(loc Locale) string {
	joiners := make([]string, 0, len(loc.RangeJoiners))
	for _, j := range loc.RangeJoiners {
		joiners = append(joiners, regexp.QuoteMeta(j))
	}
	return numberToken + `\s*(?:` + strings.Join(joiners, "|") + `)\s*` + numberToken
}

// splitJoined splits "low joiner high" on the first locale joiner that
// separates two number tokens. Joiner words ("à", "to") require surrounding
// whitespace; dash joiners may be flush against the numbers.
func splitJoined(s string, loc Locale) (string, string, bool) {
	for _, j := range loc.RangeJoiners {
		var parts []string
		if isWordJoiner(j) {
			parts = splitOnce(s, " "+j+" ")
			if parts == nil {
				continue
			}
		} else {
			// Skip a leading sign so "-2 - 4" splits at the joiner, not the sign.
			idx := strings.Index(s[1:], j)
			if idx < 0 {
				continue
			}
			parts = []string{s[:idx+1], s[idx+1+len(j):]}
		}
		lo := strings.TrimSpace(parts[0])
		hi := strings.TrimSpace(parts[1])
		if numRe.MatchString(lo) && numRe.MatchString(hi) {
			return lo, hi, true
		}
	}
	return "", "", false
}

func isWordJoiner(j string) bool {
	for _, r := range j {
		if r >= 'a' && r <= 'z' || r == 'à' {
			return true
		}
	}
	return false
}

func splitOnce(s, sep string) []string {
	idx := strings.Index(s, sep)
	if idx < 0 {
		return nil
	}
	return []string{s[:idx], s[idx+len(sep):]}
}
