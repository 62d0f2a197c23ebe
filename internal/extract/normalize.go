package extract

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"
)

// Normalizer maps wildly-varying raw labels onto stable canonical keys.
// Normalization is a pure function: the same raw name always yields the
// same key, and normalizing an already-canonical key returns it unchanged.
type Normalizer struct {
	aliases  map[string]string
	reserved map[string]bool
}

var (
	bracketRe   = regexp.MustCompile(`\([^)]*\)|\[[^\]]*\]`)
	separatorRe = regexp.MustCompile(`[^a-z0-9 _]+`)
	spaceRe     = regexp.MustCompile(`\s+`)
	accentFold  = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
)

// NewNormalizer builds a normalizer with the built-in alias table and the
// given reserved meta tokens ("page", "date", …).
func NewNormalizer(reserved []string) *Normalizer {
	n := &Normalizer{
		aliases:  make(map[string]string, len(defaultAliases)),
		reserved: make(map[string]bool, len(reserved)),
	}
	for k, v := range defaultAliases {
		n.aliases[k] = v
	}
	for _, r := range reserved {
		n.reserved[r] = true
	}
	return n
}

// LoadAliases merges a YAML alias-table override (variant → canonical key)
// on top of the built-in table. Override entries win.
func (n *Normalizer) LoadAliases(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read alias file: %w", err)
	}
	var overrides map[string]string
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return fmt.Errorf("parse alias file: %w", err)
	}
	for variant, key := range overrides {
		n.aliases[n.fold(variant)] = key
	}
	return nil
}

// Key normalizes a raw label to its canonical key: lowercase, accents
// folded, bracketed annotations stripped, separator punctuation collapsed
// to spaces, then the alias table, then spaces/hyphens to underscores.
func (n *Normalizer) Key(raw string) string {
	folded := n.fold(raw)
	if target, ok := n.aliases[folded]; ok {
		return target
	}
	// Already-canonical keys pass through the alias table unchanged too:
	// underscores survive folding, so normalize(normalize(x)) == normalize(x).
	key := strings.ReplaceAll(folded, " ", "_")
	if target, ok := n.aliases[key]; ok {
		return target
	}
	return key
}

// Measurable reports whether a canonical key names a measurable quantity.
// Reserved meta tokens and keys shorter than 2 characters do not.
func (n *Normalizer) Measurable(key string) bool {
	if len(key) < 2 {
		return false
	}
	return !n.reserved[key]
}

// fold applies the accent/case/separator normalization shared by keys and
// alias-table lookups.
func (n *Normalizer) fold(raw string) string {
	return FoldLabel(raw)
}

// FoldLabel lowercases, folds accents to base Latin letters, strips
// bracketed annotations, replaces separator punctuation with spaces and
// collapses whitespace. Shared with the rule-table column matcher.
func FoldLabel(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	if out, _, err := transform.String(accentFold, s); err == nil {
		s = out
	}
	s = bracketRe.ReplaceAllString(s, " ")
	s = separatorRe.ReplaceAllString(s, " ")
	s = spaceRe.ReplaceAllString(strings.TrimSpace(s), " ")
	return s
}

// defaultAliases maps known lab-name variants (post-fold) onto canonical
// keys. Variants are written the way fold() leaves them: lowercase, no
// accents, single spaces.
var defaultAliases = map[string]string{
	"ferritine":                "ferritine",
	"ferritin":                 "ferritine",
	"glucose":                  "glycemie",
	"glycemie a jeun":          "glycemie",
	"glycemie":                 "glycemie",
	"glucose a jeun":           "glycemie",
	"25 oh vitamine d":         "vitamine_d",
	"vitamine d":               "vitamine_d",
	"vitamine d3":              "vitamine_d",
	"25 hydroxyvitamine d":     "vitamine_d",
	"crp ultrasensible":        "crp",
	"crp us":                   "crp",
	"proteine c reactive":      "crp",
	"c reactive protein":       "crp",
	"tsh ultrasensible":        "tsh",
	"tsh us":                   "tsh",
	"thyreostimuline":          "tsh",
	"hemoglobine glyquee":      "hba1c",
	"hba1c":                    "hba1c",
	"hemoglobine":              "hemoglobine",
	"fer serique":              "fer_serique",
	"fer":                      "fer_serique",
	"cholesterol hdl":          "hdl",
	"hdl cholesterol":          "hdl",
	"cholesterol ldl":          "ldl",
	"ldl cholesterol":          "ldl",
	"triglycerides":            "triglycerides",
	"vitamine b12":             "b12",
	"cobalamine":               "b12",
	"folates":                  "folates",
	"vitamine b9":              "folates",
	"acide folique":            "folates",
	"zinc":                     "zinc",
	"magnesium":                "magnesium",
	"magnesium erythrocytaire": "magnesium",
	"homocysteine":             "homocysteine",
	"insuline":                 "insuline",
	"insuline a jeun":          "insuline",
	"cortisol":                 "cortisol",
	"selenium":                 "selenium",
}
