package model

// SexCategory selects the reference range used for classification.
type SexCategory string

const (
	SexMale    SexCategory = "male"
	SexFemale  SexCategory = "female"
	SexDefault SexCategory = "default"
)

// ParseSex maps free-form caller input ("H", "M", "male", "F", …) onto a
// SexCategory, defaulting to SexDefault for anything unrecognized.
func ParseSex(s string) SexCategory {
	switch s {
	case "H", "h", "M", "m", "male", "Male", "masculin", "Masculin":
		return SexMale
	case "F", "f", "female", "Female", "feminin", "Féminin", "féminin":
		return SexFemale
	default:
		return SexDefault
	}
}

// Range is a (low, high) reference bound. One-sided bounds occur in source
// tables ("< 5.4", "> 30"); classification requires both sides and skips
// rules where either is absent.
type Range struct {
	Low  *float64 `json:"low,omitempty"`
	High *float64 `json:"high,omitempty"`
}

// Complete reports whether both bounds are present.
func (r Range) Complete() bool {
	return r.Low != nil && r.High != nil
}

// RecommendationBlock holds the four pre-authored text fragments attached to
// one direction (low or high) of a rule. Each field may span multiple
// fragments separated by newlines, ";" or "|".
type RecommendationBlock struct {
	Interpretation string `json:"interpretation,omitempty"`
	Nutrition      string `json:"nutrition,omitempty"`
	Micronutrition string `json:"micronutrition,omitempty"`
	Lifestyle      string `json:"lifestyle,omitempty"`
}

// Rule is one row of the loaded rule table: a biomarker with sex-specific
// reference ranges and the recommendation blocks triggered when a value
// falls outside them. Rules are read-only for the lifetime of a run.
type Rule struct {
	CanonicalKey string                `json:"canonical_key"`
	DisplayName  string                `json:"display_name"` // As written in the table ("Biomarqueur")
	Unit         string                `json:"unit,omitempty"`
	Category     string                `json:"category,omitempty"`
	Norms        map[SexCategory]Range `json:"norms"`
	LowBlock     RecommendationBlock   `json:"low_block"`
	HighBlock    RecommendationBlock   `json:"high_block"`
}

// NormFor resolves the reference range for a sex category, falling back to
// the default range when the sex is unknown or that sex's bound is unset.
func (r *Rule) NormFor(sex SexCategory) Range {
	if rng, ok := r.Norms[sex]; ok && rng.Complete() {
		return rng
	}
	if rng, ok := r.Norms[SexDefault]; ok {
		return rng
	}
	return Range{}
}

// MicroRule is one row of the supplementary microbiome rule table, matched
// against deviating bacterial groups by normalized-name overlap.
type MicroRule struct {
	Marker           string `json:"marker"`            // "Marqueur_bacterien"
	TriggerCondition string `json:"trigger_condition"` // e.g. "élevé", "réduit", "+", "-"
	SeverityGrade    string `json:"severity_grade"`    // e.g. "+2", "-3", "SÉVÈRE"
	Interpretation   string `json:"interpretation,omitempty"`
	Nutrition        string `json:"nutrition,omitempty"`
	Supplementation  string `json:"supplementation,omitempty"`
	Lifestyle        string `json:"lifestyle,omitempty"`
}
