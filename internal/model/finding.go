package model

// Status classifies an out-of-range value. In-range values produce no
// finding at all.
type Status string

const (
	StatusLow  Status = "low"
	StatusHigh Status = "high"
)

// Severity tiers findings for the caller. Cross-signal predicates and micro
// rules assign these directly; panel findings are ranked by priority score
// instead.
type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityLow    Severity = "low"
)

// ClassifiedFinding is one out-of-range biomarker with its relative-distance
// priority score. Ephemeral per run.
type ClassifiedFinding struct {
	CanonicalKey  string  `json:"canonical_key"`
	DisplayName   string  `json:"display_name"`
	Value         float64 `json:"value"`
	Unit          string  `json:"unit,omitempty"`
	Status        Status  `json:"status"`
	PriorityScore float64 `json:"priority_score"` // ≥ 0, relative distance from the violated bound
}

// Recommendation categories, in the order they are reported.
const (
	CategoryInterpretation = "interpretation"
	CategoryNutrition      = "nutrition"
	CategoryMicronutrition = "micronutrition"
	CategoryLifestyle      = "lifestyle"
)

// Categories lists the four recommendation categories in report order.
func Categories() []string {
	return []string{CategoryInterpretation, CategoryNutrition, CategoryMicronutrition, CategoryLifestyle}
}

// RecommendationSet maps category → ordered, deduplicated text fragments.
// Each list is capped and keeps first-seen fragments on dedup.
type RecommendationSet map[string][]string

// MicroFinding is a deviating bacterial group matched against the micro rule
// table.
type MicroFinding struct {
	Marker          string   `json:"marker"`
	Result          string   `json:"result"` // The raw deviation wording from the report
	Direction       Status   `json:"direction"`
	Severity        Severity `json:"severity"`
	Interpretation  string   `json:"interpretation,omitempty"`
	Nutrition       string   `json:"nutrition,omitempty"`
	Supplementation string   `json:"supplementation,omitempty"`
	Lifestyle       string   `json:"lifestyle,omitempty"`
}

// CrossSignalFinding is a correlated observation spanning the blood panel
// and the microbiome summary, produced by one co-occurrence predicate.
type CrossSignalFinding struct {
	Title           string   `json:"title"`
	EvidenceA       string   `json:"evidence_a"` // Literal panel evidence, e.g. "CRP 8.2 mg/L (high)"
	EvidenceB       string   `json:"evidence_b"` // Literal microbiome evidence, e.g. "dysbiosis index 4/5"
	Interpretation  string   `json:"interpretation"`
	Recommendations []string `json:"recommendations"`
	Severity        Severity `json:"severity"`
}
