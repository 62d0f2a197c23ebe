package model

import (
	"fmt"
	"strings"
	"time"
)

// Report is the complete analysis of one document (plus an optional
// secondary microbiome document).
type Report struct {
	Subject     string    `json:"subject,omitempty"` // Document name or caller-supplied label
	Sex         string    `json:"sex,omitempty"`
	GeneratedAt time.Time `json:"generated_at"`

	Records    RecordSet            `json:"records"`              // Canonical key → last-seen record
	Priorities []ClassifiedFinding  `json:"priorities"`           // ≤ 8, priority_score descending
	Recommend  RecommendationSet    `json:"recommendations"`      // Category → ≤ 20 fragments
	Microbiome *MicrobiomeSummary   `json:"microbiome,omitempty"` // Secondary record set, when supplied
	MicroHits  []MicroFinding       `json:"micro_findings,omitempty"`
	CrossHits  []CrossSignalFinding `json:"cross_signals,omitempty"`

	HealthScore int                 `json:"health_score"` // 0–100
	Axes        map[string][]string `json:"axes,omitempty"`
	Summary     string              `json:"summary"`
}

// HealthScore derives the 0–100 score from finding severities:
// 100 − 8 per high-severity hit − 4 per medium, floored at 0.
func HealthScore(high, medium int) int {
	s := 100 - high*8 - medium*4
	if s < 0 {
		return 0
	}
	return s
}

// SummaryLine builds the one-line report summary from severity counts.
func SummaryLine(high, medium int) string {
	var parts []string
	if high > 0 {
		parts = append(parts, fmt.Sprintf("%d priorité haute", high))
	}
	if medium > 0 {
		parts = append(parts, fmt.Sprintf("%d priorité moyenne", medium))
	}
	if len(parts) == 0 {
		return "Aucune anomalie détectée"
	}
	return "Analyse : " + strings.Join(parts, ", ")
}
