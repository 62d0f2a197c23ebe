package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/algolife/bioreport/internal/model"
)

// Renderer writes reports to disk and prints the stdout summary.
type Renderer struct {
	includeFooter bool
}

// NewRenderer creates a renderer.
func NewRenderer(includeFooter bool) *Renderer {
	return &Renderer{includeFooter: includeFooter}
}

// RenderJSON writes the canonical JSON report.
func (r *Renderer) RenderJSON(report *model.Report, path string) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// RenderMarkdown writes a human-readable Markdown summary.
func (r *Renderer) RenderMarkdown(report *model.Report, path string) error {
	var b strings.Builder

	fmt.Fprintf(&b, "# Rapport biologique — %s\n\n", report.Subject)
	fmt.Fprintf(&b, "- Généré : %s\n", report.GeneratedAt.Format("2006-01-02 15:04 UTC"))
	fmt.Fprintf(&b, "- Score santé : **%d/100**\n", report.HealthScore)
	fmt.Fprintf(&b, "- %s\n\n", report.Summary)

	if len(report.Priorities) > 0 {
		b.WriteString("## Priorités\n\n")
		b.WriteString("| Biomarqueur | Valeur | Unité | Statut | Score |\n")
		b.WriteString("|---|---|---|---|---|\n")
		for _, f := range report.Priorities {
			fmt.Fprintf(&b, "| %s | %g | %s | %s | %.3f |\n",
				f.DisplayName, f.Value, f.Unit, f.Status, f.PriorityScore)
		}
		b.WriteString("\n")
	}

	for _, cat := range model.Categories() {
		fragments := report.Recommend[cat]
		if len(fragments) == 0 {
			continue
		}
		fmt.Fprintf(&b, "## %s\n\n", categoryTitle(cat))
		for _, frag := range fragments {
			fmt.Fprintf(&b, "- %s\n", frag)
		}
		b.WriteString("\n")
	}

	if len(report.MicroHits) > 0 {
		b.WriteString("## Microbiote\n\n")
		for _, f := range report.MicroHits {
			fmt.Fprintf(&b, "- **%s** (%s, %s) : %s\n", f.Marker, f.Result, f.Severity, f.Interpretation)
		}
		b.WriteString("\n")
	}

	if len(report.CrossHits) > 0 {
		b.WriteString("## Signaux croisés\n\n")
		for _, f := range report.CrossHits {
			fmt.Fprintf(&b, "### %s (%s)\n\n", f.Title, f.Severity)
			if f.EvidenceA != "" {
				fmt.Fprintf(&b, "- Biologie : %s\n", f.EvidenceA)
			}
			fmt.Fprintf(&b, "- Microbiote : %s\n", f.EvidenceB)
			fmt.Fprintf(&b, "- %s\n", f.Interpretation)
			for _, reco := range f.Recommendations {
				fmt.Fprintf(&b, "- %s\n", reco)
			}
			b.WriteString("\n")
		}
	}

	if len(report.Axes) > 0 {
		b.WriteString("## Axes thérapeutiques\n\n")
		axes := make([]string, 0, len(report.Axes))
		for axis := range report.Axes {
			axes = append(axes, axis)
		}
		sort.Strings(axes)
		for _, axis := range axes {
			fmt.Fprintf(&b, "- **%s** : %s\n", axis, strings.Join(report.Axes[axis], ", "))
		}
		b.WriteString("\n")
	}

	if r.includeFooter {
		b.WriteString("---\n\nGénéré par bioreport. Classement de valeurs contre des seuils fournis — pas un avis médical.\n")
	}

	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return fmt.Errorf("write markdown: %w", err)
	}
	return nil
}

// RenderSummary prints the short stdout summary after a run.
func (r *Renderer) RenderSummary(report *model.Report) {
	fmt.Printf("\n%s\n", report.Summary)
	fmt.Printf("Score santé : %d/100\n", report.HealthScore)
	fmt.Printf("Biomarqueurs extraits : %d, priorités : %d\n", len(report.Records), len(report.Priorities))
	if report.Microbiome != nil {
		fmt.Printf("Microbiote : DI %d/5, %d déviations, %d signaux croisés\n",
			report.Microbiome.DysbiosisIndex, len(report.Microbiome.DeviatingGroups()), len(report.CrossHits))
	}
}

func categoryTitle(cat string) string {
	switch cat {
	case model.CategoryInterpretation:
		return "Interprétation"
	case model.CategoryNutrition:
		return "Nutrition"
	case model.CategoryMicronutrition:
		return "Micronutrition"
	case model.CategoryLifestyle:
		return "Lifestyle"
	default:
		return cat
	}
}
