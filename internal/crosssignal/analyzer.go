// Package crosssignal correlates a classified blood panel against a
// microbiome summary through a fixed catalogue of co-occurrence predicates.
// Predicates are independent one-shot tests: none is a fallback for another,
// several can fire on the same inputs, and findings keep declaration order.
package crosssignal

import (
	"fmt"
	"strings"

	"github.com/algolife/bioreport/internal/model"
)

// Analyzer evaluates the predicate catalogue. Stateless and safe to share.
type Analyzer struct {
	predicates []predicate
}

// predicate is one co-occurrence rule over the two record sets.
type predicate struct {
	title    string
	aliases  []string // Panel biomarker located by case-insensitive alias substring; empty for set-B-only predicates
	severity model.Severity
	interp   string
	recos    []string
	// test decides whether the predicate fires given the located panel
	// finding (nil for set-B-only predicates) and the microbiome summary.
	test func(a *model.ClassifiedFinding, b *model.MicrobiomeSummary) bool
	// evidenceB renders the literal microbiome evidence when the predicate fires.
	evidenceB func(b *model.MicrobiomeSummary) string
}

// NewAnalyzer builds the analyzer with the built-in catalogue.
func NewAnalyzer() *Analyzer {
	return &Analyzer{predicates: catalogue()}
}

// Analyze runs every predicate over the two classified record sets.
// Either input may be sparse; predicates that cannot locate their evidence
// simply do not fire.
func (a *Analyzer) Analyze(panel []model.ClassifiedFinding, micro *model.MicrobiomeSummary) []model.CrossSignalFinding {
	if micro == nil || micro.Empty() {
		return nil
	}
	var findings []model.CrossSignalFinding
	for _, p := range a.predicates {
		var located *model.ClassifiedFinding
		if len(p.aliases) > 0 {
			located = locate(panel, p.aliases)
			if located == nil {
				continue
			}
		}
		if !p.test(located, micro) {
			continue
		}
		finding := model.CrossSignalFinding{
			Title:           p.title,
			EvidenceB:       p.evidenceB(micro),
			Interpretation:  p.interp,
			Recommendations: p.recos,
			Severity:        p.severity,
		}
		if located != nil {
			finding.EvidenceA = evidenceA(located)
		}
		findings = append(findings, finding)
	}
	return findings
}

// locate finds the first panel finding whose display name contains one of
// the aliases, case-insensitive. First match wins.
func locate(panel []model.ClassifiedFinding, aliases []string) *model.ClassifiedFinding {
	for i := range panel {
		name := strings.ToLower(panel[i].DisplayName)
		for _, alias := range aliases {
			if strings.Contains(name, alias) {
				return &panel[i]
			}
		}
	}
	return nil
}

func evidenceA(f *model.ClassifiedFinding) string {
	if f.Unit != "" {
		return fmt.Sprintf("%s %g %s (%s)", f.DisplayName, f.Value, f.Unit, f.Status)
	}
	return fmt.Sprintf("%s %g (%s)", f.DisplayName, f.Value, f.Status)
}

func dysbiosisEvidence(b *model.MicrobiomeSummary) string {
	return fmt.Sprintf("dysbiosis index %d/5 (%s)", b.DysbiosisIndex, b.DysbiosisStatus)
}

// catalogue returns the fixed, ordered predicate set.
func catalogue() []predicate {
	return []predicate{
		{
			title:    "Inflammation + dysbiose",
			aliases:  []string{"crp", "protéine c réactive", "proteine c reactive"},
			severity: model.SeverityHigh,
			interp: "Une inflammation systémique associée à une dysbiose intestinale suggère " +
				"une contribution de la barrière intestinale au terrain inflammatoire.",
			recos: []string{
				"Probiotiques multi-souches",
				"Alimentation anti-inflammatoire (oméga-3, polyphénols)",
				"Réduire sucres rapides et ultra-transformés",
			},
			test: func(a *model.ClassifiedFinding, b *model.MicrobiomeSummary) bool {
				return a.Status == model.StatusHigh && b.Dysbiotic()
			},
			evidenceB: dysbiosisEvidence,
		},
		{
			title:    "Carence martiale + dysbiose",
			aliases:  []string{"ferritine", "ferritin", "fer sérique", "fer serique"},
			severity: model.SeverityMedium,
			interp: "Un statut en fer bas avec dysbiose oriente vers une absorption " +
				"intestinale dégradée plutôt qu'un simple défaut d'apport.",
			recos: []string{
				"Fer bisglycinate à distance des repas",
				"Vitamine C au moment de la prise",
				"Corriger la dysbiose avant de réévaluer la ferritine",
			},
			test: func(a *model.ClassifiedFinding, b *model.MicrobiomeSummary) bool {
				return a.Status == model.StatusLow && b.Dysbiotic()
			},
			evidenceB: dysbiosisEvidence,
		},
		{
			title:    "Vitamine D basse + dysbiose",
			aliases:  []string{"vitamine d", "vitamin d", "25-oh", "25 oh"},
			severity: model.SeverityMedium,
			interp: "La vitamine D module la barrière intestinale et le microbiote ; " +
				"un déficit entretient la dysbiose et inversement.",
			recos: []string{
				"Vitamine D3 2000–4000 UI/j avec un repas gras",
				"Contrôle à 3 mois",
			},
			test: func(a *model.ClassifiedFinding, b *model.MicrobiomeSummary) bool {
				return a.Status == model.StatusLow && b.Dysbiotic()
			},
			evidenceB: dysbiosisEvidence,
		},
		{
			title:    "Dysglycémie + dysbiose",
			aliases:  []string{"glycémie", "glycemie", "glucose", "hba1c", "hémoglobine glyquée", "hemoglobine glyquee"},
			severity: model.SeverityHigh,
			interp: "L'association hyperglycémie + dysbiose est un profil métabolique à " +
				"risque : le microbiote altéré aggrave l'insulinorésistance.",
			recos: []string{
				"Fibres solubles et légumineuses à chaque repas",
				"Marche post-prandiale 15 min",
				"Probiotiques ciblés (Akkermansia, Lactobacillus)",
			},
			test: func(a *model.ClassifiedFinding, b *model.MicrobiomeSummary) bool {
				return a.Status == model.StatusHigh && b.Dysbiotic()
			},
			evidenceB: dysbiosisEvidence,
		},
		{
			title:    "Dysthyroïdie + dysbiose",
			aliases:  []string{"tsh", "thyréostimuline", "thyreostimuline"},
			severity: model.SeverityMedium,
			interp: "L'axe thyroïde-intestin est bidirectionnel : une TSH hors norme avec " +
				"dysbiose mérite une exploration conjointe.",
			recos: []string{
				"Vérifier sélénium, zinc et iode",
				"Réévaluer la TSH après correction du microbiote",
			},
			test: func(a *model.ClassifiedFinding, b *model.MicrobiomeSummary) bool {
				// Either direction of thyroid dysfunction correlates.
				return (a.Status == model.StatusLow || a.Status == model.StatusHigh) && b.Dysbiotic()
			},
			evidenceB: dysbiosisEvidence,
		},
		{
			title:    "Diversité bactérienne réduite",
			severity: model.SeverityMedium,
			interp: "Une diversité réduite fragilise la résilience du microbiote même " +
				"sans anomalie sanguine associée.",
			recos: []string{
				"Diversifier les fibres (30 végétaux différents/semaine)",
				"Aliments fermentés quotidiens",
			},
			test: func(_ *model.ClassifiedFinding, b *model.MicrobiomeSummary) bool {
				return b.DiversityLevel != 0 && b.DiversityLevel <= 1
			},
			evidenceB: func(b *model.MicrobiomeSummary) string {
				return fmt.Sprintf("bacterial diversity: %s", b.DiversityLabel)
			},
		},
		{
			title:    "Déviations bactériennes multiples",
			severity: model.SeverityHigh,
			interp: "Plusieurs groupes bactériens hors des abondances attendues signent " +
				"un déséquilibre multi-système du microbiote.",
			recos: []string{
				"Protocole microbiote complet (prébiotiques + probiotiques)",
				"Réévaluation GutMAP à 6 mois",
			},
			test: func(_ *model.ClassifiedFinding, b *model.MicrobiomeSummary) bool {
				return len(b.DeviatingGroups()) >= 3
			},
			evidenceB: func(b *model.MicrobiomeSummary) string {
				groups := b.DeviatingGroups()
				names := make([]string, 0, len(groups))
				for _, g := range groups {
					names = append(names, g.Name)
				}
				return fmt.Sprintf("%d deviating groups: %s", len(groups), strings.Join(names, ", "))
			},
		},
	}
}
