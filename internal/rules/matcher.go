package rules

import (
	"sort"
	"strings"

	"github.com/algolife/bioreport/internal/extract"
	"github.com/algolife/bioreport/internal/model"
)

// Matcher resolves rules for extracted records and classifies their values.
// It holds only read-only state and is safe to share across documents.
type Matcher struct {
	table      *Table
	normalizer *extract.Normalizer
	fuzzy      model.FuzzyConfig
	limits     model.LimitsConfig
}

// NewMatcher builds a matcher over a loaded table.
func NewMatcher(table *Table, normalizer *extract.Normalizer, fuzzy model.FuzzyConfig, limits model.LimitsConfig) *Matcher {
	return &Matcher{table: table, normalizer: normalizer, fuzzy: fuzzy, limits: limits}
}

// Resolve finds the rule for a record: exact canonical-key match first, then
// the fuzzy token-overlap fallback. A miss is a normal outcome, not an
// error; a wrong rule is never silently applied.
func (m *Matcher) Resolve(rec model.BiomarkerRecord) (*model.Rule, bool) {
	if rule, ok := m.table.Lookup(rec.CanonicalKey); ok {
		return rule, true
	}
	if !m.fuzzy.Enabled {
		return nil, false
	}
	return m.fuzzyResolve(rec)
}

// fuzzyResolve scores every rule's display name by token overlap against the
// record's normalized name, with a bonus when one string contains the other,
// and accepts the best candidate only at or above the minimum score.
func (m *Matcher) fuzzyResolve(rec model.BiomarkerRecord) (*model.Rule, bool) {
	name := strings.ReplaceAll(rec.CanonicalKey, "_", " ")
	tokens := strings.Fields(name)
	if len(tokens) == 0 {
		return nil, false
	}

	best := -1
	bestScore := 0
	for i := range m.table.rules {
		candidate := strings.ReplaceAll(m.normalizer.Key(m.table.rules[i].DisplayName), "_", " ")
		score := 0
		for _, tok := range tokens {
			if containsToken(candidate, tok) {
				score += m.fuzzy.TokenWeight
			}
		}
		if score > 0 && (strings.Contains(candidate, name) || strings.Contains(name, candidate)) {
			score += m.fuzzy.SubstringBonus
		}
		if score > bestScore {
			bestScore = score
			best = i
		}
	}
	if best < 0 || bestScore < m.fuzzy.MinScore {
		return nil, false
	}
	return &m.table.rules[best], true
}

func containsToken(candidate, tok string) bool {
	for _, c := range strings.Fields(candidate) {
		if c == tok {
			return true
		}
	}
	return false
}

// Classify tests one record against its resolved rule for the subject's sex
// category. In-range values, and rules whose resolved range is missing a
// bound, produce no finding.
func (m *Matcher) Classify(rec model.BiomarkerRecord, rule *model.Rule, sex model.SexCategory) (model.ClassifiedFinding, bool) {
	rng := rule.NormFor(sex)
	if !rng.Complete() {
		return model.ClassifiedFinding{}, false
	}
	low, high := *rng.Low, *rng.High

	finding := model.ClassifiedFinding{
		CanonicalKey: rule.CanonicalKey,
		DisplayName:  rule.DisplayName,
		Value:        rec.Value,
		Unit:         rule.Unit,
	}

	switch {
	case rec.Value < low:
		finding.Status = model.StatusLow
		finding.PriorityScore = (low - rec.Value) / nonZero(low)
	case rec.Value > high:
		finding.Status = model.StatusHigh
		finding.PriorityScore = (rec.Value - high) / nonZero(high)
	default:
		return model.ClassifiedFinding{}, false
	}
	return finding, true
}

// nonZero guards the relative-distance denominator: a zero bound divides by
// 1.0 instead. Kept as the established scoring convention even though it
// changes the score's scale for zero-bounded ranges.
func nonZero(bound float64) float64 {
	if bound == 0 {
		return 1.0
	}
	return bound
}

// ClassifyAll resolves and classifies every record, returning the findings
// sorted by priority score descending and truncated to the configured cap,
// plus the full (uncapped) finding list for downstream aggregation.
func (m *Matcher) ClassifyAll(records model.RecordSet, sex model.SexCategory) (priorities, all []model.ClassifiedFinding) {
	for _, rec := range records {
		rule, ok := m.Resolve(rec)
		if !ok {
			continue
		}
		finding, ok := m.Classify(rec, rule, sex)
		if !ok {
			continue
		}
		all = append(all, finding)
	}

	sort.SliceStable(all, func(i, j int) bool {
		if all[i].PriorityScore != all[j].PriorityScore {
			return all[i].PriorityScore > all[j].PriorityScore
		}
		return all[i].CanonicalKey < all[j].CanonicalKey
	})

	priorities = all
	if len(priorities) > m.limits.MaxPriorities {
		priorities = priorities[:m.limits.MaxPriorities]
	}
	return priorities, all
}
