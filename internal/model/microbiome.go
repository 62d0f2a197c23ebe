package model

// BacterialGroup is one bacterial-group line from a microbiome report.
type BacterialGroup struct {
	Name   string `json:"name"`
	Result string `json:"result"` // Raw wording: "low", "deviating high", "slightly reduced", …
}

// Deviating reports whether the group deviates from the expected abundance
// and in which direction. Groups marked normal or "as expected" carry no
// deviation.
func (g BacterialGroup) Deviating() (Status, bool) {
	r := foldLower(g.Result)
	if r == "" || contains(r, "expected", "normal") {
		return "", false
	}
	if contains(r, "elevat", "high", "eleve") {
		return StatusHigh, true
	}
	if contains(r, "reduc", "low", "reduit") {
		return StatusLow, true
	}
	return "", false
}

// Slight reports whether the deviation is flagged as slight/mild.
func (g BacterialGroup) Slight() bool {
	return contains(foldLower(g.Result), "slight", "leger", "mild")
}

// MicrobiomeSummary is the secondary record set: an externally extracted
// summary of one gut-microbiome report.
type MicrobiomeSummary struct {
	DysbiosisIndex  int              `json:"dysbiosis_index,omitempty"`  // 1–5, 0 when unknown
	DysbiosisStatus string           `json:"dysbiosis_status,omitempty"` // normobiotic / mildly dysbiotic / severely dysbiotic
	DiversityLabel  string           `json:"diversity_label,omitempty"`  // Qualitative wording from the report
	DiversityLevel  int              `json:"diversity_level,omitempty"`  // Ordinal 1 (reduced) – 3 (as expected), 0 unknown
	Groups          []BacterialGroup `json:"groups,omitempty"`
}

// Dysbiotic reports whether the summary indicates dysbiosis (index ≥ 3).
func (m *MicrobiomeSummary) Dysbiotic() bool {
	return m != nil && m.DysbiosisIndex >= 3
}

// DeviatingGroups returns the groups whose abundance deviates from expected.
func (m *MicrobiomeSummary) DeviatingGroups() []BacterialGroup {
	if m == nil {
		return nil
	}
	var out []BacterialGroup
	for _, g := range m.Groups {
		if _, ok := g.Deviating(); ok {
			out = append(out, g)
		}
	}
	return out
}

// Empty reports whether nothing usable was extracted.
func (m *MicrobiomeSummary) Empty() bool {
	return m == nil || (m.DysbiosisIndex == 0 && m.DiversityLevel == 0 && len(m.Groups) == 0)
}
