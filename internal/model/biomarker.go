package model

// BiomarkerRecord is a single extracted measurement: a raw label as it
// appeared in the source document, its canonical key, a finite numeric
// value, and optional unit and reference bounds captured from the same line.
// Records are immutable once built; a record with an unparsable value is
// never constructed.
type BiomarkerRecord struct {
	RawName      string   `json:"raw_name"`            // Label as printed in the document
	CanonicalKey string   `json:"canonical_key"`       // Normalized identity used for rule lookup
	Value        float64  `json:"value"`               // Always finite
	Unit         string   `json:"unit,omitempty"`      // Unit token, empty when not captured
	RefLow       *float64 `json:"ref_low,omitempty"`   // Inline reference lower bound
	RefHigh      *float64 `json:"ref_high,omitempty"`  // Inline reference upper bound
	Line         int      `json:"line,omitempty"`      // Source line index (0-based)
	RawText      string   `json:"raw_text,omitempty"`  // Original line, kept for traceability
}

// RecordSet maps canonical key to the last-seen record for that key.
// Validated/final values typically appear after preliminary ones in lab
// documents, so last-occurrence-wins on duplicate keys.
type RecordSet map[string]BiomarkerRecord

// Values flattens the set into the canonical-key → value mapping consumed
// by the rule matcher.
func (rs RecordSet) Values() map[string]float64 {
	out := make(map[string]float64, len(rs))
	for k, r := range rs {
		out[k] = r.Value
	}
	return out
}
