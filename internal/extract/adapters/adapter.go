// Package adapters normalizes the input shapes callers are allowed to
// supply (a flat key/value map, structured records, or raw document text)
// into the canonical []model.BiomarkerRecord the pipeline consumes. Shape
// handling lives here instead of branching ad hoc at each use site.
package adapters

import (
	"errors"

	"github.com/algolife/bioreport/internal/model"
)

// ErrNoData marks an input that is well-formed but carries nothing to
// analyze. Distinct from ErrMalformedInput so callers can assert on which
// occurred.
var ErrNoData = errors.New("adapters: no data in input")

// ErrMalformedInput marks an input that populates more than one shape, or
// none at all.
var ErrMalformedInput = errors.New("adapters: malformed input")

// Input is a tagged variant: exactly one member must be populated.
type Input struct {
	// Text is raw document text to run through the line extractor.
	Text string
	// Values is a pre-extracted canonical key → value mapping.
	Values map[string]float64
	// Records is a pre-built record list; later duplicates win.
	Records []model.BiomarkerRecord
}

// TextExtractor is the part of the line extractor the adapter needs.
type TextExtractor interface {
	Extract(text string) model.RecordSet
}

// KeyNormalizer canonicalizes the keys of pre-extracted value maps.
type KeyNormalizer interface {
	Key(raw string) string
	Measurable(key string) bool
}

// Resolve normalizes any accepted input shape into a RecordSet.
func Resolve(in Input, extractor TextExtractor, normalizer KeyNormalizer) (model.RecordSet, error) {
	populated := 0
	if in.Text != "" {
		populated++
	}
	if in.Values != nil {
		populated++
	}
	if in.Records != nil {
		populated++
	}
	if populated == 0 {
		return nil, ErrNoData
	}
	if populated > 1 {
		return nil, ErrMalformedInput
	}

	switch {
	case in.Text != "":
		records := extractor.Extract(in.Text)
		if len(records) == 0 {
			return nil, ErrNoData
		}
		return records, nil

	case in.Values != nil:
		if len(in.Values) == 0 {
			return nil, ErrNoData
		}
		records := make(model.RecordSet, len(in.Values))
		for rawKey, value := range in.Values {
			key := normalizer.Key(rawKey)
			if !normalizer.Measurable(key) {
				continue
			}
			records[key] = model.BiomarkerRecord{
				RawName:      rawKey,
				CanonicalKey: key,
				Value:        value,
			}
		}
		if len(records) == 0 {
			return nil, ErrNoData
		}
		return records, nil

	default:
		if len(in.Records) == 0 {
			return nil, ErrNoData
		}
		records := make(model.RecordSet, len(in.Records))
		for _, rec := range in.Records {
			if rec.CanonicalKey == "" {
				rec.CanonicalKey = normalizer.Key(rec.RawName)
			}
			if !normalizer.Measurable(rec.CanonicalKey) {
				continue
			}
			records[rec.CanonicalKey] = rec
		}
		if len(records) == 0 {
			return nil, ErrNoData
		}
		return records, nil
	}
}
