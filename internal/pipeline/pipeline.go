// Package pipeline orchestrates the complete analysis of one document:
// extraction → normalization → classification → aggregation, plus the
// optional microbiome pass and cross-signal correlation.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/algolife/bioreport/internal/crosssignal"
	"github.com/algolife/bioreport/internal/extract"
	"github.com/algolife/bioreport/internal/extract/adapters"
	"github.com/algolife/bioreport/internal/model"
	"github.com/algolife/bioreport/internal/rules"
	"github.com/algolife/bioreport/internal/textparse"
)

// Pipeline wires the stages together around one loaded rule table. All
// state is read-only after construction, so one pipeline can analyze
// independent documents concurrently.
type Pipeline struct {
	cfg        *model.Config
	normalizer *extract.Normalizer
	extractor  *extract.LineExtractor
	microExt   *extract.MicrobiomeExtractor
	matcher    *rules.Matcher
	aggregator *rules.Aggregator
	microTable *rules.MicroTable // nil when no micro rules are loaded
	analyzer   *crosssignal.Analyzer
}

// New builds a pipeline over a loaded rule table. microTable may be nil.
func New(cfg *model.Config, normalizer *extract.Normalizer, table *rules.Table, microTable *rules.MicroTable) *Pipeline {
	locale := textparse.Locale{RangeJoiners: cfg.Locale.RangeJoiners}
	return &Pipeline{
		cfg:        cfg,
		normalizer: normalizer,
		extractor:  extract.NewLineExtractor(cfg.Extract, locale, normalizer),
		microExt:   extract.NewMicrobiomeExtractor(normalizer),
		matcher:    rules.NewMatcher(table, normalizer, cfg.Fuzzy, cfg.Limits),
		aggregator: rules.NewAggregator(table, cfg.Limits.MaxPerCategory),
		microTable: microTable,
		analyzer:   crosssignal.NewAnalyzer(),
	}
}

// DocumentInput is everything the caller supplies for one analysis.
type DocumentInput struct {
	Subject string         // Label for the report, e.g. the source filename
	Sex     string         // Free-form; resolved via model.ParseSex
	Panel   adapters.Input // Blood panel in any accepted shape
	// MicrobiomeText is the flattened text of the secondary report; empty
	// when the run has no microbiome document.
	MicrobiomeText string
}

// Analyze runs the full pipeline for one document. Context is accepted for
// symmetry with batch workers; the analysis itself never blocks.
func (p *Pipeline) Analyze(ctx context.Context, in DocumentInput) (*model.Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	records, err := adapters.Resolve(in.Panel, p.extractor, p.normalizer)
	if err != nil {
		return nil, fmt.Errorf("resolve panel input: %w", err)
	}

	sex := model.ParseSex(in.Sex)
	priorities, all := p.matcher.ClassifyAll(records, sex)
	recommend := p.aggregator.Aggregate(all)

	report := &model.Report{
		Subject:     in.Subject,
		Sex:         string(sex),
		GeneratedAt: time.Now().UTC(),
		Records:     records,
		Priorities:  priorities,
		Recommend:   recommend,
	}

	if in.MicrobiomeText != "" {
		summary := p.microExt.Extract(in.MicrobiomeText)
		if !summary.Empty() {
			report.Microbiome = summary
			report.MicroHits = p.microTable.MatchGroups(summary, p.normalizer)
			report.CrossHits = p.analyzer.Analyze(all, summary)
		}
	}

	high, medium := severityCounts(report)
	report.HealthScore = model.HealthScore(high, medium)
	report.Summary = model.SummaryLine(high, medium)
	report.Axes = buildAxes(all, report.MicroHits)

	return report, nil
}

// severityCounts tiers the report's findings for the health score: panel
// findings count high, micro and cross-signal findings follow their own
// severity.
func severityCounts(r *model.Report) (high, medium int) {
	high += len(r.Priorities)
	for _, f := range r.MicroHits {
		switch f.Severity {
		case model.SeverityHigh:
			high++
		case model.SeverityMedium:
			medium++
		}
	}
	for _, f := range r.CrossHits {
		switch f.Severity {
		case model.SeverityHigh:
			high++
		case model.SeverityMedium:
			medium++
		}
	}
	return high, medium
}
