package worker

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/algolife/bioreport/internal/extract/adapters"
	"github.com/algolife/bioreport/internal/model"
	"github.com/algolife/bioreport/internal/pipeline"
)

// microSuffix marks a companion file holding the microbiome section for the
// document with the same base name.
const microSuffix = ".micro.txt"

// Analyzer runs the full analysis for one document.
type Analyzer interface {
	Analyze(ctx context.Context, in pipeline.DocumentInput) (*model.Report, error)
}

// AnalyzeJob is one document analysis submitted to the pool.
type AnalyzeJob struct {
	Path     string
	Input    pipeline.DocumentInput
	Analyzer Analyzer
}

// Execute runs the analysis and wraps the outcome.
func (j *AnalyzeJob) Execute(ctx context.Context) Result {
	report, err := j.Analyzer.Analyze(ctx, j.Input)
	return &AnalyzeResult{
		Path:   j.Path,
		Report: report,
		Error:  err,
	}
}

// AnalyzeResult is the outcome of one document analysis.
type AnalyzeResult struct {
	Path   string
	Report *model.Report
	Error  error
}

// GetError returns the error from the analysis result
func (r *AnalyzeResult) GetError() error {
	return r.Error
}

// BatchProcessor processes multiple documents concurrently against a shared
// read-only rule table.
type BatchProcessor struct {
	analyzer    Analyzer
	concurrency int
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(analyzer Analyzer, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		analyzer:    analyzer,
		concurrency: concurrency,
	}
}

// ProcessDocuments analyzes the given documents concurrently.
func (b *BatchProcessor) ProcessDocuments(ctx context.Context, docs []Document) []*AnalyzeResult {
	if len(docs) == 0 {
		return []*AnalyzeResult{}
	}

	pool := NewPool(ctx, b.concurrency)

	for _, doc := range docs {
		job := &AnalyzeJob{
			Path: doc.Path,
			Input: pipeline.DocumentInput{
				Subject:        doc.Subject,
				Sex:            doc.Sex,
				Panel:          doc.Panel,
				MicrobiomeText: doc.MicrobiomeText,
			},
			Analyzer: b.analyzer,
		}
		if !pool.Submit(job) {
			break
		}
	}

	results := pool.Wait()

	analyzeResults := make([]*AnalyzeResult, len(results))
	for i, result := range results {
		analyzeResults[i] = result.(*AnalyzeResult)
	}

	return analyzeResults
}

// ProcessDir loads every .txt document under dir and analyzes them
// concurrently.
func (b *BatchProcessor) ProcessDir(ctx context.Context, dir, sex string) ([]*AnalyzeResult, error) {
	docs, err := ReadDocumentsFromDir(dir, sex)
	if err != nil {
		return nil, fmt.Errorf("read documents: %w", err)
	}

	return b.ProcessDocuments(ctx, docs), nil
}

// Document is one lab report loaded from disk, with an optional companion
// microbiome section (<name>.micro.txt).
type Document struct {
	Path           string
	Subject        string
	Sex            string
	Panel          adapters.Input
	MicrobiomeText string
}

// ReadDocumentsFromDir lists .txt files in dir (non-recursive), skipping
// .micro.txt companions, and loads each with its microbiome section if one
// exists next to it.
func ReadDocumentsFromDir(dir, sex string) ([]Document, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir: %w", err)
	}

	var docs []Document
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(name, ".txt") || strings.HasSuffix(name, microSuffix) {
			continue
		}

		path := filepath.Join(dir, name)
		text, err := pipeline.ReadDocument(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}

		doc := Document{
			Path:    path,
			Subject: strings.TrimSuffix(name, ".txt"),
			Sex:     sex,
			Panel:   adapters.Input{Text: text},
		}

		microPath := strings.TrimSuffix(path, ".txt") + microSuffix
		if microText, err := pipeline.ReadDocument(microPath); err == nil {
			doc.MicrobiomeText = microText
		}

		docs = append(docs, doc)
	}

	sort.Slice(docs, func(i, j int) bool { return docs[i].Path < docs[j].Path })
	return docs, nil
}
