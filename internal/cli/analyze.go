package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/algolife/bioreport/internal/extract"
	"github.com/algolife/bioreport/internal/extract/adapters"
	"github.com/algolife/bioreport/internal/model"
	"github.com/algolife/bioreport/internal/pipeline"
	"github.com/algolife/bioreport/internal/rules"
	"github.com/algolife/bioreport/internal/textparse"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	rulesPath      string
	microRulesPath string
	microPath      string
	aliasFile      string
	sexFlag        string
	subjectFlag    string
	outJSON        string
	outMD          string
	analyzeTimeout time.Duration
	noCache        bool
	noFooter       bool
	noFuzzy        bool
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze <document.txt>",
	Short: "Analyze a single lab-report document and generate a report",
	Long: `Analyze extracts biomarker measurements from one flattened lab-report
text file, classifies them against the rule table, aggregates recommendation
texts by category, and optionally correlates the blood panel with a gut
microbiome summary.

Example:
  bioreport analyze report.txt --rules rules.csv
  bioreport analyze report.txt --rules rules.csv --sex female --json out.json --md out.md
  bioreport analyze report.txt --rules rules.csv --micro gutmap.txt --micro-rules micro.csv`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	// Table flags
	analyzeCmd.Flags().StringVar(&rulesPath, "rules", "", "rule table CSV path (required)")
	analyzeCmd.Flags().StringVar(&microRulesPath, "micro-rules", "", "microbiome rule table CSV path (optional)")
	analyzeCmd.Flags().StringVar(&aliasFile, "aliases", "", "YAML alias-table override (optional)")
	_ = analyzeCmd.MarkFlagRequired("rules")

	// Input flags
	analyzeCmd.Flags().StringVar(&microPath, "micro", "", "microbiome report text path (optional)")
	analyzeCmd.Flags().StringVar(&sexFlag, "sex", "", "subject sex for norm selection (male, female)")
	analyzeCmd.Flags().StringVar(&subjectFlag, "subject", "", "report subject label (default: document filename)")

	// Output flags
	analyzeCmd.Flags().StringVar(&outJSON, "json", "report.json", "output JSON path")
	analyzeCmd.Flags().StringVar(&outMD, "md", "", "output Markdown path (optional)")

	// Engine flags
	analyzeCmd.Flags().DurationVar(&analyzeTimeout, "timeout", 1*time.Minute, "overall analysis timeout")
	analyzeCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable rule-table cache (force fresh load)")
	analyzeCmd.Flags().BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown reports")
	analyzeCmd.Flags().BoolVar(&noFuzzy, "no-fuzzy", false, "disable fuzzy rule matching (exact keys only)")
}

// loadConfig resolves defaults, the config file, and environment variables.
func loadConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// buildPipeline loads the rule tables and assembles the analysis pipeline.
func buildPipeline(cfg *model.Config) (*pipeline.Pipeline, *extract.Normalizer, error) {
	normalizer := extract.NewNormalizer(cfg.Extract.ReservedKeys)
	if cfg.AliasFile != "" {
		if err := normalizer.LoadAliases(cfg.AliasFile); err != nil {
			return nil, nil, fmt.Errorf("load aliases: %w", err)
		}
	}

	locale := textparse.Locale{RangeJoiners: cfg.Locale.RangeJoiners}

	var (
		table      *rules.Table
		microTable *rules.MicroTable
		err        error
	)
	if cfg.Cache.Enabled {
		cache := rules.NewTableCache(time.Duration(cfg.Cache.TTLMinutes)*time.Minute, normalizer, locale)
		table, err = cache.Load(rulesPath)
		if err == nil && microRulesPath != "" {
			microTable, err = cache.LoadMicro(microRulesPath)
		}
	} else {
		table, err = rules.LoadTable(rulesPath, normalizer, locale)
		if err == nil && microRulesPath != "" {
			microTable, err = rules.LoadMicroTable(microRulesPath)
		}
	}
	if err != nil {
		var confErr *rules.ConfigurationError
		if errors.As(err, &confErr) {
			return nil, nil, fmt.Errorf("rule table misconfigured: %w", confErr)
		}
		return nil, nil, fmt.Errorf("load rule table: %w", err)
	}

	return pipeline.New(cfg, normalizer, table, microTable), normalizer, nil
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	docPath := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), analyzeTimeout)
	defer cancel()

	if verbose {
		fmt.Fprintf(os.Stderr, "Analyzing: %s\n", docPath)
		fmt.Fprintf(os.Stderr, "Rule table: %s\n", rulesPath)
		if microPath != "" {
			fmt.Fprintf(os.Stderr, "Microbiome: %s\n", microPath)
		}
		fmt.Fprintln(os.Stderr)
	}

	// Build configuration from defaults, config file, and flags
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	cfg.Cache.Enabled = cfg.Cache.Enabled && !noCache
	cfg.Fuzzy.Enabled = cfg.Fuzzy.Enabled && !noFuzzy
	cfg.Output.Verbose = verbose
	cfg.Output.IncludeFooter = cfg.Output.IncludeFooter && !noFooter
	if aliasFile != "" {
		cfg.AliasFile = aliasFile
	}

	p, _, err := buildPipeline(cfg)
	if err != nil {
		return err
	}

	// Read inputs
	text, err := pipeline.ReadDocument(docPath)
	if err != nil {
		return fmt.Errorf("read document: %w", err)
	}

	microText := ""
	if microPath != "" {
		microText, err = pipeline.ReadDocument(microPath)
		if err != nil {
			return fmt.Errorf("read microbiome document: %w", err)
		}
	}

	subject := subjectFlag
	if subject == "" {
		subject = docPath
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "⚙️  Extracting biomarkers...\n")
	}

	report, err := p.Analyze(ctx, pipeline.DocumentInput{
		Subject:        subject,
		Sex:            sexFlag,
		Panel:          adapters.Input{Text: text},
		MicrobiomeText: microText,
	})
	if err != nil {
		return fmt.Errorf("analyze failed: %w", err)
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "✓ Extracted %d biomarkers\n", len(report.Records))
		fmt.Fprintf(os.Stderr, "✓ Classified %d priorities\n", len(report.Priorities))
		fmt.Fprintf(os.Stderr, "✓ Health score: %d/100\n", report.HealthScore)
		if report.Microbiome != nil {
			fmt.Fprintf(os.Stderr, "✓ Microbiome: DI %d/5, %d cross-signals\n",
				report.Microbiome.DysbiosisIndex, len(report.CrossHits))
		}
		fmt.Fprintln(os.Stderr)
	}

	// Render outputs
	renderer := pipeline.NewRenderer(cfg.Output.IncludeFooter)
	if err := renderer.RenderJSON(report, outJSON); err != nil {
		return fmt.Errorf("render failed: %w", err)
	}
	if outMD != "" {
		if err := renderer.RenderMarkdown(report, outMD); err != nil {
			return fmt.Errorf("render failed: %w", err)
		}
	}
	renderer.RenderSummary(report)

	return nil
}
