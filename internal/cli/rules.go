package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/algolife/bioreport/internal/extract"
	"github.com/algolife/bioreport/internal/model"
	"github.com/algolife/bioreport/internal/rules"
	"github.com/algolife/bioreport/internal/textparse"
	"github.com/spf13/cobra"
)

// rulesCmd groups the rule-table maintenance commands.
var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Inspect and validate rule tables",
	Long: `Inspect and validate the practitioner-supplied rule tables before
running analyses against them.

A rule table is a CSV with one row per biomarker: canonical name, unit,
male/female reference ranges, and the low/high recommendation text columns.`,
}

var rulesCheckCmd = &cobra.Command{
	Use:   "check <rules.csv>",
	Short: "Validate a rule table and report what loaded",
	Long: `Check loads a rule table the same way analyze does and reports the
outcome: missing required columns are fatal and listed; rows that fail to
parse are skipped and counted.

Example:
  bioreport rules check rules.csv
  bioreport rules check micro.csv --micro`,
	Args: cobra.ExactArgs(1),
	RunE: runRulesCheck,
}

var rulesShowCmd = &cobra.Command{
	Use:   "show <rules.csv>",
	Short: "List the rules a table defines",
	Args:  cobra.ExactArgs(1),
	RunE:  runRulesShow,
}

var microTableFlag bool

func init() {
	rootCmd.AddCommand(rulesCmd)
	rulesCmd.AddCommand(rulesCheckCmd)
	rulesCmd.AddCommand(rulesShowCmd)

	rulesCheckCmd.Flags().BoolVar(&microTableFlag, "micro", false, "treat the table as a microbiome rule table")
}

func runRulesCheck(cmd *cobra.Command, args []string) error {
	path := args[0]

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	var count int
	if microTableFlag {
		table, err := rules.LoadMicroTable(path)
		if err != nil {
			return describeTableError(path, err)
		}
		count = table.Len()
	} else {
		normalizer := extract.NewNormalizer(cfg.Extract.ReservedKeys)
		locale := textparse.Locale{RangeJoiners: cfg.Locale.RangeJoiners}
		table, err := rules.LoadTable(path, normalizer, locale)
		if err != nil {
			return describeTableError(path, err)
		}
		count = table.Len()
	}

	fmt.Printf("✓ %s: %d rules loaded\n", path, count)
	return nil
}

func runRulesShow(cmd *cobra.Command, args []string) error {
	path := args[0]

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	normalizer := extract.NewNormalizer(cfg.Extract.ReservedKeys)
	locale := textparse.Locale{RangeJoiners: cfg.Locale.RangeJoiners}
	table, err := rules.LoadTable(path, normalizer, locale)
	if err != nil {
		return describeTableError(path, err)
	}

	fmt.Printf("%-30s %-10s %-20s %-20s\n", "KEY", "UNIT", "MALE/DEFAULT", "FEMALE")
	for _, rule := range table.Rules() {
		fmt.Printf("%-30s %-10s %-20s %-20s\n",
			rule.CanonicalKey,
			rule.Unit,
			formatRange(rule.Norms[model.SexMale]),
			formatRange(rule.Norms[model.SexFemale]),
		)
	}
	fmt.Printf("\n%d rules\n", table.Len())
	return nil
}

// describeTableError expands a ConfigurationError into an actionable message.
func describeTableError(path string, err error) error {
	var confErr *rules.ConfigurationError
	if errors.As(err, &confErr) {
		fmt.Fprintf(os.Stderr, "✗ %s is missing required columns:\n", path)
		for _, col := range confErr.Missing {
			fmt.Fprintf(os.Stderr, "    - %s\n", col)
		}
		return fmt.Errorf("rule table misconfigured: %d missing columns", len(confErr.Missing))
	}
	return fmt.Errorf("load rule table: %w", err)
}

func formatRange(r model.Range) string {
	if r.Low == nil && r.High == nil {
		return "-"
	}
	var b strings.Builder
	if r.Low != nil {
		fmt.Fprintf(&b, "%g", *r.Low)
	}
	b.WriteString(" .. ")
	if r.High != nil {
		fmt.Fprintf(&b, "%g", *r.High)
	}
	return b.String()
}
