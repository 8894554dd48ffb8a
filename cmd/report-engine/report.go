// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/report-engine/internal/llm"
	"github.com/pdiddy/report-engine/internal/logger"
	"github.com/pdiddy/report-engine/internal/pipeline"
	"github.com/pdiddy/report-engine/internal/store"
	"github.com/pdiddy/report-engine/internal/websearch"
	"github.com/pdiddy/report-engine/pkg/types"
)

var reportCmd = &cobra.Command{
	Use:   "report [query]",
	Short: "Run the research pipeline for a query",
	Long: `Report interprets the query, analyzes it, plans web searches, executes
them, and synthesizes a drafted report with citations. The run is saved to
the report history unless --no-save is given.

A stage failure still prints the fields gathered so far, together with the
failing stage.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := strings.Join(args, " ")

		providerFlag, _ := cmd.Flags().GetString("provider")
		modelFlag, _ := cmd.Flags().GetString("model")
		cfg, err := buildConfig(providerFlag, modelFlag)
		if err != nil {
			return err
		}

		opts := pipeline.Options{}
		opts.Domain, _ = cmd.Flags().GetString("domain")
		opts.Style, _ = cmd.Flags().GetString("style")
		if sampleFile, _ := cmd.Flags().GetString("sample-file"); sampleFile != "" {
			data, err := os.ReadFile(sampleFile)
			if err != nil {
				return fmt.Errorf("reading sample file: %w", err)
			}
			opts.Sample = string(data)
		}

		if numResults, _ := cmd.Flags().GetInt("num-results"); numResults > 0 {
			cfg.Search.DefaultNumResults = numResults
		}

		ctx := cmd.Context()
		backend, closeBackend, err := llm.NewBackend(ctx, cfg.AI)
		if err != nil {
			return err
		}
		defer closeBackend()

		p := pipeline.New(backend, websearch.NewClient(cfg.Search), logger.New("pipeline"))
		report := p.Run(ctx, query, opts)

		if noSave, _ := cmd.Flags().GetBool("no-save"); !noSave {
			st, err := store.NewStore(cfg.Store)
			if err != nil {
				fmt.Fprintf(os.Stderr, "warning: report history unavailable: %v\n", err)
			} else {
				if err := st.Save(ctx, report); err != nil {
					fmt.Fprintf(os.Stderr, "warning: saving report failed: %v\n", err)
				}
				st.Close()
			}
		}

		asJSON, _ := cmd.Flags().GetBool("json")
		asYAML, _ := cmd.Flags().GetBool("yaml")
		if err := writeReport(report, asJSON, asYAML); err != nil {
			return err
		}

		if report.Failed() {
			return fmt.Errorf("pipeline failed at %s stage: %s", report.Err.Stage, report.Err.Message)
		}
		return nil
	},
}

func init() {
	reportCmd.Flags().String("domain", "", "subject domain hint for interpretation")
	reportCmd.Flags().String("style", "", "desired report style (e.g. \"executive briefing\")")
	reportCmd.Flags().String("sample-file", "", "file with sample text the report should resemble")
	reportCmd.Flags().String("provider", "", "AI provider: claude or gemini")
	reportCmd.Flags().String("model", "", "AI model identifier")
	reportCmd.Flags().Int("num-results", 0, "default hit count per search (overrides config)")
	reportCmd.Flags().Bool("json", false, "output the full report as JSON")
	reportCmd.Flags().Bool("yaml", false, "output the full report as YAML")
	reportCmd.Flags().Bool("no-save", false, "do not record the run in the report history")

	rootCmd.AddCommand(reportCmd)
}

// writeReport prints the run in the requested format. The text format shows
// the drafted report; JSON and YAML dump the whole container.
func writeReport(report *types.Report, asJSON, asYAML bool) error {
	switch {
	case asJSON:
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	case asYAML:
		data, err := yaml.Marshal(report)
		if err != nil {
			return fmt.Errorf("encoding report: %w", err)
		}
		_, err = os.Stdout.Write(data)
		return err
	}

	if report.Draft != nil {
		fmt.Printf("# %s\n\n%s\n", report.Draft.Title, report.Draft.Content)
		if len(report.Draft.Sources) > 0 {
			fmt.Println("\nSources:")
			for i, src := range report.Draft.Sources {
				fmt.Printf("  %d. %s (%s)\n", i+1, src.Title, src.URL)
			}
		}
	}
	fmt.Printf("\nrun %s: %d searches planned, %d succeeded\n",
		report.ID, len(report.SearchRequests), len(report.SearchResults))
	return nil
}
