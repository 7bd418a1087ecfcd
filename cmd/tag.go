package main

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/connections-cli/internal/model"
	"github.com/sells-group/connections-cli/internal/pipeline"
	"github.com/sells-group/connections-cli/pkg/openai"
	"github.com/sells-group/connections-cli/pkg/serpapi"
)

var (
	tagCSV     string
	tagLimit   int
	tagOutput  string
	tagDryRun  bool
	tagOffline bool
)

var tagCmd = &cobra.Command{
	Use:   "tag",
	Short: "Tag an exported connections CSV with inferred interests",
	Long: `Reads a connections CSV export, looks up each contact's public profile
via SerpAPI, asks OpenAI to infer professional-interest tags, and writes
the input back out with an appended Interests column.

Examples:
  # Dry run — parse and normalize only, no network calls
  connections-cli tag --csv Connections.csv --dry-run

  # Offline full pipeline (no API keys needed)
  connections-cli tag --csv Connections.csv --offline

  # Real APIs, first 5 connections (default limit)
  connections-cli tag --csv Connections.csv --output tagged.csv`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		// Paths pasted from a shell or file manager often carry quotes.
		path := strings.Trim(strings.TrimSpace(tagCSV), `'"`)

		header, rows, err := pipeline.ParseConnectionsCSV(path)
		if err != nil {
			return eris.Wrap(err, "tag: parse csv")
		}
		zap.L().Info("parsed csv", zap.Int("rows", len(rows)), zap.Int("columns", len(header)))

		records := pipeline.Normalize(header, rows)

		if tagDryRun {
			return printRecordsJSON(records)
		}

		if !tagOffline {
			if err := validateAPIKeys(); err != nil {
				return err
			}
		}

		if tagLimit > 0 {
			cfg.Pipeline.MaxRecords = tagLimit
		}
		outPath := cfg.Output.Path
		if tagOutput != "" {
			outPath = tagOutput
		}

		var search serpapi.Client
		var chat openai.Client
		if tagOffline {
			search = &pipeline.StubSearchClient{}
			chat = &pipeline.StubChatClient{}
		} else {
			search = serpapi.NewClient(cfg.SerpAPI.Key,
				serpapi.WithBaseURL(cfg.SerpAPI.BaseURL),
				serpapi.WithEngine(cfg.SerpAPI.Engine),
			)
			chat = openai.NewClient(cfg.OpenAI.Key,
				openai.WithBaseURL(cfg.OpenAI.BaseURL),
				openai.WithModel(cfg.OpenAI.Model),
			)
		}

		p := pipeline.New(cfg, search, chat)
		result, runErr := p.Run(ctx, records)
		if runErr != nil {
			logOutcomeSummary(result.Outcomes)
			return eris.Wrap(runErr, "tag: run pipeline")
		}

		if err := pipeline.ExportConnectionsCSV(header, result.Connections, cfg.Pipeline.InterestsColumn, cfg.Output.Delimiter, outPath); err != nil {
			logOutcomeSummary(result.Outcomes)
			return eris.Wrap(err, "tag: write output")
		}

		logOutcomeSummary(result.Outcomes)
		zap.L().Info("tag: results written", zap.String("path", outPath))
		return nil
	},
}

func init() {
	tagCmd.Flags().StringVar(&tagCSV, "csv", "", "path to connections CSV export (required)")
	tagCmd.Flags().IntVar(&tagLimit, "limit", 0, "max records to enrich (0 = configured default)")
	tagCmd.Flags().StringVar(&tagOutput, "output", "", "output CSV path (default from config)")
	tagCmd.Flags().BoolVar(&tagDryRun, "dry-run", false, "parse and normalize, skip pipeline")
	tagCmd.Flags().BoolVar(&tagOffline, "offline", false, "use stub clients (no API keys needed)")
	_ = tagCmd.MarkFlagRequired("csv")
	rootCmd.AddCommand(tagCmd)
}

// validateAPIKeys checks the credentials required for real mode before
// any record is touched.
func validateAPIKeys() error {
	var missing []string
	if cfg.SerpAPI.Key == "" {
		missing = append(missing, "CONNECTIONS_SERPAPI_KEY (required: profile lookup)")
	}
	if cfg.OpenAI.Key == "" {
		missing = append(missing, "CONNECTIONS_OPENAI_KEY (required: interest extraction)")
	}
	if len(missing) > 0 {
		return eris.Errorf("tag: missing required API keys:\n  %s\n\nSet these env vars or use --offline for stub mode", strings.Join(missing, "\n  "))
	}
	return nil
}

// printRecordsJSON prints normalized records as indented JSON.
func printRecordsJSON(records []pipeline.NormalizedRow) error {
	type dryRunRow struct {
		Connection model.Connection `json:"connection"`
		Error      string           `json:"error,omitempty"`
	}
	out := make([]dryRunRow, 0, len(records))
	for _, rec := range records {
		row := dryRunRow{Connection: rec.Connection}
		if rec.Err != nil {
			row.Error = rec.Err.Error()
		}
		out = append(out, row)
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// logOutcomeSummary logs the per-status totals for a run.
func logOutcomeSummary(outcomes []model.Outcome) {
	counts := make(map[model.OutcomeStatus]int, len(outcomes))
	for _, o := range outcomes {
		counts[o.Status]++
	}
	zap.L().Info("tag: run summary",
		zap.Int("total", len(outcomes)),
		zap.Int("tagged", counts[model.OutcomeTagged]),
		zap.Int("lookup_failed", counts[model.OutcomeLookupFailed]),
		zap.Int("extraction_failed", counts[model.OutcomeExtractionFailed]),
		zap.Int("skipped", counts[model.OutcomeSkipped]),
		zap.Int("passed_through", counts[model.OutcomePassedThrough]),
	)
}
