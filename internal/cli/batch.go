package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/findmindisc/internal/pipeline"
	"github.com/ppiankov/findmindisc/internal/worker"
)

var (
	batchLLM     llmFlags
	concurrency  int
	outputDir    string
	batchTimeout time.Duration
	queryTimeout time.Duration
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Answer many queries from a file in parallel",
	Long: `Batch answers queries concurrently:
- Read queries from the input file (one per line, # starts a comment)
- Answer them in parallel, rate limited per LLM provider
- Write a JSON and a Markdown report for each query

Example:
  findmindisc batch queries.txt
  findmindisc batch queries.txt --concurrency 8 --output-dir ./reports
  findmindisc batch queries.txt --timeout 30m --query-timeout 90s`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&concurrency, "concurrency", 0, "number of concurrent workers (default: batch.workers)")
	batchCmd.Flags().StringVar(&outputDir, "output-dir", "./findmindisc-reports", "output directory for reports")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 30*time.Minute, "total timeout for batch processing")
	batchCmd.Flags().DurationVar(&queryTimeout, "query-timeout", 0, "timeout for each query (default: batch.timeout)")
	batchLLM.register(batchCmd)
}

func runBatch(cmd *cobra.Command, args []string) error {
	file := args[0]
	ctx, cancel := context.WithTimeout(cmd.Context(), batchTimeout)
	defer cancel()

	setup, cfg, err := openPipeline(ctx, &batchLLM)
	if err != nil {
		return err
	}
	defer func() { _ = setup.Close() }()

	provider := setup.Provider()
	if provider == nil {
		return fmt.Errorf("batch needs an LLM provider (set llm.provider in the config or pass --provider)")
	}

	workers := cfg.Batch.Workers
	if concurrency > 0 {
		workers = concurrency
	}
	perQuery := time.Duration(cfg.Batch.Timeout) * time.Second
	if queryTimeout > 0 {
		perQuery = queryTimeout
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "%s\n", rule)
	fmt.Fprintf(os.Stderr, "  FindMinDisc Batch Processing\n")
	fmt.Fprintf(os.Stderr, "%s\n", rule)
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Input file:   %s\n", file)
	fmt.Fprintf(os.Stderr, "  Workers:      %d\n", workers)
	fmt.Fprintf(os.Stderr, "  Provider:     %s\n", provider.Name())
	fmt.Fprintf(os.Stderr, "  Output dir:   %s\n", outputDir)
	fmt.Fprintf(os.Stderr, "  Timeout:      %v\n", batchTimeout)
	fmt.Fprintf(os.Stderr, "\n")

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	processor := worker.NewBatchProcessor(setup.Pipeline, worker.BatchOptions{
		Workers:           workers,
		RequestsPerSecond: cfg.RateLimiting.RequestsPerSecond,
		Burst:             cfg.RateLimiting.BurstSize,
		Provider:          provider.Name(),
		Timeout:           perQuery,
	})

	results, err := processor.ProcessFile(ctx, file)
	if err != nil {
		return fmt.Errorf("process file: %w", err)
	}

	renderer := pipeline.NewRenderer(cfg.Output.IncludeFlight)
	successCount, failureCount, retryable := 0, 0, 0
	for _, result := range results {
		if result.Error != nil {
			failureCount++
			if result.Retryable {
				retryable++
			}
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", result.Query, result.Error)
			continue
		}

		rec := result.Recommendation
		slug := fmt.Sprintf("%03d-%s", result.Index+1, sanitizeFilename(rec.Query))
		jsonPath := filepath.Join(outputDir, slug+".json")
		mdPath := filepath.Join(outputDir, slug+".md")
		if err := renderer.RenderReport(rec, jsonPath, mdPath, nil); err != nil {
			failureCount++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", result.Query, err)
			continue
		}

		successCount++
		fmt.Fprintf(os.Stderr, "✓ %s (%s; %d corrections, %d removed)\n",
			result.Query, discList(rec.DiscNames()), len(rec.Corrections), len(rec.Rejected))
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "%s\n", rule)
	fmt.Fprintf(os.Stderr, "  Batch Complete\n")
	fmt.Fprintf(os.Stderr, "%s\n", rule)
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Total:     %d queries\n", len(results))
	fmt.Fprintf(os.Stderr, "  Success:   %d\n", successCount)
	fmt.Fprintf(os.Stderr, "  Failures:  %d (%d retryable)\n", failureCount, retryable)
	fmt.Fprintf(os.Stderr, "  Output:    %s\n", outputDir)
	fmt.Fprintf(os.Stderr, "\n")

	return nil
}

const rule = "═══════════════════════════════════════════════════════════"

func discList(names []string) string {
	if len(names) == 0 {
		return "no discs"
	}
	return strings.Join(names, ", ")
}

// sanitizeFilename turns a query into a short file name
func sanitizeFilename(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == 'æ', r == 'ø', r == 'å':
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	out := strings.TrimSuffix(b.String(), "-")

	if r := []rune(out); len(r) > 60 {
		out = strings.TrimSuffix(string(r[:60]), "-")
	}
	if out == "" {
		return "query"
	}
	return out
}
