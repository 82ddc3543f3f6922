package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/findmindisc/internal/llm"
	"github.com/ppiankov/findmindisc/internal/pipeline"
)

var (
	recLLM       llmFlags
	recJSON      string
	recMD        string
	recShown     []string
	recTimeout   time.Duration
	recPrintJSON bool
)

// recommendCmd answers one question
var recommendCmd = &cobra.Command{
	Use:   "recommend <query>",
	Short: "Answer a disc golf question with catalog-checked recommendations",
	Long: `Recommend runs one conversational turn:
- Extract speed range, category, stability and skill level from the query
- Ask the LLM with a context of matching catalog discs
- Correct flight numbers and manufacturers in the answer
- Remove discs that break the requested constraints
- Simulate the flight of every recommended disc

Example:
  findmindisc recommend "jeg søger en disc med speed 7 til 9"
  findmindisc recommend "a stable midrange for headwind" --lang en --provider anthropic
  findmindisc recommend "fortæl mere om dem" --shown Volt,Buzzz --md turn.md`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRecommend,
}

func init() {
	rootCmd.AddCommand(recommendCmd)

	recommendCmd.Flags().StringVar(&recJSON, "json", "", "write the JSON report to this path")
	recommendCmd.Flags().StringVar(&recMD, "md", "", "write the Markdown report to this path")
	recommendCmd.Flags().BoolVar(&recPrintJSON, "print-json", false, "print the JSON report instead of the summary")
	recommendCmd.Flags().StringSliceVar(&recShown, "shown", nil, "discs shown in the previous turn")
	recommendCmd.Flags().DurationVar(&recTimeout, "timeout", 2*time.Minute, "overall timeout")
	recLLM.register(recommendCmd)
}

func runRecommend(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), recTimeout)
	defer cancel()

	setup, cfg, err := openPipeline(ctx, &recLLM)
	if err != nil {
		return err
	}
	defer func() { _ = setup.Close() }()

	if verbose {
		fmt.Fprintf(os.Stderr, "Catalog: %d discs\n", setup.Catalog().Len())
		if p := setup.Provider(); p != nil {
			fmt.Fprintf(os.Stderr, "Provider: %s\n", p.Name())
		}
		fmt.Fprintln(os.Stderr)
	}

	rec, err := setup.Recommend(ctx, pipeline.Request{Query: joinArgs(args), ShownDiscs: recShown})
	if err != nil {
		if errors.Is(err, llm.ErrDisabled) {
			return fmt.Errorf("%w (set llm.provider in the config or pass --provider)", err)
		}
		return fmt.Errorf("recommend: %w", err)
	}

	renderer := pipeline.NewRenderer(cfg.Output.IncludeFlight)
	out := cmd.OutOrStdout()
	if recPrintJSON || cfg.Output.Format == "json" {
		if err := printJSON(out, rec); err != nil {
			return err
		}
		out = nil
	}
	if cfg.Output.Format == "markdown" && out != nil {
		fmt.Fprint(out, renderer.Markdown(rec))
		out = nil
	}
	return renderer.RenderReport(rec, recJSON, recMD, out)
}
