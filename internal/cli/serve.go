package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ppiankov/findmindisc/internal/logging"
	"github.com/ppiankov/findmindisc/internal/mcp"
)

var serveLLM llmFlags

// serveCmd runs the MCP server on stdio
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the pipeline as MCP tools over stdio",
	Long: `Serve exposes recommend, correct_answer, simulate_flight, describe_discs,
extract_intent and lookup_disc to MCP clients over stdio.

recommend is only offered when an LLM provider is configured. Logs go to
stderr; stdout carries the protocol.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		setup, cfg, err := openPipeline(cmd.Context(), &serveLLM)
		if err != nil {
			return err
		}
		defer func() { _ = setup.Close() }()

		logging.Info().
			Int("discs", setup.Catalog().Len()).
			Bool("provider", setup.Provider() != nil).
			Msg("mcp server starting")

		if err := mcp.Run(setup.Pipeline, cfg.LLM.Language, Version); err != nil {
			return fmt.Errorf("mcp server: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveLLM.register(serveCmd)
}
