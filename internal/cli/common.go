package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/ppiankov/findmindisc/internal/catalog"
	"github.com/ppiankov/findmindisc/internal/model"
	"github.com/ppiankov/findmindisc/internal/pipeline"
)

// llmFlags override the configured provider for one command
type llmFlags struct {
	provider string
	model    string
	language string
	noCache  bool
}

func (f *llmFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.provider, "provider", "", "LLM provider (openai, anthropic, ollama, gemini)")
	cmd.Flags().StringVar(&f.model, "model", "", "LLM model name")
	cmd.Flags().StringVar(&f.language, "lang", "", "answer language (da, en)")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable the answer cache")
}

func (f *llmFlags) apply(cfg *model.Config) {
	if f.provider != "" {
		cfg.LLM.Provider = f.provider
	}
	if f.model != "" {
		cfg.LLM.Model = f.model
	}
	if f.language != "" {
		cfg.LLM.Language = f.language
	}
	if f.noCache {
		cfg.Cache.Enabled = false
	}
}

// openPipeline loads the configuration and builds the pipeline it describes
func openPipeline(ctx context.Context, flags *llmFlags) (*pipeline.Setup, *model.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	if flags != nil {
		flags.apply(cfg)
	}
	setup, err := pipeline.FromConfig(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	return setup, cfg, nil
}

// offlinePipeline builds a pipeline over the configured catalog with no
// provider, cache or correction log
func offlinePipeline(ctx context.Context) (*pipeline.Pipeline, *model.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	cat, err := catalog.Load(ctx, catalog.Options{
		Source:     cfg.Catalog.Source,
		Thresholds: cfg.Catalog.Thresholds,
		Timeout:    time.Duration(cfg.Catalog.Timeout) * time.Second,
		HTTPProxy:  cfg.LLM.HTTPProxy,
		HTTPSProxy: cfg.LLM.HTTPSProxy,
		NoProxy:    cfg.LLM.NoProxy,
	})
	if err != nil {
		return nil, nil, err
	}
	p, err := pipeline.NewPipeline(cfg, pipeline.Deps{Catalog: cat})
	if err != nil {
		return nil, nil, err
	}
	return p, cfg, nil
}

func printJSON(out io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	_, err = fmt.Fprintln(out, string(data))
	return err
}

// readText returns the named file, or stdin for "" and "-"
func readText(cmd *cobra.Command, path string) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "" || path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("read input: %w", err)
	}
	return string(data), nil
}

func joinArgs(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}
