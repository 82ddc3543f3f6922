package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/ppiankov/findmindisc/internal/cache"
	"github.com/ppiankov/findmindisc/internal/catalog"
	"github.com/ppiankov/findmindisc/internal/llm"
	"github.com/ppiankov/findmindisc/internal/logging"
	"github.com/ppiankov/findmindisc/internal/model"
	"github.com/ppiankov/findmindisc/internal/store"
)

// Setup is a pipeline built from configuration together with the
// resources it owns
type Setup struct {
	*Pipeline
	Store *store.Store // nil unless corrections.enabled
}

// Close releases the correction log
func (s *Setup) Close() error {
	if s.Store == nil {
		return nil
	}
	return s.Store.Close()
}

// FromConfig loads the catalog and wires the configured provider, answer
// cache and correction log. A missing provider is not an error: the
// pipeline can still correct, simulate and describe.
func FromConfig(ctx context.Context, cfg *model.Config) (*Setup, error) {
	cat, err := catalog.Load(ctx, catalog.Options{
		Source:     cfg.Catalog.Source,
		Thresholds: cfg.Catalog.Thresholds,
		Timeout:    time.Duration(cfg.Catalog.Timeout) * time.Second,
		HTTPProxy:  cfg.LLM.HTTPProxy,
		HTTPSProxy: cfg.LLM.HTTPSProxy,
		NoProxy:    cfg.LLM.NoProxy,
	})
	if err != nil {
		return nil, err
	}

	provider, err := llm.NewProvider(llm.LoadConfigFromEnv(llm.ConfigFromModel(cfg.LLM)))
	if err != nil {
		return nil, fmt.Errorf("llm provider: %w", err)
	}

	c, err := cache.Open(cfg.Cache)
	if err != nil {
		logging.Warn().Err(err).Msg("answer cache disabled")
		c = nil
	}

	deps := Deps{
		Catalog:  cat,
		Provider: provider,
		Answers:  cache.NewAnswers(c, time.Duration(cfg.Cache.TTL)*time.Hour),
	}

	setup := &Setup{}
	if cfg.Corrections.Enabled {
		path, err := cache.ExpandHome(cfg.Corrections.DBPath)
		if err != nil {
			return nil, fmt.Errorf("corrections db path: %w", err)
		}
		st, err := store.Open(path)
		if err != nil {
			return nil, fmt.Errorf("corrections db: %w", err)
		}
		setup.Store = st
		deps.Sink = st
	}

	p, err := NewPipeline(cfg, deps)
	if err != nil {
		_ = setup.Close()
		return nil, err
	}
	setup.Pipeline = p
	return setup, nil
}
