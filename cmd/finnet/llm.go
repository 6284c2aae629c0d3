package main

import (
	"fmt"
	"log/slog"

	"github.com/Veraticus/finnet/internal/config"
	"github.com/Veraticus/finnet/internal/engine"
	"github.com/Veraticus/finnet/internal/llm"
)

type advisorOptions struct {
	// DryRun swaps the configured provider for the offline keyword client.
	DryRun bool
	// Disabled runs without Tier 3; unresolved records go to manual review.
	Disabled bool
}

// createAdvisor builds the Tier 3 advisory classifier. It returns a nil
// advisor when Tier 3 is disabled.
func createAdvisor(cfg *config.Config, ref *config.ReferenceData, opts advisorOptions) (engine.Advisor, error) {
	if opts.Disabled {
		slog.Warn("Advisory classifier disabled; unresolved transactions will require manual review")
		return nil, nil
	}

	llmCfg := cfg.LLMConfig(ref)
	if opts.DryRun {
		llmCfg.Provider = llm.ProviderMock
	}

	advisor, err := llm.New(llmCfg, slog.Default())
	if err != nil {
		return nil, fmt.Errorf("failed to create advisory classifier: %w", err)
	}

	slog.Debug("Advisory classifier ready",
		"provider", llmCfg.Provider,
		"model", llmCfg.Model,
		"timeout", llmCfg.Timeout,
		"categories", len(llmCfg.Categories))

	return advisor, nil
}
