package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	forager "github.com/aretw0/forager"
	"github.com/aretw0/forager/internal/adapters/catalog"
	"github.com/aretw0/forager/internal/adapters/memory"
	"github.com/aretw0/forager/internal/adapters/openai"
	"github.com/aretw0/forager/internal/adapters/redis"
	"github.com/aretw0/forager/internal/config"
	"github.com/aretw0/forager/internal/logging"
	"github.com/aretw0/forager/internal/observability"
	"github.com/aretw0/forager/pkg/invoker"
)

// buildEngine assembles the engine from the config file: catalog
// search tool, session store (redis when configured, in-memory
// otherwise), optional OpenAI summarizer and Prometheus hooks.
func buildEngine(cmd *cobra.Command) (*forager.Engine, config.Config, *slog.Logger, error) {
	cfgPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, cfg, nil, err
	}
	logger := logging.New(logging.ParseLevel(cfg.LogLevel))

	cat, err := catalog.Load(context.Background(), cfg.CatalogDir)
	if err != nil {
		return nil, cfg, logger, fmt.Errorf("failed to load catalogs: %w", err)
	}
	logger.Info("catalogs loaded", "dir", cfg.CatalogDir, "sites", cat.Sites())

	metrics := observability.NewMetrics(prometheus.DefaultRegisterer)

	opts := []forager.Option{
		forager.WithLogger(logger),
		forager.WithHooks(metrics.Hooks()),
		forager.WithSearchTool(cat.ToolFunc()),
	}
	if len(cfg.Criteria) > 0 {
		opts = append(opts, forager.WithCriteria(cfg.Criteria))
	}
	if cfg.Budget > 0 {
		opts = append(opts, forager.WithBudget(cfg.Budget))
	}
	if cfg.Deadline.Std() > 0 {
		opts = append(opts, forager.WithDeadline(cfg.Deadline.Std()))
	}
	if cfg.TopK > 0 {
		opts = append(opts, forager.WithTopK(cfg.TopK))
	}
	if cfg.MaxSteps > 0 {
		opts = append(opts, forager.WithMaxSteps(cfg.MaxSteps))
	}
	if cfg.Breaker.Threshold > 0 {
		opts = append(opts, forager.WithBreaker(cfg.Breaker.Threshold, cfg.Breaker.Cooldown.Std()))
	}

	var toolOpts []invoker.Option
	if cfg.Tool.Timeout.Std() > 0 {
		toolOpts = append(toolOpts, invoker.WithTimeout(cfg.Tool.Timeout.Std()))
	}
	if cfg.Tool.MaxRetries > 0 {
		toolOpts = append(toolOpts, invoker.WithMaxRetries(cfg.Tool.MaxRetries))
	}
	if cfg.Tool.BaseDelay.Std() > 0 {
		toolOpts = append(toolOpts, invoker.WithBaseDelay(cfg.Tool.BaseDelay.Std()))
	}
	if len(toolOpts) > 0 {
		opts = append(opts, forager.WithToolOptions(toolOpts...))
	}

	if cfg.Redis.Addr != "" {
		store := redis.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB,
			redis.WithTTL(cfg.Redis.TTL.Std()))
		opts = append(opts, forager.WithStore(store))
		logger.Info("using redis session store", "addr", cfg.Redis.Addr)
	} else {
		opts = append(opts, forager.WithStore(memory.New()))
	}

	if cfg.OpenAI.APIKey != "" {
		var sumOpts []openai.Option
		if cfg.OpenAI.Model != "" {
			sumOpts = append(sumOpts, openai.WithModel(cfg.OpenAI.Model))
		}
		opts = append(opts, forager.WithSummarizer(openai.New(cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL, sumOpts...)))
		logger.Info("summarizer enabled", "model", cfg.OpenAI.Model)
	}

	engine, err := forager.New(nil, opts...)
	if err != nil {
		return nil, cfg, logger, err
	}
	return engine, cfg, logger, nil
}
