package cli

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"missiond/internal/capability"
	"missiond/internal/config"
	"missiond/internal/decision"
	"missiond/internal/decomposer"
	"missiond/internal/executor"
	"missiond/internal/llm"
	"missiond/internal/logger"
	"missiond/internal/store"
	"missiond/internal/supervisor"
)

// App wires the whole stack from configuration.
type App struct {
	Cfg   config.Config
	Log   *zap.Logger
	Store store.Store
	Sup   *supervisor.Supervisor
}

func buildApp(ctx context.Context) (*App, error) {
	cfg := config.Load()

	log, err := logger.New(cfg.LogLevel, cfg.LogPath)
	if err != nil {
		return nil, err
	}

	gen, err := llm.New(llm.Config{
		Backend:    cfg.LLMBackend,
		Model:      cfg.LLMModel,
		APIKey:     cfg.GeminiAPIKey,
		OllamaHost: cfg.OllamaHost,
	})
	if err != nil {
		return nil, fmt.Errorf("init llm backend: %w", err)
	}

	var st store.Store
	if cfg.MySQLDSN != "" {
		mysql, err := store.OpenMySQL(cfg.MySQLDSN)
		if err != nil {
			return nil, err
		}
		st = mysql
		log.Info("using mysql store")
	} else {
		st = store.NewMemory()
		log.Info("using in-memory store")
	}

	var cache capability.Cache
	if cfg.RedisURL != "" {
		rc, err := capability.NewRedisCacheFromURL(ctx, cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("redis cache: %w", err)
		}
		cache = rc
		log.Info("using redis provider cache")
	} else {
		cache = capability.NewMemoryCache()
	}

	registry := capability.NewRegistry()
	registry.Register(capability.WithCache(capability.NewWebSearch(), cache, cfg.CacheTTL))
	registry.Register(capability.WithCache(capability.NewKnowledge(gen), cache, cfg.CacheTTL))
	registry.Register(capability.WithCache(capability.NewSummarize(gen), cache, cfg.CacheTTL))

	var routingGen llm.Client
	if cfg.AdvancedRouting {
		routingGen = gen
	}
	engine := decision.NewEngine(routingGen, log)
	exec := executor.New(st, engine, registry, log)
	dec := decomposer.New(gen, log)
	sup := supervisor.New(st, dec, exec, log)

	return &App{Cfg: cfg, Log: log, Store: st, Sup: sup}, nil
}
