package main

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/tuanpa2295/filip-hackathon/internal/cache"
	"github.com/tuanpa2295/filip-hackathon/internal/llm"
	"github.com/tuanpa2295/filip-hackathon/internal/recommend"
	"github.com/tuanpa2295/filip-hackathon/internal/retrieval"
	"github.com/tuanpa2295/filip-hackathon/internal/validation"
)

// engineEnv holds the initialized providers, stores and per-mode agents
// shared by the serve/recommend/validate commands.
type engineEnv struct {
	Metrics   *validation.Metrics
	Providers *llm.Providers

	store   *retrieval.Store
	cache   *cache.SQLiteCache
	closeDB func()

	mu     sync.Mutex
	agents map[validation.Mode]*recommend.Agent
}

// Close releases resources held by the environment.
func (e *engineEnv) Close() {
	if e.cache != nil {
		_ = e.cache.Close()
	}
	if e.closeDB != nil {
		e.closeDB()
	}
}

// AgentFor returns the recommendation agent for a validation mode,
// building one orchestrator per mode on first use. The vector store,
// providers, cache and metrics are shared across modes.
func (e *engineEnv) AgentFor(mode validation.Mode) *recommend.Agent {
	e.mu.Lock()
	defer e.mu.Unlock()

	if a, ok := e.agents[mode]; ok {
		return a
	}

	a := e.buildAgent(validation.GetConfig(mode))
	e.agents[mode] = a
	return a
}

// CustomAgent builds a one-off agent for a profile with per-request
// overrides applied. Custom agents are not memoized.
func (e *engineEnv) CustomAgent(mode validation.Mode, o validation.Overrides) *recommend.Agent {
	return e.buildAgent(validation.CustomConfig(validation.GetConfig(mode), o))
}

func (e *engineEnv) buildAgent(vcfg validation.Config) *recommend.Agent {
	orch := validation.NewOrchestrator(e.Providers.Embedder, e.Providers.Generator, e.store, vcfg)
	if e.cache != nil && vcfg.EnableCaching {
		orch = orch.WithCache(e.cache)
	}
	return recommend.NewAgent(e.Providers.Generator, e.store, orch, e.Metrics)
}

// initEngine resolves the LLM providers, connects the vector store and the
// result cache. Callers should defer env.Close().
func initEngine(ctx context.Context) (*engineEnv, error) {
	providers, err := llm.New(llm.Settings{
		Provider:             cfg.LLM.Provider,
		AzureEndpoint:        cfg.Azure.Endpoint,
		AzureAPIKey:          cfg.Azure.APIKey,
		AzureAPIVersion:      cfg.Azure.APIVersion,
		AzureChatDeployment:  cfg.Azure.ChatDeployment,
		AzureEmbedDeployment: cfg.Azure.EmbeddingsDeployment,
		AnthropicAPIKey:      cfg.Anthropic.Key,
		AnthropicModel:       cfg.Anthropic.Model,
	})
	if err != nil {
		return nil, err
	}

	store, closeDB, err := retrieval.Connect(ctx, cfg.Retrieval.DatabaseURL, providers.Embedder, cfg.Retrieval.Table)
	if err != nil {
		return nil, err
	}

	env := &engineEnv{
		Metrics:   validation.NewMetrics(),
		Providers: providers,
		store:     store,
		closeDB:   closeDB,
		agents:    make(map[validation.Mode]*recommend.Agent),
	}

	if cfg.Cache.Path != "" {
		ttl := validation.GetConfig(resolveMode("")).CacheTTL
		if ttl <= 0 {
			ttl = time.Hour
		}
		c, err := cache.NewSQLite(cfg.Cache.Path, ttl)
		if err != nil {
			zap.L().Warn("validation cache unavailable, continuing without it", zap.Error(err))
		} else {
			env.cache = c
			if n, err := c.Purge(ctx); err == nil && n > 0 {
				zap.L().Info("purged expired validation cache entries", zap.Int64("count", n))
			}
		}
	}

	return env, nil
}

// resolveMode picks the validation mode for a request, falling back to the
// configured default.
func resolveMode(requested string) validation.Mode {
	if requested == "" && cfg != nil {
		requested = cfg.Validation.DefaultMode
	}
	return validation.ModeFromString(requested)
}
