package cli

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/ppiankov/scaleproof/internal/cache"
	"github.com/ppiankov/scaleproof/internal/citation"
	"github.com/ppiankov/scaleproof/internal/llm"
	"github.com/ppiankov/scaleproof/internal/model"
	"github.com/ppiankov/scaleproof/internal/search"
	"github.com/ppiankov/scaleproof/internal/sources"
	"github.com/ppiankov/scaleproof/internal/util"
	"github.com/ppiankov/scaleproof/internal/validate"
	"github.com/ppiankov/scaleproof/internal/worker"
)

// components is the wired validation stack shared by validate, sources and serve
type components struct {
	registry  *sources.Registry
	manager   *sources.Manager
	citations *citation.Engine
	verifier  *search.Verifier
	engine    *validate.Engine
}

// loadRegistry returns the registry at path, or the built-in defaults when path is empty
func loadRegistry(path string) (*sources.Registry, error) {
	if path == "" {
		return sources.DefaultRegistry(), nil
	}
	registry, err := sources.LoadRegistry(path)
	if err != nil {
		return nil, fmt.Errorf("load sources %s: %w", path, err)
	}
	return registry, nil
}

// buildComponents wires sources, citations, search and the validation engine from cfg
func buildComponents(cfg *model.Config, registry *sources.Registry, log io.Writer) (*components, error) {
	client := util.NewHTTPClient(cfg.HTTP)
	limiter := worker.NewLimiter(cfg.RateLimiting.RequestsPerSecond, cfg.RateLimiting.BurstSize)

	manager := sources.NewManager(registry, sources.Options{
		Client:        client,
		Timeout:       cfg.HTTP.Timeout,
		RetryAttempts: cfg.Validation.RetryAttempts,
		RetryDelay:    cfg.Validation.RetryDelay,
		UserAgent:     cfg.HTTP.UserAgent,
		ProbeWorkers:  cfg.Concurrency.ProbeWorkers,
		Limiter:       limiter,
		Log:           log,
	})

	var robots *util.RobotsChecker
	if cfg.HTTP.RespectRobots {
		robots = util.NewRobotsChecker(client, cfg.HTTP.UserAgent)
	}

	citations := citation.NewEngine(citation.Options{
		Client:           client,
		Timeout:          cfg.HTTP.Timeout,
		RetryAttempts:    cfg.Validation.RetryAttempts,
		RetryDelay:       cfg.Validation.RetryDelay,
		UserAgent:        cfg.HTTP.UserAgent,
		MaxBodyBytes:     cfg.HTTP.MaxBodyBytes,
		KeywordThreshold: cfg.Validation.KeywordThreshold,
		Cache:            cache.New(cfg.Cache),
		CacheTTL:         cfg.Cache.MemoryTTL,
		Robots:           robots,
		Limiter:          limiter,
		Log:              log,
		Verbose:          cfg.Output.Verbose,
	})

	provider, err := newSearchProvider(cfg, client, limiter)
	if err != nil {
		return nil, err
	}
	verifier := search.NewVerifier(search.Options{
		Provider:            provider,
		Sources:             registry.Sources(),
		ConfidenceThreshold: cfg.Validation.ConfidenceThreshold,
		Workers:             cfg.Concurrency.SearchWorkers,
		Log:                 log,
		Verbose:             cfg.Output.Verbose,
	})

	engine, err := validate.NewEngine(validate.Options{
		Sources:           manager,
		Citations:         citations,
		Verifier:          verifier,
		Batch:             cfg.Concurrency.Batch,
		BatchSize:         cfg.Concurrency.BatchSize,
		PerformanceTarget: cfg.Validation.PerformanceTarget,
		SkipPreflight:     cfg.Validation.SkipPreflight,
		Log:               log,
		Verbose:           cfg.Output.Verbose,
		Progress:          cfg.Output.Progress,
	})
	if err != nil {
		return nil, err
	}

	return &components{
		registry:  registry,
		manager:   manager,
		citations: citations,
		verifier:  verifier,
		engine:    engine,
	}, nil
}

// newSearchProvider selects the internet-verification search capability
func newSearchProvider(cfg *model.Config, client *http.Client, limiter *worker.Limiter) (search.Provider, error) {
	switch strings.ToLower(cfg.Search.Provider) {
	case "", "reference":
		return search.NewReferenceProvider(), nil
	case "http":
		p, err := search.NewHTTPProvider(client, cfg.Search, cfg.HTTP.UserAgent, limiter)
		if err != nil {
			return nil, fmt.Errorf("http search provider: %w", err)
		}
		return p, nil
	case "llm":
		p, err := llm.NewProvider(llm.ConfigFromModel(cfg.LLM, cfg.HTTP))
		if err != nil {
			return nil, fmt.Errorf("llm search provider: %w", err)
		}
		if p == nil {
			return nil, fmt.Errorf("llm search provider: llm.provider is not set (openai, anthropic, ollama)")
		}
		lp, err := search.NewLLMProvider(p)
		if err != nil {
			return nil, fmt.Errorf("llm search provider: %w", err)
		}
		return lp, nil
	default:
		return nil, fmt.Errorf("unknown search provider %q (supported: reference, http, llm)", cfg.Search.Provider)
	}
}
