package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/kailas-cloud/medtriage/internal/config"
	"github.com/kailas-cloud/medtriage/internal/db"
	"github.com/kailas-cloud/medtriage/internal/db/memory"
	dbRedis "github.com/kailas-cloud/medtriage/internal/db/redis"
	"github.com/kailas-cloud/medtriage/internal/db/sqlite"
	"github.com/kailas-cloud/medtriage/internal/domain"
	"github.com/kailas-cloud/medtriage/internal/domain/category"
	"github.com/kailas-cloud/medtriage/internal/domain/evidence"
	"github.com/kailas-cloud/medtriage/internal/domain/urgency"
	"github.com/kailas-cloud/medtriage/internal/metrics"
	documentrepo "github.com/kailas-cloud/medtriage/internal/repository/document"
	"github.com/kailas-cloud/medtriage/internal/repository/embcache"
	openaiTransport "github.com/kailas-cloud/medtriage/internal/transport/openai"
	embeddinguc "github.com/kailas-cloud/medtriage/internal/usecase/embedding"
	"github.com/kailas-cloud/medtriage/internal/usecase/retrieval"
	triageuc "github.com/kailas-cloud/medtriage/internal/usecase/triage"
)

// app owns long-lived resources. Close releases them in reverse order.
type app struct {
	cfg    config.Config
	logger *zap.Logger

	store   *sqlite.Store
	cache   db.Cache // nil when caching is disabled
	table   *category.Table
	docRepo *documentrepo.Repo

	closers []func()
}

// openApp opens the protocol database and the category table.
func openApp(ctx context.Context, rt runtimeDeps) (*app, error) {
	a := &app{cfg: rt.cfg, logger: rt.logger}

	table, err := loadTable(rt.cfg.Triage)
	if err != nil {
		return nil, err
	}
	a.table = table

	store, err := sqlite.NewStore(sqlite.Config{
		Path:        rt.cfg.Database.Path,
		BusyTimeout: time.Duration(rt.cfg.Database.BusyTimeoutMs) * time.Millisecond,
	})
	if err != nil {
		return nil, fmt.Errorf("open protocol database: %w", err)
	}
	a.closers = append(a.closers, store.Close)
	a.store = store

	if err := store.WaitForReady(ctx, time.Duration(rt.cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		a.Close()
		return nil, fmt.Errorf("protocol database not ready: %w", err)
	}
	a.docRepo = documentrepo.New(store)

	rt.logger.Info("Opened protocol database",
		zap.String("path", store.Path()),
		zap.Int("categories", table.Len()),
	)
	return a, nil
}

// Close releases resources.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

// openCache connects the embedding cache selected by cache.driver.
func (a *app) openCache(ctx context.Context) error {
	c := a.cfg.Cache
	ttl := time.Duration(c.TTLSec) * time.Second

	switch c.Driver {
	case config.CacheDriverNone:
		return nil
	case config.CacheDriverMemory:
		a.cache = memory.NewStore(ttl, 10*time.Minute)
	case config.CacheDriverRedis:
		store, err := dbRedis.NewStore(dbRedis.Config{Addrs: c.Addrs, Password: c.Password})
		if err != nil {
			return fmt.Errorf("connect cache: %w", err)
		}
		if err := store.WaitForReady(ctx, time.Duration(a.cfg.Database.ReadinessTimeout)*time.Second); err != nil {
			store.Close()
			return fmt.Errorf("cache not ready: %w", err)
		}
		a.cache = store
	default:
		return fmt.Errorf("unknown cache driver %q", c.Driver)
	}
	a.closers = append(a.closers, a.cache.Close)
	a.logger.Info("Embedding cache enabled", zap.String("driver", c.Driver))
	return nil
}

// buildEmbedder assembles the decorator chain: OpenAI -> Cached -> Instrumented -> Instruction.
func (a *app) buildEmbedder(instruction string) domain.Embedder {
	ec := a.cfg.Embedding

	base := openaiTransport.NewEmbedder(&openaiTransport.Config{
		APIKey:     ec.APIKey,
		BaseURL:    ec.BaseURL,
		Model:      ec.Model,
		Dimensions: ec.Dimensions,
		Provider:   ec.Provider,
		Logger:     a.logger,
	})

	var embedder domain.Embedder = base
	if a.cache != nil {
		embedder = embcache.New(
			base, a.cache, ec.Model,
			time.Duration(a.cfg.Cache.TTLSec)*time.Second,
			metrics.EmbeddingCacheTotal, a.logger,
		)
	}

	embedder = embeddinguc.NewInstrumentedEmbedder(embedder, ec.Provider, ec.Model, ec.Dimensions, a.logger)

	// Outermost, so the cache key includes the instruction.
	if instruction != "" {
		return domain.NewInstructionEmbedder(embedder, instruction)
	}
	return embedder
}

// buildNarrator returns nil when narratives are disabled or not configured.
func (a *app) buildNarrator() (domain.Narrator, *rate.Limiter) {
	nc := a.cfg.Narrative
	if !nc.Enabled {
		return nil, nil
	}
	n, err := openaiTransport.NewNarrator(&openaiTransport.NarratorConfig{
		APIKey:      nc.APIKey,
		BaseURL:     nc.BaseURL,
		Model:       nc.Model,
		MaxTokens:   nc.MaxTokens,
		Temperature: nc.Temperature,
		Logger:      a.logger,
	})
	if err != nil {
		a.logger.Warn("Narratives disabled", zap.Error(err))
		return nil, nil
	}
	return n, rate.NewLimiter(rate.Limit(nc.RatePerSecond), nc.Burst)
}

// buildTriage wires classification, retrieval and aggregation.
func (a *app) buildTriage(queryEmbedder domain.Embedder) *triageuc.Service {
	tc := a.cfg.Triage
	dc := a.cfg.Database

	retriever := retrieval.New(a.docRepo, queryEmbedder, retrieval.Config{
		TopK:           tc.TopK,
		StorageTimeout: time.Duration(dc.QueryTimeoutMs) * time.Millisecond,
		EmbedTimeout:   time.Duration(a.cfg.Embedding.TimeoutMs) * time.Millisecond,
		Retry: retrieval.RetryPolicy{
			Attempts:  dc.RetryAttempts,
			BaseDelay: time.Duration(dc.RetryBaseDelayMs) * time.Millisecond,
		},
	}, a.logger)

	narrator, limiter := a.buildNarrator()

	return triageuc.New(
		category.NewClassifier(a.table, urgency.Default()),
		retriever,
		narrator,
		triageuc.Config{
			Evidence: evidence.Options{
				Threshold:     tc.Threshold,
				PreviewLength: tc.PreviewLength,
				Limit:         tc.DisplayLimit,
			},
			TopK:             tc.TopK,
			NarrativeTimeout: time.Duration(a.cfg.Narrative.TimeoutMs) * time.Millisecond,
			NarrativeLimiter: limiter,
		},
		a.logger,
	)
}

func loadTable(tc config.TriageConfig) (*category.Table, error) {
	if tc.CategoriesFile == "" {
		return category.DefaultTable(), nil
	}
	t, err := category.LoadTable(tc.CategoriesFile)
	if err != nil {
		return nil, fmt.Errorf("load categories: %w", err)
	}
	return t, nil
}
