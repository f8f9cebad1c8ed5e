package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"cantine-planner/internal/config"
	"cantine-planner/internal/database"
	"cantine-planner/internal/llm"
	"cantine-planner/internal/planner"
)

// Bootstrap builds an App from configuration: the SQLite database, the plan
// store (Postgres when DATABASE_URL is set), the LLM chain and the
// valorization catalogue. The returned cleanup releases every resource.
func Bootstrap(ctx context.Context, cfg *config.Config) (*App, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	db, err := database.NewDB(cfg.DatabasePath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	closers = append(closers, func() { db.Close() })

	var store planner.Store = planner.NewPlanRepository(db.SQL)
	if cfg.DatabaseURL != "" {
		pool, err := database.ConnectPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		closers = append(closers, pool.Close)
		store = planner.NewPostgresStore(pool)
	}

	gemini, err := llm.NewGeminiClient(ctx, cfg, 0.3)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	closers = append(closers, func() { gemini.Close() })
	textGen := llm.NewFallbackGenerator(llm.NewGroqClient(cfg, llm.ModelExtractor, 0.2), gemini)

	a, err := NewApp(cfg, db, store, textGen)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	if err := a.LoadValorization(cfg.CataloguePath); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			cleanup()
			return nil, nil, fmt.Errorf("failed to load valorization recipes: %w", err)
		}
		log.Printf("No catalogue at %s, using built-in valorization recipes", cfg.CataloguePath)
	}

	return a, cleanup, nil
}
