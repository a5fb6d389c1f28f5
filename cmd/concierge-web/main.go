package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/tripdesk/concierge/internal/config"
	"github.com/tripdesk/concierge/internal/index"
	"github.com/tripdesk/concierge/internal/intent"
	"github.com/tripdesk/concierge/internal/llm"
	"github.com/tripdesk/concierge/internal/metrics"
	"github.com/tripdesk/concierge/internal/server"
	"github.com/tripdesk/concierge/internal/store"
)

func main() {
	envFile := flag.String("env", "", "Path to .env file (default: .env if present)")
	flag.Parse()

	// Load environment overrides before reading config.
	if *envFile != "" {
		if err := godotenv.Load(*envFile); err != nil {
			log.Fatalf("Failed to load env file %s: %v", *envFile, err)
		}
	} else if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			log.Printf("Warning: failed to load .env: %v", err)
		}
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := log.New(os.Stdout, "concierge ", log.LstdFlags)

	rs, err := openStore(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}
	defer rs.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Load records from the store, falling back to the JSON snapshots when
	// the store is empty, and build the in-memory index once.
	agents, logins, err := store.LoadRecords(ctx, rs, cfg.Storage.DataPath)
	if err != nil {
		log.Fatalf("Failed to load records: %v", err)
	}
	idx := index.Build(agents, logins)
	logger.Printf("Indexed %d agents, %d login events", len(agents), len(logins))

	matchers, err := intent.LoadOverrides(cfg.Intent.OverridesPath)
	if err != nil {
		log.Fatalf("Failed to load intent overrides: %v", err)
	}
	classifier := intent.NewClassifier(matchers)

	var primary llm.Generator
	var ollama *llm.OllamaClient
	if cfg.LLM.OllamaURL != "" {
		ollama = llm.NewOllamaClient(llm.OllamaConfig{
			BaseURL: cfg.LLM.OllamaURL,
			Model:   cfg.LLM.OllamaModel,
			Timeout: cfg.LLM.Timeout,
		})
		primary = ollama
	} else {
		logger.Println("No primary backend configured, requests go straight to fallback")
	}

	var fallback llm.Generator
	if cfg.LLM.FallbackURL != "" {
		if cfg.LLM.FallbackKind == "ollama" {
			fallback = llm.NewOllamaClient(llm.OllamaConfig{
				BaseURL: cfg.LLM.FallbackURL,
				Model:   cfg.LLM.FallbackModel,
				Timeout: cfg.LLM.Timeout,
			})
		} else {
			fallback = llm.NewFallbackClient(llm.FallbackConfig{
				BaseURL: cfg.LLM.FallbackURL,
				Kind:    cfg.LLM.FallbackKind,
				Model:   cfg.LLM.FallbackModel,
				APIKey:  cfg.LLM.APIKey,
				Timeout: cfg.LLM.Timeout,
			})
		}
	}

	cache := llm.NewResponseCache(cfg.LLM.CacheSize, cfg.LLM.CacheTTL)
	orchestrator := llm.NewOrchestrator(primary, fallback, cache, cfg.LLM.MaxRetries, logger)

	m := metrics.New(nil)

	addr, _ := server.Start(ctx, cfg, server.Deps{
		Store:        rs,
		Index:        idx,
		Classifier:   classifier,
		Orchestrator: orchestrator,
		Ollama:       ollama,
		Metrics:      m,
		Logger:       logger,
	})
	logger.Printf("Concierge API running at http://%s", addr)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Println("Shutting down gracefully...")
	cancel()
	time.Sleep(1 * time.Second) // Give time for connections to close
}

func openStore(cfg *config.Config) (store.RecordStore, error) {
	if cfg.Storage.Engine == "postgres" {
		return store.NewPostgresStore(cfg.Storage.PostgresDSN)
	}
	return store.NewSQLiteStore(filepath.Join(cfg.Storage.DataPath, "concierge.db"))
}
