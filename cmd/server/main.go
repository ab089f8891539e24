package main

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/dgallion1/jobdesc/internal/api"
	"github.com/dgallion1/jobdesc/internal/config"
	"github.com/dgallion1/jobdesc/internal/llm"
	"github.com/dgallion1/jobdesc/internal/metrics"
	"github.com/dgallion1/jobdesc/internal/pathstore"
	"github.com/dgallion1/jobdesc/internal/pipeline"
	"github.com/dgallion1/jobdesc/internal/store"
	"github.com/dgallion1/jobdesc/internal/suggest"
)

func main() {
	// A missing .env is fine; the environment may already be set.
	envErr := godotenv.Load()

	cfg := config.Load()
	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	if envErr != nil && !errors.Is(envErr, fs.ErrNotExist) {
		log.Warn("could not read .env", "error", envErr)
	}
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := metrics.New()

	// Initialize clients.
	base, err := llm.New(ctx, llm.Options{
		Provider: cfg.LLMProvider,
		APIKey:   cfg.LLMAPIKey,
		Model:    cfg.LLMModel,
		BaseURL:  cfg.LLMBaseURL,
		Timeout:  cfg.LLMTimeout,
	})
	if err != nil {
		log.Error("llm client", "error", err)
		os.Exit(1)
	}
	stats := llm.NewStats(time.Hour)
	gen := llm.NewInstrumented(base, cfg.LLMProvider, stats, m, log)

	st, err := openStore(cfg, log)
	if err != nil {
		log.Error("description store", "error", err)
		os.Exit(1)
	}
	if st != nil {
		st = store.WithMetrics(st, m)
	}

	suggestions := suggest.NewProvider(gen, suggest.Options{
		Structured: cfg.SuggestStructured,
		MaxItems:   cfg.SuggestMaxItems,
		Timeout:    cfg.SuggestTimeout,
	}, m, log)

	// Initialize pipeline.
	orch := pipeline.NewOrchestrator(cfg, gen, st, m, log)
	orch.Start(ctx)

	// Initialize HTTP server.
	srv := api.NewServer(api.Deps{
		Orchestrator: orch,
		Store:        st,
		Suggest:      suggestions,
		LLMStats:     stats,
		Metrics:      m,
	}, log, cfg)
	srv.Start(ctx)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		orch.Stop()
		srv.Close()
		if st != nil {
			if err := st.Close(); err != nil {
				log.Warn("close store", "error", err)
			}
		}
		if c, ok := base.(interface{ Close() }); ok {
			c.Close()
		}
	}()

	log.Info("starting jobdesc", "port", cfg.Port, "llm_provider", cfg.LLMProvider, "store", cfg.StoreBackend)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}

// openStore returns nil for the "none" backend.
func openStore(cfg config.Config, log *slog.Logger) (store.Store, error) {
	switch cfg.StoreBackend {
	case "sql":
		s, err := store.OpenSQL(cfg.DatabaseDriver, cfg.DatabaseURL, log)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "pathstore":
		ps := pathstore.NewClient(cfg.PathstoreURL, cfg.PathstoreAPIKey, 30*time.Second)
		return store.NewPathStore(ps, cfg.PathstorePrefix), nil
	}
	return nil, nil
}
