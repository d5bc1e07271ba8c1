// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/rulekit/internal/api"
	"github.com/starford/rulekit/internal/rules"
	"github.com/starford/rulekit/internal/sse"
	"github.com/starford/rulekit/internal/storage"
	"github.com/starford/rulekit/internal/tokencache"
	"github.com/starford/rulekit/internal/tokens"
	"github.com/starford/rulekit/internal/watch"
)

// Run starts the live validation dashboard with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config

	// Initialize structured JSON logger.
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("rules_path", cfg.Rules.Path),
		slog.String("encoding", cfg.Tokens.Encoding),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// Initialize storage over the rules tree.
	store, err := storage.NewFS(cfg.Rules.Path)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}

	linter := rules.NewLinter(rules.Limits{
		MaxHeadingLevel: cfg.Rules.MaxHeadingLevel,
		MaxConciseLines: cfg.Rules.MaxConciseLines,
	})

	// Token calculator is best effort: the dashboard stays useful when the
	// encoding data cannot be fetched.
	calc, cacheClose, err := buildCalculator(cfg)
	if err != nil {
		logger.Warn("tokenizer unavailable, token endpoints disabled",
			slog.String("error", err.Error()))
	}
	if cacheClose != nil {
		defer cacheClose()
	}

	// SSE broker.
	broker := sse.NewBroker(2 * time.Second)
	defer broker.Close()

	// Build API handler and router.
	h := api.NewHandler(store, linter, calc, store.Root(), cfg.Rules.ConciseDir)
	apiRouter := api.NewRouter(h, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

	// Build chi router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Mount API routes under /api.
	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Start file watcher: revalidate changed documents and push results.
	g.Go(func() error {
		return watch.Watch(gCtx, store, store.Root(), logger, func(kind, path string) {
			if kind == "deleted" {
				broker.Publish(sse.Event{Type: "rule.deleted", Data: map[string]string{"path": path}})
				return
			}
			data, readErr := store.Read(path)
			if readErr != nil {
				return
			}
			res := h.CheckDocument(path, string(data))
			broker.PublishRuleEvent(path, res.Valid)
		})
	})

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// buildCalculator wires the tiktoken counter and, when configured, the
// SQLite count cache. The returned func closes the cache.
func buildCalculator(cfg *Config) (*tokens.Calculator, func(), error) {
	counter, err := tokens.NewTiktokenCounter(cfg.Tokens.Encoding)
	if err != nil {
		return nil, nil, err
	}

	var cache tokens.Cache
	var closeFn func()
	if cfg.Tokens.CachePath != "" {
		store, cacheErr := tokencache.Open(cfg.Tokens.CachePath)
		if cacheErr != nil {
			slog.Warn("token cache unavailable", slog.String("error", cacheErr.Error()))
		} else {
			cache = store.ForEncoding(counter.Encoding())
			closeFn = func() { _ = store.Close() }
		}
	}

	return tokens.NewCalculator(counter, cache, cfg.Tokens.ReductionTarget), closeFn, nil
}
