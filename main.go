package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatali-fataliyev/budget_dashboard/api"
	"github.com/fatali-fataliyev/budget_dashboard/internal/budget"
	"github.com/fatali-fataliyev/budget_dashboard/internal/config"
	"github.com/fatali-fataliyev/budget_dashboard/internal/contextutil"
	"github.com/fatali-fataliyev/budget_dashboard/internal/storage"
	"github.com/fatali-fataliyev/budget_dashboard/logging"
	"github.com/rs/cors"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		logging.Logger.Errorf("application stopped: %v", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := logging.Init(cfg.AppEnv, cfg.LogLevel, cfg.LogDir); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	logging.Logger.Info("application starting...")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := storage.Open(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer store.Close()

	bt := budget.NewBudgetTracker(store, budget.Options{
		SessionTTL:         cfg.SessionTTL,
		SessionRenewWithin: cfg.SessionRenewWithin,
	})

	corsConf := cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", api.TraceIDHeader},
		ExposedHeaders:   []string{api.TraceIDHeader},
		AllowCredentials: true,
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           corsConf.Handler(api.NewRouter(api.NewApi(&bt))),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logging.Logger.Infof("Starting server on port: %s (storage: %s)", cfg.Port, bt.StorageType)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logging.Logger.Info("shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		sweepSessions(gctx, &bt, cfg.SessionSweepInterval)
		return nil
	})

	return g.Wait()
}

// sweepSessions deletes expired sessions every interval until ctx ends. A
// failed sweep is logged and retried on the next tick.
func sweepSessions(ctx context.Context, bt *budget.BudgetTracker, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sweepCtx := contextutil.WithTraceID(ctx, "session-sweeper")
			removed, err := bt.SweepExpiredSessions(sweepCtx)
			if err != nil {
				logging.Logger.Warnf("session sweep failed: %v", err)
				continue
			}
			if removed > 0 {
				logging.Logger.Infof("removed %d expired sessions", removed)
			}
		}
	}
}
