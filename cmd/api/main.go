package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"resume-builder/internal/bootstrap"
	"resume-builder/internal/shared/config"
	"resume-builder/internal/shared/server"
	"resume-builder/internal/shared/telemetry"
)

const pruneInterval = 10 * time.Minute

func main() {
	cfg := config.Load()
	app, err := bootstrap.Build(cfg)
	if err != nil {
		log.Fatalf("bootstrap: %v", err)
	}
	if app.DB != nil {
		defer app.DB.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go pruneSessions(ctx, app)

	addr := server.Addr(cfg.Port)
	srv := &http.Server{Addr: addr, Handler: app.Router, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("shutdown: %v", err)
		}
	}()

	log.Printf("Starting API server on %s (gateway=%s augment=%s)", addr, cfg.Gateway, cfg.AugmentProvider)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("server error: %v", err)
	}
}

func pruneSessions(ctx context.Context, app *bootstrap.App) {
	ticker := time.NewTicker(pruneInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			idle := app.Config.SessionIdleTimeout
			if idle <= 0 {
				idle = 2 * time.Hour
			}
			sessions := app.EditorService.Prune(idle)
			buckets := app.ImproveLimiter.Prune(idle)
			if sessions > 0 || buckets > 0 {
				telemetry.Info("editor.sessions pruned", map[string]any{"sessions": sessions, "limiterBuckets": buckets})
			}
		}
	}
}
