package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/crowdkit/crowdkit/internal/activities"
	"github.com/crowdkit/crowdkit/internal/config"
	"github.com/crowdkit/crowdkit/internal/domain/activity"
	"github.com/crowdkit/crowdkit/internal/domain/eventlog"
	"github.com/crowdkit/crowdkit/internal/domain/participant"
	"github.com/crowdkit/crowdkit/internal/domain/response"
	"github.com/crowdkit/crowdkit/internal/domain/session"
	"github.com/crowdkit/crowdkit/internal/domain/status"
	"github.com/crowdkit/crowdkit/internal/registry"
	"github.com/crowdkit/crowdkit/internal/sqlite"
	"github.com/crowdkit/crowdkit/internal/transport"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Log.Level),
	}))

	if err := ensureDBDir(cfg.DB.Path); err != nil {
		logger.Error("failed to prepare database path", "error", err)
		os.Exit(1)
	}

	db, err := sqlite.New(cfg.DB.Path)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.RunMigrations(); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	reg := registry.New(logger)
	if err := activities.RegisterBuiltins(reg); err != nil {
		logger.Error("failed to register activity types", "error", err)
		os.Exit(1)
	}

	sessionRepo := sqlite.NewSessionRepository(db)
	participantRepo := sqlite.NewParticipantRepository(db)
	activityRepo := sqlite.NewActivityRepository(db)
	responseRepo := sqlite.NewResponseRepository(db)
	eventRepo := sqlite.NewEventRepository(db)

	eventSvc := eventlog.NewService(eventRepo, logger)
	guard := activity.NewGuard()
	activitySvc := activity.NewService(activityRepo, sessionRepo, reg, eventSvc, guard, logger)
	sessionSvc := session.NewService(sessionRepo, participantRepo, activitySvc, eventSvc, logger)
	participantSvc := participant.NewService(participantRepo, sessionSvc, eventSvc, logger)
	responseSvc := response.NewService(responseRepo, activitySvc, reg, eventSvc, logger)
	statusSvc := status.NewService(activitySvc, responseRepo, reg, logger)

	router := transport.NewServer(transport.Services{
		Sessions:     sessionSvc,
		Participants: participantSvc,
		Activities:   activitySvc,
		Responses:    responseSvc,
		Status:       statusSvc,
		Events:       eventSvc,
		Registry:     reg,
	}, logger)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	httpServer := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		logger.Info("server listening", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
		}
	}()

	waitForShutdown(logger, httpServer)
}

func ensureDBDir(path string) error {
	if path == ":memory:" || path == "" {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

func waitForShutdown(logger *slog.Logger, server *http.Server) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	logger.Info("shutting down")
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
