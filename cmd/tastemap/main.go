package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/jcallahan/tastemap/internal/config"
	"github.com/jcallahan/tastemap/internal/db"
	"github.com/jcallahan/tastemap/internal/logging"
	"github.com/jcallahan/tastemap/internal/session"
	"github.com/jcallahan/tastemap/internal/store"
	"github.com/jcallahan/tastemap/internal/web"
)

func main() {
	cfg := config.Load()

	logger, cleanup, err := logging.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer cleanup()

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		return
	}
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	recordStore := store.NewSQLiteStore(database, logger)
	defer recordStore.Close()

	sess := session.New(recordStore, session.Defaults{
		Neighborhood: cfg.DefaultNeighborhood(),
		Cuisine:      cfg.DefaultCuisine(),
		Lat:          cfg.MapCenterLat,
		Lng:          cfg.MapCenterLng,
	}, logger)
	sess.Start(ctx)
	defer sess.Close()

	server := web.NewServer(sess, cfg, logger)
	server.Start(ctx)

	if err := server.ListenAndServe(ctx, cfg.ListenAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server error", "error", err)
	}
}
