package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"roster-pulse/internal/clients/blob"
	mongoClient "roster-pulse/internal/clients/mongo"
	redisClient "roster-pulse/internal/clients/redis"
	"roster-pulse/internal/config"
	"roster-pulse/internal/logger"
	"roster-pulse/internal/offline"
	"roster-pulse/internal/roster"
	identityService "roster-pulse/internal/services/identity"
	"roster-pulse/internal/services/locks"
	notesService "roster-pulse/internal/services/notes"

	"golang.org/x/sync/errgroup"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	// Create bootstrap logger for early errors
	bootstrapLog := log.New(os.Stderr, "bootstrap: ", log.LstdFlags)

	cfg, err := config.Load()
	if err != nil {
		bootstrapLog.Printf("config load failed: %v", err)
		os.Exit(1)
	}

	logg, err := logger.Init(cfg)
	if err != nil {
		bootstrapLog.Printf("logger init failed: %v", err)
		os.Exit(1)
	}

	_, db, err := mongoClient.Init(ctx, cfg, logg)
	if err != nil {
		logg.Error("mongo init", "err", err)
		os.Exit(1)
	}
	logg.Info("connected to mongo", "db", db.Name())

	rdb, err := redisClient.Init(ctx, cfg, logg)
	if err != nil {
		logg.Error("redis init", "err", err)
		os.Exit(1)
	}

	// Photos are optional; without an object store endpoint the photo
	// routes just answer 404.
	var photos *blob.Store
	if cfg.MinioEndpoint != "" {
		photos, err = blob.Init(ctx, cfg, logg)
		if err != nil {
			logg.Error("blob store init", "err", err)
			os.Exit(1)
		}
	}

	notesRepo, err := mongoClient.NewNotesRepo(ctx, db)
	if err != nil {
		logg.Error("notes repo init", "err", err)
		os.Exit(1)
	}
	playersRepo, err := mongoClient.NewPlayersRepo(ctx, db)
	if err != nil {
		logg.Error("players repo init", "err", err)
		os.Exit(1)
	}

	queue, err := offline.NewQueue(cfg.PendingQueueFile)
	if err != nil {
		logg.Error("pending queue init", "err", err)
		os.Exit(1)
	}

	lockMgr := locks.NewManager(rdb, locks.Options{
		StaleAfter:     time.Duration(cfg.LockTTLMinutes) * time.Minute,
		HeartbeatEvery: time.Duration(cfg.LockHeartbeatSec) * time.Second,
		EventBuffer:    cfg.WSOutboxBuffer,
	}, logg)

	rosterSvc := roster.NewService(playersRepo, logg)
	editorSvc := notesService.NewService(notesRepo, lockMgr, queue, logg)
	idSvc := identityService.NewService(cfg.JWTSecret,
		time.Duration(cfg.IdentityTokenHours)*time.Hour)

	logg.Info("starting RosterPulse", "port", cfg.AppPort)

	app := setupRouter(cfg, routerDeps{
		rosterSvc: rosterSvc,
		editorSvc: editorSvc,
		idSvc:     idSvc,
		lockMgr:   lockMgr,
		photos:    photos,
	})
	portStr := fmt.Sprintf(":%d", cfg.AppPort)

	g.Go(func() error {
		err := app.Listen(portStr)
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})

	// Lock event pump: Redis pub/sub in, per-player subscribers out.
	g.Go(func() error {
		return lockMgr.Run(ctx)
	})

	// Offline replay loop: whatever the store rejected earlier gets another
	// chance every interval.
	g.Go(func() error {
		ticker := time.NewTicker(time.Duration(cfg.ReplayIntervalSec) * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				if n, err := editorSvc.ReplayPending(ctx); err != nil {
					logg.Warn("pending replay pass failed", "err", err)
				} else if n > 0 {
					logg.Info("replayed pending note updates", "count", n)
				}
			}
		}
	})

	// Graceful shutdown
	g.Go(func() error {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 25*time.Second)
		defer cancel()

		if err := app.Shutdown(); err != nil {
			return err
		}
		if err := redisClient.Shutdown(); err != nil {
			logg.Warn("redis shutdown", "err", err)
		}
		return mongoClient.Shutdown(shutdownCtx)
	})

	// Wait and exit
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error("fatal", "err", err)
		os.Exit(1)
	}
	logg.Info("graceful shutdown complete")
}
