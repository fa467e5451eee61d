package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/phxgg/geohub-sockets/internal/config"
	"github.com/phxgg/geohub-sockets/internal/httpapi"
	"github.com/phxgg/geohub-sockets/internal/identity"
	"github.com/phxgg/geohub-sockets/internal/lobby"
	"github.com/phxgg/geohub-sockets/internal/store"
	"github.com/phxgg/geohub-sockets/internal/ws"
)

func main() {
	_ = godotenv.Load()

	log, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	cfg := config.Load()

	var st store.Store
	if cfg.DatabaseURL != "" {
		gs, err := store.OpenGorm(cfg.DatabaseURL)
		if err != nil {
			log.Fatal("connect to postgres", zap.Error(err))
		}
		st = gs
		log.Info("using postgres session store")
	} else {
		st = store.NewMemory()
		log.Warn("DATABASE_URL not set, using in-memory session store")
	}

	verifier := identity.NewJWTVerifier(cfg.JWTSecret)
	hub := ws.NewHub(log)
	coord := lobby.NewCoordinator(st, hub, log)

	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: httpapi.SetupRoutes(verifier, coord, hub, st, log),
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("listening", zap.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Fatal("server error", zap.Error(err))
	}
}
