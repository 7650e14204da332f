package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/david/deal-portal/internal/api"
	"github.com/david/deal-portal/internal/config"
	"github.com/david/deal-portal/internal/db"
	"github.com/david/deal-portal/internal/logger"
)

func main() {
	cfg, err := config.Load(config.Path())
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	l := logger.Init(cfg.Log.Level)

	repo, err := db.Connect(cfg, l)
	if err != nil {
		log.Fatalf("Failed to open deal source: %v", err)
	}

	srv := api.NewServer(repo, api.Options{
		RefreshInterval: cfg.Server.RefreshInterval,
		RefreshBurst:    cfg.Server.RefreshBurst,
		CORSOrigins:     cfg.Server.CORSOrigins,
		Logger:          l,
	})

	go func() {
		l.Info("Server starting", "port", cfg.Server.Port, "source", repo.SourceName())
		if err := srv.Start(cfg.Server.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		l.Error("Shutdown failed", "error", err)
	}
}
