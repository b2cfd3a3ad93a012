package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/FarhadNuri/VC/internal/logging"
	"github.com/FarhadNuri/VC/internal/server"
	"github.com/FarhadNuri/VC/internal/signaling"
)

func main() {
	cfg, err := loadConfig()
	if err != nil {
		panic(err)
	}
	log := logging.New(cfg.LogLevel, os.Stdout)

	registry := signaling.NewRegistry(signaling.RegistryConfig{
		MaxRoomSize: cfg.MaxRoomSize,
		CodeLength:  cfg.RoomCodeLength,
	})
	hub := signaling.NewHub(registry, log)
	go hub.Run()

	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: server.NewRouter(hub, log),
	}

	go func() {
		log.Info().Str("addr", cfg.Addr).Msg("starting signaling server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}
}
