package main

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/FACorreiaa/backpackor/internal/pkg/config"
	"github.com/FACorreiaa/backpackor/internal/pkg/logger"
	"github.com/FACorreiaa/backpackor/internal/server"
)

var version = "dev"

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Error loading .env file, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if err := logger.Init(logger.ParseLevel(cfg.LogLevel),
		zap.String("service", "backpackor"),
		zap.String("version", version),
	); err != nil {
		return err
	}
	l := logger.Log
	defer func() { _ = l.Sync() }()

	otelShutdown, err := server.InitObservability(cfg, version, l)
	if err != nil {
		return err
	}
	defer func() {
		if err := otelShutdown(context.Background()); err != nil {
			l.Error("Failed to shutdown OpenTelemetry", zap.Error(err))
		}
	}()

	srv, err := server.New(context.Background(), cfg, l)
	if err != nil {
		return err
	}
	defer srv.Close()

	srv.SetRouter(server.SetupRouter(srv.Dependencies()))

	pprofServer := server.StartPprofServer(cfg.PprofAddr, l)
	httpServer := srv.HTTPServer()

	done := make(chan struct{})
	go server.GracefulShutdown(l, done, httpServer, pprofServer)

	l.Info("Server starting", zap.String("port", cfg.ServerPort))
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		l.Error("Server error", zap.Error(err))
		return err
	}

	<-done
	l.Info("Graceful shutdown complete")
	return nil
}
