package server

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

// GracefulShutdown waits for SIGINT/SIGTERM and drains the given servers.
// The first server is the API; any others (pprof) are closed after it.
func GracefulShutdown(logger *zap.Logger, done chan<- struct{}, servers ...*http.Server) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()
	logger.Info("Shutting down gracefully, press Ctrl+C again to force")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	for _, srv := range servers {
		if srv == nil {
			continue
		}
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server forced to shutdown", zap.String("addr", srv.Addr), zap.Error(err))
		}
	}

	logger.Info("Server exiting")
	close(done)
}
