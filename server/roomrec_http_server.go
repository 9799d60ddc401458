package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
)

type RoomRecHttpServer struct {
	router          *Router
	address         string
	shutdownTimeout time.Duration
	logger          *log.Logger
}

func NewRoomRecHttpServer(router *Router, address string, shutdownTimeout time.Duration, logger *log.Logger) *RoomRecHttpServer {
	if logger == nil {
		logger = log.Default()
	}
	return &RoomRecHttpServer{
		router:          router,
		address:         address,
		shutdownTimeout: shutdownTimeout,
		logger:          logger.WithPrefix("RoomRecHttpServer"),
	}
}

// Start registers the routes and serves until ctx is cancelled, then shuts down gracefully
// within the shutdown timeout.
func (s *RoomRecHttpServer) Start(ctx context.Context) error {
	s.router.RegisterRoutes()

	srv := &http.Server{
		Addr:              s.address,
		Handler:           s.router.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting server", "address", s.address)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen on %s: %w", s.address, err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down the server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	s.logger.Info("server exiting")
	return nil
}
