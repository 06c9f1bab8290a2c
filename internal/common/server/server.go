package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/AlibekovAA/nexus-admin/backend/internal/common/constants"
	"github.com/AlibekovAA/nexus-admin/backend/internal/common/logger"
)

type ShutdownHook func(ctx context.Context) error

// StartWithGracefulShutdown serves until SIGINT or SIGTERM, then drains.
func StartWithGracefulShutdown(server *http.Server, log *logger.Logger, serviceName string, hooks ...ShutdownHook) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	listener, err := net.Listen("tcp", server.Addr)
	if err != nil {
		log.Fatalf("failed to start %s service: %v", serviceName, err)
	}

	if err := Serve(ctx, server, listener, log, serviceName, hooks...); err != nil {
		log.Fatalf("%s service: %v", serviceName, err)
	}
}

// Serve runs server on listener until ctx is done, then runs hooks and
// shuts the server down within constants.ShutdownTimeout.
func Serve(ctx context.Context, server *http.Server, listener net.Listener, log *logger.Logger, serviceName string, hooks ...ShutdownHook) error {
	serveErr := make(chan error, 1)
	go func() {
		log.Infof("%s service listening on %s", serviceName, listener.Addr())
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Infof("shutting down %s service...", serviceName)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
	defer cancel()

	server.SetKeepAlivesEnabled(false)

	for i, hook := range hooks {
		if err := hook(shutdownCtx); err != nil {
			log.Errorf("%s service: shutdown hook %d failed: %v", serviceName, i, err)
		}
	}

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorf("%s service forced to shutdown: %v", serviceName, err)
		return err
	}
	log.Infof("%s service stopped gracefully", serviceName)
	return nil
}
