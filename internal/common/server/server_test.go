package server

import (
	"context"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/AlibekovAA/nexus-admin/backend/internal/common/logger"
)

func TestDefaultServerConfig(t *testing.T) {
	cfg := DefaultServerConfig("4000")
	if cfg.Addr != ":4000" {
		t.Errorf("expected :4000, got %s", cfg.Addr)
	}
	if cfg.ReadHeaderTimeout <= 0 || cfg.WriteTimeout <= 0 {
		t.Error("expected non-zero timeouts")
	}
}

func TestServeStopsOnContextAndRunsHooks(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	srv := NewServer(DefaultServerConfig("0"), handler)
	log := logger.NewWithWriter(io.Discard, "server-test", "error")

	ctx, cancel := context.WithCancel(context.Background())
	hookRan := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- Serve(ctx, srv, listener, log, "test", func(context.Context) error {
			close(hookRan)
			return nil
		})
	}()

	resp, err := http.Get("http://" + listener.Addr().String() + "/")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusTeapot {
		t.Errorf("expected 418, got %d", resp.StatusCode)
	}

	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("serve returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}

	select {
	case <-hookRan:
	default:
		t.Error("shutdown hook not run")
	}
}
