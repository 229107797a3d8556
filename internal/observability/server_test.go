// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Hytalib Contributors

package observability

import (
	"context"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"

	"github.com/hytalab/hytalib/pkg/config"
	"github.com/hytalab/hytalib/pkg/database"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func startServer(t *testing.T, ready ReadinessChecker) *Server {
	t.Helper()
	server := NewServer("127.0.0.1:0", ready, quietLogger())
	if _, err := server.Start(); err != nil {
		t.Fatalf("failed to start server: %v", err)
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Stop(ctx)
	})
	return server
}

func get(t *testing.T, server *Server, path string) (int, string) {
	t.Helper()
	resp, err := http.Get("http://" + server.Addr() + path)
	if err != nil {
		t.Fatalf("failed to GET %s: %v", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read response body: %v", err)
	}
	return resp.StatusCode, string(body)
}

func TestServer_Metrics(t *testing.T) {
	server := startServer(t, nil)

	// Touch a config store so the package counters have samples.
	if _, err := config.New("plugins/Metrics/config.yml", config.WithFS(afero.NewMemMapFs()), config.WithLogger(quietLogger())); err != nil {
		t.Fatalf("failed to open config store: %v", err)
	}

	status, body := get(t, server, "/metrics")
	if status != http.StatusOK {
		t.Errorf("expected status 200, got %d", status)
	}
	for _, want := range []string{"# HELP", "# TYPE", "go_", "process_", "hytalib_config_reloads_total"} {
		if !strings.Contains(body, want) {
			t.Errorf("expected %q in metrics output", want)
		}
	}
}

func TestServer_RegisterPoolCollector(t *testing.T) {
	server := startServer(t, nil)

	db, err := database.NewBuilder().
		Kind(database.KindSQLite).
		FilePath(database.MemoryPath).
		With(database.WithLogger(quietLogger())).
		Build(context.Background())
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	defer db.Close()

	if err := server.Registry().Register(database.NewPoolCollector("test", db)); err != nil {
		t.Fatalf("failed to register pool collector: %v", err)
	}

	_, body := get(t, server, "/metrics")
	if !strings.Contains(body, `hytalib_db_pool_max_connections{kind="sqlite",pool="test"} 1`) {
		t.Errorf("expected pool gauge in metrics output, got:\n%s", body)
	}
	if !strings.Contains(body, "hytalib_db_connects_total") {
		t.Error("expected hytalib_db_connects_total metric")
	}
}

func TestServer_Probes(t *testing.T) {
	tests := []struct {
		name       string
		ready      ReadinessChecker
		path       string
		wantStatus int
		wantBody   string
	}{
		{name: "liveness", path: "/healthz/liveness", wantStatus: http.StatusOK, wantBody: "ok"},
		{name: "ready", ready: func() bool { return true }, path: "/healthz/readiness", wantStatus: http.StatusOK, wantBody: "ok"},
		{name: "not ready", ready: func() bool { return false }, path: "/healthz/readiness", wantStatus: http.StatusServiceUnavailable, wantBody: "not ready"},
		{name: "nil checker", path: "/healthz/readiness", wantStatus: http.StatusOK, wantBody: "ok"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := startServer(t, tt.ready)

			status, body := get(t, server, tt.path)
			if status != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, status)
			}
			if strings.TrimSpace(body) != tt.wantBody {
				t.Errorf("expected body %q, got %q", tt.wantBody, body)
			}
		})
	}
}

func TestServer_DoubleStartFails(t *testing.T) {
	server := startServer(t, nil)

	if _, err := server.Start(); err == nil {
		t.Error("expected second Start to fail")
	}
}

func TestServer_StartFailsOnBusyAddress(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}
	defer func() { _ = ln.Close() }()

	server := NewServer(ln.Addr().String(), nil, quietLogger())
	if _, err := server.Start(); err == nil {
		t.Fatal("expected Start to fail on a busy address")
	}
	if server.Addr() != "" {
		t.Errorf("expected empty address after failed start, got %q", server.Addr())
	}
}

func TestServer_StopIsIdempotentAndClosesErrors(t *testing.T) {
	server := NewServer("127.0.0.1:0", nil, quietLogger())
	errCh, err := server.Start()
	if err != nil {
		t.Fatalf("failed to start server: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Stop(ctx); err != nil {
		t.Fatalf("first stop failed: %v", err)
	}
	if err := server.Stop(ctx); err != nil {
		t.Fatalf("second stop failed: %v", err)
	}

	select {
	case err, ok := <-errCh:
		if ok {
			t.Errorf("expected closed channel, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("error channel was not closed after shutdown")
	}

	// A stopped server can be started again.
	if _, err := server.Start(); err != nil {
		t.Fatalf("restart failed: %v", err)
	}
	_ = server.Stop(ctx)
}
