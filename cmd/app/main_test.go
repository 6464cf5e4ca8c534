package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"bcx_go/internal/domain"
	"bcx_go/internal/infra/storage"
)

func TestRun_RefusedGatewayClosesJournal(t *testing.T) {
	t.Setenv("BCX_API_SECRET", "")
	srv := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		http.Error(rw, "unauthorized", http.StatusUnauthorized)
	}))
	defer srv.Close()

	dir := t.TempDir()
	dbPath := filepath.Join(dir, "orders.db")
	cfg := fmt.Sprintf(`
app:
  dump_path: ""
exchange:
  ws_url: %q
  api_secret_file: %q
trading:
  dry_run: true
storage:
  enabled: true
  path: %q
logging:
  level: error
  dir: %q
`, "ws"+strings.TrimPrefix(srv.URL, "http"), filepath.Join(dir, "missing"), dbPath, filepath.Join(dir, "logs"))
	cfgPath := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(cfgPath, []byte(cfg), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	errCh := make(chan error, 1)
	go func() { errCh <- run(context.Background(), cfgPath) }()

	select {
	case err := <-errCh:
		if !errors.Is(err, domain.ErrUnauthorized) {
			t.Fatalf("Expected ErrUnauthorized, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("run did not return after the gateway refused the connection")
	}

	// The journal was released and can be reopened.
	s, err := storage.NewStorage(dbPath)
	if err != nil {
		t.Fatalf("Reopen journal: %v", err)
	}
	defer s.Close()
	if _, err := s.ListOrders(0); err != nil {
		t.Errorf("ListOrders on reopened journal: %v", err)
	}
}

func TestRun_MissingConfig(t *testing.T) {
	if err := run(context.Background(), filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("Expected error for missing config file")
	}
}
