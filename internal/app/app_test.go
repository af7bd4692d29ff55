package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/govalyteams/sheetdesk/internal/pkg/config"
)

func testConfig() *config.Config {
	return &config.Config{
		Port:            "0",
		Env:             "test",
		ShutdownTimeout: 2 * time.Second,
		Auth:            config.AuthConfig{JWTSecret: "app-secret", TokenTTL: time.Hour, BcryptCost: 4},
		Store:           config.StoreConfig{Backend: config.BackendMemory, IdempotencyTTL: time.Hour},
		Serializer:      config.SerializerConfig{Workers: 2},
		Bootstrap:       config.BootstrapConfig{Username: "root", Password: "rootpw"},
	}
}

func newApp(t *testing.T, cfg *config.Config) *App {
	t.Helper()
	a, err := New(context.Background(), cfg, zerolog.Nop(), WithRegistry(prometheus.NewRegistry()))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = a.Close(context.Background()) })
	return a
}

func serve(a *App, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	a.Handler().ServeHTTP(rec, req)
	return rec
}

func TestNew_MemoryBackendBootstraps(t *testing.T) {
	a := newApp(t, testConfig())

	rec := serve(a, http.MethodPost, "/auth/login", `{"username":"root","password":"rootpw"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Role string `json:"role"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil || resp.Role != "CEO" {
		t.Fatalf("expected CEO login, got %s (%v)", rec.Body.String(), err)
	}

	// A second bootstrap is a no-op.
	_, created, err := a.Bootstrap(context.Background(), "other", "pw")
	if err != nil || created {
		t.Fatalf("expected skipped bootstrap, created=%v err=%v", created, err)
	}
}

func TestNew_ReadinessListsBackends(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := testConfig()
	cfg.Redis.Addr = mr.Addr()
	a := newApp(t, cfg)

	rec := serve(a, http.MethodGet, "/health/ready", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("ready: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	for _, dep := range []string{"store", "redis"} {
		if !strings.Contains(rec.Body.String(), `"`+dep+`"`) {
			t.Fatalf("readiness should report %s: %s", dep, rec.Body.String())
		}
	}
}

func TestNew_UnreachableBackendsFail(t *testing.T) {
	cfg := testConfig()
	cfg.Redis.Addr = "127.0.0.1:1"
	if _, err := New(context.Background(), cfg, zerolog.Nop(), WithRegistry(prometheus.NewRegistry())); err == nil {
		t.Fatal("expected redis connection error")
	}

	cfg = testConfig()
	cfg.Store.Backend = config.BackendMongo
	cfg.Mongo = config.MongoConfig{URI: "mongodb://127.0.0.1:1", Database: "sheetdesk", Timeout: 200 * time.Millisecond}
	if _, err := New(context.Background(), cfg, zerolog.Nop(), WithRegistry(prometheus.NewRegistry())); err == nil {
		t.Fatal("expected mongo connection error")
	}
}

func TestRun_StopsOnCancel(t *testing.T) {
	a := newApp(t, testConfig())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
