package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"

	"github.com/fieldops/backend/internal/config"
	"github.com/fieldops/backend/internal/metrics"
	"github.com/fieldops/backend/internal/models"
	"github.com/fieldops/backend/internal/nlq"
	"github.com/fieldops/backend/internal/session"
)

type emptySource struct{}

func (emptySource) ListSalesmen(ctx context.Context) ([]models.Salesman, error) {
	return []models.Salesman{{Name: "Ahmed", Company: "ALSAD"}}, nil
}

func (emptySource) ListRepairDevices(ctx context.Context) ([]models.RepairDevice, error) {
	return nil, nil
}

func (emptySource) Ping(ctx context.Context) error { return nil }

func newRouter(adminKey string) (*gin.Engine, *metrics.Metrics) {
	gin.SetMode(gin.TestMode)
	m := metrics.New("test")
	engine := nlq.NewEngine(emptySource{}, session.NewMemoryStore(time.Hour), nil, zerolog.Nop())
	engine.Metrics = m
	cfg := config.Config{AdminKey: adminKey, RequestTimeout: time.Second}
	return Router(cfg, engine, emptySource{}, m, zerolog.Nop()), m
}

func TestPreflightWithOrigin(t *testing.T) {
	r, _ := newRouter("")

	req, _ := http.NewRequest(http.MethodOptions, "/api/assistant", nil)
	req.Header.Set("Origin", "http://example.com")
	req.Header.Set("Access-Control-Request-Method", "POST")
	req.Header.Set("Access-Control-Request-Headers", "Content-Type")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("expected any origin, got %q", got)
	}
	methods := w.Header().Get("Access-Control-Allow-Methods")
	for _, m := range []string{"GET", "POST", "OPTIONS"} {
		if !strings.Contains(methods, m) {
			t.Fatalf("missing %s in %q", m, methods)
		}
	}
	headers := strings.ToLower(w.Header().Get("Access-Control-Allow-Headers"))
	for _, h := range []string{"origin", "x-requested-with", "content-type", "accept"} {
		if !strings.Contains(headers, h) {
			t.Fatalf("missing %s in %q", h, headers)
		}
	}
}

func TestPreflightWithoutOrigin(t *testing.T) {
	r, _ := newRouter("")

	req, _ := http.NewRequest(http.MethodOptions, "/api/anything", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestAssistantSetsCORSHeader(t *testing.T) {
	r, m := newRouter("")

	req, _ := http.NewRequest(http.MethodPost, "/api/assistant", strings.NewReader(`{"question":"hello"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Origin", "http://example.com")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if w.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Fatalf("missing CORS header")
	}
	if w.Header().Get("X-Request-Id") == "" {
		t.Fatalf("missing request id")
	}
	if got := testutil.ToFloat64(m.HTTPRequests.WithLabelValues("/api/assistant", "200")); got != 1 {
		t.Fatalf("expected 1 counted request, got %v", got)
	}
	if got := testutil.ToFloat64(m.Questions.WithLabelValues("greeting", "greeting")); got != 1 {
		t.Fatalf("expected 1 greeting, got %v", got)
	}
}

func TestDebugRequiresAdminKey(t *testing.T) {
	r, _ := newRouter("secret")

	req, _ := http.NewRequest(http.MethodGet, "/api/debug/classify?question=how+many+salesmen", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}

	req.Header.Set("X-Admin-Key", "secret")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	r, _ := newRouter("")

	req, _ := http.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "go_goroutines") {
		t.Fatalf("expected runtime metrics in output")
	}
}
