package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNilMetricsAreNoops(t *testing.T) {
	var m *Metrics
	m.ObserveQuestion("counting", "rules", time.Millisecond)
	m.FetchError("salesmen")
	m.AssistantCall("ok")
	m.HTTPRequest("/api/assistant", "200")
}

func TestMetricsRecordAndServe(t *testing.T) {
	m := New("test")
	m.ObserveQuestion("counting", "rules", 10*time.Millisecond)
	m.ObserveQuestion("counting", "rules", 20*time.Millisecond)
	m.FetchError("repair_devices")

	if got := testutil.ToFloat64(m.Questions.WithLabelValues("counting", "rules")); got != 2 {
		t.Fatalf("expected 2 questions, got %v", got)
	}
	if got := testutil.ToFloat64(m.FetchErrors.WithLabelValues("repair_devices")); got != 1 {
		t.Fatalf("expected 1 fetch error, got %v", got)
	}

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "test_assistant_questions_total") {
		t.Fatalf("expected questions counter in output")
	}
}
