package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups the service's collectors on a private registry. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	Registry       *prometheus.Registry
	Questions      *prometheus.CounterVec
	AnswerLatency  *prometheus.HistogramVec
	FetchErrors    *prometheus.CounterVec
	AssistantCalls *prometheus.CounterVec
	HTTPRequests   *prometheus.CounterVec
}

func New(namespace string) *Metrics {
	if namespace == "" {
		namespace = "fieldops"
	}
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)

	return &Metrics{
		Registry: reg,
		Questions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "assistant",
			Name:      "questions_total",
			Help:      "Questions answered, by intent and answer source.",
		}, []string{"intent", "source"}),
		AnswerLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "assistant",
			Name:      "answer_seconds",
			Help:      "Time to answer a question.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"source"}),
		FetchErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "fetch_errors_total",
			Help:      "Failed table reads.",
		}, []string{"table"}),
		AssistantCalls: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "llm",
			Name:      "calls_total",
			Help:      "Language-model fallback calls, by outcome.",
		}, []string{"outcome"}),
		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests, by route and status code.",
		}, []string{"route", "code"}),
	}
}

func (m *Metrics) ObserveQuestion(intent, source string, d time.Duration) {
	if m == nil {
		return
	}
	m.Questions.WithLabelValues(intent, source).Inc()
	m.AnswerLatency.WithLabelValues(source).Observe(d.Seconds())
}

func (m *Metrics) FetchError(table string) {
	if m == nil {
		return
	}
	m.FetchErrors.WithLabelValues(table).Inc()
}

func (m *Metrics) AssistantCall(outcome string) {
	if m == nil {
		return
	}
	m.AssistantCalls.WithLabelValues(outcome).Inc()
}

func (m *Metrics) HTTPRequest(route, code string) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(route, code).Inc()
}

// Handler serves the registry in the prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}
