package server

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// metrics holds the server's Prometheus collectors on a private registry so
// multiple servers (tests) never collide on registration.
type metrics struct {
	registry       *prometheus.Registry
	searchDuration *prometheus.HistogramVec
	rebuildTotal   *prometheus.CounterVec
}

func newMetrics(svc SearchService) *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		searchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "newsvec_search_duration_seconds",
			Help:    "Search request latency by outcome.",
			Buckets: prometheus.DefBuckets,
		}, []string{"outcome"}),
		rebuildTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "newsvec_index_rebuilds_total",
			Help: "Index rebuilds by outcome.",
		}, []string{"outcome"}),
	}
	indexedArticles := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "newsvec_indexed_articles",
		Help: "Articles in the active index snapshot.",
	}, func() float64 { return float64(svc.Count()) })

	m.registry.MustRegister(
		m.searchDuration,
		m.rebuildTotal,
		indexedArticles,
		collectors.NewGoCollector(),
	)
	return m
}

func outcomeLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

func (m *metrics) observeSearch(d time.Duration, err error) {
	m.searchDuration.WithLabelValues(outcomeLabel(err)).Observe(d.Seconds())
}

func (m *metrics) observeRebuild(err error) {
	m.rebuildTotal.WithLabelValues(outcomeLabel(err)).Inc()
}

func (m *metrics) handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
