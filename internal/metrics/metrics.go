// Package metrics exposes Prometheus instruments for the ingestion and search pipelines.
// A nil *Pipeline is valid and records nothing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

type Pipeline struct {
	analysisCalls    *prometheus.CounterVec
	analysisDuration *prometheus.HistogramVec
	costUSD          *prometheus.CounterVec
	degradedSearches prometheus.Counter
	cacheHits        prometheus.Counter
	ingested         prometheus.Counter
	rejected         *prometheus.CounterVec
}

// NewPipeline creates and registers the pipeline metrics on reg.
func NewPipeline(reg prometheus.Registerer) (*Pipeline, error) {
	p := &Pipeline{
		analysisCalls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "docvault_analysis_calls_total",
				Help: "Calls to the analysis model by operation and outcome.",
			},
			[]string{"operation", "outcome"},
		),
		analysisDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "docvault_analysis_duration_seconds",
				Help:    "Latency of analysis model calls.",
				Buckets: []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32, 64},
			},
			[]string{"operation"},
		),
		costUSD: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "docvault_analysis_cost_usd_total",
				Help: "Accumulated analysis cost in USD.",
			},
			[]string{"operation", "model"},
		),
		degradedSearches: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "docvault_search_degraded_total",
			Help: "Searches answered with the local fallback interpretation.",
		}),
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "docvault_search_cache_hits_total",
			Help: "Searches whose interpretation was served from cache.",
		}),
		ingested: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "docvault_documents_ingested_total",
			Help: "Documents persisted by the ingestion pipeline.",
		}),
		rejected: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "docvault_uploads_rejected_total",
				Help: "Upload batches rejected by the ingestion pipeline, by reason.",
			},
			[]string{"reason"},
		),
	}

	for _, c := range []prometheus.Collector{
		p.analysisCalls, p.analysisDuration, p.costUSD, p.degradedSearches, p.cacheHits, p.ingested, p.rejected,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func (p *Pipeline) ObserveAnalysis(operation string, err error, d time.Duration) {
	if p == nil {
		return
	}
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeError
	}
	p.analysisCalls.WithLabelValues(operation, outcome).Inc()
	p.analysisDuration.WithLabelValues(operation).Observe(d.Seconds())
}

func (p *Pipeline) AddCost(operation, model string, usd float64) {
	if p == nil || usd <= 0 {
		return
	}
	p.costUSD.WithLabelValues(operation, model).Add(usd)
}

func (p *Pipeline) SearchDegraded() {
	if p == nil {
		return
	}
	p.degradedSearches.Inc()
}

func (p *Pipeline) CacheHit() {
	if p == nil {
		return
	}
	p.cacheHits.Inc()
}

func (p *Pipeline) DocumentsIngested(n int) {
	if p == nil || n <= 0 {
		return
	}
	p.ingested.Add(float64(n))
}

func (p *Pipeline) UploadRejected(reason string) {
	if p == nil {
		return
	}
	p.rejected.WithLabelValues(reason).Inc()
}
