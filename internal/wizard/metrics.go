package wizard

import (
	"github.com/prometheus/client_golang/prometheus"
	"sigs.k8s.io/controller-runtime/pkg/metrics"
)

var (
	metadataFetchTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "clusterwizard",
			Subsystem: "metadata",
			Name:      "fetch_total",
			Help:      "Total number of metadata page fetches by kind and result",
		},
		[]string{"kind", "result"},
	)

	commitTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "clusterwizard",
			Name:      "commit_total",
			Help:      "Total number of session commits by result",
		},
		[]string{"result"},
	)
)

func init() {
	// Register metrics with controller-runtime's registry
	metrics.Registry.MustRegister(
		metadataFetchTotal,
		commitTotal,
	)
}

// Fetch results.
const (
	fetchSuccess = "success"
	fetchError   = "error"
	fetchStale   = "stale"
)

// Commit results.
const (
	commitSuccess = "success"
	commitInvalid = "invalid"
	commitFailed  = "failed"
)

func recordFetchMetric(kind MetadataKind, result string) {
	metadataFetchTotal.WithLabelValues(string(kind), result).Inc()
}

func recordCommitMetric(result string) {
	commitTotal.WithLabelValues(result).Inc()
}
