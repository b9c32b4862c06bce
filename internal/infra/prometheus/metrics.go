package prometheus

import (
	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Engine metrics, registered on the default registry and served by NewServer.
// RedirectsTotal is fed by the click-event consumer so label cardinality
// stays off the redirect hot path.
var (
	RedirectsTotal = promauto.NewCounterVec(prom.CounterOpts{
		Namespace: "linkhub",
		Name:      "redirects_total",
		Help:      "Redirects served, labelled by resolved country and device class.",
	}, []string{"country", "device"})

	NewVisitorsTotal = promauto.NewCounter(prom.CounterOpts{
		Namespace: "linkhub",
		Name:      "new_visitors_total",
		Help:      "Visitor tokens minted for first-time visitors.",
	})

	ClickRecordSeconds = promauto.NewHistogram(prom.HistogramOpts{
		Namespace: "linkhub",
		Name:      "click_record_seconds",
		Help:      "Latency of the transactional click write.",
		Buckets:   prom.DefBuckets,
	})

	ResolveMisses = promauto.NewCounter(prom.CounterOpts{
		Namespace: "linkhub",
		Name:      "resolve_misses_total",
		Help:      "Short-code lookups that resolved to nothing.",
	})
)
