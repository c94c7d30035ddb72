package app

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Sex inference sources.
const (
	SourceTitle    = "title"
	SourceCache    = "cache"
	SourceLookup   = "lookup"
	SourceFallback = "fallback"
)

// Metrics holds the business counters of the quote use cases.
type Metrics struct {
	QuotesCreated      prometheus.Counter
	ValidationFailures prometheus.Counter
	SexInference       *prometheus.CounterVec
	EventsPublished    *prometheus.CounterVec
}

// NewMetrics registers the counters with reg.
// A nil reg uses the default Prometheus registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	factory := promauto.With(reg)

	return &Metrics{
		QuotesCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "quotes_created_total",
			Help: "Total number of quotes priced and stored",
		}),
		ValidationFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "quote_validation_failures_total",
			Help: "Total number of quote requests rejected by validation",
		}),
		SexInference: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "sex_inference_total",
			Help: "Sex codes resolved from names, by source",
		}, []string{"source"}),
		EventsPublished: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "quote_events_published_total",
			Help: "Quote events handed to the publisher, by result",
		}, []string{"result"}),
	}
}
