package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	InfoUpdates = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "info_service", Name: "info_updates_total", Help: "Number of info update requests by result."},
		[]string{"result"},
	)
	StaticResponses = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "info_service", Name: "static_responses_total", Help: "Number of static file responses by status code."},
		[]string{"code"},
	)
	RateLimitRejected = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "info_service", Name: "rate_limit_rejected_total", Help: "Number of requests rejected by the rate limiter."},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(InfoUpdates)
	reg.MustRegister(StaticResponses)
	reg.MustRegister(RateLimitRejected)
}
