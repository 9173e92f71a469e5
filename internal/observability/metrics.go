// README: Prometheus collectors for routing, cascade and HTTP traffic.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "codrive"

var (
	RoutingRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "routing_requests_total", Help: "Routing service calls by provider and outcome"},
		[]string{"provider", "outcome"},
	)
	RoutingLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "routing_latency_seconds",
			Help:      "Routing service latency",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"provider"},
	)
	RouteCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "route_cache_lookups_total", Help: "Route cache lookups by result"},
		[]string{"result"},
	)

	CascadeRecomputations = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "cascade_recomputations_total", Help: "Pending request recomputations after a route commit"},
		[]string{"outcome"},
	)
	RouteCommits = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "route_commits_total", Help: "Committed ride route changes by cause"},
		[]string{"cause"},
	)
	JoinRequestTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "join_request_transitions_total", Help: "Join request state transitions"},
		[]string{"from", "to"},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "http_requests_total", Help: "Total HTTP requests handled"},
		[]string{"method", "path", "status"},
	)
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency distribution",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
