// Package metrics defines the Prometheus metrics of the guest wallet and the
// reference issuer. All metrics register with the default registry on import.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "guest_wallet"

// IssuerRequestsTotal counts issuer client calls.
// Labels:
//   - op: add_key, has_access_key, delete_access_keys
//   - result: ok, rejected, unreachable, status
var IssuerRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "issuer_requests_total",
		Help:      "Total number of issuer service calls, by operation and result.",
	},
	[]string{"op", "result"},
)

// IssuerRequestDuration measures issuer round-trips.
var IssuerRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "issuer_request_duration_seconds",
		Help:      "Duration of issuer service calls.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"op"},
)

// ContractCallsTotal counts contract invocations.
// Labels:
//   - method: contract method name
//   - kind: "ok" or the error kind (transport, limit_exceeded, ...)
var ContractCallsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "contract_calls_total",
		Help:      "Total number of contract calls, by method and outcome.",
	},
	[]string{"method", "kind"},
)

// ContractCallDuration measures contract calls; change calls wait for finality.
var ContractCallDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "contract_call_duration_seconds",
		Help:      "Duration of contract calls.",
		Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
	},
	[]string{"method"},
)

// SessionTransitionsTotal counts guest session state changes.
var SessionTransitionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_transitions_total",
		Help:      "Total number of guest session state transitions.",
	},
	[]string{"from", "to"},
)

// IssuedKeysTotal counts decisions of the reference issuer.
// Labels:
//   - endpoint: add_key, has_access_key, delete_access_keys
//   - result: ok, rejected, ineligible, rate_limited, bad_request, error
var IssuedKeysTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "issuer_decisions_total",
		Help:      "Total number of reference issuer decisions, by endpoint and result.",
	},
	[]string{"endpoint", "result"},
)
