/*
metrics.go - Prometheus instrumentation

PURPOSE:
  Counters and histograms for the ledger API, registered on the default
  registry and exposed at /metrics by the router. The engine itself stays
  uninstrumented; everything observable happens at the HTTP boundary.

METRICS:
  stockledger_events_ingested_total    Events accepted into the ledger
  stockledger_events_rejected_total    Events rejected at validation, by reason
  stockledger_statements_total         Statement queries served
  stockledger_statement_duration_seconds  Snapshot + normalize + fold latency

SEE ALSO:
  - handlers.go: Increments these
*/
package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	eventsIngested = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stockledger_events_ingested_total",
		Help: "Number of ledger events accepted and persisted.",
	})

	eventsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stockledger_events_rejected_total",
		Help: "Number of ledger events rejected at validation.",
	}, []string{"reason"})

	statementsComputed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stockledger_statements_total",
		Help: "Number of statement queries served.",
	})

	statementDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "stockledger_statement_duration_seconds",
		Help:    "Time to snapshot, normalize, and fold a statement.",
		Buckets: prometheus.DefBuckets,
	})
)
