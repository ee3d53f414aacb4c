package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	TradeRequestsCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "trade_requests_created_total",
		Help: "Total number of trade requests created",
	})

	TradeRequestsFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "trade_requests_failed_total",
		Help: "Total number of failed trade request operations",
	}, []string{"reason"})

	TransitionsAppliedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inspection_transitions_applied_total",
		Help: "Total number of inspection status transitions applied",
	}, []string{"to"})

	TransitionsRejectedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inspection_transitions_rejected_total",
		Help: "Total number of inspection status transitions rejected",
	}, []string{"reason"})

	WriteConflictsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "trade_request_write_conflicts_total",
		Help: "Total number of optimistic-concurrency conflicts on trade request writes",
	})

	InvoiceStepsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "invoice_steps_total",
		Help: "Total number of invoice sub-workflow steps applied",
	}, []string{"status"})

	InvoiceStepsRejectedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "invoice_steps_rejected_total",
		Help: "Total number of invoice sub-workflow steps rejected",
	}, []string{"reason"})

	TransitionLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "inspection_transition_latency_seconds",
		Help:    "Latency of inspection status transitions end to end",
		Buckets: prometheus.DefBuckets,
	})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)
