package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ProductsCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "products_created_total",
		Help: "Total number of products created",
	})

	StockAdjustmentsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stock_adjustments_total",
		Help: "Total number of manual stock adjustments",
	})

	TicketsIssuedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tickets_issued_total",
		Help: "Total number of tickets issued",
	})

	IssuanceFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "issuance_failed_total",
		Help: "Total number of failed issuance requests",
	}, []string{"reason"})

	TicketsRedeemedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tickets_redeemed_total",
		Help: "Total number of tickets redeemed",
	})

	RedemptionsFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "redemptions_failed_total",
		Help: "Total number of failed redemption attempts",
	}, []string{"reason"})

	TicketsRefundedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tickets_refunded_total",
		Help: "Total number of tickets refunded back to stock",
	})

	IssuanceLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "issuance_latency_seconds",
		Help:    "Latency of ticket issuance transactions",
		Buckets: prometheus.DefBuckets,
	})

	RedemptionLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "redemption_latency_seconds",
		Help:    "Latency of ticket redemption operations",
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
