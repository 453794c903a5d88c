package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WalletChecks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "xterio_wallet_checks_total",
		Help: "Wallet checks by outcome and error kind",
	}, []string{"outcome", "kind"})

	StageResults = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "xterio_stage_requests_total",
		Help: "Remote protocol calls by stage and outcome",
	}, []string{"stage", "outcome"})

	StageLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "xterio_stage_latency_seconds",
		Help:    "Remote protocol call latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"stage"})

	PointsTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "xterio_points_total",
		Help: "Running sum of points across successful wallets",
	})

	StatusLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "xterio_status_request_latency_seconds",
		Help:    "Status server request latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"path"})
)
