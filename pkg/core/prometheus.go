package core

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics for monitoring service.
var (
	// blockHeight prometheus metric.
	blockHeight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Help:      "Current index of mined block",
			Name:      "current_block_height",
			Namespace: "ticketsim",
		},
	)
	// processedTxs prometheus metric.
	processedTxs = prometheus.NewCounter(
		prometheus.CounterOpts{
			Help:      "Number of executed transactions",
			Name:      "processed_transactions_total",
			Namespace: "ticketsim",
		},
	)
	// failedTxs prometheus metric.
	failedTxs = prometheus.NewCounter(
		prometheus.CounterOpts{
			Help:      "Number of transactions with err result or fault",
			Name:      "failed_transactions_total",
			Namespace: "ticketsim",
		},
	)
)

func init() {
	prometheus.MustRegister(
		blockHeight,
		processedTxs,
		failedTxs,
	)
}

func updateBlockHeightMetric(bHeight uint32) {
	blockHeight.Set(float64(bHeight))
}
