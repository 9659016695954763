package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// LedgersRegistered tracks how many ledger handles the registry built
	LedgersRegistered = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "connector_ledgers_registered",
			Help: "Number of ledger plugin handles built at startup",
		},
	)

	// LedgersConnected tracks how many handles currently report connected
	LedgersConnected = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "connector_ledgers_connected",
			Help: "Number of ledger plugin handles currently connected",
		},
	)

	// LedgersHealthy is 1 when every registered handle reports connected
	LedgersHealthy = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "connector_ledgers_healthy",
			Help: "Whether all registered ledger handles are connected (1) or not (0)",
		},
	)
)
