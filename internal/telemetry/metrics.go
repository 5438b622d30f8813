// Package telemetry exposes the swarmlist replica's statistics as
// Prometheus metrics. Grounded nearly verbatim in shape on the
// teacher's own internal/telemetry/metrics.go (its own Registry,
// promhttp.HandlerFor, CounterVec/GaugeVec), re-labeled from HTTP
// request statistics to swarmlist gossip statistics.
package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	Registry = prometheus.NewRegistry()

	Size = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "swarmlist",
			Name:      "size",
			Help:      "Total number of entries known to a replica, active or not.",
		},
		[]string{"robot_id"},
	)

	NumActive = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "swarmlist",
			Name:      "num_active",
			Help:      "Number of entries a replica currently considers active.",
		},
		[]string{"robot_id"},
	)

	// MsgsTx/MsgsRx/MalformedPackets mirror the replica's own
	// monotonic counters (Gauge, not Counter: the replica is the
	// source of truth for the running total, telemetry just Sets the
	// latest value rather than incrementing independently).
	MsgsTx = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "swarmlist",
			Name:      "msgs_tx_total",
			Help:      "Gossip packets transmitted since the beginning of the experiment.",
		},
		[]string{"robot_id"},
	)

	MsgsRx = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "swarmlist",
			Name:      "msgs_rx_total",
			Help:      "Gossip packets received since the beginning of the experiment.",
		},
		[]string{"robot_id"},
	)

	MalformedPackets = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "swarmlist",
			Name:      "malformed_packets_total",
			Help:      "Received packets dropped for being unparseable.",
		},
		[]string{"robot_id"},
	)

	HighestTTI = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "swarmlist",
			Name:      "highest_tti",
			Help:      "Highest time-to-inactive observed on any entry immediately before an update reset it.",
		},
		[]string{"robot_id"},
	)

	AverageTTI = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "swarmlist",
			Name:      "average_tti",
			Help:      "Mean time-to-inactive observed across every update so far.",
		},
		[]string{"robot_id"},
	)

	GlobalActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "swarmlist",
			Name:      "global_active_entries",
			Help:      "Sum, over every replica in this process, of the number of active entries.",
		},
	)
)

func init() {
	Registry.MustRegister(Size, NumActive, MsgsTx, MsgsRx, MalformedPackets, HighestTTI, AverageTTI, GlobalActive)
}

// MetricsHandler exposes /metrics. Mount it with mux.Handle("/metrics", telemetry.MetricsHandler()).
func MetricsHandler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// Snapshot is the subset of a replica's observation surface that
// Report needs. pkg/replica.Replica satisfies this without this
// package needing to import pkg/replica, keeping the dependency
// direction app -> telemetry -> (caller-supplied interface).
type Snapshot interface {
	Size() int
	NumActive() int64
	NumMsgsTx() uint64
	NumMsgsRx() uint64
	NumMalformed() uint64
	HighestTTI() uint32
	AverageTTI() float64
}

// GlobalActiveReader is the read side of internal/accounting.GlobalActive,
// named separately here so this package doesn't need to import
// internal/accounting just to read one number.
type GlobalActiveReader interface {
	Total() int64
}

// Report publishes one replica's current statistics under the given
// robot id label. Call it after every ControlStep, or on a scrape-time
// ticker.
func Report(robotID string, r Snapshot, global GlobalActiveReader) {
	Size.WithLabelValues(robotID).Set(float64(r.Size()))
	NumActive.WithLabelValues(robotID).Set(float64(r.NumActive()))
	MsgsTx.WithLabelValues(robotID).Set(float64(r.NumMsgsTx()))
	MsgsRx.WithLabelValues(robotID).Set(float64(r.NumMsgsRx()))
	MalformedPackets.WithLabelValues(robotID).Set(float64(r.NumMalformed()))
	HighestTTI.WithLabelValues(robotID).Set(float64(r.HighestTTI()))
	AverageTTI.WithLabelValues(robotID).Set(r.AverageTTI())

	if global != nil {
		GlobalActive.Set(float64(global.Total()))
	}
}
