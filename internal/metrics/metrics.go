// Package metrics exports engine and bridge activity to Prometheus.
package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/dsaviz/dsaviz/internal/store"
)

var (
	commandsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dsaviz_commands_total",
		Help: "Store commands applied, by command and outcome",
	}, []string{"command", "outcome"})

	snapshotsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dsaviz_history_snapshots_total",
		Help: "History snapshots recorded",
	})

	historyDepth = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "dsaviz_history_depth",
		Help:    "History length after each recorded snapshot",
		Buckets: []float64{1, 5, 10, 20, 30, 40, 50},
	})

	undoRedoTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dsaviz_undo_redo_total",
		Help: "Undo and redo steps taken",
	}, []string{"direction"})

	activeSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "dsaviz_bridge_sessions",
		Help: "Open bridge sessions",
	})

	messagesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dsaviz_bridge_messages_total",
		Help: "Bridge messages received, by type",
	}, []string{"type"})

	exportDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "dsaviz_export_duration_seconds",
		Help:    "Time spent rasterizing a PNG export",
		Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
	})
)

// Outcome labels for commandsTotal.
const (
	OutcomeApplied  = "applied"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

// Observer records engine activity. It satisfies engine.Observer.
type Observer struct{}

func (Observer) CommandApplied(name string, err error) {
	commandsTotal.WithLabelValues(name, outcome(err)).Inc()
}

func (Observer) SnapshotRecorded(depth int) {
	snapshotsTotal.Inc()
	historyDepth.Observe(float64(depth))
}

func (Observer) Undone() { undoRedoTotal.WithLabelValues("undo").Inc() }
func (Observer) Redone() { undoRedoTotal.WithLabelValues("redo").Inc() }

func outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeApplied
	case errors.Is(err, store.ErrRejected):
		return OutcomeRejected
	default:
		return OutcomeError
	}
}

func SessionOpened() { activeSessions.Inc() }
func SessionClosed() { activeSessions.Dec() }

// UnknownMessage labels every message type the bridge does not accept.
const UnknownMessage = "unknown"

func MessageReceived(typ string) {
	messagesTotal.WithLabelValues(typ).Inc()
}

// ExportTimer starts timing one export; call ObserveDuration when done.
func ExportTimer() *prometheus.Timer {
	return prometheus.NewTimer(exportDuration)
}
