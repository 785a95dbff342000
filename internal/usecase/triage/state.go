package triage

import (
	"go.uber.org/zap"

	"github.com/kailas-cloud/medtriage/internal/metrics"
)

// State is a step of the triage pipeline.
type State string

// Pipeline states. Failed is terminal and reachable from any state.
const (
	StateReceived   State = "received"
	StateNormalized State = "normalized"
	StateClassified State = "classified"
	StateRetrieving State = "retrieving"
	StateAggregated State = "aggregated"
	StateReported   State = "reported"
	StateFailed     State = "failed"
)

// next lists the only forward transition allowed from each state.
var next = map[State]State{
	StateReceived:   StateNormalized,
	StateNormalized: StateClassified,
	StateClassified: StateRetrieving,
	StateRetrieving: StateAggregated,
	StateAggregated: StateReported,
}

// machine tracks one request through the pipeline.
type machine struct {
	state  State
	logger *zap.Logger
}

func newMachine(logger *zap.Logger) *machine {
	return &machine{state: StateReceived, logger: logger}
}

// advance moves to the given state. Out-of-order transitions panic:
// they are programming errors, not runtime conditions.
func (m *machine) advance(to State) {
	if to != StateFailed && next[m.state] != to {
		panic("triage: invalid transition " + string(m.state) + " -> " + string(to))
	}
	m.logger.Debug("Triage state transition",
		zap.String("from", string(m.state)),
		zap.String("to", string(to)),
	)
	metrics.TriageStateTransitionsTotal.WithLabelValues(string(m.state), string(to)).Inc()
	m.state = to
}

func (m *machine) fail() { m.advance(StateFailed) }
