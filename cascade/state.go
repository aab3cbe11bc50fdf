package cascade

import (
	"fmt"
	"slices"
)

// State is a step of a cascading delete.
type State string

const (
	StateRequested           State = "requested"
	StateValidating          State = "validating"
	StateRejected            State = "rejected"
	StateCollecting          State = "collecting"
	StateTransactionBuilding State = "transaction_building"
	StateCommitting          State = "committing"
	StateCommitted           State = "committed"
	StateFailed              State = "failed"
)

// transitions is the complete delete lifecycle. Storage cleanup runs
// alongside Committing and does not have a state of its own.
var transitions = map[State][]State{
	StateRequested:           {StateValidating},
	StateValidating:          {StateCollecting, StateRejected},
	StateCollecting:          {StateTransactionBuilding, StateRejected, StateFailed},
	StateTransactionBuilding: {StateCommitting, StateFailed},
	StateCommitting:          {StateCommitted, StateFailed},
}

func (s State) CanTransition(to State) bool {
	return slices.Contains(transitions[s], to)
}

func (s State) Terminal() bool {
	return len(transitions[s]) == 0
}

// Tracker records the states a delete passes through.
type Tracker struct {
	trace []State
}

func NewTracker() *Tracker {
	return &Tracker{trace: []State{StateRequested}}
}

func (t *Tracker) State() State {
	return t.trace[len(t.trace)-1]
}

func (t *Tracker) Trace() []State {
	return slices.Clone(t.trace)
}

// To advances to next, refusing transitions the lifecycle does not allow.
func (t *Tracker) To(next State) error {
	cur := t.State()
	if !cur.CanTransition(next) {
		return fmt.Errorf("cascade: invalid transition %s -> %s", cur, next)
	}
	t.trace = append(t.trace, next)
	return nil
}
