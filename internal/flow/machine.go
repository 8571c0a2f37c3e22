// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package flow

import (
	"errors"
	"fmt"
)

// State is a step of the search, pay, view flow.
type State int

const (
	Idle State = iota
	AwaitingPayment
	Searching
	Viewing
	Claiming
	Failed
)

var stateNames = [...]string{
	Idle:            "idle",
	AwaitingPayment: "awaiting-payment",
	Searching:       "searching",
	Viewing:         "viewing",
	Claiming:        "claiming",
	Failed:          "failed",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("state(%d)", int(s))
	}
	return stateNames[s]
}

// Event drives a transition.
type Event int

const (
	SubmitSearch Event = iota
	PaymentConfirmed
	ResultsLoaded
	SelectResult
	ClaimSucceeded
	ClaimRejected
	Fail
	Reset
)

var eventNames = [...]string{
	SubmitSearch:     "submit-search",
	PaymentConfirmed: "payment-confirmed",
	ResultsLoaded:    "results-loaded",
	SelectResult:     "select-result",
	ClaimSucceeded:   "claim-succeeded",
	ClaimRejected:    "claim-rejected",
	Fail:             "fail",
	Reset:            "reset",
}

func (e Event) String() string {
	if e < 0 || int(e) >= len(eventNames) {
		return fmt.Sprintf("event(%d)", int(e))
	}
	return eventNames[e]
}

// ErrInvalidTransition is wrapped by every TransitionError.
var ErrInvalidTransition = errors.New("invalid flow transition")

// TransitionError reports an event fired in a state that does not accept it.
type TransitionError struct {
	From  State
	Event Event
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot %s while %s", e.Event, e.From)
}

func (e *TransitionError) Unwrap() error { return ErrInvalidTransition }

// transitions is the single transition table. Fail is handled separately
// because every state but Failed accepts it.
var transitions = map[State]map[Event]State{
	Idle: {
		SubmitSearch: AwaitingPayment,
	},
	AwaitingPayment: {
		SubmitSearch:     AwaitingPayment,
		PaymentConfirmed: Searching,
	},
	Searching: {
		ResultsLoaded: Viewing,
	},
	Viewing: {
		SelectResult: Claiming,
		SubmitSearch: AwaitingPayment,
	},
	Claiming: {
		ClaimSucceeded: Viewing,
		ClaimRejected:  Viewing,
	},
	Failed: {
		Reset: Idle,
	},
}

// Machine holds the current state and the error that moved it to Failed.
type Machine struct {
	state State
	cause error
}

// NewMachine returns a machine in initial.
func NewMachine(initial State) *Machine {
	return &Machine{state: initial}
}

// State returns the current state.
func (m *Machine) State() State { return m.state }

// Cause returns the error recorded by the last Fail, or nil.
func (m *Machine) Cause() error { return m.cause }

// Can reports whether ev is accepted in the current state.
func (m *Machine) Can(ev Event) bool {
	_, ok := m.next(ev)
	return ok
}

// Fire applies ev and returns the new state.
func (m *Machine) Fire(ev Event) (State, error) {
	next, ok := m.next(ev)
	if !ok {
		return m.state, &TransitionError{From: m.state, Event: ev}
	}
	if ev == Reset {
		m.cause = nil
	}
	m.state = next
	return next, nil
}

// Failure moves the machine to Failed, records cause, and returns cause.
// Calling it while already Failed keeps the first cause.
func (m *Machine) Failure(cause error) error {
	if m.state != Failed {
		m.state = Failed
		m.cause = cause
	}
	return cause
}

func (m *Machine) next(ev Event) (State, bool) {
	if ev == Fail {
		return Failed, m.state != Failed
	}
	next, ok := transitions[m.state][ev]
	return next, ok
}
