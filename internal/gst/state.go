// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package gst

import "time"

// State mirrors the GstState enumeration. Engines map their native values
// onto it so callers never depend on the engine's representation.
type State int

const (
	StateVoidPending State = 0
	StateNull        State = 1
	StateReady       State = 2
	StatePaused      State = 3
	StatePlaying     State = 4
)

func (s State) String() string {
	switch s {
	case StateVoidPending:
		return "VOID_PENDING"
	case StateNull:
		return "NULL"
	case StateReady:
		return "READY"
	case StatePaused:
		return "PAUSED"
	case StatePlaying:
		return "PLAYING"
	}
	return "UNKNOWN"
}

// Valid reports whether s is one of the known states.
func (s State) Valid() bool {
	return s >= StateVoidPending && s <= StatePlaying
}

// StateChangeReturn mirrors GstStateChangeReturn.
type StateChangeReturn int

const (
	StateChangeFailure   StateChangeReturn = 0
	StateChangeSuccess   StateChangeReturn = 1
	StateChangeAsync     StateChangeReturn = 2
	StateChangeNoPreroll StateChangeReturn = 3
)

func (r StateChangeReturn) String() string {
	switch r {
	case StateChangeFailure:
		return "FAILURE"
	case StateChangeSuccess:
		return "SUCCESS"
	case StateChangeAsync:
		return "ASYNC"
	case StateChangeNoPreroll:
		return "NO_PREROLL"
	}
	return "UNKNOWN"
}

// ClockTimeNone is the wait token for an unbounded state query.
const ClockTimeNone time.Duration = -1

// StateQuery is the triple an engine reports for a state query.
type StateQuery struct {
	Return  StateChangeReturn
	Current State
	Pending State
}

// Settled reports whether no transition is in flight.
func (q StateQuery) Settled() bool {
	return q.Pending == StateVoidPending && q.Return != StateChangeAsync
}
