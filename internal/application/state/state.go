// Package state holds the top-level modes of the sandbox.
package state

// GameState represents the current mode of the sandbox
type GameState int

const (
	StateLoading GameState = iota
	StatePlaying
	StatePaused
	StateReplaying
	StateReplayDone
)

// String returns the string representation of the game state
func (s GameState) String() string {
	switch s {
	case StateLoading:
		return "Loading"
	case StatePlaying:
		return "Playing"
	case StatePaused:
		return "Paused"
	case StateReplaying:
		return "Replaying"
	case StateReplayDone:
		return "ReplayDone"
	default:
		return "Unknown"
	}
}

// Running reports whether simulation time advances in this state.
func (s GameState) Running() bool {
	return s == StatePlaying || s == StateReplaying
}

// TimeScale returns the clock scale to use in this state: scale while
// running, zero otherwise.
func (s GameState) TimeScale(scale float64) float64 {
	if !s.Running() {
		return 0
	}
	return scale
}

// Machine tracks the current state and where to go back to after a pause.
type Machine struct {
	current GameState
	resume  GameState
}

// NewMachine starts in StateLoading
func NewMachine() *Machine {
	return &Machine{current: StateLoading, resume: StatePlaying}
}

// Current returns the current state
func (m *Machine) Current() GameState {
	return m.current
}

// Set switches state. Leaving a pause this way drops the resume target.
func (m *Machine) Set(s GameState) {
	m.current = s
	if s.Running() {
		m.resume = s
	}
}

// TogglePause pauses a running state or resumes a paused one. Other
// states are left alone. It returns the new state.
func (m *Machine) TogglePause() GameState {
	switch {
	case m.current == StatePaused:
		m.current = m.resume
	case m.current.Running():
		m.resume = m.current
		m.current = StatePaused
	}
	return m.current
}
