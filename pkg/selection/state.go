package selection

import (
	"fmt"
	"slices"
)

// State is a step of the selection controller.
type State int

const (
	StateIdle State = iota
	StateDetecting
	StateDetectorUnavailable
	StateNoFaces
	StateSingleFace
	StateMultiFace
	StateSelected
	StateCancelled
	StateManualFallback
	StatePreview
)

var stateNames = map[State]string{
	StateIdle:                "idle",
	StateDetecting:           "detecting",
	StateDetectorUnavailable: "detector_unavailable",
	StateNoFaces:             "no_faces",
	StateSingleFace:          "single_face",
	StateMultiFace:           "multi_face",
	StateSelected:            "selected",
	StateCancelled:           "cancelled",
	StateManualFallback:      "manual_fallback",
	StatePreview:             "preview",
}

// String returns the state name.
func (s State) String() string {
	if n, ok := stateNames[s]; ok {
		return n
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// transitions lists the legal successors of every state.
var transitions = map[State][]State{
	StateIdle:       {StateDetecting, StateDetectorUnavailable, StateManualFallback},
	StateDetecting:  {StateNoFaces, StateSingleFace, StateMultiFace, StateDetectorUnavailable},
	StateSingleFace: {StateSelected, StatePreview},
	StateMultiFace:  {StateSelected, StateCancelled, StatePreview},
}

// Terminal reports whether no transition leaves s.
func (s State) Terminal() bool {
	return len(transitions[s]) == 0
}

// CanTransition reports whether s -> next is legal.
func (s State) CanTransition(next State) bool {
	return slices.Contains(transitions[s], next)
}

// machine tracks the path of one resolution.
type machine struct {
	path []State
}

func newMachine() *machine {
	return &machine{path: []State{StateIdle}}
}

func (m *machine) current() State {
	return m.path[len(m.path)-1]
}

// to moves to next, refusing illegal transitions.
func (m *machine) to(next State) error {
	if cur := m.current(); !cur.CanTransition(next) {
		return fmt.Errorf("selection: illegal transition %s -> %s", cur, next)
	}
	m.path = append(m.path, next)
	return nil
}

func (m *machine) trail() []State {
	return slices.Clone(m.path)
}
