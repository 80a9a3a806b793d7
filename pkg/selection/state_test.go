package selection

import (
	"errors"
	"fmt"
	"testing"
)

func TestState_Transitions(t *testing.T) {
	legal := []struct{ from, to State }{
		{StateIdle, StateDetecting},
		{StateIdle, StateManualFallback},
		{StateIdle, StateDetectorUnavailable},
		{StateDetecting, StateDetectorUnavailable},
		{StateDetecting, StateNoFaces},
		{StateDetecting, StateSingleFace},
		{StateDetecting, StateMultiFace},
		{StateSingleFace, StateSelected},
		{StateSingleFace, StatePreview},
		{StateMultiFace, StateSelected},
		{StateMultiFace, StateCancelled},
		{StateMultiFace, StatePreview},
	}
	for _, tr := range legal {
		if !tr.from.CanTransition(tr.to) {
			t.Errorf("%s -> %s should be legal", tr.from, tr.to)
		}
	}

	illegal := []struct{ from, to State }{
		{StateIdle, StateSelected},
		{StateSingleFace, StateCancelled},
		{StateNoFaces, StateManualFallback},
		{StateSelected, StateDetecting},
		{StateDetectorUnavailable, StateManualFallback},
	}
	for _, tr := range illegal {
		if tr.from.CanTransition(tr.to) {
			t.Errorf("%s -> %s should be illegal", tr.from, tr.to)
		}
	}
}

func TestState_Terminal(t *testing.T) {
	terminal := []State{StateNoFaces, StateSelected, StateCancelled, StateManualFallback, StateDetectorUnavailable, StatePreview}
	for _, s := range terminal {
		if !s.Terminal() {
			t.Errorf("%s should be terminal", s)
		}
	}
	for _, s := range []State{StateIdle, StateDetecting, StateSingleFace, StateMultiFace} {
		if s.Terminal() {
			t.Errorf("%s should not be terminal", s)
		}
	}
}

func TestState_String(t *testing.T) {
	if got := StateManualFallback.String(); got != "manual_fallback" {
		t.Errorf("got %q", got)
	}
	if got := State(99).String(); got != "state(99)" {
		t.Errorf("got %q", got)
	}
}

func TestMachine(t *testing.T) {
	m := newMachine()
	if err := m.to(StateDetecting); err != nil {
		t.Fatalf("to detecting: %v", err)
	}
	if err := m.to(StateSelected); err == nil {
		t.Error("detecting -> selected accepted")
	}
	if m.current() != StateDetecting {
		t.Errorf("current: got %s after rejected transition", m.current())
	}

	trail := m.trail()
	trail[0] = StatePreview
	if m.path[0] != StateIdle {
		t.Error("trail aliases the machine's path")
	}
}

func TestStateError(t *testing.T) {
	err := fmt.Errorf("resolve: %w", &StateError{State: StateNoFaces, Err: ErrNoFacesDetected})

	if !errors.Is(err, ErrNoFacesDetected) {
		t.Error("errors.Is failed through StateError")
	}
	if got := StateOf(err); got != StateNoFaces {
		t.Errorf("StateOf: got %s", got)
	}
	if got := StateOf(errors.New("plain")); got != StateIdle {
		t.Errorf("StateOf plain error: got %s", got)
	}
}
