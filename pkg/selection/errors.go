package selection

import (
	"errors"
	"fmt"
)

// Sentinel errors for the distinct failure outcomes of a resolution.
// None of them is ever replaced by a default coordinate.
var (
	// ErrNoFacesDetected is returned when detection ran but nothing survived
	// deduplication. Retry with a better image or pass manual coordinates.
	ErrNoFacesDetected = errors.New("selection: no faces detected")

	// ErrSelectionCancelled is returned when the user aborts an interactive
	// choice. Re-invoke to try again.
	ErrSelectionCancelled = errors.New("selection: cancelled")

	// ErrDetectorUnavailable is returned when the detection capability is
	// missing or failed. Only a manual override can proceed.
	ErrDetectorUnavailable = errors.New("selection: detector unavailable")

	// ErrInvalidManualCoordinates is returned for override values outside
	// [0,1]x[0,1], non-finite values or malformed text.
	ErrInvalidManualCoordinates = errors.New("selection: invalid manual coordinates")

	// ErrInvalidMode is returned for an unknown resolution mode.
	ErrInvalidMode = errors.New("selection: invalid mode")

	// ErrNoImage is returned when detection is needed but no image was given.
	ErrNoImage = errors.New("selection: image required")

	// ErrInteractiveBatch is returned when a batch contains interactive requests.
	ErrInteractiveBatch = errors.New("selection: interactive mode cannot run in a batch")
)

// StateError records the controller state a resolution ended in.
type StateError struct {
	// State is the terminal state.
	State State

	// Err is the underlying error, matchable with errors.Is.
	Err error
}

// Error implements the error interface.
func (e *StateError) Error() string {
	return fmt.Sprintf("%v (state %s)", e.Err, e.State)
}

// Unwrap returns the underlying error.
func (e *StateError) Unwrap() error {
	return e.Err
}

// StateOf returns the terminal state recorded in err, or StateIdle.
func StateOf(err error) State {
	var se *StateError
	if errors.As(err, &se) {
		return se.State
	}
	return StateIdle
}
