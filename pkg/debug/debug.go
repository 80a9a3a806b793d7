// Package debug provides global verbose-output flags for the facetarget CLI.
package debug

import (
	"fmt"
	"io"
	"os"
)

// Enabled controls whether debug tracing is active
var Enabled bool

// Tracking controls per-backend detection traces (raw box counts,
// thresholds). Very verbose; enabled with -debug-detect.
var Tracking bool

// Output is where traces are written. Stdout is reserved for the layout
// and result, so traces go to stderr.
var Output io.Writer = os.Stderr

// Log prints a message only if debug mode is enabled
func Log(format string, args ...interface{}) {
	if Enabled {
		fmt.Fprintf(Output, format, args...)
	}
}

// TrackLog prints a message only if detection tracing is enabled
func TrackLog(format string, args ...interface{}) {
	if Tracking {
		fmt.Fprintf(Output, format, args...)
	}
}
