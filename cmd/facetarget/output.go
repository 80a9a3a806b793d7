package main

import (
	"errors"
	"fmt"
	"io"

	jsoniter "github.com/json-iterator/go"

	"github.com/teslashibe/go-facetarget/pkg/selection"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// report is the JSON form of one resolution.
type report struct {
	ID          string                `json:"id"`
	Image       string                `json:"image,omitempty"`
	Kind        string                `json:"kind,omitempty"`
	State       string                `json:"state"`
	Target      *selection.Point      `json:"target,omitempty"`
	BoundingBox string                `json:"bounding_box,omitempty"`
	Chosen      int                   `json:"chosen,omitempty"`
	Candidates  []selection.Candidate `json:"candidates"`
	Error       string                `json:"error,omitempty"`
	ExitCode    int                   `json:"exit_code"`
}

func newReport(it selection.BatchItem) report {
	r := report{
		ID:         it.Result.ID,
		State:      it.Result.State().String(),
		Candidates: it.Result.Candidates,
		ExitCode:   exitCode(it.Err),
	}
	if r.Candidates == nil {
		r.Candidates = []selection.Candidate{}
	}
	if it.Request.Image != nil {
		r.Image = it.Request.Image.Name()
	}
	if it.Result.Kind != 0 {
		r.Kind = it.Result.Kind.String()
	}
	if it.Result.HasTarget() {
		t := it.Result.Target
		r.Target = &t
		r.BoundingBox = t.String()
	}
	if it.Result.Candidate != nil {
		r.Chosen = it.Result.Candidate.Index
	}
	if it.Err != nil {
		r.Error = it.Err.Error()
	}
	return r
}

// writeJSON prints one object for a single result, an array otherwise.
func writeJSON(w io.Writer, items []selection.BatchItem) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	if len(items) == 1 {
		return enc.Encode(newReport(items[0]))
	}
	reports := make([]report, len(items))
	for i, it := range items {
		reports[i] = newReport(it)
	}
	return enc.Encode(reports)
}

// printHuman writes the console summary. Interactive multi-face results
// already showed the layout while prompting.
func printHuman(stdout, stderr io.Writer, it selection.BatchItem, mode selection.Mode) {
	res := it.Result
	name := "input"
	if it.Request.Image != nil {
		name = it.Request.Image.Name()
	}

	prompted := mode == selection.ModeInteractive && len(res.Candidates) > 1
	if res.Layout != "" && !prompted {
		fmt.Fprintf(stdout, "📷 %s\n", name)
		fmt.Fprintln(stdout, res.Layout)
		fmt.Fprintln(stdout)
		for _, l := range selection.Describe(res.Candidates) {
			fmt.Fprintln(stdout, l)
		}
		fmt.Fprintln(stdout)
	}

	switch {
	case it.Err != nil:
		printFailure(stderr, name, it.Err)
	case res.Kind == selection.KindPreview:
		fmt.Fprintf(stdout, "👀 Preview only: %d face(s), nothing selected\n", len(res.Candidates))
	case res.Kind == selection.KindManualOverride:
		fmt.Fprintf(stdout, "📍 Using manual coordinates (%.3f, %.3f)\n", res.Target.X, res.Target.Y)
		fmt.Fprintf(stdout, "🎯 Use: --bounding-box %s\n", res.Target)
	case res.Candidate != nil:
		c := res.Candidate
		switch {
		case prompted:
		case len(res.Candidates) == 1:
			fmt.Fprintln(stdout, "✅ One face detected - using automatically")
		default:
			fmt.Fprintf(stdout, "✅ Selected Face %d: %s\n", c.Index, selection.Position(c.Index, len(res.Candidates)))
		}
		fmt.Fprintf(stdout, "📍 Coordinates: %s\n", res.Target)
		fmt.Fprintf(stdout, "🎯 Use: --bounding-box %s\n", res.Target)
	}
}

func printFailure(w io.Writer, name string, err error) {
	switch {
	case errors.Is(err, selection.ErrNoFacesDetected):
		fmt.Fprintf(w, "❌ No faces detected in %s\n", name)
		fmt.Fprintln(w, "💡 Try: better lighting, face closer to camera, frontal angle")
		fmt.Fprintln(w, "💡 Or use manual coordinates: -coords x,y")
	case errors.Is(err, selection.ErrSelectionCancelled):
		fmt.Fprintln(w, "🚫 Selection cancelled")
	case errors.Is(err, selection.ErrDetectorUnavailable):
		fmt.Fprintf(w, "❌ Face detection unavailable: %v\n", err)
		fmt.Fprintln(w, "💡 Use manual coordinates: -coords x,y")
	default:
		fmt.Fprintf(w, "❌ %s: %v\n", name, err)
	}
}
