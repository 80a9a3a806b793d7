package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teslashibe/go-facetarget/pkg/detection"
	"github.com/teslashibe/go-facetarget/pkg/selection"
)

type runResult struct {
	code   int
	stdout string
	stderr string
}

func runCLI(t *testing.T, stdin string, args ...string) runResult {
	t.Helper()
	var out, errOut bytes.Buffer
	code := run(context.Background(), args, strings.NewReader(stdin), &out, &errOut)
	return runResult{code: code, stdout: out.String(), stderr: errOut.String()}
}

// withDetections replaces the detector with a mock for the test.
func withDetections(t *testing.T, dets ...detection.RawDetection) *detection.Mock {
	t.Helper()
	mock := detection.NewMock(dets...)
	prev := newOpener
	newOpener = func(detection.Config) detection.Opener { return mock.Opener() }
	t.Cleanup(func() { newOpener = prev })
	return mock
}

func writePNG(t *testing.T, name string, w, h int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, image.NewGray(image.Rect(0, 0, w, h))))
	return path
}

func face(x, y, w, h float64) detection.RawDetection {
	return detection.RawDetection{Box: detection.Box{X: x, Y: y, W: w, H: h}, Confidence: 0.9}
}

func TestRun_ManualCoordinates(t *testing.T) {
	mock := withDetections(t)

	r := runCLI(t, "", "-coords", "0.5,0.4")

	assert.Equal(t, exitOK, r.code, r.stderr)
	assert.Contains(t, r.stdout, "🎯 Use: --bounding-box 0.500,0.400")
	assert.Zero(t, mock.CallCount("Open"))
}

func TestRun_InvalidCoordinates(t *testing.T) {
	for _, coords := range []string{"1.5,0.5", "abc", "NaN,0.1"} {
		r := runCLI(t, "", "-coords", coords)
		assert.Equal(t, exitBadCoords, r.code, coords)
	}
}

func TestRun_Usage(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"no image", nil},
		{"bad mode", []string{"-mode", "click", "x.png"}},
		{"bad backend", []string{"-backend", "dlib", "x.png"}},
		{"bad preset", []string{"-preset", "fast", "x.png"}},
		{"unknown flag", []string{"-nope"}},
		{"missing image", []string{"-mode", "auto", "/nonexistent/face.png"}},
		{"missing config", []string{"-config", "/nonexistent/facetarget.yaml", "-coords", "0.5,0.5"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := runCLI(t, "", tc.args...)
			assert.Equal(t, exitUsage, r.code, r.stderr)
		})
	}
}

func TestRun_SingleFace(t *testing.T) {
	withDetections(t, face(100, 100, 50, 50))
	img := writePNG(t, "one.png", 200, 200)

	r := runCLI(t, "", img)

	assert.Equal(t, exitOK, r.code, r.stderr)
	assert.Contains(t, r.stdout, "🎭 DETECTED FACES")
	assert.Contains(t, r.stdout, "✅ One face detected - using automatically")
	assert.Contains(t, r.stdout, "📍 Coordinates: 0.625,0.625")
	assert.NotContains(t, r.stdout, "Selected Face")
	assert.Contains(t, r.stdout, "🎯 Use: --bounding-box 0.625,0.625")
}

func TestRun_InteractiveChoice(t *testing.T) {
	withDetections(t, face(20, 80, 40, 40), face(140, 80, 40, 40))
	img := writePNG(t, "two.png", 200, 200)

	r := runCLI(t, "2\n", img)

	assert.Equal(t, exitOK, r.code, r.stderr)
	assert.Contains(t, r.stdout, "Choose face (1-2): ")
	assert.Contains(t, r.stdout, "✅ Selected Face 2\n📍 Coordinates: 0.800,0.500")
	assert.Contains(t, r.stdout, "🎯 Use: --bounding-box 0.800,0.500")
	assert.Equal(t, 1, strings.Count(r.stdout, "🎭 DETECTED FACES"))
}

func TestRun_ModeIgnoresCase(t *testing.T) {
	withDetections(t, face(20, 80, 40, 40), face(140, 80, 40, 40))
	img := writePNG(t, "two.png", 200, 200)

	r := runCLI(t, "", "-mode", "AUTO", img)

	assert.Equal(t, exitOK, r.code, r.stderr)
	assert.Contains(t, r.stdout, "✅ Selected Face")
	assert.Contains(t, r.stdout, "📍 Coordinates: ")
	assert.NotContains(t, r.stdout, "Choose face")
}

func TestRun_InteractiveCancel(t *testing.T) {
	withDetections(t, face(20, 80, 40, 40), face(140, 80, 40, 40))
	img := writePNG(t, "two.png", 200, 200)

	r := runCLI(t, "q\n", img)

	assert.Equal(t, exitCancelled, r.code)
	assert.Contains(t, r.stderr, "🚫 Selection cancelled")
	assert.NotContains(t, r.stdout, "--bounding-box")
}

func TestRun_NoFaces(t *testing.T) {
	withDetections(t)
	img := writePNG(t, "empty.png", 120, 80)

	r := runCLI(t, "", "-mode", "auto", img)

	assert.Equal(t, exitNoFaces, r.code)
	assert.Contains(t, r.stderr, "❌ No faces detected in empty.png")
	assert.Contains(t, r.stderr, "-coords x,y")
}

func TestRun_DetectorUnavailable(t *testing.T) {
	img := writePNG(t, "one.png", 64, 64)

	r := runCLI(t, "", "-mode", "auto", "-cascade", "/nonexistent/facefinder", img)

	assert.Equal(t, exitUnavailable, r.code)
	assert.Contains(t, r.stderr, "Face detection unavailable")
}

func TestRun_Preview(t *testing.T) {
	withDetections(t, face(20, 80, 40, 40), face(140, 80, 40, 40))
	img := writePNG(t, "two.png", 200, 200)

	r := runCLI(t, "", "-mode", "preview", img)

	assert.Equal(t, exitOK, r.code, r.stderr)
	assert.Contains(t, r.stdout, "[1] Left person")
	assert.Contains(t, r.stdout, "👀 Preview only")
	assert.NotContains(t, r.stdout, "--bounding-box")
}

func TestRun_JSON(t *testing.T) {
	withDetections(t, face(100, 100, 50, 50))
	img := writePNG(t, "one.png", 200, 200)

	r := runCLI(t, "", "-json", "-mode", "auto", img)

	require.Equal(t, exitOK, r.code, r.stderr)
	var rep report
	require.NoError(t, jsoniter.UnmarshalFromString(r.stdout, &rep))
	assert.Equal(t, "one.png", rep.Image)
	assert.Equal(t, "selected", rep.Kind)
	assert.Equal(t, "selected", rep.State)
	assert.Equal(t, "0.625,0.625", rep.BoundingBox)
	assert.Equal(t, 1, rep.Chosen)
	assert.Len(t, rep.Candidates, 1)
	assert.NotEmpty(t, rep.ID)
}

func TestRun_JSONBatch(t *testing.T) {
	withDetections(t, face(100, 100, 50, 50))
	a := writePNG(t, "a.png", 200, 200)
	b := writePNG(t, "b.png", 200, 200)

	r := runCLI(t, "", "-json", "-mode", "auto", "-workers", "2", a, b)

	require.Equal(t, exitOK, r.code, r.stderr)
	var reps []report
	require.NoError(t, jsoniter.UnmarshalFromString(r.stdout, &reps))
	require.Len(t, reps, 2)
	assert.Equal(t, "a.png", reps[0].Image)
	assert.Equal(t, "b.png", reps[1].Image)
}

func TestRun_Annotate(t *testing.T) {
	withDetections(t, face(100, 100, 50, 50))
	img := writePNG(t, "one.png", 200, 200)
	out := filepath.Join(t.TempDir(), "annotated.png")

	r := runCLI(t, "", "-mode", "auto", "-annotate", out, img)

	require.Equal(t, exitOK, r.code, r.stderr)
	_, err := os.Stat(out)
	assert.NoError(t, err)
}

func TestRun_ConfigFile(t *testing.T) {
	withDetections(t, face(20, 80, 40, 40), face(140, 80, 40, 40))
	img := writePNG(t, "two.png", 200, 200)
	cfg := filepath.Join(t.TempDir(), "facetarget.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("mode: preview\n"), 0o644))

	r := runCLI(t, "", "-config="+cfg, img)

	assert.Equal(t, exitOK, r.code, r.stderr)
	assert.Contains(t, r.stdout, "👀 Preview only")
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		err  error
		code int
	}{
		{nil, exitOK},
		{&selection.StateError{State: selection.StateNoFaces, Err: selection.ErrNoFacesDetected}, exitNoFaces},
		{selection.ErrSelectionCancelled, exitCancelled},
		{fmt.Errorf("%w: %w", selection.ErrDetectorUnavailable, detection.ErrUnavailable), exitUnavailable},
		{selection.ErrInvalidManualCoordinates, exitBadCoords},
		{errors.New("disk full"), exitUsage},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.code, exitCode(tc.err), "%v", tc.err)
	}
}

func TestConfigPathFromArgs(t *testing.T) {
	tests := []struct {
		args []string
		want string
	}{
		{nil, ""},
		{[]string{"-config", "a.yaml", "img.png"}, "a.yaml"},
		{[]string{"--config=b.yaml"}, "b.yaml"},
		{[]string{"img.png", "--", "-config", "c.yaml"}, ""},
		{[]string{"-config"}, ""},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, configPathFromArgs(tc.args), "%v", tc.args)
	}
}

func TestAnnotatePath(t *testing.T) {
	assert.Equal(t, "out.png", annotatePath("out.png", 0, 1))
	assert.Equal(t, "out-2.png", annotatePath("out.png", 1, 3))
	assert.Equal(t, "dir/out-1.jpg", annotatePath("dir/out.jpg", 0, 2))
}
