package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/teslashibe/go-facetarget/internal/config"
	"github.com/teslashibe/go-facetarget/internal/log"
	"github.com/teslashibe/go-facetarget/pkg/debug"
	"github.com/teslashibe/go-facetarget/pkg/detection"
	"github.com/teslashibe/go-facetarget/pkg/selection"
)

// Exit codes.
const (
	exitOK          = 0
	exitUsage       = 1
	exitNoFaces     = 2
	exitCancelled   = 3
	exitUnavailable = 4
	exitBadCoords   = 5
)

// newOpener builds the detector opener; replaced in tests.
var newOpener = detection.NewOpener

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if err := config.LoadDotEnv(""); err != nil {
		fmt.Fprintf(stderr, "⚠️  %v\n", err)
	}

	settings, err := config.Load(configPathFromArgs(args))
	if err != nil {
		fmt.Fprintf(stderr, "❌ Configuration error: %v\n", err)
		return exitUsage
	}

	opts, err := parseFlags(args, settings, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return exitOK
	}
	if err != nil {
		fmt.Fprintf(stderr, "❌ %v\n", err)
		return exitUsage
	}
	if err := settings.Validate(); err != nil {
		fmt.Fprintf(stderr, "❌ Configuration error: %v\n", err)
		return exitUsage
	}

	debug.Enabled = opts.debug
	debug.Tracking = opts.traceDet
	level := opts.logLevel
	if opts.debug {
		level = "debug"
	}
	log.Init(stderr, level)

	mode, err := selection.ParseMode(settings.Mode)
	if err != nil {
		fmt.Fprintf(stderr, "❌ %v\n", err)
		return exitUsage
	}

	var manual *selection.Point
	if opts.coords != "" {
		p, err := selection.ParsePoint(opts.coords)
		if err != nil {
			fmt.Fprintf(stderr, "❌ %v\n", err)
			return exitBadCoords
		}
		manual = &p
	}

	if len(opts.images) == 0 && manual == nil {
		fmt.Fprintln(stderr, "❌ No image given")
		fmt.Fprintln(stderr, "Usage: facetarget [flags] <image> [image...]")
		return exitUsage
	}

	reqs, err := buildRequests(opts.images, mode, manual)
	if err != nil {
		fmt.Fprintf(stderr, "❌ %v\n", err)
		return exitUsage
	}

	// Interactive prompts and listings go to stderr when stdout carries JSON.
	console := stdout
	if opts.json {
		console = stderr
	}
	if mode == selection.ModeInteractive && manual == nil {
		warnIfNotTerminal(stdin, stderr)
	}

	resolver := selection.NewResolver(
		newOpener(settings.DetectorConfig()),
		selection.WithPolicy(settings.SelectionPolicy()),
		selection.WithPrompter(selection.NewConsolePrompter(stdin, console)),
		selection.WithOutput(console),
	)
	log.Debug("resolving", "images", len(reqs), "mode", mode, "backend", settings.Detector.Backend)

	items, err := resolveAll(ctx, resolver, reqs, mode, settings.Workers)
	if err != nil {
		fmt.Fprintf(stderr, "❌ %v\n", err)
		return exitUsage
	}

	code := exitOK
	for i, it := range items {
		if opts.annotate != "" && it.Request.Image != nil && len(it.Result.Candidates) > 0 {
			writeAnnotation(stderr, annotatePath(opts.annotate, i, len(items)), it)
		}
		if !opts.json {
			printHuman(stdout, stderr, it, mode)
		}
		if c := exitCode(it.Err); code == exitOK {
			code = c
		}
	}
	if opts.json {
		if err := writeJSON(stdout, items); err != nil {
			fmt.Fprintf(stderr, "❌ %v\n", err)
			return exitUsage
		}
	}
	return code
}

// configPathFromArgs finds -config before flags are parsed, since the file
// provides the flag defaults.
func configPathFromArgs(args []string) string {
	for i, a := range args {
		if a == "--" {
			break
		}
		name, value, hasValue := strings.Cut(strings.TrimLeft(a, "-"), "=")
		if !strings.HasPrefix(a, "-") || name != "config" {
			continue
		}
		if hasValue {
			return value
		}
		if i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}

func applyPreset(s *config.Settings, name string) error {
	p, err := selection.PolicyByName(name)
	if err != nil {
		return err
	}
	s.Preset = name
	s.SetPolicy(p)
	return nil
}

func buildRequests(paths []string, mode selection.Mode, manual *selection.Point) ([]selection.Request, error) {
	if len(paths) == 0 {
		return []selection.Request{{Mode: mode, Manual: manual}}, nil
	}

	reqs := make([]selection.Request, 0, len(paths))
	for _, p := range paths {
		req := selection.Request{Mode: mode, Manual: manual}
		if manual == nil {
			img, err := detection.LoadImage(p)
			if err != nil {
				return nil, err
			}
			req.Image = img
		}
		reqs = append(reqs, req)
	}
	return reqs, nil
}

// resolveAll runs interactive requests one after another and everything
// else as a batch.
func resolveAll(ctx context.Context, r *selection.Resolver, reqs []selection.Request, mode selection.Mode, workers int) ([]selection.BatchItem, error) {
	if mode != selection.ModeInteractive || len(reqs) == 1 {
		if len(reqs) == 1 {
			res, err := r.Resolve(ctx, reqs[0])
			return []selection.BatchItem{{Request: reqs[0], Result: res, Err: err}}, nil
		}
		return r.ResolveBatch(ctx, reqs, workers)
	}

	items := make([]selection.BatchItem, 0, len(reqs))
	for _, req := range reqs {
		if err := ctx.Err(); err != nil {
			return items, err
		}
		res, err := r.Resolve(ctx, req)
		items = append(items, selection.BatchItem{Request: req, Result: res, Err: err})
		if errors.Is(err, selection.ErrSelectionCancelled) {
			break
		}
	}
	return items, nil
}

func warnIfNotTerminal(stdin io.Reader, stderr io.Writer) {
	f, ok := stdin.(*os.File)
	if !ok {
		return
	}
	if !isatty.IsTerminal(f.Fd()) && !isatty.IsCygwinTerminal(f.Fd()) {
		fmt.Fprintln(stderr, "⚠️  stdin is not a terminal; interactive choices are read from the pipe (use -mode auto to skip prompts)")
	}
}

// exitCode maps a resolution error to the process exit status.
func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, selection.ErrNoFacesDetected):
		return exitNoFaces
	case errors.Is(err, selection.ErrSelectionCancelled):
		return exitCancelled
	case errors.Is(err, selection.ErrDetectorUnavailable):
		return exitUnavailable
	case errors.Is(err, selection.ErrInvalidManualCoordinates):
		return exitBadCoords
	default:
		return exitUsage
	}
}

func annotatePath(base string, i, n int) string {
	if n == 1 {
		return base
	}
	ext := filepath.Ext(base)
	return fmt.Sprintf("%s-%d%s", strings.TrimSuffix(base, ext), i+1, ext)
}

func writeAnnotation(stderr io.Writer, path string, it selection.BatchItem) {
	if err := selection.WriteAnnotated(path, it.Request.Image, it.Result.Candidates, it.Result.Candidate); err != nil {
		fmt.Fprintf(stderr, "⚠️  Annotation failed: %v\n", err)
		return
	}
	log.Info("annotated image written", "path", path, "image", it.Request.Image.Name())
}
