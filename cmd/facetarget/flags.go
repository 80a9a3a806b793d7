package main

import (
	"flag"
	"fmt"
	"io"

	"github.com/teslashibe/go-facetarget/internal/config"
	"github.com/teslashibe/go-facetarget/pkg/detection"
)

// options are the command line settings that are not part of config.Settings.
type options struct {
	configPath string
	coords     string
	annotate   string
	json       bool
	debug      bool
	traceDet   bool
	logLevel   string
	images     []string
}

// parseFlags parses args and applies explicitly set flags over s.
func parseFlags(args []string, s *config.Settings, stderr io.Writer) (options, error) {
	var opts options
	fs := flag.NewFlagSet("facetarget", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintln(stderr, "Usage: facetarget [flags] <image> [image...]")
		fmt.Fprintln(stderr, "       facetarget -coords x,y")
		fs.PrintDefaults()
	}

	fs.StringVar(&opts.configPath, "config", "", "YAML file with policy and detector settings")
	fs.StringVar(&opts.coords, "coords", "", "Manual face center x,y in [0,1] (skips detection)")
	fs.StringVar(&opts.annotate, "annotate", "", "Write a copy of the image with numbered face boxes (.png or .jpg)")
	fs.BoolVar(&opts.json, "json", false, "Print the result as JSON")
	fs.BoolVar(&opts.debug, "debug", false, "Enable verbose debug logging")
	fs.BoolVar(&opts.traceDet, "debug-detect", false, "Trace raw detector output (very verbose)")
	fs.StringVar(&opts.logLevel, "log-level", "warn", "Log level: debug, info, warn, error")

	mode := fs.String("mode", s.Mode, "Selection mode: auto, interactive, preview")
	preset := fs.String("preset", s.Preset, "Policy preset: default, strict, lenient")
	backend := fs.String("backend", s.Detector.Backend, "Detector backend: pigo, haar, yunet")
	cascade := fs.String("cascade", s.Detector.Cascade, "Cascade file (pigo or haar)")
	model := fs.String("model", s.Detector.Model, "ONNX model (yunet)")
	workers := fs.Int("workers", s.Workers, "Parallel detections for several images (0 = all CPUs)")

	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	opts.images = fs.Args()

	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	if set["backend"] {
		// Switching backend resets its tuning unless paths are given too.
		cfg, err := detection.ConfigFor(detection.Backend(*backend))
		if err != nil {
			return opts, err
		}
		s.SetDetector(cfg)
	}
	if set["cascade"] {
		s.Detector.Cascade = *cascade
	}
	if set["model"] {
		s.Detector.Model = *model
	}
	if set["mode"] {
		s.Mode = config.NormalizeMode(*mode)
	}
	if set["workers"] {
		s.Workers = *workers
	}
	if set["preset"] {
		return opts, applyPreset(s, *preset)
	}
	return opts, nil
}
