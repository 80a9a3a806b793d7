// Package selection turns raw face detections into a single normalized
// lip-sync target.
//
// The pipeline is Deduplicate -> Score -> Normalize, followed by the
// Resolver state machine:
//
//	Idle -> Detecting -> NoFaces | SingleFace | MultiFace
//	SingleFace -> Selected | Preview
//	MultiFace  -> Selected | Cancelled | Preview
//	Idle -> ManualFallback                  (manual override, no detection)
//	Idle | Detecting -> DetectorUnavailable (capability missing or failed)
//
// Every failure is reported as a distinct sentinel error; the resolver
// never falls back to a default coordinate.
package selection

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/teslashibe/go-facetarget/internal/log"
	"github.com/teslashibe/go-facetarget/pkg/debug"
	"github.com/teslashibe/go-facetarget/pkg/detection"
)

// Mode is the caller's policy for resolving several faces.
type Mode string

const (
	// ModeAuto picks the highest quality face.
	ModeAuto Mode = "auto"

	// ModeInteractive shows the layout and asks the user.
	ModeInteractive Mode = "interactive"

	// ModePreview renders the candidates and stops without a target.
	ModePreview Mode = "preview"
)

// ParseMode validates a mode name.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeAuto, ModeInteractive, ModePreview:
		return m, nil
	default:
		return "", fmt.Errorf("%w: %q (want auto, interactive or preview)", ErrInvalidMode, s)
	}
}

// Kind says what produced a successful Result.
type Kind int

const (
	// KindSelected is a detected candidate, chosen automatically or by the user.
	KindSelected Kind = iota + 1

	// KindManualOverride is a caller-supplied coordinate; detection was skipped.
	KindManualOverride

	// KindPreview halted after rendering; there is no target.
	KindPreview
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindSelected:
		return "selected"
	case KindManualOverride:
		return "manual_override"
	case KindPreview:
		return "preview"
	default:
		return "unknown"
	}
}

// Request is one resolution job.
type Request struct {
	Image  *detection.Image // Required unless Manual is set
	Mode   Mode             // Defaults to ModeAuto
	Manual *Point           // Optional override; skips detection entirely
}

// Result is the outcome of a resolution. On error it still carries the
// path walked and whatever candidates were found.
type Result struct {
	ID         string      // Request ID used in logs
	Kind       Kind        // Zero on error
	Target     Point       // Valid for KindSelected and KindManualOverride
	Candidate  *Candidate  // Set for KindSelected
	Candidates []Candidate // All candidates in display order
	Layout     string      // Rendered text grid, empty without candidates
	Path       []State     // States visited, starting at StateIdle
}

// HasTarget reports whether the result carries a coordinate.
func (r Result) HasTarget() bool {
	return r.Kind == KindSelected || r.Kind == KindManualOverride
}

// State returns the terminal state.
func (r Result) State() State {
	if len(r.Path) == 0 {
		return StateIdle
	}
	return r.Path[len(r.Path)-1]
}

// Resolver runs the selection state machine. It holds no per-call state and
// is safe for concurrent use when its Prompter is.
type Resolver struct {
	open     detection.Opener
	policy   Policy
	prompter Prompter
	out      io.Writer
	logger   *slog.Logger
}

// Option is a functional option for configuring a Resolver.
type Option func(*Resolver)

// WithPolicy sets thresholds and weights.
func WithPolicy(p Policy) Option {
	return func(r *Resolver) { r.policy = p }
}

// WithPrompter sets the interactive prompter.
func WithPrompter(p Prompter) Option {
	return func(r *Resolver) { r.prompter = p }
}

// WithOutput sets where interactive mode prints the layout and listing.
func WithOutput(w io.Writer) Option {
	return func(r *Resolver) { r.out = w }
}

// WithLogger sets the structured logger. The default is the package logger
// from internal/log.
func WithLogger(l *slog.Logger) Option {
	return func(r *Resolver) { r.logger = l }
}

// NewResolver creates a resolver that opens its detector through open on
// each call that needs detection. open may be nil when only manual
// overrides will be resolved; detection then reports ErrDetectorUnavailable.
func NewResolver(open detection.Opener, opts ...Option) *Resolver {
	r := &Resolver{
		open:   open,
		policy: DefaultPolicy(),
		out:    io.Discard,
		logger: log.L(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve runs one request to a terminal state.
func (r *Resolver) Resolve(ctx context.Context, req Request) (Result, error) {
	id := uuid.NewString()
	logger := r.logger.With("request_id", id)
	m := newMachine()
	res := Result{ID: id}

	finish := func(err error) (Result, error) {
		res.Path = m.trail()
		if err != nil {
			logger.Info("face selection failed", "state", m.current(), "error", err)
			return res, &StateError{State: m.current(), Err: err}
		}
		logger.Info("face selection resolved", "state", m.current(), "kind", res.Kind, "target", res.Target)
		return res, nil
	}

	if req.Manual != nil {
		return r.resolveManual(m, &res, *req.Manual, finish)
	}

	mode := req.Mode
	if mode == "" {
		mode = ModeAuto
	}
	if _, err := ParseMode(string(mode)); err != nil {
		return finish(err)
	}
	if req.Image == nil {
		return finish(ErrNoImage)
	}
	if err := r.policy.Validate(); err != nil {
		return finish(err)
	}
	logger = logger.With("image", req.Image.Name(), "mode", mode)

	if r.open == nil {
		return r.unavailable(m, detection.ErrUnavailable, finish)
	}
	det, err := r.open()
	if err != nil {
		return r.unavailable(m, err, finish)
	}
	defer det.Close()

	if err := m.to(StateDetecting); err != nil {
		return finish(err)
	}
	raw, err := det.Detect(req.Image)
	if err != nil {
		return r.unavailable(m, err, finish)
	}

	res.Candidates = Analyze(req.Image, raw, r.policy)
	logger.Debug("detections analyzed", "raw", len(raw), "candidates", len(res.Candidates))
	debug.Log("🔍 %s: %d raw detection(s), %d after dedup\n", req.Image.Name(), len(raw), len(res.Candidates))

	switch n := len(res.Candidates); {
	case n == 0:
		if err := m.to(StateNoFaces); err != nil {
			return finish(err)
		}
		return finish(ErrNoFacesDetected)

	case n == 1:
		res.Layout = RenderLayout(res.Candidates)
		if err := m.to(StateSingleFace); err != nil {
			return finish(err)
		}
		if mode == ModePreview {
			return r.preview(m, &res, finish)
		}
		return r.selected(m, &res, res.Candidates[0], finish)

	default:
		res.Layout = RenderLayout(res.Candidates)
		if err := m.to(StateMultiFace); err != nil {
			return finish(err)
		}
		switch mode {
		case ModePreview:
			return r.preview(m, &res, finish)
		case ModeInteractive:
			return r.interactive(ctx, m, &res, finish)
		default:
			best, _ := Best(res.Candidates)
			logger.Debug("auto-selected best face", "index", best.Index, "quality", best.Quality)
			return r.selected(m, &res, best, finish)
		}
	}
}

type finishFunc func(error) (Result, error)

func (r *Resolver) resolveManual(m *machine, res *Result, p Point, finish finishFunc) (Result, error) {
	if err := ValidatePoint(p); err != nil {
		return finish(err)
	}
	if err := m.to(StateManualFallback); err != nil {
		return finish(err)
	}
	res.Kind = KindManualOverride
	res.Target = p
	return finish(nil)
}

func (r *Resolver) unavailable(m *machine, cause error, finish finishFunc) (Result, error) {
	if err := m.to(StateDetectorUnavailable); err != nil {
		return finish(err)
	}
	return finish(fmt.Errorf("%w: %w", ErrDetectorUnavailable, cause))
}

func (r *Resolver) preview(m *machine, res *Result, finish finishFunc) (Result, error) {
	if err := m.to(StatePreview); err != nil {
		return finish(err)
	}
	res.Kind = KindPreview
	return finish(nil)
}

func (r *Resolver) selected(m *machine, res *Result, c Candidate, finish finishFunc) (Result, error) {
	if err := m.to(StateSelected); err != nil {
		return finish(err)
	}
	res.Kind = KindSelected
	res.Target = c.Center
	res.Candidate = &c
	return finish(nil)
}

func (r *Resolver) interactive(ctx context.Context, m *machine, res *Result, finish finishFunc) (Result, error) {
	if r.prompter == nil {
		return finish(fmt.Errorf("selection: interactive mode needs a prompter"))
	}

	n := len(res.Candidates)
	fmt.Fprintf(r.out, "🎭 %d faces detected\n\n", n)
	fmt.Fprintln(r.out, res.Layout)
	fmt.Fprintln(r.out)
	for _, l := range Describe(res.Candidates) {
		fmt.Fprintln(r.out, l)
	}
	fmt.Fprintln(r.out, "[q] Cancel")
	fmt.Fprintln(r.out)

	choice, err := r.prompter.Choose(ctx, n)
	if err != nil {
		return finish(fmt.Errorf("prompt: %w", err))
	}
	if choice.Cancel {
		if err := m.to(StateCancelled); err != nil {
			return finish(err)
		}
		return finish(ErrSelectionCancelled)
	}

	c, ok := ByIndex(res.Candidates, choice.Index)
	if !ok {
		return finish(fmt.Errorf("selection: prompter returned index %d outside 1-%d", choice.Index, n))
	}
	fmt.Fprintf(r.out, "✅ Selected Face %d\n", c.Index)
	return r.selected(m, res, c, finish)
}
