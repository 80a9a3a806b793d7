// Package config resolves facetarget settings from defaults, an optional
// YAML file and FACETARGET_* environment variables.
package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/teslashibe/go-facetarget/pkg/detection"
	"github.com/teslashibe/go-facetarget/pkg/selection"
)

// Settings is the resolved configuration of one run.
type Settings struct {
	Mode     string           `mapstructure:"mode" validate:"oneof=auto interactive preview"`
	Preset   string           `mapstructure:"preset" validate:"oneof=default strict lenient"`
	Workers  int              `mapstructure:"workers" validate:"gte=0,lte=256"`
	Policy   PolicySettings   `mapstructure:"policy"`
	Detector DetectorSettings `mapstructure:"detector"`
}

// PolicySettings mirrors selection.Policy.
type PolicySettings struct {
	IoUThreshold     float64 `mapstructure:"iou_threshold" validate:"gt=0,lte=1"`
	SizeWeight       float64 `mapstructure:"size_weight" validate:"gte=0"`
	SharpnessWeight  float64 `mapstructure:"sharpness_weight" validate:"gte=0"`
	CentralityWeight float64 `mapstructure:"centrality_weight" validate:"gte=0"`
	SizeScale        float64 `mapstructure:"size_scale" validate:"gt=0"`
	SharpnessScale   float64 `mapstructure:"sharpness_scale" validate:"gt=0"`
}

// DetectorSettings mirrors detection.Config.
type DetectorSettings struct {
	Backend      string  `mapstructure:"backend" validate:"oneof=pigo haar yunet"`
	Cascade      string  `mapstructure:"cascade"`
	Model        string  `mapstructure:"model"`
	Confidence   float64 `mapstructure:"confidence" validate:"gte=0,lte=1"`
	MinSize      int     `mapstructure:"min_size" validate:"gte=1"`
	MaxSize      int     `mapstructure:"max_size" validate:"gtefield=MinSize"`
	ScaleFactor  float64 `mapstructure:"scale_factor" validate:"gt=1"`
	ShiftFactor  float64 `mapstructure:"shift_factor" validate:"gt=0,lte=1"`
	MinNeighbors int     `mapstructure:"min_neighbors" validate:"gte=0"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Load resolves settings. path may be empty to skip the YAML file.
// Precedence, lowest first: backend and preset defaults, file, environment.
func Load(path string) (*Settings, error) {
	v := viper.New()
	if err := bindEnv(v); err != nil {
		return nil, err
	}

	v.SetDefault("mode", string(selection.ModeInteractive))
	v.SetDefault("preset", "default")
	v.SetDefault("workers", 0)
	v.SetDefault("detector.backend", string(detection.BackendPigo))

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Remaining defaults depend on the chosen backend and preset.
	setDefaults(v, v.GetString("detector.backend"), v.GetString("preset"))

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	s.Mode = NormalizeMode(s.Mode)
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// NormalizeMode lowercases a mode name the way selection.ParseMode reads it.
func NormalizeMode(mode string) string {
	return strings.ToLower(strings.TrimSpace(mode))
}

// Default returns settings built only from defaults.
func Default() *Settings {
	s := &Settings{
		Mode:   string(selection.ModeInteractive),
		Preset: "default",
	}
	s.SetPolicy(selection.DefaultPolicy())
	s.SetDetector(detection.DefaultConfig())
	return s
}

func setDefaults(v *viper.Viper, backend, preset string) {
	det, err := detection.ConfigFor(detection.Backend(backend))
	if err != nil {
		det = detection.DefaultConfig() // Validation reports the bad backend
	}
	v.SetDefault("detector.cascade", det.CascadePath)
	v.SetDefault("detector.model", det.ModelPath)
	v.SetDefault("detector.confidence", det.ConfidenceThresh)
	v.SetDefault("detector.min_size", det.MinSize)
	v.SetDefault("detector.max_size", det.MaxSize)
	v.SetDefault("detector.scale_factor", det.ScaleFactor)
	v.SetDefault("detector.shift_factor", det.ShiftFactor)
	v.SetDefault("detector.min_neighbors", det.MinNeighbors)

	pol, err := selection.PolicyByName(preset)
	if err != nil {
		pol = selection.DefaultPolicy()
	}
	v.SetDefault("policy.iou_threshold", pol.IoUThreshold)
	v.SetDefault("policy.size_weight", pol.SizeWeight)
	v.SetDefault("policy.sharpness_weight", pol.SharpnessWeight)
	v.SetDefault("policy.centrality_weight", pol.CentralityWeight)
	v.SetDefault("policy.size_scale", pol.SizeScale)
	v.SetDefault("policy.sharpness_scale", pol.SharpnessScale)
}

// Validate checks field constraints and the combined policy.
func (s *Settings) Validate() error {
	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if err := s.SelectionPolicy().Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// SelectionPolicy converts the policy section.
func (s *Settings) SelectionPolicy() selection.Policy {
	return selection.Policy{
		IoUThreshold:     s.Policy.IoUThreshold,
		SizeWeight:       s.Policy.SizeWeight,
		SharpnessWeight:  s.Policy.SharpnessWeight,
		CentralityWeight: s.Policy.CentralityWeight,
		SizeScale:        s.Policy.SizeScale,
		SharpnessScale:   s.Policy.SharpnessScale,
	}
}

// SetPolicy overwrites the policy section.
func (s *Settings) SetPolicy(p selection.Policy) {
	s.Policy = PolicySettings{
		IoUThreshold:     p.IoUThreshold,
		SizeWeight:       p.SizeWeight,
		SharpnessWeight:  p.SharpnessWeight,
		CentralityWeight: p.CentralityWeight,
		SizeScale:        p.SizeScale,
		SharpnessScale:   p.SharpnessScale,
	}
}

// DetectorConfig converts the detector section.
func (s *Settings) DetectorConfig() detection.Config {
	return detection.Config{
		Backend:          detection.Backend(s.Detector.Backend),
		CascadePath:      s.Detector.Cascade,
		ModelPath:        s.Detector.Model,
		ConfidenceThresh: s.Detector.Confidence,
		MinSize:          s.Detector.MinSize,
		MaxSize:          s.Detector.MaxSize,
		ScaleFactor:      s.Detector.ScaleFactor,
		ShiftFactor:      s.Detector.ShiftFactor,
		MinNeighbors:     s.Detector.MinNeighbors,
	}
}

// SetDetector overwrites the detector section.
func (s *Settings) SetDetector(c detection.Config) {
	s.Detector = DetectorSettings{
		Backend:      string(c.Backend),
		Cascade:      c.CascadePath,
		Model:        c.ModelPath,
		Confidence:   c.ConfidenceThresh,
		MinSize:      c.MinSize,
		MaxSize:      c.MaxSize,
		ScaleFactor:  c.ScaleFactor,
		ShiftFactor:  c.ShiftFactor,
		MinNeighbors: c.MinNeighbors,
	}
}
