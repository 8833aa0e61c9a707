package config

import (
	"errors"
	"fmt"
	"slices"

	"github.com/ayusman/shifumi/internal/capture"
	"github.com/ayusman/shifumi/internal/game"
	"github.com/ayusman/shifumi/internal/gesture"
	"github.com/ayusman/shifumi/internal/region"
)

// Default values not owned by another package.
const (
	DefaultModelPath = "model/gesture.onnx"
	DefaultAddr      = ":8080"
	DefaultIdleFPS   = 5
	DefaultActiveFPS = 15
)

// Settings is the fully resolved configuration.
type Settings struct {
	Confidence       float64
	CountdownSeconds int
	Rounds           int
	RoundOptions     []int

	Padding     int
	TargetSize  int
	PreviewSize int
	ModelPath   string
	Labels      []gesture.Move
	Display     region.Size

	CameraDevice    int
	IdleFPS         int
	ActiveFPS       int
	MotionThreshold float64

	Addr   string
	WebDir string

	DBPath string
}

// Defaults returns the built-in settings.
func Defaults() Settings {
	return Settings{
		Confidence:       gesture.DefaultConfidenceThreshold,
		CountdownSeconds: game.DefaultCountdownSeconds,
		Rounds:           game.DefaultRounds,
		RoundOptions:     slices.Clone(game.DefaultRoundOptions),

		Padding:     region.DefaultPadding,
		TargetSize:  region.DefaultTargetSize,
		PreviewSize: region.DefaultPreviewSize,
		ModelPath:   DefaultModelPath,
		Labels:      slices.Clone(gesture.DefaultLabels),

		IdleFPS:         DefaultIdleFPS,
		ActiveFPS:       DefaultActiveFPS,
		MotionThreshold: capture.DefaultMotionThreshold,

		Addr:   DefaultAddr,
		DBPath: DefaultDBPath(),
	}
}

// Load reads path and applies it over the defaults.
func Load(path string) (Settings, error) {
	fc, err := LoadConfig(path)
	if err != nil {
		return Settings{}, err
	}
	s := Defaults()
	if err := s.Apply(fc); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Apply overlays the keys present in fc.
func (s *Settings) Apply(fc FileConfig) error {
	setFloat(&s.Confidence, fc.Game.Confidence)
	setInt(&s.CountdownSeconds, fc.Game.CountdownSeconds)
	setInt(&s.Rounds, fc.Game.Rounds)
	if fc.Game.RoundOptions != nil {
		s.RoundOptions = slices.Clone(fc.Game.RoundOptions)
	}

	setInt(&s.Padding, fc.Vision.Padding)
	setInt(&s.TargetSize, fc.Vision.TargetSize)
	setInt(&s.PreviewSize, fc.Vision.PreviewSize)
	setString(&s.ModelPath, fc.Vision.Model)
	if fc.Vision.Labels != nil {
		labels, err := gesture.ParseLabels(fc.Vision.Labels)
		if err != nil {
			return fmt.Errorf("vision.labels: %w", err)
		}
		s.Labels = labels
	}
	setInt(&s.Display.Width, fc.Vision.DisplayWidth)
	setInt(&s.Display.Height, fc.Vision.DisplayHeight)

	setInt(&s.CameraDevice, fc.Camera.Device)
	setInt(&s.IdleFPS, fc.Camera.IdleFPS)
	setInt(&s.ActiveFPS, fc.Camera.ActiveFPS)
	setFloat(&s.MotionThreshold, fc.Camera.MotionThreshold)

	setString(&s.Addr, fc.Server.Addr)
	setString(&s.WebDir, fc.Server.WebDir)

	setString(&s.DBPath, fc.Store.Path)
	return nil
}

// Validate reports the first invalid setting.
func (s Settings) Validate() error {
	switch {
	case s.Confidence < 0 || s.Confidence > 1:
		return fmt.Errorf("confidence must be within [0,1], got %v", s.Confidence)
	case s.CountdownSeconds <= 0:
		return fmt.Errorf("countdown-seconds must be positive, got %d", s.CountdownSeconds)
	case len(s.RoundOptions) == 0:
		return errors.New("round-options must not be empty")
	case s.Padding < 0:
		return fmt.Errorf("padding must not be negative, got %d", s.Padding)
	case s.TargetSize <= 0:
		return fmt.Errorf("target-size must be positive, got %d", s.TargetSize)
	case s.PreviewSize <= 0:
		return fmt.Errorf("preview-size must be positive, got %d", s.PreviewSize)
	case len(s.Labels) != len(gesture.Moves):
		return fmt.Errorf("labels must name %d gestures, got %d", len(gesture.Moves), len(s.Labels))
	case s.Display.Width < 0 || s.Display.Height < 0:
		return fmt.Errorf("display size must not be negative, got %dx%d", s.Display.Width, s.Display.Height)
	case s.IdleFPS <= 0 || s.ActiveFPS <= 0:
		return fmt.Errorf("fps must be positive, got idle %d active %d", s.IdleFPS, s.ActiveFPS)
	case s.Addr == "":
		return errors.New("server addr must not be empty")
	case s.DBPath == "":
		return errors.New("store path must not be empty")
	}
	for _, n := range s.RoundOptions {
		if n <= 0 {
			return fmt.Errorf("round-options must be positive, got %d", n)
		}
	}
	seen := make(map[gesture.Move]bool, len(s.Labels))
	for _, l := range s.Labels {
		if seen[l] {
			return fmt.Errorf("labels must be distinct, %s repeats", l)
		}
		seen[l] = true
	}
	if !slices.Contains(s.RoundOptions, s.Rounds) {
		return fmt.Errorf("rounds %d is not one of %v", s.Rounds, s.RoundOptions)
	}
	return nil
}

// Game returns the match parameters.
func (s Settings) Game() game.Config {
	return game.Config{
		ConfidenceThreshold: s.Confidence,
		CountdownSeconds:    s.CountdownSeconds,
		RoundOptions:        slices.Clone(s.RoundOptions),
	}
}

// Vision returns the crop extraction parameters.
func (s Settings) Vision() region.Config {
	return region.Config{
		Padding:     s.Padding,
		TargetSize:  s.TargetSize,
		PreviewSize: s.PreviewSize,
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func setFloat(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
