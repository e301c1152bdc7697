package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/achilleasa/rtpreview/asset/texture"
	"github.com/achilleasa/rtpreview/log"
	"github.com/achilleasa/rtpreview/renderer"
	"github.com/achilleasa/rtpreview/tracer/software"
)

var (
	ErrInvalidSettings = errors.New("config: invalid settings")
)

// Settings that can be loaded from a TOML file.
type Settings struct {
	OpaqueBounces      uint32  `toml:"opaque_bounces"`
	TransparentBounces uint32  `toml:"transparent_bounces"`
	Environment        string  `toml:"environment"`
	Program            string  `toml:"program"`
	Exposure           float32 `toml:"exposure"`
	LogLevel           string  `toml:"log_level"`

	// Directory that relative environment paths are resolved against.
	baseDir string
}

// The default settings.
func Default() Settings {
	opts := renderer.DefaultOptions()
	return Settings{
		OpaqueBounces:      opts.OpaqueBounces,
		TransparentBounces: opts.TransparentBounces,
		Program:            software.EnvPreviewProgram,
		Exposure:           1.0,
		LogLevel:           "notice",
	}
}

// Load settings from a TOML file. Keys missing from the file keep their
// default values.
func Load(path string) (Settings, error) {
	f, err := os.Open(path)
	if err != nil {
		return Settings{}, fmt.Errorf("config: %v", err)
	}
	defer f.Close()

	s, err := Decode(f)
	if err != nil {
		return Settings{}, fmt.Errorf("%s: %w", path, err)
	}
	s.baseDir = filepath.Dir(path)
	return s, nil
}

// Decode settings from a TOML stream. Unknown keys are rejected.
func Decode(r io.Reader) (Settings, error) {
	s := Default()
	if err := toml.NewDecoder(r).DisallowUnknownFields().Decode(&s); err != nil {
		var strictErr *toml.StrictMissingError
		if errors.As(err, &strictErr) {
			return Settings{}, fmt.Errorf("%w: %s", ErrInvalidSettings, strictErr.String())
		}
		return Settings{}, fmt.Errorf("%w: %v", ErrInvalidSettings, err)
	}

	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Check settings that cannot be clamped.
func (s Settings) Validate() error {
	if _, err := log.ParseLevel(s.LogLevel); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSettings, err)
	}
	if s.Exposure <= 0 {
		return fmt.Errorf("%w: exposure must be positive; got %f", ErrInvalidSettings, s.Exposure)
	}
	return nil
}

// Get the configured log level.
func (s Settings) Level() log.Level {
	level, _ := log.ParseLevel(s.LogLevel)
	return level
}

// Get the path to the environment map with relative local paths resolved
// against the settings file location.
func (s Settings) EnvironmentPath() string {
	if s.Environment == "" || strings.Contains(s.Environment, "://") ||
		filepath.IsAbs(s.Environment) || s.baseDir == "" {
		return s.Environment
	}
	return filepath.Join(s.baseDir, s.Environment)
}

// Build renderer options. The program is looked up in the software backend
// registry and the environment map is loaded. Bounce limits are clamped.
func (s Settings) ToOptions() (renderer.Options, error) {
	opts := renderer.Options{
		OpaqueBounces:      s.OpaqueBounces,
		TransparentBounces: s.TransparentBounces,
	}

	if s.Program != "" {
		prog, err := software.LookupProgram(s.Program)
		if err != nil {
			return renderer.Options{}, fmt.Errorf("%w: %v", ErrInvalidSettings, err)
		}
		opts.Program = prog
	}

	if envPath := s.EnvironmentPath(); envPath != "" {
		env, err := texture.LoadEnvironment(envPath)
		if err != nil {
			return renderer.Options{}, fmt.Errorf("config: loading environment: %w", err)
		}
		opts.Environment = env
	}

	return opts.Clamp(), nil
}
