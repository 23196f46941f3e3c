package settings

import (
	"errors"
	"os"

	"github.com/oomph-ac/locomotion/oerror"
	"github.com/pelletier/go-toml"
	"github.com/sirupsen/logrus"
)

// Settings contains everything that can be configured for a locomotion host.
type Settings struct {
	Host struct {
		// TickRate is the number of ticks run per second.
		TickRate int
		// Rigs is the number of bodies hosted side by side.
		Rigs int
		// LogLevel is the logrus level name, such as "info" or "debug".
		LogLevel string
	}
	Body struct {
		EyeHeight float64
		Scale     float64
	}
	Character struct {
		Radius     float64
		StepOffset float64
		MinHeight  float64
		SkinWidth  float64
	}
	Telemetry struct {
		// MetricsAddr is the address Prometheus metrics are served on. Empty disables the endpoint.
		MetricsAddr string
		// StatsViewAddr is the address the runtime statistics viewer is served on. Empty disables it.
		StatsViewAddr string
		// SentryDSN is the DSN panics are reported to. Empty disables reporting.
		SentryDSN string
	}
}

// DefaultSettings returns the default settings.
func DefaultSettings() Settings {
	s := Settings{}
	s.Host.TickRate = 20
	s.Host.Rigs = 1
	s.Host.LogLevel = "info"

	s.Body.EyeHeight = 1.62
	s.Body.Scale = 1

	s.Character.Radius = 0.3
	s.Character.StepOffset = 0.5
	s.Character.MinHeight = 0.5
	s.Character.SkinWidth = 0.01

	s.Telemetry.MetricsAddr = ":9100"
	return s
}

// Validate returns an error wrapping oerror.ErrInvalidSettings if any of the settings is out of range.
func (s Settings) Validate() error {
	switch {
	case s.Host.TickRate <= 0:
		return oerror.New("%w: tick rate must be positive, got %d", oerror.ErrInvalidSettings, s.Host.TickRate)
	case s.Host.Rigs <= 0:
		return oerror.New("%w: rig count must be positive, got %d", oerror.ErrInvalidSettings, s.Host.Rigs)
	case s.Body.Scale <= 0:
		return oerror.New("%w: body scale must be positive, got %v", oerror.ErrInvalidSettings, s.Body.Scale)
	case s.Character.Radius <= 0:
		return oerror.New("%w: character radius must be positive, got %v", oerror.ErrInvalidSettings, s.Character.Radius)
	case s.Character.MinHeight <= 0:
		return oerror.New("%w: character minimum height must be positive, got %v", oerror.ErrInvalidSettings, s.Character.MinHeight)
	case s.Character.StepOffset < 0:
		return oerror.New("%w: character step offset must not be negative, got %v", oerror.ErrInvalidSettings, s.Character.StepOffset)
	case s.Character.SkinWidth < 0:
		return oerror.New("%w: character skin width must not be negative, got %v", oerror.ErrInvalidSettings, s.Character.SkinWidth)
	case s.Body.EyeHeight < 0:
		return oerror.New("%w: eye height must not be negative, got %v", oerror.ErrInvalidSettings, s.Body.EyeHeight)
	}
	if _, err := s.Level(); err != nil {
		return oerror.New("%w: %v", oerror.ErrInvalidSettings, err)
	}
	return nil
}

// Level returns the parsed log level.
func (s Settings) Level() (logrus.Level, error) {
	return logrus.ParseLevel(s.Host.LogLevel)
}

// SaveDefault will create and save the default settings file. If the file already exists, it will return an error.
func SaveDefault(path string) error {
	s := DefaultSettings()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if data, err := toml.Marshal(s); err != nil {
			return oerror.Wrap(err, "failed encoding default settings")
		} else if err := os.WriteFile(path, data, 0644); err != nil {
			return oerror.Wrap(err, "failed creating settings file")
		}
		return nil
	}
	return errors.New("settings file already exists")
}

// Load will load the settings from your settings file, and return an error if the file does not
// exist or the settings it holds are invalid.
func Load(path string) (Settings, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Settings{}, errors.New("settings file doesn't exist")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, oerror.Wrap(err, "error reading config")
	}

	settings := DefaultSettings()
	if err = toml.Unmarshal(data, &settings); err != nil {
		return Settings{}, oerror.Wrap(err, "error decoding config")
	}
	if err = settings.Validate(); err != nil {
		return Settings{}, err
	}
	return settings, nil
}
