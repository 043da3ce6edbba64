package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/sirupsen/logrus"
)

// Config holds the application configuration.
type Config struct {
	GeminiAPIKey string // optional; enables the lab assistant
	DataFile     string // empty means the bundled chemicals
	SettingsFile string
	LogFile      string
	LogLevel     logrus.Level
	TickRate     int // simulation ticks per second
	Settings     Settings
}

// Settings are the accessibility options of the lab.
type Settings struct {
	VoiceCommands bool   `toml:"voice_commands"`
	HighContrast  bool   `toml:"high_contrast"`
	ReducedMotion bool   `toml:"reduced_motion"`
	FontSize      string `toml:"font_size"` // "small", "medium" or "large"
	AudioFeedback bool   `toml:"audio_feedback"`
	Easing        string `toml:"easing"` // "time" or "frame"
}

// DefaultSettings mirrors what a first-time visitor sees.
func DefaultSettings() Settings {
	return Settings{
		FontSize:      "medium",
		AudioFeedback: true,
		Easing:        "time",
	}
}

// LoadConfig loads the configuration from environment variables.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
		DataFile:     os.Getenv("LAB_DATA_FILE"),
		SettingsFile: os.Getenv("LAB_SETTINGS_FILE"),
		LogFile:      os.Getenv("LAB_LOG_FILE"),
		LogLevel:     logrus.InfoLevel,
		TickRate:     60,
	}
	if cfg.LogFile == "" {
		cfg.LogFile = "lab.log"
	}

	if lvl := os.Getenv("LAB_LOG_LEVEL"); lvl != "" {
		level, err := logrus.ParseLevel(lvl)
		if err != nil {
			return nil, fmt.Errorf("LAB_LOG_LEVEL: %w", err)
		}
		cfg.LogLevel = level
	}

	if rate := os.Getenv("LAB_TICK_RATE"); rate != "" {
		n, err := strconv.Atoi(rate)
		if err != nil || n <= 0 || n > 240 {
			return nil, fmt.Errorf("LAB_TICK_RATE must be between 1 and 240, got %q", rate)
		}
		cfg.TickRate = n
	}

	settings, err := LoadSettings(cfg.SettingsFile)
	if err != nil {
		return nil, err
	}
	cfg.Settings = settings

	return cfg, nil
}

// TickInterval is the wall-clock time between simulation ticks.
func (c *Config) TickInterval() time.Duration {
	if c.TickRate <= 0 {
		return time.Second / 60
	}
	return time.Second / time.Duration(c.TickRate)
}

// LoadSettings reads a TOML settings file over the defaults. A missing file
// is not an error.
func LoadSettings(path string) (Settings, error) {
	settings := DefaultSettings()
	if path == "" {
		return settings, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return settings, nil
	}
	if err != nil {
		return settings, fmt.Errorf("reading settings %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, &settings); err != nil {
		return settings, fmt.Errorf("parsing settings %s: %w", path, err)
	}

	switch settings.FontSize {
	case "small", "medium", "large":
	default:
		return settings, fmt.Errorf("font_size must be small, medium or large, got %q", settings.FontSize)
	}
	return settings, nil
}

// SaveSettings writes settings as TOML so they survive a restart.
func SaveSettings(path string, settings Settings) error {
	data, err := toml.Marshal(settings)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing settings %s: %w", path, err)
	}
	return nil
}

// NewLogger returns a text logger writing to w at the configured level.
func (c *Config) NewLogger(w io.Writer) *logrus.Logger {
	log := logrus.New()
	log.Out = w
	log.Formatter = &logrus.TextFormatter{DisableColors: true, FullTimestamp: true}
	log.Level = c.LogLevel
	return log
}

// OpenLog opens the log file for appending.
func (c *Config) OpenLog() (*os.File, error) {
	f, err := os.OpenFile(c.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("opening log file %s: %w", c.LogFile, err)
	}
	return f, nil
}
