// Package config loads execmind settings from a YAML file with environment
// variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// CaptureMode selects which recognizer backs the voice assistant.
type CaptureMode string

const (
	// CaptureAuto uses the live speech daemon when its socket exists and the
	// scripted playback otherwise. The choice is made once at startup.
	CaptureAuto CaptureMode = "auto"
	// CaptureScripted always replays the canned question.
	CaptureScripted CaptureMode = "scripted"
	// CaptureLive always uses the speech daemon.
	CaptureLive CaptureMode = "live"
)

// IsValid reports whether m is a known capture mode.
func (m CaptureMode) IsValid() bool {
	switch m {
	case CaptureAuto, CaptureScripted, CaptureLive:
		return true
	}
	return false
}

// Default configuration values.
const (
	DefaultConfigDir       = ".execmind"
	DefaultConfigFile      = "config.yaml"
	DefaultLogFile         = "execmind.log"
	DefaultMeetingTitle    = "Board Strategy Session"
	DefaultProcessingDelay = 1500 * time.Millisecond
	DefaultWordLeadIn      = 500 * time.Millisecond
	DefaultWordInterval    = 300 * time.Millisecond
	DefaultToastDuration   = 2 * time.Second
	DefaultShareDismiss    = 3 * time.Second
	DefaultIdeaProcessing  = 2 * time.Second
	DefaultLogLevel        = "info"
)

// DefaultTeams are the share targets offered by "Share with Team".
var DefaultTeams = []string{
	"Executive Team",
	"Board Members",
	"Finance",
	"Technology",
	"Product",
}

// Timing holds every simulated delay.
type Timing struct {
	ProcessingDelay time.Duration `yaml:"processing_delay"`
	WordLeadIn      time.Duration `yaml:"word_lead_in"`
	WordInterval    time.Duration `yaml:"word_interval"`
	ToastDuration   time.Duration `yaml:"toast_duration"`
	ShareDismiss    time.Duration `yaml:"share_dismiss"`
	IdeaProcessing  time.Duration `yaml:"idea_processing"`
}

// LogConfig controls the zerolog file sink.
type LogConfig struct {
	File  string `yaml:"file"`
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

// Config is the full execmind configuration.
type Config struct {
	MeetingTitle string      `yaml:"meeting_title"`
	Capture      CaptureMode `yaml:"capture"`
	SpeechSocket string      `yaml:"speech_socket"`
	Teams        []string    `yaml:"teams"`
	Timing       Timing      `yaml:"timing"`
	Log          LogConfig   `yaml:"log"`

	// MetricsAddr serves Prometheus metrics when non-empty, e.g. "localhost:9464".
	MetricsAddr string `yaml:"metrics_addr"`
}

// DefaultConfig returns a Config populated with defaults.
func DefaultConfig() *Config {
	dir := configDir()
	return &Config{
		MeetingTitle: DefaultMeetingTitle,
		Capture:      CaptureAuto,
		SpeechSocket: DefaultSpeechSocket(),
		Teams:        append([]string(nil), DefaultTeams...),
		Timing: Timing{
			ProcessingDelay: DefaultProcessingDelay,
			WordLeadIn:      DefaultWordLeadIn,
			WordInterval:    DefaultWordInterval,
			ToastDuration:   DefaultToastDuration,
			ShareDismiss:    DefaultShareDismiss,
			IdeaProcessing:  DefaultIdeaProcessing,
		},
		Log: LogConfig{
			File:  filepath.Join(dir, DefaultLogFile),
			Level: DefaultLogLevel,
		},
	}
}

// DefaultSpeechSocket returns the speech daemon socket path.
func DefaultSpeechSocket() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, "Library", "Application Support", "Steno", "steno.sock")
}

// ConfigPath returns the default config file path.
func ConfigPath() string {
	return filepath.Join(configDir(), DefaultConfigFile)
}

func configDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, DefaultConfigDir)
}

// Load reads defaults, then the YAML file at path (if it exists), then
// EXECMIND_* environment variables, and validates the result. An empty path
// uses ConfigPath.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		path = ConfigPath()
	}

	if _, err := os.Stat(path); err == nil {
		if err := loadFromFile(cfg, path); err != nil {
			return nil, fmt.Errorf("loading config file: %w", err)
		}
	}

	if err := loadFromEnv(cfg); err != nil {
		return nil, fmt.Errorf("loading config env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	cfg.SpeechSocket = expandPath(cfg.SpeechSocket)
	cfg.Log.File = expandPath(cfg.Log.File)
	return nil
}

func loadFromEnv(cfg *Config) error {
	if v := os.Getenv("EXECMIND_MEETING_TITLE"); v != "" {
		cfg.MeetingTitle = v
	}
	if v := os.Getenv("EXECMIND_CAPTURE"); v != "" {
		cfg.Capture = CaptureMode(strings.ToLower(v))
	}
	if v := os.Getenv("EXECMIND_SPEECH_SOCKET"); v != "" {
		cfg.SpeechSocket = expandPath(v)
	}
	if v := os.Getenv("EXECMIND_TEAMS"); v != "" {
		var teams []string
		for _, t := range strings.Split(v, ",") {
			if t = strings.TrimSpace(t); t != "" {
				teams = append(teams, t)
			}
		}
		cfg.Teams = teams
	}
	if v := os.Getenv("EXECMIND_LOG_FILE"); v != "" {
		cfg.Log.File = expandPath(v)
	}
	if v := os.Getenv("EXECMIND_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("EXECMIND_METRICS_ADDR"); v != "" {
		cfg.MetricsAddr = v
	}
	if v := os.Getenv("EXECMIND_PROCESSING_DELAY"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("EXECMIND_PROCESSING_DELAY: %w", err)
		}
		cfg.Timing.ProcessingDelay = d
	}
	return nil
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if !c.Capture.IsValid() {
		return fmt.Errorf("invalid capture mode %q (want auto, scripted or live)", c.Capture)
	}
	if len(c.Teams) == 0 {
		return fmt.Errorf("at least one share team is required")
	}
	t := c.Timing
	for name, d := range map[string]time.Duration{
		"processing_delay": t.ProcessingDelay,
		"word_interval":    t.WordInterval,
		"toast_duration":   t.ToastDuration,
		"share_dismiss":    t.ShareDismiss,
		"idea_processing":  t.IdeaProcessing,
	} {
		if d <= 0 {
			return fmt.Errorf("timing.%s must be positive, got %s", name, d)
		}
	}
	if t.WordLeadIn < 0 {
		return fmt.Errorf("timing.word_lead_in must not be negative, got %s", t.WordLeadIn)
	}
	return nil
}

func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}
