package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Paths contains directory configuration.
type Paths struct {
	StateDir string `toml:"state_dir"`
	LogDir   string `toml:"log_dir"`
}

// Queue contains admission-control tuning.
type Queue struct {
	ReservationSeconds int  `toml:"reservation_seconds"`
	PositionUpdates    bool `toml:"position_updates"`
}

// Session contains capture session tuning.
type Session struct {
	InactivitySeconds int `toml:"inactivity_seconds"`
	MaxBatchImages    int `toml:"max_batch_images"`
}

// Matching contains the fuzzy identity matching thresholds. The values are
// empirically tuned against the OCR error profile of the source screenshots;
// keep them configurable rather than re-deriving them.
type Matching struct {
	AcceptThreshold  float64 `toml:"accept_threshold"`
	ShortMismatchMax int     `toml:"short_mismatch_max"`
	LongMismatchMax  int     `toml:"long_mismatch_max"`
	LongLength       int     `toml:"long_length"`
}

// OCR contains configuration for the Tesseract engine.
type OCR struct {
	Languages      []string `toml:"languages"`
	TessdataPrefix string   `toml:"tessdata_prefix"`
}

// Notifications contains configuration for ntfy push notifications.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
	QueuePosition  bool   `toml:"queue_position"`
	TurnReady      bool   `toml:"turn_ready"`
	SessionExpired bool   `toml:"session_expired"`
	ResultsSaved   bool   `toml:"results_saved"`
	Errors         bool   `toml:"errors"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config is the root configuration document.
type Config struct {
	Paths         Paths         `toml:"paths"`
	Queue         Queue         `toml:"queue"`
	Session       Session       `toml:"session"`
	Matching      Matching      `toml:"matching"`
	OCR           OCR           `toml:"ocr"`
	Notifications Notifications `toml:"notifications"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the standard config file location.
func DefaultConfigPath() string {
	return expandPath("~/.config/tally/config.toml")
}

// Load reads the config file at path, falling back to defaults when the file
// does not exist. An empty path means DefaultConfigPath.
func Load(path string) (*Config, error) {
	if strings.TrimSpace(path) == "" {
		path = DefaultConfigPath()
	}
	path = expandPath(path)

	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg.normalize()
			return &cfg, cfg.Validate()
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// WriteSample writes a commented default config to path, refusing to
// overwrite an existing file.
func WriteSample(path string) error {
	path = expandPath(path)
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config already exists at %s", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("ensure config directory: %w", err)
	}
	cfg := Default()
	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal sample config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// EnsureDirectories creates the state and log directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.StateDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}

func (c *Config) normalize() {
	c.Paths.StateDir = expandPath(c.Paths.StateDir)
	c.Paths.LogDir = expandPath(c.Paths.LogDir)
	c.OCR.TessdataPrefix = expandPath(c.OCR.TessdataPrefix)
	if c.Paths.LogDir == "" {
		c.Paths.LogDir = c.Paths.StateDir
	}
}

func expandPath(path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return ""
	}
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}
