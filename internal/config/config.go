// internal/config/config.go
//
// This package handles configuration and the .secureaware directory structure.
// Every learner workspace gets a .secureaware/ folder created in its root
// unless SECUREAWARE_HOME points somewhere else.

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	// DataDirName is the name of the directory we create in each workspace
	DataDirName = ".secureaware"

	// EnvHome overrides the data directory location.
	EnvHome = "SECUREAWARE_HOME"
	// EnvLogLevel overrides logging.level.
	EnvLogLevel = "SECUREAWARE_LOG_LEVEL"

	defaultPassThreshold = 70.0
	defaultBackdateDays  = 30
	defaultLogLevel      = "info"
)

const defaultSettingsYAML = `# secureaware configuration
version: 1

quiz:
  # Minimum score (percent, inclusive) needed to pass a module quiz.
  pass_threshold: 70

certificates:
  # Keep certificate numbers and issue dates once minted. Set to false to
  # re-roll them every time certificates are listed.
  stable: true
  # Issue dates are backdated by a random number of days below this bound.
  backdate_days: 30

notifications:
  # Seed the welcome notifications at the start of every session.
  seed_welcome: true

catalog:
  # Optional YAML file replacing the built-in module catalog.
  # path: training/modules.yaml

logging:
  level: info
  console: false
`

// QuizSettings tunes grading.
type QuizSettings struct {
	PassThreshold float64 `yaml:"pass_threshold"`
}

// CertificateSettings tunes certificate minting.
type CertificateSettings struct {
	Stable       *bool `yaml:"stable,omitempty"`
	BackdateDays *int  `yaml:"backdate_days,omitempty"`
}

// NotificationSettings tunes the notification center.
type NotificationSettings struct {
	SeedWelcome *bool `yaml:"seed_welcome,omitempty"`
}

// CatalogSettings points at an optional catalog override.
type CatalogSettings struct {
	Path string `yaml:"path,omitempty"`
}

// LoggingSettings controls the zap logger.
type LoggingSettings struct {
	Level   string `yaml:"level"`
	Console bool   `yaml:"console"`
}

// Settings models .secureaware/config.yaml.
type Settings struct {
	Version       int                  `yaml:"version"`
	Quiz          QuizSettings         `yaml:"quiz"`
	Certificates  CertificateSettings  `yaml:"certificates"`
	Notifications NotificationSettings `yaml:"notifications"`
	Catalog       CatalogSettings      `yaml:"catalog"`
	Logging       LoggingSettings      `yaml:"logging"`
}

// Config holds the runtime configuration.
type Config struct {
	// ProjectDir is the directory secureaware was started from
	ProjectDir string

	// DataDir is ProjectDir/.secureaware or $SECUREAWARE_HOME
	DataDir string

	Settings Settings
}

// DataDirFor returns the data directory for a workspace, honoring
// SECUREAWARE_HOME.
func DataDirFor(projectDir string) string {
	if home := strings.TrimSpace(os.Getenv(EnvHome)); home != "" {
		return resolvePath(projectDir, home)
	}
	return filepath.Join(projectDir, DataDirName)
}

// InitDataDir creates the data directory structure.
//
// Structure created:
// .secureaware/
// ├── config.yaml
// ├── state/         <- persisted key-value records
// ├── logs/          <- secureaware.log and the activity journal
// ├── certificates/  <- exported PDFs
// └── metrics/       <- prometheus textfile
func InitDataDir(dataDir string) error {
	dirs := []string{
		filepath.Join(dataDir, "state"),
		filepath.Join(dataDir, "logs"),
		filepath.Join(dataDir, "certificates"),
		filepath.Join(dataDir, "metrics"),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return ensureSettingsFile(filepath.Join(dataDir, "config.yaml"))
}

// NewConfig loads .env from the workspace, resolves the data directory and
// reads config.yaml from it. A missing config file means defaults.
func NewConfig(projectDir string) (*Config, error) {
	if err := loadDotEnv(filepath.Join(projectDir, ".env")); err != nil {
		return nil, err
	}
	cfg := &Config{
		ProjectDir: projectDir,
		DataDir:    DataDirFor(projectDir),
		Settings:   defaultSettings(),
	}
	if err := cfg.loadSettings(); err != nil {
		return nil, err
	}
	if level := strings.TrimSpace(os.Getenv(EnvLogLevel)); level != "" {
		cfg.Settings.Logging.Level = strings.ToLower(level)
		if err := cfg.Settings.validate(); err != nil {
			return nil, fmt.Errorf("config: %s: %w", EnvLogLevel, err)
		}
	}
	return cfg, nil
}

// StateDir returns the directory holding persisted records
func (c *Config) StateDir() string {
	return filepath.Join(c.DataDir, "state")
}

// LogsDir returns the path to the logs directory
func (c *Config) LogsDir() string {
	return filepath.Join(c.DataDir, "logs")
}

// LogFile returns the structured log file path
func (c *Config) LogFile() string {
	return filepath.Join(c.LogsDir(), "secureaware.log")
}

// JournalPath returns the learner activity journal path
func (c *Config) JournalPath() string {
	return filepath.Join(c.LogsDir(), "activity.log")
}

// CertificatesDir returns where exported certificates are written
func (c *Config) CertificatesDir() string {
	return filepath.Join(c.DataDir, "certificates")
}

// MetricsFile returns the prometheus textfile path
func (c *Config) MetricsFile() string {
	return filepath.Join(c.DataDir, "metrics", "secureaware.prom")
}

// SettingsPath returns the on-disk location for the config file.
func (c *Config) SettingsPath() string {
	return filepath.Join(c.DataDir, "config.yaml")
}

// PassThreshold returns the inclusive pass mark.
func (c *Config) PassThreshold() float64 {
	return c.Settings.Quiz.PassThreshold
}

// StableCertificates reports whether minted certificates are persisted.
func (c *Config) StableCertificates() bool {
	return c.Settings.Certificates.Stable == nil || *c.Settings.Certificates.Stable
}

// BackdateDays returns the backdating bound for issue dates.
func (c *Config) BackdateDays() int {
	if c.Settings.Certificates.BackdateDays == nil {
		return defaultBackdateDays
	}
	return *c.Settings.Certificates.BackdateDays
}

// SeedWelcome reports whether sessions start with the welcome notifications.
func (c *Config) SeedWelcome() bool {
	return c.Settings.Notifications.SeedWelcome == nil || *c.Settings.Notifications.SeedWelcome
}

// CatalogPath returns the catalog override, or "" for the built-in catalog.
func (c *Config) CatalogPath() string {
	return c.Settings.Catalog.Path
}

// SetStableCertificates updates certificates.stable and persists config.yaml.
func (c *Config) SetStableCertificates(stable bool) error {
	c.Settings.Certificates.Stable = &stable
	return c.Save()
}

func (c *Config) loadSettings() error {
	path := c.SettingsPath()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config: read %s: %w", path, err)
	}

	var parsed Settings
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}

	parsed.applyDefaults()
	parsed.normalize(c.ProjectDir)
	if err := parsed.validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	c.Settings = parsed
	return nil
}

func defaultSettings() Settings {
	s := Settings{}
	s.applyDefaults()
	return s
}

func (s *Settings) applyDefaults() {
	if s.Version == 0 {
		s.Version = 1
	}
	if s.Quiz.PassThreshold == 0 {
		s.Quiz.PassThreshold = defaultPassThreshold
	}
	if s.Logging.Level == "" {
		s.Logging.Level = defaultLogLevel
	}
}

func (s *Settings) normalize(base string) {
	s.Catalog.Path = resolvePath(base, s.Catalog.Path)
	s.Logging.Level = strings.ToLower(strings.TrimSpace(s.Logging.Level))
}

func (s *Settings) validate() error {
	if s.Version < 1 {
		return fmt.Errorf("config version must be >= 1")
	}
	if s.Quiz.PassThreshold <= 0 || s.Quiz.PassThreshold > 100 {
		return fmt.Errorf("quiz.pass_threshold must be in (0, 100]")
	}
	if d := s.Certificates.BackdateDays; d != nil && *d < 0 {
		return fmt.Errorf("certificates.backdate_days must be >= 0")
	}
	switch s.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error")
	}
	return nil
}

func loadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config: stat %s: %w", path, err)
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("config: load %s: %w", path, err)
	}
	return nil
}

func resolvePath(base, candidate string) string {
	trimmed := strings.TrimSpace(candidate)
	if trimmed == "" {
		return ""
	}
	if filepath.IsAbs(trimmed) {
		return filepath.Clean(trimmed)
	}
	return filepath.Clean(filepath.Join(base, trimmed))
}

func ensureSettingsFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return os.WriteFile(path, []byte(defaultSettingsYAML), 0o644)
}

// Save validates the settings and writes them back to config.yaml.
func (c *Config) Save() error {
	if c == nil {
		return fmt.Errorf("config: nil receiver")
	}
	c.Settings.applyDefaults()
	c.Settings.normalize(c.ProjectDir)
	if err := c.Settings.validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := os.MkdirAll(c.DataDir, 0o755); err != nil {
		return fmt.Errorf("config: ensure data dir: %w", err)
	}
	data, err := yaml.Marshal(c.Settings)
	if err != nil {
		return fmt.Errorf("config: encode config: %w", err)
	}
	if err := os.WriteFile(c.SettingsPath(), data, 0o644); err != nil {
		return fmt.Errorf("config: write config: %w", err)
	}
	return nil
}
