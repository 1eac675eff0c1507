package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadSettingsDefaultsWhenMissing(t *testing.T) {
	projectDir := t.TempDir()
	c := &Config{ProjectDir: projectDir, DataDir: filepath.Join(projectDir, DataDirName), Settings: defaultSettings()}
	if err := c.loadSettings(); err != nil {
		t.Fatalf("loadSettings returned error: %v", err)
	}
	if c.Settings.Version != 1 {
		t.Fatalf("expected default version == 1, got %d", c.Settings.Version)
	}
	if c.PassThreshold() != 70 {
		t.Fatalf("expected pass threshold 70, got %v", c.PassThreshold())
	}
	if !c.StableCertificates() || !c.SeedWelcome() {
		t.Fatalf("expected stable certificates and welcome seeding by default")
	}
	if c.BackdateDays() != 30 {
		t.Fatalf("expected 30 backdate days, got %d", c.BackdateDays())
	}
	if c.CatalogPath() != "" {
		t.Fatalf("expected built-in catalog, got %q", c.CatalogPath())
	}
}

func TestInitDataDirWritesParsableDefaults(t *testing.T) {
	projectDir := t.TempDir()
	t.Setenv(EnvHome, "")
	t.Setenv(EnvLogLevel, "")
	dataDir := DataDirFor(projectDir)
	if err := InitDataDir(dataDir); err != nil {
		t.Fatalf("InitDataDir: %v", err)
	}
	for _, sub := range []string{"state", "logs", "certificates", "metrics"} {
		if info, err := os.Stat(filepath.Join(dataDir, sub)); err != nil || !info.IsDir() {
			t.Fatalf("expected %s directory: %v", sub, err)
		}
	}
	cfg, err := NewConfig(projectDir)
	if err != nil {
		t.Fatalf("NewConfig: %v", err)
	}
	if cfg.Settings.Logging.Level != "info" || cfg.Settings.Logging.Console {
		t.Fatalf("unexpected logging settings: %+v", cfg.Settings.Logging)
	}
	if !cfg.StableCertificates() {
		t.Fatalf("expected stable certificates from default file")
	}
}

func TestLoadSettingsParsesYaml(t *testing.T) {
	projectDir := t.TempDir()
	dataDir := filepath.Join(projectDir, DataDirName)
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		t.Fatal(err)
	}
	configYAML := strings.TrimSpace(`
version: 1
quiz:
  pass_threshold: 80
certificates:
  stable: false
  backdate_days: 0
notifications:
  seed_welcome: false
catalog:
  path: training/modules.yaml
logging:
  level: DEBUG
  console: true
`)
	if err := os.WriteFile(filepath.Join(dataDir, "config.yaml"), []byte(configYAML), 0o644); err != nil {
		t.Fatal(err)
	}
	c := &Config{ProjectDir: projectDir, DataDir: dataDir, Settings: defaultSettings()}
	if err := c.loadSettings(); err != nil {
		t.Fatalf("loadSettings returned error: %v", err)
	}
	if c.PassThreshold() != 80 {
		t.Fatalf("expected pass threshold 80, got %v", c.PassThreshold())
	}
	if c.StableCertificates() || c.SeedWelcome() {
		t.Fatalf("expected stable and seed_welcome to be false")
	}
	if c.BackdateDays() != 0 {
		t.Fatalf("expected backdate 0, got %d", c.BackdateDays())
	}
	if want := filepath.Join(projectDir, "training", "modules.yaml"); c.CatalogPath() != want {
		t.Fatalf("expected catalog path %s, got %s", want, c.CatalogPath())
	}
	if c.Settings.Logging.Level != "debug" {
		t.Fatalf("expected normalized level, got %s", c.Settings.Logging.Level)
	}
}

func TestLoadSettingsValidation(t *testing.T) {
	cases := map[string]string{
		"threshold": "quiz:\n  pass_threshold: 150\n",
		"backdate":  "certificates:\n  backdate_days: -1\n",
		"level":     "logging:\n  level: loud\n",
		"version":   "version: -2\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			projectDir := t.TempDir()
			dataDir := filepath.Join(projectDir, DataDirName)
			if err := os.MkdirAll(dataDir, 0o755); err != nil {
				t.Fatal(err)
			}
			if err := os.WriteFile(filepath.Join(dataDir, "config.yaml"), []byte(body), 0o644); err != nil {
				t.Fatal(err)
			}
			c := &Config{ProjectDir: projectDir, DataDir: dataDir, Settings: defaultSettings()}
			err := c.loadSettings()
			if err == nil {
				t.Fatalf("expected validation error but got none")
			}
			if !strings.HasPrefix(err.Error(), "config:") {
				t.Fatalf("expected config-prefixed error, got %v", err)
			}
		})
	}
}

func TestEnvironmentOverrides(t *testing.T) {
	projectDir := t.TempDir()
	home := filepath.Join(t.TempDir(), "elsewhere")
	t.Setenv(EnvHome, home)
	t.Setenv(EnvLogLevel, "WARN")
	cfg, err := NewConfig(projectDir)
	if err != nil {
		t.Fatalf("NewConfig: %v", err)
	}
	if cfg.DataDir != home {
		t.Fatalf("expected data dir %s, got %s", home, cfg.DataDir)
	}
	if cfg.Settings.Logging.Level != "warn" {
		t.Fatalf("expected warn level from env, got %s", cfg.Settings.Logging.Level)
	}

	t.Setenv(EnvLogLevel, "chatty")
	if _, err := NewConfig(projectDir); err == nil {
		t.Fatalf("expected invalid env level to be rejected")
	}
}

func TestDotEnvFileIsLoaded(t *testing.T) {
	projectDir := t.TempDir()
	home := filepath.Join(projectDir, "from-dotenv")
	t.Setenv(EnvHome, "")
	t.Setenv(EnvLogLevel, "")
	os.Unsetenv(EnvHome)
	os.Unsetenv(EnvLogLevel)
	if err := os.WriteFile(filepath.Join(projectDir, ".env"), []byte("SECUREAWARE_HOME=from-dotenv\nSECUREAWARE_LOG_LEVEL=error\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := NewConfig(projectDir)
	if err != nil {
		t.Fatalf("NewConfig: %v", err)
	}
	if cfg.DataDir != home {
		t.Fatalf("expected data dir %s, got %s", home, cfg.DataDir)
	}
	if cfg.Settings.Logging.Level != "error" {
		t.Fatalf("expected error level from .env, got %s", cfg.Settings.Logging.Level)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	projectDir := t.TempDir()
	t.Setenv(EnvHome, "")
	t.Setenv(EnvLogLevel, "")
	cfg, err := NewConfig(projectDir)
	if err != nil {
		t.Fatalf("NewConfig: %v", err)
	}
	if err := cfg.SetStableCertificates(false); err != nil {
		t.Fatalf("SetStableCertificates: %v", err)
	}
	reloaded, err := NewConfig(projectDir)
	if err != nil {
		t.Fatalf("NewConfig: %v", err)
	}
	if reloaded.StableCertificates() {
		t.Fatalf("expected stable=false to persist")
	}
}
