package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/sadopc/tabtrackr/internal/classify"
	"github.com/sadopc/tabtrackr/internal/store"
)

const (
	RetentionWeek    = "week"
	RetentionForever = "forever"

	envPrefix = "TABTRACKR_"
)

var ErrInvalid = errors.New("invalid config")

// Config holds every setting of the daemon, the popup and the one-shot
// commands. Durations are written as Go duration strings ("30m").
type Config struct {
	DBPath            string         `yaml:"db_path"`
	Listen            string         `yaml:"listen"`
	LogFile           string         `yaml:"log_file"`
	Notifier          string         `yaml:"notifier"`
	TaskCheckInterval time.Duration  `yaml:"task_check_interval"`
	PruneInterval     time.Duration  `yaml:"prune_interval"`
	RefreshInterval   time.Duration  `yaml:"refresh_interval"`
	LedgerRetention   string         `yaml:"ledger_retention"`
	Classifier        ClassifierList `yaml:"classifier"`
}

// ClassifierList holds domains added to the built-in category lists.
type ClassifierList struct {
	Work     []string `yaml:"work"`
	Learning []string `yaml:"learning"`
}

// Dir returns the directory holding the config file and the default database.
func Dir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("config dir: %w", err)
	}
	return filepath.Join(dir, "tabtrackr"), nil
}

// DefaultPath returns the config file location.
func DefaultPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Default returns the built-in settings.
func Default() *Config {
	dir, err := Dir()
	if err != nil {
		dir = "."
	}
	dbPath, err := store.DefaultDBPath()
	if err != nil {
		dbPath = filepath.Join(dir, "tabtrackr.db")
	}
	return &Config{
		DBPath:            dbPath,
		Listen:            "127.0.0.1:7433",
		LogFile:           filepath.Join(dir, "tabtrackr.log"),
		Notifier:          "auto",
		TaskCheckInterval: 30 * time.Minute,
		PruneInterval:     24 * time.Hour,
		RefreshInterval:   60 * time.Second,
		LedgerRetention:   RetentionWeek,
	}
}

// Load reads the YAML file at path over the defaults. A missing file yields
// the defaults. An empty path means DefaultPath.
func Load(path string) (*Config, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	cfg := Default()
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadDotEnv loads .env files into the process environment without
// overriding variables that are already set. Missing files are skipped.
func LoadDotEnv(paths ...string) error {
	for _, p := range paths {
		if _, err := os.Stat(p); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// ApplyEnv overrides settings from TABTRACKR_* variables read through getenv.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	str := func(name string, dst *string) {
		if v := strings.TrimSpace(getenv(envPrefix + name)); v != "" {
			*dst = v
		}
	}
	dur := func(name string, dst *time.Duration) error {
		v := strings.TrimSpace(getenv(envPrefix + name))
		if v == "" {
			return nil
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s%s: %w", envPrefix, name, err)
		}
		*dst = d
		return nil
	}

	str("DB", &c.DBPath)
	str("LISTEN", &c.Listen)
	str("LOG_FILE", &c.LogFile)
	str("NOTIFIER", &c.Notifier)
	str("LEDGER_RETENTION", &c.LedgerRetention)
	if err := dur("TASK_CHECK_INTERVAL", &c.TaskCheckInterval); err != nil {
		return err
	}
	if err := dur("PRUNE_INTERVAL", &c.PruneInterval); err != nil {
		return err
	}
	return dur("REFRESH_INTERVAL", &c.RefreshInterval)
}

// Validate reports the first setting that cannot be used.
func (c *Config) Validate() error {
	if c.DBPath == "" {
		return fmt.Errorf("%w: db_path is empty", ErrInvalid)
	}
	for name, d := range map[string]time.Duration{
		"task_check_interval": c.TaskCheckInterval,
		"prune_interval":      c.PruneInterval,
		"refresh_interval":    c.RefreshInterval,
	} {
		if d <= 0 {
			return fmt.Errorf("%w: %s must be positive", ErrInvalid, name)
		}
	}
	switch c.LedgerRetention {
	case RetentionWeek, RetentionForever:
	default:
		return fmt.Errorf("%w: ledger_retention must be %q or %q", ErrInvalid, RetentionWeek, RetentionForever)
	}
	return nil
}

// KeepLedger reports whether ledger days survive the weekly sweep.
func (c *Config) KeepLedger() bool {
	return c.LedgerRetention == RetentionForever
}

// BuildClassifier returns the default classifier extended with the
// configured domains.
func (c *Config) BuildClassifier() classify.Classifier {
	return classify.New(c.Classifier.Work, c.Classifier.Learning)
}

// Save writes the config as YAML, creating the directory if needed.
func Save(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
