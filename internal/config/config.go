package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	yaml "go.yaml.in/yaml/v3"
)

// Config is the runner's own settings, distinct from the task roster it
// polls. All fields are optional; zero values fall back to defaults.
type Config struct {
	Roster       string `yaml:"roster"`
	BaseDir      string `yaml:"base_dir"`
	LogFile      string `yaml:"log_file"`
	HistoryDB    string `yaml:"history_db"`
	PollInterval string `yaml:"poll_interval"`
	PollWindow   string `yaml:"poll_window"`
	LockPort     int    `yaml:"lock_port"`
}

const (
	DefaultRoster       = "process_schedule.csv"
	DefaultLogFile      = "task_log.log"
	DefaultHistoryDB    = "taskcycle.db"
	DefaultPollInterval = 5 * time.Minute
	DefaultLockPort     = 62000
)

func Default() Config {
	return Config{
		Roster:    DefaultRoster,
		LogFile:   DefaultLogFile,
		HistoryDB: DefaultHistoryDB,
		LockPort:  DefaultLockPort,
	}
}

// Load reads a YAML config file. A missing file is not an error; defaults
// apply. Unknown keys are rejected so a typo doesn't silently fall back to a
// default.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) validate() error {
	if _, err := c.Interval(); err != nil {
		return err
	}
	if _, err := c.Window(); err != nil {
		return err
	}
	if c.LockPort < 0 || c.LockPort > 65535 {
		return fmt.Errorf("lock_port %d out of range", c.LockPort)
	}
	return nil
}

// Interval resolves poll_interval, defaulting when unset.
func (c Config) Interval() (time.Duration, error) {
	raw := strings.TrimSpace(c.PollInterval)
	if raw == "" {
		return DefaultPollInterval, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("poll_interval %q: %w", c.PollInterval, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("poll_interval must be positive, got %q", c.PollInterval)
	}
	return d, nil
}

// Window resolves poll_window into a cron schedule, nil when unset. When set
// it replaces the fixed interval: cycles start only at window activations.
func (c Config) Window() (cron.Schedule, error) {
	raw := strings.TrimSpace(c.PollWindow)
	if raw == "" {
		return nil, nil
	}
	sched, err := cron.ParseStandard(raw)
	if err != nil {
		return nil, fmt.Errorf("poll_window %q: %w", c.PollWindow, err)
	}
	return sched, nil
}
