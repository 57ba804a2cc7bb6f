package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for rsaviz.
type Config struct {
	LogLevel string `yaml:"log_level"` // debug, info, warn, error

	Visualizer Visualizer     `yaml:"visualizer"`
	MITM       MITM           `yaml:"mitm"`
	Database   DatabaseConfig `yaml:"database"`
}

// Visualizer holds the mapping animation defaults.
type Visualizer struct {
	P            int64         `yaml:"p"`
	Q            int64         `yaml:"q"`
	E            int64         `yaml:"e"`
	MessageStart int64         `yaml:"message_start"`
	MessageEnd   int64         `yaml:"message_end"`
	Speed        int           `yaml:"speed"`     // 1..100
	TickUnit     time.Duration `yaml:"tick_unit"` // one speed unit, tick = (100-speed)*unit
	Layout       string        `yaml:"layout"`    // linear | elliptical
	MaxRange     int           `yaml:"max_range"`
	Width        float64       `yaml:"width"`
	Height       float64       `yaml:"height"`
}

// MITM holds the Diffie-Hellman demo defaults. Zero private keys are random.
type MITM struct {
	P            int64 `yaml:"p"`
	G            int64 `yaml:"g"`
	Alice        int64 `yaml:"alice"`
	Bob          int64 `yaml:"bob"`
	MalloryAlice int64 `yaml:"mallory_alice"`
	MalloryBob   int64 `yaml:"mallory_bob"`
}

// DatabaseConfig holds PostgreSQL connection parameters for the run journal.
type DatabaseConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// Default returns Config with the classic 7/11/17 example.
func Default() Config {
	return Config{
		LogLevel: "info",
		Visualizer: Visualizer{
			P:            7,
			Q:            11,
			E:            17,
			MessageStart: 0,
			MessageEnd:   20,
			Speed:        50,
			TickUnit:     time.Millisecond,
			Layout:       "linear",
			MaxRange:     1000,
			Width:        1200,
			Height:       600,
		},
		MITM: MITM{
			P: 23,
			G: 5,
		},
		Database: DatabaseConfig{
			Enabled:  false,
			Host:     "127.0.0.1",
			Port:     5432,
			User:     "rsaviz",
			Password: "rsaviz",
			DBName:   "rsaviz",
			SSLMode:  "disable",
		},
	}
}

// Load loads config from a YAML file.
// If the file doesn't exist, returns defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}

	return cfg, nil
}

// SlogLevel maps LogLevel to a slog.Level, defaulting to info.
func (c Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
