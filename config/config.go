package config

import (
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/coreybb/itemgate/datastore"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultPort            = "8080"
	DefaultBasePath        = "/mongoDb"
	DefaultSourceAName     = "source-a"
	DefaultSourceBName     = "source-b"
	DefaultShutdownTimeout = 15 * time.Second
	DefaultLogLevel        = "info"
)

// Environment variables read by Load.
const (
	EnvPort            = "PORT"
	EnvBasePath        = "BASE_PATH"
	EnvSourceAURL      = "SOURCE_A_URL"
	EnvSourceBURL      = "SOURCE_B_URL"
	EnvSourceAName     = "SOURCE_A_NAME"
	EnvSourceBName     = "SOURCE_B_NAME"
	EnvLegacySourceA   = "MONGO_URL_1"
	EnvLegacySourceB   = "MONGO_URL_2"
	EnvFetchTimeout    = "FETCH_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"
	EnvLogLevel        = "LOG_LEVEL"
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// SourceConfig identifies one item source.
type SourceConfig struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// Config is the full gateway configuration.
type Config struct {
	Port            string        `yaml:"port"`
	BasePath        string        `yaml:"base_path"`
	SourceA         SourceConfig  `yaml:"source_a"`
	SourceB         SourceConfig  `yaml:"source_b"`
	FetchTimeout    time.Duration `yaml:"fetch_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	LogLevel        string        `yaml:"log_level"`
}

// LoadOptions names the optional files Load reads.
type LoadOptions struct {
	ConfigFile string // YAML file, skipped when empty
	EnvFile    string // dotenv file, skipped when missing
}

// Default returns a Config with every default applied and no sources.
func Default() Config {
	return Config{
		Port:            DefaultPort,
		BasePath:        DefaultBasePath,
		SourceA:         SourceConfig{Name: DefaultSourceAName},
		SourceB:         SourceConfig{Name: DefaultSourceBName},
		ShutdownTimeout: DefaultShutdownTimeout,
		LogLevel:        DefaultLogLevel,
	}
}

// Load builds a Config from defaults, then the YAML file, then the
// environment (after merging in the dotenv file). The result is not validated.
func Load(opts LoadOptions) (Config, error) {
	cfg := Default()

	if opts.ConfigFile != "" {
		if err := loadFile(opts.ConfigFile, &cfg); err != nil {
			return Config{}, err
		}
	}

	if opts.EnvFile != "" {
		// Existing environment variables win over the file.
		if err := godotenv.Load(opts.EnvFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return Config{}, fmt.Errorf("failed to load env file %s: %w", opts.EnvFile, err)
			}
			log.Printf("INFO: env file %s not found, using process environment only", opts.EnvFile)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	setString(&cfg.Port, EnvPort)
	setString(&cfg.BasePath, EnvBasePath)
	setString(&cfg.SourceA.Name, EnvSourceAName)
	setString(&cfg.SourceB.Name, EnvSourceBName)
	setString(&cfg.SourceA.URL, EnvLegacySourceA)
	setString(&cfg.SourceB.URL, EnvLegacySourceB)
	setString(&cfg.SourceA.URL, EnvSourceAURL)
	setString(&cfg.SourceB.URL, EnvSourceBURL)
	setString(&cfg.LogLevel, EnvLogLevel)

	if err := setDuration(&cfg.FetchTimeout, EnvFetchTimeout); err != nil {
		return err
	}
	return setDuration(&cfg.ShutdownTimeout, EnvShutdownTimeout)
}

func setString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, key string) error {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("%w: %s=%q is not a duration: %v", ErrInvalidConfig, key, v, err)
	}
	*dst = d
	return nil
}

// Validate reports the first problem that would keep the gateway from
// serving. Source URLs are required so the gateway never dials an empty
// connection string.
func (c Config) Validate() error {
	if port, err := strconv.Atoi(c.Port); err != nil || port < 0 || port > 65535 {
		return fmt.Errorf("%w: port %q must be a number between 0 and 65535", ErrInvalidConfig, c.Port)
	}

	sources := []struct {
		label  string
		envKey string
		src    SourceConfig
	}{
		{"source A", EnvSourceAURL, c.SourceA},
		{"source B", EnvSourceBURL, c.SourceB},
	}
	for _, s := range sources {
		if strings.TrimSpace(s.src.Name) == "" {
			return fmt.Errorf("%w: %s name is required", ErrInvalidConfig, s.label)
		}
		if strings.TrimSpace(s.src.URL) == "" {
			return fmt.Errorf("%w: %s URL is required (set %s)", ErrInvalidConfig, s.label, s.envKey)
		}
		if !datastore.SupportedScheme(s.src.URL) {
			return fmt.Errorf("%w: %s URL must start with mongodb://, mongodb+srv://, postgres:// or postgresql://", ErrInvalidConfig, s.label)
		}
	}
	if c.SourceA.Name == c.SourceB.Name {
		return fmt.Errorf("%w: source names must differ, both are %q", ErrInvalidConfig, c.SourceA.Name)
	}

	if c.FetchTimeout < 0 {
		return fmt.Errorf("%w: fetch timeout must not be negative", ErrInvalidConfig)
	}
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// ParseLogLevel maps a level name to a slog.Level.
func ParseLogLevel(level string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(level))); err != nil {
		return slog.LevelInfo, fmt.Errorf("%w: log level %q: %v", ErrInvalidConfig, level, err)
	}
	return l, nil
}
