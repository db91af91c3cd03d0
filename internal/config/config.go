package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

const envPrefix = "CTM_"

type Config struct {
	// Client
	ServerURL       string `yaml:"server_url" toml:"server_url"`
	DisplayTimezone string `yaml:"display_timezone" toml:"display_timezone"`
	InputTimezone   string `yaml:"input_timezone" toml:"input_timezone"`
	RequestTimeout  string `yaml:"request_timeout" toml:"request_timeout"`
	LogFile         string `yaml:"log_file" toml:"log_file"`

	// Server
	ListenAddr     string   `yaml:"listen_addr" toml:"listen_addr"`
	DBDriver       string   `yaml:"db_driver" toml:"db_driver"`
	DBDSN          string   `yaml:"db_dsn" toml:"db_dsn"`
	AllowedOrigins []string `yaml:"allowed_origins" toml:"allowed_origins"`
	Seed           bool     `yaml:"seed" toml:"seed"`

	// Resolved by Load
	Timeout    time.Duration  `yaml:"-" toml:"-"`
	DisplayLoc *time.Location `yaml:"-" toml:"-"`
	InputLoc   *time.Location `yaml:"-" toml:"-"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		ServerURL:       "http://localhost:8080",
		DisplayTimezone: "Europe/London",
		InputTimezone:   "Local",
		RequestTimeout:  "10s",
		LogFile:         filepath.Join(stateDir(), "ctm.log"),
		ListenAddr:      ":8080",
		DBDriver:        "sqlite3",
		DBDSN:           filepath.Join(dataDir(), "ctm.db"),
		AllowedOrigins:  []string{"*"},
	}
}

// Load builds the configuration from defaults, the optional file at path,
// a .env file in the working directory and CTM_* environment variables,
// in that order of precedence (last wins).
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	_ = godotenv.Load(".env")
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.resolve(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, c)
	case ".toml":
		err = toml.Unmarshal(data, c)
	default:
		return fmt.Errorf("unsupported config format %q", filepath.Ext(path))
	}
	if err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	c.ServerURL = getEnv("SERVER_URL", c.ServerURL)
	c.DisplayTimezone = getEnv("DISPLAY_TIMEZONE", c.DisplayTimezone)
	c.InputTimezone = getEnv("INPUT_TIMEZONE", c.InputTimezone)
	c.RequestTimeout = getEnv("REQUEST_TIMEOUT", c.RequestTimeout)
	c.LogFile = getEnv("LOG_FILE", c.LogFile)
	c.ListenAddr = getEnv("LISTEN_ADDR", c.ListenAddr)
	c.DBDriver = getEnv("DB_DRIVER", c.DBDriver)
	c.DBDSN = getEnv("DB_DSN", c.DBDSN)

	if value, ok := os.LookupEnv(envPrefix + "ALLOWED_ORIGINS"); ok {
		c.AllowedOrigins = parseList(value)
	}
	if value, ok := os.LookupEnv(envPrefix + "SEED"); ok {
		seed, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%sSEED: %w", envPrefix, err)
		}
		c.Seed = seed
	}
	return nil
}

func (c *Config) resolve() error {
	timeout, err := time.ParseDuration(c.RequestTimeout)
	if err != nil {
		return fmt.Errorf("request_timeout: %w", err)
	}
	if timeout <= 0 {
		return fmt.Errorf("request_timeout must be positive, got %s", c.RequestTimeout)
	}
	c.Timeout = timeout

	if c.DisplayLoc, err = time.LoadLocation(c.DisplayTimezone); err != nil {
		return fmt.Errorf("display_timezone: %w", err)
	}
	if c.InputLoc, err = time.LoadLocation(c.InputTimezone); err != nil {
		return fmt.Errorf("input_timezone: %w", err)
	}

	c.ServerURL = strings.TrimRight(c.ServerURL, "/")
	return nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(envPrefix + key); exists {
		return value
	}
	return fallback
}

func parseList(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}

	parts := strings.Split(value, ",")
	items := make([]string, 0, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item == "" {
			continue
		}
		items = append(items, item)
	}

	if len(items) == 0 {
		return nil
	}
	return items
}

// dataDir returns the directory for persistent data
func dataDir() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, "ctm")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "ctm")
}

// stateDir returns the directory for logs
func stateDir() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, "ctm")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "state", "ctm")
}
