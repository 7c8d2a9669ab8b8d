package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all service configuration
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Mongo      MongoConfig      `yaml:"mongo"`
	Redis      RedisConfig      `yaml:"redis"`
	Auth       AuthConfig       `yaml:"auth"`
	Resolution ResolutionConfig `yaml:"resolution"`
	Logging    LoggingConfig    `yaml:"logging"`
}

type ServerConfig struct {
	HTTPPort        string `yaml:"http_port"`
	ShutdownTimeout string `yaml:"shutdown_timeout"`
}

type MongoConfig struct {
	URI      string `yaml:"uri"`
	Database string `yaml:"database"`
}

type RedisConfig struct {
	Addr        string `yaml:"addr"`
	SnapshotTTL string `yaml:"snapshot_ttl"` // Template structure cache lifetime
	ApplyLock   string `yaml:"apply_lock"`   // How long an apply holds the study lock
}

type AuthConfig struct {
	Username  string `yaml:"username"`
	Password  string `yaml:"password"`
	JWTSecret string `yaml:"-"` // Env only
}

// ResolutionConfig configures the content inclusion resolver
type ResolutionConfig struct {
	// MatchPolicy is "subset" or "exact" for multi-coded rules
	MatchPolicy string `yaml:"match_policy"`
	// StrictValidation rejects templates with integrity issues instead of logging them
	StrictValidation bool `yaml:"strict_validation"`
}

type LoggingConfig struct {
	Level       string `yaml:"level"` // debug, info, warn, error
	Development bool   `yaml:"development"`
}

// Default returns the configuration used when no file is given
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPPort:        "8080",
			ShutdownTimeout: "30s",
		},
		Mongo: MongoConfig{
			URI:      "mongodb://localhost:27017",
			Database: "studybuilder",
		},
		Redis: RedisConfig{
			Addr:        "localhost:6379",
			SnapshotTTL: "10m",
			ApplyLock:   "30s",
		},
		Auth: AuthConfig{
			Username:  "admin",
			Password:  "password123",
			JWTSecret: "super-secret-key-change-in-production",
		},
		Resolution: ResolutionConfig{
			MatchPolicy: "subset",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads an optional YAML file over the defaults, then applies environment overrides
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnvOverrides() error {
	c.Server.HTTPPort = getEnv("HTTP_PORT", c.Server.HTTPPort)
	c.Mongo.URI = getEnv("MONGO_URI", c.Mongo.URI)
	c.Mongo.Database = getEnv("MONGO_DATABASE", c.Mongo.Database)
	c.Redis.Addr = trimRedisScheme(getEnv("REDIS_ADDR", c.Redis.Addr))
	c.Redis.SnapshotTTL = getEnv("SNAPSHOT_TTL", c.Redis.SnapshotTTL)
	c.Redis.ApplyLock = getEnv("APPLY_LOCK_TTL", c.Redis.ApplyLock)
	c.Auth.Username = getEnv("AUTHOR_USERNAME", c.Auth.Username)
	c.Auth.Password = getEnv("AUTHOR_PASSWORD", c.Auth.Password)
	c.Auth.JWTSecret = getEnv("JWT_SECRET", c.Auth.JWTSecret)
	c.Resolution.MatchPolicy = getEnv("RESOLVER_MATCH_POLICY", c.Resolution.MatchPolicy)
	if v := os.Getenv("RESOLVER_STRICT_VALIDATION"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("parse RESOLVER_STRICT_VALIDATION: %w", err)
		}
		c.Resolution.StrictValidation = b
	}
	c.Logging.Level = getEnv("LOG_LEVEL", c.Logging.Level)
	return nil
}

// SnapshotTTL returns the parsed template cache lifetime, 10m when unparseable
func (c *Config) SnapshotTTL() time.Duration {
	return parseDuration(c.Redis.SnapshotTTL, 10*time.Minute)
}

// ApplyLockTTL returns the parsed apply lock lifetime, 30s when unparseable
func (c *Config) ApplyLockTTL() time.Duration {
	return parseDuration(c.Redis.ApplyLock, 30*time.Second)
}

// ShutdownTimeout returns the parsed graceful shutdown timeout, 30s when unparseable
func (c *Config) ShutdownTimeout() time.Duration {
	return parseDuration(c.Server.ShutdownTimeout, 30*time.Second)
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

// Remove redis:// prefix if present
func trimRedisScheme(addr string) string {
	if len(addr) > 8 && addr[:8] == "redis://" {
		return addr[8:]
	}
	return addr
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
