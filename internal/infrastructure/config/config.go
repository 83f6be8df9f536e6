package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"

	"github.com/GriffinCanCode/AgentOS/vpm/internal/domain/setting"
)

// Config holds all daemon configuration.
type Config struct {
	Server    ServerConfig
	Storage   StorageConfig
	Engine    EngineConfig
	Logging   LogConfig
	RateLimit RateLimitConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port string `envconfig:"PORT" default:"8000"`
	Host string `envconfig:"HOST" default:"0.0.0.0"`
}

// StorageConfig locates the virtual environment on disk.
type StorageConfig struct {
	Root             string `envconfig:"VPM_ROOT" default:"./vpm-data"`
	PolicyFile       string `envconfig:"VPM_POLICY" default:""`
	HostPackagesFile string `envconfig:"VPM_HOST_PACKAGES" default:""`
	BackupDir        string `envconfig:"VPM_BACKUP_DIR" default:"./vpm-backups"`
	SeedDir          string `envconfig:"VPM_SEED_DIR" default:""`
}

// EngineConfig describes the platform the views are generated for.
type EngineConfig struct {
	PlatformSDK int    `envconfig:"VPM_PLATFORM_SDK" default:"28"`
	HostABI     string `envconfig:"VPM_HOST_ABI" default:"armeabi-v7a"`
	DefaultUser int    `envconfig:"VPM_DEFAULT_USER" default:"0"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"100"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"200"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Validate checks values envconfig cannot.
func (c *Config) Validate() error {
	if c.Storage.Root == "" {
		return fmt.Errorf("VPM_ROOT cannot be empty")
	}
	if c.Engine.PlatformSDK < 1 {
		return fmt.Errorf("invalid platform sdk %d", c.Engine.PlatformSDK)
	}
	if !setting.ValidUserID(c.Engine.DefaultUser) {
		return fmt.Errorf("invalid default user %d", c.Engine.DefaultUser)
	}
	return nil
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port: "8000",
			Host: "0.0.0.0",
		},
		Storage: StorageConfig{
			Root:      "./vpm-data",
			BackupDir: "./vpm-backups",
		},
		Engine: EngineConfig{
			PlatformSDK: 28,
			HostABI:     "armeabi-v7a",
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 100,
			Burst:             200,
			Enabled:           true,
		},
	}
}
