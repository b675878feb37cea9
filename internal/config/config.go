package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Keys shared by flags, environment variables and the optional config file.
const (
	KeyServerPort         = "server_port"
	KeyStorageRoot        = "storage_root"
	KeyRoute              = "ueditor_route"
	KeySettingsFile       = "ueditor_settings"
	KeyCatcherConcurrency = "catcher_concurrency"
	KeyCatcherTimeout     = "catcher_timeout"
	KeyAllowOrigins       = "cors_allow_origins"
	KeyShutdownTimeout    = "shutdown_timeout"
)

// Config is the server configuration resolved from defaults, file, env and flags.
type Config struct {
	ServerPort         string
	StorageRoot        string
	Route              string
	SettingsFile       string
	CatcherConcurrency int
	CatcherTimeout     time.Duration
	AllowOrigins       []string
	ShutdownTimeout    time.Duration
}

// New returns a viper instance with defaults set and every key bound to its
// upper-cased environment variable, e.g. SERVER_PORT.
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault(KeyServerPort, "3003")
	v.SetDefault(KeyStorageRoot, "public")
	v.SetDefault(KeyRoute, "/ueditor")
	v.SetDefault(KeySettingsFile, "")
	v.SetDefault(KeyCatcherConcurrency, 8)
	v.SetDefault(KeyCatcherTimeout, 30*time.Second)
	v.SetDefault(KeyAllowOrigins, []string{"*"})
	v.SetDefault(KeyShutdownTimeout, 10*time.Second)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// LoadConfig reads the configuration, merging in configFile when one is given.
func LoadConfig(v *viper.Viper, configFile string) (*Config, error) {
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
	}

	cfg := &Config{
		ServerPort:         v.GetString(KeyServerPort),
		StorageRoot:        v.GetString(KeyStorageRoot),
		Route:              v.GetString(KeyRoute),
		SettingsFile:       v.GetString(KeySettingsFile),
		CatcherConcurrency: v.GetInt(KeyCatcherConcurrency),
		CatcherTimeout:     v.GetDuration(KeyCatcherTimeout),
		AllowOrigins:       splitList(v.GetStringSlice(KeyAllowOrigins)),
		ShutdownTimeout:    v.GetDuration(KeyShutdownTimeout),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects values the server cannot start with.
func (c *Config) Validate() error {
	if c.ServerPort == "" {
		return fmt.Errorf("server port must not be empty")
	}
	if c.StorageRoot == "" {
		return fmt.Errorf("storage root must not be empty")
	}
	if !strings.HasPrefix(c.Route, "/") {
		return fmt.Errorf("route %q must start with /", c.Route)
	}
	if c.CatcherConcurrency <= 0 {
		return fmt.Errorf("catcher concurrency must be positive, got %d", c.CatcherConcurrency)
	}
	if c.CatcherTimeout <= 0 {
		return fmt.Errorf("catcher timeout must be positive, got %s", c.CatcherTimeout)
	}
	return nil
}

// splitList accepts both repeated values and a single comma separated value,
// which is how a list arrives from an environment variable.
func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, item := range strings.Split(v, ",") {
			if item = strings.TrimSpace(item); item != "" {
				out = append(out, item)
			}
		}
	}
	return out
}
