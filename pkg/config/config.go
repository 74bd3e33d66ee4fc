package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Version is reported in the default User-Agent
var Version = "dev"

// Config represents the application configuration
type Config struct {
	API       APIConfig       `mapstructure:"api"`
	Timeouts  TimeoutsConfig  `mapstructure:"timeouts"`
	Transport TransportConfig `mapstructure:"transport"`
	Storage   StorageConfig   `mapstructure:"storage"`
	UI        UIConfig        `mapstructure:"ui"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// APIConfig holds the backend endpoints
type APIConfig struct {
	BaseURLs     []string `mapstructure:"base_urls"`
	AuthURL      string   `mapstructure:"auth_url"`
	StreamMethod string   `mapstructure:"stream_method"` // get or post
	SendToken    bool     `mapstructure:"send_token"`
	UserAgent    string   `mapstructure:"user_agent"`
}

// TimeoutsConfig holds the per-attempt time limits
type TimeoutsConfig struct {
	StreamStart time.Duration `mapstructure:"stream_start"`
	StreamIdle  time.Duration `mapstructure:"stream_idle"`
	Buffered    time.Duration `mapstructure:"buffered"`
}

// TransportConfig holds attempt pacing for the fallback loop
type TransportConfig struct {
	AttemptsPerSecond float64 `mapstructure:"attempts_per_second"`
	AttemptBurst      int     `mapstructure:"attempt_burst"`
}

// StorageConfig holds the location of the client-local store
type StorageConfig struct {
	Path      string `mapstructure:"path"`
	Ephemeral bool   `mapstructure:"ephemeral"`
}

// UIConfig holds presentation settings
type UIConfig struct {
	Format      string `mapstructure:"format"` // text, markdown or html
	Style       string `mapstructure:"style"`  // glamour style name
	WordWrap    int    `mapstructure:"word_wrap"`
	ShowElapsed bool   `mapstructure:"show_elapsed"`
}

// LoggingConfig holds logging-related configuration
type LoggingConfig struct {
	LogFile  string `mapstructure:"log_file"`
	Preserve bool   `mapstructure:"preserve"`
	Level    string `mapstructure:"level"`
}

var (
	// Global config instance
	cfg *Config
)

// Get returns the global config instance
func Get() *Config {
	if cfg == nil {
		panic("config not initialized")
	}
	return cfg
}

// Load loads configuration from file and environment
func Load(cfgFile string) (*Config, error) {
	// Set defaults first
	setDefaults()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}

		xdgConfigHome := os.Getenv("XDG_CONFIG_HOME")
		if xdgConfigHome == "" {
			xdgConfigHome = filepath.Join(home, ".config")
		}

		viper.AddConfigPath("./.liftchat") // Check project directory first
		viper.AddConfigPath(filepath.Join(xdgConfigHome, ".liftchat"))
		viper.SetConfigType("yaml")
		viper.SetConfigName("settings")
	}

	viper.SetEnvPrefix("LIFTCHAT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// A missing file is fine, a broken one is not
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	loaded := &Config{}
	if err := viper.Unmarshal(loaded); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := loaded.normalize(); err != nil {
		return nil, err
	}

	cfg = loaded
	return cfg, nil
}

// setDefaults sets all default configuration values
func setDefaults() {
	viper.SetDefault("api.base_urls", []string{
		"https://www.liftingchat.com",
		"https://liftingchat.com",
	})
	viper.SetDefault("api.auth_url", "")
	viper.SetDefault("api.stream_method", "get")
	viper.SetDefault("api.send_token", true)
	viper.SetDefault("api.user_agent", "liftchat/"+Version)

	viper.SetDefault("timeouts.stream_start", "30s")
	viper.SetDefault("timeouts.stream_idle", "60s")
	viper.SetDefault("timeouts.buffered", "45s")

	viper.SetDefault("transport.attempts_per_second", 5.0)
	viper.SetDefault("transport.attempt_burst", 2)

	viper.SetDefault("storage.path", "~/.liftchat/local.json")
	viper.SetDefault("storage.ephemeral", false)

	viper.SetDefault("ui.format", "text")
	viper.SetDefault("ui.style", "auto")
	viper.SetDefault("ui.word_wrap", 80)
	viper.SetDefault("ui.show_elapsed", true)

	viper.SetDefault("logging.log_file", "./.liftchat/system.log")
	viper.SetDefault("logging.preserve", false)
	viper.SetDefault("logging.level", "info")
}

// normalize validates values viper cannot check and fills derived defaults
func (c *Config) normalize() error {
	bases := make([]string, 0, len(c.API.BaseURLs))
	for _, raw := range c.API.BaseURLs {
		// Env overrides arrive as a single comma separated value
		for _, part := range strings.Split(raw, ",") {
			base := strings.TrimRight(strings.TrimSpace(part), "/")
			if base == "" {
				continue
			}
			u, err := url.Parse(base)
			if err != nil || u.Scheme == "" || u.Host == "" {
				return fmt.Errorf("invalid api.base_urls entry %q", part)
			}
			bases = append(bases, base)
		}
	}
	if len(bases) == 0 {
		return fmt.Errorf("api.base_urls must contain at least one URL")
	}
	c.API.BaseURLs = bases

	if c.API.AuthURL == "" {
		c.API.AuthURL = bases[0]
	}
	c.API.AuthURL = strings.TrimRight(c.API.AuthURL, "/")

	c.API.StreamMethod = strings.ToLower(c.API.StreamMethod)
	switch c.API.StreamMethod {
	case "get", "post":
	default:
		return fmt.Errorf("invalid api.stream_method %q: want get or post", c.API.StreamMethod)
	}

	if c.Timeouts.StreamStart <= 0 {
		return fmt.Errorf("invalid timeouts.stream_start: must be positive")
	}
	if c.Timeouts.Buffered <= 0 {
		return fmt.Errorf("invalid timeouts.buffered: must be positive")
	}
	if c.Timeouts.StreamIdle < 0 {
		return fmt.Errorf("invalid timeouts.stream_idle: must not be negative")
	}

	switch c.UI.Format {
	case "text", "markdown", "html":
	default:
		return fmt.Errorf("invalid ui.format %q: want text, markdown or html", c.UI.Format)
	}

	c.Storage.Path = ExpandHome(c.Storage.Path)
	return nil
}

// ExpandHome resolves a leading ~ to the user's home directory
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
