package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

// Config represents the complete configuration
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Overlay OverlayConfig `mapstructure:"overlay"`
	MCP     MCPConfig     `mapstructure:"mcp"`
	Slack   SlackConfig   `mapstructure:"slack"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// ServerConfig contains HTTP listener settings
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// Addr returns host:port
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, fmt.Sprint(s.Port))
}

// OverlayConfig contains presentation settings
type OverlayConfig struct {
	Mode              string   `mapstructure:"mode"`
	Position          Position `mapstructure:"position"`
	DiffCollapseLines int      `mapstructure:"diff_collapse_lines"`
}

// MCPConfig contains settings for the approval_prompt MCP tool
type MCPConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// SlackConfig contains settings for the optional Slack presenter
type SlackConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	BotToken      string `mapstructure:"bot_token"`
	SigningSecret string `mapstructure:"signing_secret"`
	ChannelID     string `mapstructure:"channel_id"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// Overlay modes
const (
	ModeTUI      = "tui"
	ModeHeadless = "headless"
)

// DefaultPort is the documented port the hook expects
const DefaultPort = 19191

// Store keeps the viper instance behind a loaded Config so the overlay
// position can be written back and the file watched for changes.
type Store struct {
	v    *viper.Viper
	path string // explicit config file, if any
}

// Load loads configuration from file and environment variables
func Load() (*Config, error) {
	_, cfg, err := Open("")
	return cfg, err
}

// Open loads configuration. A non-empty path forces that config file;
// otherwise config.yaml is searched in . and $HOME/.config/cc-nod.
func Open(path string) (*Store, *Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if dir, err := configDir(); err == nil {
			v.AddConfigPath(dir)
		}
	}

	// Environment variable settings
	v.SetEnvPrefix("CC_NOD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Explicitly bind environment variables
	v.BindEnv("server.host")
	v.BindEnv("server.port")
	v.BindEnv("overlay.mode")
	v.BindEnv("overlay.position")
	v.BindEnv("slack.bot_token")
	v.BindEnv("slack.signing_secret")
	v.BindEnv("slack.channel_id")

	setDefaultsWithViper(v)

	// Read config file if exists
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	config, err := unmarshal(v)
	if err != nil {
		return nil, nil, err
	}

	return &Store{v: v, path: path}, config, nil
}

func unmarshal(v *viper.Viper) (*Config, error) {
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &config, nil
}

// setDefaultsWithViper sets default values with a specific viper instance
func setDefaultsWithViper(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", DefaultPort)

	// Overlay defaults
	v.SetDefault("overlay.mode", ModeTUI)
	v.SetDefault("overlay.position", string(PositionTop))
	v.SetDefault("overlay.diff_collapse_lines", 5)

	// Transport defaults
	v.SetDefault("mcp.enabled", true)
	v.SetDefault("slack.enabled", false)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "./logs")
}

// validate validates the configuration
func (c *Config) validate() error {
	// The listener must never be reachable from other hosts
	if !isLoopback(c.Server.Host) {
		return fmt.Errorf("server.host must be a loopback address: %s", c.Server.Host)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port: %d", c.Server.Port)
	}

	if c.Overlay.Mode != ModeTUI && c.Overlay.Mode != ModeHeadless {
		return fmt.Errorf("overlay.mode must be %q or %q: %s", ModeTUI, ModeHeadless, c.Overlay.Mode)
	}
	if !c.Overlay.Position.Valid() {
		return fmt.Errorf("invalid overlay.position: %s", c.Overlay.Position)
	}
	if c.Overlay.DiffCollapseLines < 0 {
		return fmt.Errorf("overlay.diff_collapse_lines must not be negative")
	}

	if c.Slack.Enabled {
		if c.Slack.BotToken == "" {
			return fmt.Errorf("slack.bot_token is required when slack is enabled")
		}
		if c.Slack.SigningSecret == "" {
			return fmt.Errorf("slack.signing_secret is required when slack is enabled")
		}
		if c.Slack.ChannelID == "" {
			return fmt.Errorf("slack.channel_id is required when slack is enabled")
		}
	}

	if _, err := zerolog.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("invalid logging.level: %w", err)
	}
	if c.Logging.Format != "json" && c.Logging.Format != "console" {
		return fmt.Errorf("logging.format must be json or console: %s", c.Logging.Format)
	}

	return nil
}

func isLoopback(host string) bool {
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

// ConfigFileUsed returns the file the configuration was read from, if any
func (s *Store) ConfigFileUsed() string {
	return s.v.ConfigFileUsed()
}

// SavePosition persists overlay.position. Only the config file's own
// contents are rewritten, so values that came from the environment (tokens)
// are never copied into it.
func (s *Store) SavePosition(pos Position) error {
	if !pos.Valid() {
		return fmt.Errorf("invalid overlay position: %s", pos)
	}

	path := s.ConfigFileUsed()
	if path == "" {
		path = s.path
	}
	if path == "" {
		dir, err := configDir()
		if err != nil {
			return err
		}
		path = filepath.Join(dir, "config.yaml")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	fv := viper.New()
	fv.SetConfigFile(path)
	if _, err := os.Stat(path); err == nil {
		if err := fv.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}
	fv.Set("overlay.position", string(pos))

	if err := fv.WriteConfigAs(path); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Watch calls onChange with the reloaded configuration whenever the config
// file changes. Invalid edits are reported to onError and otherwise ignored.
// It returns false when no config file is in use.
func (s *Store) Watch(onChange func(*Config), onError func(error)) bool {
	if s.ConfigFileUsed() == "" {
		return false
	}
	s.v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		cfg, err := unmarshal(s.v)
		if err != nil {
			if onError != nil {
				onError(err)
			}
			return
		}
		onChange(cfg)
	})
	s.v.WatchConfig()
	return true
}

func configDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home dir: %w", err)
	}
	return filepath.Join(home, ".config", "cc-nod"), nil
}
