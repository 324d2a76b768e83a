package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/guiyumin/linkbot/internal/core/webs"
)

const (
	ConfigFileName = "config.yml"
	AppDirName     = "linkbot"
)

// ConfigDir returns the standard config directory for linkbot.
// Windows: %APPDATA%\linkbot\
// macOS/Linux: ~/.config/linkbot/
func ConfigDir() (string, error) {
	if runtime.GOOS == "windows" {
		appData := os.Getenv("APPDATA")
		if appData != "" {
			return filepath.Join(appData, AppDirName), nil
		}
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", AppDirName), nil
}

// ConfigPath returns the path to the config file.
// e.g., ~/.config/linkbot/config.yml
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ConfigFileName), nil
}

type Config struct {
	// LogLevel is a zerolog level name ("debug", "info", ...)
	LogLevel string `yaml:"log_level,omitempty"`

	// Server is the chat server to connect to
	Server ServerConfig `yaml:"server"`

	// Keys are the upstream API credentials
	Keys KeysConfig `yaml:"keys"`

	// Titles tunes URL resolution
	Titles TitlesConfig `yaml:"titles"`

	// HTTP configures `linkbot serve`
	HTTP HTTPConfig `yaml:"http"`
}

// ServerConfig holds the chat connection settings
type ServerConfig struct {
	Hostname string   `yaml:"hostname"`
	Port     int      `yaml:"port,omitempty"`
	TLS      *bool    `yaml:"tls,omitempty"`
	Nick     string   `yaml:"nick"`
	User     string   `yaml:"user,omitempty"`
	RealName string   `yaml:"real_name,omitempty"`
	Channels []string `yaml:"channels"`
}

// UseTLS reports whether to connect over TLS. Unset means yes.
func (s ServerConfig) UseTLS() bool {
	return s.TLS == nil || *s.TLS
}

// KeysConfig holds per-provider credentials
type KeysConfig struct {
	ImgurClientID       string `yaml:"imgur_client_id,omitempty"`
	TwitterAppKey       string `yaml:"twitter_app_key,omitempty"`
	TwitterAppSecret    string `yaml:"twitter_app_secret,omitempty"`
	SpotifyClientID     string `yaml:"spotify_client_id,omitempty"`
	SpotifyClientSecret string `yaml:"spotify_client_secret,omitempty"`
	YouTubeDeveloperKey string `yaml:"youtube_developer_key,omitempty"`
}

// Webs converts the credentials for the HTTP collaborator
func (k KeysConfig) Webs() webs.Keys {
	return webs.Keys(k)
}

// TitlesConfig tunes the title resolver
type TitlesConfig struct {
	// PreviewBytes is how much of a page is read looking for a title
	PreviewBytes int `yaml:"preview_bytes,omitempty"`

	// FetchTimeout bounds the resolution of one URL
	FetchTimeout time.Duration `yaml:"fetch_timeout,omitempty"`

	// MaxParallel is how many URLs of one message resolve at once
	MaxParallel int `yaml:"max_parallel,omitempty"`
}

// HTTPConfig holds settings for `linkbot serve`
type HTTPConfig struct {
	// Port is the HTTP listen port (default: 8080)
	Port int `yaml:"port,omitempty"`

	// APIKey for authentication (optional, if set all requests must include X-API-Key header)
	APIKey string `yaml:"api_key,omitempty"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	tls := true
	return &Config{
		LogLevel: "info",
		Server: ServerConfig{
			Port:     6697,
			TLS:      &tls,
			Nick:     "linkbot",
			User:     "linkbot",
			RealName: "linkbot",
			Channels: []string{},
		},
		Titles: TitlesConfig{
			PreviewBytes: 64 * 4096,
			FetchTimeout: 10 * time.Second,
			MaxParallel:  4,
		},
		HTTP: HTTPConfig{
			Port: 8080,
		},
	}
}

// applyDefaults fills every unset field from DefaultConfig
func (c *Config) applyDefaults() {
	d := DefaultConfig()
	if c.LogLevel == "" {
		c.LogLevel = d.LogLevel
	}
	if c.Server.Port == 0 {
		c.Server.Port = d.Server.Port
	}
	if c.Server.Nick == "" {
		c.Server.Nick = d.Server.Nick
	}
	if c.Server.User == "" {
		c.Server.User = c.Server.Nick
	}
	if c.Server.RealName == "" {
		c.Server.RealName = c.Server.Nick
	}
	if c.Titles.PreviewBytes <= 0 {
		c.Titles.PreviewBytes = d.Titles.PreviewBytes
	}
	if c.Titles.FetchTimeout <= 0 {
		c.Titles.FetchTimeout = d.Titles.FetchTimeout
	}
	if c.Titles.MaxParallel <= 0 {
		c.Titles.MaxParallel = d.Titles.MaxParallel
	}
	if c.HTTP.Port == 0 {
		c.HTTP.Port = d.HTTP.Port
	}
}

// Validate checks the settings needed to join a chat server
func (c *Config) Validate() error {
	var errs []error
	if c.Server.Hostname == "" {
		errs = append(errs, errors.New("server.hostname is required"))
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range", c.Server.Port))
	}
	for _, field := range []string{c.Server.Nick, c.Server.User} {
		if strings.ContainsAny(field, " \r\n") {
			errs = append(errs, fmt.Errorf("server nick/user %q contains whitespace", field))
		}
	}
	for _, ch := range c.Server.Channels {
		if ch == "" || strings.ContainsAny(ch, " ,\r\n\a") {
			errs = append(errs, fmt.Errorf("invalid channel name %q", ch))
		}
	}
	return errors.Join(errs...)
}

// Masked returns a copy with every credential hidden, for display
func (c *Config) Masked() *Config {
	out := *c
	out.Server.Channels = append([]string(nil), c.Server.Channels...)
	k := &out.Keys
	for _, s := range []*string{
		&k.ImgurClientID, &k.TwitterAppKey, &k.TwitterAppSecret,
		&k.SpotifyClientID, &k.SpotifyClientSecret, &k.YouTubeDeveloperKey,
		&out.HTTP.APIKey,
	} {
		*s = mask(*s)
	}
	return &out
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 8 {
		return "****"
	}
	return s[:4] + "****"
}

// Exists checks if config file exists
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Resolve returns override with a leading tilde expanded, or the default
// config path when override is empty.
func Resolve(override string) (string, error) {
	if override != "" {
		return expandPath(override), nil
	}
	return ConfigPath()
}

// Load reads the config from path and fills in defaults
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config file not found: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	cfg.applyDefaults()

	return cfg, nil
}

// expandPath expands the tilde (~) in the path to the user's home directory.
// Both "~/" and "~\" prefixes are accepted on every platform.
func expandPath(path string) string {
	if path == "" {
		return ""
	}

	if strings.HasPrefix(path, "~") {
		if len(path) == 1 || path[1] == '/' || path[1] == '\\' {
			home, err := os.UserHomeDir()
			if err == nil {
				subPath := path[1:]
				if len(subPath) > 0 && (subPath[0] == '/' || subPath[0] == '\\') {
					subPath = subPath[1:]
				}
				return filepath.Join(home, subPath)
			}
		}
	}

	return path
}

// Save writes the config to path, creating its directory
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	header := "# linkbot configuration file\n# Run 'linkbot init' to regenerate with defaults\n\n"
	content := header + string(data)

	return os.WriteFile(path, []byte(content), 0600)
}

// Init creates a new config file with default values
func Init(path string) error {
	if Exists(path) {
		return fmt.Errorf("%s already exists", path)
	}
	return Save(path, DefaultConfig())
}

// LoadOrDefault loads config if it exists, otherwise returns defaults
func LoadOrDefault(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		cfg = DefaultConfig()
	}
	return cfg
}
