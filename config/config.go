package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/cli/go-gh/pkg/auth"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/spiffcs/usersearch/internal/constants"
)

// Output formats accepted by default_format.
const (
	FormatTable    = "table"
	FormatJSON     = "json"
	FormatMarkdown = "markdown"
)

// Config represents the application configuration
type Config struct {
	BaseURL       string    `yaml:"base_url,omitempty"`
	PageSize      int       `yaml:"page_size,omitempty"`
	Debounce      *Duration `yaml:"debounce,omitempty"`
	DefaultFormat string    `yaml:"default_format,omitempty"`
}

// Duration is a time.Duration that reads and writes as "500ms" style strings.
type Duration struct {
	time.Duration
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (interface{}, error) {
	return d.String(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return fmt.Errorf("debounce must be a duration string: %w", err)
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid debounce %q: %w", s, err)
	}
	d.Duration = parsed
	return nil
}

// DefaultConfigDir returns the default config directory
func DefaultConfigDir() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return ".usersearch"
	}
	return filepath.Join(configDir, "usersearch")
}

// ConfigPath returns the path to the config file
func ConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.yaml")
}

// LocalConfigPath returns the path to the local config file in the current directory
func LocalConfigPath() string {
	return ".usersearch.yaml"
}

// LogPath returns the file logs are written to while the TUI owns the terminal.
func LogPath() string {
	return filepath.Join(DefaultConfigDir(), "usersearch.log")
}

// ConfigFileExists returns true if the config file exists on disk
func ConfigFileExists() bool {
	_, err := os.Stat(ConfigPath())
	return err == nil
}

// Load loads the configuration from disk.
// A .env file in the working directory is loaded into the environment first.
// Then the global config is read from the user config directory and any
// local .usersearch.yaml is merged on top (local values take precedence).
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	return LoadFrom(ConfigPath(), LocalConfigPath())
}

// LoadFrom loads and merges the global and local config files at the given
// paths. Missing files are skipped.
func LoadFrom(globalPath, localPath string) (*Config, error) {
	cfg := &Config{}

	global, err := readFile(globalPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load global config file: %w", err)
	}
	if global != nil {
		cfg = global
	}

	local, err := readFile(localPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load local config file: %w", err)
	}
	if local != nil {
		cfg = mergeConfig(cfg, local)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func readFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return &cfg, nil
}

// mergeConfig merges local config on top of global config.
// Local values take precedence; unset local values preserve global values.
func mergeConfig(global, local *Config) *Config {
	result := *global

	if local.BaseURL != "" {
		result.BaseURL = local.BaseURL
	}
	if local.PageSize != 0 {
		result.PageSize = local.PageSize
	}
	if local.Debounce != nil {
		d := *local.Debounce
		result.Debounce = &d
	}
	if local.DefaultFormat != "" {
		result.DefaultFormat = local.DefaultFormat
	}

	return &result
}

func (c *Config) applyDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = constants.DefaultBaseURL
	}
	if c.PageSize == 0 {
		c.PageSize = constants.PageSize
	}
	if c.Debounce == nil {
		c.Debounce = &Duration{constants.DebounceDelay}
	}
	if c.DefaultFormat == "" {
		c.DefaultFormat = FormatTable
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.PageSize < 1 || c.PageSize > constants.MaxPageSize {
		return fmt.Errorf("page_size must be between 1 and %d, got %d", constants.MaxPageSize, c.PageSize)
	}
	if c.Debounce != nil && c.Debounce.Duration < 0 {
		return fmt.Errorf("debounce must not be negative, got %s", c.Debounce)
	}
	switch c.DefaultFormat {
	case FormatTable, FormatJSON, FormatMarkdown:
	default:
		return fmt.Errorf("default_format must be table, json or markdown, got %q", c.DefaultFormat)
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid base_url: %w", err)
	}
	if !u.IsAbs() || u.Host == "" {
		return fmt.Errorf("base_url must be an absolute URL, got %q", c.BaseURL)
	}
	return nil
}

// DebounceDelay returns the configured debounce, or the default if unset.
func (c *Config) DebounceDelay() time.Duration {
	if c.Debounce == nil {
		return constants.DebounceDelay
	}
	return c.Debounce.Duration
}

// Save saves the configuration to disk
func (c *Config) Save() error {
	data, err := c.ToYAML()
	if err != nil {
		return err
	}
	return SaveTo(ConfigPath(), data)
}

// tokenForHost is replaced in tests.
var tokenForHost = auth.TokenForHost

// GetGitHubToken returns the token used to authenticate API requests.
// GITHUB_TOKEN (from the environment or .env) wins; otherwise a token stored
// by the gh CLI for github.com is used. An empty string means anonymous.
func (c *Config) GetGitHubToken() string {
	if token := os.Getenv("GITHUB_TOKEN"); token != "" {
		return token
	}
	token, _ := tokenForHost(constants.DefaultHost)
	return token
}

// DefaultConfig returns a fully populated config with all default values.
// This is useful for generating a complete config file template.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:       constants.DefaultBaseURL,
		PageSize:      constants.PageSize,
		Debounce:      &Duration{constants.DebounceDelay},
		DefaultFormat: FormatTable,
	}
}

// ToYAML returns the config as a YAML string
func (c *Config) ToYAML() (string, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("failed to marshal config: %w", err)
	}
	return string(data), nil
}

// ConfigPathInfo contains information about config file paths
type ConfigPathInfo struct {
	GlobalPath   string
	GlobalExists bool
	LocalPath    string
	LocalExists  bool
}

// GetConfigPaths returns path info for both global and local configs
func GetConfigPaths() ConfigPathInfo {
	globalPath := ConfigPath()
	localPath := LocalConfigPath()

	absLocalPath, err := filepath.Abs(localPath)
	if err != nil {
		absLocalPath = localPath
	}

	_, globalErr := os.Stat(globalPath)
	_, localErr := os.Stat(localPath)

	return ConfigPathInfo{
		GlobalPath:   globalPath,
		GlobalExists: globalErr == nil,
		LocalPath:    absLocalPath,
		LocalExists:  localErr == nil,
	}
}

// MinimalConfig returns a minimal config template with comments
func MinimalConfig() string {
	return `# usersearch configuration file
# See: usersearch config defaults  (for all available options)

# Output format for lookup: table, json or markdown
default_format: table

# Repositories per page (1-100)
# page_size: 6

# Quiet time after the last keystroke before a search starts
# debounce: 500ms

# API root, for GitHub Enterprise (optional)
# base_url: https://github.example.com/api/v3/

# Authentication is read from GITHUB_TOKEN or the gh CLI, never from this file.
`
}

// SaveTo writes content to a specific path, creating directories as needed
func SaveTo(path string, content string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		return fmt.Errorf("failed to write file %s: %w", path, err)
	}

	return nil
}
