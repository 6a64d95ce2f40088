package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Service describes where the remote analysis service lives.
type Service struct {
	BaseURL        string `toml:"base_url"`
	EndpointPath   string `toml:"endpoint_path"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Analysis contains the parameters submitted with every analysis request.
type Analysis struct {
	DefaultPrompt      string   `toml:"default_prompt"`
	DefaultFPS         float64  `toml:"default_fps"`
	MinFPS             float64  `toml:"min_fps"`
	MaxFPS             float64  `toml:"max_fps"`
	TestMode           bool     `toml:"test_mode"`
	AcceptedExtensions []string `toml:"accepted_extensions"`
	ProbeBinary        string   `toml:"probe_binary"`
}

// Player contains configuration for the external media engine.
type Player struct {
	Binary        string  `toml:"binary"`
	DefaultVolume float64 `toml:"default_volume"`
	SocketDir     string  `toml:"socket_dir"`
}

// Notifications contains configuration for ntfy push notifications.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
	Complete       bool   `toml:"complete"`
	Errors         bool   `toml:"errors"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
	Dir    string `toml:"dir"`
}

// Config encapsulates all configuration values for sportanalyzer.
//
// Configuration sections by subsystem:
//   - Service: analysis service base URL, endpoint path, and timeout
//   - Analysis: default prompt, sampling rate bounds, accepted containers
//   - Player: media engine binary and defaults
//   - Notifications: ntfy push notification settings
//   - Logging: log format, level, and optional file output
type Config struct {
	Service       Service       `toml:"service"`
	Analysis      Analysis      `toml:"analysis"`
	Player        Player        `toml:"player"`
	Notifications Notifications `toml:"notifications"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/sportanalyzer/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("sportanalyzer.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates directories the CLI writes into.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Logging.Dir, c.Player.SocketDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// AnalyzeURL returns the absolute URL of the analysis endpoint.
func (c *Config) AnalyzeURL() string {
	return strings.TrimRight(c.Service.BaseURL, "/") + "/" + strings.TrimLeft(c.Service.EndpointPath, "/")
}

// RequestTimeout returns the overall request timeout for analysis requests.
// Zero means no timeout beyond the caller's context.
func (c *Config) RequestTimeout() time.Duration {
	if c.Service.TimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(c.Service.TimeoutSeconds) * time.Second
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// Encode renders the configuration as TOML.
func (c *Config) Encode() (string, error) {
	var b strings.Builder
	encoder := toml.NewEncoder(&b)
	encoder.SetIndentTables(true)
	if err := encoder.Encode(c); err != nil {
		return "", fmt.Errorf("encode config: %w", err)
	}
	return b.String(), nil
}
