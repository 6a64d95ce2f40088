package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	c.normalizeService()
	c.normalizeAnalysis()
	if err := c.normalizePlayer(); err != nil {
		return err
	}
	c.normalizeNotifications()
	return c.normalizeLogging()
}

func (c *Config) normalizeService() {
	if value, ok := os.LookupEnv("SPORTANALYZER_BASE_URL"); ok && strings.TrimSpace(value) != "" {
		c.Service.BaseURL = value
	}
	c.Service.BaseURL = strings.TrimRight(strings.TrimSpace(c.Service.BaseURL), "/")
	if c.Service.BaseURL == "" {
		c.Service.BaseURL = defaultBaseURL
	}
	c.Service.EndpointPath = strings.TrimSpace(c.Service.EndpointPath)
	if c.Service.EndpointPath == "" {
		c.Service.EndpointPath = defaultEndpointPath
	}
	if !strings.HasPrefix(c.Service.EndpointPath, "/") {
		c.Service.EndpointPath = "/" + c.Service.EndpointPath
	}
}

func (c *Config) normalizeAnalysis() {
	if strings.TrimSpace(c.Analysis.DefaultPrompt) == "" {
		c.Analysis.DefaultPrompt = DefaultPrompt
	}
	if c.Analysis.MinFPS <= 0 {
		c.Analysis.MinFPS = defaultMinFPS
	}
	if c.Analysis.MaxFPS <= 0 {
		c.Analysis.MaxFPS = defaultMaxFPS
	}
	if c.Analysis.DefaultFPS <= 0 {
		c.Analysis.DefaultFPS = defaultDefaultFPS
	}
	c.Analysis.ProbeBinary = strings.TrimSpace(c.Analysis.ProbeBinary)
	if c.Analysis.ProbeBinary == "" {
		c.Analysis.ProbeBinary = defaultProbeBinary
	}

	if len(c.Analysis.AcceptedExtensions) == 0 {
		c.Analysis.AcceptedExtensions = DefaultAcceptedExtensions()
		return
	}
	exts := make([]string, 0, len(c.Analysis.AcceptedExtensions))
	seen := make(map[string]struct{}, len(c.Analysis.AcceptedExtensions))
	for _, ext := range c.Analysis.AcceptedExtensions {
		normalized := strings.ToLower(strings.TrimSpace(ext))
		if normalized == "" {
			continue
		}
		if !strings.HasPrefix(normalized, ".") {
			normalized = "." + normalized
		}
		if _, exists := seen[normalized]; exists {
			continue
		}
		seen[normalized] = struct{}{}
		exts = append(exts, normalized)
	}
	if len(exts) == 0 {
		exts = DefaultAcceptedExtensions()
	}
	c.Analysis.AcceptedExtensions = exts
}

func (c *Config) normalizePlayer() error {
	c.Player.Binary = strings.TrimSpace(c.Player.Binary)
	if c.Player.Binary == "" {
		c.Player.Binary = defaultPlayerBinary
	}
	if strings.TrimSpace(c.Player.SocketDir) == "" {
		c.Player.SocketDir = defaultPlayerSocketDir
	}
	var err error
	if c.Player.SocketDir, err = expandPath(c.Player.SocketDir); err != nil {
		return fmt.Errorf("player.socket_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNotifyRequestTimeout
	}
}

func (c *Config) normalizeLogging() error {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if strings.TrimSpace(c.Logging.Dir) == "" {
		c.Logging.Dir = ""
		return nil
	}
	var err error
	if c.Logging.Dir, err = expandPath(c.Logging.Dir); err != nil {
		return fmt.Errorf("logging.dir: %w", err)
	}
	return nil
}
