package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateService(); err != nil {
		return err
	}
	if err := c.validateAnalysis(); err != nil {
		return err
	}
	if err := c.validatePlayer(); err != nil {
		return err
	}
	if err := c.validateNotifications(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateService() error {
	parsed, err := url.Parse(c.Service.BaseURL)
	if err != nil {
		return fmt.Errorf("service.base_url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("service.base_url must use http or https, got %q", c.Service.BaseURL)
	}
	if parsed.Host == "" {
		return fmt.Errorf("service.base_url must include a host, got %q", c.Service.BaseURL)
	}
	if c.Service.TimeoutSeconds < 0 {
		return errors.New("service.timeout_seconds must be zero or positive")
	}
	return nil
}

func (c *Config) validateAnalysis() error {
	if c.Analysis.MinFPS > c.Analysis.MaxFPS {
		return fmt.Errorf("analysis.min_fps (%g) must not exceed analysis.max_fps (%g)", c.Analysis.MinFPS, c.Analysis.MaxFPS)
	}
	if c.Analysis.DefaultFPS < c.Analysis.MinFPS || c.Analysis.DefaultFPS > c.Analysis.MaxFPS {
		return fmt.Errorf("analysis.default_fps must be between %g and %g", c.Analysis.MinFPS, c.Analysis.MaxFPS)
	}
	return nil
}

func (c *Config) validatePlayer() error {
	if c.Player.DefaultVolume < 0 || c.Player.DefaultVolume > 1 {
		return errors.New("player.default_volume must be between 0 and 1")
	}
	return nil
}

func (c *Config) validateNotifications() error {
	topic := c.Notifications.NtfyTopic
	if topic == "" {
		return nil
	}
	if !strings.HasPrefix(topic, "http://") && !strings.HasPrefix(topic, "https://") {
		return fmt.Errorf("notifications.ntfy_topic must be a full URL, got %q", topic)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}
