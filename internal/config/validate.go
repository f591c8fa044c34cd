package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateCatalog(); err != nil {
		return err
	}
	if err := c.validateSources(); err != nil {
		return err
	}
	if err := c.validateMonitor(); err != nil {
		return err
	}
	if err := c.validateNotifications(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateCatalog() error {
	if c.Catalog.ClientID == "" || c.Catalog.ClientSecret == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/dropwatch/config.toml"
		}
		return fmt.Errorf("catalog.client_id and catalog.client_secret are required. Set SPOTIFY_CLIENT_ID/SPOTIFY_CLIENT_SECRET env vars or edit %s (create with 'dropwatch config init')", defaultPath)
	}
	if err := ensurePositiveMap(map[string]int{
		"catalog.request_timeout": c.Catalog.RequestTimeout,
		"catalog.search_limit":    c.Catalog.SearchLimit,
	}); err != nil {
		return err
	}
	if c.Catalog.SearchLimit > 50 {
		return errors.New("catalog.search_limit must be at most 50")
	}
	if c.Catalog.CooldownSeconds < 0 {
		return errors.New("catalog.cooldown_seconds must be >= 0")
	}
	return nil
}

func (c *Config) validateSources() error {
	if !c.Sources.Metacritic && !c.Sources.Genius && !c.Sources.Wikipedia {
		return errors.New("sources: at least one source must be enabled")
	}
	if c.Sources.RequestTimeout <= 0 {
		return errors.New("sources.request_timeout must be positive")
	}
	if strings.TrimSpace(c.Sources.UserAgent) == "" {
		return errors.New("sources.user_agent must be set")
	}
	return nil
}

func (c *Config) validateMonitor() error {
	if err := ensurePositiveMap(map[string]int{
		"monitor.pass_interval":         c.Monitor.PassInterval,
		"monitor.error_retry_interval":  c.Monitor.ErrorRetryInterval,
		"monitor.subject_refresh_hours": c.Monitor.SubjectRefreshHours,
	}); err != nil {
		return err
	}
	if c.Monitor.PacingSeconds < 0 {
		return errors.New("monitor.pacing_seconds must be >= 0")
	}
	return nil
}

func (c *Config) validateNotifications() error {
	if c.Notifications.RequestTimeout <= 0 {
		return errors.New("notifications.request_timeout must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
