package main

import (
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"dropwatch/internal/catalog"
	"dropwatch/internal/config"
	"dropwatch/internal/logging"
	"dropwatch/internal/notify"
	"dropwatch/internal/trackstore"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// withStore opens the tracking state store for the duration of fn.
func (c *commandContext) withStore(fn func(*config.Config, *trackstore.Store) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	store, err := trackstore.Open(cfg)
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(cfg, store)
}

func (c *commandContext) newLogger() (*slog.Logger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return logging.NewFromConfig(cfg)
}

// newCorrelator builds the catalog client and correlator from configuration.
func (c *commandContext) newCorrelator(logger *slog.Logger) (*catalog.Correlator, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	client, err := catalog.New(cfg.Catalog)
	if err != nil {
		return nil, err
	}
	return catalog.NewCorrelator(client, logger,
		catalog.WithCooldown(time.Duration(cfg.Catalog.CooldownSeconds)*time.Second),
		catalog.WithSearchLimit(cfg.Catalog.SearchLimit),
	), nil
}

func (c *commandContext) newNotifier() (notify.Service, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return notify.NewService(cfg), nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
