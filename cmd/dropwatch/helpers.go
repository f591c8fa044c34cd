package main

import (
	"time"

	"dropwatch/internal/config"
)

// withoutTopic clones the config with notifications disabled, yielding a
// noop notification service.
func withoutTopic(cfg *config.Config) *config.Config {
	clone := *cfg
	clone.Notifications.NtfyTopic = ""
	return &clone
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}

func formatTimePtr(value *time.Time) string {
	if value == nil {
		return "never"
	}
	return value.UTC().Format("2006-01-02 15:04")
}

func truncate(value string, max int) string {
	if max <= 3 || len(value) <= max {
		return value
	}
	return value[:max-3] + "..."
}
