// Waypoint - Travel Personalization and Notification Scheduling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths searched for a config file, in order.
// The first file found is used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/waypoint/config.yaml",
	"/etc/waypoint/config.yml",
}

// ConfigPathEnvVar overrides the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// Load loads configuration with Koanf v2 from layered sources:
//  1. Defaults: built-in defaults
//  2. Config file: optional YAML file
//  3. Environment variables: override any mapped setting
//
// The result is validated before it is returned.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	// HTTP_PORT -> server.port, NOTIFY_PASS_SCHEDULE -> notifications.pass_schedule
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// findConfigFile returns CONFIG_PATH when it exists, else the first of
// DefaultConfigPaths that exists, else "".
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// sliceConfigPaths are parsed as comma-separated lists when they come from
// the environment.
var sliceConfigPaths = []string{
	"server.cors_origins",
	"notifications.scheduler.peak_hours",
	"notifications.default_policy.disabled_kinds",
}

// processSliceFields splits comma-separated string values of the known
// slice fields. YAML lists are left alone.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// envMappings maps environment variable names (lowercased) to config paths.
// Unmapped variables are ignored.
var envMappings = map[string]string{
	// Server
	"http_host":             "server.host",
	"http_port":             "server.port",
	"http_read_timeout":     "server.read_timeout",
	"http_write_timeout":    "server.write_timeout",
	"http_idle_timeout":     "server.idle_timeout",
	"http_shutdown_timeout": "server.shutdown_timeout",
	"environment":           "server.environment",
	"cors_origins":          "server.cors_origins",
	"rate_limit_requests":   "server.rate_limit_requests",
	"rate_limit_window":     "server.rate_limit_window",
	"disable_rate_limit":    "server.rate_limit_disabled",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	// Storage
	"storage_path":          "storage.path",
	"storage_in_memory":     "storage.in_memory",
	"storage_sync_writes":   "storage.sync_writes",
	"storage_compression":   "storage.compression",
	"storage_gc_interval":   "storage.gc_interval",
	"storage_gc_ratio":      "storage.gc_ratio",
	"storage_close_timeout": "storage.close_timeout",

	// Learning and recommendation
	"learning_interval":      "learning.interval",
	"learning_on_startup":    "learning.run_on_startup",
	"learning_timeout":       "learning.timeout",
	"recommend_default_k":    "recommend.limits.default_k",
	"recommend_max_k":        "recommend.limits.max_k",
	"recommend_queue_size":   "recommend.worker.queue_size",
	"search_max_suggestions": "search.max_suggestions",
	"history_limit":          "personalize.history_limit",

	// Notifications
	"notify_pass_schedule":      "notifications.pass_schedule",
	"notify_pass_on_startup":    "notifications.run_on_startup",
	"notify_pass_timeout":       "notifications.pass_timeout",
	"notify_due_interval":       "notifications.due_interval",
	"notify_due_grace":          "personalize.due_grace",
	"notify_cleanup_interval":   "notifications.cleanup_interval",
	"notify_retention":          "personalize.retention",
	"notify_timezone":           "notifications.timezone",
	"notify_random_seed":        "notifications.random_seed",
	"notify_dispatch_interval":  "notifications.dispatch.tick_interval",
	"notify_peak_hours":         "notifications.scheduler.peak_hours",
	"notify_delivery_retries":   "notifications.delivery.max_retries",
	"notify_disabled_kinds":     "notifications.default_policy.disabled_kinds",
	"notify_quiet_hours":        "notifications.default_policy.respect_quiet_hours",
	"notify_quiet_start":        "notifications.default_policy.quiet_hours_start",
	"notify_quiet_end":          "notifications.default_policy.quiet_hours_end",
	"notify_max_daily":          "notifications.default_policy.max_daily_count",
	"notify_min_spacing":        "notifications.default_policy.min_spacing_minutes",
	"notify_min_priority":       "notifications.default_policy.min_priority",
	"notify_min_relevance":      "notifications.default_policy.min_relevance",
	"notify_location_radius_km": "notifications.default_policy.location_radius_km",

	// Geo
	"geo_radius_km":    "geo.radius_km",
	"geo_cell_size_km": "geo.cell_size_km",

	// Webhook
	"webhook_url":           "webhook.url",
	"webhook_timeout":       "webhook.timeout",
	"webhook_rate_limit":    "webhook.rate_limit",
	"webhook_burst":         "webhook.burst",
	"webhook_authorization": "webhook.authorization",

	// Events
	"events_enabled":         "events.enabled",
	"events_buffer":          "events.bus.buffer",
	"events_block_until_ack": "events.bus.block_until_ack",
	"events_retry_max":       "events.consumer.retry_max_retries",

	// Supervisor
	"supervisor_failure_threshold": "supervisor.failure_threshold",
	"supervisor_failure_decay":     "supervisor.failure_decay",
	"supervisor_failure_backoff":   "supervisor.failure_backoff",
	"supervisor_shutdown_timeout":  "supervisor.shutdown_timeout",
}

// envTransformFunc maps an environment variable name to its config path,
// or "" to skip it.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
