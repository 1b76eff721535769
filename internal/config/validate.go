// Waypoint - Travel Personalization and Notification Scheduling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package config

import (
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/tomtom215/waypoint/internal/cron"
	"github.com/tomtom215/waypoint/internal/models"
	"github.com/tomtom215/waypoint/internal/validation"
)

// Validate checks every section and returns the first error found.
func (c *Config) Validate() error {
	checks := []struct {
		section string
		check   func() error
	}{
		{"server", c.Server.Validate},
		{"logging", c.Logging.Validate},
		{"storage", c.Storage.Validate},
		{"recommend", c.Recommend.Validate},
		{"learning", c.Learning.Validate},
		{"search", c.Search.Validate},
		{"personalize", c.Personalize.Validate},
		{"notifications", c.Notifications.Validate},
		{"geo", c.Geo.Validate},
		{"webhook", c.Webhook.Validate},
		{"events", c.Events.Validate},
		{"supervisor", c.Supervisor.Validate},
	}
	for _, ch := range checks {
		if err := ch.check(); err != nil {
			return fmt.Errorf("%s: %w", ch.section, err)
		}
	}
	return nil
}

// Validate checks the server settings.
func (c *ServerConfig) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port must be 1-65535, got %d", c.Port)
	}
	if c.ReadTimeout <= 0 || c.WriteTimeout <= 0 {
		return fmt.Errorf("read and write timeouts must be positive")
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("shutdown_timeout must be positive, got %v", c.ShutdownTimeout)
	}
	switch c.Environment {
	case "development", "production":
	default:
		return fmt.Errorf("environment must be development or production, got %q", c.Environment)
	}
	if c.IsProduction() {
		for _, o := range c.CORSOrigins {
			if o == "*" {
				return fmt.Errorf("wildcard CORS origin is not allowed in production")
			}
		}
	}
	if !c.RateLimitDisabled {
		if c.RateLimitRequests < 1 {
			return fmt.Errorf("rate_limit_requests must be positive, got %d", c.RateLimitRequests)
		}
		if c.RateLimitWindow <= 0 {
			return fmt.Errorf("rate_limit_window must be positive, got %v", c.RateLimitWindow)
		}
	}
	return nil
}

// IsProduction reports whether the server runs in production mode.
func (c *ServerConfig) IsProduction() bool {
	return c.Environment == "production"
}

// Validate checks the learning loop settings.
func (c *LearningConfig) Validate() error {
	if c.Interval < time.Minute {
		return fmt.Errorf("interval must be at least 1m, got %v", c.Interval)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %v", c.Timeout)
	}
	return nil
}

// Validate checks the notification settings, including the nested
// scheduler, generator, dispatch and delivery sections.
func (c *NotificationsConfig) Validate() error {
	if _, err := cron.Parse(c.PassSchedule); err != nil {
		return fmt.Errorf("pass_schedule: %w", err)
	}
	if c.PassTimeout <= 0 {
		return fmt.Errorf("pass_timeout must be positive, got %v", c.PassTimeout)
	}
	if c.DueInterval <= 0 || c.CleanupInterval <= 0 {
		return fmt.Errorf("due_interval and cleanup_interval must be positive")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if err := c.Scheduler.Validate(); err != nil {
		return fmt.Errorf("scheduler: %w", err)
	}
	if err := c.Generator.Validate(); err != nil {
		return fmt.Errorf("generator: %w", err)
	}
	if c.Dispatch.TickInterval <= 0 {
		return fmt.Errorf("dispatch.tick_interval must be positive, got %v", c.Dispatch.TickInterval)
	}
	if c.Delivery.MaxRetries < 0 || c.Delivery.BaseDelay < 0 || c.Delivery.MaxDelay < c.Delivery.BaseDelay {
		return fmt.Errorf("delivery retry settings are invalid: %+v", c.Delivery)
	}
	if err := c.DefaultPolicy.Validate(); err != nil {
		return fmt.Errorf("default_policy: %w", err)
	}
	return nil
}

// Location loads the configured timezone. Empty means time.Local.
func (c *NotificationsConfig) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// Validate checks the default policy with the same rules the API applies
// to policy updates.
func (c *PolicyConfig) Validate() error {
	known := make(map[string]bool, len(models.AllKinds))
	for _, k := range models.AllKinds {
		known[string(k)] = true
	}
	for _, k := range c.DisabledKinds {
		if !known[k] {
			return fmt.Errorf("unknown notification kind %q", k)
		}
	}
	p := c.Policy()
	return validation.Validate(&p)
}

// Validate checks the event settings.
func (c *EventsConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.Bus.OutputChannelBuffer < 0 {
		return fmt.Errorf("bus.buffer must not be negative, got %d", c.Bus.OutputChannelBuffer)
	}
	if c.Consumer.CloseTimeout <= 0 {
		return fmt.Errorf("consumer.close_timeout must be positive, got %v", c.Consumer.CloseTimeout)
	}
	if c.Consumer.RetryMaxRetries < 0 {
		return fmt.Errorf("consumer.retry_max_retries must not be negative, got %d", c.Consumer.RetryMaxRetries)
	}
	return nil
}

func joinHostPort(host string, port int) string {
	return net.JoinHostPort(host, strconv.Itoa(port))
}
