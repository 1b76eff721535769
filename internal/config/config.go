// Waypoint - Travel Personalization and Notification Scheduling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package config

import (
	"time"

	"github.com/tomtom215/waypoint/internal/events"
	"github.com/tomtom215/waypoint/internal/geo"
	"github.com/tomtom215/waypoint/internal/logging"
	"github.com/tomtom215/waypoint/internal/models"
	"github.com/tomtom215/waypoint/internal/notify/delivery"
	"github.com/tomtom215/waypoint/internal/notify/generator"
	"github.com/tomtom215/waypoint/internal/notify/scheduler"
	"github.com/tomtom215/waypoint/internal/personalize"
	"github.com/tomtom215/waypoint/internal/recommend"
	"github.com/tomtom215/waypoint/internal/search"
	"github.com/tomtom215/waypoint/internal/store"
	"github.com/tomtom215/waypoint/internal/supervisor"
)

// Config holds all application configuration.
type Config struct {
	Server        ServerConfig           `koanf:"server"`
	Logging       logging.Config         `koanf:"logging"`
	Storage       store.Config           `koanf:"storage"`
	Recommend     recommend.Config       `koanf:"recommend"`
	Learning      LearningConfig         `koanf:"learning"`
	Search        search.Config          `koanf:"search"`
	Personalize   personalize.Config     `koanf:"personalize"`
	Notifications NotificationsConfig    `koanf:"notifications"`
	Geo           geo.Config             `koanf:"geo"`
	Webhook       delivery.WebhookConfig `koanf:"webhook"`
	Events        EventsConfig           `koanf:"events"`
	Supervisor    supervisor.TreeConfig  `koanf:"supervisor"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`

	// Environment is "development" or "production". Production refuses a
	// wildcard CORS origin.
	Environment string `koanf:"environment"`

	CORSOrigins []string `koanf:"cors_origins"`

	// Write endpoints are rate limited per client IP.
	RateLimitRequests int           `koanf:"rate_limit_requests"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// Addr returns the listen address.
func (c ServerConfig) Addr() string {
	return joinHostPort(c.Host, c.Port)
}

// LearningConfig controls the periodic learning pass.
type LearningConfig struct {
	Interval     time.Duration `koanf:"interval"`
	RunOnStartup bool          `koanf:"run_on_startup"`
	Timeout      time.Duration `koanf:"timeout"`
}

// NotificationsConfig controls generation, scheduling and dispatch.
type NotificationsConfig struct {
	// PassSchedule is the cron expression for notification passes.
	PassSchedule string        `koanf:"pass_schedule"`
	RunOnStartup bool          `koanf:"run_on_startup"`
	PassTimeout  time.Duration `koanf:"pass_timeout"`

	// DueInterval is how often missed notifications are rescheduled.
	DueInterval time.Duration `koanf:"due_interval"`
	// CleanupInterval is how often expired records are removed.
	CleanupInterval time.Duration `koanf:"cleanup_interval"`

	// Timezone is the IANA zone that quiet hours, peak hours and the
	// schedule are evaluated in. Empty means the host's local zone.
	Timezone string `koanf:"timezone"`

	// RandomSeed seeds the generator's sampling. Zero seeds from the clock.
	RandomSeed int64 `koanf:"random_seed"`

	Scheduler     scheduler.Config       `koanf:"scheduler"`
	Generator     generator.Config       `koanf:"generator"`
	Dispatch      delivery.TimerConfig   `koanf:"dispatch"`
	Delivery      delivery.ManagerConfig `koanf:"delivery"`
	DefaultPolicy PolicyConfig           `koanf:"default_policy"`
}

// PolicyConfig is the notification policy written to the store on first
// start. Later changes go through the API.
type PolicyConfig struct {
	DisabledKinds     []string `koanf:"disabled_kinds"`
	RespectQuietHours bool     `koanf:"respect_quiet_hours"`
	QuietHoursStart   int      `koanf:"quiet_hours_start"`
	QuietHoursEnd     int      `koanf:"quiet_hours_end"`
	MaxDailyCount     int      `koanf:"max_daily_count"`
	MinSpacingMinutes int      `koanf:"min_spacing_minutes"`
	MinPriority       int      `koanf:"min_priority"`
	MinRelevance      float64  `koanf:"min_relevance"`
	LocationRadiusKm  float64  `koanf:"location_radius_km"`
}

// Policy converts the configured defaults into a models.Policy with every
// kind enabled except DisabledKinds.
func (c PolicyConfig) Policy() models.Policy {
	p := models.DefaultPolicy()
	for _, k := range c.DisabledKinds {
		p.Enabled[models.NotificationKind(k)] = false
	}
	p.RespectQuietHours = c.RespectQuietHours
	p.QuietHoursStart = c.QuietHoursStart
	p.QuietHoursEnd = c.QuietHoursEnd
	p.MaxDailyCount = c.MaxDailyCount
	p.MinSpacingMinutes = c.MinSpacingMinutes
	p.MinPriority = c.MinPriority
	p.MinRelevance = c.MinRelevance
	p.LocationRadiusKm = c.LocationRadiusKm
	return p
}

func policyConfigFrom(p models.Policy) PolicyConfig {
	return PolicyConfig{
		DisabledKinds:     []string{},
		RespectQuietHours: p.RespectQuietHours,
		QuietHoursStart:   p.QuietHoursStart,
		QuietHoursEnd:     p.QuietHoursEnd,
		MaxDailyCount:     p.MaxDailyCount,
		MinSpacingMinutes: p.MinSpacingMinutes,
		MinPriority:       p.MinPriority,
		MinRelevance:      p.MinRelevance,
		LocationRadiusKm:  p.LocationRadiusKm,
	}
}

// EventsConfig controls the in-process event bus.
type EventsConfig struct {
	// Enabled routes dispatched and engagement records through the bus.
	// When false the service writes them directly.
	Enabled  bool                  `koanf:"enabled"`
	Bus      events.BusConfig      `koanf:"bus"`
	Consumer events.ConsumerConfig `koanf:"consumer"`
}

// defaultConfig returns a Config with all default values. Defaults are
// applied first, then overridden by the config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:              "0.0.0.0",
			Port:              8088,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       120 * time.Second,
			ShutdownTimeout:   10 * time.Second,
			Environment:       "development",
			CORSOrigins:       []string{"*"},
			RateLimitRequests: 60,
			RateLimitWindow:   time.Minute,
		},
		Logging:     logging.DefaultConfig(),
		Storage:     store.DefaultConfig(),
		Recommend:   *recommend.DefaultConfig(),
		Search:      search.DefaultConfig(),
		Personalize: personalize.DefaultConfig(),
		Learning: LearningConfig{
			Interval:     time.Hour,
			RunOnStartup: true,
			Timeout:      5 * time.Minute,
		},
		Notifications: NotificationsConfig{
			PassSchedule:    "0 * * * *",
			RunOnStartup:    false,
			PassTimeout:     2 * time.Minute,
			DueInterval:     time.Minute,
			CleanupInterval: time.Hour,
			Scheduler:       scheduler.DefaultConfig(),
			Generator:       generator.DefaultConfig(),
			Dispatch:        delivery.DefaultTimerConfig(),
			Delivery:        delivery.DefaultManagerConfig(),
			DefaultPolicy:   policyConfigFrom(models.DefaultPolicy()),
		},
		Geo:     geo.DefaultConfig(),
		Webhook: delivery.DefaultWebhookConfig(),
		Events: EventsConfig{
			Enabled:  true,
			Bus:      events.DefaultBusConfig(),
			Consumer: events.DefaultConsumerConfig(),
		},
		Supervisor: supervisor.DefaultTreeConfig(),
	}
}
