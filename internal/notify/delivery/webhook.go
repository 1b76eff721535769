// Waypoint - Travel Personalization and Notification Scheduling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package delivery

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/tomtom215/waypoint/internal/metrics"
	"github.com/tomtom215/waypoint/internal/models"
)

// WebhookConfig configures the outbound webhook channel.
type WebhookConfig struct {
	// URL receives a POST per fired notification. Empty disables the channel.
	URL string `koanf:"url"`

	// Timeout bounds a single HTTP request. Default: 10s.
	Timeout time.Duration `koanf:"timeout"`

	// RateLimit is the sustained request rate per second. Default: 5.
	RateLimit float64 `koanf:"rate_limit"`

	// Burst is the limiter burst size. Default: 10.
	Burst int `koanf:"burst"`

	// Authorization is sent verbatim in the Authorization header when set.
	Authorization string `koanf:"authorization"`
}

// DefaultWebhookConfig returns a disabled webhook configuration.
func DefaultWebhookConfig() WebhookConfig {
	return WebhookConfig{
		Timeout:   10 * time.Second,
		RateLimit: 5,
		Burst:     10,
	}
}

// Enabled reports whether a destination URL is configured.
func (c WebhookConfig) Enabled() bool {
	return c.URL != ""
}

// Validate checks the configuration for errors.
func (c WebhookConfig) Validate() error {
	if !c.Enabled() {
		return nil
	}
	if err := ValidateWebhookURL(c.URL); err != nil {
		return fmt.Errorf("invalid webhook url: %w", err)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("webhook timeout must be positive, got %s", c.Timeout)
	}
	if c.RateLimit <= 0 || c.Burst < 1 {
		return fmt.Errorf("webhook rate limit must be positive, got %v/%d", c.RateLimit, c.Burst)
	}
	return nil
}

// ValidateWebhookURL requires an absolute http or https URL with a host.
func ValidateWebhookURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("host is required")
	}
	return nil
}

// WebhookPayload is the JSON body POSTed for each fired notification.
type WebhookPayload struct {
	Event        string              `json:"event"`
	Timestamp    time.Time           `json:"timestamp"`
	Notification models.Notification `json:"notification"`
}

// errDeliveryFailed marks a failed attempt to the circuit breaker. Only
// transient failures count against the destination's health.
var errDeliveryFailed = errors.New("webhook delivery failed")

// WebhookChannel POSTs notifications to an HTTP endpoint behind a rate
// limiter and a circuit breaker.
type WebhookChannel struct {
	config  WebhookConfig
	client  *http.Client
	limiter *rate.Limiter
	cb      *gobreaker.CircuitBreaker[*Result]
	name    string
	logger  zerolog.Logger
}

// NewWebhookChannel creates a webhook channel.
// Circuit breaker configuration:
// - Max 3 concurrent requests in half-open state
// - 1 minute measurement window
// - 2 minute timeout before attempting recovery
// - Opens after 60% failure rate with minimum 10 requests
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewWebhookChannel(cfg WebhookConfig, logger zerolog.Logger) (*WebhookChannel, error) {
	if !cfg.Enabled() {
		return nil, fmt.Errorf("webhook url is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	cbName := "webhook"
	log := logger.With().Str("component", "webhook").Logger()

	metrics.CircuitBreakerState.WithLabelValues(cbName).Set(0)

	cb := gobreaker.NewCircuitBreaker[*Result](gobreaker.Settings{
		Name:        cbName,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     2 * time.Minute,

		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			shouldTrip := failureRatio >= 0.6
			if shouldTrip {
				log.Warn().
					Uint32("failures", counts.TotalFailures).
					Float64("failure_rate", failureRatio*100).
					Msg("opening webhook circuit")
			}
			return shouldTrip
		},

		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr := stateToString(from)
			toStr := stateToString(to)
			log.Info().Str("from", fromStr).Str("to", toStr).Msg("circuit breaker state transition")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, fromStr, toStr).Inc()
		},
	})

	return &WebhookChannel{
		config:  cfg,
		client:  &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.Burst),
		cb:      cb,
		name:    cbName,
		logger:  log,
	}, nil
}

// Name returns the channel identifier.
func (c *WebhookChannel) Name() string {
	return ChannelWebhook
}

// State returns the circuit breaker state.
func (c *WebhookChannel) State() gobreaker.State {
	return c.cb.State()
}

// Send POSTs n to the configured URL.
func (c *WebhookChannel) Send(ctx context.Context, n *models.Notification) (*Result, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return &Result{
			Channel:      ChannelWebhook,
			ErrorMessage: fmt.Sprintf("rate limiter: %v", err),
			ErrorCode:    ErrorCodeRateLimited,
			IsTransient:  true,
		}, nil
	}

	result, err := c.cb.Execute(func() (*Result, error) {
		r := c.post(ctx, n)
		if !r.Success && r.IsTransient {
			return r, errDeliveryFailed
		}
		return r, nil
	})

	switch {
	case errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.CircuitBreakerRequests.WithLabelValues(c.name, "rejected").Inc()
		return &Result{
			Channel:      ChannelWebhook,
			ErrorMessage: err.Error(),
			ErrorCode:    ErrorCodeCircuitOpen,
			IsTransient:  true,
		}, nil
	case err != nil:
		metrics.CircuitBreakerRequests.WithLabelValues(c.name, "failure").Inc()
	default:
		metrics.CircuitBreakerRequests.WithLabelValues(c.name, "success").Inc()
	}
	return result, nil
}

// post performs one HTTP attempt. It never returns nil.
func (c *WebhookChannel) post(ctx context.Context, n *models.Notification) *Result {
	result := &Result{Channel: ChannelWebhook}

	body, err := json.Marshal(WebhookPayload{
		Event:        "notification.dispatched",
		Timestamp:    time.Now().UTC(),
		Notification: *n,
	})
	if err != nil {
		result.ErrorMessage = fmt.Sprintf("failed to marshal payload: %v", err)
		result.ErrorCode = ErrorCodeUnknown
		return result
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.URL, bytes.NewReader(body))
	if err != nil {
		result.ErrorMessage = fmt.Sprintf("failed to create request: %v", err)
		result.ErrorCode = ErrorCodeInvalidConfig
		return result
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "Waypoint-Notify/1.0")
	if c.config.Authorization != "" {
		req.Header.Set("Authorization", c.config.Authorization)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		result.ErrorMessage = fmt.Sprintf("failed to send webhook: %v", err)
		result.ErrorCode = classifyHTTPError(err)
		result.IsTransient = isTransientHTTPError(result.ErrorCode)
		return result
	}
	defer resp.Body.Close()

	result.ResponseCode = resp.StatusCode

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil {
		respBody = []byte("(failed to read response)")
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		now := time.Now()
		result.Success = true
		result.DeliveredAt = &now
		return result
	}

	result.ErrorMessage = fmt.Sprintf("webhook returned %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	result.ErrorCode = classifyHTTPStatusCode(resp.StatusCode)
	result.IsTransient = isTransientHTTPError(result.ErrorCode)

	if resp.StatusCode == http.StatusTooManyRequests {
		if seconds, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil && seconds >= 0 {
			d := time.Duration(seconds) * time.Second
			result.RetryAfter = &d
		}
	}

	c.logger.Debug().
		Str("notification_id", n.ID).
		Int("status", resp.StatusCode).
		Str("error_code", result.ErrorCode).
		Msg("webhook rejected notification")

	return result
}

// classifyHTTPError classifies a transport error into an error code.
func classifyHTTPError(err error) string {
	errStr := err.Error()

	if strings.Contains(errStr, "timeout") || strings.Contains(errStr, "deadline") {
		return ErrorCodeTimeout
	}
	if strings.Contains(errStr, "connection") || strings.Contains(errStr, "refused") {
		return ErrorCodeConnectionFailed
	}
	return ErrorCodeUnknown
}

// classifyHTTPStatusCode classifies an HTTP status code into an error code.
func classifyHTTPStatusCode(code int) string {
	switch {
	case code == 401 || code == 403:
		return ErrorCodeAuthFailed
	case code == 404:
		return ErrorCodeNotFound
	case code == 429:
		return ErrorCodeRateLimited
	case code == 413:
		return ErrorCodeContentTooLarge
	case code >= 500:
		return ErrorCodeServerError
	default:
		return ErrorCodeUnknown
	}
}

// isTransientHTTPError returns true if the error is transient and can be retried.
func isTransientHTTPError(code string) bool {
	switch code {
	case ErrorCodeConnectionFailed, ErrorCodeTimeout, ErrorCodeRateLimited, ErrorCodeServerError:
		return true
	default:
		return false
	}
}

// stateToFloat converts circuit breaker state to numeric value for metrics
func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

// stateToString converts circuit breaker state to string for logging
func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}
