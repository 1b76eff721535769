// Waypoint - Travel Personalization and Notification Scheduling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package api

import "errors"

// Error codes returned in APIError.Code.
const (
	ErrCodeValidation  = "VALIDATION_ERROR"
	ErrCodeInvalidBody = "INVALID_BODY"
	ErrCodeNotFound    = "NOT_FOUND"
	ErrCodeStorage     = "STORAGE_ERROR"
	ErrCodePassFailed  = "PASS_FAILED"
	ErrCodeRateLimited = "RATE_LIMIT_EXCEEDED"
	ErrCodeInternal    = "INTERNAL_ERROR"
)

var (
	// ErrEmptyBody indicates a write endpoint received no JSON body.
	ErrEmptyBody = errors.New("request body is empty")

	// ErrBodyTooLarge indicates the body exceeded maxBodyBytes.
	ErrBodyTooLarge = errors.New("request body too large")
)
