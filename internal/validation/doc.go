// Waypoint - Travel Personalization and Notification Scheduling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

// Package validation provides struct validation using go-playground/validator v10.
//
// A single validator instance is built once and shared. Field names in
// errors are taken from the json tag, so messages name the field the client
// actually sent:
//
//	type nearbyRequest struct {
//	    Latitude  float64 `json:"latitude" validate:"latitude"`
//	    Longitude float64 `json:"longitude" validate:"longitude"`
//	}
//
//	if verr := validation.ValidateStruct(&req); verr != nil {
//	    apiErr := verr.ToAPIError()
//	    respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, apiErr.Details)
//	    return
//	}
//
// # Custom Tags
//
//   - notification_kind: string or models.NotificationKind naming a known kind
//   - hour: integer hour of day, 0-23
//
// Validate returns a plain error (nil when valid) for callers outside the
// HTTP layer, such as config validation.
package validation
