// Waypoint - Travel Personalization and Notification Scheduling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

// Package main provides the Waypoint HTTP server
//
// @title Waypoint API
// @version 1.0
// @description Travel personalization and notification scheduling for a single user.
// @description
// @description ## Features
// @description
// @description - **Preference Learning**: category preferences from visits, favorites and searches
// @description - **Recommendations**: weighted scoring over the place catalog
// @description - **Personalized Search**: relevance blended with learned preferences
// @description - **Smart Notifications**: generation, policy filtering, quiet and peak hour scheduling
// @description
// @description ## Rate Limiting
// @description
// @description Write endpoints default to 60 requests per minute per IP address.
// @description Manually triggered passes are limited to 10 per minute.
// @description
// @description ## Error Responses
// @description
// @description All error responses follow this format:
// @description ```json
// @description {
// @description   "status": "error",
// @description   "data": null,
// @description   "error": {
// @description     "code": "VALIDATION_ERROR",
// @description     "message": "latitude must be a valid latitude (-90 to 90)",
// @description     "details": {"field": "latitude"}
// @description   },
// @description   "metadata": {
// @description     "timestamp": "2026-03-01T09:00:00Z"
// @description   }
// @description }
// @description ```
//
// @contact.name GitHub Repository
// @contact.url https://github.com/tomtom215/waypoint/issues
//
// @license.name AGPL-3.0-or-later
// @license.url https://www.gnu.org/licenses/agpl-3.0.html
//
// @host localhost:8088
// @BasePath /api/v1
// @schemes http https
//
// @tag.name Core
// @tag.description Health and readiness probes
//
// @tag.name Catalog
// @tag.description Places, favorites and search history
//
// @tag.name Recommendations
// @tag.description Learning passes, insights and ranked recommendations
//
// @tag.name Search
// @tag.description Personalized search, suggestions and autocomplete
//
// @tag.name Location
// @tag.description Device location and nearby places
//
// @tag.name Notifications
// @tag.description Notification passes, pending notifications, cancellation and engagement
//
// @tag.name Policy
// @tag.description The user's notification policy
package main
