// Waypoint - Travel Personalization and Notification Scheduling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

/*
Package delivery hands scheduled notifications to their destinations.

# Transport

The scheduler talks to a Transport: ScheduleTrigger(id, when, payload) and
CancelTrigger(id). TimerTransport is the in-process implementation. It keeps
pending triggers in a min-heap keyed by id, so scheduling an id twice
replaces the first trigger, and a ticker loop (Serve) pops due triggers and
passes them to a DispatchFunc.

# Channels

A fired notification is sent through every Channel in a ChannelRegistry by
the Manager:

  - InAppChannel writes it to the user's feed through a FeedStore
  - WebhookChannel POSTs it as JSON, behind an x/time/rate limiter and a
    gobreaker circuit breaker

Channels report failures in a Result rather than an error. Transient
failures (timeouts, 429, 5xx, open circuit) are retried by the Manager with
exponential backoff, honoring Retry-After; permanent failures are not.
*/
package delivery
