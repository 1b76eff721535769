// Waypoint - Travel Personalization and Notification Scheduling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

/*
Package logging provides the zerolog setup shared by every Waypoint
component.

Initialize once from main:

	logging.Init(logging.Config{Level: "info", Format: "json"})

Components receive a zerolog.Logger in their constructor and tag it:

	logger := logging.WithComponent("scheduler")

Passes attach a correlation id to their context so all lines of one
learning or notification pass can be grepped together:

	ctx = logging.ContextWithNewCorrelationID(ctx)
	logging.Ctx(ctx).Info().Msg("Notification pass started")

Two adapters route third-party logging through the same logger:
SlogHandler (for sutureslog in the supervisor tree) and WatermillAdapter
(for the event bus).

Always terminate an event chain with Msg or Send; an unterminated chain
is never written.
*/
package logging
