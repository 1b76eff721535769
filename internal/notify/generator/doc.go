// Waypoint - Travel Personalization and Notification Scheduling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

/*
Package generator synthesizes notification candidates from a snapshot of
the user's behavior.

Four sources run on every pass:

	recommendation  top places from the recommendation engine
	pattern         repeatedly searched categories and the usual search hour
	location        favorites and new places near the current position
	insight         weekly summary, discovery insight, sampled reminders

Each source runs under recover(); a panic or error is logged, reported in
Result.Failures and the remaining sources still run.

Jitter and sampling draw from an injected random.Source, and "now" comes
from an injected clock.Clock, so tests can script both. Candidate ids are
UUIDv5 values over kind, source key and calendar day.
*/
package generator
