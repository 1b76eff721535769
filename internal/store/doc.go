// Waypoint - Travel Personalization and Notification Scheduling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

/*
Package store persists Waypoint state in BadgerDB.

Values are JSON documents (goccy/go-json) under these key prefixes:

	place:<id>               catalog places
	fav:<id>                 favorites
	search:<ts>:<id>         search history, chronological
	policy                   the notification policy
	notif:<id>               notification records and their state
	feed:<ts>:<id>           in-app feed of delivered notifications
	engage:<ts>:<id>         engagement log

<ts> is a zero-padded nanosecond Unix timestamp so that a forward prefix
scan is oldest first and a reverse scan is newest first.

Store satisfies the catalog and policy interfaces used by the
personalization service and delivery.FeedStore used by the in-app channel.
Every operation is timed into the waypoint_store_* metrics.
*/
package store
