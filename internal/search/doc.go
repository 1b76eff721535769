// Waypoint - Travel Personalization and Notification Scheduling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

/*
Package search ranks places against free-text queries and completes
partial queries.

Relevance blends four signals:

	score = 0.4*nameMatch + 0.3*categoryMatch + 0.2*rating/5 + 0.1*preference

Name matching falls through exact, substring, token overlap and finally
Levenshtein similarity. Category matching accepts the canonical name, its
spaced spelling, or a synonym ("coffee" for cafes).

A blank query is not a search: Rank delegates to the recommendation
engine so the caller always gets a useful list.

Autocomplete is served from an in-memory prefix tree (Index) holding place
names and category display names.
*/
package search
