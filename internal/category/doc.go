// Waypoint - Travel Personalization and Notification Scheduling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

// Package category owns the canonical place-category vocabulary.
//
// Catalog entries, favorites and search text arrive with inconsistent
// spellings ("hotel", "Hotels", "accommodation"). Normalize folds them onto
// one plural vocabulary so that preference weights never split across two
// keys. Infer classifies free-text queries through a keyword table matched
// with an Aho-Corasick automaton, and MatchesSynonym backs the category
// component of search ranking.
package category
