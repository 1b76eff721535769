// Waypoint - Travel Personalization and Notification Scheduling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package generator

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/tomtom215/waypoint/internal/category"
	"github.com/tomtom215/waypoint/internal/models"
)

// label renders a canonical category for message text ("gas stations").
func label(c string) string {
	return strings.ReplaceAll(category.Normalize(c), "_", " ")
}

// recommendations emits one SmartRecommendation per top-ranked place.
func (g *Generator) recommendations(snap *Snapshot, now time.Time) ([]models.Notification, error) {
	if len(snap.Places) == 0 {
		return nil, nil
	}

	ranked := g.rec.Recommend(snap.Places, g.config.RecommendationPool)
	n := min(len(ranked), g.config.MaxRecommendations)

	out := make([]models.Notification, 0, n)
	for _, sc := range ranked[:n] {
		p := sc.Place
		relevance := 0.8 + g.rng.Float64()*0.2
		delay := time.Duration(30+g.rng.Intn(60)) * time.Minute

		nt := newCandidate(now, models.KindSmartRecommendation, p.ID,
			"Perfect Match Found!",
			fmt.Sprintf("Based on your preferences, you might love %s! It's a %s with %.1f★ rating.",
				p.Name, label(p.Category), p.Rating),
			4, relevance, delay)
		nt.RelatedPlaceID = p.ID
		nt.Category = category.Normalize(p.Category)
		out = append(out, nt)
	}
	return out, nil
}

// patterns emits a PatternAlert for a repeatedly searched category and a
// TimeOptimized candidate for the usual search hour.
func (g *Generator) patterns(snap *Snapshot, now time.Time) ([]models.Notification, error) {
	if len(snap.Searches) == 0 {
		return nil, nil
	}
	var out []models.Notification

	queries := make([]string, len(snap.Searches))
	for i := range snap.Searches {
		queries[i] = snap.Searches[i].Query
	}
	if top, count := topCount(g.matcher.CountQueries(queries)); count >= g.config.PatternThreshold {
		nt := newCandidate(now, models.KindPatternAlert, top,
			"Pattern Detected!",
			fmt.Sprintf("You've searched for %s places %d times recently. Here are some new suggestions!",
				label(top), count),
			3, 0.7, 2*time.Hour)
		nt.Category = top
		out = append(out, nt)
	}

	if len(snap.Searches) >= g.config.TimePatternMinSearches {
		hour := peakSearchHour(snap.Searches, now.Location())
		out = append(out, newCandidate(now, models.KindTimeOptimized, strconv.Itoa(hour),
			"Perfect Timing!",
			fmt.Sprintf("You usually search for places around %d:00. Here are some timely suggestions!", hour),
			3, 0.7, time.Hour))
	}
	return out, nil
}

// topCount returns the key with the highest count, alphabetically first on ties.
func topCount(counts map[string]int) (string, int) {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	best, bestCount := "", 0
	for _, k := range keys {
		if counts[k] > bestCount {
			best, bestCount = k, counts[k]
		}
	}
	return best, bestCount
}

// peakSearchHour returns the hour of day with the most searches, the
// earliest hour on ties.
func peakSearchHour(searches []models.SearchRecord, loc *time.Location) int {
	var hours [24]int
	for i := range searches {
		hours[searches[i].SearchedAt.In(loc).Hour()]++
	}
	peak := 0
	for h := 1; h < 24; h++ {
		if hours[h] > hours[peak] {
			peak = h
		}
	}
	return peak
}

// location emits LocationAware candidates for favorites the user is near
// and for one random nearby place that is not a favorite.
func (g *Generator) location(snap *Snapshot, now time.Time) ([]models.Notification, error) {
	if snap.Location == nil || len(snap.Nearby) == 0 {
		return nil, nil
	}

	favorites := make(map[string]struct{}, len(snap.Favorites))
	for i := range snap.Favorites {
		favorites[snap.Favorites[i].Name] = struct{}{}
	}

	var out []models.Notification
	var others []models.Place
	for _, np := range snap.Nearby {
		p := np.Place
		if _, fav := favorites[p.Name]; !fav {
			others = append(others, p)
			continue
		}
		nt := newCandidate(now, models.KindLocationAware, "favorite|"+p.ID,
			"You're Near a Favorite!",
			fmt.Sprintf("You're close to %s, one of your favorite places! Perfect time for a visit.", p.Name),
			5, 0.9, 5*time.Minute)
		nt.RelatedPlaceID = p.ID
		nt.Category = category.Normalize(p.Category)
		out = append(out, nt)
	}

	if len(others) > 0 {
		p := others[g.rng.Intn(len(others))]
		delay := time.Duration(15+g.rng.Intn(30)) * time.Minute
		nt := newCandidate(now, models.KindLocationAware, "discover",
			"Discover Something New!",
			fmt.Sprintf("There's a highly-rated %s nearby: %s (%.1f★). Want to check it out?",
				label(p.Category), p.Name, p.Rating),
			3, 0.6+p.Rating/10, delay)
		nt.RelatedPlaceID = p.ID
		nt.Category = category.Normalize(p.Category)
		out = append(out, nt)
	}
	return out, nil
}

// insights emits the weekly summary, the discovery insight and the
// sampled reminders.
func (g *Generator) insights(snap *Snapshot, now time.Time) ([]models.Notification, error) {
	var out []models.Notification

	if g.weekly.Matches(now) {
		since := now.Add(-g.config.InsightWindow)
		places, favorites, searches := 0, 0, 0
		for i := range snap.Places {
			if !snap.Places[i].VisitedAt.Before(since) {
				places++
			}
		}
		for i := range snap.Favorites {
			if !snap.Favorites[i].AddedAt.Before(since) {
				favorites++
			}
		}
		for i := range snap.Searches {
			if !snap.Searches[i].SearchedAt.Before(since) {
				searches++
			}
		}
		out = append(out, newCandidate(now, models.KindTravelInsight, "weekly",
			"Your Weekly Travel Insights",
			fmt.Sprintf("This week: %d places explored, %d new favorites, %d searches. You're becoming quite the explorer!",
				places, favorites, searches),
			2, 0.5, time.Hour))
	}

	if len(snap.Places) > 0 {
		kinds := make(map[string]struct{})
		for i := range snap.Places {
			if c := category.Normalize(snap.Places[i].Category); c != "" {
				kinds[c] = struct{}{}
			}
		}
		out = append(out, newCandidate(now, models.KindTravelInsight, "discovery",
			"Discovery Insight",
			fmt.Sprintf("You've explored %d different types of places! Your travel diversity score is growing.", len(kinds)),
			2, 0.6, 6*time.Hour))
	}

	for i := range snap.Favorites {
		f := &snap.Favorites[i]
		if now.Sub(f.AddedAt) < g.config.FavoriteReminderAge {
			continue
		}
		if g.rng.Float64() >= g.config.FavoriteReminderProbability {
			continue
		}
		delay := time.Duration(6+g.rng.Intn(12)) * time.Hour
		nt := newCandidate(now, models.KindSmartReminder, "favorite|"+favoriteKey(f),
			"Favorite Place Reminder",
			fmt.Sprintf("It's been a while since you visited %s. Maybe it's time for another visit?", f.Name),
			2, 0.4, delay)
		nt.RelatedPlaceID = f.PlaceID
		nt.Category = category.Normalize(f.Category)
		out = append(out, nt)
	}

	for i := range snap.Searches {
		s := &snap.Searches[i]
		age := now.Sub(s.SearchedAt).Truncate(time.Hour)
		if age < g.config.FollowUpMinAge || age > g.config.FollowUpMaxAge {
			continue
		}
		if g.rng.Float64() >= g.config.FollowUpProbability {
			continue
		}
		delay := time.Duration(12+g.rng.Intn(24)) * time.Hour
		out = append(out, newCandidate(now, models.KindSmartReminder, "search|"+searchKey(s),
			"Search Follow-up",
			fmt.Sprintf("Still looking for %s places? We found some new options that might interest you!", s.Query),
			2, 0.5, delay))
	}
	return out, nil
}

func favoriteKey(f *models.Favorite) string {
	if f.ID != "" {
		return f.ID
	}
	return f.Name
}

func searchKey(s *models.SearchRecord) string {
	if s.ID != "" {
		return s.ID
	}
	return s.Query + "@" + s.SearchedAt.Format(time.RFC3339)
}
