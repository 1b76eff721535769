// Waypoint - Travel Personalization and Notification Scheduling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package geo

import (
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"github.com/tomtom215/waypoint/internal/category"
	"github.com/tomtom215/waypoint/internal/models"
)

// Config controls nearby-place detection.
type Config struct {
	// RadiusKm is the real-time detection radius. Default: 1.
	RadiusKm float64 `koanf:"radius_km"`

	// CellSizeKm is the grid cell edge. Default: 1.
	CellSizeKm float64 `koanf:"cell_size_km"`
}

// DefaultConfig returns the production detection settings.
func DefaultConfig() Config {
	return Config{RadiusKm: 1, CellSizeKm: 1}
}

// Validate checks the configuration for errors.
func (c Config) Validate() error {
	if c.RadiusKm <= 0 {
		return fmt.Errorf("radius_km must be positive, got %v", c.RadiusKm)
	}
	if c.CellSizeKm <= 0 {
		return fmt.Errorf("cell_size_km must be positive, got %v", c.CellSizeKm)
	}
	return nil
}

// Digest summarizes the nearby places of one category.
type Digest struct {
	Category string             `json:"category"`
	Count    int                `json:"count"`
	Best     models.NearbyPlace `json:"best"`
}

// Detector answers "what is around me" against the place catalog and
// remembers the last reported location.
type Detector struct {
	config Config
	grid   *Grid
	logger zerolog.Logger

	mu       sync.RWMutex
	location *models.Location
}

// NewDetector creates a detector with an empty grid.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewDetector(cfg Config, logger zerolog.Logger) (*Detector, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid geo config: %w", err)
	}
	return &Detector{
		config: cfg,
		grid:   NewGrid(cfg.CellSizeKm),
		logger: logger.With().Str("component", "geo").Logger(),
	}, nil
}

// Load replaces the indexed catalog. Places without coordinates are skipped.
func (d *Detector) Load(places []models.Place) int {
	d.grid.Clear()
	indexed := 0
	for i := range places {
		if d.Add(places[i]) {
			indexed++
		}
	}
	d.logger.Debug().Int("places", len(places)).Int("indexed", indexed).Msg("nearby index rebuilt")
	return indexed
}

// Add indexes one place. Returns false when it has no coordinates.
//
//nolint:gocritic // hugeParam: place stored by value
func (d *Detector) Add(place models.Place) bool {
	if place.Latitude == 0 && place.Longitude == 0 {
		return false
	}
	d.grid.Insert(place)
	return true
}

// Nearby returns places within the detection radius, closest first.
func (d *Detector) Nearby(lat, lon float64) []models.NearbyPlace {
	return d.grid.Nearby(lat, lon, d.config.RadiusKm)
}

// NearbyWithin is Nearby with the radius capped at maxKm. A non-positive
// maxKm leaves the configured radius unchanged.
func (d *Detector) NearbyWithin(lat, lon, maxKm float64) []models.NearbyPlace {
	radius := d.config.RadiusKm
	if maxKm > 0 && maxKm < radius {
		radius = maxKm
	}
	return d.grid.Nearby(lat, lon, radius)
}

// UpdateLocation records the user's current position.
func (d *Detector) UpdateLocation(loc models.Location) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.location = &loc
}

// Location returns the last reported position.
func (d *Detector) Location() (models.Location, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.location == nil {
		return models.Location{}, false
	}
	return *d.location, true
}

// Size returns the number of indexed places.
func (d *Detector) Size() int {
	return d.grid.Size()
}

// Summarize groups nearby places by canonical category and picks the
// highest-rated place of each. Digests follow the category display order.
func Summarize(nearby []models.NearbyPlace) []Digest {
	byCategory := make(map[string]*Digest)
	for _, np := range nearby {
		c := category.Normalize(np.Place.Category)
		d, ok := byCategory[c]
		if !ok {
			byCategory[c] = &Digest{Category: c, Count: 1, Best: np}
			continue
		}
		d.Count++
		if np.Place.Rating > d.Best.Place.Rating {
			d.Best = np
		}
	}

	order := make(map[string]int, len(category.All))
	for i, c := range category.All {
		order[c] = i
	}

	out := make([]Digest, 0, len(byCategory))
	for _, d := range byCategory {
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool {
		oi, iok := order[out[i].Category]
		oj, jok := order[out[j].Category]
		switch {
		case iok && jok:
			return oi < oj
		case iok != jok:
			return iok
		default:
			return out[i].Category < out[j].Category
		}
	})
	return out
}
