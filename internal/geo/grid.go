// Waypoint - Travel Personalization and Notification Scheduling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package geo

import (
	"math"
	"sort"
	"sync"

	"github.com/tomtom215/waypoint/internal/models"
)

const (
	earthRadiusKm = 6371.0
	kmPerDegree   = 111.0
)

// Grid divides geographic space into square cells so a proximity query
// only looks at places in cells around the query point instead of the
// whole catalog.
//
// Time Complexity:
//   - Insert: O(1)
//   - Nearby: O(k) where k = places in the cells covering the radius
//   - Remove: O(cell size)
type Grid struct {
	mu       sync.RWMutex
	cells    map[cellKey][]*entry
	cellSize float64 // degrees
	entries  map[string]*entry
}

type cellKey struct {
	X, Y int
}

type entry struct {
	place models.Place
	key   cellKey
}

// NewGrid creates a grid with cells of roughly cellSizeKm on each side.
// A non-positive size defaults to 1 km.
func NewGrid(cellSizeKm float64) *Grid {
	if cellSizeKm <= 0 {
		cellSizeKm = 1
	}
	return &Grid{
		cells:    make(map[cellKey][]*entry),
		cellSize: cellSizeKm / kmPerDegree,
		entries:  make(map[string]*entry),
	}
}

func (g *Grid) keyFor(lat, lon float64) cellKey {
	for lon > 180 {
		lon -= 360
	}
	for lon < -180 {
		lon += 360
	}
	return cellKey{
		X: int(math.Floor(lon / g.cellSize)),
		Y: int(math.Floor(lat / g.cellSize)),
	}
}

// Insert adds place to the grid, replacing any place with the same ID.
//
//nolint:gocritic // hugeParam: place stored by value
func (g *Grid) Insert(place models.Place) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if existing, ok := g.entries[place.ID]; ok {
		g.removeUnlocked(existing)
	}

	e := &entry{place: place, key: g.keyFor(place.Latitude, place.Longitude)}
	g.cells[e.key] = append(g.cells[e.key], e)
	g.entries[place.ID] = e
}

// Remove deletes a place by ID.
func (g *Grid) Remove(id string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	e, ok := g.entries[id]
	if !ok {
		return false
	}
	g.removeUnlocked(e)
	delete(g.entries, id)
	return true
}

func (g *Grid) removeUnlocked(e *entry) {
	cell := g.cells[e.key]
	for i, other := range cell {
		if other.place.ID == e.place.ID {
			cell[i] = cell[len(cell)-1]
			cell = cell[:len(cell)-1]
			break
		}
	}
	if len(cell) == 0 {
		delete(g.cells, e.key)
		return
	}
	g.cells[e.key] = cell
}

// Get returns a place by ID.
func (g *Grid) Get(id string) (models.Place, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	e, ok := g.entries[id]
	if !ok {
		return models.Place{}, false
	}
	return e.place, true
}

// Nearby returns places within radiusKm of the point, closest first.
// Places at equal distance keep ID order.
func (g *Grid) Nearby(lat, lon, radiusKm float64) []models.NearbyPlace {
	if radiusKm <= 0 {
		return nil
	}

	g.mu.RLock()
	defer g.mu.RUnlock()

	span := int(math.Ceil(radiusKm/kmPerDegree/g.cellSize)) + 1
	center := g.keyFor(lat, lon)

	var results []models.NearbyPlace
	for dx := -span; dx <= span; dx++ {
		for dy := -span; dy <= span; dy++ {
			for _, e := range g.cells[cellKey{X: center.X + dx, Y: center.Y + dy}] {
				dist := HaversineKm(lat, lon, e.place.Latitude, e.place.Longitude)
				if dist <= radiusKm {
					results = append(results, models.NearbyPlace{Place: e.place, DistanceKm: dist})
				}
			}
		}
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].DistanceKm != results[j].DistanceKm {
			return results[i].DistanceKm < results[j].DistanceKm
		}
		return results[i].Place.ID < results[j].Place.ID
	})
	return results
}

// Size returns the number of indexed places.
func (g *Grid) Size() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.entries)
}

// NumCells returns the number of non-empty cells.
func (g *Grid) NumCells() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.cells)
}

// Clear removes every place.
func (g *Grid) Clear() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.cells = make(map[cellKey][]*entry)
	g.entries = make(map[string]*entry)
}

// HaversineKm returns the great-circle distance between two points in km.
func HaversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	lat1Rad := lat1 * math.Pi / 180
	lat2Rad := lat2 * math.Pi / 180
	deltaLat := (lat2 - lat1) * math.Pi / 180
	deltaLon := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(deltaLat/2)*math.Sin(deltaLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(deltaLon/2)*math.Sin(deltaLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}
