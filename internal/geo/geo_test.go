// Waypoint - Travel Personalization and Notification Scheduling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package geo

import (
	"math"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/tomtom215/waypoint/internal/models"
)

const (
	centerLat = 19.0770
	centerLon = 72.9980
)

func testPlaces() []models.Place {
	return []models.Place{
		{ID: "a", Name: "Brew Lab", Category: "cafes", Rating: 4.0, Latitude: centerLat + 0.002, Longitude: centerLon},
		{ID: "b", Name: "Inorbit", Category: "malls", Rating: 4.2, Latitude: centerLat + 0.005, Longitude: centerLon},
		{ID: "c", Name: "Far Hotel", Category: "hotels", Rating: 4.8, Latitude: centerLat + 0.02, Longitude: centerLon},
		{ID: "d", Name: "No Coordinates", Category: "cafes", Rating: 5},
		{ID: "e", Name: "Bean Counter", Category: "cafe", Rating: 4.6, Latitude: centerLat, Longitude: centerLon + 0.003},
	}
}

func newTestDetector(t *testing.T) *Detector {
	t.Helper()
	d, err := NewDetector(DefaultConfig(), zerolog.Nop())
	if err != nil {
		t.Fatalf("NewDetector: %v", err)
	}
	return d
}

// --- Test: Grid ---

func TestHaversineKm(t *testing.T) {
	t.Parallel()

	if got := HaversineKm(centerLat, centerLon, centerLat, centerLon); got != 0 {
		t.Errorf("same point = %v, want 0", got)
	}

	// One hundredth of a degree of latitude is about 1.11 km.
	if got := HaversineKm(0, 0, 0.01, 0); math.Abs(got-1.112) > 0.01 {
		t.Errorf("0.01 degree = %v km, want about 1.112", got)
	}

	// London to Paris is about 344 km.
	if got := HaversineKm(51.5074, -0.1278, 48.8566, 2.3522); math.Abs(got-344) > 5 {
		t.Errorf("London-Paris = %v km, want about 344", got)
	}
}

func TestGrid_InsertReplaceRemove(t *testing.T) {
	t.Parallel()

	g := NewGrid(1)
	g.Insert(models.Place{ID: "p", Latitude: 10, Longitude: 10})
	g.Insert(models.Place{ID: "p", Latitude: 20, Longitude: 20})

	if g.Size() != 1 || g.NumCells() != 1 {
		t.Fatalf("Size=%d NumCells=%d, want 1/1", g.Size(), g.NumCells())
	}
	p, ok := g.Get("p")
	if !ok || p.Latitude != 20 {
		t.Errorf("Get = %+v, %v", p, ok)
	}
	if len(g.Nearby(10, 10, 5)) != 0 {
		t.Error("old position should no longer match")
	}

	if !g.Remove("p") || g.Remove("p") {
		t.Error("Remove should succeed once")
	}
	if g.NumCells() != 0 {
		t.Errorf("empty cell not reclaimed: %d", g.NumCells())
	}
}

func TestGrid_NearbyOrderedByDistance(t *testing.T) {
	t.Parallel()

	g := NewGrid(0.5)
	for _, p := range testPlaces() {
		g.Insert(p)
	}

	got := g.Nearby(centerLat, centerLon, 1)
	want := []string{"a", "e", "b"}
	if len(got) != len(want) {
		t.Fatalf("Nearby returned %d places: %+v", len(got), got)
	}
	for i, id := range want {
		if got[i].Place.ID != id {
			t.Errorf("result[%d] = %s, want %s", i, got[i].Place.ID, id)
		}
	}
	if got[0].DistanceKm <= 0 || got[0].DistanceKm > got[1].DistanceKm {
		t.Errorf("distances not ascending: %v, %v", got[0].DistanceKm, got[1].DistanceKm)
	}

	if len(g.Nearby(centerLat, centerLon, 0)) != 0 {
		t.Error("zero radius should match nothing")
	}
	// The place at 0,0 is half a world away.
	if got := len(g.Nearby(centerLat, centerLon, 5)); got != 4 {
		t.Errorf("5 km radius matched %d places, want 4", got)
	}
}

func TestGrid_Concurrent(t *testing.T) {
	t.Parallel()

	g := NewGrid(1)
	var wg sync.WaitGroup
	for _, p := range testPlaces() {
		wg.Add(2)
		go func(p models.Place) {
			defer wg.Done()
			g.Insert(p)
		}(p)
		go func() {
			defer wg.Done()
			g.Nearby(centerLat, centerLon, 1)
		}()
	}
	wg.Wait()

	if g.Size() != len(testPlaces()) {
		t.Errorf("Size = %d", g.Size())
	}
}

// --- Test: Detector ---

func TestDetector_LoadSkipsUnlocated(t *testing.T) {
	t.Parallel()

	d := newTestDetector(t)
	if n := d.Load(testPlaces()); n != 4 {
		t.Errorf("indexed %d, want 4", n)
	}
	if d.Size() != 4 {
		t.Errorf("Size = %d, want 4", d.Size())
	}

	// Reload replaces the catalog.
	d.Load(testPlaces()[:1])
	if d.Size() != 1 {
		t.Errorf("Size after reload = %d, want 1", d.Size())
	}
}

func TestDetector_Nearby(t *testing.T) {
	t.Parallel()

	d := newTestDetector(t)
	d.Load(testPlaces())

	if got := d.Nearby(centerLat, centerLon); len(got) != 3 {
		t.Errorf("Nearby within 1 km = %d places, want 3", len(got))
	}
	if got := d.NearbyWithin(centerLat, centerLon, 0.4); len(got) != 2 {
		t.Errorf("NearbyWithin 0.4 km = %d places, want 2", len(got))
	}
	// A larger cap never widens the configured radius.
	if got := d.NearbyWithin(centerLat, centerLon, 50); len(got) != 3 {
		t.Errorf("NearbyWithin 50 km = %d places, want 3", len(got))
	}
}

func TestDetector_Location(t *testing.T) {
	t.Parallel()

	d := newTestDetector(t)
	if _, ok := d.Location(); ok {
		t.Error("fresh detector should have no location")
	}

	d.UpdateLocation(models.Location{Latitude: centerLat, Longitude: centerLon})
	loc, ok := d.Location()
	if !ok || loc.Latitude != centerLat {
		t.Errorf("Location = %+v, %v", loc, ok)
	}
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if _, err := NewDetector(Config{RadiusKm: 0, CellSizeKm: 1}, zerolog.Nop()); err == nil {
		t.Error("zero radius should fail")
	}
	if err := (Config{RadiusKm: 1, CellSizeKm: -1}).Validate(); err == nil {
		t.Error("negative cell size should fail")
	}
}

// --- Test: Summarize ---

func TestSummarize(t *testing.T) {
	t.Parallel()

	nearby := []models.NearbyPlace{
		{Place: models.Place{ID: "m", Category: "malls", Rating: 4.0}},
		{Place: models.Place{ID: "c1", Category: "cafes", Rating: 3.5}},
		{Place: models.Place{ID: "c2", Category: "Cafe", Rating: 4.7}},
		{Place: models.Place{ID: "x", Category: "museum", Rating: 5}},
	}

	got := Summarize(nearby)
	if len(got) != 3 {
		t.Fatalf("Summarize returned %d digests: %+v", len(got), got)
	}
	if got[0].Category != "cafes" || got[0].Count != 2 || got[0].Best.Place.ID != "c2" {
		t.Errorf("cafes digest = %+v", got[0])
	}
	if got[1].Category != "malls" || got[2].Category != "museum" {
		t.Errorf("order = %s, %s", got[1].Category, got[2].Category)
	}

	if len(Summarize(nil)) != 0 {
		t.Error("empty input should yield no digests")
	}
}
