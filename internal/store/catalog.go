// Waypoint - Travel Personalization and Notification Scheduling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/tomtom215/waypoint/internal/models"
)

// PutPlace creates or replaces a catalog place.
func (s *Store) PutPlace(_ context.Context, p *models.Place) error {
	if p.ID == "" {
		return fmt.Errorf("place id is required")
	}
	return s.put("put", "place", []byte(prefixPlace+p.ID), p)
}

// GetPlace returns the place with id.
func (s *Store) GetPlace(_ context.Context, id string) (*models.Place, error) {
	var p models.Place
	if err := s.get("get", "place", []byte(prefixPlace+id), &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// DeletePlace removes a place. Missing ids are not an error.
func (s *Store) DeletePlace(_ context.Context, id string) error {
	return s.del("delete", "place", []byte(prefixPlace+id))
}

// ListPlaces returns every place in id order.
func (s *Store) ListPlaces(_ context.Context) ([]models.Place, error) {
	var out []models.Place
	err := scan(s, "list", "place", prefixPlace, scanOptions{}, func(_ []byte, p *models.Place) bool {
		out = append(out, *p)
		return true
	})
	return out, err
}

// PutFavorite creates or replaces a favorite. A missing id is generated.
func (s *Store) PutFavorite(_ context.Context, f *models.Favorite) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	return s.put("put", "favorite", []byte(prefixFavorite+f.ID), f)
}

// DeleteFavorite removes a favorite. Returns ErrNotFound when absent.
func (s *Store) DeleteFavorite(_ context.Context, id string) error {
	var f models.Favorite
	if err := s.get("get", "favorite", []byte(prefixFavorite+id), &f); err != nil {
		return err
	}
	return s.del("delete", "favorite", []byte(prefixFavorite+id))
}

// ListFavorites returns every favorite in id order.
func (s *Store) ListFavorites(_ context.Context) ([]models.Favorite, error) {
	var out []models.Favorite
	err := scan(s, "list", "favorite", prefixFavorite, scanOptions{}, func(_ []byte, f *models.Favorite) bool {
		out = append(out, *f)
		return true
	})
	return out, err
}

// AddSearch appends a query to the search history. A missing id is generated.
func (s *Store) AddSearch(_ context.Context, r *models.SearchRecord) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return s.put("put", "search", timeKey(prefixSearch, r.SearchedAt, r.ID), r)
}

// ListSearchHistory returns up to limit searches, newest first.
// limit <= 0 returns the whole history.
func (s *Store) ListSearchHistory(_ context.Context, limit int) ([]models.SearchRecord, error) {
	var out []models.SearchRecord
	err := scan(s, "list", "search", prefixSearch, scanOptions{reverse: true, limit: limit},
		func(_ []byte, r *models.SearchRecord) bool {
			out = append(out, *r)
			return true
		})
	return out, err
}

// GetPolicy returns the stored notification policy, or the default policy
// when none has been saved.
func (s *Store) GetPolicy(_ context.Context) (models.Policy, error) {
	var p models.Policy
	err := s.get("get", "policy", []byte(keyPolicy), &p)
	if errors.Is(err, ErrNotFound) {
		return models.DefaultPolicy(), nil
	}
	if err != nil {
		return models.Policy{}, err
	}
	if p.Enabled == nil {
		p.Enabled = make(map[models.NotificationKind]bool)
	}
	return p, nil
}

// PutPolicy replaces the stored notification policy.
func (s *Store) PutPolicy(_ context.Context, p *models.Policy) error {
	return s.put("put", "policy", []byte(keyPolicy), p)
}

// SeedPolicy stores p only when no policy has been saved yet. Reports
// whether p was written.
func (s *Store) SeedPolicy(ctx context.Context, p *models.Policy) (bool, error) {
	var existing models.Policy
	err := s.get("get", "policy", []byte(keyPolicy), &existing)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return false, err
	}
	if err := s.PutPolicy(ctx, p); err != nil {
		return false, err
	}
	return true, nil
}
