// Waypoint - Travel Personalization and Notification Scheduling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

// Package recommend implements the preference model and place scoring.
//
// # Architecture
//
// The engine is a deterministic, explainable weighted-sum model rebuilt from
// the current behavioral snapshot. It has no training phase and stores no
// model artifacts:
//
//   - PreferenceModel: category -> weight, plus visit counters
//   - Engine.Learn: visits, favorites and inferred search categories feed the model
//   - Engine.Score: 0.4*preference + 0.3*rating/5 + 0.2*min(freq/10, 1) + 0.1*0.5
//   - Engine.Recommend: top-k by score, stable for ties
//   - Engine.DiversityScore: normalized Shannon entropy of the preferences
//
// The last score term is a constant neutral recency value. Places carry a
// VisitedAt timestamp but it is not blended in.
//
// # Usage
//
//	engine, err := recommend.NewEngine(recommend.DefaultConfig(), logger)
//	if err != nil {
//	    return err
//	}
//
//	worker := recommend.NewWorker(engine, logger)
//	go worker.Serve(ctx)
//
//	stats, err := worker.Submit(ctx, recommend.LearnInput{
//	    Visited:   places,
//	    Favorites: favorites,
//	    Searches:  searches,
//	    Fresh:     true,
//	})
//
//	top := engine.Recommend(candidates, 10)
//
// # Thread Safety
//
// The engine is safe for concurrent use. Learn acquires an exclusive lock,
// while scoring uses a shared lock, so concurrent reads never see a
// partially applied update. Worker additionally serializes Learn calls
// through one goroutine so callers never contend on the write lock.
package recommend
