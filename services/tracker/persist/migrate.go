// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package persist

import (
	"encoding/json"
	"time"

	"github.com/GuilleHoardings/WorkoutTrackr-sub000/services/tracker/workout"
)

// legacySeriesCount is how many series a flat push-up record expands to.
const legacySeriesCount = 4

// migrate upgrades raw container bytes to current-version workouts.
//
// Description:
//
//	Detects the generation and applies its single upgrade path:
//	bare/v1 records are expanded into synthetic series, v2/v3 workouts
//	are accepted as-is (recomputed so loaded data satisfies the entity
//	invariants, which is the identity on well-formed data). Unrecognized
//	shapes — including recognized versions whose payload does not parse —
//	yield an empty collection with dataLost set; the load never fails.
//
// Outputs:
//
//	[]workout.Workout - Current-version workouts.
//	Generation - The detected source generation.
//	bool - dataLost: true when stored data had to be discarded.
func migrate(raw []byte) ([]workout.Workout, Generation, bool) {
	gen, c := detectGeneration(raw)

	switch gen {
	case GenerationBare, GenerationV1:
		var records []legacyRecord
		if err := json.Unmarshal(c.Data, &records); err != nil {
			return nil, GenerationUnrecognized, true
		}
		var out []workout.Workout
		for _, rec := range records {
			if w := expandLegacyRecord(rec); w != nil {
				out = append(out, *w)
			}
		}
		return out, gen, false

	case GenerationV2, GenerationV3:
		var workouts []workout.Workout
		if err := json.Unmarshal(c.Data, &workouts); err != nil {
			return nil, GenerationUnrecognized, true
		}
		out := make([]workout.Workout, 0, len(workouts))
		for i := range workouts {
			if len(workouts[i].Series) == 0 {
				continue
			}
			w := workouts[i].Clone()
			w.Recompute()
			out = append(out, w)
		}
		return out, gen, false

	default:
		return nil, GenerationUnrecognized, true
	}
}

// expandLegacyRecord converts one flat push-up record into a workout with
// synthetic series.
//
// The record becomes exactly four equal series with the remainder reps in
// the last one; series whose computed reps are not positive are dropped.
// Series are spaced evenly so the first sits at the record date and the
// last at date + elapsedMinutes, which preserves the recorded duration.
// Returns nil when no series survives.
func expandLegacyRecord(rec legacyRecord) *workout.Workout {
	// Ceiling split: 10 push-ups become 3,3,3,1.
	per := (rec.PushUpCount + legacySeriesCount - 1) / legacySeriesCount
	last := rec.PushUpCount - per*(legacySeriesCount-1)

	step := time.Duration(0)
	if rec.ElapsedMinutes > 0 {
		step = time.Duration(rec.ElapsedMinutes) * time.Minute / time.Duration(legacySeriesCount-1)
	}

	var series []workout.Series
	for i := 0; i < legacySeriesCount; i++ {
		reps := per
		if i == legacySeriesCount-1 {
			reps = last
		}
		if reps <= 0 {
			continue
		}
		series = append(series, workout.Series{
			Reps:      reps,
			Timestamp: rec.Date.Add(time.Duration(i) * step),
		})
	}
	if len(series) == 0 {
		return nil
	}

	w := &workout.Workout{Exercise: workout.DefaultExercise, Series: series}
	w.Recompute()
	return w
}
