// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package store

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GuilleHoardings/WorkoutTrackr-sub000/services/tracker/workout"
)

func at(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse(time.RFC3339, value)
	require.NoError(t, err)
	return parsed
}

// failingPersister simulates a storage quota failure.
type failingPersister struct{ calls int }

func (f *failingPersister) Save(_ context.Context, _ []workout.Workout) error {
	f.calls++
	return workout.ErrStorageQuota
}

// recordingPersister keeps the last saved collection.
type recordingPersister struct{ last []workout.Workout }

func (r *recordingPersister) Save(_ context.Context, ws []workout.Workout) error {
	r.last = ws
	return nil
}

// TestAddSeriesGroupsByDayAndExercise covers the example scenario: two
// same-day sets merge into one workout, deleting the last series deletes
// the workout.
func TestAddSeriesGroupsByDayAndExercise(t *testing.T) {
	ctx := context.Background()
	s := New(nil, nil, nil)

	_, err := s.AddSeries(ctx, "Squats", 20, nil, at(t, "2024-05-01T10:00:00Z"))
	require.NoError(t, err)
	w, err := s.AddSeries(ctx, "Squats", 20, nil, at(t, "2024-05-01T10:05:00Z"))
	require.NoError(t, err)

	require.Equal(t, 1, s.Len())
	assert.Equal(t, 40, w.TotalReps)
	assert.Len(t, w.Series, 2)
	assert.Equal(t, 5, w.TotalTime)

	outcome, err := s.DeleteSeries(ctx, w.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, OutcomeSeriesRemoved, outcome)

	remaining := s.Workouts()
	require.Len(t, remaining, 1)
	outcome, err = s.DeleteSeries(ctx, remaining[0].ID, 0)
	require.NoError(t, err)
	assert.Equal(t, OutcomeWorkoutDeleted, outcome)
	assert.Equal(t, 0, s.Len())
}

// TestAddSeriesSeparateDays verifies day boundaries split workouts.
func TestAddSeriesSeparateDays(t *testing.T) {
	ctx := context.Background()
	s := New(nil, nil, nil)

	_, err := s.AddSeries(ctx, "Squats", 10, nil, at(t, "2024-05-01T23:59:00Z"))
	require.NoError(t, err)
	_, err = s.AddSeries(ctx, "Squats", 10, nil, at(t, "2024-05-02T00:01:00Z"))
	require.NoError(t, err)
	_, err = s.AddSeries(ctx, "Push-ups", 10, nil, at(t, "2024-05-02T00:02:00Z"))
	require.NoError(t, err)

	assert.Equal(t, 3, s.Len())
	assert.ElementsMatch(t, []string{"Squats", "Push-ups"}, s.UniqueExerciseTypes())
}

// TestHandlesDistinctAcrossExercises verifies two workouts whose first
// series share the same instant still address independently, so deleting
// from one never mutates the other.
func TestHandlesDistinctAcrossExercises(t *testing.T) {
	ctx := context.Background()
	s := New(nil, nil, nil)
	when := at(t, "2024-05-01T10:00:00Z")

	squats, err := s.AddSeries(ctx, "Squats", 20, nil, when)
	require.NoError(t, err)
	_, err = s.AddSeries(ctx, "Squats", 15, nil, when.Add(5*time.Minute))
	require.NoError(t, err)
	bench, err := s.AddSeries(ctx, "Bench", 10, nil, when)
	require.NoError(t, err)

	require.NotEqual(t, squats.ID, bench.ID)

	// Bench has one series; index 1 only exists on Squats. The handle
	// must resolve Bench, not fall through to the first same-instant
	// workout.
	_, err = s.DeleteSeries(ctx, bench.ID, 1)
	assert.ErrorIs(t, err, workout.ErrSeriesIndexOutOfRange)

	outcome, err := s.DeleteSeries(ctx, bench.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, OutcomeWorkoutDeleted, outcome)

	remaining := s.Workouts()
	require.Len(t, remaining, 1)
	assert.Equal(t, "Squats", remaining[0].Exercise)
	assert.Len(t, remaining[0].Series, 2)
}

// TestDeleteSeriesErrors verifies the caller-error taxonomy and that
// failed operations mutate nothing.
func TestDeleteSeriesErrors(t *testing.T) {
	ctx := context.Background()
	s := New(nil, nil, nil)
	w, err := s.AddSeries(ctx, "Squats", 10, nil, at(t, "2024-05-01T10:00:00Z"))
	require.NoError(t, err)

	_, err = s.DeleteSeries(ctx, 12345, 0)
	assert.ErrorIs(t, err, workout.ErrWorkoutNotFound)

	_, err = s.DeleteSeries(ctx, w.ID, 5)
	assert.ErrorIs(t, err, workout.ErrSeriesIndexOutOfRange)
	_, err = s.DeleteSeries(ctx, w.ID, -1)
	assert.ErrorIs(t, err, workout.ErrSeriesIndexOutOfRange)

	assert.Equal(t, 1, s.Len())
	assert.Len(t, s.Workouts()[0].Series, 1)
}

// TestUpdateSeriesInPlace verifies reps/weight edits recompute totals.
func TestUpdateSeriesInPlace(t *testing.T) {
	ctx := context.Background()
	s := New(nil, nil, nil)
	w, err := s.AddSeries(ctx, "Bench", 10, nil, at(t, "2024-05-01T10:00:00Z"))
	require.NoError(t, err)

	weight := 80.0
	require.NoError(t, s.UpdateSeries(ctx, w.ID, 0, 12, &weight, nil))

	got := s.Workouts()[0]
	assert.Equal(t, 12, got.TotalReps)
	require.NotNil(t, got.Series[0].Weight)
	assert.Equal(t, 80.0, *got.Series[0].Weight)
}

// TestUpdateSeriesMoveMergesIntoExistingDay is the §4.1 move rule: a
// series moved onto a day that already has a workout for the same
// exercise merges there, and exactly one workout remains per pair.
func TestUpdateSeriesMoveMergesIntoExistingDay(t *testing.T) {
	ctx := context.Background()
	s := New(nil, nil, nil)

	src, err := s.AddSeries(ctx, "Push-ups", 10, nil, at(t, "2024-01-01T10:00:00Z"))
	require.NoError(t, err)
	_, err = s.AddSeries(ctx, "Push-ups", 12, nil, at(t, "2024-01-01T10:10:00Z"))
	require.NoError(t, err)
	dst, err := s.AddSeries(ctx, "Push-ups", 8, nil, at(t, "2024-01-02T09:00:00Z"))
	require.NoError(t, err)

	moveTo := at(t, "2024-01-02T11:00:00Z")
	require.NoError(t, s.UpdateSeries(ctx, src.ID, 0, 10, nil, &moveTo))

	require.Equal(t, 2, s.Len())
	var jan1, jan2 int
	for _, w := range s.Workouts() {
		switch w.DateString {
		case "2024-01-01":
			jan1++
			assert.Len(t, w.Series, 1)
			assert.Equal(t, 12, w.TotalReps)
		case "2024-01-02":
			jan2++
			assert.Len(t, w.Series, 2)
			assert.Equal(t, 18, w.TotalReps)
			assert.Equal(t, dst.Exercise, w.Exercise)
		}
	}
	assert.Equal(t, 1, jan1)
	assert.Equal(t, 1, jan2)
}

// TestUpdateSeriesMoveLastSeriesDeletesSource verifies the source workout
// disappears when its only series moves away.
func TestUpdateSeriesMoveLastSeriesDeletesSource(t *testing.T) {
	ctx := context.Background()
	s := New(nil, nil, nil)

	src, err := s.AddSeries(ctx, "Push-ups", 10, nil, at(t, "2024-01-01T10:00:00Z"))
	require.NoError(t, err)

	moveTo := at(t, "2024-01-03T10:00:00Z")
	require.NoError(t, s.UpdateSeries(ctx, src.ID, 0, 10, nil, &moveTo))

	ws := s.Workouts()
	require.Len(t, ws, 1)
	assert.Equal(t, "2024-01-03", ws[0].DateString)
	assert.Equal(t, 10, ws[0].TotalReps)
}

// TestUpdateWorkoutDate verifies both branches: retime in place, and
// merge into an existing destination.
func TestUpdateWorkoutDate(t *testing.T) {
	ctx := context.Background()
	s := New(nil, nil, nil)

	w, err := s.AddSeries(ctx, "Rows", 10, nil, at(t, "2024-01-01T07:30:00Z"))
	require.NoError(t, err)
	_, err = s.AddSeries(ctx, "Rows", 8, nil, at(t, "2024-01-01T07:45:00Z"))
	require.NoError(t, err)

	// No destination: retimed in place.
	require.NoError(t, s.UpdateWorkoutDate(ctx, w.ID, at(t, "2024-02-10T00:00:00Z")))
	ws := s.Workouts()
	require.Len(t, ws, 1)
	assert.Equal(t, "2024-02-10", ws[0].DateString)
	assert.Equal(t, 15, ws[0].TotalTime, "time of day preserved")

	// Existing destination: all series merged, source removed.
	other, err := s.AddSeries(ctx, "Rows", 5, nil, at(t, "2024-03-01T09:00:00Z"))
	require.NoError(t, err)
	require.NoError(t, s.UpdateWorkoutDate(ctx, ws[0].ID, at(t, "2024-03-01T00:00:00Z")))

	ws = s.Workouts()
	require.Len(t, ws, 1)
	assert.Equal(t, "2024-03-01", ws[0].DateString)
	assert.Equal(t, other.Exercise, ws[0].Exercise)
	assert.Len(t, ws[0].Series, 3)
	assert.Equal(t, 23, ws[0].TotalReps)
}

// TestSortedByDateDescending verifies ordering and copy semantics.
func TestSortedByDateDescending(t *testing.T) {
	ctx := context.Background()
	s := New(nil, nil, nil)
	_, err := s.AddSeries(ctx, "A", 1, nil, at(t, "2024-01-02T10:00:00Z"))
	require.NoError(t, err)
	_, err = s.AddSeries(ctx, "A", 1, nil, at(t, "2024-01-05T10:00:00Z"))
	require.NoError(t, err)
	_, err = s.AddSeries(ctx, "A", 1, nil, at(t, "2024-01-01T10:00:00Z"))
	require.NoError(t, err)

	sorted := s.SortedByDateDescending()
	require.Len(t, sorted, 3)
	assert.Equal(t, "2024-01-05", sorted[0].DateString)
	assert.Equal(t, "2024-01-01", sorted[2].DateString)

	// Mutating the returned slice must not affect the store.
	sorted[0].Series[0].Reps = 999
	assert.Equal(t, 1, s.SortedByDateDescending()[0].Series[0].Reps)
}

// TestPersistFailureKeepsMemory verifies the documented quota semantics:
// the error surfaces but the mutation is kept.
func TestPersistFailureKeepsMemory(t *testing.T) {
	ctx := context.Background()
	fp := &failingPersister{}
	s := New(nil, fp, nil)

	_, err := s.AddSeries(ctx, "Squats", 20, nil, at(t, "2024-05-01T10:00:00Z"))
	assert.ErrorIs(t, err, workout.ErrStorageQuota)
	assert.Equal(t, 1, s.Len())
	assert.Equal(t, 1, fp.calls)
}

// TestReplaceAllAndAddMany verifies bulk paths skip merge logic but still
// drop empty workouts and recompute.
func TestReplaceAllAndAddMany(t *testing.T) {
	ctx := context.Background()
	rp := &recordingPersister{}
	s := New(nil, rp, nil)

	batch := []workout.Workout{
		{Exercise: "Squats", Series: []workout.Series{{Reps: 5, Timestamp: workout.NewMillis(at(t, "2024-01-01T10:00:00Z"))}}},
		{Exercise: "Squats"}, // empty: dropped
	}
	require.NoError(t, s.ReplaceAll(ctx, batch))
	assert.Equal(t, 1, s.Len())
	assert.Len(t, rp.last, 1)

	require.NoError(t, s.AddMany(ctx, batch))
	assert.Equal(t, 2, s.Len(), "bulk append does not merge same-day workouts")
}

// TestInvariantsUnderRandomOperations fuzzes add/update/delete sequences
// and checks the §3 invariants after every step.
func TestInvariantsUnderRandomOperations(t *testing.T) {
	ctx := context.Background()
	rng := rand.New(rand.NewSource(1))
	s := New(nil, nil, nil)
	exercises := []string{"Push-ups", "Squats", "Rows"}
	base := at(t, "2024-01-01T08:00:00Z")

	for i := 0; i < 500; i++ {
		switch rng.Intn(4) {
		case 0, 1: // add biased so the store grows
			ex := exercises[rng.Intn(len(exercises))]
			when := base.Add(time.Duration(rng.Intn(96)) * time.Hour).Add(time.Duration(rng.Intn(60)) * time.Minute)
			_, err := s.AddSeries(ctx, ex, 1+rng.Intn(20), nil, when)
			require.NoError(t, err)
		case 2:
			ws := s.Workouts()
			if len(ws) == 0 {
				continue
			}
			w := ws[rng.Intn(len(ws))]
			_, err := s.DeleteSeries(ctx, w.ID, rng.Intn(len(w.Series)))
			require.NoError(t, err)
		case 3:
			ws := s.Workouts()
			if len(ws) == 0 {
				continue
			}
			w := ws[rng.Intn(len(ws))]
			when := base.Add(time.Duration(rng.Intn(96)) * time.Hour)
			err := s.UpdateSeries(ctx, w.ID, rng.Intn(len(w.Series)), 1+rng.Intn(20), nil, &when)
			require.NoError(t, err)
		}
		assertInvariants(t, s)
	}
}

func assertInvariants(t *testing.T, s *Store) {
	t.Helper()
	seen := make(map[string]bool)
	for _, w := range s.Workouts() {
		require.NotEmpty(t, w.Series, "invariant 1: no empty workouts")

		total := 0
		for _, ser := range w.Series {
			total += ser.Reps
		}
		require.Equal(t, total, w.TotalReps, "invariant 2: totalReps")

		for i := 1; i < len(w.Series); i++ {
			require.LessOrEqual(t, w.Series[i-1].Timestamp, w.Series[i].Timestamp,
				"invariant 4: chronological series")
		}

		require.Equal(t, w.Series[0].Timestamp, w.Date, "invariant 5: date")
		require.Equal(t, w.Date.DateString(), w.DateString, "invariant 5: dateString")
		require.Equal(t, workout.HandleFor(w.Date, w.Exercise), w.ID, "invariant 6: handle")

		key := w.DateString + "|" + w.Exercise
		require.False(t, seen[key], "store invariant: unique (day, exercise): %s", key)
		seen[key] = true
	}
}

// TestErrorsDoNotPersist verifies precondition failures never reach the
// persister.
func TestErrorsDoNotPersist(t *testing.T) {
	ctx := context.Background()
	fp := &failingPersister{}
	s := New(nil, fp, nil)

	_, err := s.DeleteSeries(ctx, 1, 0)
	require.Error(t, err)
	assert.False(t, errors.Is(err, workout.ErrStorageQuota))
	assert.Equal(t, 0, fp.calls)
}
