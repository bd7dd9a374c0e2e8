// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package store maintains the canonical in-memory workout collection.
//
// The store enforces the entity invariants on every mutation path and
// guarantees at most one workout per (day, exercise) pair. The merge rule
// behind that guarantee lives in a single upsert primitive; no operation
// reimplements it.
//
// Failed operations are all-or-nothing: a NotFound or IndexOutOfRange
// leaves the collection untouched. A failed persistence write is surfaced
// as workout.ErrStorageQuota but does not roll back the in-memory
// mutation; the user keeps their data and can retry the save or export.
//
// # Thread Safety
//
// Store is safe for concurrent use. Every operation holds an exclusive
// lock; read accessors return deep copies.
package store

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/GuilleHoardings/WorkoutTrackr-sub000/services/tracker/workout"
)

// -----------------------------------------------------------------------------
// Metrics
// -----------------------------------------------------------------------------

var mutationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "workouttrackr_store_mutations_total",
	Help: "Total store mutations by operation and status",
}, []string{"op", "status"})

// -----------------------------------------------------------------------------
// Persistence hook
// -----------------------------------------------------------------------------

// Persister writes the full workout collection to durable storage.
// persist.Repository satisfies this.
type Persister interface {
	Save(ctx context.Context, workouts []workout.Workout) error
}

// DeleteOutcome distinguishes the two results of DeleteSeries. Callers
// must be able to tell whether the parent workout survived.
type DeleteOutcome int

const (
	// OutcomeSeriesRemoved means the series was removed and the workout
	// retained with recomputed totals.
	OutcomeSeriesRemoved DeleteOutcome = iota

	// OutcomeWorkoutDeleted means removing the series emptied the
	// workout, so the workout itself was deleted.
	OutcomeWorkoutDeleted
)

// String returns "series_removed" or "workout_deleted".
func (o DeleteOutcome) String() string {
	if o == OutcomeWorkoutDeleted {
		return "workout_deleted"
	}
	return "series_removed"
}

// -----------------------------------------------------------------------------
// Store
// -----------------------------------------------------------------------------

// Store is the canonical in-memory workout collection.
type Store struct {
	mu        sync.Mutex
	workouts  []*workout.Workout
	persister Persister
	logger    *slog.Logger
}

// New creates a store over the given collection.
//
// Inputs:
//
//	initial - Workouts loaded from storage. Deep-copied; recomputed
//	          defensively so loaded data satisfies the invariants.
//	persister - Durable writer invoked after every successful mutation.
//	            May be nil (no persistence, used by tests).
//	logger - Logger for persistence failures. Nil falls back to
//	         slog.Default().
func New(initial []workout.Workout, persister Persister, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{persister: persister, logger: logger}
	for i := range initial {
		if len(initial[i].Series) == 0 {
			continue
		}
		w := initial[i].Clone()
		w.Recompute()
		s.workouts = append(s.workouts, &w)
	}
	return s
}

// AddSeries records one set for the given exercise.
//
// Description:
//
//	Appends a series to the workout keyed by (day of at, exercise),
//	creating the workout if none exists. Numeric validation happens in
//	the caller (pkg/validation or request binding), not here.
//
// Outputs:
//
//	workout.Workout - Copy of the affected workout after recompute.
//	error - workout.ErrStorageQuota (wrapped) if the follow-up save fails.
func (s *Store) AddSeries(ctx context.Context, exercise string, reps int, weight *float64, at time.Time) (workout.Workout, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ser := workout.Series{Reps: reps, Timestamp: workout.NewMillis(at)}
	if weight != nil {
		w := *weight
		ser.Weight = &w
	}
	target := s.upsertSeries(exercise, ser)
	err := s.persist(ctx, "add_series")
	return target.Clone(), err
}

// DeleteSeries removes one series from a workout.
//
// Outputs:
//
//	DeleteOutcome - Whether the workout survived.
//	error - workout.ErrWorkoutNotFound, workout.ErrSeriesIndexOutOfRange,
//	        or a wrapped workout.ErrStorageQuota from the save.
func (s *Store) DeleteSeries(ctx context.Context, workoutID int64, index int) (DeleteOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pos, w := s.findByID(workoutID)
	if w == nil {
		mutationsTotal.WithLabelValues("delete_series", "not_found").Inc()
		return 0, workout.ErrWorkoutNotFound
	}
	if index < 0 || index >= len(w.Series) {
		mutationsTotal.WithLabelValues("delete_series", "bad_index").Inc()
		return 0, workout.ErrSeriesIndexOutOfRange
	}

	w.Series = append(w.Series[:index], w.Series[index+1:]...)
	outcome := OutcomeSeriesRemoved
	if len(w.Series) == 0 {
		s.removeAt(pos)
		outcome = OutcomeWorkoutDeleted
	} else {
		w.Recompute()
	}
	return outcome, s.persist(ctx, "delete_series")
}

// UpdateSeries edits one series, moving it across workouts when the new
// timestamp lands on a different calendar day.
//
// Description:
//
//	With newTimestamp nil the series is updated in place and totals are
//	recomputed. With a timestamp on the same day, the series is retimed
//	in place. With a timestamp on a different day, the series is removed
//	from the source workout (which is deleted if emptied) and merged
//	through the upsert primitive, so two workouts for the same
//	(day, exercise) pair can never coexist and the series is never lost.
func (s *Store) UpdateSeries(ctx context.Context, workoutID int64, index int, reps int, weight *float64, newTimestamp *time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	pos, w := s.findByID(workoutID)
	if w == nil {
		mutationsTotal.WithLabelValues("update_series", "not_found").Inc()
		return workout.ErrWorkoutNotFound
	}
	if index < 0 || index >= len(w.Series) {
		mutationsTotal.WithLabelValues("update_series", "bad_index").Inc()
		return workout.ErrSeriesIndexOutOfRange
	}

	ser := &w.Series[index]
	ser.Reps = reps
	if weight != nil {
		v := *weight
		ser.Weight = &v
	} else {
		ser.Weight = nil
	}

	if newTimestamp == nil {
		w.Recompute()
		return s.persist(ctx, "update_series")
	}

	next := workout.NewMillis(*newTimestamp)
	if next.DateString() == ser.Timestamp.DateString() {
		ser.Timestamp = next
		w.Recompute()
		return s.persist(ctx, "update_series")
	}

	// Day changed: detach from the source, then merge at the new day.
	moved := ser.Clone()
	moved.Timestamp = next
	exercise := w.Exercise

	w.Series = append(w.Series[:index], w.Series[index+1:]...)
	if len(w.Series) == 0 {
		s.removeAt(pos)
	} else {
		w.Recompute()
	}
	s.upsertSeries(exercise, moved)
	return s.persist(ctx, "move_series")
}

// UpdateWorkoutDate retimes every series of a workout onto a new calendar
// day, preserving time of day. If another workout already exists at
// (new day, exercise), all series are merged into it and the source is
// removed; otherwise the workout is retimed in place.
func (s *Store) UpdateWorkoutDate(ctx context.Context, workoutID int64, newDate time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	pos, w := s.findByID(workoutID)
	if w == nil {
		mutationsTotal.WithLabelValues("update_date", "not_found").Inc()
		return workout.ErrWorkoutNotFound
	}

	shifted := w.ShiftToDay(newDate)
	newDay := shifted[0].Timestamp.DateString()

	if dest := s.findByKey(newDay, w.Exercise, w); dest != nil {
		dest.Series = append(dest.Series, shifted...)
		dest.Recompute()
		s.removeAt(pos)
	} else {
		w.Series = shifted
		w.Recompute()
	}
	return s.persist(ctx, "update_date")
}

// ReplaceAll swaps the full collection, as used by confirmed imports.
// No merge-by-day logic is applied; the producer of the snapshot is
// expected to have deduplicated already.
func (s *Store) ReplaceAll(ctx context.Context, workouts []workout.Workout) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.workouts = nil
	s.appendAll(workouts)
	return s.persist(ctx, "replace_all")
}

// AddMany appends workouts in bulk without merge-by-day logic.
func (s *Store) AddMany(ctx context.Context, workouts []workout.Workout) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.appendAll(workouts)
	return s.persist(ctx, "add_many")
}

// Workouts returns a deep copy of the collection in insertion order.
func (s *Store) Workouts() []workout.Workout {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copyAll()
}

// SortedByDateDescending returns a deep copy sorted newest first.
func (s *Store) SortedByDateDescending() []workout.Workout {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := s.copyAll()
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date > out[j].Date
	})
	return out
}

// UniqueExerciseTypes returns the distinct exercise names in first-seen
// order. The store treats names as opaque strings; catalog membership is
// advisory, not enforced.
func (s *Store) UniqueExerciseTypes() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]bool, len(s.workouts))
	var out []string
	for _, w := range s.workouts {
		if !seen[w.Exercise] {
			seen[w.Exercise] = true
			out = append(out, w.Exercise)
		}
	}
	return out
}

// Snapshot bundles the collection and catalog for export, stamped now.
func (s *Store) Snapshot() workout.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]bool, len(s.workouts))
	var types []string
	for _, w := range s.workouts {
		if !seen[w.Exercise] {
			seen[w.Exercise] = true
			types = append(types, w.Exercise)
		}
	}
	return workout.Snapshot{
		Workouts:      s.copyAll(),
		ExerciseTypes: types,
		Timestamp:     workout.NewMillis(time.Now()),
	}
}

// Len returns the number of workouts.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.workouts)
}

// -----------------------------------------------------------------------------
// Internals
// -----------------------------------------------------------------------------

// upsertSeries is the single invariant-enforcing merge primitive: every
// path that lands a series on a (day, exercise) pair goes through here,
// so at most one workout can exist per pair.
//
// Caller must hold the lock.
func (s *Store) upsertSeries(exercise string, ser workout.Series) *workout.Workout {
	day := ser.Timestamp.DateString()
	if w := s.findByKey(day, exercise, nil); w != nil {
		w.Series = append(w.Series, ser)
		w.Recompute()
		return w
	}

	w := &workout.Workout{Exercise: exercise, Series: []workout.Series{ser}}
	w.Recompute()
	s.workouts = append(s.workouts, w)
	return w
}

// findByID locates a workout by its integer handle.
// Caller must hold the lock.
func (s *Store) findByID(id int64) (int, *workout.Workout) {
	for i, w := range s.workouts {
		if w.ID == id {
			return i, w
		}
	}
	return -1, nil
}

// findByKey locates a workout by (day, exercise), skipping exclude.
// Caller must hold the lock.
func (s *Store) findByKey(day, exercise string, exclude *workout.Workout) *workout.Workout {
	for _, w := range s.workouts {
		if w == exclude {
			continue
		}
		if w.DateString == day && w.Exercise == exercise {
			return w
		}
	}
	return nil
}

func (s *Store) removeAt(pos int) {
	s.workouts = append(s.workouts[:pos], s.workouts[pos+1:]...)
}

func (s *Store) appendAll(workouts []workout.Workout) {
	for i := range workouts {
		if len(workouts[i].Series) == 0 {
			continue
		}
		w := workouts[i].Clone()
		w.Recompute()
		s.workouts = append(s.workouts, &w)
	}
}

func (s *Store) copyAll() []workout.Workout {
	out := make([]workout.Workout, len(s.workouts))
	for i, w := range s.workouts {
		out[i] = w.Clone()
	}
	return out
}

// persist writes the collection through the configured Persister. The
// in-memory mutation is kept even when the write fails; the error is
// surfaced so the caller can warn the user.
//
// Caller must hold the lock.
func (s *Store) persist(ctx context.Context, op string) error {
	if s.persister == nil {
		mutationsTotal.WithLabelValues(op, "ok").Inc()
		return nil
	}

	snapshot := make([]workout.Workout, len(s.workouts))
	for i, w := range s.workouts {
		snapshot[i] = w.Clone()
	}
	if err := s.persister.Save(ctx, snapshot); err != nil {
		mutationsTotal.WithLabelValues(op, "save_failed").Inc()
		s.logger.Error("persist after mutation failed; in-memory state kept",
			slog.String("op", op), slog.String("error", err.Error()))
		return err
	}
	mutationsTotal.WithLabelValues(op, "ok").Inc()
	return nil
}
