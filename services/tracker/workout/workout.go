// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package workout defines the workout entity model.
//
// A Workout is one exercise session for one exercise type on one calendar
// day. It owns an ordered, non-empty sequence of Series (discrete sets).
// Derived fields (Date, DateString, TotalReps, TotalTime) are restored by
// Recompute after any structural change; code outside this package must
// never edit Series slices without recomputing.
//
// All instants are carried as Millis (epoch milliseconds) because both the
// persisted container and the transfer token store timestamps as plain
// JSON numbers. Calendar-day derivation is done in UTC so that grouping,
// persistence, and the transfer codec agree on day boundaries.
package workout

import (
	"hash/fnv"
	"math"
	"sort"
	"time"
)

// DateLayout is the calendar-day format used for DateString and for
// day-level grouping keys.
const DateLayout = "2006-01-02"

// DefaultExercise is the exercise name assigned to records migrated from
// schema generations that predate multi-exercise support.
const DefaultExercise = "Push-ups"

// Millis is an instant expressed as milliseconds since the Unix epoch.
//
// It marshals to and from a bare JSON number, matching the stored and
// transferred representations.
type Millis int64

// NewMillis converts a time.Time to Millis.
func NewMillis(t time.Time) Millis {
	return Millis(t.UnixMilli())
}

// Time converts back to a time.Time in UTC.
func (m Millis) Time() time.Time {
	return time.UnixMilli(int64(m)).UTC()
}

// Add returns the instant shifted by d.
func (m Millis) Add(d time.Duration) Millis {
	return m + Millis(d.Milliseconds())
}

// DateString returns the UTC calendar day of the instant.
func (m Millis) DateString() string {
	return m.Time().Format(DateLayout)
}

// Series is one discrete set within a Workout.
type Series struct {
	// Reps is the repetition count. Always positive.
	Reps int `json:"reps"`

	// Weight is the load in kilograms. Nil means bodyweight and
	// marshals as JSON null.
	Weight *float64 `json:"weight"`

	// Timestamp is the instant the set was performed.
	Timestamp Millis `json:"timestamp"`
}

// Clone returns a deep copy of the series.
func (s Series) Clone() Series {
	c := s
	if s.Weight != nil {
		w := *s.Weight
		c.Weight = &w
	}
	return c
}

// Workout is one exercise session for one exercise type on one calendar day.
//
// Invariants after every mutation:
//  1. Series is non-empty (an emptied workout is deleted, never kept).
//  2. TotalReps equals the sum of Series reps.
//  3. TotalTime equals the rounded minutes between the first and last
//     series, or 0 with a single series.
//  4. Series is sorted ascending by timestamp.
//  5. Date equals the first series timestamp; DateString is its UTC day.
//  6. ID equals HandleFor(Date, Exercise).
type Workout struct {
	// ID is the integer handle used to address the workout. Derived by
	// Recompute; mutations that change the first series or the exercise
	// also change the handle.
	ID int64 `json:"id"`

	Date       Millis   `json:"date"`
	DateString string   `json:"dateString"`
	Exercise   string   `json:"exercise"`
	Series     []Series `json:"series"`
	TotalTime  int      `json:"totalTime"`
	TotalReps  int      `json:"totalReps"`
}

// HandleFor derives the integer handle for a workout addressed by its
// first-series instant and exercise. The low bits carry the epoch-millis
// timestamp; the exercise name is folded into the high bits so workouts
// for different exercises started at the same instant still get distinct
// handles.
func HandleFor(date Millis, exercise string) int64 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(exercise))
	return int64(date) | int64(h.Sum32()&0xfffff)<<43
}

// Clone returns a deep copy of the workout.
func (w *Workout) Clone() Workout {
	c := *w
	c.Series = make([]Series, len(w.Series))
	for i, s := range w.Series {
		c.Series[i] = s.Clone()
	}
	return c
}

// Recompute restores the derived fields from the series sequence.
//
// Description:
//
//	Sorts the series chronologically, then recomputes TotalReps,
//	TotalTime, Date, and DateString. Callers must ensure the series
//	slice is non-empty; an empty workout must be deleted instead.
func (w *Workout) Recompute() {
	if len(w.Series) == 0 {
		return
	}
	sort.SliceStable(w.Series, func(i, j int) bool {
		return w.Series[i].Timestamp < w.Series[j].Timestamp
	})

	total := 0
	for _, s := range w.Series {
		total += s.Reps
	}
	w.TotalReps = total

	if len(w.Series) > 1 {
		first := w.Series[0].Timestamp.Time()
		last := w.Series[len(w.Series)-1].Timestamp.Time()
		w.TotalTime = int(math.Round(last.Sub(first).Minutes()))
	} else {
		w.TotalTime = 0
	}

	w.Date = w.Series[0].Timestamp
	w.DateString = w.Date.DateString()
	w.ID = HandleFor(w.Date, w.Exercise)
}

// ShiftToDay returns a copy of the series retimed onto the calendar day of
// newDay, preserving each series' time of day.
func (w *Workout) ShiftToDay(newDay time.Time) []Series {
	y, mo, d := newDay.UTC().Date()
	shifted := make([]Series, len(w.Series))
	for i, s := range w.Series {
		t := s.Timestamp.Time()
		nt := time.Date(y, mo, d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
		c := s.Clone()
		c.Timestamp = NewMillis(nt)
		shifted[i] = c
	}
	return shifted
}

// MidnightUTC parses a DateLayout day string into midnight UTC of that day.
func MidnightUTC(dateString string) (time.Time, error) {
	return time.Parse(DateLayout, dateString)
}
