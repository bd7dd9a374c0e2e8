// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package tracker

import (
	"github.com/GuilleHoardings/WorkoutTrackr-sub000/services/tracker/workout"
)

// ErrorResponse is the standard error response body.
type ErrorResponse struct {
	// Error is the human-readable error message.
	Error string `json:"error"`

	// Code is the machine-readable error code.
	Code string `json:"code"`
}

// AddSeriesRequest is the request body for POST /v1/series.
type AddSeriesRequest struct {
	// Exercise is the exercise name. Required.
	Exercise string `json:"exercise" binding:"required,exercisename"`

	// Reps is the repetition count for this set. Required, positive.
	Reps int `json:"reps" binding:"required,gt=0,lte=10000"`

	// Weight is the optional extra weight in kilograms. Omitted or null
	// means body weight only.
	Weight *float64 `json:"weight" binding:"omitempty,gt=0,lte=1000"`

	// Timestamp is the set time in epoch milliseconds. Default: now.
	Timestamp *int64 `json:"timestamp"`
}

// AddSeriesResponse is the response for POST /v1/series.
type AddSeriesResponse struct {
	// Workout is the affected workout after recompute.
	Workout workout.Workout `json:"workout"`
}

// UpdateSeriesRequest is the request body for
// PUT /v1/workouts/:id/series/:index.
type UpdateSeriesRequest struct {
	// Reps is the new repetition count. Required, positive.
	Reps int `json:"reps" binding:"required,gt=0,lte=10000"`

	// Weight is the new extra weight in kilograms. Omitted or null
	// clears the weight.
	Weight *float64 `json:"weight" binding:"omitempty,gt=0,lte=1000"`

	// Timestamp is the new set time in epoch milliseconds. When it lands
	// on a different calendar day the series moves to that day's workout.
	// Omitted keeps the current timestamp.
	Timestamp *int64 `json:"timestamp"`
}

// DeleteSeriesResponse is the response for
// DELETE /v1/workouts/:id/series/:index.
type DeleteSeriesResponse struct {
	// Outcome is "series_removed" or "workout_deleted".
	Outcome string `json:"outcome"`
}

// UpdateDateRequest is the request body for PUT /v1/workouts/:id/date.
type UpdateDateRequest struct {
	// Date is the new calendar day in YYYY-MM-DD form. Required.
	Date string `json:"date" binding:"required,datetime=2006-01-02"`
}

// WorkoutsResponse is the response for GET /v1/workouts.
type WorkoutsResponse struct {
	// Workouts is the collection, newest first.
	Workouts []workout.Workout `json:"workouts"`

	// Count is len(Workouts).
	Count int `json:"count"`
}

// ExercisesResponse is the response for GET /v1/exercises.
type ExercisesResponse struct {
	// Exercises lists distinct exercise names in first-seen order.
	Exercises []string `json:"exercises"`
}

// ShareResponse is the response for GET /v1/share.
type ShareResponse struct {
	// URL is the full shareable link.
	URL string `json:"url"`

	// Token is the encoded snapshot without the URL prefix.
	Token string `json:"token"`

	// Option is "full" or "partial".
	Option string `json:"option"`

	// WorkoutCount is the number of workouts inside the link.
	WorkoutCount int `json:"workout_count"`

	// OriginalCount is the pre-truncation count.
	OriginalCount int `json:"original_count"`
}

// ImportRequest is the request body for POST /v1/import.
type ImportRequest struct {
	// Link is a full share URL or bare token. Required.
	Link string `json:"link" binding:"required"`

	// Confirm applies the decoded snapshot, replacing all current data.
	// With Confirm false the snapshot is only previewed.
	Confirm bool `json:"confirm"`
}

// ImportResponse is the response for POST /v1/import.
type ImportResponse struct {
	// WorkoutCount is the number of workouts in the decoded snapshot.
	WorkoutCount int `json:"workout_count"`

	// ExerciseTypes lists the exercise names in the snapshot.
	ExerciseTypes []string `json:"exercise_types"`

	// Generation is the detected token generation ("legacy" or
	// "compact-v1").
	Generation string `json:"generation"`

	// Partial is true when the snapshot was truncated at share time.
	Partial bool `json:"partial"`

	// OriginalCount is the pre-truncation count for partial snapshots.
	OriginalCount int `json:"original_count,omitempty"`

	// Applied is true when the snapshot replaced the current data.
	Applied bool `json:"applied"`
}

// HealthResponse is the response for GET /v1/health.
type HealthResponse struct {
	// Status is "ok".
	Status string `json:"status"`

	// Version is the service version.
	Version string `json:"version"`

	// Workouts is the current collection size.
	Workouts int `json:"workouts"`
}
