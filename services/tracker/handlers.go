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
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/GuilleHoardings/WorkoutTrackr-sub000/pkg/validation"
	"github.com/GuilleHoardings/WorkoutTrackr-sub000/services/tracker/workout"
)

// Handlers contains the HTTP handlers for the tracker.
type Handlers struct {
	svc *Service
}

// NewHandlers creates handlers for the given service and registers the
// custom binding validators.
func NewHandlers(svc *Service) *Handlers {
	RegisterBindingValidators()
	return &Handlers{svc: svc}
}

var bindingValidatorsOnce sync.Once

// RegisterBindingValidators installs the "exercisename" validator on the
// gin binding engine. Safe to call more than once.
func RegisterBindingValidators() {
	bindingValidatorsOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = v.RegisterValidation("exercisename", func(fl validator.FieldLevel) bool {
			return validation.ValidateExercise(fl.Field().String()) == nil
		})
	})
}

// HandleListWorkouts handles GET /v1/workouts.
//
// Response:
//
//	200 OK: WorkoutsResponse, newest first
func (h *Handlers) HandleListWorkouts(c *gin.Context) {
	workouts := h.svc.Workouts()
	c.JSON(http.StatusOK, WorkoutsResponse{Workouts: workouts, Count: len(workouts)})
}

// HandleListExercises handles GET /v1/exercises.
func (h *Handlers) HandleListExercises(c *gin.Context) {
	c.JSON(http.StatusOK, ExercisesResponse{Exercises: h.svc.Exercises()})
}

// HandleAddSeries handles POST /v1/series.
//
// Description:
//
//	Records one set. The target workout is keyed by (calendar day of
//	the timestamp, exercise) and created on first use.
//
// Request Body:
//
//	AddSeriesRequest
//
// Response:
//
//	200 OK: AddSeriesResponse
//	400 Bad Request: Validation error
//	507 Insufficient Storage: Set recorded in memory, save failed
func (h *Handlers) HandleAddSeries(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleAddSeries")

	var req AddSeriesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "Invalid request body",
			Code:  "INVALID_REQUEST",
		})
		return
	}

	w, err := h.svc.AddSeries(c.Request.Context(), req.Exercise, req.Reps, req.Weight, millisToTime(req.Timestamp))
	if err != nil {
		status, code := statusForError(err)
		logger.Error("Add series failed", "error", err)
		c.JSON(status, ErrorResponse{Error: err.Error(), Code: code})
		return
	}

	logger.Info("Series added",
		"exercise", w.Exercise,
		"day", w.DateString,
		"series", len(w.Series),
		"total_reps", w.TotalReps)
	c.JSON(http.StatusOK, AddSeriesResponse{Workout: w})
}

// HandleUpdateSeries handles PUT /v1/workouts/:id/series/:index.
//
// A timestamp landing on a different calendar day moves the series to
// that day's workout, merging when one already exists.
//
// Response:
//
//	200 OK: WorkoutsResponse with the updated collection
//	400 Bad Request: Validation error or index out of range
//	404 Not Found: Unknown workout
func (h *Handlers) HandleUpdateSeries(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleUpdateSeries")

	id, index, ok := pathSeriesRef(c)
	if !ok {
		return
	}

	var req UpdateSeriesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "Invalid request body",
			Code:  "INVALID_REQUEST",
		})
		return
	}

	err := h.svc.UpdateSeries(c.Request.Context(), id, index, req.Reps, req.Weight, millisToTime(req.Timestamp))
	if err != nil {
		status, code := statusForError(err)
		logger.Warn("Update series failed", "workout_id", id, "index", index, "error", err)
		c.JSON(status, ErrorResponse{Error: err.Error(), Code: code})
		return
	}

	workouts := h.svc.Workouts()
	c.JSON(http.StatusOK, WorkoutsResponse{Workouts: workouts, Count: len(workouts)})
}

// HandleDeleteSeries handles DELETE /v1/workouts/:id/series/:index.
//
// Response:
//
//	200 OK: DeleteSeriesResponse
//	400 Bad Request: Index out of range
//	404 Not Found: Unknown workout
func (h *Handlers) HandleDeleteSeries(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleDeleteSeries")

	id, index, ok := pathSeriesRef(c)
	if !ok {
		return
	}

	outcome, err := h.svc.DeleteSeries(c.Request.Context(), id, index)
	if err != nil {
		status, code := statusForError(err)
		logger.Warn("Delete series failed", "workout_id", id, "index", index, "error", err)
		c.JSON(status, ErrorResponse{Error: err.Error(), Code: code})
		return
	}

	logger.Info("Series deleted", "workout_id", id, "index", index, "outcome", outcome.String())
	c.JSON(http.StatusOK, DeleteSeriesResponse{Outcome: outcome.String()})
}

// HandleUpdateDate handles PUT /v1/workouts/:id/date.
//
// Moves every series of the workout to the new calendar day, preserving
// time of day. Merges into an existing workout at (new day, exercise).
func (h *Handlers) HandleUpdateDate(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleUpdateDate")

	id, ok := pathWorkoutID(c)
	if !ok {
		return
	}

	var req UpdateDateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "Invalid request body",
			Code:  "INVALID_REQUEST",
		})
		return
	}

	if err := h.svc.UpdateWorkoutDate(c.Request.Context(), id, req.Date); err != nil {
		status, code := statusForError(err)
		logger.Warn("Update date failed", "workout_id", id, "date", req.Date, "error", err)
		c.JSON(status, ErrorResponse{Error: err.Error(), Code: code})
		return
	}

	workouts := h.svc.Workouts()
	c.JSON(http.StatusOK, WorkoutsResponse{Workouts: workouts, Count: len(workouts)})
}

// HandleShare handles GET /v1/share.
//
// Query Parameters:
//
//	mode - "full", "truncated", or "best" (default "best")
//
// Response:
//
//	200 OK: ShareResponse
//	400 Bad Request: Nothing to share
//	413 Request Entity Too Large: Even the truncated link is over the
//	    ceiling; export the data instead
func (h *Handlers) HandleShare(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleShare")

	mode := ShareMode(c.DefaultQuery("mode", string(ShareModeBest)))
	link, err := h.svc.Share(mode)
	if err != nil {
		status, code := statusForError(err)
		logger.Warn("Share failed", "mode", string(mode), "error", err)
		c.JSON(status, ErrorResponse{Error: err.Error(), Code: code})
		return
	}

	logger.Info("Share link built",
		"option", link.Option.String(),
		"workouts", link.WorkoutCount,
		"link_length", len(link.URL))
	c.JSON(http.StatusOK, ShareResponse{
		URL:           link.URL,
		Token:         link.Token,
		Option:        link.Option.String(),
		WorkoutCount:  link.WorkoutCount,
		OriginalCount: link.OriginalCount,
	})
}

// HandleImport handles POST /v1/import.
//
// Description:
//
//	Decodes a shared link or bare token. With confirm false the decoded
//	snapshot is only previewed; with confirm true it replaces the whole
//	collection. Corrupted links are rejected whole and never touch the
//	stored data.
//
// Request Body:
//
//	ImportRequest
//
// Response:
//
//	200 OK: ImportResponse
//	400 Bad Request: Corrupted or unsupported link
//	507 Insufficient Storage: Collection replaced in memory, save failed
func (h *Handlers) HandleImport(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleImport")

	var req ImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "Invalid request body",
			Code:  "INVALID_REQUEST",
		})
		return
	}

	pending, err := h.svc.Import(req.Link)
	if err != nil {
		status, code := statusForError(err)
		logger.Warn("Import rejected", "error", err)
		c.JSON(status, ErrorResponse{Error: err.Error(), Code: code})
		return
	}

	resp := ImportResponse{
		WorkoutCount:  len(pending.Snapshot.Workouts),
		ExerciseTypes: pending.Snapshot.ExerciseTypes,
		Generation:    pending.Generation.String(),
		Partial:       pending.Snapshot.IsPartial,
		OriginalCount: pending.Snapshot.OriginalCount,
	}
	if req.Confirm {
		if err := pending.Confirm(c.Request.Context()); err != nil {
			status, code := statusForError(err)
			logger.Error("Import apply failed", "error", err)
			c.JSON(status, ErrorResponse{Error: err.Error(), Code: code})
			return
		}
		resp.Applied = true
		logger.Info("Import applied",
			"workouts", resp.WorkoutCount,
			"generation", resp.Generation)
	}
	c.JSON(http.StatusOK, resp)
}

// HandleHealth handles GET /v1/health.
func (h *Handlers) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:   "ok",
		Version:  ServiceVersion,
		Workouts: h.svc.store.Len(),
	})
}

// ---- helpers ----

func getOrCreateRequestID(c *gin.Context) string {
	requestID := c.GetHeader("X-Request-ID")
	if requestID == "" {
		requestID = uuid.NewString()
	}
	c.Header("X-Request-ID", requestID)
	return requestID
}

func millisToTime(ms *int64) *time.Time {
	if ms == nil {
		return nil
	}
	t := workout.Millis(*ms).Time()
	return &t
}

// pathWorkoutID parses :id, writing the 404 itself on failure. An
// unparseable handle can never name an existing workout.
func pathWorkoutID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error: "Unknown workout " + c.Param("id"),
			Code:  "NOT_FOUND",
		})
		return 0, false
	}
	return id, true
}

// pathSeriesRef parses :id and :index, writing the error response itself
// on failure.
func pathSeriesRef(c *gin.Context) (int64, int, bool) {
	id, ok := pathWorkoutID(c)
	if !ok {
		return 0, 0, false
	}
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "Invalid series index " + c.Param("index"),
			Code:  "INDEX_RANGE",
		})
		return 0, 0, false
	}
	return id, index, true
}
