// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package tracker exposes the workout record store over HTTP.
//
// The package wires the durable layers together (BadgerDB key-value
// store, versioned container repository, in-memory workout store,
// transfer orchestrator) and registers the /v1 REST surface on a Gin
// router.
package tracker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/GuilleHoardings/WorkoutTrackr-sub000/services/tracker/config"
	"github.com/GuilleHoardings/WorkoutTrackr-sub000/services/tracker/persist"
	"github.com/GuilleHoardings/WorkoutTrackr-sub000/services/tracker/storage/badgerkv"
	"github.com/GuilleHoardings/WorkoutTrackr-sub000/services/tracker/store"
	"github.com/GuilleHoardings/WorkoutTrackr-sub000/services/tracker/transfer"
	"github.com/GuilleHoardings/WorkoutTrackr-sub000/services/tracker/workout"
)

// ServiceVersion is the tracker service version.
const ServiceVersion = "0.1.0"

// Service bundles the workout store and transfer orchestrator behind a
// single object the handlers and the CLI share.
type Service struct {
	store  *store.Store
	orch   *transfer.Orchestrator
	report persist.LoadReport
	logger *slog.Logger
}

// NewService assembles a service from already-constructed parts. Used by
// tests; production code goes through Bootstrap.
func NewService(st *store.Store, orch *transfer.Orchestrator, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: st, orch: orch, logger: logger}
}

// Bootstrap opens the durable store and wires the full stack.
//
// Description:
//
//	Opens BadgerDB at cfg.DataDir, loads and migrates the persisted
//	container, seeds the in-memory store with the result, and binds the
//	transfer orchestrator. Migrations and data-loss degradations are
//	logged here so every entry point (server and CLI) reports them the
//	same way.
//
// Outputs:
//
//	*Service - The assembled service.
//	func() error - Close function releasing the database.
//	error - Non-nil if the database cannot be opened or the initial
//	        load hits a real storage failure.
func Bootstrap(ctx context.Context, cfg config.Config, logger *slog.Logger) (*Service, func() error, error) {
	if logger == nil {
		logger = slog.Default()
	}

	kv, err := badgerkv.Open(badgerkv.DefaultConfig(cfg.DataDir))
	if err != nil {
		return nil, nil, fmt.Errorf("open data dir %s: %w", cfg.DataDir, err)
	}

	repo := persist.NewRepository(kv, logger)
	workouts, report, err := repo.Load(ctx)
	if err != nil {
		_ = kv.Close()
		return nil, nil, fmt.Errorf("load workouts: %w", err)
	}
	if report.Migrated {
		logger.Info("workout data migrated on load",
			slog.String("from", report.Generation.String()),
			slog.Int("workouts", len(workouts)))
	}
	if report.DataLost {
		logger.Warn("stored workout data was unreadable; starting empty, stored bytes kept")
	}

	st := store.New(workouts, repo, logger)
	orch, err := transfer.NewOrchestrator(transfer.Config{
		MaxLinkLength: cfg.Share.MaxLinkLength,
		TruncateCount: cfg.Share.TruncateCount,
		BaseURL:       cfg.Share.BaseURL,
	}, st, logger)
	if err != nil {
		_ = kv.Close()
		return nil, nil, err
	}

	svc := &Service{store: st, orch: orch, report: report, logger: logger}
	return svc, kv.Close, nil
}

// LoadReport returns what happened during the initial load.
func (s *Service) LoadReport() persist.LoadReport {
	return s.report
}

// Store exposes the workout store for the CLI.
func (s *Service) Store() *store.Store {
	return s.store
}

// Workouts returns the collection sorted newest first.
func (s *Service) Workouts() []workout.Workout {
	return s.store.SortedByDateDescending()
}

// Exercises returns the distinct exercise names in first-seen order.
func (s *Service) Exercises() []string {
	return s.store.UniqueExerciseTypes()
}

// AddSeries records one set. A nil at defaults to now.
func (s *Service) AddSeries(ctx context.Context, exercise string, reps int, weight *float64, at *time.Time) (workout.Workout, error) {
	when := time.Now()
	if at != nil {
		when = *at
	}
	return s.store.AddSeries(ctx, exercise, reps, weight, when)
}

// UpdateSeries edits one series, moving it across days when the new
// timestamp changes the calendar day.
func (s *Service) UpdateSeries(ctx context.Context, workoutID int64, index, reps int, weight *float64, at *time.Time) error {
	return s.store.UpdateSeries(ctx, workoutID, index, reps, weight, at)
}

// DeleteSeries removes one series.
func (s *Service) DeleteSeries(ctx context.Context, workoutID int64, index int) (store.DeleteOutcome, error) {
	return s.store.DeleteSeries(ctx, workoutID, index)
}

// UpdateWorkoutDate moves a whole workout to a new calendar day.
func (s *Service) UpdateWorkoutDate(ctx context.Context, workoutID int64, date string) error {
	day, err := workout.MidnightUTC(date)
	if err != nil {
		return fmt.Errorf("invalid date %q: %w", date, err)
	}
	return s.store.UpdateWorkoutDate(ctx, workoutID, day)
}

// ShareMode selects the share construction strategy.
type ShareMode string

const (
	// ShareModeFull fails with ErrLinkTooLarge rather than truncate.
	ShareModeFull ShareMode = "full"

	// ShareModeTruncated always keeps only the most recent workouts.
	ShareModeTruncated ShareMode = "truncated"

	// ShareModeBest tries full first, then truncated.
	ShareModeBest ShareMode = "best"
)

// Share builds a share link from the current collection.
func (s *Service) Share(mode ShareMode) (*transfer.ShareLink, error) {
	snap := s.store.Snapshot()
	switch mode {
	case ShareModeFull:
		return s.orch.BuildShareLink(snap)
	case ShareModeTruncated:
		return s.orch.BuildTruncatedShareLink(snap)
	default:
		return s.orch.BuildBestShareLink(snap)
	}
}

// Import decodes a shared link into a pending import. The caller decides
// whether to Confirm.
func (s *Service) Import(link string) (*transfer.PendingImport, error) {
	return s.orch.ImportSharedLink(link)
}
