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
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/GuilleHoardings/WorkoutTrackr-sub000/services/tracker/workout"
)

// KV is the durable key-value surface the repository needs.
// badgerkv.Store satisfies this.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// LoadReport describes what happened during a load, so callers can
// surface migrations and data-loss degradations to the user.
type LoadReport struct {
	// Found is false when neither storage key held a container.
	Found bool

	// Generation is the detected source schema generation.
	Generation Generation

	// Migrated is true when the stored container was upgraded and
	// rewritten under the current key.
	Migrated bool

	// FromLegacyKey is true when the container came from the retired
	// push-ups key.
	FromLegacyKey bool

	// DataLost is true when an unrecognized shape was degraded to an
	// empty collection. The stored bytes are kept for manual recovery.
	DataLost bool
}

// Repository persists the workout collection as a versioned container.
//
// # Thread Safety
//
// Repository is stateless between calls; safety is inherited from the
// underlying KV. The store serializes mutations, so there is a single
// writer in practice.
type Repository struct {
	kv     KV
	logger *slog.Logger
}

// NewRepository creates a repository over the given key-value store.
func NewRepository(kv KV, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{kv: kv, logger: logger}
}

// Load reads the persisted container, migrating it if needed.
//
// Description:
//
//	Reads the current key, falling back to the legacy push-ups key when
//	the current key is empty. The container is upgraded to the current
//	version and, when an upgrade happened, rewritten under the current
//	key so migration runs at most once per data set. A container loaded
//	from the legacy key is rewritten under the current key and the
//	legacy key is cleared best-effort; a failed cleanup only logs.
//
//	Unrecognized shapes degrade to an empty collection rather than
//	failing the load ("never block the user from opening the app").
//	The degradation is logged and reported via LoadReport.DataLost, and
//	the unreadable value is NOT overwritten, so nothing is destroyed.
//
// Outputs:
//
//	[]workout.Workout - The current-version collection (possibly empty).
//	LoadReport - What was found and what was done.
//	error - Non-nil only for real storage failures, never for shape
//	        problems.
func (r *Repository) Load(ctx context.Context) ([]workout.Workout, LoadReport, error) {
	report := LoadReport{}

	raw, found, err := r.kv.Get(ctx, CurrentKey)
	if err != nil {
		return nil, report, fmt.Errorf("read %s: %w", CurrentKey, err)
	}
	key := CurrentKey
	if !found {
		raw, found, err = r.kv.Get(ctx, LegacyKey)
		if err != nil {
			return nil, report, fmt.Errorf("read %s: %w", LegacyKey, err)
		}
		key = LegacyKey
		report.FromLegacyKey = found
	}
	if !found {
		return nil, report, nil
	}
	report.Found = true

	workouts, gen, dataLost := migrate(raw)
	report.Generation = gen
	report.DataLost = dataLost

	if dataLost {
		// Leave the stored value untouched for manual recovery.
		r.logger.Warn("stored workout data has an unrecognized shape; starting empty",
			slog.String("key", key),
			slog.String("error", workout.ErrRecoverableDataLoss.Error()))
		return nil, report, nil
	}

	if gen != GenerationV3 || report.FromLegacyKey {
		if err := r.Save(ctx, workouts); err != nil {
			return nil, report, fmt.Errorf("rewrite migrated container: %w", err)
		}
		report.Migrated = true
		r.logger.Info("migrated workout container",
			slog.String("from", gen.String()),
			slog.Int("to_version", CurrentVersion),
			slog.Int("workouts", len(workouts)),
			slog.Bool("from_legacy_key", report.FromLegacyKey))

		if report.FromLegacyKey {
			// Best-effort cleanup; never part of the migration contract.
			if err := r.kv.Delete(ctx, LegacyKey); err != nil {
				r.logger.Warn("could not clear legacy storage key",
					slog.String("key", LegacyKey),
					slog.String("error", err.Error()))
			}
		}
	}
	return workouts, report, nil
}

// Save writes the collection as a current-version container.
//
// A rejected write wraps workout.ErrStorageQuota; the caller keeps its
// in-memory state and decides whether to retry or export.
func (r *Repository) Save(ctx context.Context, workouts []workout.Workout) error {
	if workouts == nil {
		workouts = []workout.Workout{}
	}
	data, err := json.Marshal(workouts)
	if err != nil {
		return fmt.Errorf("marshal workouts: %w", err)
	}
	raw, err := json.Marshal(container{Version: CurrentVersion, Data: data})
	if err != nil {
		return fmt.Errorf("marshal container: %w", err)
	}
	if err := r.kv.Set(ctx, CurrentKey, raw); err != nil {
		return fmt.Errorf("%w: %v", workout.ErrStorageQuota, err)
	}
	return nil
}
