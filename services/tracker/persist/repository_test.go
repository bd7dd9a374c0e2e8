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
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GuilleHoardings/WorkoutTrackr-sub000/services/tracker/storage/badgerkv"
	"github.com/GuilleHoardings/WorkoutTrackr-sub000/services/tracker/workout"
)

func newTestRepo(t *testing.T) (*Repository, *badgerkv.Store) {
	t.Helper()
	kv, err := badgerkv.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { kv.Close() })
	return NewRepository(kv, nil), kv
}

// TestLoadEmpty verifies a fresh store yields an empty collection.
func TestLoadEmpty(t *testing.T) {
	ctx := context.Background()
	repo, _ := newTestRepo(t)

	workouts, report, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, workouts)
	assert.False(t, report.Found)
	assert.False(t, report.DataLost)
}

// TestSaveLoadRoundTrip verifies the current-version container shape.
func TestSaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo, kv := newTestRepo(t)

	weight := 55.5
	source := []workout.Workout{
		{
			Exercise: "Squats",
			Series: []workout.Series{
				{Reps: 5, Weight: &weight, Timestamp: 1600000000000},
				{Reps: 7, Timestamp: 1600000300000},
			},
		},
	}
	source[0].Recompute()
	require.NoError(t, repo.Save(ctx, source))

	// Verify the stored wrapper directly.
	raw, ok, err := kv.Get(ctx, CurrentKey)
	require.NoError(t, err)
	require.True(t, ok)
	var c struct {
		Version int             `json:"version"`
		Data    json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(raw, &c))
	assert.Equal(t, CurrentVersion, c.Version)

	loaded, report, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.True(t, report.Found)
	assert.Equal(t, GenerationV3, report.Generation)
	assert.False(t, report.Migrated, "loading a current container must not rewrite")
	assert.Equal(t, source, loaded)
}

// TestLoadMigratesAndRewrites verifies an old generation is upgraded and
// the upgraded container is written back exactly once.
func TestLoadMigratesAndRewrites(t *testing.T) {
	ctx := context.Background()
	repo, kv := newTestRepo(t)

	raw := []byte(`[{"date":1600000000000,"pushUpCount":10,"elapsedMinutes":8}]`)
	require.NoError(t, kv.Set(ctx, CurrentKey, raw))

	loaded, report, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, GenerationBare, report.Generation)
	assert.True(t, report.Migrated)
	require.Len(t, loaded, 1)
	assert.Equal(t, 10, loaded[0].TotalReps)

	// Second load sees the rewritten current container: no migration.
	_, report2, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, GenerationV3, report2.Generation)
	assert.False(t, report2.Migrated)
}

// TestLoadFromLegacyKey verifies the retired key is promoted and cleared.
func TestLoadFromLegacyKey(t *testing.T) {
	ctx := context.Background()
	repo, kv := newTestRepo(t)

	raw := []byte(`{"version":1,"data":[{"date":1600000000000,"pushUpCount":8,"elapsedMinutes":4}]}`)
	require.NoError(t, kv.Set(ctx, LegacyKey, raw))

	loaded, report, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.True(t, report.FromLegacyKey)
	assert.True(t, report.Migrated)
	require.Len(t, loaded, 1)

	// Promoted under the current key, legacy key cleared.
	_, ok, err := kv.Get(ctx, CurrentKey)
	require.NoError(t, err)
	assert.True(t, ok)
	_, ok, err = kv.Get(ctx, LegacyKey)
	require.NoError(t, err)
	assert.False(t, ok)
}

// TestLoadUnrecognizedDegrades verifies the never-block-the-load policy:
// empty collection, DataLost reported, stored bytes untouched.
func TestLoadUnrecognizedDegrades(t *testing.T) {
	ctx := context.Background()
	repo, kv := newTestRepo(t)

	require.NoError(t, kv.Set(ctx, CurrentKey, []byte(`{"surprise":true}`)))

	loaded, report, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, loaded)
	assert.True(t, report.DataLost)
	assert.Equal(t, GenerationUnrecognized, report.Generation)

	raw, ok, err := kv.Get(ctx, CurrentKey)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, `{"surprise":true}`, string(raw), "unreadable data must not be overwritten")
}

// TestSaveWrapsQuotaError verifies write failures surface as the storage
// quota sentinel.
func TestSaveWrapsQuotaError(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(&failingKV{}, nil)

	err := repo.Save(ctx, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, workout.ErrStorageQuota))
}

// failingKV rejects all writes.
type failingKV struct{}

func (f *failingKV) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, nil
}

func (f *failingKV) Set(context.Context, string, []byte) error {
	return errors.New("disk full")
}

func (f *failingKV) Delete(context.Context, string) error {
	return errors.New("disk full")
}
