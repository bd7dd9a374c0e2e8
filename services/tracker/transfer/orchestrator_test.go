// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package transfer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GuilleHoardings/WorkoutTrackr-sub000/services/tracker/store"
	"github.com/GuilleHoardings/WorkoutTrackr-sub000/services/tracker/workout"
)

func bigSnapshot(workouts int) workout.Snapshot {
	snap := workout.Snapshot{Timestamp: 1700000000000, ExerciseTypes: []string{"Push-ups"}}
	for i := 0; i < workouts; i++ {
		w := workout.Workout{Exercise: "Push-ups"}
		for j := 0; j < 5; j++ {
			w.Series = append(w.Series, workout.Series{
				Reps:      8 + j,
				Timestamp: workout.Millis(1600000000000 + int64(i)*86_400_000 + int64(j)*300_000),
			})
		}
		w.Recompute()
		snap.Workouts = append(snap.Workouts, w)
	}
	return snap
}

func newOrchestrator(t *testing.T, cfg Config) (*Orchestrator, *store.Store) {
	t.Helper()
	st := store.New(nil, nil, nil)
	orch, err := NewOrchestrator(cfg, st, nil)
	require.NoError(t, err)
	return orch, st
}

// TestBuildShareLinkFull verifies a small snapshot ships whole.
func TestBuildShareLinkFull(t *testing.T) {
	orch, _ := newOrchestrator(t, DefaultConfig())

	link, err := orch.BuildShareLink(bigSnapshot(10))
	require.NoError(t, err)
	assert.Equal(t, ShareFull, link.Option)
	assert.Equal(t, 10, link.WorkoutCount)
	assert.Equal(t, 10, link.OriginalCount)
	assert.LessOrEqual(t, len(link.URL), DefaultConfig().MaxLinkLength)
	assert.Contains(t, link.URL, "#"+TokenTag)
}

// TestBuildShareLinkTooLarge verifies the ceiling rejection carries the
// distinguishable sentinel.
func TestBuildShareLinkTooLarge(t *testing.T) {
	orch, _ := newOrchestrator(t, DefaultConfig())

	_, err := orch.BuildShareLink(bigSnapshot(500))
	assert.ErrorIs(t, err, ErrLinkTooLarge)
}

// TestBuildTruncatedShareLink verifies truncation keeps the most recent
// workouts, flags the snapshot partial, and fits the ceiling.
func TestBuildTruncatedShareLink(t *testing.T) {
	orch, _ := newOrchestrator(t, DefaultConfig())
	snap := bigSnapshot(500)

	link, err := orch.BuildTruncatedShareLink(snap)
	require.NoError(t, err)
	assert.Equal(t, SharePartial, link.Option)
	assert.Equal(t, 100, link.WorkoutCount)
	assert.Equal(t, 500, link.OriginalCount)
	assert.LessOrEqual(t, len(link.URL), DefaultConfig().MaxLinkLength)

	decoded, err := Decode(link.Token)
	require.NoError(t, err)
	assert.True(t, decoded.IsPartial)
	assert.Equal(t, 500, decoded.OriginalCount)
	require.Len(t, decoded.Workouts, 100)
	// Most recent first: day 499 down to day 400.
	assert.Equal(t, workout.Millis(1600000000000+499*86_400_000).DateString(),
		decoded.Workouts[0].DateString)
}

// TestBuildBestShareLink verifies the full-then-truncated cascade.
func TestBuildBestShareLink(t *testing.T) {
	orch, _ := newOrchestrator(t, DefaultConfig())

	link, err := orch.BuildBestShareLink(bigSnapshot(10))
	require.NoError(t, err)
	assert.Equal(t, ShareFull, link.Option)

	link, err = orch.BuildBestShareLink(bigSnapshot(500))
	require.NoError(t, err)
	assert.Equal(t, SharePartial, link.Option)

	// With a tiny ceiling even the truncated link fails; the caller
	// must fall back to the tabular export.
	tiny := DefaultConfig()
	tiny.MaxLinkLength = 120
	orchTiny, _ := newOrchestrator(t, tiny)
	_, err = orchTiny.BuildBestShareLink(bigSnapshot(500))
	assert.ErrorIs(t, err, ErrLinkTooLarge)
}

// TestShareEmptySnapshot verifies the guard sentinel.
func TestShareEmptySnapshot(t *testing.T) {
	orch, _ := newOrchestrator(t, DefaultConfig())
	_, err := orch.BuildShareLink(workout.Snapshot{})
	assert.ErrorIs(t, err, ErrNothingToShare)
}

// TestImportRequiresConfirmation verifies nothing lands in the store
// until Confirm, and that Confirm replaces wholesale.
func TestImportRequiresConfirmation(t *testing.T) {
	ctx := context.Background()
	orch, st := newOrchestrator(t, DefaultConfig())

	// Preexisting data that must survive an unconfirmed import.
	require.NoError(t, st.AddMany(ctx, bigSnapshot(3).Workouts))

	link, err := orch.BuildShareLink(bigSnapshot(7))
	require.NoError(t, err)

	pending, err := orch.ImportSharedLink(link.URL)
	require.NoError(t, err)
	assert.Equal(t, TokenCompactV1, pending.Generation)
	assert.Len(t, pending.Snapshot.Workouts, 7)
	assert.Equal(t, 3, st.Len(), "decode must not touch the store")

	require.NoError(t, pending.Confirm(ctx))
	assert.Equal(t, 7, st.Len())

	assert.Error(t, pending.Confirm(ctx), "double apply must fail")
}

// TestImportAcceptsBareToken verifies token extraction from plain tokens
// and full URLs alike.
func TestImportAcceptsBareToken(t *testing.T) {
	orch, _ := newOrchestrator(t, DefaultConfig())
	link, err := orch.BuildShareLink(bigSnapshot(2))
	require.NoError(t, err)

	fromURL, err := orch.ImportSharedLink(link.URL)
	require.NoError(t, err)
	fromToken, err := orch.ImportSharedLink(link.Token)
	require.NoError(t, err)
	assert.Equal(t, fromURL.Snapshot.Workouts, fromToken.Snapshot.Workouts)
}

// TestImportCorruptLink verifies corrupted tokens are rejected whole.
func TestImportCorruptLink(t *testing.T) {
	orch, st := newOrchestrator(t, DefaultConfig())

	_, err := orch.ImportSharedLink(TokenTag + "not-base64!!")
	assert.ErrorIs(t, err, workout.ErrMalformedContainer)
	assert.Equal(t, 0, st.Len())
}
