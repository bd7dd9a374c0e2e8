// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package transfer encodes snapshots into short URL-safe tokens and back,
// and orchestrates share-link construction and import.
//
// The compact encoding trades fidelity for size because the transport (a
// URL) has a hard length ceiling. Per-series timestamps and the true
// inter-series elapsed time are NOT round-tripped: decoding synthesizes
// series at one-minute offsets from midnight UTC of the workout day. This
// is a designed tradeoff, not a bug; see PreservesSeriesTimestamps. What
// does round-trip exactly is, per workout, the (dateString, exercise) key
// and the ordered (reps, weight) pairs.
package transfer

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/GuilleHoardings/WorkoutTrackr-sub000/services/tracker/workout"
)

// TokenTag is the two-character prefix identifying compact codec v1.
// Its absence selects the legacy uncompressed encoding.
const TokenTag = "C1"

// codecVersion is the envelope version written and accepted by Encode
// and Decode.
const codecVersion = 1

// PreservesSeriesTimestamps documents the codec's lossy-timestamp
// behavior: decoded series carry synthetic timestamps and the decoded
// TotalTime is a placeholder, not the original duration. Tests and
// callers must not treat decoded durations as meaningful.
const PreservesSeriesTimestamps = false

// TokenGeneration identifies the encoding of a transfer token.
type TokenGeneration int

const (
	// TokenLegacy is plain base64 of the snapshot JSON, no tag.
	TokenLegacy TokenGeneration = iota

	// TokenCompactV1 is the dictionary-compressed "C1" encoding.
	TokenCompactV1
)

// String returns "legacy" or "compact-v1".
func (g TokenGeneration) String() string {
	if g == TokenCompactV1 {
		return "compact-v1"
	}
	return "legacy"
}

// envelope is the compact wire form: dictionaries in first-occurrence
// order plus packed workout tuples referencing them by index. The
// truncation markers p/o ride along so a partial snapshot is still
// reported as partial on the importing device; both are omitted for a
// full snapshot.
type envelope struct {
	V int             `json:"v"`
	T workout.Millis  `json:"t"`
	P bool            `json:"p,omitempty"`
	O int             `json:"o,omitempty"`
	D []string        `json:"d"`
	E []string        `json:"e"`
	X []string        `json:"x"`
	W []packedWorkout `json:"w"`
}

// packedWorkout is one workout flattened to
// [dateIdx, exerciseIdx, [[reps, weight], ...]].
type packedWorkout struct {
	DateIdx     int
	ExerciseIdx int
	Pairs       [][2]float64
}

// MarshalJSON writes the three-element tuple form.
func (p packedWorkout) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{p.DateIdx, p.ExerciseIdx, p.Pairs})
}

// UnmarshalJSON reads the three-element tuple form.
func (p *packedWorkout) UnmarshalJSON(raw []byte) error {
	var parts []json.RawMessage
	if err := json.Unmarshal(raw, &parts); err != nil {
		return err
	}
	if len(parts) != 3 {
		return fmt.Errorf("packed workout has %d elements, want 3", len(parts))
	}
	if err := json.Unmarshal(parts[0], &p.DateIdx); err != nil {
		return fmt.Errorf("date index: %w", err)
	}
	if err := json.Unmarshal(parts[1], &p.ExerciseIdx); err != nil {
		return fmt.Errorf("exercise index: %w", err)
	}
	if err := json.Unmarshal(parts[2], &p.Pairs); err != nil {
		return fmt.Errorf("rep pairs: %w", err)
	}
	return nil
}

// DetectTokenGeneration classifies a token by the presence of the format
// tag. Legacy tokens are base64 JSON, which cannot start with "C1".
func DetectTokenGeneration(token string) TokenGeneration {
	if strings.HasPrefix(token, TokenTag) {
		return TokenCompactV1
	}
	return TokenLegacy
}

// Encode serializes a snapshot into a compact URL-safe token.
//
// Description:
//
//	Flattens each workout to (dateString, exercise, rep/weight pairs),
//	replaces the strings with indices into first-occurrence-ordered
//	dictionaries, serializes the envelope as compact JSON, base64url
//	encodes it without padding, and prefixes the format tag.
func Encode(snap workout.Snapshot) (string, error) {
	env := envelope{
		V: codecVersion,
		T: snap.Timestamp,
		P: snap.IsPartial,
		O: snap.OriginalCount,
		D: []string{},
		E: []string{},
		X: snap.ExerciseTypes,
		W: make([]packedWorkout, 0, len(snap.Workouts)),
	}
	if env.X == nil {
		env.X = []string{}
	}

	dateIdx := make(map[string]int)
	exIdx := make(map[string]int)
	for _, w := range snap.Workouts {
		di, ok := dateIdx[w.DateString]
		if !ok {
			di = len(env.D)
			dateIdx[w.DateString] = di
			env.D = append(env.D, w.DateString)
		}
		ei, ok := exIdx[w.Exercise]
		if !ok {
			ei = len(env.E)
			exIdx[w.Exercise] = ei
			env.E = append(env.E, w.Exercise)
		}

		pairs := make([][2]float64, len(w.Series))
		for i, s := range w.Series {
			weight := 0.0
			if s.Weight != nil {
				weight = *s.Weight
			}
			pairs[i] = [2]float64{float64(s.Reps), weight}
		}
		env.W = append(env.W, packedWorkout{DateIdx: di, ExerciseIdx: ei, Pairs: pairs})
	}

	raw, err := json.Marshal(env)
	if err != nil {
		return "", fmt.Errorf("marshal envelope: %w", err)
	}
	return TokenTag + base64.RawURLEncoding.EncodeToString(raw), nil
}

// Decode reconstructs a snapshot from a compact token.
//
// Description:
//
//	Inverts Encode: verifies the tag, base64url-decodes, parses the
//	envelope, checks the version, and expands each packed tuple into a
//	workout whose series sit at midnight UTC of the day plus one minute
//	per pair index. TotalTime on decoded workouts is therefore
//	len(series)-1 minutes, a synthetic placeholder.
//
// Outputs:
//
//	workout.Snapshot - The reconstructed snapshot.
//	error - workout.ErrUnsupportedVersion for an unknown envelope
//	        version, workout.ErrMalformedContainer (wrapped) for
//	        anything unparseable. Never partially applied.
func Decode(token string) (workout.Snapshot, error) {
	var snap workout.Snapshot
	if !strings.HasPrefix(token, TokenTag) {
		return snap, fmt.Errorf("%w: missing %s tag", workout.ErrMalformedContainer, TokenTag)
	}

	// Padding was stripped on encode; tolerate tokens that kept it.
	body := strings.TrimRight(strings.TrimPrefix(token, TokenTag), "=")
	raw, err := base64.RawURLEncoding.DecodeString(body)
	if err != nil {
		return snap, fmt.Errorf("%w: %v", workout.ErrMalformedContainer, err)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return snap, fmt.Errorf("%w: %v", workout.ErrMalformedContainer, err)
	}
	if env.V != codecVersion {
		return snap, fmt.Errorf("%w: token version %d", workout.ErrUnsupportedVersion, env.V)
	}

	workouts := make([]workout.Workout, 0, len(env.W))
	for _, pw := range env.W {
		if pw.DateIdx < 0 || pw.DateIdx >= len(env.D) {
			return snap, fmt.Errorf("%w: date index %d", workout.ErrMalformedContainer, pw.DateIdx)
		}
		if pw.ExerciseIdx < 0 || pw.ExerciseIdx >= len(env.E) {
			return snap, fmt.Errorf("%w: exercise index %d", workout.ErrMalformedContainer, pw.ExerciseIdx)
		}
		day, err := workout.MidnightUTC(env.D[pw.DateIdx])
		if err != nil {
			return snap, fmt.Errorf("%w: day %q", workout.ErrMalformedContainer, env.D[pw.DateIdx])
		}

		w, err := expandPacked(env.E[pw.ExerciseIdx], day.UnixMilli(), pw.Pairs)
		if err != nil {
			return snap, err
		}
		workouts = append(workouts, *w)
	}

	snap.Workouts = workouts
	snap.ExerciseTypes = env.X
	snap.Timestamp = env.T
	snap.IsPartial = env.P
	snap.OriginalCount = env.O
	return snap, nil
}

// expandPacked synthesizes a workout from one packed tuple.
func expandPacked(exercise string, midnightMillis int64, pairs [][2]float64) (*workout.Workout, error) {
	series := make([]workout.Series, len(pairs))
	for i, pair := range pairs {
		reps := int(pair[0])
		if reps <= 0 {
			return nil, fmt.Errorf("%w: non-positive reps", workout.ErrMalformedContainer)
		}
		var weight *float64
		if pair[1] != 0 {
			v := pair[1]
			weight = &v
		}
		series[i] = workout.Series{
			Reps:      reps,
			Weight:    weight,
			Timestamp: workout.Millis(midnightMillis + int64(i)*60_000),
		}
	}

	w := &workout.Workout{Exercise: exercise, Series: series}
	w.Recompute()
	return w, nil
}

// DecodeLegacy reconstructs a snapshot from the uncompressed legacy
// encoding: plain base64 of the snapshot JSON, no dictionaries, no tag.
// Workouts without series are skipped rather than failing the import;
// real legacy exports occasionally contain them and they carry no data.
func DecodeLegacy(token string) (workout.Snapshot, error) {
	var snap workout.Snapshot

	raw, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		// Some producers strip padding.
		raw, err = base64.RawStdEncoding.DecodeString(token)
	}
	if err != nil {
		return snap, fmt.Errorf("%w: %v", workout.ErrMalformedContainer, err)
	}
	if err := json.Unmarshal(raw, &snap); err != nil {
		return snap, fmt.Errorf("%w: %v", workout.ErrMalformedContainer, err)
	}
	kept := make([]workout.Workout, 0, len(snap.Workouts))
	for i := range snap.Workouts {
		if len(snap.Workouts[i].Series) == 0 {
			continue
		}
		snap.Workouts[i].Recompute()
		kept = append(kept, snap.Workouts[i])
	}
	snap.Workouts = kept
	return snap, nil
}

// DecodeToken decodes a token of either generation, dispatching on the
// format tag.
func DecodeToken(token string) (workout.Snapshot, TokenGeneration, error) {
	gen := DetectTokenGeneration(token)
	var (
		snap workout.Snapshot
		err  error
	)
	if gen == TokenCompactV1 {
		snap, err = Decode(token)
	} else {
		snap, err = DecodeLegacy(token)
	}
	return snap, gen, err
}
