// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package persist reads and writes the versioned workout container and
// migrates historical schema generations to the current one.
//
// The container is a single value in the key-value store:
//
//	{"version": 3, "data": [Workout, ...]}
//
// Four generations exist. Generation 0 is a bare JSON array of flat
// push-up records with no version wrapper; generation 1 wraps the same
// records; generation 2 introduced the workout/series shape; generation 3
// (current) is the full multi-exercise schema. Each generation has exactly
// one upgrade path and every upgrade is pure: the stored source is not
// touched until the upgraded container has been written.
//
// An unrecognized shape never blocks the load. It degrades to an empty
// collection, reported to the caller as recoverable data loss; the stored
// bytes are left in place for manual recovery.
package persist

import (
	"bytes"
	"encoding/json"

	"github.com/GuilleHoardings/WorkoutTrackr-sub000/services/tracker/workout"
)

// Storage keys. The legacy key belongs to the product iteration that only
// tracked push-ups; it is read once, migrated, and cleared best-effort.
const (
	CurrentKey = "workoutData"
	LegacyKey  = "pushUpsData"
)

// CurrentVersion is the container version this build reads and writes.
const CurrentVersion = 3

// Generation identifies a historical container schema.
//
// The set is closed: detection matches one of these exhaustively instead
// of duck-typing on field presence.
type Generation int

const (
	// GenerationUnrecognized is any shape that is neither a bare array
	// nor a container with a known version.
	GenerationUnrecognized Generation = iota

	// GenerationBare is the version-less bare array of flat records.
	GenerationBare

	// GenerationV1 wraps the flat records in {version:1, data:[...]}.
	GenerationV1

	// GenerationV2 is the first workout/series schema, single-exercise
	// in practice but structurally identical to the current one.
	GenerationV2

	// GenerationV3 is the current multi-exercise schema.
	GenerationV3
)

// String returns a short label for logging.
func (g Generation) String() string {
	switch g {
	case GenerationBare:
		return "bare"
	case GenerationV1:
		return "v1"
	case GenerationV2:
		return "v2"
	case GenerationV3:
		return "v3"
	default:
		return "unrecognized"
	}
}

// container is the versioned on-disk wrapper.
type container struct {
	Version int             `json:"version"`
	Data    json.RawMessage `json:"data"`
}

// legacyRecord is the flat shape of generations 0 and 1: one push-up
// session per record, no per-set detail.
type legacyRecord struct {
	Date           workout.Millis `json:"date"`
	PushUpCount    int            `json:"pushUpCount"`
	ElapsedMinutes int            `json:"elapsedMinutes"`
}

// detectGeneration classifies raw container bytes.
//
// A bare JSON array is generation 0. An object with a recognized version
// field is that generation. Anything else, including unparseable bytes,
// is unrecognized.
func detectGeneration(raw []byte) (Generation, container) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return GenerationUnrecognized, container{}
	}
	if trimmed[0] == '[' {
		return GenerationBare, container{Data: json.RawMessage(trimmed)}
	}

	var c container
	if err := json.Unmarshal(trimmed, &c); err != nil {
		return GenerationUnrecognized, container{}
	}
	switch c.Version {
	case 1:
		return GenerationV1, c
	case 2:
		return GenerationV2, c
	case 3:
		return GenerationV3, c
	default:
		return GenerationUnrecognized, container{}
	}
}
