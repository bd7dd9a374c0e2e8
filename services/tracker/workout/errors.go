// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package workout

import "errors"

// Sentinel errors shared across the store, persistence, and transfer
// layers. They live here because all three layers operate on the same
// entity graph and report against the same taxonomy.
var (
	// ErrWorkoutNotFound is returned when a workout handle matches no
	// stored workout. Caller error; not retried.
	ErrWorkoutNotFound = errors.New("workout not found")

	// ErrSeriesIndexOutOfRange is returned when a series index does not
	// exist within the addressed workout. Caller error; not retried.
	ErrSeriesIndexOutOfRange = errors.New("series index out of range")

	// ErrUnsupportedVersion is returned when a container or transfer
	// token declares a schema version this build does not recognize.
	ErrUnsupportedVersion = errors.New("unsupported schema version")

	// ErrMalformedContainer is returned when persisted or transferred
	// data cannot be parsed. On import this is reported to the user as
	// "link may be corrupted" and nothing is applied.
	ErrMalformedContainer = errors.New("malformed container")

	// ErrStorageQuota is returned when the underlying key-value store
	// rejects a write. The in-memory state that triggered the write is
	// preserved so the user can retry or export instead.
	ErrStorageQuota = errors.New("storage write rejected")

	// ErrRecoverableDataLoss flags an unrecognized persisted schema that
	// was degraded to an empty collection so the app could still open.
	// It is logged, never fatal.
	ErrRecoverableDataLoss = errors.New("unrecognized stored schema discarded")
)
