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
	"errors"
	"net/http"

	"github.com/GuilleHoardings/WorkoutTrackr-sub000/services/tracker/transfer"
	"github.com/GuilleHoardings/WorkoutTrackr-sub000/services/tracker/workout"
)

// statusForError maps domain sentinels to an HTTP status and error code.
//
// A failed persistence write reports 507: the mutation is kept in memory,
// so the client should surface a "storage full, export your data" warning
// rather than retry the request.
func statusForError(err error) (int, string) {
	switch {
	case errors.Is(err, workout.ErrWorkoutNotFound):
		return http.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, workout.ErrSeriesIndexOutOfRange):
		return http.StatusBadRequest, "INDEX_RANGE"
	case errors.Is(err, workout.ErrUnsupportedVersion),
		errors.Is(err, workout.ErrMalformedContainer):
		return http.StatusBadRequest, "LINK_CORRUPTED"
	case errors.Is(err, workout.ErrStorageQuota):
		return http.StatusInsufficientStorage, "STORAGE_FULL"
	case errors.Is(err, transfer.ErrLinkTooLarge):
		return http.StatusRequestEntityTooLarge, "LINK_TOO_LARGE"
	case errors.Is(err, transfer.ErrNothingToShare):
		return http.StatusBadRequest, "NOTHING_TO_SHARE"
	default:
		return http.StatusInternalServerError, "INTERNAL"
	}
}
