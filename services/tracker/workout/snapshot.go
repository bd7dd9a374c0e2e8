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

// Snapshot is an exportable bundle: the workout collection, the
// exercise-type catalog, and the export instant.
//
// The JSON field names are also the wire format of the legacy
// (uncompressed) transfer token, so they must not change.
type Snapshot struct {
	Workouts      []Workout `json:"workouts"`
	ExerciseTypes []string  `json:"exerciseTypes"`
	Timestamp     Millis    `json:"timestamp"`

	// IsPartial marks a snapshot truncated to fit the transfer channel.
	// OriginalCount carries the pre-truncation workout count.
	IsPartial     bool `json:"isPartial,omitempty"`
	OriginalCount int  `json:"originalCount,omitempty"`
}

// Clone returns a deep copy of the snapshot.
func (s Snapshot) Clone() Snapshot {
	c := s
	c.Workouts = make([]Workout, len(s.Workouts))
	for i := range s.Workouts {
		c.Workouts[i] = s.Workouts[i].Clone()
	}
	c.ExerciseTypes = append([]string(nil), s.ExerciseTypes...)
	return c
}
