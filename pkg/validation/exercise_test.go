// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateExercise(t *testing.T) {
	valid := []string{
		"Push-ups",
		"Pull-ups (weighted)",
		"Squats",
		"Bench press 45",
		"Überkopfdrücken",
	}
	for _, name := range valid {
		assert.NoError(t, ValidateExercise(name), name)
	}

	invalid := []string{
		"",
		" leading space",
		"semi;colon",
		"new\nline",
		strings.Repeat("a", 61),
	}
	for _, name := range invalid {
		assert.Error(t, ValidateExercise(name), "%q should fail", name)
	}
}

func TestSanitizeExercise(t *testing.T) {
	name, err := SanitizeExercise("  Push-ups  ")
	require.NoError(t, err)
	assert.Equal(t, "Push-ups", name)

	name, err = SanitizeExercise("Bench   press")
	require.NoError(t, err)
	assert.Equal(t, "Bench press", name, "inner whitespace collapses")

	_, err = SanitizeExercise("   ")
	assert.Error(t, err)
}

func TestValidateReps(t *testing.T) {
	assert.NoError(t, ValidateReps(1))
	assert.NoError(t, ValidateReps(MaxReps))
	assert.Error(t, ValidateReps(0))
	assert.Error(t, ValidateReps(-3))
	assert.Error(t, ValidateReps(MaxReps+1))
}

func TestValidateWeight(t *testing.T) {
	assert.NoError(t, ValidateWeight(nil), "body weight only")

	w := 20.5
	assert.NoError(t, ValidateWeight(&w))

	zero := 0.0
	assert.Error(t, ValidateWeight(&zero))

	huge := float64(MaxWeightKg + 1)
	assert.Error(t, ValidateWeight(&huge))
}
