// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package validation provides input validation utilities for user-provided data.
//
// This package contains validators for inputs that end up in storage keys,
// share links, and log lines. Using these validators keeps exercise names
// bounded and printable and keeps numeric inputs inside sane training ranges.
package validation

import (
	"fmt"
	"regexp"
	"strings"
)

// exercisePattern matches valid exercise names.
// Allows: letters, digits, spaces, dots, hyphens, parentheses ("Pull-ups (weighted)")
// Max length: 60 characters
var exercisePattern = regexp.MustCompile(`^[\p{L}0-9][\p{L}0-9 .\-()]{0,59}$`)

const (
	// MaxReps is the upper bound accepted for a single series.
	MaxReps = 10_000

	// MaxWeightKg is the upper bound accepted for extra weight.
	MaxWeightKg = 1_000
)

// ValidateExercise validates an exercise name.
//
// Valid names:
//   - 1-60 characters
//   - Letters (any script) and digits
//   - Spaces, dots, hyphens, parentheses after the first character
//
// Returns an error if the name is invalid.
//
// Example:
//
//	if err := validation.ValidateExercise(name); err != nil {
//	    return fmt.Errorf("invalid exercise: %w", err)
//	}
func ValidateExercise(name string) error {
	if name == "" {
		return fmt.Errorf("exercise name cannot be empty")
	}

	if !exercisePattern.MatchString(name) {
		return fmt.Errorf("invalid exercise name: %q (must be 1-60 letters, digits, spaces, dots, hyphens, or parentheses)", name)
	}

	return nil
}

// SanitizeExercise normalizes and validates an exercise name.
// Returns the trimmed name if valid, or an error if invalid.
//
// Use this when you need both validation and normalization:
//
//	name, err := validation.SanitizeExercise(userInput)
//	if err != nil {
//	    return err
//	}
func SanitizeExercise(name string) (string, error) {
	normalized := strings.Join(strings.Fields(name), " ")
	if err := ValidateExercise(normalized); err != nil {
		return "", err
	}
	return normalized, nil
}

// ValidateReps checks a repetition count for a single series.
func ValidateReps(reps int) error {
	if reps <= 0 {
		return fmt.Errorf("reps must be positive, got %d", reps)
	}
	if reps > MaxReps {
		return fmt.Errorf("reps %d exceeds maximum %d", reps, MaxReps)
	}
	return nil
}

// ValidateWeight checks an optional extra-weight value in kilograms.
// A nil weight means body weight only and is always valid.
func ValidateWeight(weight *float64) error {
	if weight == nil {
		return nil
	}
	if *weight <= 0 {
		return fmt.Errorf("weight must be positive, got %g", *weight)
	}
	if *weight > MaxWeightKg {
		return fmt.Errorf("weight %g exceeds maximum %d", *weight, MaxWeightKg)
	}
	return nil
}
