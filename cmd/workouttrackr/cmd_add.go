// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/GuilleHoardings/WorkoutTrackr-sub000/pkg/validation"
	"github.com/GuilleHoardings/WorkoutTrackr-sub000/services/tracker"
	"github.com/GuilleHoardings/WorkoutTrackr-sub000/services/tracker/workout"
)

var (
	addReps   int
	addWeight float64
	addDate   string
)

var addCmd = &cobra.Command{
	Use:   "add [exercise]",
	Short: "Record one set of an exercise",
	Long: `Records a single series. The set lands on the workout for
(calendar day, exercise), creating the workout on first use.

Examples:
  workouttrackr add Push-ups --reps 12
  workouttrackr add "Pull-ups (weighted)" --reps 5 --weight 10
  workouttrackr add Squats --reps 20 --date 2026-08-12`,
	Args: cobra.ExactArgs(1),
	RunE: runAddCommand,
}

func init() {
	addCmd.Flags().IntVar(&addReps, "reps", 0, "Repetition count (required)")
	addCmd.Flags().Float64Var(&addWeight, "weight", 0, "Extra weight in kg (0 = body weight)")
	addCmd.Flags().StringVar(&addDate, "date", "", "Day to record on (YYYY-MM-DD, default today)")
	_ = addCmd.MarkFlagRequired("reps")
}

func runAddCommand(cmd *cobra.Command, args []string) error {
	exercise, err := validation.SanitizeExercise(args[0])
	if err != nil {
		return err
	}
	if err := validation.ValidateReps(addReps); err != nil {
		return err
	}

	var weight *float64
	if addWeight != 0 {
		if err := validation.ValidateWeight(&addWeight); err != nil {
			return err
		}
		weight = &addWeight
	}

	var at *time.Time
	if addDate != "" {
		day, err := workout.MidnightUTC(addDate)
		if err != nil {
			return fmt.Errorf("invalid --date: %w", err)
		}
		// Keep the current time of day so same-day sets stay ordered.
		now := time.Now().UTC()
		t := day.Add(time.Duration(now.Hour())*time.Hour +
			time.Duration(now.Minute())*time.Minute +
			time.Duration(now.Second())*time.Second)
		at = &t
	}

	return withService(func(ctx context.Context, svc *tracker.Service) error {
		w, err := svc.AddSeries(ctx, exercise, addReps, weight, at)
		if err != nil {
			if errors.Is(err, workout.ErrStorageQuota) {
				fmt.Printf("Set recorded, but saving failed: %v\n", err)
				fmt.Println("Free up disk space or export your data with 'workouttrackr share'.")
				return nil
			}
			return err
		}
		fmt.Printf("Recorded %d reps of %s on %s (%d series, %d total reps)\n",
			addReps, w.Exercise, w.DateString, len(w.Series), w.TotalReps)
		return nil
	})
}
