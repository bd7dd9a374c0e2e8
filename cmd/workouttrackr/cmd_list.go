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
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/GuilleHoardings/WorkoutTrackr-sub000/services/tracker"
)

var (
	listJSONOutput bool
	listLimit      int
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded workouts, newest first",
	Long: `Lists the workout collection sorted by date descending.

Examples:
  workouttrackr list
  workouttrackr list --limit 10
  workouttrackr list --json | jq`,
	RunE: runListCommand,
}

var exercisesCmd = &cobra.Command{
	Use:   "exercises",
	Short: "List the distinct exercise names",
	RunE:  runExercisesCommand,
}

func init() {
	listCmd.Flags().BoolVar(&listJSONOutput, "json", false, "Output as JSON")
	listCmd.Flags().IntVar(&listLimit, "limit", 0, "Show at most N workouts (0 = all)")
}

func runListCommand(cmd *cobra.Command, args []string) error {
	return withService(func(ctx context.Context, svc *tracker.Service) error {
		workouts := svc.Workouts()
		if listLimit > 0 && len(workouts) > listLimit {
			workouts = workouts[:listLimit]
		}

		if listJSONOutput {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(workouts)
		}

		if len(workouts) == 0 {
			fmt.Println("No workouts recorded yet. Start with 'workouttrackr add'.")
			return nil
		}

		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "DATE\tEXERCISE\tSERIES\tTOTAL REPS\tMINUTES")
		for _, w := range workouts {
			fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\n",
				w.DateString, w.Exercise, len(w.Series), w.TotalReps, w.TotalTime)
		}
		return tw.Flush()
	})
}

func runExercisesCommand(cmd *cobra.Command, args []string) error {
	return withService(func(ctx context.Context, svc *tracker.Service) error {
		exercises := svc.Exercises()
		if len(exercises) == 0 {
			fmt.Println("No exercises recorded yet.")
			return nil
		}
		for _, ex := range exercises {
			fmt.Println(ex)
		}
		return nil
	})
}
