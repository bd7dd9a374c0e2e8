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

	"github.com/spf13/cobra"

	"github.com/GuilleHoardings/WorkoutTrackr-sub000/services/tracker"
	"github.com/GuilleHoardings/WorkoutTrackr-sub000/services/tracker/transfer"
)

var shareMode string

var shareCmd = &cobra.Command{
	Use:   "share",
	Short: "Build a shareable link carrying the whole data set",
	Long: `Encodes the workout collection into a compact URL for transfer
to another device. When the full data set exceeds the link ceiling the
most recent workouts are kept and the link is flagged partial.

Examples:
  workouttrackr share
  workouttrackr share --mode full
  workouttrackr share --mode truncated`,
	RunE: runShareCommand,
}

func init() {
	shareCmd.Flags().StringVar(&shareMode, "mode", "best", "Share mode: full, truncated, or best")
}

func runShareCommand(cmd *cobra.Command, args []string) error {
	return withService(func(ctx context.Context, svc *tracker.Service) error {
		link, err := svc.Share(tracker.ShareMode(shareMode))
		if err != nil {
			if errors.Is(err, transfer.ErrLinkTooLarge) {
				return fmt.Errorf("even a truncated link is over the ceiling; use 'workouttrackr list --json' to export instead: %w", err)
			}
			return err
		}

		if link.Option == transfer.SharePartial {
			fmt.Printf("Data set too large for one link; sharing the %d most recent of %d workouts.\n",
				link.WorkoutCount, link.OriginalCount)
		}
		fmt.Println(link.URL)
		return nil
	})
}
