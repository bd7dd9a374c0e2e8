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
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/GuilleHoardings/WorkoutTrackr-sub000/services/tracker"
)

var importYes bool

var importCmd = &cobra.Command{
	Use:   "import [link]",
	Short: "Import a shared link, replacing all current data",
	Long: `Decodes a share link (or bare token) and, after confirmation,
replaces the whole local collection with the decoded snapshot. Nothing
is applied until you confirm; a corrupted link changes nothing.

Examples:
  workouttrackr import "https://workouttrackr.app/#C1eyJ..."
  workouttrackr import C1eyJ... --yes`,
	Args: cobra.ExactArgs(1),
	RunE: runImportCommand,
}

func init() {
	importCmd.Flags().BoolVarP(&importYes, "yes", "y", false, "Apply without prompting")
}

func runImportCommand(cmd *cobra.Command, args []string) error {
	return withService(func(ctx context.Context, svc *tracker.Service) error {
		pending, err := svc.Import(args[0])
		if err != nil {
			return fmt.Errorf("the link may be corrupted: %w", err)
		}

		fmt.Printf("Link contains %d workouts (%s", len(pending.Snapshot.Workouts), pending.Generation)
		if pending.Snapshot.IsPartial {
			fmt.Printf(", truncated from %d", pending.Snapshot.OriginalCount)
		}
		fmt.Println(")")

		current := svc.Store().Len()
		if !importYes {
			fmt.Printf("This replaces your current %d workouts. Continue? [y/N] ", current)
			reader := bufio.NewReader(os.Stdin)
			answer, _ := reader.ReadString('\n')
			if a := strings.ToLower(strings.TrimSpace(answer)); a != "y" && a != "yes" {
				fmt.Println("Import cancelled; nothing changed.")
				return nil
			}
		}

		if err := pending.Confirm(ctx); err != nil {
			return err
		}
		fmt.Printf("Imported %d workouts.\n", svc.Store().Len())
		return nil
	})
}
