// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Command workouttrackr is the CLI for the workout record store.
//
// Usage:
//
//	workouttrackr add Push-ups --reps 12
//	workouttrackr list
//	workouttrackr share
//	workouttrackr import <link> --yes
//	workouttrackr serve
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/GuilleHoardings/WorkoutTrackr-sub000/pkg/logging"
	"github.com/GuilleHoardings/WorkoutTrackr-sub000/services/tracker"
	"github.com/GuilleHoardings/WorkoutTrackr-sub000/services/tracker/config"
)

// --- Global Command Variables ---
var (
	configPath string
	logLevel   string

	cliCfg    config.Config
	cliLogger *logging.Logger

	rootCmd = &cobra.Command{
		Use:   "workouttrackr",
		Short: "A cli to record, share, and import workout data",
		Long: `WorkoutTrackr keeps a local workout record store in BadgerDB,
migrates legacy push-ups data on first load, and moves whole data sets
between devices through compact share links.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if logLevel != "" {
				cfg.Logging.Level = logLevel
			}
			cliCfg = cfg

			logger, err := logging.New(logging.Config{
				Level:   logging.ParseLevel(cfg.Logging.Level),
				LogDir:  cfg.Logging.Dir,
				Service: "cli",
				Quiet:   cfg.Logging.Level != "debug",
			})
			if err != nil {
				return err
			}
			cliLogger = logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if cliLogger != nil {
				_ = cliLogger.Close()
			}
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to YAML config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override log level (debug/info/warn/error)")

	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(exercisesCmd)
	rootCmd.AddCommand(shareCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(serveCmd)
}

// withService opens the durable store, runs fn, and closes the store.
// Every data-touching command goes through here so migrations run and
// are reported identically everywhere.
func withService(fn func(ctx context.Context, svc *tracker.Service) error) error {
	ctx := context.Background()
	svc, closeFn, err := tracker.Bootstrap(ctx, cliCfg, cliLogger.Slog())
	if err != nil {
		return err
	}
	defer func() {
		if cerr := closeFn(); cerr != nil {
			cliLogger.Error("Failed to close data store", "error", cerr)
		}
	}()

	if report := svc.LoadReport(); report.DataLost {
		fmt.Fprintln(os.Stderr, "warning: stored data was unreadable and has been left untouched; starting empty")
	}
	return fn(ctx, svc)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
