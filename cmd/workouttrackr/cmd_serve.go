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

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/GuilleHoardings/WorkoutTrackr-sub000/services/tracker"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the tracker API server",
	Long: `Starts the HTTP API over the local record store.

Examples:
  workouttrackr serve
  workouttrackr serve --addr :9090`,
	RunE: runServeCommand,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (overrides config)")
}

func runServeCommand(cmd *cobra.Command, args []string) error {
	if serveAddr != "" {
		cliCfg.Server.Addr = serveAddr
	}
	if cliCfg.Server.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	return withService(func(ctx context.Context, svc *tracker.Service) error {
		router := gin.New()
		router.Use(gin.Recovery())
		if cliCfg.Server.Debug {
			router.Use(gin.Logger())
		}

		v1 := router.Group("/v1")
		tracker.RegisterRoutes(v1, tracker.NewHandlers(svc))
		router.GET("/metrics", gin.WrapH(promhttp.Handler()))

		cliLogger.Info("Starting tracker server",
			"address", cliCfg.Server.Addr,
			"workouts", svc.Store().Len())
		return router.Run(cliCfg.Server.Addr)
	})
}
