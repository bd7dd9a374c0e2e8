// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Command tracker starts the WorkoutTrackr API server.
//
// The tracker persists workout records in BadgerDB, migrates legacy
// push-ups data on first load, and exposes the record store over a
// /v1 REST surface plus a Prometheus /metrics endpoint.
//
// Usage:
//
//	go run ./cmd/tracker
//	go run ./cmd/tracker -config ~/.workouttrackr/config.yaml
//	go run ./cmd/tracker -addr :9090 -debug
//
// Example requests:
//
//	# Health check
//	curl http://localhost:8080/v1/health
//
//	# Record a set
//	curl -X POST http://localhost:8080/v1/series \
//	  -H "Content-Type: application/json" \
//	  -d '{"exercise": "Push-ups", "reps": 12}'
//
//	# Build a share link
//	curl http://localhost:8080/v1/share | jq
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/GuilleHoardings/WorkoutTrackr-sub000/pkg/logging"
	"github.com/GuilleHoardings/WorkoutTrackr-sub000/services/tracker"
	"github.com/GuilleHoardings/WorkoutTrackr-sub000/services/tracker/config"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML config file")
	addr := flag.String("addr", "", "Listen address (overrides config)")
	debug := flag.Bool("debug", false, "Enable debug mode")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	if *debug {
		cfg.Server.Debug = true
		cfg.Logging.Level = "debug"
	}

	logger, err := logging.New(logging.Config{
		Level:   logging.ParseLevel(cfg.Logging.Level),
		LogDir:  cfg.Logging.Dir,
		Service: "tracker",
	})
	if err != nil {
		slog.Error("Failed to create logger", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer logger.Close()
	slog.SetDefault(logger.Slog())

	// Set Gin mode
	if cfg.Server.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	svc, closeFn, err := tracker.Bootstrap(context.Background(), cfg, logger.Slog())
	if err != nil {
		logger.Error("Failed to start tracker", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := closeFn(); err != nil {
			logger.Error("Failed to close data store", "error", err)
		}
	}()

	// Setup router
	router := gin.New()
	router.Use(gin.Recovery())
	if cfg.Server.Debug {
		router.Use(gin.Logger())
	}

	v1 := router.Group("/v1")
	tracker.RegisterRoutes(v1, tracker.NewHandlers(svc))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Handle graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		logger.Info("Shutting down tracker server")
		if err := closeFn(); err != nil {
			logger.Error("Failed to close data store", "error", err)
		}
		logger.Close()
		os.Exit(0)
	}()

	logger.Info("Starting tracker server",
		"address", cfg.Server.Addr,
		"data_dir", cfg.DataDir,
		"workouts", svc.Store().Len())
	if err := router.Run(cfg.Server.Addr); err != nil {
		logger.Error("Failed to start server", "error", err)
		os.Exit(1)
	}
}
