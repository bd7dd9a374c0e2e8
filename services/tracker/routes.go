// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package tracker

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers all tracker routes with the router.
//
// Description:
//
//	Registers the /v1 REST surface with the given Gin router group.
//	The router group should already have any required middleware applied.
//
// Inputs:
//
//	rg - Gin router group (typically /v1)
//	handlers - The handlers instance
//
// Endpoints:
//
//	GET    /v1/workouts - List workouts, newest first
//	GET    /v1/exercises - List distinct exercise names
//	POST   /v1/series - Record one set
//	PUT    /v1/workouts/:id/series/:index - Edit a set (moves across days)
//	DELETE /v1/workouts/:id/series/:index - Remove a set
//	PUT    /v1/workouts/:id/date - Move a workout to a new day
//	GET    /v1/share - Build a shareable link
//	POST   /v1/import - Preview or apply a shared link
//	GET    /v1/health - Health check
//
// Example:
//
//	svc, closeFn, err := tracker.Bootstrap(ctx, cfg, logger)
//	handlers := tracker.NewHandlers(svc)
//
//	v1 := router.Group("/v1")
//	tracker.RegisterRoutes(v1, handlers)
func RegisterRoutes(rg *gin.RouterGroup, handlers *Handlers) {
	rg.GET("/workouts", handlers.HandleListWorkouts)
	rg.GET("/exercises", handlers.HandleListExercises)

	rg.POST("/series", handlers.HandleAddSeries)
	rg.PUT("/workouts/:id/series/:index", handlers.HandleUpdateSeries)
	rg.DELETE("/workouts/:id/series/:index", handlers.HandleDeleteSeries)
	rg.PUT("/workouts/:id/date", handlers.HandleUpdateDate)

	rg.GET("/share", handlers.HandleShare)
	rg.POST("/import", handlers.HandleImport)

	rg.GET("/health", handlers.HandleHealth)
}
