package api

import (
	"github.com/gin-gonic/gin"
)

func SetupRoutes(router *gin.Engine, handler *Handler) {
	api := router.Group("/api")
	{
		api.POST("/estimate", handler.Estimate)
		api.GET("/options", handler.GetFormOptions)
		api.GET("/predictions", handler.GetRecentPredictions)
		api.GET("/health", handler.Health)
	}
}
