package api

import (
	"github.com/gin-gonic/gin"
)

func SetupRoutes(router *gin.Engine, handler *Handler) {
	api := router.Group("/api")
	{
		api.GET("/health", handler.Health)

		api.POST("/leads", handler.CreateLead)
		api.GET("/leads", handler.ListLeads)
		api.GET("/leads/:id", handler.GetLead)
		api.PUT("/leads/:id", handler.UpdateLead)
		api.GET("/leads/:id/suggestions", handler.GetLeadSuggestions)

		api.POST("/properties", handler.CreateProperty)
		api.GET("/properties", handler.ListProperties)
		api.GET("/properties/:id", handler.GetProperty)
		api.PUT("/properties/:id", handler.UpdateProperty)
		api.POST("/properties/:id/events", handler.RecordEngagement)
		api.GET("/properties/:id/performance", handler.GetPropertyPerformance)
		api.GET("/properties/:id/demand", handler.GetPropertyDemand)

		api.GET("/customers/:id/preferences", handler.GetPreferences)
		api.PUT("/customers/:id/preferences", handler.SavePreferences)
		api.GET("/customers/:id/recommendations", handler.GetRecommendations)

		api.POST("/recommendations/regenerate", handler.RegenerateAll)
	}
}
