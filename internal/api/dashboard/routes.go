package dashboard

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts the dashboard API under /api/v1.
func (h *Handler) RegisterRoutes(router *gin.Engine) {
	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", h.GetHealth)

		v1.GET("/children", h.ListChildren)
		v1.POST("/children", h.AddChild)
		v1.GET("/children/options", h.GetChildOptions)
		v1.GET("/children/top", h.GetTopEarners)
		v1.GET("/children/:id/overview", h.GetChildOverview)
		v1.GET("/children/:id/goals", h.GetChildGoals)

		v1.GET("/categories", h.ListCategories)
		v1.GET("/categories/options", h.GetCategoryOptions)
		v1.GET("/categories/:id/activities", h.GetCategoryActivities)

		v1.POST("/sessions", h.StartSession)
		v1.GET("/sessions/:id", h.GetSession)
		v1.POST("/sessions/:id/category", h.SelectCategory)
		v1.POST("/sessions/:id/activity", h.SelectActivity)
		v1.POST("/sessions/:id/custom", h.StartCustomActivity)
		v1.PUT("/sessions/:id/custom", h.SaveCustomActivity)
		v1.DELETE("/sessions/:id/custom", h.CancelCustomActivity)
		v1.DELETE("/sessions/:id/panel", h.ClosePanel)
		v1.POST("/sessions/:id/another", h.LogAnother)
		v1.DELETE("/sessions/:id", h.CloseSession)

		v1.POST("/goals", h.AddGoal)
		v1.POST("/goals/:id/complete", h.CompleteGoal)

		v1.PUT("/settings/currency", h.ChangeCurrency)
		v1.GET("/settings/currency", h.GetCurrency)
		v1.PUT("/settings/focus", h.SetFocus)
		v1.GET("/settings/focus", h.GetFocus)
	}
}
