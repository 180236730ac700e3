package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rozpoctar/boq-classifier/internal/server"
)

// SetupServiceRoutes configures the service API routes. Health routes are
// registered by the server package; metricsHandler may be nil to skip the
// /metrics endpoint.
func SetupServiceRoutes(router *gin.Engine, handler *Handler, jwtSecret string, metricsHandler http.Handler) {
	if metricsHandler != nil {
		router.GET("/metrics", gin.WrapH(metricsHandler))
	}

	// API v1 routes, protected with JWT when a secret is configured
	v1 := server.ProtectedGroup(router, "/api/v1", jwtSecret)

	classify := v1.Group("/classify")
	classify.POST("/rows", handler.ClassifyRows)     // POST /api/v1/classify/rows
	classify.POST("/groups", handler.ClassifyGroups) // POST /api/v1/classify/groups
	classify.POST("/suggest", handler.Suggest)       // POST /api/v1/classify/suggest

	v1.POST("/stats", handler.Stats) // POST /api/v1/stats

	rules := v1.Group("/rules")
	rules.GET("", handler.ListRules)         // GET /api/v1/rules
	rules.POST("", handler.CreateRule)       // POST /api/v1/rules
	rules.PUT("/:id", handler.UpdateRule)    // PUT /api/v1/rules/:id
	rules.DELETE("/:id", handler.DeleteRule) // DELETE /api/v1/rules/:id
}
