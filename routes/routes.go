package routes

import (
	"net/http"
	"time"

	"slotify/config"
	"slotify/handlers"
	"slotify/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RegisterSchedulingRoutes registers all endpoints for the scheduling engine.
func RegisterSchedulingRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/scheduling")
	{
		api.POST("/meetings", hb.ScheduleMeetingHandler)
		api.GET("/free-slots", hb.GetFreeSlotsHandler)
		api.POST("/potential-slots", hb.AddPotentialSlotHandler)
		api.GET("/slots/:id", hb.GetSlotHandler)
	}
}

// RegisterSessionRoutes registers read access to agent session trails.
func RegisterSessionRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/sessions")
	{
		api.GET("/:id", hb.GetSessionHandler)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "services": utils.GetHealthStatus()})
	})
}

// RegisterMetricsRoute exposes the Prometheus scrape endpoint.
func RegisterMetricsRoute(r *gin.Engine) {
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	// Setup global middleware (e.g., CORS) here.
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type", handlers.SessionIDHeader},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	RegisterSchedulingRoutes(r, hb)
	RegisterSessionRoutes(r, hb)
	RegisterHealthRoute(r)
	if config.AppConfig.MetricsEnabled {
		RegisterMetricsRoute(r)
	}
}
