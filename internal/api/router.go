// Package api exposes the planner over HTTP with gin.
package api

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"cantine-planner/internal/app"
)

// Handler serves the REST API on top of an App.
type Handler struct {
	app *app.App
}

// NewRouter builds the gin engine. /health and /metrics are public;
// everything under /api/v1 needs a bearer token signed with secret.
func NewRouter(a *app.App, secret []byte, origins []string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	if len(origins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     origins,
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	h := &Handler{app: a}

	r.GET("/health", h.health)
	r.GET("/metrics", gin.WrapH(a.Collector().Handler()))

	v1 := r.Group("/api/v1", AuthMiddleware(secret))
	{
		v1.GET("/weeks", h.listWeeks)

		plans := v1.Group("/plans/:week")
		plans.GET("", h.getPlan)
		plans.DELETE("", h.clearWeek)
		plans.POST("/autofill", h.autoFill)
		plans.POST("/finalize", h.finalize)
		plans.POST("/duplicate", h.duplicate)
		plans.PUT("/slots/:day/:course", h.setSlot)
		plans.DELETE("/slots/:day/:course", h.clearSlot)
		plans.GET("/summary", h.summary)
		plans.GET("/advice", h.advice)
		plans.GET("/needs", h.needs)
		plans.POST("/publish", h.publish)

		v1.GET("/recipes", h.listRecipes)
		v1.POST("/recipes/clip", h.clipRecipe)
		v1.POST("/recipes/ghost-import", h.ghostImport)
		v1.GET("/alerts", h.alerts)
		v1.GET("/usage", h.usage)
	}
	return r
}

func (h *Handler) health(c *gin.Context) {
	hs := h.app.Health()
	c.JSON(http.StatusOK, gin.H{
		"status":     "ok",
		"uptime":     hs.Uptime.Round(time.Second).String(),
		"goroutines": hs.Goroutines,
		"alloc_mb":   hs.AllocMB,
		"data_size":  hs.DataDiskSize,
	})
}
