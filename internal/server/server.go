// Package server is the thin HTTP boundary over the mission core.
package server

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"missiond/internal/store"
	"missiond/internal/supervisor"
)

func New(st store.Store, sup *supervisor.Supervisor, log *zap.Logger) *gin.Engine {
	g := gin.New()
	g.Use(gin.Recovery())
	attachRoutes(g, st, sup, log)
	return g
}

func attachRoutes(g *gin.Engine, st store.Store, sup *supervisor.Supervisor, log *zap.Logger) {
	if log == nil {
		log = zap.NewNop()
	}
	h := newMissions(st, sup, log)

	g.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	v1 := g.Group("/v1")
	{
		v1.POST("/missions", h.Create)
		v1.GET("/missions", h.ListActive)
		v1.GET("/missions/:id", h.Get)
		v1.GET("/missions/:id/status", h.Status)
		v1.PATCH("/missions/:id", h.Update)
		v1.DELETE("/missions/:id", h.Delete)

		v1.GET("/missions/:id/tasks/:tid", h.GetTask)
		v1.PATCH("/missions/:id/tasks/:tid", h.UpdateTask)
		v1.DELETE("/missions/:id/tasks/:tid", h.DeleteTask)
	}
}
