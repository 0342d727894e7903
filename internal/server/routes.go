package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) registerRoutes() {
	s.engine.GET("/health", s.handleHealth)
	s.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := s.guarded()
	api.GET("/services", s.handleServices)
	api.GET("/mods", s.handleMods)
	api.GET("/lighting/shapes", s.handleShapes)
	api.POST("/lighting/preview", s.handlePreview)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"host_id":   s.cfg.HostID,
		"uptime_ms": time.Since(s.startedAt).Milliseconds(),
	})
}

func (s *Server) handleServices(c *gin.Context) {
	snapshot := s.source.ServiceSnapshot()
	c.JSON(http.StatusOK, gin.H{
		"host_id":  s.cfg.HostID,
		"services": snapshot,
		"count":    len(snapshot),
	})
}

func (s *Server) handleMods(c *gin.Context) {
	list := s.source.ModList()
	c.JSON(http.StatusOK, gin.H{
		"host_id": s.cfg.HostID,
		"mods":    list,
		"count":   len(list),
	})
}

func (s *Server) handleShapes(c *gin.Context) {
	shapes := s.source.ShapeList()
	c.JSON(http.StatusOK, gin.H{
		"host_id": s.cfg.HostID,
		"shapes":  shapes,
		"count":   len(shapes),
	})
}

func (s *Server) handlePreview(c *gin.Context) {
	var req PreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed preview request"})
		return
	}
	if req.Radius <= 0 || req.Lux <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "radius and lux must be positive"})
		return
	}

	result, ok := s.source.PreviewLight(req)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown shape"})
		return
	}
	c.JSON(http.StatusOK, result)
}
