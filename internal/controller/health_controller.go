package controller

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"nexus-migrator/internal/database"
	"nexus-migrator/internal/middleware"
)

type HealthResponse struct {
	Status      string            `json:"status"`
	Timestamp   time.Time         `json:"timestamp"`
	Service     string            `json:"service"`
	Version     string            `json:"version"`
	Connections map[string]string `json:"connections"`
}

type HealthController struct {
	registry *database.Registry
}

func NewHealthController(registry *database.Registry) *HealthController {
	return &HealthController{
		registry: registry,
	}
}

func (hc *HealthController) HealthCheck(c *gin.Context) {
	response := HealthResponse{
		Status:      "healthy",
		Timestamp:   time.Now(),
		Service:     "nexus-migrator",
		Version:     "1.0.0",
		Connections: make(map[string]string),
	}

	for name, healthy := range hc.registry.HealthCheck(c.Request.Context()) {
		databaseType := ""
		if conn, err := hc.registry.ByName(name); err == nil {
			databaseType = string(conn.Type)
		}
		middleware.UpdateConnectionHealth(name, databaseType, healthy)

		if healthy {
			response.Connections[name] = "connected"
		} else {
			response.Connections[name] = "disconnected"
			response.Status = "unhealthy"
		}
	}

	statusCode := http.StatusOK
	if response.Status == "unhealthy" {
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, response)
}
