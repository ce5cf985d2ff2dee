package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	backend string
}

func NewHealthHandler(backend string) *HealthHandler { return &HealthHandler{backend: backend} }

func (h *HealthHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "backend": h.backend})
}
