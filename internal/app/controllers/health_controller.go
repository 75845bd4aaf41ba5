package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/edutrack/edutrack/internal/app/models/dto"
	"github.com/edutrack/edutrack/internal/pkg/logger"
)

// Pinger reports whether a dependency answers
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthController reports service health
type HealthController struct {
	db Pinger
}

// NewHealthController creates a new HealthController
func NewHealthController(db Pinger) *HealthController {
	return &HealthController{db: db}
}

// Health checks the database connection
// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.HealthResponse}
// @Failure 503 {object} dto.APIResponse{data=dto.HealthResponse}
// @Router /health [get]
func (h *HealthController) Health(ctx *gin.Context) {
	pingCtx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.Ping(pingCtx); err != nil {
		logger.Warn().Err(err).Msg("Health check failed")
		resp := dto.NewSuccessResponse(dto.HealthResponse{Status: "unhealthy", Database: "down"}, "")
		resp.Success = false
		ctx.JSON(http.StatusServiceUnavailable, resp)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.HealthResponse{Status: "healthy", Database: "up"}, ""))
}
