package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/fieldops/backend/internal/nlq"
)

// Pinger is whatever backs the health check.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	Engine         *nlq.Engine
	Health         Pinger
	Validator      *validator.Validate
	Logger         zerolog.Logger
	RequestTimeout time.Duration
}

// Healthz pings the record source.
// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 503 {object} map[string]any
// @Router /healthz [get]
func (h *Handler) Healthz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()
	if h.Health != nil {
		if err := h.Health.Ping(ctx); err != nil {
			writeError(c, http.StatusServiceUnavailable, "DB_UNAVAILABLE", "Database unavailable", err.Error())
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Preflight answers any OPTIONS request that the CORS middleware let
// through, such as one sent without an Origin header.
func (h *Handler) Preflight(c *gin.Context) {
	c.Status(http.StatusOK)
}

func (h *Handler) requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	if h.RequestTimeout <= 0 {
		return context.WithCancel(c.Request.Context())
	}
	return context.WithTimeout(c.Request.Context(), h.RequestTimeout)
}

func (h *Handler) validate(v any) error {
	if h.Validator == nil {
		return nil
	}
	return h.Validator.Struct(v)
}

func writeError(c *gin.Context, status int, code string, message string, details any) {
	c.JSON(status, gin.H{
		"error": gin.H{
			"code":    code,
			"message": message,
			"details": details,
		},
	})
}
