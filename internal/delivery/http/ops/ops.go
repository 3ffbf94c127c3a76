package http_ops

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/humanbelnik/kinoswap/matchroom/internal/metrics"
)

// Check reports whether a dependency is reachable.
type Check func(ctx context.Context) error

type Controller struct {
	checks map[string]Check
}

func New(checks map[string]Check) *Controller {
	return &Controller{checks: checks}
}

func (c *Controller) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/health", c.health)
	router.GET("/metrics", gin.WrapH(metrics.Handler()))
}

// HealthResponseDTO DTO состояния зависимостей
type HealthResponseDTO struct {
	Status string            `json:"status" example:"ok"`
	Checks map[string]string `json:"checks,omitempty"`
}

// Health проверяет зависимости сервиса
// @Summary Проверка состояния
// @Tags Ops
// @Produce json
// @Success 200 {object} HealthResponseDTO "Все зависимости доступны"
// @Failure 503 {object} HealthResponseDTO "Часть зависимостей недоступна"
// @Router /health [get]
func (c *Controller) health(ctx *gin.Context) {
	checkCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	resp := HealthResponseDTO{Status: "ok", Checks: make(map[string]string, len(c.checks))}
	status := http.StatusOK
	for name, check := range c.checks {
		if err := check(checkCtx); err != nil {
			resp.Checks[name] = err.Error()
			resp.Status = "degraded"
			status = http.StatusServiceUnavailable
			continue
		}
		resp.Checks[name] = "ok"
	}

	ctx.JSON(status, resp)
}
