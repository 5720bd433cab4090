package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/alberthlima/saas-legal/internal/api"
	"github.com/alberthlima/saas-legal/internal/notify"
)

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200 {object} api.HealthResponse
// @Router       /health [get]
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, api.HealthResponse{Status: "ok"})
}

// @Summary      Send a test Telegram notification
// @Tags         system
// @Produce      json
// @Param        chat_id query int true "Target chat id"
// @Success      200 {object} api.MessageResponse
// @Failure      400 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /test-notify [get]
func TestNotify(notifier notify.Notifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		chatID, err := strconv.ParseInt(c.Query("chat_id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "chat_id parameter required"})
			return
		}

		if err := notifier.Send(c.Request.Context(), chatID, "Notificaciones funcionando correctamente ✅"); err != nil {
			c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: err.Error()})
			return
		}

		c.JSON(http.StatusOK, api.MessageResponse{Message: "Notification sent"})
	}
}

// @Summary      Prometheus metrics
// @Description  Exposes Prometheus metrics in text format
// @Tags         system
// @Produce      text/plain
// @Success      200 {string} string
// @Router       /metrics [get]
func Metrics() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
