package subscription

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/alberthlima/saas-legal/internal/logger"
)

// Handler serves the admin panel routes. The bot-facing routes live in
// the bot package and talk to the same Service.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// List godoc
// @Summary      List subscriptions
// @Tags         subscription
// @Security     BearerAuth
// @Produce      json
// @Param        search  query  string  false  "Substring match on client or plan name"
// @Success      200  {object}  gin.H
// @Router       /api/subscription [get]
func (h *Handler) List(c *gin.Context) {
	rows, err := h.svc.List(c.Request.Context(), c.Query("search"))
	if err != nil {
		logger.Errorf("Failed to list subscriptions: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load subscriptions"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"subscriptions": rows})
}

func (h *Handler) Show(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid subscription id"})
		return
	}

	sub, err := h.svc.Get(c.Request.Context(), id)
	if errors.Is(err, ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Suscripción no encontrada"})
		return
	}
	if err != nil {
		logger.Errorf("Failed to load subscription %d: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load subscription"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"subscription": sub})
}

// Approve activates a pending subscription and notifies the client.
func (h *Handler) Approve(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid subscription id"})
		return
	}

	sub, err := h.svc.Approve(c.Request.Context(), id)
	if errors.Is(err, ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Suscripción no encontrada"})
		return
	}
	if err != nil {
		logger.Errorf("Failed to approve subscription %d: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to approve subscription"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":      "Suscripción aprobada exitosamente",
		"subscription": sub,
	})
}

func (h *Handler) Cancel(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid subscription id"})
		return
	}

	sub, err := h.svc.Cancel(c.Request.Context(), id)
	if errors.Is(err, ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Suscripción no encontrada"})
		return
	}
	if err != nil {
		logger.Errorf("Failed to cancel subscription %d: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to cancel subscription"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":      "Suscripción cancelada exitosamente",
		"subscription": sub,
	})
}

func (h *Handler) Destroy(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid subscription id"})
		return
	}

	err = h.svc.Delete(c.Request.Context(), id)
	if errors.Is(err, ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Suscripción no encontrada"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete subscription"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Suscripción eliminada exitosamente"})
}
