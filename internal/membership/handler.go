package membership

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"github.com/alberthlima/saas-legal/internal/logger"
)

type Handler struct {
	repo Repository
}

func NewHandler(db *sqlx.DB) *Handler {
	return &Handler{repo: NewRepository(db)}
}

// List godoc
// @Summary      List membership plans
// @Tags         membership
// @Security     BearerAuth
// @Produce      json
// @Param        search  query  string  false  "Substring match on name"
// @Success      200  {object}  gin.H
// @Router       /api/membership [get]
func (h *Handler) List(c *gin.Context) {
	memberships, err := h.repo.List(c.Request.Context(), c.Query("search"))
	if err != nil {
		logger.Errorf("Failed to list memberships: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load memberships"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"memberships": memberships})
}

func (h *Handler) Create(c *gin.Context) {
	var p Params
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	m, err := h.repo.Create(c.Request.Context(), p)
	if errors.Is(err, ErrDuplicateName) {
		c.JSON(http.StatusConflict, gin.H{"message": "La membresía ya existe"})
		return
	}
	if err != nil {
		logger.Errorf("Failed to create membership: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create membership"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":    "Membresía creada exitosamente",
		"membership": m,
	})
}

func (h *Handler) Update(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid membership id"})
		return
	}

	var p Params
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	m, err := h.repo.Update(c.Request.Context(), id, p)
	switch {
	case errors.Is(err, ErrDuplicateName):
		c.JSON(http.StatusConflict, gin.H{"message": "La membresía ya existe"})
		return
	case errors.Is(err, ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "Membresía no encontrada"})
		return
	case err != nil:
		logger.Errorf("Failed to update membership %d: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update membership"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":    "Membresía actualizada exitosamente",
		"membership": m,
	})
}

func (h *Handler) Destroy(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid membership id"})
		return
	}

	err = h.repo.SoftDelete(c.Request.Context(), id)
	if errors.Is(err, ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Membresía no encontrada"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete membership"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Membresía eliminada exitosamente"})
}
