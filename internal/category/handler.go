package category

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

func (h *Handler) List(c *gin.Context) {
	categories, err := h.repo.List(c.Request.Context(), c.Query("search"))
	if err != nil {
		logger.Errorf("Failed to list categories: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load categories"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

func (h *Handler) Create(c *gin.Context) {
	var p Params
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cat, err := h.repo.Create(c.Request.Context(), p)
	if errors.Is(err, ErrDuplicateName) {
		c.JSON(http.StatusConflict, gin.H{"message": "La categoría ya existe"})
		return
	}
	if err != nil {
		logger.Errorf("Failed to create category: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create category"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "Categoría creada exitosamente",
		"category": cat,
	})
}

func (h *Handler) Update(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid category id"})
		return
	}

	var p Params
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cat, err := h.repo.Update(c.Request.Context(), id, p)
	switch {
	case errors.Is(err, ErrDuplicateName):
		c.JSON(http.StatusConflict, gin.H{"message": "La categoría ya existe"})
		return
	case errors.Is(err, ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "Categoría no encontrada"})
		return
	case err != nil:
		logger.Errorf("Failed to update category %d: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update category"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "Categoría actualizada exitosamente",
		"category": cat,
	})
}

func (h *Handler) Destroy(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid category id"})
		return
	}

	err = h.repo.SoftDelete(c.Request.Context(), id)
	if errors.Is(err, ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Categoría no encontrada"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete category"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Categoría eliminada exitosamente"})
}
