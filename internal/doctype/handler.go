package doctype

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"github.com/alberthlima/saas-legal/internal/logger"
)

type Handler struct {
	repo *SQLRepository
}

func NewHandler(db *sqlx.DB) *Handler {
	return &Handler{repo: NewRepository(db)}
}

func (h *Handler) List(c *gin.Context) {
	types, err := h.repo.List(c.Request.Context(), c.Query("search"))
	if err != nil {
		logger.Errorf("Failed to list document types: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load document types"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"types": types})
}

func (h *Handler) Create(c *gin.Context) {
	var p Params
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	td, err := h.repo.Create(c.Request.Context(), p)
	if errors.Is(err, ErrDuplicateName) {
		c.JSON(http.StatusConflict, gin.H{"message": "El tipo de documento ya existe"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create document type"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Tipo de documento creado exitosamente",
		"type":    td,
	})
}

func (h *Handler) Update(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid type id"})
		return
	}

	var p Params
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	td, err := h.repo.Update(c.Request.Context(), id, p)
	switch {
	case errors.Is(err, ErrDuplicateName):
		c.JSON(http.StatusConflict, gin.H{"message": "El tipo de documento ya existe"})
		return
	case errors.Is(err, ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "Tipo de documento no encontrado"})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update document type"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Tipo de documento actualizado exitosamente",
		"type":    td,
	})
}

func (h *Handler) Destroy(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid type id"})
		return
	}

	err = h.repo.SoftDelete(c.Request.Context(), id)
	if errors.Is(err, ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Tipo de documento no encontrado"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete document type"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Tipo de documento eliminado exitosamente"})
}
