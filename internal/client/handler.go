package client

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"github.com/alberthlima/saas-legal/internal/api"
	"github.com/alberthlima/saas-legal/internal/logger"
)

type Handler struct {
	repo Repository
}

func NewHandler(db *sqlx.DB) *Handler {
	return &Handler{repo: NewRepository(db)}
}

type ListResponse struct {
	Clients    []Client       `json:"clients"`
	Pagination api.Pagination `json:"pagination"`
}

// List godoc
// @Summary      List clients
// @Tags         client
// @Security     BearerAuth
// @Produce      json
// @Param        search  query  string  false  "Substring match on name"
// @Param        page    query  int     false  "Page number (10 per page)"
// @Success      200  {object}  ListResponse
// @Router       /api/client [get]
func (h *Handler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))

	clients, total, err := h.repo.List(c.Request.Context(), c.Query("search"), page)
	if err != nil {
		logger.Errorf("Failed to list clients: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load clients"})
		return
	}

	c.JSON(http.StatusOK, ListResponse{
		Clients: clients,
		Pagination: api.Pagination{
			Page:    page,
			PerPage: PageSize,
			Total:   total,
		},
	})
}

func (h *Handler) Show(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid client id"})
		return
	}

	cl, err := h.repo.GetByID(c.Request.Context(), id)
	if errors.Is(err, ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Cliente no encontrado"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load client"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"client": cl})
}

func (h *Handler) Update(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid client id"})
		return
	}

	var p UpdateParams
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cl, err := h.repo.Update(c.Request.Context(), id, p)
	if errors.Is(err, ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Cliente no encontrado"})
		return
	}
	if err != nil {
		logger.Errorf("Failed to update client %d: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update client"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cliente actualizado exitosamente",
		"client":  cl,
	})
}

func (h *Handler) Destroy(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid client id"})
		return
	}

	err = h.repo.SoftDelete(c.Request.Context(), id)
	if errors.Is(err, ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Cliente no encontrado"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete client"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Cliente eliminado exitosamente"})
}
