package setting

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/alberthlima/saas-legal/internal/logger"
	"github.com/alberthlima/saas-legal/internal/storage"
)

// MaxQRSize caps the payment QR image at 2 MiB.
const MaxQRSize = 2 << 20

// FileStore is the slice of storage.Store the settings handler needs.
type FileStore interface {
	Save(bucket, originalName string, r io.Reader) (string, error)
	Delete(relPath string) error
	URL(relPath string) string
}

type Handler struct {
	repo  Repository
	files FileStore
}

func NewHandler(repo Repository, files FileStore) *Handler {
	return &Handler{repo: repo, files: files}
}

func (h *Handler) Show(c *gin.Context) {
	s, err := h.repo.Get(c.Request.Context())
	if err != nil {
		logger.Errorf("Failed to load settings: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load settings"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"settings": h.decorate(s)})
}

// Update takes the settings fields as a multipart form so the QR image
// can ride along. The image is optional; when present it replaces the
// stored one and the old file is removed.
func (h *Handler) Update(c *gin.Context) {
	var p Params
	if err := c.ShouldBind(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	prev, err := h.repo.Get(c.Request.Context())
	if err != nil {
		logger.Errorf("Failed to load settings: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load settings"})
		return
	}

	s, err := h.repo.Update(c.Request.Context(), p)
	if err != nil {
		logger.Errorf("Failed to update settings: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update settings"})
		return
	}

	if file, err := c.FormFile("qr"); err == nil {
		if file.Size > MaxQRSize {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "La imagen QR supera el tamaño máximo de 2 MB"})
			return
		}
		if !strings.HasPrefix(file.Header.Get("Content-Type"), "image/") {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "El código QR debe ser una imagen"})
			return
		}

		src, err := file.Open()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read qr image"})
			return
		}
		defer src.Close()

		path, err := h.files.Save(storage.BucketQRCodes, file.Filename, src)
		if err != nil {
			logger.Errorf("Failed to store qr image: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store qr image"})
			return
		}

		if prev.QR != nil {
			if err := h.files.Delete(*prev.QR); err != nil {
				logger.Error("failed to delete replaced qr image", "path", *prev.QR, "err", err)
			}
		}

		s, err = h.repo.UpdateQR(c.Request.Context(), path)
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Configuración no encontrada"})
			return
		}
		if err != nil {
			logger.Errorf("Failed to update qr image: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update qr image"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "Configuración actualizada exitosamente",
		"settings": h.decorate(s),
	})
}

func (h *Handler) decorate(s *Setting) *Setting {
	if s.QR != nil {
		url := h.files.URL(*s.QR)
		s.QRURL = &url
	}
	return s
}
