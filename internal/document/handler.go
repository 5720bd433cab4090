package document

import (
	"context"
	"errors"
	"io"
	"net/http"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/alberthlima/saas-legal/internal/logger"
	"github.com/alberthlima/saas-legal/internal/metrics"
	"github.com/alberthlima/saas-legal/internal/rag"
	"github.com/alberthlima/saas-legal/internal/storage"
)

// MaxPDFSize caps knowledge-base uploads at 10 MiB.
const MaxPDFSize = 10 << 20

// ingestTimeout bounds the background call to the ingestion service.
// Embedding a large PDF can take a while.
const ingestTimeout = 2 * time.Minute

// removeTimeout bounds the synchronous index removal on delete. Dropping
// a document from the index is cheap compared to ingesting one.
const removeTimeout = 10 * time.Second

// FileStore is the slice of storage.Store the document handler needs.
type FileStore interface {
	Save(bucket, originalName string, r io.Reader) (string, error)
	Delete(relPath string) error
	URL(relPath string) string
}

// Ingester pushes documents into the retrieval service. The HTTP client
// in the rag package is the production implementation.
type Ingester interface {
	IngestPDF(ctx context.Context, req rag.IngestRequest) error
	DeleteDocument(ctx context.Context, docID int64) error
}

type Handler struct {
	repo     Repository
	files    FileStore
	ingester Ingester
}

func NewHandler(repo Repository, files FileStore, ingester Ingester) *Handler {
	return &Handler{repo: repo, files: files, ingester: ingester}
}

func (h *Handler) List(c *gin.Context) {
	docs, err := h.repo.List(c.Request.Context(), c.Query("search"))
	if err != nil {
		logger.Errorf("Failed to list documents: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load documents"})
		return
	}

	for i := range docs {
		docs[i].FileURL = h.files.URL(docs[i].File)
	}
	c.JSON(http.StatusOK, gin.H{"documents": docs})
}

func (h *Handler) Show(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid document id"})
		return
	}

	doc, err := h.repo.GetByID(c.Request.Context(), id)
	if errors.Is(err, ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Documento no encontrado"})
		return
	}
	if err != nil {
		logger.Errorf("Failed to load document %d: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load document"})
		return
	}

	doc.FileURL = h.files.URL(doc.File)
	c.JSON(http.StatusOK, gin.H{"document": doc})
}

// Create stores the PDF, writes the row and kicks off ingestion in the
// background. A failed ingestion never fails the request; the document
// is already persisted and can be re-ingested on update.
func (h *Handler) Create(c *gin.Context) {
	var p Params
	if err := c.ShouldBind(&p); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	filePath, ok := h.savePDF(c, true)
	if !ok {
		return
	}

	doc, err := h.repo.Create(c.Request.Context(), p, *filePath)
	switch {
	case errors.Is(err, ErrTypeNotFound):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "Tipo de documento no encontrado"})
		return
	case errors.Is(err, ErrCategoryNotFound):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "Categoría no encontrada"})
		return
	case err != nil:
		logger.Errorf("Failed to create document: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create document"})
		return
	}

	h.ingestAsync(doc, false)

	doc.FileURL = h.files.URL(doc.File)
	c.JSON(http.StatusOK, gin.H{
		"message":  "Documento creado exitosamente",
		"document": doc,
	})
}

func (h *Handler) Update(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid document id"})
		return
	}

	var p Params
	if err := c.ShouldBind(&p); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	prev, err := h.repo.GetByID(c.Request.Context(), id)
	if errors.Is(err, ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Documento no encontrado"})
		return
	}
	if err != nil {
		logger.Errorf("Failed to load document %d: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load document"})
		return
	}

	filePath, ok := h.savePDF(c, false)
	if !ok {
		return
	}

	doc, err := h.repo.Update(c.Request.Context(), id, p, filePath)
	switch {
	case errors.Is(err, ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "Documento no encontrado"})
		return
	case errors.Is(err, ErrTypeNotFound):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "Tipo de documento no encontrado"})
		return
	case errors.Is(err, ErrCategoryNotFound):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "Categoría no encontrada"})
		return
	case err != nil:
		logger.Errorf("Failed to update document %d: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update document"})
		return
	}

	if filePath != nil && prev.File != *filePath {
		if err := h.files.Delete(prev.File); err != nil {
			logger.Error("failed to delete replaced document file", "path", prev.File, "err", err)
		}
	}

	h.ingestAsync(doc, true)

	doc.FileURL = h.files.URL(doc.File)
	c.JSON(http.StatusOK, gin.H{
		"message":  "Documento actualizado exitosamente",
		"document": doc,
	})
}

// Destroy removes the document from the retrieval index before soft
// deleting the row. The removal is best effort: a failure is logged and
// the local delete happens anyway.
func (h *Handler) Destroy(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid document id"})
		return
	}

	if _, err := h.repo.GetByID(c.Request.Context(), id); errors.Is(err, ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Documento no encontrado"})
		return
	} else if err != nil {
		logger.Errorf("Failed to load document %d: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load document"})
		return
	}

	rctx, cancel := context.WithTimeout(c.Request.Context(), removeTimeout)
	defer cancel()
	if err := h.ingester.DeleteDocument(rctx, id); err != nil {
		logger.Error("failed to remove document from retrieval index", "document_id", id, "err", err)
		metrics.RecordIngestionCall("delete", "failed")
	} else {
		metrics.RecordIngestionCall("delete", "ok")
	}

	if _, err := h.repo.SoftDelete(c.Request.Context(), id); errors.Is(err, ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Documento no encontrado"})
		return
	} else if err != nil {
		logger.Errorf("Failed to delete document %d: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete document"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Documento eliminado exitosamente"})
}

// savePDF validates and stores the uploaded file. With required=false a
// missing file is fine and nil is returned. The bool result is false
// when a response has already been written.
func (h *Handler) savePDF(c *gin.Context, required bool) (*string, bool) {
	file, err := c.FormFile("file")
	if err != nil {
		if !required {
			return nil, true
		}
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "El documento PDF es obligatorio"})
		return nil, false
	}

	if file.Size > MaxPDFSize {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "El documento supera el tamaño máximo de 10 MB"})
		return nil, false
	}
	if !strings.EqualFold(path.Ext(file.Filename), ".pdf") {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "El documento debe ser un archivo PDF"})
		return nil, false
	}

	src, err := file.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read document file"})
		return nil, false
	}
	defer src.Close()

	stored, err := h.files.Save(storage.BucketDocuments, file.Filename, src)
	if err != nil {
		logger.Errorf("Failed to store document file: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store document file"})
		return nil, false
	}
	return &stored, true
}

func (h *Handler) ingestAsync(doc *Document, replace bool) {
	status := "active"
	if doc.State != StateActive {
		status = "inactive"
	}

	req := rag.IngestRequest{
		PDFPath:         path.Base(doc.File),
		DocID:           strconv.FormatInt(doc.ID, 10),
		Name:            doc.Name,
		Description:     doc.Description,
		CategoryIDs:     doc.CategoryIDs,
		Status:          status,
		ReplaceExisting: replace,
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), ingestTimeout)
		defer cancel()
		if err := h.ingester.IngestPDF(ctx, req); err != nil {
			logger.Error("document ingestion failed", "document_id", doc.ID, "err", err)
			metrics.RecordIngestionCall("ingest", "failed")
			return
		}
		metrics.RecordIngestionCall("ingest", "ok")
	}()
}
