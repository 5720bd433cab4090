package document

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/alberthlima/saas-legal/internal/rag"
)

type memRepo struct {
	nextID int64
	docs   map[int64]*Document
}

func newMemRepo() *memRepo {
	return &memRepo{nextID: 1, docs: map[int64]*Document{}}
}

func (m *memRepo) Create(ctx context.Context, p Params, filePath string) (*Document, error) {
	state := p.State
	if state == 0 {
		state = StateActive
	}
	doc := &Document{
		ID:             m.nextID,
		TypeDocumentID: p.TypeDocumentID,
		Name:           p.Name,
		Description:    p.Description,
		File:           filePath,
		State:          state,
		CategoryIDs:    p.CategoryIDs,
	}
	m.docs[doc.ID] = doc
	m.nextID++
	return doc, nil
}

func (m *memRepo) GetByID(ctx context.Context, id int64) (*Document, error) {
	doc, ok := m.docs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return doc, nil
}

func (m *memRepo) List(ctx context.Context, search string) ([]Document, error) {
	out := []Document{}
	for _, d := range m.docs {
		out = append(out, *d)
	}
	return out, nil
}

func (m *memRepo) Update(ctx context.Context, id int64, p Params, filePath *string) (*Document, error) {
	doc, ok := m.docs[id]
	if !ok {
		return nil, ErrNotFound
	}
	doc.Name = p.Name
	doc.Description = p.Description
	doc.TypeDocumentID = p.TypeDocumentID
	doc.CategoryIDs = p.CategoryIDs
	if filePath != nil {
		doc.File = *filePath
	}
	return doc, nil
}

func (m *memRepo) SoftDelete(ctx context.Context, id int64) (*Document, error) {
	doc, ok := m.docs[id]
	if !ok {
		return nil, ErrNotFound
	}
	delete(m.docs, id)
	return doc, nil
}

type memFiles struct {
	saved   []string
	deleted []string
}

func (m *memFiles) Save(bucket, originalName string, r io.Reader) (string, error) {
	if _, err := io.Copy(io.Discard, r); err != nil {
		return "", err
	}
	path := bucket + "/" + originalName
	m.saved = append(m.saved, path)
	return path, nil
}

func (m *memFiles) Delete(relPath string) error {
	m.deleted = append(m.deleted, relPath)
	return nil
}

func (m *memFiles) URL(relPath string) string { return "http://files.test/" + relPath }

type memIngester struct {
	mu        sync.Mutex
	ingested  []rag.IngestRequest
	removed   []int64
	deleteErr error
	done      chan struct{}
}

func newMemIngester() *memIngester {
	return &memIngester{done: make(chan struct{}, 4)}
}

func (m *memIngester) IngestPDF(ctx context.Context, req rag.IngestRequest) error {
	m.mu.Lock()
	m.ingested = append(m.ingested, req)
	m.mu.Unlock()
	m.done <- struct{}{}
	return nil
}

func (m *memIngester) DeleteDocument(ctx context.Context, docID int64) error {
	m.mu.Lock()
	m.removed = append(m.removed, docID)
	m.mu.Unlock()
	return m.deleteErr
}

func (m *memIngester) wait(t *testing.T) {
	t.Helper()
	select {
	case <-m.done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for background ingestion call")
	}
}

func setupDocumentRouter(t *testing.T) (*gin.Engine, *memRepo, *memFiles, *memIngester) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := newMemRepo()
	files := &memFiles{}
	ingester := newMemIngester()
	h := NewHandler(repo, files, ingester)

	r := gin.New()
	r.POST("/api/document", h.Create)
	r.PUT("/api/document/:id", h.Update)
	r.DELETE("/api/document/:id", h.Destroy)
	return r, repo, files, ingester
}

func multipartPDF(t *testing.T, fields map[string]string, filename string, size int) (*bytes.Buffer, string) {
	t.Helper()

	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if filename != "" {
		fw, err := w.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = fw.Write(bytes.Repeat([]byte("a"), size))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return body, w.FormDataContentType()
}

func TestCreateDocumentTriggersIngestion(t *testing.T) {
	r, repo, files, ingester := setupDocumentRouter(t)

	body, contentType := multipartPDF(t, map[string]string{
		"name":             "Código Civil",
		"type_document_id": "3",
		"category_ids":     "1",
	}, "codigo-civil.pdf", 100)

	req := httptest.NewRequest(http.MethodPost, "/api/document", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, repo.docs, 1)
	require.Len(t, files.saved, 1)

	ingester.wait(t)
	require.Len(t, ingester.ingested, 1)
	require.Equal(t, "codigo-civil.pdf", ingester.ingested[0].PDFPath)
	require.Equal(t, "1", ingester.ingested[0].DocID)
	require.False(t, ingester.ingested[0].ReplaceExisting)
}

func TestCreateDocumentRequiresPDF(t *testing.T) {
	r, repo, _, _ := setupDocumentRouter(t)

	body, contentType := multipartPDF(t, map[string]string{
		"name":             "Código Civil",
		"type_document_id": "3",
	}, "", 0)

	req := httptest.NewRequest(http.MethodPost, "/api/document", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.Empty(t, repo.docs)
}

func TestCreateDocumentRejectsNonPDF(t *testing.T) {
	r, _, files, _ := setupDocumentRouter(t)

	body, contentType := multipartPDF(t, map[string]string{
		"name":             "Código Civil",
		"type_document_id": "3",
	}, "codigo.docx", 100)

	req := httptest.NewRequest(http.MethodPost, "/api/document", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.Empty(t, files.saved)
}

func TestUpdateDocumentReplacesFileAndReingests(t *testing.T) {
	r, repo, files, ingester := setupDocumentRouter(t)

	_, err := repo.Create(context.Background(), Params{
		Name:           "Código Civil",
		TypeDocumentID: 3,
	}, "documents/old.pdf")
	require.NoError(t, err)

	body, contentType := multipartPDF(t, map[string]string{
		"name":             "Código Civil 2026",
		"type_document_id": "3",
	}, "new.pdf", 100)

	req := httptest.NewRequest(http.MethodPut, "/api/document/1", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, []string{"documents/old.pdf"}, files.deleted)

	ingester.wait(t)
	require.Len(t, ingester.ingested, 1)
	require.True(t, ingester.ingested[0].ReplaceExisting)
	require.Equal(t, "new.pdf", ingester.ingested[0].PDFPath)
}

func TestDestroyDocumentRemovesFromIndex(t *testing.T) {
	r, repo, _, ingester := setupDocumentRouter(t)

	_, err := repo.Create(context.Background(), Params{
		Name:           "Código Civil",
		TypeDocumentID: 3,
	}, "documents/old.pdf")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodDelete, "/api/document/1", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Empty(t, repo.docs)
	require.Equal(t, []int64{1}, ingester.removed)
}

type orderedIngester struct {
	*memIngester
	repo       *memRepo
	rowPresent bool
}

func (o *orderedIngester) DeleteDocument(ctx context.Context, docID int64) error {
	_, o.rowPresent = o.repo.docs[docID]
	return o.memIngester.DeleteDocument(ctx, docID)
}

func TestDestroyRemovesFromIndexBeforeRow(t *testing.T) {
	gin.SetMode(gin.TestMode)

	repo := newMemRepo()
	ingester := &orderedIngester{memIngester: newMemIngester(), repo: repo}
	h := NewHandler(repo, &memFiles{}, ingester)

	_, err := repo.Create(context.Background(), Params{
		Name:           "Código Civil",
		TypeDocumentID: 3,
	}, "documents/old.pdf")
	require.NoError(t, err)

	r := gin.New()
	r.DELETE("/api/document/:id", h.Destroy)

	req := httptest.NewRequest(http.MethodDelete, "/api/document/1", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, ingester.rowPresent, "row must still exist while the index removal runs")
	require.Empty(t, repo.docs)
}

func TestDestroyProceedsWhenIndexRemovalFails(t *testing.T) {
	r, repo, _, ingester := setupDocumentRouter(t)
	ingester.deleteErr = context.DeadlineExceeded

	_, err := repo.Create(context.Background(), Params{
		Name:           "Código Civil",
		TypeDocumentID: 3,
	}, "documents/old.pdf")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodDelete, "/api/document/1", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Empty(t, repo.docs)
}

func TestDestroyUnknownDocumentSkipsIndex(t *testing.T) {
	r, _, _, ingester := setupDocumentRouter(t)

	req := httptest.NewRequest(http.MethodDelete, "/api/document/99", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Empty(t, ingester.removed)
}
