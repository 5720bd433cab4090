package rag

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Client talks to the document ingestion service. Every call is bounded
// by the configured timeout; callers treat failures as best-effort.
type Client struct {
	baseURL string
	http    *http.Client
}

func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// IngestRequest mirrors the payload expected by POST /ingest-pdf. The
// service mounts the documents bucket, so PDFPath is only the basename.
type IngestRequest struct {
	PDFPath         string  `json:"pdf_path"`
	DocID           string  `json:"doc_id"`
	Name            string  `json:"name"`
	Description     string  `json:"description"`
	CategoryIDs     []int64 `json:"category_ids"`
	Status          string  `json:"status"`
	ReplaceExisting bool    `json:"replace_existing"`
}

func (c *Client) IngestPDF(ctx context.Context, req IngestRequest) error {
	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to marshal ingest request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/ingest-pdf", bytes.NewReader(body))
	if err != nil {
		return err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return fmt.Errorf("ingest request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("ingest request returned status %d", resp.StatusCode)
	}
	return nil
}

func (c *Client) DeleteDocument(ctx context.Context, docID int64) error {
	url := fmt.Sprintf("%s/document/%d", c.baseURL, docID)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodDelete, url, nil)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return fmt.Errorf("delete request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("delete request returned status %d", resp.StatusCode)
	}
	return nil
}
