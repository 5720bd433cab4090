package storage

import (
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Buckets mirror the public disk folders of the admin panel. Rows store
// paths relative to the storage root; public URLs are derived on read.
const (
	BucketVouchers  = "vouchers"
	BucketQRCodes   = "qr_codes"
	BucketDocuments = "documents"
)

type Store struct {
	root          string
	publicBaseURL string
}

func New(root, publicBaseURL string) *Store {
	return &Store{
		root:          root,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
	}
}

// Save writes the reader's content into the given bucket under a random
// name, keeping the original extension. Returns the relative path to
// store in the database.
func (s *Store) Save(bucket, originalName string, r io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	name := uuid.New().String() + ext
	relPath := path.Join(bucket, name)

	dir := filepath.Join(s.root, bucket)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create bucket dir: %w", err)
	}

	f, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	return relPath, nil
}

// Delete removes a stored file. A missing file is not an error: a crash
// between file write and row update can leave rows pointing at files
// that no longer exist.
func (s *Store) Delete(relPath string) error {
	abs, err := s.abs(relPath)
	if err != nil {
		return err
	}

	if err := os.Remove(abs); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// URL returns the public URL for a stored relative path.
func (s *Store) URL(relPath string) string {
	return s.publicBaseURL + "/" + path.Clean(relPath)
}

// Path returns the absolute filesystem path for a stored relative path.
func (s *Store) Path(relPath string) (string, error) {
	return s.abs(relPath)
}

func (s *Store) abs(relPath string) (string, error) {
	cleaned := filepath.Clean(relPath)
	if strings.HasPrefix(cleaned, "..") || filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("invalid storage path %q", relPath)
	}
	return filepath.Join(s.root, cleaned), nil
}
