package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSaveAndURL(t *testing.T) {
	store := New(t.TempDir(), "http://localhost:8080/storage/")

	rel, err := store.Save(BucketVouchers, "voucher.jpg", strings.NewReader("fake-image-bytes"))
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(rel, "vouchers/"))
	require.True(t, strings.HasSuffix(rel, ".jpg"))

	abs, err := store.Path(rel)
	require.NoError(t, err)
	data, err := os.ReadFile(abs)
	require.NoError(t, err)
	require.Equal(t, "fake-image-bytes", string(data))

	require.Equal(t, "http://localhost:8080/storage/"+rel, store.URL(rel))
}

func TestSaveGeneratesUniqueNames(t *testing.T) {
	store := New(t.TempDir(), "http://localhost/storage")

	first, err := store.Save(BucketQRCodes, "qr.png", strings.NewReader("one"))
	require.NoError(t, err)
	second, err := store.Save(BucketQRCodes, "qr.png", strings.NewReader("two"))
	require.NoError(t, err)

	require.NotEqual(t, first, second)
}

func TestDelete(t *testing.T) {
	root := t.TempDir()
	store := New(root, "http://localhost/storage")

	rel, err := store.Save(BucketDocuments, "doc.pdf", strings.NewReader("pdf"))
	require.NoError(t, err)

	require.NoError(t, store.Delete(rel))
	_, statErr := os.Stat(filepath.Join(root, rel))
	require.True(t, os.IsNotExist(statErr))
}

func TestDeleteMissingFileIsNotAnError(t *testing.T) {
	store := New(t.TempDir(), "http://localhost/storage")
	require.NoError(t, store.Delete("vouchers/gone.jpg"))
}

func TestDeleteRejectsTraversal(t *testing.T) {
	store := New(t.TempDir(), "http://localhost/storage")
	require.Error(t, store.Delete("../../etc/passwd"))
	require.Error(t, store.Delete("/etc/passwd"))
}
