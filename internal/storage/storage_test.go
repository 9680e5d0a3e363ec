package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalImageStore_SaveWritesFileAndReturnsURL(t *testing.T) {
	root := t.TempDir()
	store, err := NewLocalImageStore(root, "http://localhost:8080/uploads/")
	require.NoError(t, err)

	url, err := store.Save(context.Background(), "courses/b1/cover.png", []byte("png"), "image/png")
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8080/uploads/courses/b1/cover.png", url)
	data, err := os.ReadFile(filepath.Join(root, "courses", "b1", "cover.png"))
	require.NoError(t, err)
	assert.Equal(t, []byte("png"), data)
}

func TestLocalImageStore_NamesCannotEscapeRoot(t *testing.T) {
	root := t.TempDir()
	store, err := NewLocalImageStore(root, "/uploads")
	require.NoError(t, err)

	url, err := store.Save(context.Background(), "../../etc/x.png", []byte("png"), "image/png")
	require.NoError(t, err)

	assert.Equal(t, "/uploads/etc/x.png", url)
	_, err = os.Stat(filepath.Join(root, "etc", "x.png"))
	assert.NoError(t, err)
}

func TestLocalImageStore_RejectsEmptyName(t *testing.T) {
	store, err := NewLocalImageStore(t.TempDir(), "/uploads")
	require.NoError(t, err)

	_, err = store.Save(context.Background(), "/", []byte("png"), "image/png")
	assert.Error(t, err)
}

func TestPublicURL(t *testing.T) {
	assert.Equal(t, "https://cdn.example.com/courses/a.png", PublicURL("bucket", "cdn.example.com", "/courses/a.png"))
	assert.Equal(t, "https://storage.googleapis.com/bucket/courses/a.png", PublicURL("bucket", "", "courses/a.png"))
}
