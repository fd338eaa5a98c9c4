package storage

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveAndOpen(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	stored, err := store.Save("report.txt", strings.NewReader("hello world"))
	require.NoError(t, err)

	assert.Equal(t, "report.txt", stored.Name)
	assert.NotEqual(t, "report.txt", stored.Key, "key must not be the client filename")
	assert.True(t, strings.HasSuffix(stored.Key, ".txt"))
	assert.Equal(t, "text/plain", stored.ContentType)
	assert.Equal(t, int64(len("hello world")), stored.Size)

	rc, err := store.Open(stored.Key)
	require.NoError(t, err)
	defer rc.Close()

	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(data))
}

func TestSave_SameFilenameNeverCollides(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	first, err := store.Save("report.txt", strings.NewReader("one"))
	require.NoError(t, err)
	second, err := store.Save("report.txt", strings.NewReader("two"))
	require.NoError(t, err)

	assert.NotEqual(t, first.Key, second.Key)

	rc, err := store.Open(first.Key)
	require.NoError(t, err)
	data, _ := io.ReadAll(rc)
	rc.Close()
	assert.Equal(t, "one", string(data))

	rc, err = store.Open(second.Key)
	require.NoError(t, err)
	data, _ = io.ReadAll(rc)
	rc.Close()
	assert.Equal(t, "two", string(data))
}

func TestSave_LargePayload(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	payload := strings.Repeat("x", 4096)
	stored, err := store.Save("big.txt", strings.NewReader(payload))
	require.NoError(t, err)
	assert.Equal(t, int64(len(payload)), stored.Size)

	rc, err := store.Open(stored.Key)
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, payload, string(data))
}

func TestOpen_Missing(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Open("does-not-exist.txt")
	assert.ErrorIs(t, err, ErrFileNotFound)
}

func TestRemove(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStore(dir)
	require.NoError(t, err)

	stored, err := store.Save("gone.txt", strings.NewReader("bye"))
	require.NoError(t, err)

	require.NoError(t, store.Remove(stored.Key))
	_, err = store.Open(stored.Key)
	assert.ErrorIs(t, err, ErrFileNotFound)

	// Removing twice is not an error.
	assert.NoError(t, store.Remove(stored.Key))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestOpen_IgnoresPathTraversal(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStore(filepath.Join(dir, "uploads"))
	require.NoError(t, err)

	secret := filepath.Join(dir, "secret.txt")
	require.NoError(t, os.WriteFile(secret, []byte("nope"), 0644))

	_, err = store.Open("../secret.txt")
	assert.ErrorIs(t, err, ErrFileNotFound)
}

func TestTypeByName(t *testing.T) {
	assert.Equal(t, "image/png", TypeByName("photo.PNG"))
	assert.Equal(t, "application/json", TypeByName("data.json"))
	assert.Equal(t, "text/plain", TypeByName("notes.txt"))
}
