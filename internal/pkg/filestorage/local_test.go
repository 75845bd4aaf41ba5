package filestorage

import (
	"bytes"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fileHeader(t *testing.T, name, content string) *multipart.FileHeader {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("image", name)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&body, w.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form.File["image"][0]
}

func TestLocalStorage_SaveAndDelete(t *testing.T) {
	dir := t.TempDir()
	storage, err := NewLocalStorage(dir, "/uploads/")
	require.NoError(t, err)

	url, err := storage.SaveFileWithPath(fileHeader(t, "Cover.PNG", "png-bytes"), "courses")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "/uploads/courses/"))
	assert.True(t, strings.HasSuffix(url, ".png"))
	assert.True(t, storage.Owns(url))

	onDisk := filepath.Join(dir, "courses", filepath.Base(url))
	content, err := os.ReadFile(onDisk)
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(content))

	require.NoError(t, storage.DeleteFile(url))
	_, err = os.Stat(onDisk)
	assert.True(t, os.IsNotExist(err))

	assert.NoError(t, storage.DeleteFile(url))
}

func TestLocalStorage_IgnoresForeignURLs(t *testing.T) {
	storage, err := NewLocalStorage(t.TempDir(), "/uploads")
	require.NoError(t, err)

	for _, url := range []string{"https://cdn.example.com/x.png", "/uploads/../etc/passwd", "/uploads/", ""} {
		assert.False(t, storage.Owns(url), url)
		assert.NoError(t, storage.DeleteFile(url), url)
	}
}

func TestLocalStorage_SubPathCannotEscape(t *testing.T) {
	dir := t.TempDir()
	storage, err := NewLocalStorage(dir, "/uploads")
	require.NoError(t, err)

	url, err := storage.SaveFileWithPath(fileHeader(t, "a.jpg", "x"), "../../outside")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "/uploads/outside/"))

	_, err = os.Stat(filepath.Join(dir, "outside", filepath.Base(url)))
	assert.NoError(t, err)
}
