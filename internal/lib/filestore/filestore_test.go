package filestore

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"обычное имя сохраняется", "report.pdf", "report.pdf"},
		{"компоненты пути отбрасываются", "../../etc/passwd", "passwd"},
		{"управляющие символы убираются", "a\x00b\nc.txt", "abc.txt"},
		{"пустое имя заменяется", "   ", "file"},
		{"точки заменяются", "..", "file"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeFilename(tt.input))
		})
	}
}

func TestSaveOpenRemove(t *testing.T) {
	store, err := New(t.TempDir())
	require.NoError(t, err)

	relPath, written, err := store.Save("doc-1", "report.pdf", strings.NewReader("content"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("doc-1", "report.pdf"), relPath)
	assert.Equal(t, int64(len("content")), written)

	f, err := store.Open(relPath)
	require.NoError(t, err)
	data, err := os.ReadFile(f.Name())
	require.NoError(t, err)
	require.NoError(t, f.Close())
	assert.Equal(t, "content", string(data))

	require.NoError(t, store.Remove("doc-1"))
	_, err = store.Open(relPath)
	assert.Error(t, err)
}

func TestOpenEscapesRejected(t *testing.T) {
	root := t.TempDir()
	store, err := New(filepath.Join(root, "blobs"))
	require.NoError(t, err)

	outside := filepath.Join(root, "secret.txt")
	require.NoError(t, os.WriteFile(outside, []byte("secret"), 0o600))

	_, err = store.Open("../secret.txt")
	assert.Error(t, err)
}
