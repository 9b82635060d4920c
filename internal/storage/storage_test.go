package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStageAndPromote(t *testing.T) {
	store, err := New(t.TempDir())
	require.NoError(t, err)

	blob, err := store.Stage(strings.NewReader("hello world"), "clip.mp4")
	require.NoError(t, err)

	assert.Equal(t, int64(11), blob.Size)
	assert.True(t, strings.HasSuffix(blob.Filename, ".mp4"))
	assert.NotEqual(t, "clip.mp4", blob.Filename, "stored name must not be the client name")

	// Before promote: only the staging artifact exists.
	_, err = os.Stat(blob.Path)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(blob.Path + stagingSuffix)
	assert.NoError(t, err)

	require.NoError(t, store.Promote(blob))

	file, err := store.Open(blob.Filename)
	require.NoError(t, err)
	defer file.Close()

	data, err := os.ReadFile(blob.Path)
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(data))

	size, err := store.Size(blob.Filename)
	require.NoError(t, err)
	assert.Equal(t, int64(11), size)
}

func TestDiscardRemovesStagingArtifact(t *testing.T) {
	store, err := New(t.TempDir())
	require.NoError(t, err)

	blob, err := store.Stage(strings.NewReader("payload"), "clip.webm")
	require.NoError(t, err)

	require.NoError(t, store.Discard(blob))

	_, err = os.Stat(blob.Path + stagingSuffix)
	assert.True(t, os.IsNotExist(err))

	// Discard is idempotent.
	assert.NoError(t, store.Discard(blob))
}

func TestRemove(t *testing.T) {
	store, err := New(t.TempDir())
	require.NoError(t, err)

	blob, err := store.Stage(strings.NewReader("payload"), "clip.mp4")
	require.NoError(t, err)
	require.NoError(t, store.Promote(blob))

	require.NoError(t, store.Remove(blob.Filename))

	_, err = store.Open(blob.Filename)
	assert.Error(t, err)

	// Removing an already-missing blob reports the error to the caller;
	// swallowing it is the service's decision, not storage's.
	assert.Error(t, store.Remove(blob.Filename))
}

func TestResolveRejectsTraversal(t *testing.T) {
	store, err := New(t.TempDir())
	require.NoError(t, err)

	for _, name := range []string{"", ".", "..", "../etc/passwd", "a/b.mp4", "/abs.mp4"} {
		t.Run(name, func(t *testing.T) {
			_, err := store.Open(name)
			assert.Error(t, err)
		})
	}
}

func TestSafeExt(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"movie.mp4", ".mp4"},
		{"MOVIE.MP4", ".mp4"},
		{"clip.webm", ".webm"},
		{"noext", ""},
		{"trailing.", ""},
		{"weird.m p4", ""},
		{"dotted.tar.gz", ".gz"},
		{"evil.sh;rm", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, safeExt(tt.in), tt.in)
	}
}

func TestNewCreatesRoot(t *testing.T) {
	root := filepath.Join(t.TempDir(), "nested", "uploads")
	store, err := New(root)
	require.NoError(t, err)

	info, err := os.Stat(store.Root())
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
