package tokenstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFile_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token")
	s := NewFile(path)

	_, ok := s.Get()
	assert.False(t, ok, "no token before the first Set")

	require.NoError(t, s.Set("tok-1"))

	got, ok := s.Get()
	require.True(t, ok)
	assert.Equal(t, "tok-1", got)

	// another handle on the same path sees the same slot
	got, ok = NewFile(path).Get()
	require.True(t, ok)
	assert.Equal(t, "tok-1", got)
}

func TestFile_SetCreatesMissingDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "token")
	s := NewFile(path)

	require.NoError(t, s.Set("tok"))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestFile_GetTrimsWhitespace(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token")
	require.NoError(t, os.WriteFile(path, []byte("  tok-1\n"), 0o600))

	got, ok := NewFile(path).Get()
	require.True(t, ok)
	assert.Equal(t, "tok-1", got)
}

func TestFile_EmptyFileMeansNoToken(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token")
	require.NoError(t, os.WriteFile(path, []byte("\n"), 0o600))

	_, ok := NewFile(path).Get()
	assert.False(t, ok)
}

func TestFile_ClearMissingIsNoOp(t *testing.T) {
	s := NewFile(filepath.Join(t.TempDir(), "token"))
	require.NoError(t, s.Clear())
}

func TestFile_ClearRemovesToken(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token")
	s := NewFile(path)
	require.NoError(t, s.Set("tok"))

	require.NoError(t, s.Clear())

	_, ok := s.Get()
	assert.False(t, ok)
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestFile_WatchSignalsExternalWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token")
	s := NewFile(path)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := s.Watch(ctx)
	require.NoError(t, err)

	// a different process writing the same slot
	require.NoError(t, NewFile(path).Set("tok-external"))

	select {
	case _, ok := <-ch:
		require.True(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("expected a change signal")
	}

	got, ok := s.Get()
	require.True(t, ok)
	assert.Equal(t, "tok-external", got)
}

func TestFile_WatchSignalsRemoval(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token")
	s := NewFile(path)
	require.NoError(t, s.Set("tok"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := s.Watch(ctx)
	require.NoError(t, err)

	require.NoError(t, NewFile(path).Clear())

	select {
	case _, ok := <-ch:
		require.True(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("expected a change signal")
	}
}

func TestFile_WatchClosesOnCancel(t *testing.T) {
	s := NewFile(filepath.Join(t.TempDir(), "token"))

	ctx, cancel := context.WithCancel(context.Background())
	ch, err := s.Watch(ctx)
	require.NoError(t, err)

	cancel()

	select {
	case _, ok := <-ch:
		assert.False(t, ok, "channel must close after cancellation")
	case <-time.After(2 * time.Second):
		t.Fatal("expected the channel to close")
	}
}

func TestMemory_RoundTrip(t *testing.T) {
	s := NewMemory()

	_, ok := s.Get()
	assert.False(t, ok)

	require.NoError(t, s.Set("tok"))
	got, ok := s.Get()
	require.True(t, ok)
	assert.Equal(t, "tok", got)

	require.NoError(t, s.Clear())
	_, ok = s.Get()
	assert.False(t, ok)
}
