package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/keshon/datastore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStorage(t *testing.T) (*Storage, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "datastore.json")
	s, err := New(context.Background(), path)
	require.NoError(t, err)
	return s, path
}

func TestFetchEmptyHistory(t *testing.T) {
	s, _ := newStorage(t)
	defer s.Close()

	history, err := s.FetchCommandHistory("g1")
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestAppendCommandToHistory(t *testing.T) {
	s, _ := newStorage(t)
	defer s.Close()

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, s.AppendCommandToHistory("g1", CommandHistoryRecord{UserID: "u1", Command: "play", Param: "some song", Datetime: now}))
	require.NoError(t, s.AppendCommandToHistory("g1", CommandHistoryRecord{UserID: "u2", Command: "skip", Datetime: now}))
	require.NoError(t, s.AppendCommandToHistory("g2", CommandHistoryRecord{UserID: "u3", Command: "stop", Datetime: now}))

	history, err := s.FetchCommandHistory("g1")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "play", history[0].Command)
	assert.Equal(t, "some song", history[0].Param)
	assert.Equal(t, "skip", history[1].Command)
	assert.True(t, history[0].Datetime.Equal(now))
}

func TestHistoryIsTrimmed(t *testing.T) {
	s, _ := newStorage(t)
	defer s.Close()

	for i := 0; i < commandHistoryLimit+5; i++ {
		require.NoError(t, s.AppendCommandToHistory("g1", CommandHistoryRecord{Command: fmt.Sprintf("c%d", i)}))
	}

	history, err := s.FetchCommandHistory("g1")
	require.NoError(t, err)
	require.Len(t, history, commandHistoryLimit)
	assert.Equal(t, "c5", history[0].Command)
}

func TestHistoryPersists(t *testing.T) {
	s, path := newStorage(t)
	require.NoError(t, s.AppendCommandToHistory("g1", CommandHistoryRecord{Command: "queue"}))
	require.NoError(t, s.Close())

	reopened, err := New(context.Background(), path)
	require.NoError(t, err)
	defer reopened.Close()

	history, err := reopened.FetchCommandHistory("g1")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "queue", history[0].Command)
}

func TestCloseReturnsWhileParentContextLive(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s, err := New(ctx, filepath.Join(t.TempDir(), "datastore.json"))
	require.NoError(t, err)
	require.NoError(t, s.AppendCommandToHistory("g1", CommandHistoryRecord{Command: "play"}))

	done := make(chan error, 1)
	go func() { done <- s.Close() }()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Close did not return")
	}

	err = s.AppendCommandToHistory("g1", CommandHistoryRecord{Command: "skip"})
	assert.True(t, errors.Is(err, datastore.ErrClosed))
}

func TestCorruptRecordSurfaces(t *testing.T) {
	path := filepath.Join(t.TempDir(), "datastore.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"g1": {"cmd_history": "nope"}}`), 0o644))

	s, err := New(context.Background(), path)
	require.NoError(t, err)
	defer s.Close()

	_, err = s.FetchCommandHistory("g1")
	assert.Error(t, err)
}
