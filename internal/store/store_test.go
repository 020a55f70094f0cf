package store_test

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corraldev/corral/internal/apierror"
	"github.com/corraldev/corral/internal/logging"
	"github.com/corraldev/corral/internal/store"
)

func newStore(t *testing.T) (*store.Store, string) {
	t.Helper()

	dir := t.TempDir()

	s, err := store.New(dir, logging.New(io.Discard, false))
	require.NoError(t, err)

	return s, dir
}

func TestLifecycle(t *testing.T) {
	s, _ := newStore(t)

	require.NoError(t, s.Create("test"))
	assert.True(t, apierror.IsCode(
		s.Create("test"),
		apierror.ContainerAlreadyExists,
	))

	require.NoError(t, s.Find("test"))
	assert.True(t, apierror.IsCode(
		s.Find("missing"),
		apierror.ContainerDoesNotExist,
	))

	assert.Equal(t, []string{"test"}, s.List())

	require.NoError(t, s.Destroy("test"))
	assert.True(t, apierror.IsCode(
		s.Destroy("test"),
		apierror.ContainerDoesNotExist,
	))
	assert.Empty(t, s.List())
}

func TestSetGetProperty(t *testing.T) {
	s, _ := newStore(t)

	require.NoError(t, s.Create("test"))

	require.NoError(t, s.SetProperty("test", "cpu_limit", "0.9c"))

	value, err := s.GetProperty("test", "cpu_limit")
	require.NoError(t, err)
	assert.Equal(t, "0.9c", value)

	// Unset keys resolve to defaults.
	value, err = s.GetProperty("test", "net")
	require.NoError(t, err)
	assert.Equal(t, "inherited", value)

	value, err = s.GetProperty("test", "absolute_name")
	require.NoError(t, err)
	assert.Equal(t, "/corral/test", value)

	_, err = s.GetProperty("test", "no_such_knob")
	assert.True(t, apierror.IsCode(err, apierror.InvalidProperty))

	err = s.SetProperty("missing", "cpu_limit", "0.9c")
	assert.True(t, apierror.IsCode(err, apierror.ContainerDoesNotExist))
}

func TestLoadRestoresEntities(t *testing.T) {
	s, dir := newStore(t)

	require.NoError(t, s.Create("test"))
	require.NoError(t, s.SetProperty("test", "memory_limit", "268435456"))
	require.NoError(t, s.SetProperty("test", "respawn", "False"))

	// A second store over the same directory sees the same state, the way
	// a restarted daemon would.
	restored, err := store.New(dir, logging.New(io.Discard, false))
	require.NoError(t, err)
	require.NoError(t, restored.Load())

	require.NoError(t, restored.Find("test"))

	value, err := restored.GetProperty("test", "memory_limit")
	require.NoError(t, err)
	assert.Equal(t, "268435456", value)

	value, err = restored.GetProperty("test", "respawn")
	require.NoError(t, err)
	assert.Equal(t, "false", value)
}

func TestLoadRejectsCorruptState(t *testing.T) {
	s, dir := newStore(t)

	require.NoError(t, os.WriteFile(
		filepath.Join(dir, "test.json"),
		[]byte("not json"),
		0o644,
	))

	assert.Error(t, s.Load())
}

func TestDiscard(t *testing.T) {
	s, dir := newStore(t)

	require.NoError(t, s.Create("one"))
	require.NoError(t, s.Create("two"))

	require.NoError(t, s.Discard())

	assert.Empty(t, s.List())

	dirents, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, dirents)
}

func TestDestroyRemovesStateFile(t *testing.T) {
	s, dir := newStore(t)

	require.NoError(t, s.Create("test"))

	_, err := os.Stat(filepath.Join(dir, "test.json"))
	require.NoError(t, err)

	require.NoError(t, s.Destroy("test"))

	_, err = os.Stat(filepath.Join(dir, "test.json"))
	assert.True(t, os.IsNotExist(err))
}
