package store

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/XertroV/tasks/cmdstack/internal/config"
	"github.com/XertroV/tasks/cmdstack/internal/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "stacks"))
	require.NoError(t, err)
	return s
}

func TestNewRequiresDataDir(t *testing.T) {
	t.Parallel()

	_, err := New("  ")
	assert.Error(t, err)
}

func TestReadMissingFileIsEmpty(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	for _, namespace := range []string{"", "build"} {
		stack, err := s.Read(namespace)
		require.NoError(t, err)
		assert.True(t, stack.IsEmpty())
	}
}

func TestWriteReadRoundTrip(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	stack := &models.Stack{Entries: []models.Entry{
		models.Pending{Task: models.NewTask("echo", []string{"one"}, "/tmp", map[string]string{"K": "V"})},
		models.Running{
			Task:  models.NewTask("make", []string{"all"}, "/src", nil),
			RunID: models.RunID{RunEpochSeconds: 1700000000, RunGroup: 42, Sequence: 0},
		},
		models.Pending{Task: models.NewTask("ls", []string{}, "/", nil)},
	}}

	require.NoError(t, s.Write("ns", stack))
	loaded, err := s.Read("ns")
	require.NoError(t, err)
	assert.Equal(t, stack, loaded)

	path, err := s.Path("ns")
	require.NoError(t, err)
	assert.Equal(t, "cmd_stack_ns_v1.json", filepath.Base(path))

	other, err := s.Read("")
	require.NoError(t, err)
	assert.True(t, other.IsEmpty(), "namespaces must not share state")
}

func TestWriteEmptyDeletesFile(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	stack := &models.Stack{}
	stack.PushNext(models.NewTask("true", nil, "/", nil))
	require.NoError(t, s.Write("", stack))

	path, err := s.Path("")
	require.NoError(t, err)
	_, err = os.Stat(path)
	require.NoError(t, err)

	require.NoError(t, s.Write("", &models.Stack{}))
	_, err = os.Stat(path)
	assert.True(t, errors.Is(err, os.ErrNotExist))

	// Writing an empty stack with no file present is a no-op.
	require.NoError(t, s.Delete(""))
	entries, err := os.ReadDir(s.DataDir())
	require.NoError(t, err)
	assert.Empty(t, entries, "no temp files or empty stack files should remain")
}

func TestReadCorruptFileFails(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	path, err := s.Path("bad")
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(`[{"Pending":`), 0o644))

	_, err = s.Read("bad")
	var corrupt *CorruptStateError
	require.True(t, errors.As(err, &corrupt), "error = %v", err)
	assert.Equal(t, path, corrupt.Path)

	require.NoError(t, os.WriteFile(path, []byte(`[] []`), 0o644))
	_, err = s.Read("bad")
	assert.True(t, errors.As(err, &corrupt))
}

func TestInvalidNamespaceRejected(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	_, err := s.Read("no/slashes")
	var nsErr *config.InvalidNamespaceError
	assert.True(t, errors.As(err, &nsErr))

	err = s.Write("-bad", &models.Stack{})
	assert.True(t, errors.As(err, &nsErr))
}
