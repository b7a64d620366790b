package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/muse/internal/core/domain"
)

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	statePath := filepath.Join(t.TempDir(), ".muse", "state.toml")
	cfg := viper.New()
	cfg.Set(statePathKey, statePath)

	s, err := NewStore(cfg)
	require.NoError(t, err)
	return s, statePath
}

func TestStoreRoundTrip(t *testing.T) {
	t.Parallel()

	s, _ := newTestStore(t)

	doc := domain.StateDocument{
		SessionStart: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
		Associations: []domain.AssociationDoc{
			{Image: "/w/images/cat.png", Model: "/w/models/cat.glb"},
		},
		Selected: []string{"/w/images/cat.png"},
		Textured: []string{"/w/models/cat.glb"},
	}
	require.NoError(t, s.Save(doc))

	got, err := s.Load()
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Equal(t, domain.StateVersion, got.Version)
	assert.True(t, got.SessionStart.Equal(doc.SessionStart))
	assert.Equal(t, doc.Associations, got.Associations)
	assert.Equal(t, doc.Selected, got.Selected)
	assert.Equal(t, doc.Textured, got.Textured)
}

func TestStoreLoadMissingFile(t *testing.T) {
	t.Parallel()

	s, _ := newTestStore(t)

	got, err := s.Load()
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestStoreLoadCorruptFile(t *testing.T) {
	t.Parallel()

	s, statePath := newTestStore(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(statePath), domain.DirPerm))
	require.NoError(t, os.WriteFile(statePath, []byte("not = [valid"), domain.FilePerm))

	_, err := s.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to decode state document")
}

func TestStoreLoadNewerVersionRejected(t *testing.T) {
	t.Parallel()

	s, statePath := newTestStore(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(statePath), domain.DirPerm))
	require.NoError(t, os.WriteFile(statePath, []byte("version = 99\n"), domain.FilePerm))

	_, err := s.Load()
	require.ErrorIs(t, err, domain.ErrStateDecodeFailed)
}

func TestStoreSaveCreatesDirAndLeavesNoTemp(t *testing.T) {
	t.Parallel()

	s, statePath := newTestStore(t)
	require.NoError(t, s.Save(domain.StateDocument{}))

	info, err := os.Stat(statePath)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(domain.PrivateFilePerm), info.Mode().Perm())

	entries, err := os.ReadDir(filepath.Dir(statePath))
	require.NoError(t, err)
	require.Len(t, entries, 1, "temp files must not survive a save")
	assert.Equal(t, "state.toml", entries[0].Name())
}

func TestStoreSaveOverwrites(t *testing.T) {
	t.Parallel()

	s, _ := newTestStore(t)
	require.NoError(t, s.Save(domain.StateDocument{Selected: []string{"/w/a.png"}}))
	require.NoError(t, s.Save(domain.StateDocument{Selected: []string{"/w/b.png"}}))

	got, err := s.Load()
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, []string{"/w/b.png"}, got.Selected)
}

func TestStoreSetPath(t *testing.T) {
	t.Parallel()

	s, _ := newTestStore(t)
	next := filepath.Join(t.TempDir(), "state.toml")

	require.NoError(t, s.SetPath(next))
	assert.Equal(t, next, s.Path())

	// An empty path keeps the current binding.
	require.NoError(t, s.SetPath(""))
	assert.Equal(t, next, s.Path())
}

func TestStoreSetPathRespectsUserOverride(t *testing.T) {
	t.Parallel()

	pinned := filepath.Join(t.TempDir(), "pinned.toml")
	s := &Store{statePath: pinned, overridden: true, mu: lockForPath(pinned)}

	require.NoError(t, s.SetPath(filepath.Join(t.TempDir(), "other.toml")))
	assert.Equal(t, pinned, s.Path())
}

func TestLockForPathIsShared(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "state.toml")
	assert.Same(t, lockForPath(path), lockForPath(path))
}
