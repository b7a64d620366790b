package app_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/grindlemire/graft"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/muse/internal/adapters/config"
	"go.trai.ch/muse/internal/app"
	"go.trai.ch/muse/internal/core/domain"
	_ "go.trai.ch/muse/internal/wiring" // Register providers
)

func TestAppWiring(t *testing.T) {
	// Components must resolve without a muse.yaml anywhere in sight:
	// version and help output work in unconfigured directories.
	components, _, err := graft.ExecuteFor[*app.Components](context.Background())
	require.NoError(t, err)
	require.NotNil(t, components)
	require.NotNil(t, components.App)
	require.NotNil(t, components.Logger)
}

func TestRuntimeWiring(t *testing.T) {
	root := t.TempDir()
	musefile := []byte(`version: "1"
watches:
  - name: images
    dir: images
    patterns: ["*.png"]
    kind: image
  - name: models
    dir: models
    patterns: ["*.glb"]
    kind: model
`)
	configPath := filepath.Join(root, domain.ConfigFileName)
	require.NoError(t, os.WriteFile(configPath, musefile, domain.FilePerm))
	require.NoError(t, os.Mkdir(filepath.Join(root, "images"), domain.DirPerm))
	require.NoError(t, os.Mkdir(filepath.Join(root, "models"), domain.DirPerm))

	ctx := config.WithPath(context.Background(), configPath)
	rt, _, err := graft.ExecuteFor[*app.Runtime](ctx)
	require.NoError(t, err)
	require.NotNil(t, rt)
	defer func() {
		require.NoError(t, rt.Watcher.Stop())
	}()

	require.NotNil(t, rt.Engine)
	require.NotNil(t, rt.Store)
	assert.Len(t, rt.Pipeline.Watches, 2)
	assert.True(t, filepath.IsAbs(rt.Pipeline.Root))
}
