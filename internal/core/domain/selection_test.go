package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/muse/internal/core/domain"
)

func TestSelection_Toggle(t *testing.T) {
	sel := domain.NewSelection()

	assert.True(t, sel.Toggle("/w/cat.png"))
	assert.True(t, sel.IsSelected("/w/cat.png"))

	assert.False(t, sel.Toggle("/w/cat.png"))
	assert.False(t, sel.IsSelected("/w/cat.png"))
}

func TestSelection_SetSelectedReplaces(t *testing.T) {
	sel := domain.NewSelection()
	sel.Select("/w/a.png")
	sel.Select("/w/b.png")

	sel.SetSelected([]string{"/w/c.png"})
	assert.Equal(t, []string{"/w/c.png"}, sel.Selected())
	assert.False(t, sel.IsSelected("/w/a.png"))
}

func TestSelection_TexturedIsPermanent(t *testing.T) {
	sel := domain.NewSelection()

	assert.True(t, sel.MarkTextured("/w/cat.glb"))
	assert.False(t, sel.MarkTextured("/w/cat.glb"))
	assert.True(t, sel.IsTextured("/w/cat.glb"))
	assert.Equal(t, []string{"/w/cat.glb"}, sel.Textured())
}

func TestSelection_RemovePath(t *testing.T) {
	sel := domain.NewSelection()
	sel.Select("/w/cat.png")
	sel.MarkTextured("/w/cat.glb")

	assert.True(t, sel.RemovePath("/w/cat.png"))
	assert.True(t, sel.RemovePath("/w/cat.glb"))
	assert.False(t, sel.RemovePath("/w/cat.png"))
	assert.Empty(t, sel.Selected())
	assert.Empty(t, sel.Textured())
}

func TestStageString(t *testing.T) {
	assert.Equal(t, "image-only", domain.StageImageOnly.String())
	assert.Equal(t, "has-model", domain.StageHasModel.String())
	assert.Equal(t, "textured", domain.StageTextured.String())
	assert.Equal(t, "unknown", domain.Stage(42).String())
}

func buildWorld(t *testing.T) (*domain.Registry, *domain.Associations, *domain.Selection) {
	t.Helper()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	reg := domain.NewRegistry()
	reg.Add(domain.Asset{Path: "/w/images/cat.png", Kind: domain.KindImage, ModifiedAt: now})
	reg.Add(domain.Asset{Path: "/w/images/dog.png", Kind: domain.KindImage, ModifiedAt: now})
	reg.Add(domain.Asset{Path: "/w/models/cat_mesh.glb", Kind: domain.KindModel, ModifiedAt: now})
	reg.Add(domain.Asset{Path: "/w/models/bird.glb", Kind: domain.KindModel, ModifiedAt: now})

	assoc := domain.NewAssociations()
	require.NoError(t, assoc.Link("/w/images/cat.png", "/w/models/cat_mesh.glb"))

	sel := domain.NewSelection()
	return reg, assoc, sel
}

func TestBuildUnifiedObjects_Ordering(t *testing.T) {
	reg, assoc, sel := buildWorld(t)
	sel.Select("/w/images/dog.png")
	sel.Select("/w/images/cat.png")
	sel.Select("/w/models/bird.glb")

	objects := domain.BuildUnifiedObjects(reg, assoc, sel)
	require.Len(t, objects, 3)

	// Selected images first in registry insertion order, then the
	// standalone selected model.
	assert.Equal(t, "cat", objects[0].Name)
	assert.Equal(t, "/w/models/cat_mesh.glb", objects[0].Model)
	assert.Equal(t, domain.StageHasModel, objects[0].Stage)

	assert.Equal(t, "dog", objects[1].Name)
	assert.Empty(t, objects[1].Model)
	assert.Equal(t, domain.StageImageOnly, objects[1].Stage)

	assert.Equal(t, "bird", objects[2].Name)
	assert.Empty(t, objects[2].Image)
	assert.Equal(t, domain.StageHasModel, objects[2].Stage)
}

func TestBuildUnifiedObjects_UnselectedExcluded(t *testing.T) {
	reg, assoc, sel := buildWorld(t)

	// Nothing selected, nothing listed.
	require.Empty(t, domain.BuildUnifiedObjects(reg, assoc, sel))

	// A selected model whose source image is unselected shows up
	// standalone rather than under the image lineage.
	sel.Select("/w/models/cat_mesh.glb")
	objects := domain.BuildUnifiedObjects(reg, assoc, sel)
	require.Len(t, objects, 1)
	assert.Equal(t, "cat_mesh", objects[0].Name)
	assert.Empty(t, objects[0].Image)
	assert.Equal(t, domain.StageHasModel, objects[0].Stage)
}

func TestBuildUnifiedObjects_LineageDeduplicated(t *testing.T) {
	reg, assoc, sel := buildWorld(t)
	sel.Select("/w/images/cat.png")
	sel.Select("/w/models/cat_mesh.glb")

	// Image and model of one lineage both selected: one row, keyed by
	// the image, carrying the model.
	objects := domain.BuildUnifiedObjects(reg, assoc, sel)
	require.Len(t, objects, 1)
	assert.Equal(t, "cat", objects[0].Name)
	assert.Equal(t, "/w/images/cat.png", objects[0].Image)
	assert.Equal(t, "/w/models/cat_mesh.glb", objects[0].Model)
	assert.Equal(t, domain.StageHasModel, objects[0].Stage)
}

func TestBuildUnifiedObjects_TexturedStage(t *testing.T) {
	reg, assoc, sel := buildWorld(t)
	sel.Select("/w/images/cat.png")
	sel.Select("/w/models/bird.glb")
	sel.MarkTextured("/w/models/cat_mesh.glb")
	sel.MarkTextured("/w/models/bird.glb")

	objects := domain.BuildUnifiedObjects(reg, assoc, sel)
	require.Len(t, objects, 2)
	assert.Equal(t, domain.StageTextured, objects[0].Stage)
	assert.Equal(t, domain.StageTextured, objects[1].Stage)
}

func TestBuildUnifiedObjects_MissingModelFallsBack(t *testing.T) {
	reg, assoc, sel := buildWorld(t)
	sel.Select("/w/images/cat.png")

	// The association survives but the model left the registry; the
	// object degrades to image-only instead of pointing at a ghost.
	reg.Remove("/w/models/cat_mesh.glb")

	objects := domain.BuildUnifiedObjects(reg, assoc, sel)
	require.Len(t, objects, 1)
	assert.Equal(t, domain.StageImageOnly, objects[0].Stage)
	assert.Empty(t, objects[0].Model)
}
