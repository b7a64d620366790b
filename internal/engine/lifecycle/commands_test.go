package lifecycle_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/muse/internal/core/domain"
	"go.trai.ch/muse/internal/core/ports"
	"go.trai.ch/muse/internal/engine/lifecycle"
	"go.uber.org/mock/gomock"
)

func TestEngine_UnknownPathsFailFast(t *testing.T) {
	e, _ := setupEngineTest(t)
	startEngine(t, e)
	ctx := context.Background()
	ghost := "/project/images/ghost.png"

	_, err := e.Toggle(ctx, ghost)
	require.ErrorIs(t, err, domain.ErrAssetNotFound)

	err = e.SetSelected(ctx, ghost, true)
	require.ErrorIs(t, err, domain.ErrAssetNotFound)

	err = e.MarkTextured(ctx, ghost)
	require.ErrorIs(t, err, domain.ErrAssetNotFound)

	err = e.Link(ctx, ghost, "/project/models/ghost.glb")
	require.ErrorIs(t, err, domain.ErrAssetNotFound)
}

func TestEngine_SetSelectedPersistsOnlyChanges(t *testing.T) {
	e, m := setupEngineTest(t)
	startEngine(t, e)
	ctx := context.Background()

	img := imageAsset("/project/images/render.png", time.Now())
	discover(e, m, img)

	// Select, redundant select, deselect: two real changes.
	m.store.EXPECT().Save(gomock.Any()).Return(nil).Times(2)
	require.NoError(t, e.SetSelected(ctx, img.Path, true))
	require.NoError(t, e.SetSelected(ctx, img.Path, true))
	require.NoError(t, e.SetSelected(ctx, img.Path, false))

	objects, err := e.UnifiedObjects(ctx)
	require.NoError(t, err)
	assert.Empty(t, objects)
}

func TestEngine_MarkTexturedIsPermanent(t *testing.T) {
	e, m := setupEngineTest(t)
	startEngine(t, e)
	ctx := context.Background()

	mdl := modelAsset("/project/models/statue.glb", time.Now())
	discover(e, m, mdl)

	m.store.EXPECT().Save(gomock.Any()).Return(nil).Times(2)
	require.NoError(t, e.MarkTextured(ctx, mdl.Path))
	require.NoError(t, e.MarkTextured(ctx, mdl.Path))

	require.NoError(t, e.SetSelected(ctx, mdl.Path, true))
	objects, err := e.UnifiedObjects(ctx)
	require.NoError(t, err)
	require.Len(t, objects, 1)
	assert.Equal(t, domain.StageTextured, objects[0].Stage)
	assert.Empty(t, objects[0].Image)
}

func TestEngine_PipelineProgression(t *testing.T) {
	e, m := setupEngineTest(t)
	base := time.Now()
	img := imageAsset("/project/images/castle.png", base)
	mdl := modelAsset("/project/models/castle.glb", base.Add(time.Minute))
	m.listener.EXPECT().OnAssetDiscovered(gomock.Any(), gomock.Any()).Times(2)
	m.listener.EXPECT().OnAssociationChanged(img.Path, mdl.Path).Times(1)
	m.listener.EXPECT().OnSelectionChanged(gomock.Any()).Times(3)
	e.AddListener(m.listener)
	startEngine(t, e)
	ctx := context.Background()
	m.store.EXPECT().Save(gomock.Any()).Return(nil).Times(3)

	// An unselected discovery produces no objects.
	discover(e, m, img)
	objects, err := e.UnifiedObjects(ctx)
	require.NoError(t, err)
	require.Empty(t, objects)

	selected, err := e.Toggle(ctx, img.Path)
	require.NoError(t, err)
	require.True(t, selected)

	objects, err = e.UnifiedObjects(ctx)
	require.NoError(t, err)
	require.Len(t, objects, 1)
	assert.Equal(t, domain.StageImageOnly, objects[0].Stage)

	// The model autolinks and is pulled into the selection.
	discover(e, m, mdl)
	objects, err = e.UnifiedObjects(ctx)
	require.NoError(t, err)
	require.Len(t, objects, 1)
	assert.Equal(t, "castle", objects[0].Name)
	assert.Equal(t, img.Path, objects[0].Image)
	assert.Equal(t, mdl.Path, objects[0].Model)
	assert.Equal(t, domain.StageHasModel, objects[0].Stage)

	require.NoError(t, e.MarkTextured(ctx, mdl.Path))
	objects, err = e.UnifiedObjects(ctx)
	require.NoError(t, err)
	require.Len(t, objects, 1)
	assert.Equal(t, domain.StageTextured, objects[0].Stage)
}

func TestEngine_ResetSessionIsMonotonic(t *testing.T) {
	e, m := setupEngineTest(t)
	m.listener.EXPECT().OnAssetDiscovered(gomock.Any(), domain.SessionHistorical).Times(1)
	e.AddListener(m.listener)
	startEngine(t, e)
	ctx := context.Background()

	grant, err := e.Acquire("/project/models/old.glb", true)
	require.NoError(t, err)
	require.Equal(t, domain.SessionCurrent, grant.Label)
	require.Equal(t, 1, e.Stats().Pool.Session)

	next := time.Now().Add(time.Hour)
	m.store.EXPECT().Save(gomock.Any()).Return(nil).Times(1)
	require.NoError(t, e.ResetSession(ctx, next))

	// The old grant survives the reset but no longer counts against the
	// session quota, and files from before the boundary are historical.
	assert.Equal(t, 0, e.Stats().Pool.Session)
	assert.Equal(t, 1, e.Stats().Pool.InUse)
	discover(e, m, imageAsset("/project/images/before.png", time.Now()))
	_, err = e.Assets(ctx)
	require.NoError(t, err)

	err = e.ResetSession(ctx, next.Add(-30*time.Minute))
	require.ErrorIs(t, err, domain.ErrSessionResetOutOfOrder)
}

func TestEngine_LinkExplicit(t *testing.T) {
	t.Run("Links Image To Model", func(t *testing.T) {
		e, m := setupEngineTest(t)
		base := time.Now()
		img := imageAsset("/project/images/castle.png", base)
		mdl := modelAsset("/project/models/tower.glb", base.Add(time.Minute))
		m.listener.EXPECT().OnAssetDiscovered(gomock.Any(), gomock.Any()).Times(2)
		m.listener.EXPECT().OnAssociationChanged(img.Path, mdl.Path).Times(1)
		e.AddListener(m.listener)
		startEngine(t, e)
		ctx := context.Background()

		// Stems differ, so only an explicit link can pair them.
		discover(e, m, img)
		discover(e, m, mdl)

		m.store.EXPECT().Save(gomock.Any()).Return(nil).Times(1)
		require.NoError(t, e.Link(ctx, img.Path, mdl.Path))
		assert.Equal(t, uint64(0), e.Stats().Autolinks)
	})

	t.Run("Rejects Mismatched Kinds", func(t *testing.T) {
		e, m := setupEngineTest(t)
		startEngine(t, e)
		ctx := context.Background()

		base := time.Now()
		one := imageAsset("/project/images/one.png", base)
		two := imageAsset("/project/images/two.png", base)
		discover(e, m, one)
		discover(e, m, two)

		err := e.Link(ctx, one.Path, two.Path)
		require.ErrorIs(t, err, domain.ErrInvalidLink)
	})

	t.Run("Relink Steals The Model", func(t *testing.T) {
		e, m := setupEngineTest(t)
		base := time.Now()
		first := imageAsset("/project/images/first.png", base)
		second := imageAsset("/project/images/second.png", base)
		mdl := modelAsset("/project/models/shared.glb", base.Add(time.Minute))
		m.listener.EXPECT().OnAssetDiscovered(gomock.Any(), gomock.Any()).Times(3)
		m.listener.EXPECT().OnAssociationChanged(first.Path, mdl.Path).Times(1)
		m.listener.EXPECT().OnAssociationChanged(second.Path, mdl.Path).Times(1)
		e.AddListener(m.listener)
		startEngine(t, e)
		ctx := context.Background()

		discover(e, m, first)
		discover(e, m, second)
		discover(e, m, mdl)

		m.store.EXPECT().Save(gomock.Any()).Return(nil).Times(2)
		require.NoError(t, e.Link(ctx, first.Path, mdl.Path))
		require.NoError(t, e.Link(ctx, second.Path, mdl.Path))

		// Only the latest owner renders with the model.
		m.store.EXPECT().Save(gomock.Any()).Return(nil).Times(2)
		m.listener.EXPECT().OnSelectionChanged(gomock.Any()).Times(2)
		require.NoError(t, e.SetSelected(ctx, first.Path, true))
		require.NoError(t, e.SetSelected(ctx, second.Path, true))
		objects, err := e.UnifiedObjects(ctx)
		require.NoError(t, err)
		require.Len(t, objects, 2)
		assert.Empty(t, objects[0].Model)
		assert.Equal(t, mdl.Path, objects[1].Model)
	})
}

func TestEngine_AutoDetectSweepsUnlinkedModels(t *testing.T) {
	e, m := setupEngineTest(t)
	base := time.Now()
	plain := imageAsset("/project/images/statue.png", base)
	final := imageAsset("/project/images/statue_final.png", base)
	mdl := modelAsset("/project/models/statue_final.glb", base.Add(time.Minute))
	m.listener.EXPECT().OnAssetDiscovered(gomock.Any(), gomock.Any()).Times(3)
	m.listener.EXPECT().OnAssociationChanged(final.Path, mdl.Path).Times(1)
	e.AddListener(m.listener)
	startEngine(t, e)
	ctx := context.Background()

	// Two candidate images keep the model unlinked on discovery.
	discover(e, m, plain)
	discover(e, m, final)
	discover(e, m, mdl)

	// Removing one candidate makes the match unambiguous for the sweep.
	e.Inbox() <- ports.WatchEvent{Path: plain.Path, Op: ports.OpRemove, Kind: domain.KindImage}

	m.store.EXPECT().Save(gomock.Any()).Return(nil).Times(1)
	linked, err := e.AutoDetect(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, linked)
	assert.Equal(t, uint64(1), e.Stats().Autolinks)

	linked, err = e.AutoDetect(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, linked)
}

func TestEngine_CleanupMissingPrunesDeadState(t *testing.T) {
	m := newEngineMocks(t)
	img := "/project/images/gone.png"
	mdl := "/project/models/gone.glb"
	m.store.EXPECT().Load().Return(&domain.StateDocument{
		Version:      domain.StateVersion,
		SessionStart: time.Now().Add(-time.Hour),
		Associations: []domain.AssociationDoc{{Image: img, Model: mdl}},
		Selected:     []string{img},
		Textured:     []string{mdl},
	}, nil)
	e, err := lifecycle.New(testPipeline(), m.scanner, m.store, m.logger, m.tracer)
	require.NoError(t, err)
	m.listener.EXPECT().OnSelectionChanged(gomock.Len(0)).Times(1)
	e.AddListener(m.listener)
	startEngine(t, e)
	ctx := context.Background()

	// Neither path was rediscovered, so everything restored is stale.
	m.store.EXPECT().Save(gomock.Any()).Return(nil).Times(1)
	removed, err := e.CleanupMissing(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	removed, err = e.CleanupMissing(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, removed)
}

func TestEngine_AcquireDelegatesToPool(t *testing.T) {
	e, _ := setupEngineTest(t)

	current, err := e.Acquire("/project/models/castle.glb", true)
	require.NoError(t, err)
	assert.Equal(t, domain.SessionCurrent, current.Label)

	historical, err := e.Acquire("/project/models/relic.glb", false)
	require.NoError(t, err)
	assert.Equal(t, domain.SessionHistorical, historical.Label)

	stats := e.Stats()
	assert.Equal(t, 2, stats.Pool.InUse)
	assert.Equal(t, 1, stats.Pool.Session)

	assert.True(t, e.TouchGrant(current.Handle))
	require.NoError(t, e.Release(historical.Handle))
	assert.Equal(t, 1, e.Stats().Pool.InUse)

	err = e.Release(historical.Handle)
	require.ErrorIs(t, err, domain.ErrHandleNotFound)
}

func TestEngine_AcquireEvictsHistoricalWhenFull(t *testing.T) {
	e, _ := setupEngineTest(t)

	// Fill the pool with historical grants, then demand a current one.
	for i := range 4 {
		_, err := e.Acquire(fmt.Sprintf("/project/models/old%d.glb", i), false)
		require.NoError(t, err)
	}
	_, err := e.Acquire("/project/models/old4.glb", false)
	require.ErrorIs(t, err, domain.ErrPoolExhausted)

	_, err = e.Acquire("/project/models/fresh.glb", true)
	require.NoError(t, err)

	stats := e.Stats()
	assert.Equal(t, uint64(1), stats.Evictions)
	assert.Equal(t, uint64(1), stats.Pool.Evicted)
	assert.Equal(t, 4, stats.Pool.InUse)
}
