package app_test

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/require"
	"go.trai.ch/muse/internal/app"
	"go.trai.ch/muse/internal/core/domain"
)

// stateApp wires an App to a runtime that only carries the pipeline and
// the store, which is all the state command touches.
func stateApp(m appTestMocks) *app.App {
	pipeline := testPipeline("/project")
	return app.New(m.logger).WithRuntimeProvider(func(context.Context) (*app.Runtime, error) {
		return &app.Runtime{Pipeline: pipeline, Store: m.store}, nil
	})
}

func TestStateRendersPersistedDocument(t *testing.T) {
	m := newAppMocks(t)
	m.store.EXPECT().Load().Return(&domain.StateDocument{
		Version:      domain.StateVersion,
		SessionStart: time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC),
		Associations: []domain.AssociationDoc{
			{Image: "/project/images/tower.png", Model: "/project/models/tower_v2.glb"},
			{Image: "/project/images/castle.png", Model: "/project/models/castle_v1.glb"},
		},
		Selected: []string{"/project/images/tower.png", "/project/images/castle.png"},
		Textured: []string{"/project/models/castle_v1.glb"},
	}, nil)

	buf := new(bytes.Buffer)
	require.NoError(t, stateApp(m).State(context.Background(), buf, app.StateOptions{}))

	g := goldie.New(t)
	g.Assert(t, "state_full", buf.Bytes())
}

func TestStateRendersFreshWorkspace(t *testing.T) {
	m := newAppMocks(t)
	m.store.EXPECT().Load().Return(nil, nil)

	buf := new(bytes.Buffer)
	require.NoError(t, stateApp(m).State(context.Background(), buf, app.StateOptions{}))

	g := goldie.New(t)
	g.Assert(t, "state_empty", buf.Bytes())
}

func TestStateSurfacesLoadFailure(t *testing.T) {
	m := newAppMocks(t)
	wantErr := errors.New("state file is not valid TOML")
	m.store.EXPECT().Load().Return(nil, wantErr)

	err := stateApp(m).State(context.Background(), new(bytes.Buffer), app.StateOptions{})
	require.ErrorIs(t, err, wantErr)
}
