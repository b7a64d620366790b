package commands_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/muse/cmd/muse/commands"
	"go.trai.ch/muse/internal/app"
	"go.trai.ch/muse/internal/build"
)

type mockApp struct {
	runFunc   func(ctx context.Context, opts app.RunOptions) error
	stateFunc func(ctx context.Context, w io.Writer, opts app.StateOptions) error
}

func (m *mockApp) Run(ctx context.Context, opts app.RunOptions) error {
	if m.runFunc != nil {
		return m.runFunc(ctx, opts)
	}
	return nil
}

func (m *mockApp) State(ctx context.Context, w io.Writer, opts app.StateOptions) error {
	if m.stateFunc != nil {
		return m.stateFunc(ctx, w, opts)
	}
	return nil
}

func TestCommands_Run(t *testing.T) {
	t.Run("wires flags correctly", func(t *testing.T) {
		var capturedOpts app.RunOptions
		called := false

		mock := &mockApp{
			runFunc: func(_ context.Context, opts app.RunOptions) error {
				capturedOpts = opts
				called = true
				return nil
			},
		}

		cli := commands.New(mock)
		cli.SetArgs([]string{"run", "--config", "alt/muse.yaml", "--once", "--quiet"})

		err := cli.Execute(context.Background())
		require.NoError(t, err)
		assert.True(t, called)
		assert.Equal(t, "alt/muse.yaml", capturedOpts.ConfigPath)
		assert.True(t, capturedOpts.Once)
		assert.True(t, capturedOpts.Quiet)
	})

	t.Run("returns error on run failure", func(t *testing.T) {
		mock := &mockApp{
			runFunc: func(_ context.Context, _ app.RunOptions) error {
				return errors.New("simulated error")
			},
		}

		cli := commands.New(mock)
		cli.SetArgs([]string{"run"})
		// Silence output to avoid polluting test logs
		cli.SetOutput(new(bytes.Buffer), new(bytes.Buffer))

		err := cli.Execute(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "simulated error")
	})

	t.Run("rejects positional arguments", func(t *testing.T) {
		mock := &mockApp{
			runFunc: func(_ context.Context, _ app.RunOptions) error {
				panic("should not be called")
			},
		}

		cli := commands.New(mock)
		cli.SetOutput(new(bytes.Buffer), new(bytes.Buffer))
		cli.SetArgs([]string{"run", "stray"})

		err := cli.Execute(context.Background())
		require.Error(t, err)
	})
}

func TestCommands_State(t *testing.T) {
	t.Run("writes rendering to stdout", func(t *testing.T) {
		var capturedOpts app.StateOptions
		mock := &mockApp{
			stateFunc: func(_ context.Context, w io.Writer, opts app.StateOptions) error {
				capturedOpts = opts
				_, err := io.WriteString(w, "pipeline: /project\n")
				return err
			},
		}

		cli := commands.New(mock)
		buf := new(bytes.Buffer)
		cli.SetOutput(buf, new(bytes.Buffer))
		cli.SetArgs([]string{"state", "--config", "alt/muse.yaml"})

		err := cli.Execute(context.Background())
		require.NoError(t, err)
		assert.Contains(t, buf.String(), "pipeline: /project")
		assert.Equal(t, "alt/muse.yaml", capturedOpts.ConfigPath)
	})

	t.Run("returns error on state failure", func(t *testing.T) {
		mock := &mockApp{
			stateFunc: func(_ context.Context, _ io.Writer, _ app.StateOptions) error {
				return errors.New("state unreadable")
			},
		}

		cli := commands.New(mock)
		cli.SetOutput(new(bytes.Buffer), new(bytes.Buffer))
		cli.SetArgs([]string{"state"})

		err := cli.Execute(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "state unreadable")
	})
}

func TestCommands_Version(t *testing.T) {
	mock := &mockApp{}
	cli := commands.New(mock)

	buf := new(bytes.Buffer)
	cli.SetOutput(buf, buf)
	cli.SetArgs([]string{"version"})

	err := cli.Execute(context.Background())
	require.NoError(t, err)

	assert.Contains(t, buf.String(), build.Version)
}
