// Package app implements the application layer for muse.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/grindlemire/graft"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.trai.ch/muse/internal/adapters/config"
	"go.trai.ch/muse/internal/adapters/telemetry"
	"go.trai.ch/muse/internal/core/domain"
	"go.trai.ch/muse/internal/core/ports"
	"go.trai.ch/muse/internal/engine/lifecycle"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// Runtime bundles the components that need a loaded pipeline. It is
// assembled per command rather than at process start so that version and
// help output work in directories without a muse.yaml.
type Runtime struct {
	Pipeline *domain.Pipeline
	Engine   *lifecycle.Engine
	Watcher  ports.Watcher
	Store    ports.StateStore
}

// RuntimeProvider is a function that assembles the pipeline runtime.
type RuntimeProvider func(ctx context.Context) (*Runtime, error)

// App represents the main application logic.
type App struct {
	logger  ports.Logger
	runtime RuntimeProvider
}

// New creates a new App instance. The runtime is resolved through the
// dependency graph on first use.
func New(log ports.Logger) *App {
	return &App{
		logger: log,
		runtime: func(ctx context.Context) (*Runtime, error) {
			rt, _, err := graft.ExecuteFor[*Runtime](ctx)
			return rt, err
		},
	}
}

// WithRuntimeProvider replaces how the pipeline runtime is assembled.
// This is primarily used for testing to inject mock components.
func (a *App) WithRuntimeProvider(provider RuntimeProvider) *App {
	a.runtime = provider
	return a
}

// RunOptions configuration for the Run method.
type RunOptions struct {
	// ConfigPath pins the configuration file instead of discovering it
	// from the working directory.
	ConfigPath string
	// Once reconciles the pipeline with the directory contents and
	// exits instead of watching.
	Once bool
	// Quiet moves log output into the workspace debug log so the
	// terminal carries only the event stream.
	Quiet bool
}

// Run feeds file system changes through the lifecycle engine: a scan of
// every watch first, then watcher events until the context is
// cancelled. With Once set it stops after the scans.
func (a *App) Run(ctx context.Context, opts RunOptions) error {
	if opts.ConfigPath != "" {
		ctx = config.WithPath(ctx, opts.ConfigPath)
	}

	rt, err := a.runtime(ctx)
	if err != nil {
		return zerr.Wrap(err, "failed to assemble pipeline runtime")
	}

	if opts.Quiet {
		logFile, redirectErr := a.redirectLogs(rt.Pipeline.Root)
		if redirectErr != nil {
			return redirectErr
		}
		if logFile != nil {
			defer func() {
				_ = logFile.Close()
			}()
		}
	}

	// Report span completions through the logger so every engine
	// operation leaves a timing trail.
	setupOTel(telemetry.NewBridge(a.logger))

	rt.Engine.AddListener(newLogListener(a.logger, rt.Pipeline.Root))

	if err := rt.Engine.Start(ctx); err != nil {
		return err
	}

	if opts.Once {
		err = a.prime(ctx, rt)
	} else {
		err = a.watch(ctx, rt)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	stats := rt.Engine.Stats()
	a.logger.Info(fmt.Sprintf(
		"shutting down: %d events, %d assets discovered, %d scans, %d links, %d saves",
		stats.Events, stats.Discovered, stats.Scans, stats.Autolinks, stats.Persists,
	))
	return nil
}

// watch primes the views and then pumps watcher events into the engine
// until ctx is cancelled.
func (a *App) watch(ctx context.Context, rt *Runtime) error {
	g, ctx := errgroup.WithContext(ctx)

	// Watcher routine: forward file system events into the engine inbox.
	g.Go(func() error {
		if err := rt.Watcher.Start(ctx); err != nil {
			return zerr.Wrap(err, "failed to start watcher")
		}
		defer func() {
			_ = rt.Watcher.Stop()
		}()

		inbox := rt.Engine.Inbox()
		for event := range rt.Watcher.Events() {
			select {
			case inbox <- event:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	})

	// Priming routine: scan every view once so files that existed before
	// the watcher came up still enter the registry, then drop state
	// entries whose files are gone.
	g.Go(func() error {
		return a.prime(ctx, rt)
	})

	return g.Wait()
}

// prime reconciles the engine with what is actually on disk.
func (a *App) prime(ctx context.Context, rt *Runtime) error {
	for _, watch := range rt.Pipeline.Watches {
		if _, err := rt.Engine.Activate(ctx, watch.Name); err != nil {
			return err
		}
	}

	removed, err := rt.Engine.CleanupMissing(ctx)
	if err != nil {
		return err
	}
	if removed > 0 {
		a.logger.Info(fmt.Sprintf("pruned %d stale entries from persisted state", removed))
	}
	return nil
}

// redirectLogs moves log output into the workspace debug log. Returns
// the open log file, or nil if the logger has no switchable output.
func (a *App) redirectLogs(root string) (*os.File, error) {
	switcher, ok := a.logger.(interface{ SetOutput(w io.Writer) })
	if !ok {
		return nil, nil
	}

	path := filepath.Join(root, domain.DefaultDebugLogPath())
	if err := os.MkdirAll(filepath.Dir(path), domain.DirPerm); err != nil {
		return nil, zerr.Wrap(err, "failed to create workspace directory")
	}
	logFile, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, domain.FilePerm)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to open debug log")
	}

	switcher.SetOutput(logFile)
	return logFile, nil
}

// setupOTel configures the OpenTelemetry SDK with the logger bridge.
func setupOTel(bridge *telemetry.Bridge) {
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSpanProcessor(bridge),
	)

	otel.SetTracerProvider(tp)
}
