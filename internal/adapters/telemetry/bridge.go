package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.trai.ch/muse/internal/core/ports"
)

// Bridge implements sdktrace.SpanProcessor to report span completions to
// the logger. With the debug log redirected into the workspace this gives
// a per-operation timing trail without a separate exporter.
type Bridge struct {
	logger ports.Logger
}

// NewBridge returns a new Bridge.
func NewBridge(logger ports.Logger) *Bridge {
	return &Bridge{
		logger: logger,
	}
}

// OnStart is called when a span starts. Starts are not reported; the
// completion line carries the duration.
func (b *Bridge) OnStart(_ context.Context, _ sdktrace.ReadWriteSpan) {}

// OnEnd is called when a span ends.
func (b *Bridge) OnEnd(s sdktrace.ReadOnlySpan) {
	if b.logger == nil {
		return
	}

	sc := s.SpanContext()
	if !sc.IsValid() {
		return
	}

	elapsed := s.EndTime().Sub(s.StartTime()).Round(time.Microsecond)

	if s.Status().Code == codes.Error {
		desc := s.Status().Description
		if desc == "" {
			desc = "operation failed"
		}
		b.logger.Warn(fmt.Sprintf("%s failed after %s: %s", s.Name(), elapsed, desc))
		return
	}

	b.logger.Info(fmt.Sprintf("%s completed in %s", s.Name(), elapsed))
}

// ForceFlush does nothing.
func (b *Bridge) ForceFlush(_ context.Context) error {
	return nil
}

// Shutdown does nothing.
func (b *Bridge) Shutdown(_ context.Context) error {
	return nil
}
