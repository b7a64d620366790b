package app

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.trai.ch/muse/internal/adapters/config"
	"go.trai.ch/muse/internal/core/domain"
	"go.trai.ch/zerr"
)

// StateOptions configuration for the State method.
type StateOptions struct {
	// ConfigPath pins the configuration file instead of discovering it
	// from the working directory.
	ConfigPath string
}

// State renders the persisted pipeline state to w.
func (a *App) State(ctx context.Context, w io.Writer, opts StateOptions) error {
	if opts.ConfigPath != "" {
		ctx = config.WithPath(ctx, opts.ConfigPath)
	}

	rt, err := a.runtime(ctx)
	if err != nil {
		return zerr.Wrap(err, "failed to assemble pipeline runtime")
	}

	doc, err := rt.Store.Load()
	if err != nil {
		return err
	}

	renderState(w, rt.Pipeline, doc)
	return nil
}

// renderState writes a deterministic text rendering of the state
// document. Entries are sorted and paths print relative to the pipeline
// root, so the output is stable regardless of how the file was written.
func renderState(w io.Writer, pipeline *domain.Pipeline, doc *domain.StateDocument) {
	rel := func(path string) string {
		r, err := filepath.Rel(pipeline.Root, path)
		if err != nil || strings.HasPrefix(r, "..") {
			return path
		}
		return r
	}

	_, _ = fmt.Fprintf(w, "pipeline: %s\n", pipeline.Root)

	if doc == nil {
		_, _ = fmt.Fprintln(w, "no state recorded yet")
		return
	}

	if !doc.SessionStart.IsZero() {
		_, _ = fmt.Fprintf(w, "session started: %s\n", doc.SessionStart.UTC().Format(time.RFC3339))
	}

	assocs := append([]domain.AssociationDoc(nil), doc.Associations...)
	sort.Slice(assocs, func(i, j int) bool { return assocs[i].Image < assocs[j].Image })
	_, _ = fmt.Fprintf(w, "\nassociations (%d):\n", len(assocs))
	for _, assoc := range assocs {
		_, _ = fmt.Fprintf(w, "  %s -> %s\n", rel(assoc.Image), rel(assoc.Model))
	}

	selected := append([]string(nil), doc.Selected...)
	sort.Strings(selected)
	_, _ = fmt.Fprintf(w, "\nselected (%d):\n", len(selected))
	for _, path := range selected {
		_, _ = fmt.Fprintf(w, "  %s\n", rel(path))
	}

	textured := append([]string(nil), doc.Textured...)
	sort.Strings(textured)
	_, _ = fmt.Fprintf(w, "\ntextured (%d):\n", len(textured))
	for _, path := range textured {
		_, _ = fmt.Fprintf(w, "  %s\n", rel(path))
	}
}
