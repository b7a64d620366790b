package app

import (
	"fmt"
	"path/filepath"
	"strings"

	"go.trai.ch/muse/internal/core/domain"
	"go.trai.ch/muse/internal/core/ports"
)

// logListener is the console side of the bridge: discoveries, links and
// the current selection show up as log lines while muse run occupies
// the terminal.
type logListener struct {
	logger ports.Logger
	root   string
}

func newLogListener(logger ports.Logger, root string) *logListener {
	return &logListener{
		logger: logger,
		root:   root,
	}
}

// OnAssetDiscovered implements ports.Listener.
func (l *logListener) OnAssetDiscovered(asset domain.Asset, label domain.SessionLabel) {
	l.logger.Info(fmt.Sprintf("discovered %s %s (%s)", asset.Kind, l.rel(asset.Path), label))
}

// OnAssociationChanged implements ports.Listener.
func (l *logListener) OnAssociationChanged(imagePath, modelPath string) {
	l.logger.Info(fmt.Sprintf("linked %s -> %s", l.rel(imagePath), l.rel(modelPath)))
}

// OnSelectionChanged implements ports.Listener.
func (l *logListener) OnSelectionChanged(objects []domain.UnifiedObject) {
	if len(objects) == 0 {
		l.logger.Info("selection empty")
		return
	}

	parts := make([]string, 0, len(objects))
	for _, obj := range objects {
		parts = append(parts, fmt.Sprintf("%s[%s]", obj.Name, obj.Stage))
	}
	l.logger.Info("selection: " + strings.Join(parts, " "))
}

// rel shortens a path against the pipeline root for log output.
func (l *logListener) rel(path string) string {
	rel, err := filepath.Rel(l.root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return rel
}
