package domain

import "sort"

// Stage is how far a unified object has progressed through the pipeline.
// Objects only move forward: once a model exists the object never returns
// to image-only, and texturing is never undone.
type Stage int

const (
	// StageImageOnly is an object with a selected image and no model yet.
	StageImageOnly Stage = iota
	// StageHasModel is an object with a reconstructed model.
	StageHasModel
	// StageTextured is an object whose model finished texturing.
	StageTextured
)

// String returns the stage label used in listings and the state document.
func (s Stage) String() string {
	switch s {
	case StageImageOnly:
		return "image-only"
	case StageHasModel:
		return "has-model"
	case StageTextured:
		return "textured"
	default:
		return "unknown"
	}
}

// Selection tracks which images the user picked for reconstruction and
// which models have completed texturing.
type Selection struct {
	selected map[string]struct{}
	textured map[string]struct{}
}

// NewSelection returns an empty selection.
func NewSelection() *Selection {
	return &Selection{
		selected: make(map[string]struct{}),
		textured: make(map[string]struct{}),
	}
}

// Toggle flips the selection of an image path and reports whether the
// path is selected after the call.
func (s *Selection) Toggle(path string) bool {
	if _, ok := s.selected[path]; ok {
		delete(s.selected, path)
		return false
	}
	s.selected[path] = struct{}{}
	return true
}

// Select marks a path as selected. It reports whether the set changed.
func (s *Selection) Select(path string) bool {
	if _, ok := s.selected[path]; ok {
		return false
	}
	s.selected[path] = struct{}{}
	return true
}

// Deselect removes a path from the selection. It reports whether the set
// changed.
func (s *Selection) Deselect(path string) bool {
	if _, ok := s.selected[path]; !ok {
		return false
	}
	delete(s.selected, path)
	return true
}

// SetSelected replaces the whole selection.
func (s *Selection) SetSelected(paths []string) {
	s.selected = make(map[string]struct{}, len(paths))
	for _, path := range paths {
		s.selected[path] = struct{}{}
	}
}

// IsSelected reports whether an image path is selected.
func (s *Selection) IsSelected(path string) bool {
	_, ok := s.selected[path]
	return ok
}

// Selected returns the selected paths in sorted order.
func (s *Selection) Selected() []string {
	out := make([]string, 0, len(s.selected))
	for path := range s.selected {
		out = append(out, path)
	}
	sort.Strings(out)
	return out
}

// MarkTextured records that a model completed texturing. Texturing is
// permanent; there is no inverse. It reports whether the set changed.
func (s *Selection) MarkTextured(modelPath string) bool {
	if _, ok := s.textured[modelPath]; ok {
		return false
	}
	s.textured[modelPath] = struct{}{}
	return true
}

// IsTextured reports whether a model path completed texturing.
func (s *Selection) IsTextured(modelPath string) bool {
	_, ok := s.textured[modelPath]
	return ok
}

// Textured returns the textured model paths in sorted order.
func (s *Selection) Textured() []string {
	out := make([]string, 0, len(s.textured))
	for path := range s.textured {
		out = append(out, path)
	}
	sort.Strings(out)
	return out
}

// RemovePath forgets a path from both the selected and textured sets.
// It reports whether anything was removed.
func (s *Selection) RemovePath(path string) bool {
	removed := false
	if _, ok := s.selected[path]; ok {
		delete(s.selected, path)
		removed = true
	}
	if _, ok := s.textured[path]; ok {
		delete(s.textured, path)
		removed = true
	}
	return removed
}

// UnifiedObject is one row of the merged pipeline view: a selected image,
// its model when one is linked, and the derived stage.
type UnifiedObject struct {
	// Name is the display stem of the object.
	Name string
	// Image is the image path, empty for standalone models.
	Image string
	// Model is the model path, empty before reconstruction.
	Model string
	// Stage is the derived pipeline stage.
	Stage Stage
}

// BuildUnifiedObjects merges the registry, associations and selection into
// the single object list the rest of the system renders. Selected images
// come first in registry insertion order, each carrying its linked model;
// a lineage appears once even when both its image and its model are
// selected. Selected models with no selected source image follow, also in
// registry order, as standalone objects.
func BuildUnifiedObjects(reg *Registry, assoc *Associations, sel *Selection) []UnifiedObject {
	var out []UnifiedObject
	claimed := make(map[string]struct{})

	for _, image := range reg.ListByKind(KindImage) {
		if !sel.IsSelected(image.Path) {
			continue
		}
		obj := UnifiedObject{Name: image.Stem(), Image: image.Path}
		if model, ok := assoc.ModelFor(image.Path); ok && reg.Has(model) {
			obj.Model = model
			obj.Stage = modelStage(sel, model)
			claimed[model] = struct{}{}
		} else {
			obj.Stage = StageImageOnly
		}
		out = append(out, obj)
	}

	for _, model := range reg.List() {
		if model.Kind == KindImage || !sel.IsSelected(model.Path) {
			continue
		}
		if _, ok := claimed[model.Path]; ok {
			continue
		}
		out = append(out, UnifiedObject{
			Name:  model.Stem(),
			Model: model.Path,
			Stage: modelStage(sel, model.Path),
		})
	}
	return out
}

func modelStage(sel *Selection, modelPath string) Stage {
	if sel.IsTextured(modelPath) {
		return StageTextured
	}
	return StageHasModel
}
