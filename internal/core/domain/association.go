package domain

import (
	"sort"
	"strings"
	"time"

	"go.trai.ch/zerr"
)

// AssociationPair is one image to model link.
type AssociationPair struct {
	Image string
	Model string
}

// Associations maintains the image-to-model links. Every link is strictly
// one-to-one: an image has at most one model and a model has at most one
// image. Linking an already linked endpoint replaces the old link.
type Associations struct {
	imageToModel map[string]string
	modelToImage map[string]string
}

// NewAssociations returns an empty association set.
func NewAssociations() *Associations {
	return &Associations{
		imageToModel: make(map[string]string),
		modelToImage: make(map[string]string),
	}
}

// Link associates an image with a model. Existing links on either endpoint
// are replaced so the one-to-one invariant holds.
func (a *Associations) Link(imagePath, modelPath string) error {
	if imagePath == modelPath {
		return zerr.With(ErrSelfLink, "path", imagePath)
	}
	if old, ok := a.imageToModel[imagePath]; ok {
		delete(a.modelToImage, old)
	}
	if old, ok := a.modelToImage[modelPath]; ok {
		delete(a.imageToModel, old)
	}
	a.imageToModel[imagePath] = modelPath
	a.modelToImage[modelPath] = imagePath
	return nil
}

// Unlink removes any link involving path, whether it is the image or the
// model side. It reports whether a link was removed.
func (a *Associations) Unlink(path string) bool {
	if model, ok := a.imageToModel[path]; ok {
		delete(a.imageToModel, path)
		delete(a.modelToImage, model)
		return true
	}
	if image, ok := a.modelToImage[path]; ok {
		delete(a.modelToImage, path)
		delete(a.imageToModel, image)
		return true
	}
	return false
}

// CleanupMissing removes every link where either endpoint no longer
// satisfies known. Links with both endpoints known are left untouched.
// It returns the number of links removed.
func (a *Associations) CleanupMissing(known func(path string) bool) int {
	removed := 0
	for image, model := range a.imageToModel {
		if known(image) && known(model) {
			continue
		}
		delete(a.imageToModel, image)
		delete(a.modelToImage, model)
		removed++
	}
	return removed
}

// ModelFor returns the model linked to an image.
func (a *Associations) ModelFor(imagePath string) (string, bool) {
	model, ok := a.imageToModel[imagePath]
	return model, ok
}

// ImageFor returns the image linked to a model.
func (a *Associations) ImageFor(modelPath string) (string, bool) {
	image, ok := a.modelToImage[modelPath]
	return image, ok
}

// Len returns the number of links.
func (a *Associations) Len() int {
	return len(a.imageToModel)
}

// Pairs returns all links sorted by image path.
func (a *Associations) Pairs() []AssociationPair {
	out := make([]AssociationPair, 0, len(a.imageToModel))
	for image, model := range a.imageToModel {
		out = append(out, AssociationPair{Image: image, Model: model})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Image < out[j].Image })
	return out
}

// StemsMatch reports whether a model stem plausibly derives from an image
// stem. The stems match when they are equal or when either stem extends
// the other with an underscore or dash delimited suffix, as produced by
// reconstruction tools that append variant tags to the source name.
func StemsMatch(imageStem, modelStem string) bool {
	if imageStem == "" || modelStem == "" {
		return false
	}
	if imageStem == modelStem {
		return true
	}
	if rest, ok := strings.CutPrefix(modelStem, imageStem); ok {
		return strings.HasPrefix(rest, "_") || strings.HasPrefix(rest, "-")
	}
	if rest, ok := strings.CutPrefix(imageStem, modelStem); ok {
		return strings.HasPrefix(rest, "_") || strings.HasPrefix(rest, "-")
	}
	return false
}

// AutolinkCandidate picks the model a freshly discovered image should link
// to, or the image for a freshly discovered model. It returns a candidate
// only when exactly one unlinked asset on the other side matches by stem
// and the model was modified within the window after the image; any
// ambiguity yields no candidate.
func (a *Associations) AutolinkCandidate(anchor Asset, pool []Asset, window time.Duration) (Asset, bool) {
	var (
		found Asset
		count int
	)
	anchorStem := anchor.Stem()
	for _, candidate := range pool {
		if candidate.Path == anchor.Path {
			continue
		}
		// Links always pair an image with a model.
		if (anchor.Kind == KindImage) == (candidate.Kind == KindImage) {
			continue
		}
		if a.linked(candidate.Path) {
			continue
		}
		if !StemsMatch(anchorStem, candidate.Stem()) {
			continue
		}
		image, model := anchor, candidate
		if anchor.Kind != KindImage {
			image, model = candidate, anchor
		}
		if window > 0 {
			delta := model.ModifiedAt.Sub(image.ModifiedAt)
			if delta < 0 || delta > window {
				continue
			}
		}
		found = candidate
		count++
		if count > 1 {
			return Asset{}, false
		}
	}
	return found, count == 1
}

func (a *Associations) linked(path string) bool {
	if _, ok := a.imageToModel[path]; ok {
		return true
	}
	_, ok := a.modelToImage[path]
	return ok
}
