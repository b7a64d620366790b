package domain

import (
	"path/filepath"
	"strings"
	"time"

	"go.trai.ch/zerr"
)

// AssetKind classifies a discovered file into one of the pipeline roles.
type AssetKind string

const (
	// KindImage is a source image produced by a generation step.
	KindImage AssetKind = "image"
	// KindModel is a reconstructed 3D model derived from an image.
	KindModel AssetKind = "model"
	// KindTexturedModel is a model that has completed the texturing step.
	KindTexturedModel AssetKind = "textured-model"
)

// ParseAssetKind converts a string to an AssetKind.
// It returns ErrUnknownAssetKind for anything outside the known set.
func ParseAssetKind(s string) (AssetKind, error) {
	switch AssetKind(strings.ToLower(strings.TrimSpace(s))) {
	case KindImage:
		return KindImage, nil
	case KindModel:
		return KindModel, nil
	case KindTexturedModel:
		return KindTexturedModel, nil
	default:
		return "", zerr.With(ErrUnknownAssetKind, "kind", s)
	}
}

// Asset is a single discovered file. The path is the identity; everything
// else describes the file as last observed on disk.
type Asset struct {
	// Path is the absolute path of the file on disk.
	Path string

	// Kind is the pipeline role assigned by the watch that discovered the file.
	Kind AssetKind

	// ModifiedAt is the file modification time as last observed.
	ModifiedAt time.Time

	// Fingerprint is a content hash of the file as last observed.
	// Zero means the content was never hashed.
	Fingerprint uint64
}

// Name returns the base name of the asset path.
func (a Asset) Name() string {
	return filepath.Base(a.Path)
}

// Stem returns the lowercased base name without its extension.
// It is the unit the association heuristic compares.
func (a Asset) Stem() string {
	return Stem(a.Path)
}

// Stem returns the lowercased base name of path without its extension.
func Stem(path string) string {
	base := filepath.Base(path)
	return strings.ToLower(strings.TrimSuffix(base, filepath.Ext(base)))
}
