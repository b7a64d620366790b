package domain

import (
	"time"

	"go.trai.ch/zerr"
)

// StateVersion is the schema version of the persisted state document.
const StateVersion = 1

// AssociationDoc is one persisted image to model link.
type AssociationDoc struct {
	Image string `toml:"image"`
	Model string `toml:"model"`
}

// StateDocument is the on-disk form of everything that must survive a
// restart: the session boundary, the links, the selection and the
// texturing marks. Discovered assets are deliberately absent; the
// registry is rebuilt from disk on startup.
type StateDocument struct {
	Version      int              `toml:"version"`
	SessionStart time.Time        `toml:"session_start,omitempty"`
	Associations []AssociationDoc `toml:"associations,omitempty"`
	Selected     []string         `toml:"selected,omitempty"`
	Textured     []string         `toml:"textured,omitempty"`
}

// SnapshotState captures the persistent slice of the pipeline state.
func SnapshotState(session *Session, assoc *Associations, sel *Selection) StateDocument {
	doc := StateDocument{
		Version:  StateVersion,
		Selected: sel.Selected(),
		Textured: sel.Textured(),
	}
	if session != nil {
		doc.SessionStart = session.StartedAt()
	}
	for _, pair := range assoc.Pairs() {
		doc.Associations = append(doc.Associations, AssociationDoc{
			Image: pair.Image,
			Model: pair.Model,
		})
	}
	return doc
}

// Apply restores the associations and selection from the document.
// The session boundary is not touched here; callers read SessionStart
// when constructing the session.
func (d StateDocument) Apply(assoc *Associations, sel *Selection) error {
	for _, pair := range d.Associations {
		if err := assoc.Link(pair.Image, pair.Model); err != nil {
			return zerr.Wrap(err, "failed to restore association")
		}
	}
	sel.SetSelected(d.Selected)
	for _, path := range d.Textured {
		sel.MarkTextured(path)
	}
	return nil
}
