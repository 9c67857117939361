package document

import (
	"context"

	"github.com/kemalcalak/Resume-Builder/internal/database"
)

// Draft is an editing session over one document. It holds the last loaded
// tree plus the pending changes, and only reaches the database on Commit.
// A Draft is not safe for concurrent use.
type Draft struct {
	store      *Store
	ownerID    string
	externalID string

	doc     *database.Document
	pending SaveRequest
	dirty   bool
}

// LoadDraft reads the owner's document and opens a draft over it.
func LoadDraft(ctx context.Context, store *Store, ownerID, externalID string) (*Draft, error) {
	doc, err := store.GetDocument(ctx, ownerID, externalID)
	if err != nil {
		return nil, err
	}
	return &Draft{store: store, ownerID: ownerID, externalID: externalID, doc: doc}, nil
}

// Document returns the tree as last loaded or committed, without pending changes.
func (d *Draft) Document() *database.Document { return d.doc }

// Pending returns the changes a Commit would send.
func (d *Draft) Pending() SaveRequest { return d.pending }

// Dirty reports whether there are uncommitted changes.
func (d *Draft) Dirty() bool { return d.dirty }

func (d *Draft) SetTitle(v string)      { d.pending.Title = &v; d.dirty = true }
func (d *Draft) SetStatus(v string)     { d.pending.Status = &v; d.dirty = true }
func (d *Draft) SetSummary(v string)    { d.pending.Summary = &v; d.dirty = true }
func (d *Draft) SetThemeColor(v string) { d.pending.ThemeColor = &v; d.dirty = true }
func (d *Draft) SetThumbnail(v string)  { d.pending.Thumbnail = &v; d.dirty = true }

func (d *Draft) SetPersonalInfo(p PersonalInfoPatch) {
	d.pending.PersonalInfo = &p
	d.dirty = true
}

// SetExperiences replaces the experience list. A nil argument clears the collection.
func (d *Draft) SetExperiences(v []database.Experience) {
	d.pending.Experiences = nonNil(v)
	d.dirty = true
}

// SetEducations replaces the education list. A nil argument clears the collection.
func (d *Draft) SetEducations(v []database.Education) {
	d.pending.Educations = nonNil(v)
	d.dirty = true
}

// SetProjects replaces the project list. A nil argument clears the collection.
func (d *Draft) SetProjects(v []database.Project) {
	d.pending.Projects = nonNil(v)
	d.dirty = true
}

// SetCertificates replaces the certificate list. A nil argument clears the collection.
func (d *Draft) SetCertificates(v []database.Certificate) {
	d.pending.Certificates = nonNil(v)
	d.dirty = true
}

// Advance moves the wizard to the next step.
func (d *Draft) Advance() {
	next := d.doc.CurrentPosition + 1
	if d.pending.CurrentPosition != nil {
		next = *d.pending.CurrentPosition + 1
	}
	d.pending.CurrentPosition = &next
	d.dirty = true
}

// Commit saves the pending changes and reloads the tree. When the save fails
// the pending changes are kept so the caller can retry.
func (d *Draft) Commit(ctx context.Context) (*SaveResult, error) {
	if !d.dirty {
		return &SaveResult{}, nil
	}

	res, err := d.store.Save(ctx, d.ownerID, d.externalID, d.pending)
	if err != nil {
		return nil, err
	}
	d.Discard()

	doc, err := d.store.GetDocument(ctx, d.ownerID, d.externalID)
	if err != nil {
		return res, err
	}
	d.doc = doc
	return res, nil
}

// Discard drops the pending changes.
func (d *Draft) Discard() {
	d.pending = SaveRequest{}
	d.dirty = false
}

func nonNil[T any](v []T) []T {
	if v == nil {
		return []T{}
	}
	return v
}
