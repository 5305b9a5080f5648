package workspace

import (
	"fmt"
	"slices"

	"github.com/aretw0/swallow/pkg/domain"
	"github.com/aretw0/swallow/pkg/syntax"
	"github.com/google/uuid"
)

// Project is a named compilation unit.
type Project struct {
	ID         domain.ProjectID
	Name       string
	References []domain.ProjectID
	Documents  []domain.DocumentID
}

// Document is one source file owned by exactly one project.
type Document struct {
	ID      domain.DocumentID
	Path    string
	Project domain.ProjectID
	Root    *syntax.File
	Text    string
}

// ProjectSpec describes a project when building a snapshot.
type ProjectSpec struct {
	Name       string
	References []string
	Documents  []*syntax.File
}

// Workspace is an immutable snapshot of projects and documents.
type Workspace struct {
	id        string
	locator   string
	projects  []*Project
	byProject map[domain.ProjectID]*Project
	documents map[domain.DocumentID]*Document
	order     []domain.DocumentID
}

// New builds a snapshot. Document ids are their paths; project ids are their
// names. Every file is formatted so its spans match the rendered text.
func New(locator string, specs ...ProjectSpec) (*Workspace, error) {
	ws := &Workspace{
		id:        uuid.NewString(),
		locator:   locator,
		byProject: make(map[domain.ProjectID]*Project, len(specs)),
		documents: make(map[domain.DocumentID]*Document),
	}
	for _, spec := range specs {
		pid := domain.ProjectID(spec.Name)
		if spec.Name == "" {
			return nil, fmt.Errorf("%w: project without a name", domain.ErrInvalidWorkspace)
		}
		if _, dup := ws.byProject[pid]; dup {
			return nil, fmt.Errorf("%w: duplicate project %q", domain.ErrInvalidWorkspace, spec.Name)
		}
		p := &Project{ID: pid, Name: spec.Name}
		for _, ref := range spec.References {
			p.References = append(p.References, domain.ProjectID(ref))
		}
		for _, f := range spec.Documents {
			did := domain.DocumentID(f.Path)
			if f.Path == "" {
				return nil, fmt.Errorf("%w: document without a path in project %q", domain.ErrInvalidWorkspace, spec.Name)
			}
			if prev, dup := ws.documents[did]; dup {
				return nil, fmt.Errorf("%w: document %q belongs to %q and %q",
					domain.ErrInvalidWorkspace, f.Path, prev.Project, pid)
			}
			text := syntax.Format(f)
			ws.documents[did] = &Document{ID: did, Path: f.Path, Project: pid, Root: f, Text: text}
			ws.order = append(ws.order, did)
			p.Documents = append(p.Documents, did)
		}
		ws.projects = append(ws.projects, p)
		ws.byProject[pid] = p
	}
	return ws, nil
}

// ID is unique per snapshot; every commit produces a new one.
func (w *Workspace) ID() string { return w.id }

// Locator is the value the snapshot was opened from.
func (w *Workspace) Locator() string { return w.locator }

// Projects returns the projects in workspace order.
func (w *Workspace) Projects() []*Project {
	return slices.Clone(w.projects)
}

// Project looks up a project by id.
func (w *Workspace) Project(id domain.ProjectID) (*Project, bool) {
	p, ok := w.byProject[id]
	return p, ok
}

// Documents returns the document ids in workspace order.
func (w *Workspace) Documents() []domain.DocumentID {
	return slices.Clone(w.order)
}

// Document looks up a document by id.
func (w *Workspace) Document(id domain.DocumentID) (*Document, bool) {
	d, ok := w.documents[id]
	return d, ok
}

// ProjectOf returns the project owning the document.
func (w *Workspace) ProjectOf(id domain.DocumentID) (*Project, bool) {
	d, ok := w.documents[id]
	if !ok {
		return nil, false
	}
	return w.Project(d.Project)
}

// WithDocumentRoot returns a new snapshot in which the document's root is
// replaced by root. The receiver is left untouched.
func (w *Workspace) WithDocumentRoot(id domain.DocumentID, root *syntax.File) (*Workspace, error) {
	old, ok := w.documents[id]
	if !ok {
		return nil, fmt.Errorf("document %q: %w", id, domain.ErrNotFound)
	}
	if root.Path == "" {
		root.Path = old.Path
	}
	next := &Workspace{
		id:        uuid.NewString(),
		locator:   w.locator,
		projects:  w.projects,
		byProject: w.byProject,
		documents: make(map[domain.DocumentID]*Document, len(w.documents)),
		order:     w.order,
	}
	for k, v := range w.documents {
		next.documents[k] = v
	}
	text := syntax.Format(root)
	next.documents[id] = &Document{ID: id, Path: old.Path, Project: old.Project, Root: root, Text: text}
	return next, nil
}
