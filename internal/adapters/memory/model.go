package memory

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/swallow/internal/dto"
	"github.com/aretw0/swallow/internal/logging"
	"github.com/aretw0/swallow/pkg/domain"
	"github.com/aretw0/swallow/pkg/syntax"
	"github.com/aretw0/swallow/pkg/workspace"
)

// Store reads and writes workspace manifests by locator.
type Store interface {
	Read(ctx context.Context, locator string) ([]byte, error)
	// Write persists the manifest and the rendered text of changed documents,
	// keyed by document path.
	Write(ctx context.Context, locator string, manifest []byte, sources map[string]string) error
}

// Model implements ports.CodeModel over workspace manifests.
// Manifests come from registered fixtures first, then from the Store.
type Model struct {
	mu       sync.Mutex
	fixtures map[string][]byte
	baseline map[string]map[domain.DocumentID]string
	store    Store
	cache    *indexCache
	logger   *slog.Logger
}

// Option configures a Model.
type Option func(*Model)

// WithManifest registers an in-memory manifest under locator.
func WithManifest(locator string, data []byte) Option {
	return func(m *Model) {
		m.fixtures[locator] = data
	}
}

// WithStore sets the backing store for locators without a fixture.
func WithStore(store Store) Option {
	return func(m *Model) {
		m.store = store
	}
}

// WithCacheExpiration sets how long a snapshot's index is kept.
func WithCacheExpiration(expiration time.Duration) Option {
	return func(m *Model) {
		m.cache = newIndexCache(expiration, DefaultCleanupInterval)
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Model) {
		m.logger = logger
	}
}

// New creates a Model.
func New(opts ...Option) *Model {
	m := &Model{
		fixtures: make(map[string][]byte),
		baseline: make(map[string]map[domain.DocumentID]string),
		cache:    newIndexCache(DefaultExpiration, DefaultCleanupInterval),
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Model) OpenWorkspace(ctx context.Context, locator string) (*workspace.Workspace, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := m.read(ctx, locator)
	if err != nil {
		return nil, err
	}
	manifest, err := dto.DecodeManifest(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", locator, err)
	}

	specs := make([]workspace.ProjectSpec, 0, len(manifest.Projects))
	for _, p := range manifest.Projects {
		spec := workspace.ProjectSpec{Name: p.Name, References: p.References}
		for _, d := range p.Documents {
			f, err := dto.ToFile(d)
			if err != nil {
				return nil, fmt.Errorf("%s: project %s: %w", locator, p.Name, err)
			}
			spec.Documents = append(spec.Documents, f)
		}
		specs = append(specs, spec)
	}
	ws, err := workspace.New(locator, specs...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", locator, err)
	}

	m.mu.Lock()
	m.baseline[locator] = texts(ws)
	m.mu.Unlock()

	m.logger.Debug("workspace opened", "locator", locator, "snapshot", ws.ID(), "documents", len(ws.Documents()))
	return ws, nil
}

func (m *Model) read(ctx context.Context, locator string) ([]byte, error) {
	m.mu.Lock()
	data, ok := m.fixtures[locator]
	m.mu.Unlock()
	if ok {
		return data, nil
	}
	if m.store == nil {
		return nil, fmt.Errorf("workspace %q: %w", locator, domain.ErrNotFound)
	}
	return m.store.Read(ctx, locator)
}

func texts(ws *workspace.Workspace) map[domain.DocumentID]string {
	out := make(map[domain.DocumentID]string, len(ws.Documents()))
	for _, id := range ws.Documents() {
		doc, _ := ws.Document(id)
		out[id] = doc.Text
	}
	return out
}

func (m *Model) index(ctx context.Context, ws *workspace.Workspace) (*index, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if idx, ok := m.cache.Get(ws.ID()); ok {
		return idx, nil
	}
	start := time.Now()
	idx := buildIndex(ws)
	m.cache.Set(ws.ID(), idx)
	m.logger.Debug("index built",
		"snapshot", ws.ID(),
		"functions", len(idx.functions),
		"types", len(idx.types),
		"duration", time.Since(start),
	)
	return idx, nil
}

func (m *Model) FindFunction(ctx context.Context, ws *workspace.Workspace, descriptor string) (domain.FunctionID, error) {
	idx, err := m.index(ctx, ws)
	if err != nil {
		return "", err
	}
	if _, ok := idx.functions[domain.FunctionID(descriptor)]; ok {
		return domain.FunctionID(descriptor), nil
	}
	ids := idx.descriptors[descriptor]
	switch len(ids) {
	case 1:
		return ids[0], nil
	case 0:
		return "", fmt.Errorf("function %q: %w", descriptor, domain.ErrNotFound)
	default:
		return "", fmt.Errorf("function %q is ambiguous between %v: %w", descriptor, ids, domain.ErrNotFound)
	}
}

func (m *Model) FindReferences(ctx context.Context, ws *workspace.Workspace, id domain.FunctionID) ([]domain.ReferenceLocation, error) {
	idx, err := m.index(ctx, ws)
	if err != nil {
		return nil, err
	}
	if _, ok := idx.functions[id]; !ok {
		return nil, fmt.Errorf("function %s: %w", id, domain.ErrNotFound)
	}
	if locs := idx.ambiguous[id]; len(locs) > 0 {
		return nil, fmt.Errorf("%s: call at %s matches more than one overload: %w", id, locs[0], domain.ErrUnsupportedShape)
	}
	refs := idx.refs[id]
	out := make([]domain.ReferenceLocation, len(refs))
	copy(out, refs)
	return out, nil
}

func (m *Model) EnclosingFunction(ctx context.Context, ws *workspace.Workspace, doc domain.DocumentID, pos domain.Position) (domain.FunctionID, bool, error) {
	idx, err := m.index(ctx, ws)
	if err != nil {
		return "", false, err
	}
	d, ok := ws.Document(doc)
	if !ok {
		return "", false, fmt.Errorf("document %s: %w", doc, domain.ErrNotFound)
	}
	member, _, ok := syntax.EnclosingMember(d.Root, pos)
	if !ok {
		return "", false, nil
	}
	method, ok := member.(*syntax.MethodDecl)
	if !ok || method.Body == nil {
		return "", false, nil
	}
	id, ok := idx.declAt[domain.Location{Document: doc, Span: method.Span}]
	return id, ok, nil
}

func (m *Model) DeclaredSymbol(ctx context.Context, ws *workspace.Workspace, doc domain.DocumentID, node syntax.Node) (domain.FunctionID, bool, error) {
	idx, err := m.index(ctx, ws)
	if err != nil {
		return "", false, err
	}
	id, ok := idx.declAt[domain.Location{Document: doc, Span: node.NodeSpan()}]
	return id, ok, nil
}

func (m *Model) RelatedDeclarations(ctx context.Context, ws *workspace.Workspace, id domain.FunctionID) ([]domain.FunctionID, error) {
	idx, err := m.index(ctx, ws)
	if err != nil {
		return nil, err
	}
	related, ok := idx.related[id]
	if !ok {
		return nil, fmt.Errorf("function %s: %w", id, domain.ErrNotFound)
	}
	out := make([]domain.FunctionID, len(related))
	copy(out, related)
	return out, nil
}

func (m *Model) Function(ctx context.Context, ws *workspace.Workspace, id domain.FunctionID) (domain.FunctionInfo, error) {
	idx, err := m.index(ctx, ws)
	if err != nil {
		return domain.FunctionInfo{}, err
	}
	fn, ok := idx.functions[id]
	if !ok {
		return domain.FunctionInfo{}, fmt.Errorf("function %s: %w", id, domain.ErrNotFound)
	}
	return fn.info, nil
}

func (m *Model) Type(ctx context.Context, ws *workspace.Workspace, name string) (domain.TypeInfo, error) {
	idx, err := m.index(ctx, ws)
	if err != nil {
		return domain.TypeInfo{}, err
	}
	t, ok := idx.types[name]
	if !ok {
		return domain.TypeInfo{}, fmt.Errorf("type %s: %w", name, domain.ErrNotFound)
	}
	return t.info, nil
}

// Compile checks that every base type and interface used by the project is
// declared in the project or in a project it references, directly or not.
// Names declared nowhere in the workspace are treated as external.
func (m *Model) Compile(ctx context.Context, ws *workspace.Workspace, project domain.ProjectID) error {
	if _, err := m.index(ctx, ws); err != nil {
		return err
	}
	p, ok := ws.Project(project)
	if !ok {
		return fmt.Errorf("project %s: %w", project, domain.ErrNotFound)
	}

	declaredIn := make(map[string]map[domain.ProjectID]bool)
	for _, id := range ws.Documents() {
		doc, _ := ws.Document(id)
		for _, t := range doc.Root.Types {
			if declaredIn[t.Name] == nil {
				declaredIn[t.Name] = make(map[domain.ProjectID]bool)
			}
			declaredIn[t.Name][doc.Project] = true
		}
	}
	visible := reachable(ws, project)

	for _, id := range p.Documents {
		doc, _ := ws.Document(id)
		for _, t := range doc.Root.Types {
			for _, super := range append([]string{t.Base}, t.Interfaces...) {
				owners, known := declaredIn[super]
				if super == "" || !known {
					continue
				}
				if !anyVisible(owners, visible) {
					return fmt.Errorf("%s: type %s uses %s from a project %s does not reference: %w",
						id, t.Name, super, project, domain.ErrNotFound)
				}
			}
		}
	}
	return nil
}

func reachable(ws *workspace.Workspace, from domain.ProjectID) map[domain.ProjectID]bool {
	seen := map[domain.ProjectID]bool{from: true}
	queue := []domain.ProjectID{from}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		p, ok := ws.Project(current)
		if !ok {
			continue
		}
		for _, ref := range p.References {
			if !seen[ref] {
				seen[ref] = true
				queue = append(queue, ref)
			}
		}
	}
	return seen
}

func anyVisible(owners, visible map[domain.ProjectID]bool) bool {
	for p := range owners {
		if visible[p] {
			return true
		}
	}
	return false
}

// Commit writes ws back when any document text differs from the snapshot
// last opened or committed under the same locator.
func (m *Model) Commit(ctx context.Context, ws *workspace.Workspace) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	current := texts(ws)

	m.mu.Lock()
	base := m.baseline[ws.Locator()]
	m.mu.Unlock()

	changed := make(map[string]string)
	for _, id := range ws.Documents() {
		if base[id] != current[id] {
			doc, _ := ws.Document(id)
			changed[doc.Path] = doc.Text
		}
	}
	if len(changed) == 0 {
		return false, nil
	}

	data, err := dto.EncodeManifest(ManifestOf(ws))
	if err != nil {
		return false, err
	}

	m.mu.Lock()
	_, fixture := m.fixtures[ws.Locator()]
	m.mu.Unlock()

	switch {
	case fixture:
		m.mu.Lock()
		m.fixtures[ws.Locator()] = data
		m.mu.Unlock()
	case m.store != nil:
		if err := m.store.Write(ctx, ws.Locator(), data, changed); err != nil {
			return false, fmt.Errorf("commit %s: %w", ws.Locator(), err)
		}
	default:
		return false, fmt.Errorf("workspace %q: %w", ws.Locator(), domain.ErrNotFound)
	}

	m.mu.Lock()
	m.baseline[ws.Locator()] = current
	m.mu.Unlock()
	m.logger.Info("workspace committed", "locator", ws.Locator(), "documents", len(changed))
	return true, nil
}

// ManifestOf converts a snapshot back to its manifest form.
func ManifestOf(ws *workspace.Workspace) *dto.Manifest {
	out := &dto.Manifest{}
	for _, p := range ws.Projects() {
		dp := dto.Project{Name: p.Name}
		for _, ref := range p.References {
			dp.References = append(dp.References, string(ref))
		}
		for _, id := range p.Documents {
			doc, _ := ws.Document(id)
			dp.Documents = append(dp.Documents, dto.FromFile(doc.Root))
		}
		out.Projects = append(out.Projects, dp)
	}
	return out
}
