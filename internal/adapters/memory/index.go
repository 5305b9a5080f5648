package memory

import (
	"slices"
	"strconv"
	"strings"

	"github.com/aretw0/swallow/pkg/domain"
	"github.com/aretw0/swallow/pkg/syntax"
	"github.com/aretw0/swallow/pkg/workspace"
)

type function struct {
	info domain.FunctionInfo
}

type typeEntry struct {
	info    domain.TypeInfo
	methods []domain.FunctionID
	fields  map[string]domain.TypeRef
}

// index is the symbol model of one snapshot. It is immutable once built.
type index struct {
	functions   map[domain.FunctionID]*function
	types       map[string]*typeEntry
	typeOrder   []string
	descriptors map[string][]domain.FunctionID
	declAt      map[domain.Location]domain.FunctionID
	refs        map[domain.FunctionID][]domain.ReferenceLocation
	related     map[domain.FunctionID][]domain.FunctionID
	// ambiguous holds call sites that could bind to more than one
	// overload, under every candidate.
	ambiguous map[domain.FunctionID][]domain.Location
}

// FunctionID renders the canonical handle "Type.Name(T1,T2)".
func FunctionID(typeName, name string, params []domain.Parameter) domain.FunctionID {
	types := make([]string, len(params))
	for i, p := range params {
		types[i] = p.Type.String()
	}
	return domain.FunctionID(typeName + "." + name + "(" + strings.Join(types, ",") + ")")
}

func buildIndex(ws *workspace.Workspace) *index {
	idx := &index{
		functions:   make(map[domain.FunctionID]*function),
		types:       make(map[string]*typeEntry),
		descriptors: make(map[string][]domain.FunctionID),
		declAt:      make(map[domain.Location]domain.FunctionID),
		refs:        make(map[domain.FunctionID][]domain.ReferenceLocation),
		ambiguous:   make(map[domain.FunctionID][]domain.Location),
	}
	for _, docID := range ws.Documents() {
		doc, _ := ws.Document(docID)
		for _, t := range doc.Root.Types {
			idx.declareType(docID, t)
		}
	}
	for _, fn := range idx.functions {
		fn.info.CanBeAsync = fn.info.HasBody && idx.types[fn.info.ContainingType].info.Kind != domain.TypeKindInterface
	}
	idx.relate()
	for _, docID := range ws.Documents() {
		doc, _ := ws.Document(docID)
		idx.collectReferences(docID, doc.Root)
	}
	return idx
}

func (idx *index) declareType(doc domain.DocumentID, t *syntax.TypeDecl) {
	entry, ok := idx.types[t.Name]
	if !ok {
		entry = &typeEntry{
			info:   domain.TypeInfo{Name: t.Name, Kind: t.Kind},
			fields: make(map[string]domain.TypeRef),
		}
		idx.types[t.Name] = entry
		idx.typeOrder = append(idx.typeOrder, t.Name)
	}
	// Partial fragments contribute their own base and interfaces.
	if entry.info.Base == "" {
		entry.info.Base = t.Base
	}
	for _, iface := range t.Interfaces {
		if !slices.Contains(entry.info.Interfaces, iface) {
			entry.info.Interfaces = append(entry.info.Interfaces, iface)
		}
	}

	for _, m := range t.Members {
		switch m := m.(type) {
		case *syntax.FieldDecl:
			entry.fields[m.Name.Name] = m.Type
		case *syntax.PropertyDecl:
			entry.fields[m.Name.Name] = m.Type
		case *syntax.MethodDecl:
			id := FunctionID(t.Name, m.Name.Name, m.Params)
			fn, ok := idx.functions[id]
			if !ok {
				fn = &function{info: domain.FunctionInfo{
					ID:             id,
					Name:           m.Name.Name,
					ContainingType: t.Name,
					Parameters:     slices.Clone(m.Params),
					Result:         m.Result,
				}}
				idx.functions[id] = fn
				entry.methods = append(entry.methods, id)
				entry.info.Members = append(entry.info.Members, id)
				key := t.Name + "." + m.Name.Name
				idx.descriptors[key] = append(idx.descriptors[key], id)
			}
			if m.IsAsync() {
				fn.info.Async = true
			}
			if m.Body != nil {
				fn.info.HasBody = true
			}
			fn.info.Declarations = append(fn.info.Declarations, domain.Location{Document: doc, Span: m.Span})
			idx.declAt[domain.Location{Document: doc, Span: m.Span}] = id
			idx.declAt[domain.Location{Document: doc, Span: m.Name.Span}] = id
		}
	}
}

// ancestors returns the base chain and every implemented interface of name,
// nearest first, without name itself.
func (idx *index) ancestors(name string) []string {
	var out []string
	seen := map[string]bool{name: true}
	queue := []string{name}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		entry, ok := idx.types[current]
		if !ok {
			continue
		}
		supers := append([]string{entry.info.Base}, entry.info.Interfaces...)
		for _, s := range supers {
			if s == "" || seen[s] {
				continue
			}
			seen[s] = true
			out = append(out, s)
			queue = append(queue, s)
		}
	}
	return out
}

// relate groups methods that override or implement each other.
func (idx *index) relate() {
	parent := make(map[domain.FunctionID]domain.FunctionID, len(idx.functions))
	var find func(domain.FunctionID) domain.FunctionID
	find = func(id domain.FunctionID) domain.FunctionID {
		p, ok := parent[id]
		if !ok || p == id {
			return id
		}
		root := find(p)
		parent[id] = root
		return root
	}
	union := func(a, b domain.FunctionID) {
		ra, rb := find(a), find(b)
		if ra != rb {
			parent[ra] = rb
		}
	}

	for _, name := range idx.typeOrder {
		for _, id := range idx.types[name].methods {
			fn := idx.functions[id]
			for _, ancestor := range idx.ancestors(name) {
				entry, ok := idx.types[ancestor]
				if !ok {
					continue
				}
				for _, other := range entry.methods {
					o := idx.functions[other]
					if o.info.Name == fn.info.Name && sameTypes(o.info.ParameterTypes(), fn.info.ParameterTypes()) {
						union(id, other)
					}
				}
			}
		}
	}

	groups := make(map[domain.FunctionID][]domain.FunctionID)
	for id := range idx.functions {
		root := find(id)
		groups[root] = append(groups[root], id)
	}
	idx.related = make(map[domain.FunctionID][]domain.FunctionID, len(idx.functions))
	for _, members := range groups {
		slices.Sort(members)
		for _, id := range members {
			out := make([]domain.FunctionID, 0, len(members))
			out = append(out, id)
			for _, other := range members {
				if other != id {
					out = append(out, other)
				}
			}
			idx.related[id] = out
		}
	}
}

func sameTypes(a, b []domain.TypeRef) bool {
	return slices.EqualFunc(a, b, domain.TypeRef.Equal)
}

func (idx *index) collectReferences(doc domain.DocumentID, root *syntax.File) {
	syntax.Inspect(root, func(n syntax.Node, ancestors []syntax.Node) bool {
		var (
			name    *syntax.Ident
			args    []syntax.Expr
			arity   = -1
			literal bool
		)
		switch n := n.(type) {
		case *syntax.CallExpr:
			name, args, arity = n.Fun, n.Args, len(n.Args)
		case *syntax.NameOfExpr:
			name, literal = n.X, true
		default:
			return true
		}

		owner, member := scope(ancestors)
		if owner == nil {
			return true
		}
		method, inMethod := member.(*syntax.MethodDecl)
		var enclosing domain.FunctionID
		if inMethod && method.Body != nil {
			enclosing = idx.declAt[domain.Location{Document: doc, Span: method.Span}]
		}

		kind := domain.InvocationInNonAwaitableContext
		switch {
		case literal:
			kind = domain.NameOnlyReference
		case enclosing != "":
			kind = domain.InvocationInAwaitableContext
		}

		targets, ambiguous := idx.resolve(owner.Name, method, name, args, arity)
		for _, target := range ambiguous {
			idx.ambiguous[target] = append(idx.ambiguous[target], domain.Location{Document: doc, Span: name.Span})
		}
		for _, target := range targets {
			idx.refs[target] = append(idx.refs[target], domain.ReferenceLocation{
				Document:  doc,
				Span:      name.Span,
				Kind:      kind,
				Target:    target,
				Enclosing: enclosing,
			})
		}
		return true
	})
}

func scope(ancestors []syntax.Node) (*syntax.TypeDecl, syntax.Member) {
	var (
		owner  *syntax.TypeDecl
		member syntax.Member
	)
	for _, a := range ancestors {
		switch a := a.(type) {
		case *syntax.TypeDecl:
			owner = a
		case syntax.Member:
			member = a
		}
	}
	return owner, member
}

// resolve finds the functions name refers to from inside typeName. Calls
// resolve by name and arity, then by the argument types the snapshot knows.
// A call still matching several overloads resolves to none of them and is
// returned as ambiguous. Name literals name every overload.
func (idx *index) resolve(typeName string, method *syntax.MethodDecl, name *syntax.Ident, args []syntax.Expr, arity int) (targets, ambiguous []domain.FunctionID) {
	owner := idx.receiverType(typeName, method, name.Qualifier)
	if owner == "" {
		return nil, nil
	}
	for _, t := range append([]string{owner}, idx.ancestors(owner)...) {
		entry, ok := idx.types[t]
		if !ok {
			continue
		}
		var matches []domain.FunctionID
		for _, id := range entry.methods {
			fn := idx.functions[id]
			if fn.info.Name == name.Name && (arity < 0 || len(fn.info.Parameters) == arity) {
				matches = append(matches, id)
			}
		}
		if len(matches) == 0 {
			continue
		}
		if arity < 0 || len(matches) == 1 {
			return matches, nil
		}

		argTypes := make([]string, len(args))
		for i, a := range args {
			argTypes[i] = idx.argType(typeName, method, a)
		}
		var typed []domain.FunctionID
		for _, id := range matches {
			if acceptsArgs(idx.functions[id].info.Parameters, argTypes) {
				typed = append(typed, id)
			}
		}
		switch len(typed) {
		case 1:
			return typed, nil
		case 0:
			return nil, matches
		default:
			return nil, typed
		}
	}
	return nil, nil
}

// acceptsArgs reports whether every known argument type equals the
// parameter type at its position. Unknown types match anything.
func acceptsArgs(params []domain.Parameter, argTypes []string) bool {
	for i, at := range argTypes {
		if at != "" && at != params[i].Type.String() {
			return false
		}
	}
	return true
}

// argType infers the static type of e, or "" when it cannot be known from
// the snapshot.
func (idx *index) argType(typeName string, method *syntax.MethodDecl, e syntax.Expr) string {
	switch e := e.(type) {
	case *syntax.Literal:
		return literalType(e.Value)
	case *syntax.Ident:
		if e.Qualifier != "" && e.Qualifier != "this" {
			return ""
		}
		if method != nil && e.Qualifier == "" {
			for _, p := range method.Params {
				if p.Name == e.Name {
					return p.Type.String()
				}
			}
		}
		if ft, ok := idx.fieldType(typeName, e.Name); ok {
			return ft.String()
		}
	case *syntax.CallExpr:
		targets, _ := idx.resolve(typeName, method, e.Fun, e.Args, len(e.Args))
		if len(targets) == 1 {
			return idx.functions[targets[0]].info.Result.String()
		}
	}
	return ""
}

func literalType(v string) string {
	switch {
	case v == "":
		return ""
	case strings.HasPrefix(v, `"`):
		return "string"
	case strings.HasPrefix(v, "'"):
		return "char"
	case v == "true" || v == "false":
		return "bool"
	}
	if _, err := strconv.ParseInt(v, 10, 64); err == nil {
		return "int"
	}
	if _, err := strconv.ParseFloat(v, 64); err == nil {
		return "double"
	}
	return ""
}

func (idx *index) fieldType(typeName, field string) (domain.TypeRef, bool) {
	for _, t := range append([]string{typeName}, idx.ancestors(typeName)...) {
		if entry, ok := idx.types[t]; ok {
			if ft, ok := entry.fields[field]; ok {
				return ft, true
			}
		}
	}
	return domain.TypeRef{}, false
}

func (idx *index) receiverType(typeName string, method *syntax.MethodDecl, qualifier string) string {
	switch qualifier {
	case "", "this":
		return typeName
	case "base":
		if entry, ok := idx.types[typeName]; ok {
			return entry.info.Base
		}
		return ""
	}
	if _, ok := idx.types[qualifier]; ok {
		return qualifier
	}
	if method != nil {
		for _, p := range method.Params {
			if p.Name == qualifier {
				return p.Type.Name
			}
		}
	}
	if ft, ok := idx.fieldType(typeName, qualifier); ok {
		return ft.Name
	}
	return ""
}
