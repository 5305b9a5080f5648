package asyncify

import "github.com/aretw0/swallow/pkg/domain"

// Declaration is a function reached by propagation.
type Declaration struct {
	Info domain.FunctionInfo
	// Boundary marks a function that already has an asynchronous
	// counterpart. It is left unchanged and its callers are not followed.
	Boundary bool
	// Counterpart is the existing asynchronous function of a boundary.
	Counterpart domain.FunctionID
}

// Collected is the working set produced by Collect. Declarations and
// References keep discovery order.
type Collected struct {
	Seed         domain.FunctionID
	Declarations []Declaration
	References   []domain.ReferenceLocation

	decls map[domain.FunctionID]int
	refs  map[domain.Location]bool
}

func newCollected(seed domain.FunctionID) *Collected {
	return &Collected{
		Seed:  seed,
		decls: make(map[domain.FunctionID]int),
		refs:  make(map[domain.Location]bool),
	}
}

// Declaration returns the collected declaration for id.
func (c *Collected) Declaration(id domain.FunctionID) (Declaration, bool) {
	i, ok := c.decls[id]
	if !ok {
		return Declaration{}, false
	}
	return c.Declarations[i], true
}

// Has reports whether id was collected.
func (c *Collected) Has(id domain.FunctionID) bool {
	_, ok := c.decls[id]
	return ok
}

// Rewritten returns the ids of non-boundary declarations.
func (c *Collected) Rewritten() []domain.FunctionID {
	var out []domain.FunctionID
	for _, d := range c.Declarations {
		if !d.Boundary {
			out = append(out, d.Info.ID)
		}
	}
	return out
}

func (c *Collected) addDeclaration(d Declaration) {
	c.decls[d.Info.ID] = len(c.Declarations)
	c.Declarations = append(c.Declarations, d)
}

// addReference reports false for a location seen before.
func (c *Collected) addReference(r domain.ReferenceLocation) bool {
	loc := r.Location()
	if c.refs[loc] {
		return false
	}
	c.refs[loc] = true
	c.References = append(c.References, r)
	return true
}
