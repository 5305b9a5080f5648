package registry

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/aretw0/swallow/pkg/domain"
)

var (
	// ErrDuplicateName is returned when two entries share a name.
	ErrDuplicateName = errors.New("duplicate registry name")
	// ErrInvalidConstructor is returned when an entry's constructor does not
	// return the registry's element type.
	ErrInvalidConstructor = errors.New("invalid constructor")
	// ErrBinding is returned when arguments cannot be bound to a constructor.
	ErrBinding = errors.New("cannot bind arguments")
)

// Parameter describes one constructor argument.
type Parameter struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Type        string `json:"type"`
	Variadic    bool   `json:"variadic,omitempty"`
}

// Metadata is the public description of an entry.
type Metadata struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Params      []Parameter `json:"params"`
}

// Entry registers a constructor under a name. Constructor must be a function
// returning T or (T, error). Params names the constructor's parameters in
// order; missing names default to argN.
type Entry struct {
	Name        string
	Description string
	Params      []Parameter
	Constructor any
}

type binding struct {
	meta     Metadata
	fn       reflect.Value
	variadic bool
	withErr  bool
}

// Registry maps names to constructors producing values of type T.
// It is read-only after New and safe for concurrent use.
type Registry[T any] struct {
	entries map[string]*binding
	names   []string
}

var errorType = reflect.TypeFor[error]()

// New indexes entries. It fails on duplicate names and on constructors whose
// shape does not match T.
func New[T any](entries ...Entry) (*Registry[T], error) {
	r := &Registry[T]{entries: make(map[string]*binding, len(entries))}
	want := reflect.TypeFor[T]()

	for _, e := range entries {
		if _, dup := r.entries[e.Name]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateName, e.Name)
		}
		b, err := bind(e, want)
		if err != nil {
			return nil, err
		}
		r.entries[e.Name] = b
		r.names = append(r.names, e.Name)
	}
	slices.Sort(r.names)
	return r, nil
}

func bind(e Entry, want reflect.Type) (*binding, error) {
	fn := reflect.ValueOf(e.Constructor)
	if !fn.IsValid() || fn.Kind() != reflect.Func {
		return nil, fmt.Errorf("%w: %q is not a function", ErrInvalidConstructor, e.Name)
	}
	ft := fn.Type()

	withErr := false
	switch {
	case ft.NumOut() == 1:
	case ft.NumOut() == 2 && ft.Out(1) == errorType:
		withErr = true
	default:
		return nil, fmt.Errorf("%w: %q must return %s or (%s, error)", ErrInvalidConstructor, e.Name, want, want)
	}
	if !ft.Out(0).AssignableTo(want) {
		return nil, fmt.Errorf("%w: %q returns %s, not %s", ErrInvalidConstructor, e.Name, ft.Out(0), want)
	}

	b := &binding{fn: fn, withErr: withErr}
	b.meta = Metadata{Name: e.Name, Description: e.Description}

	if ft.IsVariadic() {
		if ft.NumIn() != 1 || ft.In(0).Elem() != reflect.TypeFor[string]() {
			return nil, fmt.Errorf("%w: %q: only a single ...string parameter may be variadic", ErrInvalidConstructor, e.Name)
		}
		b.variadic = true
		p := paramAt(e.Params, 0)
		p.Type = "[]string"
		p.Variadic = true
		b.meta.Params = []Parameter{p}
		return b, nil
	}

	for i := 0; i < ft.NumIn(); i++ {
		p := paramAt(e.Params, i)
		p.Type = ft.In(i).String()
		b.meta.Params = append(b.meta.Params, p)
	}
	return b, nil
}

func paramAt(params []Parameter, i int) Parameter {
	if i < len(params) {
		return params[i]
	}
	return Parameter{Name: fmt.Sprintf("arg%d", i)}
}

// Create builds the value registered under name from string arguments.
func (r *Registry[T]) Create(name string, args []string) (T, error) {
	var zero T
	b, ok := r.entries[name]
	if !ok {
		return zero, fmt.Errorf("%q: %w", name, domain.ErrNotFound)
	}

	var in []reflect.Value
	if b.variadic {
		for _, a := range args {
			in = append(in, reflect.ValueOf(a))
		}
	} else {
		ft := b.fn.Type()
		if len(args) != ft.NumIn() {
			return zero, fmt.Errorf("%w: %q takes %d argument(s) (%s), got %d",
				ErrBinding, name, ft.NumIn(), usage(b.meta.Params), len(args))
		}
		in = make([]reflect.Value, ft.NumIn())
		for i, raw := range args {
			v, err := parseArg(ft.In(i), raw)
			if err != nil {
				return zero, fmt.Errorf("%w: %q parameter %s: %w", ErrBinding, name, b.meta.Params[i].Name, err)
			}
			in[i] = v
		}
	}

	out := b.fn.Call(in)
	if b.withErr && !out[1].IsNil() {
		return zero, out[1].Interface().(error)
	}
	if isNil(out[0]) {
		return zero, fmt.Errorf("%w: %q returned nil", ErrInvalidConstructor, name)
	}
	v, ok := out[0].Interface().(T)
	if !ok {
		return zero, fmt.Errorf("%w: %q returned %s", ErrInvalidConstructor, name, out[0].Type())
	}
	return v, nil
}

// isNil reports a nil result, including a nil pointer held in an interface.
func isNil(v reflect.Value) bool {
	for v.Kind() == reflect.Interface {
		if v.IsNil() {
			return true
		}
		v = v.Elem()
	}
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return v.IsNil()
	}
	return false
}

// Lookup returns the metadata of one entry.
func (r *Registry[T]) Lookup(name string) (Metadata, bool) {
	b, ok := r.entries[name]
	if !ok {
		return Metadata{}, false
	}
	return b.meta, true
}

// List returns metadata for every entry, sorted by name.
func (r *Registry[T]) List() []Metadata {
	out := make([]Metadata, 0, len(r.names))
	for _, n := range r.names {
		out = append(out, r.entries[n].meta)
	}
	return out
}

// Len returns the number of entries.
func (r *Registry[T]) Len() int { return len(r.names) }

func usage(params []Parameter) string {
	names := make([]string, len(params))
	for i, p := range params {
		names[i] = "<" + p.Name + ">"
	}
	return strings.Join(names, " ")
}
