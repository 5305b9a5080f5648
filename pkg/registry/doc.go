// Package registry maps transformation names to constructors and binds
// command-line style string arguments to their parameters.
//
// A Registry is built once from a fixed list of entries:
//
//	reg, err := registry.New[workspace.Transformation](
//		registry.Entry{Name: "rename", Constructor: NewRename,
//			Params: []registry.Parameter{{Name: "newName"}}},
//	)
//	t, err := reg.Create("rename", []string{"LoadAsync"})
package registry
