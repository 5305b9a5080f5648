/*
Package domain contains the core models shared by every part of swallow.

It defines the identities and records exchanged between the propagation engine,
the unit of work and the code model provider. The package is kept pure: it
performs no I/O and knows nothing about how symbols are discovered.

# Key Entities

  - FunctionID: an opaque, comparable handle for a callable symbol.
  - FunctionInfo / TypeInfo: the symbol model the provider exposes.
  - ReferenceLocation: a pre-classified place in source that names a function.
  - LifecycleHooks: callbacks fired while a unit of work executes.
*/
package domain
