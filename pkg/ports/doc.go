/*
Package ports defines the driven ports used by the transformation engine.

# Key Interfaces

  - CodeModel: semantic queries over a workspace snapshot (symbols, references,
    enclosing functions, related declarations) plus compile and commit.
  - Locker: cross-process locking around commits.

RunCodeModelContract verifies that a CodeModel implementation honours the
invariants the propagation engine relies on.
*/
package ports
