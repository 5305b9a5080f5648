/*
Package workspace holds immutable workspace snapshots and the unit of work
that edits them.

A Workspace is never mutated. Committing edits to a document produces a new
snapshot that shares every other document with its predecessor, so callers
may keep the old snapshot around (e.g. to diff against it).

A UnitOfWork stages an ordered list of transformations per document and
applies them once. Each document is its own transactional unit: either all of
its transformations succeed and its root is replaced, or the document is left
exactly as it was.
*/
package workspace
