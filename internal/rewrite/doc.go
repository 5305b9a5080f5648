// Package rewrite provides the two structural edits call-graph propagation is
// built from: wrapping a declaration's signature in a task envelope and
// rewriting a call site into an awaited or blocking-wait call.
//
// Both locate their target by the span it had when the document was last
// rendered, so several edits recorded against the same snapshot can be
// applied one after another to the same document.
package rewrite
