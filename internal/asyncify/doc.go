// Package asyncify converts a synchronous function, and everything that
// must change with it, into its asynchronous form.
//
// Collect performs a breadth-first walk from the seed: each function is
// expanded to its related declarations (overrides, interface members,
// partial fragments), their references are gathered, and every synchronous
// function invoking them is queued in turn. A function whose type already
// declares a compatible Async counterpart is a boundary and is not followed.
//
// Plan turns the collected set into rewrite transformations recorded in a
// workspace.UnitOfWork.
package asyncify
