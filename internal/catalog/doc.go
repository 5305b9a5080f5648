// Package catalog holds the closed lists of named transformations and
// function filters exposed by the command line.
//
// Three registries are built once, on first use:
//
//   - Documents: transformations applied to one document through a unit of
//     work (wrap-signature, await-call, blocking-wait, rename-reference,
//     mark-async).
//   - Symbols: transformations planned from a function (asyncify, rename).
//   - Filters: classifiers selecting declared functions (sync-only,
//     has-body, name-matches, in-type).
package catalog
