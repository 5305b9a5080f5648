// Package memory implements a code model over YAML workspace manifests.
//
// Each snapshot is indexed once: function declarations (merged across
// partial fragments), override and interface groups, and every call or name
// literal resolved to its target and classified by context. Indexes are kept
// in an expiring cache keyed by snapshot id.
package memory
