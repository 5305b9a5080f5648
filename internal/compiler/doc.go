// Package compiler orders the projects of a workspace by their references
// and compiles them, either one at a time or concurrently with every project
// started only after the projects it references have completed.
package compiler
