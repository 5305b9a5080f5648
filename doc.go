/*
Package swallow is a symbol-aware, multi-file source transformation engine.

Its core operation, asyncify, turns a synchronous function into its
asynchronous form and propagates the change through the call graph: callers
become asynchronous and await the call, overrides and interface members
change together, and contexts that cannot become asynchronous block on the
result instead.

# Concept

A workspace is an immutable snapshot of projects and documents served by a
code model (ports.CodeModel). Edits are never applied directly: they are
recorded as transformations on a unit of work, executed in one pass, and the
resulting snapshot is committed explicitly.

# Usage

	eng, err := swallow.New("workspace.yaml")
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	ws, err := eng.Open(ctx)
	if err != nil {
		log.Fatal(err)
	}

	res, err := eng.Asyncify(ctx, ws, "Core", "Repository.Load")
	if err != nil {
		log.Fatal(err)
	}
	if _, err := eng.Commit(ctx, res.After); err != nil {
		log.Fatal(err)
	}

Named transformations (Run, Edit) and function filters (Functions) come from
a fixed catalog; see the list command of cmd/swallow.
*/
package swallow
