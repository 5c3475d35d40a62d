// Package editor holds the session state of one mapping root: the current
// snapshot, the visibility state and the graph built from both.
//
// An [Editor] is the single writer for its root. At most one mutation is in
// flight at a time; a second one fails with MUTATION_IN_FLIGHT instead of
// queueing. While a mutation is outstanding, visibility changes and snapshot
// replacements are recorded but the graph is not rebuilt, so [Editor.Graph]
// keeps returning the last good graph. When the mutation returns, its
// snapshot is applied and the graph is rebuilt once.
//
// # Usage
//
//	ed, err := editor.Open(ctx, st, "orders", editor.Options{Logger: logger})
//	if err != nil {
//	    return err
//	}
//	ed.OnRebuild(func(g *diagram.Graph, revision string) { ... })
//	err = ed.CreateMapping(ctx, "input.fullName", "name")
package editor
