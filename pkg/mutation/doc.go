// Package mutation turns user edits into new mapping lists and hands them to
// a persistence collaborator.
//
// An [Engine] never changes a snapshot in place. Every operation clones the
// current mapping tree, applies one structural edit, and calls its
// [Persister]. The persister's reply is the next snapshot; the engine keeps
// no state between calls.
//
// # Conflicts
//
// Edits that cannot be applied (an unknown target, an unknown input root, an
// array index that would leave a gap, a delete that matches nothing) fail
// with a MUTATION_CONFLICT error before the persister is called.
//
// # Array elements
//
// Targets below an array carry index segments ("items.2.qty"). The engine
// places them into the element bucket of the nearest enclosing array
// mapping, creating the array mapping and at most one new bucket as needed.
package mutation
