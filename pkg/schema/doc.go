// Package schema defines the data model shared by every datamapper component.
//
// A [Snapshot] bundles the input schema roots, the output schema root and the
// current list of field-level [Mapping] values. Snapshots arrive as whole
// replacements from the schema/mapping source and from the persistence
// collaborator; once published they are treated as immutable, so every
// component that needs a modified copy calls [Snapshot.Clone] or
// [CloneMappings] first.
//
// # Schema Trees
//
// An [IOType] is one schema node. Records carry Fields, arrays carry a single
// Member describing every element, enums carry Members. Everything else is a
// primitive kind.
//
// # Mapping Trees
//
// A Mapping assigns an expression to one output path. Array-shaped outputs
// carry Elements: one entry per array position, each with its own nested
// mapping list. Element positions are the index; there are no sparse keys.
//
// Output paths are relative to the output root ("name", "items.0.qty"),
// while input paths start at the input variable name ("input.fullName").
package schema
