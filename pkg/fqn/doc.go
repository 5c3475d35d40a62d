// Package fqn parses and builds the fully qualified paths that address schema
// fields and mapping targets.
//
// An FQN is a list of dot-separated segments:
//
//	person.address.city      bare identifiers
//	items.2.qty              a purely numeric segment is an array index
//	person?.address          "?." marks an optional hop
//	person."first name"      quoted segments escape special field names
//
// [AccessExpr] renders a path as an access expression, turning quoted
// segments and indices into index-access syntax:
//
//	person."first name"  ->  person["first name"]
//	items.2.qty          ->  items[2].qty
//
// [ParseAccessExpr] is its inverse, so a path survives the round trip
// unchanged whatever mix of identifiers, indices and quoted segments it holds.
//
// Only a malformed token stream (unterminated quote, empty segment, dangling
// "?") is reported as an error, with code INVALID_PATH. Everything else
// degrades gracefully: lookups simply report "not found".
package fqn
