// Package tree turns a flat, parent-linked node collection into an explicit
// rooted hierarchy.
//
// # Overview
//
// The tree service hands out its red-black tree as a flat list where every
// node names its parent by value:
//
//	[{"value": 50, "color": "black", "parent": null},
//	 {"value": 30, "color": "red",   "parent": 50},
//	 {"value": 70, "color": "black", "parent": 50}]
//
// [Stratify] resolves those references in one pass into a [Hierarchy]: an
// arena of entries indexed by position, each holding the indices of its
// children. The arena has no pointer cycles and makes the single-root
// invariant cheap to check.
//
// # Identity
//
// A node's value doubles as its identifier. [NodeID] decodes from either a
// JSON number or a JSON string and is compared textually, so 50 and "50"
// name the same node. Numbers are normalised (50.0 becomes "50") so that a
// search path returned by the service matches the rendered identifiers.
//
// # Validation
//
// Stratify rejects, with a MALFORMED_TREE error from pkg/errors:
//   - zero or more than one root
//   - duplicate values
//   - a parent reference to a value that does not exist
//   - cycles, which show up as nodes unreachable from the root
//
// # Nil Leaves
//
// [AddNilLeaves] expands a binary tree with grey sentinel leaves where a
// child is missing, the way red-black trees are usually drawn in textbooks.
package tree
