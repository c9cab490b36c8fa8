// Package wire converts between the execution server's workflow JSON and the
// in-memory graph IR.
//
// The wire format is a JSON object keyed by opaque node-id strings. Each
// value carries a class_type, an inputs object whose values are either
// literals or two-element [sourceNodeId, outputIndex] connection arrays, an
// optional _meta.title, and an optional integer mode. "name" and
// "description" entries may sit alongside the node entries as workflow
// metadata.
//
// Parsing is all-or-nothing: a structurally malformed document (validated
// up front against an embedded JSON Schema) fails with ErrStructural and no
// partial graph is ever returned. Serialization is the strict inverse, with
// two defenses: pending literal edits are applied in place, and a Connection
// pointing at a node no longer in the graph is never emitted.
package wire
