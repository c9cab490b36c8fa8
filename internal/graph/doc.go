// Package graph defines the in-memory representation of a workflow: a
// directed acyclic graph of typed operation nodes exchanged with an execution
// server as JSON.
//
// # Why Graph Package Exists
//
// Every other component operates over the same IR: the parser produces it,
// the layout engine annotates it with coordinates, the type resolver
// annotates its edges, the field-mapping analyzer reads it, and the editing
// session mutates a private clone of it. Keeping the entity definitions in
// one dependency-free package prevents import cycles between those
// components.
//
// # Mutability Contract
//
// A Graph handed out by the parser or by a committed editing session is a
// display snapshot: consumers read it but never mutate it. All interactive
// mutation goes through an editing session (internal/session), which works on
// a deep Clone and either commits a new snapshot or discards the clone. This
// is a convention, not an enforcement; Clone exists so that a discarded edit
// can never retroactively corrupt a snapshot that was already rendered.
//
// # Input Values
//
// A node input is exactly one of three shapes, modeled as a closed sum:
//
//   - Literal: an inline scalar/string/bool value, held as a cty.Value so
//     that numeric fidelity survives a parse/serialize round trip.
//   - Connection: the input is fed by another node's output slot.
//   - UnconnectedSlot: a connection-typed input with nothing wired in yet.
//
// String literals may embed {{identifier}} template placeholders; those are
// recorded on the node and on the graph so that editing and field mapping
// can treat them as inert.
package graph
