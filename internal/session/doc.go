// Package session provides the mutable editing session over a workflow
// graph: an editable working copy supporting add, delete, duplicate, rewire
// and disconnect, producing a new immutable snapshot on commit.
//
// # Snapshot Duality
//
// Entering a session deep-clones the displayed graph into a private arena.
// Every mutation operates on the clone; the pre-edit snapshot is untouched.
// Discard throws the arena away and hands the original snapshot back, so a
// cancelled edit can never be partially applied. Commit promotes the arena
// to the new baseline.
//
// # Ownership
//
// A session has a single logical owner. Mutation calls must not interleave;
// the API is not designed for concurrent callers mutating one session. There
// is no shared mutable state across sessions.
//
// # Consistency
//
// Every operation leaves the working graph internally consistent on return:
// no dangling edge, no duplicate node id, at most one edge into any input.
// Node ids are allocated from a monotonic counter and never reused after a
// deletion within the session's lifetime. Structural operations (add,
// delete, duplicate) trigger a full re-layout; metadata operations (rename,
// bypass) do not.
package session
