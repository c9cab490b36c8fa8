// Package mapping locates, inside an arbitrary workflow graph, the concrete
// node inputs that correspond to a category's abstract semantic fields: the
// positive prompt, the negative prompt, the model name, the sampler seed and
// so on.
//
// Ordinary fields are found by scanning literal inputs whose name matches
// the field's recognized patterns and whose value fits its shape convention.
//
// The two prompt fields are harder: a graph usually contains several
// interchangeable text-encoder nodes, and which one is the positive prompt
// depends on how its output is consumed downstream. The analyzer traces each
// encoder's outgoing edges to the sampler family (one direct hop, then one
// fallback indirect hop, never further), falls back to a display-title
// heuristic, and as a last resort lists the encoder under both prompt fields
// rather than silently dropping it.
//
// The result is a WorkflowState: per field, an ordered candidate list with
// the analytically justified candidate at index 0, plus a selection that the
// caller can move. Selecting a candidate for one field clears any other
// field pointing at the same node, since one graph location cannot serve two
// roles at once.
package mapping
