package mapping

import (
	"strings"

	"github.com/vk/flowcanvas/internal/fieldschema"
	"github.com/vk/flowcanvas/internal/graph"
)

// samplerFamily is the fixed set of class names whose inputs decide a
// conditioning chain's role.
var samplerFamily = map[string]struct{}{
	"KSampler":              {},
	"KSamplerAdvanced":      {},
	"SamplerCustom":         {},
	"SamplerCustomAdvanced": {},
	"CFGGuider":             {},
	"BasicGuider":           {},
}

// singleConditioningFamily are the sampler-family classes with exactly one
// conditioning input; feeding their "conditioning" slot implies the positive
// role.
var singleConditioningFamily = map[string]struct{}{
	"BasicGuider": {},
}

// promptRole is the outcome of classifying one encoder node.
type promptRole int

const (
	roleInconclusive promptRole = iota
	rolePositive
	roleNegative
	roleAmbiguous
)

func (r promptRole) matches(schemaRole string) bool {
	switch schemaRole {
	case fieldschema.RolePositive:
		return r == rolePositive
	case fieldschema.RoleNegative:
		return r == roleNegative
	default:
		return false
	}
}

// classifyEncoder decides whether an encoder node feeds the positive or the
// negative side of the sampler. The walk is bounded by construction: one
// direct hop, one fallback indirect hop, then heuristics. It never recurses,
// so cyclic-looking input cannot hang it.
func classifyEncoder(g *graph.Graph, encoder *graph.Node) promptRole {
	// First hop: edges leaving the encoder directly.
	if role := classifyConsumers(g, encoder.ID); role != roleInconclusive {
		return role
	}

	// Second hop: the encoder may feed an intermediate (a guidance or
	// conditioning-transform node) that feeds the sampler.
	for _, e := range g.EdgesFrom(encoder.ID) {
		if role := classifyConsumers(g, e.TargetNodeID); role != roleInconclusive {
			return role
		}
	}

	// Title heuristic.
	title := strings.ToLower(encoder.Title)
	switch {
	case strings.Contains(title, "positive"):
		return rolePositive
	case strings.Contains(title, "negative"):
		return roleNegative
	}

	return roleAmbiguous
}

// classifyConsumers inspects the direct consumers of a node's outputs and
// returns the role implied by the first sampler-family consumer found.
func classifyConsumers(g *graph.Graph, nodeID string) promptRole {
	for _, e := range g.EdgesFrom(nodeID) {
		consumer, ok := g.Node(e.TargetNodeID)
		if !ok {
			continue
		}
		if _, sampler := samplerFamily[consumer.ClassType]; !sampler {
			continue
		}
		switch e.TargetInputName {
		case "positive":
			return rolePositive
		case "negative":
			return roleNegative
		case "conditioning":
			if _, single := singleConditioningFamily[consumer.ClassType]; single {
				return rolePositive
			}
		}
	}
	return roleInconclusive
}
