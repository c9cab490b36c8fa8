// Package typing resolves edge slot types from the node type catalog and
// implements the compatibility predicate used by interactive rewiring.
package typing

import (
	"strings"

	"github.com/vk/flowcanvas/internal/catalog"
	"github.com/vk/flowcanvas/internal/graph"
)

// Wildcard is the declared type that accepts any connection.
const Wildcard = "*"

// ResolveEdgeTypes annotates every edge with the declared type of its source
// output slot. An unpopulated catalog or an unknown classType leaves the
// slot type empty; it is derived information and never defaulted.
func ResolveEdgeTypes(g *graph.Graph, cat *catalog.Catalog) {
	for _, e := range g.Edges() {
		src, ok := g.Node(e.SourceNodeID)
		if !ok {
			continue
		}
		e.SlotType = cat.OutputType(src.ClassType, e.SourceOutputIndex)
	}
}

// Compatible decides whether an output of outputType may be wired into an
// input declared as inputType. Either side being unresolved ("") or wildcard
// accepts everything: an unpopulated catalog must degrade to permissive, not
// reject edits it cannot judge. Otherwise types match case-insensitively.
func Compatible(outputType, inputType string) bool {
	if outputType == "" || inputType == "" {
		return true
	}
	if outputType == Wildcard || inputType == Wildcard {
		return true
	}
	return strings.EqualFold(outputType, inputType)
}
