package app

import (
	"fmt"

	"github.com/fatih/color"

	"github.com/vk/flowcanvas/internal/graph"
	"github.com/vk/flowcanvas/internal/layout"
	"github.com/vk/flowcanvas/internal/mapping"
)

var (
	headingColor = color.New(color.Bold)
	okColor      = color.New(color.FgGreen)
	missColor    = color.New(color.FgRed)
	dimColor     = color.New(color.Faint)
)

// report prints a human-readable summary of the analyzed workflow.
func (a *App) report(g *graph.Graph, bounds layout.Bounds, state *mapping.WorkflowState) {
	name := g.Name
	if name == "" {
		name = "(unnamed workflow)"
	}
	headingColor.Fprintln(a.outW, name)
	fmt.Fprintf(a.outW, "  nodes: %d  edges: %d  canvas: %.0fx%.0f\n",
		g.NodeCount(), len(g.Edges()), bounds.Width(), bounds.Height())
	if placeholders := g.TemplatePlaceholders(); len(placeholders) > 0 {
		fmt.Fprintf(a.outW, "  placeholders: %v\n", placeholders)
	}

	if state == nil {
		return
	}

	headingColor.Fprintf(a.outW, "fields (%s)\n", state.Category.Name)
	for _, f := range state.Fields() {
		label := f.Field.DisplayName
		if f.Field.Required {
			label += " *"
		}
		if sel, ok := f.Selected(); ok {
			okColor.Fprintf(a.outW, "  %-24s", label)
			fmt.Fprintf(a.outW, " -> %s.%s", sel.NodeID, sel.InputKey)
			dimColor.Fprintf(a.outW, "  (%s", sel.ClassType)
			if len(f.Candidates) > 1 {
				dimColor.Fprintf(a.outW, ", %d candidates", len(f.Candidates))
			}
			dimColor.Fprintln(a.outW, ")")
		} else if f.Field.Required {
			missColor.Fprintf(a.outW, "  %-24s unmapped\n", label)
		} else {
			dimColor.Fprintf(a.outW, "  %-24s unmapped\n", label)
		}
	}

	if missing := state.MissingRequiredFields(); len(missing) > 0 {
		missColor.Fprintf(a.outW, "missing required fields: %v\n", missing)
	} else {
		okColor.Fprintln(a.outW, "all required fields mapped")
	}
}

// reportMissingTypes prints the outcome of the save-time node type check.
func (a *App) reportMissingTypes(missing []string) {
	if len(missing) == 0 {
		okColor.Fprintln(a.outW, "all node types known to server")
		return
	}
	missColor.Fprintf(a.outW, "node types missing from server: %v\n", missing)
}
