package app

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"

	"github.com/vk/flowcanvas/internal/ctxlog"
	"github.com/vk/flowcanvas/internal/graph"
	"github.com/vk/flowcanvas/internal/layout"
	"github.com/vk/flowcanvas/internal/mapping"
	"github.com/vk/flowcanvas/internal/typing"
	"github.com/vk/flowcanvas/internal/wire"
)

// Run executes one pass over the configured workflow: parse, layout, type
// resolution, field mapping, report, and the optional re-serialization and
// server-side node type check.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)

	raw, err := os.ReadFile(a.config.WorkflowPath)
	if err != nil {
		return fmt.Errorf("reading workflow: %w", err)
	}

	g, err := wire.Parse(ctx, raw, a.catalog)
	if err != nil {
		return err
	}

	bounds := layout.Apply(g)
	typing.ResolveEdgeTypes(g, a.catalog)

	var state *mapping.WorkflowState
	if category, ok := a.schemas.Category(a.config.Category); ok {
		state = mapping.Analyze(ctx, g, category)
	} else if a.config.Category != "" {
		a.logger.Warn("unknown workflow category, skipping field mapping",
			"category", a.config.Category,
			"known", a.schemas.CategoryNames())
	}

	a.report(g, bounds, state)

	if a.config.CheckTypes {
		missing, err := a.server.CheckNodeTypes(ctx, g)
		if err != nil {
			return err
		}
		a.reportMissingTypes(missing)
	}

	if a.config.OutPath != "" {
		out, err := wire.Serialize(g, wire.SerializeOptions{IncludeMeta: true})
		if err != nil {
			return err
		}
		if a.config.OutPath == "-" {
			fmt.Fprintln(a.outW, string(out))
		} else if err := os.WriteFile(a.config.OutPath, out, 0o644); err != nil {
			return fmt.Errorf("writing workflow: %w", err)
		}
	}

	if a.config.Queue {
		return a.queue(ctx, g)
	}
	return nil
}

// queue submits the workflow to the server's prompt queue. The prompt format
// carries no workflow metadata and tolerates no holes, so unconnected inputs
// fail here with the full list rather than at the server.
func (a *App) queue(ctx context.Context, g *graph.Graph) error {
	out, err := wire.Serialize(g, wire.SerializeOptions{RequireConnected: true})
	if err != nil {
		return err
	}
	promptID, err := a.server.QueuePrompt(ctx, out, uuid.NewString())
	if err != nil {
		return err
	}
	fmt.Fprintf(a.outW, "queued prompt %s\n", promptID)
	return nil
}
