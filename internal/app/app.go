package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/vk/flowcanvas/internal/catalog"
	"github.com/vk/flowcanvas/internal/client"
	"github.com/vk/flowcanvas/internal/ctxlog"
	"github.com/vk/flowcanvas/internal/fieldschema"
)

// App encapsulates the toolkit's dependencies, configuration, and lifecycle.
type App struct {
	outW    io.Writer
	errW    io.Writer
	logger  *slog.Logger
	config  *Config
	catalog *catalog.Catalog
	schemas *fieldschema.Set
	server  *client.Client
}

// New constructs an App with its own isolated logger, a populated (or, when
// no source is configured, deliberately unpopulated) catalog, and the field
// schema set. errW receives logs; outW receives the report.
func New(outW, errW io.Writer, cfg *Config) (*App, error) {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, errW)
	ctx := ctxlog.WithLogger(context.Background(), logger)

	a := &App{
		outW:    outW,
		errW:    errW,
		logger:  logger,
		config:  cfg,
		catalog: catalog.New(),
	}

	if cfg.ServerURL != "" {
		a.server = client.New(cfg.ServerURL)
	}

	if err := a.populateCatalog(ctx); err != nil {
		return nil, err
	}

	schemas, err := a.loadSchemas(ctx)
	if err != nil {
		return nil, err
	}
	a.schemas = schemas
	return a, nil
}

// Close releases the server connection, if one was opened.
func (a *App) Close() error {
	if a.server != nil {
		return a.server.Close()
	}
	return nil
}

// populateCatalog fills the catalog from the configured source. Having no
// source is not an error: every consumer has a defined degraded behavior for
// an unpopulated catalog.
func (a *App) populateCatalog(ctx context.Context) error {
	switch {
	case a.config.CatalogPath != "":
		raw, err := os.ReadFile(a.config.CatalogPath)
		if err != nil {
			return fmt.Errorf("reading catalog dump: %w", err)
		}
		types, err := catalog.Decode(raw)
		if err != nil {
			return err
		}
		a.catalog.Populate(types)
		a.logger.Debug("catalog populated from dump",
			"path", a.config.CatalogPath, "node_types", len(types))
	case a.server != nil:
		types, err := a.server.FetchCatalog(ctx)
		if err != nil {
			return err
		}
		a.catalog.Populate(types)
	default:
		a.logger.Warn("no catalog source configured; slot types degrade to wildcard")
	}
	return nil
}

func (a *App) loadSchemas(ctx context.Context) (*fieldschema.Set, error) {
	if a.config.SchemasPath != "" {
		return fieldschema.Load(ctx, os.DirFS(a.config.SchemasPath))
	}
	return fieldschema.Default(ctx)
}
