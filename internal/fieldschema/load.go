package fieldschema

import (
	"context"
	"embed"
	"fmt"
	"io/fs"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/vk/flowcanvas/internal/ctxlog"
	"github.com/vk/flowcanvas/internal/fsutil"
)

//go:embed schemas/*.hcl
var embeddedSchemas embed.FS

// Default loads the schema set shipped with the binary.
func Default(ctx context.Context) (*Set, error) {
	sub, err := fs.Sub(embeddedSchemas, "schemas")
	if err != nil {
		return nil, err
	}
	return Load(ctx, sub)
}

// Load parses every .hcl schema manifest under fsys. Later files override
// earlier categories of the same name, which is how a disk directory layered
// over the embedded defaults customizes a category.
func Load(ctx context.Context, fsys fs.FS) (*Set, error) {
	logger := ctxlog.FromContext(ctx)

	paths, err := fsutil.FindByExtension(fsys, ".hcl")
	if err != nil {
		return nil, fmt.Errorf("scanning schema manifests: %w", err)
	}
	if len(paths) == 0 {
		logger.Warn("no field schema manifests found")
	}

	set := &Set{categories: make(map[string]*Category)}
	parser := hclparse.NewParser()

	for _, path := range paths {
		src, err := fs.ReadFile(fsys, path)
		if err != nil {
			return nil, fmt.Errorf("reading schema manifest %s: %w", path, err)
		}
		file, diags := parser.ParseHCL(src, path)
		if diags.HasErrors() {
			return nil, fmt.Errorf("parsing schema manifest %s: %w", path, diags)
		}

		var m manifest
		if diags := gohcl.DecodeBody(file.Body, nil, &m); diags.HasErrors() {
			return nil, fmt.Errorf("decoding schema manifest %s: %w", path, diags)
		}

		for _, c := range m.Categories {
			if err := validateCategory(c); err != nil {
				return nil, fmt.Errorf("schema manifest %s: %w", path, err)
			}
			if _, exists := set.categories[c.Name]; !exists {
				set.order = append(set.order, c.Name)
			}
			set.categories[c.Name] = c
		}
		logger.Debug("loaded field schema manifest", "file", path, "categories", len(m.Categories))
	}

	logger.Debug("field schemas loaded", "categories", len(set.order))
	return set, nil
}

func validateCategory(c *Category) error {
	seen := make(map[string]struct{}, len(c.Fields))
	for _, f := range c.Fields {
		if _, dup := seen[f.Key]; dup {
			return fmt.Errorf("category %q declares field %q twice", c.Name, f.Key)
		}
		seen[f.Key] = struct{}{}

		switch f.Kind {
		case "", KindString, KindNumber, KindBool:
		default:
			return fmt.Errorf("category %q field %q has unknown kind %q", c.Name, f.Key, f.Kind)
		}
		switch f.PromptRole {
		case "", RolePositive, RoleNegative:
		default:
			return fmt.Errorf("category %q field %q has unknown prompt_role %q", c.Name, f.Key, f.PromptRole)
		}
		if f.PromptRole == "" && len(f.Inputs) == 0 {
			return fmt.Errorf("category %q field %q matches no inputs", c.Name, f.Key)
		}
	}
	return nil
}
