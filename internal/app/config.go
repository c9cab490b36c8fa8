package app

import "errors"

// Config holds everything an App instance needs to run.
type Config struct {
	// WorkflowPath is the wire JSON workflow file to load.
	WorkflowPath string
	// CatalogPath is a local object-info dump to build the catalog from.
	CatalogPath string
	// ServerURL is the execution server; used for the catalog when
	// CatalogPath is empty, and for the save-time node type check.
	ServerURL string
	// SchemasPath optionally overrides the embedded field schema manifests
	// with a directory of .hcl files.
	SchemasPath string
	// Category is the workflow category whose field schema drives mapping.
	Category string
	// OutPath, when set, receives the re-serialized workflow ("-" = stdout).
	OutPath string
	// CheckTypes re-fetches the server catalog and reports graph classTypes
	// the server no longer knows. Requires ServerURL.
	CheckTypes bool
	// Queue submits the workflow to the server's prompt queue. Requires
	// ServerURL and a fully connected graph.
	Queue bool

	LogFormat string
	LogLevel  string
}

// NewConfig validates a Config.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.WorkflowPath == "" {
		return nil, errors.New("WorkflowPath is a required configuration field and cannot be empty")
	}
	if cfg.CheckTypes && cfg.ServerURL == "" {
		return nil, errors.New("CheckTypes requires ServerURL")
	}
	if cfg.Queue && cfg.ServerURL == "" {
		return nil, errors.New("Queue requires ServerURL")
	}
	return &cfg, nil
}
