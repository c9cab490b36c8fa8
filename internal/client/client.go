// Package client is the thin HTTP adapter to the execution server. It does
// exactly three things: fetch the node type catalog once per connection
// lifetime, re-fetch it at save time to check a graph's class types against
// the server's current definitions, and submit a serialized workflow to the
// prompt queue. Everything else about the server (job lifecycle, event
// delivery) belongs to other collaborators.
package client

import (
	"context"
	"encoding/json"
	"fmt"

	"resty.dev/v3"

	"github.com/vk/flowcanvas/internal/catalog"
	"github.com/vk/flowcanvas/internal/ctxlog"
	"github.com/vk/flowcanvas/internal/graph"
)

// Client talks to one execution server.
type Client struct {
	http *resty.Client
}

// New returns a client for the server at baseURL, e.g. "http://127.0.0.1:8188".
func New(baseURL string) *Client {
	return &Client{
		http: resty.New().SetBaseURL(baseURL),
	}
}

// Close releases the underlying transport.
func (c *Client) Close() error {
	return c.http.Close()
}

// FetchCatalog downloads and decodes the server's node type definitions.
// The caller populates its Catalog with the result; this package never
// mutates shared state itself.
func (c *Client) FetchCatalog(ctx context.Context) ([]*catalog.NodeType, error) {
	res, err := c.http.R().SetContext(ctx).Get("/object_info")
	if err != nil {
		return nil, fmt.Errorf("fetching catalog: %w", err)
	}
	if !res.IsSuccess() {
		return nil, fmt.Errorf("fetching catalog: server returned %s", res.Status())
	}
	types, err := catalog.Decode(res.Bytes())
	if err != nil {
		return nil, err
	}
	ctxlog.FromContext(ctx).Debug("catalog fetched", "node_types", len(types))
	return types, nil
}

// CheckNodeTypes re-fetches the catalog and returns the classTypes used by
// the graph that the server no longer knows, in graph insertion order. A
// non-empty result is a recoverable validation outcome for the caller to
// surface, not an error; the graph is left untouched.
func (c *Client) CheckNodeTypes(ctx context.Context, g *graph.Graph) ([]string, error) {
	types, err := c.FetchCatalog(ctx)
	if err != nil {
		return nil, err
	}
	fresh := catalog.New()
	fresh.Populate(types)

	inUse := make([]string, 0, g.NodeCount())
	for _, n := range g.Nodes() {
		inUse = append(inUse, n.ClassType)
	}
	return fresh.MissingFrom(inUse), nil
}

// QueuePrompt submits serialized workflow JSON to the prompt queue and
// returns the server-assigned prompt id. The workflow must already have had
// parameter values substituted; substitution is the submitter's job, not
// this adapter's.
func (c *Client) QueuePrompt(ctx context.Context, workflowJSON []byte, clientID string) (string, error) {
	payload := map[string]json.RawMessage{
		"prompt": workflowJSON,
	}
	if clientID != "" {
		idJSON, _ := json.Marshal(clientID)
		payload["client_id"] = idJSON
	}

	res, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(payload).
		Post("/prompt")
	if err != nil {
		return "", fmt.Errorf("queueing prompt: %w", err)
	}
	if !res.IsSuccess() {
		return "", fmt.Errorf("queueing prompt: server returned %s: %s", res.Status(), res.String())
	}

	var out struct {
		PromptID string `json:"prompt_id"`
	}
	if err := json.Unmarshal(res.Bytes(), &out); err != nil {
		return "", fmt.Errorf("decoding prompt response: %w", err)
	}
	ctxlog.FromContext(ctx).Debug("prompt queued", "prompt_id", out.PromptID)
	return out.PromptID, nil
}
