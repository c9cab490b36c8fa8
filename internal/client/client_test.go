package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/flowcanvas/internal/graph"
)

const objectInfoResponse = `{
	"KSampler": {
		"input": {"required": {"model": ["MODEL"], "steps": ["INT", {"default": 20}]}},
		"output": ["LATENT"]
	},
	"VAEDecode": {
		"input": {"required": {"samples": ["LATENT"], "vae": ["VAE"]}},
		"output": ["IMAGE"]
	}
}`

func newTestServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c := New(srv.URL)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestFetchCatalog(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/object_info", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(objectInfoResponse))
	})

	types, err := c.FetchCatalog(context.Background())
	require.NoError(t, err)
	require.Len(t, types, 2)
	assert.Equal(t, "KSampler", types[0].ClassType)
	assert.Equal(t, []string{"LATENT"}, types[0].Outputs)
	assert.Equal(t, "VAEDecode", types[1].ClassType)
}

func TestFetchCatalogServerError(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	_, err := c.FetchCatalog(context.Background())
	assert.ErrorContains(t, err, "500")
}

func TestCheckNodeTypes(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(objectInfoResponse))
	})

	g := graph.New("", "")
	for i, classType := range []string{"KSampler", "SomeCustomNode", "VAEDecode", "AnotherMissing"} {
		require.NoError(t, g.AddNode(&graph.Node{
			ID:        string(rune('1' + i)),
			ClassType: classType,
			Title:     classType,
		}))
	}

	missing, err := c.CheckNodeTypes(context.Background(), g)
	require.NoError(t, err)
	assert.Equal(t, []string{"SomeCustomNode", "AnotherMissing"}, missing)
}

func TestQueuePrompt(t *testing.T) {
	workflow := []byte(`{"1": {"class_type": "KSampler", "inputs": {"steps": 20}}}`)

	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/prompt", r.URL.Path)
		require.Equal(t, http.MethodPost, r.Method)

		var body struct {
			Prompt   json.RawMessage `json:"prompt"`
			ClientID string          `json:"client_id"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.JSONEq(t, string(workflow), string(body.Prompt))
		assert.Equal(t, "session-abc", body.ClientID)

		_, _ = w.Write([]byte(`{"prompt_id": "p-123", "number": 1}`))
	})

	promptID, err := c.QueuePrompt(context.Background(), workflow, "session-abc")
	require.NoError(t, err)
	assert.Equal(t, "p-123", promptID)
}

func TestQueuePromptRejected(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": "invalid prompt"}`, http.StatusBadRequest)
	})

	_, err := c.QueuePrompt(context.Background(), []byte(`{}`), "")
	require.Error(t, err)
	assert.ErrorContains(t, err, "400")
}
