// Package testutil provides testing utilities for MCP servers.
//
// The Client drives a session in memory, without a transport, so tests
// exercise the same dispatch path a real connection would:
//
//	srv := server.New(server.Info{Name: "test", Version: "1.0.0"})
//	tool, _ := server.NewTool("greet").Handler(func(ctx context.Context, in GreetInput) (string, error) {
//	    return "Hello, " + in.Name, nil
//	}).Build()
//	_ = srv.AddTool(tool)
//
//	tc := testutil.NewClient(t, srv)
//	result, err := tc.CallTool("greet", map[string]any{"name": "World"})
package testutil

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"

	"github.com/logiscapedev/mcp/jsonrpc"
	"github.com/logiscapedev/mcp/server"
)

// Client is an in-memory test client for an MCP server.
type Client struct {
	t    testing.TB
	sess *server.Session

	mu    sync.Mutex
	reqID int64
}

// NewClient creates a client for srv and performs the initialize
// handshake, failing the test if it does not succeed.
func NewClient(t testing.TB, srv *server.Server, opts ...server.SessionOption) *Client {
	t.Helper()

	c := &Client{
		t:    t,
		sess: server.NewSession(srv, opts...),
	}

	resp := c.Send(server.MethodInitialize, nil)
	if resp == nil || resp.Error != nil {
		t.Fatalf("initialize failed: %+v", resp)
	}
	return c
}

// NewUninitializedClient creates a client without performing the
// handshake, for tests that exercise pre-init behavior.
func NewUninitializedClient(t testing.TB, srv *server.Server, opts ...server.SessionOption) *Client {
	t.Helper()
	return &Client{
		t:    t,
		sess: server.NewSession(srv, opts...),
	}
}

// Session returns the underlying session.
func (c *Client) Session() *server.Session {
	return c.sess
}

func (c *Client) nextID() json.RawMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reqID++
	return json.RawMessage(fmt.Sprintf("%d", c.reqID))
}

// Send dispatches a request with a fresh id and returns the response.
func (c *Client) Send(method string, params any) *jsonrpc.Response {
	c.t.Helper()
	return c.send(c.nextID(), method, params)
}

// SendWithID dispatches a request with an explicit raw id.
func (c *Client) SendWithID(id json.RawMessage, method string, params any) *jsonrpc.Response {
	c.t.Helper()
	return c.send(id, method, params)
}

// Notify dispatches a notification (no id). The returned response is
// always nil; it is returned so tests can assert that.
func (c *Client) Notify(method string, params any) *jsonrpc.Response {
	c.t.Helper()
	return c.send(nil, method, params)
}

func (c *Client) send(id json.RawMessage, method string, params any) *jsonrpc.Response {
	c.t.Helper()

	var paramsData json.RawMessage
	if params != nil {
		data, err := json.Marshal(params)
		if err != nil {
			c.t.Fatalf("marshal params: %v", err)
		}
		paramsData = data
	}

	req := &jsonrpc.Request{
		JSONRPC: jsonrpc.Version,
		ID:      id,
		Method:  method,
		Params:  paramsData,
	}
	return c.sess.Handle(context.Background(), req)
}

// CallTool invokes tools/call and returns the content payload.
func (c *Client) CallTool(name string, arguments any) (any, error) {
	c.t.Helper()

	resp := c.Send(server.MethodToolsCall, map[string]any{
		"name":      name,
		"arguments": arguments,
	})
	if resp.Error != nil {
		return nil, resp.Error
	}

	var result struct {
		Content any `json:"content"`
	}
	if err := DecodeResult(resp, &result); err != nil {
		return nil, err
	}
	return result.Content, nil
}

// ListTools invokes tools/list and returns the tool names in order.
func (c *Client) ListTools() ([]string, error) {
	c.t.Helper()

	resp := c.Send(server.MethodToolsList, nil)
	if resp.Error != nil {
		return nil, resp.Error
	}

	var result struct {
		Tools []struct {
			Name string `json:"name"`
		} `json:"tools"`
	}
	if err := DecodeResult(resp, &result); err != nil {
		return nil, err
	}

	names := make([]string, 0, len(result.Tools))
	for _, tool := range result.Tools {
		names = append(names, tool.Name)
	}
	return names, nil
}

// GetPrompt invokes prompts/get and returns the decoded result.
func (c *Client) GetPrompt(name string, arguments map[string]string) (*server.PromptResult, error) {
	c.t.Helper()

	resp := c.Send(server.MethodPromptsGet, map[string]any{
		"name":      name,
		"arguments": arguments,
	})
	if resp.Error != nil {
		return nil, resp.Error
	}

	var result server.PromptResult
	if err := DecodeResult(resp, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ReadResource invokes resources/read and returns the first content
// entry.
func (c *Client) ReadResource(uri string) (*server.ResourceContent, error) {
	c.t.Helper()

	resp := c.Send(server.MethodResourcesRead, map[string]any{"uri": uri})
	if resp.Error != nil {
		return nil, resp.Error
	}

	var result struct {
		Contents []server.ResourceContent `json:"contents"`
	}
	if err := DecodeResult(resp, &result); err != nil {
		return nil, err
	}
	if len(result.Contents) == 0 {
		return nil, fmt.Errorf("resources/read returned no contents")
	}
	return &result.Contents[0], nil
}

// DecodeResult round-trips a response result through JSON into out,
// giving tests the same view of the payload a wire client would see.
func DecodeResult(resp *jsonrpc.Response, out any) error {
	data, err := json.Marshal(resp.Result)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("unmarshal result: %w", err)
	}
	return nil
}
