package server

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/invopop/jsonschema"

	"github.com/logiscapedev/mcp/jsonrpc"
)

// Wire shapes for the built-in methods.

type serverInfoPayload struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

type initializeResult struct {
	ProtocolVersion string            `json:"protocolVersion"`
	ServerInfo      serverInfoPayload `json:"serverInfo"`
	Capabilities    Capabilities      `json:"capabilities"`
	Instructions    string            `json:"instructions,omitempty"`
}

type toolPayload struct {
	Name        string             `json:"name"`
	Description string             `json:"description,omitempty"`
	InputSchema *jsonschema.Schema `json:"inputSchema,omitempty"`
}

type promptPayload struct {
	Name        string           `json:"name"`
	Description string           `json:"description,omitempty"`
	Arguments   []PromptArgument `json:"arguments,omitempty"`
}

type resourcePayload struct {
	URI         string `json:"uri"`
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
	MimeType    string `json:"mimeType,omitempty"`
}

// dispatch routes a decoded request to the matching built-in method.
// Before the initialize handshake only initialize, ping, and
// notifications are accepted; everything else fails with
// NotInitialized.
func (s *Session) dispatch(ctx context.Context, req *jsonrpc.Request) (*jsonrpc.Response, error) {
	switch req.Method {
	case MethodInitialize:
		return s.handleInitialize(req)
	case MethodInitialized:
		// Client acknowledgment, nothing to do.
		return nil, nil
	case MethodPing:
		return jsonrpc.NewResponse(req.ID, struct{}{}), nil
	}

	if s.State() != StateInitialized {
		return nil, jsonrpc.NewNotInitialized("method " + req.Method + " called before initialize")
	}

	switch req.Method {
	case MethodToolsList:
		return s.handleToolsList(req)
	case MethodToolsCall:
		return s.handleToolsCall(ctx, req)
	case MethodPromptsList:
		return s.handlePromptsList(req)
	case MethodPromptsGet:
		return s.handlePromptsGet(ctx, req)
	case MethodResourcesList:
		return s.handleResourcesList(req)
	case MethodResourcesRead:
		return s.handleResourcesRead(ctx, req)
	default:
		return nil, jsonrpc.NewMethodNotFound(req.Method)
	}
}

func (s *Session) handleInitialize(req *jsonrpc.Request) (*jsonrpc.Response, error) {
	if len(req.Params) > 0 {
		var params struct {
			ProtocolVersion string `json:"protocolVersion"`
		}
		if err := json.Unmarshal(req.Params, &params); err != nil {
			return nil, jsonrpc.NewInvalidParams(err.Error())
		}
		// Any requested revision is answered with the one we speak;
		// version selection is the client's move per the MCP handshake.
	}

	s.state.CompareAndSwap(int32(StateUninitialized), int32(StateInitialized))

	info := s.srv.Info()
	result := initializeResult{
		ProtocolVersion: ProtocolVersion,
		ServerInfo: serverInfoPayload{
			Name:    info.Name,
			Version: info.Version,
		},
		Capabilities: s.srv.Capabilities(),
		Instructions: s.srv.instructions,
	}
	return jsonrpc.NewResponse(req.ID, result), nil
}

func (s *Session) handleToolsList(req *jsonrpc.Request) (*jsonrpc.Response, error) {
	tools := s.srv.Tools()
	payload := make([]toolPayload, 0, len(tools))
	for _, t := range tools {
		payload = append(payload, toolPayload{
			Name:        t.Name,
			Description: t.Description,
			InputSchema: t.InputSchema,
		})
	}
	return jsonrpc.NewResponse(req.ID, map[string]any{"tools": payload}), nil
}

func (s *Session) handleToolsCall(ctx context.Context, req *jsonrpc.Request) (*jsonrpc.Response, error) {
	var params struct {
		Name      string          `json:"name"`
		Arguments json.RawMessage `json:"arguments"`
	}
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return nil, jsonrpc.NewInvalidParams(err.Error())
	}

	tool, ok := s.srv.GetTool(params.Name)
	if !ok {
		return nil, jsonrpc.NewNotFound("tool not found: " + params.Name)
	}

	result, err := tool.call(ctx, params.Arguments)
	if err != nil {
		return nil, asRPCError(err)
	}

	return jsonrpc.NewResponse(req.ID, map[string]any{"content": result}), nil
}

func (s *Session) handlePromptsList(req *jsonrpc.Request) (*jsonrpc.Response, error) {
	prompts := s.srv.Prompts()
	payload := make([]promptPayload, 0, len(prompts))
	for _, p := range prompts {
		payload = append(payload, promptPayload{
			Name:        p.Name,
			Description: p.Description,
			Arguments:   p.Arguments,
		})
	}
	return jsonrpc.NewResponse(req.ID, map[string]any{"prompts": payload}), nil
}

func (s *Session) handlePromptsGet(ctx context.Context, req *jsonrpc.Request) (*jsonrpc.Response, error) {
	var params struct {
		Name      string            `json:"name"`
		Arguments map[string]string `json:"arguments"`
	}
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return nil, jsonrpc.NewInvalidParams(err.Error())
	}

	prompt, ok := s.srv.GetPrompt(params.Name)
	if !ok {
		return nil, jsonrpc.NewNotFound("prompt not found: " + params.Name)
	}

	result, err := prompt.get(ctx, params.Arguments)
	if err != nil {
		return nil, asRPCError(err)
	}

	return jsonrpc.NewResponse(req.ID, result), nil
}

func (s *Session) handleResourcesList(req *jsonrpc.Request) (*jsonrpc.Response, error) {
	resources := s.srv.Resources()
	payload := make([]resourcePayload, 0, len(resources))
	for _, r := range resources {
		payload = append(payload, resourcePayload{
			URI:         r.URI,
			Name:        r.Name,
			Description: r.Description,
			MimeType:    r.MimeType,
		})
	}
	return jsonrpc.NewResponse(req.ID, map[string]any{"resources": payload}), nil
}

func (s *Session) handleResourcesRead(ctx context.Context, req *jsonrpc.Request) (*jsonrpc.Response, error) {
	var params struct {
		URI string `json:"uri"`
	}
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return nil, jsonrpc.NewInvalidParams(err.Error())
	}

	resource, ok := s.srv.FindResource(params.URI)
	if !ok {
		return nil, jsonrpc.NewNotFound("resource not found: " + params.URI)
	}

	content, err := resource.read(ctx, params.URI)
	if err != nil {
		return nil, asRPCError(err)
	}

	return jsonrpc.NewResponse(req.ID, map[string]any{"contents": []*ResourceContent{content}}), nil
}

// asRPCError passes *jsonrpc.Error through and maps any other handler
// failure to a generic internal error with the message surfaced.
func asRPCError(err error) *jsonrpc.Error {
	var rpcErr *jsonrpc.Error
	if errors.As(err, &rpcErr) {
		return rpcErr
	}
	return jsonrpc.NewInternalError(err.Error())
}
