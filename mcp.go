// Package mcp implements a Model Context Protocol server engine: a
// JSON-RPC 2.0 message loop over a byte stream, a capability registry
// for tools, prompts, and resources, and a dispatcher for the built-in
// MCP methods.
//
// Build the server completely, then serve; registries freeze when
// serving starts:
//
//	srv := mcp.NewServer(mcp.ServerInfo{
//	    Name:    "my-server",
//	    Version: "1.0.0",
//	})
//
//	type SearchInput struct {
//	    Query string `json:"query"`
//	}
//
//	tool, err := mcp.NewTool("search").
//	    Description("Search for items").
//	    Handler(func(ctx context.Context, input SearchInput) ([]string, error) {
//	        return []string{"result1", "result2"}, nil
//	    }).
//	    Build()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := srv.AddTool(tool); err != nil {
//	    log.Fatal(err)
//	}
//
//	if err := mcp.ServeStdio(ctx, srv); err != nil {
//	    log.Fatal(err)
//	}
package mcp

import (
	"context"

	"github.com/logiscapedev/mcp/jsonrpc"
	"github.com/logiscapedev/mcp/middleware"
	"github.com/logiscapedev/mcp/server"
	"github.com/logiscapedev/mcp/transport"
)

// Core types, re-exported for convenience.

// ServerInfo contains server metadata exposed to clients.
type ServerInfo = server.Info

// Capabilities reports which capability kinds the server advertises.
type Capabilities = server.Capabilities

// Server is the MCP server instance.
type Server = server.Server

// Option configures a Server.
type Option = server.Option

// Session serves one client connection.
type Session = server.Session

// Capability types.
type (
	ToolInfo        = server.ToolInfo
	PromptResult    = server.PromptResult
	PromptMessage   = server.PromptMessage
	PromptArgument  = server.PromptArgument
	PromptHandler   = server.PromptHandler
	PromptInfo      = server.PromptInfo
	TextContent     = server.TextContent
	ResourceContent = server.ResourceContent
	ResourceHandler = server.ResourceHandler
	ResourceInfo    = server.ResourceInfo
)

// Middleware types.
type (
	Middleware = middleware.Middleware
	Logger     = middleware.Logger
	LogField   = middleware.Field
)

// NewServer creates a new MCP server with the given info and options.
func NewServer(info ServerInfo, opts ...Option) *Server {
	return server.New(info, opts...)
}

// NewTool starts building a tool with the given name.
func NewTool(name string) *server.ToolBuilder {
	return server.NewTool(name)
}

// NewPrompt starts building a prompt with the given name.
func NewPrompt(name string) *server.PromptBuilder {
	return server.NewPrompt(name)
}

// NewResource starts building a resource with the given URI template.
func NewResource(uri string) *server.ResourceBuilder {
	return server.NewResource(uri)
}

// ServeOption configures how the server is run.
type ServeOption func(*serveOptions)

type serveOptions struct {
	middleware []middleware.Middleware
}

// WithMiddleware adds middleware to the request handling chain.
func WithMiddleware(m ...Middleware) ServeOption {
	return func(o *serveOptions) {
		o.middleware = append(o.middleware, m...)
	}
}

// WithLogger installs the default middleware stack (recovery, request
// ids, logging) around the given logger.
func WithLogger(l Logger) ServeOption {
	return func(o *serveOptions) {
		o.middleware = append(o.middleware, middleware.DefaultStack(l)...)
	}
}

// ServeStdio runs the server over stdin/stdout, blocking until the
// stream closes, the context is canceled, or a framing error occurs.
func ServeStdio(ctx context.Context, srv *Server, opts ...ServeOption) error {
	sess := server.NewSession(srv, sessionOptions(opts)...)
	return sess.Serve(ctx, transport.NewStdio())
}

// ServeStream runs the server over an arbitrary duplex stream.
func ServeStream(ctx context.Context, srv *Server, stream transport.Stream, opts ...ServeOption) error {
	sess := server.NewSession(srv, sessionOptions(opts)...)
	return sess.Serve(ctx, stream)
}

// ServeWebSocket runs the server over WebSocket connections on addr,
// one session per connection. This blocks until the context is
// canceled or the listener fails.
func ServeWebSocket(ctx context.Context, srv *Server, addr string, wsOpts []transport.WebSocketOption, opts ...ServeOption) error {
	wsOpts = append(wsOpts, transport.WithSessionOptions(sessionOptions(opts)...))
	return transport.NewWebSocket(addr, wsOpts...).Serve(ctx, srv)
}

// Chain composes multiple middleware into one.
func Chain(middlewares ...Middleware) Middleware {
	return middleware.Chain(middlewares...)
}

// LogF creates a log field.
func LogF(key string, value any) LogField {
	return middleware.F(key, value)
}

func sessionOptions(opts []ServeOption) []server.SessionOption {
	o := &serveOptions{}
	for _, opt := range opts {
		opt(o)
	}

	if len(o.middleware) == 0 {
		return nil
	}

	converted := make([]server.Middleware, 0, len(o.middleware))
	for _, m := range o.middleware {
		converted = append(converted, adaptMiddleware(m))
	}
	return []server.SessionOption{server.WithMiddleware(converted...)}
}

// adaptMiddleware bridges the middleware package's handler type to the
// server package's identical one.
func adaptMiddleware(m middleware.Middleware) server.Middleware {
	return func(next server.HandlerFunc) server.HandlerFunc {
		wrapped := m(middleware.HandlerFunc(next))
		return func(ctx context.Context, req *jsonrpc.Request) (*jsonrpc.Response, error) {
			return wrapped(ctx, req)
		}
	}
}
