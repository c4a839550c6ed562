// Package server implements the MCP server engine: the capability
// registries, the request dispatcher, and the session loop that ties
// them to a byte stream.
package server

import (
	"fmt"

	"github.com/logiscapedev/mcp/registry"
)

// Info contains server metadata exposed to clients during initialize.
type Info struct {
	Name    string
	Version string
}

// Capabilities reports which capability kinds the server advertises.
// A kind is advertised when at least one entry of that kind is
// registered.
type Capabilities struct {
	Tools     bool `json:"tools"`
	Prompts   bool `json:"prompts"`
	Resources bool `json:"resources"`
}

// Option configures a Server.
type Option func(*Server)

// WithInstructions sets free-form usage instructions returned to the
// client during initialize.
func WithInstructions(instructions string) Option {
	return func(s *Server) {
		s.instructions = instructions
	}
}

// Server owns the capability registries and produces sessions. Register
// every tool, prompt, and resource before serving: the registries
// freeze when the first session is created, and registration after that
// fails with registry.ErrFrozen.
type Server struct {
	info         Info
	instructions string

	tools     *registry.Store[*Tool]
	prompts   *registry.Store[*Prompt]
	resources *registry.Store[*Resource]
}

// New creates a server with the given info and options.
func New(info Info, opts ...Option) *Server {
	s := &Server{
		info:      info,
		tools:     registry.NewStore[*Tool](),
		prompts:   registry.NewStore[*Prompt](),
		resources: registry.NewStore[*Resource](),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Info returns the server info.
func (s *Server) Info() Info {
	return s.info
}

// Capabilities returns the capability kinds this server advertises.
func (s *Server) Capabilities() Capabilities {
	return Capabilities{
		Tools:     s.tools.Len() > 0,
		Prompts:   s.prompts.Len() > 0,
		Resources: s.resources.Len() > 0,
	}
}

// AddTool registers a built tool under its name.
func (s *Server) AddTool(t *Tool) error {
	if err := s.tools.Register(t.name, t); err != nil {
		return fmt.Errorf("add tool: %w", err)
	}
	return nil
}

// AddPrompt registers a built prompt under its name.
func (s *Server) AddPrompt(p *Prompt) error {
	if err := s.prompts.Register(p.name, p); err != nil {
		return fmt.Errorf("add prompt: %w", err)
	}
	return nil
}

// AddResource registers a built resource under its URI template.
func (s *Server) AddResource(r *Resource) error {
	if err := s.resources.Register(r.uri, r); err != nil {
		return fmt.Errorf("add resource: %w", err)
	}
	return nil
}

// Tools returns info about all registered tools in registration order.
func (s *Server) Tools() []ToolInfo {
	tools := s.tools.Values()
	result := make([]ToolInfo, 0, len(tools))
	for _, t := range tools {
		result = append(result, t.info())
	}
	return result
}

// Prompts returns info about all registered prompts in registration
// order.
func (s *Server) Prompts() []PromptInfo {
	prompts := s.prompts.Values()
	result := make([]PromptInfo, 0, len(prompts))
	for _, p := range prompts {
		result = append(result, p.info())
	}
	return result
}

// Resources returns info about all registered resources in registration
// order.
func (s *Server) Resources() []ResourceInfo {
	resources := s.resources.Values()
	result := make([]ResourceInfo, 0, len(resources))
	for _, r := range resources {
		result = append(result, r.info())
	}
	return result
}

// GetTool retrieves a tool by name.
func (s *Server) GetTool(name string) (*Tool, bool) {
	return s.tools.Get(name)
}

// GetPrompt retrieves a prompt by name.
func (s *Server) GetPrompt(name string) (*Prompt, bool) {
	return s.prompts.Get(name)
}

// FindResource resolves a concrete URI to a registered resource, by
// exact key first and then by template match, in registration order.
func (s *Server) FindResource(uri string) (*Resource, bool) {
	if r, ok := s.resources.Get(uri); ok {
		return r, true
	}
	for _, r := range s.resources.Values() {
		if _, ok := r.match(uri); ok {
			return r, true
		}
	}
	return nil, false
}

// freeze makes all registries read-only. Called when a session starts.
func (s *Server) freeze() {
	s.tools.Freeze()
	s.prompts.Freeze()
	s.resources.Freeze()
}
