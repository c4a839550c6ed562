package server

import (
	"context"
	"fmt"
)

// TextContent is text content in a prompt message.
type TextContent struct {
	Type string `json:"type"` // always "text"
	Text string `json:"text"`
}

// NewTextContent creates text content.
func NewTextContent(text string) TextContent {
	return TextContent{Type: "text", Text: text}
}

// PromptMessage is one message in a prompt result.
type PromptMessage struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content any    `json:"content"`
}

// PromptResult is what prompts/get returns to the client.
type PromptResult struct {
	Description string          `json:"description,omitempty"`
	Messages    []PromptMessage `json:"messages"`
}

// PromptArgument describes a parameter a prompt accepts.
type PromptArgument struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Required    bool   `json:"required,omitempty"`
}

// PromptHandler produces a prompt result from the client's arguments.
type PromptHandler func(ctx context.Context, args map[string]string) (*PromptResult, error)

// Prompt is a named, parameterized template capability.
type Prompt struct {
	name        string
	description string
	arguments   []PromptArgument
	handler     PromptHandler
}

// PromptInfo is the metadata a prompt exposes through prompts/list.
type PromptInfo struct {
	Name        string
	Description string
	Arguments   []PromptArgument
}

// PromptBuilder accumulates a prompt definition; Build produces the
// immutable Prompt that gets registered.
type PromptBuilder struct {
	prompt *Prompt
}

// NewPrompt starts building a prompt with the given name.
func NewPrompt(name string) *PromptBuilder {
	return &PromptBuilder{
		prompt: &Prompt{name: name},
	}
}

// Description sets the prompt description.
func (b *PromptBuilder) Description(desc string) *PromptBuilder {
	b.prompt.description = desc
	return b
}

// Argument declares an argument the prompt accepts.
func (b *PromptBuilder) Argument(name, description string, required bool) *PromptBuilder {
	b.prompt.arguments = append(b.prompt.arguments, PromptArgument{
		Name:        name,
		Description: description,
		Required:    required,
	})
	return b
}

// Handler sets the prompt handler.
func (b *PromptBuilder) Handler(fn PromptHandler) *PromptBuilder {
	b.prompt.handler = fn
	return b
}

// Build finalizes the prompt.
func (b *PromptBuilder) Build() (*Prompt, error) {
	if b.prompt.name == "" {
		return nil, fmt.Errorf("prompt name is required")
	}
	if b.prompt.handler == nil {
		return nil, fmt.Errorf("prompt %q: handler is required", b.prompt.name)
	}
	return b.prompt, nil
}

// Name returns the prompt name.
func (p *Prompt) Name() string {
	return p.name
}

func (p *Prompt) info() PromptInfo {
	return PromptInfo{
		Name:        p.name,
		Description: p.description,
		Arguments:   p.arguments,
	}
}

// get checks required arguments and invokes the handler.
func (p *Prompt) get(ctx context.Context, args map[string]string) (*PromptResult, error) {
	for _, arg := range p.arguments {
		if _, ok := args[arg.Name]; arg.Required && !ok {
			return nil, fmt.Errorf("missing required argument: %s", arg.Name)
		}
	}
	return p.handler(ctx, args)
}
