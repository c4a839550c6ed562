package server

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/invopop/jsonschema"

	"github.com/logiscapedev/mcp/jsonrpc"
	"github.com/logiscapedev/mcp/schema"
)

// Tool is a named, invocable capability with a typed handler.
type Tool struct {
	name          string
	description   string
	inputType     reflect.Type
	inputIsPtr    bool
	inputSchema   *jsonschema.Schema
	validateInput bool
	handler       reflect.Value
	hasContext    bool
}

// ToolInfo is the metadata a tool exposes through tools/list.
type ToolInfo struct {
	Name        string
	Description string
	InputSchema *jsonschema.Schema
}

// ToolBuilder accumulates a tool definition; Build produces the
// immutable Tool that gets registered.
type ToolBuilder struct {
	tool *Tool
	err  error
}

// NewTool starts building a tool with the given name.
func NewTool(name string) *ToolBuilder {
	return &ToolBuilder{
		tool: &Tool{name: name},
	}
}

// Description sets the tool description.
func (b *ToolBuilder) Description(desc string) *ToolBuilder {
	if b.err != nil {
		return b
	}
	b.tool.description = desc
	return b
}

// ValidateInput enables schema validation of arguments before the
// handler runs. Invalid arguments produce an InvalidParams error.
func (b *ToolBuilder) ValidateInput() *ToolBuilder {
	if b.err != nil {
		return b
	}
	b.tool.validateInput = true
	return b
}

// Handler sets the tool handler. The signature must be one of:
//   - func(input T) (R, error)
//   - func(ctx context.Context, input T) (R, error)
//
// The input schema advertised in tools/list is generated from T. T may
// be a struct or a pointer to one.
func (b *ToolBuilder) Handler(fn any) *ToolBuilder {
	if b.err != nil {
		return b
	}

	if err := b.inspectHandler(fn); err != nil {
		b.err = fmt.Errorf("tool %q: %w", b.tool.name, err)
		return b
	}

	b.tool.handler = reflect.ValueOf(fn)
	return b
}

// Build finalizes the tool.
func (b *ToolBuilder) Build() (*Tool, error) {
	if b.err != nil {
		return nil, b.err
	}
	if b.tool.name == "" {
		return nil, fmt.Errorf("tool name is required")
	}
	if !b.tool.handler.IsValid() {
		return nil, fmt.Errorf("tool %q: handler is required", b.tool.name)
	}
	return b.tool, nil
}

var (
	contextType = reflect.TypeOf((*context.Context)(nil)).Elem()
	errorType   = reflect.TypeOf((*error)(nil)).Elem()
)

func (b *ToolBuilder) inspectHandler(fn any) error {
	fnType := reflect.TypeOf(fn)
	if fnType == nil || fnType.Kind() != reflect.Func {
		return fmt.Errorf("handler must be a function, got %T", fn)
	}

	numIn := fnType.NumIn()
	if numIn < 1 || numIn > 2 {
		return fmt.Errorf("handler must take 1 or 2 parameters, got %d", numIn)
	}

	inputIdx := 0
	if numIn == 2 {
		if !fnType.In(0).Implements(contextType) {
			return fmt.Errorf("first parameter must be context.Context when using 2 parameters")
		}
		b.tool.hasContext = true
		inputIdx = 1
	}

	inputType := fnType.In(inputIdx)
	if inputType.Kind() == reflect.Pointer {
		b.tool.inputIsPtr = true
		inputType = inputType.Elem()
	}
	b.tool.inputType = inputType

	inputSchema, err := schema.Generate(inputType)
	if err != nil {
		return fmt.Errorf("generate input schema: %w", err)
	}
	b.tool.inputSchema = inputSchema

	if fnType.NumOut() != 2 {
		return fmt.Errorf("handler must return (result, error), got %d return values", fnType.NumOut())
	}
	if !fnType.Out(1).Implements(errorType) {
		return fmt.Errorf("second return value must be error")
	}

	return nil
}

// Name returns the tool name.
func (t *Tool) Name() string {
	return t.name
}

// Description returns the tool description.
func (t *Tool) Description() string {
	return t.description
}

func (t *Tool) info() ToolInfo {
	return ToolInfo{
		Name:        t.name,
		Description: t.description,
		InputSchema: t.inputSchema,
	}
}

// call validates and decodes args into the handler's input type and
// invokes the handler.
func (t *Tool) call(ctx context.Context, args json.RawMessage) (any, error) {
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}

	if t.validateInput {
		if err := schema.Validate(t.inputSchema, args); err != nil {
			return nil, jsonrpc.NewInvalidParams(fmt.Sprintf("input validation failed: %v", err))
		}
	}

	inputPtr := reflect.New(t.inputType)
	if err := json.Unmarshal(args, inputPtr.Interface()); err != nil {
		return nil, jsonrpc.NewInvalidParams(fmt.Sprintf("failed to parse arguments: %v", err))
	}

	in := make([]reflect.Value, 0, 2)
	if t.hasContext {
		in = append(in, reflect.ValueOf(ctx))
	}
	if t.inputIsPtr {
		in = append(in, inputPtr)
	} else {
		in = append(in, inputPtr.Elem())
	}

	out := t.handler.Call(in)

	if errVal := out[1].Interface(); errVal != nil {
		return nil, errVal.(error)
	}
	return out[0].Interface(), nil
}
