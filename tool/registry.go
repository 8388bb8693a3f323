package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/samber/lo"

	ai "github.com/spetersoncode/flowgate"
)

// registeredTool combines a tool definition with its handler.
type registeredTool struct {
	tool    ai.Tool
	handler Handler
}

// Registry manages registered tools and their handlers.
// It is safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]registeredTool
}

// NewRegistry creates an empty tool registry.
func NewRegistry() *Registry {
	return &Registry{
		tools: make(map[string]registeredTool),
	}
}

// Register adds a tool with its handler to the registry.
// Returns an error if a tool with the same name is already registered.
func (r *Registry) Register(tool ai.Tool, handler Handler) error {
	if tool.Name == "" {
		return fmt.Errorf("tool: name is required")
	}
	if handler == nil {
		return fmt.Errorf("tool: %s has no handler", tool.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tools[tool.Name]; exists {
		return &ErrToolAlreadyRegistered{Name: tool.Name}
	}
	r.tools[tool.Name] = registeredTool{tool: tool, handler: handler}
	return nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(tool ai.Tool, handler Handler) {
	if err := r.Register(tool, handler); err != nil {
		panic(err)
	}
}

// Unregister removes a tool from the registry.
// It is a no-op if the tool is not registered.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tools, name)
}

// Get retrieves a handler by tool name.
func (r *Registry) Get(name string) (Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rt, ok := r.tools[name]
	return rt.handler, ok
}

// GetTool retrieves a tool definition by name.
func (r *Registry) GetTool(name string) (ai.Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rt, ok := r.tools[name]
	return rt.tool, ok
}

// Tools returns all registered tool definitions sorted by name,
// ready to be declared to a provider.
func (r *Registry) Tools() []ai.Tool {
	r.mu.RLock()
	tools := lo.MapToSlice(r.tools, func(_ string, rt registeredTool) ai.Tool { return rt.tool })
	r.mu.RUnlock()

	slices.SortFunc(tools, func(a, b ai.Tool) int { return strings.Compare(a.Name, b.Name) })
	return tools
}

// Names returns the names of all registered tools, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	names := lo.Keys(r.tools)
	r.mu.RUnlock()

	slices.Sort(names)
	return names
}

// Len returns the number of registered tools.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tools)
}

// Execute runs the handler for a tool call and serializes its result into
// a ToolResult carrying the call's ID.
//
// An unregistered name returns *ErrToolNotFound. A handler or serialization
// failure returns *ErrToolExecution; the error is never folded into the
// result content.
func (r *Registry) Execute(ctx context.Context, call ai.ToolCall) (ai.ToolResult, error) {
	r.mu.RLock()
	rt, ok := r.tools[call.Name]
	r.mu.RUnlock()

	if !ok {
		return ai.ToolResult{}, &ErrToolNotFound{Name: call.Name}
	}

	out, err := rt.handler(ctx, call)
	if err != nil {
		return ai.ToolResult{}, &ErrToolExecution{Name: call.Name, CallID: call.ID, Err: err}
	}
	content, err := serialize(out)
	if err != nil {
		return ai.ToolResult{}, &ErrToolExecution{Name: call.Name, CallID: call.ID, Err: fmt.Errorf("serialize result: %w", err)}
	}

	return ai.ToolResult{
		ToolCallID: call.ID,
		Name:       call.Name,
		Content:    content,
	}, nil
}

// ExecuteAll runs every call and returns one result per call, in call order.
//
// With parallel set, calls run concurrently and independently. Every call
// is attempted either way; the error returned belongs to the earliest
// failing call. Unknown tools are reported before anything runs.
func (r *Registry) ExecuteAll(ctx context.Context, calls []ai.ToolCall, parallel bool) ([]ai.ToolResult, error) {
	for _, call := range calls {
		if _, ok := r.GetTool(call.Name); !ok {
			return nil, &ErrToolNotFound{Name: call.Name}
		}
	}

	results := make([]ai.ToolResult, len(calls))
	errs := make([]error, len(calls))

	if parallel && len(calls) > 1 {
		var wg sync.WaitGroup
		for i, call := range calls {
			wg.Add(1)
			go func(i int, call ai.ToolCall) {
				defer wg.Done()
				results[i], errs[i] = r.Execute(ctx, call)
			}(i, call)
		}
		wg.Wait()
	} else {
		for i, call := range calls {
			results[i], errs[i] = r.Execute(ctx, call)
		}
	}

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return results, nil
}

// Registration holds a tool and its handler for fluent registration.
type Registration struct {
	Tool    ai.Tool
	Handler Handler
}

// Func creates a strict Registration whose parameter schema is reflected
// from T. Arguments that fail to decode are reported as execution errors.
// Panics if schema generation fails.
//
//	registry := tool.NewRegistry().Add(
//	    tool.Func("search_kb", "Search the knowledge base",
//	        func(ctx context.Context, args SearchArgs) (*KnowledgeBase, error) {
//	            return kb, nil
//	        }),
//	)
func Func[T, R any](name, description string, fn TypedHandler[T, R]) Registration {
	handler := func(ctx context.Context, call ai.ToolCall) (any, error) {
		args, err := decodeArgs[T](call)
		if err != nil {
			return nil, fmt.Errorf("invalid arguments: %w", err)
		}
		return fn(ctx, args)
	}
	return Registration{
		Tool: ai.Tool{
			Name:        name,
			Description: description,
			Parameters:  MustSchemaFor[T](),
			Strict:      true,
		},
		Handler: handler,
	}
}

// WithHandler creates a Registration from a Handler and a prebuilt schema,
// such as one from the schema package.
func WithHandler(name, description string, parameters json.RawMessage, h Handler) Registration {
	return Registration{
		Tool: ai.Tool{
			Name:        name,
			Description: description,
			Parameters:  parameters,
		},
		Handler: h,
	}
}

// Add registers one or more tools to the registry.
// Panics if any tool is already registered.
func (r *Registry) Add(regs ...Registration) *Registry {
	for _, reg := range regs {
		r.MustRegister(reg.Tool, reg.Handler)
	}
	return r
}
