package registry

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/aretw0/toolhouse/pkg/domain"
)

// ToolFunction defines the signature for a tool implementation.
// It receives a context and a map of arguments, and returns a result or error.
type ToolFunction func(ctx context.Context, args map[string]any) (any, error)

// Middleware wraps the execution of a named tool.
type Middleware func(name string, next ToolFunction) ToolFunction

// Entry pairs a tool definition with its implementation.
type Entry struct {
	Tool domain.Tool
	Fn   ToolFunction
}

// Registry manages the available tools.
// Safe for concurrent use.
type Registry struct {
	mu         sync.RWMutex
	tools      map[string]Entry
	middleware []Middleware
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		tools: make(map[string]Entry),
	}
}

// Register adds a tool to the registry.
// If a tool with the same name exists, it is overwritten.
func (r *Registry) Register(tool domain.Tool, fn ToolFunction) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tools[tool.Name] = Entry{Tool: tool, Fn: fn}
}

// Use appends middleware. The first middleware added is the outermost.
func (r *Registry) Use(mw ...Middleware) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.middleware = append(r.middleware, mw...)
}

// Lookup returns the definition of a registered tool.
func (r *Registry) Lookup(name string) (domain.Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.tools[name]
	return e.Tool, ok
}

// List returns every registered tool sorted by name.
func (r *Registry) List() []domain.Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]domain.Tool, 0, len(r.tools))
	for _, e := range r.tools {
		list = append(list, e.Tool)
	}
	slices.SortFunc(list, func(a, b domain.Tool) int {
		return strings.Compare(a.Name, b.Name)
	})
	return list
}

// Execute looks up a tool by name and executes it through the middleware chain.
// Returns domain.ErrToolNotFound if the tool is not registered.
func (r *Registry) Execute(ctx context.Context, name string, args map[string]any) (any, error) {
	r.mu.RLock()
	e, ok := r.tools[name]
	chain := slices.Clone(r.middleware)
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrToolNotFound, name)
	}
	if args == nil {
		args = map[string]any{}
	}
	return wrap(chain, name, e.Fn)(ctx, args)
}

// Wrap applies the middleware chain to fn as if it were the tool name.
// Transports that call a tool's Go API directly use it so those calls are
// sanitised, logged and measured like Execute.
func (r *Registry) Wrap(name string, fn ToolFunction) ToolFunction {
	r.mu.RLock()
	chain := slices.Clone(r.middleware)
	r.mu.RUnlock()
	return wrap(chain, name, fn)
}

func wrap(chain []Middleware, name string, fn ToolFunction) ToolFunction {
	for i := len(chain) - 1; i >= 0; i-- {
		fn = chain[i](name, fn)
	}
	return fn
}

// Call executes a ToolCall and folds tool failures into the result.
// The returned error is non-nil only when the tool does not exist.
func (r *Registry) Call(ctx context.Context, call domain.ToolCall) (domain.ToolResult, error) {
	out, err := r.Execute(ctx, call.Name, call.Args)
	if errors.Is(err, domain.ErrToolNotFound) {
		return domain.ToolResult{ID: call.ID, IsError: true, Error: err.Error()}, err
	}
	if err != nil {
		return domain.ToolResult{ID: call.ID, IsError: true, Error: err.Error()}, nil
	}
	return domain.ToolResult{ID: call.ID, Result: out}, nil
}
