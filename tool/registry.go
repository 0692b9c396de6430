package tool

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// ErrUnknownTool is returned when dispatching a name that was never registered.
var ErrUnknownTool = errors.New("tool: unknown tool")

// Spec describes a registered tool for discovery by the transport layer.
type Spec struct {
	// Name is the unique tool name (e.g. "submit_manuscript").
	Name string

	// Description is human-readable documentation for the tool.
	Description string

	// Roles are the role labels required to call the tool.
	// Empty for public tools.
	Roles []string

	// RateLimited indicates the tool sits behind the admission limiter.
	RateLimited bool

	// Public indicates the tool takes no auth_token at all.
	Public bool
}

type registered struct {
	spec    Spec
	handler Handler
}

// Registry maps tool names to guarded handlers.
//
// Contract:
// - Concurrency: safe for concurrent registration and dispatch.
// - Ownership: middleware is composed once at registration time; Dispatch
//   never re-wraps handlers.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]*registered
}

// NewRegistry creates an empty tool registry.
func NewRegistry() *Registry {
	return &Registry{
		tools: make(map[string]*registered),
	}
}

// Register adds a tool under its spec name, composing the given middleware
// around the handler (first middleware outermost).
func (r *Registry) Register(spec Spec, h Handler, mws ...Middleware) error {
	if spec.Name == "" || h == nil {
		return errors.New("tool: invalid registration")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tools[spec.Name]; exists {
		return fmt.Errorf("tool: %q already registered", spec.Name)
	}

	r.tools[spec.Name] = &registered{
		spec:    spec,
		handler: Chain(h, mws...),
	}
	return nil
}

// Dispatch invokes a registered tool by name. A fresh request ID is stamped
// into the context before any middleware runs.
func (r *Registry) Dispatch(ctx context.Context, name string, args Args) (any, error) {
	r.mu.RLock()
	reg, ok := r.tools[name]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTool, name)
	}

	ctx = WithRequestID(ctx, uuid.NewString())
	return reg.handler(ctx, args)
}

// Lookup returns the spec for a registered tool.
func (r *Registry) Lookup(name string) (Spec, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	reg, ok := r.tools[name]
	if !ok {
		return Spec{}, false
	}
	return reg.spec, true
}

// List returns the specs of all registered tools, sorted by name.
func (r *Registry) List() []Spec {
	r.mu.RLock()
	defer r.mu.RUnlock()

	specs := make([]Spec, 0, len(r.tools))
	for _, reg := range r.tools {
		specs = append(specs, reg.spec)
	}
	sort.Slice(specs, func(i, j int) bool { return specs[i].Name < specs[j].Name })
	return specs
}
