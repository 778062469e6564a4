// Package router dispatches internal directives (reserved /-prefixed
// commands) to their handlers and streams their output back as lines.
//
// The Router interface is the collaborator boundary: an external
// router/utility process can implement it. LocalRouter is the in-process
// implementation backed by a handler registry.
package router

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Line is one unit of directive output.
type Line struct {
	Text  string
	IsErr bool
}

// Router resolves a directive by name and streams its output. The returned
// channel is closed when the directive completes.
type Router interface {
	// Known reports whether the router owns the directive name.
	Known(name string) bool

	// Dispatch runs the directive. Implementations close the channel when
	// output is complete.
	Dispatch(ctx context.Context, name string, args []string) (<-chan Line, error)
}

// Handler implements one directive. Handlers emit output lines through
// emit; they must not retain emit after returning.
type Handler func(ctx context.Context, args []string, emit func(Line)) error

var _ Router = (*LocalRouter)(nil)

// LocalRouter is a registry-backed Router.
type LocalRouter struct {
	mu       sync.RWMutex
	handlers map[string]Handler
	help     map[string]string
}

// NewLocalRouter creates an empty LocalRouter.
func NewLocalRouter() *LocalRouter {
	return &LocalRouter{
		handlers: make(map[string]Handler),
		help:     make(map[string]string),
	}
}

// Register adds a directive handler. Registering a duplicate name replaces
// the previous handler; dispatch stays single-owner.
func (r *LocalRouter) Register(name, help string, h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[name] = h
	r.help[name] = help
}

// Known implements Router.
func (r *LocalRouter) Known(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.handlers[name]
	return ok
}

// Names returns registered directive names in sorted order.
func (r *LocalRouter) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Help returns the one-line help text for a directive.
func (r *LocalRouter) Help(name string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.help[name]
}

// Dispatch implements Router. The handler runs on its own goroutine; output
// lines arrive on the returned channel as they are emitted.
func (r *LocalRouter) Dispatch(ctx context.Context, name string, args []string) (<-chan Line, error) {
	r.mu.RLock()
	h, ok := r.handlers[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown directive %q", name)
	}

	out := make(chan Line, 16)
	go func() {
		defer close(out)
		emit := func(l Line) {
			select {
			case out <- l:
			case <-ctx.Done():
			}
		}
		if err := h(ctx, args, emit); err != nil {
			emit(Line{Text: err.Error(), IsErr: true})
		}
	}()
	return out, nil
}
