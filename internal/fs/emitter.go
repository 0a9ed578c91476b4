package fs

import (
	"context"
	"strconv"
	"sync"
)

// Node lifecycle events, emitted under ScopeFiles.
const (
	ScopeFiles = "files"

	EventPostCreate = "postCreate"
	EventPostWrite  = "postWrite"
	EventPostTouch  = "postTouch"
	EventPreDelete  = "preDelete"
	EventPostDelete = "postDelete"
)

// Trash hooks.
const (
	HookTrashbin    = "trashbin"
	HookPostRestore = "post_restore"
)

// NodeListener receives node lifecycle events.
type NodeListener func(ctx context.Context, node *Node) error

// HookListener receives parameter-style hooks.
type HookListener func(ctx context.Context, params Params) error

// Params is the payload of a hook.
type Params map[string]interface{}

// String returns a string parameter.
func (p Params) String(key string) (string, bool) {
	s, ok := p[key].(string)
	return s, ok
}

// Int64 returns an integer parameter. Decimal strings are accepted.
func (p Params) Int64(key string) (int64, bool) {
	switch v := p[key].(type) {
	case int:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	case string:
		n, err := strconv.ParseInt(v, 10, 64)
		return n, err == nil
	default:
		return 0, false
	}
}

// Emitter is a synchronous publish/subscribe registry. Listeners run on the
// caller's goroutine in registration order; the first error stops dispatch
// and is returned to the emitting operation.
type Emitter struct {
	mu    sync.RWMutex
	nodes map[string][]NodeListener
	hooks map[string][]HookListener
}

// NewEmitter creates an empty emitter.
func NewEmitter() *Emitter {
	return &Emitter{
		nodes: make(map[string][]NodeListener),
		hooks: make(map[string][]HookListener),
	}
}

// Listen subscribes fn to a node event.
func (e *Emitter) Listen(scope, event string, fn NodeListener) {
	e.mu.Lock()
	defer e.mu.Unlock()
	k := eventKey(scope, event)
	e.nodes[k] = append(e.nodes[k], fn)
}

// ConnectHook subscribes fn to a parameter hook.
func (e *Emitter) ConnectHook(class, name string, fn HookListener) {
	e.mu.Lock()
	defer e.mu.Unlock()
	k := eventKey(class, name)
	e.hooks[k] = append(e.hooks[k], fn)
}

// EmitNode dispatches a node event.
func (e *Emitter) EmitNode(ctx context.Context, scope, event string, node *Node) error {
	e.mu.RLock()
	listeners := append([]NodeListener(nil), e.nodes[eventKey(scope, event)]...)
	e.mu.RUnlock()

	for _, fn := range listeners {
		if err := fn(ctx, node); err != nil {
			return err
		}
	}
	return nil
}

// EmitHook dispatches a parameter hook.
func (e *Emitter) EmitHook(ctx context.Context, class, name string, params Params) error {
	e.mu.RLock()
	listeners := append([]HookListener(nil), e.hooks[eventKey(class, name)]...)
	e.mu.RUnlock()

	for _, fn := range listeners {
		if err := fn(ctx, params); err != nil {
			return err
		}
	}
	return nil
}

func eventKey(scope, event string) string {
	return scope + "::" + event
}
