package expression

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/expr-lang/expr/vm"

	"github.com/oakflow/oakflow/internal/log"
	oakerrors "github.com/oakflow/oakflow/pkg/errors"
	"github.com/oakflow/oakflow/pkg/process"
)

// Engine is the expression-context core of the process engine. It owns
// the lazy construction of variable contexts, the whitelist gate in
// front of the expression engine, and the hierarchical fallback
// resolution across the process instance tree.
type Engine struct {
	store     Store
	proc      process.Service
	providers []process.Provider
	logger    *slog.Logger

	// programs caches compiled expressions keyed by body text.
	// Programs are immutable once compiled, so concurrent evaluations
	// share them without further locking.
	programs map[string]*vm.Program
	mu       sync.RWMutex
}

// Option configures an Engine.
type Option func(*Engine)

// WithStore sets the context store backend. Defaults to an in-memory
// store.
func WithStore(s Store) Option {
	return func(e *Engine) { e.store = s }
}

// WithProviders registers context data providers. Providers are
// applied in registration order when a context is built; the last
// write per key wins.
func WithProviders(providers ...process.Provider) Option {
	return func(e *Engine) { e.providers = append(e.providers, providers...) }
}

// WithLogger sets the logger. Defaults to slog.Default.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// New creates an expression engine over the given process service.
func New(svc process.Service, opts ...Option) *Engine {
	e := &Engine{
		proc:     svc,
		programs: make(map[string]*vm.Program),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.store == nil {
		e.store = NewMemoryStore()
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	e.logger = log.WithComponent(e.logger, "expression")
	return e
}

// RemoveContext removes the cached context of an instance. It reports
// whether a context existed.
func (e *Engine) RemoveContext(ctx context.Context, inst *process.Instance) (bool, error) {
	return e.store.Remove(ctx, inst.ID)
}

// RemoveVariable removes a single variable from an instance's cached
// context. A missing context or key is a no-op.
func (e *Engine) RemoveVariable(ctx context.Context, instanceID int64, key string) error {
	c, err := e.store.Get(ctx, instanceID)
	if err != nil {
		return err
	}
	if c == nil {
		return nil
	}
	if c.Remove(key) {
		return e.store.Put(ctx, instanceID, c)
	}
	return nil
}

// AddVariables merges variables into the instance's context, building
// it first if necessary. Keys failing the whitelist are dropped with a
// warning. Returns *errors.ContextMissingError when no context exists
// and none can be built.
func (e *Engine) AddVariables(ctx context.Context, inst *process.Instance, vars map[string]any) error {
	if len(vars) == 0 {
		return nil
	}
	c, err := e.contextForInstance(ctx, inst)
	if err != nil {
		return err
	}
	if c == nil {
		return &oakerrors.ContextMissingError{InstanceID: inst.ID}
	}
	e.mergeValidated(c, vars, "caller")
	return e.store.Put(ctx, inst.ID, c)
}

// MergeToParent copies every variable of the instance's context into
// its parent's context. Root instances are a no-op. Both contexts are
// built on demand; if either cannot be built, the operation fails with
// *errors.ContextMissingError.
func (e *Engine) MergeToParent(ctx context.Context, inst *process.Instance) error {
	if inst.IsRoot() {
		return nil
	}
	parent, err := e.instanceByID(ctx, inst.ParentID)
	if err != nil {
		return err
	}
	var parentCtx *Context
	if parent != nil {
		parentCtx, err = e.contextForInstance(ctx, parent)
		if err != nil {
			return err
		}
	}
	if parentCtx == nil {
		return &oakerrors.ContextMissingError{InstanceID: inst.ParentID}
	}
	c, err := e.contextForInstance(ctx, inst)
	if err != nil {
		return err
	}
	if c == nil {
		return &oakerrors.ContextMissingError{InstanceID: inst.ID}
	}
	for key, value := range c.Entries() {
		parentCtx.Set(key, value)
	}
	return e.store.Put(ctx, inst.ParentID, parentCtx)
}

// contextFor returns the instance's context, building it lazily.
// Returns (nil, nil) when the instance is unknown or no context can be
// built; that is "not found", not an error.
func (e *Engine) contextFor(ctx context.Context, instanceID int64) (*Context, error) {
	c, err := e.store.Get(ctx, instanceID)
	if err != nil || c != nil {
		return c, err
	}
	inst, err := e.instanceByID(ctx, instanceID)
	if err != nil || inst == nil {
		return nil, err
	}
	return e.contextForInstance(ctx, inst)
}

// contextForInstance is contextFor for callers that already hold the
// instance.
func (e *Engine) contextForInstance(ctx context.Context, inst *process.Instance) (*Context, error) {
	c, err := e.store.Get(ctx, inst.ID)
	if err != nil || c != nil {
		return c, err
	}
	if err := e.buildInstanceContext(ctx, inst); err != nil {
		return nil, err
	}
	return e.store.Get(ctx, inst.ID)
}

// instanceByID looks up an instance, mapping "not found" to nil rather
// than an error. Collaborator failures propagate.
func (e *Engine) instanceByID(ctx context.Context, id int64) (*process.Instance, error) {
	inst, err := e.proc.InstanceByID(ctx, id)
	if err != nil {
		if oakerrors.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("looking up process instance %d: %w", id, err)
	}
	return inst, nil
}
