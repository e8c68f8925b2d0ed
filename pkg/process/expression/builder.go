package expression

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/oakflow/oakflow/internal/log"
	oakerrors "github.com/oakflow/oakflow/pkg/errors"
	"github.com/oakflow/oakflow/pkg/process"
)

// CreateContext builds a variable context for the instance and
// installs it in the store, overwriting any prior entry.
//
// The context is seeded from the caller-supplied variables, then each
// registered provider that supports the instance merges its data on
// top. Keys failing the whitelist are dropped with a warning at every
// step, so an installed context never holds an invalid key.
func (e *Engine) CreateContext(ctx context.Context, inst *process.Instance, vars map[string]any) (*Context, error) {
	c := NewContext()
	e.mergeValidated(c, vars, "caller")

	for _, p := range e.providers {
		if !p.Supports(inst) {
			continue
		}
		e.mergeValidated(c, p.Data(inst), "provider")
	}

	if err := e.store.Put(ctx, inst.ID, c); err != nil {
		return nil, fmt.Errorf("installing context for instance %d: %w", inst.ID, err)
	}
	contextBuilds.Inc()
	return c, nil
}

// buildInstanceContext materializes a context from the instance's
// persisted variables. Persistence failures propagate: the engine has
// no recovery strategy for a broken data layer.
func (e *Engine) buildInstanceContext(ctx context.Context, inst *process.Instance) error {
	vars, err := e.proc.Variables(ctx, inst.ID)
	if err != nil {
		return fmt.Errorf("loading variables for instance %d: %w", inst.ID, err)
	}
	seed := make(map[string]any, len(vars))
	for _, v := range vars {
		seed[v.Key] = v.Value
	}
	_, err = e.CreateContext(ctx, inst, seed)
	return err
}

// InitContexts rebuilds the cached context of every known instance.
// Intended for cold-start warmup, so that the first evaluation after a
// restart does not pay the lazy-build cost.
func (e *Engine) InitContexts(ctx context.Context) error {
	instances, err := e.proc.Query().List(ctx)
	if err != nil {
		return fmt.Errorf("listing process instances: %w", err)
	}
	for _, inst := range instances {
		if err := e.buildInstanceContext(ctx, inst); err != nil {
			return err
		}
	}
	return nil
}

// mergeValidated copies variables into a context, dropping keys that
// fail the whitelist.
func (e *Engine) mergeValidated(c *Context, vars map[string]any, origin string) {
	for key, value := range vars {
		if !IsSafeVariableKey(key) {
			e.logger.Warn("dropping unsafe variable key",
				slog.String(log.VariableKeyKey, key),
				slog.String("origin", origin))
			rejectedInputs.WithLabelValues(string(oakerrors.KindVariableKey)).Inc()
			continue
		}
		c.Set(key, value)
	}
}
