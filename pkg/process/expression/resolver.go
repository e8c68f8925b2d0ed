package expression

import (
	"context"
	"fmt"

	"github.com/oakflow/oakflow/pkg/process"
)

// EvalWithFallback evaluates an expression against the instance's
// context, searching the process instance tree when no value is found.
//
// A non-root instance falls back to its parent, transitively up to the
// root: a nested instance inherits values from the scopes above it. A
// root instance instead searches its entire descendant subtree, in the
// discovery order of collectDescendants, because orchestration-level
// expressions on a root often only become resolvable once a
// sub-process has populated its own context. This asymmetry is
// intentional and load-bearing; see the package tests.
//
// A whitelist rejection at any node aborts the search immediately: a
// malicious expression is rejected once, not retried per node.
func (e *Engine) EvalWithFallback(ctx context.Context, inst *process.Instance, expression string) (any, error) {
	current := inst
	for {
		value, err := e.Eval(ctx, current.ID, expression)
		if err != nil || value != nil {
			return value, err
		}
		if current.IsRoot() {
			break
		}
		parent, err := e.proc.InstanceByID(ctx, current.ParentID)
		if err != nil {
			return nil, fmt.Errorf("resolving parent of instance %d: %w", current.ID, err)
		}
		current = parent
	}

	descendants, err := e.collectDescendants(ctx, current.ID)
	if err != nil {
		return nil, err
	}
	for _, d := range descendants {
		value, err := e.Eval(ctx, d.ID, expression)
		if err != nil || value != nil {
			return value, err
		}
	}
	return nil, nil
}

// collectDescendants enumerates the full descendant subtree of an
// instance without recursing. The discovery order is preserved from
// the recursive formulation: for each direct child in query order, the
// child's own descendant set comes first, and the direct children
// themselves are appended after the whole level has been walked. The
// deepest subtrees therefore appear first and direct children last.
func (e *Engine) collectDescendants(ctx context.Context, rootID int64) ([]*process.Instance, error) {
	type frame struct {
		children []*process.Instance
		next     int
	}

	rootChildren, err := e.childrenOf(ctx, rootID)
	if err != nil {
		return nil, err
	}

	var out []*process.Instance
	stack := []frame{{children: rootChildren}}
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if top.next < len(top.children) {
			child := top.children[top.next]
			top.next++
			sub, err := e.childrenOf(ctx, child.ID)
			if err != nil {
				return nil, err
			}
			stack = append(stack, frame{children: sub})
			continue
		}
		out = append(out, top.children...)
		stack = stack[:len(stack)-1]
	}
	return out, nil
}

// childrenOf lists the direct children of an instance.
func (e *Engine) childrenOf(ctx context.Context, parentID int64) ([]*process.Instance, error) {
	children, err := e.proc.Query().ParentID(parentID).List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing children of instance %d: %w", parentID, err)
	}
	return children, nil
}
