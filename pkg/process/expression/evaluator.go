package expression

import (
	"context"
	"log/slog"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/oakflow/oakflow/internal/log"
	oakerrors "github.com/oakflow/oakflow/pkg/errors"
)

// Expression delimiters. Text wrapped exactly as ${body} is evaluated;
// anything else passes through as a literal.
const (
	exprPrefix = "${"
	exprSuffix = "}"
)

// Eval evaluates a single expression against the context of one
// process instance.
//
// Unwrapped input is returned unchanged as a literal. A wrapped body
// that fails the whitelist returns *errors.RejectedInputError without
// ever reaching the expression engine. A missing context, or any
// failure internal to the engine (unknown identifier at runtime,
// division by zero), yields (nil, nil) with a log entry: those are
// "no value", never fatal to the caller.
func (e *Engine) Eval(ctx context.Context, instanceID int64, rawExpression string) (any, error) {
	raw := strings.TrimSpace(rawExpression)
	if !strings.HasPrefix(raw, exprPrefix) || !strings.HasSuffix(raw, exprSuffix) {
		return raw, nil
	}
	body := strings.TrimSpace(raw[len(exprPrefix) : len(raw)-len(exprSuffix)])

	if !IsSafeExpression(body) {
		e.logger.Warn("rejected unsafe expression",
			slog.Int64(log.InstanceIDKey, instanceID),
			slog.String(log.ExpressionKey, body))
		rejectedInputs.WithLabelValues(string(oakerrors.KindExpression)).Inc()
		return nil, &oakerrors.RejectedInputError{Kind: oakerrors.KindExpression, Input: body}
	}

	c, err := e.contextFor(ctx, instanceID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		e.logger.Warn("variable context does not exist",
			slog.Int64(log.InstanceIDKey, instanceID))
		evaluations.WithLabelValues(outcomeMissingContext).Inc()
		return nil, nil
	}

	return e.run(body, c, instanceID), nil
}

// run executes a whitelisted expression body against a context
// snapshot, converting any engine-internal failure to nil.
func (e *Engine) run(body string, c *Context, instanceID int64) any {
	program, err := e.compile(body)
	if err != nil {
		// Whitelisted bodies are a strict subset of expr syntax, so
		// this is unexpected; still recovered like any engine failure.
		e.logger.Info("expression failed to compile",
			slog.Int64(log.InstanceIDKey, instanceID),
			slog.String(log.ExpressionKey, body),
			log.Error(err))
		evaluations.WithLabelValues(outcomeFailed).Inc()
		return nil
	}

	result, err := expr.Run(program, c.Entries())
	if err != nil {
		e.logger.Info("expression evaluation failed",
			slog.Int64(log.InstanceIDKey, instanceID),
			slog.String(log.ExpressionKey, body),
			log.Error(err))
		evaluations.WithLabelValues(outcomeFailed).Inc()
		return nil
	}

	evaluations.WithLabelValues(outcomeOK).Inc()
	return result
}

// compile compiles an expression body and caches the result.
func (e *Engine) compile(body string) (*vm.Program, error) {
	e.mu.RLock()
	if prog, ok := e.programs[body]; ok {
		e.mu.RUnlock()
		return prog, nil
	}
	e.mu.RUnlock()

	// Variables are bound at runtime from the instance context, so an
	// identifier unknown at compile time must not be an error.
	prog, err := expr.Compile(body, expr.AllowUndefinedVariables())
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	e.programs[body] = prog
	e.mu.Unlock()

	return prog, nil
}

// ClearProgramCache clears the compiled-expression cache.
// This is mainly useful for testing.
func (e *Engine) ClearProgramCache() {
	e.mu.Lock()
	e.programs = make(map[string]*vm.Program)
	e.mu.Unlock()
}

// ProgramCacheSize returns the number of cached compiled expressions.
func (e *Engine) ProgramCacheSize() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.programs)
}
