package expression

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/oakflow/oakflow/internal/log"
	oakerrors "github.com/oakflow/oakflow/pkg/errors"
	"github.com/oakflow/oakflow/pkg/process"
)

var (
	// spanPattern finds candidate ${...} regions. The body may not
	// contain a closing brace, so nested delimiters never form a span.
	spanPattern = regexp.MustCompile(`\$\{[^}]*\}`)

	// tokenPattern matches the embedded expression tokens EvalString
	// substitutes: a wrapped identifier, optionally followed by one
	// arithmetic operator and a second identifier-or-number term. This
	// is deliberately a restricted subset of the expression grammar.
	tokenPattern = regexp.MustCompile(`^\$\{[A-Za-z_][A-Za-z0-9_]*(?:\s*[+\-*/]\s*(?:[A-Za-z_][A-Za-z0-9_]*|[0-9]+(?:\.[0-9]+)?))?\}$`)
)

// EvalString interpolates embedded expression tokens in text, resolving
// each through the hierarchical fallback of EvalWithFallback and
// substituting its textual form. A nil result renders as the empty
// string; text outside tokens is copied through unchanged; text with no
// ${...} regions (including empty input) is returned as-is.
//
// A ${...} region whose body fails the expression whitelist fails the
// whole operation with *errors.RejectedInputError: one unsafe token
// means no partial substitution of the rest. Regions whose body is
// safe but wider than the one-operator token grammar are copied
// through as literal text.
func (e *Engine) EvalString(ctx context.Context, inst *process.Instance, text string) (string, error) {
	if text == "" {
		return text, nil
	}
	spans := spanPattern.FindAllStringIndex(text, -1)
	if len(spans) == 0 {
		return text, nil
	}

	var b strings.Builder
	last := 0
	for _, span := range spans {
		token := text[span[0]:span[1]]
		if !tokenPattern.MatchString(token) {
			body := strings.TrimSpace(token[len(exprPrefix) : len(token)-len(exprSuffix)])
			if IsSafeExpression(body) {
				// Safe but not an interpolation token; leave it alone.
				continue
			}
			e.logger.Warn("rejected unsafe token during interpolation",
				slog.Int64(log.InstanceIDKey, inst.ID),
				slog.String(log.ExpressionKey, body))
			rejectedInputs.WithLabelValues(string(oakerrors.KindExpression)).Inc()
			return "", &oakerrors.RejectedInputError{Kind: oakerrors.KindExpression, Input: body}
		}

		value, err := e.EvalWithFallback(ctx, inst, token)
		if err != nil {
			return "", err
		}
		b.WriteString(text[last:span[0]])
		if value != nil {
			b.WriteString(fmt.Sprint(value))
		}
		last = span[1]
	}
	b.WriteString(text[last:])
	return b.String(), nil
}
