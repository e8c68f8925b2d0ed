package expression

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	oakerrors "github.com/oakflow/oakflow/pkg/errors"
	"github.com/oakflow/oakflow/pkg/process"
)

func TestEngine_EvalLiteralPassthrough(t *testing.T) {
	ctx := context.Background()
	e, _ := newTestEngine(t)

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "plain text", in: "hello", want: "hello"},
		{name: "unclosed delimiter", in: "${a", want: "${a"},
		{name: "wrong delimiter", in: "{a}", want: "{a}"},
		{name: "whitespace trimmed", in: "  hello  ", want: "hello"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.Eval(ctx, 1, tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEngine_EvalArithmetic(t *testing.T) {
	ctx := context.Background()
	e, svc := newTestEngine(t)
	svc.AddInstance(&process.Instance{ID: 1, Name: "order"})
	svc.SetVariables(1,
		process.Variable{Key: "a", Value: 3},
		process.Variable{Key: "b", Value: 4})

	tests := []struct {
		name string
		expr string
		want any
	}{
		{name: "variable lookup", expr: "${a}", want: 3},
		{name: "numeric literal", expr: "${42}", want: 42},
		{name: "sum", expr: "${a + b}", want: 7},
		{name: "precedence respected", expr: "${a+b*2}", want: 11},
		{name: "subtraction", expr: "${b - a}", want: 1},
		{name: "division", expr: "${b / 4}", want: 1},
		{name: "delimiters with whitespace", expr: "  ${a + 1}  ", want: 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.Eval(ctx, 1, tt.expr)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEngine_EvalIdempotent(t *testing.T) {
	ctx := context.Background()
	e, svc := newTestEngine(t)
	svc.AddInstance(&process.Instance{ID: 1, Name: "order"})
	svc.SetVariables(1, process.Variable{Key: "a", Value: 3})

	first, err := e.Eval(ctx, 1, "${a + 1}")
	require.NoError(t, err)
	second, err := e.Eval(ctx, 1, "${a + 1}")
	require.NoError(t, err)
	assert.Equal(t, first, second)

	// The second evaluation reuses the compiled program.
	assert.Equal(t, 1, e.ProgramCacheSize())
}

func TestEngine_EvalRejectsUnsafeExpression(t *testing.T) {
	ctx := context.Background()
	e, svc := newTestEngine(t)
	svc.AddInstance(&process.Instance{ID: 1, Name: "order"})
	svc.SetVariables(1, process.Variable{Key: "a", Value: 3})

	tests := []string{
		"${a; deleteAll()}",
		"${system.exit(1)}",
		"${a = 1}",
		"${a > b}",
		"${}",
	}

	for _, raw := range tests {
		t.Run(raw, func(t *testing.T) {
			value, err := e.Eval(ctx, 1, raw)
			require.Error(t, err)
			assert.Nil(t, value)
			assert.True(t, oakerrors.IsRejectedInput(err))
		})
	}

	// Rejected input must never reach the expression engine.
	assert.Equal(t, 0, e.ProgramCacheSize())
}

func TestEngine_EvalMissingContext(t *testing.T) {
	ctx := context.Background()
	e, _ := newTestEngine(t)

	// Instance 99 is unknown: not found, not an error.
	value, err := e.Eval(ctx, 99, "${a}")
	require.NoError(t, err)
	assert.Nil(t, value)
}

func TestEngine_EvalBuildsContextLazily(t *testing.T) {
	ctx := context.Background()
	e, svc := newTestEngine(t)
	svc.AddInstance(&process.Instance{ID: 5, Name: "order"})
	svc.SetVariables(5, process.Variable{Key: "total", Value: 12})

	exists, err := e.store.Contains(ctx, 5)
	require.NoError(t, err)
	require.False(t, exists)

	value, err := e.Eval(ctx, 5, "${total}")
	require.NoError(t, err)
	assert.Equal(t, 12, value)

	exists, err = e.store.Contains(ctx, 5)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestEngine_EvalRuntimeFailureYieldsNil(t *testing.T) {
	ctx := context.Background()
	e, svc := newTestEngine(t)
	svc.AddInstance(&process.Instance{ID: 1, Name: "order"})
	svc.SetVariables(1,
		process.Variable{Key: "a", Value: 3},
		process.Variable{Key: "zero", Value: 0})

	tests := []struct {
		name string
		expr string
	}{
		{name: "division by zero", expr: "${a / zero}"},
		{name: "arithmetic with undefined variable", expr: "${a + missing}"},
		{name: "undefined variable alone", expr: "${missing}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			value, err := e.Eval(ctx, 1, tt.expr)
			require.NoError(t, err)
			assert.Nil(t, value)
		})
	}
}

func TestEngine_EvalUsesProviderData(t *testing.T) {
	ctx := context.Background()
	e, svc := newTestEngine(t, WithProviders(
		staticProvider{data: map[string]any{"region": "eu"}}))
	svc.AddInstance(&process.Instance{ID: 1, Name: "order"})

	value, err := e.Eval(ctx, 1, "${region}")
	require.NoError(t, err)
	assert.Equal(t, "eu", value)
}
