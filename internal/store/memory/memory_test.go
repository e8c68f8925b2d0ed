package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	oakerrors "github.com/oakflow/oakflow/pkg/errors"
	"github.com/oakflow/oakflow/pkg/process"
)

func TestService_InstanceByID(t *testing.T) {
	ctx := context.Background()
	svc := New()
	svc.AddInstance(&process.Instance{ID: 1, Name: "order", State: "running"})

	got, err := svc.InstanceByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "order", got.Name)
	assert.True(t, got.IsRoot())

	_, err = svc.InstanceByID(ctx, 2)
	require.Error(t, err)
	assert.True(t, oakerrors.IsNotFound(err))
}

func TestService_Variables(t *testing.T) {
	ctx := context.Background()
	svc := New()
	svc.SetVariables(1,
		process.Variable{Key: "a", Value: 1},
		process.Variable{Key: "b", Value: 2})

	vars, err := svc.Variables(ctx, 1)
	require.NoError(t, err)
	require.Len(t, vars, 2)
	assert.Equal(t, "a", vars[0].Key)

	// Unknown instances yield an empty slice, not an error.
	vars, err = svc.Variables(ctx, 9)
	require.NoError(t, err)
	assert.Empty(t, vars)
}

func TestService_Query(t *testing.T) {
	ctx := context.Background()
	svc := New()
	svc.AddInstance(&process.Instance{ID: 3, ParentID: 1, Name: "c"})
	svc.AddInstance(&process.Instance{ID: 1, Name: "a"})
	svc.AddInstance(&process.Instance{ID: 2, ParentID: 1, Name: "b"})

	all, err := svc.Query().List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	// Ascending ID order for determinism.
	assert.Equal(t, int64(1), all[0].ID)
	assert.Equal(t, int64(2), all[1].ID)
	assert.Equal(t, int64(3), all[2].ID)

	children, err := svc.Query().ParentID(1).List(ctx)
	require.NoError(t, err)
	require.Len(t, children, 2)
	assert.Equal(t, int64(2), children[0].ID)
}
