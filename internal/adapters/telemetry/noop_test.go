package telemetry_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/ucdstore/internal/adapters/telemetry"
	"go.trai.ch/ucdstore/internal/core/domain"
	"go.trai.ch/ucdstore/internal/core/ports"
)

func TestNoOp_Record(t *testing.T) {
	t.Parallel()

	tel := telemetry.NewNoOp()
	ctx, v := tel.Record(context.Background(), "mirror 16.0.0")
	require.NotNil(t, v)

	fromCtx, ok := ports.VertexFromContext(ctx)
	require.True(t, ok)
	assert.Same(t, v, fromCtx)

	n, err := v.Stdout().Write([]byte("test log"))
	require.NoError(t, err)
	assert.Equal(t, 8, n)

	v.Log(domain.LogLevelInfo, "ignored")
	v.Cached()
	v.Complete(errors.New("ignored"))
	assert.NoError(t, tel.Close())
}
