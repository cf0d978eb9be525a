package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wyfcoding/simplex/config"
	"github.com/wyfcoding/simplex/lpfile"
	"github.com/wyfcoding/simplex/simplex"
	"github.com/wyfcoding/simplex/xerrors"
)

func TestSolveBatchPreservesOrder(t *testing.T) {
	svc, _ := newTestService(t, func(c *config.Config) { c.Service.MaxConcurrency = 2 })

	bad := referenceDoc()
	bad.RHS = bad.RHS[:2]

	docs := []*lpfile.Document{referenceDoc(), infeasibleDoc(), bad, nil}
	for range 6 {
		docs = append(docs, referenceDoc())
	}

	items, err := svc.SolveBatch(context.Background(), docs)
	require.NoError(t, err)
	require.Len(t, items, len(docs))

	for i, item := range items {
		assert.Equal(t, i, item.Index)
	}

	require.NotNil(t, items[0].Result)
	assert.Equal(t, simplex.Optimal, items[0].Result.Status)
	assert.InDelta(t, 36, *items[0].Result.Objective, delta)

	require.NotNil(t, items[1].Result)
	assert.Equal(t, simplex.Infeasible, items[1].Result.Status)

	assert.Nil(t, items[2].Result)
	require.NotNil(t, items[2].Error)
	assert.Equal(t, xerrors.ErrDimMismatchBounds.Code, items[2].Error.Code)

	require.NotNil(t, items[3].Error)
	assert.Equal(t, 400, items[3].Error.Code)

	for _, item := range items[4:] {
		require.NotNil(t, item.Result)
		assert.Equal(t, simplex.Optimal, item.Result.Status)
	}
}

func TestSolveBatchSize(t *testing.T) {
	svc, _ := newTestService(t, func(c *config.Config) { c.Service.MaxBatch = 2 })

	_, err := svc.SolveBatch(context.Background(), nil)
	assert.ErrorIs(t, err, ErrBatchSize)

	_, err = svc.SolveBatch(context.Background(), []*lpfile.Document{referenceDoc(), referenceDoc(), referenceDoc()})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBatchSize)
	assert.True(t, xerrors.IsType(err, xerrors.ErrInvalidArg))
}
