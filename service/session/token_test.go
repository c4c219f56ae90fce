package session

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/naiba/gymkit/service/store"
)

type brokenKV struct{}

var errDisk = errors.New("disk full")

func (brokenKV) Get(context.Context, string) (string, bool, error) { return "", false, errDisk }
func (brokenKV) Set(context.Context, string, string) error         { return errDisk }
func (brokenKV) Delete(context.Context, string) error              { return errDisk }

func TestTokenLifecycle(t *testing.T) {
	kv, err := store.OpenMemory()
	require.NoError(t, err)
	defer kv.Close()
	ctx := context.Background()
	s := NewTokenStore(kv, nil)

	token, err := s.Get(ctx)
	assert.NoError(t, err)
	assert.Empty(t, token)
	assert.False(t, s.Has(ctx))

	require.NoError(t, s.Set(ctx, " abc.def.ghi "))
	token, err = s.Get(ctx)
	assert.NoError(t, err)
	assert.Equal(t, "abc.def.ghi", token)
	assert.True(t, s.Has(ctx))

	require.NoError(t, s.Clear(ctx))
	token, _ = s.Get(ctx)
	assert.Empty(t, token)

	// 空 token 等同于清除
	require.NoError(t, s.Set(ctx, "x"))
	require.NoError(t, s.Set(ctx, ""))
	assert.False(t, s.Has(ctx))
}

func TestTokenStorageFailureDegrades(t *testing.T) {
	s := NewTokenStore(brokenKV{}, nil)
	ctx := context.Background()

	token, err := s.Get(ctx)
	assert.Empty(t, token)
	assert.ErrorIs(t, err, errDisk)
	assert.False(t, s.Has(ctx))

	assert.ErrorIs(t, s.Set(ctx, "abc"), errDisk)
	assert.ErrorIs(t, s.Clear(ctx), errDisk)
}
