package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sas-panel/internal/common/config"
	apperrors "sas-panel/internal/common/errors"
	"sas-panel/internal/models"
)

func setupMiniredis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return mr, rdb
}

func TestRecordCache_PutGet(t *testing.T) {
	mr, rdb := setupMiniredis(t)
	c := NewRecordCache(rdb, "sas:cache", time.Minute)
	ctx := context.Background()

	_, ok, err := c.Get(ctx, models.KindTemplate, "id=*")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Put(ctx, models.KindTemplate, "id=*", []byte(`[{"id":1}]`)))

	got, ok, err := c.Get(ctx, models.KindTemplate, "id=*")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[{"id":1}]`, string(got))

	assert.True(t, mr.Exists("sas:cache:template"))
	assert.Equal(t, time.Minute, mr.TTL("sas:cache:template"))
}

func TestRecordCache_TTLExpires(t *testing.T) {
	mr, rdb := setupMiniredis(t)
	c := NewRecordCache(rdb, "p", 50*time.Millisecond)
	ctx := context.Background()

	require.NoError(t, c.Put(ctx, models.KindRule, "k", []byte(`[]`)))
	mr.FastForward(100 * time.Millisecond)

	_, ok, err := c.Get(ctx, models.KindRule, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRecordCache_Invalidate(t *testing.T) {
	_, rdb := setupMiniredis(t)
	c := NewRecordCache(rdb, "p", 0)
	ctx := context.Background()

	for _, k := range models.Kinds() {
		require.NoError(t, c.Put(ctx, k, "a", []byte(`[]`)))
		require.NoError(t, c.Put(ctx, k, "b", []byte(`[]`)))
	}

	require.NoError(t, c.Invalidate(ctx, models.KindRecipient, models.KindRule))
	require.NoError(t, c.Invalidate(ctx))

	_, ok, _ := c.Get(ctx, models.KindTemplate, "b")
	assert.True(t, ok)
	_, ok, _ = c.Get(ctx, models.KindRecipient, "a")
	assert.False(t, ok)
	_, ok, _ = c.Get(ctx, models.KindRule, "b")
	assert.False(t, ok)
}

func TestRecordCache_Errors(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	c := NewRecordCache(rdb, "p", time.Minute)
	ctx := context.Background()

	mock.ExpectHGet("p:template", "k").SetErr(errors.New("connection reset"))
	_, _, err := c.Get(ctx, models.KindTemplate, "k")
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeCacheFailed))

	mock.ExpectDel("p:people").SetErr(errors.New("connection reset"))
	err = c.Invalidate(ctx, models.KindRecipient)
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeCacheFailed))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFromConfig(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	c, rdb, err := FromConfig(context.Background(), config.CacheConfig{Address: mr.Addr(), Prefix: "x", TTL: 1000})
	require.NoError(t, err)
	defer rdb.Close()
	assert.Equal(t, time.Second, c.ttl)

	addr := mr.Addr()
	mr.Close()
	_, _, err = FromConfig(context.Background(), config.CacheConfig{Address: addr})
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeCacheFailed))
}
