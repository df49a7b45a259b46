package redis

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	goredis "github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"

	"offline-gateway/internal/config"
	"offline-gateway/internal/interfaces/mock"
	"offline-gateway/internal/models"
)

func newTestStore(t *testing.T) (*Store, *mock.MockRedisClient) {
	t.Helper()
	ctrl := gomock.NewController(t)
	client := mock.NewMockRedisClient(ctrl)
	cfg := &config.RedisStoreConfig{
		Enabled:      true,
		URL:          "redis://localhost:6379",
		ReadTimeout:  500 * time.Millisecond,
		WriteTimeout: time.Second,
	}
	return NewStore(cfg, client, zap.NewNop()), client
}

func TestMatch_Hit(t *testing.T) {
	store, client := newTestStore(t)

	entry := &models.CachedEntry{Status: 200, Body: []byte("cached")}
	data, err := json.Marshal(entry)
	require.NoError(t, err)

	client.EXPECT().
		Get(gomock.Any(), "og:dynamic-v1:GET /feed").
		Return(goredis.NewStringResult(string(data), nil))

	got, ok := store.Match(context.Background(), "dynamic-v1", "GET /feed")

	require.True(t, ok)
	assert.Equal(t, "cached", string(got.Body))
}

func TestMatch_Miss(t *testing.T) {
	store, client := newTestStore(t)

	client.EXPECT().
		Get(gomock.Any(), "og:dynamic-v1:GET /feed").
		Return(goredis.NewStringResult("", goredis.Nil))

	_, ok := store.Match(context.Background(), "dynamic-v1", "GET /feed")

	assert.False(t, ok)
}

func TestMatch_CorruptedEntryIsDeleted(t *testing.T) {
	store, client := newTestStore(t)

	client.EXPECT().
		Get(gomock.Any(), "og:dynamic-v1:GET /feed").
		Return(goredis.NewStringResult("not json", nil))
	client.EXPECT().
		Del(gomock.Any(), "og:dynamic-v1:GET /feed").
		Return(goredis.NewIntResult(1, nil))

	_, ok := store.Match(context.Background(), "dynamic-v1", "GET /feed")

	assert.False(t, ok)
}

func TestPut_StoresWithoutExpiration(t *testing.T) {
	store, client := newTestStore(t)

	client.EXPECT().
		Set(gomock.Any(), "og:static-v1:GET /a.js", gomock.Any(), time.Duration(0)).
		Return(goredis.NewStatusResult("OK", nil))

	err := store.Put(context.Background(), "static-v1", "GET /a.js", &models.CachedEntry{Status: 200})

	assert.NoError(t, err)
}

func TestDeleteNamespace_ScansAndDeletes(t *testing.T) {
	store, client := newTestStore(t)

	client.EXPECT().
		Scan(gomock.Any(), uint64(0), "og:static-v0:*", int64(100)).
		Return(goredis.NewScanCmdResult([]string{"og:static-v0:GET /a.js", "og:static-v0:GET /b.js"}, 0, nil))
	client.EXPECT().
		Del(gomock.Any(), "og:static-v0:GET /a.js", "og:static-v0:GET /b.js").
		Return(goredis.NewIntResult(2, nil))

	err := store.DeleteNamespace(context.Background(), "static-v0")

	assert.NoError(t, err)
}

func TestNamespaces_CollectsDistinctPrefixes(t *testing.T) {
	store, client := newTestStore(t)

	client.EXPECT().
		Scan(gomock.Any(), uint64(0), "og:*", int64(100)).
		Return(goredis.NewScanCmdResult([]string{
			"og:static-v1:GET /a.js",
			"og:static-v1:GET /b.js",
			"og:dynamic-v1:GET /feed",
		}, 0, nil))

	names, err := store.Namespaces(context.Background())

	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"static-v1", "dynamic-v1"}, names)
}
