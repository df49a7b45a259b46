package router

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"

	"offline-gateway/internal/interfaces/mock"
	"offline-gateway/internal/models"
)

func okResponse(body string) *http.Response {
	return &http.Response{
		StatusCode: http.StatusOK,
		Header:     http.Header{"Content-Type": {"application/json"}},
		Body:       io.NopCloser(bytes.NewReader([]byte(body))),
	}
}

func newTestEngine(t *testing.T) (*Engine, *mock.MockStore, *mock.MockFetcher) {
	t.Helper()
	ctrl := gomock.NewController(t)
	store := mock.NewMockStore(ctrl)
	fetcher := mock.NewMockFetcher(ctrl)
	engine := NewEngine(store, fetcher, testRouterConfig(), zap.NewNop())
	return engine, store, fetcher
}

func TestNetworkFirst_SuccessStoresAndReturns(t *testing.T) {
	engine, store, fetcher := newTestEngine(t)

	req := httptest.NewRequest("GET", "/api/products", nil)
	fetcher.EXPECT().Do(gomock.Any()).Return(okResponse(`{"items":[]}`), nil)

	var stored *models.CachedEntry
	store.EXPECT().
		Put(gomock.Any(), "dynamic-v1", "GET /api/products", gomock.Any()).
		DoAndReturn(func(_ context.Context, _, _ string, entry *models.CachedEntry) error {
			stored = entry
			return nil
		})

	entry := engine.networkFirst(context.Background(), req, "dynamic-v1", RequestKey(req), false)

	require.NotNil(t, entry)
	assert.Equal(t, http.StatusOK, entry.Status)
	assert.Equal(t, `{"items":[]}`, string(entry.Body))
	require.NotNil(t, stored)
	assert.Equal(t, entry.Body, stored.Body)
}

func TestNetworkFirst_FailureFallsBackToCache(t *testing.T) {
	engine, store, fetcher := newTestEngine(t)

	req := httptest.NewRequest("GET", "/api/products", nil)
	cached := &models.CachedEntry{Status: 200, Body: []byte("cached")}

	fetcher.EXPECT().Do(gomock.Any()).Return(nil, errors.New("connection refused"))
	store.EXPECT().Match(gomock.Any(), "dynamic-v1", "GET /api/products").Return(cached, true)

	entry := engine.networkFirst(context.Background(), req, "dynamic-v1", RequestKey(req), false)

	assert.Same(t, cached, entry)
}

func TestNetworkFirst_HTMLFallsBackToRootDocument(t *testing.T) {
	engine, store, fetcher := newTestEngine(t)

	req := httptest.NewRequest("GET", "/products/42", nil)
	shell := &models.CachedEntry{Status: 200, Body: []byte("<html>shell</html>")}

	fetcher.EXPECT().Do(gomock.Any()).Return(nil, errors.New("offline"))
	store.EXPECT().Match(gomock.Any(), "dynamic-v1", "GET /products/42").Return(nil, false)
	store.EXPECT().Match(gomock.Any(), "static-v1", "GET /").Return(shell, true)

	entry := engine.networkFirst(context.Background(), req, "dynamic-v1", RequestKey(req), true)

	assert.Same(t, shell, entry)
}

func TestNetworkFirst_NothingLeftYieldsOffline(t *testing.T) {
	engine, store, fetcher := newTestEngine(t)

	req := httptest.NewRequest("GET", "/products/42", nil)

	fetcher.EXPECT().Do(gomock.Any()).Return(nil, errors.New("offline"))
	store.EXPECT().Match(gomock.Any(), "dynamic-v1", "GET /products/42").Return(nil, false)
	store.EXPECT().Match(gomock.Any(), "static-v1", "GET /").Return(nil, false)

	entry := engine.networkFirst(context.Background(), req, "dynamic-v1", RequestKey(req), true)

	require.NotNil(t, entry)
	assert.Equal(t, http.StatusServiceUnavailable, entry.Status)
	assert.Equal(t, "Offline", string(entry.Body))
}

// The network must never be consulted when a static asset is cached; the
// absent fetcher expectation makes any call fail the test.
func TestCacheFirst_HitSkipsNetwork(t *testing.T) {
	engine, store, _ := newTestEngine(t)

	req := httptest.NewRequest("GET", "/assets/app.js", nil)
	cached := &models.CachedEntry{Status: 200, Body: []byte("console.log(1)")}

	store.EXPECT().Match(gomock.Any(), "static-v1", "GET /assets/app.js").Return(cached, true)

	entry := engine.cacheFirst(context.Background(), req, "static-v1", RequestKey(req))

	assert.Same(t, cached, entry)
}

func TestCacheFirst_MissFetchesAndStores(t *testing.T) {
	engine, store, fetcher := newTestEngine(t)

	req := httptest.NewRequest("GET", "/assets/app.js", nil)

	store.EXPECT().Match(gomock.Any(), "static-v1", "GET /assets/app.js").Return(nil, false)
	fetcher.EXPECT().Do(gomock.Any()).Return(okResponse("console.log(1)"), nil)
	store.EXPECT().Put(gomock.Any(), "static-v1", "GET /assets/app.js", gomock.Any()).Return(nil)

	entry := engine.cacheFirst(context.Background(), req, "static-v1", RequestKey(req))

	require.NotNil(t, entry)
	assert.Equal(t, "console.log(1)", string(entry.Body))
}

func TestCacheFirst_MissAndNetworkFailureYieldsOffline(t *testing.T) {
	engine, store, fetcher := newTestEngine(t)

	req := httptest.NewRequest("GET", "/assets/app.js", nil)

	store.EXPECT().Match(gomock.Any(), "static-v1", "GET /assets/app.js").Return(nil, false)
	fetcher.EXPECT().Do(gomock.Any()).Return(nil, errors.New("offline"))

	entry := engine.cacheFirst(context.Background(), req, "static-v1", RequestKey(req))

	require.NotNil(t, entry)
	assert.Equal(t, http.StatusServiceUnavailable, entry.Status)
	assert.Equal(t, "Offline", string(entry.Body))
}

// Errors from the store on write never cost the caller the response.
func TestCacheFirst_WriteFailureIsSwallowed(t *testing.T) {
	engine, store, fetcher := newTestEngine(t)

	req := httptest.NewRequest("GET", "/assets/app.js", nil)

	store.EXPECT().Match(gomock.Any(), "static-v1", "GET /assets/app.js").Return(nil, false)
	fetcher.EXPECT().Do(gomock.Any()).Return(okResponse("console.log(1)"), nil)
	store.EXPECT().Put(gomock.Any(), "static-v1", "GET /assets/app.js", gomock.Any()).Return(errors.New("quota exceeded"))

	entry := engine.cacheFirst(context.Background(), req, "static-v1", RequestKey(req))

	require.NotNil(t, entry)
	assert.Equal(t, http.StatusOK, entry.Status)
}

func TestStaleWhileRevalidate_ServesCachedAndRefreshes(t *testing.T) {
	engine, store, fetcher := newTestEngine(t)

	req := httptest.NewRequest("GET", "/feed.xml", nil)
	cached := &models.CachedEntry{Status: 200, Body: []byte("old")}

	store.EXPECT().Match(gomock.Any(), "dynamic-v1", "GET /feed.xml").Return(cached, true)
	fetcher.EXPECT().Do(gomock.Any()).Return(okResponse("new"), nil)

	refreshed := make(chan *models.CachedEntry, 1)
	store.EXPECT().
		Put(gomock.Any(), "dynamic-v1", "GET /feed.xml", gomock.Any()).
		DoAndReturn(func(_ context.Context, _, _ string, entry *models.CachedEntry) error {
			refreshed <- entry
			return nil
		})

	entry := engine.staleWhileRevalidate(context.Background(), req, "dynamic-v1", RequestKey(req))

	// Caller gets the stale entry without waiting for the refresh
	assert.Same(t, cached, entry)

	engine.WaitForRefreshes()
	select {
	case updated := <-refreshed:
		assert.Equal(t, "new", string(updated.Body))
	default:
		t.Fatal("background refresh did not write the new entry")
	}
}

func TestStaleWhileRevalidate_NoCacheReturnsNetworkResult(t *testing.T) {
	engine, store, fetcher := newTestEngine(t)

	req := httptest.NewRequest("GET", "/feed.xml", nil)

	store.EXPECT().Match(gomock.Any(), "dynamic-v1", "GET /feed.xml").Return(nil, false)
	fetcher.EXPECT().Do(gomock.Any()).Return(okResponse("fresh"), nil)
	store.EXPECT().Put(gomock.Any(), "dynamic-v1", "GET /feed.xml", gomock.Any()).Return(nil)

	entry := engine.staleWhileRevalidate(context.Background(), req, "dynamic-v1", RequestKey(req))

	require.NotNil(t, entry)
	assert.Equal(t, "fresh", string(entry.Body))
}

// The one path in the design with no guaranteed response: no cached entry
// and a failed network fetch yields nil.
func TestStaleWhileRevalidate_NoCacheNoNetworkYieldsNothing(t *testing.T) {
	engine, store, fetcher := newTestEngine(t)

	req := httptest.NewRequest("GET", "/feed.xml", nil)

	store.EXPECT().Match(gomock.Any(), "dynamic-v1", "GET /feed.xml").Return(nil, false)
	fetcher.EXPECT().Do(gomock.Any()).Return(nil, errors.New("offline"))

	entry := engine.staleWhileRevalidate(context.Background(), req, "dynamic-v1", RequestKey(req))

	assert.Nil(t, entry)
}
