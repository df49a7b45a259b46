package router

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"

	"offline-gateway/internal/interfaces/mock"
	"offline-gateway/internal/models"
)

func newTestHandler(t *testing.T) (*Handler, *mock.MockStore, *mock.MockFetcher) {
	t.Helper()
	ctrl := gomock.NewController(t)
	store := mock.NewMockStore(ctrl)
	fetcher := mock.NewMockFetcher(ctrl)
	r := New(store, fetcher, testRouterConfig(), zap.NewNop())
	return NewHandler(r, fetcher, zap.NewNop()), store, fetcher
}

func TestHandler_ServesRoutedEntry(t *testing.T) {
	h, store, _ := newTestHandler(t)

	cached := &models.CachedEntry{
		Status:  200,
		Headers: map[string][]string{"Content-Type": {"text/css"}},
		Body:    []byte("body{}"),
	}
	store.EXPECT().Match(gomock.Any(), "static-v1", "GET /app.css").Return(cached, true)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/app.css", nil))

	assert.Equal(t, 200, rec.Code)
	assert.Equal(t, "text/css", rec.Header().Get("Content-Type"))
	assert.Equal(t, "body{}", rec.Body.String())
}

func TestHandler_NonGETBypassesCache(t *testing.T) {
	h, _, fetcher := newTestHandler(t)

	fetcher.EXPECT().Do(gomock.Any()).DoAndReturn(func(req *http.Request) (*http.Response, error) {
		assert.Equal(t, "POST", req.Method)
		return &http.Response{
			StatusCode: 201,
			Header:     http.Header{},
			Body:       io.NopCloser(bytes.NewReader([]byte(`{"id":1}`))),
		}, nil
	})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("POST", "/api/orders", bytes.NewReader([]byte(`{}`))))

	assert.Equal(t, 201, rec.Code)
	assert.Equal(t, `{"id":1}`, rec.Body.String())
}

func TestHandler_PassthroughFailureIsBadGateway(t *testing.T) {
	h, _, fetcher := newTestHandler(t)

	fetcher.EXPECT().Do(gomock.Any()).Return(nil, errors.New("connection refused"))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("DELETE", "/api/orders/1", nil))

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

// The stale-while-revalidate undefined outcome surfaces as an aborted
// handler: no response is written at all.
func TestHandler_NoResponseAborts(t *testing.T) {
	h, store, fetcher := newTestHandler(t)

	store.EXPECT().Match(gomock.Any(), "dynamic-v1", "GET /feed.xml").Return(nil, false)
	fetcher.EXPECT().Do(gomock.Any()).Return(nil, errors.New("offline"))

	req := httptest.NewRequest("GET", "/feed.xml", nil)
	req.Header.Set("Accept", "application/xml")

	assert.PanicsWithValue(t, http.ErrAbortHandler, func() {
		h.ServeHTTP(httptest.NewRecorder(), req)
	})
}
