package platform

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"offline-gateway/internal/interfaces"
)

func TestMemoryProvider_SubscribeLifecycle(t *testing.T) {
	provider := NewMemoryProvider("https://push.local/sub")
	ctx := context.Background()

	sub, err := provider.Get(ctx)
	require.NoError(t, err)
	assert.Nil(t, sub)

	created, err := provider.Subscribe(ctx, "server-key")
	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Contains(t, created.Endpoint, "https://push.local/sub/")
	assert.NotEmpty(t, created.Keys.P256dh)
	assert.NotEmpty(t, created.Keys.Auth)

	again, err := provider.Subscribe(ctx, "server-key")
	require.NoError(t, err)
	assert.Same(t, created, again)

	require.NoError(t, provider.Unsubscribe(ctx))
	sub, err = provider.Get(ctx)
	require.NoError(t, err)
	assert.Nil(t, sub)
}

func TestStaticGate_RequestGrantsDefault(t *testing.T) {
	gate := NewStaticGate("")

	assert.Equal(t, interfaces.PermissionDefault, gate.Query())

	perm, err := gate.Request(context.Background())
	require.NoError(t, err)
	assert.Equal(t, interfaces.PermissionGranted, perm)
	assert.Equal(t, interfaces.PermissionGranted, gate.Query())
}

func TestStaticGate_DeniedIsSticky(t *testing.T) {
	gate := NewStaticGate(interfaces.PermissionDenied)

	perm, err := gate.Request(context.Background())
	require.NoError(t, err)
	assert.Equal(t, interfaces.PermissionDenied, perm)
}

func TestMemoryRegistry_OpenWindowAndNavigate(t *testing.T) {
	registry := NewMemoryRegistry(zap.NewNop())
	ctx := context.Background()

	sessions, err := registry.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, sessions)

	require.NoError(t, registry.OpenWindow(ctx, "/orders"))

	sessions, err = registry.List(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, "/orders", sessions[0].URL())

	require.NoError(t, sessions[0].Navigate(ctx, "/orders/42"))
	assert.Equal(t, "/orders/42", sessions[0].URL())
}
