package push

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"

	"offline-gateway/internal/config"
	"offline-gateway/internal/interfaces"
	"offline-gateway/internal/interfaces/mock"
	"offline-gateway/internal/models"
)

type managerMocks struct {
	provider *mock.MockPushProvider
	gate     *mock.MockPermissionGate
	notifier *mock.MockNotifier
	clients  *mock.MockClientRegistry
	backend  *mock.MockSubscriptionBackend
}

func newTestManager(t *testing.T) (*Manager, managerMocks) {
	t.Helper()
	ctrl := gomock.NewController(t)
	m := managerMocks{
		provider: mock.NewMockPushProvider(ctrl),
		gate:     mock.NewMockPermissionGate(ctrl),
		notifier: mock.NewMockNotifier(ctrl),
		clients:  mock.NewMockClientRegistry(ctrl),
		backend:  mock.NewMockSubscriptionBackend(ctrl),
	}
	cfg := &config.PushConfig{
		ServerKey:    "test-server-key",
		DefaultIcon:  "/logo.png",
		DefaultBadge: "/badge.png",
	}
	mgr := NewManager(m.provider, m.gate, m.notifier, m.clients, m.backend, cfg, zap.NewNop())
	return mgr, m
}

func testSubscription() *models.Subscription {
	return &models.Subscription{
		Endpoint: "https://push.example.com/sub/abc",
		Keys:     models.SubscriptionKeys{P256dh: "p256dh-key", Auth: "auth-key"},
	}
}

func TestManager_UnsupportedPlatform(t *testing.T) {
	mgr := NewManager(nil, nil, nil, nil, nil, &config.PushConfig{}, zap.NewNop())

	assert.False(t, mgr.Supported())

	_, err := mgr.Permission()
	assert.ErrorIs(t, err, ErrUnsupported)
	assert.ErrorIs(t, mgr.RequestPermission(context.Background()), ErrUnsupported)
	assert.ErrorIs(t, mgr.Subscribe(context.Background(), "u1", "tok"), ErrUnsupported)
	assert.ErrorIs(t, mgr.Unsubscribe(context.Background(), "tok"), ErrUnsupported)
	assert.ErrorIs(t, mgr.HandlePush(context.Background(), []byte("x")), ErrUnsupported)
}

func TestRequestPermission_Granted(t *testing.T) {
	mgr, m := newTestManager(t)

	m.gate.EXPECT().Request(gomock.Any()).Return(interfaces.PermissionGranted, nil)

	assert.NoError(t, mgr.RequestPermission(context.Background()))
}

func TestRequestPermission_Denied(t *testing.T) {
	mgr, m := newTestManager(t)

	m.gate.EXPECT().Request(gomock.Any()).Return(interfaces.PermissionDenied, nil)

	assert.ErrorIs(t, mgr.RequestPermission(context.Background()), ErrPermissionDenied)
}

func TestRequestPermission_Dismissed(t *testing.T) {
	mgr, m := newTestManager(t)

	m.gate.EXPECT().Request(gomock.Any()).Return(interfaces.PermissionDefault, nil)

	assert.ErrorIs(t, mgr.RequestPermission(context.Background()), ErrPermissionRequired)
}

// With permission granted and no existing subscription, subscribe creates
// exactly one platform subscription and persists it exactly once.
func TestSubscribe_CreatesNewSubscription(t *testing.T) {
	mgr, m := newTestManager(t)

	sub := testSubscription()
	m.gate.EXPECT().Query().Return(interfaces.PermissionGranted)
	m.provider.EXPECT().Get(gomock.Any()).Return(nil, nil)
	m.provider.EXPECT().Subscribe(gomock.Any(), "test-server-key").Return(sub, nil).Times(1)
	m.backend.EXPECT().Save(gomock.Any(), "user-1", sub, "token-1").Return(nil).Times(1)

	err := mgr.Subscribe(context.Background(), "user-1", "token-1")

	assert.NoError(t, err)
}

// An existing platform subscription is reused, not duplicated, but the
// backend persistence call still happens.
func TestSubscribe_ReusesExistingSubscription(t *testing.T) {
	mgr, m := newTestManager(t)

	sub := testSubscription()
	m.gate.EXPECT().Query().Return(interfaces.PermissionGranted)
	m.provider.EXPECT().Get(gomock.Any()).Return(sub, nil)
	m.backend.EXPECT().Save(gomock.Any(), "user-1", sub, "token-1").Return(nil).Times(1)

	err := mgr.Subscribe(context.Background(), "user-1", "token-1")

	assert.NoError(t, err)
}

func TestSubscribe_PermissionDeniedIsTerminal(t *testing.T) {
	mgr, m := newTestManager(t)

	m.gate.EXPECT().Query().Return(interfaces.PermissionDenied)

	err := mgr.Subscribe(context.Background(), "user-1", "token-1")

	assert.ErrorIs(t, err, ErrPermissionDenied)
}

func TestSubscribe_WithoutPermission(t *testing.T) {
	mgr, m := newTestManager(t)

	m.gate.EXPECT().Query().Return(interfaces.PermissionDefault)

	err := mgr.Subscribe(context.Background(), "user-1", "token-1")

	assert.ErrorIs(t, err, ErrPermissionRequired)
}

// Backend persistence failure surfaces as ErrBackendPersist; the platform
// subscription is left in place (known inconsistency, retried on the next
// subscribe).
func TestSubscribe_BackendFailureKeepsPlatformSubscription(t *testing.T) {
	mgr, m := newTestManager(t)

	sub := testSubscription()
	m.gate.EXPECT().Query().Return(interfaces.PermissionGranted)
	m.provider.EXPECT().Get(gomock.Any()).Return(sub, nil)
	m.backend.EXPECT().Save(gomock.Any(), "user-1", sub, "token-1").Return(errors.New("503"))
	// No provider.Unsubscribe expectation: rollback must not happen

	err := mgr.Subscribe(context.Background(), "user-1", "token-1")

	assert.ErrorIs(t, err, ErrBackendPersist)
}

func TestUnsubscribe_TearsDownAndNotifiesBackend(t *testing.T) {
	mgr, m := newTestManager(t)

	sub := testSubscription()
	m.provider.EXPECT().Get(gomock.Any()).Return(sub, nil)
	m.provider.EXPECT().Unsubscribe(gomock.Any()).Return(nil)
	m.backend.EXPECT().Remove(gomock.Any(), sub.Endpoint, "token-1").Return(nil)

	err := mgr.Unsubscribe(context.Background(), "token-1")

	assert.NoError(t, err)
}

// Unsubscribing with no platform subscription succeeds without touching the
// backend.
func TestUnsubscribe_NoSubscriptionIsNoop(t *testing.T) {
	mgr, m := newTestManager(t)

	m.provider.EXPECT().Get(gomock.Any()).Return(nil, nil)

	err := mgr.Unsubscribe(context.Background(), "token-1")

	assert.NoError(t, err)
}

func TestIsSubscribed(t *testing.T) {
	mgr, m := newTestManager(t)

	m.provider.EXPECT().Get(gomock.Any()).Return(testSubscription(), nil)
	subscribed, err := mgr.IsSubscribed(context.Background())
	require.NoError(t, err)
	assert.True(t, subscribed)

	m.provider.EXPECT().Get(gomock.Any()).Return(nil, nil)
	subscribed, err = mgr.IsSubscribed(context.Background())
	require.NoError(t, err)
	assert.False(t, subscribed)
}

func TestHandlePush_StructuredPayload(t *testing.T) {
	mgr, m := newTestManager(t)

	var shown models.Notification
	m.notifier.EXPECT().
		Show(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, n models.Notification) error {
			shown = n
			return nil
		})

	err := mgr.HandlePush(context.Background(), []byte(`{"title":"Sale","body":"20% off"}`))

	require.NoError(t, err)
	assert.Equal(t, "Sale", shown.Title)
	assert.Equal(t, "20% off", shown.Body)
	assert.Equal(t, "/logo.png", shown.Icon)
	require.Len(t, shown.Actions, 2)
	assert.Equal(t, models.ActionOpen, shown.Actions[0].Action)
	assert.Equal(t, models.ActionClose, shown.Actions[1].Action)
}

func TestHandlePush_MalformedPayloadStillRenders(t *testing.T) {
	mgr, m := newTestManager(t)

	var shown models.Notification
	m.notifier.EXPECT().
		Show(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, n models.Notification) error {
			shown = n
			return nil
		})

	err := mgr.HandlePush(context.Background(), []byte("plain text"))

	require.NoError(t, err)
	assert.Equal(t, DefaultTitle, shown.Title)
	assert.Equal(t, "plain text", shown.Body)
}

// A close action dismisses only: no session enumeration, no navigation.
func TestHandleClick_CloseDoesNothing(t *testing.T) {
	mgr, _ := newTestManager(t)

	err := mgr.HandleClick(context.Background(), models.ActionClose, "/sale")

	assert.NoError(t, err)
}

func TestHandleClick_FocusesExistingSession(t *testing.T) {
	mgr, m := newTestManager(t)

	ctrl := gomock.NewController(t)
	client := mock.NewMockClient(ctrl)

	m.clients.EXPECT().List(gomock.Any()).Return([]interfaces.Client{client}, nil)
	client.EXPECT().Navigate(gomock.Any(), "/sale").Return(nil)
	client.EXPECT().Focus(gomock.Any()).Return(nil)
	// No OpenWindow expectation: an existing session must be reused

	err := mgr.HandleClick(context.Background(), models.ActionOpen, "/sale")

	assert.NoError(t, err)
}

func TestHandleClick_OpensWindowWhenNoSession(t *testing.T) {
	mgr, m := newTestManager(t)

	m.clients.EXPECT().List(gomock.Any()).Return(nil, nil)
	m.clients.EXPECT().OpenWindow(gomock.Any(), "/sale").Return(nil)

	err := mgr.HandleClick(context.Background(), models.ActionOpen, "/sale")

	assert.NoError(t, err)
}

func TestHandleClick_EmptyTargetDefaultsToRoot(t *testing.T) {
	mgr, m := newTestManager(t)

	m.clients.EXPECT().List(gomock.Any()).Return(nil, nil)
	m.clients.EXPECT().OpenWindow(gomock.Any(), "/").Return(nil)

	err := mgr.HandleClick(context.Background(), "", "")

	assert.NoError(t, err)
}
