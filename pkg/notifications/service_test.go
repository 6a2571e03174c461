package notifications

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/internhub/pkg/logger"
)

// MockStorage for testing Service
type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) Create(ctx context.Context, notif Notification) error {
	args := m.Called(ctx, notif)
	return args.Error(0)
}

func (m *MockStorage) CreateBatch(ctx context.Context, notifs []Notification) error {
	args := m.Called(ctx, notifs)
	return args.Error(0)
}

func (m *MockStorage) Get(ctx context.Context, notifID string) (*Notification, error) {
	args := m.Called(ctx, notifID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Notification), args.Error(1)
}

func (m *MockStorage) List(ctx context.Context, userID string, opts ListOptions) ([]Notification, error) {
	args := m.Called(ctx, userID, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Notification), args.Error(1)
}

func (m *MockStorage) MarkRead(ctx context.Context, readAt time.Time, notifIDs ...string) (int, error) {
	args := m.Called(ctx, readAt, notifIDs)
	return args.Int(0), args.Error(1)
}

// MockDeliverer for testing Service
type MockDeliverer struct {
	mock.Mock
}

func (m *MockDeliverer) Deliver(ctx context.Context, notif Notification) error {
	args := m.Called(ctx, notif)
	return args.Error(0)
}

func (m *MockDeliverer) DeliverBatch(ctx context.Context, notifs []Notification) error {
	args := m.Called(ctx, notifs)
	return args.Error(0)
}

var clientTime = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

func sequentialIDs() func() string {
	var n atomic.Int64
	return func() string { return fmt.Sprintf("n%d", n.Add(1)) }
}

func newTestService(storage Storage, opts ...Option) *Service {
	opts = append([]Option{
		WithLogger(logger.Discard()),
		WithClock(func() time.Time { return clientTime }),
		WithIDGenerator(sequentialIDs()),
	}, opts...)
	return NewService(storage, NewBroadcastFeed(), opts...)
}

func TestService_CreateNotification(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("renders and stores", func(t *testing.T) {
		storage := NewMemoryStorage(WithMemoryClock(func() time.Time { return clientTime.Add(time.Minute) }))
		svc := newTestService(storage)

		n, err := svc.CreateNotification(ctx, "s1", KindCertificateGenerated, Data{"userRole": "student", "companyName": "Acme"})
		require.NoError(t, err)
		require.NotNil(t, n)

		assert.Equal(t, "n1", n.ID)
		assert.Equal(t, "s1", n.UserID)
		assert.Equal(t, TypeCertificate, n.Type)
		assert.Equal(t, SoundSuccess, n.SoundType)
		assert.Equal(t, "Certificate ready", n.Title)
		assert.False(t, n.Read)
		assert.Equal(t, clientTime, n.Timestamp, "returned copy carries the client timestamp")

		stored, err := storage.Get(ctx, n.ID)
		require.NoError(t, err)
		assert.Equal(t, clientTime.Add(time.Minute), stored.Timestamp, "stored record carries the storage timestamp")
		assert.Equal(t, "student", stored.Data["userRole"])
	})

	t.Run("fallback role", func(t *testing.T) {
		svc := newTestService(NewMemoryStorage(), WithFallbackRole(RoleMentor))
		n, err := svc.CreateNotification(ctx, "m1", KindApplicationSubmitted, Data{"studentName": "Ann"})
		require.NoError(t, err)
		require.NotNil(t, n)
		assert.Equal(t, "New application to review", n.Title)
	})

	t.Run("role without template writes nothing", func(t *testing.T) {
		storage := new(MockStorage)
		svc := newTestService(storage)

		n, err := svc.CreateNotification(ctx, "a1", KindMentorFeedback, Data{"userRole": "admin"})
		assert.NoError(t, err)
		assert.Nil(t, n)
		storage.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("unknown kind writes nothing", func(t *testing.T) {
		storage := new(MockStorage)
		svc := newTestService(storage)

		n, err := svc.CreateNotification(ctx, "s1", Kind("party_invite"), nil)
		assert.NoError(t, err)
		assert.Nil(t, n)
		storage.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("storage error propagates", func(t *testing.T) {
		storage := new(MockStorage)
		storage.On("Create", mock.Anything, mock.AnythingOfType("notifications.Notification")).Return(errors.New("write failed"))
		svc := newTestService(storage)

		n, err := svc.CreateNotification(ctx, "s1", KindOfferReceived, nil)
		require.Error(t, err)
		assert.Nil(t, n)
		assert.Contains(t, err.Error(), "write failed")
		storage.AssertExpectations(t)
	})

	t.Run("delivery failure does not fail create", func(t *testing.T) {
		d := new(MockDeliverer)
		d.On("Deliver", mock.Anything, mock.AnythingOfType("notifications.Notification")).Return(errors.New("push down"))
		svc := newTestService(NewMemoryStorage(), WithDeliverer(d))

		n, err := svc.CreateNotification(ctx, "s1", KindOfferReceived, nil)
		require.NoError(t, err)
		require.NotNil(t, n)
		d.AssertExpectations(t)
	})

	t.Run("missing user", func(t *testing.T) {
		svc := newTestService(NewMemoryStorage())
		_, err := svc.CreateNotification(ctx, "", KindOfferReceived, nil)
		assert.ErrorIs(t, err, ErrMissingUserID)
	})
}

func TestService_CreateBulkNotifications(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	studentOnly := NewCatalog(
		map[Kind]Metadata{KindDeadlineReminder: {Type: TypeReminder, Priority: PriorityMedium, Sound: SoundAlert}},
		Templates{RoleStudent: {KindDeadlineReminder: func(Data) Content { return Content{Title: "due"} }}},
	)

	t.Run("skips users whose role has no template", func(t *testing.T) {
		storage := NewMemoryStorage()
		svc := newTestService(storage, WithCatalog(studentOnly))

		got, err := svc.CreateBulkNotifications(ctx, []string{"A", "B"}, KindDeadlineReminder, Data{
			"userRoles": map[string]string{"A": "student", "B": "unknown"},
		})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "A", got[0].UserID)

		listB, err := storage.List(ctx, "B", ListOptions{})
		require.NoError(t, err)
		assert.Empty(t, listB)
	})

	t.Run("per user roles", func(t *testing.T) {
		storage := NewMemoryStorage()
		svc := newTestService(storage)

		got, err := svc.CreateBulkNotifications(ctx, []string{"p1", "adm", "s1", "p1"}, KindSeatAlert, Data{
			"userRoles":   map[string]any{"p1": "placement", "adm": "admin", "s1": "student"},
			"companyName": "Acme",
			"seatsLeft":   2,
		})
		require.NoError(t, err)
		require.Len(t, got, 2, "student has no seat alert template and duplicates are collapsed")
		assert.Equal(t, "Seats running low", got[0].Title)
		assert.Equal(t, "Seat capacity alert", got[1].Title)
		assert.Equal(t, "placement", got[0].Data["userRole"])
		assert.NotContains(t, got[0].Data, "userRoles")
	})

	t.Run("nobody resolves", func(t *testing.T) {
		storage := new(MockStorage)
		svc := newTestService(storage, WithCatalog(studentOnly))

		got, err := svc.CreateBulkNotifications(ctx, []string{"m1"}, KindDeadlineReminder, Data{
			"userRoles": map[string]string{"m1": "mentor"},
		})
		require.NoError(t, err)
		assert.Empty(t, got)
		storage.AssertNotCalled(t, "CreateBatch", mock.Anything, mock.Anything)
	})

	t.Run("batch error propagates", func(t *testing.T) {
		storage := new(MockStorage)
		storage.On("CreateBatch", mock.Anything, mock.Anything).Return(errors.New("tx aborted"))
		svc := newTestService(storage)

		got, err := svc.CreateBulkNotifications(ctx, []string{"s1", "s2"}, KindOfferReceived, nil)
		require.Error(t, err)
		assert.Nil(t, got)
		storage.AssertExpectations(t)
	})
}

func TestService_MarkAsRead(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	storage := NewMemoryStorage()
	svc := newTestService(storage)

	n, err := svc.CreateNotification(ctx, "s1", KindOfferReceived, nil)
	require.NoError(t, err)

	require.NoError(t, svc.MarkAsRead(ctx, n.ID))
	require.NoError(t, svc.MarkAsRead(ctx, n.ID), "marking twice is a no-op")

	got, err := storage.Get(ctx, n.ID)
	require.NoError(t, err)
	assert.True(t, got.Read)
	require.NotNil(t, got.ReadAt)
	assert.Equal(t, clientTime, *got.ReadAt)

	assert.ErrorIs(t, svc.MarkAsRead(ctx, "missing"), ErrNotificationNotFound)
}

func TestService_MarkAsRead_SkipsWriteWhenRead(t *testing.T) {
	t.Parallel()
	storage := new(MockStorage)
	storage.On("Get", mock.Anything, "n1").Return(&Notification{ID: "n1", UserID: "s1", Read: true}, nil)
	svc := newTestService(storage)

	require.NoError(t, svc.MarkAsRead(context.Background(), "n1"))
	storage.AssertNotCalled(t, "MarkRead", mock.Anything, mock.Anything, mock.Anything)
}

func TestService_MarkAllAsRead(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	storage := NewMemoryStorage()
	svc := newTestService(storage)

	for range 3 {
		_, err := svc.CreateNotification(ctx, "s1", KindInterviewReminder, nil)
		require.NoError(t, err)
	}
	_, err := svc.CreateNotification(ctx, "s2", KindInterviewReminder, nil)
	require.NoError(t, err)

	modified, err := svc.MarkAllAsRead(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 3, modified)

	modified, err = svc.MarkAllAsRead(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 0, modified, "second call finds nothing unread")

	stats, err := svc.GetNotificationStats(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Unread)

	other, err := svc.GetNotificationStats(ctx, "s2")
	require.NoError(t, err)
	assert.Equal(t, 1, other.Unread)
}

func TestService_MarkAllAsRead_OnlyTargetsUnread(t *testing.T) {
	t.Parallel()
	storage := new(MockStorage)
	storage.On("List", mock.Anything, "s1", ListOptions{OnlyUnread: true}).
		Return([]Notification{{ID: "a"}, {ID: "b"}}, nil)
	storage.On("MarkRead", mock.Anything, clientTime, []string{"a", "b"}).Return(2, nil)
	svc := newTestService(storage)

	modified, err := svc.MarkAllAsRead(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, 2, modified)
	storage.AssertExpectations(t)
}

func TestService_MarkAllAsRead_Concurrent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := newTestService(NewMemoryStorage())

	for range 5 {
		_, err := svc.CreateNotification(ctx, "s1", KindStatusUpdate, nil)
		require.NoError(t, err)
	}

	var total atomic.Int64
	var wg sync.WaitGroup
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			n, err := svc.MarkAllAsRead(ctx, "s1")
			assert.NoError(t, err)
			total.Add(int64(n))
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(5), total.Load())
}

func TestService_GetNotificationStats(t *testing.T) {
	t.Parallel()
	storage := new(MockStorage)
	storage.On("List", mock.Anything, "s1", ListOptions{}).Return([]Notification{
		{ID: "1", Priority: PriorityHigh, Type: TypeInterview},
		{ID: "2", Priority: PriorityHigh, Type: TypeApproval},
		{ID: "3", Priority: PriorityMedium, Type: TypeApproval, Read: true},
	}, nil)
	svc := newTestService(storage)

	stats, err := svc.GetNotificationStats(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 2, stats.Unread)
	assert.Equal(t, map[Priority]int{PriorityHigh: 2, PriorityMedium: 1, PriorityLow: 0}, stats.ByPriority)
	assert.Equal(t, 2, stats.ByType[TypeApproval])
	assert.Equal(t, 0, stats.ByType[TypeCertificate])
}

func TestService_Subscribe(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := newTestService(NewMemoryStorage())
	defer svc.Cleanup()

	_, err := svc.CreateNotification(ctx, "s1", KindOfferReceived, nil)
	require.NoError(t, err)

	snaps := make(chan Snapshot, 16)
	unsubscribe := svc.SubscribeToNotifications(ctx, "s1", func(s Snapshot) { snaps <- s })
	defer unsubscribe()

	first := receive(t, snaps)
	require.NoError(t, first.Err)
	assert.Len(t, first.Notifications, 1)

	_, err = svc.CreateNotification(ctx, "s1", KindInterviewScheduled, nil)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		select {
		case s := <-snaps:
			return len(s.Notifications) == 2
		default:
			return false
		}
	}, time.Second, 10*time.Millisecond)
}

func TestService_ResubscribeReplaces(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := newTestService(NewMemoryStorage())
	defer svc.Cleanup()

	first := make(chan Snapshot, 16)
	stopFirst := svc.SubscribeToNotifications(ctx, "s1", func(s Snapshot) { first <- s })
	require.NoError(t, receive(t, first).Err)

	second := make(chan Snapshot, 16)
	svc.SubscribeToNotifications(ctx, "s1", func(s Snapshot) { second <- s })
	receive(t, second)

	final := receive(t, first)
	assert.ErrorIs(t, final.Err, ErrSubscriptionReplaced)
	assert.Equal(t, "s1", final.UserID)

	// The stale handle must not tear down the newer subscription.
	stopFirst()
	assert.Equal(t, []string{"s1"}, svc.Subscribers())

	_, err := svc.CreateNotification(ctx, "s1", KindOfferReceived, nil)
	require.NoError(t, err)

	snap := receive(t, second)
	assert.Len(t, snap.Notifications, 1)
	select {
	case s := <-first:
		t.Fatalf("replaced subscription received a snapshot: %+v", s)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestService_SessionsRunSideBySide(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := newTestService(NewMemoryStorage())
	defer svc.Cleanup()

	tab1 := make(chan Snapshot, 16)
	tab2 := make(chan Snapshot, 16)
	svc.SubscribeSession(ctx, "s1", "tab-1", func(s Snapshot) { tab1 <- s })
	svc.SubscribeSession(ctx, "s1", "tab-2", func(s Snapshot) { tab2 <- s })
	require.NoError(t, receive(t, tab1).Err)
	require.NoError(t, receive(t, tab2).Err)
	assert.Equal(t, []string{"s1"}, svc.Subscribers())

	_, err := svc.CreateNotification(ctx, "s1", KindCertificateGenerated, nil)
	require.NoError(t, err)

	for _, tab := range []chan Snapshot{tab1, tab2} {
		snap := receive(t, tab)
		require.NoError(t, snap.Err)
		assert.Len(t, snap.Notifications, 1)
	}

	svc.UnsubscribeFromNotifications("s1")
	assert.Empty(t, svc.Subscribers())
}

func TestService_SessionResubscribeReplaces(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := newTestService(NewMemoryStorage())
	defer svc.Cleanup()

	first := make(chan Snapshot, 16)
	svc.SubscribeSession(ctx, "s1", "tab-1", func(s Snapshot) { first <- s })
	receive(t, first)

	second := make(chan Snapshot, 16)
	svc.SubscribeSession(ctx, "s1", "tab-1", func(s Snapshot) { second <- s })
	receive(t, second)

	assert.ErrorIs(t, receive(t, first).Err, ErrSubscriptionReplaced)
}

func TestService_UnsubscribeIsSafe(t *testing.T) {
	t.Parallel()
	svc := newTestService(NewMemoryStorage())

	assert.NotPanics(t, func() {
		svc.UnsubscribeFromNotifications("nobody")
		svc.Cleanup()
		svc.Cleanup()
	})

	snaps := make(chan Snapshot, 4)
	svc.SubscribeToNotifications(context.Background(), "s1", func(s Snapshot) { snaps <- s })
	receive(t, snaps)
	svc.UnsubscribeFromNotifications("s1")
	assert.Empty(t, svc.Subscribers())
}

func TestService_SubscribeEndsWithContext(t *testing.T) {
	t.Parallel()
	svc := newTestService(NewMemoryStorage())

	ctx, cancel := context.WithCancel(context.Background())
	snaps := make(chan Snapshot, 4)
	svc.SubscribeToNotifications(ctx, "s1", func(s Snapshot) { snaps <- s })
	receive(t, snaps)

	cancel()
	require.Eventually(t, func() bool { return len(svc.Subscribers()) == 0 }, time.Second, 10*time.Millisecond)
}

func TestService_SubscribeReadError(t *testing.T) {
	t.Parallel()
	storage := new(MockStorage)
	storage.On("List", mock.Anything, "s1", ListOptions{}).Return(nil, errors.New("db down"))
	svc := newTestService(storage)
	defer svc.Cleanup()

	snaps := make(chan Snapshot, 4)
	svc.SubscribeToNotifications(context.Background(), "s1", func(s Snapshot) { snaps <- s })

	snap := receive(t, snaps)
	assert.EqualError(t, snap.Err, "db down")
	assert.Empty(t, snap.Notifications)
}

func TestService_SubscribeMissingUser(t *testing.T) {
	t.Parallel()
	svc := newTestService(NewMemoryStorage())

	var got Snapshot
	stop := svc.SubscribeToNotifications(context.Background(), "", func(s Snapshot) { got = s })
	stop()
	assert.ErrorIs(t, got.Err, ErrMissingUserID)
}

func receive(t *testing.T, ch <-chan Snapshot) Snapshot {
	t.Helper()
	select {
	case s := <-ch:
		return s
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for snapshot")
		return Snapshot{}
	}
}
