package inbox

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/internhub/pkg/logger"
	"github.com/dmitrymomot/internhub/pkg/notifications"
)

// fakeService captures feed callbacks so tests can push snapshots by hand.
type fakeService struct {
	mock.Mock

	mu        sync.Mutex
	callbacks map[string]notifications.SnapshotFunc
	unsubs    int
}

func newFakeService() *fakeService {
	return &fakeService{callbacks: make(map[string]notifications.SnapshotFunc)}
}

func (f *fakeService) SubscribeToNotifications(_ context.Context, userID string, cb notifications.SnapshotFunc) func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.callbacks[userID] = cb
	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.unsubs++
	}
}

func (f *fakeService) push(userID string, list ...notifications.Notification) {
	f.mu.Lock()
	cb := f.callbacks[userID]
	f.mu.Unlock()
	cb(notifications.Snapshot{UserID: userID, Notifications: list})
}

func (f *fakeService) fail(userID string, err error) {
	f.mu.Lock()
	cb := f.callbacks[userID]
	f.mu.Unlock()
	cb(notifications.Snapshot{UserID: userID, Err: err})
}

func (f *fakeService) MarkAsRead(ctx context.Context, id string) error {
	return f.Called(ctx, id).Error(0)
}

func (f *fakeService) MarkAllAsRead(ctx context.Context, userID string) (int, error) {
	args := f.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

func (f *fakeService) CreateNotification(ctx context.Context, userID string, kind notifications.Kind, data notifications.Data) (*notifications.Notification, error) {
	args := f.Called(ctx, userID, kind, data)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*notifications.Notification), args.Error(1)
}

func (f *fakeService) CreateBulkNotifications(ctx context.Context, userIDs []string, kind notifications.Kind, data notifications.Data) ([]notifications.Notification, error) {
	args := f.Called(ctx, userIDs, kind, data)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]notifications.Notification), args.Error(1)
}

var (
	t0      = time.Date(2025, 4, 1, 8, 0, 0, 0, time.UTC)
	student = Identity{UserID: "s1", Role: notifications.RoleStudent}
)

func note(id string, read bool, p notifications.Priority, typ notifications.Type) notifications.Notification {
	return notifications.Notification{ID: id, UserID: "s1", Read: read, Priority: p, Type: typ, Category: string(typ)}
}

func startedStore(t *testing.T, svc *fakeService, opts ...Option) *Store {
	t.Helper()
	opts = append([]Option{WithLogger(logger.Discard()), WithClock(func() time.Time { return t0 })}, opts...)
	s := New(svc, opts...)
	require.NoError(t, s.Start(context.Background(), student))
	return s
}

func TestStore_StartLoads(t *testing.T) {
	t.Parallel()
	svc := newFakeService()
	s := startedStore(t, svc)

	st := s.State()
	assert.True(t, st.Loading)
	assert.Empty(t, st.Notifications)
	assert.Equal(t, student, st.Identity)

	svc.push("s1",
		note("b", false, notifications.PriorityHigh, notifications.TypeInterview),
		note("a", true, notifications.PriorityLow, notifications.TypeUpdate),
	)

	st = s.State()
	assert.False(t, st.Loading)
	assert.Equal(t, 1, st.UnreadCount)
	assert.Len(t, st.Notifications, 2)
	assert.Empty(t, st.ToastQueue, "the initial load is not toasted")
}

func TestStore_NewArrivalsQueueToasts(t *testing.T) {
	t.Parallel()
	svc := newFakeService()
	s := startedStore(t, svc)

	a := note("a", false, notifications.PriorityLow, notifications.TypeUpdate)
	svc.push("s1", a)

	b := note("b", false, notifications.PriorityHigh, notifications.TypeApproval)
	c := note("c", false, notifications.PriorityHigh, notifications.TypeCertificate)
	svc.push("s1", c, b, a)

	st := s.State()
	assert.Equal(t, 3, st.UnreadCount)
	require.Len(t, st.ToastQueue, 2)
	assert.Equal(t, "b", st.ToastQueue[0].ID, "oldest arrival first")
	assert.Equal(t, "c", st.ToastQueue[1].ID)

	// Redelivery of the same snapshot is idempotent.
	svc.push("s1", c, b, a)
	st = s.State()
	assert.Len(t, st.Notifications, 3)
	assert.Len(t, st.ToastQueue, 2)
}

func TestStore_SwitchingUsersDropsStaleSnapshots(t *testing.T) {
	t.Parallel()
	svc := newFakeService()
	s := startedStore(t, svc)
	svc.push("s1", note("a", false, notifications.PriorityLow, notifications.TypeUpdate))

	svc.mu.Lock()
	staleCallback := svc.callbacks["s1"]
	svc.mu.Unlock()

	require.NoError(t, s.Start(context.Background(), Identity{UserID: "m1", Role: notifications.RoleMentor}))
	st := s.State()
	assert.True(t, st.Loading)
	assert.Empty(t, st.Notifications, "no data from the previous user")

	staleCallback(notifications.Snapshot{UserID: "s1", Notifications: []notifications.Notification{note("x", false, "", "")}})
	assert.Empty(t, s.State().Notifications)

	svc.mu.Lock()
	assert.Equal(t, 1, svc.unsubs)
	svc.mu.Unlock()
}

func TestStore_StopClears(t *testing.T) {
	t.Parallel()
	svc := newFakeService()
	s := startedStore(t, svc)
	svc.push("s1", note("a", false, notifications.PriorityLow, notifications.TypeUpdate))

	s.Stop()
	assert.Equal(t, State{}, s.State())

	assert.ErrorIs(t, s.MarkAllAsRead(context.Background()), ErrNotStarted)
	assert.ErrorIs(t, s.Start(context.Background(), Identity{}), ErrMissingUser)
}

func TestStore_MarkAsRead(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := newFakeService()
	svc.On("MarkAsRead", mock.Anything, "a").Return(nil).Once()
	s := startedStore(t, svc)
	svc.push("s1",
		note("b", false, notifications.PriorityHigh, notifications.TypeApproval),
		note("a", false, notifications.PriorityLow, notifications.TypeUpdate),
	)

	require.NoError(t, s.MarkAsRead(ctx, "a"))
	st := s.State()
	assert.Equal(t, 1, st.UnreadCount)
	assert.True(t, st.Notifications[1].Read)
	require.NotNil(t, st.Notifications[1].ReadAt)
	assert.Equal(t, t0, *st.Notifications[1].ReadAt)

	require.NoError(t, s.MarkAsRead(ctx, "a"), "second call is a no-op")
	assert.Equal(t, 1, s.State().UnreadCount)
	svc.AssertExpectations(t)
}

func TestStore_MarkAsReadSurvivesStaleSnapshot(t *testing.T) {
	t.Parallel()
	svc := newFakeService()
	svc.On("MarkAsRead", mock.Anything, "a").Return(nil)
	s := startedStore(t, svc)
	a := note("a", false, notifications.PriorityLow, notifications.TypeUpdate)
	svc.push("s1", a)

	require.NoError(t, s.MarkAsRead(context.Background(), "a"))

	// A snapshot taken before the remote write landed.
	svc.push("s1", a)
	st := s.State()
	assert.True(t, st.Notifications[0].Read)
	assert.Equal(t, 0, st.UnreadCount)
}

func TestStore_MarkAsReadFailureKeepsOptimisticState(t *testing.T) {
	t.Parallel()
	svc := newFakeService()
	svc.On("MarkAsRead", mock.Anything, "a").Return(errors.New("offline"))
	s := startedStore(t, svc)
	svc.push("s1", note("a", false, notifications.PriorityLow, notifications.TypeUpdate))

	err := s.MarkAsRead(context.Background(), "a")
	assert.EqualError(t, err, "offline")

	st := s.State()
	assert.True(t, st.Notifications[0].Read)
	assert.Equal(t, 0, st.UnreadCount)
}

func TestStore_MarkAsReadFailureRollback(t *testing.T) {
	t.Parallel()
	svc := newFakeService()
	svc.On("MarkAllAsRead", mock.Anything, "s1").Return(0, errors.New("offline"))
	s := startedStore(t, svc, WithReconciler(Rollback{Logger: logger.Discard()}))
	svc.push("s1",
		note("b", false, notifications.PriorityHigh, notifications.TypeApproval),
		note("a", true, notifications.PriorityLow, notifications.TypeUpdate),
	)

	require.Error(t, s.MarkAllAsRead(context.Background()))

	st := s.State()
	assert.Equal(t, 1, st.UnreadCount)
	assert.False(t, st.Notifications[0].Read)
	assert.True(t, st.Notifications[1].Read, "rollback only touches what the mutation flipped")
}

func TestStore_MarkAllAsRead(t *testing.T) {
	t.Parallel()
	svc := newFakeService()
	svc.On("MarkAllAsRead", mock.Anything, "s1").Return(2, nil)
	s := startedStore(t, svc)
	svc.push("s1",
		note("b", false, notifications.PriorityHigh, notifications.TypeApproval),
		note("a", false, notifications.PriorityLow, notifications.TypeUpdate),
	)

	require.NoError(t, s.MarkAllAsRead(context.Background()))

	st := s.State()
	assert.Equal(t, 0, st.UnreadCount)
	for _, n := range st.Notifications {
		assert.True(t, n.Read)
	}
	svc.AssertExpectations(t)
}

func TestStore_FeedErrorDegrades(t *testing.T) {
	t.Parallel()
	svc := newFakeService()
	s := startedStore(t, svc)

	svc.fail("s1", errors.New("permission denied"))
	st := s.State()
	assert.False(t, st.Loading)
	assert.EqualError(t, st.Err, "permission denied")
	assert.Empty(t, st.Notifications)

	svc.push("s1", note("a", false, notifications.PriorityLow, notifications.TypeUpdate))
	st = s.State()
	assert.NoError(t, st.Err)
	assert.Len(t, st.Notifications, 1)
}

func TestStore_CreateDelegates(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := newFakeService()
	data := notifications.Data{"userRole": "student"}
	svc.On("CreateNotification", mock.Anything, "s1", notifications.KindOfferReceived, data).Return(nil, errors.New("write failed"))
	svc.On("CreateBulkNotifications", mock.Anything, []string{"s1", "s2"}, notifications.KindSeatAlert, data).
		Return([]notifications.Notification{{ID: "x"}}, nil)
	s := startedStore(t, svc)

	_, err := s.CreateNotification(ctx, "s1", notifications.KindOfferReceived, data)
	assert.EqualError(t, err, "write failed")

	got, err := s.CreateBulkNotifications(ctx, []string{"s1", "s2"}, notifications.KindSeatAlert, data)
	require.NoError(t, err)
	assert.Len(t, got, 1)
	svc.AssertExpectations(t)
}

func TestStore_HandleNotificationClick(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("marks and navigates", func(t *testing.T) {
		svc := newFakeService()
		svc.On("MarkAsRead", mock.Anything, "a").Return(nil).Once()
		var visited []string
		s := startedStore(t, svc, WithNavigator(NavigatorFunc(func(_ context.Context, path string) error {
			visited = append(visited, path)
			return nil
		})))
		n := note("a", false, notifications.PriorityLow, notifications.TypeUpdate)
		n.ActionURL = "/student/offers"
		svc.push("s1", n)

		require.NoError(t, s.HandleNotificationClick(ctx, n))
		assert.Equal(t, []string{"/student/offers"}, visited)
		assert.Equal(t, 0, s.State().UnreadCount)
		svc.AssertExpectations(t)
	})

	t.Run("read without url", func(t *testing.T) {
		svc := newFakeService()
		s := startedStore(t, svc)
		require.NoError(t, s.HandleNotificationClick(ctx, note("a", true, "", "")))
		svc.AssertNotCalled(t, "MarkAsRead", mock.Anything, mock.Anything)
	})

	t.Run("navigation failure", func(t *testing.T) {
		svc := newFakeService()
		s := startedStore(t, svc, WithNavigator(NavigatorFunc(func(context.Context, string) error {
			return errors.New("router gone")
		})))
		n := note("a", true, "", "")
		n.ActionURL = "/x"
		assert.ErrorIs(t, s.HandleNotificationClick(ctx, n), ErrNavigation)
	})
}

func TestStore_Toasts(t *testing.T) {
	t.Parallel()
	svc := newFakeService()
	s := startedStore(t, svc)
	a := note("a", false, notifications.PriorityLow, notifications.TypeUpdate)
	svc.push("s1")
	svc.push("s1", a)
	b := note("b", false, notifications.PriorityLow, notifications.TypeUpdate)
	svc.push("s1", b, a)
	require.Len(t, s.State().ToastQueue, 2)

	s.RemoveToast("a")
	st := s.State()
	require.Len(t, st.ToastQueue, 1)
	assert.Len(t, st.Notifications, 2, "toast removal leaves the list alone")

	s.ClearToasts()
	st = s.State()
	assert.Empty(t, st.ToastQueue)
	assert.Equal(t, 2, st.UnreadCount)
}

func TestStore_Views(t *testing.T) {
	t.Parallel()
	svc := newFakeService()
	s := startedStore(t, svc)
	svc.push("s1",
		note("3", false, notifications.PriorityHigh, notifications.TypeInterview),
		note("2", false, notifications.PriorityHigh, notifications.TypeApproval),
		note("1", true, notifications.PriorityMedium, notifications.TypeApproval),
	)

	assert.Len(t, s.ByType(notifications.TypeApproval), 2)
	assert.Len(t, s.ByPriority(notifications.PriorityHigh), 2)
	assert.Empty(t, s.ByPriority(notifications.PriorityLow))
	assert.Len(t, s.Unread(), 2)

	stats := s.Stats()
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 2, stats.Unread)
	assert.Equal(t, map[notifications.Priority]int{
		notifications.PriorityHigh:   2,
		notifications.PriorityMedium: 1,
		notifications.PriorityLow:    0,
	}, stats.ByPriority)
	assert.Equal(t, 2, stats.ByCategory["approval"])
}

func TestStore_OnChange(t *testing.T) {
	t.Parallel()
	svc := newFakeService()
	s := New(svc, WithLogger(logger.Discard()))

	var states []State
	remove := s.OnChange(func(st State) { states = append(states, st) })

	require.NoError(t, s.Start(context.Background(), student))
	svc.push("s1", note("a", false, notifications.PriorityLow, notifications.TypeUpdate))
	remove()
	svc.push("s1")

	require.Len(t, states, 2)
	assert.True(t, states[0].Loading)
	assert.Equal(t, 1, states[1].UnreadCount)
}
