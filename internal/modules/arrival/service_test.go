package arrival

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"salonbooking/internal/domain"
	"salonbooking/internal/repository"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockArrivalRepository struct {
	mock.Mock
}

func (m *MockArrivalRepository) Create(ctx context.Context, a *domain.Arrival) error {
	args := m.Called(ctx, a)
	if a != nil {
		a.ID = 42 // simulate DB insert
	}
	return args.Error(0)
}

func (m *MockArrivalRepository) GetByID(ctx context.Context, id int64) (*domain.Arrival, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Arrival), args.Error(1)
}

func (m *MockArrivalRepository) HasActiveForBooking(ctx context.Context, bookingID int64) (bool, error) {
	args := m.Called(ctx, bookingID)
	return args.Bool(0), args.Error(1)
}

func (m *MockArrivalRepository) BeginServiceCAS(ctx context.Context, id int64, startedAt time.Time) (bool, error) {
	args := m.Called(ctx, id, startedAt)
	return args.Bool(0), args.Error(1)
}

func (m *MockArrivalRepository) FinishCAS(ctx context.Context, id int64, finishedAt time.Time) (bool, error) {
	args := m.Called(ctx, id, finishedAt)
	return args.Bool(0), args.Error(1)
}

func (m *MockArrivalRepository) ListQueue(ctx context.Context, branchID int64) ([]domain.Arrival, error) {
	args := m.Called(ctx, branchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Arrival), args.Error(1)
}

type MockBroadcaster struct {
	mock.Mock
}

func (m *MockBroadcaster) Broadcast(branchID int64, snapshot QueueSnapshot) {
	m.Called(branchID, snapshot)
}

func TestService_CheckIn_WalkIn(t *testing.T) {
	mockRepo := new(MockArrivalRepository)
	mockRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
	mockRepo.On("ListQueue", mock.Anything, int64(1)).Return([]domain.Arrival{}, nil)

	mockHub := new(MockBroadcaster)
	mockHub.On("Broadcast", int64(1), mock.Anything).Return()

	service := NewService(mockRepo, mockHub, nil)

	a, err := service.CheckIn(context.Background(), CheckInRequest{
		BranchID:   1,
		ClientName: "walk-in client",
	})

	assert.NoError(t, err)
	assert.Equal(t, domain.ArrivalArrived, a.Status)
	assert.Nil(t, a.BookingID)
	mockRepo.AssertNotCalled(t, "HasActiveForBooking", mock.Anything, mock.Anything)
	mockHub.AssertExpectations(t)
}

func TestService_CheckIn_DuplicateForBooking(t *testing.T) {
	bookingID := int64(7)

	mockRepo := new(MockArrivalRepository)
	mockRepo.On("HasActiveForBooking", mock.Anything, bookingID).Return(true, nil)

	service := NewService(mockRepo, new(MockBroadcaster), nil)

	_, err := service.CheckIn(context.Background(), CheckInRequest{
		BranchID:   1,
		BookingID:  &bookingID,
		ClientName: "client",
	})

	assert.ErrorIs(t, err, ErrAlreadyCheckedIn)
	mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

// Two terminals can pass the pre-check together; the storage uniqueness guard
// resolves the race and the loser gets the usual already-checked-in error.
func TestService_CheckIn_RaceLoserGetsAlreadyCheckedIn(t *testing.T) {
	bookingID := int64(7)

	mockRepo := new(MockArrivalRepository)
	mockRepo.On("HasActiveForBooking", mock.Anything, bookingID).Return(false, nil)
	mockRepo.On("Create", mock.Anything, mock.Anything).Return(repository.ErrDuplicate)

	mockHub := new(MockBroadcaster)
	service := NewService(mockRepo, mockHub, nil)

	_, err := service.CheckIn(context.Background(), CheckInRequest{
		BranchID:   1,
		BookingID:  &bookingID,
		ClientName: "client",
	})

	assert.ErrorIs(t, err, ErrAlreadyCheckedIn)
	mockHub.AssertNotCalled(t, "Broadcast", mock.Anything, mock.Anything)
}

func TestService_BeginService_Conflict(t *testing.T) {
	mockRepo := new(MockArrivalRepository)
	mockRepo.On("GetByID", mock.Anything, int64(42)).Return(&domain.Arrival{
		ID: 42, BranchID: 1, Status: domain.ArrivalInService,
	}, nil)
	mockRepo.On("BeginServiceCAS", mock.Anything, int64(42), mock.Anything).Return(false, nil)

	service := NewService(mockRepo, new(MockBroadcaster), nil)

	_, err := service.BeginService(context.Background(), 42)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestService_Finish_Broadcasts(t *testing.T) {
	started := time.Now().UTC().Add(-10 * time.Minute)
	a := &domain.Arrival{ID: 42, BranchID: 3, Status: domain.ArrivalInService, StartedAt: &started}

	mockRepo := new(MockArrivalRepository)
	mockRepo.On("GetByID", mock.Anything, int64(42)).Return(a, nil)
	mockRepo.On("FinishCAS", mock.Anything, int64(42), mock.Anything).Return(true, nil)
	mockRepo.On("ListQueue", mock.Anything, int64(3)).Return([]domain.Arrival{}, nil)

	mockHub := new(MockBroadcaster)
	mockHub.On("Broadcast", int64(3), mock.Anything).Return()

	service := NewService(mockRepo, mockHub, nil)

	_, err := service.Finish(context.Background(), 42)

	assert.NoError(t, err)
	mockHub.AssertExpectations(t)
}

// Positions follow arrival order; waiting time freezes once service starts.
func TestService_Queue_PositionsAndWaitTimes(t *testing.T) {
	now := time.Now().UTC()
	started := now.Add(-5 * time.Minute)
	list := []domain.Arrival{
		{ID: 1, BranchID: 1, ClientName: "first", Status: domain.ArrivalInService, ArrivedAt: now.Add(-20 * time.Minute), StartedAt: &started},
		{ID: 2, BranchID: 1, ClientName: "second", Status: domain.ArrivalArrived, ArrivedAt: now.Add(-10 * time.Minute)},
	}

	mockRepo := new(MockArrivalRepository)
	mockRepo.On("ListQueue", mock.Anything, int64(1)).Return(list, nil)

	service := NewService(mockRepo, new(MockBroadcaster), nil)

	snap, err := service.Queue(context.Background(), 1)

	assert.NoError(t, err)
	assert.Len(t, snap.Entries, 2)
	assert.Equal(t, 1, snap.Entries[0].Position)
	assert.Equal(t, 2, snap.Entries[1].Position)
	// first waited 15 minutes before service started
	assert.InDelta(t, 15*60, snap.Entries[0].WaitingSeconds, 2)
	// second is still waiting
	assert.InDelta(t, 10*60, snap.Entries[1].WaitingSeconds, 2)
}

func TestHub_SubscribeReceivesBroadcast(t *testing.T) {
	hub := NewHub()
	ch, cancel := hub.Subscribe(1)
	defer cancel()

	snap := QueueSnapshot{BranchID: 1, GeneratedAt: time.Now().UTC()}
	hub.Broadcast(1, snap)

	select {
	case got := <-ch:
		assert.Equal(t, int64(1), got.BranchID)
	case <-time.After(time.Second):
		t.Fatal("no snapshot received")
	}
}

// A slow subscriber keeps only the newest snapshot.
func TestHub_SlowSubscriberGetsLatest(t *testing.T) {
	hub := NewHub()
	ch, cancel := hub.Subscribe(1)
	defer cancel()

	old := QueueSnapshot{BranchID: 1, Entries: []QueueEntry{{ID: 1}}}
	newer := QueueSnapshot{BranchID: 1, Entries: []QueueEntry{{ID: 1}, {ID: 2}}}
	hub.Broadcast(1, old)
	hub.Broadcast(1, newer)

	got := <-ch
	assert.Len(t, got.Entries, 2)
}

func TestHub_BroadcastIsScopedToBranch(t *testing.T) {
	hub := NewHub()
	ch, cancel := hub.Subscribe(2)
	defer cancel()

	hub.Broadcast(1, QueueSnapshot{BranchID: 1})

	select {
	case <-ch:
		t.Fatal("subscriber of branch 2 received branch 1 snapshot")
	case <-time.After(50 * time.Millisecond):
	}
}

// Writes to one websocket connection are serialized: simultaneous broadcasts
// from many mutation handlers must not interleave on the wire.
func TestHub_ConcurrentBroadcastsToOneConnection(t *testing.T) {
	hub := NewHub()
	defer hub.Close()

	registered := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		up := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
		ws, err := up.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		fc := hub.Register(7, ws)
		defer hub.Unregister(7, fc)
		close(registered)
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	client, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	assert.NoError(t, err)
	defer client.Close()
	<-registered

	const writers = 32
	var wg sync.WaitGroup
	wg.Add(writers)
	for i := 0; i < writers; i++ {
		go func() {
			defer wg.Done()
			hub.Broadcast(7, QueueSnapshot{BranchID: 7})
		}()
	}

	for i := 0; i < writers; i++ {
		var snap QueueSnapshot
		assert.NoError(t, client.ReadJSON(&snap))
		assert.Equal(t, int64(7), snap.BranchID)
	}
	wg.Wait()
}

func TestHub_CancelStopsDelivery(t *testing.T) {
	hub := NewHub()
	_, cancel := hub.Subscribe(1)

	assert.Equal(t, 1, hub.WatcherCount(1))
	cancel()
	assert.Equal(t, 0, hub.WatcherCount(1))

	// cancel twice must not panic
	cancel()
}
