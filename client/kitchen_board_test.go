package client

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"tableorder-backend/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubLister struct {
	mu     sync.Mutex
	orders []models.OrderView
	err    error
	calls  int
}

func (s *stubLister) ListOrders(ctx context.Context) ([]models.OrderView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return s.orders, s.err
}

func (s *stubLister) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func orderView(table int, status models.OrderStatus, created time.Time) models.OrderView {
	menu := &models.MenuItem{Name: "Burger"}
	return models.OrderView{
		Order: models.Order{
			ID:            uuid.New(),
			TableNumber:   table,
			Status:        status,
			CreatedAt:     created,
			EstimatedTime: 15,
		},
		Items: []models.LineItemView{
			{OrderItem: models.OrderItem{Name: "Burger", Quantity: 2}, MenuItem: menu},
			{OrderItem: models.OrderItem{Name: "Old Special", Quantity: 1}, MenuItemDeleted: true},
		},
	}
}

func TestBuildBoard(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	orders := []models.OrderView{
		orderView(3, models.StatusPending, now.Add(-2*time.Minute)),
		orderView(1, models.StatusPending, now.Add(-20*time.Minute)),
		orderView(2, models.StatusPreparing, now.Add(-5*time.Minute)),
		orderView(4, models.StatusReady, now.Add(-30*time.Second)),
		orderView(5, models.StatusServed, now.Add(-time.Hour)),
		orderView(6, models.StatusCancelled, now.Add(-time.Hour)),
	}

	board := BuildBoard(orders, now)
	assert.Equal(t, 4, board.Active())
	require.Len(t, board.Pending, 2)
	assert.Equal(t, 1, board.Pending[0].TableNumber, "oldest first")
	assert.Equal(t, 20, board.Pending[0].AgeMinutes)
	assert.True(t, board.Pending[0].Overdue())
	assert.False(t, board.Pending[1].Overdue())
	assert.Equal(t, []string{"2 x Burger", "1 x Old Special"}, board.Pending[0].Items)
	require.Len(t, board.Preparing, 1)
	require.Len(t, board.Ready, 1)
	assert.Zero(t, board.Ready[0].AgeMinutes)
	assert.Equal(t, now, board.UpdatedAt)
}

func TestKitchenBoard_Refresh(t *testing.T) {
	lister := &stubLister{orders: []models.OrderView{orderView(1, models.StatusPending, time.Now())}}
	kb := NewKitchenBoard(lister, 0)
	assert.Equal(t, DefaultPollInterval, kb.interval)

	var updates []Board
	kb.OnUpdate = func(b Board) { updates = append(updates, b) }
	var errs []error
	kb.OnError = func(err error) { errs = append(errs, err) }

	board, err := kb.Refresh(context.Background())
	require.NoError(t, err)
	assert.Len(t, board.Pending, 1)
	assert.Len(t, updates, 1)
	assert.Equal(t, board, kb.Last())

	lister.err = errors.New("connection refused")
	_, err = kb.Refresh(context.Background())
	assert.ErrorContains(t, err, "connection refused")
	assert.Len(t, errs, 1)
	assert.Len(t, updates, 1)
	assert.Len(t, kb.Last().Pending, 1, "failed polls keep the previous snapshot")
}

func TestKitchenBoard_RunPollsUntilCancelled(t *testing.T) {
	lister := &stubLister{}
	kb := NewKitchenBoard(lister, time.Second)

	updates := make(chan Board, 10)
	kb.OnUpdate = func(b Board) { updates <- b }

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- kb.Run(ctx) }()

	for i := 0; i < 2; i++ {
		select {
		case <-updates:
		case <-time.After(3 * time.Second):
			t.Fatalf("poll %d did not happen", i+1)
		}
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	assert.GreaterOrEqual(t, lister.Calls(), 2)
}
