package services

import (
	"context"
	"sync"
	"testing"

	"tableorder-backend/models"
	"tableorder-backend/store"
	"tableorder-backend/utils"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	utils.BcryptCost = bcrypt.MinCost
}

type recordingNotifier struct {
	mu     sync.Mutex
	placed []models.Order
	ready  []models.Order
	err    error
}

func (r *recordingNotifier) OrderPlaced(ctx context.Context, order models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.placed = append(r.placed, order)
	return r.err
}

func (r *recordingNotifier) OrderReady(ctx context.Context, order models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ready = append(r.ready, order)
	return r.err
}

type fixture struct {
	store    *store.MemoryStore
	menu     *MenuService
	orders   *OrderService
	notifier *recordingNotifier
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	s := store.NewMemoryStore()
	n := &recordingNotifier{}
	log := utils.DiscardLogger()
	return &fixture{
		store:    s,
		menu:     NewMenuService(s, log),
		orders:   NewOrderService(s, n, log),
		notifier: n,
	}
}

func (f *fixture) burger(t *testing.T) *models.MenuItem {
	t.Helper()
	item, err := f.menu.CreateMenuItem(context.Background(), MenuItemInput{
		Name:     "Burger",
		Price:    decimal.RequireFromString("9.99"),
		Category: models.CategoryMainCourse,
	}, "x.png")
	if err != nil {
		t.Fatalf("failed to create burger: %v", err)
	}
	return item
}

func intPtr(v int) *int { return &v }
