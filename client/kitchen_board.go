package client

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"tableorder-backend/models"
	"tableorder-backend/utils"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
)

// DefaultPollInterval matches the refresh rate of the kitchen display.
const DefaultPollInterval = 30 * time.Second

type OrderLister interface {
	ListOrders(ctx context.Context) ([]models.OrderView, error)
}

type BoardEntry struct {
	OrderID             uuid.UUID
	TableNumber         int
	Status              models.OrderStatus
	Items               []string
	SpecialInstructions string
	AgeMinutes          int
	EstimatedTime       int
}

// Overdue reports whether the order has waited longer than estimated.
func (e BoardEntry) Overdue() bool {
	return e.EstimatedTime > 0 && e.AgeMinutes > e.EstimatedTime
}

// Board is one snapshot of the active orders. Served and cancelled orders
// are left off.
type Board struct {
	Pending   []BoardEntry
	Preparing []BoardEntry
	Ready     []BoardEntry
	UpdatedAt time.Time
}

func (b Board) Active() int {
	return len(b.Pending) + len(b.Preparing) + len(b.Ready)
}

// BuildBoard groups orders by status, oldest first so the kitchen works
// in arrival order.
func BuildBoard(orders []models.OrderView, now time.Time) Board {
	sorted := make([]models.OrderView, len(orders))
	copy(sorted, orders)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
	})

	board := Board{UpdatedAt: now}
	for _, order := range sorted {
		entry := BoardEntry{
			OrderID:             order.ID,
			TableNumber:         order.TableNumber,
			Status:              order.Status,
			SpecialInstructions: order.SpecialInstructions,
			AgeMinutes:          utils.MinutesBetween(order.CreatedAt, now),
			EstimatedTime:       order.EstimatedTime,
		}
		for _, line := range order.Items {
			name := line.Name
			if line.MenuItem != nil {
				name = line.MenuItem.Name
			}
			entry.Items = append(entry.Items, fmt.Sprintf("%d x %s", line.Quantity, name))
		}

		switch order.Status {
		case models.StatusPending:
			board.Pending = append(board.Pending, entry)
		case models.StatusPreparing:
			board.Preparing = append(board.Preparing, entry)
		case models.StatusReady:
			board.Ready = append(board.Ready, entry)
		}
	}
	return board
}

// KitchenBoard polls the order list on a fixed schedule and hands every
// snapshot to OnUpdate. A poll that is still running when the next one is
// due causes that tick to be skipped.
type KitchenBoard struct {
	orders   OrderLister
	interval time.Duration

	OnUpdate func(Board)
	OnError  func(error)

	mu   sync.Mutex
	last Board
	now  func() time.Time
}

func NewKitchenBoard(orders OrderLister, interval time.Duration) *KitchenBoard {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &KitchenBoard{orders: orders, interval: interval, now: time.Now}
}

// Refresh polls once.
func (k *KitchenBoard) Refresh(ctx context.Context) (Board, error) {
	orders, err := k.orders.ListOrders(ctx)
	if err != nil {
		if k.OnError != nil {
			k.OnError(err)
		}
		return Board{}, fmt.Errorf("list orders: %w", err)
	}

	board := BuildBoard(orders, k.now())
	k.mu.Lock()
	k.last = board
	k.mu.Unlock()
	if k.OnUpdate != nil {
		k.OnUpdate(board)
	}
	return board, nil
}

// Last returns the most recent successful snapshot.
func (k *KitchenBoard) Last() Board {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.last
}

// Run polls immediately and then every interval until ctx is cancelled.
// It waits for an in-flight poll before returning.
func (k *KitchenBoard) Run(ctx context.Context) error {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	if _, err := c.AddFunc(fmt.Sprintf("@every %s", k.interval), func() {
		_, _ = k.Refresh(ctx)
	}); err != nil {
		return fmt.Errorf("schedule poll: %w", err)
	}

	_, _ = k.Refresh(ctx)
	c.Start()
	<-ctx.Done()
	<-c.Stop().Done()
	return nil
}
