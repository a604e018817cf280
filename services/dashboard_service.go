package services

import (
	"context"
	"fmt"
	"time"

	"tableorder-backend/models"
	"tableorder-backend/store"
	"tableorder-backend/utils"

	"github.com/shopspring/decimal"
)

type DashboardOverview struct {
	TotalRevenue    decimal.Decimal            `json:"totalRevenue"`
	TodayRevenue    decimal.Decimal            `json:"todayRevenue"`
	TotalOrders     int                        `json:"totalOrders"`
	TodayOrders     int                        `json:"todayOrders"`
	PendingOrders   int                        `json:"pendingOrders"`
	ActiveMenuItems int                        `json:"activeMenuItems"`
	TotalMenuItems  int                        `json:"totalMenuItems"`
	OrdersByStatus  map[models.OrderStatus]int `json:"ordersByStatus"`
}

// DashboardService aggregates the manager overview. It reads whole
// collections, which is fine at single-restaurant scale.
type DashboardService struct {
	store store.Store
	now   func() time.Time
}

func NewDashboardService(s store.Store) *DashboardService {
	return &DashboardService{store: s, now: time.Now}
}

// Overview counts revenue from every order that was not cancelled.
func (s *DashboardService) Overview(ctx context.Context) (*DashboardOverview, error) {
	orders, err := s.store.Orders().List(ctx, store.OrderFilter{})
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	menu, err := s.store.Menu().List(ctx, store.MenuFilter{})
	if err != nil {
		return nil, fmt.Errorf("list menu items: %w", err)
	}

	startOfDay := utils.BeginningOfDay(s.now())
	overview := &DashboardOverview{
		TotalRevenue:   decimal.Zero,
		TodayRevenue:   decimal.Zero,
		TotalOrders:    len(orders),
		TotalMenuItems: len(menu),
		OrdersByStatus: make(map[models.OrderStatus]int, len(models.Statuses)),
	}
	for _, status := range models.Statuses {
		overview.OrdersByStatus[status] = 0
	}

	for _, order := range orders {
		overview.OrdersByStatus[order.Status]++
		today := !order.CreatedAt.Before(startOfDay)
		if today {
			overview.TodayOrders++
		}
		if order.Status == models.StatusCancelled {
			continue
		}
		overview.TotalRevenue = overview.TotalRevenue.Add(order.TotalAmount)
		if today {
			overview.TodayRevenue = overview.TodayRevenue.Add(order.TotalAmount)
		}
	}
	overview.PendingOrders = overview.OrdersByStatus[models.StatusPending]

	for _, item := range menu {
		if item.Available {
			overview.ActiveMenuItems++
		}
	}
	return overview, nil
}
