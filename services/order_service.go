package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"tableorder-backend/models"
	"tableorder-backend/store"

	"github.com/google/uuid"
)

type LineItemInput struct {
	MenuItemID uuid.UUID `validate:"required" label:"menuItem"`
	Quantity   int       `validate:"min=1" label:"quantity"`
}

type CreateOrderInput struct {
	TableNumber         int             `validate:"min=1" label:"tableNumber"`
	Items               []LineItemInput `validate:"min=1,dive" label:"items"`
	CustomerName        string          `validate:"max=100" label:"customerName"`
	CustomerPhone       string          `validate:"omitempty,phone" label:"customerPhone"`
	SpecialInstructions string          `validate:"max=500" label:"specialInstructions"`
}

type OrderService struct {
	store    store.Store
	notifier Notifier
	logger   *slog.Logger
}

func NewOrderService(s store.Store, notifier Notifier, logger *slog.Logger) *OrderService {
	if notifier == nil {
		notifier = Notifiers(nil)
	}
	return &OrderService{
		store:    s,
		notifier: notifier,
		logger:   logger.With("component", "order_service"),
	}
}

func normalizeOrderInput(in CreateOrderInput) CreateOrderInput {
	in.CustomerName = strings.TrimSpace(in.CustomerName)
	in.CustomerPhone = strings.TrimSpace(in.CustomerPhone)
	in.SpecialInstructions = strings.TrimSpace(in.SpecialInstructions)
	return in
}

// CreateOrder prices every line from the current menu and stores the order
// as pending. Menu reads and the insert share one transaction, so a price
// change or availability toggle cannot slip in between.
func (s *OrderService) CreateOrder(ctx context.Context, in CreateOrderInput) (*models.OrderView, error) {
	in = normalizeOrderInput(in)
	if err := checkStruct(in); err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(in.Items))
	for _, item := range in.Items {
		ids = append(ids, item.MenuItemID)
	}

	var order models.Order
	var menu map[uuid.UUID]models.MenuItem
	err := s.store.WithTx(ctx, func(ctx context.Context, tx store.Store) error {
		var err error
		menu, err = tx.Menu().GetMany(ctx, ids)
		if err != nil {
			return fmt.Errorf("load menu items: %w", err)
		}

		order = models.Order{
			ID:                  uuid.New(),
			TableNumber:         in.TableNumber,
			Status:              models.StatusPending,
			CustomerName:        in.CustomerName,
			CustomerPhone:       in.CustomerPhone,
			SpecialInstructions: in.SpecialInstructions,
			Items:               make([]models.OrderItem, 0, len(in.Items)),
		}
		for _, line := range in.Items {
			item, ok := menu[line.MenuItemID]
			if !ok {
				return notFoundError("Menu item not found: %s", line.MenuItemID)
			}
			if !item.Available {
				return newError(KindUnavailable, "Item not available: %s", item.Name)
			}
			order.Items = append(order.Items, models.OrderItem{
				MenuItemID: item.ID,
				Name:       item.Name,
				Quantity:   line.Quantity,
				Price:      item.Price,
			})
			if item.PreparationTime > order.EstimatedTime {
				order.EstimatedTime = item.PreparationTime
			}
		}
		if order.EstimatedTime == 0 {
			order.EstimatedTime = models.DefaultEstimatedTime
		}
		order.TotalAmount = models.SumLineItems(order.Items)

		if err := tx.Orders().Create(ctx, &order); err != nil {
			return fmt.Errorf("create order: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("order placed",
		"order_id", order.ID,
		"table", order.TableNumber,
		"items", len(order.Items),
		"total", order.TotalAmount.StringFixed(2),
	)
	if err := s.notifier.OrderPlaced(ctx, order); err != nil {
		s.logger.Warn("order placed notification failed", "order_id", order.ID, "error", err)
	}

	view := models.NewOrderView(order, menu)
	return &view, nil
}

func (s *OrderService) GetOrder(ctx context.Context, id uuid.UUID) (*models.OrderView, error) {
	order, err := s.store.Orders().Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, notFoundError("Order not found")
	}
	if err != nil {
		return nil, fmt.Errorf("get order %s: %w", id, err)
	}
	views, err := s.resolve(ctx, []models.Order{*order})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// ListOrders returns every order, newest first.
func (s *OrderService) ListOrders(ctx context.Context) ([]models.OrderView, error) {
	return s.list(ctx, store.OrderFilter{})
}

// GetOrdersByTable returns the table's orders, newest first.
func (s *OrderService) GetOrdersByTable(ctx context.Context, tableNumber int) ([]models.OrderView, error) {
	if tableNumber < 1 {
		return nil, validationError("table number must be a positive integer")
	}
	return s.list(ctx, store.OrderFilter{TableNumber: tableNumber})
}

func (s *OrderService) list(ctx context.Context, filter store.OrderFilter) ([]models.OrderView, error) {
	orders, err := s.store.Orders().List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return s.resolve(ctx, orders)
}

// resolve joins orders with the menu items they still reference.
func (s *OrderService) resolve(ctx context.Context, orders []models.Order) ([]models.OrderView, error) {
	seen := make(map[uuid.UUID]struct{})
	var ids []uuid.UUID
	for _, order := range orders {
		for _, item := range order.Items {
			if _, ok := seen[item.MenuItemID]; !ok {
				seen[item.MenuItemID] = struct{}{}
				ids = append(ids, item.MenuItemID)
			}
		}
	}

	menu, err := s.store.Menu().GetMany(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("resolve menu items: %w", err)
	}
	views := make([]models.OrderView, 0, len(orders))
	for _, order := range orders {
		views = append(views, models.NewOrderView(order, menu))
	}
	return views, nil
}

// UpdateStatus moves an order along its lifecycle. Only forward moves and
// cancellation before the food is ready are accepted.
func (s *OrderService) UpdateStatus(ctx context.Context, id uuid.UUID, status models.OrderStatus) (*models.OrderView, error) {
	if !status.Valid() {
		return nil, validationError("invalid status %q", status)
	}

	order, err := s.store.Orders().Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, notFoundError("Order not found")
	}
	if err != nil {
		return nil, fmt.Errorf("get order %s: %w", id, err)
	}

	from := order.Status
	if !from.CanTransitionTo(status) {
		return nil, newError(KindInvalidTransition, "cannot change order status from %s to %s", from, status)
	}

	err = s.store.Orders().UpdateStatus(ctx, id, from, status)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return nil, notFoundError("Order not found")
	case errors.Is(err, store.ErrStatusChanged):
		return nil, newError(KindInvalidTransition, "order status changed while updating; reload and try again")
	case err != nil:
		return nil, fmt.Errorf("update order %s: %w", id, err)
	}
	order.Status = status

	s.logger.Info("order status updated", "order_id", id, "from", from, "to", status)
	if status == models.StatusReady {
		if err := s.notifier.OrderReady(ctx, *order); err != nil {
			s.logger.Warn("order ready notification failed", "order_id", id, "error", err)
		}
	}

	views, err := s.resolve(ctx, []models.Order{*order})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}
