package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"tableorder-backend/models"

	"github.com/google/uuid"
)

// MemoryStore keeps everything in process. WithTx serialises transactions
// against each other only; a write made outside WithTx can interleave with
// one. Writes made before fn fails are not rolled back.
type MemoryStore struct {
	txMu sync.Mutex

	mu       sync.RWMutex
	menu     map[uuid.UUID]models.MenuItem
	orders   map[uuid.UUID]models.Order
	orderIDs []uuid.UUID // insertion order
	managers map[uuid.UUID]models.Manager

	now func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		menu:     make(map[uuid.UUID]models.MenuItem),
		orders:   make(map[uuid.UUID]models.Order),
		managers: make(map[uuid.UUID]models.Manager),
		now:      time.Now,
	}
}

func (s *MemoryStore) Menu() MenuRepository { return memoryMenu{s} }
func (s *MemoryStore) Orders() OrderRepository { return memoryOrders{s} }
func (s *MemoryStore) Managers() ManagerRepository { return memoryManagers{s} }
func (s *MemoryStore) Ping(ctx context.Context) error { return ctx.Err() }
func (s *MemoryStore) Close(ctx context.Context) error { return nil }

func (s *MemoryStore) WithTx(ctx context.Context, fn func(ctx context.Context, tx Store) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(ctx, s)
}

type memoryMenu struct{ s *MemoryStore }

func (r memoryMenu) Create(ctx context.Context, item *models.MenuItem) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	if _, ok := r.s.menu[item.ID]; ok {
		return ErrDuplicate
	}
	now := r.s.now()
	item.CreatedAt, item.UpdatedAt = now, now
	r.s.menu[item.ID] = *item
	return nil
}

func (r memoryMenu) Get(ctx context.Context, id uuid.UUID) (*models.MenuItem, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	item, ok := r.s.menu[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &item, nil
}

func (r memoryMenu) GetMany(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.MenuItem, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	found := make(map[uuid.UUID]models.MenuItem, len(ids))
	for _, id := range ids {
		if item, ok := r.s.menu[id]; ok {
			found[id] = item
		}
	}
	return found, nil
}

func (r memoryMenu) List(ctx context.Context, filter MenuFilter) ([]models.MenuItem, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	items := make([]models.MenuItem, 0, len(r.s.menu))
	for _, item := range r.s.menu {
		if filter.AvailableOnly && !item.Available {
			continue
		}
		if filter.Category != "" && item.Category != filter.Category {
			continue
		}
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Category != items[j].Category {
			return items[i].Category < items[j].Category
		}
		return strings.Compare(items[i].Name, items[j].Name) < 0
	})
	return items, nil
}

func (r memoryMenu) Update(ctx context.Context, item *models.MenuItem) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.menu[item.ID]
	if !ok {
		return ErrNotFound
	}
	item.CreatedAt = existing.CreatedAt
	item.UpdatedAt = r.s.now()
	r.s.menu[item.ID] = *item
	return nil
}

func (r memoryMenu) Delete(ctx context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.menu[id]; !ok {
		return ErrNotFound
	}
	delete(r.s.menu, id)
	return nil
}

type memoryOrders struct{ s *MemoryStore }

func cloneOrder(o models.Order) models.Order {
	o.Items = append([]models.OrderItem(nil), o.Items...)
	return o
}

func (r memoryOrders) Create(ctx context.Context, order *models.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	if _, ok := r.s.orders[order.ID]; ok {
		return ErrDuplicate
	}
	for i := range order.Items {
		order.Items[i].OrderID = order.ID
		order.Items[i].Position = i
		if order.Items[i].ID == uuid.Nil {
			order.Items[i].ID = uuid.New()
		}
	}
	now := r.s.now()
	if order.CreatedAt.IsZero() {
		order.CreatedAt = now
	}
	order.UpdatedAt = now
	r.s.orders[order.ID] = cloneOrder(*order)
	r.s.orderIDs = append(r.s.orderIDs, order.ID)
	return nil
}

func (r memoryOrders) Get(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	order, ok := r.s.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	order = cloneOrder(order)
	return &order, nil
}

func (r memoryOrders) List(ctx context.Context, filter OrderFilter) ([]models.Order, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	orders := make([]models.Order, 0, len(r.s.orderIDs))
	for i := len(r.s.orderIDs) - 1; i >= 0; i-- {
		order := r.s.orders[r.s.orderIDs[i]]
		if filter.TableNumber != 0 && order.TableNumber != filter.TableNumber {
			continue
		}
		orders = append(orders, cloneOrder(order))
	}
	sort.SliceStable(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
	return orders, nil
}

func (r memoryOrders) UpdateStatus(ctx context.Context, id uuid.UUID, from, to models.OrderStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	order, ok := r.s.orders[id]
	if !ok {
		return ErrNotFound
	}
	if order.Status != from {
		return ErrStatusChanged
	}
	order.Status = to
	order.UpdatedAt = r.s.now()
	r.s.orders[id] = order
	return nil
}

type memoryManagers struct{ s *MemoryStore }

func (r memoryManagers) Create(ctx context.Context, manager *models.Manager) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.managers {
		if existing.Username == manager.Username || existing.Email == manager.Email {
			return ErrDuplicate
		}
	}
	if manager.ID == uuid.Nil {
		manager.ID = uuid.New()
	}
	now := r.s.now()
	manager.CreatedAt, manager.UpdatedAt = now, now
	r.s.managers[manager.ID] = *manager
	return nil
}

func (r memoryManagers) Get(ctx context.Context, id uuid.UUID) (*models.Manager, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	manager, ok := r.s.managers[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &manager, nil
}

func (r memoryManagers) GetByUsername(ctx context.Context, username string) (*models.Manager, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, manager := range r.s.managers {
		if manager.Username == username {
			return &manager, nil
		}
	}
	return nil, ErrNotFound
}

func (r memoryManagers) Exists(ctx context.Context, username, email string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, manager := range r.s.managers {
		if manager.Username == username || manager.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (r memoryManagers) TouchLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	manager, ok := r.s.managers[id]
	if !ok {
		return ErrNotFound
	}
	manager.LastLogin = &at
	r.s.managers[id] = manager
	return nil
}
