// Package store persists menu items, orders and managers. Three backends
// share one contract: postgres through gorm, MongoDB, and an in-memory
// store used by tests and local runs.
package store

import (
	"context"
	"errors"
	"time"

	"tableorder-backend/models"

	"github.com/google/uuid"
)

var (
	ErrNotFound      = errors.New("store: record not found")
	ErrDuplicate     = errors.New("store: duplicate key")
	ErrStatusChanged = errors.New("store: order status changed concurrently")
)

// MenuFilter narrows a menu listing. Zero values match everything.
type MenuFilter struct {
	Category      models.Category
	AvailableOnly bool
}

// OrderFilter narrows an order listing. TableNumber 0 matches all tables.
type OrderFilter struct {
	TableNumber int
}

type MenuRepository interface {
	Create(ctx context.Context, item *models.MenuItem) error
	Get(ctx context.Context, id uuid.UUID) (*models.MenuItem, error)
	// GetMany returns the items that exist; missing ids are simply absent.
	GetMany(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.MenuItem, error)
	// List sorts by category then name.
	List(ctx context.Context, filter MenuFilter) ([]models.MenuItem, error)
	Update(ctx context.Context, item *models.MenuItem) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type OrderRepository interface {
	Create(ctx context.Context, order *models.Order) error
	Get(ctx context.Context, id uuid.UUID) (*models.Order, error)
	// List returns orders newest first.
	List(ctx context.Context, filter OrderFilter) ([]models.Order, error)
	// UpdateStatus moves the order to status `to` only if it is currently
	// `from`. It returns ErrStatusChanged when the order holds another status.
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to models.OrderStatus) error
}

type ManagerRepository interface {
	// Create returns ErrDuplicate when the username or email is taken.
	Create(ctx context.Context, manager *models.Manager) error
	Get(ctx context.Context, id uuid.UUID) (*models.Manager, error)
	GetByUsername(ctx context.Context, username string) (*models.Manager, error)
	Exists(ctx context.Context, username, email string) (bool, error)
	TouchLogin(ctx context.Context, id uuid.UUID, at time.Time) error
}

type Store interface {
	Menu() MenuRepository
	Orders() OrderRepository
	Managers() ManagerRepository
	// WithTx runs fn atomically. Repositories reached through tx must be
	// called with the ctx handed to fn.
	WithTx(ctx context.Context, fn func(ctx context.Context, tx Store) error) error
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}
