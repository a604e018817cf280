package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tableorder-backend/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore persists to a relational database through gorm. The *gorm.DB
// must be opened with TranslateError enabled so duplicate keys surface as
// gorm.ErrDuplicatedKey.
type GormStore struct {
	db   *gorm.DB
	inTx bool
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// Migrate creates or updates the tables.
func (s *GormStore) Migrate() error {
	return s.db.AutoMigrate(
		&models.MenuItem{},
		&models.Order{},
		&models.OrderItem{},
		&models.Manager{},
	)
}

func (s *GormStore) Menu() MenuRepository { return gormMenu{s} }
func (s *GormStore) Orders() OrderRepository { return gormOrders{s} }
func (s *GormStore) Managers() ManagerRepository { return gormManagers{s} }

func (s *GormStore) WithTx(ctx context.Context, fn func(ctx context.Context, tx Store) error) error {
	if s.inTx {
		return fn(ctx, s)
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, &GormStore{db: tx, inTx: true})
	})
}

func (s *GormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *GormStore) Close(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// lock adds a row lock when running inside a transaction.
func (s *GormStore) lock(db *gorm.DB, strength string) *gorm.DB {
	if !s.inTx {
		return db
	}
	return db.Clauses(clause.Locking{Strength: strength})
}

func translateGormError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	default:
		return err
	}
}

type gormMenu struct{ s *GormStore }

func (r gormMenu) Create(ctx context.Context, item *models.MenuItem) error {
	return translateGormError(r.s.db.WithContext(ctx).Create(item).Error)
}

func (r gormMenu) Get(ctx context.Context, id uuid.UUID) (*models.MenuItem, error) {
	var item models.MenuItem
	db := r.s.lock(r.s.db.WithContext(ctx), "UPDATE")
	if err := db.First(&item, "id = ?", id).Error; err != nil {
		return nil, translateGormError(err)
	}
	return &item, nil
}

func (r gormMenu) GetMany(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.MenuItem, error) {
	found := make(map[uuid.UUID]models.MenuItem, len(ids))
	if len(ids) == 0 {
		return found, nil
	}
	var items []models.MenuItem
	db := r.s.lock(r.s.db.WithContext(ctx), "SHARE")
	if err := db.Where("id IN ?", ids).Find(&items).Error; err != nil {
		return nil, translateGormError(err)
	}
	for _, item := range items {
		found[item.ID] = item
	}
	return found, nil
}

func (r gormMenu) List(ctx context.Context, filter MenuFilter) ([]models.MenuItem, error) {
	db := r.s.db.WithContext(ctx)
	if filter.AvailableOnly {
		db = db.Where("available = ?", true)
	}
	if filter.Category != "" {
		db = db.Where("category = ?", filter.Category)
	}

	var items []models.MenuItem
	if err := db.Order("category ASC").Order("name ASC").Find(&items).Error; err != nil {
		return nil, translateGormError(err)
	}
	return items, nil
}

func (r gormMenu) Update(ctx context.Context, item *models.MenuItem) error {
	item.UpdatedAt = time.Now()
	result := r.s.db.WithContext(ctx).
		Model(&models.MenuItem{ID: item.ID}).
		Select("name", "description", "price", "category", "image", "available", "preparation_time", "updated_at").
		Updates(item)
	if result.Error != nil {
		return translateGormError(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r gormMenu) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.MenuItem{})
	if result.Error != nil {
		return translateGormError(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

type gormOrders struct{ s *GormStore }

func (r gormOrders) Create(ctx context.Context, order *models.Order) error {
	for i := range order.Items {
		order.Items[i].Position = i
	}
	return translateGormError(r.s.db.WithContext(ctx).Create(order).Error)
}

func preloadItems(db *gorm.DB) *gorm.DB {
	return db.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	})
}

func (r gormOrders) Get(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := preloadItems(r.s.db.WithContext(ctx)).First(&order, "id = ?", id).Error; err != nil {
		return nil, translateGormError(err)
	}
	return &order, nil
}

func (r gormOrders) List(ctx context.Context, filter OrderFilter) ([]models.Order, error) {
	db := preloadItems(r.s.db.WithContext(ctx))
	if filter.TableNumber != 0 {
		db = db.Where("table_number = ?", filter.TableNumber)
	}

	var orders []models.Order
	if err := db.Order("created_at DESC").Find(&orders).Error; err != nil {
		return nil, translateGormError(err)
	}
	return orders, nil
}

func (r gormOrders) UpdateStatus(ctx context.Context, id uuid.UUID, from, to models.OrderStatus) error {
	db := r.s.db.WithContext(ctx)
	result := db.Model(&models.Order{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]interface{}{
			"status":     to,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return translateGormError(result.Error)
	}
	if result.RowsAffected > 0 {
		return nil
	}

	var count int64
	if err := db.Model(&models.Order{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return fmt.Errorf("check order %s: %w", id, err)
	}
	if count == 0 {
		return ErrNotFound
	}
	return ErrStatusChanged
}

type gormManagers struct{ s *GormStore }

func (r gormManagers) Create(ctx context.Context, manager *models.Manager) error {
	return translateGormError(r.s.db.WithContext(ctx).Create(manager).Error)
}

func (r gormManagers) Get(ctx context.Context, id uuid.UUID) (*models.Manager, error) {
	var manager models.Manager
	if err := r.s.db.WithContext(ctx).First(&manager, "id = ?", id).Error; err != nil {
		return nil, translateGormError(err)
	}
	return &manager, nil
}

func (r gormManagers) GetByUsername(ctx context.Context, username string) (*models.Manager, error) {
	var manager models.Manager
	if err := r.s.db.WithContext(ctx).First(&manager, "username = ?", username).Error; err != nil {
		return nil, translateGormError(err)
	}
	return &manager, nil
}

func (r gormManagers) Exists(ctx context.Context, username, email string) (bool, error) {
	var count int64
	err := r.s.db.WithContext(ctx).Model(&models.Manager{}).
		Where("username = ? OR email = ?", username, email).
		Count(&count).Error
	if err != nil {
		return false, translateGormError(err)
	}
	return count > 0, nil
}

func (r gormManagers) TouchLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	result := r.s.db.WithContext(ctx).Model(&models.Manager{}).
		Where("id = ?", id).
		Update("last_login", at)
	if result.Error != nil {
		return translateGormError(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
