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
	"github.com/shopspring/decimal"
)

// MenuItemInput holds the fields of a new menu item. The image reference is
// passed separately since it comes from upload handling.
type MenuItemInput struct {
	Name            string
	Description     string
	Price           decimal.Decimal
	Category        models.Category
	PreparationTime *int
	Available       *bool
}

// MenuItemPatch holds the fields to change; nil means keep.
type MenuItemPatch struct {
	Name            *string
	Description     *string
	Price           *decimal.Decimal
	Category        *models.Category
	Image           *string
	Available       *bool
	PreparationTime *int
}

type MenuService struct {
	store  store.Store
	logger *slog.Logger
}

func NewMenuService(s store.Store, logger *slog.Logger) *MenuService {
	return &MenuService{store: s, logger: logger.With("component", "menu_service")}
}

// maxPrice is the first value a decimal(10,2) column cannot hold.
var maxPrice = decimal.New(1, 8)

// validateMenuItem checks the tagged fields, then the price. Prices are
// limited to whole cents so stored lines always add up to the order total.
func validateMenuItem(item *models.MenuItem) error {
	if err := checkStruct(item); err != nil {
		return err
	}
	switch {
	case !item.Price.IsPositive():
		return validationError("price must be a positive number")
	case !item.Price.Equal(item.Price.Round(2)):
		return validationError("price must not have more than 2 decimal places")
	case item.Price.GreaterThanOrEqual(maxPrice):
		return validationError("price must be less than %s", maxPrice)
	}
	return nil
}

func joinCategories() string {
	names := make([]string, 0, len(models.Categories))
	for _, c := range models.Categories {
		names = append(names, string(c))
	}
	return strings.Join(names, ", ")
}

func (s *MenuService) CreateMenuItem(ctx context.Context, in MenuItemInput, imageRef string) (*models.MenuItem, error) {
	item := &models.MenuItem{
		ID:              uuid.New(),
		Name:            strings.TrimSpace(in.Name),
		Description:     strings.TrimSpace(in.Description),
		Price:           in.Price,
		Category:        in.Category,
		Image:           strings.TrimSpace(imageRef),
		Available:       true,
		PreparationTime: models.DefaultPreparationTime,
	}
	if in.Available != nil {
		item.Available = *in.Available
	}
	if in.PreparationTime != nil {
		item.PreparationTime = *in.PreparationTime
	}
	if err := validateMenuItem(item); err != nil {
		return nil, err
	}

	if err := s.store.Menu().Create(ctx, item); err != nil {
		return nil, fmt.Errorf("create menu item: %w", err)
	}
	s.logger.Info("menu item created", "id", item.ID, "name", item.Name, "category", item.Category)
	return item, nil
}

func (s *MenuService) GetMenuItem(ctx context.Context, id uuid.UUID) (*models.MenuItem, error) {
	item, err := s.store.Menu().Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, notFoundError("Menu item not found")
	}
	if err != nil {
		return nil, fmt.Errorf("get menu item %s: %w", id, err)
	}
	return item, nil
}

func (s *MenuService) UpdateMenuItem(ctx context.Context, id uuid.UUID, patch MenuItemPatch) (*models.MenuItem, error) {
	var updated *models.MenuItem
	err := s.store.WithTx(ctx, func(ctx context.Context, tx store.Store) error {
		item, err := tx.Menu().Get(ctx, id)
		if errors.Is(err, store.ErrNotFound) {
			return notFoundError("Menu item not found")
		}
		if err != nil {
			return fmt.Errorf("get menu item %s: %w", id, err)
		}

		if patch.Name != nil {
			item.Name = strings.TrimSpace(*patch.Name)
		}
		if patch.Description != nil {
			item.Description = strings.TrimSpace(*patch.Description)
		}
		if patch.Price != nil {
			item.Price = *patch.Price
		}
		if patch.Category != nil {
			item.Category = *patch.Category
		}
		if patch.Image != nil {
			item.Image = strings.TrimSpace(*patch.Image)
		}
		if patch.Available != nil {
			item.Available = *patch.Available
		}
		if patch.PreparationTime != nil {
			item.PreparationTime = *patch.PreparationTime
		}
		if err := validateMenuItem(item); err != nil {
			return err
		}

		if err := tx.Menu().Update(ctx, item); err != nil {
			return fmt.Errorf("update menu item %s: %w", id, err)
		}
		updated = item
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("menu item updated", "id", id)
	return updated, nil
}

// DeleteMenuItem removes the item. Orders that reference it keep their
// snapshot lines.
func (s *MenuService) DeleteMenuItem(ctx context.Context, id uuid.UUID) error {
	// In a transaction so the delete cannot land between the menu read
	// and the insert of a concurrent CreateOrder.
	err := s.store.WithTx(ctx, func(ctx context.Context, tx store.Store) error {
		err := tx.Menu().Delete(ctx, id)
		if errors.Is(err, store.ErrNotFound) {
			return notFoundError("Menu item not found")
		}
		if err != nil {
			return fmt.Errorf("delete menu item %s: %w", id, err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.logger.Info("menu item deleted", "id", id)
	return nil
}

func (s *MenuService) ToggleAvailability(ctx context.Context, id uuid.UUID) (*models.MenuItem, error) {
	var toggled *models.MenuItem
	err := s.store.WithTx(ctx, func(ctx context.Context, tx store.Store) error {
		item, err := tx.Menu().Get(ctx, id)
		if errors.Is(err, store.ErrNotFound) {
			return notFoundError("Menu item not found")
		}
		if err != nil {
			return fmt.Errorf("get menu item %s: %w", id, err)
		}

		item.Available = !item.Available
		if err := tx.Menu().Update(ctx, item); err != nil {
			return fmt.Errorf("update menu item %s: %w", id, err)
		}
		toggled = item
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("menu item availability toggled", "id", id, "available", toggled.Available)
	return toggled, nil
}

// ListAvailable is the customer-facing menu.
func (s *MenuService) ListAvailable(ctx context.Context, category string) ([]models.MenuItem, error) {
	return s.list(ctx, category, true)
}

// ListAll is the manager view and includes unavailable items.
func (s *MenuService) ListAll(ctx context.Context, category string) ([]models.MenuItem, error) {
	return s.list(ctx, category, false)
}

func (s *MenuService) list(ctx context.Context, category string, availableOnly bool) ([]models.MenuItem, error) {
	filter := store.MenuFilter{AvailableOnly: availableOnly}
	if category != "" {
		filter.Category = models.Category(category)
		if !filter.Category.Valid() {
			return nil, validationError("category must be one of %s", joinCategories())
		}
	}

	items, err := s.store.Menu().List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list menu items: %w", err)
	}
	return items, nil
}
