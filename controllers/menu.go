package controllers

import (
	"log/slog"
	"net/http"

	"tableorder-backend/models"
	"tableorder-backend/services"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// CreateMenuItemInput carries the image as a reference; uploads happen
// elsewhere.
type CreateMenuItemInput struct {
	Name            string          `json:"name" binding:"required"`
	Description     string          `json:"description"`
	Price           decimal.Decimal `json:"price"`
	Category        models.Category `json:"category" binding:"required"`
	Image           string          `json:"image"`
	Available       *bool           `json:"available"`
	PreparationTime *int            `json:"preparationTime"`
}

type UpdateMenuItemInput struct {
	Name            *string          `json:"name"`
	Description     *string          `json:"description"`
	Price           *decimal.Decimal `json:"price"`
	Category        *models.Category `json:"category"`
	Image           *string          `json:"image"`
	Available       *bool            `json:"available"`
	PreparationTime *int             `json:"preparationTime"`
}

type MenuController struct {
	menu   *services.MenuService
	logger *slog.Logger
}

func NewMenuController(menu *services.MenuService, logger *slog.Logger) *MenuController {
	return &MenuController{menu: menu, logger: logger}
}

// GetMenu lists available items, optionally narrowed by ?category=.
func (mc *MenuController) GetMenu(c *gin.Context) {
	items, err := mc.menu.ListAvailable(c.Request.Context(), c.Query("category"))
	if err != nil {
		respondWithServiceError(c, mc.logger, err, "Error fetching menu items")
		return
	}
	c.JSON(http.StatusOK, items)
}

// GetAllMenuItems is the manager listing, unavailable items included.
func (mc *MenuController) GetAllMenuItems(c *gin.Context) {
	items, err := mc.menu.ListAll(c.Request.Context(), c.Query("category"))
	if err != nil {
		respondWithServiceError(c, mc.logger, err, "Error fetching menu items")
		return
	}
	c.JSON(http.StatusOK, items)
}

func (mc *MenuController) GetMenuItem(c *gin.Context) {
	id, ok := uuidParam(c, "id", "menu item")
	if !ok {
		return
	}
	item, err := mc.menu.GetMenuItem(c.Request.Context(), id)
	if err != nil {
		respondWithServiceError(c, mc.logger, err, "Error fetching menu item")
		return
	}
	c.JSON(http.StatusOK, item)
}

func (mc *MenuController) CreateMenuItem(c *gin.Context) {
	var input CreateMenuItemInput
	if !bindJSON(c, &input) {
		return
	}

	item, err := mc.menu.CreateMenuItem(c.Request.Context(), services.MenuItemInput{
		Name:            input.Name,
		Description:     input.Description,
		Price:           input.Price,
		Category:        input.Category,
		Available:       input.Available,
		PreparationTime: input.PreparationTime,
	}, input.Image)
	if err != nil {
		respondWithServiceError(c, mc.logger, err, "Error creating menu item")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":  "Menu item created successfully",
		"menuItem": item,
	})
}

func (mc *MenuController) UpdateMenuItem(c *gin.Context) {
	id, ok := uuidParam(c, "id", "menu item")
	if !ok {
		return
	}
	var input UpdateMenuItemInput
	if !bindJSON(c, &input) {
		return
	}

	item, err := mc.menu.UpdateMenuItem(c.Request.Context(), id, services.MenuItemPatch{
		Name:            input.Name,
		Description:     input.Description,
		Price:           input.Price,
		Category:        input.Category,
		Image:           input.Image,
		Available:       input.Available,
		PreparationTime: input.PreparationTime,
	})
	if err != nil {
		respondWithServiceError(c, mc.logger, err, "Error updating menu item")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "Menu item updated successfully",
		"menuItem": item,
	})
}

func (mc *MenuController) DeleteMenuItem(c *gin.Context) {
	id, ok := uuidParam(c, "id", "menu item")
	if !ok {
		return
	}
	if err := mc.menu.DeleteMenuItem(c.Request.Context(), id); err != nil {
		respondWithServiceError(c, mc.logger, err, "Error deleting menu item")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Menu item deleted successfully"})
}

func (mc *MenuController) ToggleAvailability(c *gin.Context) {
	id, ok := uuidParam(c, "id", "menu item")
	if !ok {
		return
	}
	item, err := mc.menu.ToggleAvailability(c.Request.Context(), id)
	if err != nil {
		respondWithServiceError(c, mc.logger, err, "Error updating availability")
		return
	}

	state := "disabled"
	if item.Available {
		state = "enabled"
	}
	c.JSON(http.StatusOK, gin.H{
		"message":  "Menu item " + state + " successfully",
		"menuItem": item,
	})
}
