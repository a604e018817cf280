package controllers

import (
	"log/slog"
	"net/http"

	"tableorder-backend/models"
	"tableorder-backend/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type OrderItemInput struct {
	MenuItemID uuid.UUID `json:"menuItem"`
	Quantity   int       `json:"quantity"`
}

type CreateOrderInput struct {
	TableNumber         int              `json:"tableNumber"`
	Items               []OrderItemInput `json:"items"`
	CustomerName        string           `json:"customerName"`
	CustomerPhone       string           `json:"customerPhone"`
	SpecialInstructions string           `json:"specialInstructions"`
}

type UpdateStatusInput struct {
	Status models.OrderStatus `json:"status" binding:"required"`
}

type OrderController struct {
	orders *services.OrderService
	logger *slog.Logger
}

func NewOrderController(orders *services.OrderService, logger *slog.Logger) *OrderController {
	return &OrderController{orders: orders, logger: logger}
}

func (oc *OrderController) CreateOrder(c *gin.Context) {
	var input CreateOrderInput
	if !bindJSON(c, &input) {
		return
	}

	items := make([]services.LineItemInput, 0, len(input.Items))
	for _, item := range input.Items {
		items = append(items, services.LineItemInput{MenuItemID: item.MenuItemID, Quantity: item.Quantity})
	}
	order, err := oc.orders.CreateOrder(c.Request.Context(), services.CreateOrderInput{
		TableNumber:         input.TableNumber,
		Items:               items,
		CustomerName:        input.CustomerName,
		CustomerPhone:       input.CustomerPhone,
		SpecialInstructions: input.SpecialInstructions,
	})
	if err != nil {
		respondWithServiceError(c, oc.logger, err, "Error creating order")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Order placed successfully",
		"order":   order,
	})
}

// GetOrders feeds the kitchen board, newest first.
func (oc *OrderController) GetOrders(c *gin.Context) {
	orders, err := oc.orders.ListOrders(c.Request.Context())
	if err != nil {
		respondWithServiceError(c, oc.logger, err, "Error fetching orders")
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (oc *OrderController) GetOrder(c *gin.Context) {
	id, ok := uuidParam(c, "orderId", "order")
	if !ok {
		return
	}
	order, err := oc.orders.GetOrder(c.Request.Context(), id)
	if err != nil {
		respondWithServiceError(c, oc.logger, err, "Error fetching order")
		return
	}
	c.JSON(http.StatusOK, order)
}

func (oc *OrderController) GetOrdersByTable(c *gin.Context) {
	table, ok := intParam(c, "tableNumber")
	if !ok {
		return
	}
	orders, err := oc.orders.GetOrdersByTable(c.Request.Context(), table)
	if err != nil {
		respondWithServiceError(c, oc.logger, err, "Error fetching orders")
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (oc *OrderController) UpdateOrderStatus(c *gin.Context) {
	id, ok := uuidParam(c, "orderId", "order")
	if !ok {
		return
	}
	var input UpdateStatusInput
	if !bindJSON(c, &input) {
		return
	}

	order, err := oc.orders.UpdateStatus(c.Request.Context(), id, input.Status)
	if err != nil {
		respondWithServiceError(c, oc.logger, err, "Error updating order status")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Order status updated successfully",
		"order":   order,
	})
}
