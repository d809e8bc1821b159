package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/restaurant-dashboard/models"
	"github.com/yeremiapane/restaurant-dashboard/services"
	"github.com/yeremiapane/restaurant-dashboard/utils"
)

type OrderController struct {
	Orders *services.OrderService
}

func NewOrderController(orders *services.OrderService) *OrderController {
	return &OrderController{Orders: orders}
}

// GetAllOrders -> list semua order
func (oc *OrderController) GetAllOrders(c *gin.Context) {
	orders, err := oc.Orders.ListOrders()
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of orders", orders)
}

// GetOrderByID -> detail satu order
func (oc *OrderController) GetOrderByID(c *gin.Context) {
	id, err := paramID(c, "order_id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	order, err := oc.Orders.GetOrder(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order detail", order)
}

// CreateOrder -> buat order baru (status pending)
func (oc *OrderController) CreateOrder(c *gin.Context) {
	var body services.CreateOrderInput
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	order, err := oc.Orders.CreateOrder(body)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Order created", order)
}

// UpdateOrderStatus -> PATCH /api/orders/:order_id/status {"status":"preparing"}
func (oc *OrderController) UpdateOrderStatus(c *gin.Context) {
	id, err := paramID(c, "order_id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var body struct {
		Status models.OrderStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	order, err := oc.Orders.AdvanceStatus(id, body.Status)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order status updated", order)
}

func paramID(c *gin.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid %s %q", name, c.Param(name))
	}
	return uint(id), nil
}

// respondServiceError memetakan error service ke status HTTP
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		utils.RespondError(c, http.StatusNotFound, err)
	case errors.Is(err, services.ErrInvalidStatus),
		errors.Is(err, services.ErrInvalidSource),
		errors.Is(err, services.ErrInvalidAmount):
		utils.RespondError(c, http.StatusBadRequest, err)
	case errors.Is(err, services.ErrStatusRegression),
		errors.Is(err, services.ErrBillAlreadyPaid):
		utils.RespondError(c, http.StatusConflict, err)
	default:
		utils.ErrorLogger.WithError(err).Error("request failed")
		utils.RespondError(c, http.StatusInternalServerError, errors.New("internal server error"))
	}
}
