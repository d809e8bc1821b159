package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/restaurant-dashboard/services"
	"github.com/yeremiapane/restaurant-dashboard/utils"
)

type KitchenTokenController struct {
	Orders *services.OrderService
}

func NewKitchenTokenController(orders *services.OrderService) *KitchenTokenController {
	return &KitchenTokenController{Orders: orders}
}

func (kc *KitchenTokenController) GetAllKitchenTokens(c *gin.Context) {
	tokens, err := kc.Orders.ListKitchenTokens()
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of kitchen tokens", tokens)
}
