package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/restaurant-dashboard/services"
	"github.com/yeremiapane/restaurant-dashboard/utils"
)

type BillController struct {
	Orders *services.OrderService
}

func NewBillController(orders *services.OrderService) *BillController {
	return &BillController{Orders: orders}
}

func (bc *BillController) GetAllBills(c *gin.Context) {
	bills, err := bc.Orders.ListBills()
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of bills", bills)
}

// PayBill -> tandai bill lunas, order ikut jadi billed
func (bc *BillController) PayBill(c *gin.Context) {
	id, err := paramID(c, "bill_id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	bill, err := bc.Orders.PayBill(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Bill paid", bill)
}
