package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/yeremiapane/restaurant-dashboard/database"
	"github.com/yeremiapane/restaurant-dashboard/lifecycle"
	"github.com/yeremiapane/restaurant-dashboard/models"
	"gorm.io/gorm"
)

var (
	ErrNotFound         = errors.New("record not found")
	ErrInvalidStatus    = errors.New("invalid order status")
	ErrStatusRegression = errors.New("order status can only move forward")
	ErrInvalidSource    = errors.New("invalid order source")
	ErrInvalidAmount    = errors.New("total amount must not be negative")
	ErrBillAlreadyPaid  = errors.New("bill already paid")
)

// CreateOrderInput -> payload untuk membuat order baru
type CreateOrderInput struct {
	TableNumber  string             `json:"table_number"`
	CustomerName string             `json:"customer_name"`
	TotalAmount  float64            `json:"total_amount"`
	OrderSource  models.OrderSource `json:"order_source"`
}

// OrderService menangani lifecycle order, kitchen token dan bill
type OrderService struct {
	db  *gorm.DB
	now func() time.Time
}

// NewOrderService membuat instance baru OrderService
func NewOrderService(db *gorm.DB) *OrderService {
	return &OrderService{db: db, now: time.Now}
}

// ListOrders mengembalikan semua order, terbaru dulu
func (s *OrderService) ListOrders() ([]models.Order, error) {
	var orders []models.Order
	if err := s.db.Order("created_at DESC, id DESC").Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

// GetOrder mencari satu order berdasarkan ID
func (s *OrderService) GetOrder(id uint) (*models.Order, error) {
	var order models.Order
	if err := s.db.First(&order, id).Error; err != nil {
		return nil, notFound("order", id, err)
	}
	return &order, nil
}

func (s *OrderService) ListKitchenTokens() ([]models.KitchenToken, error) {
	var tokens []models.KitchenToken
	if err := s.db.Order("id ASC").Find(&tokens).Error; err != nil {
		return nil, fmt.Errorf("list kitchen tokens: %w", err)
	}
	return tokens, nil
}

func (s *OrderService) ListBills() ([]models.Bill, error) {
	var bills []models.Bill
	if err := s.db.Order("id ASC").Find(&bills).Error; err != nil {
		return nil, fmt.Errorf("list bills: %w", err)
	}
	return bills, nil
}

// CreateOrder menyimpan order baru dengan status pending
func (s *OrderService) CreateOrder(input CreateOrderInput) (*models.Order, error) {
	if input.OrderSource == "" {
		input.OrderSource = models.SourceManual
	}
	if !input.OrderSource.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSource, input.OrderSource)
	}
	if input.TotalAmount < 0 {
		return nil, ErrInvalidAmount
	}

	now := s.now()
	order := models.Order{
		// nomor sementara, diganti setelah ID diketahui
		OrderNumber:  "ORD-" + uuid.NewString(),
		TableNumber:  optional(input.TableNumber),
		CustomerName: optional(input.CustomerName),
		Status:       models.StatusPending,
		TotalAmount:  input.TotalAmount,
		OrderSource:  input.OrderSource,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&order).Error; err != nil {
			return fmt.Errorf("create order: %w", err)
		}
		order.OrderNumber = models.GenerateOrderNumber(order.ID, now)
		if err := tx.Model(&order).Update("order_number", order.OrderNumber).Error; err != nil {
			return fmt.Errorf("assign order number: %w", err)
		}
		return database.RecordChange(tx, database.TableOrders, order.ID, models.ActionInsert)
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// AdvanceStatus memindahkan order ke status berikutnya. Status tidak boleh mundur.
// Kitchen token dibuat saat order masuk dapur dan mengikuti status order selama
// masih relevan untuk dapur. Bill dibuat saat order bisa ditagih dan ditandai
// lunas ketika order billed.
func (s *OrderService) AdvanceStatus(orderID uint, next models.OrderStatus) (*models.Order, error) {
	if !next.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, next)
	}

	var order models.Order
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&order, orderID).Error; err != nil {
			return notFound("order", orderID, err)
		}
		if order.Status == next {
			return nil
		}
		if !lifecycle.IsForward(order.Status, next) {
			return fmt.Errorf("%w: %s -> %s", ErrStatusRegression, order.Status, next)
		}
		return s.moveTo(tx, &order, next)
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// PayBill menandai bill lunas dan memindahkan order-nya ke billed
func (s *OrderService) PayBill(billID uint) (*models.Bill, error) {
	var bill models.Bill
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&bill, billID).Error; err != nil {
			return notFound("bill", billID, err)
		}
		if bill.PaymentStatus == models.PaymentPaid {
			return ErrBillAlreadyPaid
		}

		var order models.Order
		if err := tx.First(&order, bill.OrderID).Error; err != nil {
			return notFound("order", bill.OrderID, err)
		}
		if order.Status != models.StatusBilled {
			if err := s.moveTo(tx, &order, models.StatusBilled); err != nil {
				return err
			}
		}
		return tx.First(&bill, billID).Error
	})
	if err != nil {
		return nil, err
	}
	return &bill, nil
}

func (s *OrderService) moveTo(tx *gorm.DB, order *models.Order, next models.OrderStatus) error {
	now := s.now()
	if err := tx.Model(order).Updates(map[string]interface{}{
		"status":     next,
		"updated_at": now,
	}).Error; err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	order.Status = next
	order.UpdatedAt = now
	if err := database.RecordChange(tx, database.TableOrders, order.ID, models.ActionUpdate); err != nil {
		return err
	}

	if lifecycle.Index(next) >= lifecycle.Index(models.StatusPreparing) {
		if err := s.syncKitchenToken(tx, order, now); err != nil {
			return err
		}
	}
	if next.IsBillable() {
		if err := s.syncBill(tx, order, now); err != nil {
			return err
		}
	}
	return nil
}

func (s *OrderService) syncKitchenToken(tx *gorm.DB, order *models.Order, now time.Time) error {
	status := order.Status
	if !status.IsKitchenRelevant() {
		// dapur selesai setelah completed
		status = models.StatusCompleted
	}

	var token models.KitchenToken
	err := tx.Where("order_id = ?", order.ID).First(&token).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		token = models.KitchenToken{
			TokenNumber: models.GenerateTokenNumber(order.ID),
			OrderID:     order.ID,
			Status:      status,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := tx.Create(&token).Error; err != nil {
			return fmt.Errorf("create kitchen token: %w", err)
		}
		return database.RecordChange(tx, database.TableKitchenTokens, token.ID, models.ActionInsert)
	case err != nil:
		return fmt.Errorf("find kitchen token: %w", err)
	}

	if token.Status == status {
		return nil
	}
	if err := tx.Model(&token).Updates(map[string]interface{}{
		"status":     status,
		"updated_at": now,
	}).Error; err != nil {
		return fmt.Errorf("update kitchen token: %w", err)
	}
	return database.RecordChange(tx, database.TableKitchenTokens, token.ID, models.ActionUpdate)
}

func (s *OrderService) syncBill(tx *gorm.DB, order *models.Order, now time.Time) error {
	paid := order.Status == models.StatusBilled

	var bill models.Bill
	err := tx.Where("order_id = ?", order.ID).First(&bill).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		bill = models.Bill{
			BillNumber:    models.GenerateBillNumber(order.ID, now),
			OrderID:       order.ID,
			Total:         order.TotalAmount,
			PaymentStatus: models.PaymentPending,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if paid {
			bill.PaymentStatus = models.PaymentPaid
		}
		if err := tx.Create(&bill).Error; err != nil {
			return fmt.Errorf("create bill: %w", err)
		}
		return database.RecordChange(tx, database.TableBills, bill.ID, models.ActionInsert)
	case err != nil:
		return fmt.Errorf("find bill: %w", err)
	}

	if !paid || bill.PaymentStatus == models.PaymentPaid {
		return nil
	}
	if err := tx.Model(&bill).Updates(map[string]interface{}{
		"payment_status": models.PaymentPaid,
		"updated_at":     now,
	}).Error; err != nil {
		return fmt.Errorf("mark bill paid: %w", err)
	}
	return database.RecordChange(tx, database.TableBills, bill.ID, models.ActionUpdate)
}

func notFound(kind string, id uint, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s %d: %w", kind, id, ErrNotFound)
	}
	return fmt.Errorf("find %s %d: %w", kind, id, err)
}

func optional(v string) *string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return &v
}
