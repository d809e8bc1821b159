package models

import (
	"fmt"
	"time"
)

type Order struct {
	ID           uint        `gorm:"primaryKey" json:"id"`
	OrderNumber  string      `gorm:"type:varchar(50);uniqueIndex;not null" json:"order_number"`
	TableNumber  *string     `gorm:"type:varchar(50)" json:"table_number,omitempty"`
	CustomerName *string     `gorm:"type:varchar(100)" json:"customer_name,omitempty"`
	Status       OrderStatus `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	TotalAmount  float64     `gorm:"type:decimal(10,2);not null;default:0.00" json:"total_amount"`
	OrderSource  OrderSource `gorm:"type:varchar(20);not null;default:'manual'" json:"order_source"`
	CreatedAt    time.Time   `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time   `gorm:"not null" json:"updated_at"`
}

// GenerateOrderNumber -> nomor order yang dilihat staff, contoh ORD-20240101-0042
func GenerateOrderNumber(id uint, at time.Time) string {
	return fmt.Sprintf("ORD-%s-%04d", at.Format("20060102"), id)
}

// Table returns the table number or an empty string for takeaway/delivery orders.
func (o *Order) Table() string {
	if o.TableNumber == nil {
		return ""
	}
	return *o.TableNumber
}

// Customer returns the customer name or an empty string.
func (o *Order) Customer() string {
	if o.CustomerName == nil {
		return ""
	}
	return *o.CustomerName
}
