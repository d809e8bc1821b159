package models

import (
	"fmt"
	"time"
)

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
)

// Bill dibuat sekali ketika order mencapai status yang bisa ditagih
type Bill struct {
	ID            uint          `gorm:"primaryKey" json:"id"`
	BillNumber    string        `gorm:"type:varchar(50);uniqueIndex;not null" json:"bill_number"`
	OrderID       uint          `gorm:"not null;uniqueIndex" json:"order_id"`
	Total         float64       `gorm:"type:decimal(12,2);not null" json:"total"`
	PaymentStatus PaymentStatus `gorm:"type:varchar(20);not null;default:'pending'" json:"payment_status"`
	CreatedAt     time.Time     `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time     `gorm:"not null" json:"updated_at"`
}

func GenerateBillNumber(orderID uint, at time.Time) string {
	return fmt.Sprintf("BILL-%s-%04d", at.Format("20060102"), orderID)
}
