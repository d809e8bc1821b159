package models

import (
	"fmt"
	"time"
)

// KitchenToken -> tiket dapur untuk satu order (maksimal satu token aktif per order)
type KitchenToken struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	TokenNumber string      `gorm:"type:varchar(50);uniqueIndex;not null" json:"token_number"`
	OrderID     uint        `gorm:"not null;uniqueIndex" json:"order_id"`
	Status      OrderStatus `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	CreatedAt   time.Time   `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time   `gorm:"not null" json:"updated_at"`
}

func GenerateTokenNumber(orderID uint) string {
	return fmt.Sprintf("KT-%04d", orderID)
}
