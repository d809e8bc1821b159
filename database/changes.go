package database

import (
	"fmt"
	"time"

	"github.com/yeremiapane/restaurant-dashboard/models"
	"gorm.io/gorm"
)

// Tabel yang dipantau ChangeMonitor
const (
	TableOrders        = "orders"
	TableKitchenTokens = "kitchen_tokens"
	TableBills         = "bills"
)

// AutoMigrate membuat semua tabel yang dibutuhkan server
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.Order{},
		&models.KitchenToken{},
		&models.Bill{},
		&models.DBChange{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

// RecordChange menulis satu baris change log. Panggil di dalam transaksi yang sama
// dengan perubahan datanya supaya keduanya commit bersama.
func RecordChange(tx *gorm.DB, table string, recordID uint, action string) error {
	change := models.DBChange{
		TableName:  table,
		RecordID:   int64(recordID),
		ActionType: action,
		ChangedAt:  time.Now(),
	}
	if err := tx.Create(&change).Error; err != nil {
		return fmt.Errorf("record %s %s change: %w", table, action, err)
	}
	return nil
}
