package database

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/restaurant-dashboard/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, AutoMigrate(db))
	return db
}

func TestRecordChangeCommitsWithTransaction(t *testing.T) {
	db := setupTestDB(t)

	err := db.Transaction(func(tx *gorm.DB) error {
		return RecordChange(tx, TableOrders, 7, models.ActionInsert)
	})
	require.NoError(t, err)

	var changes []models.DBChange
	require.NoError(t, db.Find(&changes).Error)
	require.Len(t, changes, 1)
	assert.Equal(t, TableOrders, changes[0].TableName)
	assert.Equal(t, int64(7), changes[0].RecordID)
	assert.Equal(t, models.ActionInsert, changes[0].ActionType)
	assert.False(t, changes[0].Processed)
}

func TestRecordChangeRollsBack(t *testing.T) {
	db := setupTestDB(t)

	_ = db.Transaction(func(tx *gorm.DB) error {
		require.NoError(t, RecordChange(tx, TableBills, 1, models.ActionUpdate))
		return gorm.ErrInvalidTransaction
	})

	var count int64
	db.Model(&models.DBChange{}).Count(&count)
	assert.Zero(t, count)
}
