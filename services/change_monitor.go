package services

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/restaurant-dashboard/database"
	"github.com/yeremiapane/restaurant-dashboard/kds"
	"github.com/yeremiapane/restaurant-dashboard/models"
	"gorm.io/gorm"
)

// Notifier menerima event tag yang akan disiarkan ke dashboard
type Notifier interface {
	Broadcast(event kds.EventType)
}

// batas baris change log per tick
const changeBatchSize = 100

type ChangeMonitor struct {
	DB       *gorm.DB
	Notifier Notifier
	Interval time.Duration
	Logger   logrus.FieldLogger

	stopChan chan struct{}
	stopOnce sync.Once
}

func NewChangeMonitor(db *gorm.DB, notifier Notifier) *ChangeMonitor {
	return &ChangeMonitor{
		DB:       db,
		Notifier: notifier,
		Interval: 1 * time.Second,
		Logger:   logrus.StandardLogger().WithField("component", "change_monitor"),
		stopChan: make(chan struct{}),
	}
}

func (cm *ChangeMonitor) Start() {
	go func() {
		ticker := time.NewTicker(cm.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				cm.checkChanges()
			case <-cm.stopChan:
				return
			}
		}
	}()
}

func (cm *ChangeMonitor) Stop() {
	cm.stopOnce.Do(func() { close(cm.stopChan) })
}

// EventFor maps one change log row to the event tag dashboards listen for.
func EventFor(table, action string) (kds.EventType, bool) {
	switch table + "/" + action {
	case database.TableOrders + "/" + models.ActionInsert:
		return kds.EventNewOrder, true
	case database.TableOrders + "/" + models.ActionUpdate:
		return kds.EventOrderUpdated, true
	case database.TableKitchenTokens + "/" + models.ActionInsert:
		return kds.EventNewKitchenToken, true
	case database.TableKitchenTokens + "/" + models.ActionUpdate:
		return kds.EventKitchenTokenUpdated, true
	case database.TableBills + "/" + models.ActionInsert:
		return kds.EventNewBill, true
	case database.TableBills + "/" + models.ActionUpdate:
		return kds.EventBillUpdated, true
	}
	return "", false
}

// checkChanges memproses change log yang belum diproses lalu broadcast setelah commit
func (cm *ChangeMonitor) checkChanges() int {
	var changes []models.DBChange

	// Gunakan transaction untuk mencegah race condition
	tx := cm.DB.Begin()

	if err := tx.Where("processed = ?", false).
		Order("changed_at ASC, id ASC").
		Limit(changeBatchSize).
		Find(&changes).Error; err != nil {
		tx.Rollback()
		cm.Logger.WithError(err).Error("error fetching changes")
		return 0
	}
	if len(changes) == 0 {
		tx.Rollback()
		return 0
	}

	ids := make([]uint, 0, len(changes))
	for _, change := range changes {
		ids = append(ids, change.ID)
	}
	if err := tx.Model(&models.DBChange{}).
		Where("id IN ?", ids).
		Update("processed", true).Error; err != nil {
		tx.Rollback()
		cm.Logger.WithError(err).Error("error marking changes as processed")
		return 0
	}

	if err := tx.Commit().Error; err != nil {
		cm.Logger.WithError(err).Error("error committing processed changes")
		return 0
	}

	for _, change := range changes {
		event, ok := EventFor(change.TableName, change.ActionType)
		if !ok {
			cm.Logger.WithFields(logrus.Fields{
				"table":  change.TableName,
				"action": change.ActionType,
			}).Debug("no event for change")
			continue
		}
		cm.Logger.WithFields(logrus.Fields{
			"table":     change.TableName,
			"action":    change.ActionType,
			"record_id": change.RecordID,
			"event":     event,
		}).Debug("broadcasting change")
		cm.Notifier.Broadcast(event)
	}

	cm.Logger.WithField("count", len(changes)).Info("processed changes")
	return len(changes)
}
