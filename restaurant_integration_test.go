package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/yeremiapane/restaurant-dashboard/api"
	"github.com/yeremiapane/restaurant-dashboard/dashboard"
	"github.com/yeremiapane/restaurant-dashboard/database"
	"github.com/yeremiapane/restaurant-dashboard/invalidation"
	"github.com/yeremiapane/restaurant-dashboard/kds"
	"github.com/yeremiapane/restaurant-dashboard/models"
	"github.com/yeremiapane/restaurant-dashboard/polling"
	"github.com/yeremiapane/restaurant-dashboard/realtime"
	"github.com/yeremiapane/restaurant-dashboard/router"
	"github.com/yeremiapane/restaurant-dashboard/services"
	"github.com/yeremiapane/restaurant-dashboard/utils"
	"github.com/yeremiapane/restaurant-dashboard/viewmodel"
)

func TestMain(m *testing.M) {
	utils.InitLogger("error")
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type testServer struct {
	*httptest.Server
	hub     *kds.Hub
	monitor *services.ChangeMonitor
}

// setupServer -> server lengkap di atas SQLite in-memory
func setupServer(t *testing.T) *testServer {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	// satu koneksi: satu database in-memory, transaksi berurutan
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.AutoMigrate(db))

	hub := kds.NewHub(kds.HubConfig{Logger: utils.InfoLogger})
	hub.Start()

	monitor := services.NewChangeMonitor(db, hub)
	monitor.Interval = 20 * time.Millisecond
	monitor.Logger = utils.Component("change_monitor")
	monitor.Start()

	r := router.SetupRouter(services.NewOrderService(db), hub, router.Options{})
	srv := &testServer{Server: httptest.NewServer(r), hub: hub, monitor: monitor}
	t.Cleanup(func() {
		monitor.Stop()
		hub.Stop()
		srv.Close()
	})
	return srv
}

func postJSON(t *testing.T, url string, body interface{}) map[string]interface{} {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Less(t, resp.StatusCode, 300)

	var env struct {
		Data map[string]interface{} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return env.Data
}

func patchStatus(t *testing.T, base string, orderID int, status models.OrderStatus) {
	t.Helper()
	payload, _ := json.Marshal(map[string]string{"status": string(status)})
	req, err := http.NewRequest(http.MethodPatch, fmt.Sprintf("%s/api/orders/%d/status", base, orderID), bytes.NewReader(payload))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func mountBoard(t *testing.T, base string) *dashboard.Session {
	t.Helper()
	view := viewmodel.DefaultConfig()
	view.SortKey = viewmodel.SortNewest

	session, err := dashboard.Mount(context.Background(), dashboard.Options{
		Channel: realtime.Config{BaseURL: base, ReconnectDelay: 20 * time.Millisecond},
		// polling dibuat lambat supaya update datang dari push channel
		Polling:      polling.Config{ConnectedInterval: time.Hour, DisconnectedInterval: time.Hour},
		Invalidation: invalidation.Config{CoalesceWindow: 10 * time.Millisecond},
		View:         view,
	}, api.NewClient(base, nil))
	require.NoError(t, err)
	t.Cleanup(session.Unmount)
	return session
}

// TestEndToEndLiveBoard menguji flow utama:
// 1. Board terhubung lewat push channel
// 2. Order baru muncul tanpa polling
// 3. Perubahan status, kitchen token dan bill ikut ter-join
// 4. Bayar bill -> order billed
func TestEndToEndLiveBoard(t *testing.T) {
	srv := setupServer(t)
	session := mountBoard(t, srv.URL)

	require.Eventually(t, func() bool {
		return session.Mode() == dashboard.ModeRealtime
	}, 3*time.Second, 10*time.Millisecond)

	created := postJSON(t, srv.URL+"/api/orders", map[string]interface{}{
		"table_number": "12",
		"total_amount": 64000,
		"order_source": "manual",
	})
	orderID := int(created["id"].(float64))

	require.Eventually(t, func() bool {
		page := session.Page()
		return page.Total == 1 && page.Rows[0].Order.Status == models.StatusPending
	}, 3*time.Second, 10*time.Millisecond)

	patchStatus(t, srv.URL, orderID, models.StatusPreparing)
	patchStatus(t, srv.URL, orderID, models.StatusCompleted)

	require.Eventually(t, func() bool {
		page := session.Page()
		if page.Total != 1 {
			return false
		}
		row := page.Rows[0]
		return row.Order.Status == models.StatusCompleted &&
			row.KitchenToken != nil && row.KitchenToken.Status == models.StatusCompleted &&
			row.Bill != nil && row.Bill.PaymentStatus == models.PaymentPending
	}, 3*time.Second, 10*time.Millisecond)

	billID := int(session.Page().Rows[0].Bill.ID)
	postJSON(t, fmt.Sprintf("%s/api/bills/%d/pay", srv.URL, billID), nil)

	require.Eventually(t, func() bool {
		row := session.Page().Rows[0]
		return row.Order.Status == models.StatusBilled && row.Bill.PaymentStatus == models.PaymentPaid
	}, 3*time.Second, 10*time.Millisecond)

	assert.Equal(t, 100, session.Page().Rows[0].Progress())
	require.NoError(t, session.View().SetBucket(viewmodel.BucketActive))
	assert.Equal(t, 0, session.Page().Total)
}

// TestBoardFallsBackToPolling -> push channel putus, board tetap dapat data dari polling
func TestBoardFallsBackToPolling(t *testing.T) {
	srv := setupServer(t)

	view := viewmodel.DefaultConfig()
	session, err := dashboard.Mount(context.Background(), dashboard.Options{
		Channel:      realtime.Config{BaseURL: srv.URL, ReconnectDelay: time.Hour},
		Polling:      polling.Config{ConnectedInterval: time.Hour, DisconnectedInterval: 30 * time.Millisecond},
		Invalidation: invalidation.Config{CoalesceWindow: 5 * time.Millisecond},
		View:         view,
	}, api.NewClient(srv.URL, nil))
	require.NoError(t, err)
	t.Cleanup(session.Unmount)

	require.Eventually(t, func() bool {
		return session.Mode() == dashboard.ModeRealtime
	}, 3*time.Second, 10*time.Millisecond)

	// server menutup semua client; reconnect baru dicoba satu jam lagi
	srv.hub.Stop()
	require.Eventually(t, func() bool {
		return session.Mode() == dashboard.ModePolling
	}, 3*time.Second, 10*time.Millisecond)

	postJSON(t, srv.URL+"/api/orders", map[string]interface{}{"table_number": "3"})

	require.Eventually(t, func() bool {
		return session.Page().Total == 1
	}, 3*time.Second, 10*time.Millisecond)
}
