package viewmodel

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeremiapane/restaurant-dashboard/models"
)

var base = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func strPtr(s string) *string { return &s }

var fixtureSources = []models.OrderSource{
	models.SourceManual, models.SourcePhone, models.SourceWhatsApp, models.SourceZomato,
	models.SourceSwiggy, models.SourceAI, models.SourceSimulator,
}

// fixture builds n orders cycling through every status and source.
func fixture(n int) models.Snapshot {
	var snap models.Snapshot
	for i := 1; i <= n; i++ {
		o := models.Order{
			ID:          uint(i),
			OrderNumber: fmt.Sprintf("ORD-%04d", i),
			Status:      models.StatusFlow[i%len(models.StatusFlow)],
			OrderSource: fixtureSources[i%len(fixtureSources)],
			TotalAmount: float64((i * 37) % 500),
			CreatedAt:   base.Add(time.Duration(i) * time.Minute),
			UpdatedAt:   base.Add(time.Duration((i*7)%100) * time.Minute),
		}
		if i%4 != 0 {
			o.TableNumber = strPtr(fmt.Sprintf("T%d", i%10))
		}
		if i%3 == 0 {
			o.CustomerName = strPtr(fmt.Sprintf("Guest %d", i))
		}
		snap.Orders = append(snap.Orders, o)
		if o.Status.IsKitchenRelevant() {
			snap.KitchenTokens = append(snap.KitchenTokens, models.KitchenToken{ID: uint(i), OrderID: o.ID, TokenNumber: models.GenerateTokenNumber(o.ID)})
		}
		if o.Status.IsBillable() {
			snap.Bills = append(snap.Bills, models.Bill{ID: uint(i), OrderID: o.ID, Total: o.TotalAmount})
		}
	}
	return snap
}

func ids(rows []Row) []uint {
	out := make([]uint, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.Order.ID)
	}
	return out
}

func TestProjectIsIdempotent(t *testing.T) {
	snap := fixture(100)
	cfg := DefaultConfig()
	cfg.StatusBucket = BucketActive
	cfg.PageNumber = 2

	first := Project(snap, cfg)
	second := Project(snap, cfg)

	assert.Equal(t, first, second)
	assert.Equal(t, 2, first.PageNumber)
}

func TestProjectIgnoresInputOrder(t *testing.T) {
	snap := fixture(40)
	reversed := snap
	reversed.Orders = make([]models.Order, len(snap.Orders))
	for i, o := range snap.Orders {
		reversed.Orders[len(snap.Orders)-1-i] = o
	}

	for _, key := range []SortKey{SortStatus, SortNewest, SortOldest, SortTable, SortAmount} {
		cfg := DefaultConfig()
		cfg.SortKey = key
		cfg.PageSize = 100
		assert.Equal(t, ids(Project(snap, cfg).Rows), ids(Project(reversed, cfg).Rows), string(key))
	}
}

func TestFiltersCommute(t *testing.T) {
	rows := Join(fixture(100))

	bucketOnly := Config{StatusBucket: BucketActive, SourceFilter: SourceAll}
	sourceOnly := Config{StatusBucket: BucketAll, SourceFilter: string(models.SourceZomato)}
	both := Config{StatusBucket: BucketActive, SourceFilter: string(models.SourceZomato)}

	bucketThenSource := Filter(Filter(rows, bucketOnly), sourceOnly)
	sourceThenBucket := Filter(Filter(rows, sourceOnly), bucketOnly)
	combined := Filter(rows, both)

	assert.Equal(t, ids(combined), ids(bucketThenSource))
	assert.Equal(t, ids(combined), ids(sourceThenBucket))

	var want []uint
	for _, r := range rows {
		if r.Order.Status.IsActive() && r.Order.OrderSource == models.SourceZomato {
			want = append(want, r.Order.ID)
		}
	}
	require.NotEmpty(t, want)
	assert.Equal(t, want, ids(combined))
}

func TestBucketFilter(t *testing.T) {
	rows := Join(fixture(12))

	for _, r := range Filter(rows, Config{StatusBucket: BucketActive}) {
		assert.Contains(t, []models.OrderStatus{models.StatusPending, models.StatusPreparing, models.StatusReady}, r.Order.Status)
	}
	for _, r := range Filter(rows, Config{StatusBucket: BucketCompleted}) {
		assert.Contains(t, []models.OrderStatus{models.StatusCompleted, models.StatusDelivered, models.StatusBilled}, r.Order.Status)
	}
	assert.Len(t, Filter(rows, Config{StatusBucket: BucketAll}), 12)
}

func TestSearchFilter(t *testing.T) {
	snap := models.Snapshot{Orders: []models.Order{
		{ID: 1, OrderNumber: "ORD-0001", TableNumber: strPtr("Patio-3")},
		{ID: 2, OrderNumber: "ORD-0002", CustomerName: strPtr("Budi Santoso")},
		{ID: 3, OrderNumber: "WEB-7781"},
	}}
	rows := Join(snap)

	tests := []struct {
		search string
		want   []uint
	}{
		{"", []uint{1, 2, 3}},
		{"   ", []uint{}},
		{" santoso", []uint{2}},
		{" budi", []uint{}},
		{"ord-", []uint{1, 2}},
		{"PATIO", []uint{1}},
		{"santoso", []uint{2}},
		{"7781", []uint{3}},
		{"nobody", []uint{}},
	}

	for _, tt := range tests {
		t.Run(tt.search, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(Filter(rows, Config{SearchText: tt.search})))
		})
	}
}

func TestStatusSortBreaksTiesByUpdatedAt(t *testing.T) {
	a := models.Order{ID: 1, Status: models.StatusPreparing, UpdatedAt: base}
	b := models.Order{ID: 2, Status: models.StatusPreparing, UpdatedAt: base.Add(time.Second)}
	p := models.Order{ID: 3, Status: models.StatusPending, UpdatedAt: base.Add(-time.Hour)}

	rows := Join(models.Snapshot{Orders: []models.Order{a, b, p}})
	Sort(rows, SortStatus)

	assert.Equal(t, []uint{3, 2, 1}, ids(rows))
}

func TestSortKeys(t *testing.T) {
	snap := models.Snapshot{Orders: []models.Order{
		{ID: 1, TableNumber: strPtr("B2"), TotalAmount: 50, CreatedAt: base.Add(2 * time.Minute)},
		{ID: 2, TotalAmount: 150, CreatedAt: base},
		{ID: 3, TableNumber: strPtr("A1"), TotalAmount: 75, CreatedAt: base.Add(time.Minute)},
		{ID: 4, TableNumber: strPtr(""), TotalAmount: 75, CreatedAt: base.Add(3 * time.Minute)},
	}}

	tests := []struct {
		key  SortKey
		want []uint
	}{
		{SortNewest, []uint{4, 1, 3, 2}},
		{SortOldest, []uint{2, 3, 1, 4}},
		{SortTable, []uint{3, 1, 2, 4}},
		{SortAmount, []uint{2, 3, 4, 1}},
	}

	for _, tt := range tests {
		t.Run(string(tt.key), func(t *testing.T) {
			rows := Join(snap)
			Sort(rows, tt.key)
			assert.Equal(t, tt.want, ids(rows))
		})
	}
}

func TestJoinAttachesTokenAndBill(t *testing.T) {
	snap := models.Snapshot{
		Orders:        []models.Order{{ID: 1}, {ID: 2}},
		KitchenTokens: []models.KitchenToken{{ID: 10, OrderID: 2, TokenNumber: "KT-0002"}},
		Bills:         []models.Bill{{ID: 20, OrderID: 1, BillNumber: "BILL-1"}, {ID: 21, OrderID: 99}},
	}

	rows := Join(snap)
	require.Len(t, rows, 2)
	assert.Nil(t, rows[0].KitchenToken)
	require.NotNil(t, rows[0].Bill)
	assert.Equal(t, "BILL-1", rows[0].Bill.BillNumber)
	require.NotNil(t, rows[1].KitchenToken)
	assert.Equal(t, "KT-0002", rows[1].KitchenToken.TokenNumber)
	assert.Nil(t, rows[1].Bill)
}

func TestPagination(t *testing.T) {
	snap := fixture(25)
	cfg := DefaultConfig()
	cfg.SortKey = SortOldest

	cfg.PageNumber = 3
	page := Project(snap, cfg)
	assert.Equal(t, 25, page.Total)
	assert.Equal(t, 3, page.TotalPages)
	assert.Equal(t, []uint{25}, ids(page.Rows))

	cfg.PageNumber = 9
	page = Project(snap, cfg)
	assert.Equal(t, 3, page.PageNumber)

	cfg.PageNumber = 1
	page = Project(snap, cfg)
	assert.Len(t, page.Rows, 12)
	assert.Equal(t, uint(1), page.Rows[0].Order.ID)
}

func TestClampPage(t *testing.T) {
	assert.Equal(t, 1, ClampPage(3, 10, 12))
	assert.Equal(t, 1, ClampPage(0, 10, 12))
	assert.Equal(t, 1, ClampPage(5, 0, 12))
	assert.Equal(t, 2, ClampPage(2, 13, 12))
	assert.Equal(t, 3, ClampPage(7, 25, 12))
}

func TestRowDerivedValues(t *testing.T) {
	row := Row{Order: models.Order{Status: models.StatusReady, UpdatedAt: base}}
	assert.Equal(t, 50, row.Progress())
	assert.Equal(t, "5 minutes ago", row.TimeInStatus(base.Add(5*time.Minute)))
	assert.Equal(t, "1 hour ago", row.TimeInStatus(base.Add(time.Hour)))
}
