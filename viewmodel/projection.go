// Package viewmodel derives the exact rows a dashboard screen renders from
// the raw cached collections and the screen's configuration.
package viewmodel

import (
	"sort"
	"strings"
	"time"

	"github.com/yeremiapane/restaurant-dashboard/lifecycle"
	"github.com/yeremiapane/restaurant-dashboard/models"
)

// Row is one order joined with its kitchen token and bill, if any.
type Row struct {
	Order        models.Order         `json:"order"`
	KitchenToken *models.KitchenToken `json:"kitchen_token,omitempty"`
	Bill         *models.Bill         `json:"bill,omitempty"`
}

func (r Row) Progress() int {
	return lifecycle.Progress(r.Order.Status)
}

// TimeInStatus is recomputed on every call since now keeps moving.
func (r Row) TimeInStatus(now time.Time) string {
	return lifecycle.TimeInStatus(now, r.Order)
}

// Page is one window of the projected rows.
type Page struct {
	Rows       []Row `json:"rows"`
	Total      int   `json:"total"`
	PageNumber int   `json:"page_number"`
	PageSize   int   `json:"page_size"`
	TotalPages int   `json:"total_pages"`
}

// Project is a pure function of snapshot and cfg. cfg.PageNumber is clamped
// into range; the clamped value is reported in Page.PageNumber.
func Project(snap models.Snapshot, cfg Config) Page {
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultPageSize
	}

	rows := Filter(Join(snap), cfg)
	Sort(rows, cfg.SortKey)

	total := len(rows)
	page := ClampPage(cfg.PageNumber, total, cfg.PageSize)
	return Page{
		Rows:       Paginate(rows, page, cfg.PageSize),
		Total:      total,
		PageNumber: page,
		PageSize:   cfg.PageSize,
		TotalPages: TotalPages(total, cfg.PageSize),
	}
}

// Join pairs every order with the first kitchen token and bill that point to it.
func Join(snap models.Snapshot) []Row {
	rows := make([]Row, 0, len(snap.Orders))
	for _, o := range snap.Orders {
		row := Row{Order: o}
		for i := range snap.KitchenTokens {
			if snap.KitchenTokens[i].OrderID == o.ID {
				token := snap.KitchenTokens[i]
				row.KitchenToken = &token
				break
			}
		}
		for i := range snap.Bills {
			if snap.Bills[i].OrderID == o.ID {
				bill := snap.Bills[i]
				row.Bill = &bill
				break
			}
		}
		rows = append(rows, row)
	}
	return rows
}

// Filter applies bucket, source and search filters. They commute.
func Filter(rows []Row, cfg Config) []Row {
	search := strings.ToLower(cfg.SearchText)
	out := make([]Row, 0, len(rows))
	for _, row := range rows {
		if !inBucket(row.Order.Status, cfg.StatusBucket) {
			continue
		}
		if cfg.SourceFilter != "" && cfg.SourceFilter != SourceAll && string(row.Order.OrderSource) != cfg.SourceFilter {
			continue
		}
		if search != "" && !matches(row.Order, search) {
			continue
		}
		out = append(out, row)
	}
	return out
}

func inBucket(s models.OrderStatus, bucket StatusBucket) bool {
	switch bucket {
	case BucketActive:
		return s.IsActive()
	case BucketCompleted:
		return s.IsCompleted()
	}
	return true
}

func matches(o models.Order, search string) bool {
	return strings.Contains(strings.ToLower(o.OrderNumber), search) ||
		strings.Contains(strings.ToLower(o.Table()), search) ||
		strings.Contains(strings.ToLower(o.Customer()), search)
}

// Sort orders rows in place by key. Every key ends on order id so the result
// never depends on input order.
func Sort(rows []Row, key SortKey) {
	cmp := compareFor(key)
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i].Order, rows[j].Order
		if c := cmp(a, b); c != 0 {
			return c < 0
		}
		return a.ID < b.ID
	})
}

// compareFor returns a three-way comparison for key.
func compareFor(key SortKey) func(a, b models.Order) int {
	switch key {
	case SortNewest:
		return func(a, b models.Order) int { return -compareTime(a.CreatedAt, b.CreatedAt) }
	case SortOldest:
		return func(a, b models.Order) int { return compareTime(a.CreatedAt, b.CreatedAt) }
	case SortTable:
		return func(a, b models.Order) int {
			ta, tb := a.Table(), b.Table()
			switch {
			case ta == "" && tb == "":
				return 0
			case ta == "":
				return 1
			case tb == "":
				return -1
			}
			return strings.Compare(ta, tb)
		}
	case SortAmount:
		return func(a, b models.Order) int {
			switch {
			case a.TotalAmount > b.TotalAmount:
				return -1
			case a.TotalAmount < b.TotalAmount:
				return 1
			}
			return 0
		}
	}

	// status: lifecycle priority ascending, then most recently touched first
	return func(a, b models.Order) int {
		pa, pb := lifecycle.Priority(a.Status), lifecycle.Priority(b.Status)
		if pa != pb {
			if pa < pb {
				return -1
			}
			return 1
		}
		return -compareTime(a.UpdatedAt, b.UpdatedAt)
	}
}

func compareTime(a, b time.Time) int {
	switch {
	case a.Before(b):
		return -1
	case a.After(b):
		return 1
	}
	return 0
}

// TotalPages is ceil(total/size), never less than 1.
func TotalPages(total, size int) int {
	if size <= 0 || total <= 0 {
		return 1
	}
	return (total + size - 1) / size
}

// ClampPage keeps page within [1, TotalPages(total, size)].
func ClampPage(page, total, size int) int {
	if page < 1 {
		return 1
	}
	if last := TotalPages(total, size); page > last {
		return last
	}
	return page
}

// Paginate returns rows[(page-1)*size : page*size], bounded by len(rows).
func Paginate(rows []Row, page, size int) []Row {
	start := (page - 1) * size
	if start < 0 || start >= len(rows) {
		return []Row{}
	}
	end := start + size
	if end > len(rows) {
		end = len(rows)
	}
	return append([]Row(nil), rows[start:end]...)
}
