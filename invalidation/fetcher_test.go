package invalidation

import (
	"context"
	"sync"

	"github.com/yeremiapane/restaurant-dashboard/models"
)

// fakeFetcher serves canned collections and counts calls per partition.
// ordersFn, when set, decides the orders response for the n-th call (1-based).
type fakeFetcher struct {
	mu       sync.Mutex
	calls    map[Partition]int
	orders   []models.Order
	tokens   []models.KitchenToken
	bills    []models.Bill
	ordersFn func(ctx context.Context, call int) ([]models.Order, error)
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{calls: make(map[Partition]int)}
}

func (f *fakeFetcher) count(p Partition) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[p]++
	return f.calls[p]
}

func (f *fakeFetcher) Calls(p Partition) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[p]
}

func (f *fakeFetcher) FetchOrders(ctx context.Context) ([]models.Order, error) {
	n := f.count(PartitionOrders)
	if f.ordersFn != nil {
		return f.ordersFn(ctx, n)
	}
	return f.orders, nil
}

func (f *fakeFetcher) FetchKitchenTokens(ctx context.Context) ([]models.KitchenToken, error) {
	f.count(PartitionKitchenTokens)
	return f.tokens, nil
}

func (f *fakeFetcher) FetchBills(ctx context.Context) ([]models.Bill, error) {
	f.count(PartitionBills)
	return f.bills, nil
}
