package invalidation

import (
	"sort"
	"sync"

	"github.com/yeremiapane/restaurant-dashboard/lifecycle"
	"github.com/yeremiapane/restaurant-dashboard/models"
)

// Store holds the cached raw collections. Partitions only change through
// completed refetches, and only when the refetch is newer than the last one
// applied. Subscribers hear about a partition after the router applied it.
type Store struct {
	mu      sync.RWMutex
	orders  map[uint]models.Order
	tokens  []models.KitchenToken
	bills   []models.Bill
	applied map[Partition]uint64

	subMu       sync.Mutex
	subscribers map[int]func(Partition)
	nextSub     int
}

func NewStore() *Store {
	return &Store{
		orders:      make(map[uint]models.Order),
		applied:     make(map[Partition]uint64),
		subscribers: make(map[int]func(Partition)),
	}
}

// Subscribe registers fn for every applied partition and returns the
// matching unsubscribe.
func (s *Store) Subscribe(fn func(Partition)) func() {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	id := s.nextSub
	s.nextSub++
	s.subscribers[id] = fn
	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		delete(s.subscribers, id)
	}
}

// ApplyOrders merges a full orders response. Orders are never dropped from
// the cache, and a record whose status would move backwards is ignored.
func (s *Store) ApplyOrders(seq uint64, orders []models.Order) bool {
	s.mu.Lock()
	if seq <= s.applied[PartitionOrders] {
		s.mu.Unlock()
		return false
	}
	s.applied[PartitionOrders] = seq
	for _, incoming := range orders {
		cached, ok := s.orders[incoming.ID]
		if ok && lifecycle.IsForward(incoming.Status, cached.Status) {
			continue
		}
		s.orders[incoming.ID] = incoming
	}
	s.mu.Unlock()
	return true
}

func (s *Store) ApplyKitchenTokens(seq uint64, tokens []models.KitchenToken) bool {
	s.mu.Lock()
	if seq <= s.applied[PartitionKitchenTokens] {
		s.mu.Unlock()
		return false
	}
	s.applied[PartitionKitchenTokens] = seq
	s.tokens = append([]models.KitchenToken(nil), tokens...)
	s.mu.Unlock()
	return true
}

func (s *Store) ApplyBills(seq uint64, bills []models.Bill) bool {
	s.mu.Lock()
	if seq <= s.applied[PartitionBills] {
		s.mu.Unlock()
		return false
	}
	s.applied[PartitionBills] = seq
	s.bills = append([]models.Bill(nil), bills...)
	s.mu.Unlock()
	return true
}

// Applied returns the sequence of the last refetch applied to p.
func (s *Store) Applied(p Partition) uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.applied[p]
}

// Snapshot copies the three collections. Orders come back sorted by id.
func (s *Store) Snapshot() models.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	orders := make([]models.Order, 0, len(s.orders))
	for _, o := range s.orders {
		orders = append(orders, o)
	}
	sort.Slice(orders, func(i, j int) bool { return orders[i].ID < orders[j].ID })

	return models.Snapshot{
		Orders:        orders,
		KitchenTokens: append([]models.KitchenToken(nil), s.tokens...),
		Bills:         append([]models.Bill(nil), s.bills...),
	}
}

func (s *Store) notify(p Partition) {
	s.subMu.Lock()
	subs := make([]func(Partition), 0, len(s.subscribers))
	for id := 0; id < s.nextSub; id++ {
		if fn, ok := s.subscribers[id]; ok {
			subs = append(subs, fn)
		}
	}
	s.subMu.Unlock()

	for _, fn := range subs {
		fn(p)
	}
}
