package invalidation

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yeremiapane/restaurant-dashboard/kds"
	"github.com/yeremiapane/restaurant-dashboard/models"
)

// Fetcher loads full collections from the REST collaborators.
type Fetcher interface {
	FetchOrders(ctx context.Context) ([]models.Order, error)
	FetchKitchenTokens(ctx context.Context) ([]models.KitchenToken, error)
	FetchBills(ctx context.Context) ([]models.Bill, error)
}

// RetryPolicy controls how a failed refetch is retried before the last known
// good partition is left in place.
type RetryPolicy struct {
	MaxRetries    int
	RetryDelay    time.Duration
	MaxRetryDelay time.Duration
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries:    3,
		RetryDelay:    time.Second,
		MaxRetryDelay: 30 * time.Second,
	}
}

type Config struct {
	// CoalesceWindow is how long the first invalidation of a partition waits
	// for more signals before the single refetch is issued.
	CoalesceWindow time.Duration
	Retry          RetryPolicy
	Logger         logrus.FieldLogger
}

const DefaultCoalesceWindow = 100 * time.Millisecond

// Router maps change signals to partition refetches. Push messages and poll
// ticks both come through here.
type Router struct {
	fetcher Fetcher
	store   *Store
	cfg     Config
	log     logrus.FieldLogger

	ctx    context.Context
	cancel context.CancelFunc

	// gate lets Close wait out a write, and its notifications, that already
	// passed the closed check.
	gate sync.RWMutex

	mu       sync.Mutex
	armed    map[Partition]*time.Timer
	issued   map[Partition]uint64
	fetches  map[Partition]uint64
	closed   bool
	inflight sync.WaitGroup
}

func NewRouter(fetcher Fetcher, store *Store, cfg Config) *Router {
	if cfg.CoalesceWindow < 0 {
		cfg.CoalesceWindow = 0
	}
	if cfg.Retry == (RetryPolicy{}) {
		cfg.Retry = DefaultRetryPolicy()
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.StandardLogger()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Router{
		fetcher: fetcher,
		store:   store,
		cfg:     cfg,
		log:     cfg.Logger.WithField("component", "invalidation"),
		ctx:     ctx,
		cancel:  cancel,
		armed:   make(map[Partition]*time.Timer),
		issued:  make(map[Partition]uint64),
		fetches: make(map[Partition]uint64),
	}
}

// Dispatch routes one change tag. Unknown tags are ignored and reported false.
func (r *Router) Dispatch(event kds.EventType) bool {
	parts, ok := PartitionsFor(event)
	if !ok {
		return false
	}
	r.Invalidate(parts...)
	return true
}

// InvalidateAll refreshes orders, kitchen tokens and bills.
func (r *Router) InvalidateAll() {
	r.Invalidate(AllPartitions...)
}

// Invalidate schedules one refetch per partition. Calls that land while a
// partition is already armed are absorbed into that refetch.
func (r *Router) Invalidate(parts ...Partition) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	for _, p := range parts {
		if _, armed := r.armed[p]; armed {
			continue
		}
		p := p
		r.armed[p] = time.AfterFunc(r.cfg.CoalesceWindow, func() { r.fire(p) })
	}
}

// Fetches returns how many refetches have been issued for p.
func (r *Router) Fetches(p Partition) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.fetches[p]
}

// Close stops new refetches. Results of refetches already in flight are
// discarded when they arrive. Close blocks until subscriber callbacks that
// are already running have returned.
func (r *Router) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	for p, timer := range r.armed {
		timer.Stop()
		delete(r.armed, p)
	}
	r.mu.Unlock()

	r.gate.Lock()
	r.gate.Unlock()
	r.cancel()
}

func (r *Router) isClosed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}

// Wait blocks until every refetch goroutine has returned.
func (r *Router) Wait() {
	r.inflight.Wait()
}

func (r *Router) fire(p Partition) {
	r.mu.Lock()
	delete(r.armed, p)
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.issued[p]++
	r.fetches[p]++
	seq := r.issued[p]
	r.inflight.Add(1)
	r.mu.Unlock()

	defer r.inflight.Done()
	r.refetch(p, seq)
}

func (r *Router) refetch(p Partition, seq uint64) {
	log := r.log.WithFields(logrus.Fields{"partition": p, "seq": seq})

	var lastErr error
	for attempt := 0; attempt <= r.cfg.Retry.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := retryDelay(attempt, r.cfg.Retry)
			log.WithError(lastErr).WithField("delay", delay).Warn("refetch failed, retrying")
			select {
			case <-time.After(delay):
			case <-r.ctx.Done():
				return
			}
		}

		lastErr = r.fetchAndApply(p, seq)
		if lastErr == nil {
			return
		}
		if errors.Is(lastErr, context.Canceled) && r.ctx.Err() != nil {
			return
		}
	}
	log.WithError(lastErr).Error("refetch gave up, keeping last known data")
}

func (r *Router) fetchAndApply(p Partition, seq uint64) error {
	switch p {
	case PartitionOrders:
		orders, err := r.fetcher.FetchOrders(r.ctx)
		if err != nil {
			return err
		}
		r.apply(p, func() bool { return r.store.ApplyOrders(seq, orders) })
	case PartitionKitchenTokens:
		tokens, err := r.fetcher.FetchKitchenTokens(r.ctx)
		if err != nil {
			return err
		}
		r.apply(p, func() bool { return r.store.ApplyKitchenTokens(seq, tokens) })
	case PartitionBills:
		bills, err := r.fetcher.FetchBills(r.ctx)
		if err != nil {
			return err
		}
		r.apply(p, func() bool { return r.store.ApplyBills(seq, bills) })
	}
	return nil
}

// apply writes a result unless the router was closed while it was in flight.
// Subscribers run inside the gate, so Close returns only after they finish.
// A subscriber must not call Close.
func (r *Router) apply(p Partition, write func() bool) {
	r.gate.RLock()
	defer r.gate.RUnlock()
	if r.isClosed() {
		r.log.WithField("partition", p).Debug("discarding refetch result after close")
		return
	}
	if !write() {
		r.log.WithField("partition", p).Debug("discarding stale refetch result")
		return
	}
	r.store.notify(p)
}

func retryDelay(attempt int, policy RetryPolicy) time.Duration {
	delay := policy.RetryDelay * time.Duration(1<<uint(attempt-1))
	if policy.MaxRetryDelay > 0 && delay > policy.MaxRetryDelay {
		delay = policy.MaxRetryDelay
	}
	return delay
}
